package http

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/02loveslollipop/irve-dashboard/internal/aggregate"
	"github.com/02loveslollipop/irve-dashboard/internal/irve"
)

// parseCriteria reads the view filters shared by every aggregate endpoint:
// department, operator (repeatable or comma-separated), current=all|dc|ac,
// only_24_7, from/to (YYYY-MM-DD) and min_power/max_power (kW).
func parseCriteria(c *gin.Context) (aggregate.Criteria, error) {
	var crit aggregate.Criteria

	crit.Departments = splitList(c.QueryArray("department"))
	crit.Operators = splitList(c.QueryArray("operator"))

	current, ok := aggregate.ParseCurrentType(c.Query("current"))
	if !ok {
		return crit, fmt.Errorf("invalid current %q, expected all, dc or ac", c.Query("current"))
	}
	crit.Current = current

	if v := c.Query("only_24_7"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return crit, fmt.Errorf("invalid only_24_7 %q", v)
		}
		crit.Only247 = b
	}

	for _, d := range []struct {
		name string
		dst  **time.Time
	}{{"from", &crit.From}, {"to", &crit.To}} {
		if v := c.Query(d.name); v != "" {
			t, err := time.Parse(irve.DateLayout, v)
			if err != nil {
				return crit, fmt.Errorf("invalid %s date, expected YYYY-MM-DD", d.name)
			}
			*d.dst = &t
		}
	}
	if crit.From != nil && crit.To != nil && crit.To.Before(*crit.From) {
		return crit, errors.New("to precedes from")
	}

	for _, p := range []struct {
		name string
		dst  **float64
	}{{"min_power", &crit.MinPowerKW}, {"max_power", &crit.MaxPowerKW}} {
		if v := c.Query(p.name); v != "" {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil || f < 0 {
				return crit, fmt.Errorf("invalid %s %q", p.name, v)
			}
			*p.dst = &f
		}
	}

	return crit, nil
}

func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// queryPositive parses an optional positive integer parameter.
func queryPositive(c *gin.Context, name string, def int) (int, error) {
	v := c.Query(name)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s %q", name, v)
	}
	return n, nil
}

// view loads the clean table and applies the request filters. On failure
// it writes the error response and returns false.
func (s *Server) view(c *gin.Context) (*irve.CleanTable, bool) {
	crit, err := parseCriteria(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, false
	}

	t, err := s.tables.Get(s.cfg.CleanPath)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "clean table unavailable: " + err.Error()})
		return nil, false
	}
	return aggregate.Filter(t, crit), true
}

func (s *Server) top(c *gin.Context) (int, bool) {
	n, err := queryPositive(c, "top", s.cfg.DefaultTop)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return 0, false
	}
	return n, true
}
