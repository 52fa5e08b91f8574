package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/02loveslollipop/irve-dashboard/internal/aggregate"
)

// handleV1PowerHistogram returns point counts per power bin
// GET /api/v1/distribution/power
func (s *Server) handleV1PowerHistogram(c *gin.Context) {
	t, ok := s.view(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": aggregate.PowerHistogram(t)})
}

// handleV1PowerCategories returns point counts per power category
// GET /api/v1/distribution/categories
func (s *Server) handleV1PowerCategories(c *gin.Context) {
	t, ok := s.view(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": aggregate.PowerCategoryCounts(t)})
}

// handleV1DescribePower returns descriptive statistics of rated power
// GET /api/v1/distribution/describe
func (s *Server) handleV1DescribePower(c *gin.Context) {
	t, ok := s.view(c)
	if !ok {
		return
	}

	summary, found := aggregate.DescribePower(t)
	if !found {
		c.JSON(http.StatusOK, gin.H{"data": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": summary})
}

func (s *Server) handleV1CurrentMix(c *gin.Context) {
	t, ok := s.view(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": aggregate.CurrentMix(t)})
}

func (s *Server) handleV1AccessMix(c *gin.Context) {
	t, ok := s.view(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": aggregate.AccessMix(t)})
}

// handleV1Installations returns monthly installation counts
// GET /api/v1/distribution/installations?start=2021-01
func (s *Server) handleV1Installations(c *gin.Context) {
	start := aggregate.DefaultTimelineStart
	if v := c.Query("start"); v != "" {
		parsed, err := time.Parse(aggregate.MonthLayout, v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid start month, expected YYYY-MM"})
			return
		}
		start = parsed
	}

	t, ok := s.view(c)
	if !ok {
		return
	}

	months := aggregate.MonthlyInstallations(t, start)
	c.JSON(http.StatusOK, gin.H{
		"data": months,
		"meta": gin.H{"start": start.Format(aggregate.MonthLayout), "months": len(months)},
	})
}

// handleV1Operators ranks operators by number of points
// GET /api/v1/distribution/operators?top=10
func (s *Server) handleV1Operators(c *gin.Context) {
	n, ok := s.top(c)
	if !ok {
		return
	}
	t, ok := s.view(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": aggregate.TopOperators(t, n),
		"meta": gin.H{"top": n},
	})
}
