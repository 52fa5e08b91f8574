// Package aggregate summarises a cleaned table for the dashboard views:
// filters, KPIs, rankings, distributions and timelines.
package aggregate

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/02loveslollipop/irve-dashboard/internal/irve"
)

// CurrentType restricts a view to AC or DC points.
type CurrentType string

const (
	CurrentAll CurrentType = "all"
	CurrentDC  CurrentType = "dc"
	CurrentAC  CurrentType = "ac"
)

// ParseCurrentType accepts all, dc or ac in any case. Empty means all.
func ParseCurrentType(s string) (CurrentType, bool) {
	switch CurrentType(strings.ToLower(strings.TrimSpace(s))) {
	case "", CurrentAll:
		return CurrentAll, true
	case CurrentDC:
		return CurrentDC, true
	case CurrentAC:
		return CurrentAC, true
	default:
		return "", false
	}
}

// Criteria is the sidebar filter of a view. Zero values match everything.
type Criteria struct {
	Departments []string
	Operators   []string
	Current     CurrentType
	Only247     bool
	From        *time.Time
	To          *time.Time
	MinPowerKW  *float64
	MaxPowerKW  *float64
}

// Filter returns the rows of t matching c. Filters on a column the table
// does not carry are ignored. Rows without a date or power are excluded once
// a date or power range is set.
func Filter(t *irve.CleanTable, c Criteria) *irve.CleanTable {
	depts := toSet(c.Departments, irve.NormalizeDepartmentCode)
	ops := toSet(c.Operators, strings.TrimSpace)
	useDept := len(depts) > 0 && t.Has(irve.ColDepartmentCode)
	useOps := len(ops) > 0 && t.Has(irve.ColOperatorName)
	useCurrent := c.Current != "" && c.Current != CurrentAll && t.Has(irve.ColIsDC)
	useDates := (c.From != nil || c.To != nil)
	date := InstallDate(t)
	usePower := (c.MinPowerKW != nil || c.MaxPowerKW != nil) && t.Has(irve.ColRatedPower)

	kept := make([]irve.ChargePoint, 0, len(t.Points))
	for i := range t.Points {
		p := &t.Points[i]
		if useDept && !depts[irve.NormalizeDepartmentCode(p.DepartmentCode)] {
			continue
		}
		if useOps && !ops[p.OperatorName] {
			continue
		}
		if useCurrent && p.IsDC != (c.Current == CurrentDC) {
			continue
		}
		if c.Only247 && !p.Is247 {
			continue
		}
		if useDates && date != nil {
			d := date(p)
			if d == nil || (c.From != nil && d.Before(*c.From)) || (c.To != nil && d.After(*c.To)) {
				continue
			}
		}
		if usePower {
			kw := p.RatedPowerKW
			if kw == nil || (c.MinPowerKW != nil && *kw < *c.MinPowerKW) || (c.MaxPowerKW != nil && *kw > *c.MaxPowerKW) {
				continue
			}
		}
		kept = append(kept, *p)
	}
	return t.WithPoints(kept)
}

func toSet(values []string, norm func(string) string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		if v = norm(v); v != "" {
			set[v] = true
		}
	}
	return set
}

// InstallDate picks the date used for installation timelines: the
// commissioning date when any row carries one, else the last update date.
// It returns nil when neither is available.
func InstallDate(t *irve.CleanTable) func(p *irve.ChargePoint) *time.Time {
	anyDate := func(get func(p *irve.ChargePoint) *time.Time) bool {
		for i := range t.Points {
			if get(&t.Points[i]) != nil {
				return true
			}
		}
		return false
	}
	commissioning := func(p *irve.ChargePoint) *time.Time { return p.Commissioning }
	lastUpdate := func(p *irve.ChargePoint) *time.Time { return p.LastUpdate }
	switch {
	case t.Has(irve.ColCommissioning) && anyDate(commissioning):
		return commissioning
	case t.Has(irve.ColLastUpdate) && anyDate(lastUpdate):
		return lastUpdate
	default:
		return nil
	}
}

// Count is one labelled group size.
type Count struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// CountBy groups rows by key, skipping empty keys, ordered by count
// descending then label ascending.
func CountBy(t *irve.CleanTable, key func(p *irve.ChargePoint) string) []Count {
	groups := make(map[string]int)
	for i := range t.Points {
		if k := key(&t.Points[i]); k != "" {
			groups[k]++
		}
	}
	out := make([]Count, 0, len(groups))
	for label, n := range groups {
		out = append(out, Count{Label: label, Count: n})
	}
	sortCounts(out)
	return out
}

func sortCounts(c []Count) {
	sort.SliceStable(c, func(i, j int) bool {
		if c[i].Count != c[j].Count {
			return c[i].Count > c[j].Count
		}
		return c[i].Label < c[j].Label
	})
}

// Top keeps the first n entries. n <= 0 keeps everything.
func Top[T any](items []T, n int) []T {
	if n <= 0 || n >= len(items) {
		return items
	}
	return items[:n]
}

func pct(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return round1(float64(part) / float64(total) * 100)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
