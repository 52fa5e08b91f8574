package aggregate

import (
	"time"

	"github.com/02loveslollipop/irve-dashboard/internal/irve"
)

// MonthLayout formats month labels.
const MonthLayout = "2006-01"

// DefaultTimelineStart is the first month of the installation timeline.
var DefaultTimelineStart = time.Date(2021, time.January, 1, 0, 0, 0, 0, time.UTC)

// MonthCount is the number of installations in one calendar month.
type MonthCount struct {
	Month string `json:"month"`
	Count int    `json:"count"`
}

// MonthlyInstallations counts installations per month from start to the
// latest dated month, zero-filling months without installations. Earlier
// installations are not shown. The result is empty when no row is dated or
// the latest month precedes start.
func MonthlyInstallations(t *irve.CleanTable, start time.Time) []MonthCount {
	date := InstallDate(t)
	if date == nil {
		return nil
	}
	counts := make(map[time.Time]int)
	var last time.Time
	for i := range t.Points {
		d := date(&t.Points[i])
		if d == nil {
			continue
		}
		m := monthOf(*d)
		counts[m]++
		if m.After(last) {
			last = m
		}
	}
	first := monthOf(start)
	if len(counts) == 0 || last.Before(first) {
		return nil
	}

	var out []MonthCount
	for m := first; !m.After(last); m = m.AddDate(0, 1, 0) {
		out = append(out, MonthCount{Month: m.Format(MonthLayout), Count: counts[m]})
	}
	return out
}

func monthOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}
