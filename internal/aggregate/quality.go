package aggregate

import (
	"fmt"
	"sort"
	"strings"

	"github.com/02loveslollipop/irve-dashboard/internal/irve"
)

// Missing is the missing-value count of one column.
type Missing struct {
	Column  string  `json:"column"`
	Missing int     `json:"missing"`
	Pct     float64 `json:"pct"`
}

// MissingReport lists every column by missing count descending, with the
// number of complete and incomplete columns.
type MissingReport struct {
	Columns    []Missing `json:"columns"`
	Complete   int       `json:"complete"`
	Incomplete int       `json:"incomplete"`
}

// MissingValues counts absent values per column. Boolean columns are never
// missing.
func MissingValues(t *irve.CleanTable) MissingReport {
	rep := MissingReport{Columns: make([]Missing, 0, len(t.Columns))}
	for _, col := range t.Columns {
		var n int
		for i := range t.Points {
			if t.Points[i].Value(col) == nil {
				n++
			}
		}
		rep.Columns = append(rep.Columns, Missing{Column: col, Missing: n, Pct: pct(n, t.Len())})
		if n == 0 {
			rep.Complete++
		} else {
			rep.Incomplete++
		}
	}
	sort.SliceStable(rep.Columns, func(i, j int) bool {
		return rep.Columns[i].Missing > rep.Columns[j].Missing
	})
	return rep
}

// DuplicateRows counts rows identical on every column to an earlier row.
func DuplicateRows(t *irve.CleanTable) int {
	seen := make(map[string]struct{}, t.Len())
	var dup int
	var b strings.Builder
	for i := range t.Points {
		b.Reset()
		for _, col := range t.Columns {
			fmt.Fprint(&b, t.Points[i].Value(col))
			b.WriteByte(0x1f)
		}
		key := b.String()
		if _, ok := seen[key]; ok {
			dup++
			continue
		}
		seen[key] = struct{}{}
	}
	return dup
}
