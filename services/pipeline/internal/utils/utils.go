package utils

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/02loveslollipop/irve-dashboard/internal/irve"
	"github.com/02loveslollipop/irve-dashboard/internal/table"
)

// ExtraColumn holds auxiliary source columns as JSON.
const ExtraColumn = "extra"

// PointColumns lists the irve.charging_points columns in COPY order.
func PointColumns() []string {
	return append(irve.CanonicalColumns(), ExtraColumn)
}

// SQLType maps a canonical column to its Postgres type.
func SQLType(column string) string {
	if column == ExtraColumn {
		return "JSONB"
	}
	switch irve.ColumnKind(column) {
	case irve.KindFloat:
		return "DOUBLE PRECISION"
	case irve.KindBool:
		return "BOOLEAN"
	case irve.KindDate:
		return "DATE"
	default:
		return "TEXT"
	}
}

// BuildPointRows converts the clean table into database-ready rows aligned
// with PointColumns. Columns absent from this run are NULL.
func BuildPointRows(t *irve.CleanTable) ([][]any, error) {
	canonical := irve.CanonicalColumns()
	present := make([]bool, len(canonical))
	for i, col := range canonical {
		present[i] = t.Has(col)
	}

	rows := make([][]any, 0, t.Len())
	for i := range t.Points {
		p := &t.Points[i]
		row := make([]any, 0, len(canonical)+1)
		for j, col := range canonical {
			if !present[j] {
				row = append(row, nil)
				continue
			}
			row = append(row, p.Value(col))
		}

		if len(p.Extra) == 0 {
			row = append(row, nil)
		} else {
			extra, err := json.Marshal(p.Extra)
			if err != nil {
				return nil, fmt.Errorf("encode extra for row %d: %w", i, err)
			}
			row = append(row, extra)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// MissingCoordinates counts rows without both coordinates.
func MissingCoordinates(t *irve.CleanTable) int {
	n := 0
	for i := range t.Points {
		if !t.Points[i].HasCoordinates() {
			n++
		}
	}
	return n
}

// PersistSummary describes persist results for logs and the run history.
func PersistSummary(results []table.PersistResult) (map[string]any, int) {
	out := make(map[string]any, len(results))
	failed := 0
	for _, r := range results {
		entry := map[string]any{"path": r.Path}
		if r.Err != nil {
			failed++
			entry["error"] = r.Err.Error()
		} else {
			entry["bytes"] = r.Bytes
		}
		out[string(r.Format)] = entry
	}
	return out, failed
}

// Elapsed formats a duration for progress lines.
func Elapsed(start time.Time) string {
	return time.Since(start).Round(time.Millisecond).String()
}
