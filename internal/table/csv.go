package table

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/02loveslollipop/irve-dashboard/internal/irve"
)

// WriteCSV writes the cleaned table with a header row. Absent values are
// empty cells.
func WriteCSV(w io.Writer, t *irve.CleanTable) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Columns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	rec := make([]string, len(t.Columns))
	for i := range t.Points {
		p := &t.Points[i]
		for j, col := range t.Columns {
			rec[j] = FormatValue(p.Value(col))
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadCSV reads a table written by WriteCSV.
func ReadCSV(r io.Reader) (*irve.CleanTable, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrEmptyInput
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	kinds := make([]irve.Kind, len(header))
	for i, col := range header {
		kinds[i] = irve.ColumnKind(col)
	}

	t := &irve.CleanTable{Columns: header}
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", len(t.Points)+1, err)
		}
		var p irve.ChargePoint
		for i, col := range header {
			if i < len(rec) {
				p.SetValue(col, irve.ParseValue(kinds[i], rec[i]))
			}
		}
		t.Points = append(t.Points, p)
	}
	return t, nil
}

// FormatValue renders a typed column value as text.
func FormatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	case time.Time:
		return x.Format(irve.DateLayout)
	default:
		return fmt.Sprint(x)
	}
}
