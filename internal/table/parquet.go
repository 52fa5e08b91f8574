package table

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/compress"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"

	"github.com/02loveslollipop/irve-dashboard/internal/irve"
)

// Schema builds the Arrow schema of a cleaned table. Every column is
// nullable.
func Schema(t *irve.CleanTable) *arrow.Schema {
	fields := make([]arrow.Field, len(t.Columns))
	for i, col := range t.Columns {
		fields[i] = arrow.Field{Name: col, Type: arrowType(irve.ColumnKind(col)), Nullable: true}
	}
	return arrow.NewSchema(fields, nil)
}

func arrowType(k irve.Kind) arrow.DataType {
	switch k {
	case irve.KindFloat:
		return arrow.PrimitiveTypes.Float64
	case irve.KindBool:
		return arrow.FixedWidthTypes.Boolean
	case irve.KindDate:
		return arrow.FixedWidthTypes.Date32
	default:
		return arrow.BinaryTypes.String
	}
}

// WriteParquet writes the table as one Snappy-compressed row group.
func WriteParquet(w io.Writer, t *irve.CleanTable) error {
	mem := memory.NewGoAllocator()
	schema := Schema(t)

	b := array.NewRecordBuilder(mem, schema)
	defer b.Release()
	for i := range t.Points {
		p := &t.Points[i]
		for j, col := range t.Columns {
			appendValue(b.Field(j), p.Value(col))
		}
	}
	rec := b.NewRecord()
	defer rec.Release()

	props := parquet.NewWriterProperties(parquet.WithCompression(compress.Codecs.Snappy))
	fw, err := pqarrow.NewFileWriter(schema, w, props, pqarrow.DefaultWriterProps())
	if err != nil {
		return fmt.Errorf("parquet writer: %w", err)
	}
	if err := fw.Write(rec); err != nil {
		_ = fw.Close()
		return fmt.Errorf("parquet write: %w", err)
	}
	if err := fw.Close(); err != nil {
		return fmt.Errorf("parquet close: %w", err)
	}
	return nil
}

func appendValue(fb array.Builder, v any) {
	if v == nil {
		fb.AppendNull()
		return
	}
	switch b := fb.(type) {
	case *array.Float64Builder:
		b.Append(v.(float64))
	case *array.BooleanBuilder:
		b.Append(v.(bool))
	case *array.Date32Builder:
		b.Append(arrow.Date32FromTime(v.(time.Time)))
	case *array.StringBuilder:
		b.Append(FormatValue(v))
	default:
		fb.AppendNull()
	}
}

// ReadParquetFile loads a table written by WriteParquet.
func ReadParquetFile(ctx context.Context, path string) (*irve.CleanTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	mem := memory.NewGoAllocator()
	tbl, err := pqarrow.ReadTable(ctx, f, parquet.NewReaderProperties(mem), pqarrow.ArrowReadProperties{}, mem)
	if err != nil {
		return nil, fmt.Errorf("read parquet %s: %w", path, err)
	}
	defer tbl.Release()

	schema := tbl.Schema()
	t := &irve.CleanTable{
		Columns: make([]string, schema.NumFields()),
		Points:  make([]irve.ChargePoint, tbl.NumRows()),
	}
	for i := 0; i < schema.NumFields(); i++ {
		col := schema.Field(i).Name
		t.Columns[i] = col
		kind := irve.ColumnKind(col)
		row := 0
		for _, chunk := range tbl.Column(i).Data().Chunks() {
			for j := 0; j < chunk.Len(); j++ {
				if !chunk.IsNull(j) {
					t.Points[row].SetValue(col, arrowValue(chunk, j, kind))
				}
				row++
			}
		}
	}
	return t, nil
}

func arrowValue(arr arrow.Array, j int, kind irve.Kind) any {
	switch a := arr.(type) {
	case *array.Float64:
		return a.Value(j)
	case *array.Boolean:
		return a.Value(j)
	case *array.Date32:
		return a.Value(j).ToTime().UTC()
	case *array.String:
		return irve.ParseValue(kind, a.Value(j))
	default:
		return irve.ParseValue(kind, arr.ValueStr(j))
	}
}
