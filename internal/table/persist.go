package table

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/02loveslollipop/irve-dashboard/internal/irve"
)

// Output file names inside the processed directory.
const (
	CSVName     = "irve_clean.csv"
	ParquetName = "irve_clean.parquet"
)

// Format names a persisted form of the cleaned table.
type Format string

const (
	FormatCSV     Format = "csv"
	FormatParquet Format = "parquet"
)

// PersistResult is the outcome of writing one form.
type PersistResult struct {
	Format Format
	Path   string
	Bytes  int64
	Err    error
}

// Persist writes both forms into dir. A failure in one form does not stop
// the other; inspect each result.
func Persist(dir string, t *irve.CleanTable) []PersistResult {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		err = fmt.Errorf("create %s: %w", dir, err)
		return []PersistResult{
			{Format: FormatCSV, Path: filepath.Join(dir, CSVName), Err: err},
			{Format: FormatParquet, Path: filepath.Join(dir, ParquetName), Err: err},
		}
	}
	return []PersistResult{
		persistOne(FormatCSV, filepath.Join(dir, CSVName), t, WriteCSV),
		persistOne(FormatParquet, filepath.Join(dir, ParquetName), t, WriteParquet),
	}
}

func persistOne(format Format, path string, t *irve.CleanTable, write func(io.Writer, *irve.CleanTable) error) PersistResult {
	res := PersistResult{Format: format, Path: path}
	res.Bytes, res.Err = WriteFileAtomic(path, func(w io.Writer) error { return write(w, t) })
	return res
}

// WriteFileAtomic writes to a temporary file in the target directory and
// renames it over path, so readers never observe a partial file.
func WriteFileAtomic(path string, write func(io.Writer) error) (int64, error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return 0, fmt.Errorf("create temp for %s: %w", path, err)
	}
	tmpName := tmp.Name()
	fail := func(err error) (int64, error) {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return 0, err
	}

	bw := bufio.NewWriter(tmp)
	if err := write(bw); err != nil {
		return fail(fmt.Errorf("write %s: %w", path, err))
	}
	if err := bw.Flush(); err != nil {
		return fail(fmt.Errorf("flush %s: %w", path, err))
	}
	if err := tmp.Sync(); err != nil {
		return fail(fmt.Errorf("sync %s: %w", path, err))
	}
	info, err := tmp.Stat()
	if err != nil {
		return fail(fmt.Errorf("stat %s: %w", path, err))
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return 0, fmt.Errorf("close %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return 0, fmt.Errorf("rename %s: %w", path, err)
	}
	return info.Size(), nil
}

// Load reads a persisted table, choosing the reader from the extension.
func Load(ctx context.Context, path string) (*irve.CleanTable, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".parquet":
		return ReadParquetFile(ctx, path)
	case ".csv":
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", path, err)
		}
		defer f.Close()
		t, err := ReadCSV(bufio.NewReader(f))
		if err != nil {
			return nil, fmt.Errorf("read csv %s: %w", path, err)
		}
		return t, nil
	default:
		return nil, fmt.Errorf("load %s: unsupported extension %q", path, filepath.Ext(path))
	}
}
