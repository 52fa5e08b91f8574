package table

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/02loveslollipop/irve-dashboard/internal/irve"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ErrEmptyInput is returned when the input has no header line.
var ErrEmptyInput = errors.New("empty input")

// ReadRawFile reads a delimited file from disk.
func ReadRawFile(path string) (*irve.RawTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadRaw(f)
}

// ReadRaw reads a UTF-8 delimited table. The delimiter is detected from the
// header line and a leading byte-order mark is dropped. Short rows are
// padded and long rows truncated to the header width.
func ReadRaw(r io.Reader) (*irve.RawTable, error) {
	br := bufio.NewReaderSize(r, 64*1024)
	if head, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(head, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}

	sample, _ := br.Peek(br.Size())
	if len(bytes.TrimSpace(sample)) == 0 {
		return nil, ErrEmptyInput
	}

	cr := csv.NewReader(br)
	cr.Comma = detectDelimiter(sample)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.ReuseRecord = false

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	for i, h := range header {
		header[i] = strings.TrimSpace(h)
	}

	t := &irve.RawTable{Header: header}
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", len(t.Rows)+1, err)
		}
		if len(rec) == 1 && strings.TrimSpace(rec[0]) == "" && len(header) > 1 {
			continue
		}
		t.Rows = append(t.Rows, fitWidth(rec, len(header)))
	}
	return t, nil
}

func fitWidth(rec []string, width int) []string {
	switch {
	case len(rec) == width:
		return rec
	case len(rec) > width:
		return rec[:width]
	default:
		out := make([]string, width)
		copy(out, rec)
		return out
	}
}

// detectDelimiter picks the most frequent of ';', ',' and tab on the first
// line, defaulting to ','.
func detectDelimiter(sample []byte) rune {
	line := sample
	if i := bytes.IndexByte(sample, '\n'); i >= 0 {
		line = sample[:i]
	}
	best, bestCount := ',', bytes.Count(line, []byte{','})
	for _, d := range []rune{';', '\t'} {
		if n := bytes.Count(line, []byte{byte(d)}); n > bestCount {
			best, bestCount = d, n
		}
	}
	return best
}
