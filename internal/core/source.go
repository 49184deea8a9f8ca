package core

// source.go opens the stories CSV for streaming.
//
// The file is read through a UTF-8 decoder that strips a leading BOM (Excel
// adds one) and replaces invalid byte sequences with U+FFFD, then through a
// counter so progress can be logged in bytes.

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// countingReader tracks bytes read from the underlying file.
type countingReader struct {
	reader    io.Reader
	bytesRead int64
	total     int64
}

func (r *countingReader) Read(p []byte) (int, error) {
	n, err := r.reader.Read(p)
	r.bytesRead += int64(n)
	return n, err
}

// Progress returns the read progress as a percentage (0-100).
// Returns 0 if the total size is unknown.
func (r *countingReader) Progress() int {
	if r.total <= 0 {
		return 0
	}
	return int(r.bytesRead * 100 / r.total)
}

// decodeUTF8 wraps r with BOM stripping and invalid-byte replacement.
func decodeUTF8(r io.Reader) io.Reader {
	return transform.NewReader(r, unicode.UTF8BOM.NewDecoder())
}

// rowReader yields header-keyed rows from a CSV stream.
type rowReader struct {
	csv    *csv.Reader
	header []string
	line   int
}

// newRowReader reads the header row. An empty stream yields no header and
// no rows.
func newRowReader(r io.Reader) (*rowReader, error) {
	cr := csv.NewReader(decodeUTF8(r))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return &rowReader{csv: cr}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	return &rowReader{csv: cr, header: header, line: 1}, nil
}

// Next returns the next row and its 1-based line number in the file.
// Returns io.EOF when the stream is exhausted. Cells beyond the header are
// ignored; missing trailing cells are absent from the row. Empty lines are
// skipped by encoding/csv, but a line holding only "" is a row with one
// empty cell.
func (r *rowReader) Next() (Row, int, error) {
	if r.header == nil {
		return nil, 0, io.EOF
	}

	record, err := r.csv.Read()
	if err != nil {
		return nil, 0, err
	}
	r.line, _ = r.csv.FieldPos(0)

	row := make(Row, len(r.header))
	for i, name := range r.header {
		if i < len(record) {
			row[name] = record[i]
		}
	}
	return row, r.line, nil
}

// openSource opens path for streaming. A missing file is ErrSourceMissing.
func openSource(path string) (*os.File, *countingReader, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil, fmt.Errorf("%w: %s", ErrSourceMissing, path)
		}
		return nil, nil, fmt.Errorf("open source: %w", err)
	}

	var total int64
	if info, err := f.Stat(); err == nil {
		if info.IsDir() {
			f.Close()
			return nil, nil, fmt.Errorf("%w: %s is a directory", ErrSourceMissing, path)
		}
		total = info.Size()
	}

	return f, &countingReader{reader: f, total: total}, nil
}
