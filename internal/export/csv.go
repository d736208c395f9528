package export

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/roman-kulish/drone-signal-synth/internal/signal"
)

const defaultBufferSize = 256 * 1024

// Writer encodes samples as CSV rows restricted to a column selection. The
// header row is written before the first sample.
type Writer struct {
	csv     *csv.Writer
	columns []Column
	header  bool
	row     []string
	rows    int
}

// NewWriter creates a CSV writer over w. Columns must come from ParseColumns
// or AllColumns.
func NewWriter(w io.Writer, columns []Column) (*Writer, error) {
	for _, c := range columns {
		if !c.Valid() {
			return nil, fmt.Errorf("%w: unknown column %q", ErrInvalidColumnSelection, c)
		}
	}
	if len(columns) == 0 {
		columns = AllColumns
	}

	return &Writer{
		csv:     csv.NewWriter(w),
		columns: columns,
		row:     make([]string, len(columns)),
	}, nil
}

// Write appends one row per sample
func (w *Writer) Write(samples ...signal.Sample) error {
	if !w.header {
		if err := w.writeHeader(); err != nil {
			return err
		}
	}

	for i := range samples {
		for j, c := range w.columns {
			w.row[j] = columnValues[c](&samples[i])
		}
		if err := w.csv.Write(w.row); err != nil {
			return fmt.Errorf("csv write row: %w", err)
		}
		w.rows++
	}

	return nil
}

// Flush writes buffered rows to the underlying writer. An empty output
// still receives its header.
func (w *Writer) Flush() error {
	if !w.header {
		if err := w.writeHeader(); err != nil {
			return err
		}
	}

	w.csv.Flush()
	return w.csv.Error()
}

// Rows returns the number of data rows written, header excluded
func (w *Writer) Rows() int {
	return w.rows
}

func (w *Writer) writeHeader() error {
	header := make([]string, len(w.columns))
	for i, c := range w.columns {
		header[i] = c.String()
	}
	if err := w.csv.Write(header); err != nil {
		return fmt.Errorf("csv write header: %w", err)
	}
	w.header = true
	return nil
}

// File is a Writer backed by a buffered file
type File struct {
	*Writer

	file *os.File
	buf  *bufio.Writer
}

// Create opens (or truncates) path for CSV output
func Create(path string, columns []Column) (*File, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("csv create %s: %w", path, err)
	}

	buf := bufio.NewWriterSize(f, defaultBufferSize)
	w, err := NewWriter(buf, columns)
	if err != nil {
		return nil, errors.Join(err, f.Close())
	}

	return &File{Writer: w, file: f, buf: buf}, nil
}

// Close flushes the remaining rows and closes the file
func (f *File) Close() error {
	err := f.Flush()
	if err == nil {
		err = f.buf.Flush()
	}
	return errors.Join(err, f.file.Close())
}
