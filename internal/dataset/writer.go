package dataset

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"acctune/internal/model"
)

// Writer appends finished Results to a CSV file in the dataset column
// format, flushing after each row so a crashed search still leaves a
// usable file behind.
type Writer struct {
	f *os.File
	w *csv.Writer
}

// NewWriter creates (or truncates) a dataset file and writes the header.
func NewWriter(path string) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create dataset %s: %w", path, err)
	}
	w := csv.NewWriter(f)
	if err := w.Write(columns); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("write dataset header: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("write dataset header: %w", err)
	}
	return &Writer{f: f, w: w}, nil
}

// Add writes one result row.
func (w *Writer) Add(r model.Result) error {
	row := []string{
		strconv.Itoa(r.Point.NumGangs),
		strconv.Itoa(r.Point.VectorLength),
		"",
		"",
		string(r.Failure),
	}
	if !r.Failed() {
		row[2] = strconv.FormatFloat(r.Mean, 'f', -1, 64)
		row[3] = strconv.FormatFloat(r.Stdev, 'f', -1, 64)
	}
	if err := w.w.Write(row); err != nil {
		return fmt.Errorf("write dataset row: %w", err)
	}
	w.w.Flush()
	return w.w.Error()
}

func (w *Writer) Close() error {
	w.w.Flush()
	if err := w.w.Error(); err != nil {
		_ = w.f.Close()
		return err
	}
	return w.f.Close()
}
