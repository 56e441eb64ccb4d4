// Package dataset loads and writes the tuner's tabular result format:
// CSV rows of (num_gangs, vector_length, time, stdev, error msg). Files
// written by a live run are loadable as replay datasets.
package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"

	"acctune/internal/model"
)

var columns = []string{"num_gangs", "vector_length", "time", "stdev", "error msg"}

// Record is one historical row. An empty ErrMsg means the row is a
// successful measurement; error rows may leave Time/Stdev at zero.
type Record struct {
	Point  model.Point
	Time   float64
	Stdev  float64
	ErrMsg string
}

// Dataset is an immutable set of historical records with precomputed
// rankings over its successful measurements.
type Dataset struct {
	records map[model.Point]Record
	// times holds the success means sorted ascending.
	times []float64
	best  Record
	worst Record
}

// Load reads a dataset file. Schema and row errors are aggregated over the
// whole file into a single error rather than failing on the first row.
func Load(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset %s: %w", path, err)
	}
	defer f.Close()

	ds, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("dataset %s: %w", path, err)
	}
	return ds, nil
}

// Parse reads dataset rows from r.
func Parse(r io.Reader) (*Dataset, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(name)] = i
	}

	var problems []string
	for _, name := range columns {
		if _, ok := index[name]; !ok {
			problems = append(problems, fmt.Sprintf("missing column %q", name))
		}
	}
	if len(problems) > 0 {
		return nil, fmt.Errorf("invalid dataset format: %s", strings.Join(problems, "; "))
	}

	ds := &Dataset{records: make(map[model.Point]Record)}
	line := 1
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			problems = append(problems, fmt.Sprintf("line %d: %v", line, err))
			continue
		}
		rec, rowProblems := parseRow(row, index, line)
		if len(rowProblems) > 0 {
			problems = append(problems, rowProblems...)
			continue
		}
		ds.records[rec.Point] = rec
	}
	if len(problems) > 0 {
		return nil, fmt.Errorf("invalid dataset format: %s", strings.Join(problems, "; "))
	}

	ds.rank()
	return ds, nil
}

func parseRow(row []string, index map[string]int, line int) (Record, []string) {
	var problems []string
	field := func(name string) string {
		i := index[name]
		if i >= len(row) {
			problems = append(problems, fmt.Sprintf("line %d: missing field %q", line, name))
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	parseInt := func(name string) int {
		raw := field(name)
		v, err := strconv.Atoi(raw)
		if err != nil {
			problems = append(problems, fmt.Sprintf("line %d: invalid %s %q", line, name, raw))
		}
		return v
	}

	rec := Record{
		Point: model.Point{
			NumGangs:     parseInt("num_gangs"),
			VectorLength: parseInt("vector_length"),
		},
		ErrMsg: field("error msg"),
	}

	// Success rows must carry numbers; error rows may leave them empty.
	parseFloat := func(name string) float64 {
		raw := field(name)
		if raw == "" && rec.ErrMsg != "" {
			return 0
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			problems = append(problems, fmt.Sprintf("line %d: invalid %s %q", line, name, raw))
		}
		return v
	}
	rec.Time = parseFloat("time")
	rec.Stdev = parseFloat("stdev")

	return rec, problems
}

func (d *Dataset) rank() {
	first := true
	for _, rec := range d.records {
		if rec.ErrMsg != "" {
			continue
		}
		d.times = append(d.times, rec.Time)
		if first {
			d.best, d.worst = rec, rec
			first = false
			continue
		}
		if rec.Time < d.best.Time {
			d.best = rec
		}
		if rec.Time > d.worst.Time {
			d.worst = rec
		}
	}
	sort.Float64s(d.times)
}

// Lookup returns the record for p, if any.
func (d *Dataset) Lookup(p model.Point) (Record, bool) {
	rec, ok := d.records[p]
	return rec, ok
}

// Len reports the number of loaded records, errors included.
func (d *Dataset) Len() int {
	return len(d.records)
}

// KnownBest returns the lowest-time successful record as a Result.
func (d *Dataset) KnownBest() (model.Result, bool) {
	if len(d.times) == 0 {
		return model.Result{}, false
	}
	return model.Success(d.best.Point, d.best.Time, d.best.Stdev), true
}

// KnownWorst returns the highest-time successful record as a Result.
func (d *Dataset) KnownWorst() (model.Result, bool) {
	if len(d.times) == 0 {
		return model.Result{}, false
	}
	return model.Success(d.worst.Point, d.worst.Time, d.worst.Stdev), true
}

// Percentile ranks mean among the dataset's success means: the rounded
// percentage of historical measurements at or below it. Monotonic in mean.
func (d *Dataset) Percentile(mean float64) int {
	if len(d.times) == 0 {
		return 0
	}
	count := sort.SearchFloat64s(d.times, math.Nextafter(mean, math.Inf(1)))
	return int(math.Round(float64(count) / float64(len(d.times)) * 100))
}
