package dataset

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"acctune/internal/model"
)

const sampleCSV = `num_gangs,vector_length,time,stdev,error msg
256,128,1.5,0.1,
512,128,1.2,0.05,
1024,128,2.0,0.2,
256,1024,,,compile_failed
`

func TestParseLookup(t *testing.T) {
	ds, err := Parse(strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if ds.Len() != 4 {
		t.Fatalf("expected 4 records, got=%d", ds.Len())
	}
	rec, ok := ds.Lookup(model.Point{NumGangs: 512, VectorLength: 128})
	if !ok {
		t.Fatal("expected (512,128) in dataset")
	}
	if rec.Time != 1.2 || rec.Stdev != 0.05 || rec.ErrMsg != "" {
		t.Fatalf("unexpected record: %+v", rec)
	}
	if _, ok := ds.Lookup(model.Point{NumGangs: 2, VectorLength: 2}); ok {
		t.Fatal("did not expect (2,2) in dataset")
	}
}

func TestParseErrorRowWithEmptyNumbers(t *testing.T) {
	ds, err := Parse(strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	rec, ok := ds.Lookup(model.Point{NumGangs: 256, VectorLength: 1024})
	if !ok {
		t.Fatal("expected error row in dataset")
	}
	if rec.ErrMsg != "compile_failed" {
		t.Fatalf("expected recorded error message, got=%q", rec.ErrMsg)
	}
}

func TestParseAggregatesProblems(t *testing.T) {
	bad := `num_gangs,time,stdev
x,1.5,0.1
256,oops,0.1
`
	_, err := Parse(strings.NewReader(bad))
	if err == nil {
		t.Fatal("expected aggregated format error")
	}
	msg := err.Error()
	for _, want := range []string{"vector_length", "error msg"} {
		if !strings.Contains(msg, want) {
			t.Fatalf("expected %q in aggregated error, got: %v", want, err)
		}
	}
}

func TestParseAggregatesRowProblems(t *testing.T) {
	bad := `num_gangs,vector_length,time,stdev,error msg
x,128,1.5,0.1,
256,128,oops,0.1,
512,128,1.2,0.05,
`
	_, err := Parse(strings.NewReader(bad))
	if err == nil {
		t.Fatal("expected aggregated row error")
	}
	msg := err.Error()
	if !strings.Contains(msg, "line 2") || !strings.Contains(msg, "line 3") {
		t.Fatalf("expected both bad lines reported, got: %v", err)
	}
}

func TestKnownBestIgnoresErrorRows(t *testing.T) {
	ds, err := Parse(strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	best, ok := ds.KnownBest()
	if !ok {
		t.Fatal("expected a known best")
	}
	if best.Point != (model.Point{NumGangs: 512, VectorLength: 128}) || best.Mean != 1.2 {
		t.Fatalf("unexpected known best: %v", best)
	}
	worst, ok := ds.KnownWorst()
	if !ok {
		t.Fatal("expected a known worst")
	}
	if worst.Point != (model.Point{NumGangs: 1024, VectorLength: 128}) {
		t.Fatalf("unexpected known worst: %v", worst)
	}
}

func TestPercentileMonotonic(t *testing.T) {
	ds, err := Parse(strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	// Success means are 1.2, 1.5, 2.0.
	cases := []struct {
		mean float64
		want int
	}{
		{1.0, 0},
		{1.2, 33},
		{1.5, 67},
		{2.0, 100},
		{9.9, 100},
	}
	prev := -1
	for _, tc := range cases {
		got := ds.Percentile(tc.mean)
		if got != tc.want {
			t.Fatalf("Percentile(%f)=%d, want=%d", tc.mean, got, tc.want)
		}
		if got < prev {
			t.Fatalf("percentile not monotonic at %f", tc.mean)
		}
		prev = got
	}
}

func TestWriterRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.csv")
	w, err := NewWriter(path)
	if err != nil {
		t.Fatalf("new writer: %v", err)
	}
	results := []model.Result{
		model.Success(model.Point{NumGangs: 256, VectorLength: 128}, 1.5, 0.1),
		model.Failed(model.Point{NumGangs: 2, VectorLength: 2}, model.FailureExecuteFailed, "exit 1"),
	}
	for _, r := range results {
		if err := w.Add(r); err != nil {
			t.Fatalf("add: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	ds, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	rec, ok := ds.Lookup(model.Point{NumGangs: 256, VectorLength: 128})
	if !ok || rec.Time != 1.5 || rec.Stdev != 0.1 {
		t.Fatalf("round trip lost measurement: %+v ok=%v", rec, ok)
	}
	rec, ok = ds.Lookup(model.Point{NumGangs: 2, VectorLength: 2})
	if !ok || rec.ErrMsg != string(model.FailureExecuteFailed) {
		t.Fatalf("round trip lost error row: %+v ok=%v", rec, ok)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.csv")); err == nil {
		t.Fatal("expected error for missing file")
	}
	if _, err := os.Stat(filepath.Join(t.TempDir(), "absent.csv")); err == nil {
		t.Fatal("load must not create the file")
	}
}
