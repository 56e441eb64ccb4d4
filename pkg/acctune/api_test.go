package acctune

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"acctune/internal/config"
	"acctune/internal/dataset"
	"acctune/internal/model"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// gridCSV records a full 32-step grid over [32,64]^2 with a clear
// optimum at (64,32).
const gridCSV = `num_gangs,vector_length,time,stdev,error msg
32,32,4.0,0.1,
32,64,3.0,0.1,
64,32,1.0,0.1,
64,64,2.0,0.1,
`

func writeDataset(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "history.csv")
	if err := os.WriteFile(path, []byte(gridCSV), 0o644); err != nil {
		t.Fatalf("write dataset: %v", err)
	}
	return path
}

func replayOptions(t *testing.T) config.Options {
	opts := config.Defaults()
	opts.Source = writeDataset(t)
	opts.SearchMethod = "exhaustive32"
	opts.NumGangsMin, opts.NumGangsMax = 32, 64
	opts.VectorLengthMin, opts.VectorLengthMax = 32, 64
	return opts
}

func TestTuneReplayFindsOptimum(t *testing.T) {
	client, err := New("memory", "", discardLogger())
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	defer client.Close()

	summary, err := client.Tune(context.Background(), replayOptions(t))
	if err != nil {
		t.Fatalf("tune: %v", err)
	}
	if summary.Best.Point != (model.Point{NumGangs: 64, VectorLength: 32}) {
		t.Fatalf("expected optimum (64,32), got %v", summary.Best.Point)
	}
	if summary.PointsTested != 4 || summary.Iterations != 4 {
		t.Fatalf("expected full grid covered, got %+v", summary)
	}
	if summary.Percentile == nil || *summary.Percentile != 25 {
		t.Fatalf("expected percentile 25, got %v", summary.Percentile)
	}
}

func TestTunePersistsRunAndResults(t *testing.T) {
	client, err := New("memory", "", discardLogger())
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	defer client.Close()

	ctx := context.Background()
	summary, err := client.Tune(ctx, replayOptions(t))
	if err != nil {
		t.Fatalf("tune: %v", err)
	}

	runs, err := client.Runs(ctx, 10)
	if err != nil {
		t.Fatalf("runs: %v", err)
	}
	if len(runs) != 1 || runs[0].RunID != summary.RunID {
		t.Fatalf("expected the run listed, got %+v", runs)
	}
	if runs[0].SearchMethod != "exhaustive32" || runs[0].Repetitions != 10 {
		t.Fatalf("unexpected run record: %+v", runs[0])
	}

	results, err := client.Results(ctx, summary.RunID)
	if err != nil {
		t.Fatalf("results: %v", err)
	}
	if len(results) != 4 {
		t.Fatalf("expected 4 persisted results, got=%d", len(results))
	}
}

func TestTuneWritesCSV(t *testing.T) {
	client, err := New("memory", "", discardLogger())
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	defer client.Close()

	opts := replayOptions(t)
	opts.WriteCSV = filepath.Join(t.TempDir(), "out.csv")
	if _, err := client.Tune(context.Background(), opts); err != nil {
		t.Fatalf("tune: %v", err)
	}

	ds, err := dataset.Load(opts.WriteCSV)
	if err != nil {
		t.Fatalf("load written dataset: %v", err)
	}
	if ds.Len() != 4 {
		t.Fatalf("expected 4 rows written, got=%d", ds.Len())
	}
	best, ok := ds.KnownBest()
	if !ok || best.Point != (model.Point{NumGangs: 64, VectorLength: 32}) {
		t.Fatalf("unexpected best written: ok=%v %+v", ok, best)
	}
}

func TestTuneRejectsInvalidOptions(t *testing.T) {
	client, err := New("memory", "", discardLogger())
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	defer client.Close()

	opts := config.Defaults()
	if _, err := client.Tune(context.Background(), opts); err == nil || !strings.Contains(err.Error(), "source") {
		t.Fatalf("expected validation error for missing source, got: %v", err)
	}
}

func TestMethodsExposed(t *testing.T) {
	methods := Methods()
	if len(methods) == 0 {
		t.Fatal("expected at least one method")
	}
	found := false
	for _, m := range methods {
		if m == "nelder-mead" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected nelder-mead in %v", methods)
	}
}
