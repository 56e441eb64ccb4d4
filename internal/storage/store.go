package storage

import (
	"context"

	"acctune/internal/model"
)

// RunRecord describes one persisted tuning run.
type RunRecord struct {
	RunID        string `json:"run_id"`
	CreatedAtUTC string `json:"created_at_utc"`
	SearchMethod string `json:"search_method"`
	Repetitions  int    `json:"repetitions"`
}

// RawRun is a single successful repetition's timing, recorded as it was
// produced and independent of the point's final aggregate.
type RawRun struct {
	Point   model.Point `json:"point"`
	Seconds float64     `json:"seconds"`
}

// Store persists everything a tuning run produces: the run itself, its
// raw repetition timings, per-point results, and the finished outcome.
type Store interface {
	Init(ctx context.Context) error
	SaveRun(ctx context.Context, run RunRecord) error
	ListRuns(ctx context.Context, limit int) ([]RunRecord, error)
	SaveRawRun(ctx context.Context, runID string, raw RawRun) error
	GetRawRuns(ctx context.Context, runID string) ([]RawRun, bool, error)
	SaveResult(ctx context.Context, runID string, result model.Result) error
	GetResults(ctx context.Context, runID string) ([]model.Result, bool, error)
	SaveOutcome(ctx context.Context, runID string, outcome model.Outcome, repetitions int) error
	GetOutcome(ctx context.Context, runID string) (model.Outcome, bool, error)
}
