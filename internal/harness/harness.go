// Package harness turns a candidate Point into a Result. It wraps the
// external compile+run+measure cycle (or a replay dataset) behind a
// cached, bound-checked Evaluate call that search strategies drive.
package harness

import (
	"context"

	"acctune/internal/model"
)

// RunCollector receives every successful repetition's raw timing as it is
// produced, independent of the point's final aggregate.
type RunCollector interface {
	LogRun(p model.Point, seconds float64)
}

// ResultSink receives every finished Result produced by a runner.
type ResultSink interface {
	Add(r model.Result)
}

// Runner measures one in-bounds point with the given repetition count.
// Implementations never cache; that is the Evaluator's job.
type Runner interface {
	Test(ctx context.Context, p model.Point, repetitions int) model.Result
}

// Evaluator is the objective function handed to search strategies. It
// owns the per-search result cache and the bound check; a point is never
// measured twice within one search.
type Evaluator struct {
	runner      Runner
	bounds      model.Bounds
	repetitions int
	sink        ResultSink
	cache       map[model.Point]model.Result
	evaluations int
}

func NewEvaluator(runner Runner, bounds model.Bounds, repetitions int, sink ResultSink) *Evaluator {
	return &Evaluator{
		runner:      runner,
		bounds:      bounds,
		repetitions: repetitions,
		sink:        sink,
		cache:       make(map[model.Point]model.Result),
	}
}

// Restrict re-binds the evaluator to narrowed bounds. It is called at most
// once, between the heuristic gate and the search strategy; the cache
// carries over so gate probes are not re-measured.
func (e *Evaluator) Restrict(bounds model.Bounds) {
	e.bounds = bounds
}

// Bounds returns the active search rectangle.
func (e *Evaluator) Bounds() model.Bounds {
	return e.bounds
}

// Evaluate measures p. Cached points are returned as-is. Out-of-bounds
// points fail with OutOfRange without touching the runner and without
// being forwarded to the result sink. Everything else runs through the
// runner with the configured repetition count, is forwarded to the sink,
// and is cached.
func (e *Evaluator) Evaluate(ctx context.Context, p model.Point) model.Result {
	if r, ok := e.cache[p]; ok {
		return r
	}
	if !e.bounds.Contains(p) {
		r := model.Failed(p, model.FailureOutOfRange, "")
		e.cache[p] = r
		return r
	}
	r := e.runner.Test(ctx, p, e.repetitions)
	e.evaluations++
	if e.sink != nil {
		e.sink.Add(r)
	}
	e.cache[p] = r
	return r
}

// Evaluations reports how many distinct points reached the runner. Cache
// hits and out-of-range short-circuits do not count.
func (e *Evaluator) Evaluations() int {
	return e.evaluations
}
