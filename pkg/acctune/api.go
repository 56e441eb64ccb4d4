// Package acctune is the embeddable entry point for running OpenACC
// autotuning searches. It wires the measurement harness, the search
// strategies, persistence and reporting together behind a small client.
package acctune

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"time"

	"github.com/google/uuid"

	"acctune/internal/config"
	"acctune/internal/dataset"
	"acctune/internal/harness"
	"acctune/internal/model"
	"acctune/internal/report"
	"acctune/internal/search"
	"acctune/internal/storage"
)

type Client struct {
	store storage.Store
	log   *slog.Logger
}

// Summary is what a finished tuning run reports back to the caller.
type Summary struct {
	RunID        string
	Best         model.Result
	PointsTested int
	Iterations   int
	// Percentile ranks the best result among a replayed dataset's
	// recorded means; it is nil for live runs and failed optima.
	Percentile *int
}

func New(storeBackend, storePath string, log *slog.Logger) (*Client, error) {
	store, err := storage.NewStore(storeBackend, storePath)
	if err != nil {
		return nil, err
	}
	return &Client{store: store, log: log}, nil
}

func (c *Client) Close() error {
	return storage.CloseIfSupported(c.store)
}

// Methods lists the available search-method identifiers.
func Methods() []string {
	return search.Methods()
}

// Runs lists stored tuning runs, newest first.
func (c *Client) Runs(ctx context.Context, limit int) ([]storage.RunRecord, error) {
	if err := c.store.Init(ctx); err != nil {
		return nil, err
	}
	return c.store.ListRuns(ctx, limit)
}

// Results returns the per-point results persisted for a run.
func (c *Client) Results(ctx context.Context, runID string) ([]model.Result, error) {
	if err := c.store.Init(ctx); err != nil {
		return nil, err
	}
	results, ok, err := c.store.GetResults(ctx, runID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("no results stored for run %s", runID)
	}
	return results, nil
}

// Tune executes one full tuning run: probe heuristics if enabled, the
// configured search strategy, reporting, and persistence.
func (c *Client) Tune(ctx context.Context, opts config.Options) (Summary, error) {
	if err := opts.Validate(search.KnownMethod); err != nil {
		return Summary{}, err
	}
	opts.Normalize()
	strategy, err := search.ForMethod(opts.SearchMethod)
	if err != nil {
		return Summary{}, err
	}

	if err := c.store.Init(ctx); err != nil {
		return Summary{}, fmt.Errorf("init store: %w", err)
	}
	runID := uuid.NewString()
	if err := c.store.SaveRun(ctx, storage.RunRecord{
		RunID:        runID,
		CreatedAtUTC: time.Now().UTC().Format(time.RFC3339),
		SearchMethod: opts.SearchMethod,
		Repetitions:  opts.Repetitions,
	}); err != nil {
		return Summary{}, fmt.Errorf("save run: %w", err)
	}

	persist := &storePersister{ctx: ctx, store: c.store, runID: runID, log: c.log}
	sink := harness.ResultSink(persist)
	if opts.WriteCSV != "" {
		w, err := dataset.NewWriter(opts.WriteCSV)
		if err != nil {
			return Summary{}, err
		}
		defer func() {
			if err := w.Close(); err != nil {
				c.log.Warn("failed to close dataset file", "path", opts.WriteCSV, "error", err)
			}
		}()
		sink = multiSink{persist, &writerSink{w: w, log: c.log}}
	}

	var runner harness.Runner
	var replayData *dataset.Dataset
	if opts.Replay() {
		replayData, err = dataset.Load(opts.Source)
		if err != nil {
			return Summary{}, err
		}
		c.log.Info("replaying dataset", "source", opts.Source, "points", replayData.Len())
		runner = &harness.ReplayRunner{Data: replayData, Log: c.log}
	} else {
		pattern, err := regexp.Compile("(?i)" + opts.TimePattern)
		if err != nil {
			return Summary{}, fmt.Errorf("invalid time regexp: %w", err)
		}
		runner = &harness.LiveRunner{
			CompileCommand: opts.CompileCommand,
			Source:         opts.Source,
			Executable:     opts.Executable,
			TimePattern:    pattern,
			KernelTiming:   opts.KernelTiming,
			IgnoreExit:     opts.IgnoreExit,
			Commands:       harness.ShellRunner{},
			Collector:      persist,
			Log:            c.log,
		}
	}

	bounds := model.Bounds{
		NumGangsMin:     opts.NumGangsMin,
		NumGangsMax:     opts.NumGangsMax,
		VectorLengthMin: opts.VectorLengthMin,
		VectorLengthMax: opts.VectorLengthMax,
	}
	eval := harness.NewEvaluator(runner, bounds, opts.Repetitions, sink)

	if opts.UseHeuristic {
		narrowed := search.NarrowBounds(ctx, eval, bounds, opts.Repetitions, c.log)
		if narrowed != bounds {
			c.log.Info("heuristic narrowed the search space",
				"num_gangs", fmt.Sprintf("[%d,%d]", narrowed.NumGangsMin, narrowed.NumGangsMax),
				"vector_length", fmt.Sprintf("[%d,%d]", narrowed.VectorLengthMin, narrowed.VectorLengthMax))
		}
		eval.Restrict(narrowed)
		bounds = narrowed
	}

	c.log.Info("starting search", "run_id", runID, "method", strategy.Name(),
		"repetitions", opts.Repetitions)
	outcome, err := strategy.Search(ctx, eval, bounds)
	if err != nil {
		return Summary{}, err
	}

	reporter := &report.Reporter{Log: c.log, Repetitions: opts.Repetitions}
	reporter.Summarize(outcome)
	if replayData != nil {
		reporter.CompareKnownBest(outcome, replayData)
	}

	if err := c.store.SaveOutcome(ctx, runID, outcome, opts.Repetitions); err != nil {
		return Summary{}, fmt.Errorf("save outcome: %w", err)
	}

	summary := Summary{
		RunID:        runID,
		Best:         outcome.Tests[outcome.Optimal],
		PointsTested: len(outcome.Tests),
		Iterations:   outcome.Iterations,
	}
	if replayData != nil && !summary.Best.Failed() {
		p := replayData.Percentile(summary.Best.Mean)
		summary.Percentile = &p
	}
	return summary, nil
}

// storePersister forwards raw timings and finished results into the
// store. Persistence failures are logged, not fatal; losing a row is
// preferable to abandoning a half-finished search.
type storePersister struct {
	ctx   context.Context
	store storage.Store
	runID string
	log   *slog.Logger
}

func (s *storePersister) LogRun(p model.Point, seconds float64) {
	if err := s.store.SaveRawRun(s.ctx, s.runID, storage.RawRun{Point: p, Seconds: seconds}); err != nil {
		s.log.Warn("failed to persist raw run", "point", p.String(), "error", err)
	}
}

func (s *storePersister) Add(r model.Result) {
	if err := s.store.SaveResult(s.ctx, s.runID, r); err != nil {
		s.log.Warn("failed to persist result", "point", r.Point.String(), "error", err)
	}
}

type writerSink struct {
	w   *dataset.Writer
	log *slog.Logger
}

func (s *writerSink) Add(r model.Result) {
	if err := s.w.Add(r); err != nil {
		s.log.Warn("failed to write dataset row", "point", r.Point.String(), "error", err)
	}
}

type multiSink []harness.ResultSink

func (m multiSink) Add(r model.Result) {
	for _, s := range m {
		s.Add(r)
	}
}

var (
	_ harness.ResultSink   = (*storePersister)(nil)
	_ harness.RunCollector = (*storePersister)(nil)
)
