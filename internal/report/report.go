// Package report summarizes a finished search: the full worst-to-best
// result listing, totals, the optimum, and in replay mode the comparison
// against the dataset's known best.
package report

import (
	"log/slog"
	"sort"

	"github.com/dustin/go-humanize"

	"acctune/internal/dataset"
	"acctune/internal/model"
	"acctune/internal/stats"
)

type Reporter struct {
	Log *slog.Logger
	// Repetitions is the configured per-point sample count, used as the
	// group size for the final significance test.
	Repetitions int
}

// ResultsWorstToBest returns the outcome's results ordered from worst to
// best, so the optimum is the last line an operator reads.
func ResultsWorstToBest(outcome model.Outcome) []model.Result {
	results := make([]model.Result, 0, len(outcome.Tests))
	for _, r := range outcome.Tests {
		results = append(results, r)
	}
	sort.Slice(results, func(i, j int) bool {
		return model.Compare(results[i], results[j]) > 0
	})
	return results
}

// Summarize logs the complete outcome.
func (r *Reporter) Summarize(outcome model.Outcome) {
	r.Log.Info("-- results --")
	for _, res := range ResultsWorstToBest(outcome) {
		r.Log.Info("result", "summary", res.String())
	}
	r.Log.Info("search finished",
		"points_tested", humanize.Comma(int64(len(outcome.Tests))),
		"iterations", humanize.Comma(int64(outcome.Iterations)))
	r.Log.Info("best result found", "result", outcome.Tests[outcome.Optimal].String())
}

// CompareKnownBest ranks the achieved optimum against the historical
// dataset: percentile among all recorded means, then a significance test
// against the known best. Degenerate statistics downgrade to a warning.
func (r *Reporter) CompareKnownBest(outcome model.Outcome, ds *dataset.Dataset) {
	known, ok := ds.KnownBest()
	if !ok {
		r.Log.Warn("dataset has no successful measurements to compare against")
		return
	}
	r.Log.Info("optimal result from test data", "result", known.String())

	best := outcome.Tests[outcome.Optimal]
	if best.Failed() {
		r.Log.Warn("best result found is a failure, nothing to compare", "result", best.String())
		return
	}
	r.Log.Info("percentile of best result", "percentile", ds.Percentile(best.Mean))

	significant, err := stats.SignificantDiff(
		known.Mean, known.Stdev, r.Repetitions,
		best.Mean, best.Stdev, r.Repetitions)
	if err != nil {
		// Zero variance or too few samples; not important enough to die.
		r.Log.Warn("unable to perform t-test", "error", err)
		return
	}
	if significant {
		r.Log.Warn("best result found differs from optimal result")
	} else {
		r.Log.Info("no statistically significant difference from known best")
	}
}
