package search

import (
	"context"
	"log/slog"

	"acctune/internal/harness"
	"acctune/internal/model"
	"acctune/internal/stats"
)

// Fixed probes: both dimensions at baseline, gang count increased, and
// vector length increased.
var (
	probeBaseline = model.Point{NumGangs: 256, VectorLength: 128}
	probeGangs    = model.Point{NumGangs: 1024, VectorLength: 128}
	probeVector   = model.Point{NumGangs: 256, VectorLength: 1024}
)

// NarrowBounds decides per dimension whether tuning is worth a search.
// Three probes are measured with the full repetition count; a dimension
// whose increased probe is not significantly different from the baseline
// has its bounds collapsed to the baseline value. The narrowed bounds are
// returned; nothing is mutated in place.
//
// Degenerate cases skip the test and leave both dimensions tuning-worthy:
// a single repetition, a failed probe, or any probe with zero standard
// deviation.
func NarrowBounds(ctx context.Context, eval *harness.Evaluator, bounds model.Bounds, repetitions int, log *slog.Logger) model.Bounds {
	log.Info("running t-test heuristic")
	baseline := eval.Evaluate(ctx, probeBaseline)
	gangs := eval.Evaluate(ctx, probeGangs)
	vector := eval.Evaluate(ctx, probeVector)

	if repetitions == 1 ||
		baseline.Failed() || gangs.Failed() || vector.Failed() ||
		baseline.Stdev == 0 || gangs.Stdev == 0 || vector.Stdev == 0 {
		log.Info("heuristic inconclusive, tuning both dimensions")
		return bounds
	}

	tuneGangs, err := stats.SignificantDiff(
		baseline.Mean, baseline.Stdev, repetitions,
		gangs.Mean, gangs.Stdev, repetitions)
	if err != nil {
		log.Warn("unable to run t-test heuristic", "error", err)
		return bounds
	}
	tuneVector, err := stats.SignificantDiff(
		baseline.Mean, baseline.Stdev, repetitions,
		vector.Mean, vector.Stdev, repetitions)
	if err != nil {
		log.Warn("unable to run t-test heuristic", "error", err)
		return bounds
	}

	log.Info("t-test heuristic result",
		"num_gangs_needs_tuning", tuneGangs,
		"vector_length_needs_tuning", tuneVector)

	if !tuneGangs {
		bounds.NumGangsMin = probeBaseline.NumGangs
		bounds.NumGangsMax = probeBaseline.NumGangs
	}
	if !tuneVector {
		bounds.VectorLengthMin = probeBaseline.VectorLength
		bounds.VectorLengthMax = probeBaseline.VectorLength
	}
	return bounds
}
