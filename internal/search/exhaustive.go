package search

import (
	"context"
	"fmt"

	"acctune/internal/harness"
	"acctune/internal/model"
)

// Exhaustive enumerates every multiple of Step inside the bounds,
// crossing gang multiples with vector multiples, and evaluates each cell
// exactly once. Iterations counts every enumerated cell, including cells
// the heuristic gate already measured.
type Exhaustive struct {
	Step int
}

func (e *Exhaustive) Name() string {
	return fmt.Sprintf("exhaustive%d", e.Step)
}

func (e *Exhaustive) Search(ctx context.Context, eval *harness.Evaluator, bounds model.Bounds) (model.Outcome, error) {
	gangs := stepValues(e.Step, bounds.NumGangsMin, bounds.NumGangsMax)
	vectors := stepValues(e.Step, bounds.VectorLengthMin, bounds.VectorLengthMax)
	return enumerate(ctx, eval, gangs, vectors, e.Name())
}

// stepValues returns max(step*m, 1) for every multiple m in
// ceil(min/step) .. floor(max/step). The floor at 1 guarantees a valid
// point even for degenerate inputs.
func stepValues(step, min, max int) []int {
	lo := (min + step - 1) / step
	hi := max / step
	var values []int
	for m := lo; m <= hi; m++ {
		v := step * m
		if v < 1 {
			v = 1
		}
		values = append(values, v)
	}
	return values
}

// ExhaustivePow2 enumerates the powers of two inside the bounds instead
// of fixed multiples.
type ExhaustivePow2 struct{}

func (ExhaustivePow2) Name() string {
	return "exhaustive-pow2"
}

func (ExhaustivePow2) Search(ctx context.Context, eval *harness.Evaluator, bounds model.Bounds) (model.Outcome, error) {
	gangs := pow2Values(bounds.NumGangsMin, bounds.NumGangsMax)
	vectors := pow2Values(bounds.VectorLengthMin, bounds.VectorLengthMax)
	return enumerate(ctx, eval, gangs, vectors, "exhaustive-pow2")
}

func pow2Values(min, max int) []int {
	var values []int
	for v := 1; v <= max; v *= 2 {
		if v >= min {
			values = append(values, v)
		}
	}
	return values
}

func enumerate(ctx context.Context, eval *harness.Evaluator, gangs, vectors []int, name string) (model.Outcome, error) {
	if len(gangs) == 0 || len(vectors) == 0 {
		return model.Outcome{}, fmt.Errorf("%s enumerates no points within bounds", name)
	}
	outcome := model.NewOutcome()
	for _, g := range gangs {
		for _, v := range vectors {
			if err := ctx.Err(); err != nil {
				return model.Outcome{}, err
			}
			p := model.Point{NumGangs: g, VectorLength: v}
			outcome.Record(eval.Evaluate(ctx, p))
			outcome.Iterations++
		}
	}
	outcome.Finalize()
	return outcome, nil
}
