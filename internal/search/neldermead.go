package search

import (
	"context"
	"math"
	"sort"

	"acctune/internal/harness"
	"acctune/internal/model"
)

// Nelder-Mead coefficients: the standard reflect/expand/contract/shrink
// values from the literature.
const (
	reflectCoeff  = 1.0
	expandCoeff   = 2.0
	contractCoeff = 0.5
	shrinkCoeff   = 0.5

	defaultMaxIterations = 100
)

// defaultStart seeds the simplex; the same point anchors the heuristic
// gate's baseline probe.
var defaultStart = model.Point{NumGangs: 256, VectorLength: 128}

// NelderMead runs a derivative-free simplex search over the continuous
// plane. Candidate vertices are rounded to the nearest integer pair
// before evaluation; rounded candidates outside bounds come back as
// OutOfRange (ranked worst), which repels the simplex from infeasible
// regions without special geometry.
type NelderMead struct {
	// MaxIterations caps the simplex loop; 0 means the default of 100.
	MaxIterations int
}

func (n *NelderMead) Name() string {
	return "nelder-mead"
}

type vertex struct {
	x   [2]float64
	res model.Result
}

func (n *NelderMead) Search(ctx context.Context, eval *harness.Evaluator, bounds model.Bounds) (model.Outcome, error) {
	maxIterations := n.MaxIterations
	if maxIterations <= 0 {
		maxIterations = defaultMaxIterations
	}

	outcome := model.NewOutcome()
	evaluationsBefore := eval.Evaluations()

	evalAt := func(x [2]float64) (vertex, error) {
		if err := ctx.Err(); err != nil {
			return vertex{}, err
		}
		p := model.Point{
			NumGangs:     int(math.Round(x[0])),
			VectorLength: int(math.Round(x[1])),
		}
		r := eval.Evaluate(ctx, p)
		outcome.Record(r)
		return vertex{x: x, res: r}, nil
	}

	simplex := make([]vertex, 0, 3)
	for _, x := range initialSimplex(bounds) {
		v, err := evalAt(x)
		if err != nil {
			return model.Outcome{}, err
		}
		simplex = append(simplex, v)
	}

	for iteration := 0; iteration < maxIterations; iteration++ {
		sort.SliceStable(simplex, func(i, j int) bool {
			return model.Compare(simplex[i].res, simplex[j].res) < 0
		})
		if converged(simplex) {
			break
		}
		best, second, worst := simplex[0], simplex[1], simplex[2]

		centroid := [2]float64{
			(best.x[0] + second.x[0]) / 2,
			(best.x[1] + second.x[1]) / 2,
		}
		reflected, err := evalAt(step(centroid, worst.x, -reflectCoeff))
		if err != nil {
			return model.Outcome{}, err
		}

		switch {
		case model.Compare(reflected.res, best.res) < 0:
			expanded, err := evalAt(step(centroid, reflected.x, expandCoeff))
			if err != nil {
				return model.Outcome{}, err
			}
			if model.Compare(expanded.res, reflected.res) < 0 {
				simplex[2] = expanded
			} else {
				simplex[2] = reflected
			}
		case model.Compare(reflected.res, second.res) < 0:
			simplex[2] = reflected
		default:
			contracted, err := evalAt(step(centroid, worst.x, contractCoeff))
			if err != nil {
				return model.Outcome{}, err
			}
			if model.Compare(contracted.res, worst.res) < 0 {
				simplex[2] = contracted
			} else {
				// Shrink everything toward the best vertex.
				for i := 1; i < len(simplex); i++ {
					shrunk, err := evalAt(step(best.x, simplex[i].x, shrinkCoeff))
					if err != nil {
						return model.Outcome{}, err
					}
					simplex[i] = shrunk
				}
			}
		}
	}

	// The optimum is the best result anywhere in the visited set, not the
	// simplex's surviving vertices.
	outcome.Finalize()
	outcome.Iterations = eval.Evaluations() - evaluationsBefore
	return outcome, nil
}

// step returns from + coeff*(to - from).
func step(from, to [2]float64, coeff float64) [2]float64 {
	return [2]float64{
		from[0] + coeff*(to[0]-from[0]),
		from[1] + coeff*(to[1]-from[1]),
	}
}

// initialSimplex anchors one vertex at the default start clamped into
// bounds and offsets one vertex per dimension by a quarter of that
// dimension's span (at least 1).
func initialSimplex(bounds model.Bounds) [3][2]float64 {
	gang := clampInt(defaultStart.NumGangs, bounds.NumGangsMin, bounds.NumGangsMax)
	vector := clampInt(defaultStart.VectorLength, bounds.VectorLengthMin, bounds.VectorLengthMax)

	gangStep := (bounds.NumGangsMax - bounds.NumGangsMin) / 4
	if gangStep < 1 {
		gangStep = 1
	}
	vectorStep := (bounds.VectorLengthMax - bounds.VectorLengthMin) / 4
	if vectorStep < 1 {
		vectorStep = 1
	}

	gangOffset := clampInt(gang+gangStep, bounds.NumGangsMin, bounds.NumGangsMax)
	if gangOffset == gang {
		gangOffset = clampInt(gang-gangStep, bounds.NumGangsMin, bounds.NumGangsMax)
	}
	vectorOffset := clampInt(vector+vectorStep, bounds.VectorLengthMin, bounds.VectorLengthMax)
	if vectorOffset == vector {
		vectorOffset = clampInt(vector-vectorStep, bounds.VectorLengthMin, bounds.VectorLengthMax)
	}

	return [3][2]float64{
		{float64(gang), float64(vector)},
		{float64(gangOffset), float64(vector)},
		{float64(gang), float64(vectorOffset)},
	}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// converged reports whether all three vertices round to the same point,
// at which stage the integer domain has nothing finer to offer.
func converged(simplex []vertex) bool {
	p0 := roundPoint(simplex[0].x)
	return p0 == roundPoint(simplex[1].x) && p0 == roundPoint(simplex[2].x)
}

func roundPoint(x [2]float64) model.Point {
	return model.Point{
		NumGangs:     int(math.Round(x[0])),
		VectorLength: int(math.Round(x[1])),
	}
}
