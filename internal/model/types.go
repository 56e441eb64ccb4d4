package model

import "fmt"

// Point identifies one candidate (num_gangs, vector_length) configuration.
// Both values are >= 1. Points are value types and usable as map keys.
type Point struct {
	NumGangs     int `json:"num_gangs"`
	VectorLength int `json:"vector_length"`
}

func (p Point) String() string {
	return fmt.Sprintf("[num_gangs:%4d, vector_length:%4d]", p.NumGangs, p.VectorLength)
}

// FailureKind tags the reason a Point could not be measured.
type FailureKind string

const (
	FailureNone                FailureKind = ""
	FailureOutOfRange          FailureKind = "point_out_of_range"
	FailureCompileFailed       FailureKind = "compile_failed"
	FailureExecuteFailed       FailureKind = "execute_failed"
	FailureTimingDataMissing   FailureKind = "timing_data_missing"
	FailureKernelTimingMissing FailureKind = "kernel_timing_data_missing"
	FailureNoPointsTested      FailureKind = "no_points_tested"
	FailureNotInDataset        FailureKind = "not_in_dataset"
	FailureDatasetError        FailureKind = "dataset_error"
)

// Result is the outcome of evaluating one Point: either a measurement
// (Mean, Stdev) or a failure. Exactly one of the two is present.
type Result struct {
	Point   Point       `json:"point"`
	Mean    float64     `json:"mean,omitempty"`
	Stdev   float64     `json:"stdev,omitempty"`
	Failure FailureKind `json:"failure,omitempty"`
	// Detail carries diagnostics: raw process output for compile/execute
	// failures, or the recorded message for dataset errors.
	Detail string `json:"detail,omitempty"`
}

func Success(p Point, mean, stdev float64) Result {
	return Result{Point: p, Mean: mean, Stdev: stdev}
}

func Failed(p Point, kind FailureKind, detail string) Result {
	return Result{Point: p, Failure: kind, Detail: detail}
}

func (r Result) Failed() bool {
	return r.Failure != FailureNone
}

func (r Result) String() string {
	if r.Failed() {
		return fmt.Sprintf("%s FAILED (%s)", r.Point, r.Failure)
	}
	return fmt.Sprintf("%s %f ± %f", r.Point, r.Mean, r.Stdev)
}

// Compare orders Results from best to worst: any measurement ranks above
// any failure, measurements rank by mean ascending. Ties (including any
// two failures) break on lower NumGangs, then lower VectorLength, so the
// reported optimum is deterministic. Returns a negative value when a is
// better than b, positive when worse, zero when equal.
func Compare(a, b Result) int {
	switch {
	case !a.Failed() && b.Failed():
		return -1
	case a.Failed() && !b.Failed():
		return 1
	case !a.Failed() && !b.Failed():
		if a.Mean < b.Mean {
			return -1
		}
		if a.Mean > b.Mean {
			return 1
		}
	}
	if c := a.Point.NumGangs - b.Point.NumGangs; c != 0 {
		return c
	}
	return a.Point.VectorLength - b.Point.VectorLength
}

// Bounds is the inclusive search rectangle. Mins are > 0.
type Bounds struct {
	NumGangsMin     int
	NumGangsMax     int
	VectorLengthMin int
	VectorLengthMax int
}

func (b Bounds) Contains(p Point) bool {
	return p.NumGangs >= b.NumGangsMin && p.NumGangs <= b.NumGangsMax &&
		p.VectorLength >= b.VectorLengthMin && p.VectorLength <= b.VectorLengthMax
}

// Outcome is the complete record of one search run.
type Outcome struct {
	// Tests holds every point the strategy evaluated, keyed uniquely.
	Tests map[Point]Result
	// Optimal is the best-ranked key in Tests.
	Optimal Point
	// Iterations counts objective evaluations per strategy semantics:
	// every enumerated cell for exhaustive search, distinct runner
	// evaluations for simplex search.
	Iterations int
}

func NewOutcome() Outcome {
	return Outcome{Tests: make(map[Point]Result)}
}

// Record stores a result under its point.
func (o *Outcome) Record(r Result) {
	o.Tests[r.Point] = r
}

// Finalize selects the optimum among all recorded results.
func (o *Outcome) Finalize() {
	first := true
	var best Result
	for _, r := range o.Tests {
		if first || Compare(r, best) < 0 {
			best = r
			first = false
		}
	}
	o.Optimal = best.Point
}
