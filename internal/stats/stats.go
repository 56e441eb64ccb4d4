// Package stats holds the numeric helpers the tuner depends on: sample
// aggregation for repeated timings and the Welch two-sample test used by
// the pre-search heuristic and the final known-best comparison.
package stats

import (
	"errors"
	"fmt"
	"math"
)

// Mean returns the arithmetic mean of values.
func Mean(values []float64) (float64, error) {
	if len(values) == 0 {
		return 0, errors.New("values must not be empty")
	}
	sum := 0.0
	for _, value := range values {
		sum += value
	}
	return sum / float64(len(values)), nil
}

// SampleStdDev returns the sample standard deviation (n-1 denominator).
// A single sample has standard deviation 0.
func SampleStdDev(values []float64) (float64, error) {
	mean, err := Mean(values)
	if err != nil {
		return 0, err
	}
	if len(values) == 1 {
		return 0, nil
	}
	sum := 0.0
	for _, value := range values {
		diff := value - mean
		sum += diff * diff
	}
	return math.Sqrt(sum / float64(len(values)-1)), nil
}

const significanceLevel = 0.05

// SignificantDiff reports whether two sample groups, each described by
// (mean, sample stdev, n), differ significantly at the 5% level under
// Welch's unequal-variance t-test. Degenerate inputs (n < 2 on either
// side, or zero variance in both groups) are an error; callers decide
// whether that aborts or merely skips the comparison.
func SignificantDiff(mean1, stdev1 float64, n1 int, mean2, stdev2 float64, n2 int) (bool, error) {
	if n1 < 2 || n2 < 2 {
		return false, fmt.Errorf("need at least 2 samples per group, got %d and %d", n1, n2)
	}
	v1 := stdev1 * stdev1 / float64(n1)
	v2 := stdev2 * stdev2 / float64(n2)
	if v1+v2 == 0 {
		return false, errors.New("zero variance in both groups")
	}
	t := (mean1 - mean2) / math.Sqrt(v1+v2)

	// Welch-Satterthwaite degrees of freedom.
	df := (v1 + v2) * (v1 + v2) /
		(v1*v1/float64(n1-1) + v2*v2/float64(n2-1))

	p := 2 * (1 - studentTCDF(math.Abs(t), df))
	return p < significanceLevel, nil
}

// studentTCDF evaluates the CDF of Student's t distribution at t > 0 via
// the regularized incomplete beta function: P(T <= t) = 1 - I_x(df/2, 1/2)/2
// with x = df / (df + t^2).
func studentTCDF(t, df float64) float64 {
	if t == 0 {
		return 0.5
	}
	x := df / (df + t*t)
	return 1 - 0.5*regIncBeta(df/2, 0.5, x)
}

// regIncBeta computes the regularized incomplete beta function I_x(a, b)
// with the continued-fraction expansion (Lentz's method).
func regIncBeta(a, b, x float64) float64 {
	if x <= 0 {
		return 0
	}
	if x >= 1 {
		return 1
	}
	lbeta := lgamma(a) + lgamma(b) - lgamma(a+b)
	front := math.Exp(a*math.Log(x) + b*math.Log(1-x) - lbeta)
	// The continued fraction converges quickly only for
	// x < (a+1)/(a+b+2); use the symmetry relation otherwise.
	if x > (a+1)/(a+b+2) {
		return 1 - regIncBeta(b, a, 1-x)
	}

	const (
		maxIterations = 200
		epsilon       = 1e-14
		tiny          = 1e-300
	)
	c := 1.0
	d := 1 - (a+b)*x/(a+1)
	if math.Abs(d) < tiny {
		d = tiny
	}
	d = 1 / d
	result := d
	for m := 1; m <= maxIterations; m++ {
		fm := float64(m)
		// Even step.
		numerator := fm * (b - fm) * x / ((a + 2*fm - 1) * (a + 2*fm))
		d = 1 + numerator*d
		if math.Abs(d) < tiny {
			d = tiny
		}
		d = 1 / d
		c = 1 + numerator/c
		if math.Abs(c) < tiny {
			c = tiny
		}
		result *= d * c
		// Odd step.
		numerator = -(a + fm) * (a + b + fm) * x / ((a + 2*fm) * (a + 2*fm + 1))
		d = 1 + numerator*d
		if math.Abs(d) < tiny {
			d = tiny
		}
		d = 1 / d
		c = 1 + numerator/c
		if math.Abs(c) < tiny {
			c = tiny
		}
		delta := d * c
		result *= delta
		if math.Abs(delta-1) < epsilon {
			break
		}
	}
	return front * result / a
}

func lgamma(x float64) float64 {
	v, _ := math.Lgamma(x)
	return v
}
