package stats

import (
	"math"
	"testing"
)

func TestMean(t *testing.T) {
	got, err := Mean([]float64{1, 2, 3, 4})
	if err != nil {
		t.Fatalf("mean: %v", err)
	}
	if got != 2.5 {
		t.Fatalf("expected mean=2.5, got=%f", got)
	}
	if _, err := Mean(nil); err == nil {
		t.Fatal("expected error for empty input")
	}
}

func TestSampleStdDevSingleSampleIsZero(t *testing.T) {
	got, err := SampleStdDev([]float64{3.14})
	if err != nil {
		t.Fatalf("stdev: %v", err)
	}
	if got != 0 {
		t.Fatalf("expected stdev=0 for n=1, got=%f", got)
	}
}

func TestSampleStdDevBesselCorrection(t *testing.T) {
	// Sum of squared deviations from mean 5 is 8, n-1 = 3.
	got, err := SampleStdDev([]float64{3, 5, 5, 7})
	if err != nil {
		t.Fatalf("stdev: %v", err)
	}
	want := math.Sqrt(8.0 / 3.0)
	if math.Abs(got-want) > 1e-12 {
		t.Fatalf("expected stdev=%f, got=%f", want, got)
	}
}

func TestSignificantDiffClearSeparation(t *testing.T) {
	sig, err := SignificantDiff(10, 1, 10, 12, 1, 10)
	if err != nil {
		t.Fatalf("t-test: %v", err)
	}
	if !sig {
		t.Fatal("expected clearly separated groups to be significant")
	}
}

func TestSignificantDiffOverlappingGroups(t *testing.T) {
	sig, err := SignificantDiff(10, 1, 10, 10.2, 1, 10)
	if err != nil {
		t.Fatalf("t-test: %v", err)
	}
	if sig {
		t.Fatal("expected overlapping groups to be non-significant")
	}
}

func TestSignificantDiffDegenerateInputs(t *testing.T) {
	if _, err := SignificantDiff(1, 1, 1, 2, 1, 10); err == nil {
		t.Fatal("expected error for n=1 group")
	}
	if _, err := SignificantDiff(1, 1, 10, 2, 1, 0); err == nil {
		t.Fatal("expected error for n=0 group")
	}
	if _, err := SignificantDiff(1, 0, 10, 2, 0, 10); err == nil {
		t.Fatal("expected error for zero variance in both groups")
	}
}

func TestStudentTCDFReferenceValues(t *testing.T) {
	cases := []struct {
		t, df, want float64
	}{
		{0, 10, 0.5},
		// Critical values of the two-tailed 5% test: CDF = 0.975.
		{2.228, 10, 0.975},
		{2.086, 20, 0.975},
		{1.96, 1e6, 0.975},
	}
	for _, tc := range cases {
		got := studentTCDF(tc.t, tc.df)
		if math.Abs(got-tc.want) > 5e-4 {
			t.Fatalf("studentTCDF(%f, %f)=%f, want~%f", tc.t, tc.df, got, tc.want)
		}
	}
}
