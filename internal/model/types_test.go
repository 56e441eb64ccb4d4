package model

import "testing"

func TestCompareMeasurementsByMean(t *testing.T) {
	fast := Success(Point{256, 128}, 1.0, 0.1)
	slow := Success(Point{512, 128}, 2.0, 0.1)
	if Compare(fast, slow) >= 0 {
		t.Fatalf("expected lower mean to rank better")
	}
	if Compare(slow, fast) <= 0 {
		t.Fatalf("expected higher mean to rank worse")
	}
}

func TestCompareFailureAlwaysWorse(t *testing.T) {
	slow := Success(Point{512, 128}, 1e9, 0)
	for _, kind := range []FailureKind{
		FailureOutOfRange,
		FailureCompileFailed,
		FailureExecuteFailed,
		FailureTimingDataMissing,
		FailureNoPointsTested,
	} {
		failed := Failed(Point{2, 2}, kind, "")
		if Compare(slow, failed) >= 0 {
			t.Fatalf("measurement should rank above %s failure", kind)
		}
		if Compare(failed, slow) <= 0 {
			t.Fatalf("%s failure should rank below any measurement", kind)
		}
	}
}

func TestCompareTieBreakByPoint(t *testing.T) {
	a := Success(Point{256, 128}, 1.0, 0)
	b := Success(Point{256, 256}, 1.0, 0)
	if Compare(a, b) >= 0 {
		t.Fatalf("expected lower vector_length to break the tie")
	}
	c := Failed(Point{2, 2}, FailureCompileFailed, "")
	d := Failed(Point{4, 2}, FailureExecuteFailed, "")
	if Compare(c, d) >= 0 {
		t.Fatalf("expected failures to tie-break on point")
	}
}

func TestBoundsContains(t *testing.T) {
	b := Bounds{NumGangsMin: 2, NumGangsMax: 1024, VectorLengthMin: 2, VectorLengthMax: 1024}
	cases := []struct {
		p    Point
		want bool
	}{
		{Point{2, 2}, true},
		{Point{1024, 1024}, true},
		{Point{1, 128}, false},
		{Point{128, 1}, false},
		{Point{1025, 128}, false},
		{Point{128, 1025}, false},
	}
	for _, tc := range cases {
		if got := b.Contains(tc.p); got != tc.want {
			t.Fatalf("Contains(%v)=%v, want %v", tc.p, got, tc.want)
		}
	}
}

func TestOutcomeFinalizePicksBestVisited(t *testing.T) {
	o := NewOutcome()
	o.Record(Failed(Point{2, 2}, FailureOutOfRange, ""))
	o.Record(Success(Point{512, 512}, 3.5, 0.2))
	o.Record(Success(Point{256, 128}, 1.5, 0.2))
	o.Record(Success(Point{768, 256}, 2.5, 0.2))
	o.Finalize()
	if o.Optimal != (Point{256, 128}) {
		t.Fatalf("expected optimal (256,128), got %v", o.Optimal)
	}
}

func TestOutcomeFinalizeAllFailures(t *testing.T) {
	o := NewOutcome()
	o.Record(Failed(Point{4, 2}, FailureCompileFailed, ""))
	o.Record(Failed(Point{2, 2}, FailureCompileFailed, ""))
	o.Finalize()
	if o.Optimal != (Point{2, 2}) {
		t.Fatalf("expected deterministic optimum among failures, got %v", o.Optimal)
	}
}
