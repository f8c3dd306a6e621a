package stats

import "testing"

var s1Values = []int{-1000, 2, 3, 4, 7, 8, 10, 17, 100, 101, 102, 103, 123456}

// S1 — single range.
func TestRangeFilterSingleRange(t *testing.T) {
	f, err := Build(append([]int(nil), s1Values...), 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(f.ranges) != 1 {
		t.Fatalf("expected a single range, got %d", len(f.ranges))
	}
	if f.min != -1000 || f.max != 123456 {
		t.Fatalf("unexpected bounds: %d, %d", f.min, f.max)
	}
	if got := f.EstimateCardinality(LessThan, -1000); got != MatchesNone {
		t.Errorf("LessThan(min) = %v, want MatchesNone", got)
	}
	if got := f.EstimateCardinality(GreaterThan, 123456); got != MatchesNone {
		t.Errorf("GreaterThan(max) = %v, want MatchesNone", got)
	}
	if got := f.EstimateCardinality(Equals, 50000); got != MatchesApproximately {
		t.Errorf("Equals(50000) = %v, want MatchesApproximately", got)
	}
}

// S2 — pruning in a gap. The two largest gaps among the test values are
// 123353 (between 103 and 123456) and 1002 (between -1000 and 2); with
// max_ranges=3 those are the two adopted gaps, leaving every value between
// 2 and 103 inside one merged range.
func TestRangeFilterGapPruning(t *testing.T) {
	f, err := Build(append([]int(nil), s1Values...), 3)
	if err != nil {
		t.Fatal(err)
	}
	wantRanges := []valueRange[int]{{-1000, -1000}, {2, 103}, {123456, 123456}}
	if len(f.ranges) != len(wantRanges) {
		t.Fatalf("got %d ranges, want %d: %+v", len(f.ranges), len(wantRanges), f.ranges)
	}
	for i, r := range wantRanges {
		if f.ranges[i] != r {
			t.Fatalf("range %d = %+v, want %+v", i, f.ranges[i], r)
		}
	}
	for _, v := range s1Values {
		if got := f.EstimateCardinality(Equals, v); got != MatchesApproximately {
			t.Errorf("Equals(%d) = %v, want MatchesApproximately (original value must never be pruned)", v, got)
		}
	}
	if got := f.EstimateCardinality(Equals, -500); got != MatchesNone {
		t.Errorf("Equals(-500) = %v, want MatchesNone (falls in the -1000..2 gap)", got)
	}
	if got := f.EstimateCardinality(Equals, 50000); got != MatchesNone {
		t.Errorf("Equals(50000) = %v, want MatchesNone (falls in the 103..123456 gap)", got)
	}
	if got := f.EstimateCardinality(Equals, 50); got != MatchesApproximately {
		t.Errorf("Equals(50) = %v, want MatchesApproximately (inside merged 2..103 range)", got)
	}
}

// S3 — Between slicing.
func TestRangeFilterBetweenSlicing(t *testing.T) {
	f := &RangeFilter[int]{
		ranges: []valueRange[int]{{5, 10}, {20, 25}, {35, 100}},
		min:    5,
		max:    100,
	}
	sliced := f.SliceWithPredicate(Between, 17, 27)
	rf, ok := sliced.(*RangeFilter[int])
	if !ok {
		t.Fatalf("expected *RangeFilter, got %T", sliced)
	}
	if len(rf.ranges) != 1 || rf.ranges[0] != (valueRange[int]{20, 25}) {
		t.Fatalf("unexpected sliced ranges: %+v", rf.ranges)
	}
	if got := rf.EstimateCardinality(Equals, 22); got != MatchesApproximately {
		t.Errorf("Equals(22) on sliced filter = %v, want MatchesApproximately", got)
	}
	if got := rf.EstimateCardinality(Equals, 30); got != MatchesNone {
		t.Errorf("Equals(30) on sliced filter = %v, want MatchesNone", got)
	}
}

func TestRangeFilterEmptyInput(t *testing.T) {
	if _, err := Build([]int{}, 3); err != ErrEmptyInput {
		t.Fatalf("expected ErrEmptyInput, got %v", err)
	}
}

func TestRangeFilterInvariants(t *testing.T) {
	f, err := Build(append([]int(nil), s1Values...), 3)
	if err != nil {
		t.Fatal(err)
	}
	if f.min != f.ranges[0].Lo {
		t.Errorf("min %d != ranges[0].Lo %d", f.min, f.ranges[0].Lo)
	}
	if f.max != f.ranges[len(f.ranges)-1].Hi {
		t.Errorf("max %d != last range Hi", f.max)
	}
	for i, r := range f.ranges {
		if r.Lo > r.Hi {
			t.Errorf("range %d not lo<=hi: %+v", i, r)
		}
		if i > 0 && !(f.ranges[i-1].Hi < r.Lo) {
			t.Errorf("ranges %d and %d not strictly disjoint/ordered", i-1, i)
		}
	}
	if len(f.ranges) > 3 {
		t.Errorf("requested max_ranges=3, got %d ranges", len(f.ranges))
	}
	for _, v := range s1Values {
		if f.EstimateCardinality(Equals, v) == MatchesNone {
			t.Errorf("value %d present at build time must never be pruned", v)
		}
	}
	if f.EstimateCardinality(Equals, f.min-1) != MatchesNone {
		t.Errorf("value below min must be pruned")
	}
	if f.EstimateCardinality(Equals, f.max+1) != MatchesNone {
		t.Errorf("value above max must be pruned")
	}
}

func TestRangeFilterSliceEqualsMatchesEstimate(t *testing.T) {
	f, err := Build(append([]int(nil), s1Values...), 3)
	if err != nil {
		t.Fatal(err)
	}
	probe := []int{-2000, -1000, -500, 2, 50, 17, 103, 50000, 123456, 200000}
	for _, v := range probe {
		sliced := f.SliceWithPredicate(Equals, v)
		wantEmpty := f.EstimateCardinality(Equals, v) == MatchesNone
		if IsEmpty(sliced) != wantEmpty {
			t.Errorf("v=%d: slice empty=%v, want %v", v, IsEmpty(sliced), wantEmpty)
		}
		if !wantEmpty {
			mm, ok := sliced.(*MinMaxFilter[int])
			if !ok || mm.Min() != v || mm.Max() != v {
				t.Errorf("v=%d: expected MinMaxFilter(%d,%d), got %#v", v, v, v, sliced)
			}
		}
	}
}

func TestRangeFilterSliceBoundaryInvariants(t *testing.T) {
	f, err := Build(append([]int(nil), s1Values...), 3)
	if err != nil {
		t.Fatal(err)
	}
	if !IsEmpty(f.SliceWithPredicate(LessThan, f.min)) {
		t.Errorf("slice(LessThan, min) must be EmptyStatistics")
	}
	if !IsEmpty(f.SliceWithPredicate(GreaterThan, f.max)) {
		t.Errorf("slice(GreaterThan, max) must be EmptyStatistics")
	}
	if IsEmpty(f.SliceWithPredicate(LessThanEquals, f.min)) {
		t.Errorf("slice(LessThanEquals, min) must be non-empty")
	}
	if IsEmpty(f.SliceWithPredicate(GreaterThanEquals, f.max)) {
		t.Errorf("slice(GreaterThanEquals, max) must be non-empty")
	}
	if !IsEmpty(f.SliceWithPredicate(Between, 10, 5)) {
		t.Errorf("slice(Between, lo>hi) must be EmptyStatistics")
	}
}

func TestRangeFilterFloatPredecessor(t *testing.T) {
	f, err := Build([]float64{1.0, 2.0, 3.0, 10.0}, 2)
	if err != nil {
		t.Fatal(err)
	}
	sliced := f.SliceWithPredicate(LessThan, 3.0)
	rf, ok := sliced.(*RangeFilter[float64])
	if !ok {
		t.Fatalf("expected *RangeFilter[float64], got %T", sliced)
	}
	last := rf.ranges[len(rf.ranges)-1]
	if !(last.Hi < 3.0) {
		t.Errorf("clamped upper bound %v must be strictly less than 3.0", last.Hi)
	}
}

func TestNotEqualsNeverPrunes(t *testing.T) {
	f, err := Build(append([]int(nil), s1Values...), 3)
	if err != nil {
		t.Fatal(err)
	}
	for _, v := range []int{-2000, 50, 50000, 200000} {
		if f.EstimateCardinality(NotEquals, v) != MatchesApproximately {
			t.Errorf("NotEquals must never prune, got %v for %d", f.EstimateCardinality(NotEquals, v), v)
		}
		if f.SliceWithPredicate(NotEquals, v) != StatisticsObject(f) {
			t.Errorf("NotEquals slicing must return the same filter unchanged")
		}
	}
}
