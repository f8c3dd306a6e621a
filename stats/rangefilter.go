package stats

import (
	"errors"
	"sort"
)

// ErrEmptyInput is returned by Build when no values are supplied - there is
// no domain to build a filter over.
var ErrEmptyInput = errors.New("cannot build a range filter from no values")

// valueRange is a single closed range [Lo, Hi] within a filter.
type valueRange[T Numeric] struct {
	Lo, Hi T
}

// RangeFilter represents a value domain as a sorted list of disjoint closed
// ranges. Built once from a value vector and a requested range count, then
// immutable; slicing produces a new statistics object.
type RangeFilter[T Numeric] struct {
	ranges []valueRange[T]
	min    T
	max    T
}

func (*RangeFilter[T]) isStatisticsObject() {}

// Ranges returns the filter's sorted, disjoint ranges.
func (f *RangeFilter[T]) Ranges() []valueRange[T] { return append([]valueRange[T](nil), f.ranges...) }

// Min is the smallest value the filter was built over.
func (f *RangeFilter[T]) Min() T { return f.min }

// Max is the largest value the filter was built over.
func (f *RangeFilter[T]) Max() T { return f.max }

// Build constructs a RangeFilter from a value slice and a requested range
// count (§4.1). values is not mutated. maxRanges must be >= 1.
func Build[T Numeric](values []T, maxRanges int) (*RangeFilter[T], error) {
	if len(values) == 0 {
		return nil, ErrEmptyInput
	}
	if maxRanges < 1 {
		maxRanges = 1
	}

	s := append([]T(nil), values...)
	s = sortUnique(s)

	if len(s) == 1 || maxRanges == 1 {
		return &RangeFilter[T]{
			ranges: []valueRange[T]{{Lo: s[0], Hi: s[len(s)-1]}},
			min:    s[0],
			max:    s[len(s)-1],
		}, nil
	}

	type gap struct {
		idx    int // index i such that the gap sits between s[i] and s[i+1]
		length T
	}
	gaps := make([]gap, len(s)-1)
	for i := 0; i < len(s)-1; i++ {
		gaps[i] = gap{idx: i, length: s[i+1] - s[i]}
	}

	nKeep := maxRanges - 1
	if nKeep > len(gaps) {
		nKeep = len(gaps)
	}
	// take the nKeep largest gaps, breaking ties by preferring earlier indices
	sorted := append([]gap(nil), gaps...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].length != sorted[j].length {
			return sorted[i].length > sorted[j].length
		}
		return sorted[i].idx < sorted[j].idx
	})
	adopted := make(map[int]bool, nKeep)
	for _, g := range sorted[:nKeep] {
		adopted[g.idx] = true
	}

	var ranges []valueRange[T]
	start := 0
	for i := 0; i < len(s)-1; i++ {
		if adopted[i] {
			ranges = append(ranges, valueRange[T]{Lo: s[start], Hi: s[i]})
			start = i + 1
		}
	}
	ranges = append(ranges, valueRange[T]{Lo: s[start], Hi: s[len(s)-1]})

	return &RangeFilter[T]{ranges: ranges, min: s[0], max: s[len(s)-1]}, nil
}

// inGap reports whether v falls strictly inside one of the filter's gaps.
func (f *RangeFilter[T]) inGap(v T) bool {
	for i := 0; i < len(f.ranges)-1; i++ {
		if f.ranges[i].Hi < v && v < f.ranges[i+1].Lo {
			return true
		}
	}
	return false
}

// EstimateCardinality answers a pruning query for this filter (§4.1's
// table). v2 is only consulted for Between.
func (f *RangeFilter[T]) EstimateCardinality(op PredicateCondition, v1 T, v2 ...T) Estimate {
	switch op {
	case Equals:
		if v1 < f.min || v1 > f.max || f.inGap(v1) {
			return MatchesNone
		}
		return MatchesApproximately
	case NotEquals:
		return MatchesApproximately
	case LessThan:
		if v1 <= f.min {
			return MatchesNone
		}
		return MatchesApproximately
	case LessThanEquals:
		if v1 < f.min {
			return MatchesNone
		}
		return MatchesApproximately
	case GreaterThan:
		if v1 >= f.max {
			return MatchesNone
		}
		return MatchesApproximately
	case GreaterThanEquals:
		if v1 > f.max {
			return MatchesNone
		}
		return MatchesApproximately
	case Between:
		hi := v1
		lo := v1
		if len(v2) > 0 {
			hi = v2[0]
		}
		if hi < lo || hi < f.min || lo > f.max {
			return MatchesNone
		}
		for i := 0; i < len(f.ranges)-1; i++ {
			if f.ranges[i].Hi < lo && hi < f.ranges[i+1].Lo {
				return MatchesNone
			}
		}
		return MatchesApproximately
	default: // Like, NotLike, In and anything unrecognized
		return MatchesApproximately
	}
}

// SliceWithPredicate produces a refined statistics object representing the
// filter restricted to rows satisfying the predicate (§4.1's table).
func (f *RangeFilter[T]) SliceWithPredicate(op PredicateCondition, v1 T, v2 ...T) StatisticsObject {
	switch op {
	case Equals:
		if f.EstimateCardinality(Equals, v1) == MatchesNone {
			return EmptyStatistics
		}
		return NewMinMax(v1, v1)
	case NotEquals:
		return f
	case LessThan, LessThanEquals:
		bound := v1
		if op == LessThan {
			if v1 <= f.min {
				return EmptyStatistics
			}
			bound = predecessor(v1)
		} else if v1 < f.min {
			return EmptyStatistics
		}
		return f.sliceUpperBound(bound)
	case GreaterThan, GreaterThanEquals:
		bound := v1
		if op == GreaterThan {
			if v1 >= f.max {
				return EmptyStatistics
			}
			bound = successor(v1)
		} else if v1 > f.max {
			return EmptyStatistics
		}
		return f.sliceLowerBound(bound)
	case Between:
		hi := v1
		lo := v1
		if len(v2) > 0 {
			hi = v2[0]
		}
		if hi < lo {
			return EmptyStatistics
		}
		upper := f.SliceWithPredicate(LessThanEquals, hi)
		if IsEmpty(upper) {
			return EmptyStatistics
		}
		return upper.(*RangeFilter[T]).SliceWithPredicate(GreaterThanEquals, lo)
	default: // Like, NotLike, In
		return f
	}
}

// sliceUpperBound keeps all ranges with Lo <= bound, clamping the last
// kept range's Hi to bound.
func (f *RangeFilter[T]) sliceUpperBound(bound T) StatisticsObject {
	var kept []valueRange[T]
	for _, r := range f.ranges {
		if r.Lo > bound {
			break
		}
		hi := r.Hi
		if hi > bound {
			hi = bound
		}
		kept = append(kept, valueRange[T]{Lo: r.Lo, Hi: hi})
	}
	if len(kept) == 0 {
		return EmptyStatistics
	}
	return rangesToObject(kept)
}

// sliceLowerBound keeps all ranges with Hi >= bound, clamping the first
// kept range's Lo to bound.
func (f *RangeFilter[T]) sliceLowerBound(bound T) StatisticsObject {
	var kept []valueRange[T]
	for _, r := range f.ranges {
		if r.Hi < bound {
			continue
		}
		lo := r.Lo
		if lo < bound {
			lo = bound
		}
		kept = append(kept, valueRange[T]{Lo: lo, Hi: r.Hi})
	}
	if len(kept) == 0 {
		return EmptyStatistics
	}
	return rangesToObject(kept)
}

// rangesToObject wraps a non-empty, still-sorted-and-disjoint range list
// back into a RangeFilter. Unlike Equals-slicing, the LessThan/GreaterThan/
// Between family keeps returning a RangeFilter per §4.1's table even when
// only one range survives - it does not degenerate into a MinMaxFilter.
func rangesToObject[T Numeric](ranges []valueRange[T]) StatisticsObject {
	return &RangeFilter[T]{
		ranges: ranges,
		min:    ranges[0].Lo,
		max:    ranges[len(ranges)-1].Hi,
	}
}
