package stats

// MinMaxFilter is a degenerate range filter: a single (min, max) bound
// (§4.2). Used both as a standalone, cheaper-to-maintain statistics object
// and as the result of slicing a RangeFilter with an Equals predicate.
type MinMaxFilter[T Numeric] struct {
	min, max T
}

func (*MinMaxFilter[T]) isStatisticsObject() {}

// NewMinMax builds a MinMaxFilter directly from known bounds. min must be
// <= max (the caller, e.g. a chunk's own min/max scan, is expected to have
// established this already).
func NewMinMax[T Numeric](min, max T) *MinMaxFilter[T] {
	return &MinMaxFilter[T]{min: min, max: max}
}

func (f *MinMaxFilter[T]) Min() T { return f.min }
func (f *MinMaxFilter[T]) Max() T { return f.max }

// EstimateCardinality mirrors RangeFilter.EstimateCardinality for the
// single-range case - the same §4.1 table, specialized to one range.
func (f *MinMaxFilter[T]) EstimateCardinality(op PredicateCondition, v1 T, v2 ...T) Estimate {
	switch op {
	case Equals:
		if v1 < f.min || v1 > f.max {
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
		return MatchesApproximately
	default:
		return MatchesApproximately
	}
}

// SliceWithPredicate tightens this filter; it either returns EmptyStatistics
// or a new, narrower MinMaxFilter - it cannot grow a gap, since it only
// ever holds one range.
func (f *MinMaxFilter[T]) SliceWithPredicate(op PredicateCondition, v1 T, v2 ...T) StatisticsObject {
	switch op {
	case Equals:
		if f.EstimateCardinality(Equals, v1) == MatchesNone {
			return EmptyStatistics
		}
		return NewMinMax(v1, v1)
	case NotEquals:
		return f
	case LessThan:
		if v1 <= f.min {
			return EmptyStatistics
		}
		hi := f.max
		if bound := predecessor(v1); bound < hi {
			hi = bound
		}
		return NewMinMax(f.min, hi)
	case LessThanEquals:
		if v1 < f.min {
			return EmptyStatistics
		}
		hi := f.max
		if v1 < hi {
			hi = v1
		}
		return NewMinMax(f.min, hi)
	case GreaterThan:
		if v1 >= f.max {
			return EmptyStatistics
		}
		lo := f.min
		if bound := successor(v1); bound > lo {
			lo = bound
		}
		return NewMinMax(lo, f.max)
	case GreaterThanEquals:
		if v1 > f.max {
			return EmptyStatistics
		}
		lo := f.min
		if v1 > lo {
			lo = v1
		}
		return NewMinMax(lo, f.max)
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
		return upper.(*MinMaxFilter[T]).SliceWithPredicate(GreaterThanEquals, lo)
	default:
		return f
	}
}
