// Package stats implements chunk-level pruning statistics: a RangeFilter
// and its degenerate MinMaxFilter form, used to decide whether a chunk can
// be skipped for a given predicate, and to slice a filter under a
// predicate into a refined statistics object.
package stats

// PredicateCondition is the closed set of comparison operators the filters
// understand.
type PredicateCondition uint8

const (
	Equals PredicateCondition = iota
	NotEquals
	LessThan
	LessThanEquals
	GreaterThan
	GreaterThanEquals
	Between
	Like
	NotLike
	In
)

func (op PredicateCondition) String() string {
	switch op {
	case Equals:
		return "="
	case NotEquals:
		return "!="
	case LessThan:
		return "<"
	case LessThanEquals:
		return "<="
	case GreaterThan:
		return ">"
	case GreaterThanEquals:
		return ">="
	case Between:
		return "between"
	case Like:
		return "like"
	case NotLike:
		return "not like"
	case In:
		return "in"
	default:
		return "unknown"
	}
}

// Flip maps a comparison op to its argument-swap equivalent (a < b  <=>  b > a).
// Like/NotLike/In/Between/NotEquals have no flip and are returned unchanged.
func Flip(op PredicateCondition) PredicateCondition {
	switch op {
	case LessThan:
		return GreaterThan
	case LessThanEquals:
		return GreaterThanEquals
	case GreaterThan:
		return LessThan
	case GreaterThanEquals:
		return LessThanEquals
	default:
		return op
	}
}

// Estimate is a pruning verdict: never a row count, just whether a chunk
// can safely be skipped.
type Estimate uint8

const (
	MatchesApproximately Estimate = iota
	MatchesNone
)
