package stats

// StatisticsObject is the tagged union a filter produces: a RangeFilter[T],
// a MinMaxFilter[T], or EmptyStatistics. Consumers downcast to the variant
// they understand; an unrecognized variant is simply "cannot prune".
type StatisticsObject interface {
	isStatisticsObject()
}

// emptyStatistics signals that a predicate prunes the entire domain.
type emptyStatistics struct{}

func (emptyStatistics) isStatisticsObject() {}

// EmptyStatistics is the distinguished value signalling "this predicate
// prunes the entire domain".
var EmptyStatistics StatisticsObject = emptyStatistics{}

// IsEmpty reports whether obj is the EmptyStatistics sentinel.
func IsEmpty(obj StatisticsObject) bool {
	_, ok := obj.(emptyStatistics)
	return ok
}
