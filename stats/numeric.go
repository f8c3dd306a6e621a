package stats

import (
	"math"
	"sort"

	"golang.org/x/exp/constraints"
)

// Numeric is the set of ordered types the filters are parametrized over:
// every Go integer and floating-point type. The Int32, Int64, Float and
// Double DataType tags map to int32/int64/float32/float64.
type Numeric interface {
	constraints.Integer | constraints.Float
}

// predecessor returns the largest representable value strictly less than v
// - v-1 for integers, the next representable float towards -Inf otherwise
// (the Go stdlib equivalent of nexttoward, per SPEC_FULL.md §5.1's mandate
// that slicing be symmetric and total).
func predecessor[T Numeric](v T) T {
	switch x := any(v).(type) {
	case float32:
		return T(math.Nextafter32(x, float32(math.Inf(-1))))
	case float64:
		return T(math.Nextafter(x, math.Inf(-1)))
	default:
		return v - 1
	}
}

// successor is predecessor's mirror image, used for the GreaterThan family.
func successor[T Numeric](v T) T {
	switch x := any(v).(type) {
	case float32:
		return T(math.Nextafter32(x, float32(math.Inf(1))))
	case float64:
		return T(math.Nextafter(x, math.Inf(1)))
	default:
		return v + 1
	}
}

// sortUnique sorts values ascending and removes duplicates in place,
// returning the deduplicated slice.
func sortUnique[T Numeric](values []T) []T {
	sort.Slice(values, func(i, j int) bool { return values[i] < values[j] })
	out := values[:0]
	var prev T
	first := true
	for _, v := range values {
		if first || v != prev {
			out = append(out, v)
			prev = v
			first = false
		}
	}
	return out
}
