// Package agg implements the group-by aggregation operator: grouping a
// chunked table.InputTable by a tuple of columns and computing MIN/MAX/SUM/
// AVG/COUNT/COUNT(*)/COUNT DISTINCT per group, following the two-phase
// algorithm column.AggState's single-chunk accumulator generalizes to a
// sharded, whole-table operator (see src/column/aggregations.go).
package agg

import (
	"errors"

	"github.com/kokes/smda/table"
)

// AggregateFunction names one of the supported aggregate functions, mirroring
// the closed function set column.NewAggregator dispatches on (plus
// CountDistinct, which the teacher handles via AggState.distinct rather than
// a separate function name).
type AggregateFunction uint8

const (
	Min AggregateFunction = iota
	Max
	Sum
	Avg
	Count
	CountStar
	CountDistinct
)

func (f AggregateFunction) String() string {
	switch f {
	case Min:
		return "min"
	case Max:
		return "max"
	case Sum:
		return "sum"
	case Avg:
		return "avg"
	case Count:
		return "count"
	case CountStar:
		return "count_star"
	case CountDistinct:
		return "count_distinct"
	default:
		return "unknown"
	}
}

// AggregateColumnDefinition names one output aggregate: the input column to
// read (nil for CountStar, which reads no column) and the function to apply.
type AggregateColumnDefinition struct {
	Column   *int
	Function AggregateFunction
}

// GroupKeyEntry is the fixed-size key-vector element type the operator
// hashes/compares group-by tuples with, regardless of the underlying
// column's Dtype - carried over from the original's AggregateKeyEntry =
// uint64_t (SPEC_FULL.md §6).
type GroupKeyEntry = uint64

var (
	ErrInvalidColumn        = errors.New("aggregate column index out of range")
	ErrUnsupportedAggregate = errors.New("aggregate function does not support this column type")
	ErrOverflow             = errors.New("aggregate sum overflowed int64")
	ErrCancelled            = errors.New("aggregation cancelled")
)

// validate checks an aggregate definition against the input schema.
func (d AggregateColumnDefinition) validate(schema table.Schema) error {
	if d.Function == CountStar {
		return nil
	}
	if d.Column == nil || *d.Column < 0 || *d.Column >= len(schema) {
		return ErrInvalidColumn
	}
	dt := schema[*d.Column].Dtype
	switch d.Function {
	case Sum, Avg:
		if !dt.IsNumeric() {
			return ErrUnsupportedAggregate
		}
	case Min, Max, Count, CountDistinct:
		// every column type supports ordering/equality comparisons here
	}
	return nil
}
