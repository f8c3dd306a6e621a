// Package table implements the chunked, column-oriented storage model that
// the aggregation operator (package agg) and the pruning filters (package
// stats) consume: typed columns grouped into fixed-width row Chunks, an
// InputTable iterating those chunks, and an OutputTable the aggregation
// operator materializes its result into.
package table

import (
	"errors"
	"fmt"
)

// Dtype names one of the closed set of column types the aggregation and
// filter cores understand. This is a deliberately narrower set than the
// full database engine would carry (no Bool/Date/Datetime) - those belong
// to the wider query engine, out of scope here.
type Dtype uint8

const (
	DtypeInvalid Dtype = iota
	DtypeInt32
	DtypeInt64
	DtypeFloat
	DtypeDouble
	DtypeString
)

func (dt Dtype) String() string {
	switch dt {
	case DtypeInt32:
		return "int32"
	case DtypeInt64:
		return "int64"
	case DtypeFloat:
		return "float"
	case DtypeDouble:
		return "double"
	case DtypeString:
		return "string"
	default:
		return "invalid"
	}
}

var errUnknownDtype = errors.New("unknown dtype")

// IsNumeric reports whether values of this type support SUM/AVG.
func (dt Dtype) IsNumeric() bool {
	switch dt {
	case DtypeInt32, DtypeInt64, DtypeFloat, DtypeDouble:
		return true
	default:
		return false
	}
}

// IsInteger reports whether values of this type are widened to int64 for SUM.
func (dt Dtype) IsInteger() bool {
	return dt == DtypeInt32 || dt == DtypeInt64
}

func validateDtype(dt Dtype) error {
	if dt == DtypeInvalid || dt >= DtypeString+1 {
		return fmt.Errorf("%w: %v", errUnknownDtype, dt)
	}
	return nil
}
