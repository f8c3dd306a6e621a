package agg

import (
	"fmt"

	"github.com/kokes/smda/bitmap"
	"github.com/kokes/smda/table"
)

// outputSchema derives the materialized result schema: the group-by
// columns first (unchanged name/dtype from the input), followed by one
// column per aggregate definition.
func outputSchema(input table.Schema, groupBy []int, aggregates []AggregateColumnDefinition) table.Schema {
	schema := make(table.Schema, 0, len(groupBy)+len(aggregates))
	for _, gi := range groupBy {
		schema = append(schema, input[gi])
	}
	for _, def := range aggregates {
		schema = append(schema, table.ColumnSchema{
			Name:  aggregateColumnName(def, input),
			Dtype: resultDtype(def, input),
		})
	}
	return schema
}

func aggregateColumnName(def AggregateColumnDefinition, schema table.Schema) string {
	if def.Function == CountStar {
		return "count_star"
	}
	return fmt.Sprintf("%s_%s", def.Function, schema[*def.Column].Name)
}

// resultDtype picks the output type for one aggregate: MIN/MAX preserve the
// input column's type, SUM widens integers to int64 and floats to double,
// AVG always produces a double, every COUNT variant produces int64.
func resultDtype(def AggregateColumnDefinition, schema table.Schema) table.Dtype {
	switch def.Function {
	case CountStar, Count, CountDistinct:
		return table.DtypeInt64
	case Avg:
		return table.DtypeDouble
	case Sum:
		dt := schema[*def.Column].Dtype
		if dt.IsInteger() {
			return table.DtypeInt64
		}
		return table.DtypeDouble
	case Min, Max:
		return schema[*def.Column].Dtype
	default:
		return table.DtypeInvalid
	}
}

// appendInt64 appends one int64 (or NULL) to an Int64Column.
func appendInt64(dst *table.Int64Column, v int64, isNull bool) {
	dst.Data = append(dst.Data, v)
	setNull(&dst.Null, len(dst.Data)-1, isNull)
}

// appendDouble appends one float64 (or NULL) to a DoubleColumn.
func appendDouble(dst *table.DoubleColumn, v float64, isNull bool) {
	dst.Data = append(dst.Data, v)
	setNull(&dst.Null, len(dst.Data)-1, isNull)
}

// appendFloat32 appends one float32 (or NULL) to a FloatColumn.
func appendFloat32(dst *table.FloatColumn, v float32, isNull bool) {
	dst.Data = append(dst.Data, v)
	setNull(&dst.Null, len(dst.Data)-1, isNull)
}

// appendInt32 appends one int32 (or NULL) to an Int32Column.
func appendInt32(dst *table.Int32Column, v int32, isNull bool) {
	dst.Data = append(dst.Data, v)
	setNull(&dst.Null, len(dst.Data)-1, isNull)
}

// appendStr appends one string (or NULL) to a StringColumn.
func appendStr(dst *table.StringColumn, v string, isNull bool) {
	dst.Data = append(dst.Data, []byte(v)...)
	dst.Offsets = append(dst.Offsets, uint32(len(dst.Data)))
	setNull(&dst.Null, len(dst.Offsets)-2, isNull)
}

// setNull lazily allocates dst's nullability bitmap - mirrors
// table.appendNull, duplicated here since aggregate result columns are
// appended to by computed value rather than by copying a source column.
func setNull(bm **bitmap.Bitmap, pos int, isNull bool) {
	if !isNull && *bm == nil {
		return
	}
	if *bm == nil {
		*bm = bitmap.NewBitmap(pos + 1)
	}
	(*bm).Set(pos, isNull)
}

// writeAggregateResult appends one group's finalized accumulator c for the
// aggregate def into the output column dst. inputIsInteger tells AVG which
// of the cell's two accumulator fields (intVal, overflow-checked, or
// floatVal) holds the running sum; SUM picks the field by dst's type.
func writeAggregateResult(dst table.Column, def AggregateColumnDefinition, c cell, inputIsInteger bool) error {
	switch def.Function {
	case CountStar, Count:
		appendInt64(dst.(*table.Int64Column), c.count, false)
		return nil
	case CountDistinct:
		appendInt64(dst.(*table.Int64Column), int64(len(c.distinct)), false)
		return nil
	case Avg:
		if c.count == 0 {
			appendDouble(dst.(*table.DoubleColumn), 0, true)
			return nil
		}
		sum := c.floatVal
		if inputIsInteger {
			sum = float64(c.intVal)
		}
		appendDouble(dst.(*table.DoubleColumn), sum/float64(c.count), false)
		return nil
	case Sum:
		if !c.hasValue {
			switch d := dst.(type) {
			case *table.Int64Column:
				appendInt64(d, 0, true)
			case *table.DoubleColumn:
				appendDouble(d, 0, true)
			}
			return nil
		}
		switch d := dst.(type) {
		case *table.Int64Column:
			appendInt64(d, c.intVal, false)
		case *table.DoubleColumn:
			appendDouble(d, c.floatVal, false)
		}
		return nil
	case Min, Max:
		return writeMinMaxResult(dst, c)
	default:
		return fmt.Errorf("%w: cannot materialize %v", ErrUnsupportedAggregate, def.Function)
	}
}

func writeMinMaxResult(dst table.Column, c cell) error {
	switch d := dst.(type) {
	case *table.Int32Column:
		appendInt32(d, int32(c.intVal), !c.hasValue)
	case *table.Int64Column:
		appendInt64(d, c.intVal, !c.hasValue)
	case *table.FloatColumn:
		appendFloat32(d, float32(c.floatVal), !c.hasValue)
	case *table.DoubleColumn:
		appendDouble(d, c.floatVal, !c.hasValue)
	case *table.StringColumn:
		appendStr(d, c.strVal, !c.hasValue)
	default:
		return fmt.Errorf("%w: min/max output on %T", ErrUnsupportedAggregate, dst)
	}
	return nil
}
