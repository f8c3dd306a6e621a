package agg

import (
	"fmt"
	"math"
	"sync"

	"github.com/kokes/smda/table"
)

// cell holds one group's running accumulator for one aggregate column.
// Which fields are meaningful depends on the aggregate's Function/Dtype
// pairing, mirroring column.AggState's per-type storage slices generalized
// to a single struct per (group, aggregate) instead of parallel slices -
// simpler to shard, at the cost of a little more memory per cell.
type cell struct {
	count     int64
	hasValue  bool
	intVal    int64
	floatVal  float64
	strVal    string
	distinct  map[any]bool
}

// shard owns an exclusive slice of the group space: its own index from
// group key to a dense group id, and, per aggregate column, a parallel
// slice of cells. Two different keys are guaranteed (by shardFor) to never
// collide across shards, so shards never need to coordinate with each
// other - the "union is trivial" property from the two-phase design
// (SPEC_FULL.md §5.3).
type shard struct {
	mu         sync.Mutex
	index      map[any]int
	exampleRow []table.RowID
	cells      [][]cell // cells[aggIdx][groupIdx]
}

func newShard(numAggs int) *shard {
	return &shard{
		index: make(map[any]int),
		cells: make([][]cell, numAggs),
	}
}

// groupIndex returns the dense group id for key within this shard,
// allocating a fresh group (and growing every aggregate's cell slice) on
// first sight. rowID is recorded as that group's example row, used later to
// materialize the group-by columns of the output by back-reference.
func (s *shard) groupIndex(key any, rowID table.RowID) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if idx, ok := s.index[key]; ok {
		return idx
	}
	idx := len(s.exampleRow)
	s.index[key] = idx
	s.exampleRow = append(s.exampleRow, rowID)
	for a := range s.cells {
		s.cells[a] = append(s.cells[a], cell{})
	}
	return idx
}

// update applies one row's value to group idx's accumulator for aggregate a,
// under the shard's lock (the caller has already resolved idx via
// groupIndex, so this never grows the slices).
func (s *shard) update(a, idx int, def AggregateColumnDefinition, col table.Column, row int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := &s.cells[a][idx]

	if def.Function == CountStar {
		c.count++
		return nil
	}
	if col.IsNull(row) {
		return nil // NULLs are excluded from every aggregate but count_star
	}
	c.count++

	switch def.Function {
	case Count:
		return nil
	case CountDistinct:
		if c.distinct == nil {
			c.distinct = make(map[any]bool)
		}
		c.distinct[distinctKey(col, row)] = true
		return nil
	case Min, Max:
		return updateMinMax(c, def.Function, col, row)
	case Sum, Avg:
		return updateSum(c, col, row)
	default:
		return fmt.Errorf("%w: %v", ErrUnsupportedAggregate, def.Function)
	}
}

// distinctKey returns a comparable value for row's value in col, used to key
// CountDistinct's seen-set. Integers and floats are keyed by their raw bit
// pattern, an injective mapping (matches AggState.seen's raw-bits keys in
// src/column/aggregations.go) so no two distinct values ever collide;
// strings are keyed by their own content rather than a hash of it, since a
// hash digest could collide and silently undercount (spec.md §9 requires
// COUNT DISTINCT's default path to stay exact).
func distinctKey(col table.Column, row int) any {
	switch c := col.(type) {
	case *table.Int32Column:
		return uint64(c.Data[row])
	case *table.Int64Column:
		return uint64(c.Data[row])
	case *table.FloatColumn:
		return uint64(math.Float32bits(c.Data[row]))
	case *table.DoubleColumn:
		return math.Float64bits(c.Data[row])
	case *table.StringColumn:
		v, _ := c.Value(row)
		return v
	default:
		panic("agg: distinctKey called on an unsupported column type")
	}
}

func updateMinMax(c *cell, fn AggregateFunction, col table.Column, row int) error {
	switch v := col.(type) {
	case *table.Int32Column:
		return updateOrderedInt(c, fn, int64(v.Data[row]))
	case *table.Int64Column:
		return updateOrderedInt(c, fn, v.Data[row])
	case *table.FloatColumn:
		return updateOrderedFloat(c, fn, float64(v.Data[row]))
	case *table.DoubleColumn:
		return updateOrderedFloat(c, fn, v.Data[row])
	case *table.StringColumn:
		s, _ := v.Value(row)
		return updateOrderedString(c, fn, s)
	default:
		return fmt.Errorf("%w: min/max on %T", ErrUnsupportedAggregate, col)
	}
}

func updateOrderedInt(c *cell, fn AggregateFunction, v int64) error {
	if !c.hasValue {
		c.intVal, c.hasValue = v, true
		return nil
	}
	if (fn == Min && v < c.intVal) || (fn == Max && v > c.intVal) {
		c.intVal = v
	}
	return nil
}

func updateOrderedFloat(c *cell, fn AggregateFunction, v float64) error {
	if !c.hasValue {
		c.floatVal, c.hasValue = v, true
		return nil
	}
	if (fn == Min && v < c.floatVal) || (fn == Max && v > c.floatVal) {
		c.floatVal = v
	}
	return nil
}

func updateOrderedString(c *cell, fn AggregateFunction, v string) error {
	if !c.hasValue {
		c.strVal, c.hasValue = v, true
		return nil
	}
	if (fn == Min && v < c.strVal) || (fn == Max && v > c.strVal) {
		c.strVal = v
	}
	return nil
}

// updateSum accumulates SUM (and AVG's running sum, finalized by dividing
// by count in finalize). Integer sums are overflow-checked and surface
// ErrOverflow rather than silently wrapping.
func updateSum(c *cell, col table.Column, row int) error {
	switch v := col.(type) {
	case *table.Int32Column:
		return addInt64(c, int64(v.Data[row]))
	case *table.Int64Column:
		return addInt64(c, v.Data[row])
	case *table.FloatColumn:
		c.floatVal += float64(v.Data[row])
		c.hasValue = true
		return nil
	case *table.DoubleColumn:
		c.floatVal += v.Data[row]
		c.hasValue = true
		return nil
	default:
		return fmt.Errorf("%w: sum/avg on %T", ErrUnsupportedAggregate, col)
	}
}

func addInt64(c *cell, v int64) error {
	sum := c.intVal + v
	// standard overflow check: if operands share a sign but the result's
	// sign differs, it wrapped.
	if (c.intVal > 0 && v > 0 && sum < 0) || (c.intVal < 0 && v < 0 && sum > 0) {
		return ErrOverflow
	}
	c.intVal = sum
	c.hasValue = true
	return nil
}
