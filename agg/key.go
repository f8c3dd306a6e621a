package agg

import (
	"math"
	"sync"

	"github.com/kokes/smda/table"
)

// dictionary assigns dense, per-column group-key ids: 0 is reserved for
// NULL, every distinct non-null value seen gets the next id starting at 1.
// Shared across all chunks of a table so the same value always maps to the
// same id regardless of which chunk (and which goroutine) first observed
// it - guarded by a mutex since phase 1 builds keys for multiple chunks
// concurrently (SPEC_FULL.md §7).
type dictionary struct {
	mu     sync.Mutex
	nextID uint64
	ints   map[int64]uint64
	floats map[uint64]uint64
	strs   map[string]uint64
}

func newDictionary() *dictionary {
	return &dictionary{nextID: 1}
}

// id returns the dense group-key id for the value at col[row], or 0 if the
// value is NULL.
func (d *dictionary) id(col table.Column, row int) GroupKeyEntry {
	if col.IsNull(row) {
		return 0
	}
	switch c := col.(type) {
	case *table.Int32Column:
		return d.idInt(int64(c.Data[row]))
	case *table.Int64Column:
		return d.idInt(c.Data[row])
	case *table.FloatColumn:
		return d.idFloat(uint64(math.Float32bits(c.Data[row])))
	case *table.DoubleColumn:
		return d.idFloat(math.Float64bits(c.Data[row]))
	case *table.StringColumn:
		v, _ := c.Value(row)
		return d.idString(v)
	default:
		panic("agg: dictionary id requested for an unsupported column type")
	}
}

func (d *dictionary) idInt(v int64) uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.ints == nil {
		d.ints = make(map[int64]uint64)
	}
	if id, ok := d.ints[v]; ok {
		return id
	}
	id := d.nextID
	d.nextID++
	d.ints[v] = id
	return id
}

func (d *dictionary) idFloat(bits uint64) uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.floats == nil {
		d.floats = make(map[uint64]uint64)
	}
	if id, ok := d.floats[bits]; ok {
		return id
	}
	id := d.nextID
	d.nextID++
	d.floats[bits] = id
	return id
}

func (d *dictionary) idString(v string) uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.strs == nil {
		d.strs = make(map[string]uint64)
	}
	if id, ok := d.strs[v]; ok {
		return id
	}
	id := d.nextID
	d.nextID++
	d.strs[v] = id
	return id
}

// groupKeys builds one composite group key per row of chunk, keyed on the
// groupBy column set, via dicts (one dictionary per groupBy column, shared
// across the whole input table). The concrete key representation is chosen
// by column count: no columns collapse to a single group, one or two columns
// use comparable fixed-size keys, more than two are packed into a byte
// string hashed with siphash (see grouphash.go).
func groupKeys(chunk *table.Chunk, groupBy []int, dicts []*dictionary) []any {
	n := chunk.RowCount()
	keys := make([]any, n)
	switch len(groupBy) {
	case 0:
		for i := range keys {
			keys[i] = struct{}{}
		}
	case 1:
		col := chunk.Column(groupBy[0])
		d := dicts[0]
		for i := 0; i < n; i++ {
			keys[i] = d.id(col, i)
		}
	case 2:
		col0, col1 := chunk.Column(groupBy[0]), chunk.Column(groupBy[1])
		d0, d1 := dicts[0], dicts[1]
		for i := 0; i < n; i++ {
			keys[i] = [2]GroupKeyEntry{d0.id(col0, i), d1.id(col1, i)}
		}
	default:
		cols := make([]table.Column, len(groupBy))
		for j, ci := range groupBy {
			cols[j] = chunk.Column(ci)
		}
		for i := 0; i < n; i++ {
			entries := make([]GroupKeyEntry, len(groupBy))
			for j, col := range cols {
				entries[j] = dicts[j].id(col, i)
			}
			keys[i] = packGroupKey(entries)
		}
	}
	return keys
}
