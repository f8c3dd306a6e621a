package table

// InputTable is the read-only abstraction the aggregation operator
// consumes: an ordered sequence of Chunks sharing a Schema (§6). Both a
// plain in-memory Table and any other chunked iterator satisfy it.
type InputTable interface {
	Schema() Schema
	NumChunks() int
	ChunkAt(i int) *Chunk
}

// OutputTable is the single-chunk table the aggregation operator
// materializes its result into.
type OutputTable interface {
	InputTable
}

// Table is the straightforward in-memory implementation of both
// InputTable and OutputTable - an ordered slice of chunks plus the schema
// they share, exactly column/database's chunked table model generalized
// to also serve as an aggregation operator's output sink.
type Table struct {
	ColumnSchema Schema
	Chunks       []*Chunk
}

func (t *Table) Schema() Schema      { return t.ColumnSchema }
func (t *Table) NumChunks() int      { return len(t.Chunks) }
func (t *Table) ChunkAt(i int) *Chunk { return t.Chunks[i] }

// NewTable wraps chunks with their shared schema into an InputTable.
func NewTable(schema Schema, chunks ...*Chunk) *Table {
	return &Table{ColumnSchema: schema, Chunks: chunks}
}

// RowCount returns the total number of rows across all chunks.
func (t *Table) RowCount() int {
	n := 0
	for _, c := range t.Chunks {
		n += c.RowCount()
	}
	return n
}

// GroupCount returns the number of rows in the (single-chunk) output, i.e.
// the number of distinct groups the aggregation operator produced. This is
// the CostFeatureProxy-style read-only accessor the cost model in the
// original source reads off an already-computed aggregate result, without
// re-scanning (see SPEC_FULL.md §6).
func (t *Table) GroupCount() int {
	if len(t.Chunks) == 0 {
		return 0
	}
	return t.Chunks[0].RowCount()
}
