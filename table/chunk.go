package table

import (
	"fmt"

	"github.com/google/uuid"
)

// Chunk is a fixed-width row block holding parallel columns that share the
// owning Table's schema. BatchID is an optional tag a producer can attach
// to identify which materialization run built this chunk (the aggregation
// operator stamps one on each output chunk); the zero UUID means untagged.
type Chunk struct {
	Columns []Column
	BatchID uuid.UUID
}

// RowCount returns the number of rows in this chunk - every column must
// agree, which NewChunk enforces at construction time.
func (c *Chunk) RowCount() int {
	if len(c.Columns) == 0 {
		return 0
	}
	return c.Columns[0].Len()
}

// Column returns the column at the given index.
func (c *Chunk) Column(idx int) Column {
	return c.Columns[idx]
}

// NewChunk builds a chunk from parallel columns, validating that they all
// report the same row count.
func NewChunk(columns ...Column) (*Chunk, error) {
	if len(columns) == 0 {
		return &Chunk{}, nil
	}
	n := columns[0].Len()
	for i, c := range columns[1:] {
		if c.Len() != n {
			return nil, fmt.Errorf("column %d has %d rows, expected %d", i+1, c.Len(), n)
		}
	}
	return &Chunk{Columns: columns}, nil
}
