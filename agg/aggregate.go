package agg

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"github.com/google/uuid"
	"github.com/kokes/smda/table"
)

// Aggregate groups input by the tuple of columns named in groupBy and
// computes every aggregate in aggregates per group, following the
// two-phase algorithm of SPEC_FULL.md §5.3: phase 1 builds per-chunk group
// keys (parallel, one goroutine per chunk, dictionaries shared and
// mutex-guarded); phase 2 accumulates each chunk's rows into a sharded
// accumulator (parallel, one goroutine per chunk, shard-local locking
// only; each chunk's goroutine updates every aggregate in turn, aggregates
// are not split into tasks of their own); a final,
// sequential pass materializes the single output chunk. Cancellation is
// checked at chunk boundaries in both phases.
func Aggregate(ctx context.Context, input table.InputTable, aggregates []AggregateColumnDefinition, groupBy []int) (*table.Table, error) {
	schema := input.Schema()
	for _, gi := range groupBy {
		if gi < 0 || gi >= len(schema) {
			return nil, fmt.Errorf("%w: group-by column %d", ErrInvalidColumn, gi)
		}
	}
	for _, def := range aggregates {
		if err := def.validate(schema); err != nil {
			return nil, err
		}
	}

	numChunks := input.NumChunks()
	if numChunks == 0 {
		empty, err := emptyOutput(schema, groupBy, aggregates)
		return empty, err
	}

	dicts := make([]*dictionary, len(groupBy))
	for i := range dicts {
		dicts[i] = newDictionary()
	}

	chunkKeys := make([][]any, numChunks)
	if err := forEachChunk(ctx, numChunks, func(ci int) error {
		chunkKeys[ci] = groupKeys(input.ChunkAt(ci), groupBy, dicts)
		return nil
	}); err != nil {
		return nil, err
	}

	numShards := runtime.GOMAXPROCS(0)
	if numShards < 1 {
		numShards = 1
	}
	shards := make([]*shard, numShards)
	for i := range shards {
		shards[i] = newShard(len(aggregates))
	}

	if err := forEachChunk(ctx, numChunks, func(ci int) error {
		chunk := input.ChunkAt(ci)
		keys := chunkKeys[ci]
		for row := 0; row < chunk.RowCount(); row++ {
			key := keys[row]
			sh := shards[shardFor(key, numShards)]
			idx := sh.groupIndex(key, table.RowID{Chunk: ci, Row: row})
			for a, def := range aggregates {
				var col table.Column
				if def.Function != CountStar {
					col = chunk.Column(*def.Column)
				}
				if err := sh.update(a, idx, def, col, row); err != nil {
					return err
				}
			}
		}
		return nil
	}); err != nil {
		return nil, err
	}

	return materialize(input, schema, groupBy, aggregates, shards)
}

// forEachChunk runs fn once per chunk index, bounded to GOMAXPROCS
// concurrent goroutines via a buffered semaphore (no errgroup in the
// example pack - see DESIGN.md), and checks ctx before dispatching each
// chunk so a cancellation request stops further work promptly.
func forEachChunk(ctx context.Context, numChunks int, fn func(i int) error) error {
	sem := make(chan struct{}, runtime.GOMAXPROCS(0))
	var wg sync.WaitGroup
	var mu sync.Mutex
	var firstErr error

	for i := 0; i < numChunks; i++ {
		select {
		case <-ctx.Done():
			mu.Lock()
			if firstErr == nil {
				firstErr = fmt.Errorf("%w: %v", ErrCancelled, ctx.Err())
			}
			mu.Unlock()
		default:
		}
		mu.Lock()
		stop := firstErr != nil
		mu.Unlock()
		if stop {
			break
		}

		sem <- struct{}{}
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }()
			if err := fn(i); err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()
	return firstErr
}

// materialize builds the single output chunk from every shard's finished
// groups: group-by columns are filled by back-reference to each group's
// example row, aggregate columns by finalizing each shard's cells.
func materialize(input table.InputTable, schema table.Schema, groupBy []int, aggregates []AggregateColumnDefinition, shards []*shard) (*table.Table, error) {
	outSchema := outputSchema(schema, groupBy, aggregates)
	outCols := make([]table.Column, len(outSchema))
	for i, cs := range outSchema {
		col, err := table.NewEmptyColumn(cs.Dtype)
		if err != nil {
			return nil, err
		}
		outCols[i] = col
	}

	inputIsInteger := make([]bool, len(aggregates))
	for i, def := range aggregates {
		if def.Function == Sum || def.Function == Avg {
			inputIsInteger[i] = schema[*def.Column].Dtype.IsInteger()
		}
	}

	for _, sh := range shards {
		for groupIdx, rowID := range sh.exampleRow {
			srcChunk := input.ChunkAt(rowID.Chunk)
			for gi, srcColIdx := range groupBy {
				if err := table.AppendValue(outCols[gi], srcChunk.Column(srcColIdx), rowID.Row); err != nil {
					return nil, err
				}
			}
			for a, def := range aggregates {
				dst := outCols[len(groupBy)+a]
				if err := writeAggregateResult(dst, def, sh.cells[a][groupIdx], inputIsInteger[a]); err != nil {
					return nil, err
				}
			}
		}
	}

	chunk, err := table.NewChunk(outCols...)
	if err != nil {
		return nil, err
	}
	chunk.BatchID = uuid.New()
	return table.NewTable(outSchema, chunk), nil
}

// emptyOutput builds a zero-row output table with the right schema when the
// input has no chunks at all.
func emptyOutput(schema table.Schema, groupBy []int, aggregates []AggregateColumnDefinition) (*table.Table, error) {
	outSchema := outputSchema(schema, groupBy, aggregates)
	outCols := make([]table.Column, len(outSchema))
	for i, cs := range outSchema {
		col, err := table.NewEmptyColumn(cs.Dtype)
		if err != nil {
			return nil, err
		}
		outCols[i] = col
	}
	chunk, err := table.NewChunk(outCols...)
	if err != nil {
		return nil, err
	}
	chunk.BatchID = uuid.New()
	return table.NewTable(outSchema, chunk), nil
}
