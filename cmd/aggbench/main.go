// Command aggbench runs the group-by aggregation operator over either a
// synthetic dataset or a directory of on-disk chunk fixtures, and reports
// how many groups it produced and how long that took - a runnable entry
// point for the aggregation/filter cores, following cmd/server/main.go's
// flag-driven, log-reporting style.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/kokes/smda/agg"
	"github.com/kokes/smda/internal/storage"
	"github.com/kokes/smda/table"
)

func main() {
	rows := flag.Int("rows", 1_000_000, "number of synthetic rows to aggregate over when no fixture directory is given")
	chunks := flag.Int("chunks", 8, "number of chunks to split synthetic rows into")
	groups := flag.Int("groups", 1000, "number of distinct group-by values to synthesize")
	fixtureDir := flag.String("fixture-dir", "", "directory of chunk fixtures to load instead of generating synthetic data")
	fixtureCount := flag.Int("fixture-count", 0, "number of fixture chunk files to load (named chunk-0.bin .. chunk-<N-1>.bin) from fixture-dir")
	codecFlag := flag.String("codec", "snappy", "fixture codec: none, snappy, zstd")
	flag.Parse()

	if err := run(context.Background(), *rows, *chunks, *groups, *fixtureDir, *fixtureCount, *codecFlag); err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context, rows, numChunks, numGroups int, fixtureDir string, fixtureCount int, codecName string) error {
	codec, err := parseCodec(codecName)
	if err != nil {
		return err
	}

	var input table.InputTable
	schema := table.Schema{
		{Name: "group_key", Dtype: table.DtypeInt64},
		{Name: "value", Dtype: table.DtypeDouble},
	}

	if fixtureDir != "" {
		paths := make([]string, fixtureCount)
		for i := range paths {
			paths[i] = filepath.Join(fixtureDir, fmt.Sprintf("chunk-%d.bin", i))
		}
		input = &storage.FixtureInputTable{SchemaValue: schema, Paths: paths, Codec: codec}
		log.Printf("loading %d fixture chunks from %s", fixtureCount, fixtureDir)
	} else {
		input = syntheticInput(schema, rows, numChunks, numGroups)
		log.Printf("generated %d synthetic rows across %d chunks, %d distinct groups", rows, numChunks, numGroups)
	}

	groupCol, valueCol := 0, 1
	aggregates := []agg.AggregateColumnDefinition{
		{Column: &valueCol, Function: agg.Sum},
		{Function: agg.CountStar},
		{Column: &valueCol, Function: agg.Avg},
	}

	start := time.Now()
	out, err := agg.Aggregate(ctx, input, aggregates, []int{groupCol})
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	log.Printf("produced %d groups in %s", out.GroupCount(), elapsed)
	fmt.Fprintf(os.Stdout, "groups=%d elapsed=%s\n", out.GroupCount(), elapsed)
	return nil
}

func parseCodec(name string) (storage.Codec, error) {
	switch name {
	case "none":
		return storage.CodecNone, nil
	case "snappy":
		return storage.CodecSnappy, nil
	case "zstd":
		return storage.CodecZstd, nil
	default:
		return 0, fmt.Errorf("unknown codec %q", name)
	}
}

func syntheticInput(schema table.Schema, rows, numChunks, numGroups int) table.InputTable {
	if numChunks < 1 {
		numChunks = 1
	}
	rnd := rand.New(rand.NewSource(42))
	chunksOut := make([]*table.Chunk, 0, numChunks)
	rowsPerChunk := (rows + numChunks - 1) / numChunks
	remaining := rows
	for c := 0; c < numChunks && remaining > 0; c++ {
		n := rowsPerChunk
		if n > remaining {
			n = remaining
		}
		remaining -= n

		keys := make([]int64, n)
		values := make([]float64, n)
		for i := 0; i < n; i++ {
			keys[i] = int64(rnd.Intn(numGroups))
			values[i] = rnd.Float64() * 100
		}
		chunk, err := table.NewChunk(&table.Int64Column{Data: keys}, &table.DoubleColumn{Data: values})
		if err != nil {
			panic(err) // synthetic columns are constructed with matching lengths above
		}
		chunksOut = append(chunksOut, chunk)
	}
	return table.NewTable(schema, chunksOut...)
}
