package storage

import (
	"bufio"
	"os"
	"sync"

	"github.com/kokes/smda/table"
)

// SaveFixture persists a single chunk to path under the given codec,
// mirroring CacheIncomingFile/writeStripeToFile's create-then-buffer
// pattern (src/database/loader.go) - used by tests that want to round-trip
// a chunk through the on-disk format instead of only exercising it
// in-memory.
func SaveFixture(path string, chunk *table.Chunk, schema table.Schema, codec Codec) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	bw := bufio.NewWriter(f)
	if err := EncodeChunk(bw, chunk, schema, codec); err != nil {
		return err
	}
	return bw.Flush()
}

// LoadFixture reads back a chunk written by SaveFixture.
func LoadFixture(path string, schema table.Schema) (*table.Chunk, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return DecodeChunk(bufio.NewReader(f), schema)
}

// FixtureInputTable adapts a sequence of on-disk chunk fixtures into a
// table.InputTable, loading each chunk lazily on first access and caching
// it - the aggregation operator can run directly against a stored fixture
// without having the caller preload every chunk into memory up front.
// agg.Aggregate's forEachChunk calls ChunkAt from several goroutines at
// once, one per chunk index but never twice for the same index concurrently
// with itself at construction time, so each slot's own sync.Once is enough
// to make first-load safe without serializing unrelated chunks behind one
// lock.
type FixtureInputTable struct {
	SchemaValue table.Schema
	Paths       []string
	Codec       Codec

	initOnce sync.Once
	slots    []fixtureSlot
}

type fixtureSlot struct {
	once  sync.Once
	chunk *table.Chunk
}

func (t *FixtureInputTable) Schema() table.Schema { return t.SchemaValue }
func (t *FixtureInputTable) NumChunks() int       { return len(t.Paths) }

var _ table.InputTable = (*FixtureInputTable)(nil)

// ChunkAt loads (and caches) the chunk at path index i. Panics on I/O
// failure, matching InputTable's panic-free contract only for the happy
// path - callers that need error handling should call LoadFixture directly
// instead of going through this adapter.
func (t *FixtureInputTable) ChunkAt(i int) *table.Chunk {
	t.initOnce.Do(func() {
		t.slots = make([]fixtureSlot, len(t.Paths))
	})
	slot := &t.slots[i]
	slot.once.Do(func() {
		chunk, err := LoadFixture(t.Paths[i], t.SchemaValue)
		if err != nil {
			panic(err)
		}
		slot.chunk = chunk
	})
	return slot.chunk
}
