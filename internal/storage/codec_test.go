package storage

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/kokes/smda/bitmap"
	"github.com/kokes/smda/table"
)

func sampleChunk(t *testing.T) (*table.Chunk, table.Schema) {
	t.Helper()
	schema := table.Schema{
		{Name: "a", Dtype: table.DtypeInt64},
		{Name: "b", Dtype: table.DtypeString},
	}
	null := bitmap.NewBitmap(3)
	null.Set(1, true)
	strs := &table.StringColumn{Offsets: []uint32{0}}
	for _, s := range []string{"foo", "", "barbaz"} {
		strs.Data = append(strs.Data, []byte(s)...)
		strs.Offsets = append(strs.Offsets, uint32(len(strs.Data)))
	}
	chunk, err := table.NewChunk(&table.Int64Column{Data: []int64{1, 0, 3}, Null: null}, strs)
	if err != nil {
		t.Fatal(err)
	}
	return chunk, schema
}

func TestCodecRoundTrip(t *testing.T) {
	for _, codec := range []Codec{CodecNone, CodecSnappy, CodecZstd} {
		codec := codec
		t.Run(codecName(codec), func(t *testing.T) {
			chunk, schema := sampleChunk(t)
			var buf bytes.Buffer
			if err := EncodeChunk(&buf, chunk, schema, codec); err != nil {
				t.Fatal(err)
			}
			got, err := DecodeChunk(&buf, schema)
			if err != nil {
				t.Fatal(err)
			}
			gotA := got.Column(0).(*table.Int64Column)
			wantA := chunk.Column(0).(*table.Int64Column)
			if !equalInt64(gotA.Data, wantA.Data) {
				t.Errorf("column a = %v, want %v", gotA.Data, wantA.Data)
			}
			if gotA.IsNull(0) || !gotA.IsNull(1) || gotA.IsNull(2) {
				t.Errorf("column a nullability not preserved")
			}
			gotB := got.Column(1).(*table.StringColumn)
			for i, want := range []string{"foo", "", "barbaz"} {
				v, _ := gotB.Value(i)
				if v != want {
					t.Errorf("column b row %d = %q, want %q", i, v, want)
				}
			}
		})
	}
}

func TestFixtureRoundTrip(t *testing.T) {
	chunk, schema := sampleChunk(t)
	path := filepath.Join(t.TempDir(), "chunk.bin")
	if err := SaveFixture(path, chunk, schema, CodecSnappy); err != nil {
		t.Fatal(err)
	}
	got, err := LoadFixture(path, schema)
	if err != nil {
		t.Fatal(err)
	}
	if got.RowCount() != chunk.RowCount() {
		t.Errorf("RowCount() = %d, want %d", got.RowCount(), chunk.RowCount())
	}
}

func equalInt64(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func codecName(c Codec) string {
	switch c {
	case CodecNone:
		return "none"
	case CodecSnappy:
		return "snappy"
	case CodecZstd:
		return "zstd"
	default:
		return "unknown"
	}
}
