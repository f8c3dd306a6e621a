package table

import (
	"errors"
	"fmt"
	"hash/fnv"

	"github.com/kokes/smda/bitmap"
)

var errAppendTypeMismatch = errors.New("cannot append columns of differing types")
var errReferenceColumnNotOwner = errors.New("reference columns do not own their data")

// Column is a single, typed slice of a Chunk's rows. Columns come in two
// flavours (§3 of the design): ValueColumns own their typed data,
// ReferenceColumns point into another table's rows via RowIDs.
type Column interface {
	Len() int
	Dtype() Dtype
	IsNull(row int) bool
	Clone() Column
	Hash(hashes []uint64)
}

// Int32Column owns a contiguous run of 32-bit integers.
type Int32Column struct {
	Data []int32
	Null *bitmap.Bitmap
}

// Int64Column owns a contiguous run of 64-bit integers.
type Int64Column struct {
	Data []int64
	Null *bitmap.Bitmap
}

// FloatColumn owns a contiguous run of single-precision floats.
type FloatColumn struct {
	Data []float32
	Null *bitmap.Bitmap
}

// DoubleColumn owns a contiguous run of double-precision floats.
type DoubleColumn struct {
	Data []float64
	Null *bitmap.Bitmap
}

// StringColumn owns a contiguous run of strings, packed as a byte buffer
// with offsets - exactly the representation column.ChunkStrings uses.
type StringColumn struct {
	Data    []byte
	Offsets []uint32 // len(Offsets) == Len()+1
	Null    *bitmap.Bitmap
}

// ReferenceColumn indirects into rows of another table instead of owning
// data - the "pointing into another table's rows via RowIDs" segment kind
// from §3. Not produced by the aggregation operator itself (its output
// columns are always freshly materialized ValueColumns), but part of the
// data model InputTable implementations may use.
type ReferenceColumn struct {
	Refs       []RowID
	Referenced *Table
}

func (c *Int32Column) Len() int  { return len(c.Data) }
func (c *Int64Column) Len() int  { return len(c.Data) }
func (c *FloatColumn) Len() int  { return len(c.Data) }
func (c *DoubleColumn) Len() int { return len(c.Data) }
func (c *StringColumn) Len() int {
	if len(c.Offsets) == 0 {
		return 0
	}
	return len(c.Offsets) - 1
}
func (c *ReferenceColumn) Len() int { return len(c.Refs) }

func (c *Int32Column) Dtype() Dtype      { return DtypeInt32 }
func (c *Int64Column) Dtype() Dtype      { return DtypeInt64 }
func (c *FloatColumn) Dtype() Dtype      { return DtypeFloat }
func (c *DoubleColumn) Dtype() Dtype     { return DtypeDouble }
func (c *StringColumn) Dtype() Dtype     { return DtypeString }
func (c *ReferenceColumn) Dtype() Dtype  { return DtypeInvalid }

func (c *Int32Column) IsNull(row int) bool  { return c.Null != nil && c.Null.Get(row) }
func (c *Int64Column) IsNull(row int) bool  { return c.Null != nil && c.Null.Get(row) }
func (c *FloatColumn) IsNull(row int) bool  { return c.Null != nil && c.Null.Get(row) }
func (c *DoubleColumn) IsNull(row int) bool { return c.Null != nil && c.Null.Get(row) }
func (c *StringColumn) IsNull(row int) bool { return c.Null != nil && c.Null.Get(row) }
func (c *ReferenceColumn) IsNull(row int) bool {
	if c.Referenced == nil {
		return false
	}
	ref := c.Refs[row]
	return c.Referenced.Chunks[ref.Chunk].Columns[0].IsNull(ref.Row)
}

// Value returns the row's value and whether it is NULL (value is undefined
// when null is true).
func (c *Int32Column) Value(row int) (int32, bool) { return c.Data[row], c.IsNull(row) }
func (c *Int64Column) Value(row int) (int64, bool) { return c.Data[row], c.IsNull(row) }
func (c *FloatColumn) Value(row int) (float32, bool) { return c.Data[row], c.IsNull(row) }
func (c *DoubleColumn) Value(row int) (float64, bool) { return c.Data[row], c.IsNull(row) }
func (c *StringColumn) Value(row int) (string, bool) {
	if c.IsNull(row) {
		return "", true
	}
	return string(c.Data[c.Offsets[row]:c.Offsets[row+1]]), false
}

func (c *Int32Column) Clone() Column {
	data := append([]int32(nil), c.Data...)
	return &Int32Column{Data: data, Null: bitmap.Clone(c.Null)}
}
func (c *Int64Column) Clone() Column {
	data := append([]int64(nil), c.Data...)
	return &Int64Column{Data: data, Null: bitmap.Clone(c.Null)}
}
func (c *FloatColumn) Clone() Column {
	data := append([]float32(nil), c.Data...)
	return &FloatColumn{Data: data, Null: bitmap.Clone(c.Null)}
}
func (c *DoubleColumn) Clone() Column {
	data := append([]float64(nil), c.Data...)
	return &DoubleColumn{Data: data, Null: bitmap.Clone(c.Null)}
}
func (c *StringColumn) Clone() Column {
	return &StringColumn{
		Data:    append([]byte(nil), c.Data...),
		Offsets: append([]uint32(nil), c.Offsets...),
		Null:    bitmap.Clone(c.Null),
	}
}
func (c *ReferenceColumn) Clone() Column {
	return &ReferenceColumn{Refs: append([]RowID(nil), c.Refs...), Referenced: c.Referenced}
}

const hashNull = uint64(0xe96766e0d6221951)

// Hash mixes this column's per-row values into the provided hash
// accumulator, following column.ChunkInts.Hash's xor-into-shared-buffer
// convention (used here by dictionary-less callers that want a coarse
// group signature; the aggregation operator itself uses per-column
// dictionaries, see agg/key.go, for exact equality rather than hash
// collisions).
func (c *Int32Column) Hash(hashes []uint64) { hashInts(hashes, c.Null, func(j int) int64 { return int64(c.Data[j]) }) }
func (c *Int64Column) Hash(hashes []uint64) { hashInts(hashes, c.Null, func(j int) int64 { return c.Data[j] }) }

func hashInts(hashes []uint64, null *bitmap.Bitmap, at func(int) int64) {
	h := fnv.New64()
	var buf [8]byte
	for j := range hashes {
		if null != nil && null.Get(j) {
			hashes[j] ^= hashNull
			continue
		}
		v := uint64(at(j))
		for i := 0; i < 8; i++ {
			buf[i] = byte(v >> (8 * i))
		}
		h.Write(buf[:])
		hashes[j] ^= h.Sum64()
		h.Reset()
	}
}

func (c *FloatColumn) Hash(hashes []uint64) {
	h := fnv.New64()
	var buf [4]byte
	for j := range hashes {
		if c.Null != nil && c.Null.Get(j) {
			hashes[j] ^= hashNull
			continue
		}
		bits := uint32sFromFloat32(c.Data[j])
		for i := 0; i < 4; i++ {
			buf[i] = byte(bits >> (8 * i))
		}
		h.Write(buf[:])
		hashes[j] ^= h.Sum64()
		h.Reset()
	}
}

func (c *DoubleColumn) Hash(hashes []uint64) {
	h := fnv.New64()
	var buf [8]byte
	for j := range hashes {
		if c.Null != nil && c.Null.Get(j) {
			hashes[j] ^= hashNull
			continue
		}
		bits := uint64sFromFloat64(c.Data[j])
		for i := 0; i < 8; i++ {
			buf[i] = byte(bits >> (8 * i))
		}
		h.Write(buf[:])
		hashes[j] ^= h.Sum64()
		h.Reset()
	}
}

func (c *StringColumn) Hash(hashes []uint64) {
	h := fnv.New64()
	for j := range hashes {
		if c.Null != nil && c.Null.Get(j) {
			hashes[j] ^= hashNull
			continue
		}
		h.Write(c.Data[c.Offsets[j]:c.Offsets[j+1]])
		hashes[j] ^= h.Sum64()
		h.Reset()
	}
}

func (c *ReferenceColumn) Hash(hashes []uint64) {
	panic("reference columns are not hashed directly")
}

// AppendValue appends a single row, read from src at position row, to this
// column - used by the aggregation operator to materialize group-by output
// columns by back-reference to an example row. Returns
// errAppendTypeMismatch, without appending, when src's type differs from
// dst's or dst is not one of the owning column types.
func AppendValue(dst Column, src Column, row int) error {
	switch d := dst.(type) {
	case *Int32Column:
		s, ok := src.(*Int32Column)
		if !ok {
			return errAppendTypeMismatch
		}
		v, isNull := s.Value(row)
		d.Data = append(d.Data, v)
		appendNull(&d.Null, len(d.Data)-1, isNull)
	case *Int64Column:
		s, ok := src.(*Int64Column)
		if !ok {
			return errAppendTypeMismatch
		}
		v, isNull := s.Value(row)
		d.Data = append(d.Data, v)
		appendNull(&d.Null, len(d.Data)-1, isNull)
	case *FloatColumn:
		s, ok := src.(*FloatColumn)
		if !ok {
			return errAppendTypeMismatch
		}
		v, isNull := s.Value(row)
		d.Data = append(d.Data, v)
		appendNull(&d.Null, len(d.Data)-1, isNull)
	case *DoubleColumn:
		s, ok := src.(*DoubleColumn)
		if !ok {
			return errAppendTypeMismatch
		}
		v, isNull := s.Value(row)
		d.Data = append(d.Data, v)
		appendNull(&d.Null, len(d.Data)-1, isNull)
	case *StringColumn:
		s, ok := src.(*StringColumn)
		if !ok {
			return errAppendTypeMismatch
		}
		v, isNull := s.Value(row)
		d.Data = append(d.Data, []byte(v)...)
		d.Offsets = append(d.Offsets, uint32(len(d.Data)))
		appendNull(&d.Null, len(d.Offsets)-2, isNull)
	default:
		return fmt.Errorf("%w: unsupported destination column", errAppendTypeMismatch)
	}
	return nil
}

func appendNull(bm **bitmap.Bitmap, pos int, isNull bool) {
	if !isNull && *bm == nil {
		return
	}
	if *bm == nil {
		*bm = bitmap.NewBitmap(pos + 1)
	}
	(*bm).Set(pos, isNull)
}

// NewEmptyColumn allocates a zero-length, owning column of the given type,
// ready to be grown with AppendValue - mirrors column.NewChunkFromSchema.
func NewEmptyColumn(dt Dtype) (Column, error) {
	switch dt {
	case DtypeInt32:
		return &Int32Column{}, nil
	case DtypeInt64:
		return &Int64Column{}, nil
	case DtypeFloat:
		return &FloatColumn{}, nil
	case DtypeDouble:
		return &DoubleColumn{}, nil
	case DtypeString:
		return &StringColumn{Offsets: []uint32{0}}, nil
	default:
		return nil, fmt.Errorf("%w: %v", errUnknownDtype, dt)
	}
}
