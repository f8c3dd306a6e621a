package table

import (
	"testing"

	"github.com/kokes/smda/bitmap"
)

func TestChunkRowCountValidation(t *testing.T) {
	a := &Int64Column{Data: []int64{1, 2, 3}}
	b := &Int64Column{Data: []int64{1, 2}}
	if _, err := NewChunk(a, b); err == nil {
		t.Fatal("expected an error for mismatched column lengths")
	}
	if _, err := NewChunk(a, &Int64Column{Data: []int64{4, 5, 6}}); err != nil {
		t.Fatalf("unexpected error for matching column lengths: %v", err)
	}
}

func TestAppendValueInt64(t *testing.T) {
	src := &Int64Column{Data: []int64{10, 20, 30}}
	dst := &Int64Column{}
	if err := AppendValue(dst, src, 1); err != nil {
		t.Fatal(err)
	}
	if len(dst.Data) != 1 || dst.Data[0] != 20 {
		t.Fatalf("unexpected appended data: %+v", dst.Data)
	}
}

func TestAppendValueNull(t *testing.T) {
	null := bitmap.NewBitmap(3)
	null.Set(1, true)
	src := &Int64Column{Data: []int64{10, 0, 30}, Null: null}
	dst := &Int64Column{}
	for i := 0; i < 3; i++ {
		if err := AppendValue(dst, src, i); err != nil {
			t.Fatal(err)
		}
	}
	if dst.IsNull(0) || !dst.IsNull(1) || dst.IsNull(2) {
		t.Fatalf("unexpected nullability after append: %v %v %v", dst.IsNull(0), dst.IsNull(1), dst.IsNull(2))
	}
}

func TestAppendValueTypeMismatch(t *testing.T) {
	src := &StringColumn{Offsets: []uint32{0, 1}, Data: []byte("x")}
	dst := &Int64Column{}
	if err := AppendValue(dst, src, 0); err == nil {
		t.Fatal("expected a type mismatch error")
	}
}

func TestStringColumnValue(t *testing.T) {
	c := &StringColumn{Offsets: []uint32{0}}
	for _, s := range []string{"foo", "bar", "baz"} {
		c.Data = append(c.Data, []byte(s)...)
		c.Offsets = append(c.Offsets, uint32(len(c.Data)))
	}
	v, isNull := c.Value(1)
	if isNull || v != "bar" {
		t.Fatalf("got %q, null=%v, want \"bar\"", v, isNull)
	}
}

func TestSchemaIndex(t *testing.T) {
	s := Schema{{Name: "a", Dtype: DtypeInt64}, {Name: "b", Dtype: DtypeString}}
	if s.Index("b") != 1 {
		t.Errorf("Index(b) = %d, want 1", s.Index("b"))
	}
	if s.Index("missing") != -1 {
		t.Errorf("Index(missing) = %d, want -1", s.Index("missing"))
	}
}

func TestTableRowAndGroupCount(t *testing.T) {
	c0, _ := NewChunk(&Int64Column{Data: []int64{1, 2, 3}})
	c1, _ := NewChunk(&Int64Column{Data: []int64{4, 5}})
	tbl := NewTable(Schema{{Name: "a", Dtype: DtypeInt64}}, c0, c1)
	if tbl.RowCount() != 5 {
		t.Errorf("RowCount() = %d, want 5", tbl.RowCount())
	}
	if tbl.GroupCount() != 3 {
		t.Errorf("GroupCount() = %d, want 3 (rows in the first chunk)", tbl.GroupCount())
	}
}
