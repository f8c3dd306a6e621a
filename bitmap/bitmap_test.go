package bitmap

import (
	"bytes"
	"reflect"
	"testing"
)

func TestBitmapSetsGets(t *testing.T) {
	vals := []bool{true, false, false, false, true, true, false}
	bm := NewBitmap(0)
	for j, v := range vals {
		bm.Set(j, v)
	}
	for j, v := range vals {
		if bm.Get(j) != v {
			t.Fatalf("position %v: expected %v, got %v", j, v, bm.Get(j))
		}
	}
}

func BenchmarkBitmapSets(b *testing.B) {
	n := 1000
	bm := NewBitmap(n)
	b.ResetTimer()
	for j := 0; j < b.N; j++ {
		bm.Set(n/2, true)
	}
}

func TestBitmapGrowsOnSet(t *testing.T) {
	bm := NewBitmap(0)
	for _, newpos := range []int{10, 64, 65, 100, 128, 1000, 10000} {
		bm.Set(newpos, true)
		if bm.cap != newpos+1 {
			t.Errorf("after setting position %d, expected cap %d, got %d", newpos, newpos+1, bm.cap)
		}
	}
}

func TestBitmapCloning(t *testing.T) {
	bm1 := NewBitmap(1000)
	for _, pos := range []int{3, 12, 64, 65, 999} {
		bm1.Set(pos, true)
	}
	bm2 := bm1.Clone()
	bm1.Set(500, true)
	if bm2.Get(500) {
		t.Errorf("expecting a cloned bitmap not to be affected by changes to the original bitmap")
	}
	for _, pos := range []int{3, 12, 64, 65, 999} {
		if !bm2.Get(pos) {
			t.Errorf("expecting cloned bitmap to preserve bit at %d", pos)
		}
	}
}

func TestCloneNil(t *testing.T) {
	if Clone(nil) != nil {
		t.Errorf("expecting Clone(nil) to be nil")
	}
}

func TestBitmapRoundtrip(t *testing.T) {
	bitmaps := []*Bitmap{
		NewBitmap(1),
		NewBitmap(9),
		NewBitmap(64),
		NewBitmap(128),
		NewBitmap(129),
		NewBitmap(1000),
	}
	bitmaps[0].Set(0, true)
	bitmaps[2].Set(12, true)
	bitmaps[2].Set(63, true)
	for _, b := range bitmaps {
		bf := new(bytes.Buffer)
		if _, err := Serialize(bf, b); err != nil {
			t.Fatal(err)
		}
		br := bytes.NewReader(bf.Bytes())

		b2, err := DeserializeBitmapFromReader(br)
		if err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(b, b2) {
			t.Errorf("expecting %v, got %v", b, b2)
		}
	}
}

func TestBitmapRoundtripNil(t *testing.T) {
	bf := new(bytes.Buffer)
	if _, err := Serialize(bf, nil); err != nil {
		t.Fatal(err)
	}
	got, err := DeserializeBitmapFromReader(bytes.NewReader(bf.Bytes()))
	if err != nil {
		t.Fatal(err)
	}
	if got != nil {
		t.Errorf("expecting a serialized nil bitmap to deserialize back to nil, got %v", got)
	}
}
