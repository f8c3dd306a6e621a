// Package storage implements an on-disk encoding for table.Chunk fixtures,
// following the checksum-then-compress stripe format
// src/database/loader.go writes datasets in, generalized to carry either of
// the pack's two chunk compressors: the teacher's own snappy, or
// klauspost/compress's zstd.
package storage

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"io"

	"github.com/golang/snappy"
	"github.com/klauspost/compress/zstd"
	"github.com/kokes/smda/bitmap"
	"github.com/kokes/smda/table"
)

// Codec names the compression applied to an encoded chunk's payload.
type Codec uint8

const (
	CodecNone Codec = iota
	CodecSnappy
	CodecZstd
)

var (
	errUnknownCodec       = errors.New("unknown chunk codec")
	errChecksumMismatch   = errors.New("chunk payload failed its checksum")
	errUnsupportedDtype   = errors.New("cannot encode a column of this dtype")
	errTruncatedChunkData = errors.New("truncated chunk payload")
)

// EncodeChunk writes chunk to w: a codec byte, a crc32 checksum of the
// uncompressed payload, then the (possibly compressed) payload itself -
// mirrors stripeData.writeToWriter's checksum-then-compress layout.
func EncodeChunk(w io.Writer, chunk *table.Chunk, schema table.Schema, codec Codec) error {
	if len(chunk.Columns) != len(schema) {
		return fmt.Errorf("chunk has %d columns, schema has %d", len(chunk.Columns), len(schema))
	}

	var payload bytes.Buffer
	if err := binary.Write(&payload, binary.LittleEndian, int32(chunk.RowCount())); err != nil {
		return err
	}
	if err := binary.Write(&payload, binary.LittleEndian, int32(len(schema))); err != nil {
		return err
	}
	for i, cs := range schema {
		if err := payload.WriteByte(byte(cs.Dtype)); err != nil {
			return err
		}
		if err := writeColumn(&payload, chunk.Columns[i], cs.Dtype); err != nil {
			return err
		}
	}

	checksum := crc32.ChecksumIEEE(payload.Bytes())

	if _, err := w.Write([]byte{byte(codec)}); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, checksum); err != nil {
		return err
	}

	cw, err := compressWriter(w, codec)
	if err != nil {
		return err
	}
	if _, err := cw.Write(payload.Bytes()); err != nil {
		return err
	}
	return cw.Close()
}

// DecodeChunk reads back a chunk written by EncodeChunk, verifying its
// checksum before reconstructing columns from schema.
func DecodeChunk(r io.Reader, schema table.Schema) (*table.Chunk, error) {
	br := bufio.NewReader(r)
	codecByte, err := br.ReadByte()
	if err != nil {
		return nil, err
	}
	var checksum uint32
	if err := binary.Read(br, binary.LittleEndian, &checksum); err != nil {
		return nil, err
	}

	cr, err := decompressReader(br, Codec(codecByte))
	if err != nil {
		return nil, err
	}
	payload, err := io.ReadAll(cr)
	if err != nil {
		return nil, err
	}
	if crc32.ChecksumIEEE(payload) != checksum {
		return nil, errChecksumMismatch
	}

	buf := bytes.NewReader(payload)
	var numRows, numCols int32
	if err := binary.Read(buf, binary.LittleEndian, &numRows); err != nil {
		return nil, err
	}
	if err := binary.Read(buf, binary.LittleEndian, &numCols); err != nil {
		return nil, err
	}
	if int(numCols) != len(schema) {
		return nil, fmt.Errorf("%w: chunk has %d columns, schema has %d", errTruncatedChunkData, numCols, len(schema))
	}

	columns := make([]table.Column, numCols)
	for i, cs := range schema {
		dtByte, err := buf.ReadByte()
		if err != nil {
			return nil, err
		}
		if table.Dtype(dtByte) != cs.Dtype {
			return nil, fmt.Errorf("%w: column %d encoded as dtype %d, schema expects %v", errTruncatedChunkData, i, dtByte, cs.Dtype)
		}
		col, err := readColumn(buf, cs.Dtype, int(numRows))
		if err != nil {
			return nil, err
		}
		columns[i] = col
	}
	return table.NewChunk(columns...)
}

func compressWriter(w io.Writer, codec Codec) (io.WriteCloser, error) {
	switch codec {
	case CodecNone:
		return nopWriteCloser{w}, nil
	case CodecSnappy:
		return snappy.NewBufferedWriter(w), nil
	case CodecZstd:
		return zstd.NewWriter(w)
	default:
		return nil, fmt.Errorf("%w: %d", errUnknownCodec, codec)
	}
}

func decompressReader(r io.Reader, codec Codec) (io.Reader, error) {
	switch codec {
	case CodecNone:
		return r, nil
	case CodecSnappy:
		return snappy.NewReader(r), nil
	case CodecZstd:
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, err
		}
		return zr.IOReadCloser(), nil
	default:
		return nil, fmt.Errorf("%w: %d", errUnknownCodec, codec)
	}
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

func writeColumn(w *bytes.Buffer, c table.Column, dt table.Dtype) error {
	if err := writeNullability(w, columnNull(c)); err != nil {
		return err
	}
	switch col := c.(type) {
	case *table.Int32Column:
		return binary.Write(w, binary.LittleEndian, col.Data)
	case *table.Int64Column:
		return binary.Write(w, binary.LittleEndian, col.Data)
	case *table.FloatColumn:
		return binary.Write(w, binary.LittleEndian, col.Data)
	case *table.DoubleColumn:
		return binary.Write(w, binary.LittleEndian, col.Data)
	case *table.StringColumn:
		if err := binary.Write(w, binary.LittleEndian, int32(len(col.Offsets))); err != nil {
			return err
		}
		if err := binary.Write(w, binary.LittleEndian, col.Offsets); err != nil {
			return err
		}
		if err := binary.Write(w, binary.LittleEndian, int32(len(col.Data))); err != nil {
			return err
		}
		_, err := w.Write(col.Data)
		return err
	default:
		return fmt.Errorf("%w: %v", errUnsupportedDtype, dt)
	}
}

// columnNull extracts a column's nullability bitmap, if any - every
// concrete table.Column variant except ReferenceColumn carries one.
func columnNull(c table.Column) *bitmap.Bitmap {
	switch col := c.(type) {
	case *table.Int32Column:
		return col.Null
	case *table.Int64Column:
		return col.Null
	case *table.FloatColumn:
		return col.Null
	case *table.DoubleColumn:
		return col.Null
	case *table.StringColumn:
		return col.Null
	default:
		return nil
	}
}

func writeNullability(w *bytes.Buffer, bm *bitmap.Bitmap) error {
	if bm == nil {
		return w.WriteByte(0)
	}
	if err := w.WriteByte(1); err != nil {
		return err
	}
	_, err := bitmap.Serialize(w, bm)
	return err
}

func readColumn(r *bytes.Reader, dt table.Dtype, numRows int) (table.Column, error) {
	hasNull, err := r.ReadByte()
	if err != nil {
		return nil, err
	}
	var null *bitmap.Bitmap
	if hasNull == 1 {
		null, err = bitmap.DeserializeBitmapFromReader(r)
		if err != nil {
			return nil, err
		}
	}

	switch dt {
	case table.DtypeInt32:
		data := make([]int32, numRows)
		if err := binary.Read(r, binary.LittleEndian, data); err != nil {
			return nil, err
		}
		return &table.Int32Column{Data: data, Null: null}, nil
	case table.DtypeInt64:
		data := make([]int64, numRows)
		if err := binary.Read(r, binary.LittleEndian, data); err != nil {
			return nil, err
		}
		return &table.Int64Column{Data: data, Null: null}, nil
	case table.DtypeFloat:
		data := make([]float32, numRows)
		if err := binary.Read(r, binary.LittleEndian, data); err != nil {
			return nil, err
		}
		return &table.FloatColumn{Data: data, Null: null}, nil
	case table.DtypeDouble:
		data := make([]float64, numRows)
		if err := binary.Read(r, binary.LittleEndian, data); err != nil {
			return nil, err
		}
		return &table.DoubleColumn{Data: data, Null: null}, nil
	case table.DtypeString:
		var numOffsets int32
		if err := binary.Read(r, binary.LittleEndian, &numOffsets); err != nil {
			return nil, err
		}
		offsets := make([]uint32, numOffsets)
		if err := binary.Read(r, binary.LittleEndian, offsets); err != nil {
			return nil, err
		}
		var dataLen int32
		if err := binary.Read(r, binary.LittleEndian, &dataLen); err != nil {
			return nil, err
		}
		data := make([]byte, dataLen)
		if _, err := io.ReadFull(r, data); err != nil {
			return nil, err
		}
		return &table.StringColumn{Data: data, Offsets: offsets, Null: null}, nil
	default:
		return nil, fmt.Errorf("%w: %v", errUnsupportedDtype, dt)
	}
}
