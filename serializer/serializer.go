// Package serializer provides the little-endian byte streams underlying the
// compiled shader module format. A single symmetric walk can describe both
// serialization directions: Writer and Reader implement the same Stream
// interface, whose methods either write from or read into the pointed-to
// variable depending on the direction.
package serializer

import (
	"encoding/binary"
	"math"

	"github.com/pkg/errors"
)

// Stream abstracts over the two directions of a serialization walk. Every
// method transfers one value between the stream and *v. Reader errors are
// sticky: after the first failure every call is a no-op and Err reports the
// failure.
type Stream interface {
	// IsWriting reports the direction of the stream.
	IsWriting() bool

	Bool(v *bool)
	U8(v *uint8)
	U16(v *uint16)
	U32(v *uint32)
	U64(v *uint64)
	I32(v *int32)
	F32(v *float32)
	String(v *string)

	// Err returns the first error encountered, or nil.
	Err() error
}

// Writer serializes values into a growing little-endian byte buffer.
type Writer struct {
	buf []byte
}

// NewWriter returns an empty writer.
func NewWriter() *Writer {
	return &Writer{}
}

// Bytes returns the serialized bytes.
func (w *Writer) Bytes() []byte { return w.buf }

// IsWriting reports true.
func (w *Writer) IsWriting() bool { return true }

// Err always returns nil: writing into memory cannot fail.
func (w *Writer) Err() error { return nil }

func (w *Writer) Bool(v *bool) {
	if *v {
		w.buf = append(w.buf, 1)
	} else {
		w.buf = append(w.buf, 0)
	}
}

func (w *Writer) U8(v *uint8) { w.buf = append(w.buf, *v) }

func (w *Writer) U16(v *uint16) { w.buf = binary.LittleEndian.AppendUint16(w.buf, *v) }

func (w *Writer) U32(v *uint32) { w.buf = binary.LittleEndian.AppendUint32(w.buf, *v) }

func (w *Writer) U64(v *uint64) { w.buf = binary.LittleEndian.AppendUint64(w.buf, *v) }

func (w *Writer) I32(v *int32) { w.buf = binary.LittleEndian.AppendUint32(w.buf, uint32(*v)) }

func (w *Writer) F32(v *float32) {
	w.buf = binary.LittleEndian.AppendUint32(w.buf, math.Float32bits(*v))
}

func (w *Writer) String(v *string) {
	length := uint32(len(*v))
	w.U32(&length)
	w.buf = append(w.buf, *v...)
}

// Reader deserializes values from a little-endian byte slice.
type Reader struct {
	data []byte
	off  int
	err  error
}

// NewReader reads from data.
func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// IsWriting reports false.
func (r *Reader) IsWriting() bool { return false }

// Err returns the first read failure, or nil.
func (r *Reader) Err() error { return r.err }

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int { return len(r.data) - r.off }

func (r *Reader) take(n int) []byte {
	if r.err != nil {
		return nil
	}
	if r.off+n > len(r.data) {
		r.err = errors.Errorf("unexpected end of stream at offset %d (want %d more bytes)", r.off, n)
		return nil
	}
	chunk := r.data[r.off : r.off+n]
	r.off += n
	return chunk
}

func (r *Reader) Bool(v *bool) {
	if chunk := r.take(1); chunk != nil {
		*v = chunk[0] != 0
	}
}

func (r *Reader) U8(v *uint8) {
	if chunk := r.take(1); chunk != nil {
		*v = chunk[0]
	}
}

func (r *Reader) U16(v *uint16) {
	if chunk := r.take(2); chunk != nil {
		*v = binary.LittleEndian.Uint16(chunk)
	}
}

func (r *Reader) U32(v *uint32) {
	if chunk := r.take(4); chunk != nil {
		*v = binary.LittleEndian.Uint32(chunk)
	}
}

func (r *Reader) U64(v *uint64) {
	if chunk := r.take(8); chunk != nil {
		*v = binary.LittleEndian.Uint64(chunk)
	}
}

func (r *Reader) I32(v *int32) {
	if chunk := r.take(4); chunk != nil {
		*v = int32(binary.LittleEndian.Uint32(chunk))
	}
}

func (r *Reader) F32(v *float32) {
	if chunk := r.take(4); chunk != nil {
		*v = math.Float32frombits(binary.LittleEndian.Uint32(chunk))
	}
}

func (r *Reader) String(v *string) {
	var length uint32
	r.U32(&length)
	if r.err != nil {
		return
	}
	if chunk := r.take(int(length)); chunk != nil {
		*v = string(chunk)
	}
}
