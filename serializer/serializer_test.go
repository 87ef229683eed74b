package serializer

import (
	"bytes"
	"testing"
)

func TestWriterReaderSymmetry(t *testing.T) {
	w := NewWriter()

	b := true
	u8 := uint8(0x12)
	u16 := uint16(0x3456)
	u32 := uint32(0x789abcde)
	u64 := uint64(0x0123456789abcdef)
	i32 := int32(-42)
	f32 := float32(1.5)
	str := "hello shader"

	w.Bool(&b)
	w.U8(&u8)
	w.U16(&u16)
	w.U32(&u32)
	w.U64(&u64)
	w.I32(&i32)
	w.F32(&f32)
	w.String(&str)

	r := NewReader(w.Bytes())

	var gotBool bool
	var gotU8 uint8
	var gotU16 uint16
	var gotU32 uint32
	var gotU64 uint64
	var gotI32 int32
	var gotF32 float32
	var gotStr string

	r.Bool(&gotBool)
	r.U8(&gotU8)
	r.U16(&gotU16)
	r.U32(&gotU32)
	r.U64(&gotU64)
	r.I32(&gotI32)
	r.F32(&gotF32)
	r.String(&gotStr)

	if err := r.Err(); err != nil {
		t.Fatalf("reader error: %v", err)
	}
	if gotBool != b || gotU8 != u8 || gotU16 != u16 || gotU32 != u32 || gotU64 != u64 || gotI32 != i32 || gotF32 != f32 || gotStr != str {
		t.Errorf("round-trip mismatch: %v %v %v %v %v %v %v %q", gotBool, gotU8, gotU16, gotU32, gotU64, gotI32, gotF32, gotStr)
	}
	if r.Remaining() != 0 {
		t.Errorf("%d bytes left unread", r.Remaining())
	}
}

func TestWriterLittleEndian(t *testing.T) {
	w := NewWriter()
	value := uint32(0x01020304)
	w.U32(&value)

	want := []byte{0x04, 0x03, 0x02, 0x01}
	if !bytes.Equal(w.Bytes(), want) {
		t.Errorf("u32 encoding = %v, want %v", w.Bytes(), want)
	}
}

func TestReaderStickyError(t *testing.T) {
	r := NewReader([]byte{0x01})

	var u32 uint32
	r.U32(&u32)
	if r.Err() == nil {
		t.Fatal("short read did not error")
	}

	// subsequent reads stay failed and leave values untouched
	sentinel := uint8(0xaa)
	r.U8(&sentinel)
	if sentinel != 0xaa {
		t.Error("read after error modified the target")
	}
	if r.Err() == nil {
		t.Error("error was cleared")
	}
}

func TestReaderStringLengthOverflow(t *testing.T) {
	w := NewWriter()
	length := uint32(1000)
	w.U32(&length)

	r := NewReader(w.Bytes())
	var s string
	r.String(&s)
	if r.Err() == nil {
		t.Error("string longer than the stream did not error")
	}
}
