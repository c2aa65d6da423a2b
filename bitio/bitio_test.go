package bitio

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestByteReaderWriterRoundTrip(t *testing.T) {
	w := NewByteWriter()
	w.U8(0x42)
	w.U16(0x1234)
	w.U32(0xdeadbeef)
	w.U64(0x0102030405060708)
	w.U32BE(0xe3537a1f)
	w.Write([]byte("hello"))

	r := NewByteReader(w.Bytes())
	if v, _ := r.U8(); v != 0x42 {
		t.Fatalf("U8 = %x", v)
	}
	if v, _ := r.U16(); v != 0x1234 {
		t.Fatalf("U16 = %x", v)
	}
	if v, _ := r.U32(); v != 0xdeadbeef {
		t.Fatalf("U32 = %x", v)
	}
	if v, _ := r.U64(); v != 0x0102030405060708 {
		t.Fatalf("U64 = %x", v)
	}
	if v, _ := r.U32BE(); v != 0xe3537a1f {
		t.Fatalf("U32BE = %x", v)
	}
	b, _ := r.Bytes(5)
	if !bytes.Equal(b, []byte("hello")) {
		t.Fatalf("Bytes = %q", b)
	}
}

func TestByteReaderTruncated(t *testing.T) {
	r := NewByteReader([]byte{1, 2})
	if _, err := r.U32(); err != ErrTruncated {
		t.Fatalf("expected ErrTruncated, got %v", err)
	}
}

func TestVarEscapeRoundTrip(t *testing.T) {
	vals := []int32{0, 1, -1, 1000, -1000, 16383, -16383, 16384, -16384, 1 << 20, -(1 << 20)}
	for _, v := range vals {
		var buf bytes.Buffer
		bw := NewBitWriter(&buf)
		if err := PutVarEscape(bw, v); err != nil {
			t.Fatal(err)
		}
		if err := bw.Close(); err != nil {
			t.Fatal(err)
		}
		br := NewBitReader(&buf)
		got, err := GetVarEscape(br)
		if err != nil {
			t.Fatalf("GetVarEscape(%d): %v", v, err)
		}
		if got != v {
			t.Fatalf("round trip %d -> %d", v, got)
		}
	}
}

func TestZstdRoundTrip(t *testing.T) {
	src := bytes.Repeat([]byte("the quick brown fox jumps over the lazy dog"), 100)
	c := Compress(src)
	d, err := Decompress(c)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(src, d); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}

func TestBitWriterReaderRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	bw := NewBitWriter(&buf)
	bits := []bool{true, false, true, true, false, false, true, false, true}
	for _, b := range bits {
		if err := bw.WriteBit(b); err != nil {
			t.Fatal(err)
		}
	}
	if err := bw.Close(); err != nil {
		t.Fatal(err)
	}
	br := NewBitReader(&buf)
	for i, want := range bits {
		got, err := br.ReadBit()
		if err != nil {
			t.Fatalf("bit %d: %v", i, err)
		}
		if got != want {
			t.Fatalf("bit %d: got %v want %v", i, got, want)
		}
	}
}
