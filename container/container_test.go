package container

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestFileHeaderRoundTrip(t *testing.T) {
	h := &FileHeader{
		Version:        5,
		Width:          1920,
		Height:         1080,
		FPS:            30,
		TotalFrames:    900,
		WaveletFilter:  1,
		DecompLevels:   4,
		QuantiserY:     40,
		QuantiserCo:    60,
		QuantiserCg:    60,
		ExtraFlags:     ExtraFlagAudio,
		VideoFlags:     VideoFlagLossless,
		EncoderQuality: 8,
		ChannelLayout:  LayoutYCoCg,
		EntropyCoder:   EntropyTwobit,
		EncoderPreset:  0,
	}
	enc := h.Encode()
	if len(enc) != HeaderSize {
		t.Fatalf("encoded length = %d want %d", len(enc), HeaderSize)
	}
	got, err := DecodeHeader(enc)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(h, got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeHeaderBadMagic(t *testing.T) {
	b := make([]byte, HeaderSize)
	if _, err := DecodeHeader(b); err != ErrBadMagic {
		t.Fatalf("expected ErrBadMagic, got %v", err)
	}
}

func TestExtendedHeaderRoundTrip(t *testing.T) {
	e := &ExtendedHeader{Pairs: []KVPair{
		{Key: KeyBeginTime, ValueType: KVTypeU64, U64: 1234567890},
		{Key: KeyVendor, ValueType: KVTypeBytes, Bytes: []byte("tsvm-encoder")},
		{Key: [4]byte{'Z', 'Z', 'Z', 'Z'}, ValueType: KVTypeBytes, Bytes: []byte("unknown-but-preserved")},
	}}
	enc := e.Encode()
	got, err := DecodeExtendedHeader(enc)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(e, got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
	p, ok := got.Find(KeyBeginTime)
	if !ok || p.U64 != 1234567890 {
		t.Fatalf("Find(BGNT) = %+v, %v", p, ok)
	}
}

func TestExtFPS(t *testing.T) {
	e := &ExtendedHeader{Pairs: []KVPair{
		{Key: KeyExtFPS, ValueType: KVTypeBytes, Bytes: []byte("30000/1001")},
	}}
	num, den, ok := e.ExtFPS()
	if !ok || num != 30000 || den != 1001 {
		t.Fatalf("ExtFPS() = %d/%d, %v", num, den, ok)
	}
}

func TestStreamRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	if err := w.WriteSized(TypeIFrame, []byte("frame-body")); err != nil {
		t.Fatal(err)
	}
	if err := w.WriteBare(TypeSync); err != nil {
		t.Fatal(err)
	}
	if err := w.WriteFixed(TypeGOPSync, []byte{8}); err != nil {
		t.Fatal(err)
	}
	if err := w.WriteSized(PacketType(0xAB), []byte("unknown-type-payload")); err != nil {
		t.Fatal(err)
	}

	r := NewReader(&buf)
	p1, err := r.Next()
	if err != nil {
		t.Fatal(err)
	}
	if p1.Type != TypeIFrame || string(p1.Body) != "frame-body" {
		t.Fatalf("p1 = %+v", p1)
	}
	p2, err := r.Next()
	if err != nil {
		t.Fatal(err)
	}
	if p2.Type != TypeGOPSync || len(p2.Body) != 1 || p2.Body[0] != 8 {
		t.Fatalf("p2 = %+v", p2)
	}
	p3, err := r.Next()
	if err != nil {
		t.Fatal(err)
	}
	if p3.Type != PacketType(0xAB) || string(p3.Body) != "unknown-type-payload" {
		t.Fatalf("p3 = %+v", p3)
	}
}

func TestTADPacketRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	payload := []byte("mid-side-coefficients")
	if err := w.WriteTAD(31991, payload); err != nil {
		t.Fatal(err)
	}
	r := NewReader(&buf)
	p, err := r.Next()
	if err != nil {
		t.Fatal(err)
	}
	if p.Type != TypeTADAudio {
		t.Fatalf("type = %v", p.Type)
	}
	if diff := cmp.Diff(payload, p.Body[6:]); diff != "" {
		t.Fatalf("payload mismatch (-want +got):\n%s", diff)
	}
}

func TestCRC32(t *testing.T) {
	if CRC32(nil) != 0 {
		t.Fatalf("CRC32(nil) = %x want 0", CRC32(nil))
	}
	if CRC32([]byte("123456789")) != 0xCBF43926 {
		t.Fatalf("CRC32 check value mismatch: %x", CRC32([]byte("123456789")))
	}
}

func TestSkipSafetyUnknownTypeByte(t *testing.T) {
	for b := 0; b <= 0xFF; b++ {
		t := PacketType(b)
		_ = t.Name()
		_ = t.IsSized()
	}
}
