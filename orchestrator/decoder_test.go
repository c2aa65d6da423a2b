package orchestrator

import (
	"bytes"
	"io"
	"testing"

	"github.com/tsvm/tav/codec/tad"
	"github.com/tsvm/tav/container"
	"github.com/tsvm/tav/internal/logging"
)

func testHeader(t *testing.T, version uint8) *container.FileHeader {
	t.Helper()
	return &container.FileHeader{
		Version:       version,
		Width:         testWidth,
		Height:        testHeight,
		FPS:           25,
		WaveletFilter: 0, // wavelet.CDF53
		DecompLevels:  2,
	}
}

func TestDecoderOpenUnsupportedVersion(t *testing.T) {
	h := testHeader(t, maxSupportedVersion+1)
	dec := NewDecoder(bytes.NewReader(nil), logging.NewNop())
	if _, err := dec.Open(h.Encode()); err == nil {
		t.Fatal("Open with future version: want error, got nil")
	}
	if dec.State() != StateClosed {
		t.Errorf("state after failed Open = %v, want StateClosed", dec.State())
	}
}

func TestDecoderOpenBadMagic(t *testing.T) {
	dec := NewDecoder(bytes.NewReader(nil), logging.NewNop())
	bad := make([]byte, container.HeaderSize)
	if _, err := dec.Open(bad); err != container.ErrBadMagic {
		t.Fatalf("Open with zeroed header: got %v, want ErrBadMagic", err)
	}
}

func TestDecoderTADAudioPacket(t *testing.T) {
	left := make([]int16, tad.MinSampleCount)
	right := make([]int16, tad.MinSampleCount)
	for i := range left {
		left[i] = int16(i % 1000)
		right[i] = int16(-(i % 1000))
	}
	payload, err := tad.EncodeChunk16(tad.Params{QuantiserScale: 1, ZstdLevel: -1}, left, right)
	if err != nil {
		t.Fatalf("EncodeChunk16: %v", err)
	}

	var buf bytes.Buffer
	h := testHeader(t, 5)
	if _, err := buf.Write(h.Encode()); err != nil {
		t.Fatal(err)
	}
	cw := container.NewWriter(&buf)
	if err := cw.WriteTAD(uint16(len(left)), payload); err != nil {
		t.Fatalf("WriteTAD: %v", err)
	}

	r := bytes.NewReader(buf.Bytes())
	hdr := make([]byte, container.HeaderSize)
	if _, err := io.ReadFull(r, hdr); err != nil {
		t.Fatal(err)
	}
	dec := NewDecoder(r, logging.NewNop())
	if _, err := dec.Open(hdr); err != nil {
		t.Fatalf("Open: %v", err)
	}

	u, err := dec.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if u.AudioLeft == nil || u.AudioRight == nil {
		t.Fatal("expected an audio Unit, got none")
	}
	if len(u.AudioLeft) != len(left) {
		t.Fatalf("decoded %d audio samples, want %d", len(u.AudioLeft), len(left))
	}

	if _, err := dec.Next(); err != io.EOF {
		t.Fatalf("Next at stream end: got %v, want io.EOF", err)
	}
}

func TestDecoderSkipsUnknownPacketType(t *testing.T) {
	var buf bytes.Buffer
	h := testHeader(t, 5)
	if _, err := buf.Write(h.Encode()); err != nil {
		t.Fatal(err)
	}
	cw := container.NewWriter(&buf)
	// 0xD0 is outside the registry; IsSized treats unknown types as
	// sized, so this still skips safely.
	if err := cw.WriteSized(container.PacketType(0xD0), []byte("future-extension")); err != nil {
		t.Fatal(err)
	}

	r := bytes.NewReader(buf.Bytes())
	hdr := make([]byte, container.HeaderSize)
	if _, err := io.ReadFull(r, hdr); err != nil {
		t.Fatal(err)
	}
	dec := NewDecoder(r, logging.NewNop())
	if _, err := dec.Open(hdr); err != nil {
		t.Fatalf("Open: %v", err)
	}

	if _, err := dec.Next(); err != io.EOF {
		t.Fatalf("Next over an unknown packet: got %v, want io.EOF", err)
	}
	if dec.Stats().UnknownPacketTypes != 1 {
		t.Errorf("UnknownPacketTypes = %d, want 1", dec.Stats().UnknownPacketTypes)
	}
}

func TestDecoderCloseNoFramesDecoded(t *testing.T) {
	var buf bytes.Buffer
	h := testHeader(t, 5)
	if _, err := buf.Write(h.Encode()); err != nil {
		t.Fatal(err)
	}
	cw := container.NewWriter(&buf)
	if err := cw.WriteSized(container.PacketType(0xD0), []byte("noop")); err != nil {
		t.Fatal(err)
	}

	r := bytes.NewReader(buf.Bytes())
	hdr := make([]byte, container.HeaderSize)
	if _, err := io.ReadFull(r, hdr); err != nil {
		t.Fatal(err)
	}
	dec := NewDecoder(r, logging.NewNop())
	if _, err := dec.Open(hdr); err != nil {
		t.Fatalf("Open: %v", err)
	}
	for {
		if _, err := dec.Next(); err == io.EOF {
			break
		}
	}
	if err := dec.Close(); err != ErrNoFramesDecoded {
		t.Fatalf("Close: got %v, want ErrNoFramesDecoded", err)
	}
}

func TestDecoderCloseNoBytesReadIsNotFatal(t *testing.T) {
	var buf bytes.Buffer
	h := testHeader(t, 5)
	if _, err := buf.Write(h.Encode()); err != nil {
		t.Fatal(err)
	}

	r := bytes.NewReader(buf.Bytes())
	hdr := make([]byte, container.HeaderSize)
	if _, err := io.ReadFull(r, hdr); err != nil {
		t.Fatal(err)
	}
	dec := NewDecoder(r, logging.NewNop())
	if _, err := dec.Open(hdr); err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, err := dec.Next(); err != io.EOF {
		t.Fatalf("Next on empty packet stream: got %v, want io.EOF", err)
	}
	if err := dec.Close(); err != nil {
		t.Fatalf("Close on a header-only stream: got %v, want nil", err)
	}
}
