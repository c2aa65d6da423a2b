/*
NAME
  header.go

DESCRIPTION
  header.go implements the TAV-DT main header: the 28-byte raw layout
  and its CRC-32, per spec.md §6.2/§6.3. The header is always carried
  LDPC-encoded on the wire (see packet.go); this file only handles the
  raw bytes either side of that encoding.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package dt implements the TAV-DT (Digital Tape) transport: sync-pattern
// framing and resynchronisation, LDPC-protected headers, and
// Reed-Solomon-protected payloads, per spec.md §3.4/§4.10/§4.11.
package dt

import (
	"github.com/pkg/errors"

	"github.com/tsvm/tav/bitio"
	"github.com/tsvm/tav/container"
)

// MainHeaderSize is the raw (pre-LDPC) main header length.
const MainHeaderSize = 28

// MainHeader is the TAV-DT per-packet main header, per spec.md §6.2.
type MainHeader struct {
	FPS           uint8
	Flags         uint8
	PacketSize    uint32
	TimecodeNS    uint64
	OffsetToVideo uint32
	CRC32         uint32
}

// ErrBadCRC is returned when a decoded main header's CRC does not match.
var ErrBadCRC = errors.New("dt: main header CRC mismatch")

// Encode serialises h into the 28-byte raw layout, computing CRC32 over
// the first 24 bytes.
func (h *MainHeader) Encode() []byte {
	w := bitio.NewByteWriter()
	w.U8(h.FPS)
	w.U8(h.Flags)
	w.Write([]byte{0, 0}) // reserved
	w.U32(h.PacketSize)
	w.U64(h.TimecodeNS)
	w.U32(h.OffsetToVideo)
	w.Write([]byte{0, 0, 0, 0}) // reserved
	body := w.Bytes()
	crc := container.CRC32(body)
	w.U32(crc)
	b := w.Bytes()
	if len(b) != MainHeaderSize {
		panic("dt: main header encode produced wrong length")
	}
	return b
}

// DecodeMainHeader parses the 28-byte raw main header and verifies its
// CRC.
func DecodeMainHeader(b []byte) (*MainHeader, error) {
	if len(b) != MainHeaderSize {
		return nil, errors.Errorf("dt: main header length %d, want %d", len(b), MainHeaderSize)
	}
	want := container.CRC32(b[:24])
	r := bitio.NewByteReader(b)
	h := &MainHeader{}
	h.FPS, _ = r.U8()
	h.Flags, _ = r.U8()
	_, _ = r.Bytes(2)
	h.PacketSize, _ = r.U32()
	h.TimecodeNS, _ = r.U64()
	h.OffsetToVideo, _ = r.U32()
	_, _ = r.Bytes(4)
	h.CRC32, _ = r.U32()
	if h.CRC32 != want {
		return h, ErrBadCRC
	}
	return h, nil
}
