/*
NAME
  subheader.go

DESCRIPTION
  subheader.go implements the two 14-byte sub-packet headers TAV-DT
  carries after the main header: the TAD audio sub-header and the TAV
  video sub-header, per spec.md §6.2. Both are LDPC(14→28)-protected on
  the wire and CRC-32 over their first 10 bytes.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package dt

import (
	"github.com/pkg/errors"

	"github.com/tsvm/tav/bitio"
	"github.com/tsvm/tav/container"
)

// SubHeaderSize is the raw (pre-LDPC) sub-packet header length, shared
// by both the TAD and TAV sub-headers.
const SubHeaderSize = 14

// TADSubHeader is the TAD audio sub-packet header.
type TADSubHeader struct {
	SampleCount    uint16
	QuantBits      uint8
	CompressedSize uint32
	RSBlockCount   uint32 // fits in 24 bits on the wire
	CRC32          uint32
}

// Encode serialises h into the 14-byte raw layout.
func (h *TADSubHeader) Encode() []byte {
	w := bitio.NewByteWriter()
	w.U16(h.SampleCount)
	w.U8(h.QuantBits)
	w.U32(h.CompressedSize)
	w.U24(h.RSBlockCount)
	body := w.Bytes()
	w.U32(container.CRC32(body))
	b := w.Bytes()
	if len(b) != SubHeaderSize {
		panic("dt: TAD sub-header encode produced wrong length")
	}
	return b
}

// DecodeTADSubHeader parses and CRC-checks a 14-byte TAD sub-header.
func DecodeTADSubHeader(b []byte) (*TADSubHeader, error) {
	if len(b) != SubHeaderSize {
		return nil, errors.Errorf("dt: TAD sub-header length %d, want %d", len(b), SubHeaderSize)
	}
	want := container.CRC32(b[:10])
	r := bitio.NewByteReader(b)
	h := &TADSubHeader{}
	h.SampleCount, _ = r.U16()
	h.QuantBits, _ = r.U8()
	h.CompressedSize, _ = r.U32()
	h.RSBlockCount, _ = r.U24()
	h.CRC32, _ = r.U32()
	if h.CRC32 != want {
		return h, ErrBadCRC
	}
	return h, nil
}

// TAVSubHeader is the TAV video sub-packet header.
type TAVSubHeader struct {
	GOPSize        uint8
	CompressedSize uint32
	RSBlockCount   uint32
	CRC32          uint32
}

// Encode serialises h into the 14-byte raw layout.
func (h *TAVSubHeader) Encode() []byte {
	w := bitio.NewByteWriter()
	w.U8(h.GOPSize)
	w.Write([]byte{0, 0}) // reserved
	w.U32(h.CompressedSize)
	w.U24(h.RSBlockCount)
	body := w.Bytes()
	w.U32(container.CRC32(body))
	b := w.Bytes()
	if len(b) != SubHeaderSize {
		panic("dt: TAV sub-header encode produced wrong length")
	}
	return b
}

// DecodeTAVSubHeader parses and CRC-checks a 14-byte TAV sub-header.
func DecodeTAVSubHeader(b []byte) (*TAVSubHeader, error) {
	if len(b) != SubHeaderSize {
		return nil, errors.Errorf("dt: TAV sub-header length %d, want %d", len(b), SubHeaderSize)
	}
	want := container.CRC32(b[:10])
	r := bitio.NewByteReader(b)
	h := &TAVSubHeader{}
	h.GOPSize, _ = r.U8()
	_, _ = r.Bytes(2)
	h.CompressedSize, _ = r.U32()
	h.RSBlockCount, _ = r.U24()
	h.CRC32, _ = r.U32()
	if h.CRC32 != want {
		return h, ErrBadCRC
	}
	return h, nil
}
