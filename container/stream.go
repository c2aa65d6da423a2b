/*
NAME
  stream.go

DESCRIPTION
  stream.go implements the packet stream reader/writer: dispatch by
  type byte, the `u32 size` framing most packet types carry, and the
  no-size SYNC/SYNC_NTSC bytes that may appear between any two packets,
  per spec.md §4.9.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package container

import (
	"bufio"
	"encoding/binary"
	"io"

	"github.com/pkg/errors"
)

// Packet is one decoded container packet: its type byte and body,
// already stripped of the `u32 size` prefix where one exists.
type Packet struct {
	Type PacketType
	Body []byte
}

// Reader reads a sequence of packets from an underlying byte stream,
// transparently skipping SYNC/SYNC_NTSC bytes. Next reads unrecognised
// type bytes as sized packets and does not resync on its own; callers
// use Resync to hunt forward for the next plausible packet type.
type Reader struct {
	r *bufio.Reader
}

// NewReader wraps r for packet-level reads.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: bufio.NewReaderSize(r, 64*1024)}
}

// ErrShortPacket is returned when a sized packet's declared size
// exceeds what remains in the stream.
var ErrShortPacket = errors.New("container: packet body shorter than declared size")

// Next returns the next packet, transparently skipping bare SYNC and
// SYNC_NTSC bytes (which carry no body). io.EOF is returned at a clean
// stream end.
func (s *Reader) Next() (*Packet, error) {
	for {
		tb, err := s.r.ReadByte()
		if err != nil {
			return nil, err
		}
		t := PacketType(tb)
		switch t {
		case TypeSync, TypeSyncNTSC, TypeNoop, TypeLoopStart, TypeLoopEnd:
			continue // No body; caller sees only packets that carry data.
		}

		e, known := registry[t]
		switch {
		case t == TypeTADAudio:
			return s.readTADPacket()
		case known && e.framing == framingFixed:
			body := make([]byte, e.fixed)
			if _, err := io.ReadFull(s.r, body); err != nil {
				return nil, errors.Wrap(ErrShortPacket, err.Error())
			}
			return &Packet{Type: t, Body: body}, nil
		default: // sized framing, including every unrecognised type byte.
			var szBuf [4]byte
			if _, err := io.ReadFull(s.r, szBuf[:]); err != nil {
				return nil, errors.Wrap(ErrShortPacket, err.Error())
			}
			size := binary.LittleEndian.Uint32(szBuf[:])
			body := make([]byte, size)
			if _, err := io.ReadFull(s.r, body); err != nil {
				return nil, errors.Wrap(ErrShortPacket, err.Error())
			}
			return &Packet{Type: t, Body: body}, nil
		}
	}
}

// readTADPacket reads the 0x24 TAD audio packet, whose framing is
// `u16 sample_count, u32 payload_size_plus_7, <payload>` rather than
// the generic `u32 size` shape, per spec.md §6.
func (s *Reader) readTADPacket() (*Packet, error) {
	var hdr [6]byte
	if _, err := io.ReadFull(s.r, hdr[:]); err != nil {
		return nil, errors.Wrap(ErrShortPacket, err.Error())
	}
	sampleCount := binary.LittleEndian.Uint16(hdr[0:2])
	sizePlus7 := binary.LittleEndian.Uint32(hdr[2:6])
	if sizePlus7 < 7 {
		return nil, errors.Errorf("container: TAD packet payload_size_plus_7=%d too small", sizePlus7)
	}
	payload := make([]byte, sizePlus7-7)
	if _, err := io.ReadFull(s.r, payload); err != nil {
		return nil, errors.Wrap(ErrShortPacket, err.Error())
	}
	body := make([]byte, 6+len(payload))
	copy(body, hdr[:])
	copy(body[6:], payload)
	_ = sampleCount // retained in body; parsed again by codec/tad.
	return &Packet{Type: TypeTADAudio, Body: body}, nil
}

// Resync delegates to the package-level Resync, reusing the Reader's
// buffered stream so no bytes are lost across the call.
func (s *Reader) Resync() (PacketType, error) { return Resync(s.r) }

// Writer serialises packets with the standard `type, [size,] body`
// framing.
type Writer struct {
	w io.Writer
}

// NewWriter wraps w for packet-level writes.
func NewWriter(w io.Writer) *Writer { return &Writer{w: w} }

// WriteSized writes a sized packet: type byte, u32 size, body.
func (s *Writer) WriteSized(t PacketType, body []byte) error {
	if _, err := s.w.Write([]byte{byte(t)}); err != nil {
		return err
	}
	var szBuf [4]byte
	binary.LittleEndian.PutUint32(szBuf[:], uint32(len(body)))
	if _, err := s.w.Write(szBuf[:]); err != nil {
		return err
	}
	_, err := s.w.Write(body)
	return err
}

// WriteFixed writes a fixed-body packet with no size prefix (GOP sync,
// timecode, screen mask).
func (s *Writer) WriteFixed(t PacketType, body []byte) error {
	if _, err := s.w.Write([]byte{byte(t)}); err != nil {
		return err
	}
	_, err := s.w.Write(body)
	return err
}

// WriteBare writes a type byte with no body at all (SYNC, SYNC_NTSC,
// NOOP, loop markers).
func (s *Writer) WriteBare(t PacketType) error {
	_, err := s.w.Write([]byte{byte(t)})
	return err
}

// WriteTAD writes the 0x24 TAD audio packet's non-generic framing.
func (s *Writer) WriteTAD(sampleCount uint16, payload []byte) error {
	if _, err := s.w.Write([]byte{byte(TypeTADAudio)}); err != nil {
		return err
	}
	var hdr [6]byte
	binary.LittleEndian.PutUint16(hdr[0:2], sampleCount)
	binary.LittleEndian.PutUint32(hdr[2:6], uint32(len(payload)+7))
	if _, err := s.w.Write(hdr[:]); err != nil {
		return err
	}
	_, err := s.w.Write(payload)
	return err
}
