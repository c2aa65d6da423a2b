/*
NAME
  decoder.go

DESCRIPTION
  decoder.go implements the TAV-DT top-level decoder state machine and
  its error-statistics accumulator, per spec.md §4.11 and §7's error
  kind table: FEC/CRC failures are logged (counted) and decoding
  proceeds; only a missing file header is fatal.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package dt

import (
	"bufio"
	"io"

	"github.com/tsvm/tav/container"
)

// State is one of the top-level decoder states, per spec.md §4.11.
type State int

const (
	StateInit State = iota
	StateExpectHeader
	StateExpectPacket
	StateInGOPDecode
	StateResync
	StateClosed
)

// Stats accumulates the non-fatal error counters spec.md §7 requires:
// sync pattern losses, main-header CRC mismatches, LDPC decode
// failures (bit-flipping did not converge), and RS blocks it could not
// fully correct. Sub-header CRC mismatches are not counted.
type Stats struct {
	SyncLosses   int
	CRCErrors    int
	LDPCFailures int
	RSErrors     int
	PacketsRead  int
}

// Decoder drives the TAV-DT state machine over a byte stream.
type Decoder struct {
	r      *bufio.Reader
	state  State
	Header *container.FileHeader
	Stats  Stats
}

// NewDecoder wraps r for TAV-DT decoding, starting in StateInit.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{r: bufio.NewReaderSize(r, 64*1024), state: StateInit}
}

// State returns the decoder's current top-level state.
func (d *Decoder) State() State { return d.state }

// Open reads the unencoded, unprotected file header (spec.md §3.5
// invariant 1) and transitions to StateExpectPacket.
func (d *Decoder) Open() (*container.FileHeader, error) {
	d.state = StateExpectHeader
	buf, err := readFull(d.r, container.HeaderSize)
	if err != nil {
		d.state = StateClosed
		return nil, err
	}
	h, err := container.DecodeHeader(buf)
	if err != nil {
		d.state = StateClosed
		return nil, err
	}
	d.Header = h
	d.state = StateExpectPacket
	return h, nil
}

// Next reads and returns the next TAV-DT packet, resynchronising on a
// missing sync pattern and accounting CRC/LDPC/RS failures in Stats
// rather than returning them as errors. It returns io.EOF at a clean
// stream end; any other error closes the decoder.
func (d *Decoder) Next() (*Packet, error) {
	if d.state != StateExpectPacket && d.state != StateInGOPDecode {
		d.state = StateExpectPacket
	}

	for {
		sync, nSkipped, err := ResyncMain(d.r)
		if err != nil {
			d.state = StateClosed
			return nil, err
		}
		if nSkipped > 0 {
			d.state = StateResync
			d.Stats.SyncLosses++
		}

		d.state = StateInGOPDecode
		p, err := d.readOnePacket(sync)
		if err != nil {
			if err == io.EOF {
				d.state = StateClosed
				return nil, err
			}
			// A sync pattern inside the packet (the TAV sub-packet
			// sync, typically) was missing: the packet is lost but
			// the stream is not; scan forward for the next main sync
			// and keep going, per spec.md §4.10/§4.11.
			d.state = StateResync
			d.Stats.SyncLosses++
			continue
		}
		d.Stats.PacketsRead++
		return d.finish(p), nil
	}
}

func (d *Decoder) readOnePacket(sync uint32) (*Packet, error) {
	return ReadPacket(d.r, sync)
}

func (d *Decoder) finish(p *Packet) *Packet {
	if !p.MainLDPCOK || !p.TADLDPCOK || !p.TAVLDPCOK {
		d.Stats.LDPCFailures++
	}
	if !p.MainCRCOK {
		d.Stats.CRCErrors++
	}
	d.Stats.RSErrors += p.TADRSErrors + p.TAVRSErrors

	d.state = StateExpectPacket
	return p
}

// Close transitions the decoder to StateClosed.
func (d *Decoder) Close() { d.state = StateClosed }
