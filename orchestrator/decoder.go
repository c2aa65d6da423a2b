/*
NAME
  decoder.go

DESCRIPTION
  decoder.go implements the plain (non-FEC) TAV/TAD container's
  top-level decoder state machine, per spec.md §4.11: INIT ->
  EXPECT_HEADER -> (EXPECT_PACKET <-> IN_GOP_DECODE) -> CLOSED. It
  mirrors fec/dt.Decoder's shape, generalised from the FEC channel's
  sync-scan/LDPC/RS accounting to the plain container's Zstd/entropy
  accounting, per spec.md §7's error-kind table: only BadMagic,
  UnsupportedVersion, a truncated or malformed packet framing, and a
  bytes-read-but-no-frames-decoded condition are surfaced as errors;
  decode failures inside a packet are counted in Stats.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package orchestrator

import (
	"io"

	"github.com/pkg/errors"

	"github.com/tsvm/tav/codec/tad"
	"github.com/tsvm/tav/codec/tav"
	"github.com/tsvm/tav/colour"
	"github.com/tsvm/tav/container"
	"github.com/tsvm/tav/internal/logging"
	"github.com/tsvm/tav/wavelet"
)

// State is one of the top-level decoder states, per spec.md §4.11.
type State int

const (
	StateInit State = iota
	StateExpectHeader
	StateExpectPacket
	StateInGOPDecode
	StateClosed
)

// ErrUnsupportedVersion is returned by Open when the file header's
// version byte names a layout this decoder does not understand.
var ErrUnsupportedVersion = errors.New("orchestrator: unsupported container version")

// ErrNoFramesDecoded is returned by Close when the stream yielded at
// least one byte past the file header but not a single decodable
// frame, per spec.md §7's "bytes read but no frames decoded" fatal
// case.
var ErrNoFramesDecoded = errors.New("orchestrator: no frames decoded")

// maxSupportedVersion is the highest FileHeader.Version this decoder
// understands; spec.md §4.1 names version 5 (full-resolution chroma)
// as current.
const maxSupportedVersion = 5

// DefaultTemporalFilter and DefaultTemporalLevels are the GOP-unified
// packet's temporal-DWT parameters: Haar with L_t=2, per spec.md
// §4.7's "Haar by default ... L_t = 2 is standard". The file header
// has no field for them (no per-packet temporal-transform
// negotiation, mirroring TAV-DT's header-derived fixed parameters
// note in spec.md §4.10), so Encoder and Decoder both pin these
// constants rather than trusting a config value the wire format
// cannot actually carry.
const (
	DefaultTemporalFilter = wavelet.Haar
	DefaultTemporalLevels = 2
)

// Unit is one decoded output: a video frame, an audio chunk, or
// neither (a packet that only advanced decoder state, e.g. GOP sync
// or extended-header metadata).
type Unit struct {
	// Video is non-nil when the packet decoded to a displayable RGB
	// frame (I-frame, P-frame, or one frame out of a GOP-unified
	// packet).
	Video []colour.RGB
	// AudioLeft/AudioRight are non-nil when the packet was a TAD audio
	// chunk (0x24).
	AudioLeft, AudioRight []int16
}

// Decoder drives the plain TAV/TAD container's state machine over a
// byte stream, dispatching each packet to the codec that owns its
// type and keeping the reference-frame chain spec.md §4.6 requires for
// SKIP/DELTA P-frames.
type Decoder struct {
	r      *container.Reader
	state  State
	Header *container.FileHeader
	logger logging.Logger
	stats  Stats

	params tav.Params
	coder  tav.Coder
	ref    *tav.Frame

	// pending holds video Units still owed to the caller from the last
	// GOP-unified/motion packet: that packet decodes to gop_size frames
	// at once, but Next hands them back one at a time, in presentation
	// order, per spec.md §4.6's "frames appear in presentation order"
	// note.
	pending []Unit

	bytesSeenPastHeader bool
}

// NewDecoder wraps r for TAV/TAD decoding, starting in StateInit. If
// logger is nil a no-op logger is used.
func NewDecoder(r io.Reader, logger logging.Logger) *Decoder {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Decoder{r: container.NewReader(r), state: StateInit, logger: logger}
}

// State returns the decoder's current top-level state.
func (d *Decoder) State() State { return d.state }

// Stats returns a snapshot of the decoder's non-fatal error counters.
func (d *Decoder) Stats() Stats { return d.stats }

// Open reads the 32-byte file header and transitions to
// StateExpectPacket. A bad magic or unsupported version is fatal, per
// spec.md §7; everything else about the stream is recoverable.
func (d *Decoder) Open(hdr []byte) (*container.FileHeader, error) {
	d.state = StateExpectHeader
	h, err := container.DecodeHeader(hdr)
	if err != nil {
		d.state = StateClosed
		return nil, err
	}
	if h.Version > maxSupportedVersion {
		d.state = StateClosed
		return nil, errors.Wrapf(ErrUnsupportedVersion, "version %d", h.Version)
	}
	d.Header = h
	d.params = tav.Params{
		Width:    int(h.Width),
		Height:   int(h.Height),
		Filter:   wavelet.Filter(h.WaveletFilter),
		Levels:   int(h.DecompLevels),
		QY:       h.QuantiserY,
		QCo:      h.QuantiserCo,
		QCg:      h.QuantiserCg,
		Lossless: h.VideoFlags&container.VideoFlagLossless != 0,
	}
	d.coder = tav.Coder(h.EntropyCoder)
	d.state = StateExpectPacket
	return h, nil
}

// Next reads and dispatches the next packet, returning the decoded
// Unit. It returns io.EOF at a clean stream end. Decode-layer failures
// (a bad Zstd frame, an entropy-coder overflow) are counted in Stats
// and the packet is skipped, per spec.md §7's non-fatal policy: a
// failed P-frame is answered with the current reference frame, any
// other failed packet yields no Unit and Next moves on to the following
// packet. Only a truncated/malformed packet framing (the stream itself
// is corrupt) returns an error.
func (d *Decoder) Next() (Unit, error) {
	if len(d.pending) > 0 {
		u := d.pending[0]
		d.pending = d.pending[1:]
		return u, nil
	}

	if d.state != StateExpectPacket && d.state != StateInGOPDecode {
		d.state = StateExpectPacket
	}

	for {
		pkt, err := d.r.Next()
		if err != nil {
			if err == io.EOF {
				d.state = StateClosed
				return Unit{}, io.EOF
			}
			d.state = StateClosed
			return Unit{}, err
		}
		d.bytesSeenPastHeader = true
		d.stats.PacketsRead++
		d.state = StateInGOPDecode

		units, decErr := d.dispatch(pkt)
		if decErr != nil {
			d.logger.Log(logging.Warning, "packet decode failed, skipping", "type", pkt.Type.Name(), "error", decErr.Error())
			if pkt.Type == container.TypePFrame && d.ref != nil {
				d.state = StateExpectPacket
				return Unit{Video: d.ref.ToRGB()}, nil
			}
			continue
		}
		if len(units) == 0 {
			continue
		}
		d.state = StateExpectPacket
		d.pending = units[1:]
		return units[0], nil
	}
}

// dispatch decodes one packet into zero or more Units (a video or
// audio packet yields one Unit per frame/chunk it carries; a
// metadata-only packet yields none).
func (d *Decoder) dispatch(pkt *container.Packet) ([]Unit, error) {
	switch pkt.Type {
	case container.TypeIFrame:
		f, err := tav.DecodeIFrame(d.params, d.coder, pkt.Body)
		if err != nil {
			d.stats.ZstdErrors++
			return nil, err
		}
		d.ref = f
		d.stats.FramesDecoded++
		return []Unit{{Video: f.ToRGB()}}, nil

	case container.TypePFrame:
		f, err := tav.DecodePFrame(d.params, d.coder, pkt.Body, d.ref)
		if err != nil {
			d.stats.ZstdErrors++
			return nil, err
		}
		d.ref = f
		d.stats.FramesDecoded++
		return []Unit{{Video: f.ToRGB()}}, nil

	case container.TypeGOPUnified:
		frames, err := tav.DecodeGOPUnified(d.params, d.coder, DefaultTemporalFilter, DefaultTemporalLevels, pkt.Body)
		if err != nil {
			d.stats.ZstdErrors++
			return nil, err
		}
		return d.framesToUnits(frames), nil

	case container.TypeGOPMotion:
		body, err := unwrapMotion(pkt.Body)
		if err != nil {
			return nil, err
		}
		frames, err := tav.DecodeGOPUnified(d.params, d.coder, DefaultTemporalFilter, DefaultTemporalLevels, body)
		if err != nil {
			d.stats.ZstdErrors++
			return nil, err
		}
		return d.framesToUnits(frames), nil

	case container.TypeTADAudio:
		if len(pkt.Body) < 6 {
			return nil, errors.New("orchestrator: truncated TAD packet")
		}
		sampleCount := int(pkt.Body[0]) | int(pkt.Body[1])<<8
		left, right := tad.DecodeChunk16OrSilence(sampleCount, pkt.Body[6:])
		return []Unit{{AudioLeft: left, AudioRight: right}}, nil

	case container.TypeExtendedKV:
		if _, err := container.DecodeExtendedHeader(pkt.Body); err != nil {
			d.logger.Log(logging.Warning, "malformed extended header, ignoring", "error", err.Error())
		}
		return nil, nil

	case container.TypeGOPSync:
		return nil, nil

	default:
		d.stats.UnknownPacketTypes++
		return nil, nil
	}
}

// framesToUnits converts a decoded GOP into Units in presentation
// order and advances the reference frame to the GOP's last frame, per
// spec.md §4.6.
func (d *Decoder) framesToUnits(frames []*tav.Frame) []Unit {
	d.stats.FramesDecoded += len(frames)
	if len(frames) == 0 {
		return nil
	}
	d.ref = frames[len(frames)-1]
	units := make([]Unit, len(frames))
	for i, f := range frames {
		units[i] = Unit{Video: f.ToRGB()}
	}
	return units
}

// unwrapMotion strips the 0x13 packet's `u32 mv_size, u32 cv_size`
// header and returns the coefficient-volume bytes, discarding the
// motion-vector block: this decoder path is fully oblivious to motion
// vectors, per spec.md §9 Design Notes.
func unwrapMotion(body []byte) ([]byte, error) {
	if len(body) < 8 {
		return nil, errors.New("orchestrator: truncated GOP-motion packet")
	}
	mvSize := le32(body[0:4])
	if uint64(8+mvSize) > uint64(len(body)) {
		return nil, errors.New("orchestrator: GOP-motion mv_size exceeds packet body")
	}
	rest := body[4+mvSize:]
	if len(rest) < 4 {
		return nil, errors.New("orchestrator: truncated GOP-motion cv_size field")
	}
	cvSize := le32(rest[0:4])
	cv := rest[4:]
	if uint64(cvSize) > uint64(len(cv)) {
		return nil, errors.New("orchestrator: GOP-motion cv_size exceeds remaining body")
	}
	return cv[:cvSize], nil
}

func le32(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}

// Close finalises the decoder, returning ErrNoFramesDecoded if at
// least one byte was read past the file header but not a single frame
// was ever decoded, per spec.md §7.
func (d *Decoder) Close() error {
	d.state = StateClosed
	if d.bytesSeenPastHeader && d.stats.FramesDecoded == 0 {
		return ErrNoFramesDecoded
	}
	return nil
}
