/*
NAME
  codec.go

DESCRIPTION
  codec.go assembles FrameBlob payloads (mode byte, quantiser
  overrides, per-channel entropy-coded coefficient streams) and the
  I-frame/P-frame/GOP-unified packet bodies around them, per
  spec.md §3.1 and §4.6.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package tav

import (
	"encoding/binary"

	"github.com/pkg/errors"

	"github.com/tsvm/tav/bitio"
	"github.com/tsvm/tav/container"
	"github.com/tsvm/tav/entropy"
	"github.com/tsvm/tav/quant"
	"github.com/tsvm/tav/temporal"
	"github.com/tsvm/tav/wavelet"
)

// Coder selects the entropy scheme a frame stream was built with,
// mirroring container.EntropyCoder.
type Coder uint8

const (
	CoderTwobit Coder = Coder(container.EntropyTwobit)
	CoderEZBC   Coder = Coder(container.EntropyEZBC)
	CoderRaw    Coder = Coder(container.EntropyRaw)
)

func encodeChannelStream(coder Coder, coeffs []int16, w, h int) []byte {
	switch coder {
	case CoderEZBC:
		wide := make([]int32, len(coeffs))
		for i, v := range coeffs {
			wide[i] = int32(v)
		}
		return entropy.EncodeEZBC(wide, w, h)
	case CoderRaw:
		buf := make([]byte, len(coeffs)*2)
		for i, v := range coeffs {
			binary.LittleEndian.PutUint16(buf[i*2:], uint16(v))
		}
		return buf
	default:
		return entropy.EncodeTwobit(coeffs)
	}
}

func decodeChannelStream(coder Coder, data []byte, w, h int) ([]int16, error) {
	switch coder {
	case CoderEZBC:
		wide, err := entropy.DecodeEZBC(data, w, h)
		if err != nil {
			return nil, err
		}
		out := make([]int16, len(wide))
		for i, v := range wide {
			out[i] = quantClampI32(v)
		}
		return out, nil
	case CoderRaw:
		n := w * h
		if len(data) < n*2 {
			return nil, errors.Wrap(ErrBadFrame, "raw channel stream too short")
		}
		out := make([]int16, n)
		for i := range out {
			out[i] = int16(binary.LittleEndian.Uint16(data[i*2:]))
		}
		return out, nil
	default:
		return entropy.DecodeTwobit(data, w*h)
	}
}

func quantClampI32(v int32) int16 {
	switch {
	case v > 32767:
		return 32767
	case v < -32768:
		return -32768
	default:
		return int16(v)
	}
}

// EncodeFrameBlob builds the decompressed FrameBlob body for an
// I-frame or DELTA P-frame: mode byte, three override bytes, then the
// length-prefixed per-channel entropy streams in planar Y, Co, Cg
// order.
func EncodeFrameBlob(p Params, coder Coder, mode Mode, qyOv, qcoOv, qcgOv uint8, yC, coC, cgC []int16) []byte {
	w := bitio.NewByteWriter()
	w.U8(uint8(mode))
	w.U8(qyOv)
	w.U8(qcoOv)
	w.U8(qcgOv)
	if mode == ModeSkip {
		return w.Bytes()
	}
	streams := [][]byte{
		encodeChannelStream(coder, yC, p.Width, p.Height),
		encodeChannelStream(coder, coC, p.Width, p.Height),
		encodeChannelStream(coder, cgC, p.Width, p.Height),
	}
	for _, s := range streams {
		w.U32(uint32(len(s)))
		w.Write(s)
	}
	return w.Bytes()
}

// DecodeFrameBlob parses a FrameBlob body produced by EncodeFrameBlob.
func DecodeFrameBlob(p Params, coder Coder, body []byte) (mode Mode, qyOv, qcoOv, qcgOv uint8, yC, coC, cgC []int16, err error) {
	r := bitio.NewByteReader(body)
	modeB, err := r.U8()
	if err != nil {
		return 0, 0, 0, 0, nil, nil, nil, errors.Wrap(ErrBadFrame, err.Error())
	}
	mode = Mode(modeB)
	if qyOv, err = r.U8(); err != nil {
		return 0, 0, 0, 0, nil, nil, nil, errors.Wrap(ErrBadFrame, err.Error())
	}
	if qcoOv, err = r.U8(); err != nil {
		return 0, 0, 0, 0, nil, nil, nil, errors.Wrap(ErrBadFrame, err.Error())
	}
	if qcgOv, err = r.U8(); err != nil {
		return 0, 0, 0, 0, nil, nil, nil, errors.Wrap(ErrBadFrame, err.Error())
	}
	if mode == ModeSkip {
		return mode, qyOv, qcoOv, qcgOv, nil, nil, nil, nil
	}
	chans := make([][]int16, 3)
	for i := range chans {
		size, err := r.U32()
		if err != nil {
			return 0, 0, 0, 0, nil, nil, nil, errors.Wrap(ErrBadFrame, err.Error())
		}
		data, err := r.Bytes(int(size))
		if err != nil {
			return 0, 0, 0, 0, nil, nil, nil, errors.Wrap(ErrBadFrame, err.Error())
		}
		chans[i], err = decodeChannelStream(coder, data, p.Width, p.Height)
		if err != nil {
			return 0, 0, 0, 0, nil, nil, nil, err
		}
	}
	return mode, qyOv, qcoOv, qcgOv, chans[0], chans[1], chans[2], nil
}

// EncodeIFrame builds the Zstd-compressed FrameBlob for an I-frame
// packet. It keeps no reference-frame state; callers that need one
// decode the result or keep their own copy.
func EncodeIFrame(p Params, coder Coder, frame *Frame) []byte {
	qy := quantiserOverride(0, p.QY)
	qco := quantiserOverride(0, p.QCo)
	qcg := quantiserOverride(0, p.QCg)
	yC := forwardChannel(p, frame.Y, qy, quant.ChanY)
	coC := forwardChannel(p, frame.Co, qco, quant.ChanCo)
	cgC := forwardChannel(p, frame.Cg, qcg, quant.ChanCg)
	blob := EncodeFrameBlob(p, coder, ModeIntra, 0, 0, 0, yC, coC, cgC)
	return bitio.Compress(blob)
}

// DecodeIFrame reverses EncodeIFrame, returning the reconstructed frame
// as a new YCoCg float Frame. It does not hold or update any reference
// buffer; the caller keeps the returned frame as its reference.
func DecodeIFrame(p Params, coder Coder, compressed []byte) (*Frame, error) {
	blob, err := bitio.Decompress(compressed)
	if err != nil {
		return nil, errors.Wrap(ErrBadFrame, err.Error())
	}
	mode, qyOv, qcoOv, qcgOv, yC, coC, cgC, err := DecodeFrameBlob(p, coder, blob)
	if err != nil {
		return nil, err
	}
	if mode != ModeIntra {
		return nil, errors.Wrap(ErrBadFrame, "I-frame packet body is not INTRA mode")
	}
	qy := quantiserOverride(qyOv, p.QY)
	qco := quantiserOverride(qcoOv, p.QCo)
	qcg := quantiserOverride(qcgOv, p.QCg)
	f := &Frame{
		W:  p.Width,
		H:  p.Height,
		Y:  inverseChannel(p, yC, qy, quant.ChanY),
		Co: inverseChannel(p, coC, qco, quant.ChanCo),
		Cg: inverseChannel(p, cgC, qcg, quant.ChanCg),
	}
	return f, nil
}

// EncodePFrame builds a P-frame packet body for SKIP, INTRA, or DELTA
// mode, per spec.md §4.6. For DELTA mode, cur is the new frame and ref
// is the previously decoded reference (coefficient-domain) frame; the
// coefficient delta is current-minus-reference before quantisation.
func EncodePFrame(p Params, coder Coder, mode Mode, cur, ref *Frame) []byte {
	if mode == ModeSkip {
		return bitio.Compress(EncodeFrameBlob(p, coder, ModeSkip, 0, 0, 0, nil, nil, nil))
	}
	if mode == ModeIntra {
		qy := quantiserOverride(0, p.QY)
		qco := quantiserOverride(0, p.QCo)
		qcg := quantiserOverride(0, p.QCg)
		yC := forwardChannel(p, cur.Y, qy, quant.ChanY)
		coC := forwardChannel(p, cur.Co, qco, quant.ChanCo)
		cgC := forwardChannel(p, cur.Cg, qcg, quant.ChanCg)
		return bitio.Compress(EncodeFrameBlob(p, coder, ModeIntra, 0, 0, 0, yC, coC, cgC))
	}
	// DELTA: quantise the per-pixel difference directly; the decoder
	// inverse-quantises and adds it onto the float reference buffer.
	delta := &Frame{W: p.Width, H: p.Height, Y: diff(cur.Y, ref.Y), Co: diff(cur.Co, ref.Co), Cg: diff(cur.Cg, ref.Cg)}
	qy := quantiserOverride(0, p.QY)
	qco := quantiserOverride(0, p.QCo)
	qcg := quantiserOverride(0, p.QCg)
	yC := forwardChannel(p, delta.Y, qy, quant.ChanY)
	coC := forwardChannel(p, delta.Co, qco, quant.ChanCo)
	cgC := forwardChannel(p, delta.Cg, qcg, quant.ChanCg)
	return bitio.Compress(EncodeFrameBlob(p, coder, ModeDelta, 0, 0, 0, yC, coC, cgC))
}

// DecodePFrame reverses EncodePFrame. ref is the previously decoded
// reference frame (required for SKIP and DELTA); it is not mutated.
func DecodePFrame(p Params, coder Coder, compressed []byte, ref *Frame) (*Frame, error) {
	blob, err := bitio.Decompress(compressed)
	if err != nil {
		return nil, errors.Wrap(ErrBadFrame, err.Error())
	}
	mode, qyOv, qcoOv, qcgOv, yC, coC, cgC, err := DecodeFrameBlob(p, coder, blob)
	if err != nil {
		return nil, err
	}
	switch mode {
	case ModeSkip:
		if ref == nil {
			return nil, errors.Wrap(ErrBadFrame, "SKIP P-frame with no reference")
		}
		return ref.Clone(), nil
	case ModeIntra:
		qy := quantiserOverride(qyOv, p.QY)
		qco := quantiserOverride(qcoOv, p.QCo)
		qcg := quantiserOverride(qcgOv, p.QCg)
		return &Frame{
			W: p.Width, H: p.Height,
			Y:  inverseChannel(p, yC, qy, quant.ChanY),
			Co: inverseChannel(p, coC, qco, quant.ChanCo),
			Cg: inverseChannel(p, cgC, qcg, quant.ChanCg),
		}, nil
	case ModeDelta:
		if ref == nil {
			return nil, errors.Wrap(ErrBadFrame, "DELTA P-frame with no reference")
		}
		qy := quantiserOverride(qyOv, p.QY)
		qco := quantiserOverride(qcoOv, p.QCo)
		qcg := quantiserOverride(qcgOv, p.QCg)
		dY := inverseChannel(p, yC, qy, quant.ChanY)
		dCo := inverseChannel(p, coC, qco, quant.ChanCo)
		dCg := inverseChannel(p, cgC, qcg, quant.ChanCg)
		return &Frame{
			W: p.Width, H: p.Height,
			Y:  add(ref.Y, dY),
			Co: add(ref.Co, dCo),
			Cg: add(ref.Cg, dCg),
		}, nil
	default:
		return nil, errors.Wrapf(ErrBadFrame, "unknown P-frame mode %d", mode)
	}
}

func diff(a, b []float64) []float64 {
	out := make([]float64, len(a))
	for i := range a {
		out[i] = a[i] - b[i]
	}
	return out
}

func add(a, b []float64) []float64 {
	out := make([]float64, len(a))
	for i := range a {
		out[i] = a[i] + b[i]
	}
	return out
}

// channelSpan describes where one channel's coefficients live inside
// the concatenated Y|Co|Cg spatial signal a GOP frame is flattened to,
// plus the per-pixel perceptual weight/dead-zone for that channel's
// spatial subband layout (spec.md §4.4), unaffected by the temporal
// transform since that runs per fixed spatial index.
type channelSpan struct {
	off, n           int
	qIdx             uint8
	weight, deadzone []float64
}

func channelSpans(p Params, planeLen int) []channelSpan {
	wy, dy := subbandWeights(p, quant.ChanY)
	wco, dco := subbandWeights(p, quant.ChanCo)
	wcg, dcg := subbandWeights(p, quant.ChanCg)
	return []channelSpan{
		{off: 0, n: planeLen, qIdx: p.QY, weight: wy, deadzone: dy},
		{off: planeLen, n: planeLen, qIdx: p.QCo, weight: wco, deadzone: dco},
		{off: 2 * planeLen, n: planeLen, qIdx: p.QCg, weight: wcg, deadzone: dcg},
	}
}

// EncodeGOPUnified builds the Zstd-compressed body of a GOP-unified
// (0x12) packet: `gop_size: u8` then the temporally transformed
// coefficient volume, per spec.md §4.6/§4.7. Each frame's Y, Co and Cg
// spatial-DWT planes are concatenated before the temporal transform
// runs across the GOP; the result is quantised per channel and
// entropy-coded frame by frame, each stream length-prefixed.
func EncodeGOPUnified(p Params, coder Coder, temporalFilter wavelet.Filter, temporalLevels int, frames []*Frame) ([]byte, error) {
	gopSize := len(frames)
	if gopSize < temporal.MinGOP || gopSize > temporal.MaxGOP {
		return nil, errors.Errorf("tav: gop_size %d out of range [%d,%d]", gopSize, temporal.MinGOP, temporal.MaxGOP)
	}

	planeLen := p.Width * p.Height
	spatial := make([][]float64, gopSize)
	for i, f := range frames {
		spatial[i] = append(append(forwardSpatial(p, f.Y), forwardSpatial(p, f.Co)...), forwardSpatial(p, f.Cg)...)
	}

	levels := temporal.EffectiveLevels(gopSize, temporalLevels)
	tCoeffs := temporal.ForwardGOP(temporalFilter, spatial, levels)
	spans := channelSpans(p, planeLen)

	w := bitio.NewByteWriter()
	w.U8(uint8(gopSize))
	for _, frame := range tCoeffs {
		i16 := make([]int16, len(frame))
		for _, sp := range spans {
			step := float64(quant.Step(sp.qIdx))
			copy(i16[sp.off:sp.off+sp.n], quantisePlane(frame[sp.off:sp.off+sp.n], step, sp.weight, sp.deadzone, p.Lossless))
		}
		stream := encodeChannelStream(coder, i16, len(i16), 1)
		w.U32(uint32(len(stream)))
		w.Write(stream)
	}
	return bitio.Compress(w.Bytes()), nil
}

// DecodeGOPUnified reverses EncodeGOPUnified, returning gopSize
// reconstructed frames in display order.
func DecodeGOPUnified(p Params, coder Coder, temporalFilter wavelet.Filter, temporalLevels int, compressed []byte) ([]*Frame, error) {
	body, err := bitio.Decompress(compressed)
	if err != nil {
		return nil, errors.Wrap(ErrBadFrame, err.Error())
	}
	r := bitio.NewByteReader(body)
	gopSizeB, err := r.U8()
	if err != nil {
		return nil, errors.Wrap(ErrBadFrame, err.Error())
	}
	gopSize := int(gopSizeB)
	if gopSize < temporal.MinGOP || gopSize > temporal.MaxGOP {
		return nil, errors.Errorf("tav: decoded gop_size %d out of range", gopSize)
	}

	planeLen := p.Width * p.Height
	spans := channelSpans(p, planeLen)
	total := 3 * planeLen

	tCoeffs := make([][]float64, gopSize)
	for i := 0; i < gopSize; i++ {
		size, err := r.U32()
		if err != nil {
			return nil, errors.Wrap(ErrBadFrame, err.Error())
		}
		data, err := r.Bytes(int(size))
		if err != nil {
			return nil, errors.Wrap(ErrBadFrame, err.Error())
		}
		i16, err := decodeChannelStream(coder, data, total, 1)
		if err != nil {
			return nil, err
		}
		frame := make([]float64, total)
		for _, sp := range spans {
			step := float64(quant.Step(sp.qIdx))
			w := sp.weight
			if p.Lossless {
				w = nil
			}
			copy(frame[sp.off:sp.off+sp.n], dequantisePlane(i16[sp.off:sp.off+sp.n], step, w))
		}
		tCoeffs[i] = frame
	}

	levels := temporal.EffectiveLevels(gopSize, temporalLevels)
	spatial := temporal.InverseGOP(temporalFilter, tCoeffs, levels)

	out := make([]*Frame, gopSize)
	for i, s := range spatial {
		out[i] = &Frame{
			W:  p.Width,
			H:  p.Height,
			Y:  inverseSpatial(p, s[0:planeLen]),
			Co: inverseSpatial(p, s[planeLen:2*planeLen]),
			Cg: inverseSpatial(p, s[2*planeLen:3*planeLen]),
		}
	}
	return out, nil
}
