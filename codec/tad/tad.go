/*
NAME
  tad.go

DESCRIPTION
  tad.go implements the TAD audio chunk codec (C9): the 9-level CDF 9/7
  subband decomposition over one channel's samples, per-subband
  perceptual quantisation against the §6.5 weight tables, twobit-map
  entropy coding, and the Zstd-or-raw chunk framing, per spec.md §4.8.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package tad

import (
	"math"

	"github.com/pkg/errors"

	"github.com/tsvm/tav/bitio"
	"github.com/tsvm/tav/entropy"
	"github.com/tsvm/tav/quant"
	"github.com/tsvm/tav/wavelet"
)

const (
	// SampleRate is the fixed TAD input rate, per spec.md §4.8.
	SampleRate = 32000
	// Levels is the nominal subband decomposition depth.
	Levels = 9
	// MinSampleCount and MaxSampleCount bound one TAD chunk, the latter
	// by the packet framing's u16 sample_count field.
	MinSampleCount = 1024
	MaxSampleCount = 65535

	rawFlag = 0x80000000
)

// Params carries the per-chunk encoder knobs that aren't implied by the
// sample data itself.
type Params struct {
	QuantiserScale float64 // Multiplies the base per-subband weight tables.
	ZstdLevel      int     // < 0 disables compression; the chunk is stored raw.
}

// ErrBadChunk marks a structurally invalid TAD chunk payload.
var ErrBadChunk = errors.New("tad: malformed chunk payload")

// clampLevels never decomposes past the point a subband would drop
// below 2 samples, mirroring temporal.EffectiveLevels' boundary rule.
func clampLevels(n, requested int) int {
	levels := 0
	for levels < requested && n >= 2 {
		levels++
		n = (n + 1) / 2
	}
	return levels
}

// subbandLengths computes the per-band sample counts and per-level
// split lengths for a signal of n samples decomposed `levels` times,
// without running the transform. This is pure geometry — encoder and
// decoder always agree given only sample_count and levels_used, the
// same data-independence the EZBC quadtree and tile layout rely on.
// bandLens is in natural analysis order: [H_1 (finest) .. H_levels, LL].
func subbandLengths(n, levels int) (bandLens, splitLens []int) {
	cur := n
	for used := 0; used < levels && cur >= 2; used++ {
		splitLens = append(splitLens, cur)
		nh := cur / 2
		bandLens = append(bandLens, nh)
		cur = (cur + 1) / 2
	}
	bandLens = append(bandLens, cur)
	return bandLens, splitLens
}

func reverseInts(a []int) []int {
	out := make([]int, len(a))
	for i, v := range a {
		out[len(a)-1-i] = v
	}
	return out
}

// subbandDecompose recursively splits x into low/high halves `levels`
// times (or fewer, if x runs out of samples first), returning bands in
// natural analysis order [H_1 .. H_levels, LL] and the per-level
// pre-split lengths subbandCompose needs to invert each step exactly.
func subbandDecompose(filter wavelet.Filter, x []float64, levels int) (bands [][]float64, splitLens []int) {
	cur := append([]float64(nil), x...)
	for used := 0; used < levels && len(cur) >= 2; used++ {
		splitLens = append(splitLens, len(cur))
		y := wavelet.Forward1D(filter, cur)
		nl := (len(cur) + 1) / 2
		bands = append(bands, append([]float64(nil), y[nl:]...))
		cur = append([]float64(nil), y[:nl]...)
	}
	bands = append(bands, cur)
	return bands, splitLens
}

// subbandCompose reverses subbandDecompose.
func subbandCompose(filter wavelet.Filter, bands [][]float64, splitLens []int) []float64 {
	cur := bands[len(bands)-1]
	for i := len(splitLens) - 1; i >= 0; i-- {
		y := make([]float64, 0, splitLens[i])
		y = append(y, cur...)
		y = append(y, bands[i]...)
		cur = wavelet.Inverse1D(filter, y, splitLens[i])
	}
	return cur
}

// specOrder reverses natural analysis order [H_1 .. H_levels, LL] into
// the table order spec.md §6.5 documents: LL first, then the coarsest
// high band down to the finest. It is its own inverse.
func specOrder(bands [][]float64) [][]float64 {
	out := make([][]float64, len(bands))
	for i, b := range bands {
		out[len(bands)-1-i] = b
	}
	return out
}

// tableIndex clamps a subband position into the 10-entry TADCoeffScalar
// / TADBaseWeight tables: any position past 9 reuses the table's finest
// entry rather than index out of range. With at most Levels (9) levels
// there are at most 10 bands, so the clamp never changes an index; a
// shallower decomposition simply uses the first len(bands) entries.
func tableIndex(i int) int {
	if i > 9 {
		return 9
	}
	return i
}

// quantiseChannel quantises every subband of one decorrelated channel
// (already in spec table order) using the coefficient scalar and base
// weight tables, scaled by the encoder's quantiser_scale, applying the
// wider dead zone to every subband but LL, matching the video quantiser's
// high-frequency convention.
func quantiseChannel(bands [][]float64, chanIdx int, scale float64) []int16 {
	var out []int16
	for i, b := range bands {
		idx := tableIndex(i)
		step := quant.TADCoeffScalar[idx] * quant.TADBaseWeight[chanIdx][idx] * scale
		dz := quant.DeadZone(quant.LL)
		if i > 0 {
			dz = quant.DeadZone(quant.HH)
		}
		for _, c := range b {
			out = append(out, quant.ClampI16(quant.Quantise(c, step, dz)))
		}
	}
	return out
}

// dequantiseChannel reverses quantiseChannel, splitting the flat
// coefficient slice back into per-subband bands (spec order) using the
// geometry-derived lengths.
func dequantiseChannel(coeffs []int16, specLens []int, chanIdx int, scale float64) [][]float64 {
	bands := make([][]float64, len(specLens))
	off := 0
	for i, n := range specLens {
		idx := tableIndex(i)
		step := quant.TADCoeffScalar[idx] * quant.TADBaseWeight[chanIdx][idx] * scale
		band := make([]float64, n)
		for j := 0; j < n; j++ {
			band[j] = quant.Dequantise(int32(coeffs[off+j]), step)
		}
		off += n
		bands[i] = band
	}
	return bands
}

// encodeCore runs the shared mid/side-agnostic half of chunk encoding:
// subband decompose, quantise, entropy code, frame, and optionally
// Zstd-compress both channel streams.
func encodeCore(p Params, n int, mid, side []float64) ([]byte, error) {
	if n < MinSampleCount || n > MaxSampleCount {
		return nil, errors.Errorf("tad: sample_count %d out of range [%d,%d]", n, MinSampleCount, MaxSampleCount)
	}
	levels := clampLevels(n, Levels)

	midBands, _ := subbandDecompose(wavelet.CDF97, mid, levels)
	sideBands, _ := subbandDecompose(wavelet.CDF97, side, levels)

	midC := quantiseChannel(specOrder(midBands), 0, p.QuantiserScale)
	sideC := quantiseChannel(specOrder(sideBands), 1, p.QuantiserScale)

	midStream := entropy.EncodeTwobit(midC)
	sideStream := entropy.EncodeTwobit(sideC)

	raw := bitio.NewByteWriter()
	raw.U32(uint32(len(midStream)))
	raw.Write(midStream)
	raw.Write(sideStream)
	rawBytes := raw.Bytes()

	sizeField := uint32(0)
	payload := rawBytes
	if p.ZstdLevel >= 0 {
		payload = bitio.Compress(rawBytes)
	} else {
		sizeField = rawFlag
	}
	if uint32(len(payload))&rawFlag != 0 {
		return nil, errors.New("tad: chunk payload too large to frame")
	}
	sizeField |= uint32(len(payload))

	w := bitio.NewByteWriter()
	w.U8(uint8(levels))
	w.U32(math.Float32bits(float32(p.QuantiserScale)))
	w.U32(sizeField)
	w.Write(payload)
	return w.Bytes(), nil
}

// decodeCore reverses encodeCore, returning the reconstructed mid/side
// channels (still in DWT-domain float, pre-recorrelation).
func decodeCore(sampleCount int, data []byte) (mid, side []float64, err error) {
	r := bitio.NewByteReader(data)
	levelsU, err := r.U8()
	if err != nil {
		return nil, nil, errors.Wrap(ErrBadChunk, err.Error())
	}
	scaleBits, err := r.U32()
	if err != nil {
		return nil, nil, errors.Wrap(ErrBadChunk, err.Error())
	}
	scale := float64(math.Float32frombits(scaleBits))
	sizeField, err := r.U32()
	if err != nil {
		return nil, nil, errors.Wrap(ErrBadChunk, err.Error())
	}
	raw := sizeField&rawFlag == 0
	payload, err := r.Bytes(int(sizeField &^ rawFlag))
	if err != nil {
		return nil, nil, errors.Wrap(ErrBadChunk, err.Error())
	}
	var rawBytes []byte
	if raw {
		rawBytes = payload
	} else {
		rawBytes, err = bitio.Decompress(payload)
		if err != nil {
			return nil, nil, errors.Wrap(ErrBadChunk, err.Error())
		}
	}

	rr := bitio.NewByteReader(rawBytes)
	midLen, err := rr.U32()
	if err != nil {
		return nil, nil, errors.Wrap(ErrBadChunk, err.Error())
	}
	midStream, err := rr.Bytes(int(midLen))
	if err != nil {
		return nil, nil, errors.Wrap(ErrBadChunk, err.Error())
	}
	sideStream, err := rr.Bytes(rr.Len())
	if err != nil {
		return nil, nil, errors.Wrap(ErrBadChunk, err.Error())
	}

	levels := int(levelsU)
	bandLensNatural, splitLens := subbandLengths(sampleCount, levels)
	specLens := reverseInts(bandLensNatural)

	midC, err := entropy.DecodeTwobit(midStream, sampleCount)
	if err != nil {
		return nil, nil, err
	}
	sideC, err := entropy.DecodeTwobit(sideStream, sampleCount)
	if err != nil {
		return nil, nil, err
	}

	midBands := specOrder(dequantiseChannel(midC, specLens, 0, scale))
	sideBands := specOrder(dequantiseChannel(sideC, specLens, 1, scale))

	mid = subbandCompose(wavelet.CDF97, midBands, splitLens)
	side = subbandCompose(wavelet.CDF97, sideBands, splitLens)
	return mid, side, nil
}

// EncodeChunkFloat encodes one chunk of float PCM stereo audio.
func EncodeChunkFloat(p Params, left, right []float64) ([]byte, error) {
	mid, side := DecorrelateFloat(left, right)
	return encodeCore(p, len(left), mid, side)
}

// DecodeChunkFloat decodes a chunk produced by EncodeChunkFloat.
func DecodeChunkFloat(sampleCount int, data []byte) (left, right []float64, err error) {
	mid, side, err := decodeCore(sampleCount, data)
	if err != nil {
		return nil, nil, err
	}
	left, right = RecorrelateFloat(mid, side)
	return left, right, nil
}

// EncodeChunk16 encodes one chunk of 16-bit signed PCM stereo audio.
func EncodeChunk16(p Params, left, right []int16) ([]byte, error) {
	mid32, side32 := Decorrelate16(left, right)
	return encodeCore(p, len(left), i32ToF64(mid32), i32ToF64(side32))
}

// DecodeChunk16 decodes a chunk produced by EncodeChunk16.
func DecodeChunk16(sampleCount int, data []byte) (left, right []int16, err error) {
	mid, side, err := decodeCore(sampleCount, data)
	if err != nil {
		return nil, nil, err
	}
	left, right = Recorrelate16(f64ToI32Round(mid), f64ToI32Round(side))
	return left, right, nil
}

// DecodeChunk16OrSilence behaves like DecodeChunk16 but returns
// zero-valued (silent) stereo buffers of sampleCount length instead of
// propagating an error, matching the decoder-failure invariant of
// spec.md §4.8.
func DecodeChunk16OrSilence(sampleCount int, data []byte) (left, right []int16) {
	l, r, err := DecodeChunk16(sampleCount, data)
	if err != nil {
		return make([]int16, sampleCount), make([]int16, sampleCount)
	}
	return l, r
}

func i32ToF64(a []int32) []float64 {
	out := make([]float64, len(a))
	for i, v := range a {
		out[i] = float64(v)
	}
	return out
}

func f64ToI32Round(a []float64) []int32 {
	out := make([]int32, len(a))
	for i, v := range a {
		out[i] = int32(math.Round(v))
	}
	return out
}
