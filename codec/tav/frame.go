/*
NAME
  frame.go

DESCRIPTION
  frame.go implements the video frame assembler (C7): the per-channel
  tile→DWT→quantise→entropy-code pipeline that turns an RGB frame into
  the FrameBlob payload of an I/P packet, and its inverse, per
  spec.md §4.6.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package tav implements the TAV video frame assembler: intra, delta,
// and GOP-unified frame encode/decode atop the wavelet, tile, quant and
// entropy packages.
package tav

import (
	"github.com/pkg/errors"

	"github.com/tsvm/tav/colour"
	"github.com/tsvm/tav/quant"
	"github.com/tsvm/tav/tile"
	"github.com/tsvm/tav/wavelet"
)

// Mode identifies a FrameBlob's frame mode byte, per spec.md §3.1.
type Mode uint8

const (
	ModeSkip  Mode = 0
	ModeIntra Mode = 1
	ModeDelta Mode = 2
)

// Params carries the header-level encode/decode parameters a frame
// needs that don't change packet to packet.
type Params struct {
	Width, Height int
	Filter        wavelet.Filter
	Levels        int
	QY, QCo, QCg  uint8 // Header default quantiser indices.
	Lossless      bool
}

// Frame is a decoded video frame in planar float colour-space
// coordinates, the representation carried across P-frame deltas as the
// "reference YCoCg float" buffer of spec.md §4.6.
type Frame struct {
	W, H      int
	Y, Co, Cg []float64
}

// NewFrame allocates a zeroed frame of the given size.
func NewFrame(w, h int) *Frame {
	return &Frame{W: w, H: h, Y: make([]float64, w*h), Co: make([]float64, w*h), Cg: make([]float64, w*h)}
}

// Clone returns an independent copy of f.
func (f *Frame) Clone() *Frame {
	out := NewFrame(f.W, f.H)
	copy(out.Y, f.Y)
	copy(out.Co, f.Co)
	copy(out.Cg, f.Cg)
	return out
}

// FromRGB builds a Frame from packed 8-bit RGB pixels via YCoCg-R.
func FromRGB(px []colour.RGB, w, h int) *Frame {
	f := NewFrame(w, h)
	for i, p := range px {
		c := colour.ToYCoCgR(p)
		f.Y[i] = float64(c.Y)
		f.Co[i] = float64(c.Co)
		f.Cg[i] = float64(c.Cg)
	}
	return f
}

// ToRGB converts a frame back to packed 8-bit RGB, clamping each
// channel to its representable range before the inverse colour
// transform, per spec.md §4.1.
func (f *Frame) ToRGB() []colour.RGB {
	out := make([]colour.RGB, f.W*f.H)
	for i := range out {
		c := colour.YCoCgR{
			Y:  clampRange(f.Y[i], 0, 255),
			Co: clampRange(f.Co[i], -256, 255),
			Cg: clampRange(f.Cg[i], -256, 255),
		}
		out[i] = c.ToRGB()
	}
	return out
}

func clampRange(v float64, lo, hi int32) int32 {
	iv := int32(v)
	if v >= 0 {
		iv = int32(v + 0.5)
	} else {
		iv = int32(v - 0.5)
	}
	switch {
	case iv < lo:
		return lo
	case iv > hi:
		return hi
	default:
		return iv
	}
}

// quantiserOverride resolves a per-channel override byte against the
// header default, per spec.md §3.1: zero means "use header default".
func quantiserOverride(override, headerDefault uint8) uint8 {
	if override == 0 {
		return headerDefault
	}
	return override
}

// forwardSpatial runs the tile/DWT pipeline over one full-frame
// channel plane, returning unquantised coefficients in frame-sized
// (not tiled) layout. Used directly by I/P-frame encoding and, before
// quantisation, by the GOP-unified temporal path.
func forwardSpatial(p Params, plane []float64) []float64 {
	coeffs := make([]float64, p.Width*p.Height)
	for _, t := range tile.Layout(p.Width, p.Height) {
		padded := tile.Extract(t, plane, p.Width, p.Height)
		wavelet.ForwardCascade(p.Filter, padded, p.Levels)
		core := tile.Crop(t, padded)
		tile.Place(t, core, coeffs, p.Width)
	}
	return coeffs
}

// inverseSpatial reverses forwardSpatial.
func inverseSpatial(p Params, coeffs []float64) []float64 {
	out := make([]float64, p.Width*p.Height)
	for _, t := range tile.Layout(p.Width, p.Height) {
		padded := tile.Extract(t, coeffs, p.Width, p.Height)
		wavelet.InverseCascade(p.Filter, padded, p.Levels)
		core := tile.Crop(t, padded)
		tile.Place(t, core, out, p.Width)
	}
	return out
}

// subbandAt classifies pixel (px,py) of a w×h plane that has been
// through (up to) levels cascaded 2-D DWT passes (wavelet.ForwardCascade
// stops early once either dimension drops below 2, exactly as here),
// returning the spec.md §3.2 decomposition level (1-based, 1=finest) and
// orientation. Positions left in the final LL quadrant return level 0.
func subbandAt(px, py, w, h, levels int) (level int, orient quant.Orientation) {
	cw, ch := w, h
	for l := 0; l < levels && cw >= 2 && ch >= 2; l++ {
		hw := (cw + 1) / 2
		hh := (ch + 1) / 2
		lowX := px < hw
		lowY := py < hh
		switch {
		case lowX && lowY:
			cw, ch = hw, hh
			continue
		case lowX && !lowY:
			return l + 1, quant.LH
		case !lowX && lowY:
			return l + 1, quant.HL
		default:
			return l + 1, quant.HH
		}
	}
	return 0, quant.LL
}

// subbandWeights computes, for a channel's frame-shaped plane, the
// per-pixel perceptual weight and dead-zone fraction spec.md §4.4
// requires (luma-favouring, chroma-HH widest step), indexed the same
// way forwardSpatial/inverseSpatial lay out their output: each tile's
// cropped core placed back at its frame position, with the subband
// looked up from the coefficient's position inside that tile's own
// padded DWT plane.
func subbandWeights(p Params, ch quant.Channel) (weight, deadzone []float64) {
	weight = make([]float64, p.Width*p.Height)
	deadzone = make([]float64, p.Width*p.Height)
	for _, t := range tile.Layout(p.Width, p.Height) {
		for y := 0; y < t.CoreH; y++ {
			for x := 0; x < t.CoreW; x++ {
				level, orient := subbandAt(x+tile.Margin, y+tile.Margin, tile.PadW, tile.PadH, p.Levels)
				idx := (t.Y*tile.CoreH+y)*p.Width + (t.X*tile.CoreW + x)
				weight[idx] = quant.VideoWeight(ch, level, orient)
				deadzone[idx] = quant.DeadZone(orient)
			}
		}
	}
	return weight, deadzone
}

// quantisePlane quantises coeffs with step and, unless lossless, the
// per-pixel perceptual weight and subband dead-zone rounding (spec.md
// §4.4), clamping each result to i16. weight/deadzone may be nil, in
// which case no perceptual weighting/dead-zone is applied; when lossless
// is set both are ignored and only step is used.
func quantisePlane(coeffs []float64, step float64, weight, deadzone []float64, lossless bool) []int16 {
	out := make([]int16, len(coeffs))
	for i, c := range coeffs {
		s, dz := step, 0.0
		if !lossless {
			if weight != nil {
				s *= weight[i]
			}
			if deadzone != nil {
				dz = deadzone[i]
			}
		}
		out[i] = quant.ClampI16(quant.Quantise(c, s, dz))
	}
	return out
}

// dequantisePlane reverses quantisePlane.
func dequantisePlane(coeffs []int16, step float64, weight []float64) []float64 {
	out := make([]float64, len(coeffs))
	for i, c := range coeffs {
		s := step
		if weight != nil {
			s *= weight[i]
		}
		out[i] = quant.Dequantise(int32(c), s)
	}
	return out
}

// forwardChannel runs the tile/DWT/quantise pipeline over one
// full-frame channel plane, returning quantised i16 coefficients in
// frame-sized (not tiled) layout.
func forwardChannel(p Params, plane []float64, qIdx uint8, ch quant.Channel) []int16 {
	coeffs := forwardSpatial(p, plane)
	weight, deadzone := subbandWeights(p, ch)
	return quantisePlane(coeffs, float64(quant.Step(qIdx)), weight, deadzone, p.Lossless)
}

// inverseChannel reverses forwardChannel: dequantise, then per-tile
// inverse DWT, writing the reconstructed plane in frame layout.
func inverseChannel(p Params, coeffs []int16, qIdx uint8, ch quant.Channel) []float64 {
	weight, _ := subbandWeights(p, ch)
	var w []float64
	if !p.Lossless {
		w = weight
	}
	deq := dequantisePlane(coeffs, float64(quant.Step(qIdx)), w)
	return inverseSpatial(p, deq)
}

// ErrBadFrame marks a structurally invalid FrameBlob.
var ErrBadFrame = errors.New("tav: malformed frame payload")
