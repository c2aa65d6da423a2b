/*
NAME
  temporal.go

DESCRIPTION
  temporal.go implements the temporal DWT of spec.md §4.7: an
  Lt-level 1-D lifting cascade along the time axis of a GOP, applied
  independently at every spatial coefficient position, reusing the
  same lifting primitives the spatial 2-D cascade (package wavelet)
  is built from.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package temporal implements the GOP-axis discrete wavelet transform
// shared by the TAV video frame assembler's GOP-unified packet modes.
package temporal

import "github.com/tsvm/tav/wavelet"

// MinGOP and MaxGOP bound the frame count of a GOP-unified packet, per
// spec.md §4.7.
const (
	MinGOP = 8
	MaxGOP = 24

	// DefaultLevels is the standard temporal decomposition depth.
	DefaultLevels = 2
)

// forward1DCascade applies a Mallat-style 1-D cascade of levels DWT
// passes to x, each operating only on the previous level's low-pass
// half, mirroring wavelet.ForwardCascade's spatial recursion.
func forward1DCascade(filter wavelet.Filter, x []float64, levels int) []float64 {
	out := append([]float64(nil), x...)
	n := len(out)
	for l := 0; l < levels && n >= 2; l++ {
		y := wavelet.Forward1D(filter, out[:n])
		copy(out[:n], y)
		n = (n + 1) / 2
	}
	return out
}

func inverse1DCascade(filter wavelet.Filter, y []float64, levels int) []float64 {
	out := append([]float64(nil), y...)
	total := len(out)

	dims := make([]int, 0, levels)
	n := total
	for l := 0; l < levels && n >= 2; l++ {
		dims = append(dims, n)
		n = (n + 1) / 2
	}
	for i := len(dims) - 1; i >= 0; i-- {
		n := dims[i]
		x := wavelet.Inverse1D(filter, out[:n], n)
		copy(out[:n], x)
	}
	return out
}

// ForwardGOP performs the forward temporal DWT across a GOP of
// coefficient planes. frames holds gopSize flattened spatial planes of
// identical length; the transform runs independently at every spatial
// position across the frame axis, returning a new slice of the same
// shape laid out [temporal-LL frames | temporal-H frames, ...].
func ForwardGOP(filter wavelet.Filter, frames [][]float64, levels int) [][]float64 {
	gopSize := len(frames)
	if gopSize == 0 {
		return nil
	}
	planeLen := len(frames[0])
	out := make([][]float64, gopSize)
	for i := range out {
		out[i] = make([]float64, planeLen)
	}

	signal := make([]float64, gopSize)
	for pos := 0; pos < planeLen; pos++ {
		for f := 0; f < gopSize; f++ {
			signal[f] = frames[f][pos]
		}
		transformed := forward1DCascade(filter, signal, levels)
		for f := 0; f < gopSize; f++ {
			out[f][pos] = transformed[f]
		}
	}
	return out
}

// InverseGOP is the exact inverse of ForwardGOP for the same filter,
// GOP size and level count.
func InverseGOP(filter wavelet.Filter, coeffs [][]float64, levels int) [][]float64 {
	gopSize := len(coeffs)
	if gopSize == 0 {
		return nil
	}
	planeLen := len(coeffs[0])
	out := make([][]float64, gopSize)
	for i := range out {
		out[i] = make([]float64, planeLen)
	}

	signal := make([]float64, gopSize)
	for pos := 0; pos < planeLen; pos++ {
		for f := 0; f < gopSize; f++ {
			signal[f] = coeffs[f][pos]
		}
		restored := inverse1DCascade(filter, signal, levels)
		for f := 0; f < gopSize; f++ {
			out[f][pos] = restored[f]
		}
	}
	return out
}

// EffectiveLevels clamps the requested temporal decomposition depth so
// that the cascade never tries to split a GOP shorter than 2 frames,
// matching the spatial cascade's own w>=2/h>=2 guard.
func EffectiveLevels(gopSize, requested int) int {
	levels := 0
	n := gopSize
	for levels < requested && n >= 2 {
		levels++
		n = (n + 1) / 2
	}
	return levels
}
