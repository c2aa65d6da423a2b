/*
NAME
  psnr.go

DESCRIPTION
  psnr.go provides peak-signal-to-noise-ratio and related statistics
  used to judge lossy round-trips (spec.md §8.3 S4's "PSNR >= 45 dB"
  acceptance criterion) without duplicating mean/variance arithmetic
  per call site.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package diag holds small statistical helpers used by encoder
// diagnostics and by round-trip tests across the codec family.
package diag

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// MSE returns the mean squared error between want and got, which must
// be the same length.
func MSE(want, got []float64) float64 {
	sq := make([]float64, len(want))
	for i := range want {
		d := want[i] - got[i]
		sq[i] = d * d
	}
	return stat.Mean(sq, nil)
}

// PSNR returns the peak signal-to-noise ratio in dB between want and
// got against the given peak signal value (255 for 8-bit channels, 1.0
// for normalised float PCM). It returns +Inf for a bit-exact match.
func PSNR(want, got []float64, peak float64) float64 {
	mse := MSE(want, got)
	if mse == 0 {
		return math.Inf(1)
	}
	return 10 * math.Log10(peak*peak/mse)
}

// StdDev returns the sample standard deviation of x, used by encoder
// diagnostics to report per-subband coefficient spread.
func StdDev(x []float64) float64 {
	if len(x) < 2 {
		return 0
	}
	return stat.StdDev(x, nil)
}
