/*
NAME
  decorrelate.go

DESCRIPTION
  decorrelate.go implements the mid/side stereo decorrelation step of
  the TAD audio core (C9), per spec.md §4.8: exact for float PCM, and a
  lossless integer variant for 16-bit PCM that keeps the sum's dropped
  LSB recoverable from the difference channel's parity.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package tad implements the TAD audio codec: mid/side decorrelation,
// a 9-level CDF 9/7 subband decomposition, perceptual quantisation, and
// twobit-map entropy coding, Zstd-framed per chunk.
package tad

// DecorrelateFloat performs the exact mid/side transform on float PCM:
// M = (L+R)/2, S = (L-R)/2.
func DecorrelateFloat(left, right []float64) (mid, side []float64) {
	mid = make([]float64, len(left))
	side = make([]float64, len(left))
	for i := range left {
		mid[i] = (left[i] + right[i]) / 2
		side[i] = (left[i] - right[i]) / 2
	}
	return mid, side
}

// RecorrelateFloat reverses DecorrelateFloat exactly: L = M+S, R = M-S.
func RecorrelateFloat(mid, side []float64) (left, right []float64) {
	left = make([]float64, len(mid))
	right = make([]float64, len(mid))
	for i := range mid {
		left[i] = mid[i] + side[i]
		right[i] = mid[i] - side[i]
	}
	return left, right
}

// Decorrelate16 performs the lossless integer mid/side transform spec.md
// §4.8 specifies for 16-bit PCM: mid drops the sum's LSB, and side keeps
// it implicitly, since L+R and L-R always share the same parity — the
// same trick standard lossless mid-side stereo coding uses.
func Decorrelate16(left, right []int16) (mid, side []int32) {
	mid = make([]int32, len(left))
	side = make([]int32, len(left))
	for i := range left {
		l, r := int32(left[i]), int32(right[i])
		mid[i] = (l + r) >> 1
		side[i] = l - r
	}
	return mid, side
}

// Recorrelate16 reverses Decorrelate16 exactly.
func Recorrelate16(mid, side []int32) (left, right []int16) {
	left = make([]int16, len(mid))
	right = make([]int16, len(mid))
	for i := range mid {
		m := (mid[i] << 1) | (side[i] & 1)
		left[i] = int16((m + side[i]) >> 1)
		right[i] = int16((m - side[i]) >> 1)
	}
	return left, right
}
