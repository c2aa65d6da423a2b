/*
NAME
  quant.go

DESCRIPTION
  quant.go implements the dead-zone scalar quantiser and the per-subband
  perceptual weight tables for TAV video and TAD audio, per spec.md §4.4.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package quant

import "math"

// Channel identifies which plane a subband weight applies to.
type Channel int

const (
	ChanY Channel = iota
	ChanCo
	ChanCg
	ChanTADMid
	ChanTADSide
)

// Orientation identifies a spatial subband's orientation.
type Orientation int

const (
	LL Orientation = iota
	LH
	HL
	HH
)

// VideoWeight returns the perceptual multiplier for a video subband at
// the given decomposition level (1-based, 1 = finest). Low frequencies
// and luma are favoured; chroma HH receives the largest step, per
// spec.md §4.4.
func VideoWeight(ch Channel, level int, orient Orientation) float64 {
	base := 1.0
	switch orient {
	case LL:
		base = 0.6
	case LH, HL:
		base = 0.8 + 0.1*float64(level)
	case HH:
		base = 1.0 + 0.2*float64(level)
	}
	switch ch {
	case ChanY:
		// Luma preserved most faithfully.
	case ChanCo, ChanCg:
		base *= 1.4
		if orient == HH {
			base *= 1.6 // Chroma HH gets the largest step of all.
		}
	}
	return base
}

// TADCoeffScalar holds the per-subband coefficient scalars (LL then H9..H1)
// from spec.md §6.5, copied verbatim from the reference decoder's
// TAD32_COEFF_SCALARS table.
var TADCoeffScalar = [10]float64{64, 45.255, 32, 22.627, 16, 11.314, 8, 5.657, 4, 2.828}

// TADBaseWeight holds the base perceptual weight per channel (mid=0,
// side=1) and subband (LL then H9..H1), copied verbatim from the
// reference decoder's BASE_QUANTISER_WEIGHTS table.
var TADBaseWeight = [2][10]float64{
	{4.0, 2.0, 1.8, 1.6, 1.4, 1.2, 1.0, 1.0, 1.3, 2.0},
	{6.0, 5.0, 2.6, 2.4, 1.8, 1.3, 1.0, 1.0, 1.6, 3.2},
}

// DeadZone returns the dead-zone fraction for a subband: 0.4 for HH of
// any channel, 0.25 for every other orientation. TAD passes HH for all
// of its non-LL bands.
func DeadZone(orient Orientation) float64 {
	if orient == HH {
		return 0.4
	}
	return 0.25
}

// Quantise applies the dead-zone quantiser from spec.md §4.4 to
// coefficient c with effective step s and dead-zone fraction dz,
// returning the signed integer index q. The caller clamps to int16.
func Quantise(c, s, dz float64) int32 {
	if s <= 0 {
		s = 1
	}
	sign := 1.0
	if c < 0 {
		sign = -1
	}
	mag := math.Abs(c)
	adj := mag - s*dz
	if adj < 0 {
		adj = 0
	}
	q := math.Floor(adj/s + 0.5)
	return int32(sign * q)
}

// Dequantise reverses Quantise: c' = q * s.
func Dequantise(q int32, s float64) float64 {
	return float64(q) * s
}

// ClampI16 clamps a quantised index to the representable i16 range,
// per spec.md invariant 2.
func ClampI16(q int32) int16 {
	switch {
	case q > 32767:
		return 32767
	case q < -32768:
		return -32768
	default:
		return int16(q)
	}
}
