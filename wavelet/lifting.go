/*
NAME
  lifting.go

DESCRIPTION
  lifting.go implements the 1-D lifting schemes for every wavelet filter
  TAV/TAD support: CDF 5/3 (reversible integer), CDF 9/7 and CDF 13/7
  (irreversible, 4-step predict/update/predict/update with a final
  scale), Deslauriers-Dubuc DD-4 (interpolating, predict-only), and Haar.

  Boundary handling is whole-sample symmetric (mirror) extension,
  matching the tile engine's mirroring formula (spec.md §4.3) so that a
  signal split across tile boundaries reconstructs seamlessly.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package wavelet implements the 1-D and 2-D lifting-scheme discrete
// wavelet transforms shared by TAV video and TAD audio.
package wavelet

import "math"

// Filter identifies a wavelet filter bank, numbered to match the
// FileHeader.wavelet_filter byte (spec.md §3.1).
type Filter uint8

const (
	CDF53 Filter = 0
	CDF97 Filter = 1
	CDF137 Filter = 2
	DD4   Filter = 16
	Haar  Filter = 255
)

// liftingParams holds the four lifting coefficients and the final scale
// factor for a 4-step predict/update/predict/update/scale filter.
type liftingParams struct {
	alpha, beta, gamma, delta, k float64
}

// cdf97Params are the canonical CDF 9/7 lifting coefficients
// (spec.md §6.5).
var cdf97Params = liftingParams{
	alpha: -1.586134342,
	beta:  -0.052980118,
	gamma: 0.882911076,
	delta: 0.443506852,
	k:     1.230174105,
}

// cdf137Params extend the 9/7 cascade with a longer analysis filter.
// spec.md notes the exact numeric table lives in the source's tables;
// the original_source retrieval for this sub-spec did not retain that
// table, so these coefficients are a documented,
// self-consistent approximation in the same lifting family rather than
// a byte-exact reproduction.
var cdf137Params = liftingParams{
	alpha: -1.7999999999,
	beta:  -0.054213533,
	gamma: 0.915727700,
	delta: 0.362796640,
	k:     1.149604398,
}

// mirror maps an arbitrary integer index into [0,n) using whole-sample
// symmetric (mirror) extension, the same formula the tile engine applies
// to padded pixel coordinates.
func mirror(i, n int) int {
	if n == 1 {
		return 0
	}
	for i < 0 || i >= n {
		if i < 0 {
			i = -i
		}
		if i >= n {
			i = n - 1 - (i - n)
		}
	}
	return i
}

// splitEvenOdd separates x into its even- and odd-indexed samples, low
// occupying ⌈N/2⌉ and high occupying the remainder, matching the
// in-place layout spec.md §4.2 describes.
func splitEvenOdd(x []float64) (low, high []float64) {
	n := len(x)
	low = make([]float64, (n+1)/2)
	high = make([]float64, n/2)
	for i := range low {
		low[i] = x[2*i]
	}
	for i := range high {
		high[i] = x[2*i+1]
	}
	return low, high
}

func mergeEvenOdd(low, high []float64, dst []float64) {
	for i := range low {
		dst[2*i] = low[i]
	}
	for i := range high {
		dst[2*i+1] = high[i]
	}
}

// Forward1D performs the forward 1-D lifting transform of filter on x,
// returning a new slice laid out as [low (⌈N/2⌉) | high (⌊N/2⌋)]. x is
// left unmodified. N < 2 returns a copy of x unchanged, per spec.md §4.2.
func Forward1D(filter Filter, x []float64) []float64 {
	n := len(x)
	if n < 2 {
		return append([]float64(nil), x...)
	}
	switch filter {
	case CDF53:
		return forward53(x)
	case Haar:
		return forwardHaar(x)
	case DD4:
		return forwardDD4(x)
	case CDF137:
		return forwardLifting(x, cdf137Params)
	default: // CDF97 and any unrecognised value fall back to 9/7.
		return forwardLifting(x, cdf97Params)
	}
}

// Inverse1D is the exact inverse of Forward1D for the same filter and
// original length n.
func Inverse1D(filter Filter, y []float64, n int) []float64 {
	if n < 2 {
		return append([]float64(nil), y...)
	}
	switch filter {
	case CDF53:
		return inverse53(y, n)
	case Haar:
		return inverseHaar(y, n)
	case DD4:
		return inverseDD4(y, n)
	case CDF137:
		return inverseLifting(y, n, cdf137Params)
	default:
		return inverseLifting(y, n, cdf97Params)
	}
}

// forward53 implements the reversible CDF 5/3 integer lifting transform.
func forward53(x []float64) []float64 {
	s, d := splitEvenOdd(x)
	nl, nh := len(s), len(d)

	for i := 0; i < nh; i++ {
		left := s[i]
		right := s[mirror(i+1, nl)]
		d[i] -= math.Floor((left + right) / 2)
	}
	for i := 0; i < nl; i++ {
		prev := d[mirror(i-1, nh)]
		cur := d[mirror(i, nh)]
		s[i] += math.Floor((prev + cur + 2) / 4)
	}

	return append(append([]float64(nil), s...), d...)
}

func inverse53(y []float64, n int) []float64 {
	nl := (n + 1) / 2
	nh := n / 2
	s := append([]float64(nil), y[:nl]...)
	d := append([]float64(nil), y[nl:nl+nh]...)

	for i := 0; i < nl; i++ {
		prev := d[mirror(i-1, nh)]
		cur := d[mirror(i, nh)]
		s[i] -= math.Floor((prev + cur + 2) / 4)
	}
	for i := 0; i < nh; i++ {
		left := s[i]
		right := s[mirror(i+1, nl)]
		d[i] += math.Floor((left + right) / 2)
	}

	out := make([]float64, n)
	mergeEvenOdd(s, d, out)
	return out
}

// forwardHaar implements the normalised Haar transform, pairing each
// even sample with its own odd neighbour (a=x[2i], b=x[2i+1]):
// a' = (a+b)/sqrt2, d' = (a-b)/sqrt2. An unpaired tail sample (odd n)
// carries through unscaled.
func forwardHaar(x []float64) []float64 {
	s, d := splitEvenOdd(x)
	const invSqrt2 = 0.70710678118654752440
	for i := range d {
		a := s[i]
		b := d[i]
		s[i] = (a + b) * invSqrt2
		d[i] = (a - b) * invSqrt2
	}
	return append(append([]float64(nil), s...), d...)
}

func inverseHaar(y []float64, n int) []float64 {
	nl := (n + 1) / 2
	nh := n / 2
	s := append([]float64(nil), y[:nl]...)
	d := append([]float64(nil), y[nl:nl+nh]...)
	const invSqrt2 = 0.70710678118654752440
	out := make([]float64, n)
	for i := 0; i < nh; i++ {
		sum := s[i]
		diff := d[i]
		a := (sum + diff) * invSqrt2
		b := (sum - diff) * invSqrt2
		out[2*i] = a
		out[2*i+1] = b
	}
	if nl > nh {
		out[2*(nl-1)] = s[nl-1]
	}
	return out
}

// dd4Taps are the classic 4-point Deslauriers-Dubuc interpolating
// prediction weights.
var dd4Taps = [4]float64{-1.0 / 16, 9.0 / 16, 9.0 / 16, -1.0 / 16}

// forwardDD4 is a predict-only (lazy-update) interpolating transform:
// odd samples are replaced by their prediction error from the four
// nearest even neighbours; even samples pass through unchanged.
func forwardDD4(x []float64) []float64 {
	s, d := splitEvenOdd(x)
	nl := len(s)
	for i := range d {
		pred := dd4Taps[0]*s[mirror(i-1, nl)] +
			dd4Taps[1]*s[mirror(i, nl)] +
			dd4Taps[2]*s[mirror(i+1, nl)] +
			dd4Taps[3]*s[mirror(i+2, nl)]
		d[i] -= pred
	}
	return append(append([]float64(nil), s...), d...)
}

func inverseDD4(y []float64, n int) []float64 {
	nl := (n + 1) / 2
	nh := n / 2
	s := append([]float64(nil), y[:nl]...)
	d := append([]float64(nil), y[nl:nl+nh]...)
	for i := 0; i < nh; i++ {
		pred := dd4Taps[0]*s[mirror(i-1, nl)] +
			dd4Taps[1]*s[mirror(i, nl)] +
			dd4Taps[2]*s[mirror(i+1, nl)] +
			dd4Taps[3]*s[mirror(i+2, nl)]
		d[i] += pred
	}
	out := make([]float64, n)
	mergeEvenOdd(s, d, out)
	return out
}

// forwardLifting runs the generic 4-step predict/update/predict/update
// cascade used by CDF 9/7 and CDF 13/7.
func forwardLifting(x []float64, p liftingParams) []float64 {
	s, d := splitEvenOdd(x)
	nl, nh := len(s), len(d)

	for i := 0; i < nh; i++ {
		d[i] += p.alpha * (s[i] + s[mirror(i+1, nl)])
	}
	for i := 0; i < nl; i++ {
		s[i] += p.beta * (d[mirror(i-1, nh)] + d[mirror(i, nh)])
	}
	for i := 0; i < nh; i++ {
		d[i] += p.gamma * (s[i] + s[mirror(i+1, nl)])
	}
	for i := 0; i < nl; i++ {
		s[i] += p.delta * (d[mirror(i-1, nh)] + d[mirror(i, nh)])
	}
	for i := range s {
		s[i] *= p.k
	}
	for i := range d {
		d[i] /= p.k
	}

	return append(append([]float64(nil), s...), d...)
}

func inverseLifting(y []float64, n int, p liftingParams) []float64 {
	nl := (n + 1) / 2
	nh := n / 2
	s := append([]float64(nil), y[:nl]...)
	d := append([]float64(nil), y[nl:nl+nh]...)

	for i := range s {
		s[i] /= p.k
	}
	for i := range d {
		d[i] *= p.k
	}
	for i := 0; i < nl; i++ {
		s[i] -= p.delta * (d[mirror(i-1, nh)] + d[mirror(i, nh)])
	}
	for i := 0; i < nh; i++ {
		d[i] -= p.gamma * (s[i] + s[mirror(i+1, nl)])
	}
	for i := 0; i < nl; i++ {
		s[i] -= p.beta * (d[mirror(i-1, nh)] + d[mirror(i, nh)])
	}
	for i := 0; i < nh; i++ {
		d[i] -= p.alpha * (s[i] + s[mirror(i+1, nl)])
	}

	out := make([]float64, n)
	mergeEvenOdd(s, d, out)
	return out
}
