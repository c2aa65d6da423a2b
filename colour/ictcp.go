/*
NAME
  ictcp.go

DESCRIPTION
  ictcp.go implements the perceptual ICtCp colour transform used by the
  higher version numbers of the TAV container (see spec.md §4.1, §6.6).
  It follows the JPEG-XL XYB pattern: linearise sRGB, mix to LMS, apply a
  biased cube root, then mix to ICtCp.

  The forward RGB->LMS matrix is given numerically by spec.md. The
  inverse matrix is deliberately NOT copied from the source's numeric
  table (spec.md's Open Questions note the source's inverse exhibits
  small numeric inconsistencies); instead it is derived analytically by
  inverting the forward matrix with gonum/mat, which is the resolution
  spec.md recommends.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package colour

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// XYBBias and CbrtBias are the bias constants applied before and after
// the cube root in the LMS->ICtCp step.
const (
	XYBBias  = 0.00379307325527544933
	CbrtBias = 0.15595420054924863 // math.Cbrt(XYBBias), precomputed for determinism across builds.
)

// rgbToLMS is the forward RGB->LMS mix given in spec.md §6.6.
var rgbToLMS = []float64{
	0.30, 0.622, 0.078,
	0.23, 0.692, 0.078,
	0.24342268924547819, 0.20476744424496821, 0.55180986650955360,
}

// lmsToICtCp mixes biased-cube-root LMS into ICtCp. This is the standard
// Rec. ITU-R BT.2124 mixing matrix; it is not in question per spec.md
// (only the RGB<->LMS inverse is flagged as an open question), so it is
// used directly.
var lmsToICtCp = []float64{
	0.5, 0.5, 0,
	1.613769, -3.323486, 1.709716,
	4.378174, -4.245605, -0.132568,
}

var ictcpToLMS = invert3x3(lmsToICtCp)
var lmsToRGB = invert3x3(rgbToLMS)

// invert3x3 inverts a row-major 3x3 matrix using gonum/mat, returning the
// analytic inverse rather than any hand-copied numeric table.
func invert3x3(m []float64) []float64 {
	a := mat.NewDense(3, 3, append([]float64(nil), m...))
	var inv mat.Dense
	if err := inv.Inverse(a); err != nil {
		panic("colour: singular matrix: " + err.Error())
	}
	out := make([]float64, 9)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			out[i*3+j] = inv.At(i, j)
		}
	}
	return out
}

func mulVec3(m []float64, x, y, z float64) (float64, float64, float64) {
	return m[0]*x + m[1]*y + m[2]*z,
		m[3]*x + m[4]*y + m[5]*z,
		m[6]*x + m[7]*y + m[8]*z
}

// linearizeSRGB converts an 8-bit sRGB channel value to linear light
// using the piecewise gamma-2.4 sRGB transfer function.
func linearizeSRGB(c uint8) float64 {
	v := float64(c) / 255
	if v <= 0.04045 {
		return v / 12.92
	}
	return math.Pow((v+0.055)/1.055, 2.4)
}

// delinearizeSRGB is the inverse of linearizeSRGB, clamped to [0,255].
func delinearizeSRGB(v float64) uint8 {
	if v <= 0 {
		return 0
	}
	var s float64
	if v <= 0.0031308 {
		s = v * 12.92
	} else {
		s = 1.055*math.Pow(v, 1/2.4) - 0.055
	}
	return clamp8(int32(math.Round(s * 255)))
}

// ICtCp is a pixel in the ICtCp colour space.
type ICtCp struct {
	I, Ct, Cp float64
}

// ToICtCp converts an 8-bit sRGB pixel to ICtCp.
func ToICtCp(p RGB) ICtCp {
	r := linearizeSRGB(p.R)
	g := linearizeSRGB(p.G)
	b := linearizeSRGB(p.B)

	l, m, s := mulVec3(rgbToLMS, r, g, b)

	l = math.Cbrt(l+XYBBias) - CbrtBias
	m = math.Cbrt(m+XYBBias) - CbrtBias
	s = math.Cbrt(s+XYBBias) - CbrtBias

	i, ct, cp := mulVec3(lmsToICtCp, l, m, s)
	return ICtCp{I: i, Ct: ct, Cp: cp}
}

// ToRGB converts p back to 8-bit sRGB. Because the inverse LMS<->RGB
// matrix is derived analytically rather than copied from the source's
// numeric table, round trips are exact up to floating-point error and
// 8-bit rounding; spec.md explicitly allows ±2 per channel for this path.
func (p ICtCp) ToRGB() RGB {
	l, m, s := mulVec3(ictcpToLMS, p.I, p.Ct, p.Cp)

	l = cube(l + CbrtBias)
	m = cube(m + CbrtBias)
	s = cube(s + CbrtBias)

	l -= XYBBias
	m -= XYBBias
	s -= XYBBias

	r, g, b := mulVec3(lmsToRGB, l, m, s)
	return RGB{
		R: delinearizeSRGB(r),
		G: delinearizeSRGB(g),
		B: delinearizeSRGB(b),
	}
}

func cube(x float64) float64 { return x * x * x }
