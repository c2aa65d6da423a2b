/*
NAME
  poly.go

DESCRIPTION
  poly.go implements the polynomial arithmetic RS(255,223) needs in two
  conventions: big-endian (index 0 = highest-degree term), matching the
  codeword's wire byte order and used for generator-polynomial encoding;
  and low-endian (index 0 = constant term), used by the syndrome-domain
  decoder math in decode.go.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package rs

// gfPolyMulBE multiplies two big-endian polynomials.
func gfPolyMulBE(p, q []byte) []byte {
	out := make([]byte, len(p)+len(q)-1)
	for j := range q {
		if q[j] == 0 {
			continue
		}
		for i := range p {
			out[i+j] ^= gfMul(p[i], q[j])
		}
	}
	return out
}

// gfPolyEvalBE evaluates a big-endian polynomial at x via Horner's rule.
func gfPolyEvalBE(poly []byte, x byte) byte {
	y := poly[0]
	for i := 1; i < len(poly); i++ {
		y = gfMul(y, x) ^ poly[i]
	}
	return y
}

// polyEvalLow evaluates a low-endian polynomial (p[i] is the
// coefficient of x^i) at x by direct summation.
func polyEvalLow(p []byte, x byte) byte {
	var y byte
	xpow := byte(1)
	for i := 0; i < len(p); i++ {
		y ^= gfMul(p[i], xpow)
		xpow = gfMul(xpow, x)
	}
	return y
}
