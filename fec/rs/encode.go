/*
NAME
  encode.go

DESCRIPTION
  encode.go implements systematic RS(255,223) encoding: the generator
  polynomial and the in-place polynomial-division trick that leaves the
  first 223 output bytes equal to the input message, per spec.md §4.10.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package rs

// generatorPoly returns g(x) = prod_{i=0}^{nsym-1} (x - alpha^i), the
// degree-nsym generator polynomial (big-endian).
func generatorPoly(nsym int) []byte {
	g := []byte{1}
	for i := 0; i < nsym; i++ {
		g = gfPolyMulBE(g, []byte{1, gfPow(2, i)})
	}
	return g
}

// Encode returns the 255-byte systematic RS codeword for data, which
// must be at most K=223 bytes; shorter messages are zero-padded
// internally (the caller tracks true payload length out of band, the
// same convention the container packet framing uses elsewhere).
func Encode(data []byte) []byte {
	msg := make([]byte, K)
	copy(msg, data)

	gen := generatorPoly(NSYM)
	scratch := make([]byte, K+NSYM)
	copy(scratch, msg)
	for i := 0; i < K; i++ {
		coef := scratch[i]
		if coef == 0 {
			continue
		}
		for j := 0; j < len(gen); j++ {
			scratch[i+j] ^= gfMul(gen[j], coef)
		}
	}

	out := make([]byte, N)
	copy(out, msg)
	copy(out[K:], scratch[K:])
	return out
}
