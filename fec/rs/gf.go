/*
NAME
  gf.go

DESCRIPTION
  gf.go implements GF(2^8) arithmetic over the primitive polynomial
  x^8+x^4+x^3+x^2+1 (0x11D) spec.md §4.10 requires for RS(255,223), with
  generator element alpha=2.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package rs implements Reed-Solomon(255,223) over GF(2^8), the outer
// FEC layer of the TAV-DT channel coder (C11).
package rs

// primPoly is the field-defining polynomial x^8+x^4+x^3+x^2+1.
const primPoly = 0x11D

var expTable [512]byte
var logTable [256]byte

func init() {
	x := 1
	for i := 0; i < 255; i++ {
		expTable[i] = byte(x)
		logTable[byte(x)] = byte(i)
		x <<= 1
		if x&0x100 != 0 {
			x ^= primPoly
		}
	}
	for i := 255; i < 512; i++ {
		expTable[i] = expTable[i-255]
	}
}

func gfMul(a, b byte) byte {
	if a == 0 || b == 0 {
		return 0
	}
	return expTable[int(logTable[a])+int(logTable[b])]
}

func gfDiv(a, b byte) byte {
	if a == 0 {
		return 0
	}
	return expTable[((int(logTable[a])-int(logTable[b]))%255+255)%255]
}

// gfPow computes a^n for any integer n, including negative exponents
// (used to evaluate the error locator at alpha^-p during Chien search).
func gfPow(a byte, n int) byte {
	if n == 0 {
		return 1
	}
	if a == 0 {
		return 0
	}
	l := (int(logTable[a]) * n) % 255
	l = (l + 255) % 255
	return expTable[l]
}

func gfInverse(a byte) byte {
	return expTable[(255-int(logTable[a]))%255]
}
