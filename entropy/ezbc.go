/*
NAME
  ezbc.go

DESCRIPTION
  ezbc.go implements Embedded Zero-Block Coding: a quadtree-based
  bitplane significance/refinement coder for wavelet coefficient
  planes, per spec.md §4.5.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package entropy

import (
	"bytes"
	"math/bits"

	"github.com/pkg/errors"

	"github.com/tsvm/tav/bitio"
)

// planeBits is the width of the encoded maximum-bitplane header field;
// int16 coefficients never need more than 5 bits to express B.
const planeBits = 5

// ezbcCoder holds the shared quadtree walk state for both encode and
// decode, so the two directions stay structurally identical.
type ezbcCoder struct {
	w, h     int
	n        int // padded quadtree extent, a power of two >= max(w,h)
	sig      []bool
	sigOrder []int
}

func newEZBCCoder(w, h int) *ezbcCoder {
	n := 1
	for n < w || n < h {
		n <<= 1
	}
	return &ezbcCoder{w: w, h: h, n: n, sig: make([]bool, w*h)}
}

func (c *ezbcCoder) idx(x, y int) int { return y*c.w + x }

// allSignificant reports whether every in-bounds leaf under (x0,y0,size)
// is already significant, meaning the subtree has nothing left to say.
func (c *ezbcCoder) allSignificant(x0, y0, size int) bool {
	if x0 >= c.w || y0 >= c.h {
		return true
	}
	if size == 1 {
		return c.sig[c.idx(x0, y0)]
	}
	half := size / 2
	return c.allSignificant(x0, y0, half) &&
		c.allSignificant(x0+half, y0, half) &&
		c.allSignificant(x0, y0+half, half) &&
		c.allSignificant(x0+half, y0+half, half)
}

// EncodeEZBC encodes a w×h plane of signed coefficients using
// hierarchical bitplane significance coding.
func EncodeEZBC(coeffs []int32, w, h int) []byte {
	var buf bytes.Buffer
	bw := bitio.NewBitWriter(&buf)
	c := newEZBCCoder(w, h)

	maxAbs := int32(0)
	for _, v := range coeffs {
		a := v
		if a < 0 {
			a = -a
		}
		if a > maxAbs {
			maxAbs = a
		}
	}
	b := 0
	if maxAbs > 0 {
		b = bits.Len32(uint32(maxAbs - 1))
	}
	bw.WriteBits(uint64(b), planeBits)

	var sigPass func(x0, y0, size, plane int)
	sigPass = func(x0, y0, size, plane int) {
		if x0 >= w || y0 >= h {
			return
		}
		if size == 1 {
			idx := c.idx(x0, y0)
			if c.sig[idx] {
				return
			}
			v := coeffs[idx]
			av := v
			if av < 0 {
				av = -av
			}
			becomes := av >= int32(1)<<uint(plane)
			bw.WriteBit(becomes)
			if becomes {
				c.sig[idx] = true
				bw.WriteBit(v < 0)
				c.sigOrder = append(c.sigOrder, idx)
			}
			return
		}
		if c.allSignificant(x0, y0, size) {
			return
		}
		half := size / 2
		becomes := regionHasNewSig(coeffs, c, x0, y0, size, plane, w, h)
		bw.WriteBit(becomes)
		if !becomes {
			return
		}
		sigPass(x0, y0, half, plane)
		sigPass(x0+half, y0, half, plane)
		sigPass(x0, y0+half, half, plane)
		sigPass(x0+half, y0+half, half, plane)
	}

	for plane := b; plane >= 0; plane-- {
		refList := append([]int(nil), c.sigOrder...)
		sigPass(0, 0, c.n, plane)
		for _, idx := range refList {
			v := coeffs[idx]
			if v < 0 {
				v = -v
			}
			bw.WriteBit((uint32(v)>>uint(plane))&1 != 0)
		}
	}
	bw.Close()
	return buf.Bytes()
}

// regionHasNewSig reports whether any not-yet-significant coefficient in
// the given region would become significant at plane.
func regionHasNewSig(coeffs []int32, c *ezbcCoder, x0, y0, size, plane, w, h int) bool {
	if x0 >= w || y0 >= h {
		return false
	}
	if size == 1 {
		idx := c.idx(x0, y0)
		if c.sig[idx] {
			return false
		}
		v := coeffs[idx]
		if v < 0 {
			v = -v
		}
		return v >= int32(1)<<uint(plane)
	}
	if c.allSignificant(x0, y0, size) {
		return false
	}
	half := size / 2
	return regionHasNewSig(coeffs, c, x0, y0, half, plane, w, h) ||
		regionHasNewSig(coeffs, c, x0+half, y0, half, plane, w, h) ||
		regionHasNewSig(coeffs, c, x0, y0+half, half, plane, w, h) ||
		regionHasNewSig(coeffs, c, x0+half, y0+half, half, plane, w, h)
}

// ErrEZBCOverflow marks a malformed stream that requests a coefficient
// index past end-of-plane, per spec.md §4.5.
var ErrEZBCOverflow = errors.New("entropy: ezbc stream overruns coefficient plane")

// DecodeEZBC decodes a w×h coefficient plane produced by EncodeEZBC.
func DecodeEZBC(data []byte, w, h int) ([]int32, error) {
	br := bitio.NewBitReader(bytes.NewReader(data))
	c := newEZBCCoder(w, h)
	recon := make([]int32, w*h)

	planeBitsVal, err := br.ReadBits(planeBits)
	if err != nil {
		return nil, errors.Wrap(ErrEZBCOverflow, err.Error())
	}
	b := int(planeBitsVal)

	var decErr error
	var sigPass func(x0, y0, size, plane int)
	sigPass = func(x0, y0, size, plane int) {
		if decErr != nil || x0 >= w || y0 >= h {
			return
		}
		if size == 1 {
			idx := c.idx(x0, y0)
			if c.sig[idx] {
				return
			}
			becomes, err := br.ReadBit()
			if err != nil {
				decErr = errors.Wrap(ErrEZBCOverflow, err.Error())
				return
			}
			if becomes {
				neg, err := br.ReadBit()
				if err != nil {
					decErr = errors.Wrap(ErrEZBCOverflow, err.Error())
					return
				}
				mag := int32(1) << uint(plane)
				if neg {
					mag = -mag
				}
				recon[idx] = mag
				c.sig[idx] = true
				c.sigOrder = append(c.sigOrder, idx)
			}
			return
		}
		if c.allSignificant(x0, y0, size) {
			return
		}
		becomes, err := br.ReadBit()
		if err != nil {
			decErr = errors.Wrap(ErrEZBCOverflow, err.Error())
			return
		}
		if !becomes {
			return
		}
		half := size / 2
		sigPass(x0, y0, half, plane)
		sigPass(x0+half, y0, half, plane)
		sigPass(x0, y0+half, half, plane)
		sigPass(x0+half, y0+half, half, plane)
	}

	for plane := b; plane >= 0 && decErr == nil; plane-- {
		refList := append([]int(nil), c.sigOrder...)
		sigPass(0, 0, c.n, plane)
		if decErr != nil {
			break
		}
		for _, idx := range refList {
			bit, err := br.ReadBit()
			if err != nil {
				decErr = errors.Wrap(ErrEZBCOverflow, err.Error())
				break
			}
			if bit {
				mag := recon[idx]
				sign := int32(1)
				if mag < 0 {
					sign = -1
					mag = -mag
				}
				mag |= int32(1) << uint(plane)
				recon[idx] = sign * mag
			}
		}
	}
	if decErr != nil {
		return nil, decErr
	}
	return recon, nil
}
