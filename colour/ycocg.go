/*
NAME
  ycocg.go

DESCRIPTION
  ycocg.go implements the integer-reversible YCoCg-R colour transform
  used by TAV's lossless and default lossy paths.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package colour provides the RGB<->YCoCg-R and RGB<->ICtCp colour
// transforms used by TAV.
package colour

// YCoCgR is a pixel in the integer-reversible YCoCg-R colour space.
// Y is in [0,255]; Co and Cg are in [-256,255].
type YCoCgR struct {
	Y, Co, Cg int32
}

// RGB is an 8-bit-per-channel pixel.
type RGB struct {
	R, G, B uint8
}

// ToYCoCgR converts p to YCoCg-R, exactly and reversibly.
func ToYCoCgR(p RGB) YCoCgR {
	r, g, b := int32(p.R), int32(p.G), int32(p.B)
	co := r - b
	tmp := b + truncDiv2(co)
	cg := g - tmp
	y := tmp + truncDiv2(cg)
	return YCoCgR{Y: y, Co: co, Cg: cg}
}

// ToRGB converts p back to RGB. This is exact for any (Y,Co,Cg) that
// originated from ToRGB's inverse; out-of-range results are clamped to
// [0,255] when the caller has perturbed the coefficients (e.g. via lossy
// quantisation) beyond what an exact inverse permits.
func (p YCoCgR) ToRGB() RGB {
	tmp := p.Y - truncDiv2(p.Cg)
	g := p.Cg + tmp
	b := tmp - truncDiv2(p.Co)
	r := p.Co + b
	return RGB{R: clamp8(r), G: clamp8(g), B: clamp8(b)}
}

// truncDiv2 divides by two, truncating toward zero, matching the ⌊x/2⌋
// notation spec.md uses for this transform.
func truncDiv2(x int32) int32 {
	return x / 2
}

func clamp8(v int32) uint8 {
	switch {
	case v < 0:
		return 0
	case v > 255:
		return 255
	default:
		return uint8(v)
	}
}
