/*
NAME
  dwt2d.go

DESCRIPTION
  dwt2d.go implements the 2-D separable DWT (column pass then row pass)
  and the multi-level Mallat-pyramid cascade over the LL quadrant, per
  spec.md §4.2.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package wavelet

// Plane is a W×H row-major plane of coefficients (or pixels before the
// first transform level).
type Plane struct {
	W, H int
	Data []float64
}

// NewPlane allocates a zeroed W×H plane.
func NewPlane(w, h int) *Plane {
	return &Plane{W: w, H: h, Data: make([]float64, w*h)}
}

func (p *Plane) at(x, y int) float64     { return p.Data[y*p.W+x] }
func (p *Plane) set(x, y int, v float64) { p.Data[y*p.W+x] = v }

// Forward2DLevel applies one level of the 2-D separable DWT to the
// top-left w×h region of p (column pass then row pass), in place.
func Forward2DLevel(filter Filter, p *Plane, w, h int) {
	col := make([]float64, h)
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			col[y] = p.at(x, y)
		}
		out := Forward1D(filter, col)
		for y := 0; y < h; y++ {
			p.set(x, y, out[y])
		}
	}
	row := make([]float64, w)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			row[x] = p.at(x, y)
		}
		out := Forward1D(filter, row)
		for x := 0; x < w; x++ {
			p.set(x, y, out[x])
		}
	}
}

// Inverse2DLevel is the exact inverse of Forward2DLevel: row pass then
// column pass.
func Inverse2DLevel(filter Filter, p *Plane, w, h int) {
	row := make([]float64, w)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			row[x] = p.at(x, y)
		}
		out := Inverse1D(filter, row, w)
		for x := 0; x < w; x++ {
			p.set(x, y, out[x])
		}
	}
	col := make([]float64, h)
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			col[y] = p.at(x, y)
		}
		out := Inverse1D(filter, col, h)
		for y := 0; y < h; y++ {
			p.set(x, y, out[y])
		}
	}
}

// ForwardCascade applies levels successive 2-D DWT passes, each
// operating only on the top-left LL quadrant of the previous level
// (the standard Mallat pyramid), per spec.md §4.2.
func ForwardCascade(filter Filter, p *Plane, levels int) {
	w, h := p.W, p.H
	for l := 0; l < levels && w >= 2 && h >= 2; l++ {
		Forward2DLevel(filter, p, w, h)
		w = (w + 1) / 2
		h = (h + 1) / 2
	}
}

// InverseCascade is the exact inverse of ForwardCascade: levels must
// match what was used to encode.
func InverseCascade(filter Filter, p *Plane, levels int) {
	// Recompute the sequence of (w,h) pairs used during the forward
	// pass, then invert from the smallest LL outward.
	type dim struct{ w, h int }
	dims := make([]dim, 0, levels+1)
	w, h := p.W, p.H
	for l := 0; l < levels && w >= 2 && h >= 2; l++ {
		dims = append(dims, dim{w, h})
		w = (w + 1) / 2
		h = (h + 1) / 2
	}
	for i := len(dims) - 1; i >= 0; i-- {
		Inverse2DLevel(filter, p, dims[i].w, dims[i].h)
	}
}
