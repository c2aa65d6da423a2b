/*
NAME
  tile.go

DESCRIPTION
  tile.go implements the tile engine (spec.md §3.2, §4.3): frames larger
  than the core tile size are split into 640x540 tiles, each padded to
  704x604 with a 32-pixel mirrored border before the forward DWT, and
  cropped back to the tile's core size after the inverse DWT.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package tile implements the fixed-geometry tile engine that lets the
// 2-D DWT operate seamlessly across frames larger than a single core
// tile.
package tile

import "github.com/tsvm/tav/wavelet"

// Geometry constants from spec.md §3.2/§4.3.
const (
	CoreW  = 640
	CoreH  = 540
	Margin = 32
	PadW   = CoreW + 2*Margin // 704
	PadH   = CoreH + 2*Margin // 604
)

// Tile describes one tile's position and actual (possibly smaller,
// edge-clipped) core size within a frame.
type Tile struct {
	X, Y          int // Tile-grid coordinates (not pixels).
	CoreW, CoreH  int // Actual core size; equals CoreW/CoreH except at right/bottom edges.
}

// Layout returns the tiles needed to cover a frame of size w×h.
func Layout(w, h int) []Tile {
	var tiles []Tile
	for ty := 0; ty*CoreH < h; ty++ {
		for tx := 0; tx*CoreW < w; tx++ {
			cw := CoreW
			if rem := w - tx*CoreW; rem < CoreW {
				cw = rem
			}
			ch := CoreH
			if rem := h - ty*CoreH; rem < CoreH {
				ch = rem
			}
			tiles = append(tiles, Tile{X: tx, Y: ty, CoreW: cw, CoreH: ch})
		}
	}
	return tiles
}

// mirrorCoord applies the exact mirror formula from spec.md §4.3.
func mirrorCoord(v, limit int) int {
	if v < 0 {
		v = -v
	}
	if v >= limit {
		v = limit - 1 - (v - limit)
	}
	if v < 0 {
		v = 0
	}
	if v >= limit {
		v = limit - 1
	}
	return v
}

// Extract builds the padded PadW×PadH working plane for tile t out of
// source channel plane src (w×h), using mirrored padding at frame
// boundaries, per spec.md §4.3 step 2.
func Extract(t Tile, src []float64, w, h int) *wavelet.Plane {
	p := wavelet.NewPlane(PadW, PadH)
	for py := 0; py < PadH; py++ {
		sy := t.Y*CoreH + py - Margin
		sy = mirrorCoord(sy, h)
		for px := 0; px < PadW; px++ {
			sx := t.X*CoreW + px - Margin
			sx = mirrorCoord(sx, w)
			p.Data[py*PadW+px] = src[sy*w+sx]
		}
	}
	return p
}

// Crop extracts the tile's actual core region back out of a padded
// plane after the inverse DWT, per spec.md §4.3 step 4.
func Crop(t Tile, p *wavelet.Plane) []float64 {
	out := make([]float64, t.CoreW*t.CoreH)
	for y := 0; y < t.CoreH; y++ {
		for x := 0; x < t.CoreW; x++ {
			out[y*t.CoreW+x] = p.Data[(y+Margin)*PadW+(x+Margin)]
		}
	}
	return out
}

// Place writes a tile's cropped core pixels back into a full w×h frame
// plane at the tile's position.
func Place(t Tile, core []float64, dst []float64, w int) {
	for y := 0; y < t.CoreH; y++ {
		dy := t.Y*CoreH + y
		for x := 0; x < t.CoreW; x++ {
			dx := t.X*CoreW + x
			dst[dy*w+dx] = core[y*t.CoreW+x]
		}
	}
}
