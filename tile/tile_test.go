package tile

import (
	"math"
	"testing"

	"github.com/tsvm/tav/wavelet"
)

func TestLayoutCoversFrame(t *testing.T) {
	tiles := Layout(1280, 1080)
	if len(tiles) != 4 {
		t.Fatalf("expected 4 tiles for 1280x1080, got %d", len(tiles))
	}
	for _, tl := range tiles {
		if tl.CoreW != CoreW || tl.CoreH != CoreH {
			t.Fatalf("expected full-size tiles, got %+v", tl)
		}
	}
}

func TestLayoutEdgeTiles(t *testing.T) {
	tiles := Layout(700, 550)
	if len(tiles) != 4 {
		t.Fatalf("expected 4 tiles, got %d", len(tiles))
	}
	// The tile at grid (1,1) should be clipped.
	for _, tl := range tiles {
		if tl.X == 1 && tl.Y == 1 {
			if tl.CoreW != 60 || tl.CoreH != 10 {
				t.Fatalf("edge tile size wrong: %+v", tl)
			}
		}
	}
}

func TestSingleTileRoundTrip(t *testing.T) {
	w, h := 64, 64
	src := make([]float64, w*h)
	for i := range src {
		src[i] = float64(i%251) - 100
	}
	tiles := Layout(w, h)
	dst := make([]float64, w*h)
	for _, tl := range tiles {
		padded := Extract(tl, src, w, h)
		wavelet.ForwardCascade(wavelet.CDF53, padded, 3)
		wavelet.InverseCascade(wavelet.CDF53, padded, 3)
		core := Crop(tl, padded)
		Place(tl, core, dst, w)
	}
	for i := range src {
		if math.Abs(dst[i]-src[i]) > 1e-6 {
			t.Fatalf("mismatch at %d: got %v want %v", i, dst[i], src[i])
		}
	}
}

func TestMultiTileSeamless(t *testing.T) {
	w, h := 700, 550 // Spans 4 tiles with clipped edges.
	src := make([]float64, w*h)
	for i := range src {
		src[i] = float64((i*7)%200) - 90
	}
	tiles := Layout(w, h)
	dst := make([]float64, w*h)
	for _, tl := range tiles {
		padded := Extract(tl, src, w, h)
		wavelet.ForwardCascade(wavelet.Haar, padded, 2)
		wavelet.InverseCascade(wavelet.Haar, padded, 2)
		core := Crop(tl, padded)
		Place(tl, core, dst, w)
	}
	for i := range src {
		if math.Abs(dst[i]-src[i]) > 1e-6 {
			t.Fatalf("mismatch at %d: got %v want %v", i, dst[i], src[i])
		}
	}
}
