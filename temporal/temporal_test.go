package temporal

import (
	"math"
	"testing"

	"github.com/tsvm/tav/wavelet"
)

func makeGOP(gopSize, planeLen int) [][]float64 {
	frames := make([][]float64, gopSize)
	for f := range frames {
		frames[f] = make([]float64, planeLen)
		for p := range frames[f] {
			frames[f][p] = float64((f+1)*31 + p*7 - 50)
		}
	}
	return frames
}

func TestForwardInverseGOPRoundTrip53(t *testing.T) {
	for _, gopSize := range []int{MinGOP, 12, MaxGOP} {
		frames := makeGOP(gopSize, 17)
		levels := EffectiveLevels(gopSize, DefaultLevels)
		coeffs := ForwardGOP(wavelet.CDF53, frames, levels)
		restored := InverseGOP(wavelet.CDF53, coeffs, levels)
		for f := range frames {
			for p := range frames[f] {
				if restored[f][p] != frames[f][p] {
					t.Fatalf("gopSize=%d frame %d pos %d: got %v want %v", gopSize, f, p, restored[f][p], frames[f][p])
				}
			}
		}
	}
}

func TestForwardInverseGOPRoundTripHaar(t *testing.T) {
	frames := makeGOP(8, 9)
	coeffs := ForwardGOP(wavelet.Haar, frames, 2)
	restored := InverseGOP(wavelet.Haar, coeffs, 2)
	for f := range frames {
		for p := range frames[f] {
			if math.Abs(restored[f][p]-frames[f][p]) > 1e-6 {
				t.Fatalf("frame %d pos %d: got %v want %v", f, p, restored[f][p], frames[f][p])
			}
		}
	}
}

func TestEffectiveLevels(t *testing.T) {
	cases := []struct{ gop, requested, want int }{
		{8, 2, 2},
		{1, 2, 0},
		{3, 2, 2},
		{24, 2, 2},
	}
	for _, c := range cases {
		if got := EffectiveLevels(c.gop, c.requested); got != c.want {
			t.Fatalf("EffectiveLevels(%d,%d) = %d want %d", c.gop, c.requested, got, c.want)
		}
	}
}
