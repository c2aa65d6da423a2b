package colour

import "testing"

func TestYCoCgRRoundTrip(t *testing.T) {
	for r := 0; r <= 255; r += 17 {
		for g := 0; g <= 255; g += 17 {
			for b := 0; b <= 255; b += 17 {
				in := RGB{R: uint8(r), G: uint8(g), B: uint8(b)}
				got := ToYCoCgR(in).ToRGB()
				if got != in {
					t.Fatalf("round trip %+v -> %+v", in, got)
				}
			}
		}
	}
}

func TestYCoCgRRange(t *testing.T) {
	in := RGB{R: 255, G: 0, B: 255}
	y := ToYCoCgR(in)
	if y.Co < -256 || y.Co > 255 || y.Cg < -256 || y.Cg > 255 {
		t.Fatalf("Co/Cg out of range: %+v", y)
	}
}

func TestICtCpRoundTripWithinTolerance(t *testing.T) {
	const tol = 2
	samples := []RGB{
		{0, 0, 0}, {255, 255, 255}, {128, 128, 128},
		{255, 0, 0}, {0, 255, 0}, {0, 0, 255},
		{200, 100, 50}, {10, 200, 230},
	}
	for _, in := range samples {
		got := ToICtCp(in).ToRGB()
		if absDiff(in.R, got.R) > tol || absDiff(in.G, got.G) > tol || absDiff(in.B, got.B) > tol {
			t.Fatalf("round trip %+v -> %+v exceeds tolerance", in, got)
		}
	}
}

func absDiff(a, b uint8) int {
	if a > b {
		return int(a - b)
	}
	return int(b - a)
}
