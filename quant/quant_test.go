package quant

import "testing"

func TestQLUTMonotonic(t *testing.T) {
	for i := 1; i < len(QLUT); i++ {
		if QLUT[i-1] > QLUT[i] {
			t.Fatalf("QLUT not monotonic at %d: %d > %d", i, QLUT[i-1], QLUT[i])
		}
	}
}

func TestQLUTLength(t *testing.T) {
	if len(QLUT) != 256 {
		t.Fatalf("expected 256 entries, got %d", len(QLUT))
	}
}

func TestStepLastEntry(t *testing.T) {
	if Step(255) != QLUT[255] {
		t.Fatalf("Step(255) should equal last entry")
	}
}

func TestLosslessRoundTrip(t *testing.T) {
	// q_idx=0 (step=1), weight=1, dz=0 must round-trip exactly.
	for _, c := range []float64{0, 1, -1, 42, -42, 1000, -1000} {
		q := Quantise(c, 1, 0)
		got := Dequantise(q, 1)
		if got != c {
			t.Fatalf("lossless round trip failed for %v: got %v", c, got)
		}
	}
}

func TestDeadZoneRoundsSmallToZero(t *testing.T) {
	s := 10.0
	dz := 0.4
	q := Quantise(3, s, dz) // |3| - 10*0.4 = -1 -> clamped to 0 -> q=0.
	if q != 0 {
		t.Fatalf("expected dead-zone rounding to 0, got %d", q)
	}
}
