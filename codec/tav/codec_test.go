package tav

import (
	"math"
	"testing"

	"github.com/tsvm/tav/colour"
	"github.com/tsvm/tav/wavelet"
)

func testParams(w, h int, lossless bool) Params {
	filter := wavelet.CDF97
	qy, qco, qcg := uint8(40), uint8(60), uint8(60)
	if lossless {
		filter = wavelet.CDF53
		qy, qco, qcg = 0, 0, 0
	}
	return Params{Width: w, Height: h, Filter: filter, Levels: 2, QY: qy, QCo: qco, QCg: qcg, Lossless: lossless}
}

func checkerboardFrame(w, h int) *Frame {
	px := make([]colour.RGB, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := uint8(0)
			if (x/8+y/8)%2 == 0 {
				v = 255
			}
			px[y*w+x] = colour.RGB{R: v, G: v, B: v}
		}
	}
	return FromRGB(px, w, h)
}

func TestIFrameLosslessRoundTrip(t *testing.T) {
	p := testParams(64, 48, true)
	f := checkerboardFrame(p.Width, p.Height)
	enc := EncodeIFrame(p, CoderTwobit, f)
	got, err := DecodeIFrame(p, CoderTwobit, enc)
	if err != nil {
		t.Fatal(err)
	}
	for i := range f.Y {
		if got.Y[i] != f.Y[i] || got.Co[i] != f.Co[i] || got.Cg[i] != f.Cg[i] {
			t.Fatalf("pixel %d: got (%v,%v,%v) want (%v,%v,%v)", i, got.Y[i], got.Co[i], got.Cg[i], f.Y[i], f.Co[i], f.Cg[i])
		}
	}
}

func TestIFrameLossyWithinDeadZone(t *testing.T) {
	p := testParams(64, 48, false)
	f := checkerboardFrame(p.Width, p.Height)
	enc := EncodeIFrame(p, CoderTwobit, f)
	got, err := DecodeIFrame(p, CoderTwobit, enc)
	if err != nil {
		t.Fatal(err)
	}
	rgbWant := f.ToRGB()
	rgbGot := got.ToRGB()
	for i := range rgbWant {
		if diffU8(rgbWant[i].R, rgbGot[i].R) > 40 {
			t.Fatalf("pixel %d R: got %v want %v", i, rgbGot[i].R, rgbWant[i].R)
		}
	}
}

func diffU8(a, b uint8) int {
	if a > b {
		return int(a - b)
	}
	return int(b - a)
}

func TestPFrameSkipReturnsReference(t *testing.T) {
	p := testParams(32, 32, true)
	ref := checkerboardFrame(p.Width, p.Height)
	enc := EncodePFrame(p, CoderTwobit, ModeSkip, nil, nil)
	got, err := DecodePFrame(p, CoderTwobit, enc, ref)
	if err != nil {
		t.Fatal(err)
	}
	for i := range ref.Y {
		if got.Y[i] != ref.Y[i] {
			t.Fatalf("SKIP frame diverged at %d", i)
		}
	}
}

func TestPFrameDeltaRoundTrip(t *testing.T) {
	p := testParams(32, 32, true)
	ref := checkerboardFrame(p.Width, p.Height)
	cur := checkerboardFrame(p.Width, p.Height)
	for i := range cur.Y {
		cur.Y[i] += 3
	}
	enc := EncodePFrame(p, CoderTwobit, ModeDelta, cur, ref)
	got, err := DecodePFrame(p, CoderTwobit, enc, ref)
	if err != nil {
		t.Fatal(err)
	}
	for i := range cur.Y {
		if got.Y[i] != cur.Y[i] {
			t.Fatalf("DELTA frame Y[%d]: got %v want %v", i, got.Y[i], cur.Y[i])
		}
	}
}

func TestGOPUnifiedRoundTrip(t *testing.T) {
	p := testParams(16, 16, true)
	frames := make([]*Frame, 8)
	for i := range frames {
		frames[i] = checkerboardFrame(p.Width, p.Height)
		for j := range frames[i].Y {
			frames[i].Y[j] += float64(i)
		}
	}
	enc, err := EncodeGOPUnified(p, CoderTwobit, wavelet.Haar, 2, frames)
	if err != nil {
		t.Fatal(err)
	}
	got, err := DecodeGOPUnified(p, CoderTwobit, wavelet.Haar, 2, enc)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != len(frames) {
		t.Fatalf("got %d frames want %d", len(got), len(frames))
	}
	for i := range frames {
		for j := range frames[i].Y {
			if math.Abs(got[i].Y[j]-frames[i].Y[j]) > 1e-6 {
				t.Fatalf("frame %d pixel %d: got %v want %v", i, j, got[i].Y[j], frames[i].Y[j])
			}
		}
	}
}

func TestGOPUnifiedRejectsBadSize(t *testing.T) {
	p := testParams(16, 16, true)
	frames := make([]*Frame, 3)
	for i := range frames {
		frames[i] = checkerboardFrame(p.Width, p.Height)
	}
	if _, err := EncodeGOPUnified(p, CoderTwobit, wavelet.Haar, 2, frames); err == nil {
		t.Fatal("expected error for gop_size below minimum")
	}
}

func TestEZBCCoderRoundTrip(t *testing.T) {
	p := testParams(48, 32, true)
	f := checkerboardFrame(p.Width, p.Height)
	enc := EncodeIFrame(p, CoderEZBC, f)
	got, err := DecodeIFrame(p, CoderEZBC, enc)
	if err != nil {
		t.Fatal(err)
	}
	for i := range f.Y {
		if got.Y[i] != f.Y[i] {
			t.Fatalf("EZBC lossless Y[%d]: got %v want %v", i, got.Y[i], f.Y[i])
		}
	}
}
