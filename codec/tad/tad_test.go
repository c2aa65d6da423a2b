package tad

import (
	"math"
	"os"
	"testing"

	"github.com/tsvm/tav/codec/wav"
	"github.com/tsvm/tav/diag"
)

func TestDecorrelateFloatRoundTrip(t *testing.T) {
	left := []float64{1, -2.5, 0, 127.25, -128}
	right := []float64{-1, 2.5, 0, 64.75, -64}
	mid, side := DecorrelateFloat(left, right)
	gotL, gotR := RecorrelateFloat(mid, side)
	for i := range left {
		if math.Abs(gotL[i]-left[i]) > 1e-9 || math.Abs(gotR[i]-right[i]) > 1e-9 {
			t.Fatalf("sample %d: got (%v,%v) want (%v,%v)", i, gotL[i], gotR[i], left[i], right[i])
		}
	}
}

func TestDecorrelate16RoundTrip(t *testing.T) {
	left := make([]int16, 257)
	right := make([]int16, 257)
	for i := range left {
		left[i] = int16(i*31 - 4000)
		right[i] = int16(-i*17 + 2500)
	}
	mid, side := Decorrelate16(left, right)
	gotL, gotR := Recorrelate16(mid, side)
	for i := range left {
		if gotL[i] != left[i] || gotR[i] != right[i] {
			t.Fatalf("sample %d: got (%d,%d) want (%d,%d)", i, gotL[i], gotR[i], left[i], right[i])
		}
	}
}

func sineWave(n int, freq, sampleRate, amp float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = amp * math.Sin(2*math.Pi*freq*float64(i)/sampleRate)
	}
	return out
}

func psnr(want, got []float64, peak float64) float64 { return diag.PSNR(want, got, peak) }

func TestChunkFloatRoundTripApprox(t *testing.T) {
	n := MinSampleCount
	left := sineWave(n, 440, SampleRate, 0.4)
	right := sineWave(n, 440, SampleRate, 0.35)
	p := Params{QuantiserScale: 0.01, ZstdLevel: 3}
	enc, err := EncodeChunkFloat(p, left, right)
	if err != nil {
		t.Fatal(err)
	}
	gotL, gotR, err := DecodeChunkFloat(n, enc)
	if err != nil {
		t.Fatal(err)
	}
	if psnr(left, gotL, 1.0) < 40 {
		t.Fatalf("left channel PSNR too low: %v", psnr(left, gotL, 1.0))
	}
	if psnr(right, gotR, 1.0) < 40 {
		t.Fatalf("right channel PSNR too low: %v", psnr(right, gotR, 1.0))
	}
}

func TestChunk16RoundTripApprox(t *testing.T) {
	n := 2048
	left := make([]int16, n)
	right := make([]int16, n)
	for i := range left {
		left[i] = int16(12000 * math.Sin(2*math.Pi*220*float64(i)/SampleRate))
		right[i] = int16(9000 * math.Sin(2*math.Pi*220*float64(i)/SampleRate+0.3))
	}
	p := Params{QuantiserScale: 0.02, ZstdLevel: -1}
	enc, err := EncodeChunk16(p, left, right)
	if err != nil {
		t.Fatal(err)
	}
	gotL, gotR, err := DecodeChunk16(n, enc)
	if err != nil {
		t.Fatal(err)
	}
	var maxDiff int
	for i := range left {
		if d := int(left[i]) - int(gotL[i]); abs(d) > maxDiff {
			maxDiff = abs(d)
		}
		if d := int(right[i]) - int(gotR[i]); abs(d) > maxDiff {
			maxDiff = abs(d)
		}
	}
	if maxDiff > 2000 {
		t.Fatalf("16-bit round trip diverged too far: maxDiff=%d", maxDiff)
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func TestSampleCountBoundaries(t *testing.T) {
	for _, n := range []int{MinSampleCount, MaxSampleCount} {
		left := sineWave(n, 1000, SampleRate, 0.5)
		right := sineWave(n, 1000, SampleRate, 0.5)
		p := Params{QuantiserScale: 0.05, ZstdLevel: 3}
		enc, err := EncodeChunkFloat(p, left, right)
		if err != nil {
			t.Fatalf("n=%d: %v", n, err)
		}
		gotL, _, err := DecodeChunkFloat(n, enc)
		if err != nil {
			t.Fatalf("n=%d: %v", n, err)
		}
		if len(gotL) != n {
			t.Fatalf("n=%d: decoded sample count = %d", n, len(gotL))
		}
	}
}

func TestChunkRejectsBadSampleCount(t *testing.T) {
	left := sineWave(100, 1000, SampleRate, 0.5)
	right := sineWave(100, 1000, SampleRate, 0.5)
	if _, err := EncodeChunkFloat(Params{ZstdLevel: 3}, left, right); err == nil {
		t.Fatal("expected error for sample_count below minimum")
	}
}

// TestOneSecondChunkPSNR mirrors the S4 scenario: a 1 kHz sine at half
// amplitude, stereo, one second (32000 samples) at quality index 3
// (modelled as a small quantiser_scale), decoded to PSNR >= 45 dB.
func TestOneSecondChunkPSNR(t *testing.T) {
	n := SampleRate
	left := sineWave(n, 1000, SampleRate, 0.5)
	right := sineWave(n, 1000, SampleRate, 0.5)
	p := Params{QuantiserScale: 0.002, ZstdLevel: 3}
	enc, err := EncodeChunkFloat(p, left, right)
	if err != nil {
		t.Fatal(err)
	}
	gotL, gotR, err := DecodeChunkFloat(n, enc)
	if err != nil {
		t.Fatal(err)
	}
	if got := psnr(left, gotL, 1.0); got < 45 {
		t.Fatalf("left PSNR %v dB below 45 dB target", got)
	}
	if got := psnr(right, gotR, 1.0); got < 45 {
		t.Fatalf("right PSNR %v dB below 45 dB target", got)
	}
}

// TestChunk16WAVFixtureRoundTrip writes a 16-bit TAD chunk to a real
// WAV file and back, so the fixture can be inspected with any audio
// tool instead of only compared in-process.
func TestChunk16WAVFixtureRoundTrip(t *testing.T) {
	n := MinSampleCount
	left := make([]int16, n)
	right := make([]int16, n)
	for i := range left {
		left[i] = int16(1000 * math.Sin(2*math.Pi*440*float64(i)/SampleRate))
		right[i] = int16(1000 * math.Sin(2*math.Pi*440*float64(i)/SampleRate+0.1))
	}

	f, err := os.CreateTemp(t.TempDir(), "tad-chunk-*.wav")
	if err != nil {
		t.Fatalf("CreateTemp: %v", err)
	}
	defer f.Close()
	if err := wav.WriteStereo16(f, int(SampleRate), left, right); err != nil {
		t.Fatalf("WriteStereo16: %v", err)
	}
	if _, err := f.Seek(0, 0); err != nil {
		t.Fatalf("Seek: %v", err)
	}
	fixtureLeft, fixtureRight, rate, err := wav.ReadStereo16(f)
	if err != nil {
		t.Fatalf("ReadStereo16: %v", err)
	}
	if rate != int(SampleRate) {
		t.Errorf("sample rate = %d, want %d", rate, int(SampleRate))
	}

	enc, err := EncodeChunk16(Params{QuantiserScale: 0.02, ZstdLevel: 3}, fixtureLeft, fixtureRight)
	if err != nil {
		t.Fatal(err)
	}
	gotL, gotR, err := DecodeChunk16(n, enc)
	if err != nil {
		t.Fatal(err)
	}
	for i := range left {
		if abs(int(gotL[i])-int(left[i])) > 200 || abs(int(gotR[i])-int(right[i])) > 200 {
			t.Fatalf("sample %d drifted too far through the WAV fixture + TAD chunk round trip: got (%d,%d) want ~(%d,%d)", i, gotL[i], gotR[i], left[i], right[i])
		}
	}
}
