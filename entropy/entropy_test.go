package entropy

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestTwobitRoundTrip(t *testing.T) {
	coeffs := []int16{0, 1, -1, 0, 0, 42, -1000, 16384, -16384, 0, 1, 0}
	enc := EncodeTwobit(coeffs)
	dec, err := DecodeTwobit(enc, len(coeffs))
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(coeffs, dec); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}

func TestTwobitAllZero(t *testing.T) {
	coeffs := make([]int16, 100)
	enc := EncodeTwobit(coeffs)
	dec, err := DecodeTwobit(enc, len(coeffs))
	if err != nil {
		t.Fatal(err)
	}
	for i, v := range dec {
		if v != 0 {
			t.Fatalf("index %d: got %d want 0", i, v)
		}
	}
}

func TestTwobitOverflow(t *testing.T) {
	enc := EncodeTwobit([]int16{1, 2, 3})
	if _, err := DecodeTwobit(enc, 1000); err == nil {
		t.Fatal("expected overflow error")
	}
}

func TestEZBCRoundTrip(t *testing.T) {
	w, h := 9, 7 // deliberately non-power-of-two
	coeffs := make([]int32, w*h)
	vals := []int32{0, 1, -1, 5, -5, 127, -127, 1000, -1000, 32767, -32768}
	for i := range coeffs {
		coeffs[i] = vals[i%len(vals)]
	}
	enc := EncodeEZBC(coeffs, w, h)
	dec, err := DecodeEZBC(enc, w, h)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(coeffs, dec); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}

func TestEZBCAllZero(t *testing.T) {
	w, h := 4, 4
	coeffs := make([]int32, w*h)
	enc := EncodeEZBC(coeffs, w, h)
	dec, err := DecodeEZBC(enc, w, h)
	if err != nil {
		t.Fatal(err)
	}
	for i, v := range dec {
		if v != 0 {
			t.Fatalf("index %d: got %d want 0", i, v)
		}
	}
}

func TestEZBCSingleCoefficient(t *testing.T) {
	coeffs := []int32{-17}
	enc := EncodeEZBC(coeffs, 1, 1)
	dec, err := DecodeEZBC(enc, 1, 1)
	if err != nil {
		t.Fatal(err)
	}
	if dec[0] != -17 {
		t.Fatalf("got %d want -17", dec[0])
	}
}

func TestEZBCOverflow(t *testing.T) {
	enc := EncodeEZBC([]int32{1, 2, 3, 4}, 2, 2)
	if _, err := DecodeEZBC(enc[:0], 2, 2); err == nil {
		t.Fatal("expected overflow error")
	}
}

func BenchmarkEZBCRoundTrip(b *testing.B) {
	w, h := 64, 64
	coeffs := make([]int32, w*h)
	for i := range coeffs {
		coeffs[i] = int32(i%200) - 100
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		enc := EncodeEZBC(coeffs, w, h)
		if _, err := DecodeEZBC(enc, w, h); err != nil {
			b.Fatal(err)
		}
	}
}
