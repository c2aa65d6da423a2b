package config

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/tsvm/tav/wavelet"
)

func TestValidateDefaults(t *testing.T) {
	var c Config
	if err := c.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if c.GOPSize != defaultGOPSize {
		t.Errorf("GOPSize = %d, want %d", c.GOPSize, defaultGOPSize)
	}
	if c.DecompLevels != defaultDecompLevels {
		t.Errorf("DecompLevels = %d, want %d", c.DecompLevels, defaultDecompLevels)
	}
	if c.WorkerCount == 0 {
		t.Error("WorkerCount left at 0 after Validate")
	}
	if c.Logger == nil {
		t.Error("Logger left nil after Validate")
	}
}

func TestValidateClampsGOPSize(t *testing.T) {
	for _, gs := range []uint{1, 7, 25, 1000} {
		c := Config{GOPSize: gs}
		if err := c.Validate(); err != nil {
			t.Fatalf("Validate: %v", err)
		}
		if c.GOPSize < MinGOPSize || c.GOPSize > MaxGOPSize {
			t.Errorf("GOPSize %d did not clamp into [%d,%d], got %d", gs, MinGOPSize, MaxGOPSize, c.GOPSize)
		}
	}
}

func TestLosslessForcesFilterAndZeroQuantisers(t *testing.T) {
	c := Config{Lossless: true, WaveletFilter: wavelet.CDF97, QuantiserY: 40, QuantiserCo: 40, QuantiserCg: 40}
	if err := c.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if c.WaveletFilter != wavelet.CDF53 {
		t.Errorf("lossless config did not force CDF53, got %v", c.WaveletFilter)
	}
	if c.QuantiserY != 0 || c.QuantiserCo != 0 || c.QuantiserCg != 0 {
		t.Errorf("lossless config left non-zero quantiser indices: %+v", c)
	}
}

func TestUpdate(t *testing.T) {
	var c Config
	c.Validate()
	c.Update(map[string]string{
		KeyGOPSize:        "16",
		KeyEncoderQuality: "7",
		KeyLossless:       "true",
	})
	want := Config{GOPSize: 16, EncoderQuality: 7, Lossless: true, WaveletFilter: wavelet.CDF53}
	if c.GOPSize != want.GOPSize || c.EncoderQuality != want.EncoderQuality || c.Lossless != want.Lossless {
		t.Errorf("Update result mismatch (-want +got):\n%s", cmp.Diff(want.GOPSize, c.GOPSize))
	}
}

func TestUpdateIgnoresUnknownKeys(t *testing.T) {
	var c Config
	c.Validate()
	before := c
	c.Update(map[string]string{"NotAField": "123"})
	if before != c {
		t.Errorf("unknown key mutated config: before=%+v after=%+v", before, c)
	}
}
