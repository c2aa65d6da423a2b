package orchestrator

import (
	"bytes"
	"io"
	"testing"

	"github.com/tsvm/tav/colour"
	"github.com/tsvm/tav/container"
	"github.com/tsvm/tav/internal/logging"
	"github.com/tsvm/tav/orchestrator/config"
	"github.com/tsvm/tav/wavelet"
)

const (
	testWidth  = 64
	testHeight = 48
)

func checkerboardPixels(w, h, frameN int) []colour.RGB {
	px := make([]colour.RGB, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := uint8(0)
			if (x/8+y/8+frameN)%2 == 0 {
				v = 255
			}
			px[y*w+x] = colour.RGB{R: v, G: v, B: v / 2}
		}
	}
	return px
}

func testConfig(t *testing.T, mode config.PacketMode, lossless bool) config.Config {
	t.Helper()
	c := config.Config{
		Width:         testWidth,
		Height:        testHeight,
		FPS:           25,
		WaveletFilter: wavelet.CDF53,
		DecompLevels:  2,
		Lossless:      lossless,
		GOPSize:       8,
		PacketMode:    mode,
		IFramePeriod:  4,
		WorkerCount:   2,
		QueueDepth:    2,
		Logger:        logging.NewNop(),
	}
	if !lossless {
		c.WaveletFilter = wavelet.CDF97
		c.QuantiserY, c.QuantiserCo, c.QuantiserCg = 20, 30, 30
	}
	if err := c.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	return c
}

func encodeStream(t *testing.T, cfg config.Config, frameCount int) []byte {
	t.Helper()
	var buf bytes.Buffer
	enc, err := New(&buf, cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	for i := 0; i < frameCount; i++ {
		if err := enc.Push(checkerboardPixels(int(cfg.Width), int(cfg.Height), i)); err != nil {
			t.Fatalf("Push frame %d: %v", i, err)
		}
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	return buf.Bytes()
}

func decodeAll(t *testing.T, stream []byte) ([][]colour.RGB, *Decoder) {
	t.Helper()
	r := bytes.NewReader(stream)
	hdr := make([]byte, container.HeaderSize)
	if _, err := io.ReadFull(r, hdr); err != nil {
		t.Fatalf("reading file header: %v", err)
	}
	dec := NewDecoder(r, logging.NewNop())
	if _, err := dec.Open(hdr); err != nil {
		t.Fatalf("Open: %v", err)
	}
	var frames [][]colour.RGB
	for {
		u, err := dec.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		if u.Video != nil {
			frames = append(frames, u.Video)
		}
	}
	return frames, dec
}

func TestEncodeDecodeIFrameP_Lossless(t *testing.T) {
	cfg := testConfig(t, config.ModeIFrameP, true)
	stream := encodeStream(t, cfg, 8)

	frames, dec := decodeAll(t, stream)
	if len(frames) != 8 {
		t.Fatalf("got %d frames, want 8", len(frames))
	}
	if err := dec.Close(); err != nil {
		t.Errorf("decoder Close: %v", err)
	}

	for i, got := range frames {
		want := checkerboardPixels(testWidth, testHeight, i)
		for j := range want {
			if got[j] != want[j] {
				t.Fatalf("frame %d pixel %d: got %+v want %+v", i, j, got[j], want[j])
			}
		}
	}
}

func TestEncodeDecodeIFrameP_LossyWithinRange(t *testing.T) {
	cfg := testConfig(t, config.ModeIFrameP, false)
	stream := encodeStream(t, cfg, 8)

	frames, dec := decodeAll(t, stream)
	if len(frames) != 8 {
		t.Fatalf("got %d frames, want 8", len(frames))
	}
	if err := dec.Close(); err != nil {
		t.Errorf("decoder Close: %v", err)
	}

	for i, got := range frames {
		want := checkerboardPixels(testWidth, testHeight, i)
		for j := range want {
			d := int(got[j].R) - int(want[j].R)
			if d < -40 || d > 40 {
				t.Fatalf("frame %d pixel %d: got %+v want %+v (delta %d)", i, j, got[j], want[j], d)
			}
		}
	}
}

func TestEncodeDecodeGOPUnified(t *testing.T) {
	cfg := testConfig(t, config.ModeGOPUnified, true)
	stream := encodeStream(t, cfg, 8)

	frames, dec := decodeAll(t, stream)
	if len(frames) != 8 {
		t.Fatalf("got %d frames, want 8", len(frames))
	}
	if err := dec.Close(); err != nil {
		t.Errorf("decoder Close: %v", err)
	}
}

func TestEncodeDecodeGOPUnifiedMotion(t *testing.T) {
	cfg := testConfig(t, config.ModeGOPUnifiedMotion, true)
	stream := encodeStream(t, cfg, 8)

	frames, dec := decodeAll(t, stream)
	if len(frames) != 8 {
		t.Fatalf("got %d frames, want 8", len(frames))
	}
	if err := dec.Close(); err != nil {
		t.Errorf("decoder Close: %v", err)
	}
}

func TestPartialTrailingGOPFlushedOnClose(t *testing.T) {
	cfg := testConfig(t, config.ModeIFrameP, true)
	// 11 frames with GOPSize=8 leaves a 3-frame tail, which Close must
	// flush using the I-frame/P-frame packet mode regardless of
	// cfg.PacketMode, per spec.md §3.5 invariant 4.
	stream := encodeStream(t, cfg, 11)

	frames, dec := decodeAll(t, stream)
	if len(frames) != 11 {
		t.Fatalf("got %d frames, want 11", len(frames))
	}
	if err := dec.Close(); err != nil {
		t.Errorf("decoder Close: %v", err)
	}
}

func TestPushAfterCloseReturnsErrStopped(t *testing.T) {
	cfg := testConfig(t, config.ModeIFrameP, true)
	var buf bytes.Buffer
	enc, err := New(&buf, cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := enc.Push(checkerboardPixels(testWidth, testHeight, 0)); err != ErrStopped {
		t.Fatalf("Push after Close: got %v, want ErrStopped", err)
	}
}

func TestCancelStopsEncodingWithoutPartialPackets(t *testing.T) {
	cfg := testConfig(t, config.ModeIFrameP, true)
	var buf bytes.Buffer
	enc, err := New(&buf, cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	enc.Cancel()
	for i := 0; i < 8; i++ {
		_ = enc.Push(checkerboardPixels(testWidth, testHeight, i))
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	// Whatever packets made it out must still be well-formed: the
	// stream reader must not choke on a truncated packet.
	r := container.NewReader(bytes.NewReader(buf.Bytes()[container.HeaderSize:]))
	for {
		_, err := r.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("stream corrupt after cancel: %v", err)
		}
	}
}
