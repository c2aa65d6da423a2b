/*
NAME
  orchestrator.go

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>
  Alan Noble <alan@ausocean.org>
  Dan Kortschak <dan@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package orchestrator implements the session controller (C13): it
// feeds incoming RGB frames into per-GOP encode tasks run across a
// worker pool, and writes the resulting packets to the container
// stream in encode order, per spec.md §2 C13 and §5's concurrency
// model. It plays the role revid.Revid plays in the teacher codebase,
// generalised from a capture/transcode pipeline to a GOP-parallel
// codec encoder.
package orchestrator

import (
	"io"
	"runtime"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"

	"github.com/tsvm/tav/codec/tav"
	"github.com/tsvm/tav/colour"
	"github.com/tsvm/tav/container"
	"github.com/tsvm/tav/internal/logging"
	"github.com/tsvm/tav/orchestrator/config"
)

// ErrStopped is returned by Push/Close operations attempted after the
// encoder has been stopped.
var ErrStopped = errors.New("orchestrator: encoder stopped")

// gopTask is one unit of worker-pool work: a GOP's worth of frames,
// tagged with its submission sequence so the writer goroutine can
// preserve encode order even though workers finish out of order.
type gopTask struct {
	seq    uint64
	frames []*tav.Frame
	mode   config.PacketMode
	resp   chan gopResult
}

// packet is a fully-framed container packet body awaiting a write,
// produced by a worker and consumed only by the writer goroutine.
type packet struct {
	typ   container.PacketType
	body  []byte
	fixed bool // WriteFixed (GOP sync) vs WriteSized (frame/GOP packets).
}

type gopResult struct {
	packets []packet
	err     error
}

// Encoder owns a pending-GOP worker pool and the single writer
// goroutine that commits packets to the output stream in encode
// order, per spec.md §5's ordering guarantee. Construct with New,
// feed frames with Push, and call Close to flush and join.
type Encoder struct {
	cfg    config.Config
	logger logging.Logger

	w io.Writer
	cw *container.Writer

	mu      sync.Mutex
	pending []*tav.Frame
	seq     uint64
	frameN  uint32

	statsMu sync.Mutex
	stats   Stats

	taskCh  chan gopTask
	orderCh chan chan gopResult
	cancel  chan struct{}

	wg       sync.WaitGroup // worker pool
	writerWG sync.WaitGroup

	watcher *fsnotify.Watcher
	watchWG sync.WaitGroup

	closeOnce sync.Once
	closed    bool
}

// New constructs an Encoder writing a 32-byte FileHeader to dst
// followed by the packet stream, validating cfg and starting the
// worker pool and writer goroutine. If cfg.PresetPath is non-empty it
// is watched for hot-reloadable quality/GOP-size/entropy-coder
// changes.
func New(dst io.Writer, cfg config.Config) (*Encoder, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "orchestrator: invalid config")
	}

	e := &Encoder{
		cfg:     cfg,
		logger:  cfg.Logger,
		w:       dst,
		cw:      container.NewWriter(dst),
		taskCh:  make(chan gopTask, cfg.QueueDepth),
		orderCh: make(chan chan gopResult, 4096),
		cancel:  make(chan struct{}),
	}

	if err := e.writeHeader(); err != nil {
		return nil, err
	}

	n := cfg.WorkerCount
	if n == 0 {
		n = uint(runtime.NumCPU())
	}
	e.wg.Add(int(n))
	for i := uint(0); i < n; i++ {
		go e.worker()
	}

	e.writerWG.Add(1)
	go e.writePackets()

	if cfg.PresetPath != "" {
		if err := e.watchPreset(cfg.PresetPath); err != nil {
			e.logger.Log(logging.Warning, "could not watch preset file", "path", cfg.PresetPath, "error", err.Error())
		}
	}

	return e, nil
}

func (e *Encoder) writeHeader() error {
	flags := uint8(0)
	if e.cfg.Interlaced {
		flags |= container.VideoFlagInterlaced
	}
	if e.cfg.NTSC {
		flags |= container.VideoFlagNTSC
	}
	if e.cfg.Lossless {
		flags |= container.VideoFlagLossless
	}
	if e.cfg.NoZstd {
		flags |= container.VideoFlagNoZstd
	}
	if e.cfg.NoVideo {
		flags |= container.VideoFlagNoVideo
	}

	extra := uint8(0)
	if e.cfg.AudioEnabled {
		extra |= container.ExtraFlagAudio
	}
	if e.cfg.Subtitles {
		extra |= container.ExtraFlagSubtitle
	}
	if e.cfg.Progressive {
		extra |= container.ExtraFlagProgressive
	}
	if e.cfg.ROI {
		extra |= container.ExtraFlagROI
	}

	h := &container.FileHeader{
		Version:        5, // full-resolution chroma, per spec.md §4.1.
		Width:          uint16(e.cfg.Width),
		Height:         uint16(e.cfg.Height),
		FPS:            e.cfg.FPS,
		WaveletFilter:  uint8(e.cfg.WaveletFilter),
		DecompLevels:   uint8(e.cfg.DecompLevels),
		QuantiserY:     e.cfg.QuantiserY,
		QuantiserCo:    e.cfg.QuantiserCo,
		QuantiserCg:    e.cfg.QuantiserCg,
		ExtraFlags:     extra,
		VideoFlags:     flags,
		EncoderQuality: e.cfg.EncoderQuality,
		ChannelLayout:  e.cfg.ChannelLayout,
		EntropyCoder:   e.cfg.EntropyCoder,
		EncoderPreset:  e.cfg.EncoderPreset,
	}
	if _, err := e.w.Write(h.Encode()); err != nil {
		return errors.Wrap(err, "orchestrator: writing file header")
	}

	if e.cfg.FPS == 0xff {
		ext := &container.ExtendedHeader{Pairs: []container.KVPair{{
			Key:       container.KeyExtFPS,
			ValueType: container.KVTypeBytes,
			Bytes:     []byte(extFPSFraction(e.cfg.ExtFPSNum, e.cfg.ExtFPSDen)),
		}}}
		return e.cw.WriteSized(container.TypeExtendedKV, ext.Encode())
	}
	return nil
}

func extFPSFraction(num, den uint) string {
	if den == 0 {
		den = 1
	}
	return itoa(num) + "/" + itoa(den)
}

func itoa(n uint) string {
	if n == 0 {
		return "0"
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[i:])
}

// Push submits one RGB24 frame for encoding. Frames are buffered until
// a full GOP (cfg.GOPSize frames) accumulates, at which point the GOP
// is handed to the worker pool; Push blocks only if the bounded task
// queue is full (spec.md §5 suspension point (b)).
func (e *Encoder) Push(px []colour.RGB) error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return ErrStopped
	}
	e.pending = append(e.pending, tav.FromRGB(px, int(e.cfg.Width), int(e.cfg.Height)))
	e.frameN++
	var gop []*tav.Frame
	mode := e.cfg.PacketMode
	if uint(len(e.pending)) >= e.cfg.GOPSize {
		gop = e.pending
		e.pending = nil
	}
	e.mu.Unlock()

	if gop == nil {
		return nil
	}
	return e.dispatch(gop, mode)
}

// dispatch hands frames to the worker pool tagged with an explicit
// packet mode (rather than reading e.cfg.PacketMode from the worker,
// which could otherwise race with a concurrent hot-reload via
// reloadPreset or Close's tail flush).
func (e *Encoder) dispatch(frames []*tav.Frame, mode config.PacketMode) error {
	resp := make(chan gopResult, 1)
	select {
	case e.orderCh <- resp:
	case <-e.cancel:
		return ErrStopped
	}

	e.mu.Lock()
	seq := e.seq
	e.seq++
	e.mu.Unlock()

	select {
	case e.taskCh <- gopTask{seq: seq, frames: frames, mode: mode, resp: resp}:
	case <-e.cancel:
		resp <- gopResult{} // resp is already queued on orderCh; release the writer.
		return ErrStopped
	}
	return nil
}

// worker runs the per-GOP encode pipeline. The natural unit of
// parallelism is the GOP (spec.md §9 Design Notes); several workers
// run concurrently but the writer goroutine serialises their results
// back into submission order via orderCh.
func (e *Encoder) worker() {
	defer e.wg.Done()
	for task := range e.taskCh {
		pkts, err := e.encodeGOP(task.frames, task.mode)
		task.resp <- gopResult{packets: pkts, err: err}
	}
}

func (e *Encoder) encodeGOP(frames []*tav.Frame, mode config.PacketMode) ([]packet, error) {
	select {
	case <-e.cancel:
		return nil, nil
	default:
	}

	switch mode {
	case config.ModeGOPUnified, config.ModeGOPUnifiedMotion:
		return e.encodeGOPUnified(frames, mode)
	default:
		return e.encodeGOPIFrameP(frames)
	}
}

func (e *Encoder) params() tav.Params {
	return tav.Params{
		Width:    int(e.cfg.Width),
		Height:   int(e.cfg.Height),
		Filter:   e.cfg.WaveletFilter,
		Levels:   int(e.cfg.DecompLevels),
		QY:       e.cfg.QuantiserY,
		QCo:      e.cfg.QuantiserCo,
		QCg:      e.cfg.QuantiserCg,
		Lossless: e.cfg.Lossless,
	}
}

func (e *Encoder) coder() tav.Coder { return tav.Coder(e.cfg.EntropyCoder) }

// encodeGOPIFrameP encodes one GOP as an I-frame followed by P-frame
// packets, breaking the prediction chain at every GOP boundary so
// workers never share state, per spec.md §3.5 invariant 3 and §9's
// ownership note: the encoder's reference frame is local to this
// worker call, re-derived by decoding its own just-written bytes so it
// matches exactly what a real decoder will reconstruct.
func (e *Encoder) encodeGOPIFrameP(frames []*tav.Frame) ([]packet, error) {
	p := e.params()
	var pkts []packet

	ib := tav.EncodeIFrame(p, e.coder(), frames[0])
	pkts = append(pkts, packet{typ: container.TypeIFrame, body: ib})
	ref, err := tav.DecodeIFrame(p, e.coder(), ib)
	if err != nil {
		return nil, errors.Wrap(err, "orchestrator: self-check decoding I-frame")
	}

	period := e.cfg.IFramePeriod
	for i := 1; i < len(frames); i++ {
		select {
		case <-e.cancel:
			return pkts, nil // No partial packet; everything appended so far is whole.
		default:
		}

		mode := tav.ModeDelta
		switch {
		case period > 0 && uint(i)%period == 0:
			mode = tav.ModeIntra
		case sameFrame(frames[i], ref):
			mode = tav.ModeSkip
		}

		pb := tav.EncodePFrame(p, e.coder(), mode, frames[i], ref)
		pkts = append(pkts, packet{typ: container.TypePFrame, body: pb})

		ref, err = tav.DecodePFrame(p, e.coder(), pb, ref)
		if err != nil {
			return nil, errors.Wrap(err, "orchestrator: self-check decoding P-frame")
		}
	}

	pkts = append(pkts, packet{typ: container.TypeGOPSync, body: []byte{uint8(len(frames))}, fixed: true})
	return pkts, nil
}

func sameFrame(a, b *tav.Frame) bool {
	return equalPlane(a.Y, b.Y) && equalPlane(a.Co, b.Co) && equalPlane(a.Cg, b.Cg)
}

func equalPlane(a, b []float64) bool {
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// encodeGOPUnified encodes the whole GOP as a single packet with the
// temporal DWT applied across it, per spec.md §4.6/§4.7.
// ModeGOPUnifiedMotion writes an empty motion-vector block: this
// orchestrator performs no motion estimation (spec.md §9 Design
// Notes), which is compliant since the decoder never needs motion
// vectors for correctness.
func (e *Encoder) encodeGOPUnified(frames []*tav.Frame, mode config.PacketMode) ([]packet, error) {
	p := e.params()
	body, err := tav.EncodeGOPUnified(p, e.coder(), DefaultTemporalFilter, DefaultTemporalLevels, frames)
	if err != nil {
		return nil, err
	}

	var pkts []packet
	if mode == config.ModeGOPUnifiedMotion {
		pkts = append(pkts, packet{typ: container.TypeGOPMotion, body: wrapEmptyMotion(body)})
	} else {
		pkts = append(pkts, packet{typ: container.TypeGOPUnified, body: body})
	}
	pkts = append(pkts, packet{typ: container.TypeGOPSync, body: []byte{uint8(len(frames))}, fixed: true})
	return pkts, nil
}

// wrapEmptyMotion prefixes body with the 0x13 packet's `u32 mv_size=0,
// u32 cv_size` framing (no motion-vector bytes), per spec.md §4.6/§6.1.
func wrapEmptyMotion(coeffVolume []byte) []byte {
	out := make([]byte, 0, 8+len(coeffVolume))
	out = append(out, 0, 0, 0, 0) // mv_size = 0
	n := uint32(len(coeffVolume))
	out = append(out, byte(n), byte(n>>8), byte(n>>16), byte(n>>24))
	out = append(out, coeffVolume...)
	return out
}
