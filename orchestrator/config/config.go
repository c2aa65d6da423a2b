/*
NAME
  config.go

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>
  Trek Hopton <trek@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package config holds the orchestrator's session configuration: the
// FileHeader-level encode parameters, GOP/worker-pool geometry, and
// the runtime-updatable knobs an operator can push through Update,
// following revid/config's flat-struct-plus-Variables shape from the
// teacher codebase, generalised to the TAV/TAD domain.
package config

import (
	"github.com/tsvm/tav/container"
	"github.com/tsvm/tav/internal/logging"
	"github.com/tsvm/tav/wavelet"
)

// PacketMode selects how a closed GOP is serialised, per spec.md §4.6.
type PacketMode int

const (
	// ModeIFrameP emits one I-frame packet (0x10) per GOP followed by
	// per-frame P-frame packets (0x11).
	ModeIFrameP PacketMode = iota
	// ModeGOPUnified emits a single GOP-unified packet (0x12) with the
	// temporal DWT applied across the whole GOP.
	ModeGOPUnified
	// ModeGOPUnifiedMotion emits a GOP-unified-with-motion packet
	// (0x13). The orchestrator never performs motion estimation itself
	// (spec.md §9 Design Notes: the decoder is oblivious to it), so
	// this mode writes an empty motion-vector block and is otherwise
	// identical to ModeGOPUnified on the wire.
	ModeGOPUnifiedMotion
)

// Bounds on GOP size, per spec.md §3.5 invariant 4.
const (
	MinGOPSize = 8
	MaxGOPSize = 24
)

// Config carries everything an Encoder or Decoder session needs that
// isn't implied by the bitstream itself: the FileHeader fields to
// write, the GOP/worker-pool geometry, and ambient concerns (logging,
// a hot-reloadable preset file).
type Config struct {
	Width, Height uint

	// FPS is the header fps byte. 0xff defers to ExtFPSNum/ExtFPSDen
	// via the extended header's XFPS key, per spec.md §9.
	FPS                  uint8
	ExtFPSNum, ExtFPSDen uint

	WaveletFilter  wavelet.Filter
	DecompLevels   uint
	QuantiserY     uint8
	QuantiserCo    uint8
	QuantiserCg    uint8
	Lossless       bool
	Interlaced     bool
	NTSC           bool
	NoZstd         bool
	NoVideo        bool
	AudioEnabled   bool
	Subtitles      bool
	Progressive    bool
	ROI            bool
	EncoderQuality uint8
	ChannelLayout  container.ChannelLayout
	EntropyCoder   container.EntropyCoder

	// EncoderPreset carries opaque encoder-only hint bits (e.g. the
	// "sports"/"anime" heuristics flags of spec.md §9); it round-trips
	// through the header but never changes decode semantics.
	EncoderPreset uint8

	GOPSize    uint
	PacketMode PacketMode

	// IFramePeriod schedules INTRA P-frames at a fixed interval in
	// ModeIFrameP, standing in for the out-of-scope scene-change
	// detector (spec.md §9 Design Notes: fixed-interval I-frame
	// scheduling is compliant).
	IFramePeriod uint

	// WorkerCount sizes the GOP-encode worker pool; 0 defaults to
	// runtime.NumCPU() at Encoder construction.
	WorkerCount uint
	// QueueDepth bounds the pending-GOP task queue, the back-pressure
	// point of spec.md §5.
	QueueDepth uint

	// PresetPath, if non-empty, is watched with fsnotify; writes to it
	// hot-reload EncoderQuality/GOPSize/EntropyCoder via Update.
	PresetPath string

	Logger   logging.Logger
	LogLevel int8
}

// Validate fills in defaults and clamps out-of-range fields, mirroring
// revid/config's Validate/Variables loop.
func (c *Config) Validate() error {
	for _, v := range Variables {
		if v.Validate != nil {
			v.Validate(c)
		}
	}
	if c.Logger == nil {
		c.Logger = logging.NewNop()
	}
	return nil
}

// Update takes a map of variable names to string values (as read from
// a preset file or pushed by an operator) and applies the recognised
// ones, matching revid.Revid.Update's reconfig path.
func (c *Config) Update(vars map[string]string) {
	for _, v := range Variables {
		if s, ok := vars[v.Name]; ok && v.Update != nil {
			v.Update(c, s)
		}
	}
}
