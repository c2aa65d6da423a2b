/*
NAME
  variables.go

DESCRIPTION
  variables.go lists the Config fields an operator (or a hot-reloaded
  preset file) can change at runtime: a name, an update function that
  parses the string form into the field, and an optional validate
  function that clamps or defaults it. This is the same shape as
  revid/config/variables.go in the teacher codebase, narrowed to the
  knobs this codec family actually exposes.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package config

import (
	"runtime"
	"strconv"

	"github.com/tsvm/tav/container"
	"github.com/tsvm/tav/wavelet"
)

// Variable config key names, used both as map keys for Update and as
// the keys a preset file's lines are expected to use ("Name=value").
const (
	KeyEncoderQuality  = "EncoderQuality"
	KeyGOPSize         = "GOPSize"
	KeyPacketMode      = "PacketMode"
	KeyWaveletFilter   = "WaveletFilter"
	KeyQuantiserY      = "QuantiserY"
	KeyQuantiserCo     = "QuantiserCo"
	KeyQuantiserCg     = "QuantiserCg"
	KeyLossless        = "Lossless"
	KeyEntropyCoder    = "EntropyCoder"
	KeyIFramePeriod    = "IFramePeriod"
	KeyEncoderPreset   = "EncoderPreset"
	KeyWorkerCount     = "WorkerCount"
)

// Defaults applied by Validate when a field is unset or out of range.
const (
	defaultDecompLevels = 5
	defaultGOPSize      = 12
	defaultIFramePeriod = 30
	defaultQueueDepth   = 4
)

func parseUint8(name, v string, c *Config) uint8 {
	n, err := strconv.ParseUint(v, 10, 8)
	if err != nil {
		c.Logger.Log(0, "bad uint8 value, ignoring", "field", name, "value", v)
		return 0
	}
	return uint8(n)
}

func parseUint(name, v string, c *Config) uint {
	n, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		c.Logger.Log(0, "bad uint value, ignoring", "field", name, "value", v)
		return 0
	}
	return uint(n)
}

func parseBool(name, v string, c *Config) bool {
	b, err := strconv.ParseBool(v)
	if err != nil {
		c.Logger.Log(0, "bad bool value, ignoring", "field", name, "value", v)
		return false
	}
	return b
}

// Variables describes the fields of Config that can be changed after
// construction, either through Config.Update (an operator push) or
// through a watched PresetPath file.
var Variables = []struct {
	Name     string
	Update   func(*Config, string)
	Validate func(*Config)
}{
	{
		Name:   KeyEncoderQuality,
		Update: func(c *Config, v string) { c.EncoderQuality = parseUint8(KeyEncoderQuality, v, c) },
	},
	{
		Name:   KeyGOPSize,
		Update: func(c *Config, v string) { c.GOPSize = parseUint(KeyGOPSize, v, c) },
		Validate: func(c *Config) {
			switch {
			case c.GOPSize == 0:
				c.GOPSize = defaultGOPSize
			case c.GOPSize < MinGOPSize:
				c.GOPSize = MinGOPSize
			case c.GOPSize > MaxGOPSize:
				c.GOPSize = MaxGOPSize
			}
		},
	},
	{
		Name: KeyPacketMode,
		Update: func(c *Config, v string) {
			switch v {
			case "iframe-p":
				c.PacketMode = ModeIFrameP
			case "gop-unified":
				c.PacketMode = ModeGOPUnified
			case "gop-unified-motion":
				c.PacketMode = ModeGOPUnifiedMotion
			default:
				c.Logger.Log(0, "unknown packet mode, ignoring", "value", v)
			}
		},
	},
	{
		Name: KeyWaveletFilter,
		Update: func(c *Config, v string) {
			n, err := strconv.ParseUint(v, 10, 8)
			if err != nil {
				c.Logger.Log(0, "bad wavelet filter, ignoring", "value", v)
				return
			}
			c.WaveletFilter = wavelet.Filter(n)
		},
		Validate: func(c *Config) {
			if c.DecompLevels == 0 {
				c.DecompLevels = defaultDecompLevels
			}
		},
	},
	{
		Name:   KeyQuantiserY,
		Update: func(c *Config, v string) { c.QuantiserY = parseUint8(KeyQuantiserY, v, c) },
	},
	{
		Name:   KeyQuantiserCo,
		Update: func(c *Config, v string) { c.QuantiserCo = parseUint8(KeyQuantiserCo, v, c) },
	},
	{
		Name:   KeyQuantiserCg,
		Update: func(c *Config, v string) { c.QuantiserCg = parseUint8(KeyQuantiserCg, v, c) },
	},
	{
		Name:   KeyLossless,
		Update: func(c *Config, v string) { c.Lossless = parseBool(KeyLossless, v, c) },
		Validate: func(c *Config) {
			// A lossless session must use the reversible 5/3 filter
			// with zero quantiser indices, per spec.md §4.4's
			// round-trip property.
			if !c.Lossless {
				return
			}
			c.WaveletFilter = wavelet.CDF53
			c.QuantiserY, c.QuantiserCo, c.QuantiserCg = 0, 0, 0
		},
	},
	{
		Name: KeyEntropyCoder,
		Update: func(c *Config, v string) {
			n, err := strconv.ParseUint(v, 10, 8)
			if err != nil {
				c.Logger.Log(0, "bad entropy coder, ignoring", "value", v)
				return
			}
			c.EntropyCoder = container.EntropyCoder(n)
		},
	},
	{
		Name:   KeyIFramePeriod,
		Update: func(c *Config, v string) { c.IFramePeriod = parseUint(KeyIFramePeriod, v, c) },
		Validate: func(c *Config) {
			if c.IFramePeriod == 0 {
				c.IFramePeriod = defaultIFramePeriod
			}
		},
	},
	{
		Name:   KeyEncoderPreset,
		Update: func(c *Config, v string) { c.EncoderPreset = parseUint8(KeyEncoderPreset, v, c) },
	},
	{
		Name:   KeyWorkerCount,
		Update: func(c *Config, v string) { c.WorkerCount = parseUint(KeyWorkerCount, v, c) },
		Validate: func(c *Config) {
			if c.WorkerCount == 0 {
				c.WorkerCount = uint(runtime.NumCPU())
			}
			if c.QueueDepth == 0 {
				c.QueueDepth = defaultQueueDepth
			}
		},
	},
}
