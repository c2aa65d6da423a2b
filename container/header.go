/*
NAME
  header.go

DESCRIPTION
  header.go implements the 32-byte FileHeader and the Extended Header
  KV block, per spec.md §3.1.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package container implements the TAV/TAD packet stream: the 32-byte
// file header, the typed packet framing, extended KV metadata, and
// sync/timecode handling described in spec.md §3.1 and §4.9.
package container

import (
	"github.com/pkg/errors"

	"github.com/tsvm/tav/bitio"
)

// Magic is the 8-byte file signature.
var Magic = [8]byte{0x1F, 'T', 'S', 'V', 'M', 'T', 'A', 'V'}

// HeaderSize is the fixed, unencoded, unprotected file header length.
const HeaderSize = 32

// Video flag bits (FileHeader.VideoFlags).
const (
	VideoFlagInterlaced = 1 << 0
	VideoFlagNTSC       = 1 << 1
	VideoFlagLossless   = 1 << 2
	VideoFlagNoZstd     = 1 << 4
	VideoFlagNoVideo    = 1 << 7
)

// Extra flag bits (FileHeader.ExtraFlags).
const (
	ExtraFlagAudio       = 1 << 0
	ExtraFlagSubtitle    = 1 << 1
	ExtraFlagProgressive = 1 << 2
	ExtraFlagROI         = 1 << 3
)

// ChannelLayout enumerates FileHeader.ChannelLayout values.
type ChannelLayout uint8

const (
	LayoutYCoCg  ChannelLayout = 0
	LayoutYCoCgA ChannelLayout = 1
	LayoutYOnly  ChannelLayout = 2
	LayoutYA     ChannelLayout = 3
	LayoutCoCg   ChannelLayout = 4
	LayoutCoCgA  ChannelLayout = 5
)

// EntropyCoder enumerates FileHeader.EntropyCoder values.
type EntropyCoder uint8

const (
	EntropyTwobit EntropyCoder = 0
	EntropyEZBC   EntropyCoder = 1
	EntropyRaw    EntropyCoder = 2
)

// FileHeader is the 32-byte, little-endian, unencoded container header.
type FileHeader struct {
	Version        uint8
	Width, Height  uint16
	FPS            uint8 // 0xFF = extended (see ExtendedHeaderKV XFPS); 0 = still image
	TotalFrames    uint32
	WaveletFilter  uint8
	DecompLevels   uint8
	QuantiserY     uint8
	QuantiserCo    uint8
	QuantiserCg    uint8
	ExtraFlags     uint8
	VideoFlags     uint8
	EncoderQuality uint8
	ChannelLayout  ChannelLayout
	EntropyCoder   EntropyCoder
	EncoderPreset  uint8
}

// ErrBadMagic is returned when a stream does not begin with Magic.
var ErrBadMagic = errors.New("container: bad file magic")

// ErrTruncatedHeader is returned when fewer than HeaderSize bytes are
// available.
var ErrTruncatedHeader = errors.New("container: truncated file header")

// Encode serialises h into the fixed 32-byte layout.
func (h *FileHeader) Encode() []byte {
	w := bitio.NewByteWriter()
	w.Write(Magic[:])
	w.U8(h.Version)
	w.U16(h.Width)
	w.U16(h.Height)
	w.U8(h.FPS)
	w.U32(h.TotalFrames)
	w.U8(h.WaveletFilter)
	w.U8(h.DecompLevels)
	w.U8(h.QuantiserY)
	w.U8(h.QuantiserCo)
	w.U8(h.QuantiserCg)
	w.U8(h.ExtraFlags)
	w.U8(h.VideoFlags)
	w.U8(h.EncoderQuality)
	w.U8(uint8(h.ChannelLayout))
	w.U8(uint8(h.EntropyCoder))
	w.U8(h.EncoderPreset)
	w.Write([]byte{0, 0, 0})
	b := w.Bytes()
	if len(b) != HeaderSize {
		panic("container: header encode produced wrong length")
	}
	return b
}

// DecodeHeader parses the fixed 32-byte file header from the front of b.
func DecodeHeader(b []byte) (*FileHeader, error) {
	if len(b) < HeaderSize {
		return nil, ErrTruncatedHeader
	}
	r := bitio.NewByteReader(b)
	magic, _ := r.Bytes(8)
	for i := range Magic {
		if magic[i] != Magic[i] {
			return nil, ErrBadMagic
		}
	}
	h := &FileHeader{}
	h.Version, _ = r.U8()
	h.Width, _ = r.U16()
	h.Height, _ = r.U16()
	h.FPS, _ = r.U8()
	h.TotalFrames, _ = r.U32()
	h.WaveletFilter, _ = r.U8()
	h.DecompLevels, _ = r.U8()
	h.QuantiserY, _ = r.U8()
	h.QuantiserCo, _ = r.U8()
	h.QuantiserCg, _ = r.U8()
	h.ExtraFlags, _ = r.U8()
	h.VideoFlags, _ = r.U8()
	h.EncoderQuality, _ = r.U8()
	layout, _ := r.U8()
	h.ChannelLayout = ChannelLayout(layout)
	coder, _ := r.U8()
	h.EntropyCoder = EntropyCoder(coder)
	h.EncoderPreset, _ = r.U8()
	_, _ = r.Bytes(3) // reserved
	return h, nil
}

// KV value type tags, per spec.md §3.1.
const (
	KVTypeU64   uint8 = 0x04
	KVTypeBytes uint8 = 0x10
)

// Well-known extended header keys.
var (
	KeyBeginTime  = [4]byte{'B', 'G', 'N', 'T'}
	KeyEndTime    = [4]byte{'E', 'N', 'D', 'T'}
	KeyCreateDate = [4]byte{'C', 'D', 'A', 'T'}
	KeyVendor     = [4]byte{'V', 'N', 'D', 'R'}
	KeyFFmpegVer  = [4]byte{'F', 'M', 'P', 'G'}
	KeyExtFPS     = [4]byte{'X', 'F', 'P', 'S'}
)

// KVPair is one entry of the Extended Header KV block.
type KVPair struct {
	Key       [4]byte
	ValueType uint8
	U64       uint64
	Bytes     []byte
}

// ExtendedHeader is the recognised 0xEF packet payload: a sequence of
// typed key/value pairs. Unknown keys round-trip verbatim.
type ExtendedHeader struct {
	Pairs []KVPair
}

// Encode serialises the KV block (pair_count, then each pair).
func (e *ExtendedHeader) Encode() []byte {
	w := bitio.NewByteWriter()
	w.U16(uint16(len(e.Pairs)))
	for _, p := range e.Pairs {
		w.Write(p.Key[:])
		w.U8(p.ValueType)
		switch p.ValueType {
		case KVTypeU64:
			w.U64(p.U64)
		case KVTypeBytes:
			w.U16(uint16(len(p.Bytes)))
			w.Write(p.Bytes)
		}
	}
	return w.Bytes()
}

// ErrBadKV marks a malformed extended-header KV block.
var ErrBadKV = errors.New("container: malformed extended header KV block")

// DecodeExtendedHeader parses the KV block body (not including any
// packet type/size framing).
func DecodeExtendedHeader(b []byte) (*ExtendedHeader, error) {
	r := bitio.NewByteReader(b)
	count, err := r.U16()
	if err != nil {
		return nil, errors.Wrap(ErrBadKV, err.Error())
	}
	e := &ExtendedHeader{Pairs: make([]KVPair, 0, count)}
	for i := 0; i < int(count); i++ {
		keyB, err := r.Bytes(4)
		if err != nil {
			return nil, errors.Wrap(ErrBadKV, err.Error())
		}
		var p KVPair
		copy(p.Key[:], keyB)
		p.ValueType, err = r.U8()
		if err != nil {
			return nil, errors.Wrap(ErrBadKV, err.Error())
		}
		switch p.ValueType {
		case KVTypeU64:
			p.U64, err = r.U64()
		case KVTypeBytes:
			var n uint16
			n, err = r.U16()
			if err == nil {
				p.Bytes, err = r.Bytes(int(n))
			}
		default:
			err = errors.Wrapf(ErrBadKV, "unknown value_type 0x%02x", p.ValueType)
		}
		if err != nil {
			return nil, err
		}
		e.Pairs = append(e.Pairs, p)
	}
	return e, nil
}

// Find returns the first pair matching key, if present.
func (e *ExtendedHeader) Find(key [4]byte) (KVPair, bool) {
	for _, p := range e.Pairs {
		if p.Key == key {
			return p, true
		}
	}
	return KVPair{}, false
}

// ExtFPS parses the XFPS "num/den" ASCII fraction, per spec.md §7's
// fps=0xFF override rule.
func (e *ExtendedHeader) ExtFPS() (num, den int, ok bool) {
	p, found := e.Find(KeyExtFPS)
	if !found || p.ValueType != KVTypeBytes {
		return 0, 0, false
	}
	s := string(p.Bytes)
	var n, d int
	cnt, err := sscanFraction(s, &n, &d)
	if err != nil || cnt != 2 {
		return 0, 0, false
	}
	return n, d, true
}

func sscanFraction(s string, n, d *int) (int, error) {
	i := 0
	for i < len(s) && s[i] != '/' {
		i++
	}
	if i == len(s) {
		return 0, errors.New("container: XFPS missing '/'")
	}
	var err error
	*n, err = atoi(s[:i])
	if err != nil {
		return 0, err
	}
	*d, err = atoi(s[i+1:])
	if err != nil {
		return 1, err
	}
	return 2, nil
}

func atoi(s string) (int, error) {
	if s == "" {
		return 0, errors.New("container: empty integer in XFPS")
	}
	v := 0
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0, errors.Errorf("container: invalid digit %q in XFPS", c)
		}
		v = v*10 + int(c-'0')
	}
	return v, nil
}
