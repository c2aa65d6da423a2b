/*
NAME
  types.go

DESCRIPTION
  types.go is the packet type registry for the TAV/TAD container, per
  the table in spec.md §6. It records, for every type byte, whether the
  packet carries a `u32 size` prefix, so the stream reader can skip
  unrecognised types safely instead of having to understand their body.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package container

// PacketType identifies a container packet's one-byte type tag.
type PacketType uint8

// Packet types, per spec.md §6.
const (
	TypeNoop          PacketType = 0x00
	TypeIFrame        PacketType = 0x10
	TypePFrame        PacketType = 0x11
	TypeGOPUnified    PacketType = 0x12
	TypeGOPMotion     PacketType = 0x13
	TypeMP2Audio      PacketType = 0x20
	TypePCM8Audio     PacketType = 0x21
	TypeTADAudio      PacketType = 0x24
	TypeSubtitle      PacketType = 0x30
	TypeSubtitleTC    PacketType = 0x31
	TypeVideotex      PacketType = 0x3F
	TypeSeparateAudio PacketType = 0x40
	TypeMetaEXIF      PacketType = 0xE0
	TypeMetaID3v1     PacketType = 0xE1
	TypeMetaID3v2     PacketType = 0xE2
	TypeMetaVorbis    PacketType = 0xE3
	TypeMetaCDText    PacketType = 0xE4
	TypeExtendedKV    PacketType = 0xEF
	TypeLoopStart     PacketType = 0xF0
	TypeLoopEnd       PacketType = 0xF1
	TypeScreenMask    PacketType = 0xF2
	TypeGOPSync       PacketType = 0xFC
	TypeTimecode      PacketType = 0xFD
	TypeSyncNTSC      PacketType = 0xFE
	TypeSync          PacketType = 0xFF
)

// framing describes how a packet type's body is laid out after the
// type byte, for the purposes of the generic stream reader.
type framing int

const (
	framingSized   framing = iota // u32 size, then size bytes.
	framingFixed                  // a type-specific fixed body, no size prefix.
	framingNone                   // no body at all.
)

// registryEntry records a packet type's framing and a human name, used
// for diagnostics and for the resync scanner's plausibility check.
type registryEntry struct {
	name    string
	framing framing
	fixed   int // body length when framing == framingFixed
}

var registry = map[PacketType]registryEntry{
	TypeNoop:          {"noop", framingNone, 0},
	TypeIFrame:        {"i-frame", framingSized, 0},
	TypePFrame:        {"p-frame", framingSized, 0},
	TypeGOPUnified:    {"gop-unified", framingSized, 0},
	TypeGOPMotion:     {"gop-unified-motion", framingSized, 0},
	TypeMP2Audio:      {"mp2-audio", framingSized, 0},
	TypePCM8Audio:     {"pcm8-audio", framingSized, 0},
	TypeTADAudio:      {"tad-audio", framingFixed, 0}, // variable; handled specially, see Reader.readTADPacket.
	TypeSubtitle:      {"subtitle", framingSized, 0},
	TypeSubtitleTC:    {"subtitle-tc", framingSized, 0},
	TypeVideotex:      {"videotex", framingSized, 0},
	TypeSeparateAudio: {"separate-audio", framingSized, 0},
	TypeMetaEXIF:      {"meta-exif", framingSized, 0},
	TypeMetaID3v1:     {"meta-id3v1", framingSized, 0},
	TypeMetaID3v2:     {"meta-id3v2", framingSized, 0},
	TypeMetaVorbis:    {"meta-vorbis-comment", framingSized, 0},
	TypeMetaCDText:    {"meta-cd-text", framingSized, 0},
	TypeExtendedKV:    {"extended-header-kv", framingSized, 0},
	TypeLoopStart:     {"loop-start", framingNone, 0},
	TypeLoopEnd:       {"loop-end", framingNone, 0},
	TypeScreenMask:    {"screen-mask", framingFixed, 4 + 2 + 2 + 2 + 2},
	TypeGOPSync:       {"gop-sync", framingFixed, 1},
	TypeTimecode:      {"timecode", framingFixed, 8},
	TypeSyncNTSC:      {"sync-ntsc", framingNone, 0},
	TypeSync:          {"sync", framingNone, 0},
}

// Name returns a human-readable name for t, or "unknown" if t is not in
// the registry (e.g. a forward-compatible type this build predates).
func (t PacketType) Name() string {
	if e, ok := registry[t]; ok {
		return e.name
	}
	return "unknown"
}

// IsSized reports whether t carries a leading u32 size field, which is
// what lets the stream reader skip an unrecognised sized type exactly,
// per spec.md's container skip-safety invariant.
func (t PacketType) IsSized() bool {
	e, ok := registry[t]
	return !ok || e.framing == framingSized // unknown types are assumed sized.
}
