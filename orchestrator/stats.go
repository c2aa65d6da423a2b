/*
NAME
  stats.go

DESCRIPTION
  stats.go accumulates the non-fatal error counters spec.md §7
  requires for the plain (non-DT) TAV/TAD stream: errors are counted,
  not thrown, modelled on revid.Revid's bitrate-calculator field and on
  fec/dt.Stats for the FEC-channel variant.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package orchestrator

// Stats accumulates decode-time error counts, per spec.md §7's
// propagation model: only BadMagic, UnsupportedVersion, a truncated or
// malformed packet framing, and a bytes-read-but-no-frames-decoded
// condition are surfaced as errors; decode failures are counted here.
type Stats struct {
	PacketsRead          int
	FramesDecoded         int
	ZstdErrors            int // every failed video decode; skip packet, a failed P-frame re-emits the previous reference.
	EntropyErrors         int // not incremented by Decoder; entropy-decode failures count as ZstdErrors.
	UnknownPacketTypes    int
	InvalidQuantiserIdx   int // not incremented by Decoder; quant.Step treats an out-of-range index as 0 (step=1).
	GOPSizeClamped        int
}
