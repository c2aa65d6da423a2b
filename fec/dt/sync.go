/*
NAME
  sync.go

DESCRIPTION
  sync.go implements TAV-DT's sync-pattern search: on a missing or
  broken main sync, the decoder scans byte-by-byte for the next main
  sync pattern (NTSC or PAL) and resumes at that packet. The scan does
  not stop on a TAV sub-packet sync; that pattern is only checked in
  place, at its fixed offset inside a packet. This mirrors container.Resync's shared-bufio.Reader idiom, but
  matches a 4-byte big-endian pattern instead of a single type byte.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package dt

import "bufio"

// Sync patterns, per spec.md §6.2. Big-endian on the wire.
const (
	SyncNTSC   uint32 = 0xE3537A1F
	SyncPAL    uint32 = 0xD193A745
	SyncTAVSub uint32 = 0xA3F7C91E
)

func isMainSync(v uint32) bool { return v == SyncNTSC || v == SyncPAL }

// ResyncMain scans r byte-by-byte for the next main sync pattern (NTSC
// or PAL), consuming and discarding everything before it. It returns
// the matched pattern with the four sync bytes already consumed (the
// caller reads the main header next). nSkipped counts the bytes
// discarded while hunting, for sync_losses accounting.
func ResyncMain(r *bufio.Reader) (pattern uint32, nSkipped int, err error) {
	var window uint32
	filled := 0
	for {
		b, err := r.ReadByte()
		if err != nil {
			return 0, nSkipped, err
		}
		window = window<<8 | uint32(b)
		if filled < 4 {
			filled++
		} else {
			nSkipped++
		}
		if filled == 4 && isMainSync(window) {
			return window, nSkipped, nil
		}
	}
}

// expectTAVSubSync reads exactly 4 bytes and verifies they are the TAV
// sub-packet sync pattern.
func expectTAVSubSync(r *bufio.Reader) error {
	var b [4]byte
	for i := range b {
		v, err := r.ReadByte()
		if err != nil {
			return err
		}
		b[i] = v
	}
	got := uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
	if got != SyncTAVSub {
		return ErrSyncPatternMissing
	}
	return nil
}
