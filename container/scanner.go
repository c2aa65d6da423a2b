/*
NAME
  scanner.go

DESCRIPTION
  scanner.go implements the packet stream's resynchronisation path:
  Resync scans forward byte-by-byte until it finds a plausible sync
  byte (0xFF, 0xFE, or a registered packet type), per spec.md
  §4.9/§4.11. It runs only when a caller invokes it; Reader.Next and
  the orchestrator's Decoder do not call it, and Next reads an
  unrecognised type byte as a sized packet. The scan shares the
  stream's single *bufio.Reader so that bytes consumed while hunting
  are never re-read and the matched byte is always left for the normal
  dispatch loop to pick up.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package container

import "bufio"

// Resync scans byte-by-byte until it finds a byte that looks like a
// packet type: a registered type, or the ubiquitous SYNC/SYNC_NTSC
// bytes. The matched byte is pushed back via UnreadByte so the normal
// dispatch loop resumes from it unchanged. This never terminates the
// stream itself; a caller that only ever sees unrecognised bytes will
// ride it to EOF.
func Resync(r *bufio.Reader) (PacketType, error) {
	for {
		b, err := r.ReadByte()
		if err != nil {
			return 0, err
		}
		t := PacketType(b)
		if t == TypeSync || t == TypeSyncNTSC {
			return t, r.UnreadByte()
		}
		if _, ok := registry[t]; ok {
			return t, r.UnreadByte()
		}
	}
}
