/*
NAME
  crc.go

DESCRIPTION
  crc.go implements the CRC-32 variant the TAV-DT main header uses:
  polynomial 0xEDB88320 (reflected), initial 0xFFFFFFFF, final XOR
  0xFFFFFFFF, per spec.md §6 — the same parametrisation as the
  standard library's IEEE polynomial, exposed here under the domain's
  own name so callers don't need to know that equivalence.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package container

import "hash/crc32"

// CRC32 computes the TAV-DT main-header checksum over b.
func CRC32(b []byte) uint32 {
	return crc32.ChecksumIEEE(b)
}
