/*
NAME
  decode.go

DESCRIPTION
  decode.go implements the iterative bit-flipping LDPC decoder: each
  round, every variable bit with at least half of its participating
  checks failing is flipped in parallel (Gallager's bit-flipping
  algorithm); if no bit reaches that threshold the single bit touching
  the most failed checks is flipped instead, to avoid stalling on the
  sparse, low-girth matrix built in matrix.go. The search is capped at
  50 iterations. On failure the decoder still returns its best-effort
  bits rather than an error, since a TAV-DT header reader needs bytes
  to resynchronise on either way, per spec.md §4.10.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package ldpc

// MaxIterations bounds the bit-flipping search, per spec.md §4.10.
const MaxIterations = 50

// Decode corrects codeword (an even-length LDPC block produced by
// Encode) and returns the recovered message bytes plus whether every
// parity check was satisfied on return. A false ok still carries a
// best-effort message: callers resynchronising a stream read it as if
// valid rather than treating decode failure as fatal.
func Decode(codeword []byte) (data []byte, ok bool) {
	n := len(codeword) * 8
	k := n / 2
	bits := bytesToBits(codeword)
	checkMembers := buildCheckMembers(k)
	degree := variableDegrees(checkMembers, n)

	for iter := 0; iter < MaxIterations; iter++ {
		failCount := make([]int, n)
		allOK := true
		for _, members := range checkMembers {
			var x byte
			for _, v := range members {
				x ^= bits[v]
			}
			if x != 0 {
				allOK = false
				for _, v := range members {
					failCount[v]++
				}
			}
		}
		if allOK {
			return bitsToBytes(bits[:k]), true
		}

		flipped := false
		for v := 0; v < n; v++ {
			if degree[v] > 0 && failCount[v]*2 >= degree[v] {
				bits[v] ^= 1
				flipped = true
			}
		}
		if flipped {
			continue
		}

		maxCount, maxIdx := 0, -1
		for v := 0; v < n; v++ {
			if failCount[v] > maxCount {
				maxCount, maxIdx = failCount[v], v
			}
		}
		if maxIdx == -1 {
			break
		}
		bits[maxIdx] ^= 1
	}
	return bitsToBytes(bits[:k]), false
}
