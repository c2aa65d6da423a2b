/*
NAME
  encode.go

DESCRIPTION
  encode.go implements systematic rate-1/2 LDPC encoding: the n=2k
  codeword is the k message bits followed by k parity bits, each
  parity bit j the XOR of every message bit whose rowChecks includes
  j, per spec.md §4.10's "systematic encoding".

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package ldpc

// Encode returns the systematic rate-1/2 LDPC codeword for data: the
// input bytes followed by an equal number of parity bytes.
func Encode(data []byte) []byte {
	k := len(data) * 8
	m := bytesToBits(data)
	parity := make([]byte, k)
	for i := 0; i < k; i++ {
		if m[i] == 0 {
			continue
		}
		for _, j := range rowChecks(i, k) {
			parity[j] ^= 1
		}
	}
	bits := make([]byte, 2*k)
	copy(bits, m)
	copy(bits[k:], parity)
	return bitsToBytes(bits)
}
