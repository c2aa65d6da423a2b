/*
NAME
  matrix.go

DESCRIPTION
  matrix.go builds the fixed, rate-1/2 low-density parity-check matrix
  the TAV-DT header FEC uses (C11): a deterministic, regular
  construction (row weight 5) rather than a reproduction of the
  original's specific table, which the retrieval pack does not carry
  — the same documented-approximation approach
  wavelet.cdf137Params already takes for a missing table.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package ldpc implements the rate-1/2 LDPC code protecting TAV-DT
// headers: systematic encoding and a capped iterative bit-flipping
// decoder, per spec.md §4.10.
package ldpc

// rowOffsets returns 5 distinct, fixed offsets into [0,k) spreading a
// message bit's parity participation across the check set.
func rowOffsets(k int) [5]int {
	var o [5]int
	fracs := [5]int{1, k/5 + 1, 2*k/5 + 1, 3*k/5 + 1, 4*k/5 + 1}
	for i, f := range fracs {
		o[i] = f % k
	}
	return o
}

// rowChecks returns the parity-check indices message bit i participates
// in, for a block of k message bits.
func rowChecks(i, k int) [5]int {
	offs := rowOffsets(k)
	var out [5]int
	for j, o := range offs {
		out[j] = (i + o) % k
	}
	return out
}

// buildCheckMembers inverts rowChecks: for each of the k parity checks,
// the full set of variable-bit indices (message bits, by position in
// [0,k), plus its own parity bit at k+j) that participate in it.
func buildCheckMembers(k int) [][]int {
	members := make([][]int, k)
	for j := range members {
		members[j] = []int{k + j}
	}
	for i := 0; i < k; i++ {
		for _, j := range rowChecks(i, k) {
			members[j] = append(members[j], i)
		}
	}
	return members
}

// variableDegrees returns, for each of the n=2k codeword bits, the
// number of checks it participates in (message bits: 5, one per
// rowOffsets entry; parity bits: 1).
func variableDegrees(checkMembers [][]int, n int) []int {
	deg := make([]int, n)
	for _, members := range checkMembers {
		for _, v := range members {
			deg[v]++
		}
	}
	return deg
}
