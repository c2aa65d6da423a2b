/*
NAME
  linalg.go

DESCRIPTION
  linalg.go implements Gauss-Jordan elimination over GF(2^8), the
  primitive the decoder's Peterson direct-solve method uses both to
  find the error locator coefficients from the syndrome Hankel matrix
  and to solve the Vandermonde system for error magnitudes.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package rs

// gfSolve solves A*x=b over GF(2^8) via Gauss-Jordan elimination with
// partial pivoting. ok is false if A is singular.
func gfSolve(A [][]byte, b []byte) (x []byte, ok bool) {
	n := len(b)
	m := make([][]byte, n)
	for i := range m {
		row := make([]byte, n+1)
		copy(row, A[i])
		row[n] = b[i]
		m[i] = row
	}
	for col := 0; col < n; col++ {
		pivot := -1
		for r := col; r < n; r++ {
			if m[r][col] != 0 {
				pivot = r
				break
			}
		}
		if pivot == -1 {
			return nil, false
		}
		m[col], m[pivot] = m[pivot], m[col]
		inv := gfInverse(m[col][col])
		for c := col; c <= n; c++ {
			m[col][c] = gfMul(m[col][c], inv)
		}
		for r := 0; r < n; r++ {
			if r == col {
				continue
			}
			factor := m[r][col]
			if factor == 0 {
				continue
			}
			for c := col; c <= n; c++ {
				m[r][c] ^= gfMul(factor, m[col][c])
			}
		}
	}
	x = make([]byte, n)
	for i := 0; i < n; i++ {
		x[i] = m[i][n]
	}
	return x, true
}
