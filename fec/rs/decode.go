/*
NAME
  decode.go

DESCRIPTION
  decode.go implements RS(255,223) decoding via Peterson's direct
  syndrome method: the unknown error count is found by searching for
  the largest non-singular syndrome Hankel system (up to t=16 errors),
  error positions by Chien search, and error magnitudes by solving the
  associated Vandermonde system — then the corrected codeword's
  syndromes are re-checked before trusting the result, per spec.md
  §4.10's "corrects up to 16 byte errors per 255-byte codeword".

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package rs

import "github.com/pkg/errors"

const (
	N    = 255
	K    = 223
	NSYM = N - K // 32 parity bytes, t=16 correctable byte errors.
	T    = NSYM / 2
)

// ErrTooManyErrors is returned when a codeword cannot be corrected
// within the t=16 byte-error bound.
var ErrTooManyErrors = errors.New("rs: too many errors to correct")

func syndromes(codeword []byte) []byte {
	s := make([]byte, NSYM)
	for j := 0; j < NSYM; j++ {
		s[j] = gfPolyEvalBE(codeword, gfPow(2, j))
	}
	return s
}

func allZero(b []byte) bool {
	for _, v := range b {
		if v != 0 {
			return false
		}
	}
	return true
}

// errorLocator finds the error-count v and the degree-v low-endian
// error locator sigma (sigma[0]=1) via Peterson's method: for
// decreasing guessed error counts, the syndrome Hankel matrix is
// singular whenever the guess exceeds the true error count.
func errorLocator(synd []byte) (sigma []byte, v int, ok bool) {
	for guess := T; guess >= 1; guess-- {
		a := make([][]byte, guess)
		b := make([]byte, guess)
		for k := 0; k < guess; k++ {
			row := make([]byte, guess)
			for j := 1; j <= guess; j++ {
				row[j-1] = synd[guess+k-j]
			}
			a[k] = row
			b[k] = synd[guess+k]
		}
		sol, solved := gfSolve(a, b)
		if !solved {
			continue
		}
		sigma = make([]byte, guess+1)
		sigma[0] = 1
		copy(sigma[1:], sol)
		return sigma, guess, true
	}
	return nil, 0, false
}

// chienSearch finds the array indices (big-endian position in a
// 255-byte codeword) where sigma has a root, i.e. the error locations.
func chienSearch(sigma []byte, v int) ([]int, bool) {
	var pos []int
	for p := 0; p < N; p++ {
		if polyEvalLow(sigma, gfPow(2, -p)) == 0 {
			pos = append(pos, N-1-p)
		}
	}
	return pos, len(pos) == v
}

// magnitudes solves the Vandermonde system S_j = sum_l e_l * X_l^j
// (j=0..v-1) for the error values at the given positions.
func magnitudes(synd []byte, positions []int) ([]byte, bool) {
	v := len(positions)
	xs := make([]byte, v)
	for l, idx := range positions {
		xs[l] = gfPow(2, N-1-idx)
	}
	a := make([][]byte, v)
	b := make([]byte, v)
	for j := 0; j < v; j++ {
		row := make([]byte, v)
		for l := 0; l < v; l++ {
			row[l] = gfPow(xs[l], j)
		}
		a[j] = row
		b[j] = synd[j]
	}
	return gfSolve(a, b)
}

// Decode corrects codeword (exactly N=255 bytes) and returns the
// decoded K=223-byte message plus the number of byte errors corrected.
func Decode(codeword []byte) (data []byte, nErr int, err error) {
	if len(codeword) != N {
		return nil, 0, errors.Errorf("rs: codeword length %d, want %d", len(codeword), N)
	}
	synd := syndromes(codeword)
	if allZero(synd) {
		return append([]byte(nil), codeword[:K]...), 0, nil
	}

	sigma, v, ok := errorLocator(synd)
	if !ok {
		return nil, 0, ErrTooManyErrors
	}
	positions, ok := chienSearch(sigma, v)
	if !ok {
		return nil, 0, ErrTooManyErrors
	}
	mags, ok := magnitudes(synd, positions)
	if !ok {
		return nil, 0, ErrTooManyErrors
	}

	corrected := append([]byte(nil), codeword...)
	for l, idx := range positions {
		corrected[idx] ^= mags[l]
	}
	if !allZero(syndromes(corrected)) {
		return nil, 0, ErrTooManyErrors
	}
	return corrected[:K], v, nil
}
