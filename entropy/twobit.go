/*
NAME
  twobit.go

DESCRIPTION
  twobit.go implements the twobit-map significance entropy coder from
  spec.md §4.5: each quantised coefficient is emitted as one of four 2-bit
  symbols (00=zero, 01=+1, 10=-1, 11=escape followed by a variable-length
  signed integer).

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package entropy implements the twobit-map and EZBC entropy coders
// shared by TAV video and TAD audio.
package entropy

import (
	"bytes"

	"github.com/pkg/errors"

	"github.com/tsvm/tav/bitio"
)

const (
	symZero   = 0
	symPlus1  = 1
	symMinus1 = 2
	symEscape = 3
)

// ErrOverflow is returned when decoding would read past the declared
// number of coefficients, matching spec.md's EntropyDecodeOverflow kind.
var ErrOverflow = errors.New("entropy: decode would overrun coefficient plane")

// EncodeTwobit encodes coeffs (signed 16-bit quantiser indices, in
// planar subband order) into a self-contained twobit-map bit stream.
func EncodeTwobit(coeffs []int16) []byte {
	var buf bytes.Buffer
	w := bitio.NewBitWriter(&buf)
	for _, c := range coeffs {
		switch c {
		case 0:
			w.WriteBits(symZero, 2)
		case 1:
			w.WriteBits(symPlus1, 2)
		case -1:
			w.WriteBits(symMinus1, 2)
		default:
			w.WriteBits(symEscape, 2)
			bitio.PutVarEscape(w, int32(c))
		}
	}
	w.Close()
	return buf.Bytes()
}

// DecodeTwobit decodes exactly n coefficients from a twobit-map stream
// produced by EncodeTwobit.
func DecodeTwobit(data []byte, n int) ([]int16, error) {
	r := bitio.NewBitReader(bytes.NewReader(data))
	out := make([]int16, n)
	for i := 0; i < n; i++ {
		sym, err := r.ReadBits(2)
		if err != nil {
			return nil, errors.Wrap(ErrOverflow, err.Error())
		}
		switch sym {
		case symZero:
			out[i] = 0
		case symPlus1:
			out[i] = 1
		case symMinus1:
			out[i] = -1
		case symEscape:
			v, err := bitio.GetVarEscape(r)
			if err != nil {
				return nil, errors.Wrap(ErrOverflow, err.Error())
			}
			out[i] = int16(v)
		}
	}
	return out, nil
}
