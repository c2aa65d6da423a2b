/*
NAME
  rs.go

DESCRIPTION
  rs.go implements the payload-splitting wrapper over the single-block
  RS(255,223) codec: for payloads longer than 223 bytes, the payload is
  split into K-byte blocks, the last one zero-padded internally, per
  spec.md §4.10.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package rs

// EncodePayload splits data into K-byte blocks (the last zero-padded)
// and RS-encodes each, returning the concatenated N-byte codewords.
func EncodePayload(data []byte) []byte {
	out := make([]byte, 0, (len(data)/K+1)*N)
	for i := 0; i < len(data); i += K {
		end := i + K
		if end > len(data) {
			end = len(data)
		}
		out = append(out, Encode(data[i:end])...)
	}
	if len(data) == 0 {
		out = append(out, Encode(nil)...)
	}
	return out
}

// DecodePayload reverses EncodePayload, given the original payload
// length (needed to discard the last block's zero padding, since RS
// framing carries no length field of its own).
func DecodePayload(codewords []byte, originalLen int) (data []byte, nErr int, err error) {
	for i := 0; i+N <= len(codewords); i += N {
		block, e, derr := Decode(codewords[i : i+N])
		if derr != nil {
			return nil, nErr, derr
		}
		nErr += e
		data = append(data, block...)
	}
	if len(data) > originalLen {
		data = data[:originalLen]
	}
	return data, nErr, nil
}
