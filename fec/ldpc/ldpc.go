/*
NAME
  ldpc.go

DESCRIPTION
  ldpc.go exposes the fixed byte-size convenience wrappers spec.md
  §4.10 names: the 28-byte main header (56-byte encoded) and 14-byte
  sub-header (28-byte encoded) forms.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package ldpc

import "github.com/pkg/errors"

const (
	HeaderSize            = 28
	HeaderEncodedSize     = 56
	SubHeaderSize         = 14
	SubHeaderEncodedSize  = 28
	// MaxBlockSize is the largest data block this construction is
	// tuned for, per spec.md §4.10.
	MaxBlockSize = 64
)

// ErrBlockTooLarge names a block beyond the construction's tuned range.
// Encode and Decode do not check the block size and never return it.
var ErrBlockTooLarge = errors.New("ldpc: block exceeds max size")

// EncodeHeader LDPC-encodes a 28-byte TAV-DT main header into 56 bytes.
func EncodeHeader(header []byte) ([]byte, error) {
	if len(header) != HeaderSize {
		return nil, errors.Errorf("ldpc: header length %d, want %d", len(header), HeaderSize)
	}
	return Encode(header), nil
}

// DecodeHeader recovers a 28-byte main header from its 56-byte LDPC
// encoding. ok reports whether every parity check was satisfied; the
// returned bytes are a best-effort result even when ok is false.
func DecodeHeader(encoded []byte) (header []byte, ok bool, err error) {
	if len(encoded) != HeaderEncodedSize {
		return nil, false, errors.Errorf("ldpc: encoded header length %d, want %d", len(encoded), HeaderEncodedSize)
	}
	data, ok := Decode(encoded)
	return data, ok, nil
}

// EncodeSubHeader LDPC-encodes a 14-byte TAV sub-packet header into 28 bytes.
func EncodeSubHeader(header []byte) ([]byte, error) {
	if len(header) != SubHeaderSize {
		return nil, errors.Errorf("ldpc: sub-header length %d, want %d", len(header), SubHeaderSize)
	}
	return Encode(header), nil
}

// DecodeSubHeader recovers a 14-byte sub-header from its 28-byte LDPC encoding.
func DecodeSubHeader(encoded []byte) (header []byte, ok bool, err error) {
	if len(encoded) != SubHeaderEncodedSize {
		return nil, false, errors.Errorf("ldpc: encoded sub-header length %d, want %d", len(encoded), SubHeaderEncodedSize)
	}
	data, ok := Decode(encoded)
	return data, ok, nil
}
