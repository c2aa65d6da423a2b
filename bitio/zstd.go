/*
NAME
  zstd.go

DESCRIPTION
  zstd.go wraps github.com/klauspost/compress/zstd for the framed
  compression applied on top of every entropy-coded payload (video frame
  blobs, TAD chunks, TAV-DT sub-packets) unless a flag requests raw
  bytes.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package bitio

import (
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pkg/errors"
)

// Zstd contexts are expensive to construct and are not safe to share
// across goroutines concurrently performing distinct streaming
// operations, so each worker keeps a thread-local codec via sync.Pool,
// matching the "Zstd contexts are thread-local" resource policy.
var (
	encoderPool = sync.Pool{New: func() interface{} {
		enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			panic(err) // Only fails on invalid options.
		}
		return enc
	}}
	decoderPool = sync.Pool{New: func() interface{} {
		dec, err := zstd.NewReader(nil)
		if err != nil {
			panic(err)
		}
		return dec
	}}
)

// Compress returns the Zstd-framed encoding of src.
func Compress(src []byte) []byte {
	enc := encoderPool.Get().(*zstd.Encoder)
	defer encoderPool.Put(enc)
	return enc.EncodeAll(src, make([]byte, 0, len(src)))
}

// Decompress returns the decoded contents of a Zstd frame produced by
// Compress, or an error if src is not a valid frame.
func Decompress(src []byte) ([]byte, error) {
	dec := decoderPool.Get().(*zstd.Decoder)
	defer decoderPool.Put(dec)
	out, err := dec.DecodeAll(src, nil)
	if err != nil {
		return nil, errors.Wrap(err, "zstd decode failed")
	}
	return out, nil
}
