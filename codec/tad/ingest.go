/*
NAME
  ingest.go

DESCRIPTION
  ingest.go adapts arbitrary-rate captured PCM down to the fixed TAD
  SampleRate (spec.md §4.8) ahead of EncodeChunk16, using the
  anti-alias lowpass filter and decimating resampler from codec/pcm.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package tad

import (
	"encoding/binary"

	"github.com/pkg/errors"

	"github.com/tsvm/tav/codec/pcm"
)

// antiAliasTaps is the FIR lowpass filter length run ahead of
// decimation, long enough for a clean stopband without adding
// perceptible pre-ringing across a chunk.
const antiAliasTaps = 127

// IngestStereo16 prepares interleaved 16-bit stereo PCM captured at an
// arbitrary rate for EncodeChunk16: each channel is anti-alias
// lowpass-filtered and decimated down to the fixed TAD SampleRate
// before being handed back as separate left/right slices. rate must be
// an integer multiple of SampleRate, the same constraint
// pcm.Resample's own decimation imposes; rate == SampleRate is a
// pass-through (de-interleave only).
func IngestStereo16(interleaved []int16, rate uint) (left, right []int16, err error) {
	left, right = deinterleave16(interleaved)
	if rate == SampleRate {
		return left, right, nil
	}
	if left, err = resampleMono16(left, rate); err != nil {
		return nil, nil, errors.Wrap(err, "tad: resampling left channel")
	}
	if right, err = resampleMono16(right, rate); err != nil {
		return nil, nil, errors.Wrap(err, "tad: resampling right channel")
	}
	return left, right, nil
}

// resampleMono16 lowpass-filters samples at Nyquist for SampleRate,
// then decimates from rate down to SampleRate via pcm.Resample.
func resampleMono16(samples []int16, rate uint) ([]int16, error) {
	format := pcm.BufferFormat{SFormat: pcm.S16_LE, Rate: rate, Channels: 1}
	lp, err := pcm.NewLowPass(float64(SampleRate)/2, format, antiAliasTaps)
	if err != nil {
		return nil, errors.Wrap(err, "building anti-alias filter")
	}
	filtered, err := lp.Apply(pcm.Buffer{Format: format, Data: int16sToBytes(samples)})
	if err != nil {
		return nil, errors.Wrap(err, "applying anti-alias filter")
	}
	// Apply returns the full linear convolution (len(samples)+taps
	// samples); keep the len(samples) samples centred on the filter's
	// group delay so decimation yields len(samples)/ratio outputs.
	delay := 2 * (antiAliasTaps / 2)
	filtered = filtered[delay : delay+2*len(samples)]
	resampled, err := pcm.Resample(pcm.Buffer{Format: format, Data: filtered}, SampleRate)
	if err != nil {
		return nil, errors.Wrap(err, "decimating")
	}
	return bytesToInt16s(resampled.Data), nil
}

func deinterleave16(s []int16) (left, right []int16) {
	n := len(s) / 2
	left = make([]int16, n)
	right = make([]int16, n)
	for i := 0; i < n; i++ {
		left[i] = s[2*i]
		right[i] = s[2*i+1]
	}
	return left, right
}

func int16sToBytes(s []int16) []byte {
	out := make([]byte, len(s)*2)
	for i, v := range s {
		binary.LittleEndian.PutUint16(out[i*2:], uint16(v))
	}
	return out
}

func bytesToInt16s(b []byte) []int16 {
	out := make([]int16, len(b)/2)
	for i := range out {
		out[i] = int16(binary.LittleEndian.Uint16(b[i*2:]))
	}
	return out
}
