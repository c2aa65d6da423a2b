/*
NAME
  wav.go

DESCRIPTION
  wav.go reads and writes PCM WAV files for TAD test fixtures: round
  trip a TAD chunk's mid/side or left/right samples through a real WAV
  container instead of a synthesised in-memory buffer, so fixtures can
  be inspected with any audio tool.

AUTHOR
  David Sutton <davidsutton@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package wav provides functions for converting wav audio.
package wav

import (
	"fmt"
	"io"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const PCMFormat = 1 // PCMFormat defines the value for pcm audio as defined by the wav std.

// ConvertFormat converts the common name for a format in a string type to
// the specific integer required by the wav encoder.
var ConvertFormat = map[string]int{"pcm": PCMFormat}

var (
	errInvalidFormat   = fmt.Errorf("invalid or no format defined")
	errInvalidRate     = fmt.Errorf("invalid or no sample rate defined")
	errInvalidChannels = fmt.Errorf("invalid or no number of channels defined")
	errInvalidBitDepth = fmt.Errorf("invalid or no bit depth defined")
)

// Metadata defines the format of the audio file for reading or writing.
type Metadata struct {
	AudioFormat int
	Channels    int
	SampleRate  int
	BitDepth    int
}

func (m Metadata) validate() error {
	if m.AudioFormat != PCMFormat {
		return errInvalidFormat
	}
	if m.Channels == 0 {
		return errInvalidChannels
	}
	if m.SampleRate == 0 {
		return errInvalidRate
	}
	if m.BitDepth == 0 {
		return errInvalidBitDepth
	}
	return nil
}

// WriteSamples encodes interleaved PCM samples (a single []int holding
// one sample per channel for each frame in turn) to dst as a WAV file
// with md's format, via go-audio/wav's Encoder.
func WriteSamples(dst io.WriteSeeker, md Metadata, samples []int) error {
	if err := md.validate(); err != nil {
		return err
	}
	enc := wav.NewEncoder(dst, md.SampleRate, md.BitDepth, md.Channels, md.AudioFormat)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: md.Channels, SampleRate: md.SampleRate},
		Data:           samples,
		SourceBitDepth: md.BitDepth,
	}
	if err := enc.Write(buf); err != nil {
		return err
	}
	return enc.Close()
}

// WriteStereo16 interleaves left/right int16 TAD channel buffers and
// writes them as a 16-bit stereo WAV file, the fixture shape TAD
// chunk round-trip tests want.
func WriteStereo16(dst io.WriteSeeker, sampleRate int, left, right []int16) error {
	samples := make([]int, 2*len(left))
	for i := range left {
		samples[2*i] = int(left[i])
		samples[2*i+1] = int(right[i])
	}
	return WriteSamples(dst, Metadata{AudioFormat: PCMFormat, Channels: 2, SampleRate: sampleRate, BitDepth: 16}, samples)
}

// ReadSamples decodes a WAV file's full PCM buffer and its format.
func ReadSamples(src io.Reader) ([]int, Metadata, error) {
	dec := wav.NewDecoder(src)
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, Metadata{}, err
	}
	md := Metadata{
		AudioFormat: PCMFormat,
		Channels:    buf.Format.NumChannels,
		SampleRate:  buf.Format.SampleRate,
		BitDepth:    buf.SourceBitDepth,
	}
	return buf.Data, md, nil
}

// ReadStereo16 reads a 16-bit stereo WAV file back into left/right TAD
// channel buffers, the inverse of WriteStereo16.
func ReadStereo16(src io.Reader) (left, right []int16, sampleRate int, err error) {
	samples, md, err := ReadSamples(src)
	if err != nil {
		return nil, nil, 0, err
	}
	if md.Channels != 2 {
		return nil, nil, 0, errInvalidChannels
	}
	n := len(samples) / 2
	left = make([]int16, n)
	right = make([]int16, n)
	for i := 0; i < n; i++ {
		left[i] = int16(samples[2*i])
		right[i] = int16(samples[2*i+1])
	}
	return left, right, md.SampleRate, nil
}
