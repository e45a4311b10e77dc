// ABOUTME: Audio type definitions
// ABOUTME: Defines stream formats, decoded segments and time conversions
package audio

import (
	"fmt"
	"time"
)

// Encoding names a raw PCM sample encoding
type Encoding string

const (
	// EncodingFloat32LE is little-endian 32-bit IEEE float PCM
	EncodingFloat32LE Encoding = "pcm_f32le"
	// EncodingInt16LE is little-endian signed 16-bit PCM
	EncodingInt16LE Encoding = "pcm_s16le"
)

const (
	DefaultSampleRate = 44100
	DefaultChannels   = 1
	DefaultEncoding   = EncodingFloat32LE
)

// SampleWidth returns the number of bytes per single-channel sample,
// or 0 for an unknown encoding
func (e Encoding) SampleWidth() int {
	switch e {
	case EncodingFloat32LE:
		return 4
	case EncodingInt16LE:
		return 2
	default:
		return 0
	}
}

// Format describes a raw audio stream
type Format struct {
	Encoding   Encoding
	SampleRate int
	Channels   int
}

// DefaultFormat returns mono 44.1kHz float32 PCM
func DefaultFormat() Format {
	return Format{
		Encoding:   DefaultEncoding,
		SampleRate: DefaultSampleRate,
		Channels:   DefaultChannels,
	}
}

// Validate checks that the format can be decoded and played
func (f Format) Validate() error {
	if f.Encoding.SampleWidth() == 0 {
		return fmt.Errorf("unsupported encoding: %q", f.Encoding)
	}
	if f.SampleRate <= 0 {
		return fmt.Errorf("sample rate must be positive, got %d", f.SampleRate)
	}
	if f.Channels != 1 {
		return fmt.Errorf("unsupported channel count: %d (supported: 1)", f.Channels)
	}
	return nil
}

func (f Format) String() string {
	return fmt.Sprintf("%s %dHz %dch", f.Encoding, f.SampleRate, f.Channels)
}

// Segment is an immutable run of decoded samples ready for playback.
// Samples never alias a reusable buffer.
type Segment struct {
	Samples    []float32
	SampleRate int
	Channels   int
}

// Frames returns the number of sample frames in the segment
func (s Segment) Frames() int {
	if s.Channels <= 0 {
		return len(s.Samples)
	}
	return len(s.Samples) / s.Channels
}

// Duration returns the playback length of the segment
func (s Segment) Duration() time.Duration {
	return FramesToDuration(int64(s.Frames()), s.SampleRate)
}

// FramesToDuration converts a frame count to device time, flooring to the nanosecond
func FramesToDuration(frames int64, sampleRate int) time.Duration {
	if sampleRate <= 0 {
		return 0
	}
	rate := int64(sampleRate)
	secs := frames / rate
	rem := frames % rate
	return time.Duration(secs)*time.Second + time.Duration(rem*int64(time.Second)/rate)
}

// DurationToFrames converts device time to the nearest frame.
// It is the exact inverse of FramesToDuration for any realistic sample rate.
func DurationToFrames(d time.Duration, sampleRate int) int64 {
	if sampleRate <= 0 {
		return 0
	}
	rate := int64(sampleRate)
	secs := int64(d / time.Second)
	rem := int64(d % time.Second)
	return secs*rate + (rem*rate+int64(time.Second)/2)/int64(time.Second)
}

// SampleToInt16 converts a float32 sample in [-1, 1] to int16 with clipping
func SampleToInt16(sample float32) int16 {
	if sample >= 1 {
		return 32767
	}
	if sample <= -1 {
		return -32768
	}
	return int16(sample * 32768)
}

// SampleFromInt16 converts an int16 sample to float32 in [-1, 1)
func SampleFromInt16(sample int16) float32 {
	return float32(sample) / 32768
}
