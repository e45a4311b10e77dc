// ABOUTME: Bounded accumulator of decoded samples
// ABOUTME: Emits segments on overflow avoidance and when the flush threshold is reached
package player

import (
	"errors"
	"fmt"

	"github.com/smalltalk-tts/smalltalk-go/pkg/audio"
)

// ErrOverflow reports a write that would pass the buffer capacity.
// Append avoids it by flushing and splitting, and returns it if a part still does not fit.
var ErrOverflow = errors.New("player: sample buffer overflow")

// SampleBuffer accumulates samples and cuts them into segments.
// The backing array is reused across flushes; emitted segments own a copy.
type SampleBuffer struct {
	data       []float32
	fill       int
	fraction   float64
	sampleRate int
	channels   int
	splits     int
}

// NewSampleBuffer creates a buffer holding capacity samples that flushes
// once fill reaches capacity*thresholdFraction
func NewSampleBuffer(capacity int, thresholdFraction float64, sampleRate, channels int) (*SampleBuffer, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("invalid buffer capacity: %d", capacity)
	}
	if thresholdFraction <= 0 || thresholdFraction > 1 {
		return nil, fmt.Errorf("invalid flush threshold fraction: %v (must be in (0, 1])", thresholdFraction)
	}
	if channels <= 0 {
		channels = 1
	}

	return &SampleBuffer{
		data:       make([]float32, capacity),
		fraction:   thresholdFraction,
		sampleRate: sampleRate,
		channels:   channels,
	}, nil
}

// Append writes samples and returns every segment flushed along the way, in order.
// Input larger than the capacity is written in capacity-sized parts.
// On error the segments flushed before the failing part are still returned.
func (b *SampleBuffer) Append(samples []float32) ([]audio.Segment, error) {
	var out []audio.Segment

	for len(samples) > 0 {
		n := min(len(samples), len(b.data))
		if n < len(samples) {
			b.splits++
		}
		part := samples[:n]
		samples = samples[n:]

		if b.fill+n > len(b.data) {
			if seg, ok := b.Flush(); ok {
				out = append(out, seg)
			}
		}

		if err := b.write(part); err != nil {
			return out, err
		}

		if float64(b.fill) >= b.Threshold() {
			if seg, ok := b.Flush(); ok {
				out = append(out, seg)
			}
		}
	}

	return out, nil
}

func (b *SampleBuffer) write(samples []float32) error {
	if b.fill+len(samples) > len(b.data) {
		return fmt.Errorf("%w: fill %d + %d > capacity %d", ErrOverflow, b.fill, len(samples), len(b.data))
	}
	copy(b.data[b.fill:], samples)
	b.fill += len(samples)
	return nil
}

// Flush emits the buffered samples as a segment and empties the buffer.
// It returns false when the buffer is empty.
func (b *SampleBuffer) Flush() (audio.Segment, bool) {
	if b.fill == 0 {
		return audio.Segment{}, false
	}

	samples := make([]float32, b.fill)
	copy(samples, b.data[:b.fill])
	b.fill = 0

	return audio.Segment{
		Samples:    samples,
		SampleRate: b.sampleRate,
		Channels:   b.channels,
	}, true
}

// Fill returns the number of buffered samples
func (b *SampleBuffer) Fill() int { return b.fill }

// Capacity returns the maximum number of buffered samples
func (b *SampleBuffer) Capacity() int { return len(b.data) }

// Threshold returns the fill level that triggers a flush
func (b *SampleBuffer) Threshold() float64 {
	return float64(len(b.data)) * b.fraction
}

// Splits returns how many appends had to be split to stay within capacity
func (b *SampleBuffer) Splits() int { return b.splits }

// Reset empties the buffer and clears the split counter
func (b *SampleBuffer) Reset() {
	b.fill = 0
	b.splits = 0
}
