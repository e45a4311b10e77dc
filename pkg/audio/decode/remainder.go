// ABOUTME: Carry-over buffer for samples split across chunk boundaries
// ABOUTME: Merges incoming chunks with leftover bytes before decoding
package decode

import (
	"fmt"

	"github.com/smalltalk-tts/smalltalk-go/pkg/audio"
)

// TrailingPolicy decides what Drain does with an incomplete final sample
type TrailingPolicy string

const (
	// TrailingPad zero-fills the leftover bytes to a whole sample and decodes it.
	// The padding is injected silence, not signal.
	TrailingPad TrailingPolicy = "pad"
	// TrailingDrop discards the leftover bytes
	TrailingDrop TrailingPolicy = "drop"
)

// ParseTrailingPolicy parses "pad" or "drop"; empty means pad
func ParseTrailingPolicy(s string) (TrailingPolicy, error) {
	switch TrailingPolicy(s) {
	case "", TrailingPad:
		return TrailingPad, nil
	case TrailingDrop:
		return TrailingDrop, nil
	default:
		return "", fmt.Errorf("unknown trailing policy: %q (supported: pad, drop)", s)
	}
}

// Remainder holds the 0..width-1 bytes of a sample that a chunk boundary split
type Remainder struct {
	decoder Decoder
	pending []byte
	scratch []byte
}

// NewRemainder creates an empty remainder buffer for the given format
func NewRemainder(format audio.Format) (*Remainder, error) {
	dec, err := NewPCM(format)
	if err != nil {
		return nil, err
	}
	return NewRemainderWith(dec), nil
}

// NewRemainderWith creates an empty remainder buffer in front of dec
func NewRemainderWith(dec Decoder) *Remainder {
	return &Remainder{
		decoder: dec,
		pending: make([]byte, 0, dec.SampleWidth()),
	}
}

// Merge prepends the stored remainder to chunk, decodes every whole sample
// and keeps the trailing partial bytes for the next call. On a decode error
// the remainder is left as it was before the call.
func (r *Remainder) Merge(chunk []byte) ([]float32, error) {
	if len(chunk) == 0 {
		return nil, nil
	}

	combined := chunk
	if len(r.pending) > 0 {
		r.scratch = append(r.scratch[:0], r.pending...)
		r.scratch = append(r.scratch, chunk...)
		combined = r.scratch
	}

	width := r.decoder.SampleWidth()
	aligned := len(combined) / width * width

	samples, err := r.decoder.Decode(combined[:aligned])
	if err != nil {
		return nil, fmt.Errorf("failed to decode %d bytes: %w", aligned, err)
	}
	r.pending = append(r.pending[:0], combined[aligned:]...)

	return samples, nil
}

// Drain empties the remainder at end of stream. With TrailingPad it returns
// one sample built from the leftover bytes plus zero padding; with TrailingDrop
// it returns nothing. padded and dropped report the bytes affected.
// The remainder is empty afterwards, even on error.
func (r *Remainder) Drain(policy TrailingPolicy) (samples []float32, padded, dropped int, err error) {
	if len(r.pending) == 0 {
		return nil, 0, 0, nil
	}

	n := len(r.pending)
	defer r.Reset()

	if policy == TrailingDrop {
		return nil, 0, n, nil
	}

	width := r.decoder.SampleWidth()
	full := make([]byte, (n+width-1)/width*width)
	copy(full, r.pending)

	samples, err = r.decoder.Decode(full)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("failed to decode trailing sample: %w", err)
	}
	return samples, len(full) - n, 0, nil
}

// Len returns the number of bytes currently held
func (r *Remainder) Len() int {
	return len(r.pending)
}

// Reset discards any held bytes
func (r *Remainder) Reset() {
	r.pending = r.pending[:0]
}

// Close discards any held bytes and closes the decoder
func (r *Remainder) Close() error {
	r.Reset()
	return r.decoder.Close()
}
