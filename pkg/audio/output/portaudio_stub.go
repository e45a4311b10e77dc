//go:build !portaudio

// ABOUTME: PortAudio stub when library not available
// ABOUTME: Provides compile-time placeholder when PortAudio not installed
package output

import (
	"fmt"
	"time"
)

// PortAudio output implementation (stub)
type PortAudio struct{}

// NewPortAudio reports that PortAudio support was not compiled in
func NewPortAudio(sampleRate, channels int) (*PortAudio, error) {
	return nil, fmt.Errorf("PortAudio support not enabled (build with -tags portaudio)")
}

func (p *PortAudio) CreateSegmentBuffer(channels, frames, sampleRate int) (*Buffer, error) {
	return nil, ErrClosed
}

func (p *PortAudio) WriteSamples(buf *Buffer, samples []float32) error { return ErrClosed }

func (p *PortAudio) CreatePlayableSource(buf *Buffer) (*Source, error) { return nil, ErrClosed }

func (p *PortAudio) Start(src *Source, at time.Duration) error { return ErrClosed }

func (p *PortAudio) Now() time.Duration { return 0 }

func (p *PortAudio) Close() error { return nil }
