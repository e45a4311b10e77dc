// ABOUTME: Audio sink interface definition
// ABOUTME: Segment buffers, playable sources and the scheduled-start capability set
package output

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/smalltalk-tts/smalltalk-go/pkg/audio"
)

var (
	// ErrClosed is returned by every operation on a released sink
	ErrClosed = errors.New("output: sink closed")

	// ErrSourceStarted is returned when a source is started twice
	ErrSourceStarted = errors.New("output: source already started")
)

// Sink is an audio output device that plays segments at scheduled device times.
// Device time starts at zero when the sink is created.
type Sink interface {
	// CreateSegmentBuffer allocates a buffer for frames of audio
	CreateSegmentBuffer(channels, frames, sampleRate int) (*Buffer, error)

	// WriteSamples fills the buffer; len(samples) must equal frames*channels
	WriteSamples(buf *Buffer, samples []float32) error

	// CreatePlayableSource wraps a filled buffer for a single Start
	CreatePlayableSource(buf *Buffer) (*Source, error)

	// Start queues the source to begin at device time at and returns
	// immediately. A time in the past starts the source as soon as possible.
	Start(src *Source, at time.Duration) error

	// Now returns the current device time
	Now() time.Duration

	// Close releases the device and drops anything not yet played
	Close() error
}

// Drainer is implemented by sinks whose device plays audio some time after
// it was handed over. Close drops that audio; Drain lets it finish first.
type Drainer interface {
	// Drain blocks until every started source has been played
	Drain(ctx context.Context) error
}

// Buffer holds the samples of one segment
type Buffer struct {
	channels   int
	frames     int
	sampleRate int
	data       []float32
	filled     bool
}

func newBuffer(channels, frames, sampleRate int) (*Buffer, error) {
	if channels <= 0 {
		return nil, fmt.Errorf("invalid channel count: %d", channels)
	}
	if frames <= 0 {
		return nil, fmt.Errorf("invalid frame count: %d", frames)
	}
	if sampleRate <= 0 {
		return nil, fmt.Errorf("invalid sample rate: %d", sampleRate)
	}

	return &Buffer{
		channels:   channels,
		frames:     frames,
		sampleRate: sampleRate,
		data:       make([]float32, frames*channels),
	}, nil
}

func (b *Buffer) write(samples []float32) error {
	if b == nil {
		return fmt.Errorf("nil buffer")
	}
	if len(samples) != len(b.data) {
		return fmt.Errorf("sample count mismatch: buffer holds %d, got %d", len(b.data), len(samples))
	}
	copy(b.data, samples)
	b.filled = true
	return nil
}

// Channels returns the channel count
func (b *Buffer) Channels() int { return b.channels }

// Frames returns the frame count
func (b *Buffer) Frames() int { return b.frames }

// SampleRate returns the sample rate in Hz
func (b *Buffer) SampleRate() int { return b.sampleRate }

// Duration returns the playback length of the buffer
func (b *Buffer) Duration() time.Duration {
	return audio.FramesToDuration(int64(b.frames), b.sampleRate)
}

// Source is a buffer bound for one-shot playback
type Source struct {
	buffer  *Buffer
	started bool
}

func newSource(buf *Buffer) (*Source, error) {
	if buf == nil {
		return nil, fmt.Errorf("nil buffer")
	}
	if !buf.filled {
		return nil, fmt.Errorf("buffer has no samples written")
	}
	return &Source{buffer: buf}, nil
}

func (s *Source) claim() error {
	if s == nil {
		return fmt.Errorf("nil source")
	}
	if s.started {
		return ErrSourceStarted
	}
	s.started = true
	return nil
}

// Buffer returns the buffer the source plays
func (s *Source) Buffer() *Buffer { return s.buffer }

// Open creates a sink for the named backend: "oto" (default) or "portaudio"
func Open(backend string, sampleRate, channels int) (Sink, error) {
	switch backend {
	case "", "oto":
		sink, err := NewOto(sampleRate, channels)
		if err != nil {
			return nil, err
		}
		return sink, nil
	case "portaudio":
		sink, err := NewPortAudio(sampleRate, channels)
		if err != nil {
			return nil, err
		}
		return sink, nil
	default:
		return nil, fmt.Errorf("unknown output backend: %q (supported: oto, portaudio)", backend)
	}
}
