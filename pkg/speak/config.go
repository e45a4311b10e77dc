// ABOUTME: Player configuration and session state
// ABOUTME: Fills defaults and validates buffer, format and policy settings
package speak

import (
	"fmt"
	"math"

	"github.com/smalltalk-tts/smalltalk-go/internal/player"
	"github.com/smalltalk-tts/smalltalk-go/pkg/audio"
	"github.com/smalltalk-tts/smalltalk-go/pkg/audio/decode"
	"github.com/smalltalk-tts/smalltalk-go/pkg/audio/output"
	"github.com/smalltalk-tts/smalltalk-go/pkg/metrics"
)

const (
	// DefaultBufferCapacitySeconds is the sample buffer length
	DefaultBufferCapacitySeconds = 2.0

	// DefaultFlushThresholdFraction flushes the buffer when half full
	DefaultFlushThresholdFraction = 0.5
)

// State is the lifecycle state of a session
type State int

const (
	StateIdle State = iota
	StateOpen
	StateStreaming
	StateDraining
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateOpen:
		return "open"
	case StateStreaming:
		return "streaming"
	case StateDraining:
		return "draining"
	case StateClosed:
		return "closed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// active reports whether a session is in progress
func (s State) active() bool {
	return s == StateOpen || s == StateStreaming || s == StateDraining
}

// ScheduledSegment describes one segment handed to the output
type ScheduledSegment = player.Scheduled

// Config holds player configuration
type Config struct {
	// Format of the incoming byte stream (default: pcm_f32le, 44100Hz, mono)
	Format audio.Format

	// BufferCapacitySeconds is the sample buffer length (default: 2.0)
	BufferCapacitySeconds float64

	// FlushThresholdFraction of the capacity that triggers a flush, in (0, 1] (default: 0.5)
	FlushThresholdFraction float64

	// TrailingBytes decides what happens to an incomplete final sample (default: pad)
	TrailingBytes decode.TrailingPolicy

	// ClampLateSegments moves a segment whose start has passed to the current device time
	ClampLateSegments bool

	// Backend names the output used when NewSink is nil: "oto" or "portaudio" (default: oto)
	Backend string

	// NewSink acquires the output for a session
	NewSink func(audio.Format) (output.Sink, error)

	// Metrics records session metrics when set
	Metrics *metrics.Metrics

	// OnStateChange is called when the session state changes
	OnStateChange func(State)

	// OnSegment is called for every segment scheduled
	OnSegment func(ScheduledSegment)

	// OnError is called when a session fails
	OnError func(error)
}

func (c *Config) setDefaults() {
	if c.Format.Encoding == "" {
		c.Format.Encoding = audio.DefaultEncoding
	}
	if c.Format.SampleRate == 0 {
		c.Format.SampleRate = audio.DefaultSampleRate
	}
	if c.Format.Channels == 0 {
		c.Format.Channels = audio.DefaultChannels
	}
	if c.BufferCapacitySeconds == 0 {
		c.BufferCapacitySeconds = DefaultBufferCapacitySeconds
	}
	if c.FlushThresholdFraction == 0 {
		c.FlushThresholdFraction = DefaultFlushThresholdFraction
	}
	if c.TrailingBytes == "" {
		c.TrailingBytes = decode.TrailingPad
	}
	if c.NewSink == nil {
		backend := c.Backend
		c.NewSink = func(format audio.Format) (output.Sink, error) {
			return output.Open(backend, format.SampleRate, format.Channels)
		}
	}
}

func (c *Config) validate() error {
	if err := c.Format.Validate(); err != nil {
		return fmt.Errorf("invalid format: %w", err)
	}
	if c.BufferCapacitySeconds < 0 || math.IsNaN(c.BufferCapacitySeconds) {
		return fmt.Errorf("invalid buffer capacity: %v seconds", c.BufferCapacitySeconds)
	}
	if c.capacity() < 1 {
		return fmt.Errorf("buffer capacity of %v seconds holds no samples at %dHz", c.BufferCapacitySeconds, c.Format.SampleRate)
	}
	if c.FlushThresholdFraction <= 0 || c.FlushThresholdFraction > 1 {
		return fmt.Errorf("invalid flush threshold fraction: %v (must be in (0, 1])", c.FlushThresholdFraction)
	}
	if _, err := decode.ParseTrailingPolicy(string(c.TrailingBytes)); err != nil {
		return err
	}
	return nil
}

// capacity returns the sample buffer size in samples
func (c *Config) capacity() int {
	return int(c.BufferCapacitySeconds*float64(c.Format.SampleRate)) * c.Format.Channels
}
