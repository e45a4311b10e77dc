// ABOUTME: Sine tone byte stream for exercising the player without a TTS service
// ABOUTME: Emits encoded PCM in jittered chunk sizes that split samples at any byte
package tone

import (
	"context"
	"fmt"
	"io"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/smalltalk-tts/smalltalk-go/pkg/audio"
	"github.com/smalltalk-tts/smalltalk-go/pkg/audio/encode"
)

const blockFrames = 1024

// Config holds tone configuration
type Config struct {
	// Format of the emitted bytes (default: pcm_f32le, 44100Hz, mono)
	Format audio.Format

	// Frequency in Hz (default: 440)
	Frequency float64

	// Amplitude in (0, 1] (default: 0.5)
	Amplitude float64

	// Duration of the tone (default: 1s)
	Duration time.Duration

	// MinChunk and MaxChunk bound the chunk size in bytes (default: 1..4096)
	MinChunk int
	MaxChunk int

	// Interval paces chunks like a network stream; zero emits as fast as read
	Interval time.Duration

	// Seed for the chunk size jitter
	Seed int64
}

// Source generates a sine tone as a stream of byte chunks
type Source struct {
	config  Config
	encoder encode.Encoder
	rng     *rand.Rand

	mu      sync.Mutex
	total   int64
	index   int64
	pending []byte
}

// New creates a tone source
func New(config Config) (*Source, error) {
	if config.Format == (audio.Format{}) {
		config.Format = audio.DefaultFormat()
	}
	if config.Frequency == 0 {
		config.Frequency = 440.0 // A4 note
	}
	if config.Amplitude == 0 {
		config.Amplitude = 0.5
	}
	if config.Duration == 0 {
		config.Duration = time.Second
	}
	if config.MinChunk <= 0 {
		config.MinChunk = 1
	}
	if config.MaxChunk <= 0 {
		config.MaxChunk = 4096
	}
	if config.MaxChunk < config.MinChunk {
		return nil, fmt.Errorf("max chunk %d is smaller than min chunk %d", config.MaxChunk, config.MinChunk)
	}
	if config.Amplitude < 0 || config.Amplitude > 1 {
		return nil, fmt.Errorf("amplitude must be in (0, 1], got %v", config.Amplitude)
	}
	if err := config.Format.Validate(); err != nil {
		return nil, err
	}

	encoder, err := encode.NewPCM(config.Format)
	if err != nil {
		return nil, err
	}

	return &Source{
		config:  config,
		encoder: encoder,
		rng:     rand.New(rand.NewSource(config.Seed)),
		total:   audio.DurationToFrames(config.Duration, config.Format.SampleRate),
	}, nil
}

// Samples returns the number of samples the tone contains
func (s *Source) Samples() int64 {
	return s.total
}

// Bytes returns the number of bytes the stream contains
func (s *Source) Bytes() int64 {
	return s.total * int64(s.config.Format.Encoding.SampleWidth())
}

// Next returns the next chunk, or io.EOF once the whole tone has been emitted
func (s *Source) Next(ctx context.Context) ([]byte, error) {
	if s.config.Interval > 0 {
		timer := time.NewTimer(s.config.Interval)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		}
	} else if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	size := s.config.MinChunk + s.rng.Intn(s.config.MaxChunk-s.config.MinChunk+1)
	for len(s.pending) < size && s.index < s.total {
		if err := s.generate(); err != nil {
			return nil, err
		}
	}

	if len(s.pending) == 0 {
		return nil, io.EOF
	}

	n := min(size, len(s.pending))
	chunk := make([]byte, n)
	copy(chunk, s.pending[:n])
	s.pending = s.pending[n:]
	return chunk, nil
}

// generate encodes the next block of samples onto pending
func (s *Source) generate() error {
	n := min(int64(blockFrames), s.total-s.index)
	samples := make([]float32, n)
	rate := float64(s.config.Format.SampleRate)

	for i := range samples {
		t := float64(s.index+int64(i)) / rate
		samples[i] = float32(s.config.Amplitude * math.Sin(2*math.Pi*s.config.Frequency*t))
	}
	s.index += n

	data, err := s.encoder.Encode(samples)
	if err != nil {
		return fmt.Errorf("failed to encode tone: %w", err)
	}
	s.pending = append(s.pending, data...)
	return nil
}

// Close releases the encoder
func (s *Source) Close() error {
	return s.encoder.Close()
}
