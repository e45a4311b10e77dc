// ABOUTME: Tests for the tone source
// ABOUTME: Verifies stream length, chunk bounds and decoded signal
package tone

import (
	"context"
	"io"
	"math"
	"testing"
	"time"

	"github.com/smalltalk-tts/smalltalk-go/pkg/audio"
	"github.com/smalltalk-tts/smalltalk-go/pkg/audio/decode"
)

func collect(t *testing.T, s *Source) [][]byte {
	t.Helper()

	var chunks [][]byte
	for {
		chunk, err := s.Next(context.Background())
		if err == io.EOF {
			return chunks
		}
		if err != nil {
			t.Fatalf("Next failed: %v", err)
		}
		chunks = append(chunks, chunk)
	}
}

func TestToneLengthAndChunkBounds(t *testing.T) {
	s, err := New(Config{Duration: 100 * time.Millisecond, MinChunk: 3, MaxChunk: 17, Seed: 7})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if s.Samples() != 4410 {
		t.Fatalf("expected 4410 samples, got %d", s.Samples())
	}

	chunks := collect(t, s)
	total := 0
	for i, c := range chunks {
		if len(c) > 17 || (len(c) < 3 && i != len(chunks)-1) {
			t.Errorf("chunk %d out of bounds: %d bytes", i, len(c))
		}
		total += len(c)
	}
	if int64(total) != s.Bytes() {
		t.Errorf("expected %d bytes, got %d", s.Bytes(), total)
	}
}

func TestToneDecodesToSine(t *testing.T) {
	format := audio.Format{Encoding: audio.EncodingFloat32LE, SampleRate: 8000, Channels: 1}
	s, _ := New(Config{Format: format, Frequency: 1000, Amplitude: 0.5, Duration: 10 * time.Millisecond})

	r, err := decode.NewRemainder(format)
	if err != nil {
		t.Fatalf("NewRemainder failed: %v", err)
	}

	var samples []float32
	for _, c := range collect(t, s) {
		got, err := r.Merge(c)
		if err != nil {
			t.Fatalf("Merge failed: %v", err)
		}
		samples = append(samples, got...)
	}
	if len(samples) != 80 || r.Len() != 0 {
		t.Fatalf("expected 80 whole samples, got %d (+%d bytes)", len(samples), r.Len())
	}

	for i, got := range samples {
		want := 0.5 * math.Sin(2*math.Pi*1000*float64(i)/8000)
		if math.Abs(float64(got)-want) > 1e-6 {
			t.Fatalf("sample %d: expected %v, got %v", i, want, got)
		}
	}
}

func TestToneRespectsContext(t *testing.T) {
	s, _ := New(Config{Interval: time.Hour})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := s.Next(ctx); err != context.Canceled {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestToneConfigValidation(t *testing.T) {
	tests := []struct {
		name   string
		config Config
	}{
		{"chunk bounds inverted", Config{MinChunk: 10, MaxChunk: 5}},
		{"amplitude too high", Config{Amplitude: 2}},
		{"stereo", Config{Format: audio.Format{Encoding: audio.EncodingFloat32LE, SampleRate: 44100, Channels: 2}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.config); err == nil {
				t.Error("expected error")
			}
		})
	}
}
