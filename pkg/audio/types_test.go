// ABOUTME: Tests for audio types
// ABOUTME: Tests sample conversions, format validation and time conversions
package audio

import (
	"testing"
	"time"
)

func TestSampleFromInt16(t *testing.T) {
	tests := []struct {
		name     string
		input    int16
		expected float32
	}{
		{"zero", 0, 0},
		{"half", 16384, 0.5},
		{"negative half", -16384, -0.5},
		{"min", -32768, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := SampleFromInt16(tt.input)
			if result != tt.expected {
				t.Errorf("expected %v, got %v", tt.expected, result)
			}
		})
	}
}

func TestSampleToInt16(t *testing.T) {
	tests := []struct {
		name     string
		input    float32
		expected int16
	}{
		{"zero", 0, 0},
		{"half", 0.5, 16384},
		{"negative half", -0.5, -16384},
		{"clip high", 1.5, 32767},
		{"clip low", -1.5, -32768},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := SampleToInt16(tt.input)
			if result != tt.expected {
				t.Errorf("expected %d, got %d", tt.expected, result)
			}
		})
	}
}

func TestEncodingSampleWidth(t *testing.T) {
	if w := EncodingFloat32LE.SampleWidth(); w != 4 {
		t.Errorf("expected width 4 for f32le, got %d", w)
	}
	if w := EncodingInt16LE.SampleWidth(); w != 2 {
		t.Errorf("expected width 2 for s16le, got %d", w)
	}
	if w := Encoding("mp3").SampleWidth(); w != 0 {
		t.Errorf("expected width 0 for unknown encoding, got %d", w)
	}
}

func TestFormatValidate(t *testing.T) {
	if err := DefaultFormat().Validate(); err != nil {
		t.Fatalf("default format should be valid: %v", err)
	}

	bad := []Format{
		{Encoding: "opus", SampleRate: 48000, Channels: 1},
		{Encoding: EncodingFloat32LE, SampleRate: 0, Channels: 1},
		{Encoding: EncodingFloat32LE, SampleRate: 44100, Channels: 2},
	}
	for _, f := range bad {
		if err := f.Validate(); err == nil {
			t.Errorf("expected error for format %v", f)
		}
	}
}

func TestFramesToDuration(t *testing.T) {
	if d := FramesToDuration(44100, 44100); d != time.Second {
		t.Errorf("expected 1s, got %v", d)
	}
	if d := FramesToDuration(1, 44100); d != 22675*time.Nanosecond {
		t.Errorf("expected 22.675µs, got %v", d)
	}
}

func TestDurationToFramesRoundTrip(t *testing.T) {
	for _, rate := range []int{8000, 22050, 44100, 48000, 192000} {
		for _, frames := range []int64{0, 1, 7, 4410, 88199, 1234567} {
			d := FramesToDuration(frames, rate)
			if got := DurationToFrames(d, rate); got != frames {
				t.Errorf("rate %d: frames %d -> %v -> %d", rate, frames, d, got)
			}
		}
	}
}

func TestSegmentDuration(t *testing.T) {
	seg := Segment{Samples: make([]float32, 22050), SampleRate: 44100, Channels: 1}
	if seg.Frames() != 22050 {
		t.Errorf("expected 22050 frames, got %d", seg.Frames())
	}
	if seg.Duration() != 500*time.Millisecond {
		t.Errorf("expected 500ms, got %v", seg.Duration())
	}
}
