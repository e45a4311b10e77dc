// ABOUTME: Tests for PCM decoder
// ABOUTME: Tests float32 and int16 PCM decoding
package decode

import (
	"testing"

	"github.com/smalltalk-tts/smalltalk-go/pkg/audio"
	"github.com/smalltalk-tts/smalltalk-go/pkg/audio/encode"
)

func TestNewPCM(t *testing.T) {
	decoder, err := NewPCM(audio.DefaultFormat())
	if err != nil {
		t.Fatalf("failed to create decoder: %v", err)
	}

	if decoder.SampleWidth() != 4 {
		t.Errorf("expected sample width 4, got %d", decoder.SampleWidth())
	}
}

func TestPCMDecodeFloat32(t *testing.T) {
	decoder, err := NewPCM(audio.DefaultFormat())
	if err != nil {
		t.Fatalf("failed to create decoder: %v", err)
	}

	input := encode.Float32LE([]float32{0.25, -0.75})
	output, err := decoder.Decode(input)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}

	if len(output) != 2 {
		t.Fatalf("expected 2 samples, got %d", len(output))
	}
	if output[0] != 0.25 || output[1] != -0.75 {
		t.Errorf("expected [0.25 -0.75], got %v", output)
	}
}

func TestPCMDecodeInt16(t *testing.T) {
	format := audio.Format{Encoding: audio.EncodingInt16LE, SampleRate: 22050, Channels: 1}
	decoder, err := NewPCM(format)
	if err != nil {
		t.Fatalf("failed to create decoder: %v", err)
	}

	// 0x4000 = 16384 -> 0.5, 0xC000 = -16384 -> -0.5
	input := []byte{0x00, 0x40, 0x00, 0xC0}
	output, err := decoder.Decode(input)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}

	if len(output) != 2 {
		t.Fatalf("expected 2 samples, got %d", len(output))
	}
	if output[0] != 0.5 || output[1] != -0.5 {
		t.Errorf("expected [0.5 -0.5], got %v", output)
	}
}

func TestPCMDecodeIgnoresPartialSample(t *testing.T) {
	decoder, err := NewPCM(audio.DefaultFormat())
	if err != nil {
		t.Fatalf("failed to create decoder: %v", err)
	}

	output, err := decoder.Decode([]byte{1, 2, 3, 4, 5, 6})
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(output) != 1 {
		t.Errorf("expected 1 whole sample, got %d", len(output))
	}
}

func TestNewPCM_UnsupportedEncoding(t *testing.T) {
	decoder, err := NewPCM(audio.Format{Encoding: "opus", SampleRate: 48000, Channels: 1})
	if err == nil {
		t.Fatal("expected error for unsupported encoding, got nil")
	}

	if decoder != nil {
		t.Fatal("expected decoder to be nil for unsupported encoding")
	}

	expectedError := "unsupported encoding: opus (supported: pcm_f32le, pcm_s16le)"
	if err.Error() != expectedError {
		t.Errorf("expected error %q, got %q", expectedError, err.Error())
	}
}

func TestPCMDecode_EmptyInput(t *testing.T) {
	decoder, err := NewPCM(audio.DefaultFormat())
	if err != nil {
		t.Fatalf("failed to create decoder: %v", err)
	}

	output, err := decoder.Decode([]byte{})
	if err != nil {
		t.Fatalf("decode failed with empty input: %v", err)
	}

	if len(output) != 0 {
		t.Errorf("expected 0 samples from empty input, got %d", len(output))
	}
}
