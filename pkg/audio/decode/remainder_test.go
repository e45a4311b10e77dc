// ABOUTME: Tests for the chunk remainder buffer
// ABOUTME: Covers split samples, chunking invariance and trailing byte policies
package decode

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/smalltalk-tts/smalltalk-go/pkg/audio"
	"github.com/smalltalk-tts/smalltalk-go/pkg/audio/encode"
)

func newTestRemainder(t *testing.T) *Remainder {
	t.Helper()
	rem, err := NewRemainder(audio.DefaultFormat())
	if err != nil {
		t.Fatalf("failed to create remainder: %v", err)
	}
	return rem
}

func merge(t *testing.T, rem *Remainder, chunk []byte) []float32 {
	t.Helper()
	samples, err := rem.Merge(chunk)
	if err != nil {
		t.Fatalf("Merge failed: %v", err)
	}
	return samples
}

func drain(t *testing.T, rem *Remainder, policy TrailingPolicy) ([]float32, int, int) {
	t.Helper()
	samples, padded, dropped, err := rem.Drain(policy)
	if err != nil {
		t.Fatalf("Drain failed: %v", err)
	}
	return samples, padded, dropped
}

func TestRemainderChunks3_5_4(t *testing.T) {
	rem := newTestRemainder(t)
	data := encode.Float32LE([]float32{0.1, 0.2, 0.3})

	steps := []struct {
		chunk       []byte
		wantSamples int
		wantRem     int
	}{
		{data[0:3], 0, 3},
		{data[3:8], 2, 0},
		{data[8:12], 1, 0},
	}

	var total []float32
	for i, step := range steps {
		samples := merge(t, rem, step.chunk)
		if len(samples) != step.wantSamples {
			t.Errorf("chunk %d: expected %d samples, got %d", i+1, step.wantSamples, len(samples))
		}
		if rem.Len() != step.wantRem {
			t.Errorf("chunk %d: expected remainder %d, got %d", i+1, step.wantRem, rem.Len())
		}
		total = append(total, samples...)
	}

	want := []float32{0.1, 0.2, 0.3}
	if len(total) != len(want) {
		t.Fatalf("expected %d samples total, got %d", len(want), len(total))
	}
	for i := range want {
		if total[i] != want[i] {
			t.Errorf("sample %d: expected %v, got %v", i, want[i], total[i])
		}
	}
}

func TestRemainderEmptyChunk(t *testing.T) {
	rem := newTestRemainder(t)
	merge(t, rem, []byte{1, 2})

	samples := merge(t, rem, nil)
	if len(samples) != 0 {
		t.Errorf("expected no samples from empty chunk, got %d", len(samples))
	}
	if rem.Len() != 2 {
		t.Errorf("expected remainder unchanged at 2, got %d", rem.Len())
	}
}

func TestRemainderChunkingInvariance(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	source := make([]float32, 1000)
	for i := range source {
		source[i] = rng.Float32()*2 - 1
	}
	data := encode.Float32LE(source)
	// Leave 3 stray bytes at the end to exercise the trailing policy.
	data = append(data, 0x00, 0x00, 0x80)

	whole := newTestRemainder(t)
	want := merge(t, whole, data)
	tail, _, _ := drain(t, whole, TrailingPad)
	want = append(want, tail...)

	for trial := 0; trial < 50; trial++ {
		rem := newTestRemainder(t)
		var got []float32

		for off := 0; off < len(data); {
			n := rng.Intn(13)
			if off+n > len(data) {
				n = len(data) - off
			}
			got = append(got, merge(t, rem, data[off:off+n])...)
			if rem.Len() > 3 {
				t.Fatalf("remainder exceeded 3 bytes: %d", rem.Len())
			}
			off += n
		}
		tail, _, _ := drain(t, rem, TrailingPad)
		got = append(got, tail...)

		if len(got) != len(want) {
			t.Fatalf("trial %d: expected %d samples, got %d", trial, len(want), len(got))
		}
		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("trial %d: sample %d differs: %v != %v", trial, i, got[i], want[i])
			}
		}
	}
}

func TestRemainderDrainPad(t *testing.T) {
	rem := newTestRemainder(t)
	merge(t, rem, []byte{0xAB, 0xCD})

	samples, padded, dropped := drain(t, rem, TrailingPad)
	if len(samples) != 1 {
		t.Fatalf("expected 1 padded sample, got %d", len(samples))
	}
	if padded != 2 {
		t.Errorf("expected 2 padding bytes, got %d", padded)
	}
	if dropped != 0 {
		t.Errorf("expected 0 dropped bytes, got %d", dropped)
	}
	if rem.Len() != 0 {
		t.Errorf("expected empty remainder after drain, got %d", rem.Len())
	}
}

func TestRemainderDrainDrop(t *testing.T) {
	rem := newTestRemainder(t)
	merge(t, rem, []byte{0xAB, 0xCD, 0xEF})

	samples, padded, dropped := drain(t, rem, TrailingDrop)
	if len(samples) != 0 {
		t.Errorf("expected no samples, got %d", len(samples))
	}
	if padded != 0 || dropped != 3 {
		t.Errorf("expected padded=0 dropped=3, got padded=%d dropped=%d", padded, dropped)
	}
	if rem.Len() != 0 {
		t.Errorf("expected empty remainder after drain, got %d", rem.Len())
	}
}

func TestRemainderDrainEmpty(t *testing.T) {
	rem := newTestRemainder(t)
	merge(t, rem, encode.Float32LE([]float32{1}))

	for _, policy := range []TrailingPolicy{TrailingPad, TrailingDrop} {
		samples, padded, dropped := drain(t, rem, policy)
		if len(samples) != 0 || padded != 0 || dropped != 0 {
			t.Errorf("%s: expected nothing from empty remainder, got %d samples, padded=%d dropped=%d",
				policy, len(samples), padded, dropped)
		}
	}
}

func TestRemainderInt16(t *testing.T) {
	rem, err := NewRemainder(audio.Format{Encoding: audio.EncodingInt16LE, SampleRate: 22050, Channels: 1})
	if err != nil {
		t.Fatalf("failed to create remainder: %v", err)
	}

	if got := merge(t, rem, []byte{0x00, 0x40, 0x00}); len(got) != 1 || got[0] != 0.5 {
		t.Errorf("expected [0.5], got %v", got)
	}
	if rem.Len() != 1 {
		t.Errorf("expected 1 leftover byte, got %d", rem.Len())
	}
	if got := merge(t, rem, []byte{0xC0}); len(got) != 1 || got[0] != -0.5 {
		t.Errorf("expected [-0.5], got %v", got)
	}
}

// failingDecoder decodes float32 until fail is set
type failingDecoder struct {
	PCMDecoder
	fail   bool
	closed bool
}

func (d *failingDecoder) Decode(data []byte) ([]float32, error) {
	if d.fail {
		return nil, errors.New("corrupt input")
	}
	return d.PCMDecoder.Decode(data)
}

func (d *failingDecoder) Close() error {
	d.closed = true
	return nil
}

func TestRemainderDecodeError(t *testing.T) {
	pcm, err := NewPCM(audio.DefaultFormat())
	if err != nil {
		t.Fatalf("NewPCM failed: %v", err)
	}
	dec := &failingDecoder{PCMDecoder: *pcm}
	rem := NewRemainderWith(dec)

	merge(t, rem, []byte{1, 2})

	dec.fail = true
	if _, err := rem.Merge([]byte{3, 4, 5, 6, 7}); err == nil {
		t.Fatal("expected decode error")
	}
	if rem.Len() != 2 {
		t.Errorf("expected remainder unchanged at 2 after error, got %d", rem.Len())
	}

	if _, _, _, err := rem.Drain(TrailingPad); err == nil {
		t.Error("expected decode error from Drain")
	}
	if rem.Len() != 0 {
		t.Errorf("expected empty remainder after failed drain, got %d", rem.Len())
	}

	if err := rem.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if !dec.closed {
		t.Error("expected Close to close the decoder")
	}
}

func TestParseTrailingPolicy(t *testing.T) {
	tests := []struct {
		in      string
		want    TrailingPolicy
		wantErr bool
	}{
		{"", TrailingPad, false},
		{"pad", TrailingPad, false},
		{"drop", TrailingDrop, false},
		{"truncate", "", true},
	}

	for _, tt := range tests {
		got, err := ParseTrailingPolicy(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("%q: unexpected error state: %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("%q: expected %q, got %q", tt.in, tt.want, got)
		}
	}
}
