// ABOUTME: Tests for the playback timeline
// ABOUTME: Checks frame-accurate placement, back-to-back sources and late starts
package output

import (
	"context"
	"encoding/binary"
	"errors"
	"io"
	"math"
	"sync/atomic"
	"testing"
	"time"

	"github.com/smalltalk-tts/smalltalk-go/pkg/audio"
)

func TestTimelineBackToBack(t *testing.T) {
	const rate = 44100
	tl := NewTimeline(rate, 1)

	first := []float32{1, 1, 1}
	second := []float32{2, 2}

	if _, _, err := tl.Add(0, first, 1); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	at := audio.FramesToDuration(3, rate)
	if _, _, err := tl.Add(at, second, 1); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	out := make([]float32, 7)
	tl.Render(out)

	expected := []float32{1, 1, 1, 2, 2, 0, 0}
	for i, want := range expected {
		if out[i] != want {
			t.Errorf("frame %d: expected %v, got %v", i, want, out[i])
		}
	}
	if tl.Pending() != 0 {
		t.Errorf("expected no pending sources, got %d", tl.Pending())
	}
	if tl.Now() != audio.FramesToDuration(7, rate) {
		t.Errorf("expected now at frame 7, got %v", tl.Now())
	}
}

func TestTimelineSpansRenderCalls(t *testing.T) {
	tl := NewTimeline(8000, 1)
	tl.Add(audio.FramesToDuration(2, 8000), []float32{1, 2, 3, 4}, 1)

	a := make([]float32, 3)
	b := make([]float32, 4)
	tl.Render(a)
	tl.Render(b)

	got := append(a, b...)
	expected := []float32{0, 0, 1, 2, 3, 4, 0}
	for i, want := range expected {
		if got[i] != want {
			t.Errorf("frame %d: expected %v, got %v", i, want, got[i])
		}
	}
}

func TestTimelineLateStart(t *testing.T) {
	tl := NewTimeline(8000, 1)
	tl.Render(make([]float32, 10))

	start, late, err := tl.Add(0, []float32{5}, 1)
	if err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if !late {
		t.Error("expected late start")
	}
	if start != 10 {
		t.Errorf("expected start moved to frame 10, got %d", start)
	}

	out := make([]float32, 1)
	tl.Render(out)
	if out[0] != 5 {
		t.Errorf("expected late source to play immediately, got %v", out[0])
	}
}

func TestTimelineStereoDuplicatesMono(t *testing.T) {
	tl := NewTimeline(8000, 2)
	tl.Add(0, []float32{0.5}, 1)

	out := make([]float32, 2)
	tl.Render(out)
	if out[0] != 0.5 || out[1] != 0.5 {
		t.Errorf("expected mono duplicated to both channels, got %v", out)
	}
}

func TestTimelineReadFloat32LE(t *testing.T) {
	tl := NewTimeline(8000, 1)
	tl.Add(0, []float32{0.25, -0.5}, 1)

	p := make([]byte, 10) // 2 whole frames plus 2 stray bytes
	n, err := tl.Read(p)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if n != 8 {
		t.Fatalf("expected 8 bytes, got %d", n)
	}
	if got := math.Float32frombits(binary.LittleEndian.Uint32(p)); got != 0.25 {
		t.Errorf("expected 0.25, got %v", got)
	}
	if got := math.Float32frombits(binary.LittleEndian.Uint32(p[4:])); got != -0.5 {
		t.Errorf("expected -0.5, got %v", got)
	}
}

func TestTimelineClearAndClose(t *testing.T) {
	tl := NewTimeline(8000, 1)
	tl.Add(time.Second, []float32{1, 1}, 1)
	tl.Clear()
	if tl.Pending() != 0 {
		t.Errorf("expected clear to drop sources, got %d pending", tl.Pending())
	}

	tl.Close()
	if _, err := tl.Read(make([]byte, 4)); err != io.EOF {
		t.Errorf("expected io.EOF after close, got %v", err)
	}
	if _, _, err := tl.Add(0, []float32{1}, 1); err != ErrClosed {
		t.Errorf("expected ErrClosed, got %v", err)
	}
}

func TestTimelineSinkResamples(t *testing.T) {
	sink := newTimelineSink(44100, 1)
	buf, _ := sink.CreateSegmentBuffer(1, 4, 22050)
	sink.WriteSamples(buf, []float32{0, 1, 0, -1})
	src, _ := sink.CreatePlayableSource(buf)
	if err := sink.Start(src, 0); err != nil {
		t.Fatalf("start failed: %v", err)
	}

	out := make([]float32, 8)
	sink.timeline.Render(out)
	if out[2] != 1 || out[6] != -1 {
		t.Errorf("expected resampled signal, got %v", out)
	}

	if !sink.release() {
		t.Error("expected first release to report true")
	}
	if sink.release() {
		t.Error("expected second release to report false")
	}
	if _, err := sink.CreateSegmentBuffer(1, 1, 44100); err != ErrClosed {
		t.Errorf("expected ErrClosed after release, got %v", err)
	}
}

func startSamples(t *testing.T, sink *timelineSink, samples []float32, sampleRate int, at time.Duration) {
	t.Helper()
	buf, err := sink.CreateSegmentBuffer(1, len(samples), sampleRate)
	if err != nil {
		t.Fatalf("create buffer failed: %v", err)
	}
	if err := sink.WriteSamples(buf, samples); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	src, err := sink.CreatePlayableSource(buf)
	if err != nil {
		t.Fatalf("create source failed: %v", err)
	}
	if err := sink.Start(src, at); err != nil {
		t.Fatalf("start failed: %v", err)
	}
}

func TestTimelineSinkResampledSourcesAreContiguous(t *testing.T) {
	sink := newTimelineSink(44100, 1)

	// 3 frames at 8kHz cover 16.54 device frames; the fraction must carry over
	startSamples(t, sink, []float32{1, 1, 1}, 8000, 0)
	startSamples(t, sink, []float32{1, 1, 1}, 8000, audio.FramesToDuration(3, 8000))

	out := make([]float32, 34)
	sink.timeline.Render(out)

	for i := 0; i < 33; i++ {
		if out[i] != 1 {
			t.Errorf("frame %d: expected 1, got %v", i, out[i])
		}
	}
	if out[33] != 0 {
		t.Errorf("expected silence after both sources, got %v", out[33])
	}
}

func TestTimelineSinkCountsLateStarts(t *testing.T) {
	sink := newTimelineSink(1000, 1)
	sink.timeline.Render(make([]float32, 10))

	startSamples(t, sink, []float32{1}, 1000, 20*time.Millisecond)
	if got := sink.LateStarts(); got != 0 {
		t.Errorf("expected no late starts, got %d", got)
	}

	startSamples(t, sink, []float32{1}, 1000, 0)
	if got := sink.LateStarts(); got != 1 {
		t.Errorf("expected 1 late start, got %d", got)
	}
}

func TestTimelineSinkDrainWaitsForDevice(t *testing.T) {
	sink := newTimelineSink(1000, 1)
	sink.drainPoll = time.Millisecond

	var buffered atomic.Int64
	buffered.Store(5)
	sink.buffered = func() int { return int(buffered.Load()) }

	startSamples(t, sink, make([]float32, 10), 1000, 0)

	done := make(chan error, 1)
	go func() { done <- sink.Drain(context.Background()) }()

	select {
	case err := <-done:
		t.Fatalf("Drain returned before the source was rendered: %v", err)
	case <-time.After(20 * time.Millisecond):
	}

	sink.timeline.Render(make([]float32, 10))

	select {
	case err := <-done:
		t.Fatalf("Drain returned while the device still buffered frames: %v", err)
	case <-time.After(20 * time.Millisecond):
	}

	// the device keeps reading silence, so its buffer never empties
	sink.timeline.Render(make([]float32, 10))

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("expected Drain to succeed, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Drain did not return after the device played past the last source")
	}
}

func TestTimelineSinkDrainStops(t *testing.T) {
	tests := []struct {
		name string
		stop func(sink *timelineSink, cancel context.CancelFunc)
		want error
	}{
		{"context cancelled", func(_ *timelineSink, cancel context.CancelFunc) { cancel() }, context.Canceled},
		{"sink released", func(sink *timelineSink, _ context.CancelFunc) { sink.release() }, ErrClosed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sink := newTimelineSink(1000, 1)
			sink.drainPoll = time.Millisecond
			sink.buffered = func() int { return 1 }

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			done := make(chan error, 1)
			go func() { done <- sink.Drain(ctx) }()
			tt.stop(sink, cancel)

			select {
			case err := <-done:
				if !errors.Is(err, tt.want) {
					t.Errorf("expected %v, got %v", tt.want, err)
				}
			case <-time.After(time.Second):
				t.Fatal("Drain did not return")
			}
		})
	}
}
