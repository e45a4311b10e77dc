// ABOUTME: Frame-accurate playback timeline shared by pull-based backends
// ABOUTME: Mixes scheduled sources into interleaved float32 output on demand
package output

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"sync"
	"time"

	"github.com/smalltalk-tts/smalltalk-go/pkg/audio"
)

// Timeline renders scheduled sources at exact frame positions. The device
// pulls audio with Render or Read; Now is the number of frames pulled so far.
type Timeline struct {
	mu         sync.Mutex
	sampleRate int
	channels   int
	rendered   int64
	end        int64
	voices     []*voice
	scratch    []float32
	closed     bool
}

type voice struct {
	start    int64
	samples  []float32
	channels int
}

func (v *voice) frames() int64 {
	return int64(len(v.samples) / v.channels)
}

// NewTimeline creates an empty timeline
func NewTimeline(sampleRate, channels int) *Timeline {
	if channels <= 0 {
		channels = 1
	}
	return &Timeline{
		sampleRate: sampleRate,
		channels:   channels,
	}
}

// Add schedules samples to start at device time at. A start before the
// current render position is moved to it; late reports whether that happened.
func (t *Timeline) Add(at time.Duration, samples []float32, channels int) (start int64, late bool, err error) {
	return t.AddFrames(audio.DurationToFrames(at, t.sampleRate), samples, channels)
}

// AddFrames is Add with the start given as a frame position
func (t *Timeline) AddFrames(start int64, samples []float32, channels int) (int64, bool, error) {
	if channels != 1 && channels != t.channels {
		return 0, false, fmt.Errorf("cannot play %d-channel audio on %d-channel timeline", channels, t.channels)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return 0, false, ErrClosed
	}

	late := false
	if start < t.rendered {
		start = t.rendered
		late = true
	}

	v := &voice{start: start, samples: samples, channels: channels}
	t.voices = append(t.voices, v)
	t.end = max(t.end, start+v.frames())
	return start, late, nil
}

// Render fills out with the next len(out)/channels interleaved frames
func (t *Timeline) Render(out []float32) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.render(out)
}

func (t *Timeline) render(out []float32) {
	for i := range out {
		out[i] = 0
	}

	frames := int64(len(out) / t.channels)
	from := t.rendered
	to := from + frames

	kept := t.voices[:0]
	for _, v := range t.voices {
		end := v.start + v.frames()
		if v.start >= to {
			kept = append(kept, v)
			continue
		}

		lo := max(from, v.start)
		hi := min(to, end)
		for f := lo; f < hi; f++ {
			src := (f - v.start) * int64(v.channels)
			dst := (f - from) * int64(t.channels)
			for ch := int64(0); ch < int64(t.channels); ch++ {
				if v.channels == 1 {
					out[dst+ch] += v.samples[src]
				} else {
					out[dst+ch] += v.samples[src+ch]
				}
			}
		}

		if end > to {
			kept = append(kept, v)
		}
	}
	for i := len(kept); i < len(t.voices); i++ {
		t.voices[i] = nil
	}
	t.voices = kept
	t.rendered = to
}

// Read renders little-endian float32 frames into p, for io.Reader based players
func (t *Timeline) Read(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return 0, io.EOF
	}

	frameBytes := 4 * t.channels
	frames := len(p) / frameBytes
	if frames == 0 {
		return 0, nil
	}

	n := frames * t.channels
	if cap(t.scratch) < n {
		t.scratch = make([]float32, n)
	}
	t.scratch = t.scratch[:n]
	t.render(t.scratch)

	for i, s := range t.scratch {
		binary.LittleEndian.PutUint32(p[i*4:], math.Float32bits(s))
	}
	return frames * frameBytes, nil
}

// Now returns the device time of the next frame to render
func (t *Timeline) Now() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()

	return audio.FramesToDuration(t.rendered, t.sampleRate)
}

// Position returns the frames rendered so far and the frame where the last
// scheduled source ends
func (t *Timeline) Position() (rendered, end int64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.rendered, t.end
}

// Pending returns the number of sources not yet fully rendered
func (t *Timeline) Pending() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	return len(t.voices)
}

// Clear drops every pending source
func (t *Timeline) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.voices = nil
}

// Close clears the timeline and makes Read return io.EOF
func (t *Timeline) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.voices = nil
	t.closed = true
}

// SampleRate returns the device rate
func (t *Timeline) SampleRate() int { return t.sampleRate }

// Channels returns the device channel count
func (t *Timeline) Channels() int { return t.channels }
