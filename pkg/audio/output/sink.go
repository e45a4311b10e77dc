// ABOUTME: Sink implementation shared by timeline-driven backends
// ABOUTME: Validates buffers, resamples when needed and queues sources on a Timeline
package output

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/smalltalk-tts/smalltalk-go/pkg/audio"
	"github.com/smalltalk-tts/smalltalk-go/pkg/audio/resample"
)

const defaultDrainPoll = 10 * time.Millisecond

// timelineSink implements Sink on top of a Timeline. Backends embed it and
// only own the device that pulls from the timeline.
type timelineSink struct {
	timeline *Timeline

	// buffered reports frames the device has pulled but not yet played.
	// Nil means the device plays what it pulls immediately.
	buffered  func() int
	drainPoll time.Duration

	mu         sync.Mutex
	resamplers map[int]*resample.Resampler
	closed     bool
	lateStarts int

	// end of the last resampled source, so the next one continues on the same frame
	nextAt    time.Duration
	nextFrame int64
	hasNext   bool
}

func newTimelineSink(sampleRate, channels int) *timelineSink {
	return &timelineSink{
		timeline:   NewTimeline(sampleRate, channels),
		drainPoll:  defaultDrainPoll,
		resamplers: make(map[int]*resample.Resampler),
	}
}

func (s *timelineSink) CreateSegmentBuffer(channels, frames, sampleRate int) (*Buffer, error) {
	if s.isClosed() {
		return nil, ErrClosed
	}
	return newBuffer(channels, frames, sampleRate)
}

func (s *timelineSink) WriteSamples(buf *Buffer, samples []float32) error {
	if s.isClosed() {
		return ErrClosed
	}
	return buf.write(samples)
}

func (s *timelineSink) CreatePlayableSource(buf *Buffer) (*Source, error) {
	if s.isClosed() {
		return nil, ErrClosed
	}
	return newSource(buf)
}

func (s *timelineSink) Start(src *Source, at time.Duration) error {
	if s.isClosed() {
		return ErrClosed
	}
	if err := src.claim(); err != nil {
		return err
	}

	buf := src.buffer
	var (
		late bool
		err  error
	)
	if buf.sampleRate == s.timeline.SampleRate() {
		_, late, err = s.timeline.Add(at, buf.data, buf.channels)
	} else {
		start, frames := s.place(at, buf)
		if frames == 0 {
			return nil
		}
		samples := s.resampler(buf.sampleRate, buf.channels).ResampleTo(buf.data, int(frames))
		_, late, err = s.timeline.AddFrames(start, samples, buf.channels)
	}
	if err != nil {
		return err
	}

	if late {
		s.mu.Lock()
		s.lateStarts++
		s.mu.Unlock()
		log.Printf("Output: source scheduled at %v started late (device at %v)", at, s.timeline.Now())
	}
	return nil
}

// place returns the device frame a resampled source starts on and how many
// device frames it covers. Both ends are rounded from exact times, and a
// source starting where the previous one ended reuses its end frame, so
// back-to-back sources stay contiguous at the device rate.
func (s *timelineSink) place(at time.Duration, buf *Buffer) (start, frames int64) {
	rate := s.timeline.SampleRate()
	end := at + audio.FramesToDuration(int64(buf.frames), buf.sampleRate)

	s.mu.Lock()
	defer s.mu.Unlock()

	start = audio.DurationToFrames(at, rate)
	if s.hasNext && (at-s.nextAt).Abs() < audio.FramesToDuration(1, rate) {
		start = s.nextFrame
	}
	endFrame := max(audio.DurationToFrames(end, rate), start)

	s.nextAt = end
	s.nextFrame = endFrame
	s.hasNext = true

	return start, endFrame - start
}

func (s *timelineSink) Now() time.Duration {
	return s.timeline.Now()
}

// Drain waits until the device has played up to the end of the last started
// source: frames pulled from the timeline minus frames the device still
// buffers. It returns ErrClosed if the sink is released meanwhile.
func (s *timelineSink) Drain(ctx context.Context) error {
	ticker := time.NewTicker(s.drainPoll)
	defer ticker.Stop()

	for {
		if s.isClosed() {
			return ErrClosed
		}
		rendered, end := s.timeline.Position()
		played := rendered
		if s.buffered != nil {
			played -= int64(s.buffered())
		}
		if played >= end {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// LateStarts returns how many sources started after their scheduled time
func (s *timelineSink) LateStarts() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lateStarts
}

// release marks the sink closed and drops pending sources.
// It reports false if the sink was already closed.
func (s *timelineSink) release() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return false
	}
	s.closed = true
	s.timeline.Close()
	return true
}

func (s *timelineSink) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *timelineSink) resampler(rate, channels int) *resample.Resampler {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.resamplers[rate]
	if !ok {
		log.Printf("Output: resampling %dHz segments to device rate %dHz", rate, s.timeline.SampleRate())
		r = resample.New(rate, s.timeline.SampleRate(), channels)
		s.resamplers[rate] = r
	}
	return r
}
