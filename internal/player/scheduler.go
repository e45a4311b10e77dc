// ABOUTME: Gapless segment scheduler
// ABOUTME: Hands segments to an output sink at back-to-back device times
package player

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/smalltalk-tts/smalltalk-go/pkg/audio"
	"github.com/smalltalk-tts/smalltalk-go/pkg/audio/output"
)

// ErrEmptySegment is returned when asked to schedule a segment with no frames
var ErrEmptySegment = errors.New("player: empty segment")

// Scheduled describes a segment committed to the sink
type Scheduled struct {
	Index  int
	Start  time.Duration
	End    time.Duration
	Frames int
	// Late is set when the segment's start had already passed when it was scheduled
	Late bool
}

// Duration returns the device time the segment occupies
func (s Scheduled) Duration() time.Duration {
	return s.End - s.Start
}

// SchedulerStats tracks scheduler metrics
type SchedulerStats struct {
	Scheduled int64
	Frames    int64
	Late      int64
	Clamped   int64
}

// Scheduler manages playback timing for one session
type Scheduler struct {
	sink  output.Sink
	clock *Clock
	clamp bool

	stats SchedulerStats
}

// NewScheduler creates a scheduler for segments at sampleRate. When clamp is
// set, a segment whose start has passed is moved to the current device time.
func NewScheduler(sink output.Sink, sampleRate int, clamp bool) *Scheduler {
	return &Scheduler{
		sink:  sink,
		clock: NewClock(sampleRate),
		clamp: clamp,
	}
}

// Schedule queues seg on the sink. The first segment of a session starts at
// the current device time; each later one starts where the previous ended.
func (s *Scheduler) Schedule(seg audio.Segment) (Scheduled, error) {
	frames := seg.Frames()
	if frames == 0 {
		return Scheduled{}, ErrEmptySegment
	}
	if seg.SampleRate != s.clock.SampleRate() {
		return Scheduled{}, fmt.Errorf("segment sample rate %d does not match session rate %d", seg.SampleRate, s.clock.SampleRate())
	}

	now := s.sink.Now()
	late := false
	if !s.clock.Started() {
		s.clock.Begin(now)
	} else if next := s.clock.Next(); next < now {
		late = true
		s.stats.Late++
		if s.clamp {
			s.clock.Rebase(now)
			s.stats.Clamped++
			log.Printf("Scheduler: segment #%d late by %v, moved to device time %v", s.stats.Scheduled, now-next, now)
		} else {
			log.Printf("Scheduler: segment #%d late by %v", s.stats.Scheduled, now-next)
		}
	}
	start := s.clock.Next()

	buf, err := s.sink.CreateSegmentBuffer(seg.Channels, frames, seg.SampleRate)
	if err != nil {
		return Scheduled{}, fmt.Errorf("failed to create segment buffer: %w", err)
	}
	if err := s.sink.WriteSamples(buf, seg.Samples); err != nil {
		return Scheduled{}, fmt.Errorf("failed to write samples: %w", err)
	}
	src, err := s.sink.CreatePlayableSource(buf)
	if err != nil {
		return Scheduled{}, fmt.Errorf("failed to create source: %w", err)
	}
	if err := s.sink.Start(src, start); err != nil {
		return Scheduled{}, fmt.Errorf("failed to start source: %w", err)
	}

	end := s.clock.Advance(frames)
	scheduled := Scheduled{
		Index:  int(s.stats.Scheduled),
		Start:  start,
		End:    end,
		Frames: frames,
		Late:   late,
	}

	// Log first few segments
	if s.stats.Scheduled < 3 {
		log.Printf("Scheduled segment #%d: start=%v, frames=%d, lead=%v",
			scheduled.Index, start, frames, start-now)
	}

	s.stats.Scheduled++
	s.stats.Frames += int64(frames)
	return scheduled, nil
}

// NextStart returns the device time the next segment will start at.
// Before the first segment it is zero.
func (s *Scheduler) NextStart() time.Duration {
	return s.clock.Next()
}

// Started reports whether a segment has been scheduled this session
func (s *Scheduler) Started() bool {
	return s.clock.Started()
}

// Stats returns scheduler statistics
func (s *Scheduler) Stats() SchedulerStats {
	return s.stats
}

// Reset clears the clock and statistics for a new session
func (s *Scheduler) Reset() {
	s.clock.Reset()
	s.stats = SchedulerStats{}
}
