// ABOUTME: Session playback clock in device time
// ABOUTME: Tracks committed frames from an origin so segment boundaries never drift
package player

import (
	"time"

	"github.com/smalltalk-tts/smalltalk-go/pkg/audio"
)

// Clock is the running end of the scheduled audio for one session.
// Next is origin plus the committed frames converted once, so rounding
// never accumulates across segments.
type Clock struct {
	sampleRate int
	origin     time.Duration
	frames     int64
	started    bool
}

// NewClock creates a clock counting frames at sampleRate
func NewClock(sampleRate int) *Clock {
	return &Clock{sampleRate: sampleRate}
}

// Started reports whether Begin has been called since the last Reset
func (c *Clock) Started() bool { return c.started }

// Begin anchors the clock at device time at
func (c *Clock) Begin(at time.Duration) {
	c.origin = at
	c.frames = 0
	c.started = true
}

// Next returns the device time at which the next segment starts
func (c *Clock) Next() time.Duration {
	return c.origin + audio.FramesToDuration(c.frames, c.sampleRate)
}

// Advance commits frames and returns the new Next
func (c *Clock) Advance(frames int) time.Duration {
	c.frames += int64(frames)
	return c.Next()
}

// Rebase moves the origin to at, discarding committed frames
func (c *Clock) Rebase(at time.Duration) {
	c.origin = at
	c.frames = 0
}

// Frames returns the frames committed since the last Begin or Rebase
func (c *Clock) Frames() int64 { return c.frames }

// SampleRate returns the rate frames are counted at
func (c *Clock) SampleRate() int { return c.sampleRate }

// Reset returns the clock to its unstarted state
func (c *Clock) Reset() {
	c.origin = 0
	c.frames = 0
	c.started = false
}
