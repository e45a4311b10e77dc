// ABOUTME: Tests for the session playback clock
// ABOUTME: Verifies drift-free advancement and rebasing
package player

import (
	"testing"
	"time"
)

func TestClockNoDrift(t *testing.T) {
	c := NewClock(44100)
	c.Begin(0)

	for i := 0; i < 44100; i++ {
		c.Advance(1)
	}

	if c.Next() != time.Second {
		t.Errorf("expected exactly 1s after 44100 frames, got %v", c.Next())
	}
}

func TestClockBeginAndRebase(t *testing.T) {
	c := NewClock(1000)
	if c.Started() {
		t.Error("expected new clock to be unstarted")
	}

	c.Begin(50 * time.Millisecond)
	if next := c.Advance(10); next != 60*time.Millisecond {
		t.Errorf("expected 60ms, got %v", next)
	}

	c.Rebase(time.Second)
	if c.Frames() != 0 || c.Next() != time.Second {
		t.Errorf("expected rebase to 1s with no frames, got %v/%d", c.Next(), c.Frames())
	}

	c.Reset()
	if c.Started() || c.Next() != 0 {
		t.Error("expected reset clock to be unstarted at zero")
	}
}
