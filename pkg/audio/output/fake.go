// ABOUTME: Deterministic in-memory sink for tests
// ABOUTME: Records started sources against an injectable device clock
package output

import (
	"context"
	"sync"
	"time"

	"github.com/smalltalk-tts/smalltalk-go/pkg/audio"
)

// Started records one source handed to a Fake sink
type Started struct {
	At         time.Duration
	Now        time.Duration
	Frames     int
	SampleRate int
	Channels   int
	Samples    []float32
}

// Duration returns the playback length of the started source
func (s Started) Duration() time.Duration {
	return audio.FramesToDuration(int64(s.Frames), s.SampleRate)
}

// Fake is a Sink that plays nothing. Its clock only moves when told to,
// unless a clock function is installed with SetClock.
type Fake struct {
	mu      sync.Mutex
	now     time.Duration
	clock   func() time.Duration
	started []Started
	closed  bool
	closes  int

	createErr  error
	startErr   error
	startAfter int

	drains int
	drain  func(ctx context.Context) error
}

// NewFake creates a fake sink at device time zero
func NewFake() *Fake {
	return &Fake{}
}

// SetNow sets the device time
func (f *Fake) SetNow(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = d
}

// Advance moves the device time forward
func (f *Fake) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now += d
}

// SetClock installs a function that supplies the device time
func (f *Fake) SetClock(clock func() time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.clock = clock
}

// FailCreate makes CreateSegmentBuffer return err
func (f *Fake) FailCreate(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createErr = err
}

// FailStartAfter makes Start return err once n sources have started
func (f *Fake) FailStartAfter(n int, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.startAfter = n
	f.startErr = err
}

// SetDrain installs a function that Drain runs, for example to block like a
// device that is still playing
func (f *Fake) SetDrain(drain func(ctx context.Context) error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.drain = drain
}

func (f *Fake) CreateSegmentBuffer(channels, frames, sampleRate int) (*Buffer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return nil, ErrClosed
	}
	if f.createErr != nil {
		return nil, f.createErr
	}
	return newBuffer(channels, frames, sampleRate)
}

func (f *Fake) WriteSamples(buf *Buffer, samples []float32) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return ErrClosed
	}
	return buf.write(samples)
}

func (f *Fake) CreatePlayableSource(buf *Buffer) (*Source, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return nil, ErrClosed
	}
	return newSource(buf)
}

func (f *Fake) Start(src *Source, at time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return ErrClosed
	}
	if f.startErr != nil && len(f.started) >= f.startAfter {
		return f.startErr
	}
	if err := src.claim(); err != nil {
		return err
	}

	buf := src.buffer
	samples := make([]float32, len(buf.data))
	copy(samples, buf.data)

	f.started = append(f.started, Started{
		At:         at,
		Now:        f.nowLocked(),
		Frames:     buf.frames,
		SampleRate: buf.sampleRate,
		Channels:   buf.channels,
		Samples:    samples,
	})
	return nil
}

func (f *Fake) Now() time.Duration {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.nowLocked()
}

func (f *Fake) nowLocked() time.Duration {
	if f.clock != nil {
		return f.clock()
	}
	return f.now
}

// Close marks the sink released; pending sources are dropped
func (f *Fake) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.closes++
	f.closed = true
	return nil
}

// Drain records the call and runs the function installed with SetDrain
func (f *Fake) Drain(ctx context.Context) error {
	f.mu.Lock()
	f.drains++
	drain := f.drain
	closed := f.closed
	f.mu.Unlock()

	if closed {
		return ErrClosed
	}
	if drain != nil {
		return drain(ctx)
	}
	return nil
}

// Drains returns how many times Drain was called
func (f *Fake) Drains() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.drains
}

// Started returns a copy of every source started so far
func (f *Fake) Started() []Started {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]Started, len(f.started))
	copy(out, f.started)
	return out
}

// Closed reports whether Close was called
func (f *Fake) Closed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

// Closes returns how many times Close was called
func (f *Fake) Closes() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closes
}

var (
	_ Sink    = (*Fake)(nil)
	_ Sink    = (*Oto)(nil)
	_ Sink    = (*PortAudio)(nil)
	_ Drainer = (*Fake)(nil)
	_ Drainer = (*Oto)(nil)
)
