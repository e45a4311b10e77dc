// ABOUTME: Streaming player for chunked TTS audio
// ABOUTME: Drives decode, buffering and gapless scheduling for one session at a time
package speak

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/smalltalk-tts/smalltalk-go/internal/player"
	"github.com/smalltalk-tts/smalltalk-go/pkg/audio/decode"
	"github.com/smalltalk-tts/smalltalk-go/pkg/audio/output"
	"github.com/smalltalk-tts/smalltalk-go/pkg/metrics"
)

// Stats contains statistics for the current or last session
type Stats struct {
	Chunks           int64
	Bytes            int64
	Samples          int64
	Segments         int64
	Scheduled        time.Duration
	Late             int64
	PaddedBytes      int
	DroppedBytes     int
	OverflowSplits   int
	TimeToFirstChunk time.Duration
}

// Player plays one streamed utterance per session.
// IngestChunk and Finish must be called from a single goroutine in stream
// order; Cancel, State and Stats may be called from anywhere.
type Player struct {
	config Config

	mu        sync.Mutex
	state     State
	sessionID string
	cancelled bool
	done      chan struct{}
	openedAt  time.Time
	stats     Stats

	// Session components, replaced on every Open
	sink      output.Sink
	remainder *decode.Remainder
	buffer    *player.SampleBuffer
	scheduler *player.Scheduler

	events []func()
}

// NewPlayer creates a player with the given configuration
func NewPlayer(config Config) (*Player, error) {
	config.setDefaults()
	if err := config.validate(); err != nil {
		return nil, err
	}

	return &Player{
		config: config,
		state:  StateIdle,
	}, nil
}

// Open starts a new session and acquires the output
func (p *Player) Open(ctx context.Context) error {
	p.mu.Lock()
	err := p.open(ctx)
	events := p.takeEvents()
	p.mu.Unlock()

	events.fire()
	return err
}

func (p *Player) open(ctx context.Context) error {
	if p.state.active() {
		return ErrSessionActive
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	format := p.config.Format
	remainder, err := decode.NewRemainder(format)
	if err != nil {
		return err
	}
	buffer, err := player.NewSampleBuffer(p.config.capacity(), p.config.FlushThresholdFraction, format.SampleRate, format.Channels)
	if err != nil {
		return err
	}

	sink, err := p.config.NewSink(format)
	if err != nil {
		derr := &DeviceError{Op: "open", Err: err}
		log.Printf("Failed to open audio output: %v", err)
		if p.state != StateClosed {
			p.setState(StateClosed)
		}
		p.emitError(derr)
		return derr
	}

	p.sink = sink
	p.remainder = remainder
	p.buffer = buffer
	p.scheduler = player.NewScheduler(sink, format.SampleRate, p.config.ClampLateSegments)
	p.sessionID = uuid.New().String()
	p.cancelled = false
	p.done = make(chan struct{})
	p.openedAt = time.Now()
	p.stats = Stats{}

	p.config.Metrics.SessionStarted()
	log.Printf("Session %s opened: %s, buffer %d samples, flush at %.0f",
		p.sessionID, format, buffer.Capacity(), buffer.Threshold())

	p.setState(StateOpen)
	return nil
}

// IngestChunk decodes a chunk of the byte stream and schedules every
// segment it completes. Chunks may split samples at any byte.
func (p *Player) IngestChunk(chunk []byte) error {
	p.mu.Lock()
	err := p.ingest(chunk)
	events := p.takeEvents()
	p.mu.Unlock()

	events.fire()
	return err
}

func (p *Player) ingest(chunk []byte) error {
	if p.state != StateOpen && p.state != StateStreaming {
		return &StateError{Op: "ingest", State: p.state}
	}

	if p.stats.Chunks == 0 {
		p.stats.TimeToFirstChunk = time.Since(p.openedAt)
		p.config.Metrics.FirstChunk(p.stats.TimeToFirstChunk)
		log.Printf("Time to first chunk: %v", p.stats.TimeToFirstChunk)
	}
	if p.state == StateOpen {
		p.setState(StateStreaming)
	}

	samples, err := p.remainder.Merge(chunk)
	if err != nil {
		return p.fail(err)
	}
	p.stats.Chunks++
	p.stats.Bytes += int64(len(chunk))
	p.stats.Samples += int64(len(samples))
	p.config.Metrics.ChunkIngested(len(chunk), len(samples))

	return p.appendAndSchedule(samples, false)
}

// Finish drains the trailing bytes, schedules what is left and waits until
// the scheduled audio has played. Cancelling ctx during the wait cancels the session.
func (p *Player) Finish(ctx context.Context) error {
	p.mu.Lock()
	wait, done, err := p.drain()
	sink := p.sink
	events := p.takeEvents()
	p.mu.Unlock()

	events.fire()
	if err != nil {
		return err
	}

	if wait > 0 {
		log.Printf("Waiting %v for playback to complete", wait)

		timer := time.NewTimer(wait)
		defer timer.Stop()

		select {
		case <-timer.C:
		case <-done:
			return ErrCancelled
		case <-ctx.Done():
			p.Cancel()
			return fmt.Errorf("%w: %w", ErrCancelled, ctx.Err())
		}
	}

	// The device may still hold audio it has already taken from the sink
	if d, ok := sink.(output.Drainer); ok {
		if err := d.Drain(ctx); err != nil {
			if ctx.Err() != nil {
				p.Cancel()
				return fmt.Errorf("%w: %w", ErrCancelled, ctx.Err())
			}
			if !errors.Is(err, output.ErrClosed) {
				log.Printf("Failed to drain audio output: %v", err)
			}
		}
	}

	p.mu.Lock()
	if p.done != done || p.state != StateDraining {
		p.mu.Unlock()
		return ErrCancelled
	}
	p.close(metrics.OutcomeFinished)
	log.Printf("Session %s finished: %d chunks, %d samples, %v scheduled",
		p.sessionID, p.stats.Chunks, p.stats.Samples, p.stats.Scheduled)
	events = p.takeEvents()
	p.mu.Unlock()

	events.fire()
	return nil
}

// drain moves the session to Draining and schedules the trailing audio.
// It returns how long the scheduled audio still needs to play.
func (p *Player) drain() (time.Duration, chan struct{}, error) {
	if p.state != StateOpen && p.state != StateStreaming {
		return 0, nil, &StateError{Op: "finish", State: p.state}
	}
	p.setState(StateDraining)

	samples, padded, dropped, err := p.remainder.Drain(p.config.TrailingBytes)
	if err != nil {
		return 0, nil, p.fail(err)
	}
	if padded > 0 {
		p.stats.PaddedBytes += padded
		p.config.Metrics.Trailing(string(decode.TrailingPad), padded)
		log.Printf("Padded %d trailing byte(s) with zeros to complete the final sample", padded)
	}
	if dropped > 0 {
		p.stats.DroppedBytes += dropped
		p.config.Metrics.Trailing(string(decode.TrailingDrop), dropped)
		log.Printf("Dropped %d trailing byte(s) of an incomplete final sample", dropped)
	}

	if err := p.appendAndSchedule(samples, true); err != nil {
		return 0, nil, err
	}

	var wait time.Duration
	if p.scheduler.Started() {
		wait = p.scheduler.NextStart() - p.sink.Now()
	}
	return wait, p.done, nil
}

// appendAndSchedule buffers samples and schedules every segment emitted.
// With flush set the buffer is emptied regardless of its threshold.
func (p *Player) appendAndSchedule(samples []float32, flush bool) error {
	splits := p.buffer.Splits()
	segments, err := p.buffer.Append(samples)
	if err != nil {
		return p.fail(err)
	}
	if n := p.buffer.Splits() - splits; n > 0 {
		p.stats.OverflowSplits += n
		p.config.Metrics.Splits(n)
		log.Printf("Split %d decoded samples into %d-sample parts", len(samples), p.buffer.Capacity())
	}
	if flush {
		if seg, ok := p.buffer.Flush(); ok {
			segments = append(segments, seg)
		}
	}

	for _, seg := range segments {
		scheduled, err := p.scheduler.Schedule(seg)
		if err != nil {
			return p.fail(&DeviceError{Op: "schedule", Err: err})
		}

		p.stats.Segments++
		p.stats.Scheduled += scheduled.Duration()
		if scheduled.Late {
			p.stats.Late++
		}
		p.config.Metrics.SegmentScheduled(scheduled.Duration(), scheduled.Late)
		p.emitSegment(scheduled)
	}
	return nil
}

// Cancel stops the session, dropping audio not yet played, and unblocks
// a pending Finish. It does nothing when no session is active.
func (p *Player) Cancel() error {
	p.mu.Lock()
	if !p.state.active() {
		p.mu.Unlock()
		return nil
	}

	log.Printf("Cancelling session %s", p.sessionID)
	p.cancelled = true
	p.close(metrics.OutcomeCancelled)
	events := p.takeEvents()
	p.mu.Unlock()

	events.fire()
	return nil
}

// Abort ends the session because the upstream byte stream failed.
// It returns the resulting *StreamReadError.
func (p *Player) Abort(err error) error {
	p.mu.Lock()
	if !p.state.active() {
		state := p.state
		p.mu.Unlock()
		return &StateError{Op: "abort", State: state}
	}

	rerr := p.fail(&StreamReadError{Err: err})
	events := p.takeEvents()
	p.mu.Unlock()

	events.fire()
	return rerr
}

// Play runs a whole session: Open, ingest every chunk src produces, then Finish.
// Cancel stops a running Play and makes it return ErrCancelled.
func (p *Player) Play(ctx context.Context, src ChunkSource) error {
	if err := p.Open(ctx); err != nil {
		return err
	}

	p.mu.Lock()
	done := p.done
	p.mu.Unlock()

	readCtx, stop := context.WithCancel(ctx)
	defer stop()
	go func() {
		select {
		case <-done:
			stop()
		case <-readCtx.Done():
		}
	}()

	for {
		chunk, err := src.Next(readCtx)
		if len(chunk) > 0 {
			if ierr := p.IngestChunk(chunk); ierr != nil {
				return p.playError(ctx, ierr)
			}
		}

		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			if p.wasCancelled() || ctx.Err() != nil {
				return p.playError(ctx, err)
			}
			log.Printf("Stream read failed: %v", err)
			return p.Abort(err)
		}
	}

	if err := p.Finish(ctx); err != nil {
		return p.playError(ctx, err)
	}
	return nil
}

// playError maps an error seen by Play after a cancellation to ErrCancelled
func (p *Player) playError(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		p.Cancel()
		if errors.Is(err, ErrCancelled) {
			return err
		}
		return fmt.Errorf("%w: %w", ErrCancelled, ctx.Err())
	}
	if p.wasCancelled() {
		return ErrCancelled
	}
	return err
}

func (p *Player) wasCancelled() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cancelled
}

// State returns the current session state
func (p *Player) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Stats returns statistics for the current or last session
func (p *Player) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stats
}

// SessionID returns the id of the current or last session
func (p *Player) SessionID() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.sessionID
}

// fail closes the session after a fatal error and reports it
func (p *Player) fail(err error) error {
	log.Printf("Session %s failed: %v", p.sessionID, err)
	p.close(metrics.OutcomeFailed)
	p.emitError(err)
	return err
}

// close releases the output and moves the session to Closed
func (p *Player) close(outcome string) {
	if p.sink != nil {
		if err := p.sink.Close(); err != nil {
			log.Printf("Error closing audio output: %v", err)
		}
		p.sink = nil
	}
	if p.done != nil {
		close(p.done)
	}
	if err := p.remainder.Close(); err != nil {
		log.Printf("Error closing decoder: %v", err)
	}
	p.buffer.Reset()

	p.config.Metrics.SessionEnded(outcome)
	p.setState(StateClosed)
}

// callbacks queued under the lock and run after it is released
type callbacks []func()

func (c callbacks) fire() {
	for _, f := range c {
		f()
	}
}

func (p *Player) takeEvents() callbacks {
	c := p.events
	p.events = nil
	return c
}

func (p *Player) setState(state State) {
	p.state = state
	if cb := p.config.OnStateChange; cb != nil {
		p.events = append(p.events, func() { cb(state) })
	}
}

func (p *Player) emitSegment(s ScheduledSegment) {
	if cb := p.config.OnSegment; cb != nil {
		p.events = append(p.events, func() { cb(s) })
	}
}

func (p *Player) emitError(err error) {
	if cb := p.config.OnError; cb != nil {
		p.events = append(p.events, func() { cb(err) })
	}
}
