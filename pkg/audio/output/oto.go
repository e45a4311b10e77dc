// ABOUTME: Oto-based audio sink implementation
// ABOUTME: Plays a Timeline through a float32 oto player on the process-wide context
package output

import (
	"fmt"
	"log"
	"sync"

	"github.com/ebitengine/oto/v3"
)

// oto allows one context per process, so it is shared by every Oto sink.
var (
	otoMu       sync.Mutex
	otoCtx      *oto.Context
	otoRate     int
	otoChannels int
)

// Oto output implementation using oto library
type Oto struct {
	*timelineSink
	player *oto.Player
}

// NewOto creates an Oto sink. Each sink has its own player and timeline, so
// concurrent sessions never share a device clock.
func NewOto(sampleRate, channels int) (*Oto, error) {
	ctx, rate, ch, err := sharedContext(sampleRate, channels)
	if err != nil {
		return nil, err
	}

	sink := newTimelineSink(rate, ch)
	player := ctx.NewPlayer(sink.timeline)
	// oto reads ahead of the hardware; frames still in its buffer are not played yet
	sink.buffered = func() int {
		return player.BufferedSize() / (4 * ch)
	}
	player.Play()

	log.Printf("Audio output initialized: %dHz, %d channels", rate, ch)

	return &Oto{
		timelineSink: sink,
		player:       player,
	}, nil
}

func sharedContext(sampleRate, channels int) (*oto.Context, int, int, error) {
	otoMu.Lock()
	defer otoMu.Unlock()

	if otoCtx != nil {
		if otoRate != sampleRate || otoChannels != channels {
			log.Printf("Warning: format change detected (%dHz %dch -> %dHz %dch) but oto doesn't support reinitialization. Continuing with existing context.",
				otoRate, otoChannels, sampleRate, channels)
		}
		return otoCtx, otoRate, otoChannels, nil
	}

	op := &oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: channels,
		Format:       oto.FormatFloat32LE,
	}

	ctx, readyChan, err := oto.NewContext(op)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("failed to create oto context: %w", err)
	}

	<-readyChan

	otoCtx = ctx
	otoRate = sampleRate
	otoChannels = channels

	return otoCtx, otoRate, otoChannels, nil
}

// Close stops the player and drops pending segments, including what oto
// has buffered. Call Drain first to let them play out.
func (o *Oto) Close() error {
	if !o.release() {
		return nil
	}
	if o.player != nil {
		o.player.Pause()
		o.player.Close()
		o.player = nil
	}
	return nil
}
