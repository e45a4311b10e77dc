// ABOUTME: Test app for gapless scheduling on a real output device
// ABOUTME: Plays a paced, jittered tone and reports every scheduled segment
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/smalltalk-tts/smalltalk-go/internal/tone"
	"github.com/smalltalk-tts/smalltalk-go/pkg/audio"
	"github.com/smalltalk-tts/smalltalk-go/pkg/speak"
)

var (
	backend   = flag.String("backend", "oto", "Audio output: oto or portaudio")
	freq      = flag.Float64("freq", 440, "Tone frequency in Hz")
	duration  = flag.Duration("duration", 3*time.Second, "Tone length")
	rate      = flag.Int("rate", audio.DefaultSampleRate, "Stream sample rate")
	interval  = flag.Duration("interval", 5*time.Millisecond, "Delay between chunks")
	maxChunk  = flag.Int("max-chunk", 4096, "Largest chunk in bytes")
	bufferSec = flag.Float64("buffer", 2.0, "Sample buffer length in seconds")
	clamp     = flag.Bool("clamp", false, "Move late segments to the current device time")
)

func main() {
	flag.Parse()

	log.SetFlags(log.Ltime | log.Lmicroseconds)

	fmt.Println("=== Gapless Scheduling Test ===")
	fmt.Println("This test will:")
	fmt.Println("1. Generate a sine tone split into randomly sized chunks")
	fmt.Println("2. Feed the chunks to the player at a fixed pace")
	fmt.Println("3. Print each segment's start and end in device time")
	fmt.Println("A slow pace with a small buffer produces late segments.")
	fmt.Println()

	format := audio.Format{Encoding: audio.EncodingFloat32LE, SampleRate: *rate, Channels: 1}

	src, err := tone.New(tone.Config{
		Format:    format,
		Frequency: *freq,
		Duration:  *duration,
		MaxChunk:  *maxChunk,
		Interval:  *interval,
		Seed:      time.Now().UnixNano(),
	})
	if err != nil {
		log.Fatalf("Failed to create tone: %v", err)
	}
	defer src.Close()

	var prevEnd time.Duration
	player, err := speak.NewPlayer(speak.Config{
		Format:                format,
		BufferCapacitySeconds: *bufferSec,
		ClampLateSegments:     *clamp,
		Backend:               *backend,
		OnSegment: func(seg speak.ScheduledSegment) {
			gap := ""
			if seg.Index > 0 && seg.Start != prevEnd {
				gap = fmt.Sprintf(" gap=%v", seg.Start-prevEnd)
			}
			late := ""
			if seg.Late {
				late = " LATE"
			}
			log.Printf("segment #%d start=%v end=%v frames=%d%s%s",
				seg.Index, seg.Start, seg.End, seg.Frames, gap, late)
			prevEnd = seg.End
		},
	})
	if err != nil {
		log.Fatalf("Failed to create player: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	start := time.Now()
	err = player.Play(ctx, src)
	elapsed := time.Since(start)

	stats := player.Stats()
	fmt.Println()
	fmt.Printf("Samples:   %d of %d\n", stats.Samples, src.Samples())
	fmt.Printf("Segments:  %d (%d late, %d splits)\n", stats.Segments, stats.Late, stats.OverflowSplits)
	fmt.Printf("Scheduled: %v\n", stats.Scheduled)
	fmt.Printf("Wall time: %v\n", elapsed)

	if err != nil && !errors.Is(err, speak.ErrCancelled) {
		log.Printf("Test failed: %v", err)
		os.Exit(1)
	}

	log.Printf("Test complete")
}
