// ABOUTME: Entry point for the smalltalk speech player
// ABOUTME: Parses CLI flags, opens a TTS stream and plays it gaplessly
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/smalltalk-tts/smalltalk-go/internal/config"
	"github.com/smalltalk-tts/smalltalk-go/internal/tone"
	"github.com/smalltalk-tts/smalltalk-go/internal/version"
	"github.com/smalltalk-tts/smalltalk-go/pkg/metrics"
	"github.com/smalltalk-tts/smalltalk-go/pkg/speak"
	"github.com/smalltalk-tts/smalltalk-go/pkg/tts"
)

var (
	configFile  = flag.String("config", "", "YAML config file")
	text        = flag.String("text", "", "Text to speak (default: remaining arguments)")
	transport   = flag.String("transport", "", "TTS transport: http or websocket")
	voice       = flag.String("voice", "", "Voice id")
	backend     = flag.String("backend", "", "Audio output: oto or portaudio")
	trailing    = flag.String("trailing", "", "Incomplete final sample: pad or drop")
	clamp       = flag.Bool("clamp", false, "Move late segments to the current device time")
	stdin       = flag.Bool("stdin", false, "Play raw PCM read from stdin instead of calling the TTS API")
	toneFreq    = flag.Float64("tone", 0, "Play a sine tone of this frequency instead of calling the TTS API")
	metricsAddr = flag.String("metrics-addr", "", "Serve Prometheus metrics on this address")
	logFile     = flag.String("log-file", "", "Log file path (default from config: smalltalk.log)")
	quiet       = flag.Bool("quiet", false, "Log only to the log file")
	showVersion = flag.Bool("version", false, "Print version and exit")
)

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Printf("%s %s\n", version.Product, version.Version)
		return
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", version.Product, err)
		os.Exit(1)
	}
}

// run plays one utterance. Deferred cleanup runs before main exits.
func run() error {
	cfg, err := config.Load(*configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := applyFlags(cfg); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}

	// Set up logging
	f, err := os.OpenFile(cfg.Logging.File, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		return fmt.Errorf("error opening log file: %w", err)
	}
	defer func() { _ = f.Close() }()

	if cfg.Logging.Quiet {
		log.SetOutput(f)
	} else {
		log.SetOutput(io.MultiWriter(os.Stdout, f))
	}
	defer log.SetOutput(os.Stderr)

	log.Printf("Starting %s %s", version.Product, version.Version)

	m := setupMetrics(cfg.Metrics.Address)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	src, closeSource, err := openSource(ctx, cfg, m)
	if err != nil {
		log.Printf("Failed to open stream: %v", err)
		return fmt.Errorf("failed to open stream: %w", err)
	}
	defer closeSource()

	playerConfig := cfg.Audio.PlayerConfig()
	playerConfig.Metrics = m
	playerConfig.OnStateChange = func(state speak.State) {
		log.Printf("Player state: %s", state)
	}
	playerConfig.OnSegment = func(seg speak.ScheduledSegment) {
		if seg.Late {
			log.Printf("Segment #%d started late", seg.Index)
		}
	}
	playerConfig.OnError = func(err error) {
		log.Printf("Player error: %v", err)
	}

	player, err := speak.NewPlayer(playerConfig)
	if err != nil {
		log.Printf("Failed to create player: %v", err)
		return fmt.Errorf("failed to create player: %w", err)
	}

	err = player.Play(ctx, src)
	stats := player.Stats()
	log.Printf("Played %v in %d segments (%d chunks, %d bytes, first chunk after %v, %d late)",
		stats.Scheduled, stats.Segments, stats.Chunks, stats.Bytes, stats.TimeToFirstChunk, stats.Late)

	switch {
	case err == nil:
		log.Printf("Playback complete")
	case errors.Is(err, speak.ErrCancelled):
		log.Printf("Playback cancelled")
	default:
		log.Printf("Playback failed: %v", err)
		return fmt.Errorf("playback failed: %w", err)
	}
	return nil
}

// applyFlags overrides config values with flags given on the command line
func applyFlags(cfg *config.Config) error {
	flag.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "transport":
			cfg.TTS.Transport = *transport
		case "voice":
			cfg.TTS.VoiceID = *voice
		case "backend":
			cfg.Audio.Backend = *backend
		case "trailing":
			cfg.Audio.TrailingBytes = *trailing
		case "clamp":
			cfg.Audio.ClampLateSegments = *clamp
		case "metrics-addr":
			cfg.Metrics.Address = *metricsAddr
		case "log-file":
			cfg.Logging.File = *logFile
		case "quiet":
			cfg.Logging.Quiet = *quiet
		}
	})
	return cfg.Validate()
}

// setupMetrics serves Prometheus metrics when addr is set
func setupMetrics(addr string) *metrics.Metrics {
	if addr == "" {
		return nil
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	go func() {
		log.Printf("Serving metrics on %s/metrics", addr)
		if err := http.ListenAndServe(addr, mux); err != nil {
			log.Printf("Metrics server stopped: %v", err)
		}
	}()

	return m
}

// openSource picks the byte stream to play: a tone, stdin or the TTS API
func openSource(ctx context.Context, cfg *config.Config, m *metrics.Metrics) (speak.ChunkSource, func(), error) {
	format := cfg.Audio.Format()

	switch {
	case *toneFreq > 0:
		src, err := tone.New(tone.Config{Format: format, Frequency: *toneFreq})
		if err != nil {
			return nil, nil, err
		}
		log.Printf("Playing %.0fHz tone", *toneFreq)
		return src, func() { _ = src.Close() }, nil

	case *stdin:
		log.Printf("Playing %s from stdin", format)
		return speak.NewReaderSource(os.Stdin, cfg.TTS.ChunkSize), func() {}, nil
	}

	transcript := *text
	if transcript == "" {
		transcript = strings.Join(flag.Args(), " ")
	}

	clientConfig := cfg.TTS.ClientConfig(format)
	clientConfig.Metrics = m
	client, err := tts.NewClient(clientConfig)
	if err != nil {
		if errors.Is(err, tts.ErrNoAPIKey) {
			return nil, nil, fmt.Errorf("%w (set %s or tts.api_key)", err, config.APIKeyEnv)
		}
		return nil, nil, err
	}

	t, _ := tts.ParseTransport(cfg.TTS.Transport)
	log.Printf("Requesting speech over %s (voice %s, model %s)", t, clientConfig.VoiceID, clientConfig.ModelID)

	stream, err := client.Stream(ctx, transcript, t)
	if err != nil {
		return nil, nil, err
	}
	return stream, func() { _ = stream.Close() }, nil
}
