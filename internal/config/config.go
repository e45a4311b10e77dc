// ABOUTME: YAML configuration for the smalltalk CLI
// ABOUTME: Defaults, file loading, environment overrides and per-section validation
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/smalltalk-tts/smalltalk-go/pkg/audio"
	"github.com/smalltalk-tts/smalltalk-go/pkg/audio/decode"
	"github.com/smalltalk-tts/smalltalk-go/pkg/speak"
	"github.com/smalltalk-tts/smalltalk-go/pkg/tts"
)

// APIKeyEnv names the environment variable that overrides tts.api_key
const APIKeyEnv = "CARTESIA_API_KEY"

// Config represents the complete CLI configuration
type Config struct {
	Audio   AudioConfig   `yaml:"audio"`
	TTS     TTSConfig     `yaml:"tts"`
	Metrics MetricsConfig `yaml:"metrics"`
	Logging LoggingConfig `yaml:"logging"`
}

// AudioConfig contains stream format and playback parameters
type AudioConfig struct {
	Backend                string  `yaml:"backend"`
	Encoding               string  `yaml:"encoding"`
	SampleRate             int     `yaml:"sample_rate"`
	Channels               int     `yaml:"channels"`
	BufferCapacitySeconds  float64 `yaml:"buffer_capacity_seconds"`
	FlushThresholdFraction float64 `yaml:"flush_threshold_fraction"`
	TrailingBytes          string  `yaml:"trailing_bytes"` // pad or drop
	ClampLateSegments      bool    `yaml:"clamp_late_segments"`
}

// TTSConfig contains TTS API configuration
type TTSConfig struct {
	Transport    string `yaml:"transport"` // http or websocket
	APIURL       string `yaml:"api_url"`
	WebSocketURL string `yaml:"websocket_url"`
	APIKey       string `yaml:"api_key"`
	APIVersion   string `yaml:"api_version"`
	VoiceID      string `yaml:"voice_id"`
	ModelID      string `yaml:"model_id"`
	Language     string `yaml:"language"`
	Timeout      int    `yaml:"timeout"` // seconds
	ChunkSize    int    `yaml:"chunk_size"`
}

// MetricsConfig contains Prometheus endpoint configuration
type MetricsConfig struct {
	Address string `yaml:"address"` // empty disables the endpoint
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	File  string `yaml:"file"`
	Quiet bool   `yaml:"quiet"`
}

// Default returns the configuration used when no file is given
func Default() *Config {
	return &Config{
		Audio: AudioConfig{
			Backend:                "oto",
			Encoding:               string(audio.DefaultEncoding),
			SampleRate:             audio.DefaultSampleRate,
			Channels:               audio.DefaultChannels,
			BufferCapacitySeconds:  speak.DefaultBufferCapacitySeconds,
			FlushThresholdFraction: speak.DefaultFlushThresholdFraction,
			TrailingBytes:          string(decode.TrailingPad),
		},
		TTS: TTSConfig{
			Transport:    string(tts.TransportHTTP),
			APIURL:       tts.DefaultAPIURL,
			WebSocketURL: tts.DefaultWebSocketURL,
			APIVersion:   tts.DefaultAPIVersion,
			VoiceID:      tts.DefaultVoiceID,
			ModelID:      tts.DefaultModelID,
			Language:     tts.DefaultLanguage,
			Timeout:      int(tts.DefaultTimeout / time.Second),
			ChunkSize:    tts.DefaultChunkSize,
		},
		Logging: LoggingConfig{
			File: "smalltalk.log",
		},
	}
}

// Load reads the configuration file at path over the defaults, applies
// environment overrides and validates the result. An empty path loads the defaults.
func Load(path string) (*Config, error) {
	config := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	config.ApplyEnv()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

// ApplyEnv overrides settings from the environment
func (c *Config) ApplyEnv() {
	if key := os.Getenv(APIKeyEnv); key != "" {
		c.TTS.APIKey = key
	}
}

// Validate performs validation of every section
func (c *Config) Validate() error {
	if err := c.Audio.Validate(); err != nil {
		return fmt.Errorf("audio config: %w", err)
	}

	if err := c.TTS.Validate(); err != nil {
		return fmt.Errorf("tts config: %w", err)
	}

	return nil
}

// Validate validates audio configuration
func (a *AudioConfig) Validate() error {
	switch a.Backend {
	case "oto", "portaudio":
	default:
		return fmt.Errorf("backend must be oto or portaudio, got %q", a.Backend)
	}

	if err := a.Format().Validate(); err != nil {
		return err
	}

	if a.BufferCapacitySeconds <= 0 {
		return fmt.Errorf("buffer_capacity_seconds must be positive, got %f", a.BufferCapacitySeconds)
	}

	if a.FlushThresholdFraction <= 0 || a.FlushThresholdFraction > 1 {
		return fmt.Errorf("flush_threshold_fraction must be in (0, 1], got %f", a.FlushThresholdFraction)
	}

	if _, err := decode.ParseTrailingPolicy(a.TrailingBytes); err != nil {
		return err
	}

	return nil
}

// Validate validates TTS configuration. The API key is checked when a request is made.
func (t *TTSConfig) Validate() error {
	if _, err := tts.ParseTransport(t.Transport); err != nil {
		return err
	}

	if t.Timeout < 0 {
		return fmt.Errorf("timeout cannot be negative, got %d", t.Timeout)
	}

	if t.ChunkSize < 0 {
		return fmt.Errorf("chunk_size cannot be negative, got %d", t.ChunkSize)
	}

	if t.APIURL == "" && t.WebSocketURL == "" {
		return errors.New("api_url and websocket_url cannot both be empty")
	}

	return nil
}

// Format returns the stream format
func (a *AudioConfig) Format() audio.Format {
	return audio.Format{
		Encoding:   audio.Encoding(a.Encoding),
		SampleRate: a.SampleRate,
		Channels:   a.Channels,
	}
}

// PlayerConfig returns the player settings. Callbacks, sink and metrics are left to the caller.
func (a *AudioConfig) PlayerConfig() speak.Config {
	return speak.Config{
		Format:                 a.Format(),
		BufferCapacitySeconds:  a.BufferCapacitySeconds,
		FlushThresholdFraction: a.FlushThresholdFraction,
		TrailingBytes:          decode.TrailingPolicy(a.TrailingBytes),
		ClampLateSegments:      a.ClampLateSegments,
		Backend:                a.Backend,
	}
}

// ClientConfig returns the TTS client settings for the given stream format
func (t *TTSConfig) ClientConfig(format audio.Format) tts.Config {
	return tts.Config{
		APIURL:       t.APIURL,
		WebSocketURL: t.WebSocketURL,
		APIKey:       t.APIKey,
		APIVersion:   t.APIVersion,
		VoiceID:      t.VoiceID,
		ModelID:      t.ModelID,
		Language:     t.Language,
		Format:       format,
		Timeout:      time.Duration(t.Timeout) * time.Second,
		ChunkSize:    t.ChunkSize,
	}
}
