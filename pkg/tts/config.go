// ABOUTME: TTS client configuration
// ABOUTME: Endpoint, credentials, voice and output format with Cartesia defaults
package tts

import (
	"fmt"
	"net/http"
	"time"

	"github.com/smalltalk-tts/smalltalk-go/pkg/audio"
	"github.com/smalltalk-tts/smalltalk-go/pkg/metrics"
)

const (
	DefaultAPIURL       = "https://api.cartesia.ai/tts/bytes"
	DefaultWebSocketURL = "wss://api.cartesia.ai/tts/websocket"
	DefaultAPIVersion   = "2024-06-10"
	DefaultVoiceID      = "c45bc5ec-dc68-4feb-8829-6e6b2748095d"
	DefaultModelID      = "sonic-english"
	DefaultLanguage     = "en"
	DefaultTimeout      = 30 * time.Second
	DefaultChunkSize    = 4096
)

// Transport selects how the stream is requested
type Transport string

const (
	TransportHTTP      Transport = "http"
	TransportWebSocket Transport = "websocket"
)

// ParseTransport parses "http" or "websocket"; empty means http
func ParseTransport(s string) (Transport, error) {
	switch Transport(s) {
	case "", TransportHTTP:
		return TransportHTTP, nil
	case TransportWebSocket, "ws":
		return TransportWebSocket, nil
	default:
		return "", fmt.Errorf("unknown transport: %q (supported: http, websocket)", s)
	}
}

// Config holds TTS client configuration
type Config struct {
	// APIURL is the HTTP bytes endpoint
	APIURL string

	// WebSocketURL is the WebSocket endpoint
	WebSocketURL string

	// APIKey is sent as X-API-Key
	APIKey string

	// APIVersion is sent as Cartesia-Version
	APIVersion string

	VoiceID  string
	ModelID  string
	Language string

	// Format requested from the API (default: pcm_f32le, 44100Hz, mono)
	Format audio.Format

	// Timeout bounds connecting and receiving response headers
	Timeout time.Duration

	// ChunkSize is the read size for HTTP streams
	ChunkSize int

	// HTTPClient overrides the client used for HTTP requests
	HTTPClient *http.Client

	// Metrics records request outcomes when set
	Metrics *metrics.Metrics
}

func (c *Config) setDefaults() {
	if c.APIURL == "" {
		c.APIURL = DefaultAPIURL
	}
	if c.WebSocketURL == "" {
		c.WebSocketURL = DefaultWebSocketURL
	}
	if c.APIVersion == "" {
		c.APIVersion = DefaultAPIVersion
	}
	if c.VoiceID == "" {
		c.VoiceID = DefaultVoiceID
	}
	if c.ModelID == "" {
		c.ModelID = DefaultModelID
	}
	if c.Language == "" {
		c.Language = DefaultLanguage
	}
	if c.Format == (audio.Format{}) {
		c.Format = audio.DefaultFormat()
	}
	if c.Timeout == 0 {
		c.Timeout = DefaultTimeout
	}
	if c.ChunkSize <= 0 {
		c.ChunkSize = DefaultChunkSize
	}
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{
			Transport: &http.Transport{
				Proxy:                 http.ProxyFromEnvironment,
				ResponseHeaderTimeout: c.Timeout,
				TLSHandshakeTimeout:   c.Timeout,
			},
		}
	}
}

// Validate checks that the configuration can make requests
func (c *Config) Validate() error {
	if c.APIKey == "" {
		return ErrNoAPIKey
	}
	if err := c.Format.Validate(); err != nil {
		return fmt.Errorf("invalid output format: %w", err)
	}
	return nil
}
