// ABOUTME: Cartesia TTS client
// ABOUTME: Opens PCM byte streams over HTTP or WebSocket
package tts

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/smalltalk-tts/smalltalk-go/internal/version"
)

// Stream is an open synthesis response. Next returns io.EOF after the last chunk.
type Stream interface {
	Next(ctx context.Context) ([]byte, error)
	Close() error
}

// Client requests speech from the TTS API
type Client struct {
	config Config
}

// NewClient creates a client with the given configuration
func NewClient(config Config) (*Client, error) {
	config.setDefaults()
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &Client{config: config}, nil
}

// Config returns the effective configuration
func (c *Client) Config() Config {
	return c.config
}

// Stream opens a stream for text over the given transport
func (c *Client) Stream(ctx context.Context, text string, transport Transport) (Stream, error) {
	switch transport {
	case "", TransportHTTP:
		s, err := c.StreamHTTP(ctx, text)
		if err != nil {
			return nil, err
		}
		return s, nil
	case TransportWebSocket:
		s, err := c.StreamWebSocket(ctx, text)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown transport: %q", transport)
	}
}

func (c *Client) headers() http.Header {
	h := http.Header{}
	h.Set("X-API-Key", c.config.APIKey)
	h.Set("Cartesia-Version", c.config.APIVersion)
	h.Set("User-Agent", version.UserAgent())
	return h
}

func checkText(text string) error {
	if strings.TrimSpace(text) == "" {
		return ErrEmptyText
	}
	return nil
}
