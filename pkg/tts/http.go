// ABOUTME: HTTP transport for streamed synthesis
// ABOUTME: Posts the transcript and hands out the response body chunk by chunk
package tts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"
)

// HTTPStream reads a synthesis response body
type HTTPStream struct {
	body io.ReadCloser
	buf  []byte
	err  error

	closeOnce sync.Once
	closed    bool
	mu        sync.Mutex
}

// StreamHTTP posts text to the bytes endpoint and returns the response stream
func (c *Client) StreamHTTP(ctx context.Context, text string) (*HTTPStream, error) {
	if err := checkText(text); err != nil {
		return nil, err
	}

	body, err := json.Marshal(c.newRequest(text))
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.APIURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header = c.headers()
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.config.HTTPClient.Do(req)
	if err != nil {
		c.config.Metrics.TTSRequest(string(TransportHTTP), err)
		return nil, fmt.Errorf("request failed: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
		apiErr := &APIError{
			StatusCode: resp.StatusCode,
			Message:    strings.TrimSpace(string(msg)),
			Transport:  string(TransportHTTP),
		}
		c.config.Metrics.TTSRequest(string(TransportHTTP), apiErr)
		return nil, apiErr
	}

	c.config.Metrics.TTSRequest(string(TransportHTTP), nil)
	log.Printf("TTS response headers after %v (status %d)", time.Since(start), resp.StatusCode)

	return &HTTPStream{
		body: resp.Body,
		buf:  make([]byte, c.config.ChunkSize),
	}, nil
}

// Next returns the next chunk of the body. Cancelling ctx aborts a blocked read.
func (s *HTTPStream) Next(ctx context.Context) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrStreamClosed
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.err != nil {
		return nil, s.err
	}

	stop := context.AfterFunc(ctx, func() { s.body.Close() })
	defer stop()

	n, err := s.body.Read(s.buf)
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if err != nil {
		s.err = err
		if err != io.EOF {
			s.err = fmt.Errorf("failed to read response: %w", err)
		}
	}
	if n > 0 {
		chunk := make([]byte, n)
		copy(chunk, s.buf[:n])
		return chunk, nil
	}
	return nil, s.err
}

// Close releases the response body
func (s *HTTPStream) Close() error {
	var err error
	s.closeOnce.Do(func() {
		err = s.body.Close()
		s.mu.Lock()
		s.closed = true
		s.mu.Unlock()
	})
	return err
}
