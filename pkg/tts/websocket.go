// ABOUTME: WebSocket transport for streamed synthesis
// ABOUTME: Sends one request per connection and decodes base64 audio chunks
package tts

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// WSStream reads audio chunks for one context from a WebSocket
type WSStream struct {
	conn      *websocket.Conn
	contextID string
	done      bool

	mu        sync.Mutex
	closeOnce sync.Once
}

// StreamWebSocket opens a connection, sends the request for text and
// returns the stream of audio chunks
func (c *Client) StreamWebSocket(ctx context.Context, text string) (*WSStream, error) {
	if err := checkText(text); err != nil {
		return nil, err
	}

	dialer := websocket.Dialer{
		Proxy:            http.ProxyFromEnvironment,
		HandshakeTimeout: c.config.Timeout,
	}

	log.Printf("Connecting to %s", c.config.WebSocketURL)
	start := time.Now()
	conn, resp, err := dialer.DialContext(ctx, c.config.WebSocketURL, c.headers())
	if err != nil {
		c.config.Metrics.TTSRequest(string(TransportWebSocket), err)
		if resp != nil {
			return nil, &APIError{
				StatusCode: resp.StatusCode,
				Message:    err.Error(),
				Transport:  string(TransportWebSocket),
			}
		}
		return nil, fmt.Errorf("websocket dial failed: %w", err)
	}

	req := c.newRequest(text)
	req.ContextID = uuid.New().String()
	cont := false
	req.Continue = &cont

	if err := conn.WriteJSON(req); err != nil {
		conn.Close()
		c.config.Metrics.TTSRequest(string(TransportWebSocket), err)
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	c.config.Metrics.TTSRequest(string(TransportWebSocket), nil)
	log.Printf("TTS request %s sent after %v", req.ContextID, time.Since(start))

	return &WSStream{conn: conn, contextID: req.ContextID}, nil
}

// ContextID returns the id the request was sent with
func (s *WSStream) ContextID() string {
	return s.contextID
}

// Next returns the next audio chunk, skipping messages for other contexts
// and message types that carry no audio
func (s *WSStream) Next(ctx context.Context) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.done {
		return nil, io.EOF
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	stop := context.AfterFunc(ctx, func() { s.conn.Close() })
	defer stop()

	for {
		var msg Response
		if err := s.conn.ReadJSON(&msg); err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, fmt.Errorf("websocket read failed: %w", err)
		}

		if msg.ContextID != "" && msg.ContextID != s.contextID {
			continue
		}

		switch msg.Type {
		case ResponseChunk:
			data, err := base64.StdEncoding.DecodeString(msg.Data)
			if err != nil {
				return nil, fmt.Errorf("invalid audio chunk: %w", err)
			}
			if msg.Done {
				s.done = true
			}
			if len(data) == 0 {
				if s.done {
					return nil, io.EOF
				}
				continue
			}
			return data, nil

		case ResponseDone:
			s.done = true
			return nil, io.EOF

		case ResponseError:
			s.done = true
			return nil, &APIError{
				StatusCode: msg.StatusCode,
				Message:    msg.Error,
				Transport:  string(TransportWebSocket),
			}
		}
	}
}

// Close closes the connection
func (s *WSStream) Close() error {
	var err error
	s.closeOnce.Do(func() {
		deadline := time.Now().Add(time.Second)
		s.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
		err = s.conn.Close()
	})
	return err
}
