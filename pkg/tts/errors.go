package tts

import (
	"errors"
	"fmt"
)

var (
	// ErrNoAPIKey is returned when the API key is missing
	ErrNoAPIKey = errors.New("tts: API key required")

	// ErrEmptyText is returned when the transcript is empty
	ErrEmptyText = errors.New("tts: empty transcript")

	// ErrStreamClosed is returned when reading from a closed stream
	ErrStreamClosed = errors.New("tts: stream closed")
)

// APIError represents an error response from the TTS API
type APIError struct {
	// StatusCode is the HTTP status code
	StatusCode int

	// Message is the error message from the API
	Message string

	// Transport is "http" or "websocket"
	Transport string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("tts [%s]: API error %d: %s", e.Transport, e.StatusCode, e.Message)
}

// IsUnauthorized returns true if this is an authentication error (HTTP 401)
func (e *APIError) IsUnauthorized() bool {
	return e.StatusCode == 401
}

// IsRateLimited returns true if this is a rate limit error (HTTP 429)
func (e *APIError) IsRateLimited() bool {
	return e.StatusCode == 429
}

// IsServerError returns true if this is a server-side error (HTTP 5xx)
func (e *APIError) IsServerError() bool {
	return e.StatusCode >= 500 && e.StatusCode < 600
}
