// ABOUTME: Error types reported by the streaming player
// ABOUTME: State, device and stream-read failures with errors.Is/As support
package speak

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidState is matched by every error for an operation called in the wrong state
	ErrInvalidState = errors.New("speak: invalid state")

	// ErrSessionActive is returned by Open while a previous session has not closed
	ErrSessionActive = fmt.Errorf("%w: session already active", ErrInvalidState)

	// ErrCancelled is returned when Cancel interrupts a session
	ErrCancelled = errors.New("speak: session cancelled")
)

// StateError reports an operation invoked outside its valid states.
// The player is not modified.
type StateError struct {
	Op    string
	State State
}

func (e *StateError) Error() string {
	return fmt.Sprintf("speak: %s not allowed in state %s", e.Op, e.State)
}

// Is matches ErrInvalidState
func (e *StateError) Is(target error) bool {
	return target == ErrInvalidState
}

// DeviceError reports a failure of the audio output
type DeviceError struct {
	Op  string
	Err error
}

func (e *DeviceError) Error() string {
	return fmt.Sprintf("speak: audio device %s failed: %v", e.Op, e.Err)
}

func (e *DeviceError) Unwrap() error {
	return e.Err
}

// StreamReadError reports a failure of the upstream byte stream
type StreamReadError struct {
	Err error
}

func (e *StreamReadError) Error() string {
	return fmt.Sprintf("speak: stream read failed: %v", e.Err)
}

func (e *StreamReadError) Unwrap() error {
	return e.Err
}
