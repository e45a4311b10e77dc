//go:build portaudio

// ABOUTME: PortAudio sink implementation
// ABOUTME: Cross-platform audio output pulling from a Timeline in the stream callback
package output

import (
	"fmt"

	"github.com/gordonklaus/portaudio"
)

// PortAudio output implementation
type PortAudio struct {
	*timelineSink
	stream *portaudio.Stream
}

// NewPortAudio opens the default output device
func NewPortAudio(sampleRate, channels int) (*PortAudio, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize portaudio: %w", err)
	}

	sink := newTimelineSink(sampleRate, channels)

	stream, err := portaudio.OpenDefaultStream(0, channels, float64(sampleRate), 0, func(out []float32) {
		sink.timeline.Render(out)
	})
	if err != nil {
		portaudio.Terminate()
		return nil, fmt.Errorf("failed to open stream: %w", err)
	}

	if err := stream.Start(); err != nil {
		stream.Close()
		portaudio.Terminate()
		return nil, fmt.Errorf("failed to start stream: %w", err)
	}

	return &PortAudio{
		timelineSink: sink,
		stream:       stream,
	}, nil
}

// Close releases resources
func (p *PortAudio) Close() error {
	if !p.release() {
		return nil
	}
	if err := p.stream.Stop(); err != nil {
		return err
	}
	if err := p.stream.Close(); err != nil {
		return err
	}
	return portaudio.Terminate()
}
