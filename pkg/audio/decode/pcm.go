// ABOUTME: PCM audio decoder
// ABOUTME: Decodes little-endian float32 and int16 PCM audio to float32 samples
package decode

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/smalltalk-tts/smalltalk-go/pkg/audio"
)

// PCMDecoder decodes raw PCM audio
type PCMDecoder struct {
	encoding audio.Encoding
	width    int
}

// NewPCM creates a new PCM decoder
func NewPCM(format audio.Format) (*PCMDecoder, error) {
	width := format.Encoding.SampleWidth()
	if width == 0 {
		return nil, fmt.Errorf("unsupported encoding: %s (supported: %s, %s)",
			format.Encoding, audio.EncodingFloat32LE, audio.EncodingInt16LE)
	}

	return &PCMDecoder{
		encoding: format.Encoding,
		width:    width,
	}, nil
}

// Decode converts PCM bytes to float32 samples
func (d *PCMDecoder) Decode(data []byte) ([]float32, error) {
	numSamples := len(data) / d.width
	samples := make([]float32, numSamples)

	if d.encoding == audio.EncodingInt16LE {
		for i := 0; i < numSamples; i++ {
			samples[i] = audio.SampleFromInt16(int16(binary.LittleEndian.Uint16(data[i*2:])))
		}
		return samples, nil
	}

	for i := 0; i < numSamples; i++ {
		samples[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return samples, nil
}

// SampleWidth returns bytes per sample
func (d *PCMDecoder) SampleWidth() int {
	return d.width
}

// Close releases resources
func (d *PCMDecoder) Close() error {
	return nil
}

var _ Decoder = (*PCMDecoder)(nil)
