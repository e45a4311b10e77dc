// ABOUTME: PCM audio encoder
// ABOUTME: Encodes float32 samples to little-endian float32 or int16 PCM bytes
package encode

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/smalltalk-tts/smalltalk-go/pkg/audio"
)

// PCMEncoder encodes PCM audio
type PCMEncoder struct {
	encoding audio.Encoding
}

// NewPCM creates a new PCM encoder
func NewPCM(format audio.Format) (Encoder, error) {
	if format.Encoding.SampleWidth() == 0 {
		return nil, fmt.Errorf("unsupported encoding: %s (supported: %s, %s)",
			format.Encoding, audio.EncodingFloat32LE, audio.EncodingInt16LE)
	}

	return &PCMEncoder{
		encoding: format.Encoding,
	}, nil
}

// Encode converts float32 samples to PCM bytes
func (e *PCMEncoder) Encode(samples []float32) ([]byte, error) {
	if e.encoding == audio.EncodingInt16LE {
		return Int16LE(samples), nil
	}
	return Float32LE(samples), nil
}

// Close releases resources
func (e *PCMEncoder) Close() error {
	return nil
}

// Float32LE encodes samples as little-endian IEEE float32
func Float32LE(samples []float32) []byte {
	output := make([]byte, len(samples)*4)
	PutFloat32LE(output, samples)
	return output
}

// PutFloat32LE writes samples into dst, which must hold len(samples)*4 bytes
func PutFloat32LE(dst []byte, samples []float32) {
	for i, sample := range samples {
		binary.LittleEndian.PutUint32(dst[i*4:], math.Float32bits(sample))
	}
}

// Int16LE encodes samples as little-endian signed 16-bit with clipping
func Int16LE(samples []float32) []byte {
	output := make([]byte, len(samples)*2)
	for i, sample := range samples {
		binary.LittleEndian.PutUint16(output[i*2:], uint16(audio.SampleToInt16(sample)))
	}
	return output
}
