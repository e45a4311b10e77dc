// ABOUTME: Encoder interface definition
// ABOUTME: Common interface for raw PCM encoders
package encode

// Encoder encodes float32 samples to raw PCM bytes
type Encoder interface {
	// Encode converts samples to encoded audio data
	Encode(samples []float32) ([]byte, error)

	// Close releases encoder resources
	Close() error
}
