// ABOUTME: Decoder interface definition
// ABOUTME: Common interface for raw PCM decoders
package decode

// Decoder decodes raw PCM bytes to float32 samples
type Decoder interface {
	// Decode converts whole samples to float32. Trailing bytes that do not
	// form a complete sample are ignored; use Remainder to carry them.
	Decode(data []byte) ([]float32, error)

	// SampleWidth returns bytes per single-channel sample
	SampleWidth() int

	// Close releases decoder resources
	Close() error
}
