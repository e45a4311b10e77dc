// ABOUTME: Chunk sources feeding the player
// ABOUTME: Adapts io.Reader and plain functions to the read-next-chunk contract
package speak

import (
	"context"
	"io"
)

// DefaultChunkSize is the read size used by NewReaderSource
const DefaultChunkSize = 4096

// ChunkSource produces the ordered chunks of one byte stream.
// Next returns io.EOF after the last chunk.
type ChunkSource interface {
	Next(ctx context.Context) ([]byte, error)
}

// ChunkSourceFunc adapts a function to ChunkSource
type ChunkSourceFunc func(ctx context.Context) ([]byte, error)

func (f ChunkSourceFunc) Next(ctx context.Context) ([]byte, error) {
	return f(ctx)
}

// ReaderSource reads chunks of up to size bytes from an io.Reader
type ReaderSource struct {
	r   io.Reader
	buf []byte
	err error
}

// NewReaderSource creates a source over r
func NewReaderSource(r io.Reader, size int) *ReaderSource {
	if size <= 0 {
		size = DefaultChunkSize
	}
	return &ReaderSource{r: r, buf: make([]byte, size)}
}

// Next returns the next chunk. The returned slice is owned by the caller.
func (s *ReaderSource) Next(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.err != nil {
		return nil, s.err
	}

	n, err := s.r.Read(s.buf)
	if err != nil {
		s.err = err
	}
	if n > 0 {
		chunk := make([]byte, n)
		copy(chunk, s.buf[:n])
		return chunk, nil
	}
	return nil, err
}
