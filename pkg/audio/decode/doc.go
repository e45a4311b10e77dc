// ABOUTME: Audio decoder package for raw PCM streams
// ABOUTME: Provides Decoder interface, PCM decoder and the chunk Remainder buffer
// Package decode turns raw PCM bytes into float32 samples.
//
// Supports: pcm_f32le and pcm_s16le, single channel.
//
// Network chunks carry no alignment guarantee, so a sample may be split
// across two chunks. Remainder keeps the split bytes and decodes them once
// the next chunk arrives.
//
// Example:
//
//	rem, err := decode.NewRemainder(format)
//	samples, err := rem.Merge(chunk)
//	tail, padded, _, err := rem.Drain(decode.TrailingPad)
package decode
