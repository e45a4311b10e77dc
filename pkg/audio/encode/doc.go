// ABOUTME: Audio encoder package for raw PCM output
// ABOUTME: Provides Encoder interface and the PCM implementation
// Package encode converts float32 samples back to raw PCM bytes.
//
// Supports: pcm_f32le, pcm_s16le
//
// Used by output backends that read byte streams and by test sources
// that synthesize a TTS-like byte stream.
//
// Example:
//
//	data := encode.Float32LE(samples)
package encode
