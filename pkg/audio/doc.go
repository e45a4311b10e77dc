// ABOUTME: Audio fundamentals package providing core types and utilities
// ABOUTME: Defines Format, Encoding, Segment types and sample conversion functions
// Package audio provides fundamental audio types for streaming TTS playback.
//
// This package defines core types used throughout the smalltalk library:
//   - Format: Describes the raw stream format (encoding, sample rate, channels)
//   - Segment: A run of decoded float32 samples handed to an audio sink
//
// It also provides utilities for converting between sample representations:
//   - float32 ↔ int16 conversions
//   - frame count ↔ device time conversions
//
// Example:
//
//	format := audio.Format{
//	    Encoding:   audio.EncodingFloat32LE,
//	    SampleRate: 44100,
//	    Channels:   1,
//	}
//
//	width := format.Encoding.SampleWidth() // 4
package audio
