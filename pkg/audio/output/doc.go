// ABOUTME: Audio output package for playing scheduled segments
// ABOUTME: Provides the Sink interface with oto, PortAudio and fake implementations
// Package output provides audio sinks that play segments at scheduled times.
//
// A Sink exposes a small capability set: allocate a segment buffer, write
// samples into it, wrap it as a playable source and start that source at a
// device time. Oto and PortAudio pull audio from a frame-accurate Timeline,
// so consecutive sources scheduled back to back play without gaps.
//
// Fake records started sources against an injectable clock for tests.
//
// PortAudio requires building with -tags portaudio.
//
// Example:
//
//	sink, err := output.Open("oto", 44100, 1)
//	buf, err := sink.CreateSegmentBuffer(1, len(samples), 44100)
//	err = sink.WriteSamples(buf, samples)
//	src, err := sink.CreatePlayableSource(buf)
//	err = sink.Start(src, sink.Now())
package output
