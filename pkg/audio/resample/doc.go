// ABOUTME: Audio resampling package
// ABOUTME: Provides linear interpolation resampling for float32 audio
// Package resample converts float32 audio between sample rates.
//
// The oto backend allows a single device context per process; when a later
// session streams at a different rate, its segments are resampled to the
// context rate instead of reopening the device.
//
// Example:
//
//	r := resample.New(22050, 44100, 1)
//	out := r.Resample(samples)
package resample
