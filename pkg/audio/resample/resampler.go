// ABOUTME: Simple linear resampler for converting audio sample rates
// ABOUTME: Used by output backends whose device rate differs from the stream rate
package resample

// Resampler performs linear interpolation to convert between sample rates
type Resampler struct {
	inputRate  int
	outputRate int
	channels   int
	ratio      float64
}

// New creates a new resampler
func New(inputRate, outputRate, channels int) *Resampler {
	if channels <= 0 {
		channels = 1
	}
	return &Resampler{
		inputRate:  inputRate,
		outputRate: outputRate,
		channels:   channels,
		ratio:      float64(inputRate) / float64(outputRate),
	}
}

// Resample converts a complete block of interleaved samples to the output rate.
// Each call is independent: segments are resampled whole, so no state carries over.
func (r *Resampler) Resample(input []float32) []float32 {
	if r.inputRate == r.outputRate {
		if len(input) == 0 {
			return nil
		}
		out := make([]float32, len(input))
		copy(out, input)
		return out
	}
	return r.ResampleTo(input, r.OutputFrames(len(input)/r.channels))
}

// ResampleTo converts a block of interleaved samples into exactly outputFrames
// frames at the output rate. Callers placing consecutive blocks use it to carry
// the fractional frame that OutputFrames rounds away.
func (r *Resampler) ResampleTo(input []float32, outputFrames int) []float32 {
	inputFrames := len(input) / r.channels
	if inputFrames == 0 || outputFrames <= 0 {
		return nil
	}
	output := make([]float32, outputFrames*r.channels)

	for outIdx := 0; outIdx < outputFrames; outIdx++ {
		inputPos := float64(outIdx) * r.ratio
		inputIdx := int(inputPos)
		frac := float32(inputPos - float64(inputIdx))

		next := inputIdx + 1
		if next >= inputFrames {
			next = inputFrames - 1
		}
		if inputIdx >= inputFrames {
			inputIdx = inputFrames - 1
		}

		for ch := 0; ch < r.channels; ch++ {
			sample1 := input[inputIdx*r.channels+ch]
			sample2 := input[next*r.channels+ch]
			output[outIdx*r.channels+ch] = sample1*(1-frac) + sample2*frac
		}
	}

	return output
}

// OutputFrames calculates how many output frames a block of input frames produces
func (r *Resampler) OutputFrames(inputFrames int) int {
	return int(int64(inputFrames) * int64(r.outputRate) / int64(r.inputRate))
}
