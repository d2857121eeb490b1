package renderer

import "github.com/df07/go-pathtracer/pkg/core"

// AccumulationBuffer keeps a per-pixel running sum of radiance across frames.
// Concurrent Accumulate calls are safe as long as they touch disjoint indices.
type AccumulationBuffer struct {
	width  int
	height int
	sums   []core.Vec3
}

// NewAccumulationBuffer allocates a cleared buffer
func NewAccumulationBuffer(width, height int) *AccumulationBuffer {
	return &AccumulationBuffer{
		width:  width,
		height: height,
		sums:   make([]core.Vec3, width*height),
	}
}

// Width returns the buffer width in pixels
func (ab *AccumulationBuffer) Width() int { return ab.width }

// Height returns the buffer height in pixels
func (ab *AccumulationBuffer) Height() int { return ab.height }

// Resize reallocates and clears the buffer when the dimensions change.
// It reports whether a resize happened.
func (ab *AccumulationBuffer) Resize(width, height int) bool {
	if width == ab.width && height == ab.height {
		return false
	}
	ab.width = width
	ab.height = height
	ab.sums = make([]core.Vec3, width*height)
	return true
}

// Reset clears every running sum
func (ab *AccumulationBuffer) Reset() {
	clear(ab.sums)
}

// Accumulate folds sample into the pixel at index and returns the color to
// display. While accumulating the result is the mean of all samples since the
// last reset; otherwise the sum is dropped and the sample is returned as is.
func (ab *AccumulationBuffer) Accumulate(index int, sample core.Vec3, accumulate bool, frameIndex uint32) core.Vec3 {
	if !accumulate {
		ab.sums[index] = core.Vec3{}
		return sample
	}

	if frameIndex == 0 {
		frameIndex = 1
	}
	ab.sums[index] = ab.sums[index].Add(sample)
	return ab.sums[index].Multiply(1.0 / float64(frameIndex))
}

// Sum returns the running sum for index
func (ab *AccumulationBuffer) Sum(index int) core.Vec3 {
	return ab.sums[index]
}
