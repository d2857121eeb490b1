package renderer

import (
	"errors"
	"fmt"

	"github.com/df07/go-pathtracer/pkg/core"
)

// ErrInvalidFrame is returned for non-positive frame sizes or mismatched buffers
var ErrInvalidFrame = errors.New("invalid frame")

// FrameBuffer holds linear radiance for a width x height frame in row-major
// order: index = row*Width + col.
type FrameBuffer struct {
	Width  int
	Height int
	Pixels []core.Vec3
}

// NewFrameBuffer allocates a black frame
func NewFrameBuffer(width, height int) *FrameBuffer {
	return &FrameBuffer{
		Width:  width,
		Height: height,
		Pixels: make([]core.Vec3, width*height),
	}
}

// At returns the pixel at (row, col)
func (fb *FrameBuffer) At(row, col int) core.Vec3 {
	return fb.Pixels[row*fb.Width+col]
}

// RenderParams are the per-frame parameters handed to a backend. They are
// fixed for the duration of one frame.
type RenderParams struct {
	SphereCount   int
	TriangleCount int
	FrameIndex    uint32 // Number of samples averaged into each pixel, >= 1
	Sequence      uint32 // Frames rendered so far, drives RNG decorrelation
	Accumulate    bool
	BounceLimit   int
	Background    core.Vec3
	Seed          uint32
}

// FrameSizer reports the current output dimensions. It is asked once per frame.
type FrameSizer interface {
	FrameSize() (width, height int)
}

// FixedSize is a FrameSizer that never changes
type FixedSize struct {
	Width, Height int
}

// FrameSize implements FrameSizer
func (s FixedSize) FrameSize() (int, int) {
	return s.Width, s.Height
}

// FrameSizeFunc adapts a function to FrameSizer
type FrameSizeFunc func() (int, int)

// FrameSize implements FrameSizer
func (f FrameSizeFunc) FrameSize() (int, int) {
	return f()
}

func validateSize(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: size %dx%d", ErrInvalidFrame, width, height)
	}
	return nil
}
