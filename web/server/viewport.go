package server

import (
	"fmt"
	"sync"
)

// MaxViewportSize bounds each viewport dimension
const MaxViewportSize = 4096

// Viewport is a renderer.FrameSizer the client can resize between frames
type Viewport struct {
	mu            sync.RWMutex
	width, height int
}

// NewViewport creates a viewport of the given size
func NewViewport(width, height int) (*Viewport, error) {
	if err := validateViewport(width, height); err != nil {
		return nil, err
	}
	return &Viewport{width: width, height: height}, nil
}

// FrameSize implements renderer.FrameSizer
func (v *Viewport) FrameSize() (int, int) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.width, v.height
}

// Resize changes the size used by the next frame
func (v *Viewport) Resize(width, height int) error {
	if err := validateViewport(width, height); err != nil {
		return err
	}
	v.mu.Lock()
	v.width, v.height = width, height
	v.mu.Unlock()
	return nil
}

func validateViewport(width, height int) error {
	if width < 1 || height < 1 || width > MaxViewportSize || height > MaxViewportSize {
		return fmt.Errorf("%w: viewport %dx%d must be within 1..%d", errBadRequest, width, height, MaxViewportSize)
	}
	return nil
}
