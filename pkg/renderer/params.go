package renderer

import (
	"errors"
	"fmt"
	"sync"

	"github.com/df07/go-pathtracer/pkg/core"
)

// ErrInvalidParams is returned when a live parameter is rejected
var ErrInvalidParams = errors.New("invalid render parameter")

// Settings is a consistent copy of the live parameters
type Settings struct {
	BounceLimit int       `json:"bounceLimit"`
	Accumulate  bool      `json:"accumulate"`
	Background  core.Vec3 `json:"background"`
}

// Validate checks the bounce limit and background
func (s Settings) Validate() error {
	if s.BounceLimit < 1 {
		return fmt.Errorf("%w: bounce limit %d must be at least 1", ErrInvalidParams, s.BounceLimit)
	}
	if !s.Background.IsFinite() || s.Background.X < 0 || s.Background.Y < 0 || s.Background.Z < 0 {
		return fmt.Errorf("%w: background %v must be non-negative", ErrInvalidParams, s.Background)
	}
	return nil
}

// LiveParams holds the parameters an editor may change between frames.
// The renderer reads them once at the start of every frame.
type LiveParams struct {
	mu       sync.RWMutex
	settings Settings
	resets   uint64
}

// NewLiveParams creates live parameters from validated initial settings
func NewLiveParams(initial Settings) (*LiveParams, error) {
	if err := initial.Validate(); err != nil {
		return nil, err
	}
	return &LiveParams{settings: initial}, nil
}

// Snapshot returns the current settings
func (lp *LiveParams) Snapshot() Settings {
	lp.mu.RLock()
	defer lp.mu.RUnlock()
	return lp.settings
}

// Update replaces all settings at once
func (lp *LiveParams) Update(s Settings) error {
	if err := s.Validate(); err != nil {
		return err
	}
	lp.mu.Lock()
	lp.settings = s
	lp.mu.Unlock()
	return nil
}

// SetBounceLimit changes the maximum number of bounces per path
func (lp *LiveParams) SetBounceLimit(limit int) error {
	return lp.modify(func(s *Settings) { s.BounceLimit = limit })
}

// SetAccumulate toggles progressive accumulation
func (lp *LiveParams) SetAccumulate(accumulate bool) error {
	return lp.modify(func(s *Settings) { s.Accumulate = accumulate })
}

// SetBackground changes the sky color
func (lp *LiveParams) SetBackground(background core.Vec3) error {
	return lp.modify(func(s *Settings) { s.Background = background })
}

// RequestReset asks the renderer to clear accumulation before the next frame
func (lp *LiveParams) RequestReset() {
	lp.mu.Lock()
	lp.resets++
	lp.mu.Unlock()
}

// resetCount returns how many resets were requested so far
func (lp *LiveParams) resetCount() uint64 {
	lp.mu.RLock()
	defer lp.mu.RUnlock()
	return lp.resets
}

func (lp *LiveParams) modify(fn func(*Settings)) error {
	lp.mu.Lock()
	defer lp.mu.Unlock()

	next := lp.settings
	fn(&next)
	if err := next.Validate(); err != nil {
		return err
	}
	lp.settings = next
	return nil
}
