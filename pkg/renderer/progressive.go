package renderer

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/df07/go-pathtracer/pkg/scene"
)

// ProgressiveConfig contains configuration for progressive rendering
type ProgressiveConfig struct {
	SpanSize      int    // Pixels per RNG stream (0 = DefaultSpanSize)
	Seed          uint32 // Base seed for every RNG stream
	ResetOnChange bool   // Restart accumulation when the scene is edited
}

// DefaultProgressiveConfig returns sensible default values
func DefaultProgressiveConfig() ProgressiveConfig {
	return ProgressiveConfig{
		SpanSize:      DefaultSpanSize,
		Seed:          1,
		ResetOnChange: true,
	}
}

// FrameResult contains the result of a single frame
type FrameResult struct {
	FrameIndex uint32 // Samples averaged into each pixel
	Sequence   uint32 // Frames rendered since the renderer was created
	Frame      *FrameBuffer
	Stats      RenderStats
	Duration   time.Duration
	IsLast     bool
}

// ProgressiveRenderer drives one backend frame after frame, resizing and
// resetting the accumulation buffer as the frame size and live parameters
// change.
type ProgressiveRenderer struct {
	scene   *scene.Scene
	backend Backend
	sizer   FrameSizer
	params  *LiveParams
	config  ProgressiveConfig
	logger  *zap.Logger

	mu             sync.Mutex // one frame at a time
	accum          *AccumulationBuffer
	frameIndex     uint32
	sequence       uint32
	lastAccumulate bool
	lastVersion    uint64
	resetsSeen     uint64
	resetPending   bool
}

// NewProgressiveRenderer creates a progressive renderer
func NewProgressiveRenderer(sc *scene.Scene, backend Backend, sizer FrameSizer, params *LiveParams, config ProgressiveConfig, logger *zap.Logger) *ProgressiveRenderer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProgressiveRenderer{
		scene:   sc,
		backend: backend,
		sizer:   sizer,
		params:  params,
		config:  config,
		logger:  logger,
		accum:   NewAccumulationBuffer(0, 0),
	}
}

// Backend returns the execution strategy in use
func (pr *ProgressiveRenderer) Backend() Backend {
	return pr.backend
}

// ResetAccumulation clears the running average before the next frame
func (pr *ProgressiveRenderer) ResetAccumulation() {
	pr.mu.Lock()
	pr.resetPending = true
	pr.mu.Unlock()
}

// FrameIndex returns the index of the last rendered frame
func (pr *ProgressiveRenderer) FrameIndex() uint32 {
	pr.mu.Lock()
	defer pr.mu.Unlock()
	return pr.frameIndex
}

// RenderFrame renders one complete frame synchronously
func (pr *ProgressiveRenderer) RenderFrame() (FrameResult, error) {
	pr.mu.Lock()
	defer pr.mu.Unlock()

	width, height := pr.sizer.FrameSize()
	if err := validateSize(width, height); err != nil {
		return FrameResult{}, err
	}

	// Everything the frame depends on is read exactly once here
	settings := pr.params.Snapshot()
	snap := pr.scene.Snapshot()
	resets := pr.params.resetCount()

	resized := pr.accum.Resize(width, height)
	restart := resized || pr.resetPending || resets != pr.resetsSeen || !pr.lastAccumulate
	if pr.config.ResetOnChange && snap.Version != pr.lastVersion {
		restart = true
	}

	switch {
	case !settings.Accumulate:
		pr.frameIndex = 1
	case restart:
		pr.accum.Reset()
		pr.frameIndex = 1
	default:
		pr.frameIndex++
	}
	pr.sequence++
	pr.lastAccumulate = settings.Accumulate
	pr.lastVersion = snap.Version
	pr.resetsSeen = resets
	pr.resetPending = false

	spheres, triangles := snap.Counts()
	job := &FrameJob{
		Scene:  snap,
		Camera: snap.Camera,
		Params: RenderParams{
			SphereCount:   spheres,
			TriangleCount: triangles,
			FrameIndex:    pr.frameIndex,
			Sequence:      pr.sequence,
			Accumulate:    settings.Accumulate,
			BounceLimit:   settings.BounceLimit,
			Background:    settings.Background,
			Seed:          pr.config.Seed,
		},
		Width:    width,
		Height:   height,
		SpanSize: pr.config.SpanSize,
		Accum:    pr.accum,
		Out:      NewFrameBuffer(width, height),
	}

	start := time.Now()
	stats, err := pr.backend.Render(job)
	if err != nil {
		pr.logger.Error("frame failed",
			zap.String("backend", pr.backend.Name()),
			zap.Uint32("sequence", pr.sequence),
			zap.Error(err))
		return FrameResult{}, err
	}
	duration := time.Since(start)

	pr.logger.Debug("frame completed",
		zap.String("backend", pr.backend.Name()),
		zap.Uint32("frame", pr.frameIndex),
		zap.Uint32("sequence", pr.sequence),
		zap.Int("width", width),
		zap.Int("height", height),
		zap.Duration("duration", duration))

	return FrameResult{
		FrameIndex: pr.frameIndex,
		Sequence:   pr.sequence,
		Frame:      job.Out,
		Stats:      stats,
		Duration:   duration,
	}, nil
}

// RenderProgressive renders frames until maxFrames is reached (0 = until ctx
// is cancelled) and streams them over the returned channels. Cancellation is
// checked between frames; a frame that has started always completes.
func (pr *ProgressiveRenderer) RenderProgressive(ctx context.Context, maxFrames int) (<-chan FrameResult, <-chan error) {
	frameChan := make(chan FrameResult, 1)
	errChan := make(chan error, 1)

	go func() {
		defer close(frameChan)
		defer close(errChan)

		pr.logger.Info("starting progressive rendering",
			zap.String("backend", pr.backend.Name()),
			zap.Int("maxFrames", maxFrames))

		for frame := 1; maxFrames <= 0 || frame <= maxFrames; frame++ {
			// Check if the caller went away before starting this frame
			select {
			case <-ctx.Done():
				pr.logger.Info("rendering cancelled", zap.Int("beforeFrame", frame))
				errChan <- ctx.Err()
				return
			default:
			}

			result, err := pr.RenderFrame()
			if err != nil {
				errChan <- err
				return
			}
			result.IsLast = frame == maxFrames

			select {
			case frameChan <- result:
			case <-ctx.Done():
				return
			}
		}
	}()

	return frameChan, errChan
}
