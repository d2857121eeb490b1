// Package glcompute renders frames with an OpenGL 4.3 compute shader. All GL
// calls run on one goroutine locked to its OS thread; Render hands frames to
// it over a channel.
package glcompute

import (
	"fmt"
	"runtime"
	"sync"

	"go.uber.org/zap"

	"github.com/df07/go-pathtracer/pkg/renderer"
)

// Options configures the compute backend
type Options struct {
	// Readback copies the image into FrameJob.Out after every frame. Without
	// it the result only lives in the texture returned by Texture.
	Readback bool
}

// DefaultOptions reads every frame back to the CPU
func DefaultOptions() Options {
	return Options{Readback: true}
}

// renderRequest is sent from callers to the dedicated GL goroutine
type renderRequest struct {
	job  *renderer.FrameJob
	done chan renderReply
}

type renderReply struct {
	stats renderer.RenderStats
	err   error
}

// Backend is a renderer.Backend backed by a GL compute shader. Accumulation
// lives in the bound rgba32f image rather than in FrameJob.Accum.
type Backend struct {
	options  Options
	logger   *zap.Logger
	requests chan renderRequest
	stopped  chan struct{}
	texture  uint32

	mu     sync.Mutex
	closed bool
}

// New creates the hidden GL context, compiles the compute shader and
// allocates buffers. Any failure is returned here; the backend is unusable
// and nothing is left running.
func New(options Options, logger *zap.Logger) (*Backend, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	b := &Backend{
		options:  options,
		logger:   logger,
		requests: make(chan renderRequest),
		stopped:  make(chan struct{}),
	}

	ready := make(chan error, 1)
	go b.run(ready)
	if err := <-ready; err != nil {
		return nil, err
	}
	return b, nil
}

// run owns the GL context and processes all render requests.
// It always runs on a single locked OS thread, which OpenGL requires.
func (b *Backend) run(ready chan<- error) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	defer close(b.stopped)

	ctx, err := newGLContext(b.logger)
	if err != nil {
		b.logger.Error("GPU initialization failed", zap.Error(err))
		ready <- err
		return
	}
	defer ctx.destroy()

	b.texture = ctx.texture
	ready <- nil

	for req := range b.requests {
		stats, err := ctx.render(req.job, b.options.Readback)
		if err != nil {
			b.logger.Error("GPU render failed", zap.Error(err))
		}
		req.done <- renderReply{stats: stats, err: err}
	}
}

// Name implements renderer.Backend
func (b *Backend) Name() string { return "gpu" }

// Texture returns the GL name of the rgba32f image the shader writes. It is
// only meaningful to contexts sharing objects with the backend's context.
func (b *Backend) Texture() uint32 { return b.texture }

// Render implements renderer.Backend
func (b *Backend) Render(job *renderer.FrameJob) (renderer.RenderStats, error) {
	if err := job.Validate(); err != nil {
		return renderer.RenderStats{}, err
	}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return renderer.RenderStats{}, renderer.ErrBackendClosed
	}
	done := make(chan renderReply, 1)
	b.requests <- renderRequest{job: job, done: done}
	b.mu.Unlock()

	reply := <-done
	if reply.err != nil {
		return renderer.RenderStats{}, fmt.Errorf("gpu frame %d: %w", job.Params.Sequence, reply.err)
	}
	return reply.stats, nil
}

// Close releases the GL context. It is safe to call more than once.
func (b *Backend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true
	close(b.requests)
	<-b.stopped
	b.logger.Info("GPU backend stopped")
	return nil
}
