package renderer

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// ParallelBackend spreads the spans of each frame over a long-lived worker
// pool. Output is bit-identical to SequentialBackend for the same job.
type ParallelBackend struct {
	mu     sync.Mutex // one frame at a time
	pool   *WorkerPool
	closed bool
	logger *zap.Logger
}

// NewParallelBackend starts a pool of numWorkers workers (0 = CPU count)
func NewParallelBackend(numWorkers int, logger *zap.Logger) *ParallelBackend {
	if logger == nil {
		logger = zap.NewNop()
	}

	pool := NewWorkerPool(numWorkers)
	pool.Start()
	logger.Info("worker pool started", zap.Int("workers", pool.GetNumWorkers()))

	return &ParallelBackend{pool: pool, logger: logger}
}

// Name implements Backend
func (pb *ParallelBackend) Name() string { return "parallel" }

// Workers returns the pool size
func (pb *ParallelBackend) Workers() int { return pb.pool.GetNumWorkers() }

// Render implements Backend
func (pb *ParallelBackend) Render(job *FrameJob) (RenderStats, error) {
	pb.mu.Lock()
	defer pb.mu.Unlock()

	if pb.closed {
		return RenderStats{}, ErrBackendClosed
	}
	if err := job.Validate(); err != nil {
		return RenderStats{}, err
	}

	spans := PlanSpans(job.Width, job.Height, job.SpanSize)
	tracer := job.tracer()

	// Submit from a separate goroutine so the bounded queues cannot deadlock
	// against result collection
	go func() {
		for i, span := range spans {
			pb.pool.SubmitTask(SpanTask{Job: job, Span: span, Tracer: tracer, TaskID: i})
		}
	}()

	results := make([]RenderStats, len(spans))
	var firstErr error
	for i := 0; i < len(spans); i++ {
		result, ok := pb.pool.GetResult()
		if !ok {
			return RenderStats{}, fmt.Errorf("worker pool closed unexpectedly")
		}
		if result.Error != nil {
			// Keep draining so no worker is left blocked on the result queue
			if firstErr == nil {
				firstErr = result.Error
			}
			continue
		}
		results[result.TaskID] = result.Stats
	}
	if firstErr != nil {
		pb.logger.Error("span failed", zap.Error(firstErr))
		return RenderStats{}, firstErr
	}

	// Merge in plan order so the totals match the sequential backend exactly
	var stats RenderStats
	for _, spanStats := range results {
		stats.merge(spanStats)
	}
	stats.finalize(job.Params, pb.pool.GetNumWorkers())
	return stats, nil
}

// Close stops the worker pool. It is safe to call more than once.
func (pb *ParallelBackend) Close() error {
	pb.mu.Lock()
	defer pb.mu.Unlock()

	if pb.closed {
		return nil
	}
	pb.closed = true
	pb.pool.Stop()
	pb.logger.Info("worker pool stopped")
	return nil
}
