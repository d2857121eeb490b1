package renderer

// SequentialBackend renders every span in order on the calling goroutine
type SequentialBackend struct {
	closed bool
}

// NewSequentialBackend creates a single-threaded backend
func NewSequentialBackend() *SequentialBackend {
	return &SequentialBackend{}
}

// Name implements Backend
func (sb *SequentialBackend) Name() string { return "sequential" }

// Render implements Backend
func (sb *SequentialBackend) Render(job *FrameJob) (RenderStats, error) {
	if sb.closed {
		return RenderStats{}, ErrBackendClosed
	}
	if err := job.Validate(); err != nil {
		return RenderStats{}, err
	}

	tracer := job.tracer()
	var stats RenderStats
	for _, span := range PlanSpans(job.Width, job.Height, job.SpanSize) {
		spanStats, err := renderSpan(job, span, tracer)
		if err != nil {
			return RenderStats{}, err
		}
		stats.merge(spanStats)
	}

	stats.finalize(job.Params, 1)
	return stats, nil
}

// Close implements Backend
func (sb *SequentialBackend) Close() error {
	sb.closed = true
	return nil
}
