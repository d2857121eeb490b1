package renderer

import (
	"errors"
	"fmt"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/geometry"
	"github.com/df07/go-pathtracer/pkg/integrator"
	"github.com/df07/go-pathtracer/pkg/scene"
)

// DefaultSpanSize is the number of pixels that share one RNG stream
const DefaultSpanSize = 4096

// ErrBackendClosed is returned by Render after Close
var ErrBackendClosed = errors.New("backend closed")

// Backend is an execution strategy for one frame. Implementations must fill
// every pixel of job.Out (when non-nil) before returning. CPU backends keep
// the running sums in job.Accum; a GPU backend may keep them on the device.
type Backend interface {
	Name() string
	Render(job *FrameJob) (RenderStats, error)
	Close() error
}

// FrameJob is everything a backend needs to render one frame
type FrameJob struct {
	Scene    *scene.Snapshot
	Camera   geometry.Camera
	Params   RenderParams
	Width    int
	Height   int
	SpanSize int // Pixels per RNG stream, 0 means DefaultSpanSize
	Accum    *AccumulationBuffer
	Out      *FrameBuffer
}

// Validate checks the job's buffers match its dimensions
func (job *FrameJob) Validate() error {
	if err := validateSize(job.Width, job.Height); err != nil {
		return err
	}
	if job.Scene == nil {
		return fmt.Errorf("%w: no scene snapshot", ErrInvalidFrame)
	}
	if job.Accum == nil || job.Accum.Width() != job.Width || job.Accum.Height() != job.Height {
		return fmt.Errorf("%w: accumulation buffer does not match %dx%d", ErrInvalidFrame, job.Width, job.Height)
	}
	if job.Out != nil && (job.Out.Width != job.Width || job.Out.Height != job.Height) {
		return fmt.Errorf("%w: output buffer does not match %dx%d", ErrInvalidFrame, job.Width, job.Height)
	}
	return nil
}

// tracer builds the integrator for this frame's parameters
func (job *FrameJob) tracer() integrator.Integrator {
	return integrator.NewPathTracer(job.Params.BounceLimit, job.Params.Background)
}

// Span is a contiguous range [Start, End) of flattened pixel indices. Each
// span owns one RNG stream, so the image does not depend on how spans are
// scheduled across workers.
type Span struct {
	ID    int
	Start int
	End   int
}

// PlanSpans splits a width x height frame into spans of at most spanSize pixels
func PlanSpans(width, height, spanSize int) []Span {
	if spanSize <= 0 {
		spanSize = DefaultSpanSize
	}
	total := width * height
	spans := make([]Span, 0, (total+spanSize-1)/spanSize)
	for start, id := 0, 0; start < total; start, id = start+spanSize, id+1 {
		spans = append(spans, Span{ID: id, Start: start, End: min(start+spanSize, total)})
	}
	return spans
}

// spanSampler returns the RNG stream for span in the current frame
func spanSampler(params RenderParams, span Span) *core.Sampler {
	return core.NewSampler(core.MixSeed(params.Seed, params.Sequence), uint32(span.ID))
}

// renderSpan traces, accumulates and stores every pixel of span
func renderSpan(job *FrameJob, span Span, tracer integrator.Integrator) (RenderStats, error) {
	if span.Start < 0 || span.End > job.Width*job.Height || span.Start > span.End {
		return RenderStats{}, fmt.Errorf("%w: span %d [%d,%d) outside frame", ErrInvalidFrame, span.ID, span.Start, span.End)
	}

	sampler := spanSampler(job.Params, span)
	prims := job.Scene.Primitives
	stats := RenderStats{Spans: 1}

	for index := span.Start; index < span.End; index++ {
		row, col := index/job.Width, index%job.Width
		ray := job.Camera.GetRay(row, col, job.Width, job.Height)

		sample := tracer.RayColor(ray, prims, sampler)
		color := job.Accum.Accumulate(index, sample, job.Params.Accumulate, job.Params.FrameIndex)
		if job.Out != nil {
			job.Out.Pixels[index] = color
		}
		stats.addPixel(color)
	}

	return stats, nil
}
