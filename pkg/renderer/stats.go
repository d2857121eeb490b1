package renderer

import "github.com/df07/go-pathtracer/pkg/core"

// RenderStats contains statistics about one rendered frame
type RenderStats struct {
	TotalPixels      int     // Number of pixels written
	Spans            int     // Number of spans rendered
	Workers          int     // Number of workers that shared the frame
	SamplesPerPixel  int     // Samples averaged into each pixel (the frame index)
	AverageLuminance float64 // Mean luminance of the displayed frame
	MaxLuminance     float64 // Brightest displayed pixel

	luminanceSum float64
}

// addPixel records one displayed pixel
func (rs *RenderStats) addPixel(color core.Vec3) {
	luminance := color.Luminance()
	rs.TotalPixels++
	rs.luminanceSum += luminance
	rs.MaxLuminance = max(rs.MaxLuminance, luminance)
}

// merge folds span statistics into the frame totals
func (rs *RenderStats) merge(other RenderStats) {
	rs.TotalPixels += other.TotalPixels
	rs.Spans += other.Spans
	rs.luminanceSum += other.luminanceSum
	rs.MaxLuminance = max(rs.MaxLuminance, other.MaxLuminance)
}

// finalize computes the averages once every span has been merged
func (rs *RenderStats) finalize(params RenderParams, workers int) {
	rs.Workers = workers
	rs.SamplesPerPixel = int(params.FrameIndex)
	if rs.TotalPixels > 0 {
		rs.AverageLuminance = rs.luminanceSum / float64(rs.TotalPixels)
	}
}

// StatsFromFrame computes statistics directly from a finished frame. Backends
// that do not trace on the CPU use it after reading pixels back.
func StatsFromFrame(fb *FrameBuffer, params RenderParams, workers int) RenderStats {
	var stats RenderStats
	for _, pixel := range fb.Pixels {
		stats.addPixel(pixel)
	}
	stats.finalize(params, workers)
	return stats
}
