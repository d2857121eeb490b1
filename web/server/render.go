package server

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/df07/go-pathtracer/pkg/renderer"
)

// progressLogInterval is how often a running stream reports to the console
const progressLogInterval = 10

// FrameUpdate represents a single rendered frame sent via SSE
type FrameUpdate struct {
	Scene      string `json:"scene"`
	FrameIndex uint32 `json:"frameIndex"` // Samples averaged into each pixel
	Sequence   uint32 `json:"sequence"`
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	ImageData  string `json:"imageData"` // Base64 encoded PNG
	Stats      Stats  `json:"stats"`
	DurationMs int64  `json:"durationMs"`
	ElapsedMs  int64  `json:"elapsedMs"`
	IsComplete bool   `json:"isComplete"`
}

// Stats represents render statistics for one frame
type Stats struct {
	TotalPixels      int     `json:"totalPixels"`
	Spans            int     `json:"spans"`
	Workers          int     `json:"workers"`
	SamplesPerPixel  int     `json:"samplesPerPixel"`
	AverageLuminance float64 `json:"averageLuminance"`
	MaxLuminance     float64 `json:"maxLuminance"`
}

// sseWriter writes Server-Sent Events. Only the handler goroutine uses it.
type sseWriter struct {
	w       http.ResponseWriter
	flusher http.Flusher
}

func (s *sseWriter) send(event, data string) error {
	if _, err := fmt.Fprintf(s.w, "event: %s\ndata: %s\n\n", event, data); err != nil {
		return err
	}
	s.flusher.Flush()
	return nil
}

func (s *sseWriter) sendJSON(event string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.send(event, string(data))
}

// handleRender streams progressively accumulated frames via SSE until the
// requested number of frames is reached (frames=0 streams until the client
// disconnects). Edits made through the other endpoints apply from the next
// frame on.
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, fmt.Errorf("streaming not supported"))
		return
	}

	maxFrames, err := parseIntParam(r.URL.Query(), "frames", s.cfg.Frames, 0, 100000)
	if err != nil {
		writeError(w, err)
		return
	}

	setSSEHeaders(w)
	ctx := r.Context()
	sse := &sseWriter{w: w, flusher: flusher}

	consoleChan := make(chan ConsoleMessage, 50)
	renderID := fmt.Sprintf("render-%d", time.Now().UnixNano())
	log := WithConsole(s.logger, zapcore.InfoLevel, consoleChan).With(zap.String("render", renderID))

	log.Info("render started",
		zap.String("backend", s.backend.Name()),
		zap.Int("maxFrames", maxFrames))

	startTime := time.Now()
	for frame := 1; maxFrames == 0 || frame <= maxFrames; frame++ {
		// Client disconnected
		if ctx.Err() != nil {
			s.logger.Info("render stream closed", zap.String("render", renderID), zap.Int("frames", frame-1))
			return
		}

		result, sceneID, err := s.renderFrame()
		if err != nil {
			log.Error("frame failed", zap.Error(err))
			drainConsole(sse, consoleChan)
			sse.send("error", err.Error())
			return
		}

		if frame == 1 || frame%progressLogInterval == 0 {
			log.Info("frame rendered",
				zap.String("scene", sceneID),
				zap.Uint32("samples", result.FrameIndex),
				zap.Duration("duration", result.Duration))
		}

		update, err := newFrameUpdate(result, sceneID, frame == maxFrames, startTime)
		if err != nil {
			log.Error("failed to encode frame", zap.Error(err))
			drainConsole(sse, consoleChan)
			sse.send("error", err.Error())
			return
		}

		drainConsole(sse, consoleChan)
		if err := sse.sendJSON("frame", update); err != nil {
			return
		}
	}

	log.Info("render completed",
		zap.Int("frames", maxFrames),
		zap.Duration("elapsed", time.Since(startTime)))
	drainConsole(sse, consoleChan)
	sse.send("complete", "Rendering completed")
}

// setSSEHeaders sets the required headers for Server-Sent Events
func setSSEHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")
}

// drainConsole forwards every queued console message without blocking
func drainConsole(sse *sseWriter, consoleChan <-chan ConsoleMessage) {
	for {
		select {
		case msg := <-consoleChan:
			if err := sse.sendJSON("console", msg); err != nil {
				return
			}
		default:
			return
		}
	}
}

// newFrameUpdate encodes a frame as a base64 PNG update
func newFrameUpdate(result renderer.FrameResult, sceneID string, isLast bool, startTime time.Time) (FrameUpdate, error) {
	imageData, err := frameToBase64PNG(result.Frame)
	if err != nil {
		return FrameUpdate{}, fmt.Errorf("failed to encode image: %w", err)
	}

	return FrameUpdate{
		Scene:      sceneID,
		FrameIndex: result.FrameIndex,
		Sequence:   result.Sequence,
		Width:      result.Frame.Width,
		Height:     result.Frame.Height,
		ImageData:  imageData,
		Stats: Stats{
			TotalPixels:      result.Stats.TotalPixels,
			Spans:            result.Stats.Spans,
			Workers:          result.Stats.Workers,
			SamplesPerPixel:  result.Stats.SamplesPerPixel,
			AverageLuminance: result.Stats.AverageLuminance,
			MaxLuminance:     result.Stats.MaxLuminance,
		},
		DurationMs: result.Duration.Milliseconds(),
		ElapsedMs:  time.Since(startTime).Milliseconds(),
		IsComplete: isLast,
	}, nil
}

// frameToBase64PNG converts a frame to base64-encoded PNG
func frameToBase64PNG(fb *renderer.FrameBuffer) (string, error) {
	var buf bytes.Buffer
	if err := fb.WritePNG(&buf); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
