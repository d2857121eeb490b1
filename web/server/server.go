package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"sync"

	"go.uber.org/zap"

	"github.com/df07/go-pathtracer/pkg/config"
	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/geometry"
	"github.com/df07/go-pathtracer/pkg/material"
	"github.com/df07/go-pathtracer/pkg/renderer"
	"github.com/df07/go-pathtracer/pkg/scene"
)

// errBadRequest marks malformed client input
var errBadRequest = errors.New("bad request")

// Server exposes one interactive render session over HTTP. The scene, the
// live parameters and the viewport may be edited while a render stream is
// running; the next frame picks the edits up.
type Server struct {
	cfg     config.Config
	backend renderer.Backend
	logger  *zap.Logger
	mux     *http.ServeMux

	params   *renderer.LiveParams
	viewport *Viewport

	mu      sync.RWMutex
	session *session

	frameMu sync.Mutex // backends render one frame at a time
}

// session is the scene currently being rendered
type session struct {
	sceneID     string
	scene       *scene.Scene
	progressive *renderer.ProgressiveRenderer
}

// NewServer creates a server rendering cfg.Scene with backend
func NewServer(cfg config.Config, backend renderer.Backend, logger *zap.Logger) (*Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	params, err := renderer.NewLiveParams(cfg.Settings())
	if err != nil {
		return nil, err
	}
	viewport, err := NewViewport(cfg.Width, cfg.Height)
	if err != nil {
		return nil, err
	}

	s := &Server{
		cfg:      cfg,
		backend:  backend,
		logger:   logger,
		mux:      http.NewServeMux(),
		params:   params,
		viewport: viewport,
	}
	if err := s.loadScene(cfg.Scene); err != nil {
		return nil, err
	}

	s.mux.HandleFunc("GET /api/health", s.handleHealth)
	s.mux.HandleFunc("GET /api/scenes", s.handleScenes)
	s.mux.HandleFunc("POST /api/scene", s.handleLoadScene)
	s.mux.HandleFunc("GET /api/params", s.handleGetParams)
	s.mux.HandleFunc("POST /api/params", s.handleSetParams)
	s.mux.HandleFunc("POST /api/reset", s.handleReset)
	s.mux.HandleFunc("GET /api/primitives", s.handlePrimitives)
	s.mux.HandleFunc("PUT /api/primitives/{index}/material", s.handleSetMaterial)
	s.mux.HandleFunc("GET /api/render", s.handleRender)
	s.mux.HandleFunc("GET /api/inspect", s.handleInspect)
	return s, nil
}

// Handler returns the HTTP handler for all endpoints
func (s *Server) Handler() http.Handler {
	return s.mux
}

// loadScene replaces the session with a fresh preset
func (s *Server) loadScene(id string) error {
	sc, err := scene.NewPreset(id)
	if err != nil {
		return err
	}
	pr := renderer.NewProgressiveRenderer(sc, s.backend, s.viewport, s.params, s.cfg.ProgressiveConfig(), s.logger)

	s.mu.Lock()
	s.session = &session{sceneID: id, scene: sc, progressive: pr}
	s.mu.Unlock()

	s.logger.Info("scene loaded", zap.String("scene", id), zap.Int("primitives", sc.Len()))
	return nil
}

func (s *Server) current() *session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session
}

// renderFrame renders the next frame of the current session
func (s *Server) renderFrame() (renderer.FrameResult, string, error) {
	s.frameMu.Lock()
	defer s.frameMu.Unlock()

	sess := s.current()
	result, err := sess.progressive.RenderFrame()
	return result, sess.sceneID, err
}

// handleHealth provides a simple health check endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"backend": s.backend.Name(),
	})
}

// ScenesResponse lists the presets and the one being rendered
type ScenesResponse struct {
	Current string             `json:"current"`
	Scenes  []scene.PresetInfo `json:"scenes"`
}

func (s *Server) handleScenes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, ScenesResponse{
		Current: s.current().sceneID,
		Scenes:  scene.Presets(),
	})
}

// LoadSceneRequest selects a preset by id
type LoadSceneRequest struct {
	ID string `json:"id"`
}

func (s *Server) handleLoadScene(w http.ResponseWriter, r *http.Request) {
	var req LoadSceneRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := s.loadScene(req.ID); err != nil {
		writeError(w, err)
		return
	}
	s.handleScenes(w, r)
}

// ParamsResponse describes the live render parameters
type ParamsResponse struct {
	Scene       string     `json:"scene"`
	Backend     string     `json:"backend"`
	Width       int        `json:"width"`
	Height      int        `json:"height"`
	BounceLimit int        `json:"bounceLimit"`
	Accumulate  bool       `json:"accumulate"`
	Background  [3]float64 `json:"background"`
	FrameIndex  uint32     `json:"frameIndex"`
}

// ParamsRequest is a partial update; omitted fields keep their value
type ParamsRequest struct {
	Width       *int        `json:"width,omitempty"`
	Height      *int        `json:"height,omitempty"`
	BounceLimit *int        `json:"bounceLimit,omitempty"`
	Accumulate  *bool       `json:"accumulate,omitempty"`
	Background  *[3]float64 `json:"background,omitempty"`
}

func (s *Server) paramsResponse() ParamsResponse {
	sess := s.current()
	settings := s.params.Snapshot()
	width, height := s.viewport.FrameSize()
	return ParamsResponse{
		Scene:       sess.sceneID,
		Backend:     s.backend.Name(),
		Width:       width,
		Height:      height,
		BounceLimit: settings.BounceLimit,
		Accumulate:  settings.Accumulate,
		Background:  [3]float64{settings.Background.X, settings.Background.Y, settings.Background.Z},
		FrameIndex:  sess.progressive.FrameIndex(),
	}
}

func (s *Server) handleGetParams(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.paramsResponse())
}

func (s *Server) handleSetParams(w http.ResponseWriter, r *http.Request) {
	var req ParamsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	// Validate everything before applying anything
	settings := s.params.Snapshot()
	if req.BounceLimit != nil {
		settings.BounceLimit = *req.BounceLimit
	}
	if req.Accumulate != nil {
		settings.Accumulate = *req.Accumulate
	}
	if req.Background != nil {
		settings.Background = core.NewVec3(req.Background[0], req.Background[1], req.Background[2])
	}
	if err := settings.Validate(); err != nil {
		writeError(w, err)
		return
	}

	width, height := s.viewport.FrameSize()
	if req.Width != nil {
		width = *req.Width
	}
	if req.Height != nil {
		height = *req.Height
	}
	if err := validateViewport(width, height); err != nil {
		writeError(w, err)
		return
	}

	if err := s.params.Update(settings); err != nil {
		writeError(w, err)
		return
	}
	if err := s.viewport.Resize(width, height); err != nil {
		writeError(w, err)
		return
	}

	s.logger.Info("parameters updated",
		zap.Int("bounceLimit", settings.BounceLimit),
		zap.Bool("accumulate", settings.Accumulate),
		zap.Int("width", width),
		zap.Int("height", height))
	writeJSON(w, http.StatusOK, s.paramsResponse())
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	s.params.RequestReset()
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

// PrimitiveInfo summarizes one primitive for editing
type PrimitiveInfo struct {
	Index    int               `json:"index"`
	Kind     string            `json:"kind"`
	Material material.Material `json:"material"`
}

func (s *Server) handlePrimitives(w http.ResponseWriter, r *http.Request) {
	prims := s.current().scene.Primitives()
	infos := make([]PrimitiveInfo, len(prims))
	for i, p := range prims {
		infos[i] = PrimitiveInfo{Index: i, Kind: p.Kind.String(), Material: p.Material()}
	}
	writeJSON(w, http.StatusOK, infos)
}

// handleSetMaterial applies a material edit. The body is decoded over the
// primitive's current material, so omitted fields are kept.
func (s *Server) handleSetMaterial(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		writeError(w, fmt.Errorf("%w: index %q", errBadRequest, r.PathValue("index")))
		return
	}

	sc := s.current().scene
	prims := sc.Primitives()
	if index < 0 || index >= len(prims) {
		writeError(w, fmt.Errorf("primitive %d: %w", index, scene.ErrIndexOutOfRange))
		return
	}

	m := prims[index].Material()
	if err := decodeJSON(r, &m); err != nil {
		writeError(w, err)
		return
	}
	if err := sc.SetMaterial(index, m); err != nil {
		writeError(w, err)
		return
	}

	s.logger.Info("material updated", zap.Int("index", index), zap.Uint64("version", sc.Version()))
	writeJSON(w, http.StatusOK, PrimitiveInfo{Index: index, Kind: prims[index].Kind.String(), Material: m})
}

// decodeJSON decodes a request body, rejecting unknown fields
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return nil
}

// statusFor maps domain errors onto HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, scene.ErrIndexOutOfRange), errors.Is(err, scene.ErrUnknownPreset):
		return http.StatusNotFound
	case errors.Is(err, errBadRequest),
		errors.Is(err, renderer.ErrInvalidParams),
		errors.Is(err, renderer.ErrInvalidFrame),
		errors.Is(err, material.ErrInvalidMaterial),
		errors.Is(err, geometry.ErrInvalidPrimitive),
		errors.Is(err, geometry.ErrInvalidCamera):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusFor(err), map[string]string{"error": err.Error()})
}

// parseIntParam parses an integer parameter from URL query with validation
func parseIntParam(values url.Values, key string, defaultValue, min, max int) (int, error) {
	if value := values.Get(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return 0, fmt.Errorf("%w: invalid %s: %s", errBadRequest, key, value)
		}
		if parsed < min || parsed > max {
			return 0, fmt.Errorf("%w: %s must be between %d and %d, got: %d", errBadRequest, key, min, max, parsed)
		}
		return parsed, nil
	}
	return defaultValue, nil
}
