// Package backend selects the execution strategy named in the configuration.
package backend

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/df07/go-pathtracer/pkg/config"
	"github.com/df07/go-pathtracer/pkg/gpu/glcompute"
	"github.com/df07/go-pathtracer/pkg/renderer"
)

// New creates the backend named by cfg.Backend. GPU initialization errors are
// returned unchanged so the caller can abort startup with the GL diagnostic.
func New(cfg config.Config, logger *zap.Logger) (renderer.Backend, error) {
	switch cfg.Backend {
	case config.BackendSequential:
		return renderer.NewSequentialBackend(), nil
	case config.BackendParallel:
		return renderer.NewParallelBackend(cfg.Workers, logger), nil
	case config.BackendGPU:
		b, err := glcompute.New(glcompute.DefaultOptions(), logger)
		if err != nil {
			return nil, fmt.Errorf("gpu backend: %w", err)
		}
		return b, nil
	default:
		return nil, fmt.Errorf("%w: unknown backend %q", config.ErrInvalidConfig, cfg.Backend)
	}
}
