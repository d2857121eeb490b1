// Package config loads renderer settings from YAML. Values missing from the
// file keep their defaults; command line flags are applied on top by the
// binaries.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/renderer"
)

// ErrInvalidConfig is returned by Validate
var ErrInvalidConfig = errors.New("invalid config")

// Execution backends
const (
	BackendSequential = "sequential"
	BackendParallel   = "parallel"
	BackendGPU        = "gpu"
)

// Config contains every setting of the command line and web binaries
type Config struct {
	Width         int        `yaml:"width"`
	Height        int        `yaml:"height"`
	Scene         string     `yaml:"scene"`
	Backend       string     `yaml:"backend"`
	Workers       int        `yaml:"workers"`   // 0 = CPU count
	SpanSize      int        `yaml:"span_size"` // Pixels per RNG stream
	Seed          uint32     `yaml:"seed"`
	BounceLimit   int        `yaml:"bounce_limit"`
	Accumulate    bool       `yaml:"accumulate"`
	Background    [3]float64 `yaml:"background"`
	ResetOnChange bool       `yaml:"reset_on_change"` // Restart accumulation on scene edits
	Frames        int        `yaml:"frames"`          // Frames to render, 0 = until stopped (web only)
	OutputDir     string     `yaml:"output_dir"`
	LogLevel      string     `yaml:"log_level"`
	Development   bool       `yaml:"development"`
	ListenAddr    string     `yaml:"listen_addr"`
}

// Default returns the built-in configuration
func Default() Config {
	return Config{
		Width:         400,
		Height:        225,
		Scene:         "default",
		Backend:       BackendParallel,
		Workers:       0,
		SpanSize:      renderer.DefaultSpanSize,
		Seed:          1,
		BounceLimit:   5,
		Accumulate:    true,
		Background:    [3]float64{0.5, 0.0, 0.2},
		ResetOnChange: true,
		Frames:        16,
		OutputDir:     "output",
		LogLevel:      "info",
		ListenAddr:    ":8080",
	}
}

// Load reads path over the defaults and validates the result
func Load(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	cfg, err := Decode(f)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Decode reads YAML from r over the defaults. Unknown keys are rejected.
func Decode(r io.Reader) (Config, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()
	if len(bytes.TrimSpace(data)) > 0 {
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil {
			return Config{}, fmt.Errorf("decode config: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks every field is usable
func (c Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("%w: size %dx%d must be positive", ErrInvalidConfig, c.Width, c.Height)
	}
	if c.Scene == "" {
		return fmt.Errorf("%w: scene must be set", ErrInvalidConfig)
	}
	switch c.Backend {
	case BackendSequential, BackendParallel, BackendGPU:
	default:
		return fmt.Errorf("%w: unknown backend %q", ErrInvalidConfig, c.Backend)
	}
	if c.Workers < 0 {
		return fmt.Errorf("%w: workers %d must not be negative", ErrInvalidConfig, c.Workers)
	}
	if c.SpanSize <= 0 {
		return fmt.Errorf("%w: span_size %d must be positive", ErrInvalidConfig, c.SpanSize)
	}
	if c.BounceLimit < 1 {
		return fmt.Errorf("%w: bounce_limit %d must be at least 1", ErrInvalidConfig, c.BounceLimit)
	}
	for _, v := range c.Background {
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: background %v must be finite and non-negative", ErrInvalidConfig, c.Background)
		}
	}
	if c.Frames < 0 {
		return fmt.Errorf("%w: frames %d must not be negative", ErrInvalidConfig, c.Frames)
	}
	return nil
}

// BackgroundColor returns the background as a color
func (c Config) BackgroundColor() core.Vec3 {
	return core.NewVec3(c.Background[0], c.Background[1], c.Background[2])
}

// Settings returns the initial live parameters
func (c Config) Settings() renderer.Settings {
	return renderer.Settings{
		BounceLimit: c.BounceLimit,
		Accumulate:  c.Accumulate,
		Background:  c.BackgroundColor(),
	}
}

// ProgressiveConfig returns the renderer configuration
func (c Config) ProgressiveConfig() renderer.ProgressiveConfig {
	return renderer.ProgressiveConfig{
		SpanSize:      c.SpanSize,
		Seed:          c.Seed,
		ResetOnChange: c.ResetOnChange,
	}
}
