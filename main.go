package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/df07/go-pathtracer/pkg/backend"
	"github.com/df07/go-pathtracer/pkg/config"
	"github.com/df07/go-pathtracer/pkg/logger"
	"github.com/df07/go-pathtracer/pkg/renderer"
	"github.com/df07/go-pathtracer/pkg/scene"
)

// cliOptions holds flags that are not part of the shared configuration
type cliOptions struct {
	help       bool
	listScenes bool
}

func main() {
	cfg, opts, err := parseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	if opts.help {
		printHelp(os.Stdout)
		return
	}
	if opts.listScenes {
		printScenes(os.Stdout)
		return
	}

	log, err := logger.New(cfg.LogLevel, cfg.Development)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}
	defer log.Sync()

	filename, err := render(context.Background(), cfg, log)
	if err != nil {
		log.Fatal("render failed", zap.Error(err))
	}
	log.Info("render saved", zap.String("file", filename))
}

// cliFlags binds every command line flag to a value
type cliFlags struct {
	fs          *flag.FlagSet
	configPath  *string
	scene       *string
	width       *int
	height      *int
	backend     *string
	workers     *int
	frames      *int
	bounces     *int
	seed        *uint
	accumulate  *bool
	outputDir   *string
	logLevel    *string
	development *bool
	opts        cliOptions
}

func newFlags(output io.Writer) *cliFlags {
	fs := flag.NewFlagSet("pathtracer", flag.ContinueOnError)
	fs.SetOutput(output)

	def := config.Default()
	f := &cliFlags{
		fs:          fs,
		configPath:  fs.String("config", "", "Path to a YAML config file"),
		scene:       fs.String("scene", def.Scene, "Scene preset (see -list-scenes)"),
		width:       fs.Int("width", def.Width, "Image width in pixels"),
		height:      fs.Int("height", def.Height, "Image height in pixels"),
		backend:     fs.String("backend", def.Backend, "Execution backend: sequential, parallel or gpu"),
		workers:     fs.Int("workers", def.Workers, "Parallel workers (0 = CPU count)"),
		frames:      fs.Int("frames", def.Frames, "Frames to accumulate"),
		bounces:     fs.Int("bounces", def.BounceLimit, "Maximum bounces per path"),
		seed:        fs.Uint("seed", uint(def.Seed), "Base random seed"),
		accumulate:  fs.Bool("accumulate", def.Accumulate, "Average frames progressively"),
		outputDir:   fs.String("output", def.OutputDir, "Output directory"),
		logLevel:    fs.String("log-level", def.LogLevel, "Log level: debug, info, warn or error"),
		development: fs.Bool("dev", def.Development, "Human-readable development logging"),
	}
	fs.BoolVar(&f.opts.help, "help", false, "Show help information")
	fs.BoolVar(&f.opts.listScenes, "list-scenes", false, "List available scenes")
	return f
}

// parseFlags loads the optional config file and applies explicitly set flags on top
func parseFlags(args []string, output io.Writer) (config.Config, cliOptions, error) {
	f := newFlags(output)
	if err := f.fs.Parse(args); err != nil {
		return config.Config{}, f.opts, err
	}
	if f.opts.help || f.opts.listScenes {
		return config.Default(), f.opts, nil
	}

	cfg := config.Default()
	if *f.configPath != "" {
		loaded, err := config.Load(*f.configPath)
		if err != nil {
			return config.Config{}, f.opts, err
		}
		cfg = loaded
	}

	// Flags given on the command line override the file
	f.fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "scene":
			cfg.Scene = *f.scene
		case "width":
			cfg.Width = *f.width
		case "height":
			cfg.Height = *f.height
		case "backend":
			cfg.Backend = *f.backend
		case "workers":
			cfg.Workers = *f.workers
		case "frames":
			cfg.Frames = *f.frames
		case "bounces":
			cfg.BounceLimit = *f.bounces
		case "seed":
			cfg.Seed = uint32(*f.seed)
		case "accumulate":
			cfg.Accumulate = *f.accumulate
		case "output":
			cfg.OutputDir = *f.outputDir
		case "log-level":
			cfg.LogLevel = *f.logLevel
		case "dev":
			cfg.Development = *f.development
		}
	})

	if err := cfg.Validate(); err != nil {
		return config.Config{}, f.opts, err
	}
	if cfg.Frames == 0 {
		return config.Config{}, f.opts, fmt.Errorf("%w: frames must be at least 1 for a headless render", config.ErrInvalidConfig)
	}
	return cfg, f.opts, nil
}

func printHelp(w io.Writer) {
	fmt.Fprintln(w, "Progressive Path Tracer")
	fmt.Fprintln(w, "Usage: pathtracer [options]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Renders a scene for the requested number of frames and saves")
	fmt.Fprintln(w, "output/<scene>/render_<timestamp>.png")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Options:")
	newFlags(w).fs.PrintDefaults()
	fmt.Fprintln(w)
	printScenes(w)
}

func printScenes(w io.Writer) {
	fmt.Fprintln(w, "Available scenes:")
	for _, info := range scene.Presets() {
		fmt.Fprintf(w, "  %-12s %s\n", info.ID, info.Description)
	}
}

// createScene builds the named scene preset
func createScene(sceneID string) (*scene.Scene, error) {
	return scene.NewPreset(sceneID)
}

// createOutputDir creates and returns the directory for a scene's renders
func createOutputDir(baseDir, sceneID string) (string, error) {
	dir := filepath.Join(baseDir, sceneID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}
	return dir, nil
}

// render accumulates cfg.Frames frames and writes the final one as a PNG
func render(ctx context.Context, cfg config.Config, log *zap.Logger) (string, error) {
	sc, err := createScene(cfg.Scene)
	if err != nil {
		return "", err
	}

	params, err := renderer.NewLiveParams(cfg.Settings())
	if err != nil {
		return "", err
	}

	b, err := backend.New(cfg, log)
	if err != nil {
		return "", err
	}
	defer b.Close()

	pr := renderer.NewProgressiveRenderer(sc, b, renderer.FixedSize{Width: cfg.Width, Height: cfg.Height}, params, cfg.ProgressiveConfig(), log)

	log.Info("rendering",
		zap.String("scene", cfg.Scene),
		zap.String("backend", b.Name()),
		zap.Int("width", cfg.Width),
		zap.Int("height", cfg.Height),
		zap.Int("frames", cfg.Frames))

	start := time.Now()
	frameChan, errChan := pr.RenderProgressive(ctx, cfg.Frames)

	var last renderer.FrameResult
	for result := range frameChan {
		last = result
		log.Debug("frame",
			zap.Uint32("index", result.FrameIndex),
			zap.Float64("avgLuminance", result.Stats.AverageLuminance),
			zap.Duration("duration", result.Duration))
	}
	if err := <-errChan; err != nil {
		return "", err
	}
	if last.Frame == nil {
		return "", fmt.Errorf("no frame rendered")
	}

	log.Info("render completed",
		zap.Duration("elapsed", time.Since(start)),
		zap.Int("samplesPerPixel", last.Stats.SamplesPerPixel))

	outputDir, err := createOutputDir(cfg.OutputDir, cfg.Scene)
	if err != nil {
		return "", err
	}

	timestamp := time.Now().Format("20060102_150405")
	filename := filepath.Join(outputDir, fmt.Sprintf("render_%s.png", timestamp))

	file, err := os.Create(filename)
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}
	defer file.Close()

	if err := last.Frame.WritePNG(file); err != nil {
		return "", fmt.Errorf("save PNG: %w", err)
	}
	return filename, nil
}
