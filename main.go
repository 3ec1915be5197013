package main

import (
	"flag"
	"log/slog"
	"os"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/starfield/config"
	"github.com/pthm-cable/starfield/galaxy"
	"github.com/pthm-cable/starfield/renderer"
	"github.com/pthm-cable/starfield/viewport"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	headless := flag.Bool("headless", false, "Run without graphics")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	maxFrames := flag.Int("max-frames", 0, "Stop after N frames (0 = unlimited)")
	width := flag.Int("width", 0, "Viewport width (0 = use config)")
	height := flag.Int("height", 0, "Viewport height (0 = use config)")
	count := flag.Int("count", 0, "Base particle count (0 = use config)")
	userAgent := flag.String("user-agent", "", "User agent for tier classification (empty = desktop)")
	pixelRatio := flag.Float64("pixel-ratio", 1, "Device pixel ratio (1 = probe the window)")

	flag.Parse()

	// Initialize config before anything else
	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	w := cfg.Screen.Width
	if *width > 0 {
		w = *width
	}
	h := cfg.Screen.Height
	if *height > 0 {
		h = *height
	}

	opts := galaxy.Options{
		Width:      w,
		Height:     h,
		UserAgent:  *userAgent,
		PixelRatio: float32(*pixelRatio),
		Count:      *count,
		Seed:       *seed,
		Logger:     logger,
		OutputDir:  *outputDir,
	}

	if *headless {
		// Headless mode - full pipeline against the no-op backend
		opts.Backend = renderer.NewHeadless()
		opts.Source = viewport.Static(w, h)

		g, err := galaxy.New(opts)
		if err != nil {
			slog.Error("failed to create galaxy", "error", err)
			os.Exit(1)
		}
		defer g.Destroy()

		slog.Info("starting headless run",
			"seed", g.Seed(),
			"max_frames", *maxFrames,
		)

		for {
			g.Frame(time.Now())

			if *maxFrames > 0 && int(g.Frames()) >= *maxFrames {
				slog.Info("max frames reached", "frames", g.Frames())
				return
			}
		}
	} else {
		// Graphical mode
		rl.SetConfigFlags(rl.FlagWindowResizable | rl.FlagWindowHighdpi)
		rl.InitWindow(int32(w), int32(h), "Starfield")
		defer rl.CloseWindow()

		rl.SetTargetFPS(int32(cfg.Screen.TargetFPS))

		backend, err := renderer.NewRaylib()
		if err != nil {
			slog.Error("render backend unavailable", "error", err)
			return
		}
		defer backend.Unload()

		// Flag default means probe the window's DPI scale
		if *pixelRatio == 1 {
			if scale := rl.GetWindowScaleDPI(); scale.X > 0 {
				opts.PixelRatio = scale.X
			}
		}

		opts.Backend = backend
		opts.Source = backend

		g, err := galaxy.New(opts)
		if err != nil {
			slog.Error("failed to create galaxy", "error", err)
			os.Exit(1)
		}
		defer g.Destroy()

		minimized := false
		for !rl.WindowShouldClose() {
			if rl.IsWindowResized() {
				g.NotifyResize()
			}
			if m := rl.IsWindowMinimized(); m != minimized {
				minimized = m
				g.NotifyVisibility(!m)
			}

			g.Frame(time.Now())

			// Paused frames skip the backend, so pump events here to
			// keep WindowShouldClose and restore detection alive.
			if !g.Animating() {
				rl.BeginDrawing()
				rl.EndDrawing()
			}

			if *maxFrames > 0 && int(g.Frames()) >= *maxFrames {
				break
			}
		}
	}
}
