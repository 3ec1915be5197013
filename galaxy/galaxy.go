// Package galaxy owns the lifecycle of one spiral background instance:
// construction, the per-frame unit of work, resize/visibility
// coordination, and teardown.
package galaxy

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/pthm-cable/starfield/config"
	"github.com/pthm-cable/starfield/device"
	"github.com/pthm-cable/starfield/field"
	"github.com/pthm-cable/starfield/glyph"
	"github.com/pthm-cable/starfield/telemetry"
	"github.com/pthm-cable/starfield/viewport"
)

// ErrBackendUnavailable reports a backend with no usable rendering
// context. Construction fails with it wrapped; callers treat the
// absence as decorative and skip the background entirely.
var ErrBackendUnavailable = errors.New("render backend unavailable")

// Backend is the rendering boundary the galaxy consumes. It is
// satisfied structurally by renderer.Raylib and by test fakes.
type Backend interface {
	CreateGlyph(label string, px int) error
	ReleaseGlyph(label string) error
	ApplyCamera(cam device.Camera, aspect float32)
	SetSize(w, h int)
	SetPixelRatio(ratio float32)
	Render(f *field.Field) error
}

// Clock supplies the current time for deadline stamping. Production
// uses the system clock; tests inject a manual one.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// Options configures a new galaxy instance.
type Options struct {
	Backend    Backend
	Source     viewport.Source // nil = fixed at Width x Height
	Width      int
	Height     int
	UserAgent  string
	PixelRatio float32 // host device pixel ratio, 0 = 1
	Count      int     // base particle count, 0 = config base_count
	Seed       int64   // 0 = time-based
	Logger     *slog.Logger
	Clock      Clock
	OutputDir  string // CSV perf output, empty = disabled
}

// Galaxy is one live background instance. All mutation happens under
// the instance mutex, driven by Frame, Notify*, Pause/Resume, and
// Destroy calls from the host's single logical execution context.
type Galaxy struct {
	mu sync.Mutex

	backend Backend
	adapter *viewport.Adapter
	cache   *glyph.Cache
	field   *field.Field

	profile    device.Profile
	state      viewport.State
	userAgent  string
	pixelRatio float32
	seed       int64

	coord coordinator

	simTime   float32
	animating bool
	destroyed bool

	clock  Clock
	logger *slog.Logger

	perf       *telemetry.PerfCollector
	output     *telemetry.OutputManager
	frames     int32
	lastFPSLog time.Time
}

// New builds the instance: resolve the device profile, create the two
// glyph textures, generate the field, frame the camera, render once,
// and return animating. A backend that cannot provide its primitives
// fails construction with a wrapped error; there is no partial mode.
func New(opts Options) (*Galaxy, error) {
	if opts.Backend == nil {
		return nil, fmt.Errorf("creating galaxy: %w", ErrBackendUnavailable)
	}

	cfg := config.Cfg()

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	clock := opts.Clock
	if clock == nil {
		clock = systemClock{}
	}

	width, height := opts.Width, opts.Height
	if (width <= 0 || height <= 0) && opts.Source != nil {
		width, height = viewport.ResolveSize(opts.Source)
	}

	src := opts.Source
	if src == nil {
		src = viewport.Static(width, height)
	}

	seed := opts.Seed
	if seed == 0 {
		seed = clock.Now().UnixNano()
	}

	base := opts.Count
	if base <= 0 {
		base = cfg.Field.BaseCount
	}

	profile := device.Current(width, opts.UserAgent)
	count := int(float32(base) * profile.CountFraction)

	cache := glyph.NewCache(opts.Backend, profile.GlyphPx)
	if err := cache.Ensure(); err != nil {
		cache.Release()
		return nil, fmt.Errorf("creating galaxy: %w", err)
	}

	rng := rand.New(rand.NewSource(seed))
	f := field.New(count, profile, rng)

	output, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		cache.Release()
		return nil, fmt.Errorf("creating galaxy: %w", err)
	}

	g := &Galaxy{
		backend:    opts.Backend,
		adapter:    viewport.NewAdapter(src, opts.Backend),
		cache:      cache,
		field:      f,
		profile:    profile,
		state:      viewport.State{Width: width, Height: height, Tier: profile.Tier},
		userAgent:  opts.UserAgent,
		pixelRatio: opts.PixelRatio,
		seed:       seed,
		clock:      clock,
		logger:     logger,
		perf:       telemetry.NewPerfCollector(cfg.Telemetry.PerfCollectorWindow),
		output:     output,
	}

	if err := output.WriteConfig(cfg); err != nil {
		g.logger.Error("config_write_failed", "error", err)
	}

	// The instance is still unpublished, but the helpers assume the
	// mutex.
	g.mu.Lock()
	g.backend.SetSize(width, height)
	g.applyPixelRatioLocked()
	g.adapter.ApplyCameraForTier(profile, width, height)
	g.renderLocked()
	g.animating = true
	g.mu.Unlock()

	g.logger.Info("galaxy_created",
		"count", count,
		"tier", profile.Tier.String(),
		"width", width,
		"height", height,
		"glyph_px", profile.GlyphPx,
		"seed", seed,
	)

	return g, nil
}

// Count returns the live particle count.
func (g *Galaxy) Count() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.field.Count
}

// Tier returns the tier active at the last settled size.
func (g *Galaxy) Tier() device.Tier {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state.Tier
}

// Viewport returns the last-observed size and tier record.
func (g *Galaxy) Viewport() viewport.State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Animating reports whether frames currently advance and render.
func (g *Galaxy) Animating() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.animating
}

// Destroyed reports whether the instance has been torn down.
func (g *Galaxy) Destroyed() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.destroyed
}

// Frames returns the number of rendered animation frames.
func (g *Galaxy) Frames() int32 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.frames
}

// Seed returns the RNG seed the field was generated with.
func (g *Galaxy) Seed() int64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.seed
}
