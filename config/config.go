// Package config provides configuration loading and access for the galaxy.
package config

import (
	_ "embed"
	"fmt"
	"math"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all galaxy configuration parameters.
type Config struct {
	Screen    ScreenConfig    `yaml:"screen"`
	Field     FieldConfig     `yaml:"field"`
	Animation AnimationConfig `yaml:"animation"`
	Debounce  DebounceConfig  `yaml:"debounce"`
	Device    DeviceConfig    `yaml:"device"`
	Render    RenderConfig    `yaml:"render"`
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings for the windowed host.
type ScreenConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	TargetFPS int `yaml:"target_fps"`
}

// FieldConfig holds the spiral field shape parameters.
type FieldConfig struct {
	Radius      float64 `yaml:"radius"`       // Outer rim in scene units
	Arms        int     `yaml:"arms"`         // Spiral arm count
	Spin        float64 `yaml:"spin"`         // Winding tightness, radians per unit radius
	Jitter      float64 `yaml:"jitter"`       // Per-axis scatter amplitude
	JitterZ     float64 `yaml:"jitter_z"`     // Extra flattening factor applied to z scatter
	BaseCount   int     `yaml:"base_count"`   // Particle budget at full tier
	SpeedScale  float64 `yaml:"speed_scale"`  // k in k/sqrt(r+1)
	SizeFalloff float64 `yaml:"size_falloff"` // Sprite shrink fraction at the rim
	YawTilt     float64 `yaml:"yaw_tilt"`     // Structural yaw applied once, fraction of pi
	InnerColor  string  `yaml:"inner_color"`  // Hex tint at the center
	OuterColor  string  `yaml:"outer_color"`  // Hex tint at the rim
	CenterAlpha float64 `yaml:"center_alpha"` // Center opacity as fraction of tier base
	EdgeAlpha   float64 `yaml:"edge_alpha"`   // Edge opacity as fraction of tier base
}

// AnimationConfig holds per-frame stepping parameters.
type AnimationConfig struct {
	TimeStep     float64 `yaml:"time_step"`     // Simulation clock increment per frame
	RotationStep float64 `yaml:"rotation_step"` // Whole-field yaw increment per frame
}

// DebounceConfig holds event coalescing windows in milliseconds.
type DebounceConfig struct {
	ResizeMS      int `yaml:"resize_ms"`
	OrientationMS int `yaml:"orientation_ms"`
	PixelRatioMS  int `yaml:"pixel_ratio_ms"`
}

// DeviceConfig holds tier classification thresholds and per-tier parameters.
type DeviceConfig struct {
	CompactMaxWidth int        `yaml:"compact_max_width"` // Below this is always compact
	MediumMaxWidth  int        `yaml:"medium_max_width"`  // Below this is medium, or compact on mobile
	MobilePattern   string     `yaml:"mobile_pattern"`    // Case-insensitive UA regexp
	Compact         TierParams `yaml:"compact"`
	Medium          TierParams `yaml:"medium"`
	Full            TierParams `yaml:"full"`
}

// TierParams holds every tier-dependent constant.
type TierParams struct {
	CountFraction float64   `yaml:"count_fraction"` // Fraction of field.base_count
	FOV           float64   `yaml:"fov"`            // Vertical field of view, degrees
	GlyphPx       int       `yaml:"glyph_px"`       // Glyph texture resolution
	PixelRatioCap float64   `yaml:"pixel_ratio_cap"`
	DensityPower  float64   `yaml:"density_power"` // Radius bias exponent
	BaseOpacity   float64   `yaml:"base_opacity"`
	BaseSize      float64   `yaml:"base_size"` // Sprite scale at the center
	CameraPos     VecConfig `yaml:"camera_pos"`
	CameraTarget  VecConfig `yaml:"camera_target"`
	PitchTilt     float64   `yaml:"pitch_tilt"` // Structural field pitch, radians
}

// VecConfig holds a point in scene units.
type VecConfig struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
	Z float64 `yaml:"z"`
}

// RenderConfig holds backend presentation parameters.
type RenderConfig struct {
	ClearColor string `yaml:"clear_color"` // Hex background
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	PerfCollectorWindow int     `yaml:"perf_collector_window"`
	FPSLogInterval      float64 `yaml:"fps_log_interval"` // Seconds between frame-rate diagnostics
}

// Color is a normalized RGB triple parsed from a hex string.
type Color struct {
	R, G, B float32
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	Radius32       float32
	Spin32         float32
	Jitter32       float32
	JitterZ32      float32
	SpeedScale32   float32
	SizeFalloff32  float32
	YawTilt32      float32 // Radians, precomputed from the pi fraction
	TimeStep32     float32
	RotationStep32 float32
	CenterAlpha32  float32
	EdgeAlpha32    float32

	Inner Color
	Outer Color
	Clear Color

	ResizeDebounce      time.Duration
	OrientationDebounce time.Duration
	PixelRatioDebounce  time.Duration
	FPSLogInterval      time.Duration

	MobileRE *regexp.Regexp
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	// Start with embedded defaults
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	// Load user config if provided
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.computeDerived(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Recompute refreshes the derived values after direct field mutation.
// Tuning tools call this before regenerating from the new parameters.
func (c *Config) Recompute() error {
	return c.computeDerived()
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() error {
	c.Derived.Radius32 = float32(c.Field.Radius)
	c.Derived.Spin32 = float32(c.Field.Spin)
	c.Derived.Jitter32 = float32(c.Field.Jitter)
	c.Derived.JitterZ32 = float32(c.Field.JitterZ)
	c.Derived.SpeedScale32 = float32(c.Field.SpeedScale)
	c.Derived.SizeFalloff32 = float32(c.Field.SizeFalloff)
	c.Derived.YawTilt32 = float32(c.Field.YawTilt * math.Pi)
	c.Derived.TimeStep32 = float32(c.Animation.TimeStep)
	c.Derived.RotationStep32 = float32(c.Animation.RotationStep)
	c.Derived.CenterAlpha32 = float32(c.Field.CenterAlpha)
	c.Derived.EdgeAlpha32 = float32(c.Field.EdgeAlpha)

	var err error
	if c.Derived.Inner, err = ParseHexColor(c.Field.InnerColor); err != nil {
		return fmt.Errorf("field.inner_color: %w", err)
	}
	if c.Derived.Outer, err = ParseHexColor(c.Field.OuterColor); err != nil {
		return fmt.Errorf("field.outer_color: %w", err)
	}
	if c.Derived.Clear, err = ParseHexColor(c.Render.ClearColor); err != nil {
		return fmt.Errorf("render.clear_color: %w", err)
	}

	c.Derived.ResizeDebounce = time.Duration(c.Debounce.ResizeMS) * time.Millisecond
	c.Derived.OrientationDebounce = time.Duration(c.Debounce.OrientationMS) * time.Millisecond
	c.Derived.PixelRatioDebounce = time.Duration(c.Debounce.PixelRatioMS) * time.Millisecond
	c.Derived.FPSLogInterval = time.Duration(c.Telemetry.FPSLogInterval * float64(time.Second))

	re, err := regexp.Compile("(?i)" + c.Device.MobilePattern)
	if err != nil {
		return fmt.Errorf("device.mobile_pattern: %w", err)
	}
	c.Derived.MobileRE = re

	return nil
}

// ParseHexColor parses "#rrggbb" into a normalized Color.
func ParseHexColor(s string) (Color, error) {
	var r, g, b uint8
	if _, err := fmt.Sscanf(s, "#%02x%02x%02x", &r, &g, &b); err != nil {
		return Color{}, fmt.Errorf("parsing %q: %w", s, err)
	}
	return Color{R: float32(r) / 255, G: float32(g) / 255, B: float32(b) / 255}, nil
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
