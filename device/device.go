// Package device classifies the viewport into a quality tier and
// materializes the tier-dependent constants consumed by the rest of
// the system.
package device

import (
	"github.com/pthm-cable/starfield/config"
)

// Tier is the discrete device classification.
type Tier uint8

const (
	TierCompact Tier = iota
	TierMedium
	TierFull
)

// String returns the tier name used in logs and YAML.
func (t Tier) String() string {
	switch t {
	case TierCompact:
		return "compact"
	case TierMedium:
		return "medium"
	default:
		return "full"
	}
}

// Vec3 is a point in scene units.
type Vec3 struct {
	X, Y, Z float32
}

// Camera holds the framing for one tier.
type Camera struct {
	Position Vec3
	Target   Vec3
	FOV      float32 // Vertical field of view, degrees
}

// Profile bundles every tier-dependent constant. It is computed per
// query and threaded explicitly into consumers; nothing caches it.
type Profile struct {
	Tier          Tier
	CountFraction float32
	GlyphPx       int
	PixelRatioCap float32
	DensityPower  float64
	BaseOpacity   float32
	BaseSize      float32
	Camera        Camera
	PitchTilt     float32 // Structural field pitch, radians
}

// Resolve classifies a live viewport width and user agent. Width below
// the compact threshold is always compact; a mobile UA is compact up to
// the medium threshold; otherwise the width thresholds alone decide.
func Resolve(width int, userAgent string) Tier {
	dc := config.Cfg().Device
	if width < dc.CompactMaxWidth {
		return TierCompact
	}
	if config.Cfg().Derived.MobileRE.MatchString(userAgent) && width < dc.MediumMaxWidth {
		return TierCompact
	}
	if width < dc.MediumMaxWidth {
		return TierMedium
	}
	return TierFull
}

// ProfileFor materializes the constants for one tier.
func ProfileFor(tier Tier) Profile {
	dc := config.Cfg().Device
	var p config.TierParams
	switch tier {
	case TierCompact:
		p = dc.Compact
	case TierMedium:
		p = dc.Medium
	default:
		p = dc.Full
	}
	return Profile{
		Tier:          tier,
		CountFraction: float32(p.CountFraction),
		GlyphPx:       p.GlyphPx,
		PixelRatioCap: float32(p.PixelRatioCap),
		DensityPower:  p.DensityPower,
		BaseOpacity:   float32(p.BaseOpacity),
		BaseSize:      float32(p.BaseSize),
		Camera: Camera{
			Position: vec3(p.CameraPos),
			Target:   vec3(p.CameraTarget),
			FOV:      float32(p.FOV),
		},
		PitchTilt: float32(p.PitchTilt),
	}
}

// Current resolves the tier for the live viewport and returns its
// profile in one step.
func Current(width int, userAgent string) Profile {
	return ProfileFor(Resolve(width, userAgent))
}

func vec3(v config.VecConfig) Vec3 {
	return Vec3{X: float32(v.X), Y: float32(v.Y), Z: float32(v.Z)}
}
