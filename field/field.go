// Package field generates the spiral particle set and advances it
// along its orbits.
package field

import (
	"math"
	"math/rand"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/starfield/components"
	"github.com/pthm-cable/starfield/config"
	"github.com/pthm-cable/starfield/device"
)

// Rotation is the whole-field orientation. Pitch is the structural
// tilt set once at generation; Yaw starts at the structural yaw and
// creeps forward every frame.
type Rotation struct {
	Pitch float32
	Yaw   float32
}

// Field is the complete particle set plus its rotating container.
// Particle count is fixed for the lifetime of the field; tier changes
// after generation never regenerate it.
type Field struct {
	world  *ecs.World
	mapper *ecs.Map4[
		components.Orbital,
		components.Offset,
		components.Position,
		components.Sprite,
	]
	filter *ecs.Filter4[
		components.Orbital,
		components.Offset,
		components.Position,
		components.Sprite,
	]

	Count    int
	Rotation Rotation
}

// New synthesizes count particles for the given profile. The random
// source drives values only; structure (arm assignment) is by index
// and therefore exact for every count. A non-positive count yields a
// valid empty field.
func New(count int, p device.Profile, rng *rand.Rand) *Field {
	world := ecs.NewWorld()
	f := &Field{
		world: world,
		mapper: ecs.NewMap4[
			components.Orbital,
			components.Offset,
			components.Position,
			components.Sprite,
		](world),
		filter: ecs.NewFilter4[
			components.Orbital,
			components.Offset,
			components.Position,
			components.Sprite,
		](world),
	}

	if count < 0 {
		count = 0
	}

	cfg := config.Cfg()
	d := &cfg.Derived
	arms := cfg.Field.Arms
	if arms < 1 {
		arms = 1
	}

	for i := 0; i < count; i++ {
		// Density weighting: pushing the uniform sample through a
		// power concentrates radii near the center, steeper on the
		// compact tier.
		u := rng.Float64()
		radius := float32(math.Pow(u, p.DensityPower)) * d.Radius32

		// Arm by index, not chance, so the branches stay balanced.
		branch := float32(i%arms) / float32(arms) * 2 * math.Pi
		initial := branch + radius*d.Spin32

		off := components.Offset{
			X: scatter(rng, d.Jitter32),
			Y: scatter(rng, d.Jitter32),
			Z: scatter(rng, d.Jitter32) * d.JitterZ32,
		}

		pos := components.Position{
			X: cos32(initial)*radius + off.X,
			Y: off.Y,
			Z: sin32(initial)*radius + off.Z,
		}

		t := radius / d.Radius32
		glyph := uint8(0)
		if rng.Float32() < 0.5 {
			glyph = 1
		}
		spr := components.Sprite{
			Glyph:   glyph,
			Size:    p.BaseSize * (1 - d.SizeFalloff32*t),
			R:       lerp(d.Inner.R, d.Outer.R, t),
			G:       lerp(d.Inner.G, d.Outer.G, t),
			B:       lerp(d.Inner.B, d.Outer.B, t),
			Opacity: blendOpacity(p.BaseOpacity, t, d),
		}

		orb := components.Orbital{
			InitialAngle: initial,
			Radius:       radius,
			AngularSpeed: d.SpeedScale32 / sqrt32(radius+1),
			Branch:       branch,
		}

		f.mapper.NewEntity(&orb, &off, &pos, &spr)
	}

	f.Count = count
	f.Rotation = Rotation{
		Pitch: p.PitchTilt,
		Yaw:   d.YawTilt32,
	}
	return f
}

// Advance recomputes every particle's position for the given absolute
// simulation time. Differential rotation: angle grows at the orbit's
// own speed. Y is re-pinned to the offset, never integrated.
func (f *Field) Advance(time float32) {
	query := f.filter.Query()
	for query.Next() {
		orb, off, pos, _ := query.Get()
		angle := orb.InitialAngle + orb.AngularSpeed*time
		pos.X = cos32(angle)*orb.Radius + off.X
		pos.Y = off.Y
		pos.Z = sin32(angle)*orb.Radius + off.Z
	}
}

// Rotate increments the whole-field yaw.
func (f *Field) Rotate(step float32) {
	f.Rotation.Yaw += step
}

// Each yields every particle's position and sprite attributes, with
// the field rotation applied, in creation order within each archetype.
// The renderer consumes this without touching the ECS.
func (f *Field) Each(fn func(pos components.Position, spr components.Sprite)) {
	sy, cy := sincos32(f.Rotation.Yaw)
	sp, cp := sincos32(f.Rotation.Pitch)

	query := f.filter.Query()
	for query.Next() {
		_, _, pos, spr := query.Get()

		// Yaw about y, then pitch about x.
		x := pos.X*cy + pos.Z*sy
		z := -pos.X*sy + pos.Z*cy
		y := pos.Y*cp - z*sp
		z = pos.Y*sp + z*cp

		fn(components.Position{X: x, Y: y, Z: z}, *spr)
	}
}

// blendOpacity blends the dim center toward the brighter rim. The
// inversion is intentional: the dense center must stay dim enough to
// sit behind foreground content.
func blendOpacity(base, t float32, d *config.DerivedConfig) float32 {
	center := d.CenterAlpha32 * base
	edge := d.EdgeAlpha32 * base
	return center + (edge-center)*t
}

// scatter draws the per-axis jitter: a cubed uniform sample scaled by
// the amplitude, with a random sign.
func scatter(rng *rand.Rand, amp float32) float32 {
	u := rng.Float32()
	v := u * u * u * amp
	if rng.Float32() < 0.5 {
		return -v
	}
	return v
}

func lerp(a, b, t float32) float32 {
	return a + (b-a)*t
}

func sin32(x float32) float32 {
	return float32(math.Sin(float64(x)))
}

func cos32(x float32) float32 {
	return float32(math.Cos(float64(x)))
}

func sincos32(x float32) (float32, float32) {
	s, c := math.Sincos(float64(x))
	return float32(s), float32(c)
}

func sqrt32(x float32) float32 {
	return float32(math.Sqrt(float64(x)))
}
