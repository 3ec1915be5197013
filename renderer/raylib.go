// Package renderer provides the render backends for the galaxy field:
// a raylib-backed windowed backend and a headless no-op for soak runs
// and benchmarks.
package renderer

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/starfield/components"
	"github.com/pthm-cable/starfield/config"
	"github.com/pthm-cable/starfield/device"
	"github.com/pthm-cable/starfield/field"
	"github.com/pthm-cable/starfield/galaxy"
	"github.com/pthm-cable/starfield/glyph"
	"github.com/pthm-cable/starfield/viewport"
)

var (
	_ galaxy.Backend  = (*Raylib)(nil)
	_ viewport.Source = (*Raylib)(nil)
)

// Raylib draws the field through a raylib 3D scene. Each particle is a
// camera-facing billboard of its label texture, composited with
// additive blending so overlapping arms brighten instead of occlude.
//
// All methods must run on the thread that owns the GL context.
type Raylib struct {
	camera rl.Camera3D
	glyphs map[string]rl.Texture2D
	clear  rl.Color
	ratio  float32
}

// NewRaylib binds to the live window context. Construction fails with
// galaxy.ErrBackendUnavailable when no window exists; the host treats
// that as "leave the background empty", not as a crash.
func NewRaylib() (*Raylib, error) {
	if !rl.IsWindowReady() {
		return nil, fmt.Errorf("probing render context: %w", galaxy.ErrBackendUnavailable)
	}
	clear := config.Cfg().Derived.Clear
	return &Raylib{
		glyphs: make(map[string]rl.Texture2D),
		clear:  rl.Color{R: u8(clear.R), G: u8(clear.G), B: u8(clear.B), A: 255},
		ratio:  1,
	}, nil
}

// CreateGlyph rasterizes the label centered on a square transparent
// canvas and uploads it. Centering keeps billboards symmetric under
// the field rotation.
func (r *Raylib) CreateGlyph(label string, px int) error {
	if _, ok := r.glyphs[label]; ok {
		return nil
	}

	canvas := rl.GenImageColor(px, px, rl.Blank)
	defer rl.UnloadImage(canvas)

	text := rl.ImageText(label, int32(px*3/4), rl.White)
	defer rl.UnloadImage(text)

	src := rl.Rectangle{Width: float32(text.Width), Height: float32(text.Height)}
	dst := rl.Rectangle{
		X:      (float32(px) - float32(text.Width)) / 2,
		Y:      (float32(px) - float32(text.Height)) / 2,
		Width:  float32(text.Width),
		Height: float32(text.Height),
	}
	rl.ImageDraw(canvas, text, src, dst, rl.White)

	tex := rl.LoadTextureFromImage(canvas)
	if tex.ID == 0 {
		return fmt.Errorf("uploading glyph %q", label)
	}
	rl.SetTextureFilter(tex, rl.FilterBilinear)
	r.glyphs[label] = tex
	return nil
}

// ReleaseGlyph frees the label's texture. Unknown labels no-op so
// teardown stays idempotent.
func (r *Raylib) ReleaseGlyph(label string) error {
	tex, ok := r.glyphs[label]
	if !ok {
		return nil
	}
	rl.UnloadTexture(tex)
	delete(r.glyphs, label)
	return nil
}

// ApplyCamera frames the scene for the current tier. Raylib derives
// the projection aspect from the live window surface, so the explicit
// aspect is left to backends that cannot.
func (r *Raylib) ApplyCamera(cam device.Camera, aspect float32) {
	r.camera = rl.Camera3D{
		Position:   rl.Vector3{X: cam.Position.X, Y: cam.Position.Y, Z: cam.Position.Z},
		Target:     rl.Vector3{X: cam.Target.X, Y: cam.Target.Y, Z: cam.Target.Z},
		Up:         rl.Vector3{Y: 1},
		Fovy:       cam.FOV,
		Projection: rl.CameraPerspective,
	}
}

// SetSize applies the settled viewport to the window surface. Raylib
// treats a same-size call as a no-op, which covers host-driven resizes
// where the window already has the new dimensions.
func (r *Raylib) SetSize(width, height int) {
	rl.SetWindowSize(width, height)
}

// SetPixelRatio records the capped DPI scale. The window applies DPI
// through its high-DPI flag at creation; the value is kept for
// diagnostics.
func (r *Raylib) SetPixelRatio(ratio float32) {
	r.ratio = ratio
}

// PixelRatio returns the last applied DPI scale.
func (r *Raylib) PixelRatio() float32 {
	return r.ratio
}

// Render draws one frame of the field.
func (r *Raylib) Render(f *field.Field) error {
	if !rl.IsWindowReady() {
		return fmt.Errorf("rendering frame: %w", galaxy.ErrBackendUnavailable)
	}

	rl.BeginDrawing()
	rl.ClearBackground(r.clear)

	rl.BeginMode3D(r.camera)
	rl.BeginBlendMode(rl.BlendAdditive)
	rl.DisableDepthMask()

	f.Each(func(pos components.Position, spr components.Sprite) {
		tex, ok := r.glyphs[glyph.Labels[spr.Glyph]]
		if !ok {
			return
		}
		tint := rl.Color{R: u8(spr.R), G: u8(spr.G), B: u8(spr.B), A: u8(spr.Opacity)}
		rl.DrawBillboard(r.camera, tex, rl.Vector3{X: pos.X, Y: pos.Y, Z: pos.Z}, spr.Size, tint)
	})

	rl.EnableDepthMask()
	rl.EndBlendMode()
	rl.EndMode3D()

	rl.EndDrawing()
	return nil
}

// Unload releases every glyph texture. Safe to call more than once;
// textures already released through the glyph cache are skipped.
func (r *Raylib) Unload() {
	for label, tex := range r.glyphs {
		rl.UnloadTexture(tex)
		delete(r.glyphs, label)
	}
}

// ContainerSize reports no container; the window is the only box.
func (r *Raylib) ContainerSize() (int, int) { return 0, 0 }

// SurfaceSize reports no surface distinct from the window.
func (r *Raylib) SurfaceSize() (int, int) { return 0, 0 }

// ClientSize reports no client box distinct from the window.
func (r *Raylib) ClientSize() (int, int) { return 0, 0 }

// WindowSize reports the live window dimensions.
func (r *Raylib) WindowSize() (int, int) {
	return rl.GetScreenWidth(), rl.GetScreenHeight()
}

// u8 maps a normalized channel onto an 8-bit value, clamped.
func u8(v float32) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(v * 255)
}
