// Spiral field preview tool - interactive visualization with sliders.
//
// Usage: go run ./cmd/fieldpreview
package main

import (
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"os"
	"strings"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/starfield/components"
	"github.com/pthm-cable/starfield/config"
	"github.com/pthm-cable/starfield/device"
	"github.com/pthm-cable/starfield/field"
)

const (
	windowWidth  = 1000
	windowHeight = 720
	previewSize  = 512
	panelWidth   = windowWidth - previewSize - 30
)

// FieldParams holds the spiral shape parameters under tuning.
type FieldParams struct {
	Radius       float32
	Arms         int
	Spin         float32
	Jitter       float32
	DensityPower float32
	SizeFalloff  float32
	Count        int
	Seed         int64
}

func main() {
	if err := config.Init(""); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	rl.InitWindow(windowWidth, windowHeight, "Spiral Field Preview")
	defer rl.CloseWindow()
	rl.SetTargetFPS(30)

	defaults := FieldParams{
		Radius:       float32(cfg.Field.Radius),
		Arms:         cfg.Field.Arms,
		Spin:         float32(cfg.Field.Spin),
		Jitter:       float32(cfg.Field.Jitter),
		DensityPower: float32(cfg.Device.Full.DensityPower),
		SizeFalloff:  float32(cfg.Field.SizeFalloff),
		Count:        cfg.Field.BaseCount,
		Seed:         12345,
	}
	params := defaults

	// Time for animation
	var simTime float32 = 0
	animating := false

	// Generate initial field
	f, radii := regenerate(params, simTime)

	// GUI state
	needsRegen := false

	for !rl.WindowShouldClose() {
		// Animation: orbits are closed-form, so stepping never needs
		// a rebuild
		if animating {
			simTime += cfg.Derived.TimeStep32
			f.Advance(simTime)
			f.Rotate(cfg.Derived.RotationStep32)
		}

		// Regenerate if needed
		if needsRegen {
			f, radii = regenerate(params, simTime)
			needsRegen = false
		}

		rl.BeginDrawing()
		rl.ClearBackground(rl.RayWhite)

		// Draw preview: top-down scatter over the runtime clear color
		clear := cfg.Derived.Clear
		rl.DrawRectangle(10, 10, previewSize, previewSize, rl.Color{R: tint8(clear.R), G: tint8(clear.G), B: tint8(clear.B), A: 255})

		scale := float32(previewSize) / (2 * params.Radius * 1.2)
		cx := float32(10 + previewSize/2)
		cy := float32(10 + previewSize/2)
		f.Each(func(pos components.Position, spr components.Sprite) {
			x := cx + pos.X*scale
			y := cy + pos.Z*scale
			if x < 10 || x > 10+previewSize || y < 10 || y > 10+previewSize {
				return
			}
			// Alpha doubled: additive blending brightens overlaps at
			// runtime, a flat scatter does not
			c := rl.Color{R: tint8(spr.R), G: tint8(spr.G), B: tint8(spr.B), A: tint8(spr.Opacity * 2)}
			radius := spr.Size * scale * 0.5
			if radius < 1 {
				radius = 1
			}
			rl.DrawCircleV(rl.Vector2{X: x, Y: y}, radius, c)
		})
		rl.DrawRectangleLines(10, 10, previewSize, previewSize, rl.DarkGray)

		// Draw stats
		statsY := int32(previewSize + 25)
		if len(radii) > 0 {
			mean := stat.Mean(radii, nil)
			sd := stat.StdDev(radii, nil)
			rl.DrawText(fmt.Sprintf("Mean r: %.2f  StdDev: %.2f  Max: %.2f", mean, sd, floats.Max(radii)), 15, statsY, 16, rl.DarkGray)
		}
		rl.DrawText(fmt.Sprintf("Particles: %d  Time: %.1f", f.Count, simTime), 15, statsY+20, 16, rl.DarkGray)

		// Control panel
		panelX := float32(previewSize + 20)
		panelY := float32(10)

		rl.DrawText("Spiral Field Parameters", int32(panelX), int32(panelY), 20, rl.DarkGray)
		panelY += 35

		// Radius slider
		rl.DrawText("Radius (outer rim, scene units)", int32(panelX), int32(panelY), 14, rl.Gray)
		panelY += 18
		newRadius := gui.SliderBar(
			rl.Rectangle{X: panelX, Y: panelY, Width: float32(panelWidth - 80), Height: 20},
			"5", "40",
			params.Radius, 5, 40,
		)
		rl.DrawText(fmt.Sprintf("%.1f", params.Radius), int32(panelX+float32(panelWidth-70)), int32(panelY+2), 16, rl.DarkGray)
		if newRadius != params.Radius {
			params.Radius = newRadius
			needsRegen = true
		}
		panelY += 35

		// Arms slider
		rl.DrawText("Arms (spiral branches)", int32(panelX), int32(panelY), 14, rl.Gray)
		panelY += 18
		newArms := gui.SliderBar(
			rl.Rectangle{X: panelX, Y: panelY, Width: float32(panelWidth - 80), Height: 20},
			"1", "8",
			float32(params.Arms), 1, 8,
		)
		rl.DrawText(fmt.Sprintf("%d", params.Arms), int32(panelX+float32(panelWidth-70)), int32(panelY+2), 16, rl.DarkGray)
		if int(newArms) != params.Arms {
			params.Arms = int(newArms)
			needsRegen = true
		}
		panelY += 35

		// Spin slider
		rl.DrawText("Spin (winding, radians per unit radius)", int32(panelX), int32(panelY), 14, rl.Gray)
		panelY += 18
		newSpin := gui.SliderBar(
			rl.Rectangle{X: panelX, Y: panelY, Width: float32(panelWidth - 80), Height: 20},
			"0", "3.0",
			params.Spin, 0, 3.0,
		)
		rl.DrawText(fmt.Sprintf("%.2f", params.Spin), int32(panelX+float32(panelWidth-70)), int32(panelY+2), 16, rl.DarkGray)
		if newSpin != params.Spin {
			params.Spin = newSpin
			needsRegen = true
		}
		panelY += 35

		// Jitter slider
		rl.DrawText("Jitter (scatter amplitude)", int32(panelX), int32(panelY), 14, rl.Gray)
		panelY += 18
		newJitter := gui.SliderBar(
			rl.Rectangle{X: panelX, Y: panelY, Width: float32(panelWidth - 80), Height: 20},
			"0", "1.0",
			params.Jitter, 0, 1.0,
		)
		rl.DrawText(fmt.Sprintf("%.2f", params.Jitter), int32(panelX+float32(panelWidth-70)), int32(panelY+2), 16, rl.DarkGray)
		if newJitter != params.Jitter {
			params.Jitter = newJitter
			needsRegen = true
		}
		panelY += 35

		// Density power slider
		rl.DrawText("Density power (center bias exponent)", int32(panelX), int32(panelY), 14, rl.Gray)
		panelY += 18
		newDensity := gui.SliderBar(
			rl.Rectangle{X: panelX, Y: panelY, Width: float32(panelWidth - 80), Height: 20},
			"0.5", "4.0",
			params.DensityPower, 0.5, 4.0,
		)
		rl.DrawText(fmt.Sprintf("%.2f", params.DensityPower), int32(panelX+float32(panelWidth-70)), int32(panelY+2), 16, rl.DarkGray)
		if newDensity != params.DensityPower {
			params.DensityPower = newDensity
			needsRegen = true
		}
		panelY += 35

		// Size falloff slider
		rl.DrawText("Size falloff (rim shrink fraction)", int32(panelX), int32(panelY), 14, rl.Gray)
		panelY += 18
		newFalloff := gui.SliderBar(
			rl.Rectangle{X: panelX, Y: panelY, Width: float32(panelWidth - 80), Height: 20},
			"0", "1.0",
			params.SizeFalloff, 0, 1.0,
		)
		rl.DrawText(fmt.Sprintf("%.2f", params.SizeFalloff), int32(panelX+float32(panelWidth-70)), int32(panelY+2), 16, rl.DarkGray)
		if newFalloff != params.SizeFalloff {
			params.SizeFalloff = newFalloff
			needsRegen = true
		}
		panelY += 35

		// Count slider
		rl.DrawText("Count (particle budget)", int32(panelX), int32(panelY), 14, rl.Gray)
		panelY += 18
		newCount := gui.SliderBar(
			rl.Rectangle{X: panelX, Y: panelY, Width: float32(panelWidth - 80), Height: 20},
			"500", "8000",
			float32(params.Count), 500, 8000,
		)
		rl.DrawText(fmt.Sprintf("%d", params.Count), int32(panelX+float32(panelWidth-70)), int32(panelY+2), 16, rl.DarkGray)
		if int(newCount) != params.Count {
			params.Count = int(newCount)
			needsRegen = true
		}
		panelY += 35

		// Seed slider
		rl.DrawText("Seed", int32(panelX), int32(panelY), 14, rl.Gray)
		panelY += 18
		newSeed := gui.SliderBar(
			rl.Rectangle{X: panelX, Y: panelY, Width: float32(panelWidth - 80), Height: 20},
			"0", "99999",
			float32(params.Seed), 0, 99999,
		)
		rl.DrawText(fmt.Sprintf("%d", params.Seed), int32(panelX+float32(panelWidth-70)), int32(panelY+2), 16, rl.DarkGray)
		if int64(newSeed) != params.Seed {
			params.Seed = int64(newSeed)
			needsRegen = true
		}
		panelY += 45

		// Buttons
		if gui.Button(rl.Rectangle{X: panelX, Y: panelY, Width: 120, Height: 30}, toggleText(animating, "Stop", "Animate")) {
			animating = !animating
		}

		if gui.Button(rl.Rectangle{X: panelX + 130, Y: panelY, Width: 120, Height: 30}, "Reset Time") {
			simTime = 0
			needsRegen = true
		}
		panelY += 45

		if gui.Button(rl.Rectangle{X: panelX, Y: panelY, Width: 120, Height: 30}, "Random Seed") {
			params.Seed = int64(rl.GetRandomValue(0, 99999))
			needsRegen = true
		}

		if gui.Button(rl.Rectangle{X: panelX + 130, Y: panelY, Width: 120, Height: 30}, "Reset All") {
			params = defaults
			simTime = 0
			needsRegen = true
		}
		panelY += 55

		// Output YAML
		rl.DrawText("YAML Config:", int32(panelX), int32(panelY), 16, rl.DarkGray)
		panelY += 25
		yamlLines := configYAML(params)
		for _, line := range yamlLines {
			rl.DrawText(line, int32(panelX), int32(panelY), 14, rl.Gray)
			panelY += 16
		}

		// Instructions
		rl.DrawText("Press C to copy YAML to clipboard", int32(panelX), int32(windowHeight-30), 12, rl.LightGray)

		// Copy to clipboard on C key
		if rl.IsKeyPressed(rl.KeyC) {
			rl.SetClipboardText(strings.Join(configYAML(params), "\n"))
		}

		rl.EndDrawing()
	}
}

func toggleText(cond bool, ifTrue, ifFalse string) string {
	if cond {
		return ifTrue
	}
	return ifFalse
}

// regenerate pushes the slider values into the live config and builds
// a fresh field through the real generation path. Returns the field
// and the particle distances for the stats line.
func regenerate(params FieldParams, simTime float32) (*field.Field, []float64) {
	cfg := config.Cfg()
	cfg.Field.Radius = float64(params.Radius)
	cfg.Field.Arms = params.Arms
	cfg.Field.Spin = float64(params.Spin)
	cfg.Field.Jitter = float64(params.Jitter)
	cfg.Field.SizeFalloff = float64(params.SizeFalloff)
	if err := cfg.Recompute(); err != nil {
		slog.Error("failed to recompute config", "error", err)
		os.Exit(1)
	}

	profile := device.Current(1920, "")
	profile.DensityPower = float64(params.DensityPower)

	rng := rand.New(rand.NewSource(params.Seed))
	f := field.New(params.Count, profile, rng)
	f.Advance(simTime)

	radii := make([]float64, 0, f.Count)
	f.Each(func(pos components.Position, _ components.Sprite) {
		radii = append(radii, math.Sqrt(float64(pos.X*pos.X+pos.Y*pos.Y+pos.Z*pos.Z)))
	})
	return f, radii
}

// configYAML renders the slider values as config file lines.
func configYAML(params FieldParams) []string {
	return []string{
		"field:",
		fmt.Sprintf("  radius: %.1f", params.Radius),
		fmt.Sprintf("  arms: %d", params.Arms),
		fmt.Sprintf("  spin: %.2f", params.Spin),
		fmt.Sprintf("  jitter: %.2f", params.Jitter),
		fmt.Sprintf("  size_falloff: %.2f", params.SizeFalloff),
		fmt.Sprintf("  base_count: %d", params.Count),
		"device:",
		"  full:",
		fmt.Sprintf("    density_power: %.2f", params.DensityPower),
	}
}

func tint8(v float32) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(v * 255)
}
