package galaxy

import (
	"time"

	"github.com/pthm-cable/starfield/config"
	"github.com/pthm-cable/starfield/telemetry"
)

// Frame runs one unit of animation work at the given moment: settle
// pending coordinator deadlines, and if animating, step the simulation
// clock, recompute every orbit, creep the whole-field yaw, and render
// once. The host owns the scheduling; a paused instance still settles
// so a resize landed while hidden applies on the next host frame.
func (g *Galaxy) Frame(now time.Time) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.destroyed {
		return
	}
	if !g.animating {
		g.settleLocked(now)
		return
	}

	d := &config.Cfg().Derived

	g.perf.StartTick()
	g.perf.StartPhase(telemetry.PhaseSettle)
	g.settleLocked(now)

	g.perf.StartPhase(telemetry.PhaseAdvance)
	g.simTime += d.TimeStep32
	g.field.Advance(g.simTime)
	g.field.Rotate(d.RotationStep32)

	g.perf.StartPhase(telemetry.PhaseRender)
	g.renderLocked()
	g.perf.EndTick()

	g.recordFrameLocked(now)
}

// Pause stops animation immediately. Coordinator deadlines keep
// settling on later frames; no render happens until an explicit
// resume.
func (g *Galaxy) Pause() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.animating {
		return
	}
	g.animating = false
	g.logger.Info("animation_paused")
}

// Resume restarts animation. It reports whether this call started it:
// false when destroyed or already animating, so two resumes never
// double the frame work.
func (g *Galaxy) Resume() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.resumeLocked() {
		g.logger.Info("animation_resumed")
		return true
	}
	return false
}

func (g *Galaxy) resumeLocked() bool {
	if g.destroyed || g.animating {
		return false
	}
	g.animating = true
	return true
}

// renderLocked issues one render. Failures are logged and contained;
// the next frame schedules independently.
func (g *Galaxy) renderLocked() {
	if err := g.backend.Render(g.field); err != nil {
		g.logger.Error("render_failed", "error", err)
	}
}
