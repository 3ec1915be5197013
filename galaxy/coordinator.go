package galaxy

import (
	"time"

	"github.com/pthm-cable/starfield/config"
	"github.com/pthm-cable/starfield/device"
	"github.com/pthm-cable/starfield/viewport"
)

// coordState is the resize coordinator's FSM state.
type coordState uint8

const (
	coordIdle coordState = iota
	coordUpdatePending
)

// coordinator holds the deferred-update state. Deadlines live next to
// the state and are stamped by the instance clock; Settle pumps them
// on the host's execution context, so there are no timer goroutines.
type coordinator struct {
	state         coordState
	sizeDeadline  time.Time
	ratioDeadline time.Time
}

// NotifyResize records a host window resize. The size update is
// debounced; a burst of notifications settles once.
func (g *Galaxy) NotifyResize() {
	g.scheduleSizeUpdate(config.Cfg().Derived.ResizeDebounce)
}

// NotifyOrientationChange records a device rotation. Same single
// update as resize, under the longer orientation window.
func (g *Galaxy) NotifyOrientationChange() {
	g.scheduleSizeUpdate(config.Cfg().Derived.OrientationDebounce)
}

// NotifyContainerChange records a container-size observation.
func (g *Galaxy) NotifyContainerChange() {
	g.scheduleSizeUpdate(config.Cfg().Derived.ResizeDebounce)
}

// NotifyVisibility bypasses debouncing. Hidden stops the animation
// immediately; visible resumes it unless destroyed or already running.
func (g *Galaxy) NotifyVisibility(visible bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.destroyed {
		return
	}

	if visible {
		if g.resumeLocked() {
			g.logger.Info("visibility_changed", "visible", true)
		}
		return
	}
	if g.animating {
		g.animating = false
		g.logger.Info("visibility_changed", "visible", false)
	}
}

// scheduleSizeUpdate arms or re-arms the single pending size update.
// Re-arming replaces the deadline; it never queues a second update.
func (g *Galaxy) scheduleSizeUpdate(window time.Duration) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.destroyed {
		return
	}
	g.coord.state = coordUpdatePending
	g.coord.sizeDeadline = g.clock.Now().Add(window)
}

// settleLocked fires any due deadline. Runs at the top of every Frame,
// which is how deferred work stays on the host's execution context. A
// deadline armed before Destroy is inert after it.
func (g *Galaxy) settleLocked(now time.Time) {
	if g.destroyed {
		return
	}

	if g.coord.state == coordUpdatePending && !now.Before(g.coord.sizeDeadline) {
		g.coord.state = coordIdle
		g.coord.sizeDeadline = time.Time{}
		g.applySizeLocked(now)
	}

	if !g.coord.ratioDeadline.IsZero() && !now.Before(g.coord.ratioDeadline) {
		g.coord.ratioDeadline = time.Time{}
		g.applyPixelRatioLocked()
	}
}

// applySizeLocked resolves the live size and pushes it through the
// camera, the surface, and one forced render. A dead or unchanged
// viewport aborts with no mutation; the next trigger retries. While
// hidden the geometry still settles but the forced render waits for
// resume.
func (g *Galaxy) applySizeLocked(now time.Time) {
	w, h := g.adapter.ResolveSize()
	if w <= 0 || h <= 0 {
		g.logger.Debug("resize_skipped", "width", w, "height", h)
		return
	}
	if w == g.state.Width && h == g.state.Height {
		return
	}

	profile := device.Current(w, g.userAgent)
	g.profile = profile

	g.adapter.ApplyCameraForTier(profile, w, h)
	g.backend.SetSize(w, h)
	if g.animating {
		g.renderLocked()
	}
	g.state = viewport.State{Width: w, Height: h, Tier: profile.Tier}

	g.coord.ratioDeadline = now.Add(config.Cfg().Derived.PixelRatioDebounce)

	g.logger.Info("viewport_settled",
		"width", w,
		"height", h,
		"tier", profile.Tier.String(),
	)
}

// applyPixelRatioLocked re-applies the host pixel ratio under the
// active profile's cap.
func (g *Galaxy) applyPixelRatioLocked() {
	ratio := g.pixelRatio
	if ratio <= 0 {
		ratio = 1
	}
	if ratio > g.profile.PixelRatioCap {
		ratio = g.profile.PixelRatioCap
	}
	g.backend.SetPixelRatio(ratio)
}
