// Package viewport resolves the drawable size from the host and keeps
// the camera framed for the active device tier.
package viewport

import (
	"github.com/pthm-cable/starfield/device"
)

// Source exposes the host's size probes. Each probe may legitimately
// report zero (detached container, zero-area surface); ResolveSize
// walks them in priority order.
type Source interface {
	ContainerSize() (int, int)
	SurfaceSize() (int, int)
	ClientSize() (int, int)
	WindowSize() (int, int)
}

// CameraTarget receives framing updates. The render backend satisfies
// this.
type CameraTarget interface {
	ApplyCamera(cam device.Camera, aspect float32)
}

// Static returns a Source whose probes all report one fixed box.
// Hosts without live geometry (headless runs, benches) use it.
func Static(w, h int) Source {
	return staticSource{w: w, h: h}
}

type staticSource struct{ w, h int }

func (s staticSource) ContainerSize() (int, int) { return s.w, s.h }
func (s staticSource) SurfaceSize() (int, int)   { return s.w, s.h }
func (s staticSource) ClientSize() (int, int)    { return s.w, s.h }
func (s staticSource) WindowSize() (int, int)    { return s.w, s.h }

// State is the last-observed viewport record. The coordinator owns the
// single mutable instance.
type State struct {
	Width  int
	Height int
	Tier   device.Tier
}

// Adapter owns camera geometry per tier and size resolution.
type Adapter struct {
	src Source
	cam CameraTarget
}

// NewAdapter creates an adapter over the host's size probes and the
// backend camera.
func NewAdapter(src Source, cam CameraTarget) *Adapter {
	return &Adapter{src: src, cam: cam}
}

// ResolveSize walks the probe chain: container box, surface box,
// surface client box, then window inner size. A probe is consulted
// only if the prior one reported a non-positive dimension. The window
// probe's result is returned as-is, zero or not; callers decide how to
// treat a dead viewport.
func (a *Adapter) ResolveSize() (int, int) {
	return ResolveSize(a.src)
}

// ResolveSize is the probe chain over any Source.
func ResolveSize(src Source) (int, int) {
	if w, h := src.ContainerSize(); w > 0 && h > 0 {
		return w, h
	}
	if w, h := src.SurfaceSize(); w > 0 && h > 0 {
		return w, h
	}
	if w, h := src.ClientSize(); w > 0 && h > 0 {
		return w, h
	}
	return src.WindowSize()
}

// ApplyCameraForTier pushes the tier's position, look-at and FOV to the
// backend with the aspect for the given size, recomputing the
// projection. Must run before any render that follows a tier or size
// change.
func (a *Adapter) ApplyCameraForTier(p device.Profile, w, h int) {
	aspect := float32(1)
	if h > 0 {
		aspect = float32(w) / float32(h)
	}
	a.cam.ApplyCamera(p.Camera, aspect)
}
