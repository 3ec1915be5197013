package renderer

import (
	"github.com/pthm-cable/starfield/device"
	"github.com/pthm-cable/starfield/field"
	"github.com/pthm-cable/starfield/galaxy"
)

var _ galaxy.Backend = (*Headless)(nil)

// Headless drops every draw call. Soak runs and benchmarks drive the
// full pipeline against it without a GPU.
type Headless struct{}

// NewHeadless returns the no-op backend.
func NewHeadless() *Headless {
	return &Headless{}
}

func (*Headless) CreateGlyph(string, int) error      { return nil }
func (*Headless) ReleaseGlyph(string) error          { return nil }
func (*Headless) ApplyCamera(device.Camera, float32) {}
func (*Headless) SetSize(int, int)                   {}
func (*Headless) SetPixelRatio(float32)              {}
func (*Headless) Render(*field.Field) error          { return nil }
