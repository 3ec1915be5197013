package galaxy

import (
	"errors"
	"testing"
	"time"

	"github.com/pthm-cable/starfield/config"
	"github.com/pthm-cable/starfield/device"
	"github.com/pthm-cable/starfield/field"
)

func init() {
	// Initialize config for tests
	config.MustInit("")
}

const desktopUA = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36"
const phoneUA = "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) Mobile/15E148"

// appliedCamera records one ApplyCamera call.
type appliedCamera struct {
	cam    device.Camera
	aspect float32
}

// fakeBackend records every backend call. Tests driving frames from a
// goroutine read it only after Driver.Stop, which waits for the
// in-flight frame.
type fakeBackend struct {
	failCreate      error
	failCreateAfter int // fail once this many creates succeeded; 0 = fail every create
	failRender      error

	created   []string
	createdPx []int
	released  map[string]int
	cameras   []appliedCamera
	sizes     [][2]int
	ratios    []float32
	renders   int
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{released: make(map[string]int)}
}

func (b *fakeBackend) CreateGlyph(label string, px int) error {
	if b.failCreate != nil && len(b.created) >= b.failCreateAfter {
		return b.failCreate
	}
	b.created = append(b.created, label)
	b.createdPx = append(b.createdPx, px)
	return nil
}

func (b *fakeBackend) ReleaseGlyph(label string) error {
	b.released[label]++
	return nil
}

func (b *fakeBackend) ApplyCamera(cam device.Camera, aspect float32) {
	b.cameras = append(b.cameras, appliedCamera{cam: cam, aspect: aspect})
}

func (b *fakeBackend) SetSize(w, h int) {
	b.sizes = append(b.sizes, [2]int{w, h})
}

func (b *fakeBackend) SetPixelRatio(ratio float32) {
	b.ratios = append(b.ratios, ratio)
}

func (b *fakeBackend) Render(f *field.Field) error {
	if b.failRender != nil {
		return b.failRender
	}
	b.renders++
	return nil
}

// sizedSource reports one adjustable box from every probe.
type sizedSource struct {
	w, h int
}

func (s *sizedSource) ContainerSize() (int, int) { return s.w, s.h }
func (s *sizedSource) SurfaceSize() (int, int)   { return s.w, s.h }
func (s *sizedSource) ClientSize() (int, int)    { return s.w, s.h }
func (s *sizedSource) WindowSize() (int, int)    { return s.w, s.h }

// manualClock is advanced explicitly by tests.
type manualClock struct {
	now time.Time
}

func (c *manualClock) Now() time.Time { return c.now }

func (c *manualClock) advance(d time.Duration) { c.now = c.now.Add(d) }

func newManualClock() *manualClock {
	return &manualClock{now: time.Unix(1700000000, 0)}
}

func newTestGalaxy(t *testing.T, opts Options) *Galaxy {
	t.Helper()
	g, err := New(opts)
	if err != nil {
		t.Fatalf("expected construction to succeed, got %v", err)
	}
	return g
}

func TestNewFullTier(t *testing.T) {
	backend := newFakeBackend()
	g := newTestGalaxy(t, Options{
		Backend:   backend,
		Width:     1920,
		Height:    1080,
		UserAgent: desktopUA,
		Seed:      7,
	})

	if g.Count() != 8000 {
		t.Errorf("expected 8000 particles at full tier, got %d", g.Count())
	}
	if g.Tier() != device.TierFull {
		t.Errorf("expected full tier, got %v", g.Tier())
	}
	if !g.Animating() {
		t.Error("expected instance to return animating")
	}
}

func TestNewCompactTierScalesCount(t *testing.T) {
	backend := newFakeBackend()
	g := newTestGalaxy(t, Options{
		Backend:   backend,
		Width:     375,
		Height:    700,
		UserAgent: phoneUA,
		Seed:      7,
	})

	// 8000 * 0.3 on the compact tier
	if g.Count() != 2400 {
		t.Errorf("expected 2400 particles at compact tier, got %d", g.Count())
	}
	if g.Tier() != device.TierCompact {
		t.Errorf("expected compact tier, got %v", g.Tier())
	}
	if len(backend.createdPx) == 0 || backend.createdPx[0] != 64 {
		t.Errorf("expected 64px glyphs on compact, got %v", backend.createdPx)
	}
}

func TestNewCreatesExactlyTwoGlyphs(t *testing.T) {
	backend := newFakeBackend()
	newTestGalaxy(t, Options{
		Backend: backend, Width: 1920, Height: 1080, UserAgent: desktopUA, Seed: 7,
	})

	if len(backend.created) != 2 {
		t.Fatalf("expected exactly 2 glyph textures, got %d", len(backend.created))
	}
	if backend.created[0] != "1" || backend.created[1] != "0" {
		t.Errorf("expected glyph labels [1 0], got %v", backend.created)
	}
	if backend.createdPx[0] != 128 || backend.createdPx[1] != 128 {
		t.Errorf("expected 128px glyphs on full, got %v", backend.createdPx)
	}
}

func TestNewAppliesCameraAndRendersOnce(t *testing.T) {
	backend := newFakeBackend()
	newTestGalaxy(t, Options{
		Backend: backend, Width: 1920, Height: 1080, UserAgent: desktopUA, Seed: 7,
	})

	if len(backend.cameras) != 1 {
		t.Fatalf("expected 1 camera application, got %d", len(backend.cameras))
	}
	if backend.cameras[0].cam.FOV != 75 {
		t.Errorf("expected FOV 75 at full tier, got %v", backend.cameras[0].cam.FOV)
	}
	wantAspect := float32(1920) / float32(1080)
	if backend.cameras[0].aspect != wantAspect {
		t.Errorf("expected aspect %v, got %v", wantAspect, backend.cameras[0].aspect)
	}
	if len(backend.sizes) != 1 || backend.sizes[0] != [2]int{1920, 1080} {
		t.Errorf("expected one 1920x1080 surface size, got %v", backend.sizes)
	}
	if backend.renders != 1 {
		t.Errorf("expected exactly one construction render, got %d", backend.renders)
	}
}

func TestNewClampsPixelRatio(t *testing.T) {
	backend := newFakeBackend()
	newTestGalaxy(t, Options{
		Backend: backend, Width: 1920, Height: 1080, UserAgent: desktopUA,
		PixelRatio: 3, Seed: 7,
	})

	if len(backend.ratios) != 1 {
		t.Fatalf("expected 1 pixel ratio application, got %d", len(backend.ratios))
	}
	if backend.ratios[0] != 2 {
		t.Errorf("expected ratio capped at 2 on full tier, got %v", backend.ratios[0])
	}
}

func TestNewNilBackend(t *testing.T) {
	_, err := New(Options{Width: 1920, Height: 1080})
	if err == nil {
		t.Fatal("expected construction error with nil backend")
	}
	if !errors.Is(err, ErrBackendUnavailable) {
		t.Errorf("expected ErrBackendUnavailable, got %v", err)
	}
}

func TestNewGlyphFailureFatal(t *testing.T) {
	backend := newFakeBackend()
	boom := errors.New("no gl context")
	backend.failCreate = boom

	_, err := New(Options{
		Backend: backend, Width: 1920, Height: 1080, UserAgent: desktopUA, Seed: 7,
	})
	if err == nil {
		t.Fatal("expected construction error when glyph creation fails")
	}
	if !errors.Is(err, boom) {
		t.Errorf("expected wrapped backend error, got %v", err)
	}
}

func TestNewPartialGlyphFailureReleasesCreated(t *testing.T) {
	backend := newFakeBackend()
	backend.failCreate = errors.New("lost context")
	backend.failCreateAfter = 1 // first label uploads, second fails

	_, err := New(Options{
		Backend: backend, Width: 1920, Height: 1080, UserAgent: desktopUA, Seed: 7,
	})
	if err == nil {
		t.Fatal("expected construction error when the second glyph fails")
	}
	if len(backend.created) != 1 || backend.created[0] != "1" {
		t.Fatalf("expected only the first glyph created, got %v", backend.created)
	}
	if backend.released["1"] != 1 {
		t.Errorf("expected glyph %q released once on aborted construction, got %d releases",
			"1", backend.released["1"])
	}
}

func TestFrameAdvancesAndRenders(t *testing.T) {
	backend := newFakeBackend()
	clock := newManualClock()
	g := newTestGalaxy(t, Options{
		Backend: backend, Width: 1920, Height: 1080, UserAgent: desktopUA,
		Seed: 7, Clock: clock,
	})

	base := backend.renders
	for i := 0; i < 5; i++ {
		clock.advance(16 * time.Millisecond)
		g.Frame(clock.Now())
	}

	if backend.renders != base+5 {
		t.Errorf("expected %d renders after 5 frames, got %d", base+5, backend.renders)
	}
	if g.Frames() != 5 {
		t.Errorf("expected frame counter 5, got %d", g.Frames())
	}
}

func TestPauseStopsRendering(t *testing.T) {
	backend := newFakeBackend()
	clock := newManualClock()
	g := newTestGalaxy(t, Options{
		Backend: backend, Width: 1920, Height: 1080, UserAgent: desktopUA,
		Seed: 7, Clock: clock,
	})

	g.Pause()
	if g.Animating() {
		t.Error("expected animating false after pause")
	}

	base := backend.renders
	clock.advance(16 * time.Millisecond)
	g.Frame(clock.Now())
	if backend.renders != base {
		t.Errorf("expected no renders while paused, got %d extra", backend.renders-base)
	}
}

func TestResumeIsCompareAndSwap(t *testing.T) {
	backend := newFakeBackend()
	g := newTestGalaxy(t, Options{
		Backend: backend, Width: 1920, Height: 1080, UserAgent: desktopUA, Seed: 7,
	})

	if g.Resume() {
		t.Error("expected resume to report false while already animating")
	}

	g.Pause()
	if !g.Resume() {
		t.Error("expected resume to start animation after pause")
	}
	if g.Resume() {
		t.Error("expected second resume to report false")
	}
}

func TestDestroyReleasesGlyphsOnce(t *testing.T) {
	backend := newFakeBackend()
	g := newTestGalaxy(t, Options{
		Backend: backend, Width: 1920, Height: 1080, UserAgent: desktopUA, Seed: 7,
	})

	g.Destroy()
	g.Destroy()
	g.Destroy()

	if !g.Destroyed() {
		t.Error("expected destroyed true")
	}
	for _, label := range []string{"1", "0"} {
		if backend.released[label] != 1 {
			t.Errorf("expected glyph %q released exactly once, got %d", label, backend.released[label])
		}
	}
}

func TestDestroyStopsFramesAndResume(t *testing.T) {
	backend := newFakeBackend()
	clock := newManualClock()
	g := newTestGalaxy(t, Options{
		Backend: backend, Width: 1920, Height: 1080, UserAgent: desktopUA,
		Seed: 7, Clock: clock,
	})

	g.Destroy()

	base := backend.renders
	clock.advance(16 * time.Millisecond)
	g.Frame(clock.Now())
	if backend.renders != base {
		t.Error("expected no renders after destroy")
	}
	if g.Resume() {
		t.Error("expected resume to report false after destroy")
	}
	if g.Animating() {
		t.Error("expected animating false after destroy")
	}
}

func TestDestroyedDeadlineIsInert(t *testing.T) {
	backend := newFakeBackend()
	clock := newManualClock()
	src := &sizedSource{w: 1920, h: 1080}
	g := newTestGalaxy(t, Options{
		Backend: backend, Source: src, Width: 1920, Height: 1080,
		UserAgent: desktopUA, Seed: 7, Clock: clock,
	})

	src.w, src.h = 800, 600
	g.NotifyResize()
	g.Destroy()

	cameras := len(backend.cameras)
	sizes := len(backend.sizes)

	clock.advance(time.Second)
	g.Frame(clock.Now())

	if len(backend.cameras) != cameras || len(backend.sizes) != sizes {
		t.Error("expected a deadline armed before destroy to do nothing after it")
	}
	if got := g.Viewport(); got.Width != 1920 || got.Height != 1080 {
		t.Errorf("expected viewport state unchanged after destroy, got %dx%d", got.Width, got.Height)
	}
}

func TestRenderFailureContained(t *testing.T) {
	backend := newFakeBackend()
	clock := newManualClock()
	g := newTestGalaxy(t, Options{
		Backend: backend, Width: 1920, Height: 1080, UserAgent: desktopUA,
		Seed: 7, Clock: clock,
	})

	backend.failRender = errors.New("device lost")
	clock.advance(16 * time.Millisecond)
	g.Frame(clock.Now())

	// The failed frame is contained; clearing the fault lets the next
	// frame render normally.
	backend.failRender = nil
	base := backend.renders
	clock.advance(16 * time.Millisecond)
	g.Frame(clock.Now())

	if backend.renders != base+1 {
		t.Errorf("expected rendering to continue after a contained failure, got %d renders", backend.renders-base)
	}
	if !g.Animating() {
		t.Error("expected animation to keep running through a render failure")
	}
}
