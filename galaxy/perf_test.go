package galaxy

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"
)

// recordingHandler captures slog records for assertions.
type recordingHandler struct {
	mu      sync.Mutex
	records []slog.Record
}

func (h *recordingHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h *recordingHandler) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.records = append(h.records, r.Clone())
	return nil
}

func (h *recordingHandler) WithAttrs([]slog.Attr) slog.Handler { return h }
func (h *recordingHandler) WithGroup(string) slog.Handler      { return h }

func (h *recordingHandler) find(msg string) *slog.Record {
	h.mu.Lock()
	defer h.mu.Unlock()
	for i := range h.records {
		if h.records[i].Message == msg {
			return &h.records[i]
		}
	}
	return nil
}

func TestFrameRateDiagnosticThrottled(t *testing.T) {
	h := &recordingHandler{}
	clock := newManualClock()
	g := newTestGalaxy(t, Options{
		Backend: newFakeBackend(), Width: 1920, Height: 1080,
		UserAgent: desktopUA, Seed: 7, Clock: clock, Logger: slog.New(h),
	})

	// The first frame only stamps the baseline; frames inside the
	// interval stay quiet.
	clock.advance(16 * time.Millisecond)
	g.Frame(clock.Now())
	clock.advance(time.Second)
	g.Frame(clock.Now())

	if h.find("frame_rate") != nil {
		t.Fatal("expected no diagnostic inside the log interval")
	}

	clock.advance(6 * time.Second)
	g.Frame(clock.Now())

	if h.find("frame_rate") == nil {
		t.Fatal("expected a diagnostic once the log interval elapsed")
	}
}

func TestFrameRateDiagnosticCarriesPerfStats(t *testing.T) {
	h := &recordingHandler{}
	clock := newManualClock()
	g := newTestGalaxy(t, Options{
		Backend: newFakeBackend(), Width: 1920, Height: 1080,
		UserAgent: desktopUA, Seed: 7, Clock: clock, Logger: slog.New(h),
	})

	clock.advance(16 * time.Millisecond)
	g.Frame(clock.Now())
	clock.advance(6 * time.Second)
	g.Frame(clock.Now())

	rec := h.find("frame_rate")
	if rec == nil {
		t.Fatal("expected a frame_rate diagnostic")
	}

	var perf slog.Value
	rec.Attrs(func(a slog.Attr) bool {
		if a.Key == "perf" {
			perf = a.Value.Resolve()
		}
		return true
	})
	if perf.Kind() != slog.KindGroup {
		t.Fatalf("expected the diagnostic to carry the aggregated stats group, got %v", perf.Kind())
	}

	keys := map[string]bool{}
	for _, a := range perf.Group() {
		keys[a.Key] = true
	}
	for _, want := range []string{"avg_tick_us", "min_tick_us", "max_tick_us", "ticks_per_sec"} {
		if !keys[want] {
			t.Errorf("expected %s in the stats group, got %v", want, keys)
		}
	}
}
