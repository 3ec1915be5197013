package galaxy

import (
	"time"

	"github.com/pthm-cable/starfield/config"
	"github.com/pthm-cable/starfield/telemetry"
)

// recordFrameLocked feeds the collector, flushes the periodic CSV row,
// and emits the throttled frame-rate diagnostic. Observability only;
// nothing here affects control flow.
func (g *Galaxy) recordFrameLocked(now time.Time) {
	g.perf.RecordFrame()
	g.frames++

	cfg := config.Cfg()

	if g.output != nil {
		window := int32(cfg.Telemetry.PerfCollectorWindow)
		if window > 0 && g.frames%window == 0 {
			if err := g.output.WritePerf(g.perf.Stats(), g.frames); err != nil {
				g.logger.Error("perf_write_failed", "error", err)
			}
		}
	}

	if g.lastFPSLog.IsZero() {
		g.lastFPSLog = now
		return
	}
	if now.Sub(g.lastFPSLog) < cfg.Derived.FPSLogInterval {
		return
	}
	g.lastFPSLog = now

	stats := g.perf.Stats()
	g.logger.Info("frame_rate",
		"fps", int(stats.FPS),
		"frames", g.frames,
		"perf", stats,
	)
}

// PerfStats returns aggregated frame statistics over the rolling
// window.
func (g *Galaxy) PerfStats() telemetry.PerfStats {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.perf.Stats()
}
