// Package main benchmarks field generation and per-frame advance cost
// across particle counts and tiers, and optionally soaks the full
// pipeline against the headless backend.
//
// Usage: go run ./cmd/fieldbench -output results/
package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"math/rand"
	"sort"
	"strconv"
	"strings"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/starfield/components"
	"github.com/pthm-cable/starfield/config"
	"github.com/pthm-cable/starfield/device"
	"github.com/pthm-cable/starfield/field"
	"github.com/pthm-cable/starfield/galaxy"
	"github.com/pthm-cable/starfield/renderer"
	"github.com/pthm-cable/starfield/telemetry"
	"github.com/pthm-cable/starfield/viewport"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	countList := flag.String("counts", "1000,2000,4000,8000", "Comma-separated particle counts to sweep")
	frames := flag.Int("frames", 600, "Advance steps per measurement")
	seed := flag.Int64("seed", 42, "RNG seed for field generation")
	outputDir := flag.String("output", "", "Output directory for bench CSV (empty = stdout only)")
	soak := flag.Int("soak", 0, "Seconds to soak the full pipeline headless (0 = skip)")
	flag.Parse()

	if *frames < 1 {
		log.Fatal("-frames must be positive")
	}

	if err := config.Init(*configPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	counts, err := parseCounts(*countList)
	if err != nil {
		log.Fatalf("invalid -counts: %v", err)
	}

	out, err := telemetry.NewOutputManager(*outputDir)
	if err != nil {
		log.Fatalf("failed to create output directory: %v", err)
	}
	defer out.Close()

	// Representative widths that resolve to each tier on a desktop UA
	widths := []int{480, 800, 1920}

	step := config.Cfg().Derived.TimeStep32

	fmt.Printf("Benchmarking %d counts x %d tiers, %d frames each\n", len(counts), len(widths), *frames)

	start := time.Now()
	for _, width := range widths {
		profile := device.Current(width, "")
		for _, count := range counts {
			rec := benchOne(count, profile, *seed, *frames, step)
			if err := out.WriteBench(rec); err != nil {
				log.Printf("failed to write bench row: %v", err)
			}
			fmt.Printf("%-8s n=%-6d build=%6dus advance avg=%7.1fus p95=%7.1fus max=%7.1fus mean_r=%5.2f sd=%4.2f\n",
				rec.Tier, rec.Particles, rec.BuildUS,
				rec.AdvanceAvgUS, rec.AdvanceP95US, rec.AdvanceMaxUS,
				rec.MeanRadius, rec.RadiusStdDev)
		}
	}
	fmt.Printf("Sweep complete in %s\n", time.Since(start).Round(time.Millisecond))

	if *soak > 0 {
		runSoak(*soak, *seed)
	}

	if dir := out.Dir(); dir != "" {
		fmt.Printf("Results written to %s\n", dir)
	}
}

// benchOne times one build plus a window of advance steps and
// summarizes the particle radius distribution.
func benchOne(count int, p device.Profile, seed int64, frames int, step float32) telemetry.BenchRecord {
	rng := rand.New(rand.NewSource(seed))

	buildStart := time.Now()
	f := field.New(count, p, rng)
	buildUS := time.Since(buildStart).Microseconds()

	durations := make([]float64, frames)
	var simTime float32
	for i := 0; i < frames; i++ {
		simTime += step
		t0 := time.Now()
		f.Advance(simTime)
		durations[i] = float64(time.Since(t0).Nanoseconds()) / 1e3
	}
	sort.Float64s(durations)

	radii := make([]float64, 0, f.Count)
	f.Each(func(pos components.Position, _ components.Sprite) {
		radii = append(radii, math.Sqrt(float64(pos.X*pos.X+pos.Y*pos.Y+pos.Z*pos.Z)))
	})

	return telemetry.BenchRecord{
		Particles:    count,
		Tier:         p.Tier.String(),
		BuildUS:      buildUS,
		AdvanceAvgUS: stat.Mean(durations, nil),
		AdvanceP95US: stat.Quantile(0.95, stat.Empirical, durations, nil),
		AdvanceMaxUS: durations[len(durations)-1],
		MeanRadius:   stat.Mean(radii, nil),
		RadiusStdDev: stat.StdDev(radii, nil),
	}
}

// runSoak drives the full pipeline against the headless backend at the
// configured frame pacing and reports the sustained tick cost.
func runSoak(seconds int, seed int64) {
	cfg := config.Cfg()

	g, err := galaxy.New(galaxy.Options{
		Backend: renderer.NewHeadless(),
		Source:  viewport.Static(cfg.Screen.Width, cfg.Screen.Height),
		Width:   cfg.Screen.Width,
		Height:  cfg.Screen.Height,
		Seed:    seed,
	})
	if err != nil {
		log.Fatalf("failed to create galaxy: %v", err)
	}
	defer g.Destroy()

	drv := galaxy.NewDriver(g, time.Second/time.Duration(cfg.Screen.TargetFPS))
	fmt.Printf("Soaking %d particles for %ds at %d FPS target\n", g.Count(), seconds, cfg.Screen.TargetFPS)

	drv.Start()
	time.Sleep(time.Duration(seconds) * time.Second)
	drv.Stop()

	stats := g.PerfStats()
	fmt.Printf("Soak: %d frames, avg tick %s, max %s, %.1f ticks/sec\n",
		g.Frames(), stats.AvgTickDuration, stats.MaxTickDuration, stats.TicksPerSecond)
	for _, phase := range []string{telemetry.PhaseSettle, telemetry.PhaseAdvance, telemetry.PhaseRender} {
		fmt.Printf("  %s: %.1f%%\n", phase, stats.PhasePct[phase])
	}
}

func parseCounts(list string) ([]int, error) {
	parts := strings.Split(list, ",")
	counts := make([]int, 0, len(parts))
	for _, part := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("parsing %q: %w", part, err)
		}
		if n < 1 {
			return nil, fmt.Errorf("count %d must be positive", n)
		}
		counts = append(counts, n)
	}
	return counts, nil
}
