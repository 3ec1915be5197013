package telemetry

// BenchRecord is one row of a field benchmark sweep.
type BenchRecord struct {
	Particles    int     `csv:"particles"`
	Tier         string  `csv:"tier"`
	BuildUS      int64   `csv:"build_us"`
	AdvanceAvgUS float64 `csv:"advance_avg_us"`
	AdvanceP95US float64 `csv:"advance_p95_us"`
	AdvanceMaxUS float64 `csv:"advance_max_us"`
	MeanRadius   float64 `csv:"mean_radius"`
	RadiusStdDev float64 `csv:"radius_std_dev"`
}
