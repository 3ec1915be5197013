package telemetry

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"
	"github.com/pthm-cable/starfield/config"
)

// OutputManager handles structured run output with CSV logging.
type OutputManager struct {
	dir       string
	perfFile  *os.File
	benchFile *os.File

	// Track if headers have been written
	perfHeaderWritten  bool
	benchHeaderWritten bool
}

// NewOutputManager creates a new output manager and initializes the output directory.
// Returns nil if dir is empty (output disabled).
func NewOutputManager(dir string) (*OutputManager, error) {
	if dir == "" {
		return nil, nil
	}

	// Create output directory
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	om := &OutputManager{dir: dir}

	// Open perf.csv
	perfPath := filepath.Join(dir, "perf.csv")
	f, err := os.Create(perfPath)
	if err != nil {
		return nil, fmt.Errorf("creating perf.csv: %w", err)
	}
	om.perfFile = f

	// Open bench.csv
	benchPath := filepath.Join(dir, "bench.csv")
	f, err = os.Create(benchPath)
	if err != nil {
		om.perfFile.Close()
		return nil, fmt.Errorf("creating bench.csv: %w", err)
	}
	om.benchFile = f

	return om, nil
}

// WriteConfig saves the current configuration as YAML.
func (om *OutputManager) WriteConfig(cfg *config.Config) error {
	if om == nil {
		return nil
	}
	configPath := filepath.Join(om.dir, "config.yaml")
	return cfg.WriteYAML(configPath)
}

// WritePerf writes a performance stats record to perf.csv.
func (om *OutputManager) WritePerf(stats PerfStats, windowEnd int32) error {
	if om == nil {
		return nil
	}

	csvRecord := stats.ToCSV(windowEnd)
	records := []PerfStatsCSV{csvRecord}

	if !om.perfHeaderWritten {
		// First write includes headers
		if err := gocsv.Marshal(records, om.perfFile); err != nil {
			return fmt.Errorf("writing perf: %w", err)
		}
		om.perfHeaderWritten = true
	} else {
		// Subsequent writes skip headers
		if err := gocsv.MarshalWithoutHeaders(records, om.perfFile); err != nil {
			return fmt.Errorf("writing perf: %w", err)
		}
	}

	return nil
}

// WriteBench writes a benchmark sweep record to bench.csv.
func (om *OutputManager) WriteBench(rec BenchRecord) error {
	if om == nil {
		return nil
	}

	records := []BenchRecord{rec}

	if !om.benchHeaderWritten {
		if err := gocsv.Marshal(records, om.benchFile); err != nil {
			return fmt.Errorf("writing bench: %w", err)
		}
		om.benchHeaderWritten = true
	} else {
		if err := gocsv.MarshalWithoutHeaders(records, om.benchFile); err != nil {
			return fmt.Errorf("writing bench: %w", err)
		}
	}

	return nil
}

// Dir returns the output directory path.
func (om *OutputManager) Dir() string {
	if om == nil {
		return ""
	}
	return om.dir
}

// Close flushes and closes all output files.
func (om *OutputManager) Close() error {
	if om == nil {
		return nil
	}

	var firstErr error

	if om.perfFile != nil {
		if err := om.perfFile.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	if om.benchFile != nil {
		if err := om.benchFile.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	return firstErr
}
