package telemetry

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"
	"github.com/lao-tseu-is-alive/go-flock-simulation/pkg/flock"
	"gopkg.in/yaml.v3"
)

// Recorder writes run output (stats.csv, config.yaml) into a directory.
// A nil Recorder is valid and discards everything.
type Recorder struct {
	dir           string
	statsFile     *os.File
	headerWritten bool
}

// NewRecorder creates the output directory and stats.csv.
// Returns nil if dir is empty (output disabled).
func NewRecorder(dir string) (*Recorder, error) {
	if dir == "" {
		return nil, nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	f, err := os.Create(filepath.Join(dir, "stats.csv"))
	if err != nil {
		return nil, fmt.Errorf("creating stats.csv: %w", err)
	}
	return &Recorder{dir: dir, statsFile: f}, nil
}

// Dir returns the output directory.
func (r *Recorder) Dir() string {
	if r == nil {
		return ""
	}
	return r.dir
}

// WriteConfig saves the configuration the run used as YAML.
func (r *Recorder) WriteConfig(cfg flock.Config) error {
	if r == nil {
		return nil
	}
	b, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.WriteFile(filepath.Join(r.dir, "config.yaml"), b, 0o644); err != nil {
		return fmt.Errorf("writing config.yaml: %w", err)
	}
	return nil
}

// WriteStats appends one row to stats.csv, the first row carries the header.
func (r *Recorder) WriteStats(s Stats) error {
	if r == nil {
		return nil
	}
	records := []Stats{s}

	if !r.headerWritten {
		if err := gocsv.Marshal(records, r.statsFile); err != nil {
			return fmt.Errorf("writing stats: %w", err)
		}
		r.headerWritten = true
		return nil
	}
	if err := gocsv.MarshalWithoutHeaders(records, r.statsFile); err != nil {
		return fmt.Errorf("writing stats: %w", err)
	}
	return nil
}

// Close flushes and closes the output files.
func (r *Recorder) Close() error {
	if r == nil {
		return nil
	}
	return errors.Join(r.statsFile.Sync(), r.statsFile.Close())
}
