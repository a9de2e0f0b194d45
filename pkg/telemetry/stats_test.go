package telemetry

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gocarina/gocsv"
	"github.com/lao-tseu-is-alive/go-flock-simulation/pkg/flock"
	"github.com/lao-tseu-is-alive/go-flock-simulation/pkg/geometry"
)

func approx(a, b float64) bool {
	return math.Abs(a-b) <= 1e-9
}

func twoAgentSnapshot() *flock.Snapshot {
	return &flock.Snapshot{
		Tick:      30,
		Attractor: geometry.Vector3D{X: 1},
		Agents: []flock.AgentState{
			{ID: 1, Position: geometry.Zero, Velocity: geometry.Vector3D{X: 3}, Heading: geometry.Vector3D{X: 1}},
			{ID: 2, Position: geometry.Vector3D{X: 2}, Velocity: geometry.Vector3D{Z: 4}, Heading: geometry.Vector3D{Z: 1}},
		},
	}
}

func TestCompute(t *testing.T) {
	st := Compute(twoAgentSnapshot(), 0.1)

	checks := []struct {
		name      string
		got, want float64
	}{
		{"SimTime", st.SimTime, 3},
		{"SpeedMean", st.SpeedMean, 3.5},
		{"SpeedStd", st.SpeedStd, math.Sqrt(0.5)},
		{"SpeedMin", st.SpeedMin, 3},
		{"SpeedMax", st.SpeedMax, 4},
		{"CentroidX", st.CentroidX, 1},
		{"CentroidZ", st.CentroidZ, 0},
		{"Spread", st.Spread, 1},
		{"Polarization", st.Polarization, math.Sqrt(0.5)},
		{"HeadingYaw", st.HeadingYaw, math.Pi / 4},
		{"AttractorDistMean", st.AttractorDistMean, 1},
	}
	for _, c := range checks {
		if !approx(c.got, c.want) {
			t.Errorf("%s = %v; want %v", c.name, c.got, c.want)
		}
	}
	if st.Agents != 2 || st.Tick != 30 || st.NonFinite != 0 {
		t.Errorf("counts = %+v", st)
	}
	if !st.Healthy(0, 4) {
		t.Errorf("Healthy(0, 4) = false for %v", st)
	}
	if st.Healthy(0, 3.5) {
		t.Errorf("Healthy(0, 3.5) = true with a max speed of %v", st.SpeedMax)
	}
}

func TestCompute_EdgeCases(t *testing.T) {
	t.Run("Empty", func(t *testing.T) {
		st := Compute(&flock.Snapshot{}, 1.0/60)
		if st.Agents != 0 || st.SpeedMean != 0 || !st.Healthy(0, 1) {
			t.Errorf("Compute(empty) = %+v", st)
		}
	})

	t.Run("Single agent", func(t *testing.T) {
		s := twoAgentSnapshot()
		s.Agents = s.Agents[:1]
		st := Compute(s, 1)
		if st.SpeedStd != 0 || st.SpeedMean != 3 {
			t.Errorf("Compute(single) speed = %v±%v; want 3±0", st.SpeedMean, st.SpeedStd)
		}
	})

	t.Run("Opposite headings", func(t *testing.T) {
		s := twoAgentSnapshot()
		s.Agents[1].Heading = geometry.Vector3D{X: -1}
		st := Compute(s, 1)
		if st.Polarization != 0 || st.HeadingYaw != 0 {
			t.Errorf("polarization %v, yaw %v; want 0, 0", st.Polarization, st.HeadingYaw)
		}
	})

	t.Run("NonFinite", func(t *testing.T) {
		s := twoAgentSnapshot()
		s.Agents[1].Position.X = math.NaN()
		st := Compute(s, 1)
		if st.NonFinite != 1 {
			t.Errorf("NonFinite = %d; want 1", st.NonFinite)
		}
		if st.Healthy(0, 100) {
			t.Error("Healthy() = true with a NaN agent")
		}
	})
}

func TestCompute_FromFlock(t *testing.T) {
	cfg := flock.DefaultConfig()
	cfg.NumAgents = 25
	cfg.MinSpeed = 1
	cfg.MaxSpeed = 12
	f, err := flock.New(cfg, flock.WithSeed(3))
	if err != nil {
		t.Fatalf("flock.New() error = %v", err)
	}
	for i := 0; i < 60; i++ {
		f.Tick(1.0 / 60)
	}

	st := Compute(f.Snapshot(), 1.0/60)
	if st.Agents != 25 || st.Tick != 60 {
		t.Errorf("Compute() = %+v", st)
	}
	if !st.Healthy(cfg.MinSpeed, cfg.MaxSpeed) {
		t.Errorf("flock unhealthy after 60 ticks: %v", st)
	}
	if !strings.HasPrefix(st.String(), "tick 60 ") {
		t.Errorf("String() = %q", st.String())
	}
}

func TestRecorder(t *testing.T) {
	t.Run("Disabled", func(t *testing.T) {
		r, err := NewRecorder("")
		if err != nil || r != nil {
			t.Fatalf("NewRecorder(\"\") = %v, %v; want nil, nil", r, err)
		}
		if err := r.WriteStats(Stats{}); err != nil {
			t.Errorf("nil Recorder WriteStats() = %v", err)
		}
		if err := r.Close(); err != nil {
			t.Errorf("nil Recorder Close() = %v", err)
		}
	})

	t.Run("Writes CSV and config", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "run")
		r, err := NewRecorder(dir)
		if err != nil {
			t.Fatalf("NewRecorder() error = %v", err)
		}
		for tick := uint64(1); tick <= 3; tick++ {
			if err := r.WriteStats(Stats{Tick: tick, Agents: 10, SpeedMean: float64(tick)}); err != nil {
				t.Fatalf("WriteStats() error = %v", err)
			}
		}
		if err := r.WriteConfig(*flock.DefaultConfig()); err != nil {
			t.Fatalf("WriteConfig() error = %v", err)
		}
		if err := r.Close(); err != nil {
			t.Fatalf("Close() error = %v", err)
		}

		f, err := os.Open(filepath.Join(dir, "stats.csv"))
		if err != nil {
			t.Fatalf("opening stats.csv: %v", err)
		}
		defer f.Close()
		var rows []*Stats
		if err := gocsv.UnmarshalFile(f, &rows); err != nil {
			t.Fatalf("reading stats.csv: %v", err)
		}
		if len(rows) != 3 {
			t.Fatalf("stats.csv has %d rows; want 3", len(rows))
		}
		if rows[2].Tick != 3 || rows[2].SpeedMean != 3 {
			t.Errorf("last row = %+v", rows[2])
		}

		b, err := os.ReadFile(filepath.Join(dir, "config.yaml"))
		if err != nil {
			t.Fatalf("reading config.yaml: %v", err)
		}
		if !strings.Contains(string(b), "neighborRadius: 30") {
			t.Errorf("config.yaml missing neighborRadius:\n%s", b)
		}
	})
}
