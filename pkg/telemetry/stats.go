// Package telemetry computes flock-wide statistics from snapshots and writes
// them out as CSV.
package telemetry

import (
	"fmt"
	"math"

	"github.com/lao-tseu-is-alive/go-flock-simulation/pkg/flock"
	"github.com/lao-tseu-is-alive/go-flock-simulation/pkg/geometry"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Stats summarizes one snapshot of the flock.
type Stats struct {
	Tick    uint64  `csv:"tick"`
	SimTime float64 `csv:"sim_time"`
	Agents  int     `csv:"agents"`

	SpeedMean float64 `csv:"speed_mean"`
	SpeedStd  float64 `csv:"speed_std"`
	SpeedMin  float64 `csv:"speed_min"`
	SpeedMax  float64 `csv:"speed_max"`

	CentroidX float64 `csv:"centroid_x"`
	CentroidZ float64 `csv:"centroid_z"`
	// Spread is the mean distance of the agents to the centroid.
	Spread float64 `csv:"spread"`
	// Polarization is |mean heading|: 1 when everyone faces the same way.
	Polarization float64 `csv:"polarization"`
	// HeadingYaw is the yaw of the mean heading, 0 when headings cancel out.
	HeadingYaw float64 `csv:"heading_yaw"`

	AttractorX        float64 `csv:"attractor_x"`
	AttractorZ        float64 `csv:"attractor_z"`
	AttractorDistMean float64 `csv:"attractor_dist_mean"`

	NonFinite int `csv:"non_finite"`
}

// Compute derives Stats from a snapshot taken after tick s.Tick of length dt.
func Compute(s *flock.Snapshot, dt float64) Stats {
	st := Stats{
		Tick:       s.Tick,
		SimTime:    float64(s.Tick) * dt,
		Agents:     len(s.Agents),
		AttractorX: s.Attractor.X,
		AttractorZ: s.Attractor.Z,
	}

	speeds := make([]float64, 0, len(s.Agents))
	centroid, heading := geometry.Zero, geometry.Zero
	for _, a := range s.Agents {
		if !a.Position.IsFinite() || !a.Velocity.IsFinite() {
			st.NonFinite++
			continue
		}
		speeds = append(speeds, a.Velocity.Len())
		centroid = centroid.Add(a.Position)
		heading = heading.Add(a.Heading)
	}
	n := len(speeds)
	if n == 0 {
		return st
	}

	st.SpeedMean, st.SpeedStd = stat.MeanStdDev(speeds, nil)
	if n == 1 {
		st.SpeedStd = 0
	}
	st.SpeedMin = floats.Min(speeds)
	st.SpeedMax = floats.Max(speeds)

	centroid = centroid.Mul(1 / float64(n))
	st.CentroidX, st.CentroidZ = centroid.X, centroid.Z
	meanHeading := heading.Mul(1 / float64(n))
	st.Polarization = meanHeading.Len()
	if st.Polarization > geometry.Epsilon {
		st.HeadingYaw = meanHeading.Yaw()
	}

	spread := make([]float64, 0, n)
	toAttractor := make([]float64, 0, n)
	for _, a := range s.Agents {
		if !a.Position.IsFinite() || !a.Velocity.IsFinite() {
			continue
		}
		spread = append(spread, a.Position.DistanceTo(centroid))
		toAttractor = append(toAttractor, a.Position.DistanceTo(s.Attractor))
	}
	st.Spread = stat.Mean(spread, nil)
	st.AttractorDistMean = stat.Mean(toAttractor, nil)
	return st
}

// String renders the stats on one log line.
func (s Stats) String() string {
	return fmt.Sprintf("tick %d t=%.2fs agents=%d speed=%.2f±%.2f [%.2f,%.2f] centroid=(%.1f,%.1f) spread=%.1f polarization=%.2f attractor=%.1f",
		s.Tick, s.SimTime, s.Agents,
		s.SpeedMean, s.SpeedStd, s.SpeedMin, s.SpeedMax,
		s.CentroidX, s.CentroidZ, s.Spread, s.Polarization, s.AttractorDistMean)
}

// Healthy reports whether every agent is finite and within the speed bounds.
func (s Stats) Healthy(minSpeed, maxSpeed float64) bool {
	const tolerance = 1e-9
	if s.NonFinite > 0 || math.IsNaN(s.SpeedMean) {
		return false
	}
	if s.Agents == 0 {
		return true
	}
	return s.SpeedMin >= minSpeed-tolerance && s.SpeedMax <= maxSpeed+tolerance
}
