package flock

import (
	"math"

	"github.com/lao-tseu-is-alive/go-flock-simulation/pkg/geometry"
)

// AttractorSource supplies the shared attractor position once per tick,
// before any agent evaluates.
type AttractorSource interface {
	Next(dt float64) geometry.Vector3D
}

// AttractorFunc adapts a plain function to AttractorSource.
type AttractorFunc func(dt float64) geometry.Vector3D

func (fn AttractorFunc) Next(dt float64) geometry.Vector3D { return fn(dt) }

// PointAttractor is a stationary attractor that the host can move between ticks.
// It is not safe for concurrent use, the owner of the flock drives it.
type PointAttractor struct {
	pos geometry.Vector3D
}

func NewPointAttractor(pos geometry.Vector3D) *PointAttractor {
	return &PointAttractor{pos: pos}
}

func (p *PointAttractor) Set(pos geometry.Vector3D) { p.pos = pos }

func (p *PointAttractor) Next(float64) geometry.Vector3D { return p.pos }

// OrbitAttractor circles Center on the simulation plane, one lap per Period seconds.
type OrbitAttractor struct {
	Center  geometry.Vector3D
	Radius  float64
	Period  float64
	elapsed float64
}

func (o *OrbitAttractor) Next(dt float64) geometry.Vector3D {
	o.elapsed += dt
	if o.Period <= 0 {
		return o.Center.Add(geometry.NewVectorPlanar(o.Radius, 0))
	}
	theta := 2 * math.Pi * o.elapsed / o.Period
	return o.Center.Add(geometry.NewVectorPlanar(o.Radius*math.Cos(theta), o.Radius*math.Sin(theta)))
}
