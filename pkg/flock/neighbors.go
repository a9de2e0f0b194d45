package flock

import "math"

// Neighborhood is the result of a neighbor query for one agent.
// Nearest is nil when the agent is alone in the flock.
type Neighborhood struct {
	Neighbors      []*Agent
	CollisionRisks []*Agent
	Nearest        *Agent
}

func (nb *Neighborhood) reset() {
	nb.Neighbors = nb.Neighbors[:0]
	nb.CollisionRisks = nb.CollisionRisks[:0]
	nb.Nearest = nil
}

// NeighborsOf scans every other agent of the flock against the committed
// positions and returns a freshly allocated Neighborhood.
func (f *Flock) NeighborsOf(me *Agent) Neighborhood {
	var nb Neighborhood
	f.neighborsInto(me, &nb)
	return nb
}

// neighborsInto fills the caller owned scratch nb, reusing its capacity.
// Brute force, O(n) per agent.
func (f *Flock) neighborsInto(me *Agent, nb *Neighborhood) {
	nb.reset()

	// Pre-calculate squared ranges to avoid Sqrt() calls in the loop
	nearSq := f.cfg.NeighborRadius * f.cfg.NeighborRadius
	collisionSq := f.cfg.CollisionRadius * f.cfg.CollisionRadius
	closestSq := math.MaxFloat64

	for _, other := range f.agents {
		if other == me {
			continue
		}
		distSq := me.distanceSquaredTo(other)

		if distSq < closestSq || nb.Nearest == nil {
			closestSq = distSq
			nb.Nearest = other
		}
		if distSq < nearSq {
			nb.Neighbors = append(nb.Neighbors, other)
		}
		if distSq < collisionSq {
			nb.CollisionRisks = append(nb.CollisionRisks, other)
		}
	}

	if len(nb.Neighbors) == 0 && nb.Nearest != nil {
		nb.Neighbors = append(nb.Neighbors, nb.Nearest)
	}
}
