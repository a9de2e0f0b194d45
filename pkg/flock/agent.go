package flock

import (
	"github.com/lao-tseu-is-alive/go-flock-simulation/pkg/geometry"
)

// AgentID is the stable identity of an agent inside its Flock.
type AgentID uint64

// Agent represents a single boid of the flock.
// Boids is an artificial life program, developed by Craig Reynolds in 1986,
// which simulates the flocking behaviour of birds, and related group motion.
// https://en.wikipedia.org/wiki/Boids
//
// Committed state (position, velocity) only changes in Commit. Evaluate
// writes the pending fields, which no other agent ever reads.
type Agent struct {
	id       AgentID
	position geometry.Vector3D
	velocity geometry.Vector3D

	pendingVelocity geometry.Vector3D
	pendingPosition geometry.Vector3D

	// heading is the last direction the agent faced (unit vector on the plane).
	heading geometry.Vector3D
}

// AgentState is a read-only copy of an agent, safe to hand to other goroutines.
type AgentState struct {
	ID       AgentID           `json:"id"`
	Position geometry.Vector3D `json:"position"`
	Velocity geometry.Vector3D `json:"velocity"`
	Heading  geometry.Vector3D `json:"heading"`
}

func newAgent(id AgentID, position, velocity geometry.Vector3D) *Agent {
	a := &Agent{
		id:       id,
		position: position.Flatten(),
		velocity: velocity,
	}
	a.pendingPosition = a.position
	a.pendingVelocity = a.velocity
	a.heading = velocity.Flatten().Normalize()
	if a.heading.IsZero() {
		a.heading = geometry.Vector3D{Z: 1}
	}
	return a
}

// Accessors for the committed state, and the pending state written by the
// last Evaluate.
func (a *Agent) ID() AgentID { return a.id }
func (a *Agent) Position() geometry.Vector3D { return a.position }
func (a *Agent) Velocity() geometry.Vector3D { return a.velocity }
func (a *Agent) Heading() geometry.Vector3D { return a.heading }
func (a *Agent) PendingVelocity() geometry.Vector3D { return a.pendingVelocity }
func (a *Agent) PendingPosition() geometry.Vector3D { return a.pendingPosition }
func (a *Agent) Speed() float64 { return a.velocity.Len() }
func (a *Agent) distanceSquaredTo(other *Agent) float64 { return a.position.DistanceSquaredTo(other.position) }

// State returns a copy of the committed state.
func (a *Agent) State() AgentState {
	return AgentState{
		ID:       a.id,
		Position: a.position,
		Velocity: a.velocity,
		Heading:  a.heading,
	}
}

// Evaluate computes the pending velocity from the committed state of the
// neighborhood and the attractor. It never touches committed state.
func (a *Agent) Evaluate(nb Neighborhood, attractor geometry.Vector3D, cfg *Config) {
	v := a.velocity
	a.pendingPosition = a.position

	if len(nb.Neighbors) > 0 {
		// 1. Velocity matching
		v = v.Add(averageVelocity(nb.Neighbors).Mul(cfg.VelocityMatchingWeight))

		// 2. Flock centering
		centerOffset := averagePosition(nb.Neighbors).Sub(a.position)
		v = v.Add(centerOffset.Mul(cfg.FlockCenteringWeight))
	}

	// 3. Collision avoidance, the weight is negative so this pushes away
	if len(nb.CollisionRisks) > 0 {
		avoidOffset := averagePosition(nb.CollisionRisks).Sub(a.position)
		v = v.Add(avoidOffset.Mul(cfg.CollisionAvoidanceWeight))
	}

	// 4. Attractor: pulled in from afar, pushed away hard when too close
	toAttractor := attractor.Sub(a.position)
	if toAttractor.Len() > cfg.AvoidanceDistance {
		v = v.Add(toAttractor.Mul(cfg.AttractionWeight))
	} else {
		v = v.Sub(toAttractor.Normalize().Mul(cfg.AvoidanceDistance * cfg.AvoidanceWeight))
	}

	a.pendingVelocity = v
}

// Commit blends the pending velocity in, clamps the speed and moves the agent.
func (a *Agent) Commit(dt float64, cfg *Config) {
	v := a.velocity.Lerp(a.pendingVelocity, cfg.VelocityBlend)

	speed := v.Len()
	if speed > cfg.MaxSpeed {
		v = v.Normalize().Mul(cfg.MaxSpeed)
	}
	if speed < cfg.MinSpeed {
		dir := v.Normalize()
		if dir.IsZero() {
			dir = a.heading
		}
		v = dir.Mul(cfg.MinSpeed)
	}
	a.velocity = v

	a.pendingPosition = a.position.Add(v.Mul(dt)).Flatten()
	a.face(a.pendingPosition)
	a.position = a.pendingPosition
}

// face turns the agent towards target, keeping the previous heading when
// there is no direction to look at.
func (a *Agent) face(target geometry.Vector3D) {
	if dir := target.Sub(a.position).Normalize(); !dir.IsZero() {
		a.heading = dir
	}
}

func averagePosition(agents []*Agent) geometry.Vector3D {
	sum := geometry.Zero
	for _, o := range agents {
		sum = sum.Add(o.position)
	}
	return sum.Mul(1 / float64(len(agents)))
}

func averageVelocity(agents []*Agent) geometry.Vector3D {
	sum := geometry.Zero
	for _, o := range agents {
		sum = sum.Add(o.velocity)
	}
	return sum.Mul(1 / float64(len(agents)))
}
