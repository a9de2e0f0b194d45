package flock

import (
	"fmt"
	"math"
	"math/rand/v2"
	"runtime"
	"slices"
	"time"

	"github.com/lao-tseu-is-alive/go-flock-simulation/pkg/geometry"
	golog "github.com/tochemey/goakt/v3/log"
)

// Flock owns every agent, the shared configuration and the attractor.
// It drives the two phase tick: all agents evaluate against committed state,
// then all agents commit. A Flock is not safe for concurrent use.
type Flock struct {
	cfg    Config
	agents []*Agent
	byID   map[AgentID]*Agent
	nextID AgentID

	source    AttractorSource
	attractor geometry.Vector3D

	rng     *rand.Rand
	seed    uint64
	workers int
	// one scratch Neighborhood per evaluate worker
	scratches []Neighborhood

	ticks  uint64
	logger golog.Logger
}

// Option configures a Flock at construction time.
type Option func(*Flock)

// WithLogger sets the logger, the default discards everything.
func WithLogger(logger golog.Logger) Option {
	return func(f *Flock) { f.logger = logger }
}

// WithSeed overrides the configured spawn seed.
func WithSeed(seed uint64) Option {
	return func(f *Flock) { f.seed = seed }
}

// WithAttractorSource sets where the attractor comes from each tick.
// The default is a PointAttractor at the origin.
func WithAttractorSource(src AttractorSource) Option {
	return func(f *Flock) { f.source = src }
}

// WithWorkers overrides the configured number of evaluate workers.
func WithWorkers(n int) Option {
	return func(f *Flock) { f.workers = n }
}

// New validates cfg and spawns cfg.NumAgents agents.
func New(cfg *Config, opts ...Option) (*Flock, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	f := &Flock{
		cfg:     *cfg,
		byID:    make(map[AgentID]*Agent, cfg.NumAgents),
		agents:  make([]*Agent, 0, cfg.NumAgents),
		seed:    cfg.Seed,
		workers: cfg.Workers,
		logger:  golog.DiscardLogger,
		nextID:  1,
	}
	for _, opt := range opts {
		opt(f)
	}

	if f.workers < 0 {
		return nil, fmt.Errorf("%w: workers must not be negative, got %d", ErrInvalidConfig, f.workers)
	}
	if f.workers == 0 {
		f.workers = runtime.GOMAXPROCS(0)
	}
	f.scratches = make([]Neighborhood, f.workers)

	if f.source == nil {
		f.source = NewPointAttractor(geometry.Zero)
	}
	if f.seed == 0 {
		f.seed = uint64(time.Now().UnixNano())
	}
	f.rng = rand.New(rand.NewPCG(f.seed, f.seed^0x9e3779b97f4a7c15))

	spawn := f.cfg.SpawnParams()
	for i := 0; i < f.cfg.NumAgents; i++ {
		f.AddAgent(spawn)
	}
	f.logger.Infof("flock ready: %d agents, seed %d, %d workers", len(f.agents), f.seed, f.workers)
	return f, nil
}

// AddAgent spawns an agent uniformly inside the spawn disk of the simulation
// plane, moving in a random direction at p.Speed.
func (f *Flock) AddAgent(p SpawnParams) AgentID {
	// sqrt keeps the density uniform over the disk
	r := p.Radius * math.Sqrt(f.rng.Float64())
	theta := 2 * math.Pi * f.rng.Float64()
	pos := geometry.NewVectorPlanar(r*math.Cos(theta), r*math.Sin(theta))

	return f.Place(pos, f.randomUnitVector().Mul(p.Speed))
}

// randomUnitVector samples the unit sphere uniformly.
func (f *Flock) randomUnitVector() geometry.Vector3D {
	y := 2*f.rng.Float64() - 1
	phi := 2 * math.Pi * f.rng.Float64()
	rxz := math.Sqrt(1 - y*y)
	return geometry.NewVector(rxz*math.Cos(phi), y, rxz*math.Sin(phi))
}

// Place inserts an agent with an explicit state. The position is flattened
// onto the simulation plane.
func (f *Flock) Place(position, velocity geometry.Vector3D) AgentID {
	id := f.nextID
	f.nextID++
	a := newAgent(id, position, velocity)
	f.agents = append(f.agents, a)
	f.byID[id] = a
	f.logger.Debugf("Born: agent %d at %s, velocity %s", id, a.position, a.velocity)
	return id
}

// RemoveAgent deletes the agent, reporting whether it existed.
func (f *Flock) RemoveAgent(id AgentID) bool {
	a, ok := f.byID[id]
	if !ok {
		return false
	}
	delete(f.byID, id)
	f.agents = slices.DeleteFunc(f.agents, func(o *Agent) bool { return o == a })
	f.logger.Debugf("Death: agent %d", id)
	return true
}

// Tick advances the simulation by dt seconds.
func (f *Flock) Tick(dt float64) {
	if math.IsNaN(dt) || math.IsInf(dt, 0) || dt < 0 {
		f.logger.Warnf("skipping tick %d: invalid dt %v", f.ticks+1, dt)
		return
	}

	// 1. Shared environment
	f.attractor = f.source.Next(dt)

	// 2 + 3. Every agent sees committed state only
	f.evaluateAll()

	// 4. Barrier passed, now move
	for _, a := range f.agents {
		a.Commit(dt, &f.cfg)
	}
	f.ticks++
}

func (f *Flock) evaluateChunk(start, end int, scratch *Neighborhood) {
	for _, a := range f.agents[start:end] {
		f.neighborsInto(a, scratch)
		a.Evaluate(*scratch, f.attractor, &f.cfg)
	}
}

// SetConfig swaps the configuration used by later ticks. Population and
// seed changes only affect future spawns.
func (f *Flock) SetConfig(cfg *Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	f.cfg = *cfg
	return nil
}

func (f *Flock) Config() Config { return f.cfg }

func (f *Flock) Len() int { return len(f.agents) }

func (f *Flock) Ticks() uint64 { return f.ticks }

func (f *Flock) Seed() uint64 { return f.seed }

// Attractor returns the attractor position used by the last tick.
func (f *Flock) Attractor() geometry.Vector3D { return f.attractor }

// Agent looks an agent up by id.
func (f *Flock) Agent(id AgentID) (*Agent, bool) {
	a, ok := f.byID[id]
	return a, ok
}

// Agents returns the live agents. The slice is a copy, the agents are not.
func (f *Flock) Agents() []*Agent {
	return slices.Clone(f.agents)
}

// Snapshot is a point in time copy of the flock, safe to send over channels.
type Snapshot struct {
	Tick      uint64            `json:"tick"`
	Attractor geometry.Vector3D `json:"attractor"`
	Agents    []AgentState      `json:"agents"`
}

func (f *Flock) Snapshot() *Snapshot {
	s := &Snapshot{
		Tick:      f.ticks,
		Attractor: f.attractor,
		Agents:    make([]AgentState, 0, len(f.agents)),
	}
	for _, a := range f.agents {
		s.Agents = append(s.Agents, a.State())
	}
	return s
}
