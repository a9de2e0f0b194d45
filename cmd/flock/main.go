package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/lao-tseu-is-alive/go-flock-simulation/internal/host"
	"github.com/lao-tseu-is-alive/go-flock-simulation/pkg/flock"
	"github.com/lao-tseu-is-alive/go-flock-simulation/pkg/geometry"
	"github.com/lao-tseu-is-alive/go-flock-simulation/pkg/telemetry"
	"github.com/tochemey/goakt/v3/actor"
	golog "github.com/tochemey/goakt/v3/log"
	"google.golang.org/protobuf/types/known/structpb"
)

const snapshotTimeout = 5 * time.Second

type options struct {
	configPath  string
	ticks       int
	dt          float64
	seed        uint64
	workers     int
	attractor   string
	orbitRadius float64
	orbitPeriod float64
	outputDir   string
	logEvery    int
	debug       bool
}

func main() {
	var o options
	flag.StringVar(&o.configPath, "config", "", "Path to a flock config (.json or .yaml, empty = use defaults)")
	flag.IntVar(&o.ticks, "ticks", 600, "Number of ticks to simulate")
	flag.Float64Var(&o.dt, "dt", 1.0/60, "Seconds advanced per tick")
	flag.Uint64Var(&o.seed, "seed", 0, "RNG seed (0 = use config, then time-based)")
	flag.IntVar(&o.workers, "workers", -1, "Goroutines evaluating agents (-1 = use config, 0 = GOMAXPROCS)")
	flag.StringVar(&o.attractor, "attractor", "orbit", "Attractor motion: fixed or orbit")
	flag.Float64Var(&o.orbitRadius, "orbit-radius", 60, "Radius of the orbiting attractor")
	flag.Float64Var(&o.orbitPeriod, "orbit-period", 10, "Seconds for the attractor to complete one orbit")
	flag.StringVar(&o.outputDir, "output-dir", "", "Output directory for stats.csv and config.yaml")
	flag.IntVar(&o.logEvery, "log-every", 60, "Log flock stats every N ticks (0 = only at the end)")
	flag.BoolVar(&o.debug, "debug", false, "Enable debug logging")
	flag.Parse()

	level := golog.InfoLevel
	if o.debug {
		level = golog.DebugLevel
	}
	logger := golog.New(level, os.Stdout)

	if err := run(context.Background(), o, logger); err != nil {
		logger.Errorf("flock run failed: %v", err)
		os.Exit(1)
	}
}

func loadConfig(o options) (*flock.Config, error) {
	cfg := flock.DefaultConfig()
	if o.configPath != "" {
		c, err := flock.LoadConfig(o.configPath)
		if err != nil {
			return nil, err
		}
		cfg = c
	}
	if o.seed != 0 {
		cfg.Seed = o.seed
	}
	if o.workers >= 0 {
		cfg.Workers = o.workers
	}
	return cfg, cfg.Validate()
}

func attractorPath(o options) (flock.AttractorSource, error) {
	switch o.attractor {
	case "fixed":
		return flock.NewPointAttractor(geometry.Zero), nil
	case "orbit":
		if o.orbitPeriod <= 0 {
			return nil, fmt.Errorf("orbit period must be positive, got %v", o.orbitPeriod)
		}
		return &flock.OrbitAttractor{Radius: o.orbitRadius, Period: o.orbitPeriod}, nil
	default:
		return nil, fmt.Errorf("unknown attractor %q (want fixed or orbit)", o.attractor)
	}
}

func run(ctx context.Context, o options, logger golog.Logger) error {
	if o.ticks < 0 || o.dt <= 0 {
		return fmt.Errorf("need ticks >= 0 and dt > 0, got %d and %v", o.ticks, o.dt)
	}
	cfg, err := loadConfig(o)
	if err != nil {
		return err
	}
	path, err := attractorPath(o)
	if err != nil {
		return err
	}

	rec, err := telemetry.NewRecorder(o.outputDir)
	if err != nil {
		return err
	}
	defer func() {
		if err := rec.Close(); err != nil {
			logger.Warnf("closing output: %v", err)
		}
	}()
	if err := rec.WriteConfig(*cfg); err != nil {
		return err
	}

	system, err := actor.NewActorSystem("FlockWorld",
		actor.WithLogger(logger),
		actor.WithActorInitMaxRetries(3))
	if err != nil {
		return fmt.Errorf("failed to create actor system: %w", err)
	}
	if err := system.Start(ctx); err != nil {
		return fmt.Errorf("failed to start actor system: %w", err)
	}
	defer func() { _ = system.Stop(ctx) }()

	snapshots := make(chan *flock.Snapshot, 1)
	fa, err := host.NewFlockActor(cfg, snapshots)
	if err != nil {
		return err
	}
	pid, err := system.Spawn(ctx, "flock", fa)
	if err != nil {
		return fmt.Errorf("failed to spawn flock actor: %w", err)
	}

	tick := host.NewTick(time.Duration(o.dt * float64(time.Second)))
	start := time.Now()
	for i := 1; i <= o.ticks; i++ {
		if err := actor.Tell(ctx, pid, host.NewAttractor(path.Next(o.dt))); err != nil {
			return fmt.Errorf("moving attractor: %w", err)
		}
		if err := actor.Tell(ctx, pid, tick); err != nil {
			return fmt.Errorf("sending tick %d: %w", i, err)
		}

		var snap *flock.Snapshot
		select {
		case snap = <-snapshots:
		case <-time.After(snapshotTimeout):
			return fmt.Errorf("no snapshot for tick %d after %s", i, snapshotTimeout)
		}

		if o.logEvery > 0 && i%o.logEvery == 0 {
			st := telemetry.Compute(snap, o.dt)
			logger.Info(st.String())
			if err := rec.WriteStats(st); err != nil {
				return err
			}
			if !st.Healthy(cfg.MinSpeed, cfg.MaxSpeed) {
				logger.Warnf("tick %d: speeds outside [%v, %v] or non-finite agents", i, cfg.MinSpeed, cfg.MaxSpeed)
			}
		}
	}

	resp, err := actor.Ask(ctx, pid, host.NewStatsRequest(), snapshotTimeout)
	if err != nil {
		return fmt.Errorf("asking final stats: %w", err)
	}
	reply, ok := resp.(*structpb.Struct)
	if !ok {
		return fmt.Errorf("unexpected stats reply %T", resp)
	}
	final := host.StatsFromProto(reply)
	logger.Infof("done: %d ticks in %s, %s", o.ticks, time.Since(start).Round(time.Millisecond), final)
	if o.logEvery == 0 {
		return rec.WriteStats(final)
	}
	return nil
}
