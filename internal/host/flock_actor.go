// Package host runs a Flock inside a goakt actor so a game loop, a CLI or a
// network front end can drive it with messages.
package host

import (
	"fmt"
	"time"

	"github.com/lao-tseu-is-alive/go-flock-simulation/pkg/flock"
	"github.com/lao-tseu-is-alive/go-flock-simulation/pkg/geometry"
	"github.com/lao-tseu-is-alive/go-flock-simulation/pkg/telemetry"
	"github.com/tochemey/goakt/v3/actor"
	"github.com/tochemey/goakt/v3/goaktpb"
	"google.golang.org/protobuf/types/known/durationpb"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// FlockActor owns the authoritative flock. Messages are processed one at a
// time, so the flock itself needs no locking.
type FlockActor struct {
	cfg       *flock.Config
	opts      []flock.Option
	flock     *flock.Flock
	attractor *flock.PointAttractor
	// Communication with the consumer (UI, CLI)
	snapshotCh chan<- *flock.Snapshot
	lastDt     float64
	// --- Benchmark Stats ---
	msgRecvCount int
	dropped      int
	lastLogTime  time.Time
}

var _ actor.Actor = (*FlockActor)(nil)

// NewFlockActor validates cfg up front, the flock itself is built in PreStart.
// snapshotCh may be nil when nobody listens.
func NewFlockActor(cfg *flock.Config, snapshotCh chan<- *flock.Snapshot, opts ...flock.Option) (*FlockActor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	c := *cfg
	return &FlockActor{
		cfg:        &c,
		opts:       opts,
		attractor:  flock.NewPointAttractor(geometry.Zero),
		snapshotCh: snapshotCh,
	}, nil
}

func (w *FlockActor) PreStart(ctx *actor.Context) error {
	logger := ctx.ActorSystem().Logger()
	opts := append([]flock.Option{flock.WithLogger(logger)}, w.opts...)
	opts = append(opts, flock.WithAttractorSource(w.attractor))

	f, err := flock.New(w.cfg, opts...)
	if err != nil {
		return fmt.Errorf("failed to create flock: %w", err)
	}
	w.flock = f
	w.lastLogTime = time.Now()
	logger.Infof("%s is spawning a flock of %d agents (seed %d)", ctx.ActorName(), f.Len(), f.Seed())
	return nil
}

func (w *FlockActor) Receive(ctx *actor.ReceiveContext) {
	switch msg := ctx.Message().(type) {
	case *goaktpb.PostStart:
		ctx.Logger().Infof("%s started", ctx.Self().Name())

	// The Main Simulation Step (Driven by the host loop)
	case *durationpb.Duration:
		w.msgRecvCount++
		if err := msg.CheckValid(); err != nil {
			ctx.Err(fmt.Errorf("invalid tick: %w", err))
			return
		}
		w.lastDt = msg.AsDuration().Seconds()
		w.flock.Tick(w.lastDt)
		w.pushSnapshot()
		w.logBenchmarks(ctx)

	case *structpb.Struct:
		w.msgRecvCount++
		pos, err := attractorFromProto(msg)
		if err != nil {
			ctx.Err(err)
			return
		}
		w.attractor.Set(pos)

	case *wrapperspb.UInt32Value:
		w.msgRecvCount++
		spawn := w.flock.Config().SpawnParams()
		for i := uint32(0); i < msg.GetValue(); i++ {
			w.flock.AddAgent(spawn)
		}
		ctx.Logger().Debugf("spawned %d agents, flock is now %d", msg.GetValue(), w.flock.Len())

	case *emptypb.Empty:
		w.msgRecvCount++
		ctx.Response(statsToProto(telemetry.Compute(w.flock.Snapshot(), w.lastDt)))

	default:
		ctx.Unhandled()
	}
}

func (w *FlockActor) PostStop(ctx *actor.Context) error {
	if w.flock == nil {
		return nil
	}
	ctx.ActorSystem().Logger().Infof("%s is shutdown after %d ticks (%d snapshots dropped)",
		ctx.ActorName(), w.flock.Ticks(), w.dropped)
	return nil
}

func (w *FlockActor) pushSnapshot() {
	if w.snapshotCh == nil {
		return
	}
	select {
	case w.snapshotCh <- w.flock.Snapshot():
	default:
		// consumer busy, skip frame
		w.dropped++
	}
}

func (w *FlockActor) logBenchmarks(ctx *actor.ReceiveContext) {
	if time.Since(w.lastLogTime) >= time.Second {
		ctx.Logger().Infof("📊 MSG RATE: %d/sec | Agents: %d | Ticks: %d | Dropped snapshots: %d",
			w.msgRecvCount, w.flock.Len(), w.flock.Ticks(), w.dropped)
		w.msgRecvCount = 0
		w.lastLogTime = time.Now()
	}
}
