package host

import (
	"fmt"
	"time"

	"github.com/lao-tseu-is-alive/go-flock-simulation/pkg/geometry"
	"github.com/lao-tseu-is-alive/go-flock-simulation/pkg/telemetry"
	"google.golang.org/protobuf/types/known/durationpb"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// The FlockActor speaks protobuf well-known types:
//
//	*durationpb.Duration      advance the flock by dt
//	*structpb.Struct{x,y,z}   move the attractor
//	*wrapperspb.UInt32Value   spawn that many agents
//	*emptypb.Empty            (Ask) reply with the current stats

// NewTick builds the message advancing the flock by dt.
func NewTick(dt time.Duration) *durationpb.Duration {
	return durationpb.New(dt)
}

// NewAttractor builds the message moving the attractor to pos.
func NewAttractor(pos geometry.Vector3D) *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"x": structpb.NewNumberValue(pos.X),
		"y": structpb.NewNumberValue(pos.Y),
		"z": structpb.NewNumberValue(pos.Z),
	}}
}

// NewSpawn builds the message adding n agents with the configured spawn parameters.
func NewSpawn(n uint32) *wrapperspb.UInt32Value {
	return wrapperspb.UInt32(n)
}

// NewStatsRequest builds the Ask message answered with the flock stats.
func NewStatsRequest() *emptypb.Empty {
	return &emptypb.Empty{}
}

func attractorFromProto(s *structpb.Struct) (geometry.Vector3D, error) {
	var pos geometry.Vector3D
	for key, v := range s.GetFields() {
		n, ok := v.GetKind().(*structpb.Value_NumberValue)
		if !ok {
			return pos, fmt.Errorf("attractor field %q is not a number", key)
		}
		switch key {
		case "x":
			pos.X = n.NumberValue
		case "y":
			pos.Y = n.NumberValue
		case "z":
			pos.Z = n.NumberValue
		default:
			return pos, fmt.Errorf("unknown attractor field %q", key)
		}
	}
	if !pos.IsFinite() {
		return pos, fmt.Errorf("attractor %s is not finite", pos)
	}
	return pos, nil
}

func statsToProto(st telemetry.Stats) *structpb.Struct {
	num := structpb.NewNumberValue
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"tick":                num(float64(st.Tick)),
		"sim_time":            num(st.SimTime),
		"agents":              num(float64(st.Agents)),
		"speed_mean":          num(st.SpeedMean),
		"speed_std":           num(st.SpeedStd),
		"speed_min":           num(st.SpeedMin),
		"speed_max":           num(st.SpeedMax),
		"centroid_x":          num(st.CentroidX),
		"centroid_z":          num(st.CentroidZ),
		"spread":              num(st.Spread),
		"polarization":        num(st.Polarization),
		"heading_yaw":         num(st.HeadingYaw),
		"attractor_x":         num(st.AttractorX),
		"attractor_z":         num(st.AttractorZ),
		"attractor_dist_mean": num(st.AttractorDistMean),
		"non_finite":          num(float64(st.NonFinite)),
	}}
}

// StatsFromProto decodes the reply to a stats request.
func StatsFromProto(s *structpb.Struct) telemetry.Stats {
	f := func(key string) float64 { return s.GetFields()[key].GetNumberValue() }
	return telemetry.Stats{
		Tick:              uint64(f("tick")),
		SimTime:           f("sim_time"),
		Agents:            int(f("agents")),
		SpeedMean:         f("speed_mean"),
		SpeedStd:          f("speed_std"),
		SpeedMin:          f("speed_min"),
		SpeedMax:          f("speed_max"),
		CentroidX:         f("centroid_x"),
		CentroidZ:         f("centroid_z"),
		Spread:            f("spread"),
		Polarization:      f("polarization"),
		HeadingYaw:        f("heading_yaw"),
		AttractorX:        f("attractor_x"),
		AttractorZ:        f("attractor_z"),
		AttractorDistMean: f("attractor_dist_mean"),
		NonFinite:         int(f("non_finite")),
	}
}
