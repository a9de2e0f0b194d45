package flock

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

//go:embed config.schema.json
var configSchema string

// ErrInvalidConfig is wrapped by every configuration contract violation.
var ErrInvalidConfig = errors.New("invalid flock config")

// Config holds the shared flock parameters. Agents only ever read it.
type Config struct {
	// Population
	NumAgents int    `json:"numAgents" yaml:"numAgents"`
	Seed      uint64 `json:"seed" yaml:"seed"`       // 0 = time based
	Workers   int    `json:"workers" yaml:"workers"` // evaluate phase workers, 0 = GOMAXPROCS

	// Spawning
	SpawnRadius float64 `json:"spawnRadius" yaml:"spawnRadius"`
	SpawnSpeed  float64 `json:"spawnSpeed" yaml:"spawnSpeed"`

	// Speed clamp applied on commit
	MinSpeed float64 `json:"minSpeed" yaml:"minSpeed"`
	MaxSpeed float64 `json:"maxSpeed" yaml:"maxSpeed"`

	// Interaction Radii
	NeighborRadius  float64 `json:"neighborRadius" yaml:"neighborRadius"`
	CollisionRadius float64 `json:"collisionRadius" yaml:"collisionRadius"`

	// Rule weights
	VelocityMatchingWeight   float64 `json:"velocityMatchingWeight" yaml:"velocityMatchingWeight"`
	FlockCenteringWeight     float64 `json:"flockCenteringWeight" yaml:"flockCenteringWeight"`
	CollisionAvoidanceWeight float64 `json:"collisionAvoidanceWeight" yaml:"collisionAvoidanceWeight"` // negative pushes away
	AttractionWeight         float64 `json:"attractionWeight" yaml:"attractionWeight"`
	AvoidanceWeight          float64 `json:"avoidanceWeight" yaml:"avoidanceWeight"`
	AvoidanceDistance        float64 `json:"avoidanceDistance" yaml:"avoidanceDistance"`

	// Smoothing of the committed velocity towards the evaluated one
	VelocityBlend float64 `json:"velocityBlend" yaml:"velocityBlend"`
}

// SpawnParams describes how a new agent is placed.
type SpawnParams struct {
	Radius float64
	Speed  float64
}

func DefaultConfig() *Config {
	return &Config{
		NumAgents:                100,
		Workers:                  1,
		SpawnRadius:              100,
		SpawnSpeed:               10,
		MinSpeed:                 0,
		MaxSpeed:                 30,
		NeighborRadius:           30,
		CollisionRadius:          5,
		VelocityMatchingWeight:   0.01,
		FlockCenteringWeight:     0.15,
		CollisionAvoidanceWeight: -0.5,
		AttractionWeight:         0.01,
		AvoidanceWeight:          0.75,
		AvoidanceDistance:        15,
		VelocityBlend:            0.25,
	}
}

// SpawnParams returns the spawn parameters configured for this flock.
func (c Config) SpawnParams() SpawnParams {
	return SpawnParams{Radius: c.SpawnRadius, Speed: c.SpawnSpeed}
}

// Validate checks the construction-time contract. Every violation is reported.
func (c *Config) Validate() error {
	if c == nil {
		return fmt.Errorf("%w: config is nil", ErrInvalidConfig)
	}
	var errs []error
	violation := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalidConfig}, args...)...))
	}

	values := []struct {
		name   string
		v      float64
		nonNeg bool
	}{
		{"spawnRadius", c.SpawnRadius, true},
		{"spawnSpeed", c.SpawnSpeed, true},
		{"minSpeed", c.MinSpeed, true},
		{"maxSpeed", c.MaxSpeed, true},
		{"neighborRadius", c.NeighborRadius, true},
		{"collisionRadius", c.CollisionRadius, true},
		{"avoidanceDistance", c.AvoidanceDistance, true},
		{"velocityMatchingWeight", c.VelocityMatchingWeight, false},
		{"flockCenteringWeight", c.FlockCenteringWeight, false},
		{"collisionAvoidanceWeight", c.CollisionAvoidanceWeight, false},
		{"attractionWeight", c.AttractionWeight, false},
		{"avoidanceWeight", c.AvoidanceWeight, false},
		{"velocityBlend", c.VelocityBlend, true},
	}
	for _, f := range values {
		switch {
		case math.IsNaN(f.v) || math.IsInf(f.v, 0):
			violation("%s must be finite, got %v", f.name, f.v)
		case f.nonNeg && f.v < 0:
			violation("%s must not be negative, got %v", f.name, f.v)
		}
	}

	if c.NumAgents < 0 {
		violation("numAgents must not be negative, got %d", c.NumAgents)
	}
	if c.Workers < 0 {
		violation("workers must not be negative, got %d", c.Workers)
	}
	if c.MinSpeed > c.MaxSpeed {
		violation("minSpeed (%v) exceeds maxSpeed (%v)", c.MinSpeed, c.MaxSpeed)
	}
	if c.VelocityBlend > 1 {
		violation("velocityBlend must be within [0,1], got %v", c.VelocityBlend)
	}
	return errors.Join(errs...)
}

// LoadConfig loads a JSON or YAML configuration file, validates it against the
// embedded schema and decodes it over DefaultConfig.
func LoadConfig(configFile string) (*Config, error) {
	// 1. Compile Schema
	sch, err := jsonschema.CompileString("config.schema.json", configSchema)
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}

	// 2. Read Config File
	b, err := os.ReadFile(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	switch strings.ToLower(filepath.Ext(configFile)) {
	case ".yaml", ".yml":
		if b, err = yamlToJSON(b); err != nil {
			return nil, fmt.Errorf("failed to decode config yaml: %w", err)
		}
	}

	// 3. Validate
	var v interface{}
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("failed to decode config json: %w", err)
	}
	if err := sch.Validate(v); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	// 4. Unmarshal into Struct, missing keys keep their defaults
	cfg := DefaultConfig()
	if err := json.Unmarshal(b, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func yamlToJSON(b []byte) ([]byte, error) {
	var doc map[string]interface{}
	if err := yaml.Unmarshal(b, &doc); err != nil {
		return nil, err
	}
	if doc == nil {
		doc = map[string]interface{}{}
	}
	return json.Marshal(doc)
}
