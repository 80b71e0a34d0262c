package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/curvesim/internal/collision"
	"github.com/san-kum/curvesim/internal/dynamo"
	"github.com/san-kum/curvesim/internal/geometry"
	"github.com/san-kum/curvesim/internal/particle"
)

const (
	DefaultA            = 2.0
	DefaultB            = 1.0
	DefaultN            = 10
	DefaultMass         = 1.0
	DefaultRadius       = 0.05
	DefaultMaxSpeed     = 1.0
	DefaultDtMax        = 0.01
	DefaultDtMin        = 1e-9
	DefaultMaxTime      = 10.0
	DefaultMaxSteps     = 10_000_000
	DefaultSaveInterval = 0.1
	DefaultSeed         = 42
	DefaultIntegrator   = "forest-ruth"
)

var ErrInvalid = errors.New("config: invalid")

// Config is the YAML run description. The particle count comes from
// Particles when given, else from PackingFraction, else from N.
type Config struct {
	A float64 `yaml:"a"`
	B float64 `yaml:"b"`

	N               int              `yaml:"n"`
	PackingFraction float64          `yaml:"packing_fraction"`
	Mass            float64          `yaml:"mass"`
	Masses          []float64        `yaml:"masses,omitempty"`
	Radius          float64          `yaml:"radius"`
	Radii           []float64        `yaml:"radii,omitempty"`
	MaxSpeed        float64          `yaml:"max_speed"`
	FixedSpeed      bool             `yaml:"fixed_speed,omitempty"`
	Particles       []ParticleConfig `yaml:"particles,omitempty"`

	DtMax              float64          `yaml:"dt_max"`
	DtMin              float64          `yaml:"dt_min"`
	MaxTime            float64          `yaml:"max_time"`
	MaxSteps           int              `yaml:"max_steps"`
	SaveInterval       float64          `yaml:"save_interval"`
	CollisionMethod    collision.Method `yaml:"collision_method"`
	UseProjection      bool             `yaml:"use_projection"`
	ProjectionInterval int              `yaml:"projection_interval"`
	Tolerance          float64          `yaml:"tolerance"`

	Seed              uint64 `yaml:"seed"`
	Integrator        string `yaml:"integrator"`
	ExhaustivePairs   bool   `yaml:"exhaustive_pairs,omitempty"`
	QuadratureNodes   int    `yaml:"quadrature_nodes,omitempty"`
	PlacementAttempts int    `yaml:"placement_attempts,omitempty"`
	Workers           int    `yaml:"workers,omitempty"`
}

// ParticleConfig places one particle explicitly. Zero mass or radius fall
// back to the run-wide values.
type ParticleConfig struct {
	Phi    float64 `yaml:"phi"`
	PhiDot float64 `yaml:"phi_dot"`
	Mass   float64 `yaml:"mass,omitempty"`
	Radius float64 `yaml:"radius,omitempty"`
}

func DefaultConfig() *Config {
	sim := dynamo.DefaultConfig()
	return &Config{
		A:                  DefaultA,
		B:                  DefaultB,
		N:                  DefaultN,
		Mass:               DefaultMass,
		Radius:             DefaultRadius,
		MaxSpeed:           DefaultMaxSpeed,
		DtMax:              DefaultDtMax,
		DtMin:              DefaultDtMin,
		MaxTime:            DefaultMaxTime,
		MaxSteps:           DefaultMaxSteps,
		SaveInterval:       DefaultSaveInterval,
		CollisionMethod:    collision.ParallelTransport,
		ProjectionInterval: sim.ProjectionInterval,
		Tolerance:          collision.DefaultTolerance,
		Seed:               DefaultSeed,
		Integrator:         DefaultIntegrator,
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Clone returns a deep copy, so presets can be edited safely.
func (c *Config) Clone() *Config {
	out := *c
	out.Masses = append([]float64(nil), c.Masses...)
	out.Radii = append([]float64(nil), c.Radii...)
	out.Particles = append([]ParticleConfig(nil), c.Particles...)
	return &out
}

func (c *Config) Validate() error {
	if _, err := c.Ellipse(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if len(c.Particles) == 0 && c.N <= 0 && c.PackingFraction <= 0 {
		return fmt.Errorf("%w: one of n, packing_fraction or particles is required", ErrInvalid)
	}
	if c.PackingFraction < 0 || c.PackingFraction >= 1 {
		return fmt.Errorf("%w: packing_fraction must be in [0, 1), got %g", ErrInvalid, c.PackingFraction)
	}
	if !(c.Mass > 0) || !(c.Radius > 0) {
		return fmt.Errorf("%w: mass and radius must be positive", ErrInvalid)
	}
	for i, m := range c.Masses {
		if !(m > 0) {
			return fmt.Errorf("%w: masses[%d] must be positive, got %g", ErrInvalid, i, m)
		}
	}
	for i, r := range c.Radii {
		if !(r > 0) {
			return fmt.Errorf("%w: radii[%d] must be positive, got %g", ErrInvalid, i, r)
		}
	}
	if c.MaxSpeed < 0 {
		return fmt.Errorf("%w: max_speed must not be negative, got %g", ErrInvalid, c.MaxSpeed)
	}
	if c.Integrator == "" {
		return fmt.Errorf("%w: integrator is required", ErrInvalid)
	}
	if err := c.SimConfig().Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return nil
}

func (c *Config) Ellipse() (geometry.Ellipse, error) {
	return geometry.New(c.A, c.B, geometry.WithQuadratureNodes(c.QuadratureNodes))
}

// SimConfig converts the run options to driver options.
func (c *Config) SimConfig() dynamo.Config {
	sim := dynamo.DefaultConfig()
	sim.DtMax = c.DtMax
	sim.DtMin = c.DtMin
	sim.MaxTime = c.MaxTime
	sim.MaxSteps = c.MaxSteps
	sim.SaveInterval = c.SaveInterval
	sim.Method = c.CollisionMethod
	sim.Tolerance = c.Tolerance
	sim.UseProjection = c.UseProjection
	sim.ProjectionInterval = c.ProjectionInterval
	sim.ExhaustivePairs = c.ExhaustivePairs
	sim.Workers = c.Workers
	return sim
}

// Count returns the number of particles the config describes on e.
func (c *Config) Count(e geometry.Ellipse) int {
	switch {
	case len(c.Particles) > 0:
		return len(c.Particles)
	case c.PackingFraction > 0:
		return particle.CountForPacking(e, c.Radius, c.PackingFraction)
	}
	return c.N
}

// Specs returns per-particle mass and radius. Masses and Radii cycle when
// shorter than the particle count.
func (c *Config) Specs(e geometry.Ellipse) []particle.Spec {
	n := c.Count(e)
	specs := particle.Uniform(n, c.Mass, c.Radius)
	for i := range specs {
		if len(c.Masses) > 0 {
			specs[i].Mass = c.Masses[i%len(c.Masses)]
		}
		if len(c.Radii) > 0 {
			specs[i].Radius = c.Radii[i%len(c.Radii)]
		}
		if i < len(c.Particles) {
			if m := c.Particles[i].Mass; m > 0 {
				specs[i].Mass = m
			}
			if r := c.Particles[i].Radius; r > 0 {
				specs[i].Radius = r
			}
		}
	}
	return specs
}

func (c *Config) PlaceOptions() particle.PlaceOptions {
	opts := particle.PlaceOptions{
		MaxAttempts: c.PlacementAttempts,
		MaxSpeed:    c.MaxSpeed,
		Speed:       particle.SpeedUniform,
	}
	if c.FixedSpeed {
		opts.Speed = particle.SpeedFixed
	}
	return opts
}
