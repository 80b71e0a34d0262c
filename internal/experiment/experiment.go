// Package experiment turns a run configuration into a ready simulator:
// manifold, seeded particle placement, stepper and metrics.
package experiment

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/exp/rand"

	"github.com/san-kum/curvesim/internal/config"
	"github.com/san-kum/curvesim/internal/dynamo"
	"github.com/san-kum/curvesim/internal/geometry"
	"github.com/san-kum/curvesim/internal/particle"
)

type Experiment struct {
	cfg       *config.Config
	ellipse   geometry.Ellipse
	particles []particle.Particle
	simulator *dynamo.Simulator
	rng       *rand.Rand
	logger    *slog.Logger
}

type Option func(*Experiment)

func WithLogger(l *slog.Logger) Option {
	return func(x *Experiment) {
		if l != nil {
			x.logger = l
		}
	}
}

func New(cfg *config.Config, opts ...Option) (*Experiment, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	x := &Experiment{
		cfg:    cfg,
		rng:    rand.New(rand.NewSource(cfg.Seed)),
		logger: slog.Default().With(slog.String("component", "experiment")),
	}
	for _, opt := range opts {
		opt(x)
	}
	return x, nil
}

// Setup builds the manifold, places the particles and wires the simulator
// with the registry's stepper and default metrics.
func (x *Experiment) Setup(reg *Registry) error {
	e, err := x.cfg.Ellipse()
	if err != nil {
		return err
	}
	x.ellipse = e

	stepper, err := reg.GetStepper(x.cfg.Integrator)
	if err != nil {
		return err
	}

	specs := x.cfg.Specs(e)
	if len(x.cfg.Particles) > 0 {
		x.particles, err = explicit(e, x.cfg.Particles, specs)
	} else {
		x.particles, err = particle.Place(x.rng, e, specs, x.cfg.PlaceOptions())
	}
	if err != nil {
		return err
	}
	x.logger.Info("particles placed",
		slog.Int("count", len(x.particles)),
		slog.Float64("a", e.A),
		slog.Float64("b", e.B),
		slog.Uint64("seed", x.cfg.Seed))

	x.simulator, err = dynamo.New(e, stepper, x.cfg.SimConfig(), dynamo.WithLogger(
		x.logger.With(slog.String("stepper", stepper.Name()))))
	if err != nil {
		return err
	}
	for _, m := range reg.DefaultMetrics() {
		x.simulator.AddMetric(m)
	}
	return nil
}

func (x *Experiment) Run(ctx context.Context) (*dynamo.Trajectory, error) {
	if x.simulator == nil {
		return nil, fmt.Errorf("experiment not setup")
	}
	return x.simulator.Run(ctx, x.particles)
}

func (x *Experiment) Config() *config.Config         { return x.cfg }
func (x *Experiment) Ellipse() geometry.Ellipse      { return x.ellipse }
func (x *Experiment) Particles() []particle.Particle { return x.particles }

// Simulator returns the underlying simulator for adding observers.
func (x *Experiment) Simulator() *dynamo.Simulator { return x.simulator }

func explicit(e geometry.Ellipse, pcs []config.ParticleConfig, specs []particle.Spec) ([]particle.Particle, error) {
	ps := make([]particle.Particle, len(pcs))
	for i, pc := range pcs {
		ps[i] = particle.New(e, i, specs[i].Mass, specs[i].Radius, pc.Phi, pc.PhiDot)
		for j := 0; j < i; j++ {
			if particle.Overlaps(e, ps[j].Phi(), ps[j].Radius(), ps[i].Phi(), ps[i].Radius()) {
				return nil, fmt.Errorf("%w: particles %d and %d overlap", particle.ErrPlacement, j, i)
			}
		}
	}
	return ps, nil
}
