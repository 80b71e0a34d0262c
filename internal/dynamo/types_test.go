package dynamo

import (
	"errors"
	"testing"

	"github.com/san-kum/curvesim/internal/collision"
	"github.com/san-kum/curvesim/internal/geometry"
	"github.com/san-kum/curvesim/internal/particle"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		valid  bool
	}{
		{"default", func(c *Config) {}, true},
		{"zero dt_max", func(c *Config) { c.DtMax = 0 }, false},
		{"dt_min above dt_max", func(c *Config) { c.DtMin = 1 }, false},
		{"zero dt_min", func(c *Config) { c.DtMin = 0 }, false},
		{"negative max_time", func(c *Config) { c.MaxTime = -1 }, false},
		{"zero max_steps", func(c *Config) { c.MaxSteps = 0 }, false},
		{"zero save_interval", func(c *Config) { c.SaveInterval = 0 }, false},
		{"unknown method", func(c *Config) { c.Method = collision.Method(9) }, false},
		{"negative tolerance", func(c *Config) { c.Tolerance = -1 }, false},
		{"projection without interval", func(c *Config) {
			c.UseProjection = true
			c.ProjectionInterval = 0
		}, false},
		{"projection disabled ignores interval", func(c *Config) { c.ProjectionInterval = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.valid && err != nil {
				t.Errorf("expected valid config, got %v", err)
			}
			if !tt.valid && !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestSimError(t *testing.T) {
	err := &SimError{Time: 1.5, Step: 10, Message: "invalid state (NaN/Inf)", Err: ErrInvalidState}

	if got, want := err.Error(), "step 10 (t=1.5000): invalid state (NaN/Inf)"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
	if !errors.Is(err, ErrInvalidState) {
		t.Error("expected SimError to unwrap to ErrInvalidState")
	}
}

func TestStepBudgetError(t *testing.T) {
	var err error = &StepBudgetError{Steps: 5, Time: 0.05, MaxTime: 1}
	if !errors.Is(err, ErrStepBudget) {
		t.Error("expected StepBudgetError to match ErrStepBudget")
	}
}

func TestConservationRecord(t *testing.T) {
	var r ConservationRecord
	r.Append(ConservationPoint{Time: 0, Energy: 1, Momentum: 2})
	r.Append(ConservationPoint{Time: 0.1, Energy: 1, Momentum: 2, CartesianX: 3})

	if r.Len() != 2 {
		t.Fatalf("expected 2 rows, got %d", r.Len())
	}
	if got := r.At(1); got.Time != 0.1 || got.CartesianX != 3 {
		t.Errorf("unexpected row %+v", got)
	}
}

func TestGenerationClone(t *testing.T) {
	e := geometry.MustNew(2, 1)
	g := Generation{
		Particles: []particle.Particle{particle.New(e, 0, 1, 0.1, 0, 1)},
		Time:      1,
		Step:      3,
	}
	c := g.Clone()
	c.Particles[0] = particle.New(e, 0, 1, 0.1, 1, 1)

	if g.Particles[0].Phi() != 0 {
		t.Error("clone shares particle storage")
	}
	if c.Time != 1 || c.Step != 3 {
		t.Errorf("clone lost time or step: %+v", c)
	}
}

func TestNewSnapshot(t *testing.T) {
	e := geometry.MustNew(2, 1)
	g := Generation{
		Particles: []particle.Particle{
			particle.New(e, 0, 1, 0.1, 0.5, 1),
			particle.New(e, 1, 1, 0.1, 2, -0.5),
		},
		Time: 2,
		Step: 7,
	}
	s := NewSnapshot(g)
	if s.Time != 2 || s.Step != 7 {
		t.Errorf("unexpected header %v/%d", s.Time, s.Step)
	}
	if s.Phi[1] != 2 || s.PhiDot[1] != -0.5 {
		t.Errorf("unexpected particle row: %v %v", s.Phi, s.PhiDot)
	}
}

func TestSummary(t *testing.T) {
	traj := &Trajectory{
		Events: []CollisionEvent{
			{EnergyError: 1e-9, MomentumError: 2e-9},
			{EnergyError: 3e-9, MomentumError: 2e-9},
		},
		MomentumScale: 2,
		Steps:         100,
	}
	traj.Conservation.Append(ConservationPoint{Energy: 1, Momentum: 1})
	traj.Conservation.Append(ConservationPoint{Energy: 1.01, Momentum: 1.02})

	s := traj.Summary()
	if s.Collisions != 2 || s.Steps != 100 {
		t.Errorf("unexpected counts %+v", s)
	}
	if !near(s.EnergyDrift, 0.01, 1e-12) {
		t.Errorf("energy drift %v", s.EnergyDrift)
	}
	if !near(s.MomentumDrift, 0.01, 1e-12) {
		t.Errorf("momentum drift %v", s.MomentumDrift)
	}
	if !near(s.MeanEnergyError, 2e-9, 1e-20) || !near(s.MaxEnergyError, 3e-9, 1e-20) {
		t.Errorf("energy error stats %v %v", s.MeanEnergyError, s.MaxEnergyError)
	}
	if s.StdMomentumError != 0 {
		t.Errorf("expected zero spread, got %v", s.StdMomentumError)
	}
}

func near(a, b, tol float64) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d <= tol
}
