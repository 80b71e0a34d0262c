package dynamo

import (
	"fmt"
	"math"

	"github.com/san-kum/curvesim/internal/collision"
	"github.com/san-kum/curvesim/internal/geometry"
	"github.com/san-kum/curvesim/internal/particle"
)

type Metric interface {
	Name() string
	Observe(e geometry.Ellipse, ps []particle.Particle, t float64)
	Value() float64
	Reset()
}

// Observer is notified at every save point.
type Observer interface {
	OnSave(snap Snapshot, point ConservationPoint)
}

type Config struct {
	DtMax        float64
	DtMin        float64
	MaxTime      float64
	MaxSteps     int
	SaveInterval float64

	Method    collision.Method
	Tolerance float64

	UseProjection       bool
	ProjectionInterval  int
	ProjectionTolerance float64

	ExhaustivePairs bool
	Workers         int
	StallWarnAfter  int
	ValidateState   bool
}

func DefaultConfig() Config {
	return Config{
		DtMax:               0.01,
		DtMin:               1e-9,
		MaxTime:             10.0,
		MaxSteps:            10_000_000,
		SaveInterval:        0.1,
		Method:              collision.ParallelTransport,
		Tolerance:           collision.DefaultTolerance,
		UseProjection:       false,
		ProjectionInterval:  1000,
		ProjectionTolerance: 1e-12,
		StallWarnAfter:      100,
		ValidateState:       true,
	}
}

func (c Config) Validate() error {
	switch {
	case !(c.DtMax > 0):
		return fmt.Errorf("%w: dt_max must be positive, got %g", ErrInvalidConfig, c.DtMax)
	case !(c.DtMin > 0) || c.DtMin > c.DtMax:
		return fmt.Errorf("%w: dt_min must be in (0, dt_max], got %g", ErrInvalidConfig, c.DtMin)
	case !(c.MaxTime > 0) || math.IsInf(c.MaxTime, 0):
		return fmt.Errorf("%w: max_time must be positive and finite, got %g", ErrInvalidConfig, c.MaxTime)
	case c.MaxSteps <= 0:
		return fmt.Errorf("%w: max_steps must be positive, got %d", ErrInvalidConfig, c.MaxSteps)
	case !(c.SaveInterval > 0):
		return fmt.Errorf("%w: save_interval must be positive, got %g", ErrInvalidConfig, c.SaveInterval)
	case !c.Method.Valid():
		return fmt.Errorf("%w: %v", ErrInvalidConfig, c.Method)
	case c.Tolerance < 0:
		return fmt.Errorf("%w: tolerance must not be negative, got %g", ErrInvalidConfig, c.Tolerance)
	case c.UseProjection && c.ProjectionInterval <= 0:
		return fmt.Errorf("%w: projection_interval must be positive, got %d", ErrInvalidConfig, c.ProjectionInterval)
	}
	return nil
}

// Generation is one immutable set of particles at a point in time. The
// driver replaces it wholesale every step.
type Generation struct {
	Particles []particle.Particle
	Time      float64
	Step      int
}

func (g Generation) Clone() Generation {
	ps := make([]particle.Particle, len(g.Particles))
	copy(ps, g.Particles)
	return Generation{Particles: ps, Time: g.Time, Step: g.Step}
}

// IsValid reports whether every particle has finite state.
func (g Generation) IsValid() bool {
	for _, p := range g.Particles {
		if !p.IsValid() {
			return false
		}
	}
	return true
}

type Snapshot struct {
	Time   float64
	Step   int
	Phi    []float64
	PhiDot []float64
}

func NewSnapshot(g Generation) Snapshot {
	s := Snapshot{
		Time:   g.Time,
		Step:   g.Step,
		Phi:    make([]float64, len(g.Particles)),
		PhiDot: make([]float64, len(g.Particles)),
	}
	for i, p := range g.Particles {
		s.Phi[i] = p.Phi()
		s.PhiDot[i] = p.PhiDot()
	}
	return s
}

// ConservationPoint is one row of a ConservationRecord.
type ConservationPoint struct {
	Time            float64
	Energy          float64
	Momentum        float64
	CartesianX      float64
	CartesianY      float64
	AngularMomentum float64
}

// ConservationRecord holds parallel series sampled at save times. Momentum is
// the total conjugate momentum; the Cartesian and angular series are
// diagnostic.
type ConservationRecord struct {
	Time            []float64
	Energy          []float64
	Momentum        []float64
	CartesianX      []float64
	CartesianY      []float64
	AngularMomentum []float64
}

func (r *ConservationRecord) Append(p ConservationPoint) {
	r.Time = append(r.Time, p.Time)
	r.Energy = append(r.Energy, p.Energy)
	r.Momentum = append(r.Momentum, p.Momentum)
	r.CartesianX = append(r.CartesianX, p.CartesianX)
	r.CartesianY = append(r.CartesianY, p.CartesianY)
	r.AngularMomentum = append(r.AngularMomentum, p.AngularMomentum)
}

func (r *ConservationRecord) Len() int { return len(r.Time) }

func (r *ConservationRecord) At(i int) ConservationPoint {
	return ConservationPoint{
		Time:            r.Time[i],
		Energy:          r.Energy[i],
		Momentum:        r.Momentum[i],
		CartesianX:      r.CartesianX[i],
		CartesianY:      r.CartesianY[i],
		AngularMomentum: r.AngularMomentum[i],
	}
}

// CollisionEvent records one resolved contact. I and J are particle ids.
type CollisionEvent struct {
	Time          float64
	Step          int
	I, J          int
	Method        collision.Method
	EnergyError   float64
	MomentumError float64
	Violated      bool
}

// StepReport describes what one Step did.
type StepReport struct {
	Dt         float64
	Clamped    bool
	Projected  bool
	Events     []CollisionEvent
	Violations []*collision.ViolationError
}

type Trajectory struct {
	Snapshots    []Snapshot
	Conservation ConservationRecord
	Events       []CollisionEvent
	Violations   []*collision.ViolationError
	Metrics      map[string]float64

	// MomentumScale is Σ m|u| of the initial generation, the denominator of
	// momentum drift.
	MomentumScale float64

	Stalls      int
	Projections int
	Steps       int
	Final       Generation

	// Warning is set, with a nil error from Run, when the run stopped early
	// but the trajectory is usable, e.g. a *StepBudgetError.
	Warning error
}
