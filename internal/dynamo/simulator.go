package dynamo

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/san-kum/curvesim/internal/collision"
	"github.com/san-kum/curvesim/internal/geometry"
	"github.com/san-kum/curvesim/internal/integrators"
	"github.com/san-kum/curvesim/internal/metrics"
	"github.com/san-kum/curvesim/internal/particle"
)

// minChunk is the smallest particle range handed to one worker.
const minChunk = 64

// timeEpsilon absorbs rounding in accumulated time when comparing against
// MaxTime and save points.
const timeEpsilon = 1e-12

type Simulator struct {
	e         geometry.Ellipse
	stepper   integrators.Stepper
	cfg       Config
	logger    *slog.Logger
	metrics   []Metric
	observers []Observer

	pool        *GenerationPool
	eRef        float64
	clampRun    int
	stalls      int
	projections int
}

type Option func(*Simulator)

// WithLogger replaces the default component logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Simulator) {
		if l != nil {
			s.logger = l
		}
	}
}

func New(e geometry.Ellipse, stepper integrators.Stepper, cfg Config, opts ...Option) (*Simulator, error) {
	if stepper == nil {
		return nil, fmt.Errorf("%w: nil stepper", ErrInvalidConfig)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	s := &Simulator{
		e:         e,
		stepper:   stepper,
		cfg:       cfg,
		logger:    slog.Default().With(slog.String("component", "dynamo")),
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *Simulator) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

func (s *Simulator) Config() Config               { return s.cfg }
func (s *Simulator) Ellipse() geometry.Ellipse    { return s.e }
func (s *Simulator) Stepper() integrators.Stepper { return s.stepper }

// Step advances gen by one adaptive timestep of at most DtMax. gen is not
// modified.
func (s *Simulator) Step(gen Generation) (Generation, StepReport, error) {
	return s.step(gen, s.cfg.DtMax)
}

func (s *Simulator) step(gen Generation, ceiling float64) (Generation, StepReport, error) {
	var rep StepReport
	ps := gen.Particles
	n := len(ps)
	if s.eRef == 0 {
		s.eRef = metrics.TotalEnergy(s.e, ps)
	}

	dt := ceiling
	for _, pr := range collision.CandidatePairs(ps, s.cfg.ExhaustivePairs) {
		if ttc := collision.TimeToCollision(s.e, ps[pr.I], ps[pr.J], dt, s.stepper); ttc < dt {
			dt = ttc
		}
	}
	if dt < s.cfg.DtMin && dt < ceiling {
		dt = math.Min(s.cfg.DtMin, ceiling)
		rep.Clamped = true
		s.stalls++
		s.clampRun++
		if s.cfg.StallWarnAfter > 0 && s.clampRun == s.cfg.StallWarnAfter {
			s.logger.Warn("timestep stalled at minimum",
				slog.Int("step", gen.Step),
				slog.Float64("time", gen.Time),
				slog.Int("consecutive", s.clampRun),
				slog.Any("err", ErrStalledStep))
		}
	} else {
		s.clampRun = 0
	}
	rep.Dt = dt

	next := s.nextSlice(n)
	ParallelFor(n, s.cfg.Workers, minChunk, func(start, end int) {
		for i := start; i < end; i++ {
			next[i] = integrators.AdvanceParticle(s.stepper, s.e, ps[i], dt)
		}
	})

	out := Generation{Particles: next, Time: gen.Time + dt, Step: gen.Step + 1}
	if s.cfg.ValidateState && !out.IsValid() {
		s.release(next)
		return gen, rep, &SimError{
			Time:    out.Time,
			Step:    out.Step,
			Message: "invalid state (NaN/Inf)",
			Err:     ErrInvalidState,
		}
	}

	rep.Events, rep.Violations = s.resolveContacts(out, dt)

	if s.cfg.UseProjection && out.Step%s.cfg.ProjectionInterval == 0 {
		s.project(next)
		rep.Projected = true
	}
	return out, rep, nil
}

// resolveContacts resolves, in pair order, every touching pair that is still
// closing. Each resolution sees the result of the previous ones.
func (s *Simulator) resolveContacts(gen Generation, dt float64) ([]CollisionEvent, []*collision.ViolationError) {
	ps := gen.Particles
	var events []CollisionEvent
	var violations []*collision.ViolationError

	for _, pr := range collision.CandidatePairs(ps, s.cfg.ExhaustivePairs) {
		p, q := ps[pr.I], ps[pr.J]
		if !collision.InContact(s.e, p, q) || !collision.Approaching(s.e, p, q) {
			continue
		}
		params := collision.Params{
			Method:    s.cfg.Method,
			Tolerance: s.cfg.Tolerance,
			Stepper:   s.stepper,
		}
		if s.cfg.Method == collision.Geodesic {
			params.Remaining = collision.PenetrationTime(s.e, p, q, dt)
		}

		np, nq, out := collision.Resolve(s.e, p, q, params)
		ps[pr.I], ps[pr.J] = np, nq

		ev := CollisionEvent{
			Time:          gen.Time,
			Step:          gen.Step,
			I:             p.ID(),
			J:             q.ID(),
			Method:        out.Method,
			EnergyError:   out.EnergyError,
			MomentumError: out.MomentumError,
			Violated:      out.Violation != nil,
		}
		events = append(events, ev)
		s.logger.Debug("collision resolved",
			slog.Int("i", ev.I),
			slog.Int("j", ev.J),
			slog.Float64("time", ev.Time),
			slog.Float64("energy_error", ev.EnergyError),
			slog.Float64("momentum_error", ev.MomentumError))

		if out.Violation != nil {
			violations = append(violations, out.Violation)
			s.logger.Warn("conservation violated",
				slog.Int("step", gen.Step),
				slog.Float64("time", gen.Time),
				slog.Any("err", out.Violation))
		}
	}
	return events, violations
}

// project rescales every φ̇ in place by √(eRef/E). Energy shares between
// particles are unchanged.
func (s *Simulator) project(ps []particle.Particle) {
	before := metrics.TotalEnergy(s.e, ps)
	if before <= 0 || s.eRef <= 0 {
		return
	}
	f := math.Sqrt(s.eRef / before)
	for i, p := range ps {
		ps[i] = particle.Update(s.e, p, p.Phi(), f*p.PhiDot())
	}
	s.projections++

	after := metrics.TotalEnergy(s.e, ps)
	if rel := math.Abs(after-s.eRef) / s.eRef; rel > s.cfg.ProjectionTolerance {
		s.logger.Warn("projection missed reference energy",
			slog.Float64("reference", s.eRef),
			slog.Float64("energy", after),
			slog.Float64("relative_error", rel))
	}
}

func (s *Simulator) nextSlice(n int) []particle.Particle {
	if s.pool != nil && s.pool.size == n {
		return s.pool.Get()
	}
	return make([]particle.Particle, n)
}

func (s *Simulator) release(ps []particle.Particle) {
	if s.pool != nil {
		s.pool.Put(ps)
	}
}

func (s *Simulator) reset(n int) {
	s.pool = NewGenerationPool(n)
	s.eRef = 0
	s.clampRun = 0
	s.stalls = 0
	s.projections = 0
	for _, m := range s.metrics {
		m.Reset()
	}
}

// Run integrates particles from t = 0 until MaxTime. particles is copied and
// never modified.
//
// Reaching MaxSteps first is not an error: the partial trajectory is returned
// with Warning set to a *StepBudgetError. A canceled context returns the
// partial trajectory together with an error wrapping ErrContextCanceled.
func (s *Simulator) Run(ctx context.Context, particles []particle.Particle) (*Trajectory, error) {
	if len(particles) == 0 {
		return nil, fmt.Errorf("%w: no particles", ErrInvalidConfig)
	}
	for _, p := range particles {
		if !p.IsValid() {
			return nil, fmt.Errorf("%w: particle %d", ErrInvalidState, p.ID())
		}
	}

	n := len(particles)
	s.reset(n)
	traj := &Trajectory{
		Snapshots: make([]Snapshot, 0, int(s.cfg.MaxTime/s.cfg.SaveInterval)+2),
		Metrics:   make(map[string]float64),
	}

	gen := Generation{Particles: s.pool.GetAndCopy(particles)}
	events, violations := s.resolveContacts(gen, s.cfg.DtMax)
	traj.Events = append(traj.Events, events...)
	traj.Violations = append(traj.Violations, violations...)

	s.eRef = metrics.TotalEnergy(s.e, gen.Particles)
	traj.MomentumScale = metrics.MomentumScale(s.e, gen.Particles)

	s.logger.Info("run started",
		slog.Int("particles", n),
		slog.String("stepper", s.stepper.Name()),
		slog.String("method", s.cfg.Method.String()),
		slog.Float64("max_time", s.cfg.MaxTime),
		slog.Float64("energy", s.eRef))

	s.save(traj, gen)
	nextSave := s.cfg.SaveInterval
	end := s.cfg.MaxTime * (1 - timeEpsilon)

	for gen.Time < end {
		select {
		case <-ctx.Done():
			s.finish(traj, gen)
			return traj, &SimError{
				Time:    gen.Time,
				Step:    gen.Step,
				Message: "canceled",
				Err:     fmt.Errorf("%w: %w", ErrContextCanceled, ctx.Err()),
			}
		default:
		}

		if gen.Step >= s.cfg.MaxSteps {
			traj.Warning = &StepBudgetError{Steps: gen.Step, Time: gen.Time, MaxTime: s.cfg.MaxTime}
			s.logger.Warn("step budget exhausted",
				slog.Int("steps", gen.Step),
				slog.Float64("time", gen.Time))
			break
		}

		next, rep, err := s.step(gen, math.Min(s.cfg.DtMax, s.cfg.MaxTime-gen.Time))
		if err != nil {
			s.finish(traj, gen)
			return traj, err
		}
		traj.Events = append(traj.Events, rep.Events...)
		traj.Violations = append(traj.Violations, rep.Violations...)

		s.release(gen.Particles)
		gen = next

		if gen.Time >= nextSave-timeEpsilon*s.cfg.MaxTime {
			s.save(traj, gen)
			for nextSave <= gen.Time+timeEpsilon*s.cfg.MaxTime {
				nextSave += s.cfg.SaveInterval
			}
		}
	}

	if last := traj.Snapshots[len(traj.Snapshots)-1]; last.Step != gen.Step {
		s.save(traj, gen)
	}
	s.finish(traj, gen)

	s.logger.Info("run finished",
		slog.Int("steps", traj.Steps),
		slog.Float64("time", gen.Time),
		slog.Int("collisions", len(traj.Events)),
		slog.Int("violations", len(traj.Violations)),
		slog.Int("stalls", traj.Stalls))
	return traj, nil
}

func (s *Simulator) save(traj *Trajectory, gen Generation) {
	snap := NewSnapshot(gen)
	cart := metrics.TotalCartesianMomentum(gen.Particles)
	point := ConservationPoint{
		Time:            gen.Time,
		Energy:          metrics.TotalEnergy(s.e, gen.Particles),
		Momentum:        metrics.TotalConjugateMomentum(s.e, gen.Particles),
		CartesianX:      cart.X,
		CartesianY:      cart.Y,
		AngularMomentum: metrics.TotalAngularMomentum(gen.Particles),
	}
	traj.Snapshots = append(traj.Snapshots, snap)
	traj.Conservation.Append(point)

	for _, m := range s.metrics {
		m.Observe(s.e, gen.Particles, gen.Time)
	}
	for _, obs := range s.observers {
		obs.OnSave(snap, point)
	}
}

func (s *Simulator) finish(traj *Trajectory, gen Generation) {
	traj.Final = gen.Clone()
	traj.Steps = gen.Step
	traj.Stalls = s.stalls
	traj.Projections = s.projections
	for _, m := range s.metrics {
		traj.Metrics[m.Name()] = m.Value()
	}
}
