package collision

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/curvesim/internal/geometry"
	"github.com/san-kum/curvesim/internal/integrators"
	"github.com/san-kum/curvesim/internal/particle"
)

// DefaultTolerance is the relative conservation tolerance of a resolution.
const DefaultTolerance = 1e-6

var ErrConservation = errors.New("collision: conservation violated")

// ViolationError describes one resolution whose energy or momentum change
// exceeded the tolerance.
type ViolationError struct {
	I, J          int // particle ids
	Method        Method
	EnergyError   float64
	MomentumError float64
	Tolerance     float64
}

func (e *ViolationError) Error() string {
	return fmt.Sprintf("%v: %s pair (%d, %d): energy %.3e momentum %.3e tolerance %.1e",
		ErrConservation, e.Method, e.I, e.J, e.EnergyError, e.MomentumError, e.Tolerance)
}

func (e *ViolationError) Unwrap() error {
	return ErrConservation
}

type Params struct {
	Method    Method
	Tolerance float64
	// Stepper and Remaining are used by Geodesic only. Remaining is the time
	// since the pair first touched.
	Stepper   integrators.Stepper
	Remaining float64
}

// Outcome reports the pair totals around one resolution. Momentum is the
// conjugate momentum Σ m √g φ̇; the Cartesian totals are diagnostic since an
// exchange along a curved path does not conserve them.
type Outcome struct {
	Method Method

	EnergyBefore, EnergyAfter     float64
	MomentumBefore, MomentumAfter float64
	CartesianBefore               r2.Vec
	CartesianAfter                r2.Vec

	EnergyError   float64
	MomentumError float64

	// Violation is set when a verified method exceeded its tolerance.
	Violation *ViolationError
}

// Err returns the violation as an error, or nil.
func (o Outcome) Err() error {
	if o.Violation == nil {
		return nil
	}
	return o.Violation
}

// Resolve applies the velocity exchange selected by params.Method to a
// contacting pair and returns the new particles. Positions are unchanged
// except under Geodesic, which re-integrates over params.Remaining.
func Resolve(e geometry.Ellipse, p, q particle.Particle, params Params) (particle.Particle, particle.Particle, Outcome) {
	out := Outcome{
		Method:          params.Method,
		EnergyBefore:    p.KineticEnergy(e) + q.KineticEnergy(e),
		MomentumBefore:  p.ConjugateMomentum(e) + q.ConjugateMomentum(e),
		CartesianBefore: r2.Add(p.CartesianMomentum(), q.CartesianMomentum()),
	}
	scale := p.Mass()*math.Abs(p.ArcSpeed(e)) + q.Mass()*math.Abs(q.ArcSpeed(e))

	var np, nq particle.Particle
	switch params.Method {
	case Simple:
		np = particle.Update(e, p, p.Phi(), q.PhiDot())
		nq = particle.Update(e, q, q.Phi(), p.PhiDot())
	case ParallelTransport:
		np, nq = exchange(e, p, q)
	case Geodesic:
		np, nq = geodesic(e, p, q, params)
	default:
		panic(fmt.Sprintf("collision: resolve with %v", params.Method))
	}

	out.EnergyAfter = np.KineticEnergy(e) + nq.KineticEnergy(e)
	out.MomentumAfter = np.ConjugateMomentum(e) + nq.ConjugateMomentum(e)
	out.CartesianAfter = r2.Add(np.CartesianMomentum(), nq.CartesianMomentum())
	out.EnergyError = relative(out.EnergyAfter-out.EnergyBefore, out.EnergyBefore)
	out.MomentumError = relative(out.MomentumAfter-out.MomentumBefore, scale)

	tol := params.Tolerance
	if tol <= 0 {
		tol = DefaultTolerance
	}
	if params.Method.Verified() && (out.EnergyError > tol || out.MomentumError > tol) {
		out.Violation = &ViolationError{
			I:             p.ID(),
			J:             q.ID(),
			Method:        params.Method,
			EnergyError:   out.EnergyError,
			MomentumError: out.MomentumError,
			Tolerance:     tol,
		}
	}
	return np, nq, out
}

// exchange carries q's velocity to p's position, applies the 1-D elastic
// formula for unequal masses and carries q's share back.
func exchange(e geometry.Ellipse, p, q particle.Particle) (particle.Particle, particle.Particle) {
	d := geometry.ShortestDelta(q.Phi(), p.Phi())
	v := p.PhiDot()
	w := e.ParallelTransport(q.PhiDot(), d, q.Phi())

	m1, m2 := p.Mass(), q.Mass()
	total := m1 + m2
	v2 := ((m1-m2)*v + 2*m2*w) / total
	w2 := ((m2-m1)*w + 2*m1*v) / total

	back := e.ParallelTransport(w2, -d, p.Phi())
	return particle.Update(e, p, p.Phi(), v2), particle.Update(e, q, q.Phi(), back)
}

func geodesic(e geometry.Ellipse, p, q particle.Particle, params Params) (particle.Particle, particle.Particle) {
	if params.Stepper == nil || params.Remaining <= 0 {
		return exchange(e, p, q)
	}
	s, dt := params.Stepper, params.Remaining
	p0 := integrators.AdvanceParticle(s, e, p, -dt)
	q0 := integrators.AdvanceParticle(s, e, q, -dt)
	p1, q1 := exchange(e, p0, q0)
	return integrators.AdvanceParticle(s, e, p1, dt), integrators.AdvanceParticle(s, e, q1, dt)
}

func relative(diff, scale float64) float64 {
	if scale == 0 {
		return math.Abs(diff)
	}
	return math.Abs(diff) / math.Abs(scale)
}
