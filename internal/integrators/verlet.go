package integrators

import "github.com/san-kum/curvesim/internal/geometry"

// Verlet is the second order drift-kick-drift splitting.
type Verlet struct{}

func NewVerlet() Verlet {
	return Verlet{}
}

func (Verlet) Name() string { return "verlet" }
func (Verlet) Order() int   { return 2 }

func (Verlet) Step(e geometry.Ellipse, phi, phiDot, dt float64) (float64, float64) {
	halfDt := 0.5 * dt
	q := phi + halfDt*phiDot
	p := kick(e, q, phiDot, dt)
	q += halfDt * p
	return geometry.Wrap(q), p
}

// Leapfrog is the kick-drift-kick ordering of Verlet.
type Leapfrog struct{}

func NewLeapfrog() Leapfrog {
	return Leapfrog{}
}

func (Leapfrog) Name() string { return "leapfrog" }
func (Leapfrog) Order() int   { return 2 }

func (Leapfrog) Step(e geometry.Ellipse, phi, phiDot, dt float64) (float64, float64) {
	halfDt := 0.5 * dt
	p := kick(e, phi, phiDot, halfDt)
	q := phi + dt*p
	p = kick(e, q, p, halfDt)
	return geometry.Wrap(q), p
}
