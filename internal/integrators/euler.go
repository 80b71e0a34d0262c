package integrators

import "github.com/san-kum/curvesim/internal/geometry"

// Euler is the explicit first order method, kept as a baseline.
type Euler struct{}

func NewEuler() Euler {
	return Euler{}
}

func (Euler) Name() string { return "euler" }
func (Euler) Order() int   { return 1 }

func (Euler) Step(e geometry.Ellipse, phi, phiDot, dt float64) (float64, float64) {
	dq, dp := Geodesic(e, phi, phiDot)
	return geometry.Wrap(phi + dt*dq), phiDot + dt*dp
}
