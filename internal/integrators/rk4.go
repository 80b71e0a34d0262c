package integrators

import "github.com/san-kum/curvesim/internal/geometry"

// RK4 is the classical Runge-Kutta method. It is fourth order but not
// symplectic, so its energy error grows over long runs.
type RK4 struct{}

func NewRK4() RK4 {
	return RK4{}
}

func (RK4) Name() string { return "rk4" }
func (RK4) Order() int   { return 4 }

func (RK4) Step(e geometry.Ellipse, phi, phiDot, dt float64) (float64, float64) {
	k1q, k1p := Geodesic(e, phi, phiDot)
	k2q, k2p := Geodesic(e, phi+0.5*dt*k1q, phiDot+0.5*dt*k1p)
	k3q, k3p := Geodesic(e, phi+0.5*dt*k2q, phiDot+0.5*dt*k2p)
	k4q, k4p := Geodesic(e, phi+dt*k3q, phiDot+dt*k3p)

	dt6 := dt / 6.0
	q := phi + dt6*(k1q+2*k2q+2*k3q+k4q)
	p := phiDot + dt6*(k1p+2*k2p+2*k3p+k4p)
	return geometry.Wrap(q), p
}
