package integrators

import (
	"math"

	"github.com/san-kum/curvesim/internal/geometry"
)

// Dormand-Prince coefficients (RK45)
var (
	b21 = 1.0 / 5.0
	b31 = 3.0 / 40.0
	b32 = 9.0 / 40.0
	b41 = 44.0 / 45.0
	b42 = -56.0 / 15.0
	b43 = 32.0 / 9.0
	b51 = 19372.0 / 6561.0
	b52 = -25360.0 / 2187.0
	b53 = 64448.0 / 6561.0
	b54 = -212.0 / 729.0
	b61 = 9017.0 / 3168.0
	b62 = -355.0 / 33.0
	b63 = 46732.0 / 5247.0
	b64 = 49.0 / 176.0
	b65 = -5103.0 / 18656.0

	c1 = 35.0 / 384.0
	c3 = 500.0 / 1113.0
	c4 = 125.0 / 192.0
	c5 = -2187.0 / 6784.0
	c6 = 11.0 / 84.0

	dc1 = c1 - 5179.0/57600.0
	dc3 = c3 - 7571.0/16695.0
	dc4 = c4 - 393.0/640.0
	dc5 = c5 - -92097.0/339200.0
	dc6 = c6 - 187.0/2100.0
	dc7 = -1.0 / 40.0
)

// DefaultRK45Tolerance is the per-substep error target used by Step.
const DefaultRK45Tolerance = 1e-10

const maxRK45Substeps = 10000

// RK45 is Dormand-Prince with embedded error control. Step covers dt with as
// many accepted substeps as the tolerance requires.
type RK45 struct {
	tol      float64
	safety   float64
	minScale float64
	maxScale float64
}

func NewRK45() RK45 {
	return NewRK45WithTolerance(DefaultRK45Tolerance)
}

func NewRK45WithTolerance(tol float64) RK45 {
	return RK45{
		tol:      tol,
		safety:   0.9,
		minScale: 0.2,
		maxScale: 10.0,
	}
}

func (RK45) Name() string { return "rk45" }
func (RK45) Order() int   { return 5 }

func (r RK45) Step(e geometry.Ellipse, phi, phiDot, dt float64) (float64, float64) {
	q, p := phi, phiDot
	remaining := dt
	h := dt
	for i := 0; i < maxRK45Substeps && remaining != 0; i++ {
		if math.Abs(h) > math.Abs(remaining) {
			h = remaining
		}
		nq, np, hNext, ok := r.StepAdaptive(e, q, p, h, r.tol)
		if ok {
			q, p = nq, np
			remaining -= h
		}
		h = hNext
	}
	return geometry.Wrap(q), p
}

// StepAdaptive attempts one step of size dt. It returns the new state, the
// suggested next step and whether the error estimate was within tol.
func (r RK45) StepAdaptive(e geometry.Ellipse, phi, phiDot, dt, tol float64) (float64, float64, float64, bool) {
	k1q, k1p := Geodesic(e, phi, phiDot)
	k2q, k2p := Geodesic(e,
		phi+dt*b21*k1q,
		phiDot+dt*b21*k1p)
	k3q, k3p := Geodesic(e,
		phi+dt*(b31*k1q+b32*k2q),
		phiDot+dt*(b31*k1p+b32*k2p))
	k4q, k4p := Geodesic(e,
		phi+dt*(b41*k1q+b42*k2q+b43*k3q),
		phiDot+dt*(b41*k1p+b42*k2p+b43*k3p))
	k5q, k5p := Geodesic(e,
		phi+dt*(b51*k1q+b52*k2q+b53*k3q+b54*k4q),
		phiDot+dt*(b51*k1p+b52*k2p+b53*k3p+b54*k4p))
	k6q, k6p := Geodesic(e,
		phi+dt*(b61*k1q+b62*k2q+b63*k3q+b64*k4q+b65*k5q),
		phiDot+dt*(b61*k1p+b62*k2p+b63*k3p+b64*k4p+b65*k5p))

	q := phi + dt*(c1*k1q+c3*k3q+c4*k4q+c5*k5q+c6*k6q)
	p := phiDot + dt*(c1*k1p+c3*k3p+c4*k4p+c5*k5p+c6*k6p)
	k7q, k7p := Geodesic(e, q, p)

	errQ := dt * (dc1*k1q + dc3*k3q + dc4*k4q + dc5*k5q + dc6*k6q + dc7*k7q)
	errP := dt * (dc1*k1p + dc3*k3p + dc4*k4p + dc5*k5p + dc6*k6p + dc7*k7p)
	errMax := math.Max(
		math.Abs(errQ)/(math.Abs(phi)+math.Abs(dt*k1q)+1e-10),
		math.Abs(errP)/(math.Abs(phiDot)+math.Abs(dt*k1p)+1e-10),
	)

	errRatio := errMax / tol

	var dtNew float64
	if errRatio > 1 {
		scale := math.Max(r.minScale, r.safety*math.Pow(errRatio, -0.25))
		dtNew = dt * scale
	} else {
		if errRatio > 0 {
			scale := math.Min(r.maxScale, r.safety*math.Pow(errRatio, -0.2))
			dtNew = dt * scale
		} else {
			dtNew = dt * r.maxScale
		}
	}

	return q, p, dtNew, errRatio <= 1
}
