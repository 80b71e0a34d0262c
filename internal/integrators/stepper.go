// Package integrators propagates a single particle along the geodesic flow of
// the ellipse, φ̈ = −Γ(φ) φ̇².
//
// Every [Stepper] is a stateless value and may be shared between goroutines.
package integrators

import (
	"math"

	"github.com/san-kum/curvesim/internal/geometry"
	"github.com/san-kum/curvesim/internal/particle"
)

type Stepper interface {
	Name() string
	Order() int
	// Step advances (phi, phiDot) by dt, which may be negative. The returned
	// angle is wrapped to [0, 2π).
	Step(e geometry.Ellipse, phi, phiDot, dt float64) (float64, float64)
}

// AdvanceParticle returns p moved along its geodesic for dt.
func AdvanceParticle(s Stepper, e geometry.Ellipse, p particle.Particle, dt float64) particle.Particle {
	phi, phiDot := s.Step(e, p.Phi(), p.PhiDot(), dt)
	return particle.Update(e, p, phi, phiDot)
}

// Geodesic is the right-hand side of the geodesic equation in first order
// form.
func Geodesic(e geometry.Ellipse, phi, phiDot float64) (float64, float64) {
	return phiDot, -e.Christoffel(phi) * phiDot * phiDot
}

// kick is the exact flow of ṗ = −Γ(q) p² with q frozen, over tau.
// A non-positive denominator means tau reaches past the blow-up time of that
// flow; the result is NaN so the caller sees an invalid state.
func kick(e geometry.Ellipse, q, p, tau float64) float64 {
	if p == 0 || tau == 0 {
		return p
	}
	den := 1 + e.Christoffel(q)*p*tau
	if den <= 0 {
		return math.NaN()
	}
	return p / den
}
