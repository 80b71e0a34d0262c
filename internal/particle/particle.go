// Package particle holds the immutable hard-sphere state used by the engine.
//
// A [Particle] carries its angular state (φ, φ̇) and the Cartesian state
// derived from it. Both are computed together by [New] and [Update]; there is
// no other way to change a particle, so the two forms cannot drift apart.
package particle

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/curvesim/internal/geometry"
)

type Particle struct {
	id     int
	mass   float64
	radius float64

	phi    float64
	phiDot float64

	pos r2.Vec
	vel r2.Vec
}

// New builds a particle at angle phi (wrapped to [0, 2π)) with angular
// velocity phiDot.
func New(e geometry.Ellipse, id int, mass, radius, phi, phiDot float64) Particle {
	p := Particle{id: id, mass: mass, radius: radius}
	return Update(e, p, phi, phiDot)
}

// Update returns a copy of p moved to (phi, phiDot). Identity, mass and radius
// carry over.
func Update(e geometry.Ellipse, p Particle, phi, phiDot float64) Particle {
	phi = geometry.Wrap(phi)
	p.phi = phi
	p.phiDot = phiDot
	p.pos = e.Position(phi)
	p.vel = e.VelocityFromAngular(phi, phiDot)
	return p
}

func (p Particle) ID() int          { return p.id }
func (p Particle) Mass() float64    { return p.mass }
func (p Particle) Radius() float64  { return p.radius }
func (p Particle) Phi() float64     { return p.phi }
func (p Particle) PhiDot() float64  { return p.phiDot }
func (p Particle) Position() r2.Vec { return p.pos }
func (p Particle) Velocity() r2.Vec { return p.vel }

func (p Particle) String() string {
	return fmt.Sprintf("particle %d (φ=%.6f φ̇=%.6f m=%g r=%g)", p.id, p.phi, p.phiDot, p.mass, p.radius)
}

// KineticEnergy is ½ m g(φ) φ̇².
func (p Particle) KineticEnergy(e geometry.Ellipse) float64 {
	return 0.5 * p.mass * e.Metric(p.phi) * p.phiDot * p.phiDot
}

// KineticEnergyCartesian is ½ m |v|².
func (p Particle) KineticEnergyCartesian() float64 {
	return 0.5 * p.mass * r2.Norm2(p.vel)
}

// ConjugateMomentum is m √g(φ) φ̇, the signed momentum along the curve. It is
// constant along a free geodesic.
func (p Particle) ConjugateMomentum(e geometry.Ellipse) float64 {
	return p.mass * math.Sqrt(e.Metric(p.phi)) * p.phiDot
}

// MisderivedMomentum is m g(φ) φ̇. It is not conserved along a free geodesic
// and exists only so tests can show that.
func (p Particle) MisderivedMomentum(e geometry.Ellipse) float64 {
	return p.mass * e.Metric(p.phi) * p.phiDot
}

// ArcSpeed is the signed physical speed √g(φ) φ̇.
func (p Particle) ArcSpeed(e geometry.Ellipse) float64 {
	return math.Sqrt(e.Metric(p.phi)) * p.phiDot
}

func (p Particle) CartesianMomentum() r2.Vec {
	return r2.Scale(p.mass, p.vel)
}

// AngularMomentum is m (x vy − y vx) about the centre. Not conserved unless
// the curve is a circle.
func (p Particle) AngularMomentum() float64 {
	return p.mass * r2.Cross(p.pos, p.vel)
}

// IsValid reports whether every field is finite and the mass and radius are
// positive.
func (p Particle) IsValid() bool {
	for _, v := range [...]float64{p.phi, p.phiDot, p.pos.X, p.pos.Y, p.vel.X, p.vel.Y} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return p.mass > 0 && p.radius > 0
}
