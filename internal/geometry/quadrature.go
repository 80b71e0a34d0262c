package geometry

import (
	"math"

	"gonum.org/v1/gonum/integrate/quad"
)

// Rule is a Gauss-Legendre rule on [-1, 1], computed once and reused for
// every interval.
type Rule struct {
	nodes   []float64
	weights []float64
}

func NewRule(n int) *Rule {
	if n < 1 {
		n = 1
	}
	r := &Rule{
		nodes:   make([]float64, n),
		weights: make([]float64, n),
	}
	quad.Legendre{}.FixedLocations(r.nodes, r.weights, -1, 1)
	return r
}

func (r *Rule) Len() int { return len(r.nodes) }

// Integrate returns the signed integral of f from lo to hi.
func (r *Rule) Integrate(f func(float64) float64, lo, hi float64) float64 {
	if lo == hi {
		return 0
	}
	half := 0.5 * (hi - lo)
	mid := 0.5 * (hi + lo)
	sum := 0.0
	for i, x := range r.nodes {
		sum += r.weights[i] * f(mid+half*x)
	}
	return sum * half
}

func (e Ellipse) quadrature() *Rule {
	if e.rule == nil {
		return NewRule(DefaultQuadratureNodes)
	}
	return e.rule
}

func (e Ellipse) speed(phi float64) float64 {
	return math.Sqrt(e.Metric(phi))
}

// ArcLength is the intrinsic distance between two curve points, measured
// along the shorter of the two periodic paths.
func (e Ellipse) ArcLength(phi1, phi2 float64) float64 {
	d := ShortestDelta(phi1, phi2)
	if d == 0 {
		return 0
	}
	return math.Abs(e.quadrature().Integrate(e.speed, phi1, phi1+d))
}

// ArcLengthMidpoint is ArcLength by the composite midpoint rule with n panels.
// It converges as O(n⁻²) and is kept as a cheap reference.
func (e Ellipse) ArcLengthMidpoint(phi1, phi2 float64, n int) float64 {
	if n < 1 {
		n = 1
	}
	d := ShortestDelta(phi1, phi2)
	h := d / float64(n)
	sum := 0.0
	for i := 0; i < n; i++ {
		sum += e.speed(phi1 + (float64(i)+0.5)*h)
	}
	return math.Abs(sum * h)
}

// ParallelTransport carries the angular velocity phiDot from phi to
// phi+dPhi, integrating dφ̇/dφ = −Γ φ̇ along the way. The physical speed
// √g·φ̇ is preserved; at dPhi = 0 it is the identity.
func (e Ellipse) ParallelTransport(phiDot, dPhi, phi float64) float64 {
	if dPhi == 0 || phiDot == 0 {
		return phiDot
	}
	integral := e.quadrature().Integrate(e.Christoffel, phi, phi+dPhi)
	return phiDot * math.Exp(-integral)
}

// TransportByEnergy re-derives the transported angular velocity from the local
// kinetic energy, φ̇·√(g(φ)/g(φ+Δφ)).
func (e Ellipse) TransportByEnergy(phiDot, dPhi, phi float64) float64 {
	return phiDot * math.Sqrt(e.Metric(phi)/e.Metric(phi+dPhi))
}
