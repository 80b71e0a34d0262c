package geometry

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/mathext"
	"gonum.org/v1/gonum/spatial/r2"
)

const (
	TwoPi = 2 * math.Pi

	// DefaultQuadratureNodes is the Gauss-Legendre order used for arc length
	// and transport integrals.
	DefaultQuadratureNodes = 32

	// DefaultDerivativeStep is the central-difference step of ChristoffelNumeric.
	DefaultDerivativeStep = 1e-5
)

// ErrSemiAxes is returned by New for axes violating A >= B > 0.
var ErrSemiAxes = errors.New("geometry: semi-axes must satisfy a >= b > 0")

type Ellipse struct {
	A, B float64
	rule *Rule
}

type Option func(*options)

type options struct {
	nodes int
}

// WithQuadratureNodes sets the Gauss-Legendre order for ArcLength and
// ParallelTransport.
func WithQuadratureNodes(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.nodes = n
		}
	}
}

func New(a, b float64, opts ...Option) (Ellipse, error) {
	if !(b > 0) || a < b || math.IsInf(a, 0) {
		return Ellipse{}, fmt.Errorf("%w: got a=%g b=%g", ErrSemiAxes, a, b)
	}
	o := options{nodes: DefaultQuadratureNodes}
	for _, opt := range opts {
		opt(&o)
	}
	return Ellipse{A: a, B: b, rule: NewRule(o.nodes)}, nil
}

// MustNew is New for parameters known to be valid, such as test fixtures.
func MustNew(a, b float64, opts ...Option) Ellipse {
	e, err := New(a, b, opts...)
	if err != nil {
		panic(err)
	}
	return e
}

func (e Ellipse) IsCircle() bool { return e.A == e.B }

// Eccentricity returns sqrt(1 - B²/A²).
func (e Ellipse) Eccentricity() float64 {
	return math.Sqrt(1 - (e.B*e.B)/(e.A*e.A))
}

func (e Ellipse) Metric(phi float64) float64 {
	s, c := math.Sincos(phi)
	return e.A*e.A*s*s + e.B*e.B*c*c
}

// Christoffel returns the connection coefficient Γ = g'/(2g) of the induced
// metric, so that a free particle obeys φ̈ = −Γ(φ) φ̇².
func (e Ellipse) Christoffel(phi float64) float64 {
	s, c := math.Sincos(phi)
	return (e.A*e.A - e.B*e.B) * s * c / e.Metric(phi)
}

// ChristoffelNumeric computes Γ from a central difference of the metric with
// step h (DefaultDerivativeStep when h <= 0). It agrees with Christoffel to
// O(h²) and does not depend on the closed form, so it carries over to other
// curves.
func (e Ellipse) ChristoffelNumeric(phi, h float64) float64 {
	if h <= 0 {
		h = DefaultDerivativeStep
	}
	dg := fd.Derivative(e.Metric, phi, &fd.Settings{
		Formula: fd.Central,
		Step:    h,
	})
	return dg / (2 * e.Metric(phi))
}

func (e Ellipse) Curvature(phi float64) float64 {
	g := e.Metric(phi)
	return e.A * e.B / (g * math.Sqrt(g))
}

// Position is the Cartesian embedding γ(φ).
func (e Ellipse) Position(phi float64) r2.Vec {
	s, c := math.Sincos(phi)
	return r2.Vec{X: e.A * c, Y: e.B * s}
}

// Tangent is dγ/dφ. Its squared norm is Metric(phi).
func (e Ellipse) Tangent(phi float64) r2.Vec {
	s, c := math.Sincos(phi)
	return r2.Vec{X: -e.A * s, Y: e.B * c}
}

func (e Ellipse) VelocityFromAngular(phi, phiDot float64) r2.Vec {
	return r2.Scale(phiDot, e.Tangent(phi))
}

func (e Ellipse) UnitTangent(phi float64) r2.Vec {
	t := e.Tangent(phi)
	return r2.Scale(1/r2.Norm(t), t)
}

// UnitNormal is the inward principal normal N, with dT/ds = κN.
func (e Ellipse) UnitNormal(phi float64) r2.Vec {
	t := e.UnitTangent(phi)
	return r2.Vec{X: -t.Y, Y: t.X}
}

// Perimeter is the exact length of the closed curve, 4A·E(1 − B²/A²).
func (e Ellipse) Perimeter() float64 {
	if e.IsCircle() {
		return TwoPi * e.A
	}
	m := 1 - (e.B*e.B)/(e.A*e.A)
	return 4 * e.A * mathext.CompleteE(m)
}

// MaxSpeedFactor bounds √g(φ) over the whole curve.
func (e Ellipse) MaxSpeedFactor() float64 { return e.A }

// Wrap reduces phi to [0, 2π).
func Wrap(phi float64) float64 {
	phi = math.Mod(phi, TwoPi)
	if phi < 0 {
		phi += TwoPi
	}
	if phi >= TwoPi {
		phi = 0
	}
	return phi
}

// ShortestDelta returns the signed angle in (−π, π] that carries from onto to
// along the shorter way round.
func ShortestDelta(from, to float64) float64 {
	d := Wrap(to - from)
	if d > math.Pi {
		d -= TwoPi
	}
	return d
}
