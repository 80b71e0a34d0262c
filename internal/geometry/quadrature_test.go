package geometry

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r2"
)

func TestRuleIntegratesPolynomials(t *testing.T) {
	r := NewRule(4)
	// Exact up to degree 2n-1.
	got := r.Integrate(func(x float64) float64 { return x*x*x*x*x*x*x - 3*x*x + 1 }, 0, 2)
	want := 256.0/8 - 8 + 2
	require.InDelta(t, want, got, 1e-12)

	require.InDelta(t, -got, r.Integrate(func(x float64) float64 { return x*x*x*x*x*x*x - 3*x*x + 1 }, 2, 0), 1e-12)
	require.Zero(t, r.Integrate(math.Exp, 1, 1))
}

func TestArcLengthCircle(t *testing.T) {
	e := MustNew(2, 2)
	require.InDelta(t, 2, e.ArcLength(0, 1), 1e-13)
	// Shorter path across the seam.
	require.InDelta(t, 0.4, e.ArcLength(TwoPi-0.1, 0.1), 1e-13)
	require.InDelta(t, e.ArcLength(0.3, 2), e.ArcLength(2, 0.3), 1e-14)
}

func TestPerimeterMatchesQuadrature(t *testing.T) {
	for _, ax := range [][2]float64{{1, 1}, {2, 1}, {5, 0.5}, {1.2, 1}} {
		e := MustNew(ax[0], ax[1], WithQuadratureNodes(64))
		loop := 2 * (e.ArcLength(0, math.Pi/2) + e.ArcLength(math.Pi/2, math.Pi))
		require.InEpsilon(t, e.Perimeter(), loop, 1e-9, "a=%g b=%g", ax[0], ax[1])
	}
}

func TestArcLengthMidpointConverges(t *testing.T) {
	e := MustNew(2, 1)
	exact := e.ArcLength(0.2, 2.1)
	e1 := math.Abs(e.ArcLengthMidpoint(0.2, 2.1, 50) - exact)
	e2 := math.Abs(e.ArcLengthMidpoint(0.2, 2.1, 100) - exact)
	require.Less(t, e2, e1/3.5)
	require.Less(t, e2, 1e-4)
}

func TestChordBelowArc(t *testing.T) {
	e := MustNew(3, 1)
	for i := 0; i < 50; i++ {
		a := TwoPi * float64(i) / 50
		b := a + 0.9
		chord := r2.Norm(r2.Sub(e.Position(a), e.Position(b)))
		require.LessOrEqual(t, chord, e.ArcLength(a, b)+1e-12)
	}
}

func TestParallelTransportIdentity(t *testing.T) {
	e := MustNew(2, 1)
	require.Equal(t, 1.7, e.ParallelTransport(1.7, 0, 0.4))
}

func TestParallelTransportPreservesSpeed(t *testing.T) {
	e := MustNew(2, 1)
	for _, tt := range []struct{ phi, d float64 }{
		{0, 0.5}, {0.3, -1.2}, {2.0, math.Pi}, {5.9, 0.8},
	} {
		w := e.ParallelTransport(1.3, tt.d, tt.phi)
		want := e.TransportByEnergy(1.3, tt.d, tt.phi)
		require.InEpsilon(t, want, w, 1e-12, "phi=%g d=%g", tt.phi, tt.d)
	}
}

func TestParallelTransportRoundTrip(t *testing.T) {
	e := MustNew(4, 1)
	w := e.ParallelTransport(-0.8, 1.1, 0.2)
	back := e.ParallelTransport(w, -1.1, 1.3)
	require.InDelta(t, -0.8, back, 1e-12)
}
