package particle

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"

	"github.com/san-kum/curvesim/internal/geometry"
)

func TestDualRepresentationAgrees(t *testing.T) {
	e := geometry.MustNew(2, 1)
	tests := []struct {
		name        string
		phi, phiDot float64
	}{
		{"vertex", 0, 1},
		{"co-vertex", math.Pi / 2, -2},
		{"generic", 1.234, 0.77},
		{"wrapped", -0.3, 3},
		{"at rest", 4.2, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := New(e, 0, 1.5, 0.1, tt.phi, tt.phiDot)
			require.InDelta(t, p.KineticEnergy(e), p.KineticEnergyCartesian(), 1e-13)
			require.InDelta(t, 0, geometry.ShortestDelta(p.Phi(), tt.phi), 1e-15)
			require.GreaterOrEqual(t, p.Phi(), 0.0)
			require.Less(t, p.Phi(), geometry.TwoPi)
			require.Equal(t, e.Position(p.Phi()), p.Position())
		})
	}
}

func TestUpdateReturnsNewValue(t *testing.T) {
	e := geometry.MustNew(3, 2)
	p := New(e, 7, 2, 0.2, 1, 1)
	q := Update(e, p, 2, -1)

	require.Equal(t, 1.0, p.Phi())
	require.Equal(t, 1.0, p.PhiDot())
	require.Equal(t, 2.0, q.Phi())
	require.Equal(t, -1.0, q.PhiDot())
	require.Equal(t, 7, q.ID())
	require.Equal(t, 2.0, q.Mass())
	require.Equal(t, 0.2, q.Radius())
	require.Equal(t, e.VelocityFromAngular(2, -1), q.Velocity())
}

func TestMomentumForms(t *testing.T) {
	e := geometry.MustNew(2, 1)
	p := New(e, 0, 2, 0.1, math.Pi/2, 0.5)
	// g = 4 at the co-vertex.
	require.InDelta(t, 2*2*0.5, p.ConjugateMomentum(e), 1e-14)
	require.InDelta(t, 2*4*0.5, p.MisderivedMomentum(e), 1e-14)
	require.InDelta(t, 1.0, p.ArcSpeed(e), 1e-14)
	require.InDelta(t, math.Abs(p.ConjugateMomentum(e)), math.Hypot(p.CartesianMomentum().X, p.CartesianMomentum().Y), 1e-14)
}

func TestAngularMomentumCircle(t *testing.T) {
	e := geometry.MustNew(2, 2)
	p := New(e, 0, 3, 0.1, 0.9, 0.5)
	// m r² φ̇
	require.InDelta(t, 3*4*0.5, p.AngularMomentum(), 1e-13)
}

func TestIsValid(t *testing.T) {
	e := geometry.MustNew(2, 1)
	require.True(t, New(e, 0, 1, 0.1, 0, 1).IsValid())
	require.False(t, New(e, 0, 1, 0.1, 0, math.NaN()).IsValid())
	require.False(t, New(e, 0, 1, 0.1, 0, math.Inf(-1)).IsValid())
	require.False(t, New(e, 0, 0, 0.1, 0, 1).IsValid())
}

func TestPlaceNoOverlap(t *testing.T) {
	e := geometry.MustNew(2, 1)
	rng := rand.New(rand.NewSource(42))
	n := CountForPacking(e, 0.05, 0.4)
	require.Greater(t, n, 10)

	ps, err := Place(rng, e, Uniform(n, 1, 0.05), PlaceOptions{MaxSpeed: 1})
	require.NoError(t, err)
	require.Len(t, ps, n)

	for i := range ps {
		require.Equal(t, i, ps[i].ID())
		require.LessOrEqual(t, math.Abs(ps[i].ArcSpeed(e)), 1.0+1e-12)
		for j := i + 1; j < len(ps); j++ {
			sep := e.ArcLength(ps[i].Phi(), ps[j].Phi())
			require.GreaterOrEqual(t, sep, ps[i].Radius()+ps[j].Radius(), "pair %d-%d", i, j)
		}
	}
}

func TestPlaceReproducible(t *testing.T) {
	e := geometry.MustNew(2, 1)
	specs := Uniform(20, 1, 0.05)
	a, err := Place(rand.New(rand.NewSource(7)), e, specs, PlaceOptions{MaxSpeed: 1})
	require.NoError(t, err)
	b, err := Place(rand.New(rand.NewSource(7)), e, specs, PlaceOptions{MaxSpeed: 1})
	require.NoError(t, err)
	require.Equal(t, a, b)
}

func TestPlaceFixedSpeed(t *testing.T) {
	e := geometry.MustNew(3, 1)
	ps, err := Place(rand.New(rand.NewSource(3)), e, Uniform(10, 1, 0.05), PlaceOptions{MaxSpeed: 0.5, Speed: SpeedFixed})
	require.NoError(t, err)
	for _, p := range ps {
		require.InDelta(t, 0.5, math.Abs(p.ArcSpeed(e)), 1e-14)
	}
}

func TestPlaceExhaustion(t *testing.T) {
	e := geometry.MustNew(1, 1)
	// Twice the perimeter worth of particles.
	specs := Uniform(CountForPacking(e, 0.1, 2.0), 1, 0.1)
	_, err := Place(rand.New(rand.NewSource(1)), e, specs, PlaceOptions{MaxAttempts: 50})
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrPlacement))

	var perr *PlacementError
	require.True(t, errors.As(err, &perr))
	require.Less(t, perr.Placed, perr.Total)
}

func TestCountForPacking(t *testing.T) {
	e := geometry.MustNew(1, 1)
	// Perimeter 2π, diameter 0.2.
	require.Equal(t, int(math.Floor(0.5*geometry.TwoPi/0.2)), CountForPacking(e, 0.1, 0.5))
	require.Zero(t, CountForPacking(e, 0, 0.5))
}
