package particle

import (
	"errors"
	"fmt"
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/curvesim/internal/geometry"
)

// DefaultMaxAttempts is the rejection-sampling budget per particle.
const DefaultMaxAttempts = 10000

var ErrPlacement = errors.New("particle: cannot place particles without overlap")

// PlacementError reports how far placement got before the retry budget ran
// out.
type PlacementError struct {
	Placed   int
	Total    int
	Attempts int
}

func (e *PlacementError) Error() string {
	return fmt.Sprintf("%v: placed %d of %d after %d attempts", ErrPlacement, e.Placed, e.Total, e.Attempts)
}

func (e *PlacementError) Unwrap() error {
	return ErrPlacement
}

// Spec describes one particle to be placed.
type Spec struct {
	Mass   float64
	Radius float64
}

type SpeedMode uint8

const (
	// SpeedUniform draws the physical speed uniformly from [-MaxSpeed, MaxSpeed].
	SpeedUniform SpeedMode = iota
	// SpeedFixed gives every particle physical speed MaxSpeed with a random sign.
	SpeedFixed
)

type PlaceOptions struct {
	MaxAttempts int
	MaxSpeed    float64
	Speed       SpeedMode
}

// Overlaps reports whether two particles at phiA and phiB with radii rA and rB
// are closer than rA+rB along the curve. The chord is a lower bound on the
// arc, so it settles most pairs without quadrature.
func Overlaps(e geometry.Ellipse, phiA, rA, phiB, rB float64) bool {
	limit := rA + rB
	if r2.Norm(r2.Sub(e.Position(phiA), e.Position(phiB))) >= limit {
		return false
	}
	return e.ArcLength(phiA, phiB) < limit
}

// Place samples non-overlapping positions for specs, assigning ids in order.
// Each particle gets up to opts.MaxAttempts tries; exhaustion returns a
// *PlacementError.
func Place(rng *rand.Rand, e geometry.Ellipse, specs []Spec, opts PlaceOptions) ([]Particle, error) {
	attempts := opts.MaxAttempts
	if attempts <= 0 {
		attempts = DefaultMaxAttempts
	}

	out := make([]Particle, 0, len(specs))
	total := 0
	for i, s := range specs {
		placed := false
		for try := 0; try < attempts; try++ {
			total++
			phi := geometry.TwoPi * rng.Float64()
			if collides(e, out, phi, s.Radius) {
				continue
			}
			out = append(out, New(e, i, s.Mass, s.Radius, phi, drawPhiDot(rng, e, phi, opts)))
			placed = true
			break
		}
		if !placed {
			return nil, &PlacementError{Placed: len(out), Total: len(specs), Attempts: total}
		}
	}
	return out, nil
}

func collides(e geometry.Ellipse, placed []Particle, phi, radius float64) bool {
	for _, q := range placed {
		if Overlaps(e, phi, radius, q.phi, q.radius) {
			return true
		}
	}
	return false
}

func drawPhiDot(rng *rand.Rand, e geometry.Ellipse, phi float64, opts PlaceOptions) float64 {
	var v float64
	switch opts.Speed {
	case SpeedFixed:
		v = opts.MaxSpeed
		if rng.Float64() < 0.5 {
			v = -v
		}
	default:
		v = opts.MaxSpeed * (2*rng.Float64() - 1)
	}
	return v / math.Sqrt(e.Metric(phi))
}

// CountForPacking returns how many particles of the given radius cover
// fraction of the perimeter.
func CountForPacking(e geometry.Ellipse, radius, fraction float64) int {
	if radius <= 0 || fraction <= 0 {
		return 0
	}
	return int(math.Floor(fraction * e.Perimeter() / (2 * radius)))
}

// Uniform returns n specs with identical mass and radius.
func Uniform(n int, mass, radius float64) []Spec {
	specs := make([]Spec, n)
	for i := range specs {
		specs[i] = Spec{Mass: mass, Radius: radius}
	}
	return specs
}
