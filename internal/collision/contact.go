// Package collision detects and resolves contacts between particles on the
// ellipse.
//
// Distances are intrinsic: the arc length along the shorter path between two
// curve points. The Cartesian chord is only used to discard pairs early, since
// chord ≤ arc always holds and near the vertices of an eccentric ellipse the
// two differ by tens of percent.
package collision

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/curvesim/internal/geometry"
	"github.com/san-kum/curvesim/internal/integrators"
	"github.com/san-kum/curvesim/internal/particle"
)

const (
	// reachMargin pads the Cartesian reach bound.
	reachMargin = 1.01

	maxBisections   = 64
	maxBracketSteps = 16
)

// Pair indexes two particles of a generation, I < J.
type Pair struct {
	I, J int
}

func Separation(e geometry.Ellipse, p, q particle.Particle) float64 {
	return e.ArcLength(p.Phi(), q.Phi())
}

// EuclideanSeparation is the chord between the two centres. It never exceeds
// Separation.
func EuclideanSeparation(p, q particle.Particle) float64 {
	return r2.Norm(r2.Sub(p.Position(), q.Position()))
}

func InContact(e geometry.Ellipse, p, q particle.Particle) bool {
	limit := p.Radius() + q.Radius()
	if EuclideanSeparation(p, q) > limit {
		return false
	}
	return Separation(e, p, q) <= limit
}

// closingSpeed is the rate at which the shorter gap between p and q shrinks.
// Arc speeds are constant along free geodesics, so this is exact between
// collisions.
func closingSpeed(e geometry.Ellipse, p, q particle.Particle) float64 {
	d := geometry.ShortestDelta(p.Phi(), q.Phi())
	rel := q.ArcSpeed(e) - p.ArcSpeed(e)
	switch {
	case d > 0:
		return -rel
	case d < 0:
		return rel
	}
	return 0
}

// Approaching reports whether p and q are closing along the shorter path.
// Coincident particles are never approaching.
func Approaching(e geometry.Ellipse, p, q particle.Particle) bool {
	return closingSpeed(e, p, q) > 0
}

// PenetrationTime estimates how long ago a contacting, approaching pair first
// touched: overlap depth over closing speed, capped at limit.
func PenetrationTime(e geometry.Ellipse, p, q particle.Particle, limit float64) float64 {
	c := closingSpeed(e, p, q)
	if c <= 0 {
		return 0
	}
	depth := p.Radius() + q.Radius() - Separation(e, p, q)
	if depth <= 0 {
		return 0
	}
	return math.Min(depth/c, limit)
}

// CandidatePairs returns the pairs that can meet next. On a closed curve hard
// spheres keep their cyclic order, so only angular neighbours (including the
// pair across φ = 0) can touch. exhaustive returns every pair instead.
func CandidatePairs(ps []particle.Particle, exhaustive bool) []Pair {
	n := len(ps)
	if n < 2 {
		return nil
	}
	if exhaustive {
		pairs := make([]Pair, 0, n*(n-1)/2)
		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				pairs = append(pairs, Pair{I: i, J: j})
			}
		}
		return pairs
	}

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return ps[order[a]].Phi() < ps[order[b]].Phi()
	})

	pairs := make([]Pair, 0, n)
	for k := 0; k+1 < n; k++ {
		pairs = append(pairs, makePair(order[k], order[k+1]))
	}
	if n > 2 {
		pairs = append(pairs, makePair(order[n-1], order[0]))
	}
	return pairs
}

func makePair(a, b int) Pair {
	if a > b {
		a, b = b, a
	}
	return Pair{I: a, J: b}
}

// TimeToCollision returns the smallest dt in (0, ceiling] after which p and q
// are in contact, or +Inf if they do not touch within ceiling. A pair already
// touching and approaching returns 0.
//
// The estimate comes from the constant arc speeds of free motion and is then
// refined by bisection on the trajectories produced by stepper, so advancing
// both particles by the returned dt with the same stepper leaves them in
// contact. A nil stepper uses the linearised trajectories φ + φ̇t.
func TimeToCollision(e geometry.Ellipse, p, q particle.Particle, ceiling float64, stepper integrators.Stepper) float64 {
	limit := p.Radius() + q.Radius()
	sp, sq := math.Abs(p.ArcSpeed(e)), math.Abs(q.ArcSpeed(e))
	reach := reachMargin * (sp + sq) * ceiling
	if EuclideanSeparation(p, q)-limit > reach {
		return math.Inf(1)
	}

	sep := Separation(e, p, q)
	if sep <= limit {
		if Approaching(e, p, q) {
			return 0
		}
		return math.Inf(1)
	}
	if sep-limit > reach || ceiling <= 0 {
		return math.Inf(1)
	}

	// One of the two gaps is always closing unless the arc speeds match. For
	// more than two particles the long gap holds other particles, whose own
	// pairs meet first.
	c := closingSpeed(e, p, q)
	var est float64
	switch {
	case c > 0:
		est = (sep - limit) / c
	case c < 0:
		est = (e.Perimeter() - sep - limit) / -c
	default:
		return math.Inf(1)
	}
	if est > reachMargin*ceiling {
		return math.Inf(1)
	}
	est = math.Min(est, ceiling)

	gap := func(t float64) float64 {
		pt, qt := advance(e, p, t, stepper), advance(e, q, t, stepper)
		return Separation(e, pt, qt) - limit
	}

	lo, hi := 0.0, est
	g := gap(hi)
	if g > 0 {
		// Stepper error left the pair just short of contact; walk forward.
		lo = hi
		step := math.Max(2*g/math.Abs(c), 1e-12*ceiling)
		found := false
		for i := 0; i < maxBracketSteps && lo < ceiling; i++ {
			hi = math.Min(lo+step, ceiling)
			if gap(hi) <= 0 {
				found = true
				break
			}
			lo = hi
			step *= 2
		}
		if !found {
			return math.Inf(1)
		}
	} else {
		probe := hi * (1 - 1e-6)
		if probe > 0 && gap(probe) > 0 {
			lo = probe
		}
	}

	for i := 0; i < maxBisections; i++ {
		mid := lo + 0.5*(hi-lo)
		if mid <= lo || mid >= hi {
			break
		}
		if gap(mid) <= 0 {
			hi = mid
		} else {
			lo = mid
		}
	}
	return hi
}

func advance(e geometry.Ellipse, p particle.Particle, t float64, stepper integrators.Stepper) particle.Particle {
	if stepper == nil {
		return particle.Update(e, p, p.Phi()+p.PhiDot()*t, p.PhiDot())
	}
	return integrators.AdvanceParticle(stepper, e, p, t)
}
