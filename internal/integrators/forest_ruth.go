package integrators

import (
	"fmt"
	"math"

	"golang.org/x/exp/constraints"

	"github.com/san-kum/curvesim/internal/geometry"
)

// Coefficients are the drift and kick weights of a four stage symmetric
// splitting. Drift i moves φ by Drift[i]·dt·φ̇, then kick i applies the exact
// curvature flow for Kick[i]·dt.
type Coefficients[T constraints.Float] struct {
	Drift [4]T
	Kick  [4]T
}

// ForestRuthCoefficients evaluates the Forest-Ruth weights in precision T:
//
//	θ = 2^{1/3}
//	drift: 1/(2(2−θ)), (1−θ)/(2(2−θ)), (1−θ)/(2(2−θ)), 1/(2(2−θ))
//	kick:  1/(2−θ), −θ/(2−θ), 1/(2−θ), 0
func ForestRuthCoefficients[T constraints.Float]() Coefficients[T] {
	theta := T(math.Cbrt(2))
	two := T(2)
	outer := 1 / (two * (two - theta))
	inner := (1 - theta) / (two * (two - theta))
	side := 1 / (two - theta)
	mid := -theta / (two - theta)
	return Coefficients[T]{
		Drift: [4]T{outer, inner, inner, outer},
		Kick:  [4]T{side, mid, side, 0},
	}
}

// Epsilon returns the machine epsilon of T.
func Epsilon[T constraints.Float]() T {
	one := T(1)
	eps := T(1)
	for one+eps/2 != one {
		eps /= 2
	}
	return eps
}

// CheckCoefficients verifies that both weight sets sum to one within ten
// machine epsilons and carry the palindromic symmetry that makes the step
// time reversible.
func CheckCoefficients[T constraints.Float](c Coefficients[T]) error {
	tol := 10 * Epsilon[T]()

	var drift, kick T
	for i := range c.Drift {
		drift += c.Drift[i]
		kick += c.Kick[i]
	}
	if d := drift - 1; d > tol || d < -tol {
		return fmt.Errorf("integrators: drift weights sum to %v", drift)
	}
	if d := kick - 1; d > tol || d < -tol {
		return fmt.Errorf("integrators: kick weights sum to %v", kick)
	}
	if c.Drift[0] != c.Drift[3] || c.Drift[1] != c.Drift[2] {
		return fmt.Errorf("integrators: drift weights not symmetric: %v", c.Drift)
	}
	if c.Kick[0] != c.Kick[2] || c.Kick[3] != 0 {
		return fmt.Errorf("integrators: kick weights not symmetric: %v", c.Kick)
	}
	return nil
}

func mustCoefficients[T constraints.Float]() Coefficients[T] {
	c := ForestRuthCoefficients[T]()
	if err := CheckCoefficients(c); err != nil {
		panic(err)
	}
	return c
}

var forestRuth = mustCoefficients[float64]()

// ForestRuth is the fourth order symplectic splitting of the geodesic flow.
// Its local error is O(dt⁵) and a step with −dt exactly undoes a step with dt
// up to rounding.
type ForestRuth struct {
	c Coefficients[float64]
}

func NewForestRuth() ForestRuth {
	return ForestRuth{c: forestRuth}
}

func (ForestRuth) Name() string { return "forest-ruth" }
func (ForestRuth) Order() int   { return 4 }

func (f ForestRuth) Step(e geometry.Ellipse, phi, phiDot, dt float64) (float64, float64) {
	q, p := phi, phiDot
	for i := 0; i < 4; i++ {
		q += f.c.Drift[i] * dt * p
		if f.c.Kick[i] != 0 {
			p = kick(e, q, p, f.c.Kick[i]*dt)
		}
	}
	return geometry.Wrap(q), p
}
