// Package metrics computes conserved totals and run diagnostics over a
// generation of particles.
package metrics

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/curvesim/internal/geometry"
	"github.com/san-kum/curvesim/internal/particle"
)

// Energies returns ½ m g φ̇² per particle.
func Energies(e geometry.Ellipse, ps []particle.Particle) []float64 {
	out := make([]float64, len(ps))
	for i, p := range ps {
		out[i] = p.KineticEnergy(e)
	}
	return out
}

func TotalEnergy(e geometry.Ellipse, ps []particle.Particle) float64 {
	return floats.Sum(Energies(e, ps))
}

// TotalConjugateMomentum is Σ m √g φ̇. It changes only through collisions that
// fail to conserve it.
func TotalConjugateMomentum(e geometry.Ellipse, ps []particle.Particle) float64 {
	sum := 0.0
	for _, p := range ps {
		sum += p.ConjugateMomentum(e)
	}
	return sum
}

// MomentumScale is Σ m |√g φ̇|, the reference for relative momentum errors
// when the signed total is near zero.
func MomentumScale(e geometry.Ellipse, ps []particle.Particle) float64 {
	sum := 0.0
	for _, p := range ps {
		sum += p.Mass() * math.Abs(p.ArcSpeed(e))
	}
	return sum
}

func TotalCartesianMomentum(ps []particle.Particle) r2.Vec {
	var sum r2.Vec
	for _, p := range ps {
		sum = r2.Add(sum, p.CartesianMomentum())
	}
	return sum
}

func TotalAngularMomentum(ps []particle.Particle) float64 {
	sum := 0.0
	for _, p := range ps {
		sum += p.AngularMomentum()
	}
	return sum
}

// ParticipationRatio is (ΣEᵢ)² / (N ΣEᵢ²): 1 when energy is shared equally,
// 1/N when a single particle holds all of it.
func ParticipationRatio(e geometry.Ellipse, ps []particle.Particle) float64 {
	en := Energies(e, ps)
	sq := floats.Dot(en, en)
	if sq == 0 {
		return 0
	}
	total := floats.Sum(en)
	return total * total / (float64(len(en)) * sq)
}
