package metrics

import (
	"math"

	"github.com/san-kum/curvesim/internal/geometry"
	"github.com/san-kum/curvesim/internal/particle"
)

// Energy is the mean total kinetic energy over the observed samples.
type Energy struct {
	name        string
	samples     int
	totalEnergy float64
}

func NewEnergy() *Energy {
	return &Energy{name: "energy"}
}

func (m *Energy) Name() string { return m.name }

func (m *Energy) Observe(e geometry.Ellipse, ps []particle.Particle, t float64) {
	m.totalEnergy += TotalEnergy(e, ps)
	m.samples++
}

func (m *Energy) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return m.totalEnergy / float64(m.samples)
}

func (m *Energy) Reset() {
	m.totalEnergy = 0
	m.samples = 0
}

// EnergyDrift is the largest relative deviation of total energy from the first
// sample.
type EnergyDrift struct {
	name          string
	initialEnergy float64
	currentEnergy float64
	maxDrift      float64
	samples       int
}

func NewEnergyDrift() *EnergyDrift {
	return &EnergyDrift{name: "energy_drift"}
}

func (m *EnergyDrift) Name() string { return m.name }

func (m *EnergyDrift) Observe(e geometry.Ellipse, ps []particle.Particle, t float64) {
	energy := TotalEnergy(e, ps)

	if m.samples == 0 {
		m.initialEnergy = energy
	}

	m.currentEnergy = energy
	m.samples++

	if m.initialEnergy != 0 {
		drift := math.Abs(energy-m.initialEnergy) / math.Abs(m.initialEnergy)
		m.maxDrift = math.Max(m.maxDrift, drift)
	}
}

func (m *EnergyDrift) Value() float64 {
	return m.maxDrift
}

func (m *EnergyDrift) Reset() {
	m.initialEnergy = 0
	m.currentEnergy = 0
	m.maxDrift = 0
	m.samples = 0
}

// MomentumDrift is the largest deviation of total conjugate momentum from the
// first sample, relative to the initial momentum scale Σ m|√g φ̇|.
type MomentumDrift struct {
	name     string
	initial  float64
	scale    float64
	maxDrift float64
	samples  int
}

func NewMomentumDrift() *MomentumDrift {
	return &MomentumDrift{name: "momentum_drift"}
}

func (m *MomentumDrift) Name() string { return m.name }

func (m *MomentumDrift) Observe(e geometry.Ellipse, ps []particle.Particle, t float64) {
	total := TotalConjugateMomentum(e, ps)
	if m.samples == 0 {
		m.initial = total
		m.scale = MomentumScale(e, ps)
	}
	m.samples++

	if m.scale != 0 {
		m.maxDrift = math.Max(m.maxDrift, math.Abs(total-m.initial)/m.scale)
	}
}

func (m *MomentumDrift) Value() float64 {
	return m.maxDrift
}

func (m *MomentumDrift) Reset() {
	m.initial = 0
	m.scale = 0
	m.maxDrift = 0
	m.samples = 0
}
