package metrics

import (
	"math"
	"testing"

	"github.com/san-kum/curvesim/internal/geometry"
	"github.com/san-kum/curvesim/internal/particle"
)

func fixture() (geometry.Ellipse, []particle.Particle) {
	e := geometry.MustNew(2, 1)
	return e, []particle.Particle{
		particle.New(e, 0, 1, 0.1, 0, 1),
		particle.New(e, 1, 2, 0.1, math.Pi/2, -0.5),
	}
}

func TestTotals(t *testing.T) {
	e, ps := fixture()

	// g(0) = 1, g(π/2) = 4.
	wantE := 0.5*1*1*1 + 0.5*2*4*0.25
	if got := TotalEnergy(e, ps); math.Abs(got-wantE) > 1e-14 {
		t.Errorf("TotalEnergy = %f, want %f", got, wantE)
	}

	wantP := 1*1*1.0 + 2*2*-0.5
	if got := TotalConjugateMomentum(e, ps); math.Abs(got-wantP) > 1e-14 {
		t.Errorf("TotalConjugateMomentum = %f, want %f", got, wantP)
	}
	if got := MomentumScale(e, ps); math.Abs(got-3) > 1e-14 {
		t.Errorf("MomentumScale = %f, want 3", got)
	}

	p := TotalCartesianMomentum(ps)
	// (0, 1) from the first, 2·(−2, 0)·(−0.5) = (2, 0) from the second.
	if math.Abs(p.X-2) > 1e-14 || math.Abs(p.Y-1) > 1e-14 {
		t.Errorf("TotalCartesianMomentum = %v", p)
	}

	// 1·(2·1) + 2·(0·0 − 1·1) cancel.
	if got := TotalAngularMomentum(ps); math.Abs(got) > 1e-14 {
		t.Errorf("TotalAngularMomentum = %f, want 0", got)
	}
}

func TestParticipationRatio(t *testing.T) {
	e := geometry.MustNew(1, 1)
	equal := []particle.Particle{
		particle.New(e, 0, 1, 0.1, 0, 1),
		particle.New(e, 1, 1, 0.1, 1, -1),
	}
	if got := ParticipationRatio(e, equal); math.Abs(got-1) > 1e-14 {
		t.Errorf("equal shares: %f", got)
	}

	one := []particle.Particle{
		particle.New(e, 0, 1, 0.1, 0, 1),
		particle.New(e, 1, 1, 0.1, 1, 0),
	}
	if got := ParticipationRatio(e, one); math.Abs(got-0.5) > 1e-14 {
		t.Errorf("single carrier: %f", got)
	}
	if got := ParticipationRatio(e, nil); got != 0 {
		t.Errorf("empty: %f", got)
	}
}

func TestEnergyDrift(t *testing.T) {
	e, ps := fixture()
	m := NewEnergyDrift()

	m.Observe(e, ps, 0)
	if m.Value() != 0 {
		t.Errorf("drift after one sample: %f", m.Value())
	}

	scaled := []particle.Particle{
		particle.Update(e, ps[0], ps[0].Phi(), 1.1*ps[0].PhiDot()),
		particle.Update(e, ps[1], ps[1].Phi(), 1.1*ps[1].PhiDot()),
	}
	m.Observe(e, scaled, 1)
	m.Observe(e, ps, 2)
	if math.Abs(m.Value()-0.21) > 1e-12 {
		t.Errorf("expected drift 0.21, got %f", m.Value())
	}

	m.Reset()
	if m.Value() != 0 {
		t.Error("expected zero drift after reset")
	}
}

func TestMomentumDrift(t *testing.T) {
	e, ps := fixture()
	m := NewMomentumDrift()
	m.Observe(e, ps, 0)

	flipped := []particle.Particle{ps[0], particle.Update(e, ps[1], ps[1].Phi(), 0.5)}
	m.Observe(e, flipped, 1)
	// Σm√gφ̇ moves from −1 to 3 against a scale of 3.
	if math.Abs(m.Value()-4.0/3) > 1e-12 {
		t.Errorf("expected drift 4/3, got %f", m.Value())
	}
}

func TestEnergyMean(t *testing.T) {
	e, ps := fixture()
	m := NewEnergy()
	if m.Value() != 0 {
		t.Error("expected zero before samples")
	}
	m.Observe(e, ps, 0)
	m.Observe(e, ps, 1)
	if math.Abs(m.Value()-TotalEnergy(e, ps)) > 1e-14 {
		t.Errorf("mean energy %f", m.Value())
	}
	m.Reset()
	if m.Value() != 0 {
		t.Error("expected zero energy after reset")
	}
}

func TestLocalization(t *testing.T) {
	e := geometry.MustNew(1, 1)
	l := NewLocalization()
	if l.Value() != 1 {
		t.Errorf("empty localization %f", l.Value())
	}
	l.Observe(e, []particle.Particle{
		particle.New(e, 0, 1, 0.1, 0, 1),
		particle.New(e, 1, 1, 0.1, 1, 1),
	}, 0)
	l.Observe(e, []particle.Particle{
		particle.New(e, 0, 1, 0.1, 0, 1),
		particle.New(e, 1, 1, 0.1, 1, 0),
	}, 1)
	if math.Abs(l.Value()-0.5) > 1e-14 {
		t.Errorf("localization %f, want 0.5", l.Value())
	}
}
