package dynamo

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Summary condenses a trajectory for reports.
type Summary struct {
	Steps       int
	FinalTime   float64
	Collisions  int
	Violations  int
	Stalls      int
	Projections int

	// Drifts are the largest relative deviations from the first save.
	EnergyDrift   float64
	MomentumDrift float64

	MeanEnergyError   float64
	StdEnergyError    float64
	MaxEnergyError    float64
	MeanMomentumError float64
	StdMomentumError  float64
	MaxMomentumError  float64
}

func (t *Trajectory) Summary() Summary {
	s := Summary{
		Steps:       t.Steps,
		FinalTime:   t.Final.Time,
		Collisions:  len(t.Events),
		Violations:  len(t.Violations),
		Stalls:      t.Stalls,
		Projections: t.Projections,
	}

	rec := t.Conservation
	if rec.Len() > 0 {
		e0, p0 := rec.Energy[0], rec.Momentum[0]
		for i := 1; i < rec.Len(); i++ {
			if e0 != 0 {
				s.EnergyDrift = math.Max(s.EnergyDrift, math.Abs(rec.Energy[i]-e0)/math.Abs(e0))
			}
			if t.MomentumScale != 0 {
				s.MomentumDrift = math.Max(s.MomentumDrift, math.Abs(rec.Momentum[i]-p0)/t.MomentumScale)
			}
		}
	}

	if len(t.Events) == 0 {
		return s
	}
	ee := make([]float64, len(t.Events))
	me := make([]float64, len(t.Events))
	for i, ev := range t.Events {
		ee[i] = ev.EnergyError
		me[i] = ev.MomentumError
	}
	s.MeanEnergyError, s.StdEnergyError = meanStd(ee)
	s.MeanMomentumError, s.StdMomentumError = meanStd(me)
	s.MaxEnergyError = floats.Max(ee)
	s.MaxMomentumError = floats.Max(me)
	return s
}

func meanStd(x []float64) (float64, float64) {
	if len(x) < 2 {
		return x[0], 0
	}
	return stat.MeanStdDev(x, nil)
}
