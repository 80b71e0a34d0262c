package metrics

import (
	"github.com/san-kum/curvesim/internal/geometry"
	"github.com/san-kum/curvesim/internal/particle"
)

// Localization is the smallest participation ratio seen. Values well below
// one mean a few particles have collected most of the energy.
type Localization struct {
	name    string
	min     float64
	samples int
}

func NewLocalization() *Localization {
	return &Localization{name: "localization"}
}

func (l *Localization) Name() string {
	return l.name
}

func (l *Localization) Observe(e geometry.Ellipse, ps []particle.Particle, t float64) {
	pr := ParticipationRatio(e, ps)
	if l.samples == 0 || pr < l.min {
		l.min = pr
	}
	l.samples++
}

func (l *Localization) Value() float64 {
	if l.samples == 0 {
		return 1.0
	}
	return l.min
}

func (l *Localization) Reset() {
	l.min = 0
	l.samples = 0
}
