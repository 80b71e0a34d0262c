package config

import (
	"sort"

	"github.com/san-kum/curvesim/internal/collision"
)

var Presets = map[string]*Config{
	"dilute": {
		A: 2, B: 1, N: 10, Mass: 1, Radius: 0.05, MaxSpeed: 1,
		DtMax: 0.01, DtMin: 1e-9, MaxTime: 50, MaxSteps: DefaultMaxSteps, SaveInterval: 0.1,
		CollisionMethod: collision.ParallelTransport, ProjectionInterval: 1000,
		Tolerance: collision.DefaultTolerance, Seed: 1, Integrator: "forest-ruth",
	},
	"dense": {
		A: 2, B: 1, PackingFraction: 0.5, Mass: 1, Radius: 0.05, MaxSpeed: 1,
		DtMax: 0.005, DtMin: 1e-10, MaxTime: 20, MaxSteps: DefaultMaxSteps, SaveInterval: 0.05,
		CollisionMethod: collision.ParallelTransport, UseProjection: true, ProjectionInterval: 1000,
		Tolerance: collision.DefaultTolerance, Seed: 2, Integrator: "forest-ruth",
	},
	"eccentric": {
		A: 5, B: 1, N: 20, Mass: 1, Masses: []float64{1, 2}, Radius: 0.05, MaxSpeed: 1,
		DtMax: 0.005, DtMin: 1e-9, MaxTime: 30, MaxSteps: DefaultMaxSteps, SaveInterval: 0.1,
		CollisionMethod: collision.Geodesic, ProjectionInterval: 1000,
		Tolerance: collision.DefaultTolerance, Seed: 3, Integrator: "forest-ruth",
	},
	"circle": {
		A: 1, B: 1, N: 8, Mass: 1, Radius: 0.05, MaxSpeed: 1, FixedSpeed: true,
		DtMax: 0.01, DtMin: 1e-9, MaxTime: 20, MaxSteps: DefaultMaxSteps, SaveInterval: 0.1,
		CollisionMethod: collision.Simple, ProjectionInterval: 1000,
		Tolerance: collision.DefaultTolerance, Seed: 4, Integrator: "verlet",
	},
	"head_on": {
		A: 2, B: 1, Mass: 1, Radius: 0.1,
		Particles: []ParticleConfig{
			{Phi: 0, PhiDot: 1},
			{Phi: 3.14159265358979, PhiDot: -1},
		},
		DtMax: 0.01, DtMin: 1e-9, MaxTime: 10, MaxSteps: DefaultMaxSteps, SaveInterval: 0.05,
		CollisionMethod: collision.ParallelTransport, ProjectionInterval: 1000,
		Tolerance: collision.DefaultTolerance, Seed: 5, Integrator: "forest-ruth",
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
