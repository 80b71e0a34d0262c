package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/curvesim/internal/dynamo"
	"github.com/san-kum/curvesim/internal/integrators"
	"github.com/san-kum/curvesim/internal/metrics"
)

type Registry struct {
	steppers map[string]func() integrators.Stepper
}

func NewRegistry() *Registry {
	r := &Registry{
		steppers: make(map[string]func() integrators.Stepper),
	}

	r.steppers["forest-ruth"] = func() integrators.Stepper { return integrators.NewForestRuth() }
	r.steppers["verlet"] = func() integrators.Stepper { return integrators.NewVerlet() }
	r.steppers["leapfrog"] = func() integrators.Stepper { return integrators.NewLeapfrog() }
	r.steppers["rk4"] = func() integrators.Stepper { return integrators.NewRK4() }
	r.steppers["rk45"] = func() integrators.Stepper { return integrators.NewRK45() }
	r.steppers["euler"] = func() integrators.Stepper { return integrators.NewEuler() }

	return r
}

// Register adds or replaces a stepper factory.
func (r *Registry) Register(name string, fn func() integrators.Stepper) {
	r.steppers[name] = fn
}

func (r *Registry) GetStepper(name string) (integrators.Stepper, error) {
	fn, ok := r.steppers[name]
	if !ok {
		return nil, fmt.Errorf("unknown integrator: %s", name)
	}
	return fn(), nil
}

func (r *Registry) ListSteppers() []string {
	names := make([]string, 0, len(r.steppers))
	for name := range r.steppers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) DefaultMetrics() []dynamo.Metric {
	return []dynamo.Metric{
		metrics.NewEnergy(),
		metrics.NewEnergyDrift(),
		metrics.NewMomentumDrift(),
		metrics.NewLocalization(),
	}
}
