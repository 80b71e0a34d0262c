package experiment

import (
	"context"
	"time"

	"github.com/san-kum/curvesim/internal/config"
	"github.com/san-kum/curvesim/internal/dynamo"
)

// Comparison is one integrator's outcome on a shared configuration.
type Comparison struct {
	Integrator string
	Summary    dynamo.Summary
	Elapsed    time.Duration
	Err        error
}

// Compare runs cfg once per integrator. The seed is shared, so every run
// starts from the same placement. A failing integrator records its error
// and the remaining ones still run; only cancellation stops early.
func Compare(ctx context.Context, cfg *config.Config, names []string, reg *Registry, opts ...Option) []Comparison {
	out := make([]Comparison, 0, len(names))
	for _, name := range names {
		if ctx.Err() != nil {
			break
		}
		c := Comparison{Integrator: name}

		run := cfg.Clone()
		run.Integrator = name
		x, err := New(run, opts...)
		if err == nil {
			err = x.Setup(reg)
		}
		if err != nil {
			c.Err = err
			out = append(out, c)
			continue
		}

		start := time.Now()
		traj, err := x.Run(ctx)
		c.Elapsed = time.Since(start)
		c.Err = err
		if traj != nil {
			c.Summary = traj.Summary()
		}
		out = append(out, c)
	}
	return out
}
