package experiment

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/san-kum/curvesim/internal/config"
	"github.com/san-kum/curvesim/internal/particle"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

func TestRegistry(t *testing.T) {
	r := NewRegistry()

	for _, name := range r.ListSteppers() {
		s, err := r.GetStepper(name)
		require.NoError(t, err)
		require.Equal(t, name, s.Name())
	}
	require.Equal(t, []string{"euler", "forest-ruth", "leapfrog", "rk4", "rk45", "verlet"}, r.ListSteppers())

	_, err := r.GetStepper("midpoint")
	require.Error(t, err)
	require.Len(t, r.DefaultMetrics(), 4)
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.B = 5
	_, err := New(cfg)
	require.ErrorIs(t, err, config.ErrInvalid)
}

func TestSetupUnknownIntegrator(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Integrator = "midpoint"
	x, err := New(cfg, WithLogger(quiet))
	require.NoError(t, err)
	require.Error(t, x.Setup(NewRegistry()))
}

func TestSetupExplicitParticles(t *testing.T) {
	cfg := config.GetPreset("head_on")
	x, err := New(cfg, WithLogger(quiet))
	require.NoError(t, err)
	require.NoError(t, x.Setup(NewRegistry()))

	ps := x.Particles()
	require.Len(t, ps, 2)
	require.Equal(t, 0, ps[0].ID())
	require.Equal(t, 1.0, ps[0].PhiDot())
	require.Equal(t, -1.0, ps[1].PhiDot())
}

func TestSetupExplicitOverlap(t *testing.T) {
	cfg := config.GetPreset("head_on")
	cfg.Particles[1].Phi = 0.05
	x, err := New(cfg, WithLogger(quiet))
	require.NoError(t, err)
	require.ErrorIs(t, x.Setup(NewRegistry()), particle.ErrPlacement)
}

func TestPlacementIsSeeded(t *testing.T) {
	place := func(seed uint64) []particle.Particle {
		cfg := config.GetPreset("dilute")
		cfg.Seed = seed
		x, err := New(cfg, WithLogger(quiet))
		require.NoError(t, err)
		require.NoError(t, x.Setup(NewRegistry()))
		return x.Particles()
	}

	a, b := place(7), place(7)
	require.Equal(t, a, b)

	c := place(8)
	require.NotEqual(t, a[0].Phi(), c[0].Phi())
}

func TestRun(t *testing.T) {
	cfg := config.GetPreset("head_on")
	cfg.MaxTime = 5
	x, err := New(cfg, WithLogger(quiet))
	require.NoError(t, err)

	_, err = x.Run(context.Background())
	require.Error(t, err, "run before setup")

	require.NoError(t, x.Setup(NewRegistry()))
	traj, err := x.Run(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, traj.Events)
	require.Empty(t, traj.Violations)
	require.Contains(t, traj.Metrics, "energy_drift")
	require.Less(t, traj.Metrics["energy_drift"], 1e-6)
}

func TestCompare(t *testing.T) {
	cfg := config.GetPreset("head_on")
	cfg.MaxTime = 5

	got := Compare(context.Background(), cfg, []string{"forest-ruth", "verlet", "midpoint"}, NewRegistry(), WithLogger(quiet))
	require.Len(t, got, 3)

	for _, c := range got[:2] {
		require.NoError(t, c.Err, c.Integrator)
		require.Positive(t, c.Summary.Collisions, c.Integrator)
		require.Zero(t, c.Summary.Violations, c.Integrator)
	}
	require.Error(t, got[2].Err)
	require.Equal(t, "forest-ruth", cfg.Integrator, "input config is not modified")
}

func TestCompareCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.Empty(t, Compare(ctx, config.GetPreset("head_on"), []string{"rk4"}, NewRegistry(), WithLogger(quiet)))
}
