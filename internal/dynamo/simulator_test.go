package dynamo_test

import (
	"context"
	"io"
	"log/slog"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/curvesim/internal/collision"
	"github.com/san-kum/curvesim/internal/dynamo"
	"github.com/san-kum/curvesim/internal/geometry"
	"github.com/san-kum/curvesim/internal/integrators"
	"github.com/san-kum/curvesim/internal/metrics"
	"github.com/san-kum/curvesim/internal/particle"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

type countingObserver struct {
	saves int
	last  dynamo.ConservationPoint
}

func (o *countingObserver) OnSave(_ dynamo.Snapshot, p dynamo.ConservationPoint) {
	o.saves++
	o.last = p
}

func newSimulator(e geometry.Ellipse, s integrators.Stepper, cfg dynamo.Config) *dynamo.Simulator {
	sim, err := dynamo.New(e, s, cfg, dynamo.WithLogger(quiet))
	Expect(err).NotTo(HaveOccurred())
	return sim
}

var _ = Describe("Simulator", func() {
	var cfg dynamo.Config

	BeforeEach(func() {
		cfg = dynamo.DefaultConfig()
		cfg.MaxTime = 3
		cfg.SaveInterval = 0.1
	})

	Describe("New", func() {
		It("rejects an invalid config", func() {
			cfg.DtMax = 0
			_, err := dynamo.New(geometry.MustNew(1, 1), integrators.NewForestRuth(), cfg)
			Expect(err).To(MatchError(dynamo.ErrInvalidConfig))
		})

		It("rejects a nil stepper", func() {
			_, err := dynamo.New(geometry.MustNew(1, 1), nil, cfg)
			Expect(err).To(MatchError(dynamo.ErrInvalidConfig))
		})
	})

	Context("head-on pair on a circle", func() {
		var (
			e   geometry.Ellipse
			ps  []particle.Particle
			sim *dynamo.Simulator
		)

		BeforeEach(func() {
			e = geometry.MustNew(1, 1)
			ps = []particle.Particle{
				particle.New(e, 0, 1, 0.1, 0, 1),
				particle.New(e, 1, 1, 0.1, 3, -1),
			}
			sim = newSimulator(e, integrators.NewForestRuth(), cfg)
		})

		It("collides once at contact and swaps velocities", func() {
			traj, err := sim.Run(context.Background(), ps)
			Expect(err).NotTo(HaveOccurred())
			Expect(traj.Warning).To(BeNil())

			Expect(traj.Events).To(HaveLen(1))
			Expect(traj.Events[0].Time).To(BeNumerically("~", 1.4, 1e-6))
			Expect(traj.Events[0].Violated).To(BeFalse())

			final := traj.Final.Particles
			Expect(final[0].PhiDot()).To(BeNumerically("~", -1, 1e-12))
			Expect(final[1].PhiDot()).To(BeNumerically("~", 1, 1e-12))
		})

		It("keeps energy and conjugate momentum", func() {
			traj, err := sim.Run(context.Background(), ps)
			Expect(err).NotTo(HaveOccurred())
			for i := 0; i < traj.Conservation.Len(); i++ {
				pt := traj.Conservation.At(i)
				Expect(pt.Energy).To(BeNumerically("~", 1, 1e-12))
				Expect(pt.Momentum).To(BeNumerically("~", 0, 1e-12))
			}
		})

		It("saves on the interval and stops at max time", func() {
			traj, err := sim.Run(context.Background(), ps)
			Expect(err).NotTo(HaveOccurred())
			Expect(traj.Final.Time).To(BeNumerically("~", 3, 1e-9))
			Expect(len(traj.Snapshots)).To(BeNumerically(">=", 30))
			Expect(len(traj.Snapshots)).To(BeNumerically("<=", 32))
			Expect(traj.Snapshots[0].Time).To(Equal(0.0))
			Expect(traj.Snapshots[len(traj.Snapshots)-1].Time).To(BeNumerically("~", 3, 1e-9))
			Expect(traj.Conservation.Len()).To(Equal(len(traj.Snapshots)))
		})

		It("does not modify the input particles", func() {
			_, err := sim.Run(context.Background(), ps)
			Expect(err).NotTo(HaveOccurred())
			Expect(ps[0].Phi()).To(Equal(0.0))
			Expect(ps[1].PhiDot()).To(Equal(-1.0))
		})

		It("stops at the step budget with a warning", func() {
			cfg.MaxSteps = 10
			sim = newSimulator(e, integrators.NewForestRuth(), cfg)

			traj, err := sim.Run(context.Background(), ps)
			Expect(err).NotTo(HaveOccurred())
			Expect(traj.Warning).To(MatchError(dynamo.ErrStepBudget))
			Expect(traj.Steps).To(Equal(10))
			Expect(traj.Final.Time).To(BeNumerically("~", 0.1, 1e-12))

			var budget *dynamo.StepBudgetError
			Expect(traj.Warning).To(BeAssignableToTypeOf(budget))
		})

		It("returns the partial trajectory when canceled", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			traj, err := sim.Run(ctx, ps)
			Expect(err).To(MatchError(dynamo.ErrContextCanceled))
			Expect(err).To(MatchError(context.Canceled))
			Expect(traj).NotTo(BeNil())
			Expect(traj.Snapshots).To(HaveLen(1))
			Expect(traj.Steps).To(Equal(0))
		})

		It("notifies observers and metrics at every save", func() {
			obs := &countingObserver{}
			sim.AddObserver(obs)
			sim.AddMetric(metrics.NewEnergyDrift())

			traj, err := sim.Run(context.Background(), ps)
			Expect(err).NotTo(HaveOccurred())
			Expect(obs.saves).To(Equal(len(traj.Snapshots)))
			Expect(obs.last.Time).To(BeNumerically("~", 3, 1e-9))
			Expect(traj.Metrics).To(HaveKeyWithValue("energy_drift", BeNumerically("<", 1e-12)))
		})

		It("rejects an empty system", func() {
			_, err := sim.Run(context.Background(), nil)
			Expect(err).To(MatchError(dynamo.ErrInvalidConfig))
		})
	})

	Context("four particles on an eccentric ellipse", func() {
		var (
			e  geometry.Ellipse
			ps []particle.Particle
		)

		BeforeEach(func() {
			e = geometry.MustNew(2, 1)
			ps = []particle.Particle{
				particle.New(e, 0, 1, 0.1, 0, 1),
				particle.New(e, 1, 1, 0.1, math.Pi/2, -1),
				particle.New(e, 2, 2, 0.1, math.Pi, 0.5),
				particle.New(e, 3, 1, 0.1, 3*math.Pi/2, -0.5),
			}
			cfg.DtMax = 0.005
			cfg.MaxTime = 5
		})

		DescribeTable("conserves energy and momentum",
			func(method collision.Method) {
				cfg.Method = method
				sim := newSimulator(e, integrators.NewForestRuth(), cfg)

				traj, err := sim.Run(context.Background(), ps)
				Expect(err).NotTo(HaveOccurred())
				Expect(traj.Events).NotTo(BeEmpty())
				Expect(traj.Violations).To(BeEmpty())

				sum := traj.Summary()
				Expect(sum.Collisions).To(Equal(len(traj.Events)))
				Expect(sum.EnergyDrift).To(BeNumerically("<", 1e-6))
				Expect(sum.MomentumDrift).To(BeNumerically("<", 1e-6))
			},
			Entry("parallel transport", collision.ParallelTransport),
			Entry("geodesic", collision.Geodesic),
		)

		It("keeps particles apart", func() {
			sim := newSimulator(e, integrators.NewForestRuth(), cfg)
			traj, err := sim.Run(context.Background(), ps)
			Expect(err).NotTo(HaveOccurred())

			final := traj.Final.Particles
			for _, pr := range collision.CandidatePairs(final, true) {
				sep := collision.Separation(e, final[pr.I], final[pr.J])
				Expect(sep).To(BeNumerically(">", 0.2*(1-1e-6)))
			}
		})

		It("holds energy with projection under a first order stepper", func() {
			cfg.UseProjection = true
			cfg.ProjectionInterval = 1
			cfg.ProjectionTolerance = 1e-9
			cfg.MaxTime = 1
			sim := newSimulator(e, integrators.NewEuler(), cfg)

			traj, err := sim.Run(context.Background(), ps)
			Expect(err).NotTo(HaveOccurred())
			Expect(traj.Projections).To(Equal(traj.Steps))

			e0 := traj.Conservation.Energy[0]
			for _, en := range traj.Conservation.Energy {
				Expect(math.Abs(en-e0) / e0).To(BeNumerically("<", 1e-9))
			}
		})
	})
})
