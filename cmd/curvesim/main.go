package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/san-kum/curvesim/internal/collision"
	"github.com/san-kum/curvesim/internal/config"
	"github.com/san-kum/curvesim/internal/dynamo"
	"github.com/san-kum/curvesim/internal/experiment"
	"github.com/san-kum/curvesim/internal/geometry"
	"github.com/san-kum/curvesim/internal/storage"
	"github.com/san-kum/curvesim/internal/viz"
)

var (
	dataDir  string
	logLevel string

	configFile string
	preset     string
	runName    string

	semiA      float64
	semiB      float64
	numBodies  int
	packing    float64
	radius     float64
	maxSpeed   float64
	dtMax      float64
	duration   float64
	saveEvery  float64
	method     string
	integrator string
	seed       uint64
	projection bool
	workers    int

	outFile   string
	snapIndex int
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "curvesim",
		Short:         "hard-disc dynamics on an ellipse",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupLogging(logLevel)
		},
	}
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".curvesim", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a simulation and store the results",
		Args:  cobra.NoArgs,
		RunE:  runSimulation,
	}
	addSimFlags(runCmd)
	runCmd.Flags().StringVar(&runName, "name", "", "run name (defaults to the preset name)")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "run a simulation with live visualization",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}
	addSimFlags(liveCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot conservation drift of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export a run to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}
	exportCmd.Flags().StringVarP(&outFile, "output", "o", "", "output file (stdout when empty)")

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export the conservation series of a run to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}
	exportCSVCmd.Flags().StringVarP(&outFile, "output", "o", "", "output file (stdout when empty)")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tA\tB\tMETHOD\tINTEG\tTIME")
			for _, name := range config.ListPresets() {
				p := config.GetPreset(name)
				fmt.Fprintf(w, "%s\t%g\t%g\t%s\t%s\t%g\n", name, p.A, p.B, p.CollisionMethod, p.Integrator, p.MaxTime)
			}
			return w.Flush()
		},
	}

	checkCmd := &cobra.Command{
		Use:   "check [config.yaml]",
		Short: "validate a config file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(args[0])
			if err != nil {
				return err
			}
			if !cfg.CollisionMethod.Verified() {
				slog.Warn("collision method is unverified", slog.String("method", cfg.CollisionMethod.String()))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: ok\n", args[0])
			return nil
		},
	}

	methodsCmd := &cobra.Command{
		Use:   "methods",
		Short: "list integrators and collision methods",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "integrators: %s\n", strings.Join(experiment.NewRegistry().ListSteppers(), ", "))
			names := make([]string, 0, len(collision.Methods()))
			for _, m := range collision.Methods() {
				names = append(names, m.String())
			}
			fmt.Fprintf(out, "collision methods: %s\n", strings.Join(names, ", "))
		},
	}

	compareCmd := &cobra.Command{
		Use:   "compare [integrator1] [integrator2] ...",
		Short: "compare integrators on the same configuration",
		Args:  cobra.MinimumNArgs(1),
		RunE:  compareIntegrators,
	}
	addSimFlags(compareCmd)

	snapshotCmd := &cobra.Command{
		Use:   "snapshot [run_id]",
		Short: "render a stored snapshot as SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSnapshot,
	}
	snapshotCmd.Flags().IntVar(&snapIndex, "index", -1, "snapshot index (negative counts from the end)")
	snapshotCmd.Flags().StringVarP(&outFile, "output", "o", "", "output file (stdout when empty)")

	rootCmd.AddCommand(runCmd, liveCmd, listCmd, plotCmd, exportCmd, exportCSVCmd, snapshotCmd, compareCmd, presetsCmd, checkCmd, methodsCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func setupLogging(level string) error {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})))
	return nil
}

func addSimFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&configFile, "config", "", "config file path (yaml)")
	f.StringVar(&preset, "preset", "", "use preset configuration")
	f.Float64Var(&semiA, "a", config.DefaultA, "semi-axis along x")
	f.Float64Var(&semiB, "b", config.DefaultB, "semi-axis along y")
	f.IntVar(&numBodies, "n", config.DefaultN, "number of particles")
	f.Float64Var(&packing, "packing", 0, "packing fraction (overrides -n)")
	f.Float64Var(&radius, "radius", config.DefaultRadius, "particle radius (arc length)")
	f.Float64Var(&maxSpeed, "max-speed", config.DefaultMaxSpeed, "maximum initial arc speed")
	f.Float64Var(&dtMax, "dt", config.DefaultDtMax, "maximum timestep")
	f.Float64Var(&duration, "time", config.DefaultMaxTime, "simulated duration")
	f.Float64Var(&saveEvery, "save-interval", config.DefaultSaveInterval, "snapshot interval")
	f.StringVar(&method, "method", collision.ParallelTransport.String(), "collision method")
	f.StringVar(&integrator, "integrator", config.DefaultIntegrator, "integrator")
	f.Uint64Var(&seed, "seed", config.DefaultSeed, "random seed")
	f.BoolVar(&projection, "projection", false, "project back onto the initial energy")
	f.IntVar(&workers, "workers", 0, "advance workers (0 = GOMAXPROCS)")
}

// loadConfig resolves preset, then config file, then explicitly set flags.
func loadConfig(cmd *cobra.Command) (*config.Config, string, error) {
	cfg := config.DefaultConfig()
	name := "custom"

	if preset != "" {
		p := config.GetPreset(preset)
		if p == nil {
			return nil, "", fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
		cfg, name = p, preset
	}

	if configFile != "" {
		c, err := config.Load(configFile)
		if err != nil {
			return nil, "", fmt.Errorf("failed to load config: %w", err)
		}
		cfg = c
		if preset == "" {
			name = "config"
		}
	}

	flags := cmd.Flags()
	if flags.Changed("a") {
		cfg.A = semiA
	}
	if flags.Changed("b") {
		cfg.B = semiB
	}
	if flags.Changed("n") {
		cfg.N = numBodies
		cfg.PackingFraction = 0
		cfg.Particles = nil
	}
	if flags.Changed("packing") {
		cfg.PackingFraction = packing
		cfg.Particles = nil
	}
	if flags.Changed("radius") {
		cfg.Radius = radius
		cfg.Radii = nil
	}
	if flags.Changed("max-speed") {
		cfg.MaxSpeed = maxSpeed
	}
	if flags.Changed("dt") {
		cfg.DtMax = dtMax
	}
	if flags.Changed("time") {
		cfg.MaxTime = duration
	}
	if flags.Changed("save-interval") {
		cfg.SaveInterval = saveEvery
	}
	if flags.Changed("method") {
		m, err := collision.ParseMethod(method)
		if err != nil {
			return nil, "", err
		}
		cfg.CollisionMethod = m
	}
	if flags.Changed("integrator") {
		cfg.Integrator = integrator
	}
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("projection") {
		cfg.UseProjection = projection
	}
	if flags.Changed("workers") {
		cfg.Workers = workers
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", err
	}
	return cfg, name, nil
}

func setupExperiment(cmd *cobra.Command, opts ...experiment.Option) (*experiment.Experiment, string, error) {
	cfg, name, err := loadConfig(cmd)
	if err != nil {
		return nil, "", err
	}
	if !cfg.CollisionMethod.Verified() {
		slog.Warn("collision method is unverified", slog.String("method", cfg.CollisionMethod.String()))
	}

	exp, err := experiment.New(cfg, opts...)
	if err != nil {
		return nil, "", err
	}
	if err := exp.Setup(experiment.NewRegistry()); err != nil {
		return nil, "", err
	}
	return exp, name, nil
}

func runSimulation(cmd *cobra.Command, args []string) error {
	exp, name, err := setupExperiment(cmd)
	if err != nil {
		return err
	}
	if runName != "" {
		name = runName
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	cfg := exp.Config()
	fmt.Printf("running %s: %d particles on a=%g b=%g\n", name, len(exp.Particles()), cfg.A, cfg.B)
	start := time.Now()

	traj, runErr := exp.Run(ctx)
	if traj == nil {
		return runErr
	}
	if runErr != nil && !errors.Is(runErr, dynamo.ErrContextCanceled) {
		return runErr
	}
	elapsed := time.Since(start)

	runID, err := st.Save(storage.NewMetadata(name, cfg, traj), traj)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n\n", runID)
	fmt.Println(viz.RenderSummary(name, traj.Summary(), cfg.Tolerance))
	if traj.Warning != nil {
		fmt.Println(viz.Warn.Render("warning: " + traj.Warning.Error()))
	}
	return runErr
}

func runLive(cmd *cobra.Command, args []string) error {
	// the TUI owns the terminal; driver warnings would garble it
	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
	exp, name, err := setupExperiment(cmd, experiment.WithLogger(quiet))
	if err != nil {
		return err
	}

	p := tea.NewProgram(viz.NewModel(exp.Simulator(), exp.Particles(), name), tea.WithAltScreen())
	_, err = p.Run()
	return err
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTIME\tN\tA\tB\tMETHOD\tINTEG\tCOLLISIONS\tDRIFT")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%d\t%g\t%g\t%s\t%s\t%d\t%.2e\n",
			run.ID,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Particles,
			run.A,
			run.B,
			run.Method,
			run.Integrator,
			run.Summary.Collisions,
			run.Summary.EnergyDrift,
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	rec, err := st.LoadConservation(runID)
	if err != nil {
		return err
	}
	if rec.Len() == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("samples: %d\n\n", rec.Len())

	fmt.Println(viz.Plot(viz.RelativeDrift(rec.Energy, 0), 80, 10, "relative energy drift"))
	fmt.Println()
	// momentum is zero for symmetric starts, so drift is scaled by Σ m|u|
	scale := meta.MomentumScale
	if scale == 0 {
		scale = 1
	}
	fmt.Println(viz.Plot(viz.RelativeDrift(rec.Momentum, scale), 80, 10, "momentum drift"))
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	data, err := st.Export(args[0])
	if err != nil {
		return err
	}
	if outFile == "" {
		return storage.WriteJSON(os.Stdout, data)
	}
	if err := storage.ExportJSON(outFile, data); err != nil {
		return err
	}
	fmt.Printf("exported to %s\n", outFile)
	return nil
}

func exportCSV(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	rec, err := st.LoadConservation(args[0])
	if err != nil {
		return err
	}

	var w io.Writer = os.Stdout
	if outFile != "" {
		f, err := os.Create(outFile)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	if err := storage.WriteConservationCSV(w, rec); err != nil {
		return err
	}
	if outFile != "" {
		fmt.Printf("exported to %s\n", outFile)
	}
	return nil
}

func compareIntegrators(cmd *cobra.Command, args []string) error {
	cfg, name, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	fmt.Printf("comparing integrators for %s (dt=%.4f, duration=%.1f)\n\n", name, cfg.DtMax, cfg.MaxTime)
	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
	results := experiment.Compare(ctx, cfg, args, experiment.NewRegistry(), experiment.WithLogger(quiet))

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "INTEG\tSTEPS\tCOLLISIONS\tVIOLATIONS\tENERGY_DRIFT\tMOMENTUM_DRIFT\tTIME_MS")
	for _, r := range results {
		if r.Err != nil && r.Summary.Steps == 0 {
			fmt.Fprintf(w, "%s\terror: %v\n", r.Integrator, r.Err)
			continue
		}
		fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%.2e\t%.2e\t%.2f\n",
			r.Integrator,
			r.Summary.Steps,
			r.Summary.Collisions,
			r.Summary.Violations,
			r.Summary.EnergyDrift,
			r.Summary.MomentumDrift,
			float64(r.Elapsed.Microseconds())/1000,
		)
	}
	return w.Flush()
}

func exportSnapshot(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	snaps, err := st.LoadSnapshots(runID)
	if err != nil {
		return err
	}
	if len(snaps) == 0 {
		return fmt.Errorf("run %s has no snapshots", runID)
	}

	i := snapIndex
	if i < 0 {
		i += len(snaps)
	}
	if i < 0 || i >= len(snaps) {
		return fmt.Errorf("snapshot index %d out of range [0, %d)", snapIndex, len(snaps))
	}
	snap := snaps[i]

	e, err := geometry.New(meta.A, meta.B)
	if err != nil {
		return err
	}
	radii := make([]float64, len(snap.Phi))
	if meta.Config != nil {
		specs := meta.Config.Specs(e)
		for k := range radii {
			if k < len(specs) {
				radii[k] = specs[k].Radius
			} else {
				radii[k] = meta.Config.Radius
			}
		}
	}

	svg := viz.SnapshotSVG(e, snap, radii, 800)
	if outFile == "" {
		fmt.Println(svg)
		return nil
	}
	if err := os.WriteFile(outFile, []byte(svg), 0644); err != nil {
		return err
	}
	fmt.Printf("wrote snapshot %d (t=%.4f) to %s\n", i, snap.Time, outFile)
	return nil
}
