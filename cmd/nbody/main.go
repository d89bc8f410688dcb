package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/san-kum/nbody/internal/analysis"
	"github.com/san-kum/nbody/internal/automation"
	"github.com/san-kum/nbody/internal/bench"
	"github.com/san-kum/nbody/internal/config"
	"github.com/san-kum/nbody/internal/dynamo"
	"github.com/san-kum/nbody/internal/energy"
	"github.com/san-kum/nbody/internal/export"
	"github.com/san-kum/nbody/internal/integrators"
	"github.com/san-kum/nbody/internal/logger"
	"github.com/san-kum/nbody/internal/metrics"
	"github.com/san-kum/nbody/internal/optim"
	"github.com/san-kum/nbody/internal/physics"
	"github.com/san-kum/nbody/internal/storage"
	"github.com/san-kum/nbody/internal/stream"
	"github.com/san-kum/nbody/internal/viz"
)

var (
	dataDir     string
	configFile  string
	preset      string
	steps       int
	dt          float64
	sampleEvery int
	trackEvery  int
	debug       bool
	metricsFile string
	iterations  int
	sysfsRoot   string
	// live view
	stepsPerFrame int
	// serve
	addr             string
	streamRate       float64
	stepsPerSnapshot int
	// compare
	compareSteps int
	orbitsDir    string
	// divergence
	divergenceSteps int
	perturbation    float64
	renorm          int
	// sweep
	sweepIntegrator string
	sweepDts        []float64
	sweepYears      float64
	tolerance       float64
	workers         int
	// export-svg
	outFile string
	width   int
	height  int
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// newRootCmd builds the CLI. The root command itself is the benchmark: it
// prints the initial and final energy of an N-step run.
func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "nbody [steps]",
		Short: "five-body jovian planet benchmark",
		Long: "Advances the sun and the four jovian planets [steps] times (default 1000)\n" +
			"with dt=0.01 and prints the total energy before and after, one per line.",
		// A negative step count looks like a flag, so the root parses its own args.
		DisableFlagParsing: true,
		Args:               cobra.ArbitraryArgs,
		SilenceUsage:       true,
		RunE:               runBenchmark,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", config.DefaultDataDir, "data directory")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run the benchmark with a config or preset and save the result",
		Args:  cobra.NoArgs,
		RunE:  runSimulation,
	}
	runCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	runCmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	runCmd.Flags().IntVar(&steps, "steps", bench.DefaultSteps, "number of steps")
	runCmd.Flags().Float64Var(&dt, "dt", bench.DefaultDt, "timestep (years)")
	runCmd.Flags().IntVar(&sampleEvery, "sample-every", 0, "record energy every n steps")
	runCmd.Flags().IntVar(&trackEvery, "track-every", 0, "record body positions every n steps")
	runCmd.Flags().BoolVar(&debug, "debug", false, "debug logging")
	runCmd.Flags().StringVar(&metricsFile, "metrics-file", "", "write prometheus metrics to file after the run")
	runCmd.Flags().IntVar(&iterations, "iterations", 1, "repeat the run and report mean and std of duration and joules")
	runCmd.Flags().StringVar(&sysfsRoot, "sysfs", energy.DefaultSysFS, "sysfs mount point holding the RAPL powercap counters")

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run a scripted sequence of benchmarks from yaml",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}
	scenarioCmd.Flags().IntVar(&iterations, "iterations", 1, "repeat every step (overrides the scenario file)")
	scenarioCmd.Flags().StringVar(&sysfsRoot, "sysfs", energy.DefaultSysFS, "sysfs mount point holding the RAPL powercap counters")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot energy of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "frequency analysis of the energy error",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return storage.New(dataDir).ExportJSON(cmd.OutOrStdout(), args[0])
		},
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export energy samples to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "render tracked orbits to SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().StringVarP(&outFile, "output", "o", "", "output file (default stdout)")
	exportSVGCmd.Flags().IntVar(&width, "width", 800, "image width")
	exportSVGCmd.Flags().IntVar(&height, "height", 800, "image height")

	compareCmd := &cobra.Command{
		Use:   "compare [integrator...]",
		Short: "compare integrators against the kernel",
		RunE:  compareIntegrators,
	}
	compareCmd.Flags().IntVar(&compareSteps, "steps", 10000, "number of steps")
	compareCmd.Flags().Float64Var(&dt, "dt", bench.DefaultDt, "timestep (years)")
	compareCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml); its integrator is the default")
	compareCmd.Flags().StringVar(&preset, "preset", "", "take steps, dt and integrator from a preset")
	compareCmd.Flags().StringVar(&orbitsDir, "orbits", "", "write each integrator's orbits as <dir>/<name>.svg")
	compareCmd.Flags().IntVar(&trackEvery, "track-every", 0, "steps between orbit snapshots (0 means 100)")

	divergenceCmd := &cobra.Command{
		Use:   "divergence",
		Short: "estimate the largest lyapunov exponent",
		Args:  cobra.NoArgs,
		RunE:  runDivergence,
	}
	divergenceCmd.Flags().IntVar(&divergenceSteps, "steps", 100000, "number of steps")
	divergenceCmd.Flags().Float64Var(&dt, "dt", bench.DefaultDt, "timestep (years)")
	divergenceCmd.Flags().Float64Var(&perturbation, "eps", 1e-8, "initial displacement of jupiter (AU)")
	divergenceCmd.Flags().IntVar(&renorm, "renorm", 100, "steps between renormalisations")

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "sweep timesteps and report the energy error of an integrator",
		Args:  cobra.NoArgs,
		RunE:  runSweep,
	}
	sweepCmd.Flags().StringVar(&sweepIntegrator, "integrator", config.DefaultIntegrator, "integrator")
	sweepCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml); its integrator is the default")
	sweepCmd.Flags().Float64SliceVar(&sweepDts, "dts", []float64{0.001, 0.002, 0.005, 0.01, 0.02, 0.05}, "timesteps to try (years)")
	sweepCmd.Flags().Float64Var(&sweepYears, "years", 100, "simulated years per point")
	sweepCmd.Flags().Float64Var(&tolerance, "tolerance", 1e-5, "acceptable relative energy error")
	sweepCmd.Flags().IntVar(&workers, "workers", runtime.NumCPU(), "parallel evaluations")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "run the system with live visualization",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}
	liveCmd.Flags().Float64Var(&dt, "dt", bench.DefaultDt, "timestep (years)")
	liveCmd.Flags().IntVar(&stepsPerFrame, "steps-per-frame", 20, "kernel steps per frame")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "serve prometheus metrics and a websocket snapshot feed",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
	serveCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	serveCmd.Flags().StringVar(&addr, "addr", config.DefaultMetricsAddr, "listen address")
	serveCmd.Flags().Float64Var(&streamRate, "rate", config.DefaultStreamRate, "snapshots per second per client")
	serveCmd.Flags().IntVar(&stepsPerSnapshot, "steps-per-snapshot", 10, "kernel steps between snapshots")
	serveCmd.Flags().Float64Var(&dt, "dt", bench.DefaultDt, "timestep (years)")
	serveCmd.Flags().BoolVar(&debug, "debug", false, "debug logging")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tSTEPS\tDT\tSAMPLE\tTRACK\tINTEG")
			for _, name := range config.ListPresets() {
				p := config.GetPreset(name)
				fmt.Fprintf(w, "%s\t%d\t%g\t%d\t%d\t%s\n",
					name, p.Steps, p.Dt, p.SampleEvery, p.TrackEvery, p.Integrator)
			}
			return w.Flush()
		},
	}

	rootCmd.AddCommand(runCmd, scenarioCmd, listCmd, plotCmd, analyzeCmd, exportJSONCmd, exportCSVCmd,
		exportSVGCmd, compareCmd, divergenceCmd, sweepCmd, liveCmd, serveCmd, presetsCmd)

	return rootCmd
}

func runBenchmark(cmd *cobra.Command, args []string) error {
	args, help := benchmarkArgs(args)
	if help {
		return cmd.Help()
	}

	n, err := bench.ParseSteps(args)
	if err != nil {
		return err
	}

	cfg := bench.DefaultConfig()
	cfg.Steps = n
	report, err := bench.NewRunner().Run(context.Background(), cfg)
	if err != nil {
		return err
	}
	return bench.WriteEnergies(cmd.OutOrStdout(), report)
}

// benchmarkArgs drops the persistent flags the root accepts, leaving the step
// count. Negative numbers stay positional.
func benchmarkArgs(args []string) (rest []string, help bool) {
	for i := 0; i < len(args); i++ {
		switch a := args[i]; {
		case a == "-h" || a == "--help":
			return nil, true
		case a == "--data":
			i++
		case strings.HasPrefix(a, "--data="):
		default:
			rest = append(rest, a)
		}
	}
	return rest, false
}

// loadConfig resolves defaults, then the preset, then the config file, then
// explicitly set flags.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		p, err := config.LookupPreset(preset)
		if err != nil {
			return nil, err
		}
		cfg.Apply(p)
	}

	if configFile != "" {
		if err := config.LoadInto(configFile, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}

	// Flags are read from the command's own set: several commands bind
	// different variables to the same flag name.
	flags := cmd.Flags()
	if flags.Changed("steps") {
		cfg.Steps, _ = flags.GetInt("steps")
	}
	if flags.Changed("dt") {
		cfg.Dt, _ = flags.GetFloat64("dt")
	}
	if flags.Changed("sample-every") {
		cfg.SampleEvery, _ = flags.GetInt("sample-every")
	}
	if flags.Changed("track-every") {
		cfg.TrackEvery, _ = flags.GetInt("track-every")
	}
	if flags.Changed("integrator") {
		cfg.Integrator, _ = flags.GetString("integrator")
	}
	if flags.Changed("debug") {
		cfg.Debug, _ = flags.GetBool("debug")
	}
	if flags.Changed("rate") {
		cfg.StreamRate, _ = flags.GetFloat64("rate")
	}
	if flags.Changed("addr") {
		cfg.MetricsAddr, _ = flags.GetString("addr")
	}
	if flags.Changed("data") || cfg.DataDir == "" {
		cfg.DataDir = dataDir
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func runSimulation(cmd *cobra.Command, args []string) (err error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if iterations < 1 {
		return fmt.Errorf("iterations must be positive, got %d: %w", iterations, dynamo.ErrInvalidArgument)
	}

	closeLog, err := logger.Setup(logger.Config{DataDir: cfg.DataDir, Debug: cfg.Debug})
	if err != nil {
		return err
	}
	defer func() {
		if cerr := closeLog(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	st := storage.New(cfg.DataDir)
	if err := st.Init(); err != nil {
		return err
	}

	name := preset
	if name == "" {
		name = "custom"
	}

	out := cmd.OutOrStdout()
	reg := prometheus.NewRegistry()
	runner := bench.NewRunner()
	// The meter runs first so the collector sees its joules.
	if meter := newMeter(out); meter != nil {
		defer meter.Close()
		runner.AddHook(meter)
	}
	runner.AddHook(metrics.NewCollector(reg, name))

	ctx, stop := signalContext()
	defer stop()

	fmt.Fprintf(out, "running %d steps (dt=%g)...\n", cfg.Steps, cfg.Dt)

	reports := make([]*bench.Report, 0, iterations)
	for i := 0; i < iterations; i++ {
		report, err := runner.Run(ctx, cfg.Bench())
		if err != nil {
			return err
		}
		reports = append(reports, report)
	}
	report := reports[len(reports)-1]

	fmt.Fprintf(out, "completed in %v\n", report.Elapsed)
	fmt.Fprintf(out, "steps: %d (%.0f steps/s)\n", report.Steps, report.StepsPerSecond())
	fmt.Fprintf(out, "initial energy: %s\n", bench.FormatEnergy(report.InitialEnergy))
	fmt.Fprintf(out, "final energy:   %s\n", bench.FormatEnergy(report.FinalEnergy))
	fmt.Fprintf(out, "relative drift: %.3e\n", report.RelativeDrift())
	for _, domain := range bench.Domains(report) {
		fmt.Fprintf(out, "energy (%s): %.4f J\n", domain, report.Joules[domain])
	}
	if iterations > 1 {
		printSummary(out, bench.Summarize(reports))
	}

	runID, err := st.Save(name, report)
	if err != nil {
		return err
	}
	if iterations > 1 {
		if err := st.SaveIterations(runID, reports); err != nil {
			return err
		}
	}
	fmt.Fprintf(out, "run id: %s\n", runID)
	fmt.Fprintf(out, "log: %s\n", logger.Path())

	if metricsFile != "" {
		if err := prometheus.WriteToTextfile(metricsFile, reg); err != nil {
			return err
		}
	}
	return nil
}

// newMeter returns nil when this host has no readable RAPL counters.
func newMeter(out io.Writer) *energy.Meter {
	m, err := energy.NewMeter(energy.Options{SysFS: sysfsRoot, Interval: energy.DefaultInterval})
	if err != nil {
		logger.L().Warn("rapl.unavailable", "err", err)
		fmt.Fprintf(out, "energy: not measured (%v)\n", err)
		return nil
	}
	return m
}

func printSummary(out io.Writer, sum bench.Summary) {
	fmt.Fprintf(out, "iterations: %d\n", sum.Iterations)
	fmt.Fprintf(out, "duration: %.4f s (±%.4f)\n", sum.Seconds.Mean, sum.Seconds.Std)
	if sum.TotalJoules != nil {
		fmt.Fprintf(out, "energy: %.4f J (±%.4f)\n", sum.TotalJoules.Mean, sum.TotalJoules.Std)
	}
}

func runScenario(cmd *cobra.Command, args []string) (err error) {
	sc, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("iterations") {
		if iterations < 1 {
			return fmt.Errorf("iterations must be positive, got %d: %w", iterations, dynamo.ErrInvalidArgument)
		}
		sc.Iterations = iterations
	}

	closeLog, err := logger.Setup(logger.Config{DataDir: dataDir})
	if err != nil {
		return err
	}
	defer func() {
		if cerr := closeLog(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	runner := bench.NewRunner()
	if meter := newMeter(out); meter != nil {
		defer meter.Close()
		runner.AddHook(meter)
	}

	ctx, stop := signalContext()
	defer stop()

	fmt.Fprintf(out, "scenario: %s (%d steps)\n", sc.Name, len(sc.Steps))

	results, err := automation.RunScenario(ctx, sc, runner, st)
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tRUN ID\tSTEPS\tDT\tFINAL ENERGY\tDRIFT\tSECONDS\tJOULES")
	for _, r := range results {
		joules := "-"
		if j := r.Summary.TotalJoules; j != nil {
			joules = fmt.Sprintf("%.3f±%.3f", j.Mean, j.Std)
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%g\t%s\t%.3e\t%.4f±%.4f\t%s\n",
			r.Name, r.RunID, r.Report.Steps, r.Report.Dt,
			bench.FormatEnergy(r.Report.FinalEnergy), r.Report.RelativeDrift(),
			r.Summary.Seconds.Mean, r.Summary.Seconds.Std, joules)
	}
	if ferr := w.Flush(); ferr != nil && err == nil {
		err = ferr
	}
	return err
}

func listRuns(cmd *cobra.Command, args []string) error {
	runs, err := storage.New(dataDir).List()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(runs) == 0 {
		fmt.Fprintln(out, "no runs found")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tPRESET\tTIME\tSTEPS\tDT\tFINAL ENERGY\tDRIFT")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%g\t%s\t%.3e\n",
			run.ID,
			run.Preset,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Steps,
			run.Dt,
			bench.FormatEnergy(run.FinalEnergy),
			run.RelativeDrift,
		)
	}
	return w.Flush()
}

func loadSamples(runID string) (*storage.RunMetadata, []bench.Sample, error) {
	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return nil, nil, err
	}
	samples, err := st.LoadSamples(runID)
	if err != nil {
		return nil, nil, err
	}
	if len(samples) < 2 {
		return nil, nil, fmt.Errorf("run %s has %d samples: %w", runID, len(samples), dynamo.ErrNoData)
	}
	return meta, samples, nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	meta, samples, err := loadSamples(args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "run: %s\n", meta.ID)
	fmt.Fprintf(out, "steps: %d, dt: %g\n", meta.Steps, meta.Dt)
	fmt.Fprintf(out, "samples: %d\n\n", len(samples))

	energies := make([]float64, len(samples))
	for i, s := range samples {
		energies[i] = s.Energy
	}

	fmt.Fprintln(out, asciigraph.Plot(energies,
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Precision(9),
		asciigraph.Caption("total energy"),
	))
	fmt.Fprintln(out)

	ppm := analysis.EnergyError(samples)
	for i := range ppm {
		ppm[i] *= 1e6
	}
	fmt.Fprintln(out, asciigraph.Plot(ppm,
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Precision(3),
		asciigraph.Caption("relative energy error (ppm)"),
	))
	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	meta, samples, err := loadSamples(args[0])
	if err != nil {
		return err
	}

	spec, err := analysis.EnergySpectrum(samples)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "frequency analysis: %s\n\n", meta.ID)

	plotData := spec.Power[:len(spec.Power)/2]
	fmt.Fprintln(out, asciigraph.Plot(plotData,
		asciigraph.Height(15),
		asciigraph.Width(80),
		asciigraph.Caption("power spectrum (energy error)"),
	))
	fmt.Fprintln(out)

	freq, power := spec.Dominant()
	fmt.Fprintf(out, "dominant frequency: %.4f 1/yr (power %.3e)\n", freq, power)
	if freq > 0 {
		fmt.Fprintf(out, "period: %.3f yr\n", 1.0/freq)
	}
	return nil
}

func exportCSV(cmd *cobra.Command, args []string) error {
	_, samples, err := loadSamples(args[0])
	if err != nil {
		return err
	}

	w := csv.NewWriter(cmd.OutOrStdout())
	if err := w.Write([]string{"step", "time", "energy"}); err != nil {
		return err
	}
	for _, s := range samples {
		row := []string{
			strconv.Itoa(s.Step),
			strconv.FormatFloat(s.Time, 'g', -1, 64),
			strconv.FormatFloat(s.Energy, 'g', -1, 64),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func exportSVG(cmd *cobra.Command, args []string) error {
	tracks, err := storage.New(dataDir).LoadTracks(args[0])
	if err != nil {
		return err
	}

	svg, err := export.TracksToSVG(tracks, width, height)
	if err != nil {
		return err
	}

	if outFile == "" {
		_, err = io.WriteString(cmd.OutOrStdout(), svg)
		return err
	}
	if err := os.WriteFile(outFile, []byte(svg), 0644); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", outFile)
	return nil
}

func compareIntegrators(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	// A preset or config file supplies the step count and the integrator
	// unless they are given on the command line.
	fromFile := preset != "" || configFile != ""
	n := compareSteps
	if fromFile && !cmd.Flags().Changed("steps") {
		n = cfg.Steps
	}
	if n <= 0 || cfg.Dt <= 0 {
		return fmt.Errorf("steps=%d dt=%g: %w", n, cfg.Dt, dynamo.ErrInvalidArgument)
	}

	names := args
	if len(names) == 0 && fromFile {
		names = []string{cfg.Integrator}
	}
	if len(names) == 0 {
		names = integrators.Names()
	}

	every := cfg.TrackEvery
	if every <= 0 {
		every = 100
	}
	if orbitsDir != "" {
		if err := os.MkdirAll(orbitsDir, 0755); err != nil {
			return err
		}
	}

	ctx, stop := signalContext()
	defer stop()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "comparing over %d steps (dt=%g)\n\n", n, cfg.Dt)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "INTEGRATOR\tFINAL ENERGY\tDRIFT\tMAX DRIFT\tBOUNDED\tTIME")

	start := time.Now()
	sys := physics.NewJovian()
	e0 := sys.Energy()
	for i := 0; i < n; i++ {
		sys.Advance(cfg.Dt)
	}
	e1 := sys.Energy()
	fmt.Fprintf(w, "kernel\t%s\t%.3e\t-\t-\t%v\n",
		bench.FormatEnergy(e1), relDrift(e0, e1), time.Since(start).Round(time.Microsecond))

	planetary := physics.NewPlanetary()
	x0 := physics.NewJovian().State()
	var written []string
	for _, name := range names {
		integ, err := integrators.Lookup(name)
		if err != nil {
			return err
		}

		sim := dynamo.New(planetary, integ)
		drift := metrics.NewEnergyDrift(planetary)
		bounded := metrics.NewBounded(100)
		sim.AddMetric(drift)
		sim.AddMetric(bounded)

		var tracker *physics.Tracker
		if orbitsDir != "" {
			tracker = planetary.NewTracker(every, cfg.Dt)
			sim.AddObserver(tracker)
		}

		start := time.Now()
		result, err := sim.Run(ctx, x0, dynamo.Config{Dt: cfg.Dt, Duration: float64(n) * cfg.Dt})
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}

		fmt.Fprintf(w, "%s\t%s\t%.3e\t%.3e\t%.3f\t%v\n",
			name,
			bench.FormatEnergy(result.FinalEnergy),
			result.EnergyDrift,
			result.Metrics[drift.Name()],
			result.Metrics[bounded.Name()],
			time.Since(start).Round(time.Microsecond),
		)

		if tracker != nil {
			svg, err := export.TracksToSVG(tracker.Snapshots(), 800, 800)
			if err != nil {
				return fmt.Errorf("%s orbits: %w", name, err)
			}
			path := filepath.Join(orbitsDir, name+".svg")
			if err := os.WriteFile(path, []byte(svg), 0644); err != nil {
				return err
			}
			written = append(written, path)
		}
	}
	if err := w.Flush(); err != nil {
		return err
	}
	for _, path := range written {
		fmt.Fprintf(out, "wrote %s\n", path)
	}
	return nil
}

func relDrift(e0, e1 float64) float64 {
	if e0 == 0 {
		return 0
	}
	return math.Abs(e1-e0) / math.Abs(e0)
}

func runDivergence(cmd *cobra.Command, args []string) error {
	lambda, err := analysis.Divergence(divergenceSteps, dt, perturbation, renorm)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "steps: %d, dt: %g, eps: %g, renorm every %d\n", divergenceSteps, dt, perturbation, renorm)
	fmt.Fprintf(out, "largest lyapunov exponent: %.6f 1/yr\n", lambda)
	if lambda > 0 {
		fmt.Fprintf(out, "e-folding time: %.1f yr\n", 1.0/lambda)
	}
	return nil
}

func runSweep(cmd *cobra.Command, args []string) error {
	if sweepYears <= 0 || len(sweepDts) == 0 {
		return fmt.Errorf("years=%g dts=%v: %w", sweepYears, sweepDts, dynamo.ErrInvalidArgument)
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	integ := cfg.Integrator

	obj, err := optim.DriftObjective(integ, sweepYears)
	if err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()

	g := optim.NewGridSearch([]string{"dt"}, [][]float64{sweepDts})
	g.SetWorkers(workers)
	_, points, err := g.Search(ctx, obj)
	if err != nil {
		return err
	}

	// Largest timestep that stays within tolerance.
	var pick *optim.Point
	for i := range points {
		p := &points[i]
		if p.Err != nil || p.Value > tolerance {
			continue
		}
		if pick == nil || p.Params["dt"] > pick.Params["dt"] {
			pick = p
		}
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s over %g years, tolerance %.1e\n\n", integ, sweepYears, tolerance)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "DT\tSTEPS\tMAX DRIFT\t")
	for i := range points {
		p := &points[i]
		dtVal := p.Params["dt"]
		steps := int(math.Round(sweepYears / dtVal))
		switch {
		case p.Err != nil:
			fmt.Fprintf(w, "%g\t%d\terror: %v\t\n", dtVal, steps, p.Err)
		case p == pick:
			fmt.Fprintf(w, "%g\t%d\t%.3e\t<- largest within tolerance\n", dtVal, steps, p.Value)
		default:
			fmt.Fprintf(w, "%g\t%d\t%.3e\t\n", dtVal, steps, p.Value)
		}
	}
	return w.Flush()
}

func runLive(cmd *cobra.Command, args []string) error {
	if dt <= 0 || stepsPerFrame <= 0 {
		return fmt.Errorf("dt=%g steps-per-frame=%d: %w", dt, stepsPerFrame, dynamo.ErrInvalidArgument)
	}

	m := viz.NewModel(viz.Options{Dt: dt, StepsPerFrame: stepsPerFrame})
	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return err
	}
	return nil
}

func runServe(cmd *cobra.Command, args []string) (err error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	closeLog, err := logger.Setup(logger.Config{DataDir: cfg.DataDir, Debug: cfg.Debug})
	if err != nil {
		return err
	}
	defer func() {
		if cerr := closeLog(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	collector := metrics.NewCollector(reg, "stream")

	srv, err := stream.New(stream.Options{
		Addr:             cfg.MetricsAddr,
		Rate:             cfg.StreamRate,
		StepsPerSnapshot: stepsPerSnapshot,
		Dt:               cfg.Dt,
	}, reg, collector)
	if err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()

	fmt.Fprintf(cmd.OutOrStdout(), "serving on %s (/metrics, /ws, /healthz)\n", cfg.MetricsAddr)
	return srv.ListenAndServe(ctx)
}
