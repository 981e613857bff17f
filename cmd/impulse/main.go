package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"strconv"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/san-kum/impulse/internal/config"
	"github.com/san-kum/impulse/internal/metrics"
	"github.com/san-kum/impulse/internal/sim"
	"github.com/san-kum/impulse/internal/solver"
	"github.com/san-kum/impulse/internal/storage"
	"github.com/san-kum/impulse/internal/viz"
	"github.com/spf13/cobra"
)

var (
	dataDir    string
	verbose    bool
	configFile string
	preset     string
	dt         float64
	steps      int
	iterations int
	workers    int
	pairs      int
	target     float64
	maxForce   float64
	softness   float64
	integrate  bool
	outFile    string
	noSave     bool
	frameRate  int
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "impulse",
		Short: "wide sequential impulse constraint solver",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				solver.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".impulse", "data directory")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log solver activity to stderr")

	runCmd := &cobra.Command{
		Use:   "run [kind]",
		Short: "run a scenario and store its residual trace",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}
	scenarioFlags(runCmd)
	runCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the run")

	benchCmd := &cobra.Command{
		Use:   "bench [kind]",
		Short: "measure step throughput across scene sizes and worker counts",
		Args:  cobra.ExactArgs(1),
		RunE:  benchScenario,
	}
	benchCmd.Flags().IntVar(&steps, "steps", 60, "steps per measurement")
	benchCmd.Flags().IntVar(&iterations, "iterations", config.DefaultIterations, "solver iterations")

	compareCmd := &cobra.Command{
		Use:   "compare [kind] [iterations...]",
		Short: "run the same scenario at several iteration counts concurrently",
		Args:  cobra.MinimumNArgs(2),
		RunE:  compareIterations,
	}
	scenarioFlags(compareCmd)

	presetsCmd := &cobra.Command{
		Use:   "presets [kind]",
		Short: "list available presets for a scenario kind",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			presets := config.ListPresets(args[0])
			if len(presets) == 0 {
				fmt.Printf("no presets for kind: %s\n", args[0])
				return nil
			}
			fmt.Printf("presets for %s:\n", args[0])
			for _, p := range presets {
				fmt.Printf("  %s\n", p)
			}
			return nil
		},
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot the residual trace of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "print run metadata",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export a run's residual trace to CSV",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return storage.New(dataDir).ExportCSV(os.Stdout, args[0])
		},
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export a run's trace and metrics to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVarP(&outFile, "out", "o", "", "write to a file instead of stdout")

	liveCmd := &cobra.Command{
		Use:   "live [kind]",
		Short: "step a scenario with a live terminal view",
		Args:  cobra.ExactArgs(1),
		RunE:  runLive,
	}
	scenarioFlags(liveCmd)
	liveCmd.Flags().IntVar(&frameRate, "fps", 30, "frame rate")

	rootCmd.AddCommand(runCmd, benchCmd, compareCmd, presetsCmd, listCmd, plotCmd, exportCmd, exportCSVCmd, exportJSONCmd, liveCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func scenarioFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	cmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "timestep")
	cmd.Flags().IntVar(&steps, "steps", config.DefaultSteps, "number of steps")
	cmd.Flags().IntVar(&iterations, "iterations", config.DefaultIterations, "solver iterations per step")
	cmd.Flags().IntVar(&workers, "workers", 0, "worker goroutines (0 = GOMAXPROCS)")
	cmd.Flags().IntVar(&pairs, "pairs", config.DefaultPairs, "constraint count")
	cmd.Flags().Float64Var(&target, "target", config.DefaultTarget, "target relative velocity")
	cmd.Flags().Float64Var(&maxForce, "max-force", config.DefaultMaximumForce, "maximum motor force")
	cmd.Flags().Float64Var(&softness, "softness", 0, "motor softness")
	cmd.Flags().BoolVar(&integrate, "integrate", false, "advance body orientations after each step")
}

// resolveConfig layers defaults, then a preset, then a config file, then any
// flags set explicitly.
func resolveConfig(cmd *cobra.Command, kind string) (*config.Config, error) {
	cfg := config.DefaultConfig()
	cfg.Scenario.Kind = kind

	if preset != "" {
		p := config.GetPreset(kind, preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets(kind))
		}
		cfg = p
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("dt") {
		cfg.Dt = dt
	}
	if flags.Changed("steps") {
		cfg.Steps = steps
	}
	if flags.Changed("iterations") {
		cfg.Iterations = iterations
	}
	if flags.Changed("workers") {
		cfg.Workers = workers
	}
	if flags.Changed("pairs") {
		cfg.Scenario.Pairs = pairs
	}
	if flags.Changed("target") {
		cfg.Scenario.TargetVelocity = target
	}
	if flags.Changed("max-force") {
		cfg.Scenario.MaximumForce = maxForce
	}
	if flags.Changed("softness") {
		cfg.Scenario.Softness = softness
	}
	if flags.Changed("integrate") {
		cfg.IntegrateOrientation = integrate
	}
	return cfg, cfg.Validate()
}

// stepLogger reports every step's residual at debug level.
type stepLogger struct{}

func (stepLogger) OnStep(step int, t float64, scene *sim.Scene, residual float64) {
	solver.Logger().Debug("step", "step", step, "t", t, "residual", residual)
}

func runScenario(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args[0])
	if err != nil {
		return err
	}

	scene, err := sim.BuildScene(cfg)
	if err != nil {
		return err
	}
	s := sim.New(scene)
	for _, m := range metrics.Default(cfg.Dt) {
		s.AddMetric(m)
	}
	if verbose {
		s.AddObserver(stepLogger{})
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("running %s scenario (%d constraints, %d batches)...\n",
		cfg.Scenario.Kind, scene.Solver.Count(), len(scene.Solver.Batches()))

	result, err := s.Run(ctx, cfg)
	if err != nil {
		return err
	}

	summary := fmt.Sprintf("%s %s\n%s %s\n%s %s",
		viz.MetricLabel.Render("steps"), viz.MetricValue.Render(strconv.Itoa(result.StepsTaken)),
		viz.MetricLabel.Render("elapsed"), viz.MetricValue.Render(result.Elapsed.String()),
		viz.MetricLabel.Render("final residual"), viz.MetricValue.Render(fmt.Sprintf("%.3e", result.FinalResidual())))
	fmt.Println(lipgloss.JoinHorizontal(lipgloss.Top, viz.Panel.Render(summary), viz.MetricsTable(result.Metrics)))
	fmt.Println(viz.Sparkline(result.Residuals, 60))

	if noSave {
		return nil
	}
	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	name := cfg.Scenario.Kind
	if preset != "" {
		name += "-" + preset
	}
	runID, err := st.Save(name, cfg, result)
	if err != nil {
		return err
	}
	fmt.Printf("run id: %s\n", runID)
	return nil
}

func benchScenario(cmd *cobra.Command, args []string) error {
	sizes := []int{64, 512, 4096}
	workerCounts := []int{1, runtime.GOMAXPROCS(0)}

	fmt.Printf("benchmarking %s\n\n", args[0])
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "CONSTRAINTS\tWORKERS\tBATCHES\tSTEPS\tTIME\tSTEPS/SEC\tCONSTRAINTS/SEC")

	for _, size := range sizes {
		for _, n := range workerCounts {
			cfg := config.DefaultConfig()
			cfg.Scenario.Kind = args[0]
			cfg.Scenario.Pairs = size
			cfg.Steps = steps
			cfg.Iterations = iterations
			cfg.Workers = n

			scene, err := sim.BuildScene(cfg)
			if err != nil {
				return err
			}
			start := time.Now()
			result, err := sim.New(scene).Run(context.Background(), cfg)
			if err != nil {
				return err
			}
			elapsed := time.Since(start)
			stepsPerSec := float64(result.StepsTaken) / elapsed.Seconds()

			fmt.Fprintf(w, "%d\t%d\t%d\t%d\t%v\t%.0f\t%.0f\n",
				scene.Solver.Count(), n, len(scene.Solver.Batches()), result.StepsTaken,
				elapsed.Round(time.Microsecond), stepsPerSec, stepsPerSec*float64(scene.Solver.Count()))
		}
	}
	return w.Flush()
}

func compareIterations(cmd *cobra.Command, args []string) error {
	base, err := resolveConfig(cmd, args[0])
	if err != nil {
		return err
	}

	configs := make([]*config.Config, 0, len(args)-1)
	for _, arg := range args[1:] {
		n, err := strconv.Atoi(arg)
		if err != nil || n <= 0 {
			return fmt.Errorf("invalid iteration count %q", arg)
		}
		c := *base
		c.Iterations = n
		configs = append(configs, &c)
	}

	results, err := sim.NewEnsemble(configs, func() []sim.Metric { return metrics.Default(base.Dt) }).Run(context.Background())
	if err != nil {
		return err
	}

	fmt.Printf("comparing iteration counts for %s (dt=%.4f, steps=%d)\n\n", base.Scenario.Kind, base.Dt, base.Steps)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ITERATIONS\tFINAL RESIDUAL\tMEAN RESIDUAL\tSATURATION\tTIME")
	for i, r := range results {
		fmt.Fprintf(w, "%d\t%.3e\t%.3e\t%.3f\t%v\n",
			configs[i].Iterations, r.FinalResidual(), r.Metrics["residual"], r.Metrics["saturation"], r.Elapsed.Round(time.Microsecond))
	}
	return w.Flush()
}

func listRuns(cmd *cobra.Command, args []string) error {
	runs, err := storage.New(dataDir).List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tKIND\tTIME\tSTEPS\tDT\tITER\tRESIDUAL")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%.4fs\t%d\t%.3e\n",
			run.ID,
			run.Scenario.Kind,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Steps,
			run.Dt,
			run.Iterations,
			run.Residual,
		)
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	_, residuals, err := st.LoadTrace(args[0])
	if err != nil {
		return err
	}
	if len(residuals) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("kind: %s\n", meta.Scenario.Kind)
	fmt.Printf("samples: %d\n\n", len(residuals))
	fmt.Println(viz.PlotResiduals(residuals, 80, 12, "mean constraint error vs step"))
	fmt.Println()
	fmt.Println(viz.MetricsTable(meta.Metrics))
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	meta, err := storage.New(dataDir).Load(args[0])
	if err != nil {
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func exportJSON(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	times, residuals, err := st.LoadTrace(args[0])
	if err != nil {
		return err
	}

	cfg := &config.Config{Dt: meta.Dt, Steps: meta.Steps, Iterations: meta.Iterations, Workers: meta.Workers, Scenario: meta.Scenario}
	result := &sim.Result{
		Residuals:  residuals,
		Times:      times,
		Metrics:    meta.Metrics,
		StepsTaken: meta.Steps,
	}
	if outFile != "" {
		return storage.ExportJSONFile(outFile, meta.ID, cfg, result)
	}
	return storage.ExportJSON(os.Stdout, meta.ID, cfg, result)
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args[0])
	if err != nil {
		return err
	}
	m, err := viz.NewModel(cfg, frameRate)
	if err != nil {
		return err
	}
	p := tea.NewProgram(m)
	if _, err := p.Run(); err != nil {
		return err
	}
	return nil
}
