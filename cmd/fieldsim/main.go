package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/san-kum/fieldsim/internal/automation"
	"github.com/san-kum/fieldsim/internal/config"
	"github.com/san-kum/fieldsim/internal/experiment"
	"github.com/san-kum/fieldsim/internal/observability"
	"github.com/san-kum/fieldsim/internal/optim"
	"github.com/san-kum/fieldsim/internal/storage"
	"github.com/san-kum/fieldsim/internal/tui"
	"github.com/san-kum/fieldsim/internal/viz"
)

var (
	dataDir    string
	configFile string
	preset     string
	logLevel   string
	logFile    string
	steps      int
	seed       int64
	pointer    string
	bodyCharge float64
	mass       float64
	setParams  []string
	watch      bool
	frameRate  int
	// sweep and optimize
	paramName string
	paramMin  float64
	paramMax  float64
	numSteps  int
	metric    string
	maximize  bool
	workers   int
	// montecarlo
	trials       int
	perturbation float64
	// export-svg
	svgWidth  int
	svgHeight int
	svgStroke string
	outFile   string
)

var logger = zap.NewNop()

func main() {
	rootCmd := &cobra.Command{
		Use:           "fieldsim",
		Short:         "charged body in a static field",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			l, err := observability.NewStderr(config.LoggerConfig{Level: logLevel, Format: "console", File: logFile, MaxSizeMB: 10, MaxBackups: 3})
			if err != nil {
				return err
			}
			logger = l
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			// with no command, open the preset menu
			l, err := liveLogger(config.DefaultConfig())
			if err != nil {
				return err
			}
			defer observability.Sync(l)
			return viz.RunInteractive(l)
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".fieldsim", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "also log to this file (json, rotated)")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a simulation and save it",
		Args:  cobra.NoArgs,
		RunE:  runSimulation,
	}
	configFlags(runCmd)
	runCmd.Flags().BoolVar(&watch, "watch", false, "draw the field while running")
	runCmd.Flags().IntVar(&frameRate, "fps", 30, "frame rate for --watch")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "push the body around with the mouse",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}
	configFlags(liveCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list saved runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a saved run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "statistics, spectrum and phase portrait of a saved run",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}

	divergeCmd := &cobra.Command{
		Use:   "diverge",
		Short: "estimate how fast nearby starts separate",
		Args:  cobra.NoArgs,
		RunE:  divergence,
	}
	configFlags(divergeCmd)
	divergeCmd.Flags().Float64Var(&perturbation, "perturbation", 1e-3, "initial separation")

	scanCmd := &cobra.Command{
		Use:   "scan",
		Short: "scan a parameter and plot where the body settles",
		Args:  cobra.NoArgs,
		RunE:  scanParam,
	}
	configFlags(scanCmd)
	rangeFlags(scanCmd)

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "print run metadata as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export the run trace to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run metadata and trace to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "draw the field and trajectory as SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().IntVar(&svgWidth, "width", 800, "image width")
	exportSVGCmd.Flags().IntVar(&svgHeight, "height", 600, "image height")
	exportSVGCmd.Flags().StringVar(&svgStroke, "stroke", "#00ffcc", "trajectory color")
	exportSVGCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list preset fields and pointer kinds",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println("presets:")
			for _, p := range config.ListPresets() {
				cfg := config.GetPreset(p)
				fmt.Printf("  %-10s %d sources\n", p, len(cfg.Field.Sources))
			}
			fmt.Println("pointers:")
			for _, p := range experiment.NewRegistry().ListPointers() {
				fmt.Printf("  %s\n", p)
			}
			fmt.Println("parameters:")
			for _, p := range config.ParamNames() {
				fmt.Printf("  %s\n", p)
			}
			return nil
		},
	}

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "run once per value of a parameter",
		Args:  cobra.NoArgs,
		RunE:  runSweep,
	}
	configFlags(sweepCmd)
	rangeFlags(sweepCmd)

	optimizeCmd := &cobra.Command{
		Use:   "optimize",
		Short: "grid search one parameter against a metric",
		Args:  cobra.NoArgs,
		RunE:  optimize,
	}
	configFlags(optimizeCmd)
	rangeFlags(optimizeCmd)
	optimizeCmd.Flags().StringVar(&metric, "metric", "containment", "metric to optimize")
	optimizeCmd.Flags().BoolVar(&maximize, "max", false, "maximize instead of minimize")
	optimizeCmd.Flags().IntVar(&workers, "workers", 0, "parallel runs (default: cpu count)")

	monteCarloCmd := &cobra.Command{
		Use:   "montecarlo",
		Short: "perturb the start and count captured bodies",
		Args:  cobra.NoArgs,
		RunE:  monteCarlo,
	}
	configFlags(monteCarloCmd)
	monteCarloCmd.Flags().IntVar(&trials, "trials", 50, "number of trials")
	monteCarloCmd.Flags().Float64Var(&perturbation, "perturbation", 20, "start offset range on each axis")

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run the steps of a scenario file",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "measure step throughput",
		Args:  cobra.NoArgs,
		RunE:  bench,
	}
	configFlags(benchCmd)

	rootCmd.AddCommand(runCmd, liveCmd, listCmd, plotCmd, analyzeCmd, divergeCmd, scanCmd, exportCmd, exportCSVCmd, exportJSONCmd, exportSVGCmd, presetsCmd, sweepCmd, optimizeCmd, monteCarloCmd, scenarioCmd, benchCmd)

	err := rootCmd.Execute()
	if err != nil {
		logger.Error("command failed", zap.Error(err))
		fmt.Fprintln(os.Stderr, "error:", err)
	}
	observability.Sync(logger)
	if err != nil {
		os.Exit(1)
	}
}

func configFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset field")
	cmd.Flags().IntVar(&steps, "steps", config.DefaultSteps, "number of steps")
	cmd.Flags().Int64Var(&seed, "seed", time.Now().UnixNano(), "random seed")
	cmd.Flags().StringVar(&pointer, "pointer", "still", "pointer kind")
	cmd.Flags().Float64Var(&bodyCharge, "charge", 1, "body charge")
	cmd.Flags().Float64Var(&mass, "mass", 1, "body mass")
	cmd.Flags().StringArrayVar(&setParams, "set", nil, "set a parameter, name=value (repeatable)")
}

func rangeFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&paramName, "param", "restitution", "parameter to vary")
	cmd.Flags().Float64Var(&paramMin, "from", 0, "first value")
	cmd.Flags().Float64Var(&paramMax, "to", 1, "last value")
	cmd.Flags().IntVar(&numSteps, "n", 11, "number of values")
}

// loadConfig layers preset, config file and flags. A flag only overrides
// the file when it was given on the command line.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}

	// config file overrides preset
	if configFile != "" {
		fileCfg, err := config.Load(configFile)
		if err != nil {
			return nil, err
		}
		cfg = fileCfg
	}

	flags := cmd.Flags()
	if flags.Changed("steps") {
		cfg.Steps = steps
	}
	if flags.Changed("seed") || cfg.Seed == 0 {
		cfg.Seed = seed
	}
	if flags.Changed("pointer") {
		cfg.Pointer.Kind = pointer
	}
	if flags.Changed("charge") {
		cfg.Body.Charge = bodyCharge
	}
	if flags.Changed("mass") {
		cfg.Body.Mass = mass
	}
	for _, kv := range setParams {
		name, raw, ok := strings.Cut(kv, "=")
		if !ok {
			return nil, fmt.Errorf("--set %q: want name=value", kv)
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("--set %s: %w", name, err)
		}
		if err := cfg.SetParam(name, v); err != nil {
			return nil, err
		}
	}
	if logFile != "" {
		cfg.Logger.File = logFile
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// liveLogger writes to a file only, since the live view owns the terminal.
func liveLogger(cfg *config.Config) (*zap.Logger, error) {
	lc := cfg.Logger
	lc.Level = logLevel
	if lc.File == "" {
		if err := os.MkdirAll(dataDir, 0o755); err != nil {
			return nil, err
		}
		lc.File = filepath.Join(dataDir, "live.log")
	}
	return observability.New(lc, nil)
}

// signalContext is canceled on interrupt, so long runs stop cleanly and
// keep what they computed.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	exp := experiment.New(cfg)
	if err := exp.Setup(logger); err != nil {
		return err
	}

	if watch {
		r := tui.NewLiveRenderer(os.Stdout, cfg.Name, exp.Runner().Simulation().Sources(), cfg.Center(),
			cfg.Field.Radius+cfg.Field.Diameter+cfg.Body.Offset.Vec().Mag(), frameRate)
		exp.Runner().AddObserver(r)
		r.Start()
		defer r.Stop()
	}

	ctx, cancel := signalContext()
	defer cancel()

	fmt.Printf("running %s (%d steps)...\n", cfg.Name, cfg.Steps)
	start := time.Now()

	result, err := exp.Run(ctx)
	if err != nil {
		if result == nil {
			return err
		}
		logger.Warn("run interrupted, saving partial result", zap.Error(err))
	}
	elapsed := time.Since(start)

	runID, err := st.Save(cfg, exp.Runner().Simulation().Sources(), result)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("steps: %d\n", result.StepsTaken)
	for _, e := range result.Errors {
		fmt.Printf("error: %v\n", e)
	}
	fmt.Println("\nmetrics:")
	printMetrics(result.Metrics)
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	l, err := liveLogger(cfg)
	if err != nil {
		return err
	}
	defer observability.Sync(l)
	return viz.RunLive(cfg, l)
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
	fmt.Fprintln(w, "ID\tFIELD\tTIME\tSTEPS\tSOURCES\tPOINTER")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%s\n",
			run.ID,
			run.Name,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Steps,
			len(run.Sources),
			run.Pointer,
		)
	}

	return w.Flush()
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	ctx, cancel := signalContext()
	defer cancel()

	results, err := automation.RunSweep(ctx, &automation.ParameterSweep{
		Base:      cfg,
		ParamName: paramName,
		ParamMin:  paramMin,
		ParamMax:  paramMax,
		NumSteps:  numSteps,
	}, logger)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tFINAL\tSPEED\tCONTAINMENT\tREBOUNDS\n", strings.ToUpper(paramName))
	for _, r := range results {
		fmt.Fprintf(w, "%.4f\t%s\t%.3f\t%.3f\t%.0f\n",
			r.ParamValue, r.Final.Position, r.Final.Speed(), r.Metrics["containment"], r.Metrics["rebounds"])
	}
	return w.Flush()
}

func optimize(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	ctx, cancel := signalContext()
	defer cancel()

	gs := optim.NewGridSearch([]string{paramName}, [][]float64{optim.Linspace(paramMin, paramMax, numSteps)})
	gs.Maximize = maximize
	gs.SetWorkers(workers)

	start := time.Now()
	best, value, evaluated, err := gs.Search(ctx, optim.FromConfig(cfg), metric)
	if err != nil {
		return err
	}

	goal := "min"
	if maximize {
		goal = "max"
	}
	fmt.Printf("evaluated %d of %d in %v\n", evaluated, numSteps, time.Since(start))
	fmt.Printf("%s %s: %.6f at %s=%.4f\n", goal, metric, value, paramName, best[paramName])
	return nil
}

func monteCarlo(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	ctx, cancel := signalContext()
	defer cancel()

	results, err := automation.RunMonteCarlo(ctx, &automation.MonteCarloConfig{
		Base:         cfg,
		Perturbation: perturbation,
		NumTrials:    trials,
		Seed:         cfg.Seed,
	}, logger)
	if err != nil {
		return err
	}

	captured, escaped := automation.MonteCarloStats(results)
	fmt.Printf("trials: %d\n", len(results))
	fmt.Printf("captured: %d (%.1f%%)\n", captured, 100*float64(captured)/float64(max(len(results), 1)))
	fmt.Printf("escaped: %d\n", escaped)
	return nil
}

func runScenario(cmd *cobra.Command, args []string) error {
	sc, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	fmt.Printf("scenario %s: %s\n", sc.Name, sc.Description)
	outcomes, err := automation.RunScenario(ctx, sc, st, logger)
	for _, o := range outcomes {
		if o.Result == nil {
			continue
		}
		id := o.RunID
		if id == "" {
			id = "-"
		}
		fmt.Printf("\n%s (run %s, %d steps)\n", o.Name, id, o.Result.StepsTaken)
		printMetrics(o.Result.Metrics)
	}
	return err
}

func bench(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	fmt.Printf("benchmarking %s\n\n", cfg.Name)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STEPS\tTIME\tSTEPS/SEC")

	for _, n := range []int{1000, 10000, 100000} {
		c := cfg.Clone()
		c.Steps = n
		exp := experiment.New(c)
		if err := exp.Setup(zap.NewNop()); err != nil {
			return err
		}

		start := time.Now()
		result, err := exp.Run(context.Background())
		if err != nil {
			return err
		}
		elapsed := time.Since(start)

		fmt.Fprintf(w, "%d\t%v\t%.0f\n", result.StepsTaken, elapsed, float64(result.StepsTaken)/elapsed.Seconds())
	}

	return w.Flush()
}

func printMetrics(m map[string]float64) {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		fmt.Printf("  %s: %.6f\n", name, m[name])
	}
}
