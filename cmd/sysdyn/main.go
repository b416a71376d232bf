package main

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"

	"github.com/san-kum/sysdyn/internal/config"
	"github.com/san-kum/sysdyn/internal/models"
	"github.com/san-kum/sysdyn/internal/storage"
	"github.com/san-kum/sysdyn/internal/sysdyn"
	"github.com/san-kum/sysdyn/internal/viz"
)

var (
	dataDir    string
	dt         float64
	steps      int
	integrator string
	overrides  []string
	configFile string
	preset     string
	showPlots  bool
	maxPlots   int
	// sweep
	sweepVar     string
	sweepFrom    float64
	sweepTo      float64
	sweepSamples int
	outFile      string
	// plot/export
	plotVar string
	// live
	frameRate int
)

func main() {
	slog.SetDefault(slog.New(
		tint.NewHandler(os.Stderr, &tint.Options{
			Level:      slog.LevelInfo,
			TimeFormat: time.Kitchen,
		}),
	))

	rootCmd := &cobra.Command{
		Use:   "sysdyn",
		Short: "system dynamics simulation lab",
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".sysdyn", "data directory")

	runCmd := &cobra.Command{
		Use:   "run [model]",
		Short: "run a simulation",
		Args:  cobra.ExactArgs(1),
		RunE:  runSimulation,
	}
	runCmd.Flags().Float64Var(&dt, "dt", sysdyn.DefaultDt, "time increment")
	runCmd.Flags().IntVar(&steps, "steps", sysdyn.DefaultTimeSteps, "number of time steps")
	runCmd.Flags().StringVar(&integrator, "integrator", sysdyn.DefaultMethod, "integration method (euler|rk4)")
	runCmd.Flags().StringArrayVar(&overrides, "set", nil, "initial value override, name=value (repeatable)")
	runCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	runCmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	runCmd.Flags().BoolVar(&showPlots, "plot", false, "plot results after the run")
	runCmd.Flags().IntVar(&maxPlots, "max-plots", 6, "maximum charts to print with --plot")

	sweepCmd := &cobra.Command{
		Use:   "sweep [model]",
		Short: "sensitivity analysis over one variable's initial value",
		Args:  cobra.ExactArgs(1),
		RunE:  runSweep,
	}
	sweepCmd.Flags().Float64Var(&dt, "dt", sysdyn.DefaultDt, "time increment")
	sweepCmd.Flags().IntVar(&steps, "steps", sysdyn.DefaultTimeSteps, "number of time steps")
	sweepCmd.Flags().StringVar(&integrator, "integrator", sysdyn.DefaultMethod, "integration method (euler|rk4)")
	sweepCmd.Flags().StringVar(&sweepVar, "var", "", "variable to sweep (required)")
	sweepCmd.Flags().Float64Var(&sweepFrom, "from", 0, "low end of the sampled range")
	sweepCmd.Flags().Float64Var(&sweepTo, "to", 1, "high end of the sampled range")
	sweepCmd.Flags().IntVar(&sweepSamples, "samples", 10, "number of samples")
	sweepCmd.Flags().StringVar(&outFile, "out", "", "write sweep JSON to file instead of a summary")
	_ = sweepCmd.MarkFlagRequired("var")

	liveCmd := &cobra.Command{
		Use:   "live [model]",
		Short: "run with live visualization",
		Args:  cobra.ExactArgs(1),
		RunE:  runLive,
	}
	liveCmd.Flags().Float64Var(&dt, "dt", sysdyn.DefaultDt, "time increment")
	liveCmd.Flags().IntVar(&steps, "steps", 200, "number of time steps")
	liveCmd.Flags().StringVar(&integrator, "integrator", sysdyn.DefaultMethod, "integration method (euler|rk4)")
	liveCmd.Flags().StringArrayVar(&overrides, "set", nil, "initial value override, name=value (repeatable)")
	liveCmd.Flags().IntVar(&frameRate, "fps", 10, "steps per second")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringVar(&plotVar, "var", "", "plot a single variable")
	plotCmd.Flags().IntVar(&maxPlots, "max-plots", 6, "maximum charts to print")

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export a stored run as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}
	exportCmd.Flags().StringVar(&outFile, "out", "", "output path (default stdout)")

	modelsCmd := &cobra.Command{
		Use:   "models",
		Short: "list built-in models",
		Run: func(cmd *cobra.Command, args []string) {
			for _, name := range models.List() {
				fmt.Println(name)
			}
		},
	}

	presetsCmd := &cobra.Command{
		Use:   "presets [model]",
		Short: "list available presets for a model",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			presets := config.ListPresets(args[0])
			if len(presets) == 0 {
				fmt.Printf("no presets for model: %s\n", args[0])
				return nil
			}
			fmt.Printf("presets for %s:\n", args[0])
			for _, p := range presets {
				fmt.Printf("  %s\n", p)
			}
			return nil
		},
	}

	rootCmd.AddCommand(runCmd, sweepCmd, liveCmd, listCmd, plotCmd, exportCmd, modelsCmd, presetsCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// resolveConfig merges preset, config file, and flags (flags win) into
// one run configuration for the named model.
func resolveConfig(cmd *cobra.Command, model string) (*config.Config, error) {
	cfg := config.DefaultConfig()
	cfg.Model = model

	if preset != "" {
		p := config.GetPreset(model, preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets(model))
		}
		*cfg = *p
	}

	if configFile != "" {
		fileCfg, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		*cfg = *fileCfg
		cfg.Model = model
	}

	if cmd.Flags().Changed("dt") {
		cfg.Dt = dt
	}
	if cmd.Flags().Changed("steps") {
		cfg.Steps = steps
	}
	if cmd.Flags().Changed("integrator") {
		cfg.Integrator = integrator
	}

	if cfg.Overrides == nil {
		cfg.Overrides = map[string]float64{}
	}
	for _, o := range overrides {
		name, value, err := parseOverride(o)
		if err != nil {
			return nil, err
		}
		cfg.Overrides[name] = value
	}

	return cfg, nil
}

func parseOverride(s string) (string, float64, error) {
	name, raw, ok := strings.Cut(s, "=")
	if !ok {
		return "", 0, fmt.Errorf("invalid override %q, want name=value", s)
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return "", 0, fmt.Errorf("invalid override %q: %w", s, err)
	}
	return name, value, nil
}

func buildSimulation(cmd *cobra.Command, model string) (*sysdyn.Simulation, *config.Config, error) {
	cfg, err := resolveConfig(cmd, model)
	if err != nil {
		return nil, nil, err
	}

	spec, err := models.Get(model)
	if err != nil {
		return nil, nil, err
	}
	if err := cfg.ApplyOverrides(spec); err != nil {
		return nil, nil, err
	}

	sim, err := sysdyn.New(spec, cfg.RunConfig())
	if err != nil {
		return nil, nil, err
	}
	return sim, cfg, nil
}

func runSimulation(cmd *cobra.Command, args []string) error {
	model := args[0]

	sim, cfg, err := buildSimulation(cmd, model)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	start := time.Now()
	sim.Run()
	elapsed := time.Since(start)

	runID, err := st.Save(model, cfg.Integrator, cfg.Dt, cfg.Steps, sim.TimeSeries(), sim.Results())
	if err != nil {
		return err
	}

	slog.Info("run complete",
		"model", model,
		"steps", sim.CurrentStep(),
		"elapsed", elapsed,
		"run_id", runID,
	)

	results := sim.Results()
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "VARIABLE\tINITIAL\tFINAL")
	for _, name := range sim.Names() {
		series, ok := results[name]
		if !ok {
			continue
		}
		fmt.Fprintf(w, "%s\t%.6f\t%.6f\n", name, series[0], series[len(series)-1])
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if showPlots {
		fmt.Println()
		fmt.Print(viz.PlotAll(results, maxPlots))
	}

	return nil
}

func runSweep(cmd *cobra.Command, args []string) error {
	model := args[0]

	cfg, err := resolveConfig(cmd, model)
	if err != nil {
		return err
	}
	spec, err := models.Get(model)
	if err != nil {
		return err
	}
	if err := cfg.ApplyOverrides(spec); err != nil {
		return err
	}

	start := time.Now()
	sweep, err := sysdyn.Sensitivity(spec, cfg.RunConfig(), sweepVar, sweepFrom, sweepTo, sweepSamples)
	if err != nil {
		return err
	}

	slog.Info("sweep complete",
		"model", model,
		"variable", sweepVar,
		"samples", len(sweep.Samples),
		"elapsed", time.Since(start),
	)

	if outFile != "" {
		return storage.ExportSweepJSON(outFile, model, sweep)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tFINAL %s\n", "SAMPLE", sweepVar)
	for _, s := range sweep.Samples {
		series := sweep.Runs[s][sweepVar]
		fmt.Fprintf(w, "%.6f\t%.6f\n", s, series[len(series)-1])
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Println()
	fmt.Println(viz.PlotSweep(sweep.Samples, sweep.Runs, sweepVar))
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	model := args[0]

	sim, _, err := buildSimulation(cmd, model)
	if err != nil {
		return err
	}
	return viz.RunLive(sim, model, frameRate)
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
	fmt.Fprintln(w, "ID\tMODEL\tTIME\tSTEPS\tDT\tINTEG\tVARS")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%.4f\t%s\t%d\n",
			run.ID,
			run.Model,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Steps,
			run.Dt,
			run.Integrator,
			len(run.Variables),
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
	_, series, err := st.LoadSeries(runID)
	if err != nil {
		return err
	}
	if len(series) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("model: %s\n\n", meta.Model)

	if plotVar != "" {
		data, ok := series[plotVar]
		if !ok {
			return fmt.Errorf("no series for variable %q", plotVar)
		}
		fmt.Println(viz.Plot(data, plotVar))
		return nil
	}

	fmt.Print(viz.PlotAll(series, maxPlots))
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	times, series, err := st.LoadSeries(runID)
	if err != nil {
		return err
	}

	return storage.ExportJSON(outFile, meta.Model, meta.Integrator, meta.Dt, meta.Steps, times, series)
}
