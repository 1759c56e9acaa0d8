package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/san-kum/monodsim/internal/chart"
	"github.com/san-kum/monodsim/internal/config"
	"github.com/san-kum/monodsim/internal/dynamo"
	"github.com/san-kum/monodsim/internal/experiment"
	"github.com/san-kum/monodsim/internal/kinetics"
	"github.com/san-kum/monodsim/internal/logging"
	"github.com/san-kum/monodsim/internal/optim"
	"github.com/san-kum/monodsim/internal/storage"
	"github.com/san-kum/monodsim/internal/tui"
	"github.com/san-kum/monodsim/internal/watch"
)

var (
	dataDir  string
	logLevel string
	verbose  bool

	flags runFlags

	outFile   string
	staticOut string
	saveRun   bool
	watchCfg bool
	jsonOut  bool

	imageDir    string
	chartWidth  int
	chartHeight int

	log = defaultLogger()
)

func defaultLogger() zerolog.Logger {
	l, _ := logging.Stderr("info", false)
	return l
}

// main wires the commands. With no subcommand it draws the reference culture
// in the terminal.
func main() {
	rootCmd := &cobra.Command{
		Use:   "monodsim",
		Short: "microbial growth simulation with Monod kinetics",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			l, err := logging.Stderr(logLevel, verbose)
			if err != nil {
				return err
			}
			log = l
			return nil
		},
		RunE:          runStatic,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".monodsim", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.Flags().StringVar(&staticOut, "out", "", "also save the reference chart with grid and dashed substrate line (.png, .svg, .pdf)")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a simulation",
		Args:  cobra.NoArgs,
		RunE:  runSimulation,
	}
	flags.register(runCmd)
	runCmd.Flags().StringVar(&outFile, "out", "", "save the chart image (.png, .svg, .pdf)")
	runCmd.Flags().BoolVar(&saveRun, "save", false, "store the run in the data directory")
	runCmd.Flags().BoolVar(&watchCfg, "watch", false, "re-run whenever --config changes")
	runCmd.Flags().BoolVar(&jsonOut, "json", false, "print the trajectory as JSON instead of a chart")
	runCmd.Flags().IntVar(&chartWidth, "width", 80, "terminal chart width")
	runCmd.Flags().IntVar(&chartHeight, "height", 20, "terminal chart height")

	tuiCmd := &cobra.Command{
		Use:   "tui",
		Short: "interactive parameter explorer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.build(cmd)
			if err != nil {
				return err
			}
			return tui.RunInteractive(cfg, tui.Options{ImageDir: imageDir})
		},
	}
	tuiCmd.Flags().StringVar(&flags.preset, "preset", "", "start from a preset")
	tuiCmd.Flags().StringVar(&flags.configFile, "config", "", "start from a config file (yaml or toml)")
	tuiCmd.Flags().StringVar(&imageDir, "image-dir", ".", "directory for saved charts")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringVar(&outFile, "out", "", "save the chart image instead of printing it")
	plotCmd.Flags().IntVar(&chartWidth, "width", 80, "terminal chart width")
	plotCmd.Flags().IntVar(&chartHeight, "height", 20, "terminal chart height")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export a stored run to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVar(&outFile, "out", "", "output file (default stdout)")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tMU_MAX\tKS\tYXS\tX0\tS0\tHORIZON\tDESCRIPTION")
			for _, name := range config.ListPresets() {
				p := config.Presets[name]
				fmt.Fprintf(w, "%s\t%g\t%g\t%g\t%g\t%g\t%g\t%s\n",
					name, p.Params.MuMax, p.Params.Ks, p.Params.Yxs,
					p.Initial.X0, p.Initial.S0, p.Horizon, p.Description)
			}
			return w.Flush()
		},
	}

	compareCmd := &cobra.Command{
		Use:   "compare [mu_max...]",
		Short: "compare growth for several mu_max values",
		RunE:  compareRates,
	}
	compareCmd.Flags().StringVar(&flags.preset, "preset", "", "base preset")
	compareCmd.Flags().StringVar(&flags.configFile, "config", "", "base config file (yaml or toml)")

	rootCmd.AddCommand(runCmd, tuiCmd, listCmd, plotCmd, exportJSONCmd, presetsCmd, compareCmd)

	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("monodsim failed")
		if errors.Is(err, context.Canceled) {
			os.Exit(130)
		}
		os.Exit(1)
	}
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func runStatic(cmd *cobra.Command, args []string) error {
	return renderStatic(cmd.Context(), os.Stdout, staticOut)
}

// renderStatic draws the reference culture. asciigraph has no grid or dash
// styles, so the full figure is only written when out is set.
func renderStatic(ctx context.Context, w io.Writer, out string) error {
	traj, err := experiment.Run(ctx, config.DefaultConfig())
	if err != nil {
		return err
	}
	labels := chart.DefaultLabels()
	graph, err := chart.Terminal(traj, labels, 80, 20)
	if err != nil {
		return err
	}
	fmt.Fprintln(w, graph)

	if out == "" {
		return nil
	}
	if err := chart.Save(out, traj, labels); err != nil {
		return err
	}
	log.Info().Str("path", out).Msg("chart saved")
	return nil
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := flags.build(cmd)
	if err != nil {
		return err
	}
	if watchCfg && flags.configFile == "" {
		return fmt.Errorf("--watch needs --config")
	}

	ctx, cancel := signalContext()
	defer cancel()

	if err := simulate(ctx, cfg); err != nil {
		if !watchCfg {
			return err
		}
		log.Error().Err(err).Msg("run failed")
	}
	if !watchCfg {
		return nil
	}

	w := watch.New(flags.configFile, func(loaded *config.Config, err error) {
		if err != nil {
			return
		}
		next, err := flags.overlay(cmd, loaded)
		if err != nil {
			log.Error().Err(err).Msg("invalid config")
			return
		}
		if err := simulate(ctx, next); err != nil {
			log.Error().Err(err).Msg("run failed")
		}
	}, log)
	return w.Run(ctx)
}

// simulate runs cfg once and reports it the way the run flags ask.
func simulate(ctx context.Context, cfg *config.Config) error {
	log.Debug().
		Float64("mu_max", cfg.Params.MuMax).
		Float64("ks", cfg.Params.Ks).
		Float64("yxs", cfg.Params.Yxs).
		Float64("x0", cfg.Initial.X0).
		Float64("s0", cfg.Initial.S0).
		Float64("horizon", cfg.Horizon).
		Str("integrator", cfg.Integrator).
		Msg("running simulation")

	start := time.Now()
	traj, err := experiment.Run(ctx, cfg)
	if err != nil {
		var simErr *dynamo.SimulationError
		if errors.As(err, &simErr) {
			log.Error().Int("step", simErr.Step).Float64("t", simErr.Time).Msg("integration failed")
		}
		return err
	}
	log.Info().
		Dur("elapsed", time.Since(start)).
		Int("steps", traj.Steps).
		Int("rejected", traj.Rejected).
		Msg("simulation finished")

	if jsonOut {
		x, s := kinetics.Split(traj)
		data := storage.ExportData{
			RunMetadata: storage.RunMetadata{
				Timestamp:  start,
				Params:     cfg.Params,
				Initial:    cfg.Initial,
				Horizon:    cfg.Horizon,
				Samples:    cfg.Samples,
				Integrator: cfg.Integrator,
				Tolerance:  cfg.Solver.Tolerance,
				Steps:      traj.Steps,
				Rejected:   traj.Rejected,
				Metrics:    traj.Metrics,
			},
			Times:     traj.Times,
			Biomass:   x,
			Substrate: s,
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(data); err != nil {
			return err
		}
	} else {
		graph, err := chart.Terminal(traj, chart.DefaultLabels(), chartWidth, chartHeight)
		if err != nil {
			return err
		}
		fmt.Println(graph)
		printMetrics(traj.Metrics)
	}

	if outFile != "" {
		if err := chart.Save(outFile, traj, chart.DefaultLabels()); err != nil {
			return err
		}
		log.Info().Str("path", outFile).Msg("chart saved")
	}

	if saveRun {
		st := storage.New(dataDir)
		if err := st.Init(); err != nil {
			return err
		}
		runID, err := st.Save(cfg, traj)
		if err != nil {
			return err
		}
		log.Info().Str("run_id", runID).Msg("run stored")
	}
	return nil
}

var metricOrder = []string{"final_biomass", "plateau", "peak_productivity", "time_to_90pct", "depletion_time", "yield_drift"}

func printMetrics(m map[string]float64) {
	fmt.Println("\nmetrics:")
	for _, name := range metricOrder {
		val, ok := m[name]
		if !ok {
			continue
		}
		fmt.Printf("  %-18s %s\n", name, formatMetric(name, val))
	}
}

func formatMetric(name string, v float64) string {
	switch name {
	case "time_to_90pct", "depletion_time":
		if v < 0 {
			return "never"
		}
		return fmt.Sprintf("%.2f h", v)
	case "yield_drift":
		return fmt.Sprintf("%.2e", v)
	}
	return fmt.Sprintf("%.4f", v)
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
	fmt.Fprintln(w, "ID\tTIME\tMU_MAX\tKS\tYXS\tX0\tS0\tHORIZON\tINTEG\tFINAL_X")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%g\t%g\t%g\t%g\t%g\t%gh\t%s\t%.3f\n",
			run.ID,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Params.MuMax,
			run.Params.Ks,
			run.Params.Yxs,
			run.Initial.X0,
			run.Initial.S0,
			run.Horizon,
			run.Integrator,
			run.Metrics["final_biomass"],
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

	traj, err := st.LoadTrajectory(runID)
	if err != nil {
		return err
	}

	if outFile != "" {
		if err := chart.Save(outFile, traj, chart.DefaultLabels()); err != nil {
			return err
		}
		log.Info().Str("run_id", meta.ID).Str("path", outFile).Msg("chart saved")
		return nil
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("mu_max=%g ks=%g yxs=%g x0=%g s0=%g\n",
		meta.Params.MuMax, meta.Params.Ks, meta.Params.Yxs, meta.Initial.X0, meta.Initial.S0)
	fmt.Printf("samples: %d\n\n", traj.Len())

	graph, err := chart.Terminal(traj, chart.DefaultLabels(), chartWidth, chartHeight)
	if err != nil {
		return err
	}
	fmt.Println(graph)
	printMetrics(meta.Metrics)
	return nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)

	if outFile == "" {
		return st.ExportJSON(os.Stdout, args[0])
	}

	f, err := os.Create(outFile)
	if err != nil {
		return err
	}
	if err := st.ExportJSON(f, args[0]); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	log.Info().Str("run_id", args[0]).Str("path", outFile).Msg("run exported")
	return nil
}

func compareRates(cmd *cobra.Command, args []string) error {
	base, err := flags.build(cmd)
	if err != nil {
		return err
	}

	rates := []float64{0.2, 0.4, 0.8}
	if len(args) > 0 {
		rates = rates[:0]
		for _, a := range args {
			v, err := strconv.ParseFloat(a, 64)
			if err != nil {
				return fmt.Errorf("invalid mu_max %q: %w", a, err)
			}
			rates = append(rates, v)
		}
	}

	sweep, err := optim.NewSweep([]string{"mu_max"}, [][]float64{rates})
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	points, err := sweep.Run(ctx, base)
	if err != nil {
		return err
	}

	fmt.Printf("comparing mu_max (ks=%g, yxs=%g, x0=%g, s0=%g, horizon=%gh)\n\n",
		base.Params.Ks, base.Params.Yxs, base.Initial.X0, base.Initial.S0, base.Horizon)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "MU_MAX\tPLATEAU\tFINAL_X\tT90\tDEPLETION")
	for _, p := range points {
		if p.Err != nil {
			fmt.Fprintf(w, "%g\terror: %v\t\t\t\n", p.Params["mu_max"], p.Err)
			continue
		}
		fmt.Fprintf(w, "%g\t%.3f\t%.3f\t%s\t%s\n",
			p.Params["mu_max"],
			p.Metrics["plateau"],
			p.Metrics["final_biomass"],
			formatMetric("time_to_90pct", p.Metrics["time_to_90pct"]),
			formatMetric("depletion_time", p.Metrics["depletion_time"]),
		)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if best, ok := optim.Best(points, "time_to_90pct"); ok {
		fmt.Printf("\nfastest to 90%% plateau: mu_max=%g (%s)\n",
			best.Params["mu_max"], formatMetric("time_to_90pct", best.Metrics["time_to_90pct"]))
	}
	return nil
}
