package main

import (
	"context"
	"fmt"
	"maps"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"slices"
	"strconv"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/clothsim/internal/analysis"
	"github.com/san-kum/clothsim/internal/automation"
	"github.com/san-kum/clothsim/internal/cloth"
	"github.com/san-kum/clothsim/internal/config"
	"github.com/san-kum/clothsim/internal/export"
	"github.com/san-kum/clothsim/internal/gui"
	"github.com/san-kum/clothsim/internal/metrics"
	"github.com/san-kum/clothsim/internal/server"
	"github.com/san-kum/clothsim/internal/sim"
	"github.com/san-kum/clothsim/internal/storage"
	"github.com/san-kum/clothsim/internal/viz"
	"github.com/spf13/cobra"
)

var (
	dataDir     string
	configFile  string
	preset      string
	frames      int
	sampleEvery int
	columns     int
	rows        int
	spacing     float64
	pinMode     string
	gravity     float64
	damping     float64
	stiffness   float64
	relax       int
	workers     int
	wind        float64
	seed        int64
	cuts        []string
	frameRate   int
	addr        string
	outFile     string
	svgWidth    int
	svgHeight   int
	series      string
	sweepParam  string
	sweepFrom   float64
	sweepTo     float64
	sweepSteps  int
	delta       float64
	trials      int
	numCuts     int
)

// main registers commands and flags and opens the preset picker window when
// no subcommand is given. It exits with status 1 if a command fails.
func main() {
	rootCmd := &cobra.Command{
		Use:          "clothsim",
		Short:        "cuttable verlet cloth simulation",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return gui.RunInteractive()
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".clothsim", "data directory")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a headless simulation and store it",
		Args:  cobra.NoArgs,
		RunE:  runSimulation,
	}
	addClothFlags(runCmd)
	runCmd.Flags().IntVar(&frames, "frames", config.DefaultFrames, "frames to simulate")
	runCmd.Flags().IntVar(&sampleEvery, "sample-every", config.DefaultSampleEvery, "sample metrics every n frames")
	runCmd.Flags().StringArrayVar(&cuts, "cut", nil, "scripted cut frame:x:y (repeatable)")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "simulate in the terminal; click to cut",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}
	addClothFlags(liveCmd)
	liveCmd.Flags().IntVar(&frameRate, "fps", config.DefaultFPS, "frame rate")

	guiCmd := &cobra.Command{
		Use:   "gui",
		Short: "simulate in a window; click to cut",
		Args:  cobra.NoArgs,
		RunE:  runGUI,
	}
	addClothFlags(guiCmd)
	guiCmd.Flags().IntVar(&frameRate, "fps", config.DefaultFPS, "frame rate")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "share one cloth with websocket clients",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
	addClothFlags(serveCmd)
	serveCmd.Flags().StringVar(&addr, "addr", config.DefaultAddr, "listen address")
	serveCmd.Flags().IntVar(&frameRate, "fps", config.DefaultFPS, "simulation tick rate")

	tuiCmd := &cobra.Command{
		Use:   "tui",
		Short: "terminal preset picker",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return viz.RunInteractive()
		},
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot run series",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "sway frequency and series summary",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().StringVar(&series, "series", "trace_x", "series to analyze")

	phaseCmd := &cobra.Command{
		Use:   "phase [run_id]",
		Short: "phase portrait of the tracked particle",
		Args:  cobra.ExactArgs(1),
		RunE:  phasePlot,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export a run to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run series to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}
	exportCSVCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "draw the final cloth, or the tracked particle path, as SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")
	exportSVGCmd.Flags().IntVar(&svgWidth, "width", 800, "image width")
	exportSVGCmd.Flags().IntVar(&svgHeight, "height", 600, "image height")
	exportSVGCmd.Flags().Bool("trace", false, "draw the tracked particle path instead of the cloth")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println("presets:")
			for _, p := range config.ListPresets() {
				fmt.Printf("  %s\n", p)
			}
			return nil
		},
	}

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "benchmark the step across sizes and worker counts",
		Args:  cobra.NoArgs,
		RunE:  benchCloth,
	}
	benchCmd.Flags().IntVar(&frames, "frames", 200, "frames per case")

	compareCmd := &cobra.Command{
		Use:   "compare [preset] [preset] ...",
		Short: "run several presets concurrently and compare metrics",
		Args:  cobra.MinimumNArgs(2),
		RunE:  comparePresets,
	}
	compareCmd.Flags().IntVar(&frames, "frames", config.DefaultFrames, "frames to simulate")

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "sweep a parameter and plot the settled sag",
		Args:  cobra.NoArgs,
		RunE:  sweepParameter,
	}
	addClothFlags(sweepCmd)
	sweepCmd.Flags().StringVar(&sweepParam, "param", "gravity", "parameter to sweep")
	sweepCmd.Flags().Float64Var(&sweepFrom, "from", 1, "first value")
	sweepCmd.Flags().Float64Var(&sweepTo, "to", 6, "last value")
	sweepCmd.Flags().IntVar(&sweepSteps, "steps", 11, "number of values")
	sweepCmd.Flags().IntVar(&frames, "frames", 300, "frames to settle each run")

	sensitivityCmd := &cobra.Command{
		Use:   "sensitivity",
		Short: "track how a small parameter change grows",
		Args:  cobra.NoArgs,
		RunE:  sensitivity,
	}
	addClothFlags(sensitivityCmd)
	sensitivityCmd.Flags().StringVar(&sweepParam, "param", "gravity", "parameter to perturb")
	sensitivityCmd.Flags().Float64Var(&delta, "delta", 1e-6, "perturbation")
	sensitivityCmd.Flags().IntVar(&frames, "frames", 300, "frames to simulate")

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run a scripted sequence of runs from YAML",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}

	monteCarloCmd := &cobra.Command{
		Use:   "montecarlo",
		Short: "cut the cloth at random and count how often it survives",
		Args:  cobra.NoArgs,
		RunE:  monteCarlo,
	}
	addClothFlags(monteCarloCmd)
	monteCarloCmd.Flags().IntVar(&frames, "frames", config.DefaultFrames, "frames per trial")
	monteCarloCmd.Flags().IntVar(&trials, "trials", 50, "number of trials")
	monteCarloCmd.Flags().IntVar(&numCuts, "cuts", 5, "random cuts per trial")

	rootCmd.AddCommand(runCmd, liveCmd, guiCmd, serveCmd, tuiCmd, listCmd, plotCmd, analyzeCmd, phaseCmd,
		exportJSONCmd, exportCSVCmd, exportSVGCmd, presetsCmd, benchCmd, compareCmd, sweepCmd, sensitivityCmd,
		scenarioCmd, monteCarloCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addClothFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	cmd.Flags().IntVar(&columns, "columns", config.DefaultColumns, "particles per row")
	cmd.Flags().IntVar(&rows, "rows", config.DefaultRows, "particles per column")
	cmd.Flags().Float64Var(&spacing, "spacing", config.DefaultSpacing, "rest distance between neighbours")
	cmd.Flags().StringVar(&pinMode, "pin", string(cloth.PinAlternate), "pin mode: alternate, top, corners, none")
	cmd.Flags().Float64Var(&gravity, "gravity", cloth.DefaultGravity, "gravity")
	cmd.Flags().Float64Var(&damping, "damping", cloth.DefaultDamping, "velocity damping")
	cmd.Flags().Float64Var(&stiffness, "stiffness", cloth.DefaultStiffness, "relaxation stiffness in (0,1]")
	cmd.Flags().IntVar(&relax, "relax", cloth.DefaultRelaxIterations, "relaxation passes per step")
	cmd.Flags().IntVar(&workers, "workers", 0, "force pass workers (0 = sequential)")
	cmd.Flags().Float64Var(&wind, "wind", 0, "wind strength (0 = off)")
	cmd.Flags().Int64Var(&seed, "seed", 1, "wind noise seed")
}

// loadConfig starts from the defaults, applies the preset, then the config
// file, then any flag set on the command line.
func loadConfig(cmd *cobra.Command) (*config.Config, string, error) {
	cfg, name := config.DefaultConfig(), "custom"

	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, "", fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
		name = preset
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, "", fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
		name = strings.TrimSuffix(filepath.Base(configFile), filepath.Ext(configFile))
	}

	flags := cmd.Flags()
	if flags.Changed("columns") {
		cfg.Layout.Columns = columns
	}
	if flags.Changed("rows") {
		cfg.Layout.Rows = rows
	}
	if flags.Changed("spacing") {
		cfg.Layout.Spacing = spacing
	}
	if flags.Changed("pin") {
		cfg.Layout.Pin = pinMode
	}
	if flags.Changed("gravity") {
		cfg.Physics.Gravity = gravity
	}
	if flags.Changed("damping") {
		cfg.Physics.Damping = damping
	}
	if flags.Changed("stiffness") {
		cfg.Physics.Stiffness = stiffness
	}
	if flags.Changed("relax") {
		cfg.Physics.RelaxIterations = relax
	}
	if flags.Changed("workers") {
		cfg.Physics.Workers = workers
	}
	if flags.Changed("wind") {
		cfg.Physics.Wind.Strength = wind
	}
	if flags.Changed("seed") {
		cfg.Physics.Wind.Seed = seed
	}
	if flags.Changed("frames") {
		cfg.Run.Frames = frames
	}
	if flags.Changed("sample-every") {
		cfg.Run.SampleEvery = sampleEvery
	}
	if flags.Changed("fps") {
		cfg.View.FPS = frameRate
	}
	if flags.Changed("addr") {
		cfg.View.Addr = addr
	}
	if flags.Changed("cut") {
		for _, raw := range cuts {
			c, err := parseCut(raw)
			if err != nil {
				return nil, "", err
			}
			cfg.Cuts = append(cfg.Cuts, c)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", err
	}
	return cfg, name, nil
}

// parseCut reads "frame:x:y".
func parseCut(raw string) (config.CutConfig, error) {
	parts := strings.Split(raw, ":")
	if len(parts) != 3 {
		return config.CutConfig{}, fmt.Errorf("invalid cut %q, want frame:x:y", raw)
	}
	frame, err := strconv.Atoi(parts[0])
	if err != nil {
		return config.CutConfig{}, fmt.Errorf("invalid cut frame %q: %w", parts[0], err)
	}
	x, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return config.CutConfig{}, fmt.Errorf("invalid cut x %q: %w", parts[1], err)
	}
	y, err := strconv.ParseFloat(parts[2], 64)
	if err != nil {
		return config.CutConfig{}, fmt.Errorf("invalid cut y %q: %w", parts[2], err)
	}
	return config.CutConfig{Frame: frame, X: x, Y: y}, nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, name, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	s, err := automation.NewSimulator(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	fmt.Printf("running %s: %dx%d cloth, %d frames...\n", name, cfg.Layout.Columns, cfg.Layout.Rows, cfg.Run.Frames)
	start := time.Now()

	result, err := s.Run(ctx, automation.SimConfig(cfg))
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	fmt.Printf("completed in %v\n", elapsed)
	for _, e := range result.Errors {
		fmt.Printf("error: %v\n", e)
	}

	runID, err := st.Save(name, cfg, result)
	if err != nil {
		return err
	}

	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("steps: %d\n", result.StepsTaken)
	fmt.Printf("cuts: %d of %d scheduled\n", result.CutsApplied, len(cfg.Cuts))
	fmt.Println("\nmetrics:")
	for _, metric := range slices.Sorted(maps.Keys(result.Metrics)) {
		fmt.Printf("  %s: %.6f\n", metric, result.Metrics[metric])
	}

	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, name, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	return viz.Run(cfg, name)
}

func runGUI(cmd *cobra.Command, args []string) error {
	cfg, name, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	return gui.Run(cfg, name)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	room, err := server.NewRoom(cfg, cfg.View.FPS)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()
	return server.Serve(ctx, cfg.View.Addr, room)
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
	fmt.Fprintln(w, "ID\tNAME\tTIME\tGRID\tFRAMES\tCUTS\tSEVERED")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%dx%d\t%d\t%d\t%d\n",
			run.ID,
			run.Name,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Columns,
			run.Rows,
			run.Steps,
			run.Cuts,
			run.Severed,
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

	frames, data, err := st.LoadSeries(runID)
	if err != nil {
		return err
	}
	if len(frames) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("cloth: %dx%d\n", meta.Columns, meta.Rows)
	fmt.Printf("samples: %d\n\n", len(frames))

	for _, name := range storage.SeriesNames(data) {
		if len(data[name]) < 2 {
			continue
		}
		graph := asciigraph.Plot(data[name],
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(name),
		)
		fmt.Println(graph)
		fmt.Println()
	}
	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	runID := args[0]
	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	_, data, err := st.LoadSeries(runID)
	if err != nil {
		return err
	}

	values, ok := data[series]
	if !ok || len(values) < 4 {
		return fmt.Errorf("series %q missing or too short (have %v)", series, storage.SeriesNames(data))
	}

	fmt.Printf("analysis: %s\n", meta.ID)
	fmt.Printf("series: %s\n\n", series)

	s := analysis.Summarize(values)
	fmt.Printf("min %.4f  max %.4f  mean %.4f  std %.4f  final %.4f\n\n", s.Min, s.Max, s.Mean, s.Std, s.Final)

	ps := analysis.PowerSpectrum(values)
	if len(ps) > 1 {
		graph := asciigraph.Plot(ps,
			asciigraph.Height(15),
			asciigraph.Width(80),
			asciigraph.Caption("power spectrum ("+series+")"),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	dt := meta.TimeStep * float64(max(meta.SampleEvery, 1))
	freq := analysis.DominantFrequency(values, dt)
	fmt.Printf("dominant frequency: %.4f cycles per time unit\n", freq)
	if freq > 0 {
		fmt.Printf("period: %.2f time units (%.1f frames)\n", 1/freq, 1/(freq*meta.TimeStep))
	}
	return nil
}

func phasePlot(cmd *cobra.Command, args []string) error {
	runID := args[0]
	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	_, data, err := st.LoadSeries(runID)
	if err != nil {
		return err
	}
	xs := data["trace_x"]
	if len(xs) == 0 {
		return fmt.Errorf("no trace data to plot")
	}

	fmt.Printf("phase portrait: %s\n", meta.ID)
	fmt.Printf("x-axis: trace_x, y-axis: per-sample displacement\n\n")
	fmt.Print(analysis.NewPhasePortrait(xs, analysis.Displacement(xs)).ToASCII(70, 20))

	fmt.Printf("\nposition: trace_x against trace_y\n\n")
	fmt.Print(analysis.NewPhasePortrait(xs, data["trace_y"]).ToASCII(70, 20))
	return nil
}

// output returns stdout, or the file named by --out.
func output() (*os.File, func() error, error) {
	if outFile == "" {
		return os.Stdout, func() error { return nil }, nil
	}
	f, err := os.Create(outFile)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	run, err := export.LoadRun(storage.New(dataDir), args[0])
	if err != nil {
		return err
	}
	w, done, err := output()
	if err != nil {
		return err
	}
	if err := export.WriteJSON(w, run); err != nil {
		done()
		return err
	}
	return done()
}

func exportCSV(cmd *cobra.Command, args []string) error {
	frames, data, err := storage.New(dataDir).LoadSeries(args[0])
	if err != nil {
		return err
	}
	if len(frames) == 0 {
		return fmt.Errorf("no data to export")
	}
	w, done, err := output()
	if err != nil {
		return err
	}
	if err := storage.WriteSeriesCSV(w, frames, data); err != nil {
		done()
		return err
	}
	return done()
}

func exportSVG(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	trace, _ := cmd.Flags().GetBool("trace")

	var svg string
	if trace {
		_, data, err := st.LoadSeries(args[0])
		if err != nil {
			return err
		}
		svg = export.TraceToSVG(data["trace_x"], data["trace_y"], svgWidth, svgHeight, "#00ff00")
	} else {
		snap, err := st.LoadSnapshot(args[0])
		if err != nil {
			return err
		}
		svg = export.SnapshotToSVG(snap, svgWidth, svgHeight)
	}
	if svg == "" {
		return fmt.Errorf("nothing to draw")
	}

	w, done, err := output()
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, svg); err != nil {
		done()
		return err
	}
	return done()
}

func benchCloth(cmd *cobra.Command, args []string) error {
	frames, _ := cmd.Flags().GetInt("frames")
	sizes := [][2]int{{19, 11}, {40, 25}, {80, 50}, {160, 100}}
	workerCounts := []int{0, 2, runtime.NumCPU()}

	fmt.Printf("benchmarking %d frames per case\n\n", frames)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "GRID\tCONSTRAINTS\tWORKERS\tTIME\tFRAMES/SEC")

	for _, size := range sizes {
		for _, n := range workerCounts {
			params := cloth.DefaultParams()
			params.Workers = n
			c, err := cloth.New(cloth.Layout{Columns: size[0], Rows: size[1], Spacing: 10}, params)
			if err != nil {
				return err
			}

			start := time.Now()
			for i := 0; i < frames; i++ {
				c.Step()
			}
			elapsed := time.Since(start)

			fmt.Fprintf(w, "%dx%d\t%d\t%d\t%v\t%.0f\n",
				size[0], size[1], c.ConstraintCount(), n, elapsed, float64(frames)/elapsed.Seconds())
		}
	}
	return w.Flush()
}

func comparePresets(cmd *cobra.Command, args []string) error {
	jobs := make([]sim.Job, 0, len(args))
	for _, name := range args {
		cfg := config.GetPreset(name)
		if cfg == nil {
			return fmt.Errorf("unknown preset: %s (available: %v)", name, config.ListPresets())
		}
		if cmd.Flags().Changed("frames") {
			cfg.Run.Frames = frames
		}
		s, err := automation.NewSimulator(cfg)
		if err != nil {
			return err
		}
		jobs = append(jobs, sim.Job{Name: name, Simulator: s, Config: automation.SimConfig(cfg)})
	}

	ctx, cancel := signalContext()
	defer cancel()

	start := time.Now()
	results, err := sim.NewEnsemble(runtime.NumCPU(), jobs...).Run(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("compared %d presets in %v\n\n", len(jobs), time.Since(start))

	names := slices.Sorted(maps.Keys(results[0].Metrics))
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PRESET\tSTEPS\tCUTS\t"+strings.ToUpper(strings.Join(names, "\t")))
	for i, res := range results {
		fmt.Fprintf(w, "%s\t%d\t%d", jobs[i].Name, res.StepsTaken, res.CutsApplied)
		for _, name := range names {
			fmt.Fprintf(w, "\t%.4f", res.Metrics[name])
		}
		fmt.Fprintln(w)
	}
	return w.Flush()
}

func builder(cfg *config.Config) analysis.Builder {
	return func() (*cloth.Simulation, error) { return cfg.NewSimulation() }
}

func bottomSag(snap *cloth.Snapshot) float64 {
	sag := metrics.NewSag()
	sag.Observe(snap)
	return sag.Value()
}

func sweepParameter(cmd *cobra.Command, args []string) error {
	cfg, name, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	frames, _ := cmd.Flags().GetInt("frames")

	fmt.Printf("sweeping %s over [%g, %g] on %s, %d frames each...\n\n", sweepParam, sweepFrom, sweepTo, name, frames)
	points, err := analysis.Sweep(builder(cfg), sweepParam, sweepFrom, sweepTo, sweepSteps, frames, bottomSag)
	if err != nil {
		return err
	}

	fmt.Print(analysis.SweepToASCII(points, 60, 15))
	fmt.Println()

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, strings.ToUpper(sweepParam)+"\tSAG")
	for _, p := range points {
		if p.Valid {
			fmt.Fprintf(w, "%.4f\t%.4f\n", p.Param, p.Value)
		} else {
			fmt.Fprintf(w, "%.4f\tdiverged\n", p.Param)
		}
	}
	return w.Flush()
}

func sensitivity(cmd *cobra.Command, args []string) error {
	cfg, name, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	frames, _ := cmd.Flags().GetInt("frames")
	res, err := analysis.Divergence(builder(cfg), sweepParam, delta, frames)
	if err != nil {
		return err
	}
	if len(res.Separation) < 2 {
		return fmt.Errorf("need at least 2 frames")
	}

	fmt.Printf("sensitivity of %s to %s + %g over %d frames\n\n", name, sweepParam, delta, frames)
	graph := asciigraph.Plot(res.Separation,
		asciigraph.Height(12),
		asciigraph.Width(80),
		asciigraph.Caption("rms particle separation"),
	)
	fmt.Println(graph)
	fmt.Printf("\nfinal separation: %.3e\n", res.Separation[len(res.Separation)-1])
	fmt.Printf("growth rate: %.4f per frame\n", res.Rate)
	if res.Rate > 0 {
		fmt.Println("perturbation grows: the cloth amplifies small differences")
	} else {
		fmt.Println("perturbation decays or stays bounded")
	}
	return nil
}

func runScenario(cmd *cobra.Command, args []string) error {
	scenario, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	fmt.Printf("scenario: %s\n", scenario.Name)
	if scenario.Description != "" {
		fmt.Printf("%s\n", scenario.Description)
	}
	fmt.Println()

	results, err := automation.RunScenario(ctx, scenario, st)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STEP\tPRESET\tSTEPS\tCUTS\tSEVERED\tRUN ID")
	for i, r := range results {
		runID := r.RunID
		if runID == "" {
			runID = "-"
		}
		fmt.Fprintf(w, "%d\t%s\t%d\t%d\t%d\t%s\n",
			i+1, r.Name, r.Result.StepsTaken, r.Result.CutsApplied, r.Result.Final.Severed(), runID)
	}
	return w.Flush()
}

func monteCarlo(cmd *cobra.Command, args []string) error {
	cfg, name, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	fmt.Printf("monte carlo on %s: %d trials, %d random cuts each, %d frames\n\n", name, trials, numCuts, cfg.Run.Frames)
	start := time.Now()
	results, err := automation.RunMonteCarlo(ctx, &automation.MonteCarloConfig{
		Base:      cfg,
		NumTrials: trials,
		NumCuts:   numCuts,
		Seed:      cfg.Physics.Wind.Seed,
		Workers:   runtime.NumCPU(),
	})
	if err != nil {
		return err
	}

	severed := make([]float64, len(results))
	for i, r := range results {
		severed[i] = float64(r.Severed)
	}
	s := analysis.Summarize(severed)
	stable, unstable := automation.MonteCarloStats(results)

	fmt.Printf("completed in %v\n", time.Since(start))
	fmt.Printf("stable: %d  unstable: %d\n", stable, unstable)
	fmt.Printf("severed constraints: min %.0f  max %.0f  mean %.1f  std %.1f\n", s.Min, s.Max, s.Mean, s.Std)
	return nil
}
