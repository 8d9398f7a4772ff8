package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gocarina/gocsv"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/coingas/internal/automation"
	"github.com/san-kum/coingas/internal/config"
	"github.com/san-kum/coingas/internal/experiment"
	"github.com/san-kum/coingas/internal/export"
	"github.com/san-kum/coingas/internal/reference"
	"github.com/san-kum/coingas/internal/sim"
	"github.com/san-kum/coingas/internal/storage"
	"github.com/san-kum/coingas/internal/viz"
	"github.com/spf13/cobra"
)

var (
	dataDir   string
	logLevel  string
	logFormat string

	configFile string
	preset     string
	noSave     bool

	policy        string
	disks         int
	totalEnergy   int
	capacity      int
	radius        float64
	width         float64
	height        float64
	boundary      string
	maxSpeed      float64
	dt            float64
	seed          uint64
	initial       string
	energies      []int
	collisions    int64
	wallClock     time.Duration
	maxSteps      int
	snapshotEvery int64

	numRuns int
	workers int

	sweepParam  string
	sweepValues []int

	plotWidth  int
	plotHeight int
	svgWidth   int
	svgHeight  int

	outCSV  string
	outYAML string
	outSVG  string
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "coingas",
		Short:         "energy exchange in a gas of colliding disks",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".coingas", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "log format (text, json, logfmt)")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run one simulation and save it",
		Args:  cobra.NoArgs,
		RunE:  runSimulation,
	}
	addConfigFlags(runCmd)
	runCmd.Flags().BoolVar(&noSave, "no-save", false, "do not save the run")
	runCmd.Flags().StringVar(&outSVG, "svg", "", "write the final arena as svg")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "watch a simulation in the terminal",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}
	addConfigFlags(liveCmd)

	compareCmd := &cobra.Command{
		Use:   "compare [policy...]",
		Short: "run the same initial disks under several policies",
		RunE:  comparePolicies,
	}
	addConfigFlags(compareCmd)

	ensembleCmd := &cobra.Command{
		Use:   "ensemble",
		Short: "run consecutive seeds in parallel and average them",
		Args:  cobra.NoArgs,
		RunE:  runEnsemble,
	}
	addConfigFlags(ensembleCmd)
	ensembleCmd.Flags().IntVar(&numRuns, "runs", 8, "number of seeds")
	ensembleCmd.Flags().IntVar(&workers, "workers", 0, "parallel workers (0 = one per CPU)")

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "vary one integer parameter and compare against the microstate count",
		Args:  cobra.NoArgs,
		RunE:  runSweep,
	}
	addConfigFlags(sweepCmd)
	sweepCmd.Flags().StringVar(&sweepParam, "param", "capacity", "parameter (disks, total_energy, capacity)")
	sweepCmd.Flags().IntSliceVar(&sweepValues, "values", []int{4, 6, 8}, "values to try")

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run a yaml scenario",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}

	referenceCmd := &cobra.Command{
		Use:   "reference",
		Short: "print the microstate-count occupancy",
		Args:  cobra.NoArgs,
		RunE:  printReference,
	}
	referenceCmd.Flags().IntVar(&disks, "disks", config.DefaultDisks, "number of disks")
	referenceCmd.Flags().IntVar(&totalEnergy, "energy", config.DefaultTotalEnergy, "total energy units")
	referenceCmd.Flags().IntVar(&capacity, "capacity", config.DefaultCapacity, "maximum units per disk")
	referenceCmd.Flags().StringVar(&outCSV, "csv", "", "write the table as csv")
	referenceCmd.Flags().StringVar(&outYAML, "yaml", "", "write the table as yaml")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	showCmd := &cobra.Command{
		Use:   "show [run_id]",
		Short: "show a saved run",
		Args:  cobra.ExactArgs(1),
		RunE:  showRun,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot the running occupancy of a saved run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().IntVar(&plotWidth, "width", 80, "plot width")
	plotCmd.Flags().IntVar(&plotHeight, "height", 12, "plot height")

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export the convergence series as csv",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export metadata and series as json",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "export the convergence series as svg",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().IntVar(&svgWidth, "width", 800, "image width")
	exportSVGCmd.Flags().IntVar(&svgHeight, "height", 400, "image height")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list preset configurations",
		Run: func(cmd *cobra.Command, args []string) {
			for _, name := range config.ListPresets() {
				p := config.GetPreset(name)
				fmt.Printf("  %-18s %s, %d disks, %d units, capacity %d\n",
					name, p.Policy, p.Disks, p.TotalEnergy, p.Capacity)
			}
		},
	}

	policiesCmd := &cobra.Command{
		Use:   "policies",
		Short: "list exchange policies and boundaries",
		Run: func(cmd *cobra.Command, args []string) {
			registry := experiment.NewRegistry()
			fmt.Println("policies:  ", strings.Join(registry.ListPolicies(), ", "))
			fmt.Println("boundaries:", strings.Join(registry.ListBoundaries(), ", "))
		},
	}

	rootCmd.AddCommand(runCmd, liveCmd, compareCmd, ensembleCmd, sweepCmd, scenarioCmd,
		referenceCmd, listCmd, showCmd, plotCmd, exportCSVCmd, exportJSONCmd, exportSVGCmd, presetsCmd, policiesCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func addConfigFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&configFile, "config", "", "config file path (yaml)")
	f.StringVar(&preset, "preset", "", "use preset configuration")
	f.StringVar(&policy, "policy", config.DefaultConfig().Policy, "exchange policy")
	f.IntVar(&disks, "disks", config.DefaultDisks, "number of disks")
	f.IntVar(&totalEnergy, "energy", config.DefaultTotalEnergy, "total energy units")
	f.IntVar(&capacity, "capacity", config.DefaultCapacity, "maximum units per disk")
	f.Float64Var(&radius, "radius", config.DefaultRadius, "disk radius")
	f.Float64Var(&width, "width", config.DefaultWidth, "arena width")
	f.Float64Var(&height, "height", config.DefaultHeight, "arena height")
	f.StringVar(&boundary, "boundary", config.DefaultConfig().Boundary, "boundary (reflect, open)")
	f.Float64Var(&maxSpeed, "max-speed", config.DefaultMaxSpeed, "maximum initial speed per axis")
	f.Float64Var(&dt, "dt", config.DefaultDt, "timestep")
	f.Uint64Var(&seed, "seed", config.DefaultSeed, "random seed")
	f.StringVar(&initial, "initial", config.InitialConcentrated, "initial energies (concentrated, even, explicit)")
	f.IntSliceVar(&energies, "energies", nil, "explicit initial energies, implies --initial explicit")
	f.Int64Var(&collisions, "collisions", config.DefaultCollisions, "collision budget (0 = none)")
	f.DurationVar(&wallClock, "wall-clock", 0, "wall clock budget (0 = none)")
	f.IntVar(&maxSteps, "max-steps", 0, "step budget (0 = none)")
	f.Int64Var(&snapshotEvery, "snapshot-every", 1, "collisions between convergence snapshots")
}

// resolveConfig layers defaults, then the preset, then the config file, then
// the flags the user actually set.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		p := config.GetPreset(preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %s)", preset, strings.Join(config.ListPresets(), ", "))
		}
		cfg = p
	}
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
	}

	f := cmd.Flags()
	if f.Changed("policy") {
		cfg.Policy = policy
	}
	if f.Changed("disks") {
		cfg.Disks = disks
	}
	if f.Changed("energy") {
		cfg.TotalEnergy = totalEnergy
	}
	if f.Changed("capacity") {
		cfg.Capacity = capacity
	}
	if f.Changed("radius") {
		cfg.Radius = radius
	}
	if f.Changed("width") {
		cfg.Arena.Width = width
	}
	if f.Changed("height") {
		cfg.Arena.Height = height
	}
	if f.Changed("boundary") {
		cfg.Boundary = boundary
	}
	if f.Changed("max-speed") {
		cfg.MaxSpeed = maxSpeed
	}
	if f.Changed("dt") {
		cfg.Dt = dt
	}
	if f.Changed("seed") {
		cfg.Seed = seed
	}
	if f.Changed("initial") {
		cfg.Initial = initial
	}
	if f.Changed("energies") {
		cfg.Initial = config.InitialExplicit
		cfg.Energies = energies
	}
	if f.Changed("collisions") {
		cfg.Budget.Collisions = collisions
	}
	if f.Changed("wall-clock") {
		cfg.Budget.WallClock = wallClock
	}
	if f.Changed("max-steps") {
		cfg.Budget.MaxSteps = maxSteps
	}
	if f.Changed("snapshot-every") {
		cfg.Budget.SnapshotEvery = snapshotEvery
	}

	return cfg, cfg.Validate()
}

func newLogger() (*log.Logger, error) {
	level, err := log.ParseLevel(logLevel)
	if err != nil {
		return nil, err
	}
	opts := log.Options{Level: level, ReportTimestamp: true, Prefix: "coingas"}
	switch logFormat {
	case "text":
		opts.Formatter = log.TextFormatter
	case "json":
		opts.Formatter = log.JSONFormatter
	case "logfmt":
		opts.Formatter = log.LogfmtFormatter
	default:
		return nil, fmt.Errorf("unknown log format: %s", logFormat)
	}
	return log.NewWithOptions(os.Stderr, opts), nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	logger, err := newLogger()
	if err != nil {
		return err
	}

	exp, err := experiment.New(cfg, experiment.NewRegistry(), logger)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	fmt.Printf("running %s: %d disks, %d units, capacity %d\n", cfg.Policy, cfg.Disks, cfg.TotalEnergy, cfg.Capacity)
	result, runErr := exp.Run(ctx)
	if result == nil {
		return runErr
	}
	if runErr != nil {
		logger.Warn("run ended early", "reason", result.StopReason, "err", runErr)
	}

	if !noSave {
		st := storage.New(dataDir)
		if err := st.Init(); err != nil {
			return err
		}
		runID, err := st.Save(cfg, result)
		if err != nil {
			return err
		}
		fmt.Printf("run id: %s\n", runID)
	}

	if outSVG != "" {
		svg := export.ArenaToSVG(exp.World().Disks(), cfg.Arena.Width, cfg.Arena.Height, cfg.Capacity)
		if err := os.WriteFile(outSVG, []byte(svg), 0644); err != nil {
			return err
		}
	}

	printSummary(result)
	fmt.Println()
	if err := printOccupancy(cfg, result.Final.Occupancy); err != nil {
		return err
	}
	return runErr
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	exp, err := experiment.New(cfg, experiment.NewRegistry(), nil)
	if err != nil {
		return err
	}
	table, err := reference.Boltzmann(cfg.Disks, cfg.TotalEnergy, cfg.Capacity)
	if err != nil {
		return err
	}
	return viz.Run(exp.Runner(), cfg, table)
}

func comparePolicies(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	logger, err := newLogger()
	if err != nil {
		return err
	}

	registry := experiment.NewRegistry()
	policies := args
	if len(policies) == 0 {
		policies = registry.ListPolicies()
	}

	ctx, cancel := signalContext()
	defer cancel()

	results, err := experiment.Compare(ctx, cfg, policies, registry, logger)
	if err != nil {
		return err
	}

	table, err := reference.Boltzmann(cfg.Disks, cfg.TotalEnergy, cfg.Capacity)
	if err != nil {
		return err
	}

	w := newTable()
	header := []string{"LEVEL", "BOLTZMANN"}
	for _, p := range policies {
		header = append(header, strings.ToUpper(p))
	}
	fmt.Fprintln(w, strings.Join(header, "\t"))
	for k := 0; k <= cfg.Capacity; k++ {
		row := []string{fmt.Sprintf("%d", k), fmt.Sprintf("%.4f", table.At(k))}
		for _, p := range policies {
			row = append(row, fmt.Sprintf("%.4f", results[p].Occupancy(k)))
		}
		fmt.Fprintln(w, strings.Join(row, "\t"))
	}
	w.Flush()

	fmt.Println()
	for _, p := range policies {
		c := reference.Compare(results[p].Final, table)
		fmt.Printf("%-12s collisions=%d  hellinger=%.4f  monotone=%v\n",
			p, results[p].Collisions, c.Hellinger, c.Monotone)
	}
	return nil
}

func runEnsemble(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	logger, err := newLogger()
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	start := time.Now()
	results, err := experiment.Ensemble(ctx, cfg, numRuns, workers, experiment.NewRegistry(), logger)
	if err != nil {
		return err
	}
	fmt.Printf("%d runs of %s from seed %d in %v\n\n", len(results), cfg.Policy, cfg.Seed, time.Since(start).Round(time.Millisecond))

	return printOccupancy(cfg, sim.Mean(results))
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	logger, err := newLogger()
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	results, err := automation.RunSweep(ctx, &automation.Sweep{Base: cfg, Param: sweepParam, Values: sweepValues},
		experiment.NewRegistry(), logger)
	if err != nil {
		return err
	}

	w := newTable()
	fmt.Fprintf(w, "%s\tCOLLISIONS\tMAX_ABS_ERR\tHELLINGER\tMONOTONE\n", strings.ToUpper(sweepParam))
	for _, r := range results {
		fmt.Fprintf(w, "%d\t%d\t%.4f\t%.4f\t%v\n",
			r.Value, r.Result.Collisions, r.Comparison.MaxAbsError, r.Comparison.Hellinger, r.Comparison.Monotone)
	}
	return w.Flush()
}

func runScenario(cmd *cobra.Command, args []string) error {
	scenario, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}
	logger, err := newLogger()
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
		fmt.Println(scenario.Description)
	}
	fmt.Println()

	results, err := automation.RunScenario(ctx, scenario, experiment.NewRegistry(), st, logger)

	w := newTable()
	fmt.Fprintln(w, "STEP\tPOLICY\tCOLLISIONS\tHELLINGER\tRUN")
	for _, r := range results {
		fmt.Fprintf(w, "%s\t%s\t%d\t%.4f\t%s\n",
			r.Name, r.Config.Policy, r.Result.Collisions, r.Comparison.Hellinger, r.RunID)
	}
	w.Flush()
	return err
}

func printReference(cmd *cobra.Command, args []string) error {
	table, err := reference.Boltzmann(disks, totalEnergy, capacity)
	if err != nil {
		return err
	}

	if outCSV != "" {
		f, err := os.Create(outCSV)
		if err != nil {
			return err
		}
		if err := reference.WriteCSV(f, table); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
	}
	if outYAML != "" {
		if err := reference.SaveYAML(outYAML, table); err != nil {
			return err
		}
	}

	fmt.Printf("%d disks, %d units, capacity %d\n\n", table.Disks, table.Total, table.Capacity)
	w := newTable()
	fmt.Fprintln(w, "LEVEL\tOCCUPANCY")
	for k, v := range table.Occupancy {
		fmt.Fprintf(w, "%d\t%.6f\n", k, v)
	}
	return w.Flush()
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

	w := newTable()
	fmt.Fprintln(w, "ID\tPOLICY\tDISKS\tENERGY\tCOLLISIONS\tSTOP\tTIMESTAMP")
	for _, r := range runs {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\t%s\t%s\n",
			r.ID, r.Policy, r.Disks, r.TotalEnergy, r.Collisions, r.StopReason,
			r.Timestamp.Format("2006-01-02 15:04:05"))
	}
	return w.Flush()
}

func showRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("run:        %s\n", meta.ID)
	fmt.Printf("policy:     %s\n", meta.Policy)
	fmt.Printf("disks:      %d (%d units, capacity %d)\n", meta.Disks, meta.TotalEnergy, meta.Capacity)
	fmt.Printf("seed:       %d\n", meta.Seed)
	fmt.Printf("collisions: %d in %d steps (%dms)\n", meta.Collisions, meta.Steps, meta.ElapsedMs)
	fmt.Printf("stopped:    %s\n", meta.StopReason)
	printMetrics(meta.Metrics)
	fmt.Println()

	cfg := meta.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
		cfg.Disks, cfg.TotalEnergy, cfg.Capacity = meta.Disks, meta.TotalEnergy, meta.Capacity
	}
	return printOccupancy(cfg, meta.Occupancy)
}

func plotRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	series, err := st.LoadSeries(args[0])
	if err != nil {
		return err
	}
	if len(series) == 0 {
		return fmt.Errorf("no series to plot")
	}

	levels := len(series[len(series)-1].Occupancy)
	data := make([][]float64, levels)
	for k := range data {
		data[k] = make([]float64, len(series))
		for i, snap := range series {
			if k < len(snap.Occupancy) {
				data[k][i] = snap.Occupancy[k]
			}
		}
	}

	colors := []asciigraph.AnsiColor{asciigraph.Cyan, asciigraph.Magenta, asciigraph.Yellow, asciigraph.Green, asciigraph.Red, asciigraph.Blue}
	seriesColors := make([]asciigraph.AnsiColor, levels)
	for k := range seriesColors {
		seriesColors[k] = colors[k%len(colors)]
	}

	graph := asciigraph.PlotMany(data,
		asciigraph.Height(plotHeight),
		asciigraph.Width(plotWidth),
		asciigraph.SeriesColors(seriesColors...),
		asciigraph.Caption(fmt.Sprintf("running occupancy per level, %d collisions", series[len(series)-1].Collision)),
	)
	fmt.Println(graph)
	return nil
}

func exportCSV(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	series, err := st.LoadSeries(args[0])
	if err != nil {
		return err
	}
	if len(series) == 0 {
		return fmt.Errorf("no data to export")
	}
	return gocsv.Marshal(storage.SeriesRows(series), os.Stdout)
}

func exportJSON(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	series, err := st.LoadSeries(args[0])
	if err != nil {
		return err
	}

	out := struct {
		*storage.RunMetadata
		Series []storage.SeriesRow `json:"series"`
	}{meta, storage.SeriesRows(series)}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func exportSVG(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	series, err := st.LoadSeries(args[0])
	if err != nil {
		return err
	}

	table, err := reference.Boltzmann(meta.Disks, meta.TotalEnergy, meta.Capacity)
	if err != nil {
		return err
	}
	svg := export.SeriesToSVG(series, table, svgWidth, svgHeight)
	if svg == "" {
		return fmt.Errorf("not enough data to plot")
	}
	fmt.Println(svg)
	return nil
}
