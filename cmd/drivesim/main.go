package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/drivesim/drivesim/internal/analysis"
	"github.com/drivesim/drivesim/internal/config"
	"github.com/drivesim/drivesim/internal/env"
	"github.com/drivesim/drivesim/internal/experiment"
	"github.com/drivesim/drivesim/internal/storage"
	"github.com/drivesim/drivesim/internal/viz"
)

var (
	dataDir    string
	configFile string
	preset     string
	motorName  string
	converter  string
	supply     string
	load       string
	solver     string
	reference  string
	tau        float64
	interlock  float64
	steps      int
	episodes   int
	seed       int64
	voltage    float64
	exportPath string
	noPlot     bool
	// Episode and column selectors for stored multi-episode runs
	episodeIdx int
	stateName  string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "drivesim",
		Short: "electric drive simulation lab",
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".drivesim", "data directory")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a drive experiment",
		RunE:  runExperiment,
	}
	addBuildFlags(runCmd)
	runCmd.Flags().IntVar(&episodes, "episodes", config.DefaultEpisodes, "number of episodes")
	runCmd.Flags().StringVar(&exportPath, "export", "", "write the trajectories as json ('-' for stdout)")
	runCmd.Flags().BoolVar(&noPlot, "no-plot", false, "skip the trajectory chart")

	watchCmd := &cobra.Command{
		Use:   "watch",
		Short: "watch a drive live in the terminal",
		RunE:  runWatch,
	}
	addBuildFlags(watchCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "chart a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().IntVar(&episodeIdx, "episode", 0, "episode index")

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "print stored run metadata as json",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "frequency analysis of a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().IntVar(&episodeIdx, "episode", 0, "episode index")
	analyzeCmd.Flags().StringVar(&stateName, "state", "i", "state column to analyze")

	presetsCmd := &cobra.Command{
		Use:   "presets [motor]",
		Short: "list presets for a motor",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			presets := config.ListPresets(args[0])
			if len(presets) == 0 {
				fmt.Printf("no presets for motor: %s\n", args[0])
				return nil
			}
			fmt.Printf("presets for %s:\n", args[0])
			for _, p := range presets {
				fmt.Printf("  %s\n", p)
			}
			return nil
		},
	}

	rootCmd.AddCommand(runCmd, watchCmd, listCmd, plotCmd, exportCmd, analyzeCmd, presetsCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addBuildFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "preset name for the selected motor")
	cmd.Flags().StringVar(&motorName, "motor", "permex_dc", "motor model")
	cmd.Flags().StringVar(&converter, "converter", "finite_1qc", "power converter")
	cmd.Flags().StringVar(&supply, "supply", "ideal", "voltage supply")
	cmd.Flags().StringVar(&load, "load", "polynomial", "mechanical load")
	cmd.Flags().StringVar(&solver, "solver", "euler", "ode solver")
	cmd.Flags().StringVar(&reference, "reference", "wiener", "reference generator")
	cmd.Flags().Float64Var(&tau, "tau", config.DefaultTau, "control cycle time in seconds")
	cmd.Flags().Float64Var(&interlock, "interlock", 0, "converter interlocking time in seconds")
	cmd.Flags().IntVar(&steps, "steps", config.DefaultSteps, "steps per episode")
	cmd.Flags().Int64Var(&seed, "seed", 0, "root seed (0 draws from the os)")
	cmd.Flags().Float64Var(&voltage, "voltage", config.DefaultVoltage, "supply voltage")
}

// buildConfig layers preset, config file and changed flags, in that order.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		cfg = config.GetPreset(motorName, preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets(motorName))
		}
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	if cmd.Flags().Changed("motor") {
		cfg.Motor = motorName
	}
	if cmd.Flags().Changed("converter") {
		cfg.Converter = converter
	}
	if cmd.Flags().Changed("supply") {
		cfg.Supply = supply
	}
	if cmd.Flags().Changed("load") {
		cfg.Load = load
	}
	if cmd.Flags().Changed("solver") {
		cfg.Solver = solver
	}
	if cmd.Flags().Changed("reference") {
		cfg.Reference = reference
	}
	if cmd.Flags().Changed("tau") {
		cfg.Tau = tau
	}
	if cmd.Flags().Changed("interlock") {
		cfg.Interlock = interlock
	}
	if cmd.Flags().Changed("steps") {
		cfg.Steps = steps
	}
	if cmd.Flags().Changed("episodes") {
		cfg.Episodes = episodes
	}
	if cmd.Flags().Changed("seed") {
		cfg.Seed = seed
	}
	if cmd.Flags().Changed("voltage") {
		cfg.SupplyParams.Voltage = voltage
	}

	return cfg, nil
}

func runExperiment(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	var callbacks []env.Callback
	if !noPlot {
		callbacks = append(callbacks, viz.NewTraceCallback(cfg.ReferenceParams.State))
	}

	x, err := experiment.New(cfg, callbacks...)
	if err != nil {
		return err
	}

	fmt.Printf("running %s / %s ...\n", cfg.Motor, cfg.Converter)
	start := time.Now()

	result, err := x.Run(context.Background())
	if err != nil {
		return err
	}

	elapsed := time.Since(start)

	runID, err := st.Save(cfg, result)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("root entropy: %d\n\n", result.RootEntropy)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "EPISODE\tSTEPS\tRETURN\tTERMINATED\tTRACK ERR\tEFFORT\tPEAK")
	for i, ep := range result.Episodes {
		fmt.Fprintf(w, "%d\t%d\t%.3f\t%v\t%.4f\t%.4f\t%.4f\n",
			i, ep.Steps, ep.Return, ep.Terminated,
			ep.Metrics["tracking_error"], ep.Metrics["control_effort"], ep.Metrics["peak"])
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if exportPath == "-" {
		if err := storage.ExportJSONStdout(cfg, result); err != nil {
			return err
		}
	} else if exportPath != "" {
		if err := storage.ExportJSON(exportPath, cfg, result); err != nil {
			return err
		}
		fmt.Printf("exported to %s\n", exportPath)
	}

	if !noPlot {
		fmt.Println()
		x.Environment().Render()
	}

	return nil
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	x, err := experiment.New(cfg)
	if err != nil {
		return err
	}

	title := fmt.Sprintf("%s / %s", cfg.Motor, cfg.Converter)
	m, err := viz.NewModel(x.Environment(), title, cfg.ReferenceParams.State)
	if err != nil {
		return err
	}

	p := tea.NewProgram(m)
	if _, err := p.Run(); err != nil {
		return err
	}
	return nil
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
	fmt.Fprintln(w, "ID\tMOTOR\tCONVERTER\tTIME\tTAU\tEPISODES\tENTROPY")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%.1e\t%d\t%d\n",
			run.ID,
			run.Motor,
			run.Converter,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Tau,
			len(run.Episodes),
			run.RootEntropy,
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

	states, _, references, err := st.LoadStates(runID, episodeIdx)
	if err != nil {
		return err
	}

	if len(states) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("motor: %s\n", meta.Motor)
	fmt.Printf("samples: %d\n\n", len(states))

	fmt.Println(viz.Trajectory(states, references, meta.StateNames))
	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	states, _, _, err := st.LoadStates(runID, episodeIdx)
	if err != nil {
		return err
	}
	if len(states) == 0 {
		return fmt.Errorf("no data to analyze")
	}

	col := -1
	for i, name := range meta.StateNames {
		if name == stateName {
			col = i
			break
		}
	}
	if col < 0 {
		return fmt.Errorf("no state named %q (available: %v)", stateName, meta.StateNames)
	}

	data := make([]float64, len(states))
	for i := range states {
		if col < len(states[i]) {
			data[i] = states[i][col]
		}
	}

	ps := analysis.PowerSpectrum(data)

	fmt.Printf("frequency analysis: %s\n", meta.ID)
	fmt.Printf("state: %s, samples: %d\n\n", stateName, len(data))

	// The switching harmonics of interest sit in the lower quarter.
	plotData := ps
	if len(ps) >= 64 {
		plotData = ps[:len(ps)/4]
	}
	fmt.Println(viz.Trace(plotData, fmt.Sprintf("power spectrum (%s)", stateName)))
	fmt.Println()

	freq := analysis.DominantFrequency(ps, meta.Tau)
	fmt.Printf("dominant frequency: %.3f hz\n", freq)
	if freq > 0 {
		fmt.Printf("period: %.5f s\n", 1.0/freq)
	}

	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}
