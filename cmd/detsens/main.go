package main

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/skraemer/detsens/internal/config"
	"github.com/skraemer/detsens/internal/experiment"
	"github.com/skraemer/detsens/internal/hist"
	"github.com/skraemer/detsens/internal/solver"
	"github.com/skraemer/detsens/internal/storage"
	"github.com/skraemer/detsens/internal/viz"
)

var (
	dataDir      string
	family       string
	pdTargets    string
	segments     string
	falseAlarms  string
	sumTwoFths   string
	twoFth       float64
	rsqrScalar   float64
	rsqrSamples  string
	rsqrBinWidth float64
	tdata        float64
	seed         int64
	maxIter      int
	configFile   string
	preset       string
	binWidth     float64
	column       int
	curveMax     float64
	curvePoints  int
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "detsens",
		Short: "detection-statistic sensitivity toolkit",
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".detsens", "data directory")

	solveCmd := &cobra.Command{
		Use:   "solve",
		Short: "solve for detectable SNR at target false-dismissal probability",
		RunE:  runSolve,
	}
	addScenarioFlags(solveCmd)

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "solve with live progress view",
		RunE:  runLive,
	}
	addScenarioFlags(liveCmd)

	histCmd := &cobra.Command{
		Use:   "hist [samples.csv]",
		Short: "bin samples into a histogram and show its statistics",
		Args:  cobra.ExactArgs(1),
		RunE:  runHist,
	}
	histCmd.Flags().Float64Var(&binWidth, "bin-width", 0.01, "default bin width")
	histCmd.Flags().IntVar(&column, "column", 0, "sample column to plot")

	curveCmd := &cobra.Command{
		Use:   "curve",
		Short: "plot achieved false-dismissal probability vs squared SNR",
		RunE:  runCurve,
	}
	addScenarioFlags(curveCmd)
	curveCmd.Flags().Float64Var(&curveMax, "max-rhosqr", 100, "curve upper bound")
	curveCmd.Flags().IntVar(&curvePoints, "points", 60, "curve samples")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot run results",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run metadata",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run results to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRunCSV,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets [family]",
		Short: "list available presets for a statistic family",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			presets := config.ListPresets(args[0])
			if len(presets) == 0 {
				fmt.Printf("no presets for family: %s\n", args[0])
				return nil
			}
			fmt.Printf("presets for %s:\n", args[0])
			for _, p := range presets {
				fmt.Printf("  %s\n", p)
			}
			return nil
		},
	}

	rootCmd.AddCommand(solveCmd, liveCmd, histCmd, curveCmd, listCmd, plotCmd, exportCmd, exportCSVCmd, presetsCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addScenarioFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&family, "family", "chisquared", "statistic family")
	cmd.Flags().StringVar(&pdTargets, "pd", "0.1", "target false-dismissal probabilities (comma list)")
	cmd.Flags().StringVar(&segments, "ns", "20", "segment counts (comma list)")
	cmd.Flags().StringVar(&falseAlarms, "false-alarm", "", "false-alarm probabilities (comma list)")
	cmd.Flags().StringVar(&sumTwoFths, "sum-twof-threshold", "", "summed-2F thresholds (comma list)")
	cmd.Flags().Float64Var(&twoFth, "twof-threshold", 5.2, "per-segment 2F threshold (hough)")
	cmd.Flags().Float64Var(&rsqrScalar, "rsqr", 1.0, "scalar geometric factor R²")
	cmd.Flags().StringVar(&rsqrSamples, "rsqr-samples", "", "CSV of R² samples to bin")
	cmd.Flags().Float64Var(&rsqrBinWidth, "rsqr-bin-width", 0.01, "bin width for R² samples")
	cmd.Flags().Float64Var(&tdata, "tdata", 0, "data span in seconds for depth conversion")
	cmd.Flags().Int64Var(&seed, "seed", time.Now().UnixNano(), "random seed")
	cmd.Flags().IntVar(&maxIter, "max-iter", 1000, "iteration cap per search phase")
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
}

// buildConfig merges preset, config file, and flags into a scenario config.
// CLI flags override the config file, which overrides the preset.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		p := config.GetPreset(family, preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets(family))
		}
		*cfg = *p
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	if cmd.Flags().Changed("family") || cfg.Family == "" {
		cfg.Family = family
	}
	if cmd.Flags().Changed("pd") || len(cfg.PdTarget) == 0 {
		vals, err := parseFloats(pdTargets)
		if err != nil {
			return nil, err
		}
		cfg.PdTarget = vals
	}
	if cmd.Flags().Changed("ns") || len(cfg.Segments) == 0 {
		vals, err := parseFloats(segments)
		if err != nil {
			return nil, err
		}
		cfg.Segments = vals
	}
	if cmd.Flags().Changed("false-alarm") {
		vals, err := parseFloats(falseAlarms)
		if err != nil {
			return nil, err
		}
		cfg.FalseAlarm = vals
	}
	if cmd.Flags().Changed("sum-twof-threshold") {
		vals, err := parseFloats(sumTwoFths)
		if err != nil {
			return nil, err
		}
		cfg.SumTwoFThreshold = vals
	}
	if cmd.Flags().Changed("twof-threshold") {
		cfg.TwoFThreshold = twoFth
	} else if cfg.TwoFThreshold == 0 {
		cfg.TwoFThreshold = twoFth
	}
	if cmd.Flags().Changed("rsqr") {
		cfg.RsqrScalar = rsqrScalar
	}
	if cmd.Flags().Changed("rsqr-samples") {
		cfg.RsqrSamples = rsqrSamples
	}
	if cmd.Flags().Changed("rsqr-bin-width") {
		cfg.RsqrBinWidth = rsqrBinWidth
	}
	if cmd.Flags().Changed("tdata") {
		cfg.Tdata = tdata
	}
	if cmd.Flags().Changed("seed") || cfg.Seed == 0 {
		cfg.Seed = seed
	}
	if cmd.Flags().Changed("max-iter") || cfg.MaxIterations == 0 {
		cfg.MaxIterations = maxIter
	}

	// segment counts broadcast against pd rows
	if len(cfg.Segments) == 1 && len(cfg.PdTarget) > 1 {
		ns := make([]float64, len(cfg.PdTarget))
		for i := range ns {
			ns[i] = cfg.Segments[0]
		}
		cfg.Segments = ns
	}
	return cfg, nil
}

func parseFloats(s string) ([]float64, error) {
	parts := strings.Split(s, ",")
	out := make([]float64, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return nil, fmt.Errorf("bad number %q: %w", p, err)
		}
		out = append(out, v)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("empty number list %q", s)
	}
	return out, nil
}

func runSolve(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	exp, err := experiment.New(cfg)
	if err != nil {
		return err
	}

	fmt.Printf("solving %s sensitivity for %d rows...\n", cfg.Family, len(cfg.PdTarget))
	start := time.Now()

	result, err := exp.Run(context.Background())
	if err != nil {
		return err
	}

	elapsed := time.Since(start)

	runID, err := st.Save(cfg.Family, cfg.Seed, cfg.Tdata, cfg.PdTarget, cfg.Segments, result)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v (%d rounds)\n", elapsed, result.Rounds)
	fmt.Printf("run id: %s\n\n", runID)

	printResultTable(cfg, result)
	return nil
}

func printResultTable(cfg *config.Config, result *solver.Result) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	header := "PD\tNS\tRHOSQR\tRHO\tPD_RHO"
	var depths []float64
	if cfg.Tdata > 0 {
		header += "\tDEPTH"
		depths = solver.Depth(cfg.Tdata, result.Rho)
	}
	fmt.Fprintln(w, header)
	for i := range cfg.PdTarget {
		line := fmt.Sprintf("%.3g\t%.0f\t%.6g\t%.6g\t%.6g",
			cfg.PdTarget[i], cfg.Segments[i], result.RhoSqr[i], result.Rho[i], result.PdRho[i])
		if cfg.Tdata > 0 {
			line += fmt.Sprintf("\t%.3f", depths[i])
		}
		fmt.Fprintln(w, line)
	}
	w.Flush()

	for i, r := range result.Rho {
		if math.IsNaN(r) {
			fmt.Println(viz.Warn(fmt.Sprintf("row %d: target already met at zero SNR", i)))
		}
	}
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	exp, err := experiment.New(cfg)
	if err != nil {
		return err
	}

	m := viz.NewLiveModel(len(cfg.PdTarget))
	p := tea.NewProgram(m)

	exp.OnProgress(func(pr solver.Progress) {
		p.Send(viz.ProgressMsg(pr))
	})

	var result *solver.Result
	var solveErr error
	go func() {
		result, solveErr = exp.Run(context.Background())
		p.Send(viz.DoneMsg{Result: result, Err: solveErr})
	}()

	if _, err := p.Run(); err != nil {
		return err
	}
	if solveErr != nil {
		return solveErr
	}
	if result != nil {
		printResultTable(cfg, result)
	}
	return nil
}

func runHist(cmd *cobra.Command, args []string) error {
	h, err := experiment.LoadSampleHistogram(args[0], binWidth)
	if err != nil {
		return err
	}

	mean, err := hist.Mean(h, column)
	if err != nil {
		return err
	}
	sd, err := hist.StdDev(h, column)
	if err != nil {
		return err
	}
	lo, hi, ok := h.Range(column)
	if !ok {
		return fmt.Errorf("histogram has no finite range")
	}

	fmt.Println(viz.Summary("histogram", [][2]string{
		{"samples", fmt.Sprintf("%.0f", h.TotalCount())},
		{"bins", fmt.Sprintf("%d", h.NumBins(column))},
		{"range", fmt.Sprintf("[%g, %g]", lo, hi)},
		{"mean", fmt.Sprintf("%.6g", mean)},
		{"stddev", fmt.Sprintf("%.6g", sd)},
	}))

	plot, err := viz.PlotMarginal(h, column, "probability density")
	if err != nil {
		return err
	}
	fmt.Println(plot)
	return nil
}

func runCurve(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	if len(cfg.PdTarget) != 1 {
		return fmt.Errorf("curve plots a single row; got %d pd targets", len(cfg.PdTarget))
	}

	exp, err := experiment.New(cfg)
	if err != nil {
		return err
	}

	ys, err := exp.SampleCurve(curveMax, curvePoints)
	if err != nil {
		return err
	}

	fmt.Println(viz.PlotCurve(ys, fmt.Sprintf("achieved false-dismissal vs rhosqr (0..%g)", curveMax)))
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
	fmt.Fprintln(w, "ID\tFAMILY\tTIME\tROWS\tROUNDS")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\n",
			run.ID,
			run.Family,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Rows,
			run.Rounds,
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

	rows, err := st.LoadRows(runID)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("family: %s\n", meta.Family)
	fmt.Printf("rows: %d\n\n", len(rows))

	// degenerate rows carry NaN and cannot be plotted
	var rho, depth []float64
	for _, r := range rows {
		if math.IsNaN(r.Rho) {
			continue
		}
		rho = append(rho, r.Rho)
		depth = append(depth, r.Depth)
	}
	if len(rho) == 0 {
		return fmt.Errorf("run %s has no solved rows to plot", runID)
	}
	fmt.Println(viz.PlotCurve(rho, "detectable rho per row"))

	if meta.Tdata > 0 {
		fmt.Println(viz.PlotCurve(depth, "sensitivity depth per row"))
	}
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func exportRunCSV(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	return st.ExportCSV(args[0], os.Stdout)
}
