package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/neurosim/internal/analysis"
	"github.com/san-kum/neurosim/internal/export"
	"github.com/san-kum/neurosim/internal/storage"
	"github.com/spf13/cobra"
)

var (
	plotSVG    string
	plotStates bool
	phaseX     string
	phaseY     string
	phaseSkip  float64
	phaseSVG   string
)

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}
}

func newPlotCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot the control outputs of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	cmd.Flags().BoolVar(&plotStates, "states", false, "plot state channels instead of controls")
	cmd.Flags().StringVar(&plotSVG, "svg", "", "also write the plot to an SVG file")
	return cmd
}

func newAnalyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "rhythm analysis of a run's control outputs",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	cmd.Flags().StringVar(&phaseX, "x", "", "phase portrait x channel, e.g. x0 or u1")
	cmd.Flags().StringVar(&phaseY, "y", "", "phase portrait y channel")
	cmd.Flags().Float64Var(&phaseSkip, "skip", 2.0, "seconds of transient left out of the portrait")
	cmd.Flags().StringVar(&phaseSVG, "svg", "", "write the phase portrait to an SVG file")
	return cmd
}

func newExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run metadata",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}
}

func newExportCSVCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export-csv [run_id] [file]",
		Short: "export a run trace to CSV",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			st := storage.New(cfg.Storage.Dir)
			if err := st.ExportCSV(args[0], args[1]); err != nil {
				return err
			}
			fmt.Printf("exported %s to %s\n", args[0], args[1])
			return nil
		},
	}
}

func newExportJSONCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
}

func newMutationsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mutations [run_id]",
		Short: "list mutations journaled for a run",
		Args:  cobra.ExactArgs(1),
		RunE:  listMutations,
	}
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(cfg.Storage.Dir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tBRAIN\tBODY\tTIME\tDURATION\tDT\tINTEG\tMUT")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%.2fs\t%.4fs\t%s\t%d\n",
			run.ID,
			run.Brain,
			run.Body,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Duration,
			run.Dt,
			run.Integrator,
			run.Mutations,
		)
	}
	return w.Flush()
}

func loadRun(runID string) (*storage.RunMetadata, *storage.Trace, error) {
	st := storage.New(cfg.Storage.Dir)
	meta, err := st.Load(runID)
	if err != nil {
		return nil, nil, err
	}
	trace, err := st.LoadTrace(runID)
	if err != nil {
		return nil, nil, err
	}
	if len(trace.States) == 0 {
		return nil, nil, fmt.Errorf("run %s has no samples", runID)
	}
	return meta, trace, nil
}

var stateCaptions = map[string][]string{
	"pendulum": {"theta (angle)", "omega (angular velocity)"},
	"cartpole": {"cart position", "cart velocity", "pole angle", "pole angular velocity"},
	"crawler":  {"body position", "body velocity"},
}

func caption(body, channel string, i int) string {
	if channel == storage.ChannelState {
		if names := stateCaptions[body]; i < len(names) {
			return names[i]
		}
	}
	return fmt.Sprintf("%s%d", channel, i)
}

func plotRun(cmd *cobra.Command, args []string) error {
	meta, trace, err := loadRun(args[0])
	if err != nil {
		return err
	}

	channel, rows := storage.ChannelControl, trace.Controls
	if plotStates {
		channel, rows = storage.ChannelState, trace.States
	}
	if len(rows) == 0 || len(rows[0]) == 0 {
		return fmt.Errorf("no %s data to plot", channel)
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("brain: %s  body: %s\n", meta.Brain, meta.Body)
	fmt.Printf("samples: %d\n\n", len(rows))

	n := min(len(rows[0]), 6)
	series := make([][]float64, 0, n)
	labels := make([]string, 0, n)
	for i := 0; i < n; i++ {
		data := trace.Channel(channel, i)
		series = append(series, data)
		labels = append(labels, caption(meta.Body, channel, i))

		graph := asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(labels[i]),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	if plotSVG != "" {
		svg := export.SeriesSVG(trace.Times, series, labels, 800, 300)
		if err := os.WriteFile(plotSVG, []byte(svg), 0644); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", plotSVG)
	}
	return nil
}

// parseChannel reads "x2" or "u0".
func parseChannel(s string) (string, int, error) {
	if len(s) < 2 || (s[0] != 'x' && s[0] != 'u') {
		return "", 0, fmt.Errorf("channel %q: expected x<i> or u<i>", s)
	}
	i, err := strconv.Atoi(s[1:])
	if err != nil || i < 0 {
		return "", 0, fmt.Errorf("channel %q: bad index", s)
	}
	return s[:1], i, nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	meta, trace, err := loadRun(args[0])
	if err != nil {
		return err
	}
	if len(trace.Controls) == 0 || len(trace.Controls[0]) == 0 {
		return fmt.Errorf("run %s has no control outputs", meta.ID)
	}

	fmt.Printf("rhythm analysis: %s\n", meta.ID)
	fmt.Printf("brain: %s  body: %s\n\n", meta.Brain, meta.Body)

	ref := trace.Channel(storage.ChannelControl, 0)
	ps := analysis.PowerSpectrum(ref)
	if len(ps) > 8 {
		graph := asciigraph.Plot(ps[:len(ps)/4],
			asciigraph.Height(12),
			asciigraph.Width(80),
			asciigraph.Caption("power spectrum (u0)"),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "CHANNEL\tFREQ (HZ)\tPERIOD (S)\tLAG VS U0")
	for i := range trace.Controls[0] {
		data := trace.Channel(storage.ChannelControl, i)
		freq, err := analysis.DominantFrequency(data, meta.Dt)
		if err != nil {
			fmt.Fprintf(w, "u%d\t-\t-\t%v\n", i, err)
			continue
		}
		period := "-"
		if freq > 0 {
			period = fmt.Sprintf("%.3f", 1/freq)
		}
		lag := "-"
		if i > 0 {
			if l, err := analysis.PhaseLag(ref, data); err == nil {
				lag = fmt.Sprintf("%.3f", l)
			}
		}
		fmt.Fprintf(w, "u%d\t%.3f\t%s\t%s\n", i, freq, period, lag)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if phaseX == "" && phaseY == "" {
		return nil
	}
	return phasePortrait(meta, trace)
}

func phasePortrait(meta *storage.RunMetadata, trace *storage.Trace) error {
	xc, xi, err := parseChannel(defaultString(phaseX, "x0"))
	if err != nil {
		return err
	}
	yc, yi, err := parseChannel(defaultString(phaseY, "x1"))
	if err != nil {
		return err
	}
	xs := trace.Channel(xc, xi)
	ys := trace.Channel(yc, yi)
	if len(xs) == 0 || len(ys) == 0 {
		return fmt.Errorf("run %s has no %s%d or %s%d", meta.ID, xc, xi, yc, yi)
	}

	skip := 0
	if meta.Dt > 0 {
		skip = int(phaseSkip / meta.Dt)
	}
	p := analysis.NewPhasePortrait(xs, ys, skip)
	p.XLabel = caption(meta.Body, xc, xi)
	p.YLabel = caption(meta.Body, yc, yi)

	fmt.Println()
	fmt.Println(p.ASCII(70, 20))

	if phaseSVG != "" {
		svg := export.PortraitSVG(p, 500, 500, "#00ccff")
		if err := os.WriteFile(phaseSVG, []byte(svg), 0644); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", phaseSVG)
	}
	return nil
}

func defaultString(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := storage.New(cfg.Storage.Dir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func exportJSON(cmd *cobra.Command, args []string) error {
	meta, trace, err := loadRun(args[0])
	if err != nil {
		return err
	}
	result := trace.Result()
	result.Metrics = meta.Metrics
	return storage.ExportJSON(os.Stdout, storage.NewExportData(*meta, result))
}

func listMutations(cmd *cobra.Command, args []string) error {
	journal, err := storage.NewJournal(cfg.Storage.Journal, cfg.Storage.JournalPath)
	if err != nil {
		return err
	}
	defer storage.CloseIfSupported(journal)

	ctx := context.Background()
	if err := journal.Init(ctx); err != nil {
		return err
	}
	recs, err := journal.Mutations(ctx, args[0])
	if err != nil {
		return err
	}
	if len(recs) == 0 {
		if cfg.Storage.Journal != "sqlite" {
			fmt.Println("no mutations found (the memory journal does not outlive a run; use --journal sqlite)")
		} else {
			fmt.Println("no mutations found")
		}
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TIME\tOP\tSUBJECT\tRESULT")
	for _, r := range recs {
		result := "applied"
		if r.Error != "" {
			result = "rejected: " + strings.TrimSpace(r.Error)
		}
		fmt.Fprintf(w, "%.3f\t%s\t%s\t%s\n", r.Time, r.Op, r.Subject, result)
	}
	return w.Flush()
}
