package main

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/san-kum/neurosim/internal/brain"
	"github.com/san-kum/neurosim/internal/config"
	"github.com/san-kum/neurosim/internal/metrics"
	"github.com/san-kum/neurosim/internal/schedule"
	"github.com/spf13/cobra"
)

var (
	dataDir     string
	configFile  string
	logLevel    string
	logFormat   string
	journalKind string
	journalPath string

	// cfg is the loaded config file, or the defaults.
	cfg *config.Config

	dt           float64
	duration     float64
	seed         int64
	integrator   string
	body         string
	preset       string
	schedulePath string
	fitnessSpec  string
	initState    []float64
	bodyParams   []string
	brainParams  []string
)

func main() {
	rootCmd := &cobra.Command{
		Use:               "neurosim",
		Short:             "neural controller lab for simulated robots",
		SilenceUsage:      true,
		PersistentPreRunE: setup,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&dataDir, "data", config.DefaultDataDir, "data directory")
	pf.StringVar(&configFile, "config", "", "config file path (yaml)")
	pf.StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	pf.StringVar(&logFormat, "log-format", "text", "log format (text, json)")
	pf.StringVar(&journalKind, "journal", "memory", "mutation journal (memory, sqlite)")
	pf.StringVar(&journalPath, "journal-path", "", "sqlite journal file (default <data>/journal.db)")

	rootCmd.AddCommand(
		newRunCmd(),
		newLiveCmd(),
		newListCmd(),
		newPlotCmd(),
		newAnalyzeCmd(),
		newExportCmd(),
		newExportCSVCmd(),
		newExportJSONCmd(),
		newMutationsCmd(),
		newInspectCmd(),
		newPresetsCmd(),
		newEvolveCmd(),
		newSweepCmd(),
		newMonteCarloCmd(),
		newBenchCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// setup loads the config file, lets explicitly set flags override it and
// installs the default logger.
func setup(cmd *cobra.Command, _ []string) error {
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	} else {
		cfg = config.DefaultConfig()
	}

	flags := cmd.Flags()
	if flags.Changed("data") || cfg.Storage.Dir == "" {
		cfg.Storage.Dir = dataDir
	}
	if flags.Changed("journal") {
		cfg.Storage.Journal = journalKind
	}
	if flags.Changed("journal-path") {
		cfg.Storage.JournalPath = journalPath
	}
	if cfg.Storage.JournalPath == "" {
		cfg.Storage.JournalPath = cfg.Storage.Dir + string(os.PathSeparator) + "journal.db"
	}
	if flags.Changed("log-level") || cfg.Log.Level == "" {
		cfg.Log.Level = logLevel
	}
	if flags.Changed("log-format") || cfg.Log.Format == "" {
		cfg.Log.Format = logFormat
	}

	slog.SetDefault(newLogger(cfg.Log))
	return nil
}

func newLogger(lc config.LogConfig) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(lc.Level)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if lc.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

func addSimFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.Float64Var(&dt, "dt", config.DefaultDt, "timestep")
	f.Float64Var(&duration, "time", config.DefaultDuration, "duration")
	f.Int64Var(&seed, "seed", 0, "random seed")
	f.StringVar(&integrator, "integrator", config.DefaultIntegrator, "integrator")
	f.StringVar(&body, "body", "", "body (default: the brain's body)")
	f.StringVar(&preset, "preset", "", "run preset as body/name, e.g. crawler/walk")
	f.StringVar(&schedulePath, "schedule", "", "mutation schedule (yaml)")
	f.StringVar(&fitnessSpec, "fitness", "", "fitness weights, e.g. displacement=1,control_effort=-0.01")
	f.Float64SliceVar(&initState, "init", nil, "initial state")
	f.StringArrayVar(&bodyParams, "body-param", nil, "body parameter name=value (repeatable)")
	f.StringArrayVar(&brainParams, "set", nil, "brain parameter name=value, e.g. j1.phase=0.25 (repeatable)")
}

// runSetup resolves the run config and brain from the config file, the
// preset, the flags and the brain argument, in that order of precedence.
type runSetup struct {
	cfg     config.Config
	brain   *brain.Description
	script  *schedule.Script
	weights metrics.Weights
}

func resolveRun(cmd *cobra.Command, args []string) (*runSetup, error) {
	c := *cfg
	if preset != "" {
		bodyName, name, ok := strings.Cut(preset, "/")
		if !ok {
			return nil, fmt.Errorf("preset %q: expected body/name", preset)
		}
		p := config.GetPreset(bodyName, name)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets(bodyName))
		}
		p.Storage = c.Storage
		p.Log = c.Log
		p.Fitness = c.Fitness
		c = *p
	}

	flags := cmd.Flags()
	if flags.Changed("dt") {
		c.Dt = dt
	}
	if flags.Changed("time") {
		c.Duration = duration
	}
	if flags.Changed("seed") {
		c.Seed = seed
	}
	if flags.Changed("integrator") {
		c.Integrator = integrator
	}
	if flags.Changed("body") {
		c.Body = body
	}
	if flags.Changed("init") {
		c.InitState = initState
	}
	if flags.Changed("schedule") {
		c.Schedule = schedulePath
	}
	if len(bodyParams) > 0 {
		merged := make(map[string]float64, len(c.BodyParams)+len(bodyParams))
		for k, v := range c.BodyParams {
			merged[k] = v
		}
		for _, s := range bodyParams {
			name, v, err := parseAssign(s)
			if err != nil {
				return nil, fmt.Errorf("body-param: %w", err)
			}
			merged[name] = v
		}
		c.BodyParams = merged
	}
	if len(args) > 0 {
		c.Brain = args[0]
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}

	desc, err := brain.Resolve(c.Brain)
	if err != nil {
		return nil, err
	}
	for _, s := range brainParams {
		name, v, err := parseAssign(s)
		if err != nil {
			return nil, fmt.Errorf("set: %w", err)
		}
		if err := desc.SetParam(name, v); err != nil {
			return nil, err
		}
	}
	if c.Body == "" {
		c.Body = desc.Body
	}

	rs := &runSetup{cfg: c, brain: desc, weights: c.FitnessWeights(c.Body)}
	if fitnessSpec != "" {
		w, err := metrics.ParseWeights(fitnessSpec)
		if err != nil {
			return nil, err
		}
		rs.weights = w
	}
	if c.Schedule != "" {
		script, err := schedule.LoadScript(c.Schedule)
		if err != nil {
			return nil, fmt.Errorf("schedule %s: %w", c.Schedule, err)
		}
		rs.script = script
	}
	return rs, nil
}

func parseAssign(s string) (string, float64, error) {
	name, raw, ok := strings.Cut(s, "=")
	if !ok || name == "" {
		return "", 0, fmt.Errorf("%q: expected name=value", s)
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return "", 0, fmt.Errorf("%q: %w", s, err)
	}
	return strings.TrimSpace(name), v, nil
}
