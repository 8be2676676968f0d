package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/san-kum/neurosim/internal/experiment"
	"github.com/san-kum/neurosim/internal/metrics"
	"gopkg.in/yaml.v3"
)

const (
	DefaultDt         = 0.01
	DefaultDuration   = 10.0
	DefaultBrain      = "cpg-pendulum"
	DefaultIntegrator = "rk4"
	DefaultDataDir    = ".neurosim"
)

type Config struct {
	Brain      string             `yaml:"brain"`
	Body       string             `yaml:"body,omitempty"`
	Integrator string             `yaml:"integrator"`
	Dt         float64            `yaml:"dt"`
	Duration   float64            `yaml:"duration"`
	Seed       int64              `yaml:"seed"`
	InitState  []float64          `yaml:"init_state,omitempty"`
	BodyParams map[string]float64 `yaml:"body_params,omitempty"`
	Schedule   string             `yaml:"schedule,omitempty"`
	Fitness    metrics.Weights    `yaml:"fitness,omitempty"`
	Storage    StorageConfig      `yaml:"storage"`
	Log        LogConfig          `yaml:"log"`
}

type StorageConfig struct {
	Dir string `yaml:"dir"`
	// Journal is "memory" or "sqlite".
	Journal     string `yaml:"journal"`
	JournalPath string `yaml:"journal_path,omitempty"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func DefaultConfig() *Config {
	return &Config{
		Brain:      DefaultBrain,
		Integrator: DefaultIntegrator,
		Dt:         DefaultDt,
		Duration:   DefaultDuration,
		Storage: StorageConfig{
			Dir:     DefaultDataDir,
			Journal: "memory",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads a YAML config on top of the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	var errs []error
	if c.Brain == "" {
		errs = append(errs, errors.New("brain is required"))
	}
	if c.Dt <= 0 {
		errs = append(errs, fmt.Errorf("dt must be positive, got %g", c.Dt))
	}
	if c.Duration <= 0 {
		errs = append(errs, fmt.Errorf("duration must be positive, got %g", c.Duration))
	}
	switch c.Storage.Journal {
	case "", "memory", "sqlite":
	default:
		errs = append(errs, fmt.Errorf("unknown journal %q", c.Storage.Journal))
	}
	switch c.Log.Format {
	case "", "text", "json":
	default:
		errs = append(errs, fmt.Errorf("unknown log format %q", c.Log.Format))
	}
	return errors.Join(errs...)
}

// Experiment is the simulation part of the config.
func (c *Config) Experiment() experiment.Config {
	return experiment.Config{
		Body:       c.Body,
		Integrator: c.Integrator,
		InitState:  c.InitState,
		Dt:         c.Dt,
		Duration:   c.Duration,
		Seed:       c.Seed,
		BodyParams: c.BodyParams,
	}
}

// FitnessWeights returns the configured weights, or the default weights for
// body when none are set.
func (c *Config) FitnessWeights(body string) metrics.Weights {
	if len(c.Fitness) > 0 {
		return c.Fitness
	}
	return DefaultFitness(body)
}

// DefaultFitness is what "good" means for each built-in body.
func DefaultFitness(body string) metrics.Weights {
	switch body {
	case "cartpole":
		return metrics.Weights{"upright": 1, "control_effort": -0.001}
	case "crawler":
		return metrics.Weights{"displacement": 1, "control_effort": -0.01}
	default:
		return metrics.Weights{"output_range": 1, "control_effort": -0.01}
	}
}
