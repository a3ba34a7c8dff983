package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/rendis/agentflow/internal/engine"
	"github.com/rendis/agentflow/internal/logging"
	"github.com/rendis/agentflow/pkg/schema"
)

// Config holds all agentflow configuration.
// Priority: flags > env vars > config file > defaults.
type Config struct {
	LogLevel       string           `yaml:"log_level"`
	LogFormat      string           `yaml:"log_format"`
	StrictSchedule bool             `yaml:"strict_schedule"`
	Simulation     SimulationConfig `yaml:"simulation"`
	NATS           NATSConfig       `yaml:"nats"`
}

// SimulationConfig tunes the execution simulator.
type SimulationConfig struct {
	// Delays maps a tier (low, mid, high, unknown) to a [min, max] range in
	// milliseconds.
	Delays      map[string][2]int   `yaml:"delays"`
	Seed        *uint64             `yaml:"seed"`
	TimeScale   float64             `yaml:"time_scale"`
	FailWhen    string              `yaml:"fail_when"`
	MaxParallel int                 `yaml:"max_parallel"`
	Retry       *schema.RetryPolicy `yaml:"retry"`
}

// NATSConfig selects where progress events are published. URL "embedded"
// starts an in-process server on Port.
type NATSConfig struct {
	URL           string `yaml:"url"`
	Port          int    `yaml:"port"`
	SubjectPrefix string `yaml:"subject_prefix"`
}

func defaultConfig() Config {
	return Config{
		LogLevel:  "info",
		LogFormat: "text",
		Simulation: SimulationConfig{
			TimeScale: 1,
		},
	}
}

func agentflowDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".agentflow"
	}
	return filepath.Join(home, ".agentflow")
}

func configPath() string {
	if p := os.Getenv("AGENTFLOW_CONFIG"); p != "" {
		return p
	}
	return filepath.Join(agentflowDir(), "config.yaml")
}

// loadConfig layers the config file at path and the environment over the
// defaults. A missing file is not an error.
func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return cfg, fmt.Errorf("read config: %w", err)
		}
	} else {
		expanded := os.ExpandEnv(string(data))
		if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return cfg, err
	}
	return cfg, cfg.validate()
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv("AGENTFLOW_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("AGENTFLOW_LOG_FORMAT"); v != "" {
		cfg.LogFormat = v
	}
	if v := os.Getenv("AGENTFLOW_STRICT"); v != "" {
		cfg.StrictSchedule = v == "true" || v == "1"
	}
	if v := os.Getenv("AGENTFLOW_SEED"); v != "" {
		seed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return fmt.Errorf("AGENTFLOW_SEED: %w", err)
		}
		cfg.Simulation.Seed = &seed
	}
	if v := os.Getenv("AGENTFLOW_TIME_SCALE"); v != "" {
		scale, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("AGENTFLOW_TIME_SCALE: %w", err)
		}
		cfg.Simulation.TimeScale = scale
	}
	if v := os.Getenv("AGENTFLOW_FAIL_WHEN"); v != "" {
		cfg.Simulation.FailWhen = v
	}
	if v := os.Getenv("AGENTFLOW_NATS_URL"); v != "" {
		cfg.NATS.URL = v
	}
	return nil
}

func (c Config) validate() error {
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("log_format must be text or json, got %q", c.LogFormat)
	}
	for tier := range c.Simulation.Delays {
		switch tier {
		case "low", "mid", "high", "unknown":
		default:
			return fmt.Errorf("simulation.delays: unknown tier %q", tier)
		}
	}
	return engine.ValidateRetryPolicy(c.Simulation.Retry)
}

// simulatorOptions translates the simulation section. Range checks are left
// to engine.NewSimulator.
func (c Config) simulatorOptions() []engine.SimulatorOption {
	sc := c.Simulation
	opts := []engine.SimulatorOption{
		engine.WithTimeScale(sc.TimeScale),
		engine.WithMaxParallel(sc.MaxParallel),
	}
	delays := map[schema.ModelTier]engine.DelayRange{}
	for tier, r := range sc.Delays {
		rng := engine.DelayRange{Min: r[0], Max: r[1]}
		if tier == "unknown" {
			opts = append(opts, engine.WithUnknownDelay(rng))
			continue
		}
		delays[schema.ModelTier(tier)] = rng
	}
	if len(delays) > 0 {
		opts = append(opts, engine.WithDelays(delays))
	}
	if sc.Seed != nil {
		opts = append(opts, engine.WithSeed(*sc.Seed))
	}
	if sc.FailWhen != "" {
		opts = append(opts, engine.WithFailWhen(sc.FailWhen))
	}
	if sc.Retry != nil {
		opts = append(opts, engine.WithRetryPolicy(sc.Retry))
	}
	return opts
}
