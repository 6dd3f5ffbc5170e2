package host

import (
	"fmt"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"rockfall/engine/internal/sim"
	"rockfall/engine/logging"
)

const (
	// DefaultListen is the address the websocket host binds when neither
	// the config file nor the environment names one.
	DefaultListen = ":8080"
	// DefaultSnapshotEvery broadcasts every other tick, 30 Hz at the
	// stock tick rate.
	DefaultSnapshotEvery = 2
)

// Config aggregates everything the server process needs: the bind address,
// the broadcast cadence, the tuning file to watch, and the full engine
// configuration.
type Config struct {
	Listen        string     `yaml:"listen"`
	SnapshotEvery int        `yaml:"snapshot_every"`
	TuningPath    string     `yaml:"tuning_path"`
	LogSeverity   string     `yaml:"log_severity"`
	Bots          int        `yaml:"bots"`
	Sim           sim.Config `yaml:"sim"`
}

// envOverrides is parsed separately so a blank environment never clobbers
// values loaded from the file.
type envOverrides struct {
	Listen        string `env:"ROCKFALL_LISTEN"`
	Seed          string `env:"ROCKFALL_SEED"`
	TuningPath    string `env:"ROCKFALL_TUNING_PATH"`
	LogSeverity   string `env:"ROCKFALL_LOG_SEVERITY"`
	SnapshotEvery int    `env:"ROCKFALL_SNAPSHOT_EVERY"`
	Bots          int    `env:"ROCKFALL_BOTS"`
}

// DefaultConfig returns the stock server setup wrapped around the stock
// engine config.
func DefaultConfig() Config {
	return Config{
		Listen:        DefaultListen,
		SnapshotEvery: DefaultSnapshotEvery,
		LogSeverity:   "info",
		Sim:           sim.DefaultConfig(),
	}
}

// Load builds the effective config: defaults, then the YAML file when a
// path is given, then environment overrides on top.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("host: read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("host: parse config %s: %w", path, err)
		}
	}

	var overrides envOverrides
	if err := env.Parse(&overrides); err != nil {
		return Config{}, fmt.Errorf("host: parse env: %w", err)
	}
	cfg.applyOverrides(overrides)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyOverrides(overrides envOverrides) {
	if overrides.Listen != "" {
		c.Listen = overrides.Listen
	}
	if overrides.Seed != "" {
		c.Sim.Seed = overrides.Seed
	}
	if overrides.TuningPath != "" {
		c.TuningPath = overrides.TuningPath
	}
	if overrides.LogSeverity != "" {
		c.LogSeverity = overrides.LogSeverity
	}
	if overrides.SnapshotEvery > 0 {
		c.SnapshotEvery = overrides.SnapshotEvery
	}
	if overrides.Bots > 0 {
		c.Bots = overrides.Bots
	}
}

// Validate checks the host-level fields and delegates the rest to the
// engine config.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Listen) == "" {
		return fmt.Errorf("host: listen address must not be empty")
	}
	if c.SnapshotEvery < 1 {
		return fmt.Errorf("host: snapshot_every must be at least 1, got %d", c.SnapshotEvery)
	}
	if c.Bots < 0 {
		return fmt.Errorf("host: bots must not be negative, got %d", c.Bots)
	}
	if _, err := c.Severity(); err != nil {
		return err
	}
	return c.Sim.Normalized().Validate()
}

// Severity translates the configured log level into the router's type.
func (c Config) Severity() (logging.Severity, error) {
	switch strings.ToLower(strings.TrimSpace(c.LogSeverity)) {
	case "", "info":
		return logging.SeverityInfo, nil
	case "debug":
		return logging.SeverityDebug, nil
	case "warn", "warning":
		return logging.SeverityWarn, nil
	case "error":
		return logging.SeverityError, nil
	default:
		return 0, fmt.Errorf("host: unknown log severity %q", c.LogSeverity)
	}
}
