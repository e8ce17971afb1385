package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/kilianp07/rcpspoc/core/metrics"
	"github.com/kilianp07/rcpspoc/core/results"
	"github.com/kilianp07/rcpspoc/infra/logger"
	"github.com/kilianp07/rcpspoc/infra/mqtt"
)

type Config struct {
	Solver   SolverConfig   `json:"solver"`
	Overtime OvertimeConfig `json:"overtime"`
	Results  results.Config `json:"results"`
	Logging  logger.Config  `json:"logging"`
	Metrics  metrics.Config `json:"metrics"`
	// MQTT adds a publisher sink when present.
	MQTT *mqtt.Config `json:"mqtt"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg := &Config{
		Solver:   DefaultSolverConfig(),
		Overtime: DefaultOvertimeConfig(),
	}
	cfg.SetDefaults()
	return cfg
}

// SetDefaults fills every empty section.
func (c *Config) SetDefaults() {
	c.Results.SetDefaults()
	c.Logging.SetDefaults()
	if c.MQTT != nil {
		c.MQTT.SetDefaults()
	}
}

// Validate checks every section.
func (c *Config) Validate() error {
	if err := c.Solver.Validate(); err != nil {
		return fmt.Errorf("solver: %w", err)
	}
	if err := c.Overtime.Validate(); err != nil {
		return fmt.Errorf("overtime: %w", err)
	}
	if err := c.Results.Validate(); err != nil {
		return fmt.Errorf("results: %w", err)
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	if c.MQTT != nil {
		if err := c.MQTT.Validate(); err != nil {
			return fmt.Errorf("mqtt: %w", err)
		}
	}
	return nil
}

// Load reads the configuration file at path, applies K_ prefixed
// environment overrides (K_SOLVER__NODE_LIMIT sets solver.node_limit) and
// validates the result. An empty path loads defaults and environment only.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	if path != "" {
		var parser koanf.Parser
		switch ext := strings.ToLower(filepath.Ext(path)); ext {
		case ".yaml", ".yml":
			parser = yaml.Parser()
		case ".json":
			parser = json.Parser()
		default:
			return nil, fmt.Errorf("unsupported config format: %s", ext)
		}
		if err := k.Load(file.Provider(path), parser); err != nil {
			return nil, err
		}
	}
	if err := k.Load(env.Provider("K_", "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "k_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}

	cfg := &Config{
		Solver:   DefaultSolverConfig(),
		Overtime: DefaultOvertimeConfig(),
	}
	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
