// Package config loads the engine configuration from JSON or YAML files
// with environment-variable overrides.
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

	"github.com/autoride/autoride/core/dispatch"
	"github.com/autoride/autoride/core/metrics"
	"github.com/autoride/autoride/infra/bus"
	"github.com/autoride/autoride/infra/relay"
	infrarouting "github.com/autoride/autoride/infra/routing"
	infrasnapshot "github.com/autoride/autoride/infra/snapshot"
	"github.com/autoride/autoride/simulator"
)

// Config is the full engine configuration.
type Config struct {
	Dispatch  dispatch.Config      `json:"dispatch"`
	Bus       bus.Config           `json:"bus"`
	Routing   infrarouting.Config  `json:"routing"`
	Metrics   metrics.Config       `json:"metrics"`
	Snapshot  infrasnapshot.Config `json:"snapshot"`
	Relay     relay.Config         `json:"relay"`
	Simulator simulator.Config     `json:"simulator"`
}

// Default returns the standalone configuration: simulated fleet,
// straight-line routing, no external bus, in-memory snapshots.
func Default() *Config {
	cfg := &Config{}
	cfg.Simulator.Enabled = true
	cfg.setDefaults()
	return cfg
}

// Load reads the configuration file and applies AR_ environment
// overrides. Nested keys use double underscores, e.g.
// AR_BUS__BACKEND=kafka.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
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
	if err := k.Load(env.Provider("AR_", "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "ar_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}

	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.setDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) setDefaults() {
	c.Dispatch.SetDefaults()
	c.Bus.SetDefaults()
	c.Routing.SetDefaults()
	c.Metrics.SetDefaults()
	c.Snapshot.SetDefaults()
	c.Relay.SetDefaults()
	c.Simulator.SetDefaults()
}

// Validate checks every section.
func (c *Config) Validate() error {
	if err := c.Dispatch.Validate(); err != nil {
		return err
	}
	if err := c.Bus.Validate(); err != nil {
		return err
	}
	if err := c.Routing.Validate(); err != nil {
		return err
	}
	if err := c.Snapshot.Validate(); err != nil {
		return err
	}
	return c.Simulator.Validate()
}
