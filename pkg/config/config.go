// Package config provides YAML-backed configuration for the viewer core:
// window presets, active binders, colour map and logging.
package config

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Level is one configured window/level value.
type Level struct {
	Center float64 `yaml:"center"`
	Width  float64 `yaml:"width"`
}

// Preset is one configured window preset. Per-slice presets carry one level
// per secondary offset.
type Preset struct {
	Name     string  `yaml:"name"`
	Levels   []Level `yaml:"levels"`
	PerSlice bool    `yaml:"perSlice,omitempty"`
}

// Config is the application configuration.
type Config struct {
	// Display parameters
	Display struct {
		// ColourMap is the initial colour map name
		ColourMap string `yaml:"colourMap"`

		// Presets are merged into every view's preset registry
		Presets []Preset `yaml:"presets"`
	} `yaml:"display"`

	// Sync parameters
	Sync struct {
		// Binders lists the active synchronization binders, in order,
		// from the catalogue: windowlevel, position, zoom, offset, opacity
		Binders []string `yaml:"binders"`
	} `yaml:"sync"`

	// Log parameters
	Log struct {
		// Level is DEBUG, INFO, WARN or ERROR
		Level string `yaml:"level"`

		// File enables rolling file output when set
		File string `yaml:"file,omitempty"`
	} `yaml:"log"`
}

// Default returns a configuration with the standard CT viewing windows.
func Default() *Config {
	cfg := &Config{}

	cfg.Display.ColourMap = "plain"
	cfg.Display.Presets = []Preset{
		{Name: "soft tissue", Levels: []Level{{Center: 40, Width: 400}}},
		{Name: "bone", Levels: []Level{{Center: 400, Width: 2000}}},
		{Name: "lung", Levels: []Level{{Center: -600, Width: 1500}}},
		{Name: "brain", Levels: []Level{{Center: 50, Width: 350}}},
	}

	cfg.Sync.Binders = []string{"windowlevel", "position"}

	cfg.Log.Level = "INFO"

	return cfg
}

// Load reads a configuration file, returning defaults when it is absent.
func Load(path string) (*Config, error) {
	cfg := Default()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading config file")
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrap(err, "parsing config file")
	}

	return cfg, nil
}

// Save writes the configuration to a YAML file, creating directories as
// needed.
func Save(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrap(err, "creating config directory")
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return errors.Wrap(err, "marshaling config")
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Wrap(err, "writing config file")
	}

	return nil
}
