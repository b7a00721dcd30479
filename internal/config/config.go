// Package config holds tweener settings. Values come from built-in
// defaults, an optional YAML file and TWEENER_* environment variables, in
// that order; command-line flags are applied last by the caller.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/ivlev/tweener/internal/shape"
	"github.com/ivlev/tweener/internal/system"
	"github.com/ivlev/tweener/internal/tween"
)

// DefaultFile is looked up in the working directory when no file is given.
const DefaultFile = "tweener.yaml"

type Config struct {
	Shape          string  `yaml:"shape"`
	StrictSessions bool    `yaml:"strict_sessions"`
	ClampFactor    bool    `yaml:"clamp_factor"`
	MinFactor      float64 `yaml:"min_factor"`
	MaxFactor      float64 `yaml:"max_factor"`
	ChannelBox     bool    `yaml:"channel_box"` // honour the scene's channel box filter
	TimeTolerance  float64 `yaml:"time_tolerance"`
	JournalPath    string  `yaml:"journal"`
	Workers        int     `yaml:"workers"`
	PlotWidth      int     `yaml:"plot_width"`
	PlotHeight     int     `yaml:"plot_height"`
	PlotSamples    int     `yaml:"plot_samples"`
	Verbose        bool    `yaml:"verbose"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Shape:         shape.Linear,
		MinFactor:     -1,
		MaxFactor:     2,
		ChannelBox:    true,
		TimeTolerance: 1e-6,
		JournalPath:   ".tweener/journal.db",
		Workers:       system.Workers(0),
		PlotWidth:     960,
		PlotHeight:    540,
		PlotSamples:   32,
	}
}

// Load reads defaults, then path (or DefaultFile if path is empty and the
// file exists), then the environment.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
	default:
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Shape = getEnv("TWEENER_SHAPE", c.Shape)
	c.StrictSessions = getEnvBool("TWEENER_STRICT", c.StrictSessions)
	c.ClampFactor = getEnvBool("TWEENER_CLAMP", c.ClampFactor)
	c.MinFactor = getEnvFloat("TWEENER_MIN_FACTOR", c.MinFactor)
	c.MaxFactor = getEnvFloat("TWEENER_MAX_FACTOR", c.MaxFactor)
	c.JournalPath = getEnv("TWEENER_JOURNAL", c.JournalPath)
	c.Workers = getEnvInt("TWEENER_WORKERS", c.Workers)
	c.Verbose = getEnvBool("TWEENER_VERBOSE", c.Verbose)
}

// Validate rejects settings the tools cannot run with.
func (c *Config) Validate() error {
	if c.ClampFactor && c.MinFactor > c.MaxFactor {
		return fmt.Errorf("min_factor %g is above max_factor %g", c.MinFactor, c.MaxFactor)
	}
	if c.Workers < 1 {
		c.Workers = 1
	}
	if c.PlotWidth <= 0 || c.PlotHeight <= 0 {
		return fmt.Errorf("plot size %dx%d must be positive", c.PlotWidth, c.PlotHeight)
	}
	if c.PlotSamples < 2 {
		c.PlotSamples = 2
	}
	if c.TimeTolerance < 0 {
		return fmt.Errorf("time_tolerance %g is negative", c.TimeTolerance)
	}
	return nil
}

// EngineOptions maps the settings onto tween engine options.
func (c *Config) EngineOptions() tween.Options {
	return tween.Options{
		Strict:      c.StrictSessions,
		ClampFactor: c.ClampFactor,
		MinFactor:   c.MinFactor,
		MaxFactor:   c.MaxFactor,
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return defaultVal
}
