package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/nbody/internal/bench"
	"github.com/san-kum/nbody/internal/dynamo"
)

const (
	DefaultDataDir     = ".nbody"
	DefaultIntegrator  = "symplectic"
	DefaultMetricsAddr = ":9464"
	DefaultStreamRate  = 30.0
)

type Config struct {
	Steps       int     `yaml:"steps"`
	Dt          float64 `yaml:"dt"`
	SampleEvery int     `yaml:"sample_every"`
	TrackEvery  int     `yaml:"track_every"`
	Integrator  string  `yaml:"integrator"`
	DataDir     string  `yaml:"data_dir"`
	MetricsAddr string  `yaml:"metrics_addr"`
	StreamRate  float64 `yaml:"stream_rate"`
	Debug       bool    `yaml:"debug"`
}

func DefaultConfig() *Config {
	return &Config{
		Steps:       bench.DefaultSteps,
		Dt:          bench.DefaultDt,
		Integrator:  DefaultIntegrator,
		DataDir:     DefaultDataDir,
		MetricsAddr: DefaultMetricsAddr,
		StreamRate:  DefaultStreamRate,
	}
}

// Load reads a YAML file over the defaults, so omitted keys keep their default.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if err := LoadInto(path, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadInto reads a YAML file over cfg. Keys absent from the file leave the
// corresponding fields of cfg untouched.
func LoadInto(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	if err := c.Bench().Validate(); err != nil {
		return err
	}
	if c.StreamRate <= 0 {
		return fmt.Errorf("stream_rate must be positive, got %f: %w", c.StreamRate, dynamo.ErrInvalidArgument)
	}
	return nil
}

func (c *Config) Bench() bench.Config {
	return bench.Config{
		Steps:       c.Steps,
		Dt:          c.Dt,
		SampleEvery: c.SampleEvery,
		TrackEvery:  c.TrackEvery,
	}
}

// Apply copies the run parameters of a preset onto c.
func (c *Config) Apply(p *Config) {
	c.Steps = p.Steps
	c.Dt = p.Dt
	c.SampleEvery = p.SampleEvery
	c.TrackEvery = p.TrackEvery
	if p.Integrator != "" {
		c.Integrator = p.Integrator
	}
}
