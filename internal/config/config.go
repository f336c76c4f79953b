package config

import (
	"fmt"
	"math"
	"os"
	"sort"

	"github.com/san-kum/ising/internal/lattice"
	"github.com/san-kum/ising/internal/sim"
	"gonum.org/v1/gonum/floats"
	"gopkg.in/yaml.v3"
)

const (
	DefaultSize           = 20
	DefaultCoupling       = 1.0
	DefaultThermalization = 10000
	DefaultMeasurement    = 1000
	DefaultTMin           = 1.0
	DefaultTMax           = 4.0
	DefaultPoints         = 20
)

type Config struct {
	Name           string            `yaml:"name,omitempty"`
	Size           int               `yaml:"size"`
	Coupling       float64           `yaml:"coupling"`
	Start          lattice.Start     `yaml:"start"`
	Thermalization int               `yaml:"thermalization"`
	Measurement    int               `yaml:"measurement"`
	Seed           int64             `yaml:"seed"`
	Workers        int               `yaml:"workers"`
	Temperatures   TemperatureConfig `yaml:"temperatures"`
}

// TemperatureConfig lists explicit temperatures and/or evenly spaced
// segments. Both ends of a segment are included.
type TemperatureConfig struct {
	Values   []float64 `yaml:"values,omitempty"`
	Segments []Segment `yaml:"segments,omitempty"`
}

// UnmarshalYAML replaces the whole grid, so an overlay that lists only
// values does not inherit the segments underneath it.
func (t *TemperatureConfig) UnmarshalYAML(node *yaml.Node) error {
	type plain TemperatureConfig
	var p plain
	if err := node.Decode(&p); err != nil {
		return err
	}
	*t = TemperatureConfig(p)
	return nil
}

type Segment struct {
	From   float64 `yaml:"from"`
	To     float64 `yaml:"to"`
	Points int     `yaml:"points"`
}

func DefaultConfig() *Config {
	return &Config{
		Size:           DefaultSize,
		Coupling:       DefaultCoupling,
		Start:          lattice.Cold,
		Thermalization: DefaultThermalization,
		Measurement:    DefaultMeasurement,
		Temperatures: TemperatureConfig{
			Segments: []Segment{{From: DefaultTMin, To: DefaultTMax, Points: DefaultPoints}},
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
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
	if _, err := c.Grid(); err != nil {
		return err
	}
	if c.Workers < 0 {
		return &sim.ConfigError{Field: "workers", Value: c.Workers, Reason: "must not be negative"}
	}
	return c.Params().WithTemperature(1).Validate()
}

// Params converts the shared run settings; Beta is left for the driver.
func (c *Config) Params() sim.Params {
	return sim.Params{
		Size:           c.Size,
		Coupling:       c.Coupling,
		Thermalization: c.Thermalization,
		Measurement:    c.Measurement,
		Seed:           c.Seed,
		Start:          c.Start,
	}
}

// Grid returns the sorted, de-duplicated temperatures of the configuration.
func (c *Config) Grid() ([]float64, error) {
	temps := make([]float64, 0, len(c.Temperatures.Values))
	temps = append(temps, c.Temperatures.Values...)

	for _, s := range c.Temperatures.Segments {
		if s.Points < 1 {
			return nil, &sim.ConfigError{Field: "temperatures.points", Value: s.Points, Reason: "must be at least 1"}
		}
		if s.Points == 1 {
			temps = append(temps, s.From)
			continue
		}
		temps = append(temps, floats.Span(make([]float64, s.Points), s.From, s.To)...)
	}

	for _, t := range temps {
		if !(t > 0) || math.IsInf(t, 0) {
			return nil, &sim.ConfigError{Field: "temperature", Value: t, Reason: "must be positive and finite"}
		}
	}
	if len(temps) == 0 {
		return nil, &sim.ConfigError{Field: "temperatures", Value: 0, Reason: "at least one temperature required"}
	}

	sort.Float64s(temps)
	out := temps[:1]
	for _, t := range temps[1:] {
		if t-out[len(out)-1] > 1e-12 {
			out = append(out, t)
		}
	}
	return out, nil
}
