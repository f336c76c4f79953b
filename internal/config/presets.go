package config

import (
	"sort"

	"github.com/san-kum/ising/internal/lattice"
)

var Presets = map[string]*Config{
	"quick": {
		Name: "quick", Size: 10, Coupling: 1.0, Start: lattice.Cold,
		Thermalization: 1000, Measurement: 500,
		Temperatures: TemperatureConfig{Segments: []Segment{{From: 1.0, To: 4.0, Points: 16}}},
	},
	"coursework": {
		Name: "coursework", Size: 20, Coupling: 1.0, Start: lattice.Hot,
		Thermalization: 10000, Measurement: 1000,
		Temperatures: TemperatureConfig{Segments: []Segment{{From: 1.0, To: 4.0, Points: 20}}},
	},
	"scan": {
		Name: "scan", Size: 32, Coupling: 1.0, Start: lattice.Cold,
		Thermalization: 5000, Measurement: 5000,
		Temperatures: TemperatureConfig{Segments: []Segment{{From: 2.0, To: 2.6, Points: 25}}},
	},
	"critical": {
		Name: "critical", Size: 200, Coupling: 1.0, Start: lattice.Cold,
		Thermalization: 200000, Measurement: 100000,
		Temperatures: TemperatureConfig{Segments: []Segment{
			{From: 1.0, To: 2.0, Points: 10},
			{From: 2.0, To: 2.5, Points: 40},
			{From: 2.5, To: 4.0, Points: 15},
		}},
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := *p
	cfg.Temperatures.Values = append([]float64(nil), p.Temperatures.Values...)
	cfg.Temperatures.Segments = append([]Segment(nil), p.Temperatures.Segments...)
	return &cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
