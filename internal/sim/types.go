package sim

import (
	"math"
	"time"

	"github.com/san-kum/ising/internal/lattice"
)

// Params fully describes one single-temperature run.
type Params struct {
	Size           int
	Coupling       float64
	Beta           float64
	Thermalization int
	Measurement    int
	Seed           int64
	Start          lattice.Start
}

// DefaultParams mirrors the coursework settings at the critical region.
func DefaultParams() Params {
	return Params{
		Size:           20,
		Coupling:       1.0,
		Beta:           1 / 2.269,
		Thermalization: 10000,
		Measurement:    1000,
		Start:          lattice.Cold,
	}
}

// WithTemperature returns a copy of p at temperature t.
func (p Params) WithTemperature(t float64) Params {
	p.Beta = 1 / t
	return p
}

func (p Params) Temperature() float64 { return 1 / p.Beta }

// Validate rejects parameters before anything is allocated.
func (p Params) Validate() error {
	if p.Size <= 0 {
		return &ConfigError{Field: "size", Value: p.Size, Reason: "must be positive"}
	}
	if math.IsNaN(p.Coupling) || math.IsInf(p.Coupling, 0) {
		return &ConfigError{Field: "coupling", Value: p.Coupling, Reason: "must be finite"}
	}
	if !(p.Beta > 0) || math.IsInf(p.Beta, 0) {
		return &ConfigError{Field: "beta", Value: p.Beta, Reason: "temperature must be positive and finite"}
	}
	if p.Thermalization < 0 {
		return &ConfigError{Field: "thermalization", Value: p.Thermalization, Reason: "must not be negative"}
	}
	if p.Measurement < 0 {
		return &ConfigError{Field: "measurement", Value: p.Measurement, Reason: "must not be negative"}
	}
	if p.Start != "" && !p.Start.Valid() {
		return &ConfigError{Field: "start", Value: p.Start, Reason: "must be cold or hot"}
	}
	return nil
}

// Phase tells observers which part of the schedule a sweep belongs to.
type Phase int

const (
	Thermalization Phase = iota
	Measurement
)

func (p Phase) String() string {
	if p == Thermalization {
		return "thermalization"
	}
	return "measurement"
}

// Observer is notified after every measurement sweep with the raw totals.
type Observer interface {
	Observe(energy, magnetization float64)
}

// ProgressFunc is called after every sweep of either phase.
type ProgressFunc func(phase Phase, sweep int)

// Result holds the per-site statistics of one run.
type Result struct {
	Energy        float64
	Magnetization float64
	SpecificHeat  float64

	Samples    int
	Acceptance float64
	Elapsed    time.Duration
}
