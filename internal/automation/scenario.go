package automation

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/san-kum/ising/internal/config"
	"github.com/san-kum/ising/internal/sweep"
	"gopkg.in/yaml.v3"
)

// Scenario is a scripted sequence of temperature sweeps, typically the same
// grid at several lattice sizes for finite-size scaling.
type Scenario struct {
	Name        string
	Description string
	Steps       []*config.Config
}

type scenarioFile struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Defaults    *config.Config `yaml:"defaults"`
	Steps       []yaml.Node    `yaml:"steps"`
}

// LoadScenario loads a scenario from a YAML file. Each step starts from the
// built-in defaults overlaid with the file's defaults block.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseScenario(data)
}

func ParseScenario(data []byte) (*Scenario, error) {
	file := scenarioFile{Defaults: config.DefaultConfig()}
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse scenario: %w", err)
	}
	if len(file.Steps) == 0 {
		return nil, fmt.Errorf("scenario %q has no steps", file.Name)
	}

	sc := &Scenario{Name: file.Name, Description: file.Description}
	for i := range file.Steps {
		cfg := *file.Defaults
		if err := file.Steps[i].Decode(&cfg); err != nil {
			return nil, fmt.Errorf("step %d: %w", i+1, err)
		}
		if cfg.Name == "" {
			cfg.Name = fmt.Sprintf("%s-%d", sc.Name, i+1)
		}
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("step %d: %w", i+1, err)
		}
		sc.Steps = append(sc.Steps, &cfg)
	}
	return sc, nil
}

// SweepFunc runs one configured sweep.
type SweepFunc func(ctx context.Context, cfg *config.Config) ([]sweep.Record, error)

type StepResult struct {
	Config  *config.Config
	Records []sweep.Record
	Err     error
}

// RunScenario executes all steps in order. A failing step is recorded and
// the remaining steps still run; the returned error joins every failure.
func RunScenario(ctx context.Context, sc *Scenario, run SweepFunc) ([]StepResult, error) {
	results := make([]StepResult, 0, len(sc.Steps))
	var errs []error

	for i, step := range sc.Steps {
		if err := ctx.Err(); err != nil {
			errs = append(errs, fmt.Errorf("step %d: %w", i+1, err))
			break
		}
		records, err := run(ctx, step)
		if err != nil {
			err = fmt.Errorf("step %d (%s): %w", i+1, step.Name, err)
			errs = append(errs, err)
		}
		results = append(results, StepResult{Config: step, Records: records, Err: err})
	}
	return results, errors.Join(errs...)
}
