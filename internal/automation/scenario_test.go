package automation

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/ising/internal/config"
	"github.com/san-kum/ising/internal/lattice"
	"github.com/san-kum/ising/internal/sweep"
)

const fssScenario = `
name: fss
description: finite-size scaling near Tc
defaults:
  thermalization: 200
  measurement: 100
  start: hot
  temperatures:
    segments:
      - {from: 2.0, to: 2.5, points: 6}
steps:
  - size: 8
  - size: 16
  - size: 24
    name: big
    temperatures:
      values: [2.27]
`

func TestParseScenario(t *testing.T) {
	sc, err := ParseScenario([]byte(fssScenario))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if sc.Name != "fss" || len(sc.Steps) != 3 {
		t.Fatalf("unexpected scenario %+v", sc)
	}

	first := sc.Steps[0]
	if first.Size != 8 || first.Thermalization != 200 || first.Start != lattice.Hot || first.Coupling != 1.0 {
		t.Errorf("defaults not applied: %+v", first)
	}
	if first.Name != "fss-1" {
		t.Errorf("expected generated name, got %q", first.Name)
	}
	if grid, _ := first.Grid(); len(grid) != 6 {
		t.Errorf("expected inherited grid of 6, got %v", grid)
	}

	last := sc.Steps[2]
	if last.Name != "big" {
		t.Errorf("name = %q", last.Name)
	}
	if grid, _ := last.Grid(); len(grid) != 1 || grid[0] != 2.27 {
		t.Errorf("step override ignored: %v", grid)
	}
}

func TestParseScenarioRejects(t *testing.T) {
	tests := map[string]string{
		"no steps":     "name: empty\n",
		"invalid step": "steps:\n  - size: -4\n",
		"bad yaml":     "steps: [",
	}
	for name, src := range tests {
		if _, err := ParseScenario([]byte(src)); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestLoadScenario(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fss.yaml")
	if err := os.WriteFile(path, []byte(fssScenario), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadScenario(path); err != nil {
		t.Errorf("load failed: %v", err)
	}
	if _, err := LoadScenario(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestRunScenarioContinuesAfterFailure(t *testing.T) {
	sc, err := ParseScenario([]byte(fssScenario))
	if err != nil {
		t.Fatal(err)
	}

	boom := errors.New("boom")
	var sizes []int
	run := func(ctx context.Context, cfg *config.Config) ([]sweep.Record, error) {
		sizes = append(sizes, cfg.Size)
		if cfg.Size == 16 {
			return nil, boom
		}
		return []sweep.Record{{Temperature: 2.27}}, nil
	}

	results, err := RunScenario(context.Background(), sc, run)
	if !errors.Is(err, boom) {
		t.Errorf("expected boom, got %v", err)
	}
	if len(results) != 3 || len(sizes) != 3 {
		t.Fatalf("expected all steps to run, got %d", len(results))
	}
	if results[1].Err == nil || results[0].Err != nil || results[2].Err != nil {
		t.Error("failure attributed to the wrong step")
	}
}

func TestRunScenarioStopsWhenCanceled(t *testing.T) {
	sc, _ := ParseScenario([]byte(fssScenario))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results, err := RunScenario(ctx, sc, func(ctx context.Context, cfg *config.Config) ([]sweep.Record, error) {
		t.Error("step ran after cancel")
		return nil, nil
	})
	if !errors.Is(err, context.Canceled) || len(results) != 0 {
		t.Errorf("results %d err %v", len(results), err)
	}
}
