package main

import (
	"testing"

	"github.com/san-kum/ising/internal/lattice"
	"github.com/spf13/cobra"
)

func sweepFlags(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{Use: "sweep"}
	addModelFlags(cmd.Flags())
	cmd.Flags().Float64("tmin", 1, "")
	cmd.Flags().Float64("tmax", 4, "")
	cmd.Flags().Int("points", 20, "")
	cmd.Flags().String("temps", "", "")
	cmd.Flags().Int("workers", 0, "")
	if err := cmd.ParseFlags(args); err != nil {
		t.Fatal(err)
	}
	return cmd
}

func TestLoadConfigPresetWithOverrides(t *testing.T) {
	cmd := sweepFlags(t, "--preset", "quick", "--size", "12", "--seed", "7", "--temps", "2.0, 2.5")
	cfg, err := loadConfig(newViper(cmd))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Name != "quick" || cfg.Size != 12 || cfg.Seed != 7 {
		t.Errorf("unexpected config: %+v", cfg)
	}
	if cfg.Thermalization != 1000 {
		t.Errorf("preset thermalization lost: %d", cfg.Thermalization)
	}
	grid, err := cfg.Grid()
	if err != nil {
		t.Fatal(err)
	}
	if len(grid) != 2 || grid[0] != 2.0 || grid[1] != 2.5 {
		t.Errorf("grid = %v", grid)
	}
}

func TestLoadConfigRange(t *testing.T) {
	cmd := sweepFlags(t, "--tmin", "2", "--tmax", "3", "--points", "3", "--start", "HOT")
	cfg, err := loadConfig(newViper(cmd))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Start != lattice.Hot {
		t.Errorf("start = %q", cfg.Start)
	}
	grid, _ := cfg.Grid()
	if len(grid) != 3 || grid[0] != 2 || grid[2] != 3 {
		t.Errorf("grid = %v", grid)
	}
	if cfg.Seed == 0 {
		t.Error("expected a time based seed")
	}
}

func TestLoadConfigEnv(t *testing.T) {
	t.Setenv("ISING_SIZE", "9")
	t.Setenv("ISING_WORKERS", "3")
	cfg, err := loadConfig(newViper(sweepFlags(t)))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Size != 9 || cfg.Workers != 3 {
		t.Errorf("env not applied: size=%d workers=%d", cfg.Size, cfg.Workers)
	}
}

func TestLoadConfigFlagBeatsEnv(t *testing.T) {
	t.Setenv("ISING_SIZE", "9")
	cfg, err := loadConfig(newViper(sweepFlags(t, "--size", "5")))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Size != 5 {
		t.Errorf("size = %d", cfg.Size)
	}
}

func TestLoadConfigUnknownPreset(t *testing.T) {
	if _, err := loadConfig(newViper(sweepFlags(t, "--preset", "nope"))); err == nil {
		t.Error("expected error")
	}
}

func TestParseFloats(t *testing.T) {
	got, err := parseFloats("1.5, 2,,3")
	if err != nil || len(got) != 3 || got[1] != 2 {
		t.Errorf("parseFloats = %v, %v", got, err)
	}
	if _, err := parseFloats("1,x"); err == nil {
		t.Error("expected error")
	}
}
