package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/san-kum/ising/internal/automation"
	"github.com/san-kum/ising/internal/config"
	"github.com/san-kum/ising/internal/export"
	"github.com/san-kum/ising/internal/optim"
	"github.com/san-kum/ising/internal/report"
	"github.com/san-kum/ising/internal/storage"
	"github.com/san-kum/ising/internal/sweep"
	"github.com/san-kum/ising/internal/tui"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

type sweepOptions struct {
	live         bool
	refine       int
	refineRounds int
}

func runSweep(cmd *cobra.Command, args []string) error {
	v := newViper(cmd)
	cfg, err := loadConfig(v)
	if err != nil {
		return err
	}
	if cfg.Name == "" {
		cfg.Name = "sweep"
	}

	opts := sweepOptions{
		live:         v.GetBool("live"),
		refine:       v.GetInt("refine"),
		refineRounds: v.GetInt("refine-rounds"),
	}
	records, sweepErr := executeSweep(cmd.Context(), cfg, opts)
	if records == nil {
		return sweepErr
	}

	out := cmd.OutOrStdout()
	if v.GetBool("table") {
		err = report.Table(out, records)
	} else {
		err = report.Lines(out, records)
	}
	if err != nil {
		return err
	}
	if peak, _, ok := sweep.Peak(records); ok {
		fmt.Fprintf(out, "\nCv peak at T=%.4f (Cv=%.4f)\n", peak.Temperature, peak.SpecificHeat)
	}

	if v.GetBool("plot") {
		fmt.Fprintln(out)
		if err := report.Plot(out, records, 60, 12); err != nil {
			return err
		}
	}

	if path := v.GetString("chart"); path != "" {
		paths, err := export.WriteCharts(path, records)
		if err != nil {
			return err
		}
		for _, p := range paths {
			logger.WithField("path", p).Info("chart written")
		}
	}

	if v.GetBool("save") {
		if err := saveRun(v, cfg, records); err != nil {
			return err
		}
	}
	return sweepErr
}

// executeSweep runs the grid of cfg and, if asked, refines around the
// specific-heat peak. Records come back sorted even when err is set.
func executeSweep(ctx context.Context, cfg *config.Config, opts sweepOptions) ([]sweep.Record, error) {
	ensureSeed(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	grid, err := cfg.Grid()
	if err != nil {
		return nil, err
	}

	driver := sweep.NewDriver(cfg.Workers)
	if !opts.live {
		// the live view owns the terminal
		driver.SetLogger(logger)
	}
	base := cfg.Params()

	logger.WithFields(logrus.Fields{
		"name":   cfg.Name,
		"size":   cfg.Size,
		"start":  cfg.Start,
		"points": len(grid),
		"seed":   cfg.Seed,
	}).Info("sweep configured")

	var records []sweep.Record
	if opts.live {
		records, err = tui.Run(ctx, cfg.Name, len(grid), func(ctx context.Context, onRecord func(sweep.Record)) ([]sweep.Record, error) {
			driver.OnRecord(onRecord)
			defer driver.OnRecord(nil)
			return driver.Run(ctx, grid, base)
		})
	} else {
		records, err = driver.Run(ctx, grid, base)
	}
	if records == nil || opts.refine <= 0 || errors.Is(err, context.Canceled) {
		return records, err
	}

	search := optim.NewPeakSearch(opts.refine, opts.refineRounds)
	refined, rerr := search.Refine(ctx, driver, records, base)
	return refined, errors.Join(err, rerr)
}

func saveRun(v *viper.Viper, cfg *config.Config, records []sweep.Record) error {
	st, err := openStore(v)
	if err != nil {
		return err
	}
	defer st.Close()

	id, err := st.Save(storage.MetadataFor(cfg, records), records)
	if err != nil {
		return err
	}
	logger.WithFields(logrus.Fields{"run": id, "backend": v.GetString("backend")}).Info("sweep saved")
	return nil
}

func runScenario(cmd *cobra.Command, args []string) error {
	v := newViper(cmd)
	sc, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, report.Title(sc.Name))
	if sc.Description != "" {
		fmt.Fprintln(out, sc.Description)
	}

	save := v.GetBool("save")
	_, err = automation.RunScenario(cmd.Context(), sc, func(ctx context.Context, cfg *config.Config) ([]sweep.Record, error) {
		if v.IsSet("workers") {
			cfg.Workers = v.GetInt("workers")
		}
		fmt.Fprintf(out, "\n%s (L=%d)\n", cfg.Name, cfg.Size)

		records, err := executeSweep(ctx, cfg, sweepOptions{})
		if records == nil {
			return nil, err
		}
		if perr := report.Lines(out, records); perr != nil {
			return records, perr
		}
		if save {
			if serr := saveRun(v, cfg, records); serr != nil {
				return records, errors.Join(err, serr)
			}
		}
		return records, err
	})
	return err
}
