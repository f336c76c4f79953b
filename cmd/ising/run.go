package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/ising/internal/analysis"
	"github.com/san-kum/ising/internal/lattice"
	"github.com/san-kum/ising/internal/metrics"
	"github.com/san-kum/ising/internal/report"
	"github.com/san-kum/ising/internal/sim"
	"github.com/san-kum/ising/internal/sweep"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func runSingle(cmd *cobra.Command, args []string) error {
	v := newViper(cmd)
	cfg, err := loadConfig(v)
	if err != nil {
		return err
	}
	temp := v.GetFloat64("temp")
	p := cfg.Params().WithTemperature(temp)
	if err := p.Validate(); err != nil {
		return err
	}

	series := metrics.NewSeries(p.Measurement)
	s := sim.New()
	s.AddObserver(series)

	every := max((p.Thermalization+p.Measurement)/10, 1)
	s.SetProgress(func(phase sim.Phase, n int) {
		if (n+1)%every == 0 {
			logger.WithFields(logrus.Fields{"phase": phase, "sweep": n + 1}).Debug("progress")
		}
	})

	logger.WithFields(logrus.Fields{"T": temp, "size": p.Size, "seed": p.Seed}).Info("run started")
	res, err := s.Run(cmd.Context(), p)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, report.Line(sweep.Record{
		Temperature:   temp,
		Energy:        res.Energy,
		Magnetization: res.Magnetization,
		SpecificHeat:  res.SpecificHeat,
	}))
	fmt.Fprintf(out, "acceptance: %.4f, samples: %d, elapsed: %v\n\n", res.Acceptance, res.Samples, res.Elapsed.Truncate(time.Millisecond))

	sites := p.Size * p.Size
	energy := metrics.PerSite(series.Energy, sites)
	stats := []struct {
		name string
		st   analysis.Stats
	}{
		{"E", analysis.Analyze(energy)},
		{"|M|", analysis.Analyze(metrics.PerSite(series.Magnetization, sites))},
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "OBS\tMEAN\tSTDDEV\tTAU\tSTDERR")
	for _, row := range stats {
		fmt.Fprintf(w, "%s\t%.5f\t%.5f\t%.2f\t%.5f\n", row.name, row.st.Mean, row.st.StdDev, row.st.Tau, row.st.StdErr)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if v.GetBool("plot") && len(energy) > 1 {
		graph := asciigraph.Plot(energy,
			asciigraph.Height(10),
			asciigraph.Width(70),
			asciigraph.Caption(fmt.Sprintf("E per site over %d samples at T=%.3f", len(energy), temp)),
		)
		fmt.Fprintf(out, "\n%s\n", graph)
	}
	return nil
}

func benchSweeps(cmd *cobra.Command, args []string) error {
	v := newViper(cmd)
	sweeps := v.GetInt("sweeps")
	sizes, err := parseInts(v.GetString("sizes"))
	if err != nil {
		return fmt.Errorf("--sizes: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "benchmarking %d sweeps at T=2.269\n\n", sweeps)
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "L\tSWEEPS\tTIME\tSWEEPS/SEC\tFLIPS/SEC")

	for _, size := range sizes {
		p := sim.Params{
			Size:           size,
			Coupling:       1,
			Thermalization: sweeps,
			Seed:           42,
			Start:          lattice.Cold,
		}.WithTemperature(2.269)

		res, err := sim.Run(cmd.Context(), p)
		if err != nil {
			return err
		}
		secs := res.Elapsed.Seconds()
		fmt.Fprintf(w, "%d\t%d\t%v\t%.0f\t%.3g\n",
			size, sweeps, res.Elapsed.Truncate(time.Microsecond),
			float64(sweeps)/secs, float64(sweeps*size*size)/secs)
	}
	return w.Flush()
}
