package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/san-kum/ising/internal/config"
	"github.com/san-kum/ising/internal/export"
	"github.com/san-kum/ising/internal/report"
	"github.com/san-kum/ising/internal/storage"
	"github.com/san-kum/ising/internal/sweep"
	"github.com/spf13/cobra"
)

func loadRun(cmd *cobra.Command, runID string) (*storage.RunMetadata, []sweep.Record, error) {
	st, err := openStore(newViper(cmd))
	if err != nil {
		return nil, nil, err
	}
	defer st.Close()

	meta, err := st.Load(runID)
	if err != nil {
		return nil, nil, err
	}
	records, err := st.LoadRecords(runID)
	if err != nil {
		return nil, nil, err
	}
	return meta, records, nil
}

// output returns stdout or the file named by --out; close must be called.
func output(cmd *cobra.Command) (w io.Writer, closeFn func() error, err error) {
	path, _ := cmd.Flags().GetString("out")
	if path == "" {
		return cmd.OutOrStdout(), func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	st, err := openStore(newViper(cmd))
	if err != nil {
		return err
	}
	defer st.Close()

	runs, err := st.List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "no runs found")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tL\tPOINTS\tFAILED\tTIME")
	for _, r := range runs {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\t%s\n",
			r.ID, r.Name, r.Size, r.Temperatures, r.Failed, r.Timestamp.Format("2006-01-02 15:04:05"))
	}
	return w.Flush()
}

func showRun(cmd *cobra.Command, args []string) error {
	meta, records, err := loadRun(cmd, args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, report.Title(meta.ID))
	fmt.Fprintf(out, "L=%d J=%g start=%s therm=%d meas=%d seed=%d\n\n",
		meta.Size, meta.Coupling, meta.Start, meta.Thermalization, meta.Measurement, meta.Seed)
	if err := report.Table(out, records); err != nil {
		return err
	}

	if plot, _ := cmd.Flags().GetBool("plot"); plot {
		fmt.Fprintln(out)
		return report.Plot(out, records, 60, 12)
	}
	return nil
}

func exportCSV(cmd *cobra.Command, args []string) error {
	_, records, err := loadRun(cmd, args[0])
	if err != nil {
		return err
	}
	w, closeOut, err := output(cmd)
	if err != nil {
		return err
	}
	if err := storage.WriteCSV(csv.NewWriter(w), records); err != nil {
		closeOut()
		return err
	}
	return closeOut()
}

func exportJSON(cmd *cobra.Command, args []string) error {
	meta, records, err := loadRun(cmd, args[0])
	if err != nil {
		return err
	}
	w, closeOut, err := output(cmd)
	if err != nil {
		return err
	}
	if err := storage.ExportJSON(w, *meta, records); err != nil {
		closeOut()
		return err
	}
	return closeOut()
}

func chartRun(cmd *cobra.Command, args []string) error {
	_, records, err := loadRun(cmd, args[0])
	if err != nil {
		return err
	}
	path, _ := cmd.Flags().GetString("out")
	paths, err := export.WriteCharts(path, records)
	for _, p := range paths {
		fmt.Fprintln(cmd.OutOrStdout(), p)
	}
	return err
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tL\tSTART\tTHERM\tMEAS\tPOINTS\tRANGE")
	for _, name := range config.ListPresets() {
		cfg := config.GetPreset(name)
		grid, err := cfg.Grid()
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s\t%d\t%s\t%d\t%d\t%d\t%.2f..%.2f\n",
			name, cfg.Size, cfg.Start, cfg.Thermalization, cfg.Measurement,
			len(grid), grid[0], grid[len(grid)-1])
	}
	return w.Flush()
}
