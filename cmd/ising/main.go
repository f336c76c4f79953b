package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"github.com/san-kum/ising/internal/config"
	"github.com/san-kum/ising/internal/lattice"
	"github.com/san-kum/ising/internal/storage"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var logger = logrus.New()

func main() {
	rootCmd := &cobra.Command{
		Use:           "ising",
		Short:         "2-D Ising model Monte Carlo lab",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupLogger(newViper(cmd).GetString("log-level"))
		},
	}

	rootCmd.PersistentFlags().String("data", ".ising", "data directory")
	rootCmd.PersistentFlags().String("backend", "file", "storage backend (file, sqlite)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "run a temperature sweep",
		Args:  cobra.NoArgs,
		RunE:  runSweep,
	}
	addModelFlags(sweepCmd.Flags())
	sweepCmd.Flags().Float64("tmin", config.DefaultTMin, "lowest temperature")
	sweepCmd.Flags().Float64("tmax", config.DefaultTMax, "highest temperature")
	sweepCmd.Flags().Int("points", config.DefaultPoints, "number of temperatures between tmin and tmax")
	sweepCmd.Flags().String("temps", "", "explicit temperatures, comma separated")
	sweepCmd.Flags().Int("workers", 0, "concurrent runs (0 = number of CPUs)")
	sweepCmd.Flags().Int("refine", 0, "extra points between the neighbors of the Cv peak")
	sweepCmd.Flags().Int("refine-rounds", 1, "number of refinement rounds")
	sweepCmd.Flags().Bool("save", false, "store the sweep")
	sweepCmd.Flags().Bool("table", false, "print an aligned table instead of result lines")
	sweepCmd.Flags().Bool("plot", false, "plot observables against temperature")
	sweepCmd.Flags().String("chart", "", "write PNG/SVG charts next to this path")
	sweepCmd.Flags().Bool("live", false, "show live progress")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a single temperature with error analysis",
		Args:  cobra.NoArgs,
		RunE:  runSingle,
	}
	addModelFlags(runCmd.Flags())
	runCmd.Flags().Float64("temp", 2.269, "temperature")
	runCmd.Flags().Bool("plot", false, "plot the energy trace")

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run every sweep of a scenario file",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}
	scenarioCmd.Flags().Int("workers", 0, "concurrent runs (0 = number of CPUs)")
	scenarioCmd.Flags().Bool("save", false, "store every step")

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "benchmark sweep throughput",
		Args:  cobra.NoArgs,
		RunE:  benchSweeps,
	}
	benchCmd.Flags().Int("sweeps", 2000, "sweeps per lattice size")
	benchCmd.Flags().String("sizes", "8,16,32,64", "lattice sizes, comma separated")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	showCmd := &cobra.Command{
		Use:   "show [run_id]",
		Short: "print a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  showRun,
	}
	showCmd.Flags().Bool("plot", false, "plot observables against temperature")

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run results to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}
	exportCSVCmd.Flags().String("out", "", "output file (default stdout)")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run metadata and results to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().String("out", "", "output file (default stdout)")

	chartCmd := &cobra.Command{
		Use:   "chart [run_id]",
		Short: "render PNG/SVG charts of a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  chartRun,
	}
	chartCmd.Flags().String("out", "ising.png", "output path; the observable is appended to the name")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list built-in presets",
		Args:  cobra.NoArgs,
		RunE:  listPresets,
	}

	rootCmd.AddCommand(sweepCmd, runCmd, scenarioCmd, benchCmd, listCmd, showCmd,
		exportCSVCmd, exportJSONCmd, chartCmd, presetsCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		logger.Error(err)
		os.Exit(1)
	}
}

// addModelFlags registers the settings shared by every single run.
func addModelFlags(fs *pflag.FlagSet) {
	fs.String("preset", "", "start from a built-in preset")
	fs.String("config", "", "config file path (yaml)")
	fs.Int("size", config.DefaultSize, "lattice side length L")
	fs.Float64("coupling", config.DefaultCoupling, "coupling constant J")
	fs.String("start", string(lattice.Cold), "initial state (cold, hot)")
	fs.Int("therm", config.DefaultThermalization, "thermalization sweeps")
	fs.Int("meas", config.DefaultMeasurement, "measurement sweeps")
	fs.Int64("seed", 0, "base random seed (0 = time based)")
}

// newViper binds the flags of cmd, including inherited ones, with
// ISING_ environment overrides (ISING_LOG_LEVEL, ISING_WORKERS, ...).
func newViper(cmd *cobra.Command) *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("ising")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	_ = v.BindPFlags(cmd.Flags())
	return v
}

func setupLogger(level string) error {
	logger.SetOutput(os.Stderr)
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	lvl, err := logrus.ParseLevel(strings.ToLower(level))
	if err != nil {
		return fmt.Errorf("invalid log level %q", level)
	}
	logger.SetLevel(lvl)
	return nil
}

// loadConfig resolves preset, config file, environment and flags in
// increasing order of precedence.
func loadConfig(v *viper.Viper) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if name := v.GetString("preset"); name != "" {
		cfg = config.GetPreset(name)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %s)", name, strings.Join(config.ListPresets(), ", "))
		}
	}
	if path := v.GetString("config"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if v.IsSet("size") {
		cfg.Size = v.GetInt("size")
	}
	if v.IsSet("coupling") {
		cfg.Coupling = v.GetFloat64("coupling")
	}
	if v.IsSet("start") {
		cfg.Start = lattice.Start(strings.ToLower(v.GetString("start")))
	}
	if v.IsSet("therm") {
		cfg.Thermalization = v.GetInt("therm")
	}
	if v.IsSet("meas") {
		cfg.Measurement = v.GetInt("meas")
	}
	if v.IsSet("seed") {
		cfg.Seed = v.GetInt64("seed")
	}
	if v.IsSet("workers") {
		cfg.Workers = v.GetInt("workers")
	}

	if v.IsSet("tmin") || v.IsSet("tmax") || v.IsSet("points") {
		cfg.Temperatures.Segments = []config.Segment{{
			From:   v.GetFloat64("tmin"),
			To:     v.GetFloat64("tmax"),
			Points: v.GetInt("points"),
		}}
		cfg.Temperatures.Values = nil
	}
	if raw := v.GetString("temps"); raw != "" {
		temps, err := parseFloats(raw)
		if err != nil {
			return nil, fmt.Errorf("--temps: %w", err)
		}
		if !v.IsSet("tmin") && !v.IsSet("tmax") && !v.IsSet("points") {
			cfg.Temperatures.Segments = nil
		}
		cfg.Temperatures.Values = temps
	}

	ensureSeed(cfg)
	return cfg, nil
}

// ensureSeed replaces a zero seed with a time based one; the chosen seed
// is logged and stored with the run so it can be replayed.
func ensureSeed(cfg *config.Config) {
	if cfg.Seed != 0 {
		return
	}
	cfg.Seed = time.Now().UnixNano()
	logger.WithField("seed", cfg.Seed).Debug("using time based seed")
}

func parseFloats(raw string) ([]float64, error) {
	var out []float64
	for _, field := range strings.Split(raw, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		f, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}

func parseInts(raw string) ([]int, error) {
	var out []int
	for _, field := range strings.Split(raw, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		n, err := strconv.Atoi(field)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

func openStore(v *viper.Viper) (storage.Store, error) {
	st, err := storage.Open(v.GetString("backend"), v.GetString("data"))
	if err != nil {
		return nil, err
	}
	if err := st.Init(); err != nil {
		st.Close()
		return nil, err
	}
	return st, nil
}
