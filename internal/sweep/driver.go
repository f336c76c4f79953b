package sweep

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"runtime"
	"sort"
	"time"

	"github.com/san-kum/ising/internal/lattice"
	"github.com/san-kum/ising/internal/sim"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Record is the outcome of one temperature.
type Record struct {
	Temperature   float64
	Energy        float64
	Magnetization float64
	SpecificHeat  float64
	Acceptance    float64
	Seed          int64
	Elapsed       time.Duration
	Err           error
}

func (r Record) Failed() bool { return r.Err != nil }

// TaskError ties a failure to the temperature that produced it.
type TaskError struct {
	Temperature float64
	Seed        int64
	Err         error
}

func (e *TaskError) Error() string {
	return fmt.Sprintf("T=%.4f (seed %d): %v", e.Temperature, e.Seed, e.Err)
}

func (e *TaskError) Unwrap() error { return e.Err }

type runFunc func(ctx context.Context, p sim.Params) (sim.Result, error)

type Driver struct {
	workers  int
	logger   *logrus.Logger
	pool     *lattice.Pool
	onRecord func(Record)
	run      runFunc
}

// NewDriver returns a driver with the given pool size; workers <= 0 means one
// worker per CPU.
func NewDriver(workers int) *Driver {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	d := &Driver{
		workers: workers,
		logger:  logger,
		pool:    lattice.NewPool(),
	}
	d.run = d.simulate
	return d
}

func (d *Driver) Workers() int { return d.workers }

func (d *Driver) SetLogger(l *logrus.Logger) {
	if l != nil {
		d.logger = l
	}
}

// OnRecord registers a callback invoked as each temperature finishes, in
// completion order. It is called from worker goroutines.
func (d *Driver) OnRecord(fn func(Record)) { d.onRecord = fn }

func (d *Driver) simulate(ctx context.Context, p sim.Params) (sim.Result, error) {
	s := sim.New()
	s.SetPool(d.pool)
	return s.Run(ctx, p)
}

// Run simulates every temperature with the shared parameters of base (its
// Beta and Seed are replaced per task) and returns records sorted ascending
// by temperature.
func (d *Driver) Run(ctx context.Context, temps []float64, base sim.Params) ([]Record, error) {
	if err := validate(temps, base); err != nil {
		return nil, err
	}

	d.logger.WithFields(logrus.Fields{
		"temperatures": len(temps),
		"size":         base.Size,
		"workers":      d.workers,
	}).Info("starting temperature sweep")

	records := make([]Record, len(temps))

	var g errgroup.Group
	g.SetLimit(d.workers)
	for idx, t := range temps {
		idx, t := idx, t
		g.Go(func() error {
			records[idx] = d.runOne(ctx, t, base)
			if d.onRecord != nil {
				d.onRecord(records[idx])
			}
			return nil
		})
	}
	_ = g.Wait()

	SortByTemperature(records)

	var errs []error
	for _, r := range records {
		if r.Err != nil {
			errs = append(errs, &TaskError{Temperature: r.Temperature, Seed: r.Seed, Err: r.Err})
		}
	}
	if len(errs) > 0 {
		d.logger.WithField("failed", len(errs)).Warn("temperature sweep finished with failures")
	}
	return records, errors.Join(errs...)
}

func (d *Driver) runOne(ctx context.Context, t float64, base sim.Params) (rec Record) {
	p := base.WithTemperature(t)
	p.Seed = SeedFor(base.Seed, t)
	rec = Record{Temperature: t, Seed: p.Seed}

	log := d.logger.WithFields(logrus.Fields{"temperature": t, "seed": p.Seed})
	log.Debug("task started")

	defer func() {
		if v := recover(); v != nil {
			rec.Err = fmt.Errorf("task panicked: %v", v)
			log.WithError(rec.Err).Error("task failed")
		}
	}()

	res, err := d.run(ctx, p)
	if err != nil {
		rec.Err = err
		log.WithError(err).Error("task failed")
		return rec
	}

	rec.Energy = res.Energy
	rec.Magnetization = res.Magnetization
	rec.SpecificHeat = res.SpecificHeat
	rec.Acceptance = res.Acceptance
	rec.Elapsed = res.Elapsed
	log.WithField("elapsed", res.Elapsed).Info("task finished")
	return rec
}

func validate(temps []float64, base sim.Params) error {
	if len(temps) == 0 {
		return &sim.ConfigError{Field: "temperatures", Value: 0, Reason: "at least one temperature required"}
	}
	for _, t := range temps {
		if !(t > 0) || math.IsInf(t, 0) {
			return &sim.ConfigError{Field: "temperature", Value: t, Reason: "must be positive and finite"}
		}
		if err := base.WithTemperature(t).Validate(); err != nil {
			return err
		}
	}
	return nil
}

// SortByTemperature orders records ascending by temperature in place.
func SortByTemperature(records []Record) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Temperature < records[j].Temperature
	})
}

// SeedFor derives the generator seed of one temperature from the base seed.
func SeedFor(base int64, t float64) int64 {
	z := uint64(base) ^ math.Float64bits(t)
	z += 0x9e3779b97f4a7c15
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return int64(z ^ (z >> 31))
}
