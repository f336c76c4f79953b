package sim

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/san-kum/ising/internal/lattice"
	"github.com/san-kum/ising/internal/metrics"
)

// Simulator runs single-temperature Metropolis simulations. Observers and
// the buffer pool are shared configuration; every Run owns its own lattice,
// generator and accumulator.
type Simulator struct {
	pool      *lattice.Pool
	observers []Observer
	progress  ProgressFunc
}

func New() *Simulator {
	return &Simulator{observers: make([]Observer, 0)}
}

func (s *Simulator) AddObserver(o Observer)      { s.observers = append(s.observers, o) }
func (s *Simulator) SetProgress(fn ProgressFunc) { s.progress = fn }
func (s *Simulator) SetPool(p *lattice.Pool)     { s.pool = p }

// Run executes thermalization then measurement and returns per-site
// observables. The context is only consulted between sweeps.
func (s *Simulator) Run(ctx context.Context, p Params) (Result, error) {
	if err := p.Validate(); err != nil {
		return Result{}, err
	}

	start := time.Now()
	rng := rand.New(rand.NewSource(p.Seed))

	lat, err := s.newLattice(p, rng)
	if err != nil {
		return Result{}, err
	}
	if s.pool != nil {
		defer s.pool.Put(lat)
	}

	rule := lattice.NewMetropolis(p.Beta, p.Coupling)

	for i := 0; i < p.Thermalization; i++ {
		if err := checkCanceled(ctx); err != nil {
			return Result{}, err
		}
		lat.Sweep(rng, rule)
		if s.progress != nil {
			s.progress(Thermalization, i)
		}
	}

	lat.ResetCounts()
	acc := metrics.NewAccumulator()

	for i := 0; i < p.Measurement; i++ {
		if err := checkCanceled(ctx); err != nil {
			return Result{}, err
		}
		lat.Sweep(rng, rule)

		e, m := lat.Measure(p.Coupling)
		acc.Observe(e, m)
		for _, o := range s.observers {
			o.Observe(e, m)
		}
		if s.progress != nil {
			s.progress(Measurement, i)
		}
	}

	sum := acc.Summarize(lat.Sites(), p.Beta)
	result := Result{
		Energy:        sum.Energy,
		Magnetization: sum.Magnetization,
		SpecificHeat:  sum.SpecificHeat,
		Samples:       acc.Samples(),
		Elapsed:       time.Since(start),
	}
	if accepted, attempted := lat.AcceptanceCounts(); attempted > 0 {
		result.Acceptance = float64(accepted) / float64(attempted)
	}
	return result, nil
}

func (s *Simulator) newLattice(p Params, rng *rand.Rand) (*lattice.Lattice, error) {
	if s.pool != nil {
		return s.pool.Get(p.Size, p.Start, rng)
	}
	return lattice.New(p.Size, p.Start, rng)
}

func checkCanceled(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("%w: %w", ErrCanceled, ctx.Err())
	default:
		return nil
	}
}

// Run is a convenience for a simulator without observers.
func Run(ctx context.Context, p Params) (Result, error) {
	return New().Run(ctx, p)
}
