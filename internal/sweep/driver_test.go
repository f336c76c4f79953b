package sweep

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/ising/internal/lattice"
	"github.com/san-kum/ising/internal/sim"
)

var _ = Describe("Driver", func() {
	var (
		ctx  context.Context
		base sim.Params
	)

	BeforeEach(func() {
		ctx = context.Background()
		base = sim.Params{
			Size:           4,
			Coupling:       1.0,
			Thermalization: 50,
			Measurement:    100,
			Seed:           42,
			Start:          lattice.Cold,
		}
	})

	It("returns records sorted by temperature regardless of input order", func() {
		records, err := NewDriver(3).Run(ctx, []float64{3.0, 1.0, 2.0}, base)
		Expect(err).NotTo(HaveOccurred())
		Expect(Temperatures(records)).To(Equal([]float64{1.0, 2.0, 3.0}))
		for _, r := range records {
			Expect(r.Failed()).To(BeFalse())
			Expect(r.Magnetization).To(BeNumerically(">", 0))
		}
	})

	It("produces the same record for a temperature whatever the input order and pool size", func() {
		a, err := NewDriver(1).Run(ctx, []float64{1.5, 2.5, 3.5}, base)
		Expect(err).NotTo(HaveOccurred())
		b, err := NewDriver(4).Run(ctx, []float64{3.5, 1.5, 2.5}, base)
		Expect(err).NotTo(HaveOccurred())

		for i := range a {
			a[i].Elapsed, b[i].Elapsed = 0, 0
		}
		Expect(b).To(Equal(a))
	})

	It("derives distinct seeds per temperature", func() {
		records, err := NewDriver(2).Run(ctx, []float64{2.0, 2.1}, base)
		Expect(err).NotTo(HaveOccurred())
		Expect(records[0].Seed).NotTo(Equal(records[1].Seed))
		Expect(records[0].Seed).To(Equal(SeedFor(base.Seed, 2.0)))
	})

	It("fails fast on invalid configuration before running anything", func() {
		d := NewDriver(2)
		var calls int32
		d.run = func(ctx context.Context, p sim.Params) (sim.Result, error) {
			atomic.AddInt32(&calls, 1)
			return sim.Result{}, nil
		}

		_, err := d.Run(ctx, []float64{2.0, -1.0}, base)
		Expect(errors.Is(err, sim.ErrInvalidConfig)).To(BeTrue())

		_, err = d.Run(ctx, nil, base)
		Expect(errors.Is(err, sim.ErrInvalidConfig)).To(BeTrue())

		// 1/5e-324 overflows to an infinite beta
		_, err = d.Run(ctx, []float64{2.0, 2.5, 5e-324}, base)
		Expect(errors.Is(err, sim.ErrInvalidConfig)).To(BeTrue())

		bad := base
		bad.Size = 0
		_, err = d.Run(ctx, []float64{2.0}, bad)
		Expect(errors.Is(err, sim.ErrInvalidConfig)).To(BeTrue())

		Expect(atomic.LoadInt32(&calls)).To(BeZero())
	})

	It("flags failed temperatures without dropping them or aborting siblings", func() {
		d := NewDriver(3)
		boom := errors.New("out of memory")
		d.run = func(ctx context.Context, p sim.Params) (sim.Result, error) {
			switch p.Temperature() {
			case 2.0:
				return sim.Result{}, boom
			case 3.0:
				panic("allocation failed")
			}
			return sim.Result{Energy: -1, Magnetization: 0.5}, nil
		}

		records, err := d.Run(ctx, []float64{3.0, 1.0, 2.0, 4.0}, base)
		Expect(err).To(HaveOccurred())
		Expect(errors.Is(err, boom)).To(BeTrue())
		Expect(records).To(HaveLen(4))
		Expect(Temperatures(records)).To(Equal([]float64{1.0, 2.0, 3.0, 4.0}))

		Expect(records[0].Failed()).To(BeFalse())
		Expect(records[1].Err).To(MatchError(boom))
		Expect(records[2].Err).To(MatchError(ContainSubstring("allocation failed")))
		Expect(records[3].Failed()).To(BeFalse())
		Expect(records[3].Energy).To(Equal(-1.0))

		var te *TaskError
		Expect(errors.As(err, &te)).To(BeTrue())
		Expect(te.Temperature).To(BeElementOf(2.0, 3.0))
	})

	It("never runs more tasks at once than the pool size", func() {
		d := NewDriver(2)
		var running, peak int32
		var mu sync.Mutex
		d.run = func(ctx context.Context, p sim.Params) (sim.Result, error) {
			n := atomic.AddInt32(&running, 1)
			mu.Lock()
			if n > peak {
				peak = n
			}
			mu.Unlock()
			_, err := sim.Run(ctx, p)
			atomic.AddInt32(&running, -1)
			return sim.Result{}, err
		}

		_, err := d.Run(ctx, []float64{1, 1.5, 2, 2.5, 3, 3.5}, base)
		Expect(err).NotTo(HaveOccurred())
		Expect(peak).To(BeNumerically("<=", 2))
	})

	It("reports every completed record to the callback", func() {
		d := NewDriver(2)
		var mu sync.Mutex
		var seen []float64
		d.OnRecord(func(r Record) {
			mu.Lock()
			seen = append(seen, r.Temperature)
			mu.Unlock()
		})

		_, err := d.Run(ctx, []float64{1.0, 2.0, 3.0}, base)
		Expect(err).NotTo(HaveOccurred())
		Expect(seen).To(ConsistOf(1.0, 2.0, 3.0))
	})

	It("marks every task canceled when the context is done", func() {
		cctx, cancel := context.WithCancel(ctx)
		cancel()

		records, err := NewDriver(2).Run(cctx, []float64{1.0, 2.0}, base)
		Expect(errors.Is(err, sim.ErrCanceled)).To(BeTrue())
		Expect(records).To(HaveLen(2))
		for _, r := range records {
			Expect(r.Failed()).To(BeTrue())
		}
	})

	It("shows a specific-heat maximum near the critical temperature", func() {
		p := base
		p.Size = 16
		p.Thermalization = 2000
		p.Measurement = 4000

		records, err := NewDriver(0).Run(ctx, []float64{1.5, 2.3, 3.5}, p)
		Expect(err).NotTo(HaveOccurred())
		low, crit, high := records[0], records[1], records[2]
		Expect(crit.SpecificHeat).To(BeNumerically(">", low.SpecificHeat))
		Expect(crit.SpecificHeat).To(BeNumerically(">", high.SpecificHeat))
		Expect(low.Magnetization).To(BeNumerically(">", high.Magnetization))
	})
})

var _ = Describe("Merge", func() {
	It("sorts and drops duplicate temperatures", func() {
		a := []Record{{Temperature: 2.0, Energy: -1}, {Temperature: 1.0}}
		b := []Record{{Temperature: 2.0, Energy: -9}, {Temperature: 1.5}}

		merged := Merge(a, b)
		Expect(Temperatures(merged)).To(Equal([]float64{1.0, 1.5, 2.0}))
		Expect(merged[2].Energy).To(Equal(-1.0))
	})
})

var _ = Describe("SeedFor", func() {
	It("is stable and sensitive to both inputs", func() {
		Expect(SeedFor(1, 2.5)).To(Equal(SeedFor(1, 2.5)))
		Expect(SeedFor(1, 2.5)).NotTo(Equal(SeedFor(2, 2.5)))
		Expect(SeedFor(1, 2.5)).NotTo(Equal(SeedFor(1, 2.6)))
	})
})

var _ = Describe("Peak", func() {
	It("picks the largest specific heat among successful records", func() {
		records := []Record{
			{Temperature: 1.0, SpecificHeat: 0.1},
			{Temperature: 2.3, SpecificHeat: 1.6},
			{Temperature: 2.4, SpecificHeat: 9, Err: errors.New("x")},
			{Temperature: 3.0, SpecificHeat: 0.3},
		}
		r, idx, ok := Peak(records)
		Expect(ok).To(BeTrue())
		Expect(idx).To(Equal(1))
		Expect(r.Temperature).To(Equal(2.3))

		_, _, ok = Peak(records[2:3])
		Expect(ok).To(BeFalse())
	})
})
