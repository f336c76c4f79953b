package metrics

import "math"

// Accumulator folds instantaneous lattice measurements into the running sums
// needed for the thermodynamic averages. It belongs to exactly one run.
type Accumulator struct {
	energy        float64
	magnetization float64
	energy2       float64
	samples       int
}

func NewAccumulator() *Accumulator { return &Accumulator{} }

// Observe adds one sample of total energy e and total magnetization m.
// Only |m| is accumulated.
func (a *Accumulator) Observe(e, m float64) {
	a.energy += e
	a.magnetization += math.Abs(m)
	a.energy2 += e * e
	a.samples++
}

func (a *Accumulator) Samples() int { return a.samples }

func (a *Accumulator) Reset() { *a = Accumulator{} }

// MeanEnergy is ⟨E⟩ over samples, not normalized by lattice size.
func (a *Accumulator) MeanEnergy() float64 {
	if a.samples == 0 {
		return 0
	}
	return a.energy / float64(a.samples)
}

// EnergyVariance is ⟨E²⟩ - ⟨E⟩² over samples, clamped at zero since the
// difference of the running sums can round below it.
func (a *Accumulator) EnergyVariance() float64 {
	if a.samples == 0 {
		return 0
	}
	mean := a.energy / float64(a.samples)
	return math.Max(0, a.energy2/float64(a.samples)-mean*mean)
}

// Summary is the per-site view of an accumulator.
type Summary struct {
	Energy        float64
	Magnetization float64
	SpecificHeat  float64
}

// Summarize normalizes the sums for a lattice of the given number of sites
// at inverse temperature beta. The heat capacity uses the variance of total
// energies before dividing by the site count.
func (a *Accumulator) Summarize(sites int, beta float64) Summary {
	if a.samples == 0 || sites <= 0 {
		return Summary{}
	}
	n := float64(a.samples)
	N := float64(sites)
	return Summary{
		Energy:        a.energy / (n * N),
		Magnetization: a.magnetization / (n * N),
		SpecificHeat:  beta * beta * a.EnergyVariance() / N,
	}
}
