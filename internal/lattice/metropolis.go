package lattice

import (
	"math"
	"math/rand"
)

// Metropolis is the single-spin-flip acceptance rule at inverse temperature
// Beta and coupling J.
//
// On a square lattice ΔE = 2·J·k with k = s·Σneighbors ∈ {-4,-2,0,2,4}, so
// the Boltzmann factors are tabulated once per rule.
type Metropolis struct {
	Beta     float64
	Coupling float64
	factor   [5]float64
}

func NewMetropolis(beta, coupling float64) *Metropolis {
	r := &Metropolis{Beta: beta, Coupling: coupling}
	for idx := range r.factor {
		k := 2*idx - 4
		r.factor[idx] = math.Exp(-beta * 2 * coupling * float64(k))
	}
	return r
}

// Probability returns the acceptance probability min(1, exp(-β·ΔE)).
func (r *Metropolis) Probability(dE float64) float64 {
	if dE <= 0 {
		return 1
	}
	return math.Exp(-r.Beta * dE)
}

// Accept applies the rule to an arbitrary ΔE with a pre-drawn u in [0,1).
// Large β·ΔE underflows exp to 0, which rejects.
func (r *Metropolis) Accept(dE, u float64) bool {
	if dE <= 0 {
		return true
	}
	return u < math.Exp(-r.Beta*dE)
}

func (r *Metropolis) accept(k int, rng *rand.Rand) bool {
	if 2*r.Coupling*float64(k) <= 0 {
		return true
	}
	return rng.Float64() < r.factor[(k+4)/2]
}
