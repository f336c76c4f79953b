package lattice

import (
	"math"
	"math/rand"
	"testing"
)

func TestAcceptNonPositiveAlways(t *testing.T) {
	r := NewMetropolis(5.0, 1.0)
	for _, dE := range []float64{0, -4, -8, -1e9} {
		for _, u := range []float64{0, 0.5, 0.999999} {
			if !r.Accept(dE, u) {
				t.Errorf("dE=%v u=%v rejected", dE, u)
			}
		}
	}
}

func TestAcceptFrequency(t *testing.T) {
	tests := []struct {
		beta, dE float64
	}{
		{0.3, 4},
		{0.44, 8},
		{1.0, 0.5},
	}

	const trials = 200000
	for _, tt := range tests {
		r := NewMetropolis(tt.beta, 1.0)
		rng := rand.New(rand.NewSource(99))
		hits := 0
		for i := 0; i < trials; i++ {
			if r.Accept(tt.dE, rng.Float64()) {
				hits++
			}
		}
		want := math.Exp(-tt.beta * tt.dE)
		got := float64(hits) / trials
		sigma := math.Sqrt(want * (1 - want) / trials)
		if math.Abs(got-want) > 5*sigma+1e-4 {
			t.Errorf("beta=%v dE=%v: frequency %.5f, want %.5f", tt.beta, tt.dE, got, want)
		}
	}
}

func TestAcceptUnderflowRejects(t *testing.T) {
	r := NewMetropolis(1e6, 1.0)
	p := r.Probability(1e6)
	if p != 0 || math.IsNaN(p) {
		t.Fatalf("exp underflow gave %v, want 0", p)
	}
	if r.Accept(1e6, 0) {
		t.Error("huge dE accepted with u=0")
	}
	if r.Accept(8, 0) {
		t.Error("dE=8 at beta=1e6 accepted")
	}
}

func TestTableMatchesDirectRule(t *testing.T) {
	for _, coupling := range []float64{1.0, -1.0, 0.5} {
		r := NewMetropolis(0.6, coupling)
		for k := -4; k <= 4; k += 2 {
			dE := 2 * coupling * float64(k)
			want := r.Probability(dE)
			got := 1.0
			if dE > 0 {
				got = r.factor[(k+4)/2]
			}
			if math.Abs(got-want) > 1e-15 {
				t.Errorf("J=%v k=%d: table %v, direct %v", coupling, k, got, want)
			}
		}
	}
}

func TestStepEnergyLoweringAlwaysFlips(t *testing.T) {
	l, _ := New(4, Cold, nil)
	l.Flip(2, 2)
	rng := rand.New(rand.NewSource(1))
	if !l.Step(2, 2, NewMetropolis(100, 1.0), rng) {
		t.Fatal("energy-lowering flip rejected")
	}
	if l.At(2, 2) != 1 {
		t.Error("spin not restored")
	}
}
