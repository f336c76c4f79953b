package analysis

import (
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

// windowFactor is Sokal's self-consistent window constant: summation stops at
// the first lag W with W >= windowFactor·τ(W).
const windowFactor = 5.0

// Autocorrelation returns the normalized autocorrelation ρ(t) for
// t = 0..len(x)-1, computed by FFT on a zero-padded copy. ρ(0) is 1 unless
// the series is constant, in which case every lag is 0.
func Autocorrelation(x []float64) []float64 {
	n := len(x)
	if n == 0 {
		return nil
	}

	mean := Mean(x)
	size := 1
	for size < 2*n {
		size <<= 1
	}
	padded := make([]float64, size)
	for i, v := range x {
		padded[i] = v - mean
	}

	power := fft.FFTReal(padded)
	for i, c := range power {
		power[i] = complex(real(c*cmplx.Conj(c)), 0)
	}
	corr := fft.IFFT(power)

	acf := make([]float64, n)
	c0 := real(corr[0]) / float64(n)
	if c0 <= 0 {
		return acf
	}
	for t := 0; t < n; t++ {
		acf[t] = real(corr[t]) / float64(n-t) / c0
	}
	return acf
}

// IntegratedTime returns τ_int = 1/2 + Σ_{t=1}^{W} ρ(t) with an automatic
// window. Uncorrelated data gives 1/2.
func IntegratedTime(x []float64) float64 {
	acf := Autocorrelation(x)
	tau := 0.5
	for t := 1; t < len(acf); t++ {
		tau += acf[t]
		if float64(t) >= windowFactor*tau {
			break
		}
	}
	if tau < 0.5 {
		tau = 0.5
	}
	return tau
}

// Stats summarizes one observable's time series.
type Stats struct {
	Mean   float64
	StdDev float64
	Tau    float64
	StdErr float64
	N      int
}

func Analyze(x []float64) Stats {
	n := len(x)
	if n == 0 {
		return Stats{}
	}
	st := Stats{Mean: Mean(x), StdDev: StdDev(x), N: n, Tau: 0.5}
	if n < 2 || st.StdDev == 0 {
		return st
	}
	st.Tau = IntegratedTime(x)
	st.StdErr = st.StdDev * math.Sqrt(2*st.Tau/float64(n))
	return st
}

func Mean(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	s := 0.0
	for _, v := range x {
		s += v
	}
	return s / float64(len(x))
}

// StdDev is the population standard deviation.
func StdDev(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	m := Mean(x)
	s := 0.0
	for _, v := range x {
		d := v - m
		s += d * d
	}
	return math.Sqrt(s / float64(len(x)))
}
