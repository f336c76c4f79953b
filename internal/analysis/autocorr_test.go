package analysis

import (
	"math"
	"math/rand"
	"testing"
)

func ar1(n int, phi float64, seed int64) []float64 {
	rng := rand.New(rand.NewSource(seed))
	x := make([]float64, n)
	for i := 1; i < n; i++ {
		x[i] = phi*x[i-1] + rng.NormFloat64()
	}
	return x
}

func TestAutocorrelationZeroLag(t *testing.T) {
	acf := Autocorrelation([]float64{1, 3, 2, 5, 4})
	if math.Abs(acf[0]-1) > 1e-9 {
		t.Errorf("acf[0] = %v, want 1", acf[0])
	}
}

func TestAutocorrelationMatchesDirectSum(t *testing.T) {
	x := ar1(200, 0.5, 4)
	acf := Autocorrelation(x)

	m := Mean(x)
	c0 := 0.0
	for _, v := range x {
		c0 += (v - m) * (v - m)
	}
	c0 /= float64(len(x))

	for _, lag := range []int{1, 2, 5, 17} {
		c := 0.0
		for i := 0; i+lag < len(x); i++ {
			c += (x[i] - m) * (x[i+lag] - m)
		}
		want := c / float64(len(x)-lag) / c0
		if math.Abs(acf[lag]-want) > 1e-9 {
			t.Errorf("lag %d: fft %v, direct %v", lag, acf[lag], want)
		}
	}
}

func TestIntegratedTimeWhiteNoise(t *testing.T) {
	tau := IntegratedTime(ar1(20000, 0, 1))
	if math.Abs(tau-0.5) > 0.1 {
		t.Errorf("white noise tau = %v, want ~0.5", tau)
	}
}

func TestIntegratedTimeAR1(t *testing.T) {
	const phi = 0.8
	want := (1 + phi) / (2 * (1 - phi))
	tau := IntegratedTime(ar1(50000, phi, 2))
	if math.Abs(tau-want) > 1.0 {
		t.Errorf("AR(1) tau = %v, want ~%v", tau, want)
	}
}

func TestAnalyzeConstantSeries(t *testing.T) {
	st := Analyze([]float64{-2, -2, -2, -2})
	if st.Mean != -2 || st.StdDev != 0 || st.StdErr != 0 || st.Tau != 0.5 {
		t.Errorf("unexpected stats %+v", st)
	}
}

func TestAnalyzeEmpty(t *testing.T) {
	if st := Analyze(nil); st != (Stats{}) {
		t.Errorf("unexpected stats %+v", st)
	}
	if Autocorrelation(nil) != nil {
		t.Error("expected nil acf")
	}
}

func TestAnalyzeStdErrGrowsWithCorrelation(t *testing.T) {
	white := Analyze(ar1(10000, 0, 3))
	corr := Analyze(ar1(10000, 0.9, 3))
	naive := corr.StdDev / math.Sqrt(float64(corr.N))
	if corr.StdErr <= 2*naive {
		t.Errorf("correlated stderr %v not inflated over naive %v", corr.StdErr, naive)
	}
	if white.Tau > 1 {
		t.Errorf("white tau = %v", white.Tau)
	}
}
