// Package analysis estimates statistical errors of Monte Carlo time series.
//
// Successive sweeps of a Markov chain are correlated, so the naive standard
// error of a mean underestimates the true one. The package measures the
// correlation through the normalized autocorrelation function and its
// integrated autocorrelation time τ:
//
//	st := analysis.Analyze(series.Energy)
//	fmt.Printf("E = %.4f ± %.4f (τ=%.1f)\n", st.Mean, st.StdErr, st.Tau)
//
// An effectively independent sample is collected every 2τ sweeps.
package analysis
