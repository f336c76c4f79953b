// Package lattice implements the square-lattice Ising spin grid and its
// single-spin-flip Metropolis dynamics.
//
// The package provides:
//
//   - [Lattice]: L×L grid of ±1 spins with periodic boundaries
//   - [Metropolis]: acceptance rule for a fixed inverse temperature and coupling
//   - [Pool]: reusable spin buffers for workers that run many lattices in turn
//
// # Example
//
//	rng := rand.New(rand.NewSource(42))
//	lat, _ := lattice.New(32, lattice.Cold, rng)
//	rule := lattice.NewMetropolis(1/2.269, 1.0)
//	lat.Sweep(rng, rule)
//	e, m := lat.Measure(1.0)
//
// # Thread Safety
//
// A Lattice is owned by exactly one run and is NOT safe for concurrent use.
// Every method that draws random numbers takes the caller's *rand.Rand; the
// package never touches a process-wide generator.
package lattice
