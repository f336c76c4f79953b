package lattice

import (
	"fmt"
	"math/rand"
)

// Start selects the initial spin configuration of a fresh lattice.
type Start string

const (
	// Cold starts with every spin +1.
	Cold Start = "cold"
	// Hot draws every spin independently and uniformly from {-1, +1}.
	Hot Start = "hot"
)

func (s Start) Valid() bool { return s == Cold || s == Hot }

// Lattice is an L×L grid of ±1 spins stored row-major in one slice.
type Lattice struct {
	size  int
	spins []int8

	accepted  int64
	attempted int64
}

// New allocates a lattice of the given size. rng is only read for a hot start.
func New(size int, start Start, rng *rand.Rand) (*Lattice, error) {
	if size <= 0 {
		return nil, fmt.Errorf("lattice: size must be positive, got %d", size)
	}
	return fromBuffer(make([]int8, size*size), size, start, rng)
}

func fromBuffer(buf []int8, size int, start Start, rng *rand.Rand) (*Lattice, error) {
	l := &Lattice{size: size, spins: buf[:size*size]}
	switch start {
	case Cold, "":
		for k := range l.spins {
			l.spins[k] = 1
		}
	case Hot:
		if rng == nil {
			return nil, fmt.Errorf("lattice: hot start needs a random source")
		}
		for k := range l.spins {
			if rng.Intn(2) == 0 {
				l.spins[k] = -1
			} else {
				l.spins[k] = 1
			}
		}
	default:
		return nil, fmt.Errorf("lattice: unknown start %q", start)
	}
	return l, nil
}

func (l *Lattice) Size() int { return l.size }

// Sites returns L².
func (l *Lattice) Sites() int { return len(l.spins) }

func (l *Lattice) At(i, j int) int8 { return l.spins[i*l.size+j] }

func (l *Lattice) Flip(i, j int) { l.spins[i*l.size+j] = -l.spins[i*l.size+j] }

// Neighbors returns the four nearest neighbors of (i, j) in the order
// down, right, up, left, wrapping around both edges.
func (l *Lattice) Neighbors(i, j int) [4][2]int {
	n := l.size
	ip := i + 1
	if ip == n {
		ip = 0
	}
	im := i - 1
	if im < 0 {
		im = n - 1
	}
	jp := j + 1
	if jp == n {
		jp = 0
	}
	jm := j - 1
	if jm < 0 {
		jm = n - 1
	}
	return [4][2]int{{ip, j}, {i, jp}, {im, j}, {i, jm}}
}

// neighborSum returns s(i,j) times the sum of its four neighbors, an even
// integer in [-4, 4].
func (l *Lattice) neighborSum(i, j int) int {
	nb := l.Neighbors(i, j)
	sum := 0
	for _, p := range nb {
		sum += int(l.spins[p[0]*l.size+p[1]])
	}
	return int(l.spins[i*l.size+j]) * sum
}

// DeltaE is the energy change from flipping the spin at (i, j).
func (l *Lattice) DeltaE(i, j int, coupling float64) float64 {
	return 2 * coupling * float64(l.neighborSum(i, j))
}

// Step attempts one Metropolis flip at (i, j) and reports whether it was taken.
func (l *Lattice) Step(i, j int, rule *Metropolis, rng *rand.Rand) bool {
	l.attempted++
	if !rule.accept(l.neighborSum(i, j), rng) {
		return false
	}
	l.spins[i*l.size+j] = -l.spins[i*l.size+j]
	l.accepted++
	return true
}

// Sweep performs L² Metropolis steps on cells drawn uniformly with
// replacement.
func (l *Lattice) Sweep(rng *rand.Rand, rule *Metropolis) {
	n := l.size
	for k := 0; k < len(l.spins); k++ {
		i := rng.Intn(n)
		j := rng.Intn(n)
		l.Step(i, j, rule, rng)
	}
}

// Measure returns the total energy and magnetization of the current
// configuration. Each bond is counted once through its right and down pair.
func (l *Lattice) Measure(coupling float64) (energy, magnetization float64) {
	n := l.size
	var bonds, m int
	for i := 0; i < n; i++ {
		row := l.spins[i*n : (i+1)*n]
		down := l.spins[((i+1)%n)*n : ((i+1)%n+1)*n]
		for j, s := range row {
			right := row[(j+1)%n]
			bonds += int(s) * (int(right) + int(down[j]))
			m += int(s)
		}
	}
	return -coupling * float64(bonds), float64(m)
}

// AcceptanceCounts returns the accepted and attempted flips since the last
// ResetCounts.
func (l *Lattice) AcceptanceCounts() (accepted, attempted int64) {
	return l.accepted, l.attempted
}

func (l *Lattice) ResetCounts() {
	l.accepted = 0
	l.attempted = 0
}

// String renders the lattice with '+' and '-' rows.
func (l *Lattice) String() string {
	b := make([]byte, 0, len(l.spins)+l.size)
	for i := 0; i < l.size; i++ {
		for j := 0; j < l.size; j++ {
			if l.At(i, j) > 0 {
				b = append(b, '+')
			} else {
				b = append(b, '-')
			}
		}
		b = append(b, '\n')
	}
	return string(b)
}
