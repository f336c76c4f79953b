package lattice

import (
	"math/rand"
	"sync"
)

// Pool recycles spin buffers between runs of the same size. A buffer handed
// out by Get belongs to exactly one lattice until it is returned with Put.
type Pool struct {
	mu    sync.Mutex
	pools map[int]*sync.Pool
}

func NewPool() *Pool {
	return &Pool{pools: make(map[int]*sync.Pool)}
}

func (p *Pool) forSize(size int) *sync.Pool {
	p.mu.Lock()
	defer p.mu.Unlock()
	sp, ok := p.pools[size]
	if !ok {
		n := size * size
		sp = &sync.Pool{
			New: func() interface{} {
				buf := make([]int8, n)
				return &buf
			},
		}
		p.pools[size] = sp
	}
	return sp
}

// Get returns a freshly initialized lattice backed by a recycled buffer.
func (p *Pool) Get(size int, start Start, rng *rand.Rand) (*Lattice, error) {
	if size <= 0 {
		return New(size, start, rng)
	}
	buf := p.forSize(size).Get().(*[]int8)
	l, err := fromBuffer(*buf, size, start, rng)
	if err != nil {
		p.forSize(size).Put(buf)
		return nil, err
	}
	return l, nil
}

// Put hands the lattice's buffer back. The lattice must not be used afterwards.
func (p *Pool) Put(l *Lattice) {
	if l == nil || len(l.spins) != l.size*l.size {
		return
	}
	buf := l.spins
	l.spins = nil
	p.forSize(l.size).Put(&buf)
}
