package metrics

import "math"

// Series records every measurement sample so that correlations between
// successive sweeps can be analysed after the run.
type Series struct {
	Energy        []float64
	Magnetization []float64
}

func NewSeries(capacity int) *Series {
	return &Series{
		Energy:        make([]float64, 0, capacity),
		Magnetization: make([]float64, 0, capacity),
	}
}

// Observe stores e and |m|.
func (s *Series) Observe(e, m float64) {
	s.Energy = append(s.Energy, e)
	s.Magnetization = append(s.Magnetization, math.Abs(m))
}

func (s *Series) Len() int { return len(s.Energy) }

func (s *Series) Reset() {
	s.Energy = s.Energy[:0]
	s.Magnetization = s.Magnetization[:0]
}

// PerSite returns a copy of values divided by sites.
func PerSite(values []float64, sites int) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = v / float64(sites)
	}
	return out
}
