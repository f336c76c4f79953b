package optim

import (
	"context"
	"fmt"
	"sort"

	"github.com/san-kum/ising/internal/sim"
	"github.com/san-kum/ising/internal/sweep"
	"gonum.org/v1/gonum/floats"
)

// gridTolerance matches the de-duplication of configured grids.
const gridTolerance = 1e-12

// Runner is the part of the sweep driver a refinement needs.
type Runner interface {
	Run(ctx context.Context, temps []float64, base sim.Params) ([]sweep.Record, error)
}

// PeakSearch narrows in on the specific-heat maximum by repeatedly
// re-sweeping the interval between the neighbors of the current peak.
type PeakSearch struct {
	points int
	rounds int
}

func NewPeakSearch(points, rounds int) *PeakSearch {
	return &PeakSearch{points: points, rounds: rounds}
}

// Interior returns n evenly spaced temperatures strictly between lo and hi.
func Interior(lo, hi float64, n int) []float64 {
	if n <= 0 || hi <= lo {
		return nil
	}
	span := floats.Span(make([]float64, n+2), lo, hi)
	return span[1 : n+1]
}

// Candidates returns up to n new temperatures around the peak of records,
// split between the gap below it and the gap above it so that the peak
// itself is never a candidate. An odd point goes to the side whose
// neighbor has the larger specific heat. Temperatures already present in
// records are dropped.
func Candidates(records []sweep.Record, n int) ([]float64, error) {
	peak, idx, ok := sweep.Peak(records)
	if !ok {
		return nil, fmt.Errorf("no successful record to refine")
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("need at least two temperatures to bracket a peak")
	}

	below, above := n/2, n/2
	switch {
	case idx == 0:
		below, above = 0, n
	case idx == len(records)-1:
		below, above = n, 0
	case n%2 == 1:
		if records[idx-1].SpecificHeat > records[idx+1].SpecificHeat {
			below++
		} else {
			above++
		}
	}

	var temps []float64
	if below > 0 {
		temps = append(temps, Interior(records[idx-1].Temperature, peak.Temperature, below)...)
	}
	if above > 0 {
		temps = append(temps, Interior(peak.Temperature, records[idx+1].Temperature, above)...)
	}
	return unseen(temps, records), nil
}

// unseen drops temperatures within gridTolerance of an existing record.
func unseen(temps []float64, records []sweep.Record) []float64 {
	out := temps[:0]
	for _, t := range temps {
		i := sort.Search(len(records), func(i int) bool {
			return records[i].Temperature >= t-gridTolerance
		})
		if i < len(records) && records[i].Temperature <= t+gridTolerance {
			continue
		}
		out = append(out, t)
	}
	return out
}

// Refine runs the configured rounds and returns the merged, sorted records.
// Records must already be sorted by temperature.
func (p *PeakSearch) Refine(ctx context.Context, r Runner, records []sweep.Record, base sim.Params) ([]sweep.Record, error) {
	merged := records
	for round := 0; round < p.rounds; round++ {
		temps, err := Candidates(merged, p.points)
		if err != nil {
			return merged, err
		}
		if len(temps) == 0 {
			return merged, nil
		}

		extra, err := r.Run(ctx, temps, base)
		merged = sweep.Merge(merged, extra)
		if err != nil {
			return merged, fmt.Errorf("refine round %d: %w", round+1, err)
		}
	}
	return merged, nil
}
