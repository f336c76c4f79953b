package storage

import (
	"encoding/json"
	"io"

	"github.com/san-kum/ising/internal/sweep"
)

type ExportRecord struct {
	Temperature   float64 `json:"temperature"`
	Energy        float64 `json:"energy"`
	Magnetization float64 `json:"magnetization"`
	SpecificHeat  float64 `json:"specific_heat"`
	Acceptance    float64 `json:"acceptance"`
	Seed          int64   `json:"seed"`
	Error         string  `json:"error,omitempty"`
}

type ExportData struct {
	Run     RunMetadata    `json:"run"`
	Records []ExportRecord `json:"records"`
}

// ExportJSON writes a run and its records as indented JSON.
func ExportJSON(w io.Writer, meta RunMetadata, records []sweep.Record) error {
	data := ExportData{
		Run:     meta,
		Records: make([]ExportRecord, len(records)),
	}
	for i, r := range records {
		data.Records[i] = ExportRecord{
			Temperature:   r.Temperature,
			Energy:        r.Energy,
			Magnetization: r.Magnetization,
			SpecificHeat:  r.SpecificHeat,
			Acceptance:    r.Acceptance,
			Seed:          r.Seed,
		}
		if r.Err != nil {
			data.Records[i].Error = r.Err.Error()
		}
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}
