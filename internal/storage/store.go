package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/ising/internal/config"
	"github.com/san-kum/ising/internal/sweep"
)

// Store persists finished sweeps.
type Store interface {
	Init() error
	Save(meta RunMetadata, records []sweep.Record) (string, error)
	List() ([]RunMetadata, error)
	Load(runID string) (*RunMetadata, error)
	LoadRecords(runID string) ([]sweep.Record, error)
	Close() error
}

type RunMetadata struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Timestamp      time.Time `json:"timestamp"`
	Size           int       `json:"size"`
	Coupling       float64   `json:"coupling"`
	Start          string    `json:"start"`
	Thermalization int       `json:"thermalization"`
	Measurement    int       `json:"measurement"`
	Seed           int64     `json:"seed"`
	Workers        int       `json:"workers"`
	Temperatures   int       `json:"temperatures"`
	Failed         int       `json:"failed"`
}

// MetadataFor describes a sweep of cfg that produced records.
func MetadataFor(cfg *config.Config, records []sweep.Record) RunMetadata {
	meta := RunMetadata{
		Name:           cfg.Name,
		Timestamp:      time.Now(),
		Size:           cfg.Size,
		Coupling:       cfg.Coupling,
		Start:          string(cfg.Start),
		Thermalization: cfg.Thermalization,
		Measurement:    cfg.Measurement,
		Seed:           cfg.Seed,
		Workers:        cfg.Workers,
		Temperatures:   len(records),
	}
	if meta.Name == "" {
		meta.Name = "sweep"
	}
	for _, r := range records {
		if r.Failed() {
			meta.Failed++
		}
	}
	return meta
}

func newRunID(meta RunMetadata) string {
	return fmt.Sprintf("%s_L%d_%d", meta.Name, meta.Size, time.Now().UnixNano())
}

// Open returns the store for backend ("file" or "sqlite") rooted at dataDir.
func Open(backend, dataDir string) (Store, error) {
	switch backend {
	case "", "file":
		return New(dataDir), nil
	case "sqlite":
		if err := os.MkdirAll(dataDir, 0755); err != nil {
			return nil, err
		}
		return NewSQLite(filepath.Join(dataDir, "runs.db"))
	default:
		return nil, fmt.Errorf("unknown storage backend: %s", backend)
	}
}

// FileStore keeps one directory per run holding metadata.json and
// results.csv.
type FileStore struct {
	baseDir string
}

func New(baseDir string) *FileStore {
	return &FileStore{baseDir: baseDir}
}

func (s *FileStore) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

func (s *FileStore) Close() error { return nil }

var csvHeader = []string{"temperature", "energy", "magnetization", "specific_heat", "acceptance", "seed", "error"}

func (s *FileStore) Save(meta RunMetadata, records []sweep.Record) (string, error) {
	if meta.ID == "" {
		meta.ID = newRunID(meta)
	}
	runDir := filepath.Join(s.baseDir, meta.ID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	metaFile, err := os.Create(filepath.Join(runDir, "metadata.json"))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, "results.csv"))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	w := csv.NewWriter(csvFile)
	if err := WriteCSV(w, records); err != nil {
		return "", err
	}
	return meta.ID, nil
}

// WriteCSV writes a header and one row per record, then flushes.
func WriteCSV(w *csv.Writer, records []sweep.Record) error {
	if err := w.Write(csvHeader); err != nil {
		return err
	}
	for _, r := range records {
		msg := ""
		if r.Err != nil {
			msg = r.Err.Error()
		}
		row := []string{
			strconv.FormatFloat(r.Temperature, 'g', -1, 64),
			strconv.FormatFloat(r.Energy, 'g', -1, 64),
			strconv.FormatFloat(r.Magnetization, 'g', -1, 64),
			strconv.FormatFloat(r.SpecificHeat, 'g', -1, 64),
			strconv.FormatFloat(r.Acceptance, 'g', -1, 64),
			strconv.FormatInt(r.Seed, 10),
			msg,
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func (s *FileStore) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

func (s *FileStore) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

func (s *FileStore) LoadRecords(runID string) ([]sweep.Record, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, "results.csv"))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = len(csvHeader)

	rows, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) < 2 {
		return []sweep.Record{}, nil
	}

	records := make([]sweep.Record, 0, len(rows)-1)
	for i, row := range rows[1:] {
		rec, err := parseRow(row)
		if err != nil {
			return nil, fmt.Errorf("results.csv line %d: %w", i+2, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

func parseRow(row []string) (sweep.Record, error) {
	var vals [5]float64
	for i := range vals {
		v, err := strconv.ParseFloat(row[i], 64)
		if err != nil {
			return sweep.Record{}, err
		}
		vals[i] = v
	}
	seed, err := strconv.ParseInt(row[5], 10, 64)
	if err != nil {
		return sweep.Record{}, err
	}
	rec := sweep.Record{
		Temperature:   vals[0],
		Energy:        vals[1],
		Magnetization: vals[2],
		SpecificHeat:  vals[3],
		Acceptance:    vals[4],
		Seed:          seed,
	}
	if row[6] != "" {
		rec.Err = errors.New(row[6])
	}
	return rec, nil
}
