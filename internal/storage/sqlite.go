package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/san-kum/ising/internal/sweep"
	_ "modernc.org/sqlite"
)

// SQLiteStore keeps every run in a single database file.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("pragma %s: %w", pragma, err)
		}
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Init() error {
	for _, ddl := range []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			created_at TEXT NOT NULL,
			size INTEGER NOT NULL,
			coupling REAL NOT NULL,
			start TEXT NOT NULL,
			thermalization INTEGER NOT NULL,
			measurement INTEGER NOT NULL,
			seed INTEGER NOT NULL,
			workers INTEGER NOT NULL,
			temperatures INTEGER NOT NULL,
			failed INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS records (
			run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			temperature REAL NOT NULL,
			energy REAL NOT NULL,
			magnetization REAL NOT NULL,
			specific_heat REAL NOT NULL,
			acceptance REAL NOT NULL,
			seed INTEGER NOT NULL,
			error TEXT,
			PRIMARY KEY (run_id, temperature)
		)`,
	} {
		if _, err := s.db.Exec(ddl); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}
	return nil
}

func (s *SQLiteStore) Close() error { return s.db.Close() }

func (s *SQLiteStore) Save(meta RunMetadata, records []sweep.Record) (string, error) {
	if meta.ID == "" {
		meta.ID = newRunID(meta)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	_, err = tx.Exec(`INSERT INTO runs (id, name, created_at, size, coupling, start, thermalization,
		measurement, seed, workers, temperatures, failed) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		meta.ID, meta.Name, meta.Timestamp.UTC().Format(time.RFC3339Nano), meta.Size, meta.Coupling,
		meta.Start, meta.Thermalization, meta.Measurement, meta.Seed, meta.Workers,
		meta.Temperatures, meta.Failed)
	if err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO records (run_id, temperature, energy, magnetization,
		specific_heat, acceptance, seed, error) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return "", err
	}
	defer stmt.Close()

	for _, r := range records {
		var msg sql.NullString
		if r.Err != nil {
			msg = sql.NullString{String: r.Err.Error(), Valid: true}
		}
		if _, err := stmt.Exec(meta.ID, r.Temperature, r.Energy, r.Magnetization,
			r.SpecificHeat, r.Acceptance, r.Seed, msg); err != nil {
			return "", fmt.Errorf("insert record T=%.4f: %w", r.Temperature, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", err
	}
	return meta.ID, nil
}

const runColumns = `id, name, created_at, size, coupling, start, thermalization, measurement,
	seed, workers, temperatures, failed`

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(row scanner) (*RunMetadata, error) {
	var meta RunMetadata
	var created string
	if err := row.Scan(&meta.ID, &meta.Name, &created, &meta.Size, &meta.Coupling, &meta.Start,
		&meta.Thermalization, &meta.Measurement, &meta.Seed, &meta.Workers,
		&meta.Temperatures, &meta.Failed); err != nil {
		return nil, err
	}
	ts, err := time.Parse(time.RFC3339Nano, created)
	if err != nil {
		return nil, fmt.Errorf("run %s timestamp: %w", meta.ID, err)
	}
	meta.Timestamp = ts
	return &meta, nil
}

func (s *SQLiteStore) List() ([]RunMetadata, error) {
	rows, err := s.db.Query(`SELECT ` + runColumns + ` FROM runs ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	runs := make([]RunMetadata, 0)
	for rows.Next() {
		meta, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *meta)
	}
	return runs, rows.Err()
}

func (s *SQLiteStore) Load(runID string) (*RunMetadata, error) {
	meta, err := scanRun(s.db.QueryRow(`SELECT `+runColumns+` FROM runs WHERE id = ?`, runID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("run not found: %s", runID)
	}
	return meta, err
}

func (s *SQLiteStore) LoadRecords(runID string) ([]sweep.Record, error) {
	rows, err := s.db.Query(`SELECT temperature, energy, magnetization, specific_heat, acceptance,
		seed, error FROM records WHERE run_id = ? ORDER BY temperature`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]sweep.Record, 0)
	for rows.Next() {
		var r sweep.Record
		var msg sql.NullString
		if err := rows.Scan(&r.Temperature, &r.Energy, &r.Magnetization, &r.SpecificHeat,
			&r.Acceptance, &r.Seed, &msg); err != nil {
			return nil, err
		}
		if msg.Valid {
			r.Err = errors.New(msg.String)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}
