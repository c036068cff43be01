// Package catalog records connectivity map runs in a sqlite database.
package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	_ "modernc.org/sqlite"
)

// Run describes one completed map computation
type Run struct {
	ID          uuid.UUID
	Mode        string
	Description string
	Labels      []string
	Voxels      int
	Output      string
	CreatedAt   time.Time
}

// Catalog is a sqlite-backed list of runs
type Catalog struct {
	db *sql.DB
}

// Open opens or creates the catalog at path
func Open(path string) (*Catalog, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrapf(err, "[catalog] open %s", path)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS runs (
			run_id TEXT PRIMARY KEY,
			mode TEXT NOT NULL,
			description TEXT NOT NULL,
			labels TEXT NOT NULL,
			voxels INTEGER NOT NULL,
			output TEXT NOT NULL,
			created_at INTEGER NOT NULL
		);
	`)
	if err != nil {
		db.Close()
		return nil, errors.Wrap(err, "[catalog] create schema")
	}

	return &Catalog{db: db}, nil
}

// Close closes the database
func (c *Catalog) Close() error {
	return c.db.Close()
}

// Record stores run, assigning an ID and timestamp when they are unset
func (c *Catalog) Record(ctx context.Context, run *Run) error {
	if run.ID == uuid.Nil {
		run.ID = uuid.New()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}

	labels, err := json.Marshal(run.Labels)
	if err != nil {
		return errors.Wrap(err, "[catalog] encode labels")
	}

	_, err = c.db.ExecContext(ctx,
		"INSERT INTO runs (run_id, mode, description, labels, voxels, output, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
		run.ID.String(), run.Mode, run.Description, string(labels), run.Voxels, run.Output, run.CreatedAt.UnixNano())
	if err != nil {
		return errors.Wrapf(err, "[catalog] insert run %s", run.ID)
	}

	return nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(s scanner) (Run, error) {
	var (
		run       Run
		id        string
		labels    string
		createdAt int64
	)

	if err := s.Scan(&id, &run.Mode, &run.Description, &labels, &run.Voxels, &run.Output, &createdAt); err != nil {
		return Run{}, err
	}

	parsed, err := uuid.Parse(id)
	if err != nil {
		return Run{}, errors.Wrapf(err, "[catalog] bad run id %q", id)
	}
	run.ID = parsed

	if err := json.Unmarshal([]byte(labels), &run.Labels); err != nil {
		return Run{}, errors.Wrapf(err, "[catalog] bad labels for run %s", id)
	}
	run.CreatedAt = time.Unix(0, createdAt).UTC()

	return run, nil
}

// Get returns the run with the given ID
func (c *Catalog) Get(ctx context.Context, id uuid.UUID) (Run, error) {
	row := c.db.QueryRowContext(ctx,
		"SELECT run_id, mode, description, labels, voxels, output, created_at FROM runs WHERE run_id = ?", id.String())

	run, err := scanRun(row)
	if err != nil {
		return Run{}, errors.Wrapf(err, "[catalog] get run %s", id)
	}

	return run, nil
}

// Runs lists every run, newest first
func (c *Catalog) Runs(ctx context.Context) ([]Run, error) {
	rows, err := c.db.QueryContext(ctx,
		"SELECT run_id, mode, description, labels, voxels, output, created_at FROM runs ORDER BY created_at DESC")
	if err != nil {
		return nil, errors.Wrap(err, "[catalog] list runs")
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, errors.Wrap(err, "[catalog] list runs")
		}
		runs = append(runs, run)
	}

	return runs, errors.Wrap(rows.Err(), "[catalog] list runs")
}
