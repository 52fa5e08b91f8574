package db

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store wraps database access helpers.
type Store struct {
	pool *pgxpool.Pool
}

// New creates a Store backed by a pgx pool.
func New(ctx context.Context, databaseURL string) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool}, nil
}

// Close releases the pool resources.
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// IngestRun is one pipeline execution from irve.ingest_runs.
type IngestRun struct {
	ID            uuid.UUID       `json:"id"`
	StartedAt     time.Time       `json:"started_at"`
	FinishedAt    time.Time       `json:"finished_at"`
	Source        string          `json:"source"`
	Status        string          `json:"status"`
	RawRows       int             `json:"raw_rows"`
	CleanRows     int             `json:"clean_rows"`
	DroppedPostal int             `json:"dropped_postal"`
	RemovedPower  int             `json:"removed_power"`
	RemovedGeo    int             `json:"removed_geo"`
	MissingCoords int             `json:"missing_coords"`
	Error         *string         `json:"error,omitempty"`
	Outputs       json.RawMessage `json:"outputs,omitempty"`
}

const listRunsSQL = `
    SELECT id, started_at, finished_at, source, status, raw_rows, clean_rows,
           dropped_postal, removed_power, removed_geo, missing_coords, error, outputs
    FROM irve.ingest_runs
    ORDER BY started_at DESC
    LIMIT $1
`

// ListRuns returns the most recent pipeline runs, newest first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]IngestRun, error) {
	rows, err := s.pool.Query(ctx, listRunsSQL, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	runs := make([]IngestRun, 0)
	for rows.Next() {
		var run IngestRun
		if err := rows.Scan(
			&run.ID,
			&run.StartedAt,
			&run.FinishedAt,
			&run.Source,
			&run.Status,
			&run.RawRows,
			&run.CleanRows,
			&run.DroppedPostal,
			&run.RemovedPower,
			&run.RemovedGeo,
			&run.MissingCoords,
			&run.Error,
			&run.Outputs,
		); err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}

	return runs, rows.Err()
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}
