package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/02loveslollipop/irve-dashboard/internal/irve"
	"github.com/02loveslollipop/irve-dashboard/services/pipeline/internal/models"
	"github.com/02loveslollipop/irve-dashboard/services/pipeline/internal/utils"
)

// Sink writes pipeline output to Postgres.
type Sink struct {
	pool *pgxpool.Pool
}

// NewSink wraps an open pool.
func NewSink(pool *pgxpool.Pool) *Sink {
	return &Sink{pool: pool}
}

// SchemaSQL returns the DDL for the irve schema.
func SchemaSQL() string {
	var b strings.Builder
	b.WriteString("CREATE SCHEMA IF NOT EXISTS irve;\n")
	b.WriteString("CREATE TABLE IF NOT EXISTS irve.charging_points (\n")
	cols := utils.PointColumns()
	for i, col := range cols {
		fmt.Fprintf(&b, "    %s %s", col, utils.SQLType(col))
		if i < len(cols)-1 {
			b.WriteString(",")
		}
		b.WriteString("\n")
	}
	b.WriteString(");\n")
	b.WriteString(`CREATE TABLE IF NOT EXISTS irve.ingest_runs (
    id UUID PRIMARY KEY,
    started_at TIMESTAMPTZ NOT NULL,
    finished_at TIMESTAMPTZ NOT NULL,
    source TEXT NOT NULL,
    status TEXT NOT NULL,
    raw_rows INTEGER NOT NULL,
    clean_rows INTEGER NOT NULL,
    dropped_postal INTEGER NOT NULL,
    removed_power INTEGER NOT NULL,
    removed_geo INTEGER NOT NULL,
    missing_coords INTEGER NOT NULL,
    error TEXT,
    outputs JSONB
);
CREATE INDEX IF NOT EXISTS ingest_runs_started_at_idx ON irve.ingest_runs (started_at DESC);
`)
	return b.String()
}

// EnsureSchema creates the irve tables when missing.
func (s *Sink) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, SchemaSQL()); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// ReplacePoints swaps the stored charging points for t in one transaction.
func (s *Sink) ReplacePoints(ctx context.Context, t *irve.CleanTable) (int64, error) {
	rows, err := utils.BuildPointRows(t)
	if err != nil {
		return 0, err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, "TRUNCATE irve.charging_points"); err != nil {
		return 0, fmt.Errorf("truncate charging_points: %w", err)
	}

	n, err := tx.CopyFrom(ctx, pgx.Identifier{"irve", "charging_points"}, utils.PointColumns(), pgx.CopyFromRows(rows))
	if err != nil {
		return 0, fmt.Errorf("copy charging_points: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return n, nil
}

// InsertRun records one pipeline execution.
func (s *Sink) InsertRun(ctx context.Context, run models.IngestRun) error {
	var errText *string
	if run.Error != "" {
		errText = &run.Error
	}

	_, err := s.pool.Exec(ctx, `INSERT INTO irve.ingest_runs (id, started_at, finished_at, source, status, raw_rows, clean_rows, dropped_postal, removed_power, removed_geo, missing_coords, error, outputs)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)`,
		run.ID, run.StartedAt, run.FinishedAt, run.Source, run.Status,
		run.RawRows, run.CleanRows, run.DroppedPostal, run.RemovedPower, run.RemovedGeo, run.MissingCoords,
		errText, run.Outputs)
	if err != nil {
		return fmt.Errorf("insert ingest run: %w", err)
	}
	return nil
}
