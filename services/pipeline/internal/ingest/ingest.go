// Package ingest runs one read, clean, filter and persist pass.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/02loveslollipop/irve-dashboard/internal/irve"
	"github.com/02loveslollipop/irve-dashboard/internal/table"
	"github.com/02loveslollipop/irve-dashboard/services/pipeline/internal/config"
	"github.com/02loveslollipop/irve-dashboard/services/pipeline/internal/models"
	"github.com/02loveslollipop/irve-dashboard/services/pipeline/internal/source"
	"github.com/02loveslollipop/irve-dashboard/services/pipeline/internal/utils"
)

// ErrPersist is returned when at least one output form could not be written.
var ErrPersist = errors.New("persist failed")

// Sink receives the filtered table and the run record. Optional.
type Sink interface {
	ReplacePoints(ctx context.Context, t *irve.CleanTable) (int64, error)
	InsertRun(ctx context.Context, run models.IngestRun) error
}

// Result summarizes a run.
type Result struct {
	Run       models.IngestRun
	Report    irve.CleanReport
	Table     *irve.CleanTable
	Persisted []table.PersistResult
	Stored    int64
}

// Prepare reads and cleans the raw export without writing anything.
func Prepare(ctx context.Context, cfg config.Config, client *http.Client) (*irve.CleanTable, irve.CleanReport, *irve.RawTable, error) {
	opts, err := cfg.Options()
	if err != nil {
		return nil, irve.CleanReport{}, nil, err
	}

	raw, err := source.Fetch(ctx, client, cfg.InputPath)
	if err != nil {
		return nil, irve.CleanReport{}, nil, &irve.StageError{Stage: "read", Err: err}
	}
	log.Printf("read %d raw rows with %d columns from %s", len(raw.Rows), len(raw.Header), cfg.InputPath)

	clean, report, err := irve.Clean(raw, opts)
	if err != nil {
		return nil, report, raw, err
	}
	return clean, report, raw, nil
}

// Run executes the whole pipeline. sink may be nil.
func Run(ctx context.Context, cfg config.Config, client *http.Client, sink Sink) (Result, error) {
	res := Result{Run: models.IngestRun{
		ID:        uuid.New(),
		StartedAt: time.Now().UTC(),
		Source:    cfg.InputPath,
		Status:    models.RunFailed,
	}}

	err := run(ctx, cfg, client, sink, &res)
	res.Run.FinishedAt = time.Now().UTC()
	if err != nil {
		res.Run.Error = err.Error()
	}

	if sink != nil && !cfg.DryRun {
		if rerr := sink.InsertRun(ctx, res.Run); rerr != nil {
			log.Printf("record run %s: %v", res.Run.ID, rerr)
		}
	}
	return res, err
}

func run(ctx context.Context, cfg config.Config, client *http.Client, sink Sink, res *Result) error {
	clean, report, raw, err := Prepare(ctx, cfg, client)
	if raw != nil {
		res.Run.RawRows = len(raw.Rows)
	}
	if err != nil {
		return err
	}
	res.Report = report
	log.Printf("cleaned %d rows into %d columns (missing lat=%d lon=%d, postal=%d, invalid power=%d, invalid dates=%d)",
		report.Rows, report.Columns, report.Coordinates.MissingLatitude, report.Coordinates.MissingLongitude,
		report.MissingPostalCode, report.InvalidPower, report.InvalidDates)

	if cfg.DropMissingPostal {
		clean, res.Run.DroppedPostal = irve.DropMissingPostal(clean)
		log.Printf("dropped %d rows without postal code", res.Run.DroppedPostal)
	}

	clean, res.Run.RemovedPower, res.Run.RemovedGeo = irve.FilterOutliers(clean, cfg.Bounds())
	log.Printf("removed %d power outliers and %d out-of-bounds coordinates", res.Run.RemovedPower, res.Run.RemovedGeo)

	res.Table = clean
	res.Run.CleanRows = clean.Len()
	res.Run.MissingCoords = utils.MissingCoordinates(clean)

	if cfg.DryRun {
		log.Printf("dry-run: skipping persistence (%d rows, output dir %s)", clean.Len(), cfg.OutputDir)
		res.Run.Status = models.RunSucceeded
		return nil
	}

	res.Persisted = table.Persist(cfg.OutputDir, clean)
	outputs, failed := utils.PersistSummary(res.Persisted)
	res.Run.Outputs = outputs
	for _, p := range res.Persisted {
		if p.Err != nil {
			log.Printf("persist %s failed: %v", p.Format, p.Err)
			continue
		}
		log.Printf("wrote %s (%d bytes)", p.Path, p.Bytes)
	}

	if sink != nil {
		n, err := sink.ReplacePoints(ctx, clean)
		if err != nil {
			res.Run.Status = models.RunPartial
			return fmt.Errorf("store charging points: %w", err)
		}
		res.Stored = n
		log.Printf("stored %d charging points", n)
	}

	if failed > 0 {
		res.Run.Status = models.RunPartial
		if failed == len(res.Persisted) {
			res.Run.Status = models.RunFailed
		}
		return fmt.Errorf("%w: %d of %d outputs", ErrPersist, failed, len(res.Persisted))
	}

	res.Run.Status = models.RunSucceeded
	return nil
}
