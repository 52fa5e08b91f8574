package models

import (
	"time"

	"github.com/google/uuid"
)

// Run statuses stored in irve.ingest_runs.
const (
	RunSucceeded = "succeeded"
	RunPartial   = "partial"
	RunFailed    = "failed"
)

// IngestRun captures one pipeline execution for the run history table.
type IngestRun struct {
	ID            uuid.UUID
	StartedAt     time.Time
	FinishedAt    time.Time
	Source        string
	Status        string
	RawRows       int
	CleanRows     int
	DroppedPostal int
	RemovedPower  int
	RemovedGeo    int
	MissingCoords int
	Error         string
	Outputs       map[string]any
}
