// Package store persists crosswalk run history so repeated year-pair runs
// can be audited and compared.
package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/edu-demography/county-cli/internal/model"
)

// Run kinds.
const (
	RunKindCrosswalk = "crosswalk"
	RunKindAssign    = "assign"
	RunKindBoundary  = "boundary"
)

// RunRecord is one recorded invocation of a toolkit command.
type RunRecord struct {
	ID           string
	Kind         string
	SourceYear   int
	TargetYear   int
	ThresholdPct float64
	EntryCount   int
	WarningCount int
	DurationMs   int64
	OutputPath   string
	CreatedAt    time.Time
}

// NewRunRecord builds a RunRecord with a fresh id and timestamp.
func NewRunRecord(kind string) RunRecord {
	return RunRecord{
		ID:        uuid.New().String(),
		Kind:      kind,
		CreatedAt: time.Now().UTC(),
	}
}

// Store defines the persistence interface for run history.
type Store interface {
	Migrate(ctx context.Context) error
	SaveRun(ctx context.Context, run RunRecord) error
	SaveEntries(ctx context.Context, runID string, entries []model.CrosswalkEntry) error
	ListRuns(ctx context.Context, limit int) ([]RunRecord, error)
	Close() error
}
