package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edu-demography/county-cli/internal/model"
)

func newTestSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLite(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func TestSQLiteSaveAndListRuns(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	old := NewRunRecord(RunKindCrosswalk)
	old.SourceYear = 1940
	old.TargetYear = 1900
	old.ThresholdPct = 70
	old.EntryCount = 3111
	old.WarningCount = 2
	old.DurationMs = 5400
	old.OutputPath = "/out/county_crosswalk_1940_to_1900.csv"
	old.CreatedAt = time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, s.SaveRun(ctx, old))

	recent := NewRunRecord(RunKindAssign)
	recent.SourceYear = 1940
	recent.CreatedAt = time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)
	require.NoError(t, s.SaveRun(ctx, recent))

	runs, err := s.ListRuns(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)

	// Newest first.
	assert.Equal(t, recent.ID, runs[0].ID)
	assert.Equal(t, RunKindAssign, runs[0].Kind)
	assert.Equal(t, old.ID, runs[1].ID)
	assert.Equal(t, 3111, runs[1].EntryCount)
	assert.Equal(t, 70.0, runs[1].ThresholdPct)
	assert.Equal(t, old.OutputPath, runs[1].OutputPath)
}

func TestSQLiteListRunsLimit(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		r := NewRunRecord(RunKindCrosswalk)
		r.CreatedAt = time.Date(2026, 8, 1+i, 0, 0, 0, 0, time.UTC)
		require.NoError(t, s.SaveRun(ctx, r))
	}

	runs, err := s.ListRuns(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, runs, 2)

	// Default limit applies when the caller passes 0.
	runs, err = s.ListRuns(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, runs, 5)
}

func TestSQLiteSaveEntries(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	run := NewRunRecord(RunKindCrosswalk)
	require.NoError(t, s.SaveRun(ctx, run))

	entries := []model.CrosswalkEntry{
		{
			SourceYear: 1940, SourceGISJoin: "G0100010", SourceStateCode: "41", SourceCountyCode: "0010",
			TargetYear: 1900, TargetGISJoin: "G0100010", TargetStateCode: "41", TargetCountyCode: "0010",
			OverlapShare: 1.0,
		},
		{
			SourceYear: 1940, SourceGISJoin: "G0100030", SourceStateCode: "41", SourceCountyCode: "0030",
			TargetYear: 1900, TargetGISJoin: "G0100050", TargetStateCode: "41", TargetCountyCode: "0050",
			OverlapShare: 0.82,
		},
	}
	require.NoError(t, s.SaveEntries(ctx, run.ID, entries))

	var count int
	require.NoError(t, s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM crosswalk_entries WHERE run_id = ?`, run.ID).Scan(&count))
	assert.Equal(t, 2, count)

	// Empty slice is a no-op, not an error.
	assert.NoError(t, s.SaveEntries(ctx, run.ID, nil))
}

func TestSQLiteMigrateIdempotent(t *testing.T) {
	s := newTestSQLite(t)
	assert.NoError(t, s.Migrate(context.Background()))
}
