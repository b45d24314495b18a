package store

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/edu-demography/county-cli/internal/db"
	"github.com/edu-demography/county-cli/internal/model"
)

// PostgresStore implements Store using pgxpool, for research groups that keep
// run history in a shared database.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// NewPostgres connects to the given database URL.
func NewPostgres(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: connect")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS runs (
	id            TEXT PRIMARY KEY,
	kind          TEXT NOT NULL,
	source_year   INTEGER NOT NULL,
	target_year   INTEGER NOT NULL,
	threshold_pct DOUBLE PRECISION NOT NULL,
	entry_count   INTEGER NOT NULL,
	warning_count INTEGER NOT NULL,
	duration_ms   BIGINT NOT NULL,
	output_path   TEXT,
	created_at    TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS crosswalk_entries (
	run_id              TEXT NOT NULL REFERENCES runs(id),
	source_year         INTEGER NOT NULL,
	source_gisjoin      TEXT NOT NULL,
	source_state_icpsr  TEXT NOT NULL,
	source_county_icpsr TEXT NOT NULL,
	target_year         INTEGER NOT NULL,
	target_gisjoin      TEXT NOT NULL,
	target_state_icpsr  TEXT NOT NULL,
	target_county_icpsr TEXT NOT NULL,
	overlap_share       DOUBLE PRECISION NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_runs_kind ON runs(kind);
CREATE INDEX IF NOT EXISTS idx_entries_run_id ON crosswalk_entries(run_id);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) SaveRun(ctx context.Context, run RunRecord) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO runs (id, kind, source_year, target_year, threshold_pct, entry_count, warning_count, duration_ms, output_path, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		run.ID, run.Kind, run.SourceYear, run.TargetYear, run.ThresholdPct,
		run.EntryCount, run.WarningCount, run.DurationMs, run.OutputPath, run.CreatedAt,
	)
	return eris.Wrap(err, "postgres: insert run")
}

// entryColumns matches the COPY column order in SaveEntries.
var entryColumns = []string{
	"run_id",
	"source_year", "source_gisjoin", "source_state_icpsr", "source_county_icpsr",
	"target_year", "target_gisjoin", "target_state_icpsr", "target_county_icpsr",
	"overlap_share",
}

// SaveEntries bulk-loads a full crosswalk table via COPY.
func (s *PostgresStore) SaveEntries(ctx context.Context, runID string, entries []model.CrosswalkEntry) error {
	rows := make([][]any, 0, len(entries))
	for i := range entries {
		e := &entries[i]
		rows = append(rows, []any{
			runID,
			e.SourceYear, e.SourceGISJoin, e.SourceStateCode, e.SourceCountyCode,
			e.TargetYear, e.TargetGISJoin, e.TargetStateCode, e.TargetCountyCode,
			e.OverlapShare,
		})
	}

	_, err := db.CopyFrom(ctx, s.pool, "crosswalk_entries", entryColumns, rows)
	return err
}

func (s *PostgresStore) ListRuns(ctx context.Context, limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.pool.Query(ctx,
		`SELECT id, kind, source_year, target_year, threshold_pct, entry_count, warning_count, duration_ms, COALESCE(output_path, ''), created_at
		 FROM runs ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list runs")
	}
	defer rows.Close()

	var runs []RunRecord
	for rows.Next() {
		var r RunRecord
		if err := rows.Scan(&r.ID, &r.Kind, &r.SourceYear, &r.TargetYear, &r.ThresholdPct,
			&r.EntryCount, &r.WarningCount, &r.DurationMs, &r.OutputPath, &r.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan run")
		}
		runs = append(runs, r)
	}
	return runs, eris.Wrap(rows.Err(), "postgres: iterate runs")
}
