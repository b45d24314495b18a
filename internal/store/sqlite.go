package store

import (
	"context"
	"database/sql"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/edu-demography/county-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS runs (
	id            TEXT PRIMARY KEY,
	kind          TEXT NOT NULL,
	source_year   INTEGER NOT NULL,
	target_year   INTEGER NOT NULL,
	threshold_pct REAL NOT NULL,
	entry_count   INTEGER NOT NULL,
	warning_count INTEGER NOT NULL,
	duration_ms   INTEGER NOT NULL,
	output_path   TEXT,
	created_at    DATETIME NOT NULL
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
	overlap_share       REAL NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_runs_kind ON runs(kind);
CREATE INDEX IF NOT EXISTS idx_entries_run_id ON crosswalk_entries(run_id);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) SaveRun(ctx context.Context, run RunRecord) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, kind, source_year, target_year, threshold_pct, entry_count, warning_count, duration_ms, output_path, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Kind, run.SourceYear, run.TargetYear, run.ThresholdPct,
		run.EntryCount, run.WarningCount, run.DurationMs, run.OutputPath, run.CreatedAt,
	)
	return eris.Wrap(err, "sqlite: insert run")
}

func (s *SQLiteStore) SaveEntries(ctx context.Context, runID string, entries []model.CrosswalkEntry) error {
	if len(entries) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin entries tx")
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO crosswalk_entries (run_id, source_year, source_gisjoin, source_state_icpsr, source_county_icpsr, target_year, target_gisjoin, target_state_icpsr, target_county_icpsr, overlap_share)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return eris.Wrap(err, "sqlite: prepare entry insert")
	}
	defer stmt.Close()

	for i := range entries {
		e := &entries[i]
		if _, err := stmt.ExecContext(ctx,
			runID, e.SourceYear, e.SourceGISJoin, e.SourceStateCode, e.SourceCountyCode,
			e.TargetYear, e.TargetGISJoin, e.TargetStateCode, e.TargetCountyCode, e.OverlapShare,
		); err != nil {
			return eris.Wrapf(err, "sqlite: insert entry %s -> %s", e.SourceGISJoin, e.TargetGISJoin)
		}
	}

	return eris.Wrap(tx.Commit(), "sqlite: commit entries")
}

func (s *SQLiteStore) ListRuns(ctx context.Context, limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, kind, source_year, target_year, threshold_pct, entry_count, warning_count, duration_ms, output_path, created_at
		 FROM runs ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list runs")
	}
	defer rows.Close()

	var runs []RunRecord
	for rows.Next() {
		var r RunRecord
		var outputPath sql.NullString
		if err := rows.Scan(&r.ID, &r.Kind, &r.SourceYear, &r.TargetYear, &r.ThresholdPct,
			&r.EntryCount, &r.WarningCount, &r.DurationMs, &outputPath, &r.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan run")
		}
		r.OutputPath = outputPath.String
		runs = append(runs, r)
	}
	return runs, eris.Wrap(rows.Err(), "sqlite: iterate runs")
}
