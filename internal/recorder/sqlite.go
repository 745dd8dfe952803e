package recorder

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"

	"IndexRange/internal/model"
)

// SQLiteRecorder keeps runs in an in-memory SQLite database that lives as
// long as the process.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens the in-memory database and runs migrations.
func NewSQLiteRecorder() (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// Each connection to :memory: is a separate database.
	db.SetMaxOpenConns(1)

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Info().Msg("session recorder opened")
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id          TEXT PRIMARY KEY,
			batch_key   TEXT NOT NULL,
			computed_at INTEGER NOT NULL,
			indices     INTEGER,
			failed      INTEGER,
			above_range INTEGER,
			below_range INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_ts ON runs(computed_at)`,

		`CREATE TABLE IF NOT EXISTS run_rows (
			run_id       TEXT NOT NULL,
			position     INTEGER NOT NULL,
			index_id     TEXT NOT NULL,
			prior_high   TEXT,
			prior_low    TEXT,
			next_open    TEXT,
			open_status  TEXT,
			touched_high INTEGER,
			touched_low  INTEGER,
			error        TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_rows_run ON run_rows(run_id)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:30], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordBatch(b *model.Batch) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var failed, above, below int
	for _, s := range b.Summaries {
		switch {
		case s.Failed():
			failed++
		case s.OpenStatus == model.AboveRange:
			above++
		case s.OpenStatus == model.BelowRange:
			below++
		}
	}

	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	id := uuid.NewString()
	if _, err := tx.Exec(`INSERT INTO runs
		(id, batch_key, computed_at, indices, failed, above_range, below_range)
		VALUES (?,?,?,?,?,?,?)`,
		id, b.Key, b.ComputedAt.UnixMilli(), len(b.Summaries), failed, above, below,
	); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for i, s := range b.Summaries {
		row := toRow(s)
		if _, err := tx.Exec(`INSERT INTO run_rows
			(run_id, position, index_id, prior_high, prior_low, next_open, open_status, touched_high, touched_low, error)
			VALUES (?,?,?,?,?,?,?,?,?,?)`,
			id, i, row.IndexID, row.PriorHigh, row.PriorLow, row.NextOpen, row.OpenStatus,
			row.TouchedHigh, row.TouchedLow, row.Error,
		); err != nil {
			return fmt.Errorf("insert run row: %w", err)
		}
	}
	return tx.Commit()
}

func toRow(s model.RangeSummary) RunRow {
	if s.Failed() {
		return RunRow{IndexID: s.IndexID, Error: s.Error}
	}
	row := RunRow{
		IndexID:     s.IndexID,
		PriorHigh:   s.PriorHigh.String(),
		PriorLow:    s.PriorLow.String(),
		OpenStatus:  string(s.OpenStatus),
		TouchedHigh: s.TouchedHigh,
		TouchedLow:  s.TouchedLow,
	}
	if s.NextOpen.Valid {
		row.NextOpen = s.NextOpen.Decimal.String()
	}
	return row
}

// ListRuns returns the most recent runs first.
func (r *SQLiteRecorder) ListRuns(limit int) ([]RunInfo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows, err := r.db.Query(`SELECT id, batch_key, computed_at, indices, failed, above_range, below_range
		FROM runs ORDER BY computed_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []RunInfo
	for rows.Next() {
		var ri RunInfo
		var ms int64
		if err := rows.Scan(&ri.ID, &ri.Key, &ms, &ri.Indices, &ri.Failed, &ri.AboveRange, &ri.BelowRange); err != nil {
			return nil, err
		}
		ri.ComputedAt = time.UnixMilli(ms)
		runs = append(runs, ri)
	}
	return runs, rows.Err()
}

// RunRows returns the recorded summaries of one run in batch order.
func (r *SQLiteRecorder) RunRows(runID string) ([]RunRow, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows, err := r.db.Query(`SELECT index_id, prior_high, prior_low, next_open, open_status, touched_high, touched_low, error
		FROM run_rows WHERE run_id = ? ORDER BY position`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RunRow
	for rows.Next() {
		var row RunRow
		if err := rows.Scan(&row.IndexID, &row.PriorHigh, &row.PriorLow, &row.NextOpen, &row.OpenStatus,
			&row.TouchedHigh, &row.TouchedLow, &row.Error); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (r *SQLiteRecorder) Close() error {
	log.Info().Msg("closing session recorder")
	return r.db.Close()
}
