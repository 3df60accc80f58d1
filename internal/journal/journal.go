// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package journal keeps an optional SQLite history of conversion batches.
// The batch worker itself retains nothing; a journal is attached as one more
// observer when the user asks for a history.
package journal

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/photoix/pkg/types"
)

// DefaultFile is the journal database name used under the user data directory.
const DefaultFile = "journal.db"

// Journal manages the history database.
type Journal struct {
	db     *sql.DB
	logger hclog.Logger
	now    func() time.Time
}

// Entry is one recorded outcome.
type Entry struct {
	BatchID    string              `json:"batch_id"`
	Source     string              `json:"source"`
	Output     string              `json:"output"`
	FinalPath  string              `json:"final_path,omitempty"`
	Status     types.OutcomeStatus `json:"status"`
	Error      string              `json:"error,omitempty"`
	RecordedAt time.Time           `json:"recorded_at"`
}

// Batch is one recorded batch with its counts.
type Batch struct {
	ID         string     `json:"id"`
	Root       string     `json:"root"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	Total      int        `json:"total"`
	Converted  int        `json:"converted"`
	Skipped    int        `json:"skipped"`
	Failed     int        `json:"failed"`
	Cancelled  bool       `json:"cancelled"`
}

// DefaultPath returns the journal location beside the user settings.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return DefaultFile
	}
	return filepath.Join(dir, "photoix", DefaultFile)
}

// Open opens or creates the journal at path and creates the schema if it
// does not exist. A nil logger discards log output.
func Open(path string, logger hclog.Logger) (*Journal, error) {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating journal directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening journal: %w", err)
	}

	j := &Journal{db: db, logger: logger.Named("journal"), now: time.Now}
	if err := j.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return j, nil
}

// Close releases the database connection.
func (j *Journal) Close() error {
	return j.db.Close()
}

func (j *Journal) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS batches (
			id TEXT PRIMARY KEY,
			root TEXT NOT NULL,
			started_at TEXT NOT NULL,
			finished_at TEXT,
			total INTEGER NOT NULL DEFAULT 0,
			converted INTEGER NOT NULL DEFAULT 0,
			skipped INTEGER NOT NULL DEFAULT 0,
			failed INTEGER NOT NULL DEFAULT 0,
			cancelled INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS outcomes (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			batch_id TEXT NOT NULL REFERENCES batches(id),
			source TEXT NOT NULL,
			output TEXT NOT NULL,
			final_path TEXT,
			status TEXT NOT NULL,
			error TEXT,
			recorded_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_outcomes_batch_id ON outcomes(batch_id)`,
		`CREATE INDEX IF NOT EXISTS idx_outcomes_source ON outcomes(source)`,
	}
	for _, stmt := range statements {
		if _, err := j.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// BeginBatch records a new batch for root and returns its ID.
func (j *Journal) BeginBatch(ctx context.Context, root string, total int) (string, error) {
	id := uuid.NewString()
	_, err := j.db.ExecContext(ctx,
		`INSERT INTO batches (id, root, started_at, total) VALUES (?, ?, ?, ?)`,
		id, root, j.stamp(), total)
	if err != nil {
		return "", fmt.Errorf("recording batch: %w", err)
	}
	return id, nil
}

// RecordOutcome stores one outcome of batchID.
func (j *Journal) RecordOutcome(ctx context.Context, batchID string, o types.ConversionOutcome) error {
	_, err := j.db.ExecContext(ctx,
		`INSERT INTO outcomes (batch_id, source, output, final_path, status, error, recorded_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		batchID, o.Request.SourcePath, o.Request.OutputPath, o.FinalPath, string(o.Status), o.Error, j.stamp())
	if err != nil {
		return fmt.Errorf("recording outcome for %s: %w", o.Request.SourcePath, err)
	}
	return nil
}

// FinishBatch stores the final counts of batchID.
func (j *Journal) FinishBatch(ctx context.Context, batchID string, s types.BatchSummary) error {
	res, err := j.db.ExecContext(ctx,
		`UPDATE batches SET finished_at = ?, total = ?, converted = ?, skipped = ?, failed = ?, cancelled = ?
		 WHERE id = ?`,
		j.stamp(), s.Total, s.Converted, s.Skipped, s.Failed, s.Cancelled, batchID)
	if err != nil {
		return fmt.Errorf("finishing batch %s: %w", batchID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("finishing batch %s: no such batch", batchID)
	}
	return nil
}

// Observer returns an observer that records outcomes and the final summary
// of batchID. Write failures are logged and never reach the worker.
func (j *Journal) Observer(ctx context.Context, batchID string) *Recorder {
	return &Recorder{j: j, ctx: ctx, batchID: batchID}
}

// Recorder is the observer returned by Journal.Observer.
type Recorder struct {
	j       *Journal
	ctx     context.Context
	batchID string
}

// Notify implements convert.Observer.
func (r *Recorder) Notify(e types.Event) {
	// The batch context may be cancelled while its last events are still
	// arriving; journal writes outlive it.
	ctx := context.WithoutCancel(r.ctx)
	var err error
	switch e.Kind {
	case types.EventOutcome:
		err = r.j.RecordOutcome(ctx, r.batchID, *e.Outcome)
	case types.EventFinished:
		err = r.j.FinishBatch(ctx, r.batchID, *e.Summary)
	}
	if err != nil {
		r.j.logger.Warn("journal write failed", "batch", r.batchID, "error", err)
	}
}

// Recent returns up to limit outcomes, newest first.
func (j *Journal) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := j.db.QueryContext(ctx,
		`SELECT batch_id, source, output, COALESCE(final_path, ''), status, COALESCE(error, ''), recorded_at
		 FROM outcomes ORDER BY rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying outcomes: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var status, recorded string
		if err := rows.Scan(&e.BatchID, &e.Source, &e.Output, &e.FinalPath, &status, &e.Error, &recorded); err != nil {
			return nil, fmt.Errorf("scanning outcome: %w", err)
		}
		e.Status = types.OutcomeStatus(status)
		e.RecordedAt, _ = time.Parse(time.RFC3339Nano, recorded)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Batches returns up to limit batches, newest first.
func (j *Journal) Batches(ctx context.Context, limit int) ([]Batch, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := j.db.QueryContext(ctx,
		`SELECT id, root, started_at, COALESCE(finished_at, ''), total, converted, skipped, failed, cancelled
		 FROM batches ORDER BY started_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying batches: %w", err)
	}
	defer rows.Close()

	var batches []Batch
	for rows.Next() {
		var b Batch
		var started, finished string
		if err := rows.Scan(&b.ID, &b.Root, &started, &finished, &b.Total, &b.Converted, &b.Skipped, &b.Failed, &b.Cancelled); err != nil {
			return nil, fmt.Errorf("scanning batch: %w", err)
		}
		b.StartedAt, _ = time.Parse(time.RFC3339Nano, started)
		if finished != "" {
			if t, err := time.Parse(time.RFC3339Nano, finished); err == nil {
				b.FinishedAt = &t
			}
		}
		batches = append(batches, b)
	}
	return batches, rows.Err()
}

func (j *Journal) stamp() string {
	return j.now().UTC().Format(time.RFC3339Nano)
}
