// Package sqlite implements the run journal on an embedded SQLite
// database.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/clinforge/pgxreport-cli/internal/core/domain"
	"github.com/clinforge/pgxreport-cli/internal/core/ports/driven"
)

// schema holds every journal entry ever written; the newest entry per
// sample decides whether the sample counts as processed.
const schema = `
CREATE TABLE IF NOT EXISTS run_journal (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	sample_id   TEXT NOT NULL,
	run_id      TEXT NOT NULL,
	status      TEXT NOT NULL,
	detail      TEXT NOT NULL DEFAULT '',
	recorded_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_run_journal_sample ON run_journal(sample_id);
`

// Ensure Journal implements the interface.
var _ driven.RunJournal = (*Journal)(nil)

// Journal is a SQLite-backed run journal.
type Journal struct {
	db   *sql.DB
	path string
}

// NewJournal opens (creating if needed) the journal database at the
// specified data directory. If dataDir is empty, defaults to
// ~/.pgxreport/data/journal.db.
func NewJournal(dataDir string) (*Journal, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".pgxreport", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "journal.db")

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating journal schema: %w", err)
	}

	return &Journal{db: db, path: dbPath}, nil
}

// Recorded reports whether the sample's newest journal entry is a
// successful one.
func (j *Journal) Recorded(ctx context.Context, sampleID string) (bool, error) {
	var status string
	err := j.db.QueryRowContext(ctx,
		`SELECT status FROM run_journal WHERE sample_id = ? ORDER BY id DESC LIMIT 1`,
		sampleID,
	).Scan(&status)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%w: query journal: %w", domain.ErrPersistence, err)
	}
	return driven.JournalStatus(status) == driven.StatusProcessed, nil
}

// Record stores an entry. A zero RecordedAt is stamped with the current
// time.
func (j *Journal) Record(ctx context.Context, entry driven.JournalEntry) error {
	recordedAt := entry.RecordedAt
	if recordedAt.IsZero() {
		recordedAt = time.Now().UTC()
	}

	_, err := j.db.ExecContext(ctx,
		`INSERT INTO run_journal (sample_id, run_id, status, detail, recorded_at) VALUES (?, ?, ?, ?, ?)`,
		entry.SampleID, entry.RunID, string(entry.Status), entry.Detail,
		recordedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("%w: insert journal entry: %w", domain.ErrPersistence, err)
	}
	return nil
}

// List returns all journal entries, newest first.
func (j *Journal) List(ctx context.Context) ([]driven.JournalEntry, error) {
	rows, err := j.db.QueryContext(ctx,
		`SELECT sample_id, run_id, status, detail, recorded_at FROM run_journal ORDER BY id DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: query journal: %w", domain.ErrPersistence, err)
	}
	defer rows.Close()

	var entries []driven.JournalEntry
	for rows.Next() {
		var entry driven.JournalEntry
		var status, recordedAt string
		if err := rows.Scan(&entry.SampleID, &entry.RunID, &status, &entry.Detail, &recordedAt); err != nil {
			return nil, fmt.Errorf("%w: scan journal entry: %w", domain.ErrPersistence, err)
		}
		entry.Status = driven.JournalStatus(status)
		if ts, err := time.Parse(time.RFC3339Nano, recordedAt); err == nil {
			entry.RecordedAt = ts
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate journal: %w", domain.ErrPersistence, err)
	}
	return entries, nil
}

// Close closes the database connection.
func (j *Journal) Close() error {
	return j.db.Close()
}

// Path returns the on-disk database path.
func (j *Journal) Path() string {
	return j.path
}
