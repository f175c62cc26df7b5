package driven

import (
	"context"
	"time"
)

// JournalStatus is the outcome recorded for a sample.
type JournalStatus string

const (
	// StatusProcessed means relocation and aggregate recording succeeded.
	StatusProcessed JournalStatus = "processed"

	// StatusFailed means processing was attempted and failed.
	StatusFailed JournalStatus = "failed"
)

// JournalEntry is one processed-sample record.
type JournalEntry struct {
	SampleID   string
	RunID      string
	Status     JournalStatus
	Detail     string
	RecordedAt time.Time
}

// RunJournal persists which samples have been submitted to the aggregate
// table. It backs the at-most-once submission guarantee the aggregate
// table requires of its callers.
type RunJournal interface {
	// Recorded reports whether a sample was already successfully
	// processed in any run.
	Recorded(ctx context.Context, sampleID string) (bool, error)

	// Record stores an entry for a sample.
	Record(ctx context.Context, entry JournalEntry) error

	// List returns all entries, newest first.
	List(ctx context.Context) ([]JournalEntry, error)

	// Close releases the underlying store.
	Close() error
}
