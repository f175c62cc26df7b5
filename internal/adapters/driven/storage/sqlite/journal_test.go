package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinforge/pgxreport-cli/internal/core/ports/driven"
)

func newTestJournal(t *testing.T) *Journal {
	t.Helper()
	j, err := NewJournal(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = j.Close() })
	return j
}

func TestRecordedEmptyJournal(t *testing.T) {
	j := newTestJournal(t)

	recorded, err := j.Recorded(context.Background(), "S1")
	require.NoError(t, err)
	assert.False(t, recorded)
}

func TestRecordAndRecall(t *testing.T) {
	j := newTestJournal(t)
	ctx := context.Background()

	require.NoError(t, j.Record(ctx, driven.JournalEntry{
		SampleID: "S1",
		RunID:    "run-1",
		Status:   driven.StatusProcessed,
	}))

	recorded, err := j.Recorded(ctx, "S1")
	require.NoError(t, err)
	assert.True(t, recorded)

	recorded, err = j.Recorded(ctx, "S2")
	require.NoError(t, err)
	assert.False(t, recorded)
}

func TestRecordedUsesNewestEntry(t *testing.T) {
	j := newTestJournal(t)
	ctx := context.Background()

	require.NoError(t, j.Record(ctx, driven.JournalEntry{
		SampleID: "S1", RunID: "run-1", Status: driven.StatusProcessed,
	}))
	require.NoError(t, j.Record(ctx, driven.JournalEntry{
		SampleID: "S1", RunID: "run-2", Status: driven.StatusFailed, Detail: "save failed",
	}))

	// The failed retry supersedes the earlier success.
	recorded, err := j.Recorded(ctx, "S1")
	require.NoError(t, err)
	assert.False(t, recorded)
}

func TestListNewestFirst(t *testing.T) {
	j := newTestJournal(t)
	ctx := context.Background()

	stamp := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, j.Record(ctx, driven.JournalEntry{
		SampleID: "S1", RunID: "run-1", Status: driven.StatusProcessed, RecordedAt: stamp,
	}))
	require.NoError(t, j.Record(ctx, driven.JournalEntry{
		SampleID: "S2", RunID: "run-1", Status: driven.StatusFailed, Detail: "no content",
	}))

	entries, err := j.List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, "S2", entries[0].SampleID)
	assert.Equal(t, driven.StatusFailed, entries[0].Status)
	assert.Equal(t, "no content", entries[0].Detail)
	assert.False(t, entries[0].RecordedAt.IsZero())

	assert.Equal(t, "S1", entries[1].SampleID)
	assert.True(t, stamp.Equal(entries[1].RecordedAt))
}

func TestJournalSurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	j, err := NewJournal(dir)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, j.Record(ctx, driven.JournalEntry{
		SampleID: "S1", RunID: "run-1", Status: driven.StatusProcessed,
	}))
	require.NoError(t, j.Close())

	j, err = NewJournal(dir)
	require.NoError(t, err)
	defer j.Close()

	recorded, err := j.Recorded(ctx, "S1")
	require.NoError(t, err)
	assert.True(t, recorded)
}
