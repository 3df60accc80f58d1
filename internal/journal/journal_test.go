// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package journal

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/photoix/pkg/types"
)

func openTestJournal(t *testing.T) *Journal {
	t.Helper()
	j, err := Open(filepath.Join(t.TempDir(), "index", "journal.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { j.Close() })

	clock := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	j.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	return j
}

func outcome(src string, status types.OutcomeStatus) types.ConversionOutcome {
	o := types.ConversionOutcome{
		Request: types.ConversionRequest{SourcePath: src, OutputPath: types.OutputPathFor(src)},
		Status:  status,
	}
	if status == types.OutcomeFailed {
		o.Error = "decoding heic: bad box"
	} else {
		o.FinalPath = o.Request.OutputPath
	}
	return o
}

func TestJournal_RecordAndQuery(t *testing.T) {
	ctx := context.Background()
	j := openTestJournal(t)

	id, err := j.BeginBatch(ctx, "/photos", 2)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	require.NoError(t, j.RecordOutcome(ctx, id, outcome("/photos/a.heic", types.OutcomeSuccess)))
	require.NoError(t, j.RecordOutcome(ctx, id, outcome("/photos/b.heic", types.OutcomeFailed)))
	require.NoError(t, j.FinishBatch(ctx, id, types.BatchSummary{Total: 2, Converted: 1, Failed: 1}))

	entries, err := j.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "/photos/b.heic", entries[0].Source, "newest first")
	assert.Equal(t, types.OutcomeFailed, entries[0].Status)
	assert.Equal(t, "decoding heic: bad box", entries[0].Error)
	assert.Equal(t, "/photos/a.jpg", entries[1].FinalPath)
	assert.False(t, entries[1].RecordedAt.IsZero())

	batches, err := j.Batches(ctx, 10)
	require.NoError(t, err)
	require.Len(t, batches, 1)
	b := batches[0]
	assert.Equal(t, id, b.ID)
	assert.Equal(t, "/photos", b.Root)
	assert.Equal(t, 1, b.Converted)
	assert.Equal(t, 1, b.Failed)
	assert.False(t, b.Cancelled)
	require.NotNil(t, b.FinishedAt)
	assert.True(t, b.FinishedAt.After(b.StartedAt))
}

func TestJournal_RecentLimit(t *testing.T) {
	ctx := context.Background()
	j := openTestJournal(t)
	id, err := j.BeginBatch(ctx, "/photos", 5)
	require.NoError(t, err)
	for _, name := range []string{"a", "b", "c", "d", "e"} {
		require.NoError(t, j.RecordOutcome(ctx, id, outcome("/photos/"+name+".heic", types.OutcomeSuccess)))
	}

	entries, err := j.Recent(ctx, 3)
	require.NoError(t, err)
	assert.Len(t, entries, 3)
	assert.Equal(t, "/photos/e.heic", entries[0].Source)
}

func TestJournal_FinishUnknownBatch(t *testing.T) {
	j := openTestJournal(t)
	err := j.FinishBatch(context.Background(), "nope", types.BatchSummary{})
	assert.Error(t, err)
}

func TestRecorder(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	j := openTestJournal(t)
	id, err := j.BeginBatch(ctx, "/photos", 1)
	require.NoError(t, err)

	rec := j.Observer(ctx, id)
	o := outcome("/photos/a.heic", types.OutcomeSkipped)
	rec.Notify(types.Event{Kind: types.EventStart, Source: "/photos/a.heic"})
	rec.Notify(types.Event{Kind: types.EventOutcome, Outcome: &o})
	cancel()
	rec.Notify(types.Event{Kind: types.EventFinished, Summary: &types.BatchSummary{Total: 1, Skipped: 1, Cancelled: true}})

	entries, err := j.Recent(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, types.OutcomeSkipped, entries[0].Status)

	batches, err := j.Batches(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, batches, 1)
	assert.Equal(t, 1, batches[0].Skipped)
	assert.True(t, batches[0].Cancelled)
}

func TestOpen_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")
	j, err := Open(path, nil)
	require.NoError(t, err)
	_, err = j.BeginBatch(context.Background(), "/a", 0)
	require.NoError(t, err)
	require.NoError(t, j.Close())

	j, err = Open(path, nil)
	require.NoError(t, err)
	defer j.Close()
	batches, err := j.Batches(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, batches, 1)
}
