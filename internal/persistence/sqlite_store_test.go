package persistence

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/subworks/subflow/internal/jobs"
)

func TestSQLiteStore_JobsRoundTrip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	store, err := NewSQLiteStore(filepath.Join(dir, "subflow.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	ctx := context.Background()
	job := &jobs.TranslationJob{
		ID:        "f31b4d6e-0000-4000-8000-000000000001",
		Source:    "api",
		DedupeKey: "/media/Movie.pl.srt",
		Payload: jobs.JobPayload{
			InputPath:   "/media/Movie.ita.srt",
			OutputPath:  "/media/Movie.pl.srt",
			TargetCode:  "pl",
			Title:       "Movie",
			Year:        2010,
			Description: "Movie (2010)",
		},
		Status:    jobs.StatusPending,
		CreatedAt: time.Now().UTC().Truncate(time.Millisecond),
		UpdatedAt: time.Now().UTC().Truncate(time.Millisecond),
	}
	require.NoError(t, store.UpsertJob(ctx, job))

	all, err := store.LoadJobs(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, job.ID, all[0].ID)
	assert.Equal(t, job.Status, all[0].Status)
	assert.Equal(t, job.Payload, all[0].Payload)
}

func TestSQLiteStore_UpsertJobUpdatesStatus(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	store, err := NewSQLiteStore(filepath.Join(dir, "subflow.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	ctx := context.Background()
	job := &jobs.TranslationJob{
		ID:        "f31b4d6e-0000-4000-8000-000000000002",
		Status:    jobs.StatusPending,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	require.NoError(t, store.UpsertJob(ctx, job))

	job.Status = jobs.StatusFailed
	job.Error = "gst exited with code 1"
	require.NoError(t, store.UpsertJob(ctx, job))

	all, err := store.LoadJobs(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, jobs.StatusFailed, all[0].Status)
	assert.Equal(t, "gst exited with code 1", all[0].Error)
}

func TestSQLiteStore_DeleteJob(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	store, err := NewSQLiteStore(filepath.Join(dir, "subflow.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	ctx := context.Background()
	job := &jobs.TranslationJob{
		ID:        "f31b4d6e-0000-4000-8000-000000000003",
		Status:    jobs.StatusSuccess,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	require.NoError(t, store.UpsertJob(ctx, job))
	require.NoError(t, store.DeleteJob(ctx, job.ID))

	all, err := store.LoadJobs(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestSQLiteStore_MetadataCacheTTL(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	store, err := NewSQLiteStore(filepath.Join(dir, "subflow.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	ctx := context.Background()
	now := time.Now().UTC()
	require.NoError(t, store.PutMetadataCache(ctx, MetadataCacheEntry{
		Title:        "the office",
		IsSeries:     true,
		Year:         2005,
		TMDBID:       2316,
		MatchedTitle: "The Office",
		MatchedYear:  2005,
		Overview:     "Mockumentary about office workers.",
		ExpiresAt:    now.Add(30 * time.Minute),
		UpdatedAt:    now,
	}))

	entry, ok, err := store.GetMetadataCache(ctx, "the office", true, 2005, now)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 2316, entry.TMDBID)
	assert.Equal(t, "The Office", entry.MatchedTitle)

	_, ok, err = store.GetMetadataCache(ctx, "the office", true, 2005, now.Add(31*time.Minute))
	require.NoError(t, err)
	assert.False(t, ok)

	deleted, err := store.DeleteExpiredMetadataCache(ctx, now.Add(31*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)
}
