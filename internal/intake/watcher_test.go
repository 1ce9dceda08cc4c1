package intake

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcher_EmitsDebouncedBatch(t *testing.T) {
	dir := t.TempDir()
	batches := make(chan []string, 1)

	w, err := NewWatcher([]string{dir}, func(paths []string) {
		batches <- paths
	}, WithDebounce(100*time.Millisecond))
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Close() })

	require.NoError(t, w.Start(context.Background()))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "Movie.ita.srt"), []byte("1\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Show.S01E01.srt"), []byte("1\n"), 0o644))

	select {
	case batch := <-batches:
		assert.Equal(t, []string{
			filepath.Join(dir, "Movie.ita.srt"),
			filepath.Join(dir, "Show.S01E01.srt"),
		}, batch)
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for batch")
	}
}

func TestWatcher_IgnoresNonSubtitleFiles(t *testing.T) {
	dir := t.TempDir()
	batches := make(chan []string, 1)

	w, err := NewWatcher([]string{dir}, func(paths []string) {
		batches <- paths
	}, WithDebounce(50*time.Millisecond))
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Close() })

	require.NoError(t, w.Start(context.Background()))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))

	select {
	case batch := <-batches:
		t.Fatalf("unexpected batch: %v", batch)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestWatcher_WatchesDroppedSubdirectories(t *testing.T) {
	dir := t.TempDir()
	batches := make(chan []string, 1)

	w, err := NewWatcher([]string{dir}, func(paths []string) {
		batches <- paths
	}, WithDebounce(100*time.Millisecond))
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Close() })

	require.NoError(t, w.Start(context.Background()))

	sub := filepath.Join(dir, "season1")
	require.NoError(t, os.Mkdir(sub, 0o755))
	// give the watcher a moment to register the new directory
	time.Sleep(200 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(sub, "Show.S01E01.srt"), []byte("1\n"), 0o644))

	select {
	case batch := <-batches:
		assert.Equal(t, []string{filepath.Join(sub, "Show.S01E01.srt")}, batch)
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for batch")
	}
}

func TestNewWatcher_Validation(t *testing.T) {
	_, err := NewWatcher(nil, func([]string) {})
	require.Error(t, err)

	_, err = NewWatcher([]string{t.TempDir()}, nil)
	require.Error(t, err)
}

func TestCatchUpScan(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "old.srt"), []byte("1\n"), 0o644))
	old := time.Now().Add(-2 * time.Hour)
	require.NoError(t, os.Chtimes(filepath.Join(dir, "old.srt"), old, old))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "new.srt"), []byte("1\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "new.txt"), []byte("x"), 0o644))

	found := CatchUpScan([]string{dir}, time.Now().Add(-time.Hour))
	assert.Equal(t, []string{filepath.Join(dir, "new.srt")}, found)
}
