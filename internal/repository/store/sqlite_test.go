package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/alarm-clock/internal/config"
)

// TestSQLiteRepository_Roundtrip saves, reloads and replaces the sequence.
func TestSQLiteRepository_Roundtrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "alarms.db")
	ctx := context.Background()

	repo, err := NewSQLiteRepository(path)
	require.NoError(t, err)

	defer func() {
		require.NoError(t, repo.Close())
	}()

	entries, err := repo.Load(ctx)
	require.NoError(t, err)
	require.Empty(t, entries)

	want := sampleEntries(t)
	require.NoError(t, repo.Save(ctx, want))

	got, err := repo.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, want, got)

	// Whole-sequence replace drops rows that are no longer present.
	require.NoError(t, repo.Save(ctx, want[1:]))

	got, err = repo.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, want[1:], got)
}

// TestSQLiteRepository_Reopen keeps data and schema version across reopen.
func TestSQLiteRepository_Reopen(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "alarms.db")
	ctx := context.Background()
	want := sampleEntries(t)

	repo, err := NewSQLiteRepository(path)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, want))
	require.NoError(t, repo.Close())

	repo, err = NewSQLiteRepository(path)
	require.NoError(t, err)

	defer func() {
		_ = repo.Close()
	}()

	got, err := repo.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, want, got)
}

// TestOpen picks the backend from the configured driver.
func TestOpen(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	repo, err := Open(&config.Config{StoreDriver: config.DriverJSON, StateFile: filepath.Join(dir, "a.json")})
	require.NoError(t, err)
	require.IsType(t, new(FileRepository), repo)
	require.NoError(t, repo.Close())

	repo, err = Open(&config.Config{StoreDriver: config.DriverSQLite, StateFile: filepath.Join(dir, "a.db")})
	require.NoError(t, err)
	require.IsType(t, new(SQLiteRepository), repo)
	require.NoError(t, repo.Close())

	_, err = Open(&config.Config{StoreDriver: "bolt"})
	require.Error(t, err)
}
