package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	domain "github.com/oshokin/alarm-clock/internal/domain/alarm"
)

// sampleEntries returns a small mixed sequence used by the store tests.
func sampleEntries(t *testing.T) []domain.Entry {
	t.Helper()

	morning, err := domain.NewTimeOfDay12(7, 0, "AM")
	require.NoError(t, err)

	evening, err := domain.NewTimeOfDay(19, 45)
	require.NoError(t, err)

	fired := domain.NewEntry(morning, "tone1.mp3")
	fired.Active = false

	return []domain.Entry{
		fired,
		domain.NewEntry(evening, "tone2.mp3"),
	}
}

// TestFileRepository_Missing verifies Load returns an empty sequence for a missing file.
func TestFileRepository_Missing(t *testing.T) {
	t.Parallel()

	repo := NewFileRepository(filepath.Join(t.TempDir(), "missing.json"))

	entries, err := repo.Load(context.Background())
	require.NoError(t, err)
	require.NotNil(t, entries)
	require.Empty(t, entries)
}

// TestFileRepository_SaveLoad_Roundtrip ensures Save followed by Load returns equal entries.
func TestFileRepository_SaveLoad_Roundtrip(t *testing.T) {
	t.Parallel()

	file := filepath.Join(t.TempDir(), "alarms.json")
	repo := NewFileRepository(file)
	want := sampleEntries(t)

	require.NoError(t, repo.Save(context.Background(), want))

	got, err := repo.Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, want, got)

	info, err := os.Stat(file)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	// No temp files are left behind.
	matches, err := filepath.Glob(file + ".*.tmp")
	require.NoError(t, err)
	require.Empty(t, matches)
}

// TestFileRepository_StableEncoding checks that saving what was loaded leaves the bytes unchanged.
func TestFileRepository_StableEncoding(t *testing.T) {
	t.Parallel()

	file := filepath.Join(t.TempDir(), "alarms.json")
	repo := NewFileRepository(file)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, sampleEntries(t)))

	before, err := os.ReadFile(file)
	require.NoError(t, err)

	loaded, err := repo.Load(ctx)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, loaded))

	after, err := os.ReadFile(file)
	require.NoError(t, err)
	require.Equal(t, string(before), string(after))
	require.Contains(t, string(after), `"time": "07:00 AM"`)
}

// TestFileRepository_LegacyFile loads the format written without IDs.
func TestFileRepository_LegacyFile(t *testing.T) {
	t.Parallel()

	file := filepath.Join(t.TempDir(), "alarms.json")
	legacy := `[
  {"time": "07:00 AM", "tone": "tone1.mp3", "active": true},
  {"time": "10:30 PM", "tone": "tone2.mp3", "active": false}
]`
	require.NoError(t, os.WriteFile(file, []byte(legacy), 0o600))

	entries, err := NewFileRepository(file).Load(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.NotEmpty(t, entries[0].ID)
	require.NotEqual(t, entries[0].ID, entries[1].ID)
	require.Equal(t, 22, entries[1].Time.Hour())
	require.False(t, entries[1].Active)
}

// TestFileRepository_Corrupt surfaces undecodable files instead of dropping data.
func TestFileRepository_Corrupt(t *testing.T) {
	t.Parallel()

	file := filepath.Join(t.TempDir(), "alarms.json")
	require.NoError(t, os.WriteFile(file, []byte(`[{"time": "07:00 AM", "active": "yes"}`), 0o600))

	_, err := NewFileRepository(file).Load(context.Background())
	require.Error(t, err)
}

// TestFileRepository_SkipsInvalidTimes keeps the valid entries of a file
// where older versions saved impossible clock times.
func TestFileRepository_SkipsInvalidTimes(t *testing.T) {
	t.Parallel()

	file := filepath.Join(t.TempDir(), "alarms.json")
	legacy := `[
  {"time": "13:00 PM", "tone": "tone1.mp3", "active": true},
  {"time": "25:00", "tone": "tone1.mp3", "active": true},
  {"time": "06:45 AM", "tone": "tone3.mp3", "active": true}
]`
	require.NoError(t, os.WriteFile(file, []byte(legacy), 0o600))

	repo := NewFileRepository(file)

	entries, err := repo.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "06:45 AM", entries[0].Time.String())
	require.Equal(t, "tone3.mp3", entries[0].Tone)
	require.NotEmpty(t, entries[0].ID)

	// The next save rewrites the file without the skipped entries.
	require.NoError(t, repo.Save(context.Background(), entries))

	reloaded, err := repo.Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, entries, reloaded)
}

// TestFileRepository_Unwritable reports ErrPersistence when the directory does not exist.
func TestFileRepository_Unwritable(t *testing.T) {
	t.Parallel()

	repo := NewFileRepository(filepath.Join(t.TempDir(), "no-such-dir", "alarms.json"))

	err := repo.Save(context.Background(), sampleEntries(t))
	require.ErrorIs(t, err, domain.ErrPersistence)
}
