package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"

	"github.com/oshokin/alarm-clock/internal/config"
	domain "github.com/oshokin/alarm-clock/internal/domain/alarm"
	"github.com/oshokin/alarm-clock/internal/logger"
)

// FileRepository persists the alarm entries to a JSON file on disk.
type FileRepository struct {
	// path is the filesystem location of the JSON file.
	path string
	// mu protects concurrent access to the file.
	mu sync.Mutex
}

// NewFileRepository creates a repository that reads/writes JSON at the provided path.
func NewFileRepository(path string) *FileRepository {
	return &FileRepository{
		path: filepath.Clean(path),
	}
}

// fileEntry is the on-disk form of an entry. Time stays a string so one
// unparseable entry does not fail the whole file.
type fileEntry struct {
	ID     string `json:"id"`
	Time   string `json:"time"`
	Tone   string `json:"tone"`
	Active bool   `json:"active"`
}

// Load reads the entries from disk. A missing file yields an empty sequence.
// Entries without an ID (files written by older versions) get a fresh one.
// Entries whose time is not a real clock time, such as "13:00 PM" saved by
// older versions, are skipped with a warning and dropped on the next Save.
func (r *FileRepository) Load(ctx context.Context) ([]domain.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	contents, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []domain.Entry{}, nil
		}

		return nil, fmt.Errorf("read alarm file: %w", err)
	}

	var stored []fileEntry
	if err = json.Unmarshal(contents, &stored); err != nil {
		return nil, fmt.Errorf("decode alarm file: %w", err)
	}

	entries := make([]domain.Entry, 0, len(stored))

	for i, item := range stored {
		at, parseErr := domain.ParseTimeOfDay(item.Time)
		if parseErr != nil {
			logger.WarnKV(ctx, "Skipping alarm with invalid time",
				"file", r.path, "index", i, "id", item.ID, "time", item.Time, "error", parseErr)

			continue
		}

		if item.ID == "" {
			item.ID = uuid.NewString()
		}

		entries = append(entries, domain.Entry{
			ID:     item.ID,
			Time:   at,
			Tone:   item.Tone,
			Active: item.Active,
		})
	}

	return entries, nil
}

// Save writes the entries next to the target and renames the result over it,
// so readers see either the old or the new sequence.
func (r *FileRepository) Save(_ context.Context, entries []domain.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := json.MarshalIndent(domain.CloneEntries(entries), "", "  ")
	if err != nil {
		return fmt.Errorf("encode alarms: %w", err)
	}

	data = append(data, '\n')

	tmp, err := os.CreateTemp(filepath.Dir(r.path), filepath.Base(r.path)+".*.tmp")
	if err != nil {
		return persistenceError("create temp alarm file", err)
	}

	tmpName := tmp.Name()

	// Best-effort cleanup; after a successful rename the file is gone already.
	defer func() {
		_ = os.Remove(tmpName)
	}()

	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()

		return persistenceError("write alarm file", err)
	}

	if err = tmp.Sync(); err != nil {
		_ = tmp.Close()

		return persistenceError("sync alarm file", err)
	}

	if err = tmp.Close(); err != nil {
		return persistenceError("close alarm file", err)
	}

	if err = os.Chmod(tmpName, config.DefaultFilePermissions); err != nil {
		return persistenceError("chmod alarm file", err)
	}

	if err = os.Rename(tmpName, r.path); err != nil {
		return persistenceError("replace alarm file", err)
	}

	return nil
}

// Close is a no-op; the file is opened per operation.
func (r *FileRepository) Close() error {
	return nil
}
