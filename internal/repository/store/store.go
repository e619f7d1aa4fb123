package store

import (
	"context"
	"fmt"

	"github.com/oshokin/alarm-clock/internal/config"
	domain "github.com/oshokin/alarm-clock/internal/domain/alarm"
)

// Repository defines persistence operations for the alarm entries.
type Repository interface {
	// Load returns the persisted entries, or an empty sequence if none were saved yet.
	Load(ctx context.Context) ([]domain.Entry, error)
	// Save replaces the persisted entries with the given sequence.
	Save(ctx context.Context, entries []domain.Entry) error
	// Close releases the backend.
	Close() error
}

// Open creates the repository selected by the configured driver.
//
//nolint:ireturn // Callers pick the backend through config.
func Open(cfg *config.Config) (Repository, error) {
	switch cfg.StoreDriver {
	case config.DriverJSON, "":
		return NewFileRepository(cfg.StateFile), nil
	case config.DriverSQLite:
		repo, err := NewSQLiteRepository(cfg.StateFile)
		if err != nil {
			return nil, err
		}

		return repo, nil
	default:
		return nil, fmt.Errorf("unsupported store driver %q", cfg.StoreDriver)
	}
}

// persistenceError marks err as an unwritable-store failure.
func persistenceError(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, domain.ErrPersistence, err)
}
