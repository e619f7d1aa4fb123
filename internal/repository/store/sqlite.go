package store

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // Registers the pure-Go "sqlite" driver.

	domain "github.com/oshokin/alarm-clock/internal/domain/alarm"
)

// SQLiteRepository persists the alarm entries in a local SQLite database.
type SQLiteRepository struct {
	db *sqlx.DB
}

// alarmRow mirrors one row of the alarms table.
type alarmRow struct {
	ID       string `db:"id"`
	Position int    `db:"position"`
	Time     string `db:"time"`
	Tone     string `db:"tone"`
	Active   bool   `db:"active"`
}

// NewSQLiteRepository opens (or creates) a SQLite database at path
// and runs any pending schema migrations.
func NewSQLiteRepository(path string) (*SQLiteRepository, error) {
	db, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	// One connection serialises writers; the engine holds its own lock anyway.
	db.SetMaxOpenConns(1)

	if _, err = db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()

		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	r := &SQLiteRepository{db: db}
	if err = r.runMigrations(); err != nil {
		_ = db.Close()

		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return r, nil
}

// runMigrations applies outstanding migrations in order.
func (r *SQLiteRepository) runMigrations() error {
	var (
		currentVersion int
		tableCount     int
	)

	err := r.db.Get(
		&tableCount,
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}

	if tableCount > 0 {
		if err = r.db.Get(&currentVersion, "SELECT COALESCE(MAX(version), 0) FROM schema_version"); err != nil {
			return fmt.Errorf("read schema version: %w", err)
		}
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}

		if _, err = r.db.Exec(m.sql); err != nil {
			return fmt.Errorf("apply migration v%d: %w", m.version, err)
		}
	}

	return nil
}

// Load returns the entries in their saved order.
func (r *SQLiteRepository) Load(ctx context.Context) ([]domain.Entry, error) {
	var rows []alarmRow

	err := r.db.SelectContext(ctx, &rows, "SELECT id, position, time, tone, active FROM alarms ORDER BY position")
	if err != nil {
		return nil, fmt.Errorf("query alarms: %w", err)
	}

	entries := make([]domain.Entry, 0, len(rows))

	for _, row := range rows {
		at, err := domain.ParseTimeOfDay(row.Time)
		if err != nil {
			return nil, fmt.Errorf("decode alarm %s: %w", row.ID, err)
		}

		entries = append(entries, domain.Entry{
			ID:     row.ID,
			Time:   at,
			Tone:   row.Tone,
			Active: row.Active,
		})
	}

	return entries, nil
}

// Save replaces every row inside a single transaction.
func (r *SQLiteRepository) Save(ctx context.Context, entries []domain.Entry) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return persistenceError("begin transaction", err)
	}

	defer func() {
		_ = tx.Rollback()
	}()

	if _, err = tx.ExecContext(ctx, "DELETE FROM alarms"); err != nil {
		return persistenceError("clear alarms", err)
	}

	for i, entry := range entries {
		row := alarmRow{
			ID:       entry.ID,
			Position: i,
			Time:     entry.Time.String(),
			Tone:     entry.Tone,
			Active:   entry.Active,
		}

		_, err = tx.NamedExecContext(ctx, `
			INSERT INTO alarms (id, position, time, tone, active)
			VALUES (:id, :position, :time, :tone, :active)`, row)
		if err != nil {
			return persistenceError("insert alarm "+entry.ID, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return persistenceError("commit alarms", err)
	}

	return nil
}

// Close closes the underlying database connection.
func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}
