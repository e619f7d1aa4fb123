// Package store implements persistence for alarm entries.
//
// A Repository loads and saves the whole ordered entry sequence. Two
// backends exist: FileRepository keeps an indented JSON array on disk, and
// SQLiteRepository keeps one row per entry in an embedded SQLite database.
// Both replace the full sequence on every Save.
package store
