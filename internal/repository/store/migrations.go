package store

// migration holds a single schema migration with its target version and SQL.
type migration struct {
	version int
	sql     string
}

// migrations is the ordered list of schema migrations.
// Each migration's version must be sequential starting from 1.
//
//nolint:gochecknoglobals // Static schema history.
var migrations = []migration{
	{
		version: 1,
		sql: `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS alarms (
	id       TEXT PRIMARY KEY,
	position INTEGER NOT NULL,
	time     TEXT NOT NULL,
	tone     TEXT NOT NULL,
	active   INTEGER NOT NULL DEFAULT 1
);

CREATE INDEX IF NOT EXISTS idx_alarms_position ON alarms(position);

INSERT INTO schema_version (version) VALUES (1);
`,
	},
}
