package sqlite

import (
	"context"
	"fmt"
	"log/slog"
)

// migration holds a single schema migration with its target version and SQL.
type migration struct {
	version int
	sql     string
}

// migrations is the ordered list of schema migrations.
// Each migration's version must be sequential starting from 1.
var migrations = []migration{
	{
		version: 1,
		sql: `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS todos (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	title       TEXT NOT NULL CHECK (length(title) <= 255),
	description TEXT NOT NULL CHECK (length(description) <= 255),
	created_at  TEXT NOT NULL,
	updated_at  TEXT NOT NULL
);

INSERT INTO schema_version (version) VALUES (1);
`,
	},
}

// migrate checks the current schema version and applies any outstanding
// migrations in order, each inside its own transaction.
func (s *Store) migrate(ctx context.Context) error {
	current, err := s.schemaVersion(ctx)
	if err != nil {
		return err
	}

	for _, m := range migrations {
		if m.version <= current {
			continue
		}

		tx, err := s.db.BeginTxx(ctx, nil)
		if err != nil {
			return fmt.Errorf("beginning migration v%d: %w", m.version, err)
		}
		if _, err := tx.ExecContext(ctx, m.sql); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("applying migration v%d: %w", m.version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("committing migration v%d: %w", m.version, err)
		}

		s.logger.InfoContext(ctx, "applied schema migration", slog.Int("version", m.version))
	}

	return nil
}

// schemaVersion returns the highest applied migration, or 0 for a fresh
// database.
func (s *Store) schemaVersion(ctx context.Context) (int, error) {
	var tables int
	err := s.db.GetContext(ctx, &tables,
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'")
	if err != nil {
		return 0, fmt.Errorf("checking schema_version table: %w", err)
	}
	if tables == 0 {
		return 0, nil
	}

	var version int
	if err := s.db.GetContext(ctx, &version, "SELECT COALESCE(MAX(version), 0) FROM schema_version"); err != nil {
		return 0, fmt.Errorf("reading schema version: %w", err)
	}
	return version, nil
}
