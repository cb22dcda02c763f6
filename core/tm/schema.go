// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package tm

import (
	"context"
	"fmt"
)

// migrations are applied in order; index+1 is the schema version.
var migrations = []string{
	`CREATE TABLE translation (
		language   TEXT    NOT NULL,
		base       TEXT    NOT NULL,
		context    TEXT    NOT NULL,
		source     TEXT    NOT NULL,
		comment    TEXT    NOT NULL DEFAULT '',
		numerus    INTEGER NOT NULL DEFAULT 0,
		texts      TEXT    NOT NULL,
		origin     TEXT    NOT NULL DEFAULT '',
		updated_at INTEGER NOT NULL,
		PRIMARY KEY (language, context, source, comment)
	)`,
	`CREATE INDEX translation_source ON translation (source, base, language)`,
}

const upsertQuery = `
INSERT INTO translation (language, base, context, source, comment, numerus, texts, origin, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (language, context, source, comment) DO UPDATE SET
	numerus    = excluded.numerus,
	texts      = excluded.texts,
	origin     = excluded.origin,
	updated_at = excluded.updated_at`

const lookupColumns = `SELECT language, context, source, comment, numerus, texts, origin, updated_at FROM translation`

const lookupByLanguageQuery = lookupColumns + `
WHERE language = ? AND source = ?
ORDER BY updated_at DESC, context, comment`

const lookupByBaseQuery = lookupColumns + `
WHERE base = ? AND source = ?
ORDER BY updated_at DESC, language, context, comment`

// migrate brings the schema up to date and returns the resulting version.
func (m *Memory) migrate(ctx context.Context) (int, error) {
	if _, err := m.db.ExecContext(ctx,
		`CREATE TABLE IF NOT EXISTS schema_migrations (version INTEGER NOT NULL PRIMARY KEY)`); err != nil {
		return 0, fmt.Errorf("failed to create schema_migrations table: %w", err)
	}

	var version int

	if err := m.db.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(version), 0) FROM schema_migrations`).Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}

	for i := version; i < len(migrations); i++ {
		if err := m.apply(ctx, i+1, migrations[i]); err != nil {
			return version, err
		}

		version = i + 1
		m.logger.Debug().Int("version", version).Msg("Applied schema migration")
	}

	return version, nil
}

func (m *Memory) apply(ctx context.Context, version int, stmt string) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin migration %d: %w", version, err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if _, err := tx.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("migration %d failed: %w", version, err)
	}

	if _, err := tx.ExecContext(ctx, `INSERT INTO schema_migrations (version) VALUES (?)`, version); err != nil {
		return fmt.Errorf("failed to record migration %d: %w", version, err)
	}

	return tx.Commit()
}
