// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

/*
Package tm keeps a translation memory: a SQLite database of finished
translations harvested from .ts files, searchable by source text.

Entries are keyed by language, context, source and disambiguation comment.
Importing a file again replaces the stored translations for its keys.
*/
package tm

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/text/language"
	_ "modernc.org/sqlite" // pure Go driver

	"codeberg.org/pixivfe/tstool/core/numerus"
	"codeberg.org/pixivfe/tstool/core/ts"
)

const busyTimeout = 5 * time.Second

// ErrNoLanguage is returned when importing a file without a language.
var ErrNoLanguage = errors.New("translation file has no language")

// Memory is an open translation memory.
type Memory struct {
	db     *sql.DB
	logger zerolog.Logger
	now    func() time.Time
}

// Match is a stored translation for a looked-up source text.
type Match struct {
	Language string
	Context  string
	Source   string
	Comment  string
	Numerus  bool
	Texts    []string
	Origin   string
	Updated  time.Time
}

// Open opens or creates the memory at path and migrates its schema.
func Open(ctx context.Context, path string) (*Memory, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(%d)&_pragma=synchronous(NORMAL)",
		path, busyTimeout.Milliseconds())

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open translation memory %s: %w", path, err)
	}

	// SQLite serialises writers anyway; one connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()

		return nil, fmt.Errorf("failed to open translation memory %s: %w", path, err)
	}

	m := &Memory{
		db:     db,
		logger: log.With().Str("sys", "tm").Logger(),
		now:    time.Now,
	}

	version, err := m.migrate(ctx)
	if err != nil {
		_ = db.Close()

		return nil, fmt.Errorf("could not complete migration, last applied version was %d: %w", version, err)
	}

	m.logger.Debug().Str("path", path).Int("schema", version).Msg("Opened translation memory")

	return m, nil
}

// Close closes the database.
func (m *Memory) Close() error {
	return m.db.Close()
}

// Import stores every finished, live message of f. It returns the number of
// messages stored.
func (m *Memory) Import(ctx context.Context, f *ts.File, origin string) (int, error) {
	if f.Language == "" {
		return 0, ErrNoLanguage
	}

	tag, err := numerus.ParseLanguage(f.Language)
	if err != nil {
		return 0, err
	}

	base, _ := tag.Base()

	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin import: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	stmt, err := tx.PrepareContext(ctx, upsertQuery)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare import: %w", err)
	}
	defer stmt.Close()

	updated := m.now().UnixNano()
	stored := 0

	for c, msg := range f.All() {
		if msg.Translation.Type != ts.Finished || msg.Translation.Empty() {
			continue
		}

		texts, err := json.Marshal(msg.Texts())
		if err != nil {
			return 0, fmt.Errorf("failed to encode translation: %w", err)
		}

		if _, err := stmt.ExecContext(ctx,
			tag.String(), base.String(), c.Name, msg.Source, msg.Comment,
			msg.Numerus, string(texts), origin, updated,
		); err != nil {
			return 0, fmt.Errorf("failed to store %s: %w", msg.Key(c.Name), err)
		}

		stored++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit import: %w", err)
	}

	m.logger.Info().
		Str("origin", origin).
		Str("language", tag.String()).
		Int("count", stored).
		Msg("Imported translations")

	return stored, nil
}

// Lookup returns translations of source into language, newest first.
// A language without region, e.g. "es", matches every regional variant.
func (m *Memory) Lookup(ctx context.Context, lang, source string) ([]Match, error) {
	tag, err := numerus.ParseLanguage(lang)
	if err != nil {
		return nil, err
	}

	query := lookupByLanguageQuery
	key := tag.String()

	if _, conf := tag.Region(); conf != language.Exact {
		base, _ := tag.Base()
		query = lookupByBaseQuery
		key = base.String()
	}

	rows, err := m.db.QueryContext(ctx, query, key, source)
	if err != nil {
		return nil, fmt.Errorf("failed to look up %q: %w", source, err)
	}
	defer rows.Close()

	var out []Match

	for rows.Next() {
		var (
			match   Match
			texts   string
			updated int64
		)

		if err := rows.Scan(&match.Language, &match.Context, &match.Source, &match.Comment,
			&match.Numerus, &texts, &match.Origin, &updated); err != nil {
			return nil, fmt.Errorf("failed to read match: %w", err)
		}

		if err := json.Unmarshal([]byte(texts), &match.Texts); err != nil {
			return nil, fmt.Errorf("failed to decode stored translation: %w", err)
		}

		match.Updated = time.Unix(0, updated)
		out = append(out, match)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to look up %q: %w", source, err)
	}

	return out, nil
}

// Count returns the number of stored translations.
func (m *Memory) Count(ctx context.Context) (int, error) {
	var n int
	if err := m.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM translation`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count translations: %w", err)
	}

	return n, nil
}
