package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/susu3304/pairbot/internal/pairing"
	"github.com/susu3304/pairbot/internal/store"
	_ "modernc.org/sqlite"
)

// SQLite is a single-file pairing store for deployments without Postgres.
type SQLite struct {
	db   *sql.DB
	Path string
}

type migration struct {
	Version     int
	Description string
	SQL         string
}

var sqliteMigrations = []migration{
	{
		Version:     1,
		Description: "pairing_histories and pairing_rounds",
		SQL: `
CREATE TABLE pairing_histories (
    guild_id   TEXT PRIMARY KEY,
    data       TEXT NOT NULL,
    updated_at INTEGER NOT NULL DEFAULT (strftime('%s', 'now'))
);

CREATE TABLE pairing_rounds (
    id         INTEGER PRIMARY KEY AUTOINCREMENT,
    guild_id   TEXT NOT NULL,
    data       TEXT NOT NULL,
    created_at INTEGER NOT NULL DEFAULT (strftime('%s', 'now'))
);

CREATE INDEX idx_pairing_rounds_guild ON pairing_rounds(guild_id, id DESC);
`,
	},
}

const (
	sqliteUpsertHistory = `INSERT INTO pairing_histories (guild_id, data, updated_at)
         VALUES (?, ?, strftime('%s', 'now'))
         ON CONFLICT (guild_id) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`
	sqliteInsertRound = "INSERT INTO pairing_rounds (guild_id, data) VALUES (?, ?)"
)

// OpenSQLite opens (or creates) the database file at path and migrates it.
func OpenSQLite(path string) (*SQLite, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	return openSQLite(path, "PRAGMA journal_mode=WAL")
}

// OpenSQLiteMemory opens a private in-memory database for tests.
func OpenSQLiteMemory() (*SQLite, error) {
	return openSQLite(":memory:")
}

func openSQLite(path string, extraPragmas ...string) (*SQLite, error) {
	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// One connection: an in-memory database is per connection, and writes
	// are serialized per guild anyway.
	sqlDB.SetMaxOpenConns(1)

	s := &SQLite{db: sqlDB, Path: path}
	pragmas := append([]string{"PRAGMA busy_timeout=5000"}, extraPragmas...)
	for _, p := range pragmas {
		if _, err := sqlDB.Exec(p); err != nil {
			sqlDB.Close()
			return nil, fmt.Errorf("pragma %q: %w", p, err)
		}
	}
	if err := s.migrate(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}

func (s *SQLite) migrate() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_versions (
			version     INTEGER PRIMARY KEY,
			description TEXT NOT NULL,
			applied_at  INTEGER NOT NULL DEFAULT (strftime('%s', 'now'))
		)
	`)
	if err != nil {
		return fmt.Errorf("create schema_versions: %w", err)
	}

	for _, m := range sqliteMigrations {
		var count int
		if err := s.db.QueryRow("SELECT COUNT(*) FROM schema_versions WHERE version = ?", m.Version).Scan(&count); err != nil {
			return fmt.Errorf("check migration %d: %w", m.Version, err)
		}
		if count > 0 {
			continue
		}

		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("begin migration %d: %w", m.Version, err)
		}
		if _, err := tx.Exec(m.SQL); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d (%s): %w", m.Version, m.Description, err)
		}
		if _, err := tx.Exec(
			"INSERT INTO schema_versions (version, description) VALUES (?, ?)",
			m.Version, m.Description,
		); err != nil {
			tx.Rollback()
			return fmt.Errorf("record migration %d: %w", m.Version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %d: %w", m.Version, err)
		}
	}
	return nil
}

// SchemaVersion returns the highest applied migration.
func (s *SQLite) SchemaVersion() (int, error) {
	var v sql.NullInt64
	if err := s.db.QueryRow("SELECT MAX(version) FROM schema_versions").Scan(&v); err != nil {
		return 0, err
	}
	return int(v.Int64), nil
}

func (s *SQLite) LoadHistory(ctx context.Context, guildID string) (*pairing.History, error) {
	var data string
	err := s.db.QueryRowContext(ctx,
		"SELECT data FROM pairing_histories WHERE guild_id = ?",
		guildID,
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return store.DecodeHistory(guildID, []byte(data))
}

func (s *SQLite) SaveHistory(ctx context.Context, guildID string, h *pairing.History) error {
	data, err := store.EncodeHistory(h)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, sqliteUpsertHistory, guildID, string(data))
	return err
}

func (s *SQLite) LoadRound(ctx context.Context, guildID string) (*pairing.Round, error) {
	var data string
	err := s.db.QueryRowContext(ctx,
		"SELECT data FROM pairing_rounds WHERE guild_id = ? ORDER BY id DESC LIMIT 1",
		guildID,
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return store.DecodeRound(guildID, []byte(data))
}

func (s *SQLite) SaveRound(ctx context.Context, guildID string, r *pairing.Round) error {
	data, err := store.EncodeRound(r)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, sqliteInsertRound, guildID, string(data))
	return err
}

// SaveRoundState writes the history and the round in one transaction.
func (s *SQLite) SaveRoundState(ctx context.Context, guildID string, h *pairing.History, r *pairing.Round) error {
	hist, err := store.EncodeHistory(h)
	if err != nil {
		return err
	}
	round, err := store.EncodeRound(r)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, sqliteUpsertHistory, guildID, string(hist)); err != nil {
		tx.Rollback()
		return err
	}
	if _, err := tx.ExecContext(ctx, sqliteInsertRound, guildID, string(round)); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

var (
	_ store.Store      = (*SQLite)(nil)
	_ store.StateSaver = (*SQLite)(nil)
)
