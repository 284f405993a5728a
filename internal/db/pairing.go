package db

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/susu3304/pairbot/internal/pairing"
	"github.com/susu3304/pairbot/internal/store"
)

func (db *DB) LoadHistory(ctx context.Context, guildID string) (*pairing.History, error) {
	var data []byte
	err := db.pool.QueryRow(ctx,
		"SELECT data FROM pairing_histories WHERE guild_id = $1",
		guildID,
	).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return store.DecodeHistory(guildID, data)
}

const (
	upsertHistorySQL = `INSERT INTO pairing_histories (guild_id, data, updated_at)
         VALUES ($1, $2, CURRENT_TIMESTAMP)
         ON CONFLICT (guild_id) DO UPDATE SET data = EXCLUDED.data, updated_at = EXCLUDED.updated_at`
	insertRoundSQL = "INSERT INTO pairing_rounds (guild_id, data) VALUES ($1, $2)"
)

func (db *DB) SaveHistory(ctx context.Context, guildID string, h *pairing.History) error {
	data, err := store.EncodeHistory(h)
	if err != nil {
		return err
	}
	_, err = db.pool.Exec(ctx, upsertHistorySQL, guildID, data)
	return err
}

// LoadRound returns the most recently saved round.
func (db *DB) LoadRound(ctx context.Context, guildID string) (*pairing.Round, error) {
	var data []byte
	err := db.pool.QueryRow(ctx,
		"SELECT data FROM pairing_rounds WHERE guild_id = $1 ORDER BY id DESC LIMIT 1",
		guildID,
	).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return store.DecodeRound(guildID, data)
}

// SaveRound appends a new round row; older rows stay as an audit trail.
func (db *DB) SaveRound(ctx context.Context, guildID string, r *pairing.Round) error {
	data, err := store.EncodeRound(r)
	if err != nil {
		return err
	}
	_, err = db.pool.Exec(ctx, insertRoundSQL, guildID, data)
	return err
}

// SaveRoundState writes the history and the round in one transaction.
func (db *DB) SaveRoundState(ctx context.Context, guildID string, h *pairing.History, r *pairing.Round) error {
	hist, err := store.EncodeHistory(h)
	if err != nil {
		return err
	}
	round, err := store.EncodeRound(r)
	if err != nil {
		return err
	}

	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, upsertHistorySQL, guildID, hist); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, insertRoundSQL, guildID, round); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

var (
	_ store.Store      = (*DB)(nil)
	_ store.StateSaver = (*DB)(nil)
)
