package storage

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresKV stores one JSONB row per player in the player_states table.
type PostgresKV struct {
	db *pgxpool.Pool
}

func NewPostgresKV(db *pgxpool.Pool) *PostgresKV {
	return &PostgresKV{db: db}
}

// EnsureSchema creates the player_states table if it does not exist yet.
func (p *PostgresKV) EnsureSchema(ctx context.Context) error {
	_, err := p.db.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS player_states (
			tg_id      BIGINT PRIMARY KEY,
			state      JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`)
	return err
}

func (p *PostgresKV) Get(ctx context.Context, playerID int64) ([]byte, error) {
	var data []byte
	err := p.db.QueryRow(ctx,
		`SELECT state FROM player_states WHERE tg_id = $1`,
		playerID,
	).Scan(&data)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return data, nil
}

func (p *PostgresKV) Put(ctx context.Context, playerID int64, data []byte) error {
	_, err := p.db.Exec(ctx,
		`INSERT INTO player_states (tg_id, state, updated_at)
		 VALUES ($1, $2, NOW())
		 ON CONFLICT (tg_id) DO UPDATE SET state = $2, updated_at = NOW()`,
		playerID, data,
	)
	return err
}
