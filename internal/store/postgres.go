package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Postgres is a Store over a single key-value table, for deployments
// that already run a database. Schema lives in db/migrations.
type Postgres struct {
	db *pgxpool.Pool
}

func NewPostgres(db *pgxpool.Pool) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var value []byte
	err := s.db.QueryRow(ctx,
		`SELECT value FROM isbn_cache WHERE key = $1`, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return value, true, nil
}

func (s *Postgres) Set(ctx context.Context, key string, value []byte) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO isbn_cache (key, value, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE
		SET value = EXCLUDED.value, updated_at = now()
	`, key, value)
	return err
}

func (s *Postgres) Delete(ctx context.Context, key string) error {
	_, err := s.db.Exec(ctx, `DELETE FROM isbn_cache WHERE key = $1`, key)
	return err
}

func (s *Postgres) Clear(ctx context.Context) error {
	_, err := s.db.Exec(ctx, `DELETE FROM isbn_cache`)
	return err
}

func (s *Postgres) Close() error {
	s.db.Close()
	return nil
}
