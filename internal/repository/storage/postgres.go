package storage

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
	"storefront/internal/domain"
)

type postgresStore struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

func NewPostgres(pool *pgxpool.Pool, logger *zap.Logger) Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &postgresStore{pool: pool, logger: logger.Named("storage")}
}

func (s *postgresStore) Get(ctx context.Context, key string) ([]byte, error) {
	const q = `
SELECT value::text
FROM storage_entries
WHERE key = $1
`
	var raw string
	if err := s.pool.QueryRow(ctx, q, key).Scan(&raw); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		s.logger.Error("get entry", zap.String("key", key), zap.Error(err))
		return nil, err
	}
	return []byte(raw), nil
}

func (s *postgresStore) Put(ctx context.Context, key string, value []byte) error {
	const q = `
INSERT INTO storage_entries (key, value, updated_at)
VALUES ($1, $2::jsonb, now())
ON CONFLICT (key) DO UPDATE
SET value = EXCLUDED.value,
    updated_at = EXCLUDED.updated_at
`
	if _, err := s.pool.Exec(ctx, q, key, string(value)); err != nil {
		s.logger.Error("put entry", zap.String("key", key), zap.Error(err))
		return err
	}
	s.logger.Debug("put entry", zap.String("key", key), zap.Int("bytes", len(value)))
	return nil
}

func (s *postgresStore) Delete(ctx context.Context, key string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM storage_entries WHERE key = $1`, key)
	return err
}

func (s *postgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}
