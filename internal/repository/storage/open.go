package storage

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"storefront/internal/config"
	"storefront/internal/db"
)

// Open builds the Store selected by cfg.StorageDriver. The returned close
// func releases the underlying pool or file and is never nil.
func Open(ctx context.Context, cfg config.Config, logger *zap.Logger) (Store, func(), error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	switch cfg.StorageDriver {
	case config.StoragePostgres:
		pool, err := db.Connect(ctx, cfg.DBConnString, logger.Named("db"))
		if err != nil {
			return nil, func() {}, fmt.Errorf("connect db: %w", err)
		}
		return NewPostgres(pool, logger), pool.Close, nil
	case config.StorageBolt:
		bolt, err := NewBolt(cfg.BoltPath, logger)
		if err != nil {
			return nil, func() {}, err
		}
		return bolt, func() {
			if err := bolt.Close(); err != nil {
				logger.Warn("close bolt store", zap.Error(err))
			}
		}, nil
	case config.StorageMemory:
		logger.Warn("memory storage selected; carts are lost on restart")
		return NewMemory(), func() {}, nil
	default:
		return nil, func() {}, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}
