package main

import (
	"context"
	"flag"
	"log"

	"go.uber.org/zap"
	"storefront/internal/config"
	"storefront/internal/db"
	"storefront/internal/logging"
	"storefront/internal/migrate"
)

func main() {
	down := flag.Int("down", 0, "roll back this many migration steps instead of migrating up")
	flag.Parse()

	cfg := config.FromEnv()
	logger, err := logging.New(logging.Options{Level: cfg.LogLevel, File: cfg.LogFile})
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()
	logger = logger.Named("migrate")

	if cfg.StorageDriver != config.StoragePostgres {
		logger.Info("storage driver needs no migrations", zap.String("driver", cfg.StorageDriver))
		return
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DBConnString, logger)
	if err != nil {
		logger.Fatal("connect db", zap.Error(err))
	}
	defer pool.Close()

	if *down > 0 {
		if err := migrate.Rollback(ctx, pool, *down); err != nil {
			logger.Fatal("rollback migrations", zap.Error(err))
		}
		logger.Info("migrations rolled back", zap.Int("steps", *down))
		return
	}

	if err := migrate.Apply(ctx, pool, logger); err != nil {
		logger.Fatal("apply migrations", zap.Error(err))
	}
	logger.Info("migrations applied")
}
