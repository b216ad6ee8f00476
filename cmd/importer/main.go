package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"go.uber.org/zap"
	"storefront/internal/config"
	"storefront/internal/importer"
	"storefront/internal/logging"
	cartrepo "storefront/internal/repository/cart"
	"storefront/internal/repository/storage"
	cartsvc "storefront/internal/service/cart"
	"storefront/internal/service/notify"
)

func main() {
	var filePath string
	flag.StringVar(&filePath, "file", "", "Path to a cart CSV export (storage_key,product_id,unit_price,...)")
	flag.Parse()

	if filePath == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg := config.FromEnv()
	logger, err := logging.New(logging.Options{Level: cfg.LogLevel, File: cfg.LogFile})
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()
	logger = logger.Named("importer")

	ctx := context.Background()
	store, closeStore, err := storage.Open(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("open storage", zap.Error(err))
	}
	defer closeStore()

	f, err := os.Open(filePath)
	if err != nil {
		logger.Fatal("open file", zap.Error(err))
	}
	defer f.Close()

	carts := cartsvc.New(cartrepo.New(store), notify.Nop{}, cartsvc.PricingFromConfig(cfg.Pricing), logger)
	imp := importer.NewCSVImporter(f, carts)

	start := time.Now()
	res, err := imp.Run(ctx)
	if err != nil {
		logger.Fatal("import failed", zap.Error(err), zap.Int("lines_imported", res.Lines))
	}

	logger.Info("import finished",
		zap.Int("carts", res.Carts),
		zap.Int("lines", res.Lines),
		zap.Duration("took", time.Since(start).Truncate(time.Millisecond)),
	)
}
