package main

import (
	"context"
	"flag"
	"log"

	"go.uber.org/zap"
	"storefront/internal/config"
	"storefront/internal/logging"
	cartrepo "storefront/internal/repository/cart"
	"storefront/internal/repository/storage"
	wishlistrepo "storefront/internal/repository/wishlist"
	"storefront/internal/seed"
	cartsvc "storefront/internal/service/cart"
	"storefront/internal/service/notify"
	wishlistsvc "storefront/internal/service/wishlist"
)

func main() {
	key := flag.String("key", seed.DefaultKey, "storage key to write the demo cart and wishlist under")
	flag.Parse()

	cfg := config.FromEnv()
	logger, err := logging.New(logging.Options{Level: cfg.LogLevel, File: cfg.LogFile})
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()
	logger = logger.Named("seed")

	ctx := context.Background()
	store, closeStore, err := storage.Open(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("open storage", zap.Error(err))
	}
	defer closeStore()

	pricing := cartsvc.PricingFromConfig(cfg.Pricing)
	carts := cartsvc.New(cartrepo.New(store), notify.Nop{}, pricing, logger)
	wishlists := wishlistsvc.New(wishlistrepo.New(store), notify.Nop{}, carts, logger)

	if err := seed.Apply(ctx, carts, wishlists, *key); err != nil {
		logger.Fatal("seed apply", zap.Error(err))
	}
	logger.Info("seed applied", zap.String("storage_key", *key))
}
