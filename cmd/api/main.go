package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"storefront/internal/config"
	"storefront/internal/httpserver"
	"storefront/internal/logging"
	cartrepo "storefront/internal/repository/cart"
	"storefront/internal/repository/storage"
	wishlistrepo "storefront/internal/repository/wishlist"
	cartsvc "storefront/internal/service/cart"
	"storefront/internal/service/notify"
	wishlistsvc "storefront/internal/service/wishlist"
)

func main() {
	cfg := config.FromEnv()
	logger, err := logging.New(logging.Options{Level: cfg.LogLevel, File: cfg.LogFile})
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx := context.Background()
	store, closeStore, err := storage.Open(ctx, cfg, logger.Named("storage"))
	if err != nil {
		logger.Fatal("open storage", zap.String("driver", cfg.StorageDriver), zap.Error(err))
	}
	defer closeStore()

	notices := notify.NewRecorder(cfg.NoticeBuffer, cfg.CacheSize)
	notifier := notify.Multi{notify.NewLog(logger), notices}

	pricing := cartsvc.PricingFromConfig(cfg.Pricing)
	cartService := cartsvc.New(cartrepo.New(store), notifier, pricing, logger,
		cartsvc.WithStoreCache(cfg.CacheSize, cfg.CacheTTL))
	wishlistService := wishlistsvc.New(wishlistrepo.New(store), notifier, cartService, logger,
		wishlistsvc.WithStoreCache(cfg.CacheSize, cfg.CacheTTL))

	srv, err := httpserver.New(cfg.HTTPAddr, logger, httpserver.Deps{
		Storage:     store,
		CartSvc:     cartService,
		WishlistSvc: wishlistService,
		Notices:     notices,
		NewKey:      uuid.NewString,
	}, httpserver.Options{AllowOrigins: cfg.CORSAllowOrigins})
	if err != nil {
		logger.Fatal("init server", zap.Error(err))
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("starting http server",
			zap.String("addr", cfg.HTTPAddr),
			zap.String("storage", cfg.StorageDriver),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		logger.Info("received signal, shutting down", zap.String("signal", sig.String()))
	case err := <-serverErr:
		logger.Error("server error", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	} else {
		logger.Info("server stopped")
	}
}
