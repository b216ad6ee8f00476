package config

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestFromEnvDefaults(t *testing.T) {
	for _, key := range []string{"HTTP_ADDR", "STORAGE_DRIVER", "CORS_ALLOW_ORIGINS", "CART_TAX_RATE", "CART_FREE_SHIPPING_THRESHOLD", "CART_FLAT_SHIPPING", "SHUTDOWN_TIMEOUT_SECONDS", "NOTICE_BUFFER", "CACHE_SIZE", "CACHE_TTL_SECONDS"} {
		t.Setenv(key, "")
	}
	cfg := FromEnv()
	if cfg.HTTPAddr != ":8080" {
		t.Fatalf("unexpected addr %q", cfg.HTTPAddr)
	}
	if cfg.StorageDriver != StoragePostgres {
		t.Fatalf("unexpected driver %q", cfg.StorageDriver)
	}
	if cfg.ShutdownTimeout != 10*time.Second {
		t.Fatalf("unexpected timeout %v", cfg.ShutdownTimeout)
	}
	if !cfg.Pricing.TaxRate.Equal(decimal.RequireFromString("0.1")) {
		t.Fatalf("unexpected tax rate %s", cfg.Pricing.TaxRate)
	}
	if !cfg.Pricing.FreeShippingThreshold.Equal(decimal.NewFromInt(100)) || !cfg.Pricing.FlatShipping.Equal(decimal.NewFromInt(10)) {
		t.Fatalf("unexpected shipping config %+v", cfg.Pricing)
	}
	if len(cfg.CORSAllowOrigins) != 1 || cfg.CORSAllowOrigins[0] != "*" {
		t.Fatalf("unexpected origins %v", cfg.CORSAllowOrigins)
	}
	if cfg.NoticeBuffer != 20 {
		t.Fatalf("unexpected notice buffer %d", cfg.NoticeBuffer)
	}
	if cfg.CacheSize != 10000 || cfg.CacheTTL != 10*time.Minute {
		t.Fatalf("unexpected cache config %d %v", cfg.CacheSize, cfg.CacheTTL)
	}
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "BOLT")
	t.Setenv("CORS_ALLOW_ORIGINS", "https://shop.example.com, ,https://admin.example.com")
	t.Setenv("CART_TAX_RATE", "0.2")
	t.Setenv("CART_FLAT_SHIPPING", "-5")
	t.Setenv("SHUTDOWN_TIMEOUT_SECONDS", "3")
	t.Setenv("CACHE_SIZE", "50")
	t.Setenv("CACHE_TTL_SECONDS", "30")

	cfg := FromEnv()
	if cfg.StorageDriver != StorageBolt {
		t.Fatalf("unexpected driver %q", cfg.StorageDriver)
	}
	if len(cfg.CORSAllowOrigins) != 2 || cfg.CORSAllowOrigins[1] != "https://admin.example.com" {
		t.Fatalf("unexpected origins %v", cfg.CORSAllowOrigins)
	}
	if !cfg.Pricing.TaxRate.Equal(decimal.RequireFromString("0.2")) {
		t.Fatalf("unexpected tax rate %s", cfg.Pricing.TaxRate)
	}
	if !cfg.Pricing.FlatShipping.Equal(decimal.NewFromInt(10)) {
		t.Fatalf("negative flat shipping should fall back, got %s", cfg.Pricing.FlatShipping)
	}
	if cfg.ShutdownTimeout != 3*time.Second {
		t.Fatalf("unexpected timeout %v", cfg.ShutdownTimeout)
	}
	if cfg.CacheSize != 50 || cfg.CacheTTL != 30*time.Second {
		t.Fatalf("unexpected cache config %d %v", cfg.CacheSize, cfg.CacheTTL)
	}
}

func TestFromEnvUnknownDriverFallsBack(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "redis")
	if got := FromEnv().StorageDriver; got != StoragePostgres {
		t.Fatalf("expected postgres fallback, got %q", got)
	}
}
