package config

import (
	"testing"
	"time"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/checkout")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("JWT_SECRET", "test-secret")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.AppEnv != "development" {
		t.Fatalf("AppEnv = %q, want development", cfg.AppEnv)
	}
	if cfg.CurrencyCode != "IDR" {
		t.Fatalf("CurrencyCode = %q, want IDR", cfg.CurrencyCode)
	}
	if cfg.CartTTL != 168*time.Hour {
		t.Fatalf("CartTTL = %s, want 168h", cfg.CartTTL)
	}
	if cfg.PaymentWindow != 24*time.Hour {
		t.Fatalf("PaymentWindow = %s, want 24h", cfg.PaymentWindow)
	}
	if cfg.HTTPAddr() != ":8080" {
		t.Fatalf("HTTPAddr = %q, want :8080", cfg.HTTPAddr())
	}
}

func TestLoadRequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("JWT_SECRET", "test-secret")

	if _, err := Load(); err == nil {
		t.Fatal("expected error when DATABASE_URL is missing")
	}
}

func TestLoadOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("APP_ENV", "production")
	t.Setenv("PORT", "9090")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example.com, https://b.example.com")
	t.Setenv("VOUCHER_CACHE_TTL", "30s")
	t.Setenv("PAYMENT_WINDOW", "not-a-duration")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.IsProduction() {
		t.Fatal("IsProduction = false, want true")
	}
	if cfg.HTTPAddr() != ":9090" {
		t.Fatalf("HTTPAddr = %q, want :9090", cfg.HTTPAddr())
	}
	if len(cfg.CORSAllowedOrigins) != 2 || cfg.CORSAllowedOrigins[1] != "https://b.example.com" {
		t.Fatalf("CORSAllowedOrigins = %v", cfg.CORSAllowedOrigins)
	}
	if cfg.VoucherCacheTTL != 30*time.Second {
		t.Fatalf("VoucherCacheTTL = %s, want 30s", cfg.VoucherCacheTTL)
	}
	if cfg.PaymentWindow != 24*time.Hour {
		t.Fatalf("PaymentWindow = %s, want fallback 24h", cfg.PaymentWindow)
	}
}
