package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.BookingFeeEnabled {
		t.Error("BookingFeeEnabled should default to false")
	}
	if cfg.ConsultationFeeCents != 15000 {
		t.Errorf("ConsultationFeeCents = %d, want 15000", cfg.ConsultationFeeCents)
	}
	if cfg.FeeCurrency != "USD" {
		t.Errorf("FeeCurrency = %q, want USD", cfg.FeeCurrency)
	}
	if cfg.TokenTTL != 24*time.Hour {
		t.Errorf("TokenTTL = %v, want 24h", cfg.TokenTTL)
	}
	if cfg.SlotCacheTTL != 30*time.Second {
		t.Errorf("SlotCacheTTL = %v, want 30s", cfg.SlotCacheTTL)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("BOOKING_FEE_ENABLED", "true")
	t.Setenv("CONSULTATION_FEE_CENTS", "20000")
	t.Setenv("TOKEN_TTL", "1h")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("RATE_LIMIT_PER_SECOND", "5.5")

	cfg := Load()

	if cfg.Port != "9090" {
		t.Errorf("Port = %q, want 9090", cfg.Port)
	}
	if !cfg.BookingFeeEnabled {
		t.Error("BookingFeeEnabled should be true")
	}
	if cfg.ConsultationFeeCents != 20000 {
		t.Errorf("ConsultationFeeCents = %d, want 20000", cfg.ConsultationFeeCents)
	}
	if cfg.TokenTTL != time.Hour {
		t.Errorf("TokenTTL = %v, want 1h", cfg.TokenTTL)
	}
	if len(cfg.CORSAllowedOrigins) != 2 || cfg.CORSAllowedOrigins[1] != "https://b.example" {
		t.Errorf("CORSAllowedOrigins = %v", cfg.CORSAllowedOrigins)
	}
	if cfg.RateLimitPerSecond != 5.5 {
		t.Errorf("RateLimitPerSecond = %v, want 5.5", cfg.RateLimitPerSecond)
	}
}

func TestInvalidValuesFallBack(t *testing.T) {
	t.Setenv("CONSULTATION_FEE_CENTS", "not-a-number")
	t.Setenv("BOOKING_FEE_ENABLED", "maybe")
	t.Setenv("TOKEN_TTL", "eleven")

	cfg := Load()

	if cfg.ConsultationFeeCents != 15000 {
		t.Errorf("ConsultationFeeCents = %d, want default 15000", cfg.ConsultationFeeCents)
	}
	if cfg.BookingFeeEnabled {
		t.Error("BookingFeeEnabled should fall back to false")
	}
	if cfg.TokenTTL != 24*time.Hour {
		t.Errorf("TokenTTL = %v, want default 24h", cfg.TokenTTL)
	}
}
