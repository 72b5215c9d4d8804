package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Port != "8080" {
		t.Errorf("expected default port 8080, got %s", cfg.Port)
	}
	if cfg.AvailabilityHorizonDays != 7 {
		t.Errorf("expected 7 day horizon, got %d", cfg.AvailabilityHorizonDays)
	}
	if cfg.SessionTTL != 12*time.Hour {
		t.Errorf("expected 12h session TTL, got %s", cfg.SessionTTL)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("SESSION_TTL", "30m")
	t.Setenv("AVAILABILITY_HORIZON_DAYS", "14")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example,")

	cfg := Load()

	if cfg.Port != "9090" {
		t.Errorf("expected port 9090, got %s", cfg.Port)
	}
	if cfg.SessionTTL != 30*time.Minute {
		t.Errorf("expected 30m TTL, got %s", cfg.SessionTTL)
	}
	if cfg.AvailabilityHorizonDays != 14 {
		t.Errorf("expected 14 day horizon, got %d", cfg.AvailabilityHorizonDays)
	}
	if len(cfg.CORSAllowedOrigins) != 2 {
		t.Fatalf("expected 2 origins, got %v", cfg.CORSAllowedOrigins)
	}
	if cfg.CORSAllowedOrigins[1] != "https://b.example" {
		t.Errorf("unexpected origin: %s", cfg.CORSAllowedOrigins[1])
	}
}

func TestGetEnvAsIntIgnoresGarbage(t *testing.T) {
	t.Setenv("AVAILABILITY_HORIZON_DAYS", "not-a-number")

	cfg := Load()
	if cfg.AvailabilityHorizonDays != 7 {
		t.Errorf("expected fallback to 7, got %d", cfg.AvailabilityHorizonDays)
	}
}
