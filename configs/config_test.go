package configs

import (
	"testing"
	"time"

	"github.com/foodmap/pkg/geo"
)

func TestLoadConfigFromEnvDefaults(t *testing.T) {
	for _, k := range []string{
		"SERVER_PORT", "API_BASE", "DATABASE_URL", "GEOAPIFY_API_KEY", "VITE_GEOAPIFY_API_KEY",
		"GEOCODE_TIMEOUT_SECONDS", "APP_URL", "VERIFICATION_STALE_DAYS", "REGION_BOUNDS",
		"ADMIN_USERNAME", "ADMIN_PASSWORD_HASH", "JWT_SECRET_KEY", "VERIFICATION_HOUR",
	} {
		t.Setenv(k, "")
	}

	cfg := LoadConfigFromEnv()
	if cfg.ServerPort != "8080" {
		t.Errorf("ServerPort = %q", cfg.ServerPort)
	}
	if cfg.APIBase != "/api" {
		t.Errorf("APIBase = %q", cfg.APIBase)
	}
	if cfg.DatabaseURL != "" {
		t.Errorf("DatabaseURL = %q", cfg.DatabaseURL)
	}
	if cfg.GeocodeTimeout != 5*time.Second {
		t.Errorf("GeocodeTimeout = %v", cfg.GeocodeTimeout)
	}
	if cfg.StaleDays != 60 {
		t.Errorf("StaleDays = %d", cfg.StaleDays)
	}
	if cfg.AppURL != "http://localhost:5000" {
		t.Errorf("AppURL = %q", cfg.AppURL)
	}
	if cfg.RegionBounds.String() != geo.DFWBounds.String() {
		t.Errorf("RegionBounds = %s", cfg.RegionBounds)
	}
	if cfg.VerificationHour != 3 {
		t.Errorf("VerificationHour = %d", cfg.VerificationHour)
	}
	if cfg.AdminAuthEnabled() {
		t.Error("admin auth should be disabled without credentials")
	}
}

func TestLoadConfigFromEnvOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("API_BASE", "v2/")
	t.Setenv("DATABASE_URL", " postgres://user@localhost/food ")
	t.Setenv("GEOAPIFY_API_KEY", "")
	t.Setenv("VITE_GEOAPIFY_API_KEY", "legacy-key")
	t.Setenv("VERIFICATION_STALE_DAYS", "90")
	t.Setenv("REGION_BOUNDS", "not,valid")
	t.Setenv("APP_URL", "https://food.example.org/")
	t.Setenv("ADMIN_USERNAME", "admin")
	t.Setenv("ADMIN_PASSWORD_HASH", "$2a$10$abc")
	t.Setenv("JWT_SECRET_KEY", "secret")
	t.Setenv("VERIFICATION_HOUR", "42")

	cfg := LoadConfigFromEnv()
	if cfg.ServerPort != "9090" || cfg.APIBase != "/v2" {
		t.Errorf("port/base = %q %q", cfg.ServerPort, cfg.APIBase)
	}
	if cfg.DatabaseURL != "postgres://user@localhost/food" {
		t.Errorf("DatabaseURL = %q", cfg.DatabaseURL)
	}
	if cfg.GeoapifyAPIKey != "legacy-key" {
		t.Errorf("GeoapifyAPIKey = %q", cfg.GeoapifyAPIKey)
	}
	if cfg.StaleDays != 90 {
		t.Errorf("StaleDays = %d", cfg.StaleDays)
	}
	if cfg.RegionBounds.String() != geo.DFWBounds.String() {
		t.Errorf("invalid bounds should fall back to DFW, got %s", cfg.RegionBounds)
	}
	if cfg.AppURL != "https://food.example.org" {
		t.Errorf("AppURL = %q", cfg.AppURL)
	}
	if cfg.VerificationHour != 3 {
		t.Errorf("out of range hour should fall back, got %d", cfg.VerificationHour)
	}
	if !cfg.AdminAuthEnabled() {
		t.Error("admin auth should be enabled")
	}
}
