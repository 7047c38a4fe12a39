package config

import (
	"testing"
	"time"

	errs "alias-heaven-calculator/pkg/errors"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"PORT", "ENV", "LOG_LEVEL", "LOG_FORMAT", "LOGS", "ROLES_FILE", "SESSION_TTL_MINUTES", "BASE_PATH", "METRICS_ENABLED"} {
		t.Setenv(k, "")
	}
	cfg := Load()
	if cfg.Port != "8080" || cfg.LogLevel != "info" || cfg.LogFormat != "json" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.LogsEnabled {
		t.Fatalf("LOGS should default to off")
	}
	if cfg.SessionTTL != time.Hour || cfg.BasePath != "/" || !cfg.MetricsEnabled {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("ENV", "Production")
	t.Setenv("LOGS", "ON")
	t.Setenv("BASE_PATH", "calc")
	t.Setenv("SESSION_TTL_MINUTES", "-4")
	t.Setenv("ROLES_FILE", " roles.yaml ")
	t.Setenv("METRICS_ENABLED", "")

	cfg := Load()
	if cfg.Port != "9090" || cfg.Env != "production" || !cfg.LogsEnabled {
		t.Fatalf("unexpected overrides: %+v", cfg)
	}
	if cfg.BasePath != "/calc/" {
		t.Fatalf("expected normalized base path, got %q", cfg.BasePath)
	}
	if cfg.SessionTTL != time.Hour {
		t.Fatalf("negative ttl should fall back to 60m, got %v", cfg.SessionTTL)
	}
	if cfg.RolesFile != "roles.yaml" {
		t.Fatalf("expected trimmed roles file, got %q", cfg.RolesFile)
	}
	if cfg.MetricsEnabled {
		t.Fatalf("metrics default off in production")
	}
}

func TestValidate_CollectsErrors(t *testing.T) {
	cfg := &Config{
		Port:                        "99999",
		LogLevel:                    "loud",
		LogFormat:                   "xml",
		RolesFile:                   "roles.ini",
		ConfigReloadIntervalSeconds: -1,
		SessionTTL:                  time.Minute,
		MetricsPath:                 "metrics",
		HealthCheckPath:             "/health",
	}
	err := cfg.Validate()
	if err == nil || !errs.Is(err, errs.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	ve := err.(*errs.ValidationError)
	if len(ve.Fields) != 6 {
		t.Fatalf("expected 6 problems, got %d: %v", len(ve.Fields), ve.Fields)
	}
}
