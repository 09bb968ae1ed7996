package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.ListenAddr != ":8080" {
		t.Fatalf("expected listen addr :8080, got %q", cfg.ListenAddr)
	}
	if cfg.DatabaseDriver != "sqlite" {
		t.Fatalf("expected sqlite driver, got %q", cfg.DatabaseDriver)
	}
	if cfg.TokenSecret != cfg.SessionSecret {
		t.Fatalf("expected token secret to fall back to session secret")
	}
	if cfg.TokenTTL != 72*time.Hour {
		t.Fatalf("expected 72h token ttl, got %s", cfg.TokenTTL)
	}
	if cfg.Admin.Header != "Administración del Blog" {
		t.Fatalf("unexpected admin header %q", cfg.Admin.Header)
	}
	if cfg.Sweep.Spec != "" {
		t.Fatalf("sweep should be disabled by default")
	}
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("UPLOAD_URL_PATH", "media/")
	t.Setenv("SITE_BASE_URL", "https://blog.example.cl/ ")
	t.Setenv("DATABASE_DRIVER", " Postgres ")
	t.Setenv("TOKEN_SECRET", "token-secret")
	t.Setenv("ADMIN_SITE_TITLE", "Mi Blog")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.ListenAddr != ":9000" {
		t.Fatalf("expected :9000, got %q", cfg.ListenAddr)
	}
	if cfg.UploadURLPath != "/media" {
		t.Fatalf("expected /media, got %q", cfg.UploadURLPath)
	}
	if cfg.SiteBaseURL != "https://blog.example.cl" {
		t.Fatalf("unexpected base url %q", cfg.SiteBaseURL)
	}
	if cfg.DatabaseDriver != "postgres" {
		t.Fatalf("unexpected driver %q", cfg.DatabaseDriver)
	}
	if cfg.TokenSecret != "token-secret" {
		t.Fatalf("unexpected token secret %q", cfg.TokenSecret)
	}
	if cfg.Admin.SiteTitle != "Mi Blog" {
		t.Fatalf("unexpected admin title %q", cfg.Admin.SiteTitle)
	}
}

func TestLocationFallsBackToUTC(t *testing.T) {
	cfg := AppConfig{TimeZone: "Nowhere/Invalid"}
	if cfg.Location() != time.UTC {
		t.Fatalf("expected UTC fallback")
	}
}
