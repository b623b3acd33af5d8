package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg := LoadConfig("")
	if cfg.Web.Port != 1989 {
		t.Fatalf("unexpected default port: %d", cfg.Web.Port)
	}
	if cfg.Backend.SyncInterval == "" {
		t.Fatalf("expected a default sync interval")
	}
}

func TestLoadConfigFromFile(t *testing.T) {
	cfile := filepath.Join(t.TempDir(), "tillgate.yml")
	yml := `
web:
  port: 9000
backend:
  base_url: http://backend.test
  api_key: k-123
`
	if err := os.WriteFile(cfile, []byte(yml), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg := LoadConfig(cfile)
	if cfg.Web.Port != 9000 {
		t.Fatalf("file port not applied: %d", cfg.Web.Port)
	}
	if cfg.Backend.BaseURL != "http://backend.test" || cfg.Backend.ApiKey != "k-123" {
		t.Fatalf("backend config not applied: %+v", cfg.Backend)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	t.Setenv("TILLGATE_WEB_PORT", "7000")
	t.Setenv("TILLGATE_BACKEND_BASEURL", "http://env.test")

	cfg := LoadConfig("")
	if cfg.Web.Port != 7000 {
		t.Fatalf("env port not applied: %d", cfg.Web.Port)
	}
	if cfg.Backend.BaseURL != "http://env.test" {
		t.Fatalf("env base url not applied: %s", cfg.Backend.BaseURL)
	}
}
