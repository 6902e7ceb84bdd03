package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv(ConfigPathEnvVar, "")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != 8081 {
		t.Fatalf("expected default port 8081, got %d", cfg.Server.Port)
	}
	if cfg.Catalog.RefreshInterval != 30*time.Minute || cfg.Cache.TTL != 30*time.Minute {
		t.Fatalf("unexpected intervals: %+v %+v", cfg.Catalog, cfg.Cache)
	}
	if cfg.Server.TokenTTL != 24*time.Hour {
		t.Fatalf("expected 24h token ttl, got %v", cfg.Server.TokenTTL)
	}
	if cfg.Scoring.Signal != "none" || cfg.PersistenceEnabled() {
		t.Fatalf("unexpected scoring/database defaults: %+v %+v", cfg.Scoring, cfg.Database)
	}
}

func TestLoad_FileThenEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	path := filepath.Join(dir, "syncscout.yaml")
	data := []byte(`server:
  port: 9000
  cors_origins: ["https://a.example"]
catalog:
  refresh_interval: 5m
cache:
  ttl: 10m
scoring:
  signal: random
  seed: 42
`)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("PORT", "9100")
	t.Setenv("DATABASE_URL", "postgres://localhost/syncscout")
	t.Setenv("CORS_ORIGINS", "https://b.example, https://c.example")
	t.Setenv("SYNCSCOUT_CACHE_TTL", "2m")
	t.Setenv("SYNCSCOUT_UNKNOWN_KEY", "ignored")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	tests := []struct {
		name string
		ok   bool
	}{
		{"env port wins over file", cfg.Server.Port == 9100},
		{"file interval", cfg.Catalog.RefreshInterval == 5*time.Minute},
		{"env ttl wins over file", cfg.Cache.TTL == 2*time.Minute},
		{"file signal", cfg.Scoring.Signal == "random" && cfg.Scoring.Seed == 42},
		{"database enabled", cfg.PersistenceEnabled()},
		{"cors split", len(cfg.Server.CORSOrigins) == 2 && cfg.Server.CORSOrigins[1] == "https://c.example"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !tt.ok {
				t.Fatalf("unexpected config: %+v", cfg)
			}
		})
	}
}

func TestLoad_Invalid(t *testing.T) {
	t.Chdir(t.TempDir())

	t.Setenv("SYNCSCOUT_SIGNAL", "magic")
	if _, err := Load(""); err == nil {
		t.Fatal("expected validation error for unknown signal")
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestEnvTransformFunc(t *testing.T) {
	tests := map[string]string{
		"PORT":                         "server.port",
		"DATABASE_URL":                 "database.url",
		"JWT_SECRET":                   "server.token_secret",
		"SYNCSCOUT_TOKEN_TTL":          "server.token_ttl",
		"SYNCSCOUT_REFRESH_INTERVAL":   "catalog.refresh_interval",
		"SYNCSCOUT_MARKET_TABLES_PATH": "scoring.market_tables_path",
		"HOME":                         "",
	}
	for in, want := range tests {
		if got := envTransformFunc(in); got != want {
			t.Fatalf("%s: expected %q, got %q", in, want, got)
		}
	}
}
