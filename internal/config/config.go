// Package config loads runtime configuration: struct defaults, then an
// optional YAML file, then environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// ConfigPathEnvVar names the variable that points at the YAML config file.
const ConfigPathEnvVar = "SYNCSCOUT_CONFIG"

var DefaultConfigPaths = []string{
	"syncscout.yaml",
	"config.yaml",
	"/etc/syncscout/config.yaml",
}

type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	Scoring  ScoringConfig  `koanf:"scoring"`
	Catalog  CatalogConfig  `koanf:"catalog"`
	Cache    CacheConfig    `koanf:"cache"`
	Logging  LoggingConfig  `koanf:"logging"`
}

type ServerConfig struct {
	Port            int           `koanf:"port" validate:"gte=1,lte=65535"`
	CORSOrigins     []string      `koanf:"cors_origins"`
	AdminSecret     string        `koanf:"admin_secret"`
	TokenSecret     string        `koanf:"token_secret"`
	TokenTTL        time.Duration `koanf:"token_ttl" validate:"gt=0"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"gt=0"`
}

// DatabaseConfig is optional. Persistence is disabled when URL is empty.
type DatabaseConfig struct {
	URL     string `koanf:"url"`
	Migrate bool   `koanf:"migrate"`
}

type ScoringConfig struct {
	// Signal selects the quality signal: "none" or "random".
	Signal           string `koanf:"signal" validate:"oneof=none random"`
	Seed             uint64 `koanf:"seed"`
	MarketTablesPath string `koanf:"market_tables_path"`
}

type CatalogConfig struct {
	TemplatesPath   string        `koanf:"templates_path"`
	SeedPath        string        `koanf:"seed_path"`
	FeedsPath       string        `koanf:"feeds_path"`
	GeneratorSeed   uint64        `koanf:"generator_seed"`
	RefreshInterval time.Duration `koanf:"refresh_interval" validate:"gt=0"`
}

type CacheConfig struct {
	TTL        time.Duration `koanf:"ttl" validate:"gt=0"`
	MaxEntries int           `koanf:"max_entries" validate:"gte=0"`
}

type LoggingConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn error off disabled"`
	Format string `koanf:"format" validate:"oneof=json console"`
	Caller bool   `koanf:"caller"`
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8081,
			CORSOrigins:     []string{"*"},
			TokenTTL:        24 * time.Hour,
			ShutdownTimeout: 10 * time.Second,
		},
		Database: DatabaseConfig{
			Migrate: true,
		},
		Scoring: ScoringConfig{
			Signal: "none",
			Seed:   1,
		},
		Catalog: CatalogConfig{
			GeneratorSeed:   1,
			RefreshInterval: 30 * time.Minute,
		},
		Cache: CacheConfig{
			TTL:        30 * time.Minute,
			MaxEntries: 10000,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Default returns the built-in configuration.
func Default() *Config {
	return defaultConfig()
}

// Load builds the configuration. An empty path falls back to
// SYNCSCOUT_CONFIG and then DefaultConfigPaths; a missing file is not an error
// unless the path was given explicitly.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path == "" {
		path = findConfigFile()
	} else if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}
	if err := splitList(k, "server.cors_origins"); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func findConfigFile() string {
	if p := os.Getenv(ConfigPathEnvVar); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	for _, p := range DefaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// Environment variables understood besides the SYNCSCOUT_ ones. These are
// the names the deployment already uses.
var legacyEnv = map[string]string{
	"port":         "server.port",
	"cors_origins": "server.cors_origins",
	"admin_secret": "server.admin_secret",
	"jwt_secret":   "server.token_secret",
	"database_url": "database.url",
	"log_level":    "logging.level",
}

var prefixedEnv = map[string]string{
	"port":               "server.port",
	"cors_origins":       "server.cors_origins",
	"admin_secret":       "server.admin_secret",
	"token_secret":       "server.token_secret",
	"token_ttl":          "server.token_ttl",
	"shutdown_timeout":   "server.shutdown_timeout",
	"database_url":       "database.url",
	"database_migrate":   "database.migrate",
	"signal":             "scoring.signal",
	"signal_seed":        "scoring.seed",
	"market_tables_path": "scoring.market_tables_path",
	"templates_path":     "catalog.templates_path",
	"seed_path":          "catalog.seed_path",
	"feeds_path":         "catalog.feeds_path",
	"generator_seed":     "catalog.generator_seed",
	"refresh_interval":   "catalog.refresh_interval",
	"cache_ttl":          "cache.ttl",
	"cache_max_entries":  "cache.max_entries",
	"log_level":          "logging.level",
	"log_format":         "logging.format",
	"log_caller":         "logging.caller",
}

// envTransformFunc maps an environment variable to a config path. Unknown
// variables map to "" and are ignored.
func envTransformFunc(key string) string {
	key = strings.ToLower(key)
	if rest, ok := strings.CutPrefix(key, "syncscout_"); ok {
		return prefixedEnv[rest]
	}
	return legacyEnv[key]
}

// splitList turns a comma-separated string value into a slice.
func splitList(k *koanf.Koanf, path string) error {
	s, ok := k.Get(path).(string)
	if !ok {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if err := k.Set(path, out); err != nil {
		return fmt.Errorf("failed to set %s: %w", path, err)
	}
	return nil
}

// Validate checks every field against its tag rules.
func (c *Config) Validate() error {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return err
		}
		msgs := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			msgs = append(msgs, fmt.Sprintf("%s: failed %s %s (got %v)", fe.Namespace(), fe.Tag(), fe.Param(), fe.Value()))
		}
		return errors.New(strings.Join(msgs, "; "))
	}
	return nil
}

// PersistenceEnabled reports whether a database is configured.
func (c *Config) PersistenceEnabled() bool {
	return strings.TrimSpace(c.Database.URL) != ""
}
