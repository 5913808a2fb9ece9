// Package config provides application configuration with support for command-line flags, environment variables, and .env files.
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Storage backends.
const (
	BackendBadger = "badger"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// Catalog providers.
const (
	ProviderMemory      = "memory"
	ProviderGoogleBooks = "googlebooks"
)

// Config holds the application configuration.
type Config struct {
	App       AppConfig
	Logger    LoggerConfig
	Storage   StorageConfig
	Server    ServerConfig
	Catalog   CatalogConfig
	Generator GeneratorConfig
	Goals     GoalsConfig
	Search    SearchConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string
}

// StorageConfig selects where the local key-value store lives.
type StorageConfig struct {
	DataPath string // Base directory for the database and search index
	Backend  string // badger, sqlite, or memory
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// CatalogConfig configures the book search provider.
type CatalogConfig struct {
	Provider  string
	Latency   time.Duration // Simulated latency of the memory catalog
	APIKey    string        // Google Books API key (optional)
	BaseURL   string
	CacheSize int
}

// GeneratorConfig configures the review text generator.
type GeneratorConfig struct {
	Latency time.Duration
}

// GoalsConfig holds reading goals used by the dashboard.
type GoalsConfig struct {
	YearlyGoal int
}

// SearchConfig toggles the full-text index over the shelf and reviews.
type SearchConfig struct {
	Enabled bool
}

// Flags carries raw flag values. Empty strings mean "not set on the command line".
type Flags struct {
	EnvFile          string
	Env              string
	LogLevel         string
	DataPath         string
	Backend          string
	Port             string
	ReadTimeout      string
	WriteTimeout     string
	IdleTimeout      string
	CatalogProvider  string
	CatalogLatency   string
	GeneratorLatency string
	YearlyGoal       string
}

// LoadConfig parses the process flags and loads configuration with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. Default values (lowest priority).
func LoadConfig() (*Config, error) {
	fs := flag.NewFlagSet(filepath.Base(os.Args[0]), flag.ContinueOnError)
	f := BindFlags(fs)
	if err := fs.Parse(os.Args[1:]); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}
	return Load(*f)
}

// BindFlags registers every configuration flag on fs.
func BindFlags(fs *flag.FlagSet) *Flags {
	f := &Flags{}
	fs.StringVar(&f.EnvFile, "env-file", ".env", "Path to .env file")
	fs.StringVar(&f.Env, "env", "", "Environment (development, staging, production)")
	fs.StringVar(&f.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	fs.StringVar(&f.DataPath, "data-path", "", "Base path for the local store (default: ~/.readinglog)")
	fs.StringVar(&f.Backend, "storage", "", "Storage backend (badger, sqlite, memory)")
	fs.StringVar(&f.Port, "port", "", "Server port (default: 8080)")
	fs.StringVar(&f.ReadTimeout, "read-timeout", "", "HTTP read timeout (default: 15s)")
	fs.StringVar(&f.WriteTimeout, "write-timeout", "", "HTTP write timeout (default: 15s)")
	fs.StringVar(&f.IdleTimeout, "idle-timeout", "", "HTTP idle timeout (default: 60s)")
	fs.StringVar(&f.CatalogProvider, "catalog", "", "Catalog provider (memory, googlebooks)")
	fs.StringVar(&f.CatalogLatency, "catalog-latency", "", "Simulated catalog latency (default: 1s)")
	fs.StringVar(&f.GeneratorLatency, "generator-latency", "", "Simulated review generation latency (default: 2s)")
	fs.StringVar(&f.YearlyGoal, "yearly-goal", "", "Books to finish this year (default: 24)")
	return f
}

// Load builds a Config from already-parsed flag values.
func Load(f Flags) (*Config, error) {
	if f.EnvFile != "" {
		// Missing .env is fine; Load never overrides variables already set.
		_ = godotenv.Load(f.EnvFile)
	}

	cfg := &Config{
		App: AppConfig{
			Environment: getConfigValue(f.Env, "ENV", "development"),
		},
		Logger: LoggerConfig{
			Level: getConfigValue(f.LogLevel, "LOG_LEVEL", "info"),
		},
		Storage: StorageConfig{
			DataPath: getConfigValue(f.DataPath, "DATA_PATH", ""),
			Backend:  strings.ToLower(getConfigValue(f.Backend, "STORAGE_BACKEND", BackendBadger)),
		},
		Server: ServerConfig{
			Port: getConfigValue(f.Port, "SERVER_PORT", "8080"),
		},
		Catalog: CatalogConfig{
			Provider:  strings.ToLower(getConfigValue(f.CatalogProvider, "CATALOG_PROVIDER", ProviderMemory)),
			APIKey:    getConfigValue("", "GOOGLE_BOOKS_API_KEY", ""),
			BaseURL:   getConfigValue("", "GOOGLE_BOOKS_URL", "https://www.googleapis.com/books/v1/volumes"),
			CacheSize: getIntConfigValue("", "CATALOG_CACHE_SIZE", 128),
		},
		Goals: GoalsConfig{
			YearlyGoal: getIntConfigValue(f.YearlyGoal, "YEARLY_GOAL", 24),
		},
		Search: SearchConfig{
			Enabled: getBoolConfigValue("", "SEARCH_ENABLED", true),
		},
	}

	durations := []struct {
		flagValue, envKey, def, name string
		dest                         *time.Duration
	}{
		{f.ReadTimeout, "SERVER_READ_TIMEOUT", "15s", "read timeout", &cfg.Server.ReadTimeout},
		{f.WriteTimeout, "SERVER_WRITE_TIMEOUT", "15s", "write timeout", &cfg.Server.WriteTimeout},
		{f.IdleTimeout, "SERVER_IDLE_TIMEOUT", "60s", "idle timeout", &cfg.Server.IdleTimeout},
		{f.CatalogLatency, "CATALOG_LATENCY", "1s", "catalog latency", &cfg.Catalog.Latency},
		{f.GeneratorLatency, "GENERATOR_LATENCY", "2s", "generator latency", &cfg.Generator.Latency},
	}
	for _, d := range durations {
		raw := getConfigValue(d.flagValue, d.envKey, d.def)
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid %s %q: %w", d.name, raw, err)
		}
		*d.dest = parsed
	}

	if err := cfg.expandDataPath(); err != nil {
		return nil, fmt.Errorf("invalid data path: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that all config values are present and valid.
func (c *Config) Validate() error {
	if c.App.Environment == "" {
		return errors.New("ENV is required")
	}

	validEnvs := map[string]bool{"development": true, "staging": true, "production": true}
	if !validEnvs[c.App.Environment] {
		return fmt.Errorf("invalid environment: %s (must be development, staging, or production)", c.App.Environment)
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Logger.Level)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	switch c.Storage.Backend {
	case BackendBadger, BackendSQLite:
		if c.Storage.DataPath == "" {
			return errors.New("data path cannot be empty for a persistent backend")
		}
	case BackendMemory:
	default:
		return fmt.Errorf("invalid storage backend: %s (must be badger, sqlite, or memory)", c.Storage.Backend)
	}

	switch c.Catalog.Provider {
	case ProviderMemory, ProviderGoogleBooks:
	default:
		return fmt.Errorf("invalid catalog provider: %s (must be memory or googlebooks)", c.Catalog.Provider)
	}

	if c.Catalog.Latency < 0 || c.Generator.Latency < 0 {
		return errors.New("latencies cannot be negative")
	}

	if c.Goals.YearlyGoal <= 0 {
		return fmt.Errorf("yearly goal must be positive, got %d", c.Goals.YearlyGoal)
	}

	return nil
}

// expandPath expands ~ and makes the path absolute.
// If path is empty, defaultPath is returned unchanged.
func expandPath(path, defaultPath string) (string, error) {
	if path == "" {
		return defaultPath, nil
	}

	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[2:])
	}

	if !filepath.IsAbs(path) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("failed to get absolute path: %w", err)
		}
		path = absPath
	}

	return filepath.Clean(path), nil
}

// expandDataPath resolves the data directory, defaulting to ~/.readinglog.
func (c *Config) expandDataPath() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}

	expanded, err := expandPath(c.Storage.DataPath, filepath.Join(homeDir, ".readinglog"))
	if err != nil {
		return err
	}
	c.Storage.DataPath = expanded
	return nil
}

// getConfigValue returns the first non-empty value from flag, env var, or default.
func getConfigValue(flagValue, envKey, defaultValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if envValue := os.Getenv(envKey); envValue != "" {
		return envValue
	}
	return defaultValue
}

// getBoolConfigValue accepts "true", "1", "yes" (case-insensitive) as true.
func getBoolConfigValue(flagValue, envKey string, defaultValue bool) bool {
	raw := getConfigValue(flagValue, envKey, "")
	if raw == "" {
		return defaultValue
	}
	raw = strings.ToLower(raw)
	return raw == "true" || raw == "1" || raw == "yes"
}

// getIntConfigValue returns an int from flag, env var, or default.
// Unparseable values fall back to the default.
func getIntConfigValue(flagValue, envKey string, defaultValue int) int {
	raw := getConfigValue(flagValue, envKey, "")
	if raw == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return defaultValue
	}
	return n
}
