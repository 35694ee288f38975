// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds application configuration
type Config struct {
	DataDir   string // Base directory for the cache database (always absolute)
	Port      int
	DevMode   bool
	LogLevel  string
	Watchlist Watchlist // Default dashboard tickers, loaded from watchlist.yaml if present
	Snapshot  *SnapshotConfig
}

// Watchlist holds the default tickers shown before the user makes a selection.
type Watchlist struct {
	Tickers []string `yaml:"tickers"`
}

// SnapshotConfig holds cache-snapshot upload configuration. Snapshots are
// disabled unless a bucket is configured.
type SnapshotConfig struct {
	Enabled         bool
	Bucket          string
	Endpoint        string // S3-compatible endpoint URL (empty for AWS)
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	Prefix          string
	Schedule        string // six-field cron schedule
	RetentionDays   int
	MinKeep         int
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	// Determine data directory:
	// 1. FINMETRIX_DATA_DIR environment variable
	// 2. Fallback to ./data
	// 3. Always resolve to absolute path and ensure it exists
	dataDir := getEnv("FINMETRIX_DATA_DIR", "")
	if dataDir == "" {
		dataDir = "./data"
	}

	absDataDir, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}

	if err := os.MkdirAll(absDataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	cfg := &Config{
		DataDir:   absDataDir,
		Port:      getEnvAsInt("FINMETRIX_PORT", 8050),
		DevMode:   getEnvAsBool("DEV_MODE", false),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		Watchlist: loadWatchlist(getEnv("FINMETRIX_WATCHLIST", "watchlist.yaml")),
		Snapshot:  loadSnapshotConfig(),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if required configuration is present
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.Snapshot.Enabled && c.Snapshot.Bucket == "" {
		return fmt.Errorf("snapshot uploads enabled but no bucket configured")
	}
	return nil
}

// loadWatchlist reads the optional watchlist file. A missing or malformed
// file is not an error; the dashboard just starts with an empty selection.
func loadWatchlist(path string) Watchlist {
	var wl Watchlist
	data, err := os.ReadFile(path)
	if err != nil {
		return wl
	}
	if err := yaml.Unmarshal(data, &wl); err != nil {
		return Watchlist{}
	}
	return wl
}

func loadSnapshotConfig() *SnapshotConfig {
	bucket := getEnv("SNAPSHOT_BUCKET", "")
	return &SnapshotConfig{
		Enabled:         getEnvAsBool("SNAPSHOT_ENABLED", bucket != ""),
		Bucket:          bucket,
		Endpoint:        getEnv("SNAPSHOT_ENDPOINT", ""),
		Region:          getEnv("SNAPSHOT_REGION", "auto"),
		AccessKeyID:     getEnv("SNAPSHOT_ACCESS_KEY_ID", ""),
		SecretAccessKey: getEnv("SNAPSHOT_SECRET_ACCESS_KEY", ""),
		Prefix:          getEnv("SNAPSHOT_PREFIX", "finmetrix-cache"),
		Schedule:        getEnv("SNAPSHOT_SCHEDULE", "0 0 3 * * *"), // daily at 03:00
		RetentionDays:   getEnvAsInt("SNAPSHOT_RETENTION_DAYS", 30),
		MinKeep:         getEnvAsInt("SNAPSHOT_MIN_KEEP", 3),
	}
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
