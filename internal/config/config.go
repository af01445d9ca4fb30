package config

import (
	"os"
	"strconv"
	"time"

	"goldendash/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Database  DatabaseConfig
	Server    ServerConfig
	API       APIConfig
	Data      DataConfig
	Scan      ScanConfig
	Cache     CacheConfig
	Log       LogConfig
	Profiling ProfilingConfig
}

// DatabaseConfig holds database connection settings. An empty URL selects the in-memory adapters.
type DatabaseConfig struct {
	URL     string
	SSLMode string
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port    string
	GinMode string
}

// APIConfig holds settings for the JSON API
type APIConfig struct {
	Token string
}

// DataConfig holds data seeding settings
type DataConfig struct {
	ExcelFile string
}

// ScanConfig holds quality scanner settings
type ScanConfig struct {
	AppsDir     string
	TmpDir      string
	Concurrency int
	Timeout     time.Duration
}

// CacheConfig holds in-process cache settings
type CacheConfig struct {
	LeaderboardTTL time.Duration
}

// LogConfig holds logging settings
type LogConfig struct {
	Level  string
	Pretty bool
}

// ProfilingConfig holds performance profiling settings
type ProfilingConfig struct {
	Port    string
	Enabled bool
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Database:  *loadDatabaseConfig(),
		Server:    *loadServerConfig(),
		API:       APIConfig{Token: os.Getenv("GOLDEN_DEPLOYMENT_API_TOKEN")},
		Data:      DataConfig{ExcelFile: getEnvOrDefault("EXCEL_FILE", "")},
		Scan:      *loadScanConfig(),
		Cache:     CacheConfig{LeaderboardTTL: getEnvDurationOrDefault("LEADERBOARD_TTL", time.Hour)},
		Log:       *loadLogConfig(),
		Profiling: *loadProfilingConfig(),
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func loadDatabaseConfig() *DatabaseConfig {
	return &DatabaseConfig{
		URL:     os.Getenv("DATABASE_URL"),
		SSLMode: getEnvOrDefault("SSL_MODE", "disable"),
	}
}

func loadServerConfig() *ServerConfig {
	return &ServerConfig{
		Port:    getEnvOrDefault("PORT", "8080"),
		GinMode: getEnvOrDefault("GIN_MODE", "release"),
	}
}

func loadScanConfig() *ScanConfig {
	home, _ := os.UserHomeDir()
	return &ScanConfig{
		AppsDir:     getEnvOrDefault("APPS_DIR", home+"/zac_ecosystem/apps"),
		TmpDir:      getEnvOrDefault("SCAN_TMP_DIR", os.TempDir()),
		Concurrency: getEnvIntOrDefault("SCAN_CONCURRENCY", 2),
		Timeout:     getEnvDurationOrDefault("SCAN_TIMEOUT", 10*time.Minute),
	}
}

func loadLogConfig() *LogConfig {
	return &LogConfig{
		Level:  getEnvOrDefault("LOG_LEVEL", "info"),
		Pretty: getEnvBoolOrDefault("LOG_PRETTY", false),
	}
}

func loadProfilingConfig() *ProfilingConfig {
	return &ProfilingConfig{
		Port:    getEnvOrDefault("PPROF_PORT", "6060"),
		Enabled: getEnvBoolOrDefault("PPROF_ENABLED", false),
	}
}

func validateConfig(config *Config) error {
	if config.Server.Port == "" {
		return errors.ConfigInvalid("server port is required")
	}
	if _, err := strconv.Atoi(config.Server.Port); err != nil {
		return errors.ConfigInvalid("PORT must be numeric")
	}
	if config.Scan.Concurrency < 1 {
		return errors.ConfigInvalid("SCAN_CONCURRENCY must be at least 1")
	}
	if config.Cache.LeaderboardTTL <= 0 {
		return errors.ConfigInvalid("LEADERBOARD_TTL must be positive")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
