// Package config loads application settings from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Store drivers
const (
	DriverMongo  = "mongo"
	DriverSQLite = "sqlite"
)

// Config holds the application settings
type Config struct {
	Port                  string
	StoreDriver           string
	MongoURI              string
	MongoDatabase         string
	SQLitePath            string
	TMDBAPIKey            string
	AdminUsername         string
	AdminPassword         string
	AdminPasswordHash     string
	LogLevel              string
	LogFile               string
	SentryDSN             string
	HomePageSize          int
	MetadataTimeout       time.Duration
	StoreTimeout          time.Duration
	FeedbackRatePerMinute int
	TrustProxyHeaders     bool
}

// GetEnv returns env var or default when empty.
func GetEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// Load reads configuration from the environment with defaults
func Load() (*Config, error) {
	cfg := &Config{
		Port:              GetEnv("PORT", "8080"),
		StoreDriver:       GetEnv("STORE_DRIVER", DriverMongo),
		MongoURI:          os.Getenv("MONGO_URI"),
		MongoDatabase:     GetEnv("MONGO_DB", "movie_db"),
		SQLitePath:        GetEnv("SQLITE_PATH", "catalog.db"),
		TMDBAPIKey:        os.Getenv("TMDB_API_KEY"),
		AdminUsername:     GetEnv("ADMIN_USERNAME", "admin"),
		AdminPassword:     GetEnv("ADMIN_PASSWORD", "password"),
		AdminPasswordHash: os.Getenv("ADMIN_PASSWORD_HASH"),
		LogLevel:          GetEnv("LOG_LEVEL", "info"),
		LogFile:           os.Getenv("LOG_FILE"),
		SentryDSN:         os.Getenv("SENTRY_DSN"),
	}

	var err error
	if cfg.HomePageSize, err = intEnv("HOME_PAGE_SIZE", 12); err != nil {
		return nil, err
	}
	if cfg.FeedbackRatePerMinute, err = intEnv("FEEDBACK_RATE_PER_MINUTE", 5); err != nil {
		return nil, err
	}
	if v := os.Getenv("TRUST_PROXY_HEADERS"); v != "" {
		if cfg.TrustProxyHeaders, err = strconv.ParseBool(v); err != nil {
			return nil, fmt.Errorf("invalid TRUST_PROXY_HEADERS %q: must be a boolean", v)
		}
	}
	if cfg.MetadataTimeout, err = durationEnv("METADATA_TIMEOUT", 5*time.Second); err != nil {
		return nil, err
	}
	if cfg.StoreTimeout, err = durationEnv("STORE_TIMEOUT", 5*time.Second); err != nil {
		return nil, err
	}

	switch cfg.StoreDriver {
	case DriverMongo:
		if cfg.MongoURI == "" {
			return nil, fmt.Errorf("MONGO_URI environment variable must be set")
		}
	case DriverSQLite:
	default:
		return nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}

	return cfg, nil
}

func intEnv(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s %q: must be a positive integer", key, v)
	}
	return n, nil
}

func durationEnv(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s %q: must be a positive duration", key, v)
	}
	return d, nil
}
