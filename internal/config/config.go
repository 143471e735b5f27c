package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port         string
	Environment  string
	DatabaseURL  string
	DBMaxConns   int32
	JWKSURL      string
	AuthDisabled bool // Dev only: every request runs as a static admin principal
	CORSOrigins  string
	TablePrefix  string
	// File mirror
	MirrorRoot              string
	MirrorReconcileInterval time.Duration // 0 disables the background reconciler
	// Write path tuning
	BulkConcurrency int
	SlugMaxAttempts int
	// Logging
	LogDir      string // Empty disables the log file
	LogMaxFiles int
	// Debug flags
	Debug bool
}

func Load() *Config {
	env := getEnv("ENVIRONMENT", "dev")

	return &Config{
		Port:                    getEnv("PORT", "8080"),
		Environment:             env,
		DatabaseURL:             getEnv("DATABASE_URL", ""),
		DBMaxConns:              int32(getEnvInt("DB_MAX_CONNS", 25)),
		JWKSURL:                 getEnv("JWKS_URL", ""),
		AuthDisabled:            getEnv("AUTH_DISABLED", "false") == "true" && env != "prod",
		CORSOrigins:             getEnv("CORS_ORIGINS", "http://localhost:3000"),
		TablePrefix:             getTablePrefix(env),
		MirrorRoot:              getEnv("MIRROR_ROOT", "./data/mirror"),
		MirrorReconcileInterval: getEnvDuration("MIRROR_RECONCILE_INTERVAL", 5*time.Minute),
		BulkConcurrency:         max(1, getEnvInt("BULK_CONCURRENCY", 8)),
		SlugMaxAttempts:         max(1, getEnvInt("SLUG_MAX_ATTEMPTS", 5)),
		LogDir:                  getEnv("LOG_DIR", ""),
		LogMaxFiles:             max(1, getEnvInt("LOG_MAX_FILES", 10)),
		// Debug flags - default to true in dev/test, false in production
		Debug: getEnv("DEBUG", getDefaultDebug(env)) == "true",
	}
}

// getDefaultDebug returns the default debug setting based on environment
func getDefaultDebug(env string) string {
	if env == "prod" {
		return "false"
	}
	return "true" // Enable DEBUG in dev/test by default
}

// getTablePrefix returns the table prefix based on environment
func getTablePrefix(env string) string {
	// Allow manual override via TABLE_PREFIX env var
	if prefix := os.Getenv("TABLE_PREFIX"); prefix != "" {
		return prefix
	}

	switch env {
	case "prod":
		return "prod_"
	case "test":
		return "test_"
	default:
		return "dev_"
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	n, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return n
}

// getEnvDuration accepts Go durations ("90s", "5m"); "0" disables
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil || d < 0 {
		return defaultValue
	}
	return d
}
