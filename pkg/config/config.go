package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Server        ServerConfig
	Spool         SpoolConfig
	Display       DisplayConfig
	Observability ObservabilityConfig
	RulesDB       RulesDBConfig
}

type ServerConfig struct {
	Host               string
	Port               int
	BaseURL            string
	RateLimitPerSecond int
	RateLimitBurst     int
	MaxUploadMB        int
}

// SpoolConfig controls the request-scoped upload spool.
type SpoolConfig struct {
	Dir        string
	TTLMinutes int
}

type DisplayConfig struct {
	Currency string
}

type ObservabilityConfig struct {
	MetricsEnabled bool
	MetricsPort    int
}

// RulesDBConfig is the optional Postgres store for categorization rules.
// The service runs fully without it.
type RulesDBConfig struct {
	Enabled  bool
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// .env files are a convenience for local runs; absence is not an error.
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Host:               getEnv("SERVER_HOST", "localhost"),
			Port:               getEnvAsInt("SERVER_PORT", 8080),
			BaseURL:            getEnv("BASE_URL", "http://localhost:8080"),
			RateLimitPerSecond: getEnvAsInt("SERVER_RATE_LIMIT_PER_SECOND", 100),
			RateLimitBurst:     getEnvAsInt("SERVER_RATE_LIMIT_BURST", 200),
			MaxUploadMB:        getEnvAsInt("MAX_UPLOAD_MB", 25),
		},
		Spool: SpoolConfig{
			Dir:        getEnv("SPOOL_DIR", "./uploads"),
			TTLMinutes: getEnvAsInt("SPOOL_TTL_MINUTES", 60),
		},
		Display: DisplayConfig{
			Currency: getEnv("DISPLAY_CURRENCY", "EUR"),
		},
		Observability: ObservabilityConfig{
			MetricsEnabled: getEnvAsBool("METRICS_ENABLED", true),
			MetricsPort:    getEnvAsInt("METRICS_PORT", 9090),
		},
		RulesDB: RulesDBConfig{
			Enabled:  getEnvAsBool("RULES_DB_ENABLED", false),
			Host:     getEnv("POSTGRES_HOST", "localhost"),
			Port:     getEnvAsInt("POSTGRES_PORT", 5432),
			User:     getEnv("POSTGRES_USER", "postgres"),
			Password: getEnv("POSTGRES_PASSWORD", "postgres"),
			Database: getEnv("POSTGRES_DB", "statement-insights"),
			SSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
		},
	}

	if cfg.Server.MaxUploadMB <= 0 {
		cfg.Server.MaxUploadMB = 25
	}
	if cfg.Spool.TTLMinutes <= 0 {
		cfg.Spool.TTLMinutes = 60
	}

	return cfg, nil
}

// DSN returns the database connection string
func (c *RulesDBConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}
