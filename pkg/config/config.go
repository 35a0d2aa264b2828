package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
// ⭐ SSOT: 모든 환경변수는 여기서만 읽음
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Database (optional, empty URL disables persistence)
	Database DatabaseConfig

	// Redis (optional snapshot cache + rate limiter)
	Redis RedisConfig

	// Acquisition
	Fundamentus FundamentusConfig

	// Screening run defaults
	Screening ScreeningConfig

	// Logging
	LogLevel  string
	LogFormat string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	URL string

	// Connection Pool
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// Enabled reports whether a database URL was configured
func (d DatabaseConfig) Enabled() bool {
	return d.URL != ""
}

// FundamentusConfig holds the acquisition source settings
type FundamentusConfig struct {
	URL       string
	UserAgent string
	Timeout   time.Duration
	RateLimit float64       // requests per second
	CacheTTL  time.Duration // raw page TTL in Redis
}

// ScreeningConfig holds the defaults of a screening run
type ScreeningConfig struct {
	Top          int           // N <= 0 means no truncation
	OutputPath   string        // empty means no persistence to file
	StrategyFile string        // empty means built-in defaults
	Schedule     string        // cron spec with seconds
	Retention    time.Duration // stored runs older than this are pruned
}

const defaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0 Safari/537.36"

// Load reads configuration from environment variables
// ⭐ SSOT: 이 함수만 os.Getenv()를 호출함
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		Port: getEnv("PORT", "8089"),
		Env:  getEnv("ENV", "development"),

		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 10),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 1),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
		},

		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
		},

		Fundamentus: FundamentusConfig{
			URL:       getEnv("FUNDAMENTUS_URL", "https://www.fundamentus.com.br/resultado.php"),
			UserAgent: getEnv("FUNDAMENTUS_USER_AGENT", defaultUserAgent),
			Timeout:   getEnvAsDuration("FUNDAMENTUS_TIMEOUT", "30s"),
			RateLimit: getEnvAsFloat("FUNDAMENTUS_RATE_LIMIT", 1),
			CacheTTL:  getEnvAsDuration("SNAPSHOT_CACHE_TTL", "10m"),
		},

		Screening: ScreeningConfig{
			Top:          getEnvAsInt("SCREEN_TOP", 15),
			OutputPath:   getEnv("SCREEN_OUTPUT", ""),
			StrategyFile: getEnv("STRATEGY_FILE", ""),
			Schedule:     getEnv("SCREEN_SCHEDULE", "0 30 19 * * 1-5"),
			Retention:    getEnvAsDuration("RUN_RETENTION", "2160h"),
		},

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "console"),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks configuration values that cannot fall back to defaults
func (c *Config) validate() error {
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	if c.Fundamentus.URL == "" {
		return fmt.Errorf("FUNDAMENTUS_URL is required")
	}

	if c.Fundamentus.RateLimit <= 0 {
		return fmt.Errorf("FUNDAMENTUS_RATE_LIMIT must be > 0")
	}

	if c.Database.MinConns > c.Database.MaxConns {
		return fmt.Errorf("DB_MIN_CONNS must not exceed DB_MAX_CONNS")
	}

	return nil
}

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	paths := []string{".env"}

	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}
