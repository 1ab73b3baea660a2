package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Ledger storage backends
const (
	LedgerBackendFile     = "file"
	LedgerBackendPostgres = "postgres"
	LedgerBackendRedis    = "redis"
)

type Config struct {
	// Telegram
	BotToken string

	// Application
	AppEnv      string
	LogLevel    string
	WorkerCount int

	// Quiz content
	QuestionsFile   string
	MessagesFile    string
	LeaderboardSize int

	// Ledger
	LedgerBackend        string
	LedgerFile           string
	RolloverCheckMinutes int

	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Redis
	RedisAddr      string
	RedisPassword  string
	RedisDB        int
	RedisKeyPrefix string

	// Rate Limiting
	RateLimitPerUser    int
	RateLimitWindowSecs int
}

// Load reads the environment without validating it.
func Load() *Config {
	return &Config{
		BotToken: getEnv("BOT_TOKEN", ""),

		AppEnv:      getEnv("APP_ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		WorkerCount: getEnvInt("WORKER_COUNT", 10),

		QuestionsFile:   getEnv("QUESTIONS_FILE", "soal.txt"),
		MessagesFile:    getEnv("MESSAGES_FILE", ""),
		LeaderboardSize: getEnvInt("LEADERBOARD_SIZE", 10),

		LedgerBackend:        strings.ToLower(getEnv("LEDGER_BACKEND", LedgerBackendFile)),
		LedgerFile:           getEnv("LEDGER_FILE", "scores.json"),
		RolloverCheckMinutes: getEnvInt("ROLLOVER_CHECK_MINUTES", 60),

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "quizbot"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "quizbot_db"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		RedisAddr:      getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:  getEnv("REDIS_PASSWORD", ""),
		RedisDB:        getEnvInt("REDIS_DB", 0),
		RedisKeyPrefix: getEnv("REDIS_KEY_PREFIX", "quizbot"),

		RateLimitPerUser:    getEnvInt("RATE_LIMIT_PER_USER", 20),
		RateLimitWindowSecs: getEnvInt("RATE_LIMIT_WINDOW_SECONDS", 60),
	}
}

// LoadConfig reads the environment and validates everything the bot needs.
func LoadConfig() (*Config, error) {
	cfg := Load()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.BotToken == "" {
		return fmt.Errorf("BOT_TOKEN is required")
	}
	return c.ValidateStorage()
}

// ValidateStorage checks only the ledger settings. Tools that never talk to
// Telegram call it instead of Validate.
func (c *Config) ValidateStorage() error {
	switch c.LedgerBackend {
	case LedgerBackendFile:
		if c.LedgerFile == "" {
			return fmt.Errorf("LEDGER_FILE is required for the file backend")
		}
	case LedgerBackendPostgres:
		if c.DBPassword == "" {
			return fmt.Errorf("DB_PASSWORD is required for the postgres backend")
		}
	case LedgerBackendRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("REDIS_ADDR is required for the redis backend")
		}
	default:
		return fmt.Errorf("unknown LEDGER_BACKEND %q", c.LedgerBackend)
	}
	if c.LeaderboardSize <= 0 {
		return fmt.Errorf("LEADERBOARD_SIZE must be positive")
	}
	if c.RolloverCheckMinutes <= 0 {
		return fmt.Errorf("ROLLOVER_CHECK_MINUTES must be positive")
	}
	if c.WorkerCount <= 0 {
		return fmt.Errorf("WORKER_COUNT must be positive")
	}
	return nil
}

func (c *Config) ValidateProductionSecurity() error {
	if c.AppEnv != "production" {
		return nil
	}

	if c.LedgerBackend == LedgerBackendPostgres && c.DBSSLMode != "require" {
		return fmt.Errorf("DB_SSLMODE must be 'require' in production")
	}
	if c.RateLimitPerUser <= 0 {
		return fmt.Errorf("RATE_LIMIT_PER_USER must be enabled in production")
	}

	return nil
}

func (c *Config) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode,
	)
}

func (c *Config) GetRolloverInterval() time.Duration {
	return time.Duration(c.RolloverCheckMinutes) * time.Minute
}

func (c *Config) GetRateLimitWindow() time.Duration {
	return time.Duration(c.RateLimitWindowSecs) * time.Second
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}
