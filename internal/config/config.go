package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	OMDB     OMDBConfig
	Session  SessionConfig
	Log      LogConfig
}

type ServerConfig struct {
	Env  string
	Port string
	Host string
}

type DatabaseConfig struct {
	URL string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	TLS      bool
}

type OMDBConfig struct {
	APIKey  string
	BaseURL string
}

type SessionConfig struct {
	DefaultQuery string
	MaxRating    int
	TTL          time.Duration
	IdleTimeout  time.Duration
}

type LogConfig struct {
	File      string
	MaxSizeMB int
}

// Load reads environment variables and returns a Config struct
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	maxRating, err := getEnvInt("MAX_RATING", 10)
	if err != nil {
		return nil, err
	}
	maxSize, err := getEnvInt("LOG_MAX_SIZE_MB", 50)
	if err != nil {
		return nil, err
	}
	ttl, err := time.ParseDuration(getEnv("SESSION_TTL", "168h"))
	if err != nil {
		return nil, fmt.Errorf("SESSION_TTL: %w", err)
	}
	idle, err := time.ParseDuration(getEnv("SESSION_IDLE_TIMEOUT", "30m"))
	if err != nil {
		return nil, fmt.Errorf("SESSION_IDLE_TIMEOUT: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Env:  getEnv("NODE_ENV", "local"),
			Port: getEnv("PORT", "4000"),
			Host: getEnv("HOST", "http://localhost:4000"),
		},
		Database: DatabaseConfig{
			URL: getEnv("DATABASE_URL", ""),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			TLS:      getEnv("REDIS_TLS", "false") == "true",
		},
		OMDB: OMDBConfig{
			APIKey:  getEnv("OMDB_KEY", ""),
			BaseURL: getEnv("OMDB_URL", "https://www.omdbapi.com"),
		},
		Session: SessionConfig{
			DefaultQuery: getEnv("DEFAULT_QUERY", "interstellar"),
			MaxRating:    maxRating,
			TTL:          ttl,
			IdleTimeout:  idle,
		},
		Log: LogConfig{
			File:      getEnv("LOG_FILE", ""),
			MaxSizeMB: maxSize,
		},
	}

	// Validate required fields
	if cfg.Database.URL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.OMDB.APIKey == "" {
		return nil, fmt.Errorf("OMDB_KEY is required")
	}
	if cfg.Session.MaxRating < 1 {
		return nil, fmt.Errorf("MAX_RATING must be at least 1")
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return n, nil
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production"
}

// IsDevelopment returns true if running in development/local mode
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "local" || c.Server.Env == "development"
}

// RedisAddr returns the Redis address in host:port format
func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%s", c.Redis.Host, c.Redis.Port)
}
