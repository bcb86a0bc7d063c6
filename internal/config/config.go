package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config is the single source of truth for runtime parameters, loaded from
// the environment at startup.
type Config struct {
	Port      string
	Env       string
	JWTSecret string

	DB        DatabaseConfig
	Redis     RedisConfig
	Meta      MetaConfig
	S3        S3Config
	Worker    WorkerConfig
	RateLimit RateLimitConfig
}

// DatabaseConfig contains PostgreSQL connection parameters.
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

// RedisConfig contains Redis connection parameters.
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// MetaConfig contains Graph API parameters. BaseURL and Version are overrides
// for staging against a fake Graph endpoint; empty values use the pkg/meta
// defaults.
type MetaConfig struct {
	AppID   string
	BaseURL string
	Version string
}

// S3Config contains AWS S3 configuration for product image uploads.
type S3Config struct {
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	PublicBaseURL   string
}

// WorkerConfig contains interval configuration for background workers.
type WorkerConfig struct {
	CallbackInterval time.Duration
}

// RateLimitConfig contains per-client request rate limits.
type RateLimitConfig struct {
	RPS   float64
	Burst int
}

// Load assembles a Config from the environment. A .env file in the working
// directory is read first when present; production deployments that set real
// environment variables are unaffected by its absence.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:      env("PORT", "8080"),
		Env:       env("ENV", "development"),
		JWTSecret: env("JWT_SECRET", ""),
		DB: DatabaseConfig{
			Host:     env("DB_HOST", ""),
			Port:     env("DB_PORT", "5432"),
			User:     env("DB_USER", ""),
			Password: env("DB_PASSWORD", ""),
			Name:     env("DB_NAME", ""),
			SSLMode:  env("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Host:     env("REDIS_HOST", "redis"),
			Port:     env("REDIS_PORT", "6379"),
			Password: env("REDIS_PASSWORD", ""),
			DB:       envInt("REDIS_DB", 0),
		},
		Meta: MetaConfig{
			AppID:   env("META_APP_ID", ""),
			BaseURL: env("META_GRAPH_BASE_URL", ""),
			Version: env("META_GRAPH_VERSION", ""),
		},
		// Jakarta region; product images stay close to the merchants.
		S3: S3Config{
			Region:          env("S3_REGION", "ap-southeast-3"),
			Bucket:          env("S3_BUCKET", "lapaksync-assets"),
			AccessKeyID:     env("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey: env("AWS_SECRET_ACCESS_KEY", ""),
			PublicBaseURL:   env("S3_PUBLIC_BASE_URL", ""),
		},
		RateLimit: RateLimitConfig{
			RPS:   envFloat("RATE_LIMIT_RPS", 10),
			Burst: envInt("RATE_LIMIT_BURST", 20),
		},
	}

	interval, err := envDuration("CALLBACK_RETRY_INTERVAL", "1m")
	if err != nil {
		return nil, fmt.Errorf("invalid CALLBACK_RETRY_INTERVAL: %w", err)
	}
	cfg.Worker.CallbackInterval = interval

	if cfg.DB.Host == "" || cfg.DB.User == "" || cfg.DB.Name == "" {
		return nil, errors.New("database configuration incomplete: ensure DB_HOST, DB_USER, and DB_NAME are set")
	}
	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET must be set for authentication")
	}

	return cfg, nil
}

// env returns the variable's value, or def when unset or empty.
func env(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	i, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return def
	}
	return i
}

func envFloat(key string, def float64) float64 {
	f, err := strconv.ParseFloat(os.Getenv(key), 64)
	if err != nil {
		return def
	}
	return f
}

// envDuration parses the variable as a time.Duration, falling back to def
// when unset. Negative durations are rejected.
func envDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(env(key, def))
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("duration must be >= 0")
	}
	return d, nil
}
