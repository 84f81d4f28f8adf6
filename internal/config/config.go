package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"dice_duel/internal/domain"
	"dice_duel/internal/logger"

	"github.com/joho/godotenv"
)

// Store backends
const (
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
	BackendRemote   = "remote"
)

type Config struct {
	AppPort       string
	StoreBackend  string
	StoreURL      string
	AllowedOrigin string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	DatabaseURL   string

	LogLevel string
	LogJSON  bool

	// Store write limits
	WriteRateLimit  int
	WriteRateWindow int

	// Game pacing
	RollFrames         int
	RollInterval       time.Duration
	ComputerDelay      time.Duration
	DefaultTargetScore int
}

// Load reads .env (if present) and the process environment.
func Load() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		AppPort:       envString("APP_PORT", "8080"),
		StoreBackend:  strings.ToLower(envString("STORE_BACKEND", BackendMemory)),
		StoreURL:      strings.TrimRight(envString("STORE_URL", "http://127.0.0.1:8080"), "/"),
		AllowedOrigin: os.Getenv("ALLOWED_ORIGIN"),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       envInt("REDIS_DB", 0),
		DatabaseURL:   os.Getenv("DATABASE_URL"),

		LogLevel: envString("LOG_LEVEL", "info"),
		LogJSON:  os.Getenv("LOG_JSON") == "true",

		WriteRateLimit:  envPositive("WRITE_RATE_LIMIT", 120),
		WriteRateWindow: envPositive("WRITE_RATE_WINDOW", 60),

		RollFrames:         envPositive("ROLL_FRAMES", 11),
		RollInterval:       time.Duration(envPositive("ROLL_INTERVAL_MS", 100)) * time.Millisecond,
		ComputerDelay:      time.Duration(envPositive("COMPUTER_DELAY_MS", 1500)) * time.Millisecond,
		DefaultTargetScore: envPositive("DEFAULT_TARGET_SCORE", domain.DefaultTargetScore),
	}

	if !domain.ValidTargetScore(cfg.DefaultTargetScore) {
		logger.Warn("DEFAULT_TARGET_SCORE is not an offered option, using default",
			"value", cfg.DefaultTargetScore, "options", domain.TargetScoreOptions, "default", domain.DefaultTargetScore)
		cfg.DefaultTargetScore = domain.DefaultTargetScore
	}

	switch cfg.StoreBackend {
	case BackendMemory, BackendRemote:
	case BackendRedis:
		if cfg.RedisAddr == "" {
			logger.Fatal("REDIS_ADDR is not set", "backend", cfg.StoreBackend)
		}
	case BackendPostgres:
		if cfg.DatabaseURL == "" {
			logger.Fatal("DATABASE_URL is not set", "backend", cfg.StoreBackend)
		}
	default:
		logger.Fatal("unknown STORE_BACKEND", "backend", cfg.StoreBackend)
	}

	return cfg
}

// WriteWindow returns the rate limiter window as a duration.
func (c *Config) WriteWindow() time.Duration {
	return time.Duration(c.WriteRateWindow) * time.Second
}

func envString(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

// envPositive falls back to def for anything that is not a positive integer.
func envPositive(key string, def int) int {
	if n := envInt(key, def); n > 0 {
		return n
	}
	return def
}
