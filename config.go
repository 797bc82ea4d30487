package main

import (
	"os"
	"path/filepath"
	"time"

	"wordle-results/internal/store"
)

// Config holds runtime configuration, read once at startup.
type Config struct {
	Port           string
	IsProduction   bool
	Store          store.Config
	EnableDebug    bool
	RateLimitRPS   int
	RateLimitBurst int
	// Limiters idle longer than LimiterIdleTTL are dropped every LimiterSweepInterval.
	LimiterIdleTTL       time.Duration
	LimiterSweepInterval time.Duration
	CORSOrigins          []string
	ShutdownTimeout      time.Duration
}

// loadConfig reads configuration from the environment with defaults.
func loadConfig() Config {
	return Config{
		Port:         getEnv("PORT", DefaultPort),
		IsProduction: os.Getenv("GIN_MODE") == "release" || os.Getenv("ENV") == "production",
		Store: store.Config{
			Dir:         getEnv("DATA_DIR", DefaultDataDir),
			FallbackDir: getEnv("FALLBACK_DATA_DIR", defaultFallbackDir()),
			FileName:    getEnv("DATA_FILE", store.DefaultFileName),
		},
		EnableDebug:          getEnvBool("ENABLE_DEBUG", false),
		RateLimitRPS:         getEnvInt("RATE_LIMIT_RPS", DefaultRateLimitRPS),
		RateLimitBurst:       getEnvInt("RATE_LIMIT_BURST", DefaultRateLimitBurst),
		LimiterIdleTTL:       getEnvDuration("LIMITER_IDLE_TTL", DefaultLimiterIdleTTL),
		LimiterSweepInterval: getEnvDuration("LIMITER_SWEEP_INTERVAL", DefaultLimiterSweepInterval),
		CORSOrigins:          getEnvList("CORS_ORIGINS", []string{"*"}),
		ShutdownTimeout:      getEnvDuration("SHUTDOWN_TIMEOUT", DefaultShutdownTimeout),
	}
}

// defaultFallbackDir is the process-local data directory.
func defaultFallbackDir() string {
	wd, err := os.Getwd()
	if err != nil {
		return DefaultDataDir
	}
	return filepath.Join(wd, DefaultDataDir)
}
