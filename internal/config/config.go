package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	EnglishPolicyResolve = "resolve"
	EnglishPolicyReject  = "reject"

	StrategyRotate   = "rotate"
	StrategyFallback = "fallback"
)

type Config struct {
	Environment string
	AppName     string
	Port        string
	LogLevel    slog.Level
	SQLitePath  string

	CacheEnabled      bool
	CacheTTLMinutes   int
	CachePruneMinutes int

	EnglishInputPolicy string

	SearchStrategy              string
	SearchBackendsPath          string
	SearchAttemptTimeoutSeconds int
	PageFetchTimeoutSeconds     int
	LookupConcurrency           int
	IndexDomain                 string
	UserAgent                   string
}

func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Environment:                 getEnv("APP_ENV", "development"),
		AppName:                     getEnv("APP_NAME", "raw-source-finder"),
		Port:                        getEnv("APP_PORT", "8080"),
		SQLitePath:                  getEnv("SQLITE_PATH", "./data/cache.sqlite"),
		CacheEnabled:                getEnvAsBool("CACHE_ENABLED", true),
		CacheTTLMinutes:             getEnvAsInt("CACHE_TTL_MINUTES", 30),
		CachePruneMinutes:           getEnvAsInt("CACHE_PRUNE_MINUTES", 10),
		EnglishInputPolicy:          strings.ToLower(getEnv("ENGLISH_INPUT_POLICY", EnglishPolicyResolve)),
		SearchStrategy:              strings.ToLower(getEnv("SEARCH_STRATEGY", StrategyRotate)),
		SearchBackendsPath:          getEnv("SEARCH_BACKENDS_PATH", "./backends"),
		SearchAttemptTimeoutSeconds: getEnvAsInt("SEARCH_ATTEMPT_TIMEOUT_SECONDS", 10),
		PageFetchTimeoutSeconds:     getEnvAsInt("PAGE_FETCH_TIMEOUT_SECONDS", 12),
		LookupConcurrency:           getEnvAsInt("LOOKUP_CONCURRENCY", 16),
		IndexDomain:                 getEnv("INDEX_DOMAIN", "novelupdates.com"),
		UserAgent:                   getEnv("USER_AGENT", "Mozilla/5.0"),
	}

	if cfg.CacheTTLMinutes <= 0 {
		cfg.CacheTTLMinutes = 30
	}
	if cfg.CachePruneMinutes <= 0 {
		cfg.CachePruneMinutes = 10
	}
	if cfg.SearchAttemptTimeoutSeconds <= 0 {
		cfg.SearchAttemptTimeoutSeconds = 10
	}
	if cfg.PageFetchTimeoutSeconds <= 0 {
		cfg.PageFetchTimeoutSeconds = 12
	}
	if cfg.LookupConcurrency <= 0 {
		cfg.LookupConcurrency = 16
	}

	switch cfg.EnglishInputPolicy {
	case EnglishPolicyResolve, EnglishPolicyReject:
	default:
		return Config{}, fmt.Errorf("invalid ENGLISH_INPUT_POLICY %q, expected resolve|reject", cfg.EnglishInputPolicy)
	}

	switch cfg.SearchStrategy {
	case StrategyRotate, StrategyFallback:
	default:
		return Config{}, fmt.Errorf("invalid SEARCH_STRATEGY %q, expected rotate|fallback", cfg.SearchStrategy)
	}

	level, err := parseLogLevel(getEnv("LOG_LEVEL", "INFO"))
	if err != nil {
		return Config{}, err
	}
	cfg.LogLevel = level

	return cfg, nil
}

func parseLogLevel(raw string) (slog.Level, error) {
	switch raw {
	case "DEBUG":
		return slog.LevelDebug, nil
	case "INFO":
		return slog.LevelInfo, nil
	case "WARN":
		return slog.LevelWarn, nil
	case "ERROR":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q, expected DEBUG|INFO|WARN|ERROR", raw)
	}
}

func getEnv(key string, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getEnvAsBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}
