package config

import (
	"log/slog"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("ENGLISH_INPUT_POLICY", "")
	t.Setenv("SEARCH_STRATEGY", "")
	t.Setenv("CACHE_TTL_MINUTES", "-5")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.EnglishInputPolicy != EnglishPolicyResolve {
		t.Fatalf("expected resolve policy, got %q", cfg.EnglishInputPolicy)
	}
	if cfg.SearchStrategy != StrategyRotate {
		t.Fatalf("expected rotate strategy, got %q", cfg.SearchStrategy)
	}
	if cfg.CacheTTLMinutes != 30 {
		t.Fatalf("expected ttl fallback 30, got %d", cfg.CacheTTLMinutes)
	}
	if cfg.LogLevel != slog.LevelInfo {
		t.Fatalf("expected info level, got %v", cfg.LogLevel)
	}
}

func TestLoadRejectsUnknownPolicy(t *testing.T) {
	t.Setenv("ENGLISH_INPUT_POLICY", "translate")
	if _, err := Load(); err == nil {
		t.Fatalf("expected invalid policy error")
	}
}

func TestLoadAcceptsRejectPolicyCaseInsensitive(t *testing.T) {
	t.Setenv("ENGLISH_INPUT_POLICY", "REJECT")
	t.Setenv("SEARCH_STRATEGY", "Fallback")
	t.Setenv("LOG_LEVEL", "DEBUG")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.EnglishInputPolicy != EnglishPolicyReject {
		t.Fatalf("expected reject policy, got %q", cfg.EnglishInputPolicy)
	}
	if cfg.SearchStrategy != StrategyFallback {
		t.Fatalf("expected fallback strategy, got %q", cfg.SearchStrategy)
	}
	if cfg.LogLevel != slog.LevelDebug {
		t.Fatalf("expected debug level, got %v", cfg.LogLevel)
	}
}
