package app

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/gabriel/raw-source-finder/internal/config"
)

func testConfig(t *testing.T) config.Config {
	t.Helper()
	return config.Config{
		SQLitePath:                  filepath.Join(t.TempDir(), "cache.sqlite"),
		CacheEnabled:                true,
		EnglishInputPolicy:          config.EnglishPolicyReject,
		SearchStrategy:              config.StrategyFallback,
		SearchBackendsPath:          filepath.Join(t.TempDir(), "no-backends"),
		SearchAttemptTimeoutSeconds: 1,
		PageFetchTimeoutSeconds:     1,
		LookupConcurrency:           2,
		IndexDomain:                 "novelupdates.com",
		UserAgent:                   "test",
	}
}

func TestBuildWiresPipelineWithCache(t *testing.T) {
	components, err := Build(context.Background(), testConfig(t), nil)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	defer components.Close()

	if components.Cache == nil {
		t.Fatalf("expected cache store")
	}
	if err := components.Cache.Put(context.Background(), "k", []byte("v"), time.Now().Add(time.Minute)); err != nil {
		t.Fatalf("cache not migrated: %v", err)
	}
	if components.Rotator.Strategy() != config.StrategyFallback {
		t.Fatalf("unexpected strategy %q", components.Rotator.Strategy())
	}
	if len(components.Rotator.Names()) == 0 {
		t.Fatalf("expected default backends")
	}
	if components.Lookup.EnglishPolicy() != config.EnglishPolicyReject {
		t.Fatalf("unexpected policy %q", components.Lookup.EnglishPolicy())
	}
	if components.Registry.Len() == 0 {
		t.Fatalf("expected registry entries")
	}
}

func TestBuildWithoutCache(t *testing.T) {
	cfg := testConfig(t)
	cfg.CacheEnabled = false

	components, err := Build(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if components.Cache != nil {
		t.Fatalf("expected no cache store")
	}
	if err := components.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}
