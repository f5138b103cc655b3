package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

type expiredPurger interface {
	PurgeExpired(ctx context.Context, now time.Time) (int64, error)
}

// Pruner periodically removes expired response cache entries.
type Pruner struct {
	store    expiredPurger
	interval time.Duration
	now      func() time.Time
	logger   *slog.Logger
	stopCh   chan struct{}
}

type PrunerConfig struct {
	Interval time.Duration
	Now      func() time.Time
}

func NewPruner(store expiredPurger, cfg PrunerConfig, logger *slog.Logger) *Pruner {
	if cfg.Interval <= 0 {
		cfg.Interval = 10 * time.Minute
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Pruner{
		store:    store,
		interval: cfg.Interval,
		now:      cfg.Now,
		logger:   logger,
		stopCh:   make(chan struct{}),
	}
}

// Start runs one purge immediately and then one per interval until ctx is
// cancelled.
func (p *Pruner) Start(ctx context.Context) {
	p.logger.Info("cache pruner started", "interval", p.interval.String())
	ticker := time.NewTicker(p.interval)
	go func() {
		defer ticker.Stop()
		defer close(p.stopCh)
		if _, err := p.RunOnce(ctx); err != nil {
			p.logger.Warn("cache prune initial run failed", "error", err)
		}
		for {
			select {
			case <-ctx.Done():
				p.logger.Info("cache pruner stopped")
				return
			case <-ticker.C:
				if _, err := p.RunOnce(ctx); err != nil {
					p.logger.Warn("cache prune cycle failed", "error", err)
				}
			}
		}
	}()
}

func (p *Pruner) StopWait(timeout time.Duration) {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	select {
	case <-p.stopCh:
	case <-time.After(timeout):
	}
}

func (p *Pruner) RunOnce(ctx context.Context) (int64, error) {
	removed, err := p.store.PurgeExpired(ctx, p.now())
	if err != nil {
		return 0, fmt.Errorf("purge expired cache entries: %w", err)
	}
	if removed > 0 {
		p.logger.Info("expired cache entries purged", "removed", removed)
	} else {
		p.logger.Debug("no expired cache entries")
	}
	return removed, nil
}
