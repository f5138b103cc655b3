package searchengine

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/gabriel/raw-source-finder/internal/models"
)

const (
	StrategyRotate   = "rotate"
	StrategyFallback = "fallback"
)

// Options tune a single Search call.
type Options struct {
	Debug bool
}

// Result is the outcome of one rotation. Answered is set when some backend
// returned a usable page, even one without links, so an empty result can be
// told apart from every backend failing.
type Result struct {
	OK       bool
	Answered bool
	URLs     []string
	Backend  string
	Attempts []models.AttemptDiagnostic
}

// Failed reports whether no backend answered at all.
func (r Result) Failed() bool {
	return !r.OK && !r.Answered
}

type RotatorConfig struct {
	Strategy       string
	AttemptTimeout time.Duration
	// Order returns a permutation of [0, n). Defaults to rand.Perm.
	Order func(n int) []int
}

// Rotator tries interchangeable backends until one yields usable links. It
// never returns an error; an exhausted rotation is reported as !OK.
type Rotator struct {
	backends       []Backend
	strategy       string
	attemptTimeout time.Duration
	order          func(n int) []int
	logger         *slog.Logger
}

func NewRotator(backends []Backend, cfg RotatorConfig, logger *slog.Logger) *Rotator {
	if cfg.Strategy != StrategyFallback {
		cfg.Strategy = StrategyRotate
	}
	if cfg.AttemptTimeout <= 0 {
		cfg.AttemptTimeout = 10 * time.Second
	}
	if cfg.Order == nil {
		cfg.Order = rand.Perm
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Rotator{
		backends:       backends,
		strategy:       cfg.Strategy,
		attemptTimeout: cfg.AttemptTimeout,
		order:          cfg.Order,
		logger:         logger,
	}
}

func (r *Rotator) Names() []string {
	names := make([]string, 0, len(r.backends))
	for _, backend := range r.backends {
		names = append(names, backend.Name())
	}
	return names
}

func (r *Rotator) Strategy() string {
	return r.strategy
}

func (r *Rotator) Search(ctx context.Context, query string, opts Options) Result {
	result := Result{URLs: []string{}}

	for _, index := range r.trialOrder() {
		if ctx.Err() != nil {
			break
		}

		backend := r.backends[index]
		attemptCtx, cancel := context.WithTimeout(ctx, r.attemptTimeout)
		attempt := backend.Search(attemptCtx, query)
		cancel()

		if opts.Debug {
			result.Attempts = append(result.Attempts, attempt.Diagnostic())
		}
		if attempt.OK {
			result.Answered = true
		}

		if accepted(attempt) {
			result.OK = true
			result.URLs = attempt.Links
			result.Backend = backend.Name()
			return result
		}

		r.logger.Debug("search backend attempt rejected",
			"backend", backend.Name(),
			"status", attempt.Status,
			"links", len(attempt.Links),
			"error", attempt.Err,
		)
	}

	return result
}

func (r *Rotator) trialOrder() []int {
	n := len(r.backends)
	if r.strategy == StrategyRotate && n > 1 {
		if order := r.order(n); len(order) == n {
			return order
		}
	}
	order := make([]int, n)
	for index := range order {
		order[index] = index
	}
	return order
}

func accepted(attempt Attempt) bool {
	return attempt.OK && len(attempt.Links) > 0
}
