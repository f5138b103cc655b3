package matcher

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/gabriel/raw-source-finder/internal/models"
	"github.com/gabriel/raw-source-finder/internal/searchengine"
	"github.com/gabriel/raw-source-finder/internal/sources"
)

const DefaultConcurrency = 16

type Searcher interface {
	Search(ctx context.Context, query string, opts searchengine.Options) searchengine.Result
}

type Aggregator struct {
	registry    *sources.Registry
	searcher    Searcher
	concurrency int
	logger      *slog.Logger
}

type sourceLookup struct {
	match *models.Match
	debug models.SourceDebug
}

func New(registry *sources.Registry, searcher Searcher, concurrency int, logger *slog.Logger) *Aggregator {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Aggregator{
		registry:    registry,
		searcher:    searcher,
		concurrency: concurrency,
		logger:      logger,
	}
}

// Query builds the exact-phrase query for one source. An entry without a
// derivable domain is searched unrestricted.
func Query(rawTitle string, domain string) string {
	if domain == "" {
		return `"` + rawTitle + `"`
	}
	return `"` + rawTitle + `" site:` + domain
}

// FindMatches searches every registered source concurrently and reports the
// matches in registry order. Debug entries are only built when debug is set.
func (a *Aggregator) FindMatches(ctx context.Context, rawTitle string, debug bool) models.MatchReport {
	definitions := a.registry.List()
	results := make([]sourceLookup, len(definitions))

	group := errgroup.Group{}
	group.SetLimit(a.concurrency)
	for index, definition := range definitions {
		group.Go(func() error {
			results[index] = a.lookupSource(ctx, definition, rawTitle, debug)
			return nil
		})
	}
	_ = group.Wait()

	report := models.MatchReport{Sources: len(results)}
	matches := make([]models.Match, 0, len(results))
	for _, result := range results {
		if result.match != nil {
			matches = append(matches, *result.match)
		}
		switch result.debug.Outcome {
		case models.OutcomeSearchFailed, models.OutcomeSkipped:
			report.Failed++
		}
		if debug {
			report.Debug = append(report.Debug, result.debug)
		}
	}
	report.Matches = Dedupe(matches)

	if report.AllFailed() {
		a.logger.Warn("every source search failed", "title", rawTitle, "sources", report.Sources)
	}
	return report
}

func (a *Aggregator) lookupSource(ctx context.Context, definition sources.Definition, rawTitle string, debug bool) sourceLookup {
	query := Query(rawTitle, definition.Domain)
	lookup := sourceLookup{
		debug: models.SourceDebug{
			Source:   definition.Key,
			Domain:   definition.Domain,
			Query:    query,
			Outcome:  models.OutcomeNoMatch,
			Attempts: []models.AttemptDiagnostic{},
		},
	}

	if ctx.Err() != nil {
		lookup.debug.Outcome = models.OutcomeSkipped
		return lookup
	}

	result := a.searcher.Search(ctx, query, searchengine.Options{Debug: debug})
	if result.Attempts != nil {
		lookup.debug.Attempts = result.Attempts
	}

	if result.Failed() {
		lookup.debug.Outcome = models.OutcomeSearchFailed
	} else if match, ok := firstMatch(definition, result.URLs); ok {
		lookup.match = &match
		lookup.debug.Outcome = models.OutcomeMatched
	}

	a.logger.Debug("source lookup finished",
		"source", definition.Key,
		"outcome", lookup.debug.Outcome,
		"backend", result.Backend,
		"urls", len(result.URLs),
	)
	return lookup
}

func firstMatch(definition sources.Definition, urls []string) (models.Match, bool) {
	for _, candidate := range urls {
		id, ok := definition.ExtractID(candidate)
		if !ok {
			continue
		}
		return models.Match{
			Source:       definition.Key,
			SerieID:      id,
			FoundURL:     candidate,
			CanonicalURL: definition.Canonicalize(id),
		}, true
	}
	return models.Match{}, false
}

// Dedupe drops matches whose canonical URL was already seen, keeping the
// first. The result is never nil.
func Dedupe(matches []models.Match) []models.Match {
	unique := make([]models.Match, 0, len(matches))
	seen := make(map[string]struct{}, len(matches))
	for _, match := range matches {
		if _, exists := seen[match.CanonicalURL]; exists {
			continue
		}
		seen[match.CanonicalURL] = struct{}{}
		unique = append(unique, match)
	}
	return unique
}
