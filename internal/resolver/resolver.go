package resolver

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/gabriel/raw-source-finder/internal/models"
	"github.com/gabriel/raw-source-finder/internal/searchengine"
	"github.com/gabriel/raw-source-finder/internal/searchutil"
)

const DefaultIndexDomain = "novelupdates.com"

type Searcher interface {
	Search(ctx context.Context, query string, opts searchengine.Options) searchengine.Result
}

type PageFetcher interface {
	GetText(ctx context.Context, endpoint string) string
}

// Resolver bridges an English title to its raw title through a wiki-style
// index site's series pages.
type Resolver struct {
	searcher      Searcher
	fetcher       PageFetcher
	indexDomain   string
	seriesPattern *regexp.Regexp
	logger        *slog.Logger
}

func New(searcher Searcher, fetcher PageFetcher, indexDomain string, logger *slog.Logger) *Resolver {
	indexDomain = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(indexDomain)), "www.")
	if indexDomain == "" {
		indexDomain = DefaultIndexDomain
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Resolver{
		searcher:      searcher,
		fetcher:       fetcher,
		indexDomain:   indexDomain,
		seriesPattern: regexp.MustCompile(`(?i)^https?://(?:www\.)?` + regexp.QuoteMeta(indexDomain) + `/series/`),
		logger:        logger,
	}
}

func (r *Resolver) NeedsResolution(title string) bool {
	return searchutil.LooksEnglish(title)
}

// SeriesQuery builds the restricted query used to discover the index page.
func (r *Resolver) SeriesQuery(title string) string {
	return fmt.Sprintf(`site:%s/series "%s"`, r.indexDomain, title)
}

// Resolve never fails; any step that finds nothing yields resolved=false.
func (r *Resolver) Resolve(ctx context.Context, title string, debug bool) models.ResolvedTitle {
	out := models.UnresolvedTitle()

	title = strings.TrimSpace(title)
	if !r.NeedsResolution(title) {
		return out
	}

	query := r.SeriesQuery(title)
	result := r.searcher.Search(ctx, query, searchengine.Options{Debug: debug})
	out.SearchFailed = result.Failed()
	if debug {
		out.Debug = &models.ResolverDebug{Query: query, Attempts: result.Attempts}
	}

	seriesURL := r.firstSeriesURL(result.URLs)
	if seriesURL == "" {
		r.logger.Debug("no index series page found", "title", title, "searchOk", result.OK)
		return out
	}
	out.SeriesURL = &seriesURL

	page := r.fetcher.GetText(ctx, seriesURL)
	names := searchutil.ParseAssociatedNames(page)
	out.AssociatedNames = names

	rawTitle, ok := searchutil.PickLikelyRawTitle(names)
	if !ok {
		r.logger.Debug("index page had no associated names", "title", title, "seriesUrl", seriesURL)
		return out
	}

	out.RawTitle = &rawTitle
	out.Resolved = true
	return out
}

func (r *Resolver) firstSeriesURL(urls []string) string {
	for _, candidate := range urls {
		if r.seriesPattern.MatchString(candidate) {
			return candidate
		}
	}
	return ""
}
