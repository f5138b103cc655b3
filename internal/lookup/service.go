package lookup

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/gabriel/raw-source-finder/internal/config"
	"github.com/gabriel/raw-source-finder/internal/models"
	"github.com/gabriel/raw-source-finder/internal/searchutil"
)

var (
	ErrMissingQuery = errors.New("missing query")
	ErrEnglishInput = errors.New("english input rejected")
)

// EnglishInputHint is shown to callers when the reject policy refuses a query.
const EnglishInputHint = "Input looks English; provide the raw title"

type TitleResolver interface {
	Resolve(ctx context.Context, title string, debug bool) models.ResolvedTitle
}

type MatchFinder interface {
	FindMatches(ctx context.Context, rawTitle string, debug bool) models.MatchReport
}

type Request struct {
	Query string
	Debug bool
}

type Service struct {
	resolver      TitleResolver
	finder        MatchFinder
	englishPolicy string
	logger        *slog.Logger
}

func NewService(resolver TitleResolver, finder MatchFinder, englishPolicy string, logger *slog.Logger) *Service {
	if englishPolicy != config.EnglishPolicyReject {
		englishPolicy = config.EnglishPolicyResolve
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		resolver:      resolver,
		finder:        finder,
		englishPolicy: englishPolicy,
		logger:        logger,
	}
}

func (s *Service) EnglishPolicy() string {
	return s.englishPolicy
}

// Lookup resolves the query to a raw title when needed and searches every
// known source for it. Only input errors are returned. The response is marked
// degraded when the index search or every source search failed.
func (s *Service) Lookup(ctx context.Context, req Request) (models.PipelineResponse, error) {
	query := strings.TrimSpace(req.Query)
	if query == "" {
		return models.PipelineResponse{}, ErrMissingQuery
	}

	resolved := models.UnresolvedTitle()
	searchTitle := query

	if searchutil.LooksEnglish(query) {
		if s.englishPolicy == config.EnglishPolicyReject {
			return models.PipelineResponse{}, ErrEnglishInput
		}
		resolved = s.resolver.Resolve(ctx, query, req.Debug)
		if resolved.RawTitle != nil && strings.TrimSpace(*resolved.RawTitle) != "" {
			searchTitle = strings.TrimSpace(*resolved.RawTitle)
		}
	}

	report := s.finder.FindMatches(ctx, searchTitle, req.Debug)

	response := models.PipelineResponse{
		Query:    query,
		NU:       resolved,
		Matches:  report.Matches,
		NotFound: len(report.Matches) == 0,
		Degraded: resolved.SearchFailed || report.AllFailed(),
	}
	if searchTitle != query {
		rawTitle := searchTitle
		response.RawTitle = &rawTitle
	}
	if req.Debug {
		response.Debug = report.Debug
		if response.Debug == nil {
			response.Debug = []models.SourceDebug{}
		}
	}
	if response.Matches == nil {
		response.Matches = []models.Match{}
	}

	s.logger.Info("lookup finished",
		"query", query,
		"rawTitle", searchTitle,
		"resolved", resolved.Resolved,
		"matches", len(response.Matches),
		"degraded", response.Degraded,
	)
	return response, nil
}
