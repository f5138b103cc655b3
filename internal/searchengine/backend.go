package searchengine

import (
	"context"
	"fmt"
	"net/url"
	"unicode/utf8"

	"github.com/gabriel/raw-source-finder/internal/linkextract"
	"github.com/gabriel/raw-source-finder/internal/models"
	"github.com/gabriel/raw-source-finder/internal/webfetch"
)

const headPreviewRunes = 140

type Backend interface {
	Name() string
	Search(ctx context.Context, query string) Attempt
}

type Fetcher interface {
	Get(ctx context.Context, endpoint string, accept string) (webfetch.Page, error)
}

// Attempt is the outcome of one call to one backend.
type Attempt struct {
	Backend string
	OK      bool
	Status  int
	URL     string
	Length  int
	Head    string
	Links   []string
	Err     error
}

func (a Attempt) Diagnostic() models.AttemptDiagnostic {
	diagnostic := models.AttemptDiagnostic{
		Backend: a.Backend,
		OK:      a.OK,
		Status:  a.Status,
		URL:     a.URL,
		Len:     a.Length,
		Head:    a.Head,
		Links:   len(a.Links),
	}
	if a.Err != nil {
		diagnostic.Error = a.Err.Error()
	}
	return diagnostic
}

type httpBackend struct {
	config    Config
	fetcher   Fetcher
	extractor *linkextract.Extractor
}

func NewBackend(cfg Config, fetcher Fetcher) (Backend, error) {
	if err := cfg.normalizeAndValidate(); err != nil {
		return nil, err
	}
	if fetcher == nil {
		fetcher = webfetch.NewClient(nil, "")
	}

	extractor, err := linkextract.New(cfg.Origin, linkextract.Options{
		ExternalOnly:   true,
		RedirectParams: cfg.RedirectParams,
	})
	if err != nil {
		return nil, err
	}

	return &httpBackend{config: cfg, fetcher: fetcher, extractor: extractor}, nil
}

func (b *httpBackend) Name() string {
	return b.config.Key
}

func (b *httpBackend) Search(ctx context.Context, query string) Attempt {
	attempt := Attempt{Backend: b.config.Key}

	endpoint, err := b.requestURL(query)
	if err != nil {
		attempt.Err = err
		return attempt
	}
	attempt.URL = endpoint

	accept := ""
	if b.config.Kind == KindJSON {
		accept = "application/json"
	}

	page, err := b.fetcher.Get(ctx, endpoint, accept)
	attempt.Status = page.Status
	attempt.Length = len(page.Body)
	attempt.Head = head(page.Body)
	if page.FinalURL != "" {
		attempt.URL = page.FinalURL
	}
	if err != nil {
		attempt.Err = err
		return attempt
	}
	if !page.OK() {
		attempt.Err = fmt.Errorf("%s returned status %d", b.config.Key, page.Status)
		return attempt
	}
	if len(page.Body) < b.config.MinBodyLength {
		attempt.Err = fmt.Errorf("%s response too short (%d bytes), likely blocked", b.config.Key, len(page.Body))
		return attempt
	}

	switch b.config.Kind {
	case KindJSON:
		links, err := b.extractor.FromJSON([]byte(page.Body), b.config.Response.ItemsPath, b.config.Response.URLField)
		if err != nil {
			attempt.Err = err
			return attempt
		}
		attempt.Links = links
	case KindText:
		attempt.Links = b.extractor.FromText(page.Body)
	default:
		attempt.Links = b.extractor.FromHTML(page.Body)
	}

	attempt.OK = true
	return attempt
}

func (b *httpBackend) requestURL(query string) (string, error) {
	endpoint, err := url.Parse(b.config.Endpoint)
	if err != nil {
		return "", fmt.Errorf("parse endpoint: %w", err)
	}

	values := endpoint.Query()
	values.Set(b.config.QueryParam, query)
	for key, value := range b.config.ExtraParams {
		values.Set(key, value)
	}
	endpoint.RawQuery = values.Encode()

	if b.config.Proxy != "" {
		return b.config.Proxy + endpoint.String(), nil
	}
	return endpoint.String(), nil
}

func head(body string) string {
	if utf8.RuneCountInString(body) <= headPreviewRunes {
		return body
	}
	runes := 0
	for index := range body {
		if runes == headPreviewRunes {
			return body[:index]
		}
		runes++
	}
	return body
}
