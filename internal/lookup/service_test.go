package lookup

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/gabriel/raw-source-finder/internal/config"
	"github.com/gabriel/raw-source-finder/internal/matcher"
	"github.com/gabriel/raw-source-finder/internal/models"
	"github.com/gabriel/raw-source-finder/internal/resolver"
	"github.com/gabriel/raw-source-finder/internal/searchengine"
	"github.com/gabriel/raw-source-finder/internal/sources"
)

type failingSearcher struct{}

func (failingSearcher) Search(_ context.Context, _ string, opts searchengine.Options) searchengine.Result {
	result := searchengine.Result{URLs: []string{}}
	if opts.Debug {
		result.Attempts = []models.AttemptDiagnostic{{Backend: "down", Status: 503, Error: "unavailable"}}
	}
	return result
}

type noPages struct{}

func (noPages) GetText(context.Context, string) string { return "" }

type fixedResolver struct {
	calls  int
	result models.ResolvedTitle
}

func (r *fixedResolver) Resolve(context.Context, string, bool) models.ResolvedTitle {
	r.calls++
	return r.result
}

type recordingFinder struct {
	titles  []string
	matches []models.Match
	failed  int
}

func (f *recordingFinder) FindMatches(_ context.Context, rawTitle string, debug bool) models.MatchReport {
	f.titles = append(f.titles, rawTitle)
	report := models.MatchReport{Matches: f.matches, Sources: 2, Failed: f.failed}
	if debug {
		report.Debug = []models.SourceDebug{{Source: "69shuba", Outcome: models.OutcomeMatched, Attempts: []models.AttemptDiagnostic{}}}
	}
	return report
}

func TestLookupWithAllBackendsFailing(t *testing.T) {
	searcher := failingSearcher{}
	service := NewService(
		resolver.New(searcher, noPages{}, "", nil),
		matcher.New(sources.Default(), searcher, 4, nil),
		config.EnglishPolicyResolve,
		nil,
	)

	response, err := service.Lookup(context.Background(), Request{Query: "Reverend Insanity"})
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if !response.NotFound {
		t.Fatalf("expected notFound")
	}
	if response.Matches == nil || len(response.Matches) != 0 {
		t.Fatalf("expected empty non-nil matches, got %v", response.Matches)
	}
	if response.RawTitle != nil || response.NU.Resolved {
		t.Fatalf("expected unresolved response, got %+v", response.NU)
	}
	if response.Debug != nil {
		t.Fatalf("expected no debug entries without debug")
	}
	if response.Query != "Reverend Insanity" {
		t.Fatalf("unexpected query %q", response.Query)
	}
	if !response.Degraded {
		t.Fatalf("expected a degraded response when every backend fails")
	}
}

func TestLookupUsesResolvedRawTitle(t *testing.T) {
	raw := "万相之王"
	titleResolver := &fixedResolver{result: models.ResolvedTitle{Resolved: true, RawTitle: &raw, AssociatedNames: []string{raw}}}
	finder := &recordingFinder{matches: []models.Match{{Source: "69shuba", SerieID: "12345"}}, failed: 1}
	service := NewService(titleResolver, finder, "", nil)

	response, err := service.Lookup(context.Background(), Request{Query: "  The King of Myriad Realms  ", Debug: true})
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if response.RawTitle == nil || *response.RawTitle != raw {
		t.Fatalf("expected raw title %q, got %v", raw, response.RawTitle)
	}
	if response.Query != "The King of Myriad Realms" {
		t.Fatalf("unexpected query %q", response.Query)
	}
	if !reflect.DeepEqual(finder.titles, []string{raw}) {
		t.Fatalf("expected search on raw title, got %v", finder.titles)
	}
	if response.NotFound || len(response.Debug) != 1 || !response.NU.Resolved {
		t.Fatalf("unexpected response: %+v", response)
	}
	if response.Degraded {
		t.Fatalf("expected a partial failure not to degrade the response")
	}
}

func TestLookupSkipsResolverForRawInput(t *testing.T) {
	titleResolver := &fixedResolver{}
	finder := &recordingFinder{}
	service := NewService(titleResolver, finder, config.EnglishPolicyReject, nil)

	response, err := service.Lookup(context.Background(), Request{Query: "万相之王", Debug: true})
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if titleResolver.calls != 0 {
		t.Fatalf("expected resolver not to run, got %d calls", titleResolver.calls)
	}
	if response.RawTitle != nil || !response.NotFound {
		t.Fatalf("unexpected response: %+v", response)
	}
	if !reflect.DeepEqual(finder.titles, []string{"万相之王"}) {
		t.Fatalf("unexpected searched titles %v", finder.titles)
	}
	if response.NU.AssociatedNames == nil {
		t.Fatalf("expected non-nil associated names")
	}
	if response.Degraded {
		t.Fatalf("expected an answered empty search not to degrade the response")
	}
}

func TestLookupMarksResolverSearchFailureDegraded(t *testing.T) {
	unresolved := models.UnresolvedTitle()
	unresolved.SearchFailed = true
	service := NewService(&fixedResolver{result: unresolved}, &recordingFinder{}, config.EnglishPolicyResolve, nil)

	response, err := service.Lookup(context.Background(), Request{Query: "Reverend Insanity"})
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if !response.Degraded {
		t.Fatalf("expected degraded response after the index search failed")
	}
}

func TestLookupInputErrors(t *testing.T) {
	service := NewService(&fixedResolver{}, &recordingFinder{}, config.EnglishPolicyReject, nil)
	if service.EnglishPolicy() != config.EnglishPolicyReject {
		t.Fatalf("unexpected policy %q", service.EnglishPolicy())
	}

	if _, err := service.Lookup(context.Background(), Request{Query: "   "}); !errors.Is(err, ErrMissingQuery) {
		t.Fatalf("expected ErrMissingQuery, got %v", err)
	}
	if _, err := service.Lookup(context.Background(), Request{Query: "Reverend Insanity"}); !errors.Is(err, ErrEnglishInput) {
		t.Fatalf("expected ErrEnglishInput, got %v", err)
	}
}

func TestLookupKeepsInputWhenResolutionFails(t *testing.T) {
	finder := &recordingFinder{}
	service := NewService(&fixedResolver{result: models.UnresolvedTitle()}, finder, config.EnglishPolicyResolve, nil)

	response, err := service.Lookup(context.Background(), Request{Query: "Reverend Insanity"})
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if response.RawTitle != nil {
		t.Fatalf("expected no raw title, got %q", *response.RawTitle)
	}
	if !reflect.DeepEqual(finder.titles, []string{"Reverend Insanity"}) {
		t.Fatalf("unexpected searched titles %v", finder.titles)
	}
}
