package models

type ResolvedTitle struct {
	SeriesURL       *string        `json:"seriesUrl"`
	Resolved        bool           `json:"resolved"`
	RawTitle        *string        `json:"rawTitle"`
	AssociatedNames []string       `json:"associatedNames"`
	Debug           *ResolverDebug `json:"debug,omitempty"`

	// SearchFailed is set when no search backend answered the index query.
	SearchFailed bool `json:"-"`
}

type ResolverDebug struct {
	Query    string              `json:"query"`
	Attempts []AttemptDiagnostic `json:"attempts"`
}

type Match struct {
	Source       string `json:"source"`
	SerieID      string `json:"serieId"`
	FoundURL     string `json:"foundUrl"`
	CanonicalURL string `json:"canonicalUrl"`
}

const (
	OutcomeMatched      = "matched"
	OutcomeNoMatch      = "no_match"
	OutcomeSearchFailed = "search_failed"
	OutcomeSkipped      = "skipped"
)

type SourceDebug struct {
	Source   string              `json:"source"`
	Domain   string              `json:"domain"`
	Query    string              `json:"query"`
	Outcome  string              `json:"outcome"`
	Attempts []AttemptDiagnostic `json:"attempts"`
}

// AttemptDiagnostic describes one backend attempt. Head holds the first
// characters of the response body.
type AttemptDiagnostic struct {
	Backend string `json:"backend"`
	OK      bool   `json:"ok"`
	Status  int    `json:"status"`
	URL     string `json:"url"`
	Len     int    `json:"len"`
	Head    string `json:"head"`
	Links   int    `json:"links"`
	Error   string `json:"error,omitempty"`
}

// MatchReport is the outcome of searching every known source. Failed counts
// the sources whose search failed or was skipped.
type MatchReport struct {
	Matches []Match
	Debug   []SourceDebug
	Sources int
	Failed  int
}

// AllFailed reports whether no source could be searched at all.
func (r MatchReport) AllFailed() bool {
	return r.Sources > 0 && r.Failed == r.Sources
}

type PipelineResponse struct {
	Query    string        `json:"query"`
	RawTitle *string       `json:"rawTitle"`
	NU       ResolvedTitle `json:"nu"`
	Matches  []Match       `json:"matches"`
	NotFound bool          `json:"notFound"`
	Debug    []SourceDebug `json:"debug,omitempty"`

	// Degraded marks a response built while upstream searches were failing.
	// Such a response is served but never cached.
	Degraded bool `json:"-"`
}

func UnresolvedTitle() ResolvedTitle {
	return ResolvedTitle{AssociatedNames: []string{}}
}
