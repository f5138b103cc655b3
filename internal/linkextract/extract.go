// Package linkextract turns search-engine payloads into ordered lists of
// absolute destination URLs.
package linkextract

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

var (
	DefaultRedirectParams = []string{"uddg", "url"}

	plainURLPattern = regexp.MustCompile(`https?://[^\s"'<>()\[\]{}|\\^` + "`" + `]+`)
)

type Extractor struct {
	origin         *url.URL
	externalOnly   bool
	redirectParams []string
}

type Options struct {
	// ExternalOnly drops links pointing back at the origin host.
	ExternalOnly   bool
	RedirectParams []string
}

func New(origin string, opts Options) (*Extractor, error) {
	parsed, err := url.Parse(strings.TrimSpace(origin))
	if err != nil {
		return nil, fmt.Errorf("parse origin: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" || parsed.Host == "" {
		return nil, fmt.Errorf("origin %q must be an absolute http(s) url", origin)
	}

	params := opts.RedirectParams
	if len(params) == 0 {
		params = DefaultRedirectParams
	}

	return &Extractor{
		origin:         parsed,
		externalOnly:   opts.ExternalOnly,
		redirectParams: params,
	}, nil
}

// FromHTML collects every href attribute in body, whatever its quoting.
func (e *Extractor) FromHTML(body string) []string {
	tokenizer := html.NewTokenizer(strings.NewReader(body))
	collector := newCollector()

	for {
		tokenType := tokenizer.Next()
		if tokenType == html.ErrorToken {
			break
		}
		if tokenType != html.StartTagToken && tokenType != html.SelfClosingTagToken {
			continue
		}

		_, hasAttr := tokenizer.TagName()
		for hasAttr {
			var key, value []byte
			key, value, hasAttr = tokenizer.TagAttr()
			if !bytes.EqualFold(key, []byte("href")) {
				continue
			}
			if link, ok := e.normalize(string(value), true); ok {
				collector.add(link)
			}
		}
	}

	return collector.items
}

// FromJSON reads a structured search payload. itemsPath is a dotted path to
// the results array and field names the URL property of each record.
func (e *Extractor) FromJSON(body []byte, itemsPath string, field string) ([]string, error) {
	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode search payload: %w", err)
	}

	if strings.TrimSpace(itemsPath) == "" {
		itemsPath = "results"
	}
	if strings.TrimSpace(field) == "" {
		field = "url"
	}

	rawItems, ok := getByPath(payload, itemsPath).([]any)
	if !ok {
		return nil, fmt.Errorf("search payload has no %q array", itemsPath)
	}

	collector := newCollector()
	for _, rawItem := range rawItems {
		item, ok := rawItem.(map[string]any)
		if !ok {
			continue
		}
		value, ok := item[field].(string)
		if !ok {
			continue
		}
		if link, ok := e.normalize(value, false); ok {
			collector.add(link)
		}
	}

	return collector.items, nil
}

// FromText scans plain or markdown text, as returned by text-extraction
// proxies, for absolute URLs.
func (e *Extractor) FromText(body string) []string {
	collector := newCollector()
	for _, raw := range plainURLPattern.FindAllString(body, -1) {
		raw = strings.TrimRight(raw, ".,;:!?*_")
		if link, ok := e.normalize(html.UnescapeString(raw), true); ok {
			collector.add(link)
		}
	}
	return collector.items
}

func (e *Extractor) normalize(raw string, unwrap bool) (string, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || strings.HasPrefix(trimmed, "#") {
		return "", false
	}

	ref, err := url.Parse(trimmed)
	if err != nil {
		return "", false
	}
	resolved := e.origin.ResolveReference(ref)

	if unwrap && sameHost(resolved.Hostname(), e.origin.Hostname()) {
		if target, ok := e.redirectTarget(resolved); ok {
			resolved = target
		}
	}

	if resolved.Scheme != "http" && resolved.Scheme != "https" || resolved.Host == "" {
		return "", false
	}
	if e.externalOnly && sameHost(resolved.Hostname(), e.origin.Hostname()) {
		return "", false
	}

	return resolved.String(), true
}

// redirectTarget unwraps the engine's own tracking links such as
// /l/?uddg=<encoded url> or /url?q=<encoded url>. Query() already
// percent-decodes the parameter.
func (e *Extractor) redirectTarget(link *url.URL) (*url.URL, bool) {
	query := link.Query()

	candidates := make([]string, 0, len(e.redirectParams)+1)
	for _, param := range e.redirectParams {
		candidates = append(candidates, query.Get(param))
	}
	if link.Path == "/url" {
		candidates = append(candidates, query.Get("q"))
	}

	for _, candidate := range candidates {
		candidate = strings.TrimSpace(candidate)
		if candidate == "" {
			continue
		}
		target, err := url.Parse(candidate)
		if err != nil || !target.IsAbs() {
			continue
		}
		return target, true
	}

	return nil, false
}

func sameHost(a string, b string) bool {
	a = strings.TrimPrefix(strings.ToLower(a), "www.")
	b = strings.TrimPrefix(strings.ToLower(b), "www.")
	return a == b || strings.HasSuffix(a, "."+b) || strings.HasSuffix(b, "."+a)
}

func getByPath(input map[string]any, dottedPath string) any {
	current := any(input)
	for _, segment := range strings.Split(dottedPath, ".") {
		asMap, ok := current.(map[string]any)
		if !ok {
			return nil
		}
		current = asMap[segment]
	}
	return current
}

type collector struct {
	items []string
	seen  map[string]struct{}
}

func newCollector() *collector {
	return &collector{items: make([]string, 0, 16), seen: make(map[string]struct{}, 16)}
}

func (c *collector) add(link string) {
	if _, exists := c.seen[link]; exists {
		return
	}
	c.seen[link] = struct{}{}
	c.items = append(c.items, link)
}
