package sources

import (
	_ "embed"
	"fmt"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed sources.yaml
var defaultSourcesYAML []byte

const idPlaceholder = "{id}"

var (
	directHostPattern = regexp.MustCompile(`(?i)^https?\??://(?:www\.)?([a-z0-9.-]+)`)
	looseHostPattern  = regexp.MustCompile(`(?i)([a-z0-9-]+\.[a-z0-9.-]*[a-z0-9])`)
	inlineFlagPattern = regexp.MustCompile(`^\(\?[a-zA-Z]+\)`)
)

// Definition is one known publishing site. Definitions are immutable once
// loaded.
type Definition struct {
	Key               string
	Name              string
	Pattern           *regexp.Regexp
	CanonicalTemplate string
	Domain            string
}

type Registry struct {
	items []Definition
	byKey map[string]int
}

type Descriptor struct {
	Key       string `json:"key"`
	Name      string `json:"name"`
	Domain    string `json:"domain"`
	Pattern   string `json:"pattern"`
	Canonical string `json:"canonical"`
}

type Detection struct {
	Source       string `json:"source"`
	SerieID      string `json:"serieId"`
	CanonicalURL string `json:"canonicalUrl"`
}

type fileConfig struct {
	Sources []struct {
		Key       string `yaml:"key"`
		Name      string `yaml:"name"`
		Pattern   string `yaml:"pattern"`
		Canonical string `yaml:"canonical"`
	} `yaml:"sources"`
}

// Default returns the registry compiled into the binary. It panics if the
// embedded definitions are invalid, which the package tests guard against.
func Default() *Registry {
	registry, err := Load(defaultSourcesYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded sources: %v", err))
	}
	return registry
}

func Load(data []byte) (*Registry, error) {
	var cfg fileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("decode sources: %w", err)
	}
	if len(cfg.Sources) == 0 {
		return nil, fmt.Errorf("no sources defined")
	}

	registry := &Registry{
		items: make([]Definition, 0, len(cfg.Sources)),
		byKey: make(map[string]int, len(cfg.Sources)),
	}

	for index, raw := range cfg.Sources {
		key := strings.TrimSpace(raw.Key)
		if key == "" {
			return nil, fmt.Errorf("source #%d: key is required", index+1)
		}
		if _, exists := registry.byKey[key]; exists {
			return nil, fmt.Errorf("source %q defined twice", key)
		}

		patternSource := strings.TrimSpace(raw.Pattern)
		if patternSource == "" {
			return nil, fmt.Errorf("source %q: pattern is required", key)
		}
		if !inlineFlagPattern.MatchString(patternSource) {
			patternSource = "(?i)" + patternSource
		}
		pattern, err := regexp.Compile(patternSource)
		if err != nil {
			return nil, fmt.Errorf("source %q: compile pattern: %w", key, err)
		}
		if pattern.NumSubexp() < 1 {
			return nil, fmt.Errorf("source %q: pattern needs a capture group for the item id", key)
		}

		canonical := strings.TrimSpace(raw.Canonical)
		if !strings.Contains(canonical, idPlaceholder) {
			return nil, fmt.Errorf("source %q: canonical must contain %s", key, idPlaceholder)
		}

		name := strings.TrimSpace(raw.Name)
		if name == "" {
			name = key
		}

		registry.byKey[key] = len(registry.items)
		registry.items = append(registry.items, Definition{
			Key:               key,
			Name:              name,
			Pattern:           pattern,
			CanonicalTemplate: canonical,
			Domain:            DomainOf(pattern.String()),
		})
	}

	return registry, nil
}

// List returns the definitions in declaration order.
func (r *Registry) List() []Definition {
	items := make([]Definition, len(r.items))
	copy(items, r.items)
	return items
}

func (r *Registry) Len() int {
	return len(r.items)
}

func (r *Registry) Get(key string) (Definition, bool) {
	index, ok := r.byKey[strings.TrimSpace(key)]
	if !ok {
		return Definition{}, false
	}
	return r.items[index], true
}

func (r *Registry) Descriptors() []Descriptor {
	items := make([]Descriptor, 0, len(r.items))
	for _, def := range r.items {
		items = append(items, Descriptor{
			Key:       def.Key,
			Name:      def.Name,
			Domain:    def.Domain,
			Pattern:   def.Pattern.String(),
			Canonical: def.CanonicalTemplate,
		})
	}
	return items
}

// Detect reports the first source whose pattern recognises rawURL.
func (r *Registry) Detect(rawURL string) (Detection, bool) {
	trimmed := strings.TrimSpace(rawURL)
	if trimmed == "" {
		return Detection{}, false
	}
	for _, def := range r.items {
		id, ok := def.ExtractID(trimmed)
		if !ok {
			continue
		}
		return Detection{
			Source:       def.Key,
			SerieID:      id,
			CanonicalURL: def.Canonicalize(id),
		}, true
	}
	return Detection{}, false
}

// ExtractID returns the item id captured from rawURL. Patterns with several
// capture groups match only when every group captured the same text.
func (d Definition) ExtractID(rawURL string) (string, bool) {
	match := d.Pattern.FindStringSubmatch(rawURL)
	if len(match) < 2 || match[1] == "" {
		return "", false
	}
	for _, group := range match[2:] {
		if group != match[1] {
			return "", false
		}
	}
	return match[1], true
}

func (d Definition) Matches(rawURL string) bool {
	_, ok := d.ExtractID(rawURL)
	return ok
}

func (d Definition) Canonicalize(id string) string {
	return strings.ReplaceAll(d.CanonicalTemplate, idPlaceholder, id)
}

// DomainOf derives the bare hostname a pattern is anchored to, without a
// leading "www.". It returns "" when no hostname can be found.
func DomainOf(patternSource string) string {
	unescaped := strings.NewReplacer(`\.`, ".", `\/`, "/").Replace(strings.TrimSpace(patternSource))
	unescaped = inlineFlagPattern.ReplaceAllString(unescaped, "")
	unescaped = strings.TrimPrefix(unescaped, "^")

	if match := directHostPattern.FindStringSubmatch(unescaped); len(match) >= 2 {
		if host := cleanHost(match[1]); host != "" {
			return host
		}
	}

	if match := looseHostPattern.FindStringSubmatch(unescaped); len(match) >= 2 {
		return cleanHost(match[1])
	}

	return ""
}

func cleanHost(raw string) string {
	host := strings.ToLower(strings.Trim(raw, ".-"))
	host = strings.TrimPrefix(host, "www.")
	if !strings.Contains(host, ".") {
		return ""
	}
	return host
}
