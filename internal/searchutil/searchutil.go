package searchutil

import (
	"html"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	AssociatedNamesWindow = 8000
	MaxAssociatedNames    = 30

	englishASCIIRatio = 0.85
)

var (
	associatedMarkerPattern = regexp.MustCompile(`(?i)associated names`)
	listItemPattern         = regexp.MustCompile(`(?is)<li[^>]*>(.*?)</li>`)
	lineBreakBlockPattern   = regexp.MustCompile(`(?is)associated names(?:.*?>)?([^<>]*<br[\s/]*>.*?)(</div>|</section>|</table>)`)
	lineBreakPattern        = regexp.MustCompile(`(?i)<br[\s/]*>`)

	htmlTagStripPattern = regexp.MustCompile(`(?is)<[^>]+>`)
	whitespacePattern   = regexp.MustCompile(`\s+`)
)

// LooksEnglish reports whether more than 85% of the runes in value are
// printable ASCII, the signal that a title still needs resolving to its raw
// form.
func LooksEnglish(value string) bool {
	total := 0
	ascii := 0
	for _, r := range value {
		total++
		if r >= 0x20 && r <= 0x7E {
			ascii++
		}
	}
	if total == 0 {
		return false
	}
	return float64(ascii)/float64(total) > englishASCIIRatio
}

// ContainsCJK reports whether value has kana, CJK ideographs or Hangul.
func ContainsCJK(value string) bool {
	for _, r := range value {
		switch {
		case r >= 0x3040 && r <= 0x30FF:
			return true
		case r >= 0x3400 && r <= 0x9FFF:
			return true
		case r >= 0xAC00 && r <= 0xD7AF:
			return true
		}
	}
	return false
}

func StripTags(raw string) string {
	text := htmlTagStripPattern.ReplaceAllString(raw, " ")
	text = html.UnescapeString(text)
	text = whitespacePattern.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// ParseAssociatedNames extracts the alternate titles listed after the
// "Associated Names" heading of an index page. Only a bounded window after
// the marker is scanned. List items come first, then <br>-separated runs.
func ParseAssociatedNames(page string) []string {
	location := associatedMarkerPattern.FindStringIndex(page)
	if location == nil {
		return []string{}
	}

	window := boundedWindow(page, location[0], AssociatedNamesWindow)

	candidates := make([]string, 0, 16)
	for _, match := range listItemPattern.FindAllStringSubmatch(window, -1) {
		candidates = append(candidates, StripTags(match[1]))
	}

	if block := lineBreakBlockPattern.FindStringSubmatch(window); len(block) >= 2 {
		for _, part := range lineBreakPattern.Split(block[1], -1) {
			candidates = append(candidates, StripTags(part))
		}
	}

	names := UniqueNonEmpty(candidates)
	if len(names) > MaxAssociatedNames {
		names = names[:MaxAssociatedNames]
	}
	return names
}

// PickLikelyRawTitle prefers the first name written in a CJK or Hangul
// script and otherwise falls back to the first name.
func PickLikelyRawTitle(names []string) (string, bool) {
	if len(names) == 0 {
		return "", false
	}
	for _, name := range names {
		if ContainsCJK(name) {
			return name, true
		}
	}
	return names[0], true
}

// UniqueNonEmpty trims values and drops blanks and exact repeats, keeping
// the first occurrence.
func UniqueNonEmpty(values []string) []string {
	unique := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, raw := range values {
		trimmed := strings.TrimSpace(raw)
		if trimmed == "" {
			continue
		}
		if _, exists := seen[trimmed]; exists {
			continue
		}
		seen[trimmed] = struct{}{}
		unique = append(unique, trimmed)
	}
	return unique
}

// CollapseSpace trims value and folds runs of whitespace, including
// full-width spaces, into a single ASCII space.
func CollapseSpace(value string) string {
	return strings.Join(strings.FieldsFunc(value, unicode.IsSpace), " ")
}

func boundedWindow(page string, start int, size int) string {
	end := start + size
	if end >= len(page) {
		return page[start:]
	}
	for end > start && !utf8.RuneStart(page[end]) {
		end--
	}
	return page[start:end]
}
