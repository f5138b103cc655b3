package linkextract

import (
	"reflect"
	"strings"
	"testing"
)

func newDDGExtractor(t *testing.T) *Extractor {
	t.Helper()
	extractor, err := New("https://duckduckgo.com", Options{ExternalOnly: true})
	if err != nil {
		t.Fatalf("new extractor: %v", err)
	}
	return extractor
}

func TestFromHTMLHandlesQuotingStylesAndRedirects(t *testing.T) {
	body := `
<html><body>
<table>
<tr><td><a rel="nofollow" href="//duckduckgo.com/l/?uddg=https%3A%2F%2Fwww.69shuba.com%2Fbook%2F12345.htm&amp;rut=abc" class='result-link'>万相之王</a></td></tr>
<tr><td><a href='https://twkan.com/book/777.html'>single</a></td></tr>
<tr><td><a href=https://www.qimao.com/shuku/42 >unquoted</a></td></tr>
<tr><td><a href="/html/?q=next">next page</a></td></tr>
<tr><td><a href="https://duckduckgo.com/settings">settings</a></td></tr>
<tr><td><a href="javascript:void(0)">js</a></td></tr>
<tr><td><a href="mailto:someone@example.com">mail</a></td></tr>
<tr><td><a HREF="https://twkan.com/book/777.html">duplicate</a></td></tr>
<tr><td><a href="#top">anchor</a>
</body></html>`

	got := newDDGExtractor(t).FromHTML(body)
	want := []string{
		"https://www.69shuba.com/book/12345.htm",
		"https://twkan.com/book/777.html",
		"https://www.qimao.com/shuku/42",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected links:\n got %v\nwant %v", got, want)
	}
}

func TestFromHTMLKeepsSelfLinksWhenNotExternalOnly(t *testing.T) {
	extractor, err := New("https://lite.duckduckgo.com", Options{})
	if err != nil {
		t.Fatalf("new extractor: %v", err)
	}

	got := extractor.FromHTML(`<a href="/lite/?q=x&s=30">more</a>`)
	if len(got) != 1 || got[0] != "https://lite.duckduckgo.com/lite/?q=x&s=30" {
		t.Fatalf("expected resolved self link, got %v", got)
	}
}

func TestFromHTMLNeverReturnsNonHTTPOrDuplicates(t *testing.T) {
	inputs := []string{
		`<a href="ftp://files.example.com/a">x</a><a href="data:text/plain,hi">y</a>`,
		`<a href="https://a.example/1"><a href='https://a.example/1'><a href=https://a.example/1>`,
		`<a href="//duckduckgo.com/l/?uddg=ftp%3A%2F%2Fx.example%2F">wrapped ftp</a>`,
		`<div><a href="https://b.example/?x=1&amp;y=2">amp</a><a href=https://b.example/?x=1&y=2>raw</a>`,
		`<<<a href="https://broken.example/">unterminated`,
	}

	extractor := newDDGExtractor(t)
	for _, input := range inputs {
		links := extractor.FromHTML(input)
		seen := map[string]bool{}
		for _, link := range links {
			if !strings.HasPrefix(link, "http://") && !strings.HasPrefix(link, "https://") {
				t.Fatalf("non-http link %q from %q", link, input)
			}
			if seen[link] {
				t.Fatalf("duplicate link %q from %q", link, input)
			}
			seen[link] = true
		}
	}
}

func TestFromHTMLUnwrapsGoogleStyleRedirect(t *testing.T) {
	extractor, err := New("https://www.google.com", Options{ExternalOnly: true})
	if err != nil {
		t.Fatalf("new extractor: %v", err)
	}

	got := extractor.FromHTML(`<a href="/url?q=https://uukanshu.cc/book/9/&sa=U">r</a>`)
	if len(got) != 1 || got[0] != "https://uukanshu.cc/book/9/" {
		t.Fatalf("expected unwrapped link, got %v", got)
	}
}

func TestFromHTMLDoesNotUnwrapForeignQueryParams(t *testing.T) {
	got := newDDGExtractor(t).FromHTML(`<a href="https://site.example/go?url=https%3A%2F%2Fother.example%2F">x</a>`)
	if len(got) != 1 || got[0] != "https://site.example/go?url=https%3A%2F%2Fother.example%2F" {
		t.Fatalf("expected foreign link untouched, got %v", got)
	}
}

func TestFromJSON(t *testing.T) {
	extractor, err := New("https://searx.example", Options{ExternalOnly: true})
	if err != nil {
		t.Fatalf("new extractor: %v", err)
	}

	body := []byte(`{"query":"x","results":[
		{"url":"https://www.69shuba.com/book/1.htm","title":"a"},
		{"url":"https://www.69shuba.com/book/1.htm"},
		{"url":"https://searx.example/preferences"},
		{"title":"no url"},
		{"url":"gopher://old.example/"},
		{"url":"https://twkan.com/book/2.html"}
	]}`)

	got, err := extractor.FromJSON(body, "", "")
	if err != nil {
		t.Fatalf("from json: %v", err)
	}
	want := []string{"https://www.69shuba.com/book/1.htm", "https://twkan.com/book/2.html"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected links: got %v want %v", got, want)
	}

	if _, err := extractor.FromJSON([]byte(`<html>blocked</html>`), "results", "url"); err == nil {
		t.Fatalf("expected decode error for html payload")
	}
	if _, err := extractor.FromJSON([]byte(`{"data":{}}`), "results", "url"); err == nil {
		t.Fatalf("expected error for missing results array")
	}
}

func TestFromText(t *testing.T) {
	body := `Title: DuckDuckGo

1. [万相之王](https://duckduckgo.com/l/?uddg=https%3A%2F%2Fwww.69shuba.com%2Fbook%2F12345.htm&rut=1)
2. See https://twkan.com/book/777.html.
3. [Settings](https://duckduckgo.com/settings)`

	got := newDDGExtractor(t).FromText(body)
	want := []string{"https://www.69shuba.com/book/12345.htm", "https://twkan.com/book/777.html"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected links: got %v want %v", got, want)
	}
}

func TestNewRejectsRelativeOrigin(t *testing.T) {
	if _, err := New("/relative", Options{}); err == nil {
		t.Fatalf("expected error for relative origin")
	}
}
