package searchengine

import (
	"fmt"
	"net/url"
	"strings"
)

const (
	KindHTML = "html"
	KindJSON = "json"
	KindText = "text"
)

// Config declares one search surface. Proxy, when set, is prefixed to the
// request URL so the page is fetched through a text-extraction service.
type Config struct {
	Key            string            `yaml:"key"`
	Enabled        *bool             `yaml:"enabled"`
	Kind           string            `yaml:"kind"`
	Endpoint       string            `yaml:"endpoint"`
	QueryParam     string            `yaml:"query_param"`
	ExtraParams    map[string]string `yaml:"extra_params"`
	Origin         string            `yaml:"origin"`
	Proxy          string            `yaml:"proxy"`
	MinBodyLength  int               `yaml:"min_body_length"`
	RedirectParams []string          `yaml:"redirect_params"`
	Response       struct {
		ItemsPath string `yaml:"items_path"`
		URLField  string `yaml:"url_field"`
	} `yaml:"response"`
}

func (c *Config) normalizeAndValidate() error {
	c.Key = strings.TrimSpace(c.Key)
	c.Kind = strings.ToLower(strings.TrimSpace(c.Kind))
	c.Endpoint = strings.TrimSpace(c.Endpoint)
	c.Proxy = strings.TrimSpace(c.Proxy)

	if c.Key == "" {
		return fmt.Errorf("key is required")
	}
	if c.Endpoint == "" {
		return fmt.Errorf("endpoint is required")
	}

	endpoint, err := url.Parse(c.Endpoint)
	if err != nil || !endpoint.IsAbs() || endpoint.Host == "" {
		return fmt.Errorf("endpoint %q must be an absolute url", c.Endpoint)
	}

	switch c.Kind {
	case "":
		c.Kind = KindHTML
	case KindHTML, KindJSON, KindText:
	default:
		return fmt.Errorf("unknown kind %q, expected html|json|text", c.Kind)
	}

	if strings.TrimSpace(c.QueryParam) == "" {
		c.QueryParam = "q"
	}
	if strings.TrimSpace(c.Origin) == "" {
		c.Origin = endpoint.Scheme + "://" + endpoint.Host
	}
	if c.MinBodyLength < 0 {
		c.MinBodyLength = 0
	}
	if strings.TrimSpace(c.Response.ItemsPath) == "" {
		c.Response.ItemsPath = "results"
	}
	if strings.TrimSpace(c.Response.URLField) == "" {
		c.Response.URLField = "url"
	}

	return nil
}

func (c *Config) isEnabled() bool {
	if c.Enabled == nil {
		return true
	}
	return *c.Enabled
}
