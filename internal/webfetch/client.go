package webfetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	DefaultUserAgent = "Mozilla/5.0"
	maxBodyBytes     = 4 << 20
)

type Page struct {
	Status   int
	Body     string
	FinalURL string
}

func (p Page) OK() bool {
	return p.Status >= 200 && p.Status < 300
}

type Client struct {
	httpClient *http.Client
	userAgent  string
}

func NewClient(client *http.Client, userAgent string) *Client {
	if client == nil {
		client = &http.Client{Timeout: 12 * time.Second}
	}
	if strings.TrimSpace(userAgent) == "" {
		userAgent = DefaultUserAgent
	}
	return &Client{httpClient: client, userAgent: userAgent}
}

// Get issues one GET. A non-2xx status is not an error; the page is returned
// with its status so callers can record it.
func (c *Client) Get(ctx context.Context, endpoint string, accept string) (Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Page{}, fmt.Errorf("create request: %w", err)
	}

	if accept == "" {
		accept = "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", accept)
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return Page{}, fmt.Errorf("request failed: %w", err)
	}
	defer res.Body.Close()

	finalURL := endpoint
	if res.Request != nil && res.Request.URL != nil {
		finalURL = res.Request.URL.String()
	}

	rawBody, err := io.ReadAll(io.LimitReader(res.Body, maxBodyBytes))
	if err != nil {
		return Page{Status: res.StatusCode, FinalURL: finalURL}, fmt.Errorf("read response body: %w", err)
	}

	return Page{Status: res.StatusCode, Body: string(rawBody), FinalURL: finalURL}, nil
}

// GetText returns the body of a successful response, or "" on any failure.
func (c *Client) GetText(ctx context.Context, endpoint string) string {
	page, err := c.Get(ctx, endpoint, "")
	if err != nil || !page.OK() {
		return ""
	}
	return page.Body
}
