// Package websearch supplements memory retrieval with live web results.
// The client talks to a SearXNG-compatible JSON search endpoint and is
// rate limited so agentic loops cannot hammer the upstream service.
package websearch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// Result holds a single web search result.
type Result struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}

// Config holds web search parameters.
type Config struct {
	Enabled    bool
	BaseURL    string
	MaxResults int
	Timeout    time.Duration
	// RatePerSecond caps outbound queries. Zero means one per second.
	RatePerSecond float64
}

// DefaultConfig returns the stock web search configuration. The endpoint
// must still be set before the client is usable.
func DefaultConfig() Config {
	return Config{
		Enabled:       false,
		MaxResults:    3,
		Timeout:       10 * time.Second,
		RatePerSecond: 1,
	}
}

// Client queries the configured search endpoint.
type Client struct {
	baseURL    string
	maxResults int
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient creates a web search client from config. Returns nil when the
// feature is disabled or no endpoint is configured; callers treat a nil
// client as "web search off".
func NewClient(cfg Config) *Client {
	if !cfg.Enabled || cfg.BaseURL == "" {
		return nil
	}
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = 3
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.RatePerSecond <= 0 {
		cfg.RatePerSecond = 1
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		maxResults: cfg.MaxResults,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		limiter:    rate.NewLimiter(rate.Limit(cfg.RatePerSecond), 1),
	}
}

// searchResponse mirrors the SearXNG JSON schema; Content maps onto our
// Snippet field.
type searchResponse struct {
	Results []struct {
		Title   string `json:"title"`
		URL     string `json:"url"`
		Content string `json:"content"`
	} `json:"results"`
}

// Search runs one query against the endpoint, honoring the rate limit.
func (c *Client) Search(ctx context.Context, query string) ([]Result, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/search?q=%s&format=json", c.baseURL, url.QueryEscape(query))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("building search request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("web search request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("web search returned status %d", resp.StatusCode)
	}

	var parsed searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decoding web search response: %w", err)
	}

	results := make([]Result, 0, c.maxResults)
	for _, r := range parsed.Results {
		if len(results) >= c.maxResults {
			break
		}
		results = append(results, Result{Title: r.Title, URL: r.URL, Snippet: r.Content})
	}
	return results, nil
}

// FormatAsEvidence converts web results to a text block suitable for
// injection alongside retrieved memory excerpts in an LLM prompt.
func FormatAsEvidence(results []Result) string {
	if len(results) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("[Web Search Results]\n")
	for i, r := range results {
		fmt.Fprintf(&b, "%d. %s\n", i+1, r.Title)
		if r.Snippet != "" {
			fmt.Fprintf(&b, "   %s\n", r.Snippet)
		}
		if r.URL != "" {
			fmt.Fprintf(&b, "   Source: %s\n", r.URL)
		}
	}
	return b.String()
}
