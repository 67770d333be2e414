// Package search fetches background text for a study topic from the web.
package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultBaseURL = "https://api.duckduckgo.com"
	defaultTimeout = 20 * time.Second
	maxRelated     = 8
)

// ErrNoResults is returned when a query produced no usable text.
var ErrNoResults = errors.New("search returned no results")

// WebSearcher returns a text blob of results for a query.
type WebSearcher interface {
	Search(ctx context.Context, query string) (string, error)
}

// DuckDuckGo queries the DuckDuckGo Instant Answer API.
type DuckDuckGo struct {
	baseURL string
	client  *http.Client
}

// Option configures a DuckDuckGo client.
type Option func(*DuckDuckGo)

// WithBaseURL overrides the API base URL.
func WithBaseURL(u string) Option {
	return func(d *DuckDuckGo) {
		d.baseURL = strings.TrimRight(u, "/")
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(d *DuckDuckGo) {
		d.client = c
	}
}

// NewDuckDuckGo creates a search client.
func NewDuckDuckGo(opts ...Option) *DuckDuckGo {
	d := &DuckDuckGo{
		baseURL: defaultBaseURL,
		client:  http.DefaultClient,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

type relatedTopic struct {
	Text   string         `json:"Text"`
	Topics []relatedTopic `json:"Topics"`
}

type instantAnswer struct {
	Heading       string         `json:"Heading"`
	AbstractText  string         `json:"AbstractText"`
	Answer        string         `json:"Answer"`
	Definition    string         `json:"Definition"`
	RelatedTopics []relatedTopic `json:"RelatedTopics"`
}

// Search returns the abstract and related-topic snippets for query, one per
// line.
func (d *DuckDuckGo) Search(ctx context.Context, query string) (string, error) {
	q := url.Values{}
	q.Set("q", query)
	q.Set("format", "json")
	q.Set("no_html", "1")
	q.Set("skip_disambig", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.baseURL+"/?"+q.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("search api error (status %d)", resp.StatusCode)
	}

	var ia instantAnswer
	if err := json.Unmarshal(body, &ia); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}

	var parts []string
	for _, s := range []string{ia.AbstractText, ia.Answer, ia.Definition} {
		if s = strings.TrimSpace(s); s != "" {
			parts = append(parts, s)
		}
	}
	parts = appendTopics(parts, ia.RelatedTopics)

	if len(parts) == 0 {
		return "", fmt.Errorf("%q: %w", query, ErrNoResults)
	}
	return strings.Join(parts, "\n"), nil
}

// appendTopics flattens grouped related topics, capped at maxRelated
// snippets beyond the abstract.
func appendTopics(parts []string, topics []relatedTopic) []string {
	limit := len(parts) + maxRelated
	var walk func([]relatedTopic)
	walk = func(ts []relatedTopic) {
		for _, t := range ts {
			if len(parts) >= limit {
				return
			}
			if s := strings.TrimSpace(t.Text); s != "" {
				parts = append(parts, s)
			}
			walk(t.Topics)
		}
	}
	walk(topics)
	return parts
}

// FallbackText is the placeholder returned when search is unavailable.
func FallbackText(query string) string {
	return "Overview of " + query + ": [Fallback Content]"
}

type fallbackSearcher struct {
	next    WebSearcher
	timeout time.Duration
}

// WithFallback wraps s so that every call is bounded by timeout (zero selects
// 20s) and any failure yields FallbackText instead of an error.
func WithFallback(s WebSearcher, timeout time.Duration) WebSearcher {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &fallbackSearcher{next: s, timeout: timeout}
}

func (f *fallbackSearcher) Search(ctx context.Context, query string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	out, err := f.next.Search(ctx, query)
	if err == nil && strings.TrimSpace(out) == "" {
		err = ErrNoResults
	}
	if err != nil {
		slog.Warn("web search unavailable, using fallback content",
			"query", query,
			"error", err,
		)
		return FallbackText(query), nil
	}
	return out, nil
}
