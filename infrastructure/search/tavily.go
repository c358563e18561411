// Package search implements the evidence-lookup boundary against the
// Tavily search API. The client is a thin HTTP wrapper: it surfaces
// provider failures as errors and leaves the degrade-to-empty policy
// to its callers.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/averros/go-moot/internal/domain"
	"github.com/averros/go-moot/internal/ports"
)

// Defaults for evidence queries. Arguing agents use the full snippet
// budget; the judge's fact checks use a tighter one.
const (
	DefaultBaseURL    = "https://api.tavily.com"
	DefaultDepth      = "advanced"
	DefaultMaxResults = 3
	defaultTimeout    = 30 * time.Second
)

// Client queries the Tavily /search endpoint.
// Every invocation re-queries the service; there is no caching or
// deduplication across calls.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

var _ ports.SearchClient = (*Client)(nil)

// Option customizes a Client.
type Option func(*Client)

// WithBaseURL overrides the API endpoint, used by tests.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) { c.baseURL = baseURL }
}

// WithHTTPClient substitutes the underlying HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) { c.httpClient = httpClient }
}

// NewClient creates a Tavily client. The API key is required; one
// shared key serves every agent in a session.
func NewClient(apiKey string, opts ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("search API key cannot be empty")
	}

	c := &Client{
		apiKey:     apiKey,
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

type searchRequest struct {
	APIKey      string `json:"api_key"`
	Query       string `json:"query"`
	SearchDepth string `json:"search_depth"`
	MaxResults  int    `json:"max_results"`
}

type searchResponse struct {
	Results []struct {
		Title   string  `json:"title"`
		URL     string  `json:"url"`
		Content string  `json:"content"`
		Score   float64 `json:"score"`
	} `json:"results"`
}

// Search runs one query and returns at most opts.MaxResults snippets
// in provider order.
func (c *Client) Search(ctx context.Context, query string, opts ports.SearchOptions) ([]domain.EvidenceSnippet, error) {
	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}
	depth := opts.Depth
	if depth == "" {
		depth = DefaultDepth
	}

	body, err := json.Marshal(searchRequest{
		APIKey:      c.apiKey,
		Query:       query,
		SearchDepth: depth,
		MaxResults:  maxResults,
	})
	if err != nil {
		return nil, fmt.Errorf("encode search request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/search", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build search request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Read a little of the body for diagnostics; the caller only
		// needs to know the provider failed.
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("search provider returned HTTP %d: %s", resp.StatusCode, snippet)
	}

	var decoded searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	snippets := make([]domain.EvidenceSnippet, 0, maxResults)
	for _, r := range decoded.Results {
		if len(snippets) == maxResults {
			break
		}
		snippets = append(snippets, domain.EvidenceSnippet{
			Title:   r.Title,
			URL:     r.URL,
			Content: r.Content,
			Score:   r.Score,
		})
	}
	return snippets, nil
}
