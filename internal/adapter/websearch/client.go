package websearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"course-orchestrator/internal/domain"

	"golang.org/x/time/rate"
)

// Client calls an external web search provider with a Tavily-compatible API.
// Requests are rate limited client-side; search providers meter aggressively
// and a gap-filling round fires several queries back to back.
type Client struct {
	BaseURL    string
	APIKey     string
	MaxResults int
	HTTPClient *http.Client
	limiter    *rate.Limiter
}

const defaultMaxResults = 5

// NewClient constructs a search client allowing ratePerSecond requests with
// a burst of one.
func NewClient(baseURL, apiKey string, maxResults int, ratePerSecond float64, httpClient *http.Client) *Client {
	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}
	if ratePerSecond <= 0 {
		ratePerSecond = 1
	}
	return &Client{
		BaseURL:    baseURL,
		APIKey:     apiKey,
		MaxResults: maxResults,
		HTTPClient: httpClient,
		limiter:    rate.NewLimiter(rate.Limit(ratePerSecond), 1),
	}
}

type searchRequest struct {
	Query      string `json:"query"`
	MaxResults int    `json:"max_results"`
	IncludeRaw bool   `json:"include_raw_content"`
}

type searchResponse struct {
	Results []struct {
		Title      string          `json:"title"`
		URL        string          `json:"url"`
		Content    json.RawMessage `json:"content"`
		RawContent json.RawMessage `json:"raw_content"`
	} `json:"results"`
}

// coerceContent renders provider content as plain text. Providers return a
// string in the common case, but some send a list of snippets or other JSON
// shapes for the same field.
func coerceContent(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}

	var parts []any
	if err := json.Unmarshal(raw, &parts); err == nil {
		texts := make([]string, 0, len(parts))
		for _, part := range parts {
			if str, ok := part.(string); ok {
				texts = append(texts, str)
				continue
			}
			texts = append(texts, fmt.Sprintf("%v", part))
		}
		return strings.Join(texts, "\n\n")
	}

	return string(raw)
}

func (c *Client) Search(ctx context.Context, query string) ([]domain.WebSearchResult, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait aborted: %w", err)
	}

	reqBody := searchRequest{
		Query:      query,
		MaxResults: c.MaxResults,
		IncludeRaw: true,
	}
	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal search request: %w", err)
	}

	url := fmt.Sprintf("%s/search", c.BaseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create search request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.APIKey)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: search request failed: %v", domain.ErrProviderUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search provider returned status: %d", resp.StatusCode)
	}

	var sResp searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&sResp); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}

	results := make([]domain.WebSearchResult, 0, len(sResp.Results))
	for _, r := range sResp.Results {
		content := coerceContent(r.RawContent)
		if content == "" {
			content = coerceContent(r.Content)
		}
		results = append(results, domain.WebSearchResult{
			Title:   r.Title,
			URL:     r.URL,
			Content: content,
		})
	}
	return results, nil
}

var _ domain.WebSearchClient = (*Client)(nil)
