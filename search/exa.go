package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/use-agent/filmreview/models"
)

// Query templates for Italian criticism, filled with title and year.
var queryTemplates = []string{
	"%[1]s recensione film %[2]d",
	"cosa pensano i critici italiani di %[1]s",
	"%[1]s %[2]d critica cinematografica italiana",
}

// Hit is one search result.
type Hit struct {
	URL   string
	Title string
}

// Client is a minimal Exa search API client.
// It uses net/http directly; Exa publishes no Go SDK.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	numResults int
}

// NewClient creates a search client. Pass a nil httpClient to use a
// default one.
func NewClient(httpClient *http.Client, baseURL, apiKey string, numResults int) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if numResults <= 0 {
		numResults = 6
	}
	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		numResults: numResults,
	}
}

type searchRequest struct {
	Query          string   `json:"query"`
	Type           string   `json:"type"`
	IncludeDomains []string `json:"includeDomains,omitempty"`
	NumResults     int      `json:"numResults"`
}

type searchResponse struct {
	Results []struct {
		URL   string `json:"url"`
		Title string `json:"title"`
	} `json:"results"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Reviews runs every query template restricted to hosts and returns the
// hits in query order, without duplicates. A failing query is skipped as
// long as another one succeeds.
func (c *Client) Reviews(ctx context.Context, title string, year int, hosts []string) ([]Hit, error) {
	seen := make(map[string]struct{})
	var hits []Hit
	var lastErr error
	succeeded := 0

	for _, tmpl := range queryTemplates {
		query := fmt.Sprintf(tmpl, title, year)
		results, err := c.search(ctx, query, hosts)
		if err != nil {
			lastErr = err
			if ctx.Err() != nil {
				break
			}
			continue
		}
		succeeded++
		for _, h := range results {
			if _, dup := seen[h.URL]; dup || h.URL == "" {
				continue
			}
			seen[h.URL] = struct{}{}
			hits = append(hits, h)
		}
	}

	if succeeded == 0 && lastErr != nil {
		return nil, lastErr
	}
	return hits, nil
}

func (c *Client) search(ctx context.Context, query string, hosts []string) ([]Hit, error) {
	bodyBytes, err := json.Marshal(searchRequest{
		Query:          query,
		Type:           "keyword",
		IncludeDomains: hosts,
		NumResults:     c.numResults,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/search", bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, models.NewExtractError(models.ErrCodeSearchFailed, "search request failed", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, models.NewExtractError(models.ErrCodeSearchFailed, "failed to read search response", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, classifySearchError(resp.StatusCode, respBody)
	}

	var sr searchResponse
	if err := json.Unmarshal(respBody, &sr); err != nil {
		return nil, models.NewExtractError(models.ErrCodeSearchFailed, "failed to parse search response", err)
	}

	hits := make([]Hit, 0, len(sr.Results))
	for _, r := range sr.Results {
		hits = append(hits, Hit{URL: r.URL, Title: strings.TrimSpace(r.Title)})
	}
	return hits, nil
}

func classifySearchError(statusCode int, body []byte) *models.ExtractError {
	msg := "search API error"
	var errResp errorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error != "" {
		msg = errResp.Error
	}

	switch statusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return models.NewExtractError(models.ErrCodeUnauthorized, msg, nil)
	case http.StatusTooManyRequests:
		return models.NewExtractError(models.ErrCodeRateLimited, msg, nil)
	default:
		return models.NewExtractError(models.ErrCodeSearchFailed, fmt.Sprintf("search API returned %d: %s", statusCode, msg), nil)
	}
}
