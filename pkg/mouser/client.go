// Package mouser provides a client for the Mouser Search API v1.
package mouser

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/partsignal/sourcing-cli/internal/resilience"
)

const (
	defaultBaseURL = "https://api.mouser.com"
	searchPath     = "/api/v1/search/partnumber"
)

// Client performs part-number searches against the Mouser API.
type Client interface {
	SearchPartNumber(ctx context.Context, partNumber string) (*SearchResponse, error)
}

// SearchResponse is the part-number search result envelope.
type SearchResponse struct {
	Errors        []APIError    `json:"Errors"`
	SearchResults SearchResults `json:"SearchResults"`
}

// APIError is a Mouser-reported request error.
type APIError struct {
	Code    string `json:"Code"`
	Message string `json:"Message"`
}

// SearchResults holds matched parts. Parts stay raw because field names vary
// by API version; the adapter layer probes them.
type SearchResults struct {
	NumberOfResult int              `json:"NumberOfResult"`
	Parts          []map[string]any `json:"Parts"`
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the API base URL.
func WithBaseURL(u string) Option {
	return func(c *httpClient) { c.baseURL = u }
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) { c.http = hc }
}

// WithRateLimit sets the client-side requests-per-second limit.
func WithRateLimit(rps float64) Option {
	return func(c *httpClient) {
		c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
}

type httpClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient creates a Mouser API client with static API-key auth.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 5 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// SearchPartNumber searches for an exact part number match.
func (c *httpClient) SearchPartNumber(ctx context.Context, partNumber string) (*SearchResponse, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "mouser: rate limit wait")
		}
	}

	body, err := json.Marshal(map[string]any{
		"SearchByPartRequest": map[string]string{
			"mouserPartNumber":  partNumber,
			"partSearchOptions": "Exact",
		},
	})
	if err != nil {
		return nil, eris.Wrap(err, "mouser: marshal search request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+searchPath+"?apiKey="+c.apiKey, bytes.NewReader(body))
	if err != nil {
		return nil, eris.Wrap(err, "mouser: create search request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "mouser: send search request")
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "mouser: read search response")
	}

	if resp.StatusCode != http.StatusOK {
		err := eris.Errorf("mouser: search status %d: %s", resp.StatusCode, string(respBody))
		if resilience.IsTransientHTTPStatus(resp.StatusCode) {
			return nil, resilience.NewTransientError(err, resp.StatusCode)
		}
		return nil, err
	}

	var result SearchResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, eris.Wrap(err, "mouser: unmarshal search response")
	}

	return &result, nil
}
