// Package digikey provides a client for the DigiKey Product Search v4 API.
package digikey

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/partsignal/sourcing-cli/internal/resilience"
)

const (
	defaultBaseURL  = "https://api.digikey.com"
	defaultTokenURL = "https://api.digikey.com/v1/oauth2/token"
	searchPath      = "/products/v4/search/keyword"
)

// ErrAuth marks a failed client-credentials token acquisition. Callers treat
// it as fatal for the current DigiKey call only.
var ErrAuth = eris.New("digikey: token acquisition failed")

// Client performs keyword searches against the DigiKey API.
type Client interface {
	SearchKeyword(ctx context.Context, keyword string) (*SearchResponse, error)
}

// SearchResponse is the keyword search result. Products stay raw because the
// field set varies by API version; the adapter layer probes them.
type SearchResponse struct {
	ProductsCount int              `json:"ProductsCount"`
	Products      []map[string]any `json:"Products"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the API base URL.
func WithBaseURL(u string) Option {
	return func(c *httpClient) { c.baseURL = u }
}

// WithTokenURL overrides the OAuth token endpoint.
func WithTokenURL(u string) Option {
	return func(c *httpClient) { c.tokenURL = u }
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
	clientID     string
	clientSecret string
	baseURL      string
	tokenURL     string
	http         *http.Client
	limiter      *rate.Limiter

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time
}

// NewClient creates a DigiKey API client with client-credentials auth.
func NewClient(clientID, clientSecret string, opts ...Option) Client {
	c := &httpClient{
		clientID:     clientID,
		clientSecret: clientSecret,
		baseURL:      defaultBaseURL,
		tokenURL:     defaultTokenURL,
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

// SearchKeyword searches the catalog for a keyword (typically a part
// number). Tokens are fetched lazily and cached until shortly before expiry.
func (c *httpClient) SearchKeyword(ctx context.Context, keyword string) (*SearchResponse, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "digikey: rate limit wait")
		}
	}

	token, err := c.accessToken(ctx)
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(map[string]any{
		"keywords": keyword,
		"limit":    10,
		"offset":   0,
	})
	if err != nil {
		return nil, eris.Wrap(err, "digikey: marshal search request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+searchPath, bytes.NewReader(body))
	if err != nil {
		return nil, eris.Wrap(err, "digikey: create search request")
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("X-DIGIKEY-Client-Id", c.clientID)
	req.Header.Set("X-DIGIKEY-Locale-Site", "US")
	req.Header.Set("X-DIGIKEY-Locale-Language", "en")
	req.Header.Set("X-DIGIKEY-Locale-Currency", "USD")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "digikey: send search request")
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "digikey: read search response")
	}

	if resp.StatusCode != http.StatusOK {
		err := eris.Errorf("digikey: search status %d: %s", resp.StatusCode, string(respBody))
		if resilience.IsTransientHTTPStatus(resp.StatusCode) {
			return nil, resilience.NewTransientError(err, resp.StatusCode)
		}
		return nil, err
	}

	var result SearchResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, eris.Wrap(err, "digikey: unmarshal search response")
	}

	return &result, nil
}

// accessToken returns a cached token or fetches a new one via the
// client-credentials grant.
func (c *httpClient) accessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && time.Now().Before(c.tokenExpiry) {
		return c.token, nil
	}

	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_id", c.clientID)
	form.Set("client_secret", c.clientSecret)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", eris.Wrap(err, "digikey: create token request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", eris.Wrap(ErrAuth, err.Error())
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", eris.Wrap(err, "digikey: read token response")
	}

	if resp.StatusCode != http.StatusOK {
		return "", eris.Wrapf(ErrAuth, "status %d: %s", resp.StatusCode, string(respBody))
	}

	var tok tokenResponse
	if err := json.Unmarshal(respBody, &tok); err != nil {
		return "", eris.Wrap(err, "digikey: unmarshal token response")
	}
	if tok.AccessToken == "" {
		return "", eris.Wrap(ErrAuth, "empty access_token in response")
	}

	c.token = tok.AccessToken
	// Refresh one minute early so an expiring token never rides a request.
	ttl := time.Duration(tok.ExpiresIn) * time.Second
	if ttl > time.Minute {
		ttl -= time.Minute
	}
	c.tokenExpiry = time.Now().Add(ttl)

	return c.token, nil
}
