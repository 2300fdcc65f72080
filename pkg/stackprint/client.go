// Package stackprint provides a client for the Stackprint technology
// fingerprint API.
package stackprint

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/autoscout/internal/resilience"
)

// Client defines the Stackprint lookup operation.
type Client interface {
	// Lookup returns the detected technology stack for a domain.
	Lookup(ctx context.Context, domain string) (*Profile, error)
}

// Profile is the technology fingerprint of one domain.
type Profile struct {
	Domain       string       `json:"domain"`
	Technologies []Technology `json:"technologies"`
}

// Technology is one detected stack entry.
type Technology struct {
	Name      string     `json:"name"`
	Category  string     `json:"category"`
	FirstSeen *time.Time `json:"first_seen,omitempty"`
	LastSeen  *time.Time `json:"last_seen,omitempty"`
}

// Option configures the Stackprint client.
type Option func(*httpClient)

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(u string) Option {
	return func(c *httpClient) { c.baseURL = u }
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) { c.http = hc }
}

type httpClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

// NewClient creates a new Stackprint client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: "https://api.stackprint.io/v1",
		http:    &http.Client{Timeout: 20 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *httpClient) Lookup(ctx context.Context, domain string) (*Profile, error) {
	reqURL := c.baseURL + "/lookup?" + url.Values{"domain": {domain}}.Encode()

	var profile Profile
	err := resilience.Do(ctx, resilience.DefaultRetryConfig(), func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return eris.Wrap(err, "stackprint: create request")
		}
		req.Header.Set("Authorization", "Bearer "+c.apiKey)

		resp, err := c.http.Do(req)
		if err != nil {
			return eris.Wrap(err, "stackprint: request failed")
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return eris.Wrap(err, "stackprint: read response body")
		}

		if resilience.IsTransientHTTPStatus(resp.StatusCode) {
			return resilience.NewTransientError(
				eris.Errorf("stackprint: status %d", resp.StatusCode),
				resp.StatusCode,
			)
		}
		if resp.StatusCode != http.StatusOK {
			return eris.Errorf("stackprint: unexpected status %d: %s", resp.StatusCode, string(body))
		}

		return eris.Wrap(json.Unmarshal(body, &profile), "stackprint: decode response")
	})
	if err != nil {
		return nil, err
	}
	return &profile, nil
}
