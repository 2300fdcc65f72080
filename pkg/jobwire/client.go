// Package jobwire provides a client for the Jobwire job-posting and web
// intelligence API.
package jobwire

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/sells-group/autoscout/internal/resilience"
)

// Client defines the Jobwire API operations.
type Client interface {
	// SearchJobs returns open postings matching the keywords.
	SearchJobs(ctx context.Context, keywords, location string, limit int) ([]Job, error)
	// Search performs a scoped web search (news, social, procurement,
	// profile) about a company.
	Search(ctx context.Context, query string, scope Scope) ([]Result, error)
}

// Scope narrows a web search to one evidence facet.
type Scope string

const (
	ScopeNews        Scope = "news"
	ScopeSocial      Scope = "social"
	ScopeProcurement Scope = "procurement"
	ScopeProfile     Scope = "profile"
)

// Job is a single posting returned by the API.
type Job struct {
	Title       string     `json:"title"`
	Company     string     `json:"company"`
	CompanyURL  string     `json:"company_url"`
	Location    string     `json:"location"`
	Description string     `json:"description"`
	URL         string     `json:"url"`
	PostedAt    *time.Time `json:"posted_at,omitempty"`
}

// Result is a single web search result.
type Result struct {
	Title       string     `json:"title"`
	URL         string     `json:"url"`
	Snippet     string     `json:"snippet"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
}

// Option configures the Jobwire client.
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
	limiter *rate.Limiter
}

// NewClient creates a new Jobwire client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: "https://api.jobwire.dev/v1",
		http: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 20,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		limiter: rate.NewLimiter(rate.Limit(5), 10),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *httpClient) getJSON(ctx context.Context, reqURL string, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return eris.Wrap(err, "jobwire: rate limiter")
	}

	return resilience.Do(ctx, resilience.DefaultRetryConfig(), func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return eris.Wrap(err, "jobwire: create request")
		}
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
		req.Header.Set("Accept", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			return eris.Wrap(err, "jobwire: request failed")
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return eris.Wrap(err, "jobwire: read response body")
		}

		if resilience.IsTransientHTTPStatus(resp.StatusCode) {
			return resilience.NewTransientError(
				eris.Errorf("jobwire: status %d: %s", resp.StatusCode, string(body)),
				resp.StatusCode,
			)
		}
		if resp.StatusCode != http.StatusOK {
			return eris.Errorf("jobwire: unexpected status %d: %s", resp.StatusCode, string(body))
		}

		return eris.Wrap(json.Unmarshal(body, out), "jobwire: decode response")
	})
}

func (c *httpClient) SearchJobs(ctx context.Context, keywords, location string, limit int) ([]Job, error) {
	q := url.Values{}
	q.Set("q", keywords)
	if location != "" {
		q.Set("location", location)
	}
	if limit > 0 {
		q.Set("limit", fmt.Sprintf("%d", limit))
	}

	var payload struct {
		Jobs []Job `json:"jobs"`
	}
	if err := c.getJSON(ctx, c.baseURL+"/jobs/search?"+q.Encode(), &payload); err != nil {
		return nil, err
	}
	return payload.Jobs, nil
}

func (c *httpClient) Search(ctx context.Context, query string, scope Scope) ([]Result, error) {
	q := url.Values{}
	q.Set("q", query)
	q.Set("scope", string(scope))

	var payload struct {
		Results []Result `json:"results"`
	}
	if err := c.getJSON(ctx, c.baseURL+"/search?"+q.Encode(), &payload); err != nil {
		return nil, err
	}
	return payload.Results, nil
}
