// Package wayback provides a client for the Internet Archive availability
// API, used to collect archived site snapshots.
package wayback

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"
)

// Client defines the snapshot lookup operation.
type Client interface {
	// Snapshots returns archived captures of the given URL, newest first.
	Snapshots(ctx context.Context, target string) ([]Snapshot, error)
}

// Snapshot is one archived capture.
type Snapshot struct {
	URL        string    `json:"url"`
	CapturedAt time.Time `json:"captured_at"`
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(u string) Option {
	return func(c *httpClient) { c.baseURL = u }
}

type httpClient struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a new Wayback client.
func NewClient(opts ...Option) Client {
	c := &httpClient{
		baseURL: "https://archive.org",
		http:    &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// availabilityResponse mirrors the archive.org wayback/available payload.
type availabilityResponse struct {
	ArchivedSnapshots struct {
		Closest struct {
			Available bool   `json:"available"`
			URL       string `json:"url"`
			Timestamp string `json:"timestamp"`
		} `json:"closest"`
	} `json:"archived_snapshots"`
}

func (c *httpClient) Snapshots(ctx context.Context, target string) ([]Snapshot, error) {
	reqURL := c.baseURL + "/wayback/available?" + url.Values{"url": {target}}.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "wayback: create request")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "wayback: request failed")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "wayback: read response body")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("wayback: unexpected status %d", resp.StatusCode)
	}

	var payload availabilityResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, eris.Wrap(err, "wayback: decode response")
	}

	closest := payload.ArchivedSnapshots.Closest
	if !closest.Available || closest.URL == "" {
		return nil, nil
	}

	capturedAt, err := time.Parse("20060102150405", closest.Timestamp)
	if err != nil {
		capturedAt = time.Time{}
	}
	return []Snapshot{{URL: closest.URL, CapturedAt: capturedAt}}, nil
}
