// Package census is a client for a demographic profile API serving
// ACS-derived metrics by place.
package census

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

// Client fetches demographic profiles.
type Client interface {
	Profile(ctx context.Context, location string) (*Profile, error)
}

// Profile is the demographic profile for one place.
type Profile struct {
	Place              string  `json:"place"`
	Population         int64   `json:"population"`
	MedianAge          float64 `json:"median_age"`
	PctOver55          float64 `json:"pct_over_55"`
	MedianIncome       float64 `json:"median_household_income"`
	Establishments     int64   `json:"establishments"`
	SmallBusinessPct   float64 `json:"small_business_pct"`
	SelfEmploymentRate float64 `json:"self_employment_rate"`
	LandAreaSqMi       float64 `json:"land_area_sq_mi"`
}

// APIError is returned for non-200, non-404 responses.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("census: unexpected status %d: %s", e.StatusCode, e.Body)
}

// HTTPStatus returns the response status code.
func (e *APIError) HTTPStatus() int { return e.StatusCode }

// ErrNotFound is returned when the API has no profile for a location.
var ErrNotFound = eris.New("census: location not found")

// Option configures the client.
type Option func(*httpClient)

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) { c.http = hc }
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *httpClient) { c.http.Timeout = d }
}

type httpClient struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// NewClient creates a census profile client.
func NewClient(baseURL, apiKey string, opts ...Option) Client {
	c := &httpClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *httpClient) Profile(ctx context.Context, location string) (*Profile, error) {
	reqURL := c.baseURL + "/v1/profile?" + url.Values{"location": {location}}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "census: create request")
	}
	req.Header.Set("X-Api-Key", c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "census: send request")
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "census: read response")
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, eris.Wrapf(ErrNotFound, "census: profile %q", location)
	case resp.StatusCode != http.StatusOK:
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var p Profile
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, eris.Wrap(err, "census: unmarshal response")
	}
	return &p, nil
}
