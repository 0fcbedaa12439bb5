// Package directory is a client for a licensed small-business directory API.
package directory

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

// Client searches the business directory.
type Client interface {
	Search(ctx context.Context, req SearchRequest) (*SearchResponse, error)
}

// SearchRequest filters a directory search. Zero values are omitted.
type SearchRequest struct {
	Industry     string
	City         string
	State        string
	MinRevenue   int64
	MaxRevenue   int64
	MinEmployees int64
	MaxEmployees int64
	Limit        int
}

// SearchResponse is a page of directory results.
type SearchResponse struct {
	Businesses []Business `json:"businesses"`
	Total      int        `json:"total"`
}

// Business is a directory listing.
type Business struct {
	Name            string            `json:"name"`
	Address         string            `json:"address"`
	Phone           string            `json:"phone"`
	Website         string            `json:"website"`
	Category        string            `json:"category"`
	AnnualRevenue   *float64          `json:"annual_revenue"`
	Employees       *int              `json:"employees"`
	OwnerName       string            `json:"owner_name"`
	OwnerEmail      string            `json:"owner_email"`
	YearEstablished *int              `json:"year_established"`
	Social          map[string]string `json:"social"`
}

// APIError is returned for non-200 responses.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("directory: unexpected status %d: %s", e.StatusCode, e.Body)
}

// HTTPStatus returns the response status code.
func (e *APIError) HTTPStatus() int { return e.StatusCode }

// Option configures the client.
type Option func(*httpClient)

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) { c.http = hc }
}

// WithRateLimit sets the requests-per-second limit.
func WithRateLimit(rps float64) Option {
	return func(c *httpClient) {
		burst := int(rps)
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *httpClient) { c.http.Timeout = d }
}

type httpClient struct {
	baseURL string
	apiKey  string
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient creates a directory API client.
func NewClient(baseURL, apiKey string, opts ...Option) Client {
	c := &httpClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 20 * time.Second},
		limiter: rate.NewLimiter(5, 5),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (r SearchRequest) values() url.Values {
	v := url.Values{}
	set := func(k, s string) {
		if s != "" {
			v.Set(k, s)
		}
	}
	setInt := func(k string, n int64) {
		if n > 0 {
			v.Set(k, strconv.FormatInt(n, 10))
		}
	}
	set("industry", r.Industry)
	set("city", r.City)
	set("state", r.State)
	setInt("min_revenue", r.MinRevenue)
	setInt("max_revenue", r.MaxRevenue)
	setInt("min_employees", r.MinEmployees)
	setInt("max_employees", r.MaxEmployees)
	setInt("limit", int64(r.Limit))
	return v
}

func (c *httpClient) Search(ctx context.Context, sr SearchRequest) (*SearchResponse, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "directory: rate limit")
	}

	reqURL := c.baseURL + "/v1/businesses/search"
	if q := sr.values().Encode(); q != "" {
		reqURL += "?" + q
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "directory: create request")
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "directory: send request")
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "directory: read response")
	}

	if resp.StatusCode != http.StatusOK {
		snippet := string(body)
		if len(snippet) > 256 {
			snippet = snippet[:256]
		}
		return nil, &APIError{StatusCode: resp.StatusCode, Body: snippet}
	}

	var result SearchResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, eris.Wrap(err, "directory: unmarshal response")
	}
	return &result, nil
}
