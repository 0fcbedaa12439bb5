package directory

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearch_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/v1/businesses/search", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.Equal(t, "hvac", r.URL.Query().Get("industry"))
		assert.Equal(t, "Phoenix", r.URL.Query().Get("city"))
		assert.Equal(t, "AZ", r.URL.Query().Get("state"))
		assert.Equal(t, "100000", r.URL.Query().Get("min_revenue"))
		assert.Empty(t, r.URL.Query().Get("max_revenue"))
		assert.Equal(t, "25", r.URL.Query().Get("limit"))

		rev := 1_850_000.0
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(SearchResponse{
			Businesses: []Business{{Name: "Desert Comfort", Category: "hvac", AnnualRevenue: &rev}},
			Total:      1,
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/", "test-key")
	resp, err := c.Search(context.Background(), SearchRequest{
		Industry: "hvac", City: "Phoenix", State: "AZ", MinRevenue: 100_000, Limit: 25,
	})
	require.NoError(t, err)
	require.Len(t, resp.Businesses, 1)
	assert.Equal(t, "Desert Comfort", resp.Businesses[0].Name)
	assert.InDelta(t, 1_850_000, *resp.Businesses[0].AnnualRevenue, 0.001)
	assert.Nil(t, resp.Businesses[0].Employees)
}

func TestSearch_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":"slow down"}`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, "k").Search(context.Background(), SearchRequest{})
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusTooManyRequests, apiErr.StatusCode)
	assert.Contains(t, apiErr.Error(), "slow down")
}

func TestSearch_BadJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{not json`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, "k").Search(context.Background(), SearchRequest{})
	assert.ErrorContains(t, err, "unmarshal")
}

func TestSearch_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, "k", WithTimeout(20*time.Millisecond)).Search(context.Background(), SearchRequest{})
	assert.ErrorContains(t, err, "send request")
}

func TestSearch_RateLimitHonorsContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"businesses":[]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "k", WithRateLimit(0.5))
	_, err := c.Search(context.Background(), SearchRequest{})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = c.Search(ctx, SearchRequest{})
	assert.ErrorContains(t, err, "rate limit")
}

func TestSearchRequest_ValuesOmitZero(t *testing.T) {
	assert.Empty(t, SearchRequest{}.values())
}
