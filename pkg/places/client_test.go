package places

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTextSearch_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/places:searchText", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("X-Goog-Api-Key"))
		assert.Contains(t, r.Header.Get("X-Goog-FieldMask"), "places.reviews")

		var body textSearchRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Desert Comfort Heating & Air", body.TextQuery)
		assert.Equal(t, 1, body.PageSize)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"places":[{
			"displayName":{"text":"Desert Comfort Heating & Air"},
			"rating":4.6,
			"userRatingCount":212,
			"reviews":[{"rating":5,"text":{"text":"Fast and professional"},"publishTime":"2025-05-20T15:04:05Z"}]
		}]}`))
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	resp, err := client.TextSearch(context.Background(), "Desert Comfort Heating & Air")

	require.NoError(t, err)
	require.Len(t, resp.Places, 1)
	p := resp.Places[0]
	assert.Equal(t, "Desert Comfort Heating & Air", p.DisplayName.Text)
	assert.InDelta(t, 4.6, p.Rating, 0.001)
	assert.Equal(t, 212, p.UserRatingCount)
	require.Len(t, p.Reviews, 1)
	assert.Equal(t, "Fast and professional", p.Reviews[0].Text.Text)
	assert.Equal(t, 2025, p.Reviews[0].PublishTime.Year())
}

func TestTextSearch_NoResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(TextSearchResponse{Places: nil})
	}))
	defer srv.Close()

	resp, err := NewClient("test-key", WithBaseURL(srv.URL)).TextSearch(context.Background(), "Nonexistent Corp")
	require.NoError(t, err)
	assert.Empty(t, resp.Places)
}

func TestTextSearch_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":"API key invalid"}`))
	}))
	defer srv.Close()

	_, err := NewClient("bad", WithBaseURL(srv.URL)).TextSearch(context.Background(), "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status 403")

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusForbidden, apiErr.StatusCode)
}

func TestTextSearch_BadJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	_, err := NewClient("k", WithBaseURL(srv.URL)).TextSearch(context.Background(), "x")
	assert.ErrorContains(t, err, "unmarshal response")
}

func TestWithHTTPClient(t *testing.T) {
	hc := &http.Client{}
	c := NewClient("k", WithHTTPClient(hc), WithBaseURL("")).(*httpClient)
	assert.Same(t, hc, c.http)
	assert.Equal(t, defaultBaseURL, c.baseURL)
}
