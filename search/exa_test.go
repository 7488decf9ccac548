package search

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/use-agent/filmreview/models"
)

func TestClient_Reviews(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get("x-api-key"))

		var req searchRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "keyword", req.Type)
		assert.Equal(t, []string{"quinlan.it", "ilpost.it"}, req.IncludeDomains)
		assert.Equal(t, 6, req.NumResults)

		n := calls.Add(1)
		if n == 2 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"results": []map[string]string{
				{"url": "https://www.quinlan.it/2025/la-grazia", "title": " La grazia "},
				{"url": "https://www.ilpost.it/la-grazia-sorrentino"},
			},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.Client(), srv.URL+"/", "secret", 0)
	hits, err := c.Reviews(context.Background(), "La grazia", 2025, []string{"quinlan.it", "ilpost.it"})
	require.NoError(t, err)

	assert.Equal(t, int32(3), calls.Load())
	require.Len(t, hits, 2)
	assert.Equal(t, "La grazia", hits[0].Title)
	assert.Equal(t, "https://www.ilpost.it/la-grazia-sorrentino", hits[1].URL)
}

func TestClient_ReviewsAllFail(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"invalid api key"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.Client(), srv.URL, "bad", 6)
	_, err := c.Reviews(context.Background(), "La grazia", 2025, nil)

	var xe *models.ExtractError
	require.True(t, errors.As(err, &xe))
	assert.Equal(t, models.ErrCodeUnauthorized, xe.Code)
	assert.Equal(t, "invalid api key", xe.Message)
}
