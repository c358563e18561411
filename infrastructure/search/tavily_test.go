package search

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/averros/go-moot/internal/ports"
)

func TestNewClientRequiresKey(t *testing.T) {
	c, err := NewClient("")
	require.Error(t, err)
	assert.Nil(t, c)
}

func TestSearchRequestShape(t *testing.T) {
	var got searchRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		_ = json.NewEncoder(w).Encode(map[string]any{
			"results": []map[string]any{
				{"title": "Case study", "url": "https://example.com/a", "content": "snippet one", "score": 0.91},
			},
		})
	}))
	defer server.Close()

	client, err := NewClient("tvly-test", WithBaseURL(server.URL))
	require.NoError(t, err)

	snippets, err := client.Search(context.Background(), "open-plan courthouse precedent", ports.SearchOptions{
		MaxResults: 2,
		Depth:      "advanced",
	})
	require.NoError(t, err)

	assert.Equal(t, "tvly-test", got.APIKey)
	assert.Equal(t, "open-plan courthouse precedent", got.Query)
	assert.Equal(t, "advanced", got.SearchDepth)
	assert.Equal(t, 2, got.MaxResults)

	require.Len(t, snippets, 1)
	assert.Equal(t, "Case study", snippets[0].Title)
	assert.Equal(t, "https://example.com/a", snippets[0].URL)
	assert.Equal(t, "snippet one", snippets[0].Content)
	assert.Equal(t, 0.91, snippets[0].Score)
}

func TestSearchDefaults(t *testing.T) {
	var got searchRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_ = json.NewEncoder(w).Encode(searchResponse{})
	}))
	defer server.Close()

	client, err := NewClient("tvly-test", WithBaseURL(server.URL))
	require.NoError(t, err)

	_, err = client.Search(context.Background(), "q", ports.SearchOptions{})
	require.NoError(t, err)

	assert.Equal(t, DefaultDepth, got.SearchDepth)
	assert.Equal(t, DefaultMaxResults, got.MaxResults)
}

func TestSearchCapsResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"results": []map[string]any{
				{"content": "one"}, {"content": "two"}, {"content": "three"}, {"content": "four"},
			},
		})
	}))
	defer server.Close()

	client, err := NewClient("tvly-test", WithBaseURL(server.URL))
	require.NoError(t, err)

	snippets, err := client.Search(context.Background(), "q", ports.SearchOptions{MaxResults: 2})
	require.NoError(t, err)

	require.Len(t, snippets, 2)
	assert.Equal(t, "one", snippets[0].Content)
	assert.Equal(t, "two", snippets[1].Content)
}

func TestSearchProviderFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "usage limit exceeded", http.StatusTooManyRequests)
	}))
	defer server.Close()

	client, err := NewClient("tvly-test", WithBaseURL(server.URL))
	require.NoError(t, err)

	snippets, err := client.Search(context.Background(), "q", ports.SearchOptions{})
	require.Error(t, err)
	assert.Nil(t, snippets)
	assert.Contains(t, err.Error(), "HTTP 429")
	assert.Contains(t, err.Error(), "usage limit exceeded")
}

func TestSearchMalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not json"))
	}))
	defer server.Close()

	client, err := NewClient("tvly-test", WithBaseURL(server.URL))
	require.NoError(t, err)

	_, err = client.Search(context.Background(), "q", ports.SearchOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode search response")
}

func TestSearchContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	client, err := NewClient("tvly-test", WithBaseURL(server.URL))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = client.Search(ctx, "q", ports.SearchOptions{})
	require.Error(t, err)
}
