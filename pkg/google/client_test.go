package google

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/venture-watch/internal/resilience"
)

func fastRetry() Option {
	return WithRetry(resilience.RetryConfig{MaxAttempts: 3, InitialBackoff: time.Millisecond, MaxBackoff: time.Millisecond})
}

func TestSearch_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/customsearch/v1", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "test-key", q.Get("key"))
		assert.Equal(t, "cse-1", q.Get("cx"))
		assert.Equal(t, "startup raises seed", q.Get("q"))
		assert.Equal(t, "d7", q.Get("dateRestrict"))
		assert.Equal(t, "10", q.Get("num"))
		assert.Empty(t, q.Get("start"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"searchInformation": {"totalResults": "42"},
			"queries": {"nextPage": [{"startIndex": 11}]},
			"items": [{
				"title": "Acme raises $12M Series A",
				"link": "https://techcrunch.com/2026/03/02/acme/",
				"snippet": "Acme, a San Francisco-based fintech...",
				"displayLink": "techcrunch.com",
				"pagemap": {"metatags": [{"og:type": "article"}, {"article:published_time": "2026-03-02T10:00:00Z"}]}
			}]
		}`))
	}))
	defer srv.Close()

	client := NewClient("test-key", "cse-1", WithBaseURL(srv.URL), fastRetry())
	resp, err := client.Search(context.Background(), SearchRequest{Query: "startup raises seed", DaysBack: 7})

	require.NoError(t, err)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "Acme raises $12M Series A", resp.Items[0].Title)
	assert.Equal(t, "2026-03-02T10:00:00Z", resp.Items[0].PublishedTime())
	assert.Equal(t, "42", resp.SearchInformation.TotalResults)
	assert.Equal(t, 11, resp.NextStart())
}

func TestSearch_Paging(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "11", r.URL.Query().Get("start"))
		assert.Equal(t, "5", r.URL.Query().Get("num"))
		assert.Empty(t, r.URL.Query().Get("dateRestrict"))
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	client := NewClient("k", "cx", WithBaseURL(srv.URL), fastRetry())
	resp, err := client.Search(context.Background(), SearchRequest{Query: "q", Num: 5, Start: 11})

	require.NoError(t, err)
	assert.Empty(t, resp.Items)
	assert.Zero(t, resp.NextStart())
}

func TestSearch_EmptyQuery(t *testing.T) {
	client := NewClient("k", "cx")
	_, err := client.Search(context.Background(), SearchRequest{Query: "  "})
	assert.Error(t, err)
}

func TestSearch_APIError(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error": {"message": "API key not valid"}}`))
	}))
	defer srv.Close()

	client := NewClient("bad-key", "cx", WithBaseURL(srv.URL), fastRetry())
	resp, err := client.Search(context.Background(), SearchRequest{Query: "test"})

	assert.Error(t, err)
	assert.Nil(t, resp)
	assert.Contains(t, err.Error(), "403")
	assert.Equal(t, int32(1), calls.Load())
}

func TestSearch_RateLimitedThenOK(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte(`{"items":[{"title":"t","link":"https://x.example/a"}]}`))
	}))
	defer srv.Close()

	client := NewClient("k", "cx", WithBaseURL(srv.URL), fastRetry())
	resp, err := client.Search(context.Background(), SearchRequest{Query: "q"})

	require.NoError(t, err)
	assert.Len(t, resp.Items, 1)
	assert.Equal(t, int32(3), calls.Load())
}

func TestSearch_ContextCanceled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := NewClient("k", "cx", WithBaseURL(srv.URL), fastRetry())
	resp, err := client.Search(ctx, SearchRequest{Query: "test"})

	assert.Error(t, err)
	assert.Nil(t, resp)
}
