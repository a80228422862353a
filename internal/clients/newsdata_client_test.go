package clients

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newsDataServer(t *testing.T, status int, body string, check func(r *http.Request)) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if check != nil {
			check(r)
		}
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFetchLatest_Success(t *testing.T) {
	body := `{
		"status": "success",
		"totalResults": 2,
		"results": [
			{"article_id": "a1", "title": " Port expansion ", "link": "https://example.com/1",
			 "description": "desc", "content": "ONLY AVAILABLE IN PAID PLANS",
			 "pubDate": "2025-03-01 10:30:00", "image_url": "https://img.example.com/1.jpg",
			 "source_id": "thedailystar", "source_name": ""},
			{"article_id": "a2", "title": "Budget", "link": "https://example.com/2",
			 "description": "", "content": "full body", "pubDate": "garbage",
			 "image_url": "", "source_id": "prothomalo", "source_name": "Prothom Alo"}
		],
		"nextPage": "abc"
	}`
	srv := newsDataServer(t, http.StatusOK, body, func(r *http.Request) {
		q := r.URL.Query()
		require.Equal(t, "key", q.Get("apikey"))
		require.Equal(t, "sports", q.Get("category"))
		require.Equal(t, "10", q.Get("size"))
		require.Equal(t, "1", q.Get("image"))
		require.Equal(t, "bd", q.Get("country"))
		require.Equal(t, "en", q.Get("language"))
	})

	client := NewNewsDataClient("key", srv.URL, "bd", "en")
	articles, err := client.FetchLatest(context.Background(), "sports")
	require.NoError(t, err)
	require.Len(t, articles, 2)

	first := articles[0]
	require.Equal(t, "a1", first.ID)
	require.Equal(t, "Port expansion", first.Title)
	require.Empty(t, first.Content)
	require.Equal(t, "desc", first.Text())
	require.Equal(t, "thedailystar", first.SourceName)
	require.Equal(t, time.Date(2025, 3, 1, 10, 30, 0, 0, time.UTC), first.PublishedAt)

	second := articles[1]
	require.Equal(t, "Prothom Alo", second.SourceName)
	require.True(t, second.PublishedAt.IsZero())
	require.Equal(t, "full body", second.Text())
}

func TestFetchLatest_NullResults(t *testing.T) {
	srv := newsDataServer(t, http.StatusOK, `{"status":"success","results":null}`, nil)
	articles, err := NewNewsDataClient("key", srv.URL, "", "").FetchLatest(context.Background(), "top")
	require.NoError(t, err)
	require.Empty(t, articles)
}

func TestFetchLatest_ErrorStatusInBody(t *testing.T) {
	srv := newsDataServer(t, http.StatusOK,
		`{"status":"error","results":{"message":"quota exceeded","code":"RateLimitExceeded"}}`, nil)
	_, err := NewNewsDataClient("key", srv.URL, "", "").FetchLatest(context.Background(), "top")
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrUpstreamStatus))
	require.Contains(t, err.Error(), "quota exceeded")
}

func TestFetchLatest_HTTPErrors(t *testing.T) {
	for _, status := range []int{http.StatusUnauthorized, http.StatusTooManyRequests, http.StatusInternalServerError} {
		srv := newsDataServer(t, status, `{"status":"error"}`, nil)
		_, err := NewNewsDataClient("key", srv.URL, "", "").FetchLatest(context.Background(), "top")
		require.ErrorIs(t, err, ErrUpstreamStatus, "status %d", status)
	}
}

func TestFetchLatest_MissingKey(t *testing.T) {
	_, err := NewNewsDataClient("", "http://unused", "", "").FetchLatest(context.Background(), "top")
	require.ErrorContains(t, err, "API key is missing")
}
