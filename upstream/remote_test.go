package upstream_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"live-dashboard/upstream"
)

func TestMockSource(t *testing.T) {
	ctx := context.Background()
	var src upstream.Source = upstream.Mock{}

	quotes, err := src.Stocks(ctx, []string{"nflx", "NOPE", "AAPL"})
	require.NoError(t, err)
	require.Len(t, quotes, 2)
	assert.Equal(t, "NFLX", quotes[0].Symbol)
	assert.Equal(t, "AAPL", quotes[1].Symbol)

	news, err := src.News(ctx, "Crypto")
	require.NoError(t, err)
	require.NotEmpty(t, news)
	for _, n := range news {
		assert.Equal(t, "Crypto", n.Category)
	}

	scores, err := src.Sports(ctx, "NBA")
	require.NoError(t, err)
	require.NotEmpty(t, scores)
	for _, s := range scores {
		assert.Equal(t, "NBA", s.League)
	}
	all, err := src.Sports(ctx, "")
	require.NoError(t, err)
	assert.Greater(t, len(all), len(scores))
}

func TestSocialFeed(t *testing.T) {
	handle, posts := upstream.SocialFeed("  ")
	assert.Equal(t, upstream.DefaultSocialHandle, handle)
	assert.Len(t, posts, 3)

	handle, _ = upstream.SocialFeed("@ft")
	assert.Equal(t, "@ft", handle)
}

func TestRemoteSource(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		switch r.URL.Path {
		case "/functions/v1/stocks":
			var req upstream.StocksRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, []string{"NFLX"}, req.Symbols)
			writeJSON(w, upstream.StocksResponse{Stocks: []upstream.StockQuote{{Symbol: "NFLX", Price: 1}}})
		case "/functions/v1/news":
			var req upstream.NewsRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "Tech", req.Category)
			writeJSON(w, upstream.NewsResponse{News: []upstream.NewsItem{{ID: "n1"}}})
		case "/functions/v1/sports":
			w.WriteHeader(http.StatusInternalServerError)
			writeJSON(w, upstream.ErrorResponse{Error: "league feed down"})
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	remote := upstream.NewRemote(srv.URL + "/functions/v1/")
	ctx := context.Background()

	quotes, err := remote.Stocks(ctx, []string{"NFLX"})
	require.NoError(t, err)
	assert.Equal(t, []upstream.StockQuote{{Symbol: "NFLX", Price: 1}}, quotes)

	news, err := remote.News(ctx, "Tech")
	require.NoError(t, err)
	assert.Equal(t, "n1", news[0].ID)

	_, err = remote.Sports(ctx, "")
	var se *upstream.StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusInternalServerError, se.Code)
	assert.Equal(t, "league feed down", se.Message)
}
