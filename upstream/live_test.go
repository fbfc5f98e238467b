package upstream_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"live-dashboard/upstream"
)

var fixedNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func newLive(t *testing.T, srv *httptest.Server, mutate func(*upstream.Config)) *upstream.Live {
	t.Helper()
	cfg := upstream.Config{
		FinnhubKey:  "fh-key",
		NewsAPIKey:  "news-key",
		FinnhubURL:  srv.URL,
		NewsAPIURL:  srv.URL,
		SportsDBURL: srv.URL,
		RateLimit:   1000,
		Burst:       100,
		Attempts:    3,
		HTTPClient:  srv.Client(),
		Now:         func() time.Time { return fixedNow },
	}
	if mutate != nil {
		mutate(&cfg)
	}
	return upstream.NewLive(cfg)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func TestStocksRoundsAndKeepsOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/quote", r.URL.Path)
		assert.Equal(t, "fh-key", r.URL.Query().Get("token"))
		switch r.URL.Query().Get("symbol") {
		case "AAPL":
			writeJSON(w, map[string]float64{"c": 190.123, "pc": 187.5})
		case "MSFT":
			writeJSON(w, map[string]float64{"c": 400, "pc": 410})
		case "ZERO":
			writeJSON(w, map[string]float64{"c": 0, "pc": 0, "d": 0})
		default:
			writeJSON(w, map[string]any{"c": nil})
		}
	}))
	defer srv.Close()

	got, err := newLive(t, srv, nil).Stocks(context.Background(), []string{"MSFT", "BOGUS", "AAPL", "ZERO"})
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, upstream.StockQuote{Symbol: "MSFT", Price: 400, Change: -10, ChangePercent: -2.44}, got[0])
	assert.Equal(t, upstream.StockQuote{Symbol: "AAPL", Price: 190.12, Change: 2.62, ChangePercent: 1.4}, got[1])
}

func TestStocksWithoutKeyDropsEverything(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer srv.Close()

	live := newLive(t, srv, func(c *upstream.Config) { c.FinnhubKey = "" })
	got, err := live.Stocks(context.Background(), []string{"AAPL", "MSFT"})
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Zero(t, hits.Load())
}

func TestStocksRetriesServerErrors(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			http.Error(w, `{"error":"busy"}`, http.StatusInternalServerError)
			return
		}
		writeJSON(w, map[string]float64{"c": 10, "pc": 8})
	}))
	defer srv.Close()

	got, err := newLive(t, srv, nil).Stocks(context.Background(), []string{"AAPL"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 25.0, got[0].ChangePercent)
	assert.Equal(t, int32(2), hits.Load())
}

func TestStocksDoesNotRetryClientErrors(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	got, err := newLive(t, srv, nil).Stocks(context.Background(), []string{"AAPL"})
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Equal(t, int32(1), hits.Load())
}

func TestNewsReshapesHeadlines(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/top-headlines", r.URL.Path)
		assert.Equal(t, "technology", r.URL.Query().Get("category"))
		assert.Equal(t, "us", r.URL.Query().Get("country"))

		type src struct {
			Name string `json:"name"`
		}
		type article struct {
			Title       string `json:"title"`
			URL         string `json:"url"`
			PublishedAt string `json:"publishedAt"`
			Source      src    `json:"source"`
		}
		articles := []article{
			{Title: "New AI software ships", PublishedAt: "2024-03-01T11:55:00Z", Source: src{"Wired"}},
			{Title: "[Removed]", PublishedAt: "2024-03-01T11:00:00Z"},
			{Title: "Oil slumps", PublishedAt: "2024-03-01T09:00:00Z"},
			{Title: "Bank merger approved", PublishedAt: "2024-02-27T12:00:00Z", Source: src{"FT"}},
		}
		for i := 0; i < 12; i++ {
			articles = append(articles, article{Title: "Stocks drift", PublishedAt: "2024-03-01T10:00:00Z", Source: src{"AP"}})
		}
		writeJSON(w, map[string]any{"status": "ok", "articles": articles})
	}))
	defer srv.Close()

	got, err := newLive(t, srv, nil).News(context.Background(), "Tech")
	require.NoError(t, err)
	require.Len(t, got, 10)

	assert.Equal(t, upstream.NewsItem{
		ID: "0-1709294400000", Title: "New AI software ships", Source: "Wired", Time: "5m ago", Category: "Tech",
	}, got[0])
	assert.Equal(t, "Unknown", got[1].Source)
	assert.Equal(t, "3h ago", got[1].Time)
	assert.Equal(t, "Energy", got[1].Category)
	assert.Equal(t, "3d ago", got[2].Time)
	assert.Equal(t, "M&A", got[2].Category)
	assert.Equal(t, "Markets", got[3].Category)
}

func TestNewsWithoutKey(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	_, err := newLive(t, srv, func(c *upstream.Config) { c.NewsAPIKey = "" }).News(context.Background(), "")
	assert.ErrorIs(t, err, upstream.ErrMissingCredential)
}

func TestNewsVendorError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"status": "error", "message": "apiKeyInvalid"})
	}))
	defer srv.Close()

	_, err := newLive(t, srv, nil).News(context.Background(), "All")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "apiKeyInvalid")
}

func TestCategorizeHeadline(t *testing.T) {
	cases := map[string]string{
		"Chipmaker bets on AI":          "Tech",
		"Natural gas futures jump":      "Energy",
		"Bitcoin hits record":           "Crypto",
		"Media deal collapses":          "M&A",
		"Dow closes higher":             "Markets",
		"Oil majors adopt new software": "Tech",
		"CRYPTO exchange files for IPO": "Crypto",
	}
	for title, want := range cases {
		assert.Equal(t, want, upstream.CategorizeHeadline(title), title)
	}
}

func TestFilterNews(t *testing.T) {
	items := []upstream.NewsItem{{ID: "1", Category: "Tech"}, {ID: "2", Category: "Markets"}}
	assert.Len(t, upstream.FilterNews(items, "All"), 2)
	assert.Len(t, upstream.FilterNews(items, ""), 2)
	assert.Equal(t, []upstream.NewsItem{{ID: "1", Category: "Tech"}}, upstream.FilterNews(items, "Tech"))
	assert.Empty(t, upstream.FilterNews(items, "Crypto"))
}

func TestSportsAllLeaguesSkipsFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/eventspastleague.php", r.URL.Path)
		switch r.URL.Query().Get("id") {
		case "4387": // NBA
			events := []map[string]any{
				{"idEvent": "a", "strHomeTeam": "Lakers", "strAwayTeam": "Celtics", "intHomeScore": "110", "intAwayScore": 104, "strStatus": "", "dateEvent": "2024-02-29"},
			}
			for i := 0; i < 6; i++ {
				events = append(events, map[string]any{"idEvent": "x", "intHomeScore": nil})
			}
			writeJSON(w, map[string]any{"events": events})
		case "4391": // NFL
			w.WriteHeader(http.StatusNotFound)
		case "4328": // EPL
			writeJSON(w, map[string]any{"events": []map[string]any{
				{"idEvent": "e", "strHomeTeam": "Arsenal", "strAwayTeam": "Spurs", "intHomeScore": "2", "intAwayScore": "2", "strStatus": "Match Finished"},
			}})
		default:
			writeJSON(w, map[string]any{"events": nil})
		}
	}))
	defer srv.Close()

	got, err := newLive(t, srv, nil).Sports(context.Background(), "All")
	require.NoError(t, err)
	require.Len(t, got, 6)

	assert.Equal(t, upstream.SportsScore{
		ID: "a", League: "NBA", HomeTeam: "Lakers", AwayTeam: "Celtics",
		HomeScore: 110, AwayScore: 104, Status: "Final", Date: "2024-02-29",
	}, got[0])
	assert.Zero(t, got[1].HomeScore)
	assert.Equal(t, "EPL", got[5].League)
	assert.Equal(t, "Match Finished", got[5].Status)
}

func TestSportsSingleAndUnknownLeague(t *testing.T) {
	var (
		mu  sync.Mutex
		ids []string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		ids = append(ids, r.URL.Query().Get("id"))
		mu.Unlock()
		writeJSON(w, map[string]any{"events": []map[string]any{{"idEvent": "1"}}})
	}))
	defer srv.Close()
	live := newLive(t, srv, nil)

	got, err := live.Sports(context.Background(), "nhl")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "NHL", got[0].League)
	mu.Lock()
	assert.Equal(t, []string{"4380"}, ids)
	mu.Unlock()

	got, err = live.Sports(context.Background(), "Cricket")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestHeadlines(t *testing.T) {
	lines := upstream.Headlines([]upstream.SportsScore{
		{League: "NBA", HomeTeam: "Lakers", AwayTeam: "Celtics", HomeScore: 112, AwayScore: 108, Status: "Final"},
	})
	assert.Equal(t, []string{"NBA: Lakers 112 - 108 Celtics (Final)"}, lines)
}
