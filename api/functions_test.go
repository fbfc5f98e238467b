package api_test

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"testing"

	"live-dashboard/upstream"
)

// recordingSource remembers the parameters it was called with and fails
// news requests.
type recordingSource struct {
	upstream.Mock
	mu      sync.Mutex
	symbols []string
	league  string
}

func (s *recordingSource) Stocks(ctx context.Context, symbols []string) ([]upstream.StockQuote, error) {
	s.mu.Lock()
	s.symbols = symbols
	s.mu.Unlock()
	return s.Mock.Stocks(ctx, symbols)
}

func (s *recordingSource) News(context.Context, string) ([]upstream.NewsItem, error) {
	return nil, errors.New("NEWS_API_KEY: upstream credential not configured")
}

func (s *recordingSource) Sports(ctx context.Context, league string) ([]upstream.SportsScore, error) {
	s.mu.Lock()
	s.league = league
	s.mu.Unlock()
	return s.Mock.Sports(ctx, league)
}

func TestFunctionPreflight(t *testing.T) {
	srv := newTestServer(t)

	for _, fn := range []string{"stocks", "news", "sports"} {
		resp := do(t, http.MethodOptions, srv.URL+"/functions/v1/"+fn, "")
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", fn, resp.StatusCode)
		}
		if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "*" {
			t.Fatalf("%s: allow-origin %q", fn, got)
		}
		if got := resp.Header.Get("Access-Control-Allow-Headers"); !strings.Contains(got, "apikey") {
			t.Fatalf("%s: allow-headers %q", fn, got)
		}
	}
}

func TestStocksFunction(t *testing.T) {
	src := &recordingSource{}
	env := newTestEnv(t, src)

	resp := do(t, http.MethodPost, env.srv.URL+"/functions/v1/stocks", `{"symbols":["NFLX","ZZZZ"]}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if resp.Header.Get("Access-Control-Allow-Origin") != "*" {
		t.Fatalf("missing CORS header on POST")
	}
	var out upstream.StocksResponse
	decode(t, resp, &out)
	if len(out.Stocks) != 1 || out.Stocks[0].Symbol != "NFLX" {
		t.Fatalf("expected only NFLX, got %+v", out.Stocks)
	}
}

func TestStocksFunctionDefaultsOnMalformedBody(t *testing.T) {
	src := &recordingSource{}
	env := newTestEnv(t, src)

	var out upstream.StocksResponse
	decode(t, do(t, http.MethodPost, env.srv.URL+"/functions/v1/stocks", "{oops"), &out)
	if len(out.Stocks) != 6 {
		t.Fatalf("expected the six default symbols, got %d", len(out.Stocks))
	}
}

func TestNewsFunctionError(t *testing.T) {
	env := newTestEnv(t, &recordingSource{})

	resp := do(t, http.MethodPost, env.srv.URL+"/functions/v1/news", `{"category":"Tech"}`)
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", resp.StatusCode)
	}
	var out upstream.ErrorResponse
	decode(t, resp, &out)
	if !strings.Contains(out.Error, "NEWS_API_KEY") {
		t.Fatalf("unexpected error payload %q", out.Error)
	}
}

func TestSportsFunction(t *testing.T) {
	src := &recordingSource{}
	env := newTestEnv(t, src)

	var out upstream.SportsResponse
	decode(t, do(t, http.MethodPost, env.srv.URL+"/functions/v1/sports", `{"league":"NBA"}`), &out)
	if len(out.Scores) == 0 {
		t.Fatalf("expected scores")
	}
	for _, s := range out.Scores {
		if s.League != "NBA" {
			t.Fatalf("unexpected league %q", s.League)
		}
	}

	decode(t, do(t, http.MethodPost, env.srv.URL+"/functions/v1/sports", ""), &out)
	src.mu.Lock()
	league := src.league
	src.mu.Unlock()
	if league != "" {
		t.Fatalf("expected empty league for a bodiless request, got %q", league)
	}
}
