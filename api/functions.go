package api

import (
	"encoding/json"
	"io"
	"net/http"

	"go.uber.org/zap"

	"live-dashboard/settings"
	"live-dashboard/upstream"
)

const maxFunctionBody = 64 << 10

// cors sets the permissive cross-origin headers every proxy response carries.
func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "authorization, x-client-info, apikey, content-type")
		next.ServeHTTP(w, r)
	})
}

func preflight(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// decodeFunctionBody reads an optional JSON body. A missing or malformed
// body leaves v untouched so the function's defaults apply.
func decodeFunctionBody(r *http.Request, v any) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxFunctionBody))
	if err != nil || len(body) == 0 {
		return
	}
	_ = json.Unmarshal(body, v)
}

func (h *handler) functionFailed(w http.ResponseWriter, fn string, err error) {
	h.log.Warn("proxy function failed", zap.String("function", fn), zap.Error(err))
	writeJSON(w, http.StatusInternalServerError, upstream.ErrorResponse{Error: err.Error()})
}

func (h *handler) stocksFunction(w http.ResponseWriter, r *http.Request) {
	var req upstream.StocksRequest
	decodeFunctionBody(r, &req)
	if req.Symbols == nil {
		req.Symbols = append([]string(nil), settings.DefaultStockSymbols...)
	}

	quotes, err := h.source.Stocks(r.Context(), req.Symbols)
	if err != nil {
		h.functionFailed(w, "stocks", err)
		return
	}
	if quotes == nil {
		quotes = []upstream.StockQuote{}
	}
	writeJSON(w, http.StatusOK, upstream.StocksResponse{Stocks: quotes})
}

func (h *handler) newsFunction(w http.ResponseWriter, r *http.Request) {
	req := upstream.NewsRequest{Category: upstream.AllCategories}
	decodeFunctionBody(r, &req)

	items, err := h.source.News(r.Context(), req.Category)
	if err != nil {
		h.functionFailed(w, "news", err)
		return
	}
	if items == nil {
		items = []upstream.NewsItem{}
	}
	writeJSON(w, http.StatusOK, upstream.NewsResponse{News: items})
}

func (h *handler) sportsFunction(w http.ResponseWriter, r *http.Request) {
	var req upstream.SportsRequest
	decodeFunctionBody(r, &req)

	scores, err := h.source.Sports(r.Context(), req.League)
	if err != nil {
		h.functionFailed(w, "sports", err)
		return
	}
	if scores == nil {
		scores = []upstream.SportsScore{}
	}
	writeJSON(w, http.StatusOK, upstream.SportsResponse{Scores: scores})
}
