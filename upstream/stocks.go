package upstream

import (
	"context"
	"fmt"
	"math"
	"net/url"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	providerFinnhub    = "finnhub"
	stockFetchParallel = 4
)

type finnhubQuote struct {
	Current       *float64 `json:"c"`
	PreviousClose *float64 `json:"pc"`
}

// Stocks returns a quote for each symbol that could be fetched, in the order
// requested. Symbols whose fetch fails are dropped; without an API key every
// symbol is dropped.
func (l *Live) Stocks(ctx context.Context, symbols []string) ([]StockQuote, error) {
	if l.cfg.FinnhubKey == "" {
		l.log.Warn("finnhub key not configured, returning no quotes")
		for range symbols {
			recordDropped(providerFinnhub)
		}
		return []StockQuote{}, nil
	}

	results := make([]*StockQuote, len(symbols))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(stockFetchParallel)
	for i, symbol := range symbols {
		i, symbol := i, symbol
		g.Go(func() error {
			q, err := l.quote(gctx, symbol)
			if err != nil {
				l.log.Debug("quote unavailable", zap.String("symbol", symbol), zap.Error(err))
				recordDropped(providerFinnhub)
				return nil
			}
			results[i] = q
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := make([]StockQuote, 0, len(results))
	for _, q := range results {
		if q != nil {
			out = append(out, *q)
		}
	}
	return out, nil
}

func (l *Live) quote(ctx context.Context, symbol string) (*StockQuote, error) {
	u := fmt.Sprintf("%s/quote?symbol=%s&token=%s", l.cfg.FinnhubURL, url.QueryEscape(symbol), url.QueryEscape(l.cfg.FinnhubKey))
	var raw finnhubQuote
	if err := l.getJSON(ctx, providerFinnhub, u, &raw); err != nil {
		return nil, err
	}
	return quoteFrom(symbol, raw)
}

// quoteFrom reshapes a Finnhub quote. Finnhub answers unknown symbols with
// all-zero fields, which count as no data.
func quoteFrom(symbol string, raw finnhubQuote) (*StockQuote, error) {
	if raw.Current == nil || raw.PreviousClose == nil {
		return nil, fmt.Errorf("no data for %s", symbol)
	}
	price, prev := *raw.Current, *raw.PreviousClose
	if price == 0 && prev == 0 {
		return nil, fmt.Errorf("no data for %s", symbol)
	}

	change := price - prev
	var pct float64
	if prev > 0 {
		pct = change / prev * 100
	}
	return &StockQuote{
		Symbol:        symbol,
		Price:         round2(price),
		Change:        round2(change),
		ChangePercent: round2(pct),
	}, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
