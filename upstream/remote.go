package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const providerRemote = "remote"

// Remote answers by calling the proxy routes of a dashboard instance, e.g.
// "http://localhost:8080/functions/v1".
type Remote struct {
	BaseURL string
	Client  *http.Client
}

func NewRemote(baseURL string) *Remote {
	return &Remote{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  &http.Client{Timeout: defaultTimeout},
	}
}

func (r *Remote) Stocks(ctx context.Context, symbols []string) ([]StockQuote, error) {
	var resp StocksResponse
	if err := r.call(ctx, "stocks", StocksRequest{Symbols: symbols}, &resp); err != nil {
		return nil, err
	}
	return resp.Stocks, nil
}

func (r *Remote) News(ctx context.Context, category string) ([]NewsItem, error) {
	var resp NewsResponse
	if err := r.call(ctx, "news", NewsRequest{Category: category}, &resp); err != nil {
		return nil, err
	}
	return resp.News, nil
}

func (r *Remote) Sports(ctx context.Context, league string) ([]SportsScore, error) {
	var resp SportsResponse
	if err := r.call(ctx, "sports", SportsRequest{League: league}, &resp); err != nil {
		return nil, err
	}
	return resp.Scores, nil
}

func (r *Remote) call(ctx context.Context, fn string, in, out any) (err error) {
	start := time.Now()
	defer func() { recordRequest(providerRemote, err, time.Since(start).Seconds()) }()

	body, err := json.Marshal(in)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.BaseURL+"/"+fn, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	client := r.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e ErrorResponse
		_ = json.Unmarshal(data, &e)
		return &StatusError{Provider: providerRemote + "/" + fn, Code: resp.StatusCode, Message: e.Error}
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%s: decode response: %w", fn, err)
	}
	return nil
}
