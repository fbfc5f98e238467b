package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/avast/retry-go/v4"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	DefaultFinnhubURL  = "https://finnhub.io/api/v1"
	DefaultNewsAPIURL  = "https://newsapi.org/v2"
	DefaultSportsDBURL = "https://www.thesportsdb.com/api/v1/json/3"

	defaultTimeout   = 10 * time.Second
	defaultRateLimit = 10 // requests per second, across providers
	defaultBurst     = 10
	defaultAttempts  = 3
	retryDelay       = 200 * time.Millisecond
	maxBodyBytes     = 4 << 20
)

// Config configures a Live source. Zero values select the defaults.
type Config struct {
	FinnhubKey  string
	NewsAPIKey  string
	FinnhubURL  string
	NewsAPIURL  string
	SportsDBURL string

	Timeout   time.Duration
	RateLimit float64
	Burst     int
	Attempts  uint

	HTTPClient *http.Client
	Logger     *zap.Logger
	Now        func() time.Time
}

// Live queries Finnhub, NewsAPI and TheSportsDB.
type Live struct {
	cfg     Config
	http    *http.Client
	limiter *rate.Limiter
	log     *zap.Logger
	now     func() time.Time
}

func NewLive(cfg Config) *Live {
	if cfg.FinnhubURL == "" {
		cfg.FinnhubURL = DefaultFinnhubURL
	}
	if cfg.NewsAPIURL == "" {
		cfg.NewsAPIURL = DefaultNewsAPIURL
	}
	if cfg.SportsDBURL == "" {
		cfg.SportsDBURL = DefaultSportsDBURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.RateLimit <= 0 {
		cfg.RateLimit = defaultRateLimit
	}
	if cfg.Burst <= 0 {
		cfg.Burst = defaultBurst
	}
	if cfg.Attempts == 0 {
		cfg.Attempts = defaultAttempts
	}

	l := &Live{
		cfg:     cfg,
		http:    cfg.HTTPClient,
		limiter: rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.Burst),
		log:     cfg.Logger,
		now:     cfg.Now,
	}
	if l.http == nil {
		l.http = &http.Client{}
	}
	if l.log == nil {
		l.log = zap.NewNop()
	}
	if l.now == nil {
		l.now = time.Now
	}
	return l
}

// getJSON fetches url and decodes the body into out. Network errors, 429 and
// 5xx responses are retried with backoff; other 4xx responses are not.
func (l *Live) getJSON(ctx context.Context, provider, url string, out any) error {
	start := time.Now()
	err := retry.Do(func() error {
		if err := l.limiter.Wait(ctx); err != nil {
			return retry.Unrecoverable(err)
		}
		return l.fetchOnce(ctx, provider, url, out)
	},
		retry.Context(ctx),
		retry.Attempts(l.cfg.Attempts),
		retry.Delay(retryDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(retryable),
	)
	recordRequest(provider, err, time.Since(start).Seconds())
	return err
}

func (l *Live) fetchOnce(ctx context.Context, provider, url string, out any) error {
	ctx, cancel := context.WithTimeout(ctx, l.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return retry.Unrecoverable(err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := l.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{Provider: provider, Code: resp.StatusCode, Message: vendorMessage(body)}
	}
	if err := json.Unmarshal(body, out); err != nil {
		return retry.Unrecoverable(fmt.Errorf("%s: decode response: %w", provider, err))
	}
	return nil
}

func retryable(err error) bool {
	var se *StatusError
	if !errors.As(err, &se) {
		return true
	}
	return se.Code == http.StatusTooManyRequests || se.Code >= 500
}

// vendorMessage extracts a human-readable message from an error body.
func vendorMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(body, &payload) == nil {
		if payload.Message != "" {
			return payload.Message
		}
		return payload.Error
	}
	return ""
}
