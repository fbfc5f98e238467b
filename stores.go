package main

import (
	"errors"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"live-dashboard/config"
	"live-dashboard/prefs"
	"live-dashboard/upstream"
)

var errNoPersistence = errors.New("the memory store backend keeps nothing between runs; configure store.backend file or sqlite")

func openStore(c config.StoreConfig) (prefs.Store, error) {
	switch c.Backend {
	case config.BackendSQLite:
		return prefs.NewSQLiteStore(c.Path)
	case config.BackendMemory:
		return prefs.NewMemoryStore(), nil
	default:
		if dir := filepath.Dir(c.Path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, err
			}
		}
		return prefs.NewFileStore(c.Path)
	}
}

// openPersistentStore is openStore for commands that edit state offline.
func openPersistentStore(c config.StoreConfig) (prefs.Store, error) {
	if c.Backend == config.BackendMemory {
		return nil, errNoPersistence
	}
	return openStore(c)
}

// newSource picks the widget data source. Live mode without any provider key
// serves the built-in sample data instead.
func newSource(c config.SourceConfig, log *zap.Logger) upstream.Source {
	switch c.Mode {
	case config.SourceMock:
		log.Info("serving sample data")
		return upstream.Mock{}
	case config.SourceRemote:
		log.Info("using remote proxy", zap.String("url", c.RemoteURL))
		return upstream.NewRemote(c.RemoteURL)
	}

	if c.FinnhubKey == "" && c.NewsAPIKey == "" {
		log.Warn("no provider keys configured, serving sample data")
		return upstream.Mock{}
	}
	if c.FinnhubKey == "" {
		log.Warn("FINNHUB_API_KEY not set, stock widgets will stay empty")
	}
	if c.NewsAPIKey == "" {
		log.Warn("NEWS_API_KEY not set, news widgets will report an error")
	}
	return upstream.NewLive(upstream.Config{
		FinnhubKey: c.FinnhubKey,
		NewsAPIKey: c.NewsAPIKey,
		Timeout:    c.Timeout,
		RateLimit:  c.RateLimit,
		Attempts:   c.Attempts,
		Logger:     log,
	})
}
