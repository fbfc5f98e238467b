// Package upstream implements the proxy functions behind the data widgets:
// it queries the market, news and sports vendors and reshapes their payloads
// into the dashboard's item types.
package upstream

import (
	"context"
	"errors"
	"fmt"
)

type StockQuote struct {
	Symbol        string  `json:"symbol"`
	Price         float64 `json:"price"`
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"changePercent"`
}

type NewsItem struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Source   string `json:"source"`
	Time     string `json:"time"`
	Category string `json:"category,omitempty"`
	URL      string `json:"url,omitempty"`
}

type SportsScore struct {
	ID        string `json:"id"`
	League    string `json:"league"`
	HomeTeam  string `json:"homeTeam"`
	AwayTeam  string `json:"awayTeam"`
	HomeScore int    `json:"homeScore"`
	AwayScore int    `json:"awayScore"`
	Status    string `json:"status"`
	Date      string `json:"date,omitempty"`
}

// SocialPost is an entry of the (static) social feed widget.
type SocialPost struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Likes    int    `json:"likes"`
	Comments int    `json:"comments"`
	Caption  string `json:"caption"`
}

// Source answers the three proxy queries. Implementations: Live (vendor
// APIs), Mock (static tables) and Remote (another instance's proxy routes).
type Source interface {
	Stocks(ctx context.Context, symbols []string) ([]StockQuote, error)
	News(ctx context.Context, category string) ([]NewsItem, error)
	Sports(ctx context.Context, league string) ([]SportsScore, error)
}

// AllCategories is the news/sports filter value meaning "no filter".
const AllCategories = "All"

var ErrMissingCredential = errors.New("upstream credential not configured")

// StatusError reports a non-2xx vendor response.
type StatusError struct {
	Provider string
	Code     int
	Message  string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: HTTP %d: %s", e.Provider, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: HTTP %d", e.Provider, e.Code)
}

// NewsCategories lists the news filters in display order.
func NewsCategories() []string {
	return []string{AllCategories, "Markets", "Tech", "Energy", "Crypto", "M&A"}
}
