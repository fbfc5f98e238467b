package upstream

import (
	"context"
	"strings"
)

var mockQuotes = map[string]StockQuote{
	"AAPL":  {Symbol: "AAPL", Price: 189.84, Change: 2.31, ChangePercent: 1.23},
	"GOOGL": {Symbol: "GOOGL", Price: 141.8, Change: -0.92, ChangePercent: -0.64},
	"MSFT":  {Symbol: "MSFT", Price: 378.91, Change: 4.12, ChangePercent: 1.1},
	"AMZN":  {Symbol: "AMZN", Price: 153.42, Change: 1.87, ChangePercent: 1.23},
	"TSLA":  {Symbol: "TSLA", Price: 248.48, Change: -5.23, ChangePercent: -2.06},
	"META":  {Symbol: "META", Price: 353.96, Change: 3.45, ChangePercent: 0.98},
	"NVDA":  {Symbol: "NVDA", Price: 495.22, Change: 8.76, ChangePercent: 1.8},
	"NFLX":  {Symbol: "NFLX", Price: 486.88, Change: -2.14, ChangePercent: -0.44},
}

var mockNews = []NewsItem{
	{ID: "1", Title: "Fed signals potential rate cuts in 2024 as inflation cools", Source: "Reuters", Time: "5m ago", Category: "Markets"},
	{ID: "2", Title: "Tech giants rally on strong AI chip demand", Source: "Bloomberg", Time: "12m ago", Category: "Tech"},
	{ID: "3", Title: "Oil prices slide as OPEC+ output cuts disappoint", Source: "CNBC", Time: "25m ago", Category: "Energy"},
	{ID: "4", Title: "Bitcoin climbs above $45,000 on ETF optimism", Source: "CoinDesk", Time: "38m ago", Category: "Crypto"},
	{ID: "5", Title: "Pharma merger creates industry leader in oncology", Source: "WSJ", Time: "1h ago", Category: "M&A"},
	{ID: "6", Title: "Treasury yields hold steady ahead of jobs report", Source: "MarketWatch", Time: "2h ago", Category: "Markets"},
}

var mockScores = []SportsScore{
	{ID: "1", League: "NBA", HomeTeam: "Lakers", AwayTeam: "Celtics", HomeScore: 112, AwayScore: 108, Status: "Final"},
	{ID: "2", League: "NBA", HomeTeam: "Warriors", AwayTeam: "Nuggets", HomeScore: 98, AwayScore: 102, Status: "Final"},
	{ID: "3", League: "NFL", HomeTeam: "Chiefs", AwayTeam: "Bills", HomeScore: 27, AwayScore: 24, Status: "Final"},
	{ID: "4", League: "NHL", HomeTeam: "Rangers", AwayTeam: "Bruins", HomeScore: 3, AwayScore: 2, Status: "Final/OT"},
	{ID: "5", League: "MLB", HomeTeam: "Yankees", AwayTeam: "Red Sox", HomeScore: 5, AwayScore: 3, Status: "Final"},
	{ID: "6", League: "EPL", HomeTeam: "Arsenal", AwayTeam: "Chelsea", HomeScore: 3, AwayScore: 1, Status: "Final"},
}

var mockPosts = []SocialPost{
	{ID: "1", Username: "@bloomberg", Likes: 12453, Comments: 234, Caption: "Markets update: S&P 500 reaches new highs..."},
	{ID: "2", Username: "@reuters", Likes: 8932, Comments: 156, Caption: "Breaking: Major policy announcement..."},
	{ID: "3", Username: "@wsj", Likes: 15678, Comments: 423, Caption: "Inside the latest tech revolution..."},
}

// DefaultSocialHandle is the feed followed when a widget names none.
const DefaultSocialHandle = "@bloomberg"

// Mock answers from static tables. Unknown symbols are dropped, like a live
// fetch failure would.
type Mock struct{}

func (Mock) Stocks(_ context.Context, symbols []string) ([]StockQuote, error) {
	out := make([]StockQuote, 0, len(symbols))
	for _, s := range symbols {
		if q, ok := mockQuotes[strings.ToUpper(s)]; ok {
			out = append(out, q)
		}
	}
	return out, nil
}

func (Mock) News(_ context.Context, category string) ([]NewsItem, error) {
	return FilterNews(append([]NewsItem(nil), mockNews...), category), nil
}

func (Mock) Sports(_ context.Context, league string) ([]SportsScore, error) {
	out := make([]SportsScore, 0, len(mockScores))
	for _, s := range mockScores {
		if league == "" || league == AllCategories || strings.EqualFold(s.League, league) {
			out = append(out, s)
		}
	}
	return out, nil
}

// SocialFeed returns the static social feed. The handle only labels it.
func SocialFeed(handle string) (string, []SocialPost) {
	if strings.TrimSpace(handle) == "" {
		handle = DefaultSocialHandle
	}
	return handle, append([]SocialPost(nil), mockPosts...)
}
