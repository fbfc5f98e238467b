package upstream

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	providerNewsAPI = "newsapi"
	newsPageSize    = 20
	newsMaxItems    = 10
)

// newsAPICategory maps a dashboard category onto NewsAPI's taxonomy.
var newsAPICategory = map[string]string{
	"Markets": "business",
	"Tech":    "technology",
	"Energy":  "business",
	"Crypto":  "business",
	"M&A":     "business",
}

// headlineKeywords re-derives a dashboard category from a headline, first
// match wins. Anything unmatched is Markets.
var headlineKeywords = []struct {
	category string
	words    []string
}{
	{"Tech", []string{"tech", "ai", "software"}},
	{"Energy", []string{"oil", "energy", "gas"}},
	{"Crypto", []string{"crypto", "bitcoin"}},
	{"M&A", []string{"merger", "acquisition", "deal"}},
}

type newsAPIResponse struct {
	Status   string `json:"status"`
	Message  string `json:"message"`
	Articles []struct {
		Title       string    `json:"title"`
		URL         string    `json:"url"`
		PublishedAt time.Time `json:"publishedAt"`
		Source      struct {
			Name string `json:"name"`
		} `json:"source"`
	} `json:"articles"`
}

// News returns up to ten US top headlines for category ("" or All means
// business). Every item is re-categorized from its headline keywords.
func (l *Live) News(ctx context.Context, category string) ([]NewsItem, error) {
	if l.cfg.NewsAPIKey == "" {
		return nil, fmt.Errorf("NEWS_API_KEY: %w", ErrMissingCredential)
	}

	apiCategory := "business"
	if c, ok := newsAPICategory[category]; ok {
		apiCategory = c
	}
	u := fmt.Sprintf("%s/top-headlines?country=us&category=%s&pageSize=%d&apiKey=%s",
		l.cfg.NewsAPIURL, url.QueryEscape(apiCategory), newsPageSize, url.QueryEscape(l.cfg.NewsAPIKey))

	var resp newsAPIResponse
	if err := l.getJSON(ctx, providerNewsAPI, u, &resp); err != nil {
		return nil, err
	}
	if resp.Status != "ok" {
		msg := resp.Message
		if msg == "" {
			msg = "failed to fetch news"
		}
		return nil, fmt.Errorf("%s: %s", providerNewsAPI, msg)
	}

	now := l.now()
	items := make([]NewsItem, 0, newsMaxItems)
	for _, a := range resp.Articles {
		if a.Title == "" || a.Title == "[Removed]" {
			continue
		}
		source := a.Source.Name
		if source == "" {
			source = "Unknown"
		}
		items = append(items, NewsItem{
			ID:       fmt.Sprintf("%d-%d", len(items), now.UnixMilli()),
			Title:    a.Title,
			Source:   source,
			Time:     timeAgo(now, a.PublishedAt),
			Category: CategorizeHeadline(a.Title),
			URL:      a.URL,
		})
		if len(items) == newsMaxItems {
			break
		}
	}
	l.log.Debug("fetched news", zap.Int("count", len(items)))
	return items, nil
}

// CategorizeHeadline assigns a dashboard news category by keyword.
func CategorizeHeadline(title string) string {
	lower := strings.ToLower(title)
	for _, kw := range headlineKeywords {
		for _, w := range kw.words {
			if strings.Contains(lower, w) {
				return kw.category
			}
		}
	}
	return "Markets"
}

// FilterNews keeps the items in category; All (or "") keeps everything.
func FilterNews(items []NewsItem, category string) []NewsItem {
	if category == "" || category == AllCategories {
		return items
	}
	out := make([]NewsItem, 0, len(items))
	for _, it := range items {
		if it.Category == category {
			out = append(out, it)
		}
	}
	return out
}

func timeAgo(now, published time.Time) string {
	mins := int(now.Sub(published) / time.Minute)
	if mins < 0 {
		mins = 0
	}
	hours := mins / 60
	switch {
	case mins < 60:
		return fmt.Sprintf("%dm ago", mins)
	case hours < 24:
		return fmt.Sprintf("%dh ago", hours)
	default:
		return fmt.Sprintf("%dd ago", hours/24)
	}
}
