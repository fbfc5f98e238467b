package live

import (
	"context"
	"fmt"
	"sync"
	"time"

	"live-dashboard/poller"
	"live-dashboard/settings"
	"live-dashboard/tasks"
	"live-dashboard/upstream"
	"live-dashboard/widget"
)

// handler drives one mounted widget. start must not call notify
// synchronously.
type handler interface {
	start(ctx context.Context, notify func())
	stop()
	configure(w widget.Widget)
	view() View
}

// pollHandler adapts a poller to a widget: params derives the fetch
// parameters from the widget and render shapes the fetched items.
type pollHandler[P, T any] struct {
	p      *poller.Poller[P, T]
	params func(widget.Widget) P
	render func(widget.Widget, []T) any

	mu sync.Mutex
	w  widget.Widget
}

func newPollHandler[P, T any](
	w widget.Widget,
	name string,
	interval time.Duration,
	params func(widget.Widget) P,
	fetch poller.FetchFunc[P, T],
	render func(widget.Widget, []T) any,
	opts ...poller.Option,
) *pollHandler[P, T] {
	return &pollHandler[P, T]{
		p:      poller.New(name, interval, params(w), fetch, opts...),
		params: params,
		render: render,
		w:      w,
	}
}

func (h *pollHandler[P, T]) start(ctx context.Context, notify func()) {
	updates, _ := h.p.Subscribe()
	go func() {
		for range updates {
			notify()
		}
	}()
	h.p.Start(ctx)
}

func (h *pollHandler[P, T]) stop() {
	h.p.Stop()
}

func (h *pollHandler[P, T]) configure(w widget.Widget) {
	h.mu.Lock()
	h.w = w
	h.mu.Unlock()
	h.p.SetParams(h.params(w))
}

func (h *pollHandler[P, T]) view() View {
	h.mu.Lock()
	w := h.w
	h.mu.Unlock()

	s := h.p.Snapshot()
	return View{
		Data:      h.render(w, s.Data),
		Loading:   s.Loading,
		Error:     s.Error,
		UpdatedAt: s.UpdatedAt,
	}
}

// staticHandler renders on demand and has nothing to poll.
type staticHandler struct {
	mu     sync.Mutex
	w      widget.Widget
	render func(widget.Widget) any
}

func (h *staticHandler) start(context.Context, func()) {}
func (h *staticHandler) stop() {}

func (h *staticHandler) configure(w widget.Widget) {
	h.mu.Lock()
	h.w = w
	h.mu.Unlock()
}

func (h *staticHandler) view() View {
	h.mu.Lock()
	w := h.w
	h.mu.Unlock()
	return View{Data: h.render(w)}
}

// ScoresView is the data of a sports-scores widget.
type ScoresView struct {
	League        string                 `json:"league"`
	Scores        []upstream.SportsScore `json:"scores"`
	FavoriteTeams []string               `json:"favoriteTeams"`
}

// FeedView is the data of an instagram widget.
type FeedView struct {
	Handle string                `json:"handle"`
	Posts  []upstream.SocialPost `json:"posts"`
}

// TasksView is the data of a tasks widget.
type TasksView struct {
	Tasks     []tasks.Task `json:"tasks"`
	Remaining int          `json:"remaining"`
}

func (b *Board) newHandler(w widget.Widget) (handler, error) {
	popts := []poller.Option{poller.WithLogger(b.log)}

	switch w.Type {
	case widget.TypeClock:
		return newClockHandler(b.now), nil

	case widget.TypeStock:
		return newPollHandler(w, "stocks", b.intervals.Stocks, b.stockSymbols, b.source.Stocks,
			func(_ widget.Widget, quotes []upstream.StockQuote) any { return quotes },
			popts...), nil

	case widget.TypeNews:
		return newPollHandler(w, "news", b.intervals.News, newsCategory, b.source.News,
			func(w widget.Widget, items []upstream.NewsItem) any {
				return upstream.FilterNews(items, newsCategory(w))
			}, popts...), nil

	case widget.TypeSportsScores:
		return newPollHandler(w, "sports", b.intervals.Sports, sportsLeague, b.source.Sports,
			func(w widget.Widget, scores []upstream.SportsScore) any {
				return ScoresView{League: sportsLeague(w), Scores: scores, FavoriteTeams: b.settings.FavoriteTeams()}
			}, popts...), nil

	case widget.TypeSportsTicker:
		return newPollHandler(w, "sports-ticker", b.intervals.Sports,
			func(widget.Widget) string { return upstream.AllCategories },
			b.source.Sports,
			func(_ widget.Widget, scores []upstream.SportsScore) any {
				return upstream.Headlines(enabledOnly(scores, b.settings.Leagues()))
			}, popts...), nil

	case widget.TypeInstagram:
		return &staticHandler{w: w, render: func(w widget.Widget) any {
			handle, posts := upstream.SocialFeed(w.ConfigString("handle"))
			return FeedView{Handle: handle, Posts: posts}
		}}, nil

	case widget.TypeNotes:
		return &staticHandler{w: w, render: func(widget.Widget) any {
			return b.notes.All()
		}}, nil

	case widget.TypeTasks:
		return &staticHandler{w: w, render: func(widget.Widget) any {
			all := b.tasks.All()
			remaining := 0
			for _, t := range all {
				if !t.Completed {
					remaining++
				}
			}
			return TasksView{Tasks: all, Remaining: remaining}
		}}, nil
	}
	return nil, fmt.Errorf("%w: %q", widget.ErrUnknownType, w.Type)
}

// stockSymbols returns the widget's own symbol list, or the shared watch
// list when it has none.
func (b *Board) stockSymbols(w widget.Widget) []string {
	if own := ownSymbols(w); len(own) > 0 {
		return own
	}
	return b.settings.StockSymbols()
}

func ownSymbols(w widget.Widget) []string {
	return settings.NormalizeSymbols(w.ConfigStrings("symbols"))
}

func newsCategory(w widget.Widget) string {
	if c := w.ConfigString("category"); c != "" {
		return c
	}
	return upstream.AllCategories
}

func sportsLeague(w widget.Widget) string {
	if l := w.ConfigString("league"); l != "" {
		return l
	}
	return upstream.AllCategories
}

func enabledOnly(scores []upstream.SportsScore, leagues []string) []upstream.SportsScore {
	enabled := make(map[string]bool, len(leagues))
	for _, l := range leagues {
		enabled[l] = true
	}
	out := make([]upstream.SportsScore, 0, len(scores))
	for _, s := range scores {
		if enabled[s.League] {
			out = append(out, s)
		}
	}
	return out
}
