// Package live mounts a handler for every widget on the dashboard, runs the
// pollers behind the data widgets and fans their state out to subscribers.
package live

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"time"

	"go.uber.org/zap"

	"live-dashboard/notes"
	"live-dashboard/poller"
	"live-dashboard/prefs"
	"live-dashboard/settings"
	"live-dashboard/tasks"
	"live-dashboard/upstream"
	"live-dashboard/widget"
)

const subscriberBuffer = 64

var ErrNotMounted = errors.New("widget not mounted")

// View is the current state of one widget as served to clients.
type View struct {
	Widget    widget.Widget `json:"widget"`
	Data      any           `json:"data"`
	Loading   bool          `json:"loading"`
	Error     string        `json:"error,omitempty"`
	UpdatedAt time.Time     `json:"updatedAt,omitempty"`
}

// Update is one entry of the live stream. Removed updates carry no state.
type Update struct {
	WidgetID string      `json:"widgetId"`
	Type     widget.Type `json:"type"`
	Removed  bool        `json:"removed,omitempty"`
	State    *View       `json:"state,omitempty"`
}

// Intervals are the refresh periods of the data widgets.
type Intervals struct {
	Stocks time.Duration
	News   time.Duration
	Sports time.Duration
}

func DefaultIntervals() Intervals {
	return Intervals{
		Stocks: poller.StocksInterval,
		News:   poller.NewsInterval,
		Sports: poller.SportsInterval,
	}
}

type Config struct {
	Registry  *widget.Registry
	Settings  *settings.Service
	Tasks     *tasks.List
	Notes     *notes.Book
	Source    upstream.Source
	Intervals Intervals
	Logger    *zap.Logger
	Now       func() time.Time
}

type mount struct {
	widget widget.Widget
	h      handler
}

// Board is the set of mounted widget handlers.
type Board struct {
	reg       *widget.Registry
	settings  *settings.Service
	tasks     *tasks.List
	notes     *notes.Book
	source    upstream.Source
	intervals Intervals
	log       *zap.Logger
	now       func() time.Time

	mu      sync.Mutex
	ctx     context.Context
	mounted map[string]*mount

	subMu sync.Mutex
	subs  map[chan Update]struct{}
}

func New(cfg Config) *Board {
	def := DefaultIntervals()
	if cfg.Intervals.Stocks <= 0 {
		cfg.Intervals.Stocks = def.Stocks
	}
	if cfg.Intervals.News <= 0 {
		cfg.Intervals.News = def.News
	}
	if cfg.Intervals.Sports <= 0 {
		cfg.Intervals.Sports = def.Sports
	}
	if cfg.Source == nil {
		cfg.Source = upstream.Mock{}
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Board{
		reg:       cfg.Registry,
		settings:  cfg.Settings,
		tasks:     cfg.Tasks,
		notes:     cfg.Notes,
		source:    cfg.Source,
		intervals: cfg.Intervals,
		log:       cfg.Logger,
		now:       cfg.Now,
		mounted:   make(map[string]*mount),
		subs:      make(map[chan Update]struct{}),
	}
}

// Start mounts every registered widget. Handlers live until Stop or until
// ctx is done.
func (b *Board) Start(ctx context.Context) {
	b.mu.Lock()
	b.ctx = ctx
	b.mu.Unlock()
	b.Sync()
}

// Stop unmounts every widget and closes all subscriptions.
func (b *Board) Stop() {
	b.mu.Lock()
	for id, m := range b.mounted {
		m.h.stop()
		delete(b.mounted, id)
	}
	b.ctx = nil
	b.mu.Unlock()
	metricMounted.Set(0)

	b.subMu.Lock()
	for ch := range b.subs {
		close(ch)
		delete(b.subs, ch)
	}
	b.subMu.Unlock()
}

// Sync mounts widgets that are registered but not mounted, reconfigures
// mounted widgets whose config changed and unmounts the rest. It does
// nothing before Start.
func (b *Board) Sync() {
	b.mu.Lock()
	if b.ctx == nil {
		b.mu.Unlock()
		return
	}

	var removed []mount
	keep := make(map[string]bool)
	for _, w := range b.reg.List() {
		keep[w.ID] = true
		if m, ok := b.mounted[w.ID]; ok {
			if !reflect.DeepEqual(m.widget.Config, w.Config) {
				m.widget = w
				m.h.configure(w)
			}
			continue
		}
		h, err := b.newHandler(w)
		if err != nil {
			b.log.Warn("cannot mount widget", zap.String("id", w.ID), zap.Error(err))
			continue
		}
		b.mounted[w.ID] = &mount{widget: w, h: h}
		id := w.ID
		h.start(b.ctx, func() { b.emit(id) })
		b.log.Debug("widget mounted", zap.String("id", id), zap.String("type", string(w.Type)))
	}
	for id, m := range b.mounted {
		if !keep[id] {
			m.h.stop()
			delete(b.mounted, id)
			removed = append(removed, *m)
		}
	}
	metricMounted.Set(float64(len(b.mounted)))
	b.mu.Unlock()

	for _, m := range removed {
		b.broadcast(Update{WidgetID: m.widget.ID, Type: m.widget.Type, Removed: true})
	}
}

// AddWidget registers a widget of type t and mounts it.
func (b *Board) AddWidget(t widget.Type) (widget.Widget, error) {
	w, err := b.reg.Add(t)
	if err != nil {
		return widget.Widget{}, err
	}
	b.Sync()
	b.emit(w.ID)
	return w, nil
}

// RemoveWidget unregisters and unmounts widget id. Unknown ids are a no-op.
func (b *Board) RemoveWidget(id string) error {
	if err := b.reg.Remove(id); err != nil {
		return err
	}
	b.Sync()
	return nil
}

// SetWidgetConfig replaces the config of widget id and reconfigures its
// handler; a data widget refetches once with the new parameters.
func (b *Board) SetWidgetConfig(id string, config map[string]any) (widget.Widget, error) {
	w, err := b.reg.Configure(id, config)
	if err != nil {
		return widget.Widget{}, err
	}
	b.Sync()
	b.emit(id)
	return w, nil
}

// SetStockSymbols stores the shared watch list and refetches, once each,
// the stock widgets that follow it. A list with no usable symbol is ignored
// and the current list returned.
func (b *Board) SetStockSymbols(symbols []string) ([]string, error) {
	if len(settings.NormalizeSymbols(symbols)) == 0 {
		return b.settings.StockSymbols(), nil
	}
	stored, err := b.settings.SetStockSymbols(symbols)
	if err != nil {
		return nil, err
	}
	b.stockSymbolsChanged()
	return stored, nil
}

func (b *Board) stockSymbolsChanged() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, m := range b.mounted {
		if m.widget.Type == widget.TypeStock && len(ownSymbols(m.widget)) == 0 {
			m.h.configure(m.widget)
		}
	}
}

// Touch pushes a fresh view of every widget of the given types, for state
// changed outside the board (tasks, notes, settings).
func (b *Board) Touch(types ...widget.Type) {
	for _, id := range b.idsOf(types...) {
		b.emit(id)
	}
}

// PrefsChanged reacts to preference keys rewritten by another process.
func (b *Board) PrefsChanged(keys []string) {
	for _, k := range keys {
		switch k {
		case prefs.KeyWidgets:
			b.reg.Reload()
			b.Sync()
		case prefs.KeyStockSymbols:
			b.stockSymbolsChanged()
		case prefs.KeyFavoriteTeams:
			b.Touch(widget.TypeSportsScores)
		case prefs.KeyEnabledLeagues:
			b.Touch(widget.TypeSportsTicker)
		case prefs.KeyNotes:
			b.Touch(widget.TypeNotes)
		case prefs.KeyTasks:
			b.Touch(widget.TypeTasks)
		}
	}
}

// State returns the current view of widget id.
func (b *Board) State(id string) (View, error) {
	b.mu.Lock()
	m, ok := b.mounted[id]
	var w widget.Widget
	var h handler
	if ok {
		w, h = m.widget, m.h
	}
	b.mu.Unlock()

	if !ok {
		if _, exists := b.reg.Get(id); exists {
			return View{}, ErrNotMounted
		}
		return View{}, widget.ErrNotFound
	}
	v := h.view()
	v.Widget = w
	return v, nil
}

// Views returns the view of every mounted widget in render order.
func (b *Board) Views() []View {
	var out []View
	for _, w := range b.reg.List() {
		if v, err := b.State(w.ID); err == nil {
			out = append(out, v)
		}
	}
	return out
}

// Subscribe streams widget updates. Updates are dropped for a subscriber
// whose buffer is full. The channel closes on Stop or cancel.
func (b *Board) Subscribe() (<-chan Update, func()) {
	ch := make(chan Update, subscriberBuffer)
	b.subMu.Lock()
	b.subs[ch] = struct{}{}
	b.subMu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.subMu.Lock()
			defer b.subMu.Unlock()
			if _, ok := b.subs[ch]; ok {
				delete(b.subs, ch)
				close(ch)
			}
		})
	}
}

func (b *Board) emit(id string) {
	v, err := b.State(id)
	if err != nil {
		return
	}
	b.broadcast(Update{WidgetID: id, Type: v.Widget.Type, State: &v})
}

func (b *Board) broadcast(u Update) {
	b.subMu.Lock()
	defer b.subMu.Unlock()
	for ch := range b.subs {
		select {
		case ch <- u:
		default:
			metricDroppedUpdates.Inc()
		}
	}
}

func (b *Board) idsOf(types ...widget.Type) []string {
	want := make(map[widget.Type]bool, len(types))
	for _, t := range types {
		want[t] = true
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	var ids []string
	for id, m := range b.mounted {
		if want[m.widget.Type] {
			ids = append(ids, id)
		}
	}
	return ids
}
