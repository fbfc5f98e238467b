// Package poller runs periodic fetches for the data widgets and exposes
// their {data, loading, error} state.
//
// Each fetch cycle gets a sequence number and its own context. Start,
// SetParams and Refresh cancel the cycle before them, and only the most
// recently issued cycle may apply its result, so a slow early response can
// never overwrite a newer one. Interval ticks never supersede: a tick that
// finds a cycle in flight is skipped, so a fetch slower than the interval
// still completes.
package poller

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Default refresh intervals per data domain.
const (
	StocksInterval = 5 * time.Second
	SportsInterval = 30 * time.Second
	NewsInterval   = 60 * time.Second
)

const subscriberBuffer = 4

// FetchFunc performs one fetch cycle for params.
type FetchFunc[P, T any] func(ctx context.Context, params P) ([]T, error)

// State is a point-in-time view of a poller. Data keeps the last successful
// result while Error reports the latest failure.
type State[T any] struct {
	Data      []T       `json:"data"`
	Loading   bool      `json:"loading"`
	Error     string    `json:"error,omitempty"`
	UpdatedAt time.Time `json:"updatedAt,omitempty"`
}

type Option func(*options)

type options struct {
	log *zap.Logger
	now func() time.Time
}

func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.log = l }
}

func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

type Poller[P, T any] struct {
	name     string
	interval time.Duration
	fetch    FetchFunc[P, T]
	log      *zap.Logger
	now      func() time.Time

	mu       sync.Mutex
	params   P
	state    State[T]
	seq      uint64
	inFlight bool
	cancel   context.CancelFunc // current cycle
	base     context.Context
	stop     context.CancelFunc
	running  bool
	stopped  bool
	subs     map[chan State[T]]struct{}
}

// New returns an idle poller. Nothing is fetched until Start.
func New[P, T any](name string, interval time.Duration, params P, fetch FetchFunc[P, T], opts ...Option) *Poller[P, T] {
	o := options{log: zap.NewNop(), now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return &Poller[P, T]{
		name:     name,
		interval: interval,
		fetch:    fetch,
		log:      o.log.With(zap.String("poller", name)),
		now:      o.now,
		params:   params,
		state:    State[T]{Data: []T{}},
		subs:     make(map[chan State[T]]struct{}),
	}
}

// Start fetches immediately and then on every interval tick until Stop or
// until ctx is done. Calling Start again, or after Stop, does nothing.
func (p *Poller[P, T]) Start(ctx context.Context) {
	p.mu.Lock()
	if p.running || p.stopped {
		p.mu.Unlock()
		return
	}
	p.running = true
	p.base, p.stop = context.WithCancel(ctx)
	p.mu.Unlock()

	p.issue(false)
	go p.loop()
}

func (p *Poller[P, T]) loop() {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-p.base.Done():
			p.Stop()
			return
		case <-ticker.C:
			p.issue(true)
		}
	}
}

// Stop cancels the timer and any in-flight cycle, discards late results and
// closes every subscription.
func (p *Poller[P, T]) Stop() {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	if p.cancel != nil {
		p.cancel()
	}
	if p.stop != nil {
		p.stop()
	}
	p.state.Loading = false
	for ch := range p.subs {
		close(ch)
		delete(p.subs, ch)
	}
	p.mu.Unlock()
	p.log.Debug("poller stopped")
}

// SetParams replaces the fetch parameters and, when running, starts a new
// cycle right away.
func (p *Poller[P, T]) SetParams(params P) {
	p.mu.Lock()
	p.params = params
	running := p.running
	p.mu.Unlock()
	if running {
		p.issue(false)
	}
}

func (p *Poller[P, T]) Params() P {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.params
}

// Refresh starts a new cycle outside the regular schedule.
func (p *Poller[P, T]) Refresh() {
	p.issue(false)
}

func (p *Poller[P, T]) Snapshot() State[T] {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snapshotLocked()
}

// Subscribe returns a channel of state snapshots. A slow reader only misses
// intermediate states; the newest one is always delivered. The channel is
// closed by Stop or by the returned cancel func.
func (p *Poller[P, T]) Subscribe() (<-chan State[T], func()) {
	ch := make(chan State[T], subscriberBuffer)
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	p.subs[ch] = struct{}{}
	p.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			p.mu.Lock()
			defer p.mu.Unlock()
			if _, ok := p.subs[ch]; ok {
				delete(p.subs, ch)
				close(ch)
			}
		})
	}
}

// issue starts a cycle. A scheduled cycle is skipped while another is in
// flight; any other cycle supersedes it.
func (p *Poller[P, T]) issue(scheduled bool) {
	p.mu.Lock()
	if !p.running || p.stopped {
		p.mu.Unlock()
		return
	}
	if scheduled && p.inFlight {
		p.mu.Unlock()
		metricCycles.WithLabelValues(p.name, "skipped").Inc()
		p.log.Debug("previous cycle still in flight, skipping tick")
		return
	}
	if p.cancel != nil {
		p.cancel()
	}
	p.seq++
	seq := p.seq
	ctx, cancel := context.WithCancel(p.base)
	p.cancel = cancel
	p.inFlight = true
	params := p.params
	p.state.Loading = true
	p.publishLocked()
	p.mu.Unlock()

	go p.run(ctx, cancel, seq, params)
}

func (p *Poller[P, T]) run(ctx context.Context, cancel context.CancelFunc, seq uint64, params P) {
	defer cancel()
	data, err := p.fetch(ctx, params)

	p.mu.Lock()
	defer p.mu.Unlock()
	if seq == p.seq {
		p.inFlight = false
	}
	if p.stopped || seq != p.seq {
		metricCycles.WithLabelValues(p.name, "discarded").Inc()
		p.log.Debug("discarding superseded cycle", zap.Uint64("seq", seq), zap.Uint64("latest", p.seq))
		return
	}

	p.state.Loading = false
	if err != nil {
		metricCycles.WithLabelValues(p.name, "error").Inc()
		p.log.Warn("fetch failed, keeping last data", zap.Error(err))
		p.state.Error = err.Error()
	} else {
		metricCycles.WithLabelValues(p.name, "ok").Inc()
		if data == nil {
			data = []T{}
		}
		p.state.Data = data
		p.state.Error = ""
		p.state.UpdatedAt = p.now()
	}
	p.publishLocked()
}

func (p *Poller[P, T]) snapshotLocked() State[T] {
	s := p.state
	s.Data = append([]T(nil), p.state.Data...)
	if s.Data == nil {
		s.Data = []T{}
	}
	return s
}

func (p *Poller[P, T]) publishLocked() {
	for ch := range p.subs {
		s := p.snapshotLocked()
		select {
		case ch <- s:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- s:
			default:
			}
		}
	}
}
