package live

import (
	"context"
	"sync"
	"time"
	_ "time/tzdata"

	"live-dashboard/widget"
)

const clockTick = time.Second

// worldClocks are shown under the local time, in order.
var worldClocks = []struct {
	city string
	zone string
}{
	{"New York", "America/New_York"},
	{"London", "Europe/London"},
	{"Tokyo", "Asia/Tokyo"},
}

type ZoneTime struct {
	City string `json:"city"`
	Zone string `json:"zone"`
	Time string `json:"time"`
}

// ClockView is the data of a clock widget.
type ClockView struct {
	Time  string     `json:"time"`
	Date  string     `json:"date"`
	Zones []ZoneTime `json:"zones"`
}

type clockHandler struct {
	now   func() time.Time
	zones []*time.Location

	mu     sync.Mutex
	cancel context.CancelFunc
}

func newClockHandler(now func() time.Time) *clockHandler {
	h := &clockHandler{now: now}
	for _, wc := range worldClocks {
		loc, err := time.LoadLocation(wc.zone)
		if err != nil {
			loc = time.UTC
		}
		h.zones = append(h.zones, loc)
	}
	return h
}

// start pushes an update every second so subscribers see a running clock.
func (h *clockHandler) start(ctx context.Context, notify func()) {
	ctx, cancel := context.WithCancel(ctx)
	h.mu.Lock()
	h.cancel = cancel
	h.mu.Unlock()

	go func() {
		t := time.NewTicker(clockTick)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				notify()
			}
		}
	}()
}

func (h *clockHandler) stop() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.cancel != nil {
		h.cancel()
	}
}

func (h *clockHandler) configure(widget.Widget) {}

func (h *clockHandler) view() View {
	now := h.now()
	v := ClockView{
		Time: now.Format("15:04:05"),
		Date: now.Format("Monday, January 2, 2006"),
	}
	for i, wc := range worldClocks {
		v.Zones = append(v.Zones, ZoneTime{
			City: wc.city,
			Zone: wc.zone,
			Time: now.In(h.zones[i]).Format("15:04"),
		})
	}
	return View{Data: v, UpdatedAt: now}
}
