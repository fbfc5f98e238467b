package widget

import "errors"

// Type selects which panel a widget renders. The set is closed; see Types.
type Type string

const (
	TypeClock        Type = "clock"
	TypeStock        Type = "stock"
	TypeNews         Type = "news"
	TypeInstagram    Type = "instagram"
	TypeSportsScores Type = "sports-scores"
	TypeSportsTicker Type = "sports-ticker"
	TypeNotes        Type = "notes"
	TypeTasks        Type = "tasks"
)

// Option is one entry of the add-widget menu.
type Option struct {
	Type        Type   `json:"type"`
	Label       string `json:"label"`
	Description string `json:"description"`
}

// catalog is in menu order.
var catalog = []Option{
	{TypeClock, "Clock", "World time display"},
	{TypeStock, "Stocks", "Live stock ticker"},
	{TypeNews, "News", "Breaking headlines"},
	{TypeInstagram, "Instagram", "Social feed"},
	{TypeSportsScores, "Sports Scores", "Live game scores"},
	{TypeSportsTicker, "Sports Ticker", "Sports headlines"},
	{TypeNotes, "Notes", "Quick notes"},
	{TypeTasks, "Tasks", "Todo list"},
}

// Widget is a single dashboard panel.
type Widget struct {
	ID     string         `json:"id"`
	Type   Type           `json:"type"`
	Title  string         `json:"title"`
	Config map[string]any `json:"config,omitempty"`
}

var (
	ErrNotFound    = errors.New("widget not found")
	ErrUnknownType = errors.New("unknown widget type")
)

// Catalog returns the add-widget menu.
func Catalog() []Option {
	out := make([]Option, len(catalog))
	copy(out, catalog)
	return out
}

// Types returns every widget type in menu order.
func Types() []Type {
	out := make([]Type, len(catalog))
	for i, o := range catalog {
		out[i] = o.Type
	}
	return out
}

func (t Type) Valid() bool {
	_, ok := lookup(t)
	return ok
}

// Label is the display title given to new widgets of this type.
func (t Type) Label() string {
	if o, ok := lookup(t); ok {
		return o.Label
	}
	return string(t)
}

func lookup(t Type) (Option, bool) {
	for _, o := range catalog {
		if o.Type == t {
			return o, true
		}
	}
	return Option{}, false
}

// DefaultWidgets is the layout used when nothing usable is stored.
func DefaultWidgets() []Widget {
	return []Widget{
		{ID: "1", Type: TypeClock, Title: TypeClock.Label()},
		{ID: "2", Type: TypeStock, Title: TypeStock.Label()},
		{ID: "3", Type: TypeNews, Title: TypeNews.Label()},
		{ID: "4", Type: TypeSportsScores, Title: TypeSportsScores.Label()},
	}
}

// ConfigString returns config[key] when it is a non-empty string.
func (w Widget) ConfigString(key string) string {
	s, _ := w.Config[key].(string)
	return s
}

// ConfigStrings returns config[key] as a string slice. JSON-decoded configs
// hold []any, so both shapes are accepted; non-string members are skipped.
func (w Widget) ConfigStrings(key string) []string {
	switch v := w.Config[key].(type) {
	case []string:
		return append([]string(nil), v...)
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

func (w Widget) clone() Widget {
	if w.Config != nil {
		cfg := make(map[string]any, len(w.Config))
		for k, v := range w.Config {
			cfg[k] = v
		}
		w.Config = cfg
	}
	return w
}

func cloneList(ws []Widget) []Widget {
	out := make([]Widget, len(ws))
	for i, w := range ws {
		out[i] = w.clone()
	}
	return out
}
