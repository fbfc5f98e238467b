package widget

import (
	"fmt"
	"sync"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"live-dashboard/prefs"
)

// Registry holds the ordered list of active widgets and writes it through to
// the preference store on every mutation.
type Registry struct {
	mu      sync.RWMutex
	store   prefs.Store
	widgets []Widget
	newID   func() string
	log     *zap.Logger

	// readOnly skips writing fallback lists back to the store.
	readOnly bool
}

type RegistryOption func(*Registry)

func WithLogger(l *zap.Logger) RegistryOption {
	return func(r *Registry) { r.log = l }
}

// WithIDFunc overrides id generation.
func WithIDFunc(fn func() string) RegistryOption {
	return func(r *Registry) { r.newID = fn }
}

// WithoutWriteBack keeps loading from touching the store, for callers that
// only list. Mutations still persist.
func WithoutWriteBack() RegistryOption {
	return func(r *Registry) { r.readOnly = true }
}

// NewRegistry loads the stored widget list, falling back to DefaultWidgets
// when nothing is stored or the stored value is unusable. The loaded list is
// written back so the store always mirrors memory.
func NewRegistry(store prefs.Store, opts ...RegistryOption) *Registry {
	r := &Registry{
		store: store,
		newID: func() string { return ulid.Make().String() },
		log:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}

	widgets, _ := r.load()
	r.widgets = widgets
	r.writeBack(widgets)
	return r
}

// List returns the widgets in render order.
func (r *Registry) List() []Widget {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return cloneList(r.widgets)
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.widgets)
}

func (r *Registry) Get(id string) (Widget, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if i := r.indexOf(id); i >= 0 {
		return r.widgets[i].clone(), true
	}
	return Widget{}, false
}

// Add appends a new widget of type t with a fresh id and derived title.
func (r *Registry) Add(t Type) (Widget, error) {
	if !t.Valid() {
		return Widget{}, fmt.Errorf("%w: %q", ErrUnknownType, t)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	w := Widget{ID: r.newID(), Type: t, Title: t.Label()}
	for r.indexOf(w.ID) >= 0 {
		w.ID = r.newID()
	}
	next := append(cloneList(r.widgets), w)
	if err := r.save(next); err != nil {
		return Widget{}, err
	}
	r.widgets = next
	r.log.Debug("widget added", zap.String("id", w.ID), zap.String("type", string(t)))
	return w.clone(), nil
}

// Remove drops the widget with the given id. Removing an unknown id is a
// no-op.
func (r *Registry) Remove(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return nil
	}
	next := make([]Widget, 0, len(r.widgets)-1)
	next = append(next, r.widgets[:i]...)
	next = append(next, r.widgets[i+1:]...)
	if err := r.save(next); err != nil {
		return err
	}
	r.widgets = next
	r.log.Debug("widget removed", zap.String("id", id))
	return nil
}

// Configure replaces the config of widget id.
func (r *Registry) Configure(id string, config map[string]any) (Widget, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return Widget{}, ErrNotFound
	}
	next := cloneList(r.widgets)
	next[i].Config = config
	next[i] = next[i].clone()
	if err := r.save(next); err != nil {
		return Widget{}, err
	}
	r.widgets = next
	return next[i].clone(), nil
}

// Reload re-reads the stored list, e.g. after another process changed it.
// A missing or unusable value is replaced in the store by the defaults.
func (r *Registry) Reload() {
	r.mu.Lock()
	defer r.mu.Unlock()
	widgets, fellBack := r.load()
	r.widgets = widgets
	if fellBack {
		r.writeBack(widgets)
	}
}

// load reads the stored list. fellBack reports that the defaults were used.
func (r *Registry) load() (widgets []Widget, fellBack bool) {
	stored, found, err := prefs.Decode[[]Widget](r.store, prefs.KeyWidgets)
	switch {
	case err != nil:
		r.log.Warn("stored widget list unreadable, using defaults", zap.Error(err))
		return DefaultWidgets(), true
	case !found:
		return DefaultWidgets(), true
	}
	if err := validate(stored); err != nil {
		r.log.Warn("stored widget list invalid, using defaults", zap.Error(err))
		return DefaultWidgets(), true
	}
	return stored, false
}

func (r *Registry) writeBack(widgets []Widget) {
	if r.readOnly {
		return
	}
	if err := prefs.Set(r.store, prefs.KeyWidgets, widgets); err != nil {
		r.log.Warn("failed to persist widget list", zap.Error(err))
	}
}

func (r *Registry) save(widgets []Widget) error {
	if err := prefs.Set(r.store, prefs.KeyWidgets, widgets); err != nil {
		return fmt.Errorf("persist widgets: %w", err)
	}
	return nil
}

// indexOf returns the position of id, or -1. Caller must hold r.mu.
func (r *Registry) indexOf(id string) int {
	for i, w := range r.widgets {
		if w.ID == id {
			return i
		}
	}
	return -1
}

func validate(widgets []Widget) error {
	seen := make(map[string]bool, len(widgets))
	for _, w := range widgets {
		if w.ID == "" {
			return fmt.Errorf("widget with empty id")
		}
		if seen[w.ID] {
			return fmt.Errorf("duplicate widget id %q", w.ID)
		}
		if !w.Type.Valid() {
			return fmt.Errorf("%w: %q", ErrUnknownType, w.Type)
		}
		seen[w.ID] = true
	}
	return nil
}
