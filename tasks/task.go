package tasks

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"live-dashboard/prefs"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

func (p Priority) Valid() bool {
	return p == PriorityLow || p == PriorityMedium || p == PriorityHigh
}

// Task is a single todo item.
type Task struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Completed bool      `json:"completed"`
	Priority  Priority  `json:"priority"`
	CreatedAt time.Time `json:"createdAt"`
	DueDate   string    `json:"dueDate,omitempty"`
}

// Patch holds the fields Update may change. Nil fields are left alone.
type Patch struct {
	Title     *string   `json:"title,omitempty"`
	Completed *bool     `json:"completed,omitempty"`
	Priority  *Priority `json:"priority,omitempty"`
	DueDate   *string   `json:"dueDate,omitempty"`
}

var ErrNotFound = errors.New("task not found")

// List is the task list stored under prefs.KeyTasks. Every call reads the
// stored list and every mutation writes it back.
type List struct {
	mu    sync.Mutex
	store prefs.Store
	now   func() time.Time
	newID func() string
}

func NewList(store prefs.Store) *List {
	return &List{
		store: store,
		now:   time.Now,
		newID: func() string { return ulid.Make().String() },
	}
}

// All returns the tasks, newest first.
func (l *List) All() []Task {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.load()
}

// Add prepends a task. A blank title is ignored: added is false and nothing
// is written. An unknown priority becomes medium.
func (l *List) Add(title string, priority Priority, dueDate string) (task Task, added bool, err error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return Task{}, false, nil
	}
	if !priority.Valid() {
		priority = PriorityMedium
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	task = Task{
		ID:        l.newID(),
		Title:     title,
		Priority:  priority,
		CreatedAt: l.now().UTC(),
		DueDate:   strings.TrimSpace(dueDate),
	}
	next := append([]Task{task}, l.load()...)
	if err := prefs.Set(l.store, prefs.KeyTasks, next); err != nil {
		return Task{}, false, err
	}
	return task, true, nil
}

// Toggle flips the completed flag of task id.
func (l *List) Toggle(id string) (Task, error) {
	return l.modify(id, func(t *Task) { t.Completed = !t.Completed })
}

// Update applies p to task id. A blank title in p is ignored.
func (l *List) Update(id string, p Patch) (Task, error) {
	return l.modify(id, func(t *Task) {
		if p.Title != nil {
			if title := strings.TrimSpace(*p.Title); title != "" {
				t.Title = title
			}
		}
		if p.Completed != nil {
			t.Completed = *p.Completed
		}
		if p.Priority != nil && p.Priority.Valid() {
			t.Priority = *p.Priority
		}
		if p.DueDate != nil {
			t.DueDate = strings.TrimSpace(*p.DueDate)
		}
	})
}

// Delete removes task id. Unknown ids are ignored.
func (l *List) Delete(id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	cur := l.load()
	next := make([]Task, 0, len(cur))
	for _, t := range cur {
		if t.ID != id {
			next = append(next, t)
		}
	}
	if len(next) == len(cur) {
		return nil
	}
	return prefs.Set(l.store, prefs.KeyTasks, next)
}

// ClearCompleted removes every completed task and reports how many went.
func (l *List) ClearCompleted() (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	cur := l.load()
	next := make([]Task, 0, len(cur))
	for _, t := range cur {
		if !t.Completed {
			next = append(next, t)
		}
	}
	removed := len(cur) - len(next)
	if removed == 0 {
		return 0, nil
	}
	if err := prefs.Set(l.store, prefs.KeyTasks, next); err != nil {
		return 0, err
	}
	return removed, nil
}

func (l *List) modify(id string, fn func(*Task)) (Task, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	cur := l.load()
	for i := range cur {
		if cur[i].ID != id {
			continue
		}
		fn(&cur[i])
		if err := prefs.Set(l.store, prefs.KeyTasks, cur); err != nil {
			return Task{}, err
		}
		return cur[i], nil
	}
	return Task{}, ErrNotFound
}

// load reads the stored list. Caller must hold l.mu.
func (l *List) load() []Task {
	ts := prefs.Get(l.store, prefs.KeyTasks, []Task{})
	if ts == nil {
		ts = []Task{}
	}
	return ts
}
