package notes

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"live-dashboard/prefs"
)

const welcomeText = "Welcome to your notes! Click to edit."

type Note struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

var ErrNotFound = errors.New("note not found")

// Book is the note list stored under prefs.KeyNotes.
type Book struct {
	mu    sync.Mutex
	store prefs.Store
	now   func() time.Time
}

func NewBook(store prefs.Store) *Book {
	return &Book{store: store, now: time.Now}
}

// All returns the notes, newest first. With nothing stored the book holds a
// single welcome note.
func (b *Book) All() []Note {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.load()
}

// Add prepends an empty note.
func (b *Book) Add() (Note, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	n := Note{ID: uuid.New().String(), Timestamp: b.now().UTC()}
	next := append([]Note{n}, b.load()...)
	if err := prefs.Set(b.store, prefs.KeyNotes, next); err != nil {
		return Note{}, err
	}
	return n, nil
}

// Update replaces the content of note id and bumps its timestamp.
func (b *Book) Update(id, content string) (Note, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	cur := b.load()
	for i := range cur {
		if cur[i].ID != id {
			continue
		}
		cur[i].Content = content
		cur[i].Timestamp = b.now().UTC()
		if err := prefs.Set(b.store, prefs.KeyNotes, cur); err != nil {
			return Note{}, err
		}
		return cur[i], nil
	}
	return Note{}, ErrNotFound
}

// Delete removes note id. Unknown ids are ignored.
func (b *Book) Delete(id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	cur := b.load()
	next := make([]Note, 0, len(cur))
	for _, n := range cur {
		if n.ID != id {
			next = append(next, n)
		}
	}
	if len(next) == len(cur) {
		return nil
	}
	return prefs.Set(b.store, prefs.KeyNotes, next)
}

func (b *Book) load() []Note {
	ns, found, err := prefs.Decode[[]Note](b.store, prefs.KeyNotes)
	if err != nil || !found {
		return []Note{{ID: "1", Content: welcomeText, Timestamp: b.now().UTC()}}
	}
	if ns == nil {
		ns = []Note{}
	}
	return ns
}
