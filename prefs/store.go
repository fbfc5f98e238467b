// Package prefs holds the persisted key/value preference store shared by the
// widget registry and the feature services. Values are raw JSON documents
// stored under fixed string keys; there is no schema versioning.
package prefs

import (
	"encoding/json"
	"errors"
	"strings"
)

// Preference keys used by the dashboard. Each key holds one feature's
// durable state and is read and written independently of the others.
const (
	KeyWidgets        = "dashboard-widgets"
	KeyStockSymbols   = "dashboard-stock-symbols"
	KeyFavoriteTeams  = "dashboard-favorite-teams"
	KeyEnabledLeagues = "dashboard-enabled-leagues"
	KeyNotes          = "dashboard-notes"
	KeyTasks          = "dashboard-tasks"
)

var (
	ErrClosed       = errors.New("preference store closed")
	ErrInvalidKey   = errors.New("invalid preference key")
	ErrInvalidValue = errors.New("preference value is not valid JSON")
)

// Store is the narrow key/value capability handed to every component that
// persists state. Set is write-through: when it returns nil the value is
// durable in the underlying medium.
type Store interface {
	Get(key string) (json.RawMessage, bool, error)
	Set(key string, value json.RawMessage) error
	Delete(key string) error
	Keys() ([]string, error)
	Close() error
}

// Decode reads key and unmarshals it into a T. It reports found=false when
// the key is absent and returns an error when the stored value does not
// decode as T.
func Decode[T any](s Store, key string) (T, bool, error) {
	var v T
	raw, ok, err := s.Get(key)
	if err != nil || !ok {
		return v, false, err
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		return v, true, err
	}
	return v, true, nil
}

// Get returns the value stored under key, or def when the key is missing,
// unreadable or malformed.
func Get[T any](s Store, key string, def T) T {
	v, ok, err := Decode[T](s, key)
	if err != nil || !ok {
		return def
	}
	return v
}

// Set marshals v and writes it under key.
func Set[T any](s Store, key string, v T) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.Set(key, data)
}

func validKey(key string) bool {
	return strings.TrimSpace(key) != "" && key == strings.TrimSpace(key)
}
