package prefs

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// FileStore keeps every preference in a single JSON document on disk.
type FileStore struct {
	mu       sync.RWMutex
	filePath string
	values   map[string]json.RawMessage
	closed   bool
}

// NewFileStore loads the document at filePath, or starts empty if the file
// does not exist. A document that fails to parse is moved aside to
// filePath+".corrupt" and the store starts empty. Returns an error only on
// unexpected I/O failures.
func NewFileStore(filePath string) (*FileStore, error) {
	s := &FileStore{filePath: filePath, values: map[string]json.RawMessage{}}

	values, err := readDocument(filePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return s, nil
		}
		var syntaxErr *json.SyntaxError
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
			if err := os.Rename(filePath, filePath+".corrupt"); err != nil {
				return nil, err
			}
			return s, nil
		}
		return nil, err
	}
	s.values = values
	return s, nil
}

// Path returns the location of the backing document.
func (s *FileStore) Path() string {
	return s.filePath
}

func (s *FileStore) Get(key string) (json.RawMessage, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, false, ErrClosed
	}
	v, ok := s.values[key]
	if !ok {
		return nil, false, nil
	}
	return cloneRaw(v), true, nil
}

// Set validates value as JSON, writes the whole document atomically and only
// then updates the in-memory copy.
func (s *FileStore) Set(key string, value json.RawMessage) error {
	if !validKey(key) {
		return ErrInvalidKey
	}
	if !json.Valid(value) {
		return ErrInvalidValue
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}

	next := make(map[string]json.RawMessage, len(s.values)+1)
	for k, v := range s.values {
		next[k] = v
	}
	next[key] = cloneRaw(value)
	if err := s.writeAtomic(next); err != nil {
		return err
	}
	s.values = next
	return nil
}

func (s *FileStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if _, ok := s.values[key]; !ok {
		return nil
	}

	next := make(map[string]json.RawMessage, len(s.values))
	for k, v := range s.values {
		if k != key {
			next[k] = v
		}
	}
	if err := s.writeAtomic(next); err != nil {
		return err
	}
	s.values = next
	return nil
}

func (s *FileStore) Keys() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}
	keys := make([]string, 0, len(s.values))
	for k := range s.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

func (s *FileStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// reload replaces the in-memory document with what is on disk and returns
// the keys whose value changed. Used by Watch when another process writes.
func (s *FileStore) reload() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrClosed
	}

	values, err := readDocument(s.filePath)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		values = map[string]json.RawMessage{}
	}
	changed := diffKeys(s.values, values)
	s.values = values
	return changed, nil
}

// writeAtomic writes to a temp file then renames it over filePath.
// Caller must hold s.mu.
func (s *FileStore) writeAtomic(values map[string]json.RawMessage) error {
	dir := filepath.Dir(s.filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	tmp := s.filePath + ".tmp"
	data, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, s.filePath)
}

func readDocument(path string) (map[string]json.RawMessage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	values := map[string]json.RawMessage{}
	if len(data) == 0 {
		return values, nil
	}
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, err
	}
	if values == nil {
		values = map[string]json.RawMessage{}
	}
	return values, nil
}

func diffKeys(old, cur map[string]json.RawMessage) []string {
	var changed []string
	for k, v := range cur {
		if prev, ok := old[k]; !ok || !jsonEqual(prev, v) {
			changed = append(changed, k)
		}
	}
	for k := range old {
		if _, ok := cur[k]; !ok {
			changed = append(changed, k)
		}
	}
	sort.Strings(changed)
	return changed
}

func cloneRaw(v json.RawMessage) json.RawMessage {
	cp := make(json.RawMessage, len(v))
	copy(cp, v)
	return cp
}

func jsonEqual(a, b json.RawMessage) bool {
	var ca, cb bytes.Buffer
	if json.Compact(&ca, a) != nil || json.Compact(&cb, b) != nil {
		return bytes.Equal(a, b)
	}
	return bytes.Equal(ca.Bytes(), cb.Bytes())
}
