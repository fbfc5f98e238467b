package prefs_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"live-dashboard/prefs"
)

// backends returns one fresh instance of every Store implementation.
func backends(t *testing.T) map[string]prefs.Store {
	t.Helper()
	dir := t.TempDir()

	fs, err := prefs.NewFileStore(filepath.Join(dir, "prefs.json"))
	require.NoError(t, err)
	sq, err := prefs.NewSQLiteStore(filepath.Join(dir, "prefs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { sq.Close() })

	return map[string]prefs.Store{
		"file":   fs,
		"sqlite": sq,
		"memory": prefs.NewMemoryStore(),
	}
}

func TestStoreContract(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, ok, err := s.Get(prefs.KeyNotes)
			require.NoError(t, err)
			assert.False(t, ok)

			require.NoError(t, s.Set(prefs.KeyStockSymbols, json.RawMessage(`["AAPL","NFLX"]`)))
			require.NoError(t, s.Set(prefs.KeyTasks, json.RawMessage(`[]`)))

			raw, ok, err := s.Get(prefs.KeyStockSymbols)
			require.NoError(t, err)
			require.True(t, ok)
			assert.JSONEq(t, `["AAPL","NFLX"]`, string(raw))

			keys, err := s.Keys()
			require.NoError(t, err)
			assert.Equal(t, []string{prefs.KeyStockSymbols, prefs.KeyTasks}, keys)

			require.NoError(t, s.Delete(prefs.KeyTasks))
			require.NoError(t, s.Delete("never-set"))
			_, ok, err = s.Get(prefs.KeyTasks)
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestStoreRejectsInvalidInput(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			assert.ErrorIs(t, s.Set("", json.RawMessage(`1`)), prefs.ErrInvalidKey)
			assert.ErrorIs(t, s.Set(" padded ", json.RawMessage(`1`)), prefs.ErrInvalidKey)
			assert.ErrorIs(t, s.Set("k", json.RawMessage(`{nope`)), prefs.ErrInvalidValue)
		})
	}
}

func TestGetFallsBackToDefault(t *testing.T) {
	s := prefs.NewMemoryStore()
	def := []string{"NBA", "NFL"}

	assert.Equal(t, def, prefs.Get(s, prefs.KeyEnabledLeagues, def))

	require.NoError(t, s.Set(prefs.KeyEnabledLeagues, json.RawMessage(`{"not":"a list"}`)))
	assert.Equal(t, def, prefs.Get(s, prefs.KeyEnabledLeagues, def))

	_, found, err := prefs.Decode[[]string](s, prefs.KeyEnabledLeagues)
	assert.True(t, found)
	assert.Error(t, err)

	require.NoError(t, prefs.Set(s, prefs.KeyEnabledLeagues, []string{"EPL"}))
	assert.Equal(t, []string{"EPL"}, prefs.Get(s, prefs.KeyEnabledLeagues, def))
}

func TestFileStoreMissingFile(t *testing.T) {
	s, err := prefs.NewFileStore(filepath.Join(t.TempDir(), "nested", "prefs.json"))
	require.NoError(t, err)
	keys, err := s.Keys()
	require.NoError(t, err)
	assert.Empty(t, keys)

	// First write creates the parent directory.
	require.NoError(t, prefs.Set(s, prefs.KeyFavoriteTeams, []string{"Arsenal"}))
	_, err = os.Stat(s.Path())
	assert.NoError(t, err)
}

func TestFileStoreSurvivesReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.json")
	s, err := prefs.NewFileStore(path)
	require.NoError(t, err)
	require.NoError(t, prefs.Set(s, prefs.KeyStockSymbols, []string{"NFLX"}))

	s2, err := prefs.NewFileStore(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"NFLX"}, prefs.Get(s2, prefs.KeyStockSymbols, []string(nil)))
}

func TestFileStoreCorruptDocumentMovedAside(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.json")
	require.NoError(t, os.WriteFile(path, []byte("{{{ not json"), 0644))

	s, err := prefs.NewFileStore(path)
	require.NoError(t, err)
	keys, _ := s.Keys()
	assert.Empty(t, keys)

	data, err := os.ReadFile(path + ".corrupt")
	require.NoError(t, err)
	assert.Equal(t, "{{{ not json", string(data))
}

func TestFileStoreClosed(t *testing.T) {
	s, err := prefs.NewFileStore(filepath.Join(t.TempDir(), "prefs.json"))
	require.NoError(t, err)
	require.NoError(t, s.Close())

	_, _, err = s.Get(prefs.KeyTasks)
	assert.ErrorIs(t, err, prefs.ErrClosed)
	assert.ErrorIs(t, s.Set(prefs.KeyTasks, json.RawMessage(`[]`)), prefs.ErrClosed)
}

func TestFileStoreConcurrentSet(t *testing.T) {
	s, err := prefs.NewFileStore(filepath.Join(t.TempDir(), "prefs.json"))
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			assert.NoError(t, prefs.Set(s, prefs.KeyNotes, []int{n}))
		}(i)
	}
	wg.Wait()

	got := prefs.Get(s, prefs.KeyNotes, []int(nil))
	assert.Len(t, got, 1)
}

func TestFileStoreWatchReportsExternalWrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.json")
	s, err := prefs.NewFileStore(path)
	require.NoError(t, err)
	require.NoError(t, prefs.Set(s, prefs.KeyStockSymbols, []string{"AAPL"}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes := make(chan []string, 8)
	go s.Watch(ctx, nil, func(keys []string) { changes <- keys })
	time.Sleep(100 * time.Millisecond)

	// Another process rewrites the document.
	doc := `{"dashboard-stock-symbols":["AAPL"],"dashboard-favorite-teams":["Lakers"]}`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0644))

	select {
	case keys := <-changes:
		assert.Equal(t, []string{prefs.KeyFavoriteTeams}, keys)
	case <-time.After(3 * time.Second):
		t.Fatal("watcher did not report the external write")
	}
	assert.Equal(t, []string{"Lakers"}, prefs.Get(s, prefs.KeyFavoriteTeams, []string(nil)))
}
