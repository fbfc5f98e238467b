// Package settings exposes the feature preferences shared by the data
// widgets: the stock watch list, favorite teams and enabled leagues. Each is
// stored under its own preference key.
package settings

import (
	"strings"
	"sync"

	"live-dashboard/prefs"
)

var (
	DefaultStockSymbols = []string{"AAPL", "GOOGL", "MSFT", "AMZN", "TSLA", "META"}
	DefaultLeagues      = []string{"NBA", "NFL", "NHL", "MLB", "EPL"}
)

type Service struct {
	mu    sync.Mutex
	store prefs.Store
}

func New(store prefs.Store) *Service {
	return &Service{store: store}
}

func (s *Service) StockSymbols() []string {
	return prefs.Get(s.store, prefs.KeyStockSymbols, clone(DefaultStockSymbols))
}

// SetStockSymbols stores the normalized watch list: symbols are trimmed and
// upper-cased, blanks dropped and duplicates removed. It returns what was
// stored.
func (s *Service) SetStockSymbols(symbols []string) ([]string, error) {
	norm := normalize(symbols, strings.ToUpper)
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := prefs.Set(s.store, prefs.KeyStockSymbols, norm); err != nil {
		return nil, err
	}
	return norm, nil
}

func (s *Service) FavoriteTeams() []string {
	return prefs.Get(s.store, prefs.KeyFavoriteTeams, []string{})
}

func (s *Service) AddFavoriteTeam(team string) ([]string, error) {
	team = strings.TrimSpace(team)
	s.mu.Lock()
	defer s.mu.Unlock()

	teams := s.FavoriteTeams()
	if team == "" || contains(teams, team) {
		return teams, nil
	}
	teams = append(teams, team)
	if err := prefs.Set(s.store, prefs.KeyFavoriteTeams, teams); err != nil {
		return nil, err
	}
	return teams, nil
}

func (s *Service) RemoveFavoriteTeam(team string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	teams := s.FavoriteTeams()
	if !contains(teams, team) {
		return teams, nil
	}
	teams = without(teams, team)
	if err := prefs.Set(s.store, prefs.KeyFavoriteTeams, teams); err != nil {
		return nil, err
	}
	return teams, nil
}

func (s *Service) Leagues() []string {
	return prefs.Get(s.store, prefs.KeyEnabledLeagues, clone(DefaultLeagues))
}

func (s *Service) SetLeagues(leagues []string) ([]string, error) {
	norm := normalize(leagues, strings.ToUpper)
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := prefs.Set(s.store, prefs.KeyEnabledLeagues, norm); err != nil {
		return nil, err
	}
	return norm, nil
}

// ToggleLeague enables league if it is disabled and disables it otherwise.
func (s *Service) ToggleLeague(league string) ([]string, error) {
	league = strings.ToUpper(strings.TrimSpace(league))
	s.mu.Lock()
	defer s.mu.Unlock()

	leagues := s.Leagues()
	if league == "" {
		return leagues, nil
	}
	if contains(leagues, league) {
		leagues = without(leagues, league)
	} else {
		leagues = append(leagues, league)
	}
	if err := prefs.Set(s.store, prefs.KeyEnabledLeagues, leagues); err != nil {
		return nil, err
	}
	return leagues, nil
}

// NormalizeSymbols applies the same cleanup as SetStockSymbols.
func NormalizeSymbols(symbols []string) []string {
	return normalize(symbols, strings.ToUpper)
}

func normalize(in []string, fold func(string) string) []string {
	out := make([]string, 0, len(in))
	for _, v := range in {
		v = fold(strings.TrimSpace(v))
		if v == "" || contains(out, v) {
			continue
		}
		out = append(out, v)
	}
	return out
}

func contains(list []string, v string) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}

func without(list []string, v string) []string {
	out := make([]string, 0, len(list))
	for _, x := range list {
		if x != v {
			out = append(out, x)
		}
	}
	return out
}

func clone(list []string) []string {
	return append([]string(nil), list...)
}
