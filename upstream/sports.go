package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	providerSportsDB = "thesportsdb"
	eventsPerLeague  = 5
)

// leagueIDs are TheSportsDB league ids, in the order "All" queries them.
var leagueIDs = []struct {
	name string
	id   string
}{
	{"NBA", "4387"},
	{"NFL", "4391"},
	{"NHL", "4380"},
	{"MLB", "4424"},
	{"EPL", "4328"},
}

// Leagues returns the supported league names.
func Leagues() []string {
	out := make([]string, len(leagueIDs))
	for i, l := range leagueIDs {
		out[i] = l.name
	}
	return out
}

func leagueID(name string) (string, bool) {
	for _, l := range leagueIDs {
		if strings.EqualFold(l.name, name) {
			return l.id, true
		}
	}
	return "", false
}

// looseInt decodes the vendor's scores, which arrive as strings, numbers or
// null. Anything unparsable is zero.
type looseInt int

func (n *looseInt) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch x := v.(type) {
	case float64:
		*n = looseInt(x)
	case string:
		i, _ := strconv.Atoi(strings.TrimSpace(x))
		*n = looseInt(i)
	default:
		*n = 0
	}
	return nil
}

type sportsDBEvents struct {
	Events []struct {
		ID        string   `json:"idEvent"`
		HomeTeam  string   `json:"strHomeTeam"`
		AwayTeam  string   `json:"strAwayTeam"`
		HomeScore looseInt `json:"intHomeScore"`
		AwayScore looseInt `json:"intAwayScore"`
		Status    string   `json:"strStatus"`
		Date      string   `json:"dateEvent"`
	} `json:"events"`
}

// Sports returns the most recent results for league, or for every supported
// league when league is "" or All. Leagues whose fetch fails are skipped;
// unknown leagues yield nothing.
func (l *Live) Sports(ctx context.Context, league string) ([]SportsScore, error) {
	var names []string
	if league == "" || league == AllCategories {
		names = Leagues()
	} else if _, ok := leagueID(league); ok {
		names = []string{strings.ToUpper(league)}
	}

	results := make([][]SportsScore, len(names))
	g, gctx := errgroup.WithContext(ctx)
	for i, name := range names {
		i, name := i, name
		g.Go(func() error {
			scores, err := l.leagueScores(gctx, name)
			if err != nil {
				l.log.Warn("league fetch failed", zap.String("league", name), zap.Error(err))
				recordDropped(providerSportsDB)
				return nil
			}
			results[i] = scores
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := []SportsScore{}
	for _, scores := range results {
		out = append(out, scores...)
	}
	return out, nil
}

func (l *Live) leagueScores(ctx context.Context, league string) ([]SportsScore, error) {
	id, _ := leagueID(league)
	u := fmt.Sprintf("%s/eventspastleague.php?id=%s", l.cfg.SportsDBURL, url.QueryEscape(id))

	var raw sportsDBEvents
	if err := l.getJSON(ctx, providerSportsDB, u, &raw); err != nil {
		return nil, err
	}

	events := raw.Events
	if len(events) > eventsPerLeague {
		events = events[:eventsPerLeague]
	}
	scores := make([]SportsScore, 0, len(events))
	for _, ev := range events {
		status := ev.Status
		if status == "" {
			status = "Final"
		}
		scores = append(scores, SportsScore{
			ID:        ev.ID,
			League:    league,
			HomeTeam:  ev.HomeTeam,
			AwayTeam:  ev.AwayTeam,
			HomeScore: int(ev.HomeScore),
			AwayScore: int(ev.AwayScore),
			Status:    status,
			Date:      ev.Date,
		})
	}
	return scores, nil
}

// Headlines renders scores as one-line ticker entries.
func Headlines(scores []SportsScore) []string {
	out := make([]string, 0, len(scores))
	for _, s := range scores {
		out = append(out, fmt.Sprintf("%s: %s %d - %d %s (%s)", s.League, s.HomeTeam, s.HomeScore, s.AwayScore, s.AwayTeam, s.Status))
	}
	return out
}
