package api_test

import (
	"io"
	"net/http"
	"strings"
	"testing"

	"live-dashboard/prefs"
)

func TestPrefsRoundTrip(t *testing.T) {
	env := newTestEnv(t, nil)
	url := env.srv.URL + "/api/prefs/" + prefs.KeyFavoriteTeams

	resp := do(t, http.MethodGet, url, "")
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 before write, got %d", resp.StatusCode)
	}

	resp = do(t, http.MethodPut, url, `["Lakers","Arsenal"]`)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.StatusCode)
	}

	resp = do(t, http.MethodGet, url, "")
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if !strings.Contains(string(body), `"Arsenal"`) {
		t.Fatalf("unexpected body %s", body)
	}

	var keys struct {
		Keys []string `json:"keys"`
	}
	decode(t, do(t, http.MethodGet, env.srv.URL+"/api/prefs", ""), &keys)
	found := false
	for _, k := range keys.Keys {
		found = found || k == prefs.KeyFavoriteTeams
	}
	if !found {
		t.Fatalf("key not listed: %v", keys.Keys)
	}

	resp = do(t, http.MethodDelete, url, "")
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.StatusCode)
	}
	resp = do(t, http.MethodGet, url, "")
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", resp.StatusCode)
	}
}

func TestPutPrefBadJSON(t *testing.T) {
	srv := newTestServer(t)

	resp := do(t, http.MethodPut, srv.URL+"/api/prefs/"+prefs.KeyNotes, "not-json")
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestPutWidgetsPrefRemountsBoard(t *testing.T) {
	env := newTestEnv(t, nil)

	resp := do(t, http.MethodPut, env.srv.URL+"/api/prefs/"+prefs.KeyWidgets, `[{"id":"x","type":"clock","title":"Clock"}]`)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.StatusCode)
	}

	var list widgetList
	decode(t, do(t, http.MethodGet, env.srv.URL+"/api/widgets", ""), &list)
	if len(list.Widgets) != 1 || list.Widgets[0].ID != "x" {
		t.Fatalf("registry not reloaded: %+v", list.Widgets)
	}
	if _, err := env.board.State("x"); err != nil {
		t.Fatalf("widget x not mounted: %v", err)
	}
}

func TestStockSettings(t *testing.T) {
	env := newTestEnv(t, nil)
	url := env.srv.URL + "/api/settings/stocks"

	var got struct {
		Symbols []string `json:"symbols"`
	}
	decode(t, do(t, http.MethodGet, url, ""), &got)
	if strings.Join(got.Symbols, ",") != "AAPL,GOOGL,MSFT,AMZN,TSLA,META" {
		t.Fatalf("unexpected defaults %v", got.Symbols)
	}

	decode(t, do(t, http.MethodPut, url, `{"symbols":["nflx"," nvda ","NFLX",""]}`), &got)
	if strings.Join(got.Symbols, ",") != "NFLX,NVDA" {
		t.Fatalf("unexpected stored symbols %v", got.Symbols)
	}

	raw, ok, err := env.store.Get(prefs.KeyStockSymbols)
	if err != nil || !ok {
		t.Fatalf("symbols not stored: ok=%v err=%v", ok, err)
	}
	if string(raw) != `["NFLX","NVDA"]` {
		t.Fatalf("unexpected stored value %s", raw)
	}
}

func TestTeamsAndLeagues(t *testing.T) {
	srv := newTestServer(t)

	var teams struct {
		Teams []string `json:"teams"`
	}
	decode(t, do(t, http.MethodPost, srv.URL+"/api/settings/teams", `{"team":"Lakers"}`), &teams)
	decode(t, do(t, http.MethodPost, srv.URL+"/api/settings/teams", `{"team":"Lakers"}`), &teams)
	if len(teams.Teams) != 1 {
		t.Fatalf("expected one team, got %v", teams.Teams)
	}
	decode(t, do(t, http.MethodDelete, srv.URL+"/api/settings/teams/Lakers", ""), &teams)
	if len(teams.Teams) != 0 {
		t.Fatalf("expected no teams, got %v", teams.Teams)
	}

	var leagues struct {
		Leagues []string `json:"leagues"`
	}
	decode(t, do(t, http.MethodPost, srv.URL+"/api/settings/leagues/nhl/toggle", ""), &leagues)
	if strings.Join(leagues.Leagues, ",") != "NBA,NFL,MLB,EPL" {
		t.Fatalf("unexpected leagues after toggle off %v", leagues.Leagues)
	}
	decode(t, do(t, http.MethodPost, srv.URL+"/api/settings/leagues/NHL/toggle", ""), &leagues)
	if strings.Join(leagues.Leagues, ",") != "NBA,NFL,MLB,EPL,NHL" {
		t.Fatalf("unexpected leagues after toggle on %v", leagues.Leagues)
	}
	decode(t, do(t, http.MethodPut, srv.URL+"/api/settings/leagues", `{"leagues":["epl"]}`), &leagues)
	if strings.Join(leagues.Leagues, ",") != "EPL" {
		t.Fatalf("unexpected leagues %v", leagues.Leagues)
	}
}
