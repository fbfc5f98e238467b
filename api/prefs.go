package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"live-dashboard/prefs"
	"live-dashboard/widget"
)

const maxPrefBytes = 1 << 20

func (h *handler) listPrefs(w http.ResponseWriter, r *http.Request) {
	keys, err := h.prefs.Keys()
	if err != nil {
		http.Error(w, "failed to list preferences", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"keys": keys})
}

func (h *handler) getPref(w http.ResponseWriter, r *http.Request) {
	raw, ok, err := h.prefs.Get(chi.URLParam(r, "key"))
	switch {
	case errors.Is(err, prefs.ErrInvalidKey):
		http.Error(w, "invalid key", http.StatusBadRequest)
	case err != nil:
		http.Error(w, "failed to read preference", http.StatusInternalServerError)
	case !ok:
		http.Error(w, "preference not found", http.StatusNotFound)
	default:
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(raw)
	}
}

// putPref stores the request body verbatim. Mounted widgets pick the change
// up as if another process had written it.
func (h *handler) putPref(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	body, err := io.ReadAll(io.LimitReader(r.Body, maxPrefBytes))
	if err != nil || !json.Valid(body) {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := h.prefs.Set(key, body); err != nil {
		if errors.Is(err, prefs.ErrInvalidKey) || errors.Is(err, prefs.ErrInvalidValue) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		h.log.Error("put preference", zap.String("key", key), zap.Error(err))
		http.Error(w, "failed to save preference", http.StatusInternalServerError)
		return
	}
	h.board.PrefsChanged([]string{key})
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) deletePref(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	if err := h.prefs.Delete(key); err != nil {
		if errors.Is(err, prefs.ErrInvalidKey) {
			http.Error(w, "invalid key", http.StatusBadRequest)
			return
		}
		http.Error(w, "failed to delete preference", http.StatusInternalServerError)
		return
	}
	h.board.PrefsChanged([]string{key})
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) getStocks(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"symbols": h.settings.StockSymbols()})
}

func (h *handler) putStocks(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Symbols []string `json:"symbols"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	symbols, err := h.board.SetStockSymbols(req.Symbols)
	if err != nil {
		h.log.Error("save stock symbols", zap.Error(err))
		http.Error(w, "failed to save stock symbols", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"symbols": symbols})
}

func (h *handler) getTeams(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"teams": h.settings.FavoriteTeams()})
}

func (h *handler) addTeam(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Team string `json:"team"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	teams, err := h.settings.AddFavoriteTeam(req.Team)
	h.teamsChanged(w, teams, err)
}

func (h *handler) removeTeam(w http.ResponseWriter, r *http.Request) {
	teams, err := h.settings.RemoveFavoriteTeam(chi.URLParam(r, "team"))
	h.teamsChanged(w, teams, err)
}

func (h *handler) teamsChanged(w http.ResponseWriter, teams []string, err error) {
	if err != nil {
		h.log.Error("save favorite teams", zap.Error(err))
		http.Error(w, "failed to save favorite teams", http.StatusInternalServerError)
		return
	}
	h.board.Touch(widget.TypeSportsScores)
	writeJSON(w, http.StatusOK, map[string][]string{"teams": teams})
}

func (h *handler) getLeagues(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"leagues": h.settings.Leagues()})
}

func (h *handler) putLeagues(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Leagues []string `json:"leagues"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	leagues, err := h.settings.SetLeagues(req.Leagues)
	h.leaguesChanged(w, leagues, err)
}

func (h *handler) toggleLeague(w http.ResponseWriter, r *http.Request) {
	leagues, err := h.settings.ToggleLeague(chi.URLParam(r, "league"))
	h.leaguesChanged(w, leagues, err)
}

func (h *handler) leaguesChanged(w http.ResponseWriter, leagues []string, err error) {
	if err != nil {
		h.log.Error("save leagues", zap.Error(err))
		http.Error(w, "failed to save leagues", http.StatusInternalServerError)
		return
	}
	h.board.Touch(widget.TypeSportsTicker)
	writeJSON(w, http.StatusOK, map[string][]string{"leagues": leagues})
}
