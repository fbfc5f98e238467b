package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"live-dashboard/live"
	"live-dashboard/widget"
)

type widgetList struct {
	Widgets []widget.Widget `json:"widgets"`
	Layout  widget.Layout   `json:"layout"`
}

func (h *handler) listWidgets(w http.ResponseWriter, r *http.Request) {
	widgets := h.registry.List()
	writeJSON(w, http.StatusOK, widgetList{Widgets: widgets, Layout: widget.LayoutClassFor(len(widgets))})
}

func (h *handler) widgetCatalog(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, widget.Catalog())
}

func (h *handler) addWidget(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Type widget.Type `json:"type"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Type == "" {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	created, err := h.board.AddWidget(req.Type)
	if err != nil {
		if errors.Is(err, widget.ErrUnknownType) {
			http.Error(w, "unknown widget type", http.StatusBadRequest)
			return
		}
		h.log.Error("add widget", zap.Error(err))
		http.Error(w, "failed to add widget", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// removeWidget answers 204 whether or not the widget existed.
func (h *handler) removeWidget(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.board.RemoveWidget(id); err != nil {
		h.log.Error("remove widget", zap.String("id", id), zap.Error(err))
		http.Error(w, "failed to remove widget", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) configureWidget(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var config map[string]any
	if err := json.NewDecoder(r.Body).Decode(&config); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	updated, err := h.board.SetWidgetConfig(id, config)
	if err != nil {
		if errors.Is(err, widget.ErrNotFound) {
			http.Error(w, "widget not found", http.StatusNotFound)
			return
		}
		h.log.Error("configure widget", zap.String("id", id), zap.Error(err))
		http.Error(w, "failed to configure widget", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *handler) widgetState(w http.ResponseWriter, r *http.Request) {
	view, err := h.board.State(chi.URLParam(r, "id"))
	switch {
	case errors.Is(err, widget.ErrNotFound):
		http.Error(w, "widget not found", http.StatusNotFound)
	case errors.Is(err, live.ErrNotMounted):
		http.Error(w, "widget not mounted", http.StatusServiceUnavailable)
	case err != nil:
		http.Error(w, "failed to read widget state", http.StatusInternalServerError)
	default:
		writeJSON(w, http.StatusOK, view)
	}
}

// layout answers ?count=n, defaulting to the current widget count.
func (h *handler) layout(w http.ResponseWriter, r *http.Request) {
	count := h.registry.Len()
	if raw := r.URL.Query().Get("count"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			http.Error(w, "invalid count", http.StatusBadRequest)
			return
		}
		count = n
	}
	writeJSON(w, http.StatusOK, widget.LayoutClassFor(count))
}
