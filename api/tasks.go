package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"live-dashboard/notes"
	"live-dashboard/tasks"
	"live-dashboard/widget"
)

func (h *handler) listTasks(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.tasks.All())
}

// createTask answers 201 with the task, or 204 when the title was blank and
// nothing was added.
func (h *handler) createTask(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title    string         `json:"title"`
		Priority tasks.Priority `json:"priority"`
		DueDate  string         `json:"dueDate"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	task, added, err := h.tasks.Add(req.Title, req.Priority, req.DueDate)
	if err != nil {
		h.log.Error("add task", zap.Error(err))
		http.Error(w, "failed to add task", http.StatusInternalServerError)
		return
	}
	if !added {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	h.board.Touch(widget.TypeTasks)
	writeJSON(w, http.StatusCreated, task)
}

func (h *handler) updateTask(w http.ResponseWriter, r *http.Request) {
	var patch tasks.Patch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	task, err := h.tasks.Update(chi.URLParam(r, "id"), patch)
	h.taskChanged(w, task, err)
}

func (h *handler) toggleTask(w http.ResponseWriter, r *http.Request) {
	task, err := h.tasks.Toggle(chi.URLParam(r, "id"))
	h.taskChanged(w, task, err)
}

func (h *handler) taskChanged(w http.ResponseWriter, task tasks.Task, err error) {
	if err != nil {
		if errors.Is(err, tasks.ErrNotFound) {
			http.Error(w, "task not found", http.StatusNotFound)
			return
		}
		h.log.Error("save task", zap.Error(err))
		http.Error(w, "failed to save task", http.StatusInternalServerError)
		return
	}
	h.board.Touch(widget.TypeTasks)
	writeJSON(w, http.StatusOK, task)
}

func (h *handler) deleteTask(w http.ResponseWriter, r *http.Request) {
	if err := h.tasks.Delete(chi.URLParam(r, "id")); err != nil {
		h.log.Error("delete task", zap.Error(err))
		http.Error(w, "failed to delete task", http.StatusInternalServerError)
		return
	}
	h.board.Touch(widget.TypeTasks)
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) clearCompleted(w http.ResponseWriter, r *http.Request) {
	removed, err := h.tasks.ClearCompleted()
	if err != nil {
		h.log.Error("clear completed tasks", zap.Error(err))
		http.Error(w, "failed to clear completed tasks", http.StatusInternalServerError)
		return
	}
	h.board.Touch(widget.TypeTasks)
	writeJSON(w, http.StatusOK, map[string]int{"removed": removed})
}

func (h *handler) listNotes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.notes.All())
}

func (h *handler) createNote(w http.ResponseWriter, r *http.Request) {
	note, err := h.notes.Add()
	if err != nil {
		h.log.Error("add note", zap.Error(err))
		http.Error(w, "failed to add note", http.StatusInternalServerError)
		return
	}
	h.board.Touch(widget.TypeNotes)
	writeJSON(w, http.StatusCreated, note)
}

func (h *handler) updateNote(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	note, err := h.notes.Update(chi.URLParam(r, "id"), req.Content)
	if err != nil {
		if errors.Is(err, notes.ErrNotFound) {
			http.Error(w, "note not found", http.StatusNotFound)
			return
		}
		h.log.Error("update note", zap.Error(err))
		http.Error(w, "failed to update note", http.StatusInternalServerError)
		return
	}
	h.board.Touch(widget.TypeNotes)
	writeJSON(w, http.StatusOK, note)
}

func (h *handler) deleteNote(w http.ResponseWriter, r *http.Request) {
	if err := h.notes.Delete(chi.URLParam(r, "id")); err != nil {
		h.log.Error("delete note", zap.Error(err))
		http.Error(w, "failed to delete note", http.StatusInternalServerError)
		return
	}
	h.board.Touch(widget.TypeNotes)
	w.WriteHeader(http.StatusNoContent)
}
