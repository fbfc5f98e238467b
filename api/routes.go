package api

import (
	"io/fs"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"live-dashboard/live"
	"live-dashboard/notes"
	"live-dashboard/prefs"
	"live-dashboard/settings"
	"live-dashboard/tasks"
	"live-dashboard/upstream"
	"live-dashboard/widget"
)

// Services are the components the HTTP API exposes.
type Services struct {
	Board    *live.Board
	Registry *widget.Registry
	Prefs    prefs.Store
	Settings *settings.Service
	Tasks    *tasks.List
	Notes    *notes.Book
	// Source answers the /functions/v1 proxy routes.
	Source upstream.Source
	Logger *zap.Logger
}

func RegisterRoutes(svc Services, staticFS fs.FS) http.Handler {
	log := svc.Logger
	if log == nil {
		log = zap.NewNop()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(requestLogger(log))
	r.Use(middleware.Recoverer)

	h := &handler{
		board:    svc.Board,
		registry: svc.Registry,
		prefs:    svc.Prefs,
		settings: svc.Settings,
		tasks:    svc.Tasks,
		notes:    svc.Notes,
		source:   svc.Source,
		log:      log,
	}

	// Widgets
	r.Get("/api/widgets", h.listWidgets)
	r.Post("/api/widgets", h.addWidget)
	r.Get("/api/widgets/catalog", h.widgetCatalog)
	r.Delete("/api/widgets/{id}", h.removeWidget)
	r.Put("/api/widgets/{id}/config", h.configureWidget)
	r.Get("/api/widgets/{id}/state", h.widgetState)
	r.Get("/api/layout", h.layout)

	// Live stream
	r.Get("/api/live/ws", h.handleWS)

	// Preferences
	r.Get("/api/prefs", h.listPrefs)
	r.Get("/api/prefs/{key}", h.getPref)
	r.Put("/api/prefs/{key}", h.putPref)
	r.Delete("/api/prefs/{key}", h.deletePref)

	r.Get("/api/settings/stocks", h.getStocks)
	r.Put("/api/settings/stocks", h.putStocks)
	r.Get("/api/settings/teams", h.getTeams)
	r.Post("/api/settings/teams", h.addTeam)
	r.Delete("/api/settings/teams/{team}", h.removeTeam)
	r.Get("/api/settings/leagues", h.getLeagues)
	r.Put("/api/settings/leagues", h.putLeagues)
	r.Post("/api/settings/leagues/{league}/toggle", h.toggleLeague)

	// Tasks
	r.Get("/api/tasks", h.listTasks)
	r.Post("/api/tasks", h.createTask)
	r.Post("/api/tasks/clear-completed", h.clearCompleted)
	r.Patch("/api/tasks/{id}", h.updateTask)
	r.Delete("/api/tasks/{id}", h.deleteTask)
	r.Post("/api/tasks/{id}/toggle", h.toggleTask)

	// Notes
	r.Get("/api/notes", h.listNotes)
	r.Post("/api/notes", h.createNote)
	r.Put("/api/notes/{id}", h.updateNote)
	r.Delete("/api/notes/{id}", h.deleteNote)

	// Proxy functions
	r.Route("/functions/v1", func(r chi.Router) {
		r.Use(cors)
		r.Options("/*", preflight)
		r.Post("/stocks", h.stocksFunction)
		r.Post("/news", h.newsFunction)
		r.Post("/sports", h.sportsFunction)
	})

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})

	// The embed.FS holds files under "static/"; a plain directory FS may
	// already be rooted there. Probe index.html to tell them apart.
	staticSub, err := fs.Sub(staticFS, "static")
	if err != nil {
		staticSub = staticFS
	} else if _, statErr := fs.Stat(staticSub, "index.html"); statErr != nil {
		staticSub = staticFS
	}

	// Read index.html directly: http.FileServer redirects paths ending in
	// "index.html" to "./".
	r.Get("/", serveFile(staticSub, "index.html"))

	fileServer := http.FileServer(http.FS(staticSub))
	r.Get("/css/*", fileServer.ServeHTTP)
	r.Get("/js/*", fileServer.ServeHTTP)

	return r
}

// serveFile returns a handler that reads a single file from fsys and sends it.
func serveFile(fsys fs.FS, name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(content)
	}
}

type handler struct {
	board    *live.Board
	registry *widget.Registry
	prefs    prefs.Store
	settings *settings.Service
	tasks    *tasks.List
	notes    *notes.Book
	source   upstream.Source
	log      *zap.Logger
}
