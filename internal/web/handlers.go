package web

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"textrpg/server/internal/metrics"
	"textrpg/server/internal/session"
)

// WebSocket upgrader configuration
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Deps is everything the router needs
type Deps struct {
	Session *session.Session // nil when the story failed to load
	Hub     *StateHub
	LoadErr error // story load failure, served on every game route
	Logger  *zap.Logger
}

type Handlers struct {
	session  *session.Session
	hub      *StateHub
	loadErr  error
	logger   *zap.Logger
	validate *validator.Validate
}

func NewHandlers(deps Deps) *Handlers {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handlers{
		session:  deps.Session,
		hub:      deps.Hub,
		loadErr:  deps.LoadErr,
		logger:   logger,
		validate: validator.New(),
	}
}

func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	if h.loadErr != nil || h.session == nil {
		status = "degraded"
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  status,
		"service": "textrpg",
	})
}

// CORS middleware
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "*")
		w.Header().Set("Access-Control-Max-Age", "300")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// requestLogger logs one line per request
func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			logger.Debug("Request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Duration("took", time.Since(start)))
		})
	}
}

// requireStory refuses every game route when the story never loaded
func (h *Handlers) requireStory(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.session == nil {
			msg := "Story not loaded"
			if h.loadErr != nil {
				msg = "Error loading game: " + h.loadErr.Error()
			}
			writeJSON(w, http.StatusServiceUnavailable, GameResponse{Success: false, Error: msg})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func NewRouter(deps Deps) *chi.Mux {
	h := NewHandlers(deps)
	if h.hub != nil && h.session != nil {
		h.hub.HandleCommands(h.runCommand)
	}
	r := chi.NewRouter()

	r.Use(requestLogger(h.logger))
	r.Use(corsMiddleware)

	r.Get("/health", h.HealthCheck)
	r.Handle("/metrics", metrics.Handler())

	r.Route("/api/v1/game", func(r chi.Router) {
		r.Use(h.requireStory)

		r.Get("/", h.GetGame)
		r.Post("/choices/{index}", h.SelectChoice)
		r.Post("/items/{id}/use", h.UseItem)
		r.Post("/save", h.SaveGame)
		r.Post("/load", h.LoadGame)
		r.Post("/restart", h.RestartGame)
		r.Get("/inventory", h.GetInventory)
		r.Get("/stats", h.GetStats)
		r.Get("/appearance", h.GetAppearance)
		r.Get("/back", h.BackToStory)
		r.Get("/ws", h.StreamGame)
	})

	return r
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
