package server

import (
	"context"
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/claude/exlog/internal/metrics"
	"github.com/claude/exlog/internal/models"
	"github.com/go-chi/chi/v5"
)

// Store is the persistence surface the handlers require. Both the Postgres
// and SQLite backends in internal/storage satisfy it.
type Store interface {
	CreateUser(ctx context.Context, username string) (*models.User, error)
	GetUser(ctx context.Context, id string) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	AppendEntry(ctx context.Context, userID, description string, duration float64, date models.Date) (*models.User, error)
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	store   Store
	metrics *metrics.Collector
	limiter *RateLimiter
	log     *slog.Logger
	router  chi.Router
}

// New creates a new Server with all routes configured.
func New(store Store, collector *metrics.Collector, log *slog.Logger) *Server {
	s := &Server{
		store:   store,
		metrics: collector,
		limiter: NewRateLimiter(DefaultRateLimit),
		log:     log,
		router:  chi.NewRouter(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Close stops background work (the rate limiter's cleanup loop).
func (s *Server) Close() {
	s.limiter.Stop()
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)
	s.router.Use(RequestMetrics(s.metrics))

	// Registered before the subrouter mounts so misses under /api/exercise
	// inherit it.
	s.router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeText(w, http.StatusNotFound, "not found")
	})

	s.router.Route("/api/exercise", func(r chi.Router) {
		r.Use(s.limiter.Middleware())
		r.Post("/new-user", s.handleNewUser)
		r.Post("/add", s.handleAddExercise)
		r.Get("/users", s.handleListUsers)
		r.Get("/log", s.handleExerciseLog)
	})

	s.router.Handle("/metrics", s.metrics.Handler())
	s.router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
}

// SetFrontend mounts the embedded landing page filesystem at /.
// Unmatched routes still get the 404 handler.
func (s *Server) SetFrontend(webFS fs.FS) {
	fileServer := http.FileServerFS(webFS)
	s.router.Get("/", fileServer.ServeHTTP)
	s.router.Get("/index.html", fileServer.ServeHTTP)
	s.router.Get("/style.css", fileServer.ServeHTTP)
}
