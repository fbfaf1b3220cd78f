package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hachiko/animatch/internal/engine"
	"github.com/hachiko/animatch/internal/metrics"
	"github.com/hachiko/animatch/internal/store"
)

// Server is the animatch HTTP API server.
type Server struct {
	db       *store.DB
	engine   *engine.Engine
	validate *validator.Validate
	router   chi.Router
	version  string
	started  time.Time
}

// New creates a new Server with the given database, engine and version string.
func New(db *store.DB, eng *engine.Engine, version string) *Server {
	s := &Server{
		db:       db,
		engine:   eng,
		validate: validator.New(),
		version:  version,
		started:  time.Now(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(countRequests)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		r.Get("/recommend", s.handleRecommend)
		r.Get("/search", s.handleSearch)
		r.Post("/click", s.handleClick)
		r.Get("/ranking", s.handleRanking)
		r.Get("/hot_recommend", s.handleHotRecommend)

		r.Post("/favorite", s.handleFavorite)
		r.Get("/favorites", s.handleFavorites)
		r.Get("/favorites/check", s.handleCheckFavorite)

		r.Get("/tv_anime", s.handleTVLineup)
		r.Get("/movie_anime", s.handleMovieLineup)
		r.Post("/covers/reset", s.handleCoverReset)
	})

	r.Handle("/metrics", promhttp.Handler())

	s.router = r
}

// countRequests records per-route request counters once the handler returns.
func countRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		metrics.HTTPRequests.WithLabelValues(route, strconv.Itoa(ww.Status())).Inc()
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	dbOK := true
	if err := s.db.Ping(); err != nil {
		dbOK = false
	}
	catalog, _ := s.db.CountAnime()

	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": s.version,
		"uptime":  time.Since(s.started).Seconds(),
		"db":      dbOK,
		"catalog": catalog,
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}
