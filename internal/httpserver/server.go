// internal/httpserver/server.go
//
// HTTP server wiring for the revision activities backend.
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs).
//   - Public endpoints: "/", "/health", "/catalog", POST /catalog/reload.
//   - Session endpoints: mounted under /sessions (routes_sessions.go).
//   - Live snapshot stream: GET /sessions/{id}/events (ws.go).
//   - Daily challenge: GET /daily/{mode} (routes_daily.go).
//   - Leaderboard, teacher dashboard, certificates (routes_results.go).
//
// Notes:
//   - CORS is origin-aware for the single configured client origin.
//   - The WebSocket route sits outside the request timeout group.
//   - Every error body is {"error": "<code>"}; see fail for the mapping.

package httpserver

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/jgalan247/Edexcel-GCSE/internal/catalog"
	"github.com/jgalan247/Edexcel-GCSE/internal/certificate"
	"github.com/jgalan247/Edexcel-GCSE/internal/config"
	"github.com/jgalan247/Edexcel-GCSE/internal/game"
	"github.com/jgalan247/Edexcel-GCSE/internal/results"
	"github.com/jgalan247/Edexcel-GCSE/internal/store"
)

const requestTimeout = 10 * time.Second

// Deps are the collaborators a Server routes requests to.
type Deps struct {
	Config   *config.Config
	Catalog  *catalog.Loader
	Store    store.Store
	Results  *results.DB // nil disables leaderboard, dashboard and once-per-day checks
	Certs    *certificate.Issuer
	Listener game.Listener // receives every session completion
}

// Server bundles the router with its dependencies.
type Server struct {
	r        *chi.Mux
	cfg      *config.Config
	catalog  *catalog.Loader
	store    store.Store
	results  *results.DB
	certs    *certificate.Issuer
	listener game.Listener
	upgrader websocket.Upgrader
	now      func() time.Time
}

// New constructs a Server, installs middleware, and registers routes.
func New(d Deps) *Server {
	s := &Server{
		r:        chi.NewRouter(),
		cfg:      d.Config,
		catalog:  d.Catalog,
		store:    d.Store,
		results:  d.Results,
		certs:    d.Certs,
		listener: d.Listener,
		now:      time.Now,
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin:     s.checkOrigin,
	}

	// --- middleware ---
	s.r.Use(chimw.RequestID) // add X-Request-ID
	s.r.Use(chimw.RealIP)    // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(chimw.Recoverer) // recover from panics
	s.r.Use(jsonContentType) // default JSON responses
	s.r.Use(s.cors)          // single-origin CORS

	// Sessions route their own timeout so the event stream is exempt.
	s.mountSessions(s.r)

	s.r.Group(func(r chi.Router) {
		r.Use(chimw.Timeout(requestTimeout)) // bound handler time

		// --- diagnostics ---
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"service":"gcse-revision","endpoints":["/health","/catalog","POST /sessions","/daily/{mode}","/leaderboard"]}`))
		})
		r.Get("/health", s.handleHealth)
		r.Get("/catalog", s.handleCatalog)
		r.Post("/catalog/reload", s.handleReload)

		s.mountDaily(r)
		s.mountResults(r)
	})

	// JSON 404 for easier debugging
	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not_found", "path": r.URL.Path})
	})

	return s
}

// Router exposes the internal router; main serves it and tests drive it.
func (s *Server) Router() chi.Router { return s.r }

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// cors enables CORS for the configured client origin.
func (s *Server) cors(next http.Handler) http.Handler {
	origin := s.cfg.ClientOrigin
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Vary", "Origin")
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Credentials", "true")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) checkOrigin(r *http.Request) bool {
	o := r.Header.Get("Origin")
	return o == "" || o == s.cfg.ClientOrigin
}

// ---------------------------- diagnostics ----------------------------------

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	state, _ := s.catalog.State()
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":       true,
		"catalog":  state,
		"sessions": s.store.Len(),
		"results":  s.results != nil,
	})
}

type catalogRes struct {
	State  catalog.State                    `json:"state"`
	Error  string                           `json:"error,omitempty"`
	Retry  bool                             `json:"retry,omitempty"`
	Topics map[catalog.Mode][]catalog.Topic `json:"topics,omitempty"`
}

// handleCatalog reports the loader state and, once loaded, every topic.
// "not_loaded" and "failed" are reported distinctly.
func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	state, err := s.catalog.State()
	res := catalogRes{State: state}
	if err != nil {
		res.Error, res.Retry = err.Error(), true
	}
	if cat, err := s.catalog.Catalog(); err == nil {
		res.Topics = make(map[catalog.Mode][]catalog.Topic, len(catalog.Modes))
		for _, m := range catalog.Modes {
			res.Topics[m] = cat.Topics(m)
		}
	}
	writeJSON(w, http.StatusOK, res)
}

// handleReload retries the dataset fetch (e.g. after a failed startup load).
func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	if err := s.catalog.Load(r.Context()); err != nil {
		s.fail(w, r, err)
		return
	}
	s.handleCatalog(w, r)
}

// ------------------------------- helpers -----------------------------------

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string) {
	writeJSON(w, status, map[string]string{"error": code})
}

// decode reads an optional JSON body; an empty body leaves v untouched.
func decode(r *http.Request, v any) error {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// fail maps domain errors to status codes.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, catalog.ErrDatasetNotFound):
		writeError(w, http.StatusNotFound, "dataset_not_found")
	case errors.Is(err, catalog.ErrNotLoaded), errors.Is(err, catalog.ErrDatasetLoad):
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{"error": "catalog_unavailable", "retry": true})
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "session_not_found")
	case errors.Is(err, game.ErrInvalidAction):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid_action", "detail": err.Error()})
	case errors.Is(err, game.ErrSessionFinished):
		writeError(w, http.StatusConflict, "session_finished")
	case errors.Is(err, game.ErrNoSession):
		writeError(w, http.StatusConflict, "no_session")
	case errors.Is(err, certificate.ErrNotFinished):
		writeError(w, http.StatusConflict, "not_finished")
	case errors.Is(err, certificate.ErrInvalidCertificate):
		writeJSON(w, http.StatusNotFound, map[string]any{"error": "invalid_certificate", "valid": false})
	default:
		log.Error().Err(err).Str("path", r.URL.Path).Str("requestId", chimw.GetReqID(r.Context())).Msg("request failed")
		writeError(w, http.StatusInternalServerError, "internal")
	}
}
