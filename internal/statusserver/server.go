// Package statusserver exposes a read-only, JSON-only HTTP view over a
// running Simulation: current tick, mode, and a snapshot of every agent and
// resource. It carries no template layer and no UI — a pure introspection
// endpoint for operators and sweep tooling to poll.
package statusserver

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"github.com/cmfunderburk/vmt/internal/world"
)

// Simulation is the subset of *engine.Simulation the status server reads.
// Declaring it here rather than importing internal/engine keeps this
// package able to serve a fake in tests without constructing a real
// scenario-backed run.
type Simulation interface {
	CurrentState() *world.State
	Tick() world.Tick
	Done() bool
}

// Config configures the server's listen port and optional auth token.
type Config struct {
	Port      int
	AuthToken string
}

// Server is the chi-routed HTTP server.
type Server struct {
	router *chi.Mux
	server *http.Server
	sim    Simulation
	logger *logrus.Logger
	port   int
	authToken string
}

// NewServer constructs a Server over a running Simulation.
func NewServer(cfg Config, sim Simulation, logger *logrus.Logger) *Server {
	s := &Server{
		router:    chi.NewRouter(),
		sim:       sim,
		logger:    logger,
		port:      cfg.Port,
		authToken: cfg.AuthToken,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.requestLoggerMiddleware)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(10 * time.Second))
	s.router.Use(middleware.Compress(5))

	if s.authToken != "" {
		s.router.Route("/", func(r chi.Router) {
			r.Use(s.authMiddleware)
			r.Get("/state", s.handleState)
			r.Get("/agents", s.handleAgents)
			r.Get("/resources", s.handleResources)
		})
	} else {
		s.router.Get("/state", s.handleState)
		s.router.Get("/agents", s.handleAgents)
		s.router.Get("/resources", s.handleResources)
	}

	s.router.Get("/health", s.handleHealth)
}

func (s *Server) requestLoggerMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logEntry := s.logger.WithFields(logrus.Fields{
			"method": r.Method,
			"path":   r.URL.Path,
		})
		start := time.Now()
		wrapped := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(wrapped, r)
		logEntry.WithFields(logrus.Fields{
			"status":   wrapped.Status(),
			"duration": time.Since(start),
		}).Info("status request")
	})
}

func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}
		token := r.Header.Get("X-Auth-Token")
		if token == "" {
			token = r.URL.Query().Get("token")
		}
		if !s.isValidToken(token) {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) isValidToken(token string) bool {
	if len(token) != len(s.authToken) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(token), []byte(s.authToken)) == 1
}

func (s *Server) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.WithError(err).Error("encoding response")
	}
}

type stateResponse struct {
	Tick world.Tick `json:"tick"`
	Mode string     `json:"mode"`
	Done bool       `json:"done"`
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	st := s.sim.CurrentState()
	s.writeJSON(w, stateResponse{Tick: s.sim.Tick(), Mode: st.Mode().String(), Done: s.sim.Done()})
}

type agentResponse struct {
	ID     world.AgentID  `json:"id"`
	Pos    world.Position `json:"pos"`
	A      int64          `json:"a"`
	B      int64          `json:"b"`
	Paired *world.AgentID `json:"paired_with,omitempty"`
}

func (s *Server) handleAgents(w http.ResponseWriter, r *http.Request) {
	st := s.sim.CurrentState()
	out := make([]agentResponse, 0, len(st.Order))
	for _, id := range st.Order {
		a := st.Agent(id)
		out = append(out, agentResponse{ID: a.ID, Pos: a.Pos, A: a.Inv.A, B: a.Inv.B, Paired: a.PairedWithID})
	}
	s.writeJSON(w, out)
}

type resourceResponse struct {
	Pos    world.Position `json:"pos"`
	Type   string         `json:"type"`
	Amount int64          `json:"amount"`
}

func (s *Server) handleResources(w http.ResponseWriter, r *http.Request) {
	st := s.sim.CurrentState()
	var out []resourceResponse
	st.Grid.ForEachResource(func(pos world.Position, res *world.Resource) {
		rtype := "a"
		if res.Type == world.ResourceB {
			rtype = "b"
		}
		out = append(out, resourceResponse{Pos: pos, Type: rtype, Amount: res.Amount})
	})
	s.writeJSON(w, out)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, map[string]string{"status": "ok"})
}

// Start runs the HTTP server; it blocks until Shutdown is called or the
// server fails.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", s.port),
		Handler:           s.router,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}

	s.logger.Infof("starting status server on port %d", s.port)
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
