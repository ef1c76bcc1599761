// Package server exposes the stylesheet reducer over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"uncss/internal/logging"
	"uncss/internal/reduction"
	"uncss/internal/submission"
	"uncss/internal/uncss"
)

// ReducePath is the route of the reduction endpoint.
const ReducePath = "/api/uncss"

// Config configures a Server.
type Config struct {
	ListenAddr      string
	MaxBodyBytes    int64
	ShutdownTimeout time.Duration
	Ignore          []string
}

// Server serves POST /api/uncss and GET /health.
type Server struct {
	cfg      Config
	logger   *zap.Logger
	statsLog *zap.Logger
	router   *chi.Mux

	mu       sync.Mutex
	listener net.Listener
	http     *http.Server
}

// New builds the router. It fails when an ignore entry is not a valid pattern.
func New(cfg Config, logger *zap.Logger) (*Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = 4 << 20
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 5 * time.Second
	}
	if err := uncss.ValidateIgnore(cfg.Ignore); err != nil {
		return nil, fmt.Errorf("invalid server config: %w", err)
	}

	s := &Server{cfg: cfg, logger: logger, statsLog: logging.For(logger, logging.CategoryUncss)}

	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(requestID)
	r.Use(accessLog(logger))
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handleHealth)
	r.Post(ReducePath, s.handleReduce)
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, s.logger, http.StatusMethodNotAllowed, "method not allowed")
	})
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, s.logger, http.StatusNotFound, "not found")
	})

	s.router = r
	return s, nil
}

// Handler returns the HTTP handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Listen binds the listen address and returns the bound address. A port of 0
// picks a free one.
func (s *Server) Listen() (net.Addr, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return s.listener.Addr(), nil
	}

	ln, err := net.Listen("tcp", s.cfg.ListenAddr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", s.cfg.ListenAddr, err)
	}
	s.listener = ln
	s.http = &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return ln.Addr(), nil
}

// Endpoint returns the reduction URL of a listening server.
func (s *Server) Endpoint() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return "http://" + s.listener.Addr().String() + ReducePath
}

// Run listens, if not already listening, and serves until ctx is cancelled.
// It then shuts down within ShutdownTimeout.
func (s *Server) Run(ctx context.Context) error {
	addr, err := s.Listen()
	if err != nil {
		return err
	}

	s.mu.Lock()
	srv, ln := s.http, s.listener
	s.mu.Unlock()

	s.logger.Info("reduction service listening", zap.String("addr", addr.String()))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shut down: %w", err)
		}
		s.logger.Info("reduction service stopped")
		return nil
	})
	return g.Wait()
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, s.logger, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReduce(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)

	var req reduction.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, s.logger, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		writeError(w, s.logger, http.StatusBadRequest, "invalid request body")
		return
	}

	in := submission.Input{HTML: req.InputHTML, CSS: req.InputCSS}
	if verr := in.Validate(); verr != nil {
		writeError(w, s.logger, http.StatusBadRequest, verr.Message)
		return
	}

	start := time.Now()
	out, stats, err := uncss.ReduceWithStats(req.InputHTML, req.InputCSS, uncss.Options{Ignore: s.cfg.Ignore})
	if err != nil {
		var syntaxErr *uncss.SyntaxError
		if errors.As(err, &syntaxErr) {
			writeError(w, s.logger, http.StatusBadRequest, syntaxErr.Error())
			return
		}
		s.logger.Error("reduction failed", zap.String("request_id", RequestID(r.Context())), zap.Error(err))
		writeError(w, s.logger, http.StatusInternalServerError, err.Error())
		return
	}

	s.statsLog.Debug("stylesheet reduced",
		zap.String("request_id", RequestID(r.Context())),
		zap.Int("rules_kept", stats.RulesKept),
		zap.Int("rules_removed", stats.RulesRemoved),
		zap.Int("selectors_removed", stats.SelectorsRemoved),
		zap.Duration("took", time.Since(start)),
	)
	writeJSON(w, s.logger, http.StatusOK, reduction.Response{OutputCSS: out})
}
