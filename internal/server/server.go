// Package server exposes the trainer over HTTP: JSON endpoints for boards,
// markdown, sessions and every coaching panel, plus a websocket for chat.
package server

import (
	"context"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/lgbarn/chess-trainer-go/internal/coach"
	"github.com/lgbarn/chess-trainer-go/internal/config"
	"github.com/lgbarn/chess-trainer-go/internal/errors"
	"github.com/lgbarn/chess-trainer-go/internal/logging"
	"github.com/lgbarn/chess-trainer-go/internal/session"
)

const (
	// maxBodyBytes bounds JSON request bodies. PGN uploads are the largest.
	maxBodyBytes = 1 << 20

	// maxMessageBytes bounds one websocket chat frame.
	maxMessageBytes = 64 << 10

	// writeWait is the deadline for a single websocket frame write.
	writeWait = 10 * time.Second
)

// Server routes HTTP requests to the coach service and session store.
type Server struct {
	coach    *coach.Service
	store    *session.Store
	logger   *zap.Logger
	origins  []string
	upgrader websocket.Upgrader
	mux      *http.ServeMux

	// closing is closed when a graceful shutdown starts, so hijacked
	// websocket connections can end too.
	closing   chan struct{}
	closeOnce sync.Once
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithAllowedOrigins restricts websocket upgrades to the given origins.
// "*" allows any origin and "*.example.com" any subdomain. With no origins
// only same-host upgrades are accepted.
func WithAllowedOrigins(origins []string) Option {
	return func(s *Server) { s.origins = origins }
}

// New creates a server.
func New(svc *coach.Service, store *session.Store, opts ...Option) *Server {
	s := &Server{
		coach:   svc,
		store:   store,
		logger:  zap.NewNop(),
		mux:     http.NewServeMux(),
		closing: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.checkOrigin,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /healthz", s.handleHealth)

	s.mux.HandleFunc("POST /api/board", s.handleBoard)
	s.mux.HandleFunc("POST /api/markdown", s.handleMarkdown)
	s.mux.HandleFunc("GET /api/openings", s.handleOpenings)

	s.mux.HandleFunc("POST /api/sessions", s.handleCreateSession)
	s.mux.HandleFunc("GET /api/sessions/{id}", s.handleGetSession)
	s.mux.HandleFunc("DELETE /api/sessions/{id}", s.handleDeleteSession)
	s.mux.HandleFunc("POST /api/sessions/{id}/section", s.handleSelectSection)

	s.mux.HandleFunc("POST /api/analyze", s.handleAnalyze)
	s.mux.HandleFunc("POST /api/openings/turn", s.handleOpeningTurn)
	s.mux.HandleFunc("POST /api/puzzles", s.handleNewPuzzle)
	s.mux.HandleFunc("POST /api/puzzles/hint", s.handleHint)
	s.mux.HandleFunc("POST /api/puzzles/solve", s.handleSolve)
	s.mux.HandleFunc("POST /api/review", s.handleReview)

	s.mux.HandleFunc("GET /api/chat", s.handleChatSocket)
	s.mux.HandleFunc("POST /api/chat", s.handleChat)
}

// Handler returns the routed handler wrapped in request logging.
func (s *Server) Handler() http.Handler {
	return logging.Middleware(s.logger, s.mux)
}

// Run serves on cfg.Server.Addr until ctx is done, then shuts down
// gracefully within the configured budget.
func (s *Server) Run(ctx context.Context, cfg *config.Config) error {
	ln, err := net.Listen("tcp", cfg.Server.Addr)
	if err != nil {
		return errors.Wrapf(err, "listen on %s", cfg.Server.Addr)
	}
	return s.Serve(ctx, ln, cfg)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener, cfg *config.Config) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadTimeout:       cfg.ReadTimeout(),
		ReadHeaderTimeout: cfg.ReadTimeout(),
		WriteTimeout:      cfg.WriteTimeout(),
	}
	srv.RegisterOnShutdown(s.startClosing)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", zap.String("addr", ln.Addr().String()))
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout())
	defer cancel()
	s.logger.Info("server shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "shutdown")
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) startClosing() {
	s.closeOnce.Do(func() { close(s.closing) })
}
