package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"golang.org/x/sync/singleflight"

	"github.com/arzlive/arzlive/internal/market"
	"github.com/arzlive/arzlive/internal/snapshot"
)

// Source provides poll results.
type Source interface {
	Latest() snapshot.Result
	PollOnce(ctx context.Context) snapshot.Result
}

// Config holds server configuration.
type Config struct {
	Addr           string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	AllowedOrigins []string
	RefreshTimeout time.Duration // Bound on a refresh-triggered cycle (default: 30s)
	GoldID         string        // Gold reference for highlights (default: gold_18)
}

// Server serves the catalog API.
type Server struct {
	cfg     Config
	source  Source
	hub     *Hub
	logger  *slog.Logger
	router  *mux.Router
	refresh singleflight.Group
	now     func() time.Time

	httpServer *http.Server
}

// New creates a Server with its routes.
func New(cfg Config, source Source, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.RefreshTimeout <= 0 {
		cfg.RefreshTimeout = 30 * time.Second
	}
	if cfg.GoldID == "" {
		cfg.GoldID = market.IDGold18
	}
	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = []string{"*"}
	}

	s := &Server{
		cfg:    cfg,
		source: source,
		hub:    NewHub(cfg.AllowedOrigins, logger),
		logger: logger,
		now:    time.Now,
	}
	s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.Handler(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	return s
}

func (s *Server) setupRoutes() {
	s.router = mux.NewRouter()

	s.router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	s.router.HandleFunc("/ws", s.handleWebSocket).Methods(http.MethodGet)

	v1 := s.router.PathPrefix("/api/v1").Subrouter()
	v1.HandleFunc("/assets", s.handleAssets).Methods(http.MethodGet)
	v1.HandleFunc("/assets/{id}", s.handleAsset).Methods(http.MethodGet)
	v1.HandleFunc("/assets/{id}/chart", s.handleChart).Methods(http.MethodGet)
	v1.HandleFunc("/assets/{id}/convert", s.handleConvert).Methods(http.MethodGet)
	v1.HandleFunc("/highlights", s.handleHighlights).Methods(http.MethodGet)
	v1.HandleFunc("/digest", s.handleDigest).Methods(http.MethodGet)
	v1.HandleFunc("/refresh", s.handleRefresh).Methods(http.MethodPost)
}

// Handler returns the router wrapped in recovery, request logging and CORS.
func (s *Server) Handler() http.Handler {
	var h http.Handler = s.router
	h = handlers.CORS(
		handlers.AllowedOrigins(s.cfg.AllowedOrigins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type"}),
	)(h)
	h = handlers.CustomLoggingHandler(io.Discard, h, s.logRequest)
	h = handlers.RecoveryHandler(
		handlers.RecoveryLogger(recoveryLogger{s.logger}),
		handlers.PrintRecoveryStack(false),
	)(h)
	return h
}

func (s *Server) logRequest(_ io.Writer, p handlers.LogFormatterParams) {
	s.logger.Debug("http request",
		"method", p.Request.Method,
		"path", p.URL.Path,
		"status", p.StatusCode,
		"size", p.Size,
		"duration", time.Since(p.TimeStamp),
		"remote", p.Request.RemoteAddr,
	)
}

// recoveryLogger adapts slog to handlers.RecoveryHandlerLogger.
type recoveryLogger struct {
	logger *slog.Logger
}

func (l recoveryLogger) Println(v ...any) {
	l.logger.Error("panic in http handler", "panic", fmt.Sprint(v...))
}

// HandleResult pushes a cycle result to WebSocket subscribers. It lets the
// server act as the poller's result handler.
func (s *Server) HandleResult(res snapshot.Result) {
	s.hub.Broadcast(newEvent(res))
}

// Start listens on the configured address and blocks until Stop. It
// returns nil after a graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server started", "addr", s.cfg.Addr)

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("listen: %w", err)
	}
	return nil
}

// Stop closes WebSocket subscribers and shuts the HTTP server down.
func (s *Server) Stop(ctx context.Context) error {
	s.hub.Close()
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	s.logger.Info("http server stopped")
	return nil
}
