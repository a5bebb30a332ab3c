// Package api provides the HTTP surface of careerbot: the Kakao skill
// webhook, the local chat-test endpoint, the health probe, and the read-only
// profile and record lookups.
package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/3min-career/careerbot/internal/flow"
	"github.com/3min-career/careerbot/internal/genai"
	"github.com/3min-career/careerbot/internal/store"
)

// Server timing constants.
const (
	// DefaultAddr is the listen address when none is configured.
	DefaultAddr = ":3000"
	// ReadHeaderTimeout bounds request header reads.
	ReadHeaderTimeout = 10 * time.Second
	// ShutdownTimeout bounds graceful shutdown once the context is cancelled.
	ShutdownTimeout = 10 * time.Second
)

// Opts holds configuration for the API server.
type Opts struct {
	Addr string
}

// Option configures API server creation.
type Option func(*Opts)

// WithAddr sets the listen address.
func WithAddr(addr string) Option {
	return func(o *Opts) { o.Addr = addr }
}

// Server wires the dispatcher and store behind the HTTP handlers.
type Server struct {
	st         store.Store
	dispatcher *flow.Dispatcher
	addr       string
}

// NewServer creates an API server for the given dependencies.
func NewServer(st store.Store, dispatcher *flow.Dispatcher, opts ...Option) *Server {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	return &Server{st: st, dispatcher: dispatcher, addr: cfg.Addr}
}

// newStore selects a backend from the store options: Postgres or SQLite by
// DSN shape, in-memory when no DSN is configured.
func newStore(storeOpts []store.Option) (store.Store, error) {
	var cfg store.Opts
	for _, opt := range storeOpts {
		opt(&cfg)
	}

	if cfg.DSN == "" {
		slog.Warn("api.newStore: no database DSN configured, using in-memory store")
		return store.NewInMemoryStore(), nil
	}

	switch store.DetectDSNType(cfg.DSN) {
	case "postgres":
		slog.Info("api.newStore: using PostgreSQL store")
		return store.NewPostgresStore(storeOpts...)
	default:
		slog.Info("api.newStore: using SQLite store", "path", cfg.DSN)
		return store.NewSQLiteStore(storeOpts...)
	}
}

// Run assembles the full service (store, completion client, controllers,
// dispatcher, HTTP server) and blocks until ctx is cancelled or the listener
// fails.
func Run(ctx context.Context, storeOpts []store.Option, genaiOpts []genai.Option, apiOpts ...Option) error {
	st, err := newStore(storeOpts)
	if err != nil {
		return fmt.Errorf("failed to initialize store: %w", err)
	}
	defer st.Close()

	client := genai.NewClient(genaiOpts...)
	if client.MockMode() {
		slog.Warn("api.Run: completion client running in mock mode")
	}

	stateManager := flow.NewStoreBasedStateManager(st)
	dispatcher := flow.NewDispatcher(
		stateManager,
		st,
		flow.NewOnboardingFlow(stateManager, st),
		flow.NewRecordFlow(stateManager, st),
		flow.NewConversationFlow(stateManager, st, client, flow.NewGoRunner()),
	)

	server := NewServer(st, dispatcher, apiOpts...)
	httpServer := &http.Server{
		Addr:              server.addr,
		Handler:           server.Routes(),
		ReadHeaderTimeout: ReadHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("api.Run: careerbot API listening", "addr", server.addr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		slog.Info("api.Run: shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
		return nil
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	}
}

// Routes builds the request multiplexer.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /webhook", s.webhookHandler)
	mux.HandleFunc("GET /api/status", s.statusHandler)
	mux.HandleFunc("POST /api/chat", s.chatHandler)
	mux.HandleFunc("GET /api/user/{id}", s.getUserHandler)
	mux.HandleFunc("GET /api/user/{id}/records", s.listRecordsHandler)
	return mux
}
