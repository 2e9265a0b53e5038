// Package api provides the HTTP surface: a liveness endpoint and a
// streaming chat endpoint guarded by a small admission gate.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/zenoharsh/ragserve/internal/log"
)

const (
	readHeaderTimeout = 10 * time.Second
	readTimeout       = 30 * time.Second

	// writeTimeout must cover a full streamed generation, which is bounded
	// by the engine's own timeout plus slack for slow clients.
	writeTimeout = 3 * time.Minute
	idleTimeout  = 2 * time.Minute

	shutdownTimeout = 10 * time.Second
)

// ServerConfig contains the dependencies and policy for the HTTP server.
type ServerConfig struct {
	Logger log.Logger

	// Engine answers chat questions. Nil puts the server in degraded mode:
	// the chat endpoint replies with a fixed notice and never touches the
	// model or the index.
	Engine Asker

	// CORSOrigins is the browser origin allowlist.
	CORSOrigins []string

	// GateCapacity is the number of chat requests served concurrently.
	// GateQueueDepth is how many more may wait for a slot before arrivals
	// are turned away. Zero values fall back to 2 and 8.
	GateCapacity   int
	GateQueueDepth int
}

// Server serves the chat API over HTTP.
type Server struct {
	logger log.Logger
	engine Asker
	gate   *gate
	pacing time.Duration

	handler http.Handler
}

// NewServer assembles the route table and middleware chain.
func NewServer(cfg ServerConfig) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = log.NewNop()
	}

	capacity := cfg.GateCapacity
	if capacity <= 0 {
		capacity = 2
	}
	queueDepth := cfg.GateQueueDepth
	if queueDepth <= 0 {
		queueDepth = 8
	}

	s := &Server{
		logger: logger,
		engine: cfg.Engine,
		gate:   newGate(capacity, queueDepth),
		pacing: tokenPacing,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleHealth)
	mux.HandleFunc("POST /chat", s.handleChat)

	var handler http.Handler = mux
	handler = corsMiddleware(cfg.CORSOrigins)(handler)
	handler = loggingMiddleware(logger)(handler)
	handler = recoveryMiddleware(logger)(handler)
	s.handler = handler

	return s
}

// Handler returns the fully wrapped route table. Exposed for tests.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Run serves HTTP on addr until ctx is cancelled, then shuts down
// gracefully so in-flight streams can finish.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.handler,
		ReadHeaderTimeout: readHeaderTimeout,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("serving http: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down http server: %w", err)
	}
	return <-errCh
}
