// Package server exposes the HTTP surface: the SSE event stream, the
// query API over stored batches, health and metrics.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/trendradar/trendradar/internal/app"
	"github.com/trendradar/trendradar/internal/config"
	"github.com/trendradar/trendradar/internal/logger"
)

// Server is the HTTP server for one application instance.
type Server struct {
	cfg    config.ServerConfig
	app    *app.App
	logger *logger.Logger

	httpServer *http.Server
	stream     *stream
}

// New builds the server. Routes are registered immediately; the event
// stream starts with Start.
func New(cfg config.ServerConfig, application *app.App, log *logger.Logger) *Server {
	s := &Server{
		cfg:    cfg,
		app:    application,
		logger: log,
		stream: newStream(cfg.SSEReplay, application.Metrics(), log),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /events", s.handleEvents)
	mux.HandleFunc("GET /healthz", s.handleHealthz)
	mux.HandleFunc("GET /api/status", s.handleStatus)
	mux.HandleFunc("GET /api/news/latest", s.handleLatest)
	mux.HandleFunc("GET /api/news", s.handleNewsByDate)
	mux.HandleFunc("GET /api/news/similar", s.handleSimilar)
	mux.HandleFunc("GET /api/news/search", s.handleSearch)
	mux.HandleFunc("GET /api/topics", s.handleTopics)
	mux.HandleFunc("POST /api/crawl", s.handleTriggerCrawl)
	mux.Handle("GET /metrics", promhttp.HandlerFor(application.Registry(), promhttp.HandlerOpts{}))

	s.httpServer = &http.Server{
		Addr:              net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	events, cancel := s.app.Bus().Subscribe()
	defer cancel()
	go s.stream.run(ctx, events)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("🌐 HTTP server listening",
			logger.Field{Key: "addr", Value: s.httpServer.Addr})
		if err := s.httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown failed: %w", err)
	}
	s.logger.Info("HTTP server stopped")
	return <-errCh
}

// Handler exposes the mux for tests.
func (s *Server) Handler() http.Handler { return s.httpServer.Handler }
