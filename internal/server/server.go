// Package server wires routes, middleware, and lifecycle for the HTTP
// surface: the upload UI, the JSON API, and the optional metrics listener.
package server

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/rs/cors"
	"golang.org/x/time/rate"

	"github.com/FACorreiaa/statement-insights/internal/domain/statements/handler"
	"github.com/FACorreiaa/statement-insights/pkg/config"
	"github.com/FACorreiaa/statement-insights/pkg/metrics"
)

const shutdownTimeout = 10 * time.Second

// Server owns the application listener and the optional metrics listener.
type Server struct {
	logger  *slog.Logger
	app     *http.Server
	metrics *http.Server
}

// New builds the route table and middleware chain.
func New(cfg *config.Config, h *handler.Handler, staticFS fs.FS, m *metrics.Metrics, log *slog.Logger) *Server {
	mux := http.NewServeMux()

	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(staticFS)))
	mux.Handle("GET /{$}", m.InstrumentHandler("index", http.HandlerFunc(h.UploadPage)))
	mux.Handle("POST /upload", m.InstrumentHandler("upload", http.HandlerFunc(h.Upload)))
	mux.HandleFunc("GET /healthz", h.Healthz)

	// JSON API, CORS-enabled for browser clients on other origins.
	api := http.NewServeMux()
	api.Handle("POST /api/v1/statements/process", m.InstrumentHandler("process", http.HandlerFunc(h.ProcessAPI)))
	api.Handle("GET /api/v1/categories/search", m.InstrumentHandler("category_search", http.HandlerFunc(h.SearchCategories)))
	api.Handle("GET /api/v1/rules", m.InstrumentHandler("rules", http.HandlerFunc(h.ListRules)))
	corsMiddleware := cors.New(cors.Options{
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "X-Request-ID"},
	})
	mux.Handle("/api/", corsMiddleware.Handler(api))

	limiter := rate.NewLimiter(rate.Limit(cfg.Server.RateLimitPerSecond), cfg.Server.RateLimitBurst)
	root := requestLogging(log, recoverPanics(log, rateLimit(limiter, mux)))

	s := &Server{
		logger: log,
		app: &http.Server{
			Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
			Handler:           root,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}

	// Metrics listen on their own port so the scrape endpoint never shares
	// the public surface.
	if cfg.Observability.MetricsEnabled {
		metricsMux := http.NewServeMux()
		metricsMux.Handle("GET /metrics", m.Handler())
		s.metrics = &http.Server{
			Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Observability.MetricsPort),
			Handler:           metricsMux,
			ReadHeaderTimeout: 10 * time.Second,
		}
	}

	return s
}

// Run starts the listeners and blocks until ctx is cancelled or a listener
// fails, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 2)

	go func() {
		s.logger.Info("http server listening", "addr", s.app.Addr)
		if err := s.app.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	if s.metrics != nil {
		go func() {
			s.logger.Info("metrics server listening", "addr", s.metrics.Addr)
			if err := s.metrics.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- fmt.Errorf("metrics server: %w", err)
			}
		}()
	}

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down http servers")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	err := s.app.Shutdown(shutdownCtx)
	if s.metrics != nil {
		if merr := s.metrics.Shutdown(shutdownCtx); err == nil {
			err = merr
		}
	}
	return err
}
