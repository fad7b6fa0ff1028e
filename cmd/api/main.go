// Statement-insights: upload bank statements, get categorized spending
// totals, near-miss rule suggestions, and charts back.
package main

import (
	"context"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/FACorreiaa/statement-insights/internal/server"
	"github.com/FACorreiaa/statement-insights/pkg/config"
	"github.com/FACorreiaa/statement-insights/pkg/logger"
	"github.com/FACorreiaa/statement-insights/web"
)

func main() {
	// Initialize logger first
	log := logger.Init()

	cfg, err := config.Load()
	if err != nil {
		log.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	deps, err := InitDependencies(cfg, log)
	if err != nil {
		log.Error("failed to init dependencies", "error", err)
		os.Exit(1)
	}
	defer deps.Cleanup()

	// Janitor reclaims upload batches abandoned by crashed requests.
	if err := deps.Janitor.Start(); err != nil {
		log.Error("failed to start janitor", "error", err)
		os.Exit(1)
	}
	defer func() { <-deps.Janitor.Stop().Done() }()

	staticFS, err := fs.Sub(web.StaticFS, "static")
	if err != nil {
		log.Error("failed to mount static assets", "error", err)
		os.Exit(1)
	}

	srv := server.New(cfg, deps.StatementsHandler, staticFS, deps.Metrics, log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := srv.Run(ctx); err != nil {
		log.Error("server failed", "error", err)
		os.Exit(1)
	}
	log.Info("shutdown complete")
}
