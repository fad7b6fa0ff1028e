package main

import (
	"context"
	"fmt"
	"html/template"
	"log/slog"
	"time"

	"github.com/FACorreiaa/statement-insights/internal/domain/categorization"
	"github.com/FACorreiaa/statement-insights/internal/domain/charts"
	"github.com/FACorreiaa/statement-insights/internal/domain/extract"
	"github.com/FACorreiaa/statement-insights/internal/domain/insights"
	"github.com/FACorreiaa/statement-insights/internal/domain/statements"
	statementshandler "github.com/FACorreiaa/statement-insights/internal/domain/statements/handler"
	"github.com/FACorreiaa/statement-insights/pkg/config"
	"github.com/FACorreiaa/statement-insights/pkg/cron"
	"github.com/FACorreiaa/statement-insights/pkg/db"
	"github.com/FACorreiaa/statement-insights/pkg/metrics"
	"github.com/FACorreiaa/statement-insights/pkg/spool"
	"github.com/FACorreiaa/statement-insights/web"
)

// Dependencies holds all application dependencies
type Dependencies struct {
	Config *config.Config
	Logger *slog.Logger
	DB     *db.DB // nil when the rules DB is disabled

	Spool     *spool.Spool
	Metrics   *metrics.Metrics // nil when metrics are disabled
	Janitor   *cron.Scheduler
	Templates *template.Template

	// Services
	CategorizationService *categorization.Service
	InsightsService       *insights.Service
	StatementsService     *statements.Service

	// Handlers
	StatementsHandler *statementshandler.Handler
}

// InitDependencies initializes all application dependencies
func InitDependencies(cfg *config.Config, logger *slog.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config: cfg,
		Logger: logger,
	}

	// Initialize database
	if err := deps.initDatabase(); err != nil {
		return nil, fmt.Errorf("failed to init database: %w", err)
	}

	// Initialize spool, metrics, janitor, templates
	if err := deps.initInfrastructure(); err != nil {
		return nil, fmt.Errorf("failed to init infrastructure: %w", err)
	}

	// Initialize services
	if err := deps.initServices(); err != nil {
		return nil, fmt.Errorf("failed to init services: %w", err)
	}

	// Initialize handlers
	if err := deps.initHandlers(); err != nil {
		return nil, fmt.Errorf("failed to init handlers: %w", err)
	}

	logger.Info("all dependencies initialized successfully")

	return deps, nil
}

// initDatabase connects the optional rules database and runs migrations.
// Disabled is the default; the service carries a built-in rule table.
func (d *Dependencies) initDatabase() error {
	if !d.Config.RulesDB.Enabled {
		d.Logger.Info("rules database disabled, using built-in rule table")
		return nil
	}

	database, err := db.New(db.Config{
		DSN:             d.Config.RulesDB.DSN(),
		MaxConns:        25,
		MinConns:        5,
		MaxConnLifetime: 5 * time.Minute,
		MaxConnIdleTime: 10 * time.Minute,
	}, d.Logger)
	if err != nil {
		return err
	}

	d.DB = database

	// Run migrations
	if err := d.DB.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	d.Logger.Info("database connected and migrations completed successfully")
	return nil
}

// initInfrastructure sets up the upload spool, the metrics registry, the
// spool janitor, and the page templates.
func (d *Dependencies) initInfrastructure() error {
	spoolStore, err := spool.New(d.Config.Spool.Dir)
	if err != nil {
		return fmt.Errorf("failed to init spool: %w", err)
	}
	d.Spool = spoolStore

	if d.Config.Observability.MetricsEnabled {
		d.Metrics = metrics.New()
	}

	ttl := time.Duration(d.Config.Spool.TTLMinutes) * time.Minute
	d.Janitor = cron.NewScheduler(d.Spool, ttl, d.Logger)

	tmpl, err := web.Templates(d.Config.Display.Currency)
	if err != nil {
		return fmt.Errorf("failed to parse templates: %w", err)
	}
	d.Templates = tmpl

	d.Logger.Info("infrastructure initialized", "spool_dir", d.Spool.BasePath())
	return nil
}

// initServices builds the categorization, insights, and pipeline services.
func (d *Dependencies) initServices() error {
	d.CategorizationService = categorization.NewService(d.Logger)
	if d.DB != nil {
		d.CategorizationService.WithRepository(categorization.NewRepository(d.DB.Pool))

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		d.CategorizationService.LoadRules(ctx)
	}

	d.InsightsService = insights.NewService(d.CategorizationService, d.Logger)

	d.StatementsService = statements.NewService(
		extract.NewExtractor(d.Logger),
		d.InsightsService,
		charts.NewRenderer(),
		d.Logger,
	).WithMetrics(d.Metrics)

	d.Logger.Info("services initialized",
		"rules", d.CategorizationService.RuleCount(),
		"rule_source", d.CategorizationService.RuleSource(),
	)
	return nil
}

// initHandlers initializes all handler dependencies
func (d *Dependencies) initHandlers() error {
	maxUpload := int64(d.Config.Server.MaxUploadMB) << 20
	d.StatementsHandler = statementshandler.New(
		d.StatementsService,
		d.CategorizationService,
		d.Spool,
		d.Templates,
	).WithMaxUploadBytes(maxUpload)

	d.Logger.Info("handlers initialized")
	return nil
}

// Cleanup closes all resources
func (d *Dependencies) Cleanup() {
	if d.CategorizationService != nil {
		if err := d.CategorizationService.Close(); err != nil {
			d.Logger.Warn("failed to close categorization service", "error", err)
		}
	}
	if d.DB != nil {
		d.DB.Close()
	}
	d.Logger.Info("cleanup completed")
}
