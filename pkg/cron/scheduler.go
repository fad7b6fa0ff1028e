// Package cron provides scheduled background jobs using robfig/cron.
package cron

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/FACorreiaa/statement-insights/pkg/spool"
)

// Scheduler manages background scheduled jobs using robfig/cron.
type Scheduler struct {
	cron   *cron.Cron
	spool  *spool.Spool
	maxAge time.Duration
	logger *slog.Logger
}

// NewScheduler creates a new job scheduler. maxAge is how long an upload
// batch may sit in the spool before the janitor reclaims it.
func NewScheduler(spoolStore *spool.Spool, maxAge time.Duration, logger *slog.Logger) *Scheduler {
	// Create cron with seconds disabled (standard 5-field format)
	c := cron.New(cron.WithLogger(cron.VerbosePrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelDebug))))

	return &Scheduler{
		cron:   c,
		spool:  spoolStore,
		maxAge: maxAge,
		logger: logger,
	}
}

// Start begins scheduled jobs.
func (s *Scheduler) Start() error {
	// Spool janitor: runs every 15 minutes
	_, err := s.cron.AddFunc("*/15 * * * *", s.sweepSpool)
	if err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info("cron scheduler started",
		slog.Int("jobs", len(s.cron.Entries())),
	)
	return nil
}

// Stop gracefully stops all scheduled jobs.
func (s *Scheduler) Stop() context.Context {
	s.logger.Info("cron scheduler stopping")
	return s.cron.Stop()
}

// RunNow manually triggers the spool sweep (for testing/admin).
func (s *Scheduler) RunNow() {
	go s.sweepSpool()
}

// sweepSpool reclaims upload batches older than the configured TTL. Requests
// remove their own batch on completion; the sweep catches batches left behind
// by crashed or interrupted requests.
func (s *Scheduler) sweepSpool() {
	removed, err := s.spool.Sweep(s.maxAge)
	if err != nil {
		s.logger.Error("spool sweep failed", slog.Any("error", err))
		return
	}

	if removed > 0 {
		s.logger.Info("spool sweep reclaimed abandoned batches",
			slog.Int("removed", removed),
			slog.Duration("max_age", s.maxAge),
		)
		return
	}
	s.logger.Debug("spool sweep found nothing to reclaim")
}
