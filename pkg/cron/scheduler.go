// Package cron provides scheduled background jobs using robfig/cron.
package cron

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/FACorreiaa/loan-ledger/internal/domain/ingest/repository"
)

// Scheduler manages background scheduled jobs using robfig/cron.
type Scheduler struct {
	cron   *cron.Cron
	repo   repository.IngestRepository
	logger *slog.Logger
}

// NewScheduler creates a new job scheduler.
func NewScheduler(repo repository.IngestRepository, logger *slog.Logger) *Scheduler {
	// Create cron with seconds disabled (standard 5-field format)
	c := cron.New(cron.WithLogger(cron.VerbosePrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelDebug))))

	return &Scheduler{
		cron:   c,
		repo:   repo,
		logger: logger,
	}
}

// Start begins scheduled jobs.
func (s *Scheduler) Start() error {
	// Ingest health sweep: runs daily at 2:00 AM
	_, err := s.cron.AddFunc("0 2 * * *", s.sweepIngestHealth)
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

// RunNow manually triggers the health sweep (for testing/admin).
func (s *Scheduler) RunNow() {
	go s.sweepIngestHealth()
}

// sweepIngestHealth reports how many statements sit in each pipeline
// status, so a run of parser failures shows up in the logs overnight
// instead of waiting for someone to open the statement list.
func (s *Scheduler) sweepIngestHealth() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	s.logger.Info("starting ingest health sweep")

	counts, err := s.repo.CountByStatus(ctx)
	if err != nil {
		s.logger.Error("failed to count statements by status", slog.Any("error", err))
		return
	}

	if counts.Errored > 0 {
		s.logger.Warn("statements in error status",
			slog.Int64("errored", counts.Errored),
			slog.Int64("processed", counts.Processed),
		)
	}

	s.logger.Info("ingest health sweep completed",
		slog.Int64("processed", counts.Processed),
		slog.Int64("errored", counts.Errored),
	)
}
