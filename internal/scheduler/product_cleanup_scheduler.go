package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/agrifarma/agrifarma-backend/pkg/logger"
	"github.com/robfig/cron/v3"
)

// ProductPurger deletes products created more than days ago.
type ProductPurger interface {
	PurgeOlderThan(ctx context.Context, days int) (int, error)
}

// ProductCleanupScheduler periodically removes products older than the
// configured maximum age.
type ProductCleanupScheduler struct {
	cron     *cron.Cron
	purger   ProductPurger
	schedule string
	maxDays  int
	timeout  time.Duration
}

func NewProductCleanupScheduler(purger ProductPurger, schedule string, maxDays int) *ProductCleanupScheduler {
	return &ProductCleanupScheduler{
		cron:     cron.New(),
		purger:   purger,
		schedule: schedule,
		maxDays:  maxDays,
		timeout:  5 * time.Minute,
	}
}

// Start registers the sweep and starts the cron loop. An empty schedule
// leaves the scheduler idle.
func (s *ProductCleanupScheduler) Start() error {
	if s.schedule == "" {
		logger.Info("Product cleanup scheduler disabled (no schedule)")
		return nil
	}
	if s.maxDays < 1 {
		return fmt.Errorf("product max age must be at least 1 day, got %d", s.maxDays)
	}

	if _, err := s.cron.AddFunc(s.schedule, s.run); err != nil {
		logger.Error("Failed to add cron job for product cleanup", err, map[string]interface{}{
			"schedule": s.schedule,
		})
		return fmt.Errorf("invalid cleanup schedule %q: %w", s.schedule, err)
	}

	s.cron.Start()
	logger.Info("Product cleanup scheduler started", map[string]interface{}{
		"schedule": s.schedule,
		"max_days": s.maxDays,
	})
	return nil
}

func (s *ProductCleanupScheduler) run() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	if _, err := s.RunOnce(ctx); err != nil {
		logger.Error("Scheduled product cleanup failed", err)
	}
}

// RunOnce performs a single sweep and returns the number of removed products.
func (s *ProductCleanupScheduler) RunOnce(ctx context.Context) (int, error) {
	logger.Info("Starting product cleanup", map[string]interface{}{
		"max_days": s.maxDays,
	})

	removed, err := s.purger.PurgeOlderThan(ctx, s.maxDays)
	if err != nil {
		return 0, err
	}

	logger.Info("Product cleanup finished", map[string]interface{}{
		"removed": removed,
	})
	return removed, nil
}

// Stop halts the cron loop and waits for a running sweep to finish.
func (s *ProductCleanupScheduler) Stop() {
	logger.Info("Stopping product cleanup scheduler...")
	<-s.cron.Stop().Done()
	logger.Info("Product cleanup scheduler stopped")
}
