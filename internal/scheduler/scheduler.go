// Package scheduler runs the periodic maintenance sweeps: boost expiry and
// the weekly task reset.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"TB_telegram_miniapp/internal/metrics"
	"TB_telegram_miniapp/internal/model"
	"TB_telegram_miniapp/pkg/logger"

	"github.com/go-co-op/gocron"
	"go.uber.org/zap"
)

const (
	JobBoostExpiry = "boost_expiry"
	JobWeeklyReset = "weekly_reset"

	defaultJobTimeout = 30 * time.Second
)

type Config struct {
	Enabled             bool          `json:"enabled"`
	BoostExpiryInterval time.Duration `json:"boostExpiryInterval"`
	WeeklyResetCron     string        `json:"weeklyResetCron"`
	JobTimeout          time.Duration `json:"jobTimeout"`
}

type BoostExpirer interface {
	ExpireBoosts(ctx context.Context) (int64, error)
}

type TaskResetter interface {
	ResetByType(ctx context.Context, taskType model.TaskType) (int64, error)
}

// Scheduler manages the maintenance jobs.
type Scheduler struct {
	scheduler *gocron.Scheduler
	cfg       Config
	boosts    BoostExpirer
	tasks     TaskResetter
}

func New(cfg Config, boosts BoostExpirer, tasks TaskResetter) *Scheduler {
	if cfg.JobTimeout <= 0 {
		cfg.JobTimeout = defaultJobTimeout
	}

	s := gocron.NewScheduler(time.UTC)
	// A sweep that is still running when its next tick comes is not doubled up.
	s.SingletonModeAll()

	return &Scheduler{
		scheduler: s,
		cfg:       cfg,
		boosts:    boosts,
		tasks:     tasks,
	}
}

// Start registers the jobs and runs them in the background.
func (s *Scheduler) Start() error {
	if s.cfg.BoostExpiryInterval > 0 {
		if _, err := s.scheduler.Every(s.cfg.BoostExpiryInterval).Do(s.RunBoostExpiry); err != nil {
			return fmt.Errorf("failed to schedule boost expiry: %w", err)
		}
	}
	if s.cfg.WeeklyResetCron != "" {
		if _, err := s.scheduler.Cron(s.cfg.WeeklyResetCron).Do(s.RunWeeklyReset); err != nil {
			return fmt.Errorf("failed to schedule weekly reset: %w", err)
		}
	}

	s.scheduler.StartAsync()

	logger.Logger().Info("Scheduler started",
		zap.Duration("boost_expiry_interval", s.cfg.BoostExpiryInterval),
		zap.String("weekly_reset_cron", s.cfg.WeeklyResetCron),
		zap.Int("jobs", len(s.scheduler.Jobs())),
	)

	return nil
}

// Stop terminates all scheduled jobs.
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

func (s *Scheduler) RunBoostExpiry() {
	s.run(JobBoostExpiry, func(ctx context.Context) (int64, error) {
		return s.boosts.ExpireBoosts(ctx)
	})
}

func (s *Scheduler) RunWeeklyReset() {
	s.run(JobWeeklyReset, func(ctx context.Context) (int64, error) {
		return s.tasks.ResetByType(ctx, model.TaskTypeWeekly)
	})
}

func (s *Scheduler) run(job string, sweep func(ctx context.Context) (int64, error)) {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.JobTimeout)
	defer cancel()

	start := time.Now()
	rows, err := sweep(ctx)
	if err != nil {
		metrics.SweepFailuresTotal.WithLabelValues(job).Inc()
		logger.Logger().Error("Maintenance job failed", zap.String("job", job), zap.Error(err))
		return
	}

	metrics.SweepRowsTotal.WithLabelValues(job).Add(float64(rows))
	logger.Logger().Info("Maintenance job finished",
		zap.String("job", job),
		zap.Int64("rows", rows),
		zap.Duration("took", time.Since(start)),
	)
}
