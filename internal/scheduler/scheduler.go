package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/mamadbah2/shopkeeper/internal/config"
	"github.com/mamadbah2/shopkeeper/internal/repository"
	"github.com/mamadbah2/shopkeeper/internal/service/sales"
	"github.com/mamadbah2/shopkeeper/internal/service/stats"
	"github.com/mamadbah2/shopkeeper/internal/service/stock"
)

// Scheduler manages the nightly expiry sweep and the daily stats snapshot.
type Scheduler struct {
	cron     *cron.Cron
	store    repository.Store
	stockSvc *stock.Service
	salesSvc *sales.Processor
	statsSvc *stats.Service
	cfg      config.JobsConfig
	logger   *zap.Logger
}

// NewScheduler creates a new scheduler instance.
func NewScheduler(cfg config.JobsConfig, store repository.Store, stockSvc *stock.Service, salesSvc *sales.Processor, statsSvc *stats.Service, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}

	location, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		logger.Warn("invalid timezone, falling back to UTC", zap.String("timezone", cfg.Timezone), zap.Error(err))
		location = time.UTC
	}

	return &Scheduler{
		cron:     cron.New(cron.WithLocation(location)),
		store:    store,
		stockSvc: stockSvc,
		salesSvc: salesSvc,
		statsSvc: statsSvc,
		cfg:      cfg,
		logger:   logger,
	}
}

// Start registers the cron entries and starts the scheduler.
func (s *Scheduler) Start() {
	s.logger.Info("starting scheduler",
		zap.String("sweep_schedule", s.cfg.SweepSchedule),
		zap.String("snapshot_schedule", s.cfg.SnapshotSchedule))

	if _, err := s.cron.AddFunc(s.cfg.SweepSchedule, s.runExpirySweep); err != nil {
		s.logger.Error("failed to schedule expiry sweep", zap.Error(err))
	}
	if _, err := s.cron.AddFunc(s.cfg.SnapshotSchedule, s.runDailySnapshot); err != nil {
		s.logger.Error("failed to schedule daily snapshot", zap.Error(err))
	}

	s.cron.Start()
}

// Stop stops the scheduler.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	s.cron.Stop()
}

func (s *Scheduler) runExpirySweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	s.forEachOwner(ctx, "expiry sweep", func(userID string) error {
		retired, err := s.stockSvc.SweepExpired(ctx, userID)
		if err != nil {
			return err
		}
		if retired > 0 {
			s.logger.Info("expired stock retired", zap.String("user_id", userID), zap.Int("retired", retired))
		}
		return nil
	})
}

// runDailySnapshot reconciles each owner's ledgers before summarizing them, so the
// snapshot is taken at a repaired, quiescent point.
func (s *Scheduler) runDailySnapshot() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	s.forEachOwner(ctx, "daily snapshot", func(userID string) error {
		if created, err := s.salesSvc.Reconcile(ctx, userID); err != nil {
			s.logger.Error("reconciliation failed", zap.String("user_id", userID), zap.Error(err))
		} else if created > 0 {
			s.logger.Warn("reconciliation recreated dues", zap.String("user_id", userID), zap.Int("created", created))
		}

		_, err := s.statsSvc.Snapshot(ctx, userID)
		return err
	})
}

func (s *Scheduler) forEachOwner(ctx context.Context, job string, fn func(userID string) error) {
	owners, err := s.store.ListOwners(ctx)
	if err != nil {
		s.logger.Error("failed listing owners", zap.String("job", job), zap.Error(err))
		return
	}

	for _, userID := range owners {
		if err := fn(userID); err != nil {
			s.logger.Error("scheduled job failed for owner",
				zap.String("job", job),
				zap.String("user_id", userID),
				zap.Error(err))
		}
	}
}
