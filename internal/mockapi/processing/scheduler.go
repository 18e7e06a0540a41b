// Package processing advances the mock backend's pending processes on a
// cron schedule.
package processing

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/GoSim-25-26J-441/go-sim-client/internal/mockapi/store"
	"github.com/GoSim-25-26J-441/go-sim-client/internal/projects/domain"
)

const DefaultSchedule = "@every 5s"

type Scheduler struct {
	store    store.Store
	logger   *zap.Logger
	schedule string
	timeout  time.Duration
	cron     *cron.Cron
}

func NewScheduler(s store.Store, logger *zap.Logger, schedule string) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if schedule == "" {
		schedule = DefaultSchedule
	}
	return &Scheduler{
		store:    s,
		logger:   logger,
		schedule: schedule,
		timeout:  30 * time.Second,
	}
}

// Start registers the processing job and starts the cron runner.
func (s *Scheduler) Start() error {
	c := cron.New()
	_, err := c.AddFunc(s.schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()
		if _, err := s.RunOnce(ctx); err != nil {
			s.logger.Error("process run failed", zap.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("failed to create cron job %q: %w", s.schedule, err)
	}

	s.cron = c
	s.logger.Info("process scheduler started", zap.String("schedule", s.schedule))
	c.Start()
	return nil
}

// Stop halts the runner and waits for a running job to finish.
func (s *Scheduler) Stop() {
	if s.cron == nil {
		return
	}
	<-s.cron.Stop().Done()
}

// RunOnce moves every pending process through running to completed and
// returns how many completed.
func (s *Scheduler) RunOnce(ctx context.Context) (int, error) {
	pending, err := s.store.PendingProcesses(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list pending processes: %w", err)
	}

	done := 0
	for i := range pending {
		p := pending[i]
		if err := ctx.Err(); err != nil {
			return done, err
		}

		p.Status = domain.StatusRunning
		if err := s.store.UpdateProcess(ctx, &p); err != nil {
			s.logger.Warn("skipping process", zap.String("process_id", p.ID), zap.Error(err))
			continue
		}

		p.Status = domain.StatusCompleted
		p.Result = "asset " + p.AssetID + " processed"
		if err := s.store.UpdateProcess(ctx, &p); err != nil {
			p.Status = domain.StatusFailed
			p.Result = err.Error()
			s.logger.Error("process failed", zap.String("process_id", p.ID), zap.Error(err))
			if ferr := s.store.UpdateProcess(ctx, &p); ferr != nil {
				s.logger.Error("failed to mark process failed", zap.String("process_id", p.ID), zap.Error(ferr))
			}
			continue
		}
		done++
		s.logger.Debug("process completed",
			zap.String("project_id", p.ProjectID),
			zap.String("process_id", p.ID))
	}
	return done, nil
}
