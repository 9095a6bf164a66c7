package schedulerengine

import (
	"context"
	"sync"
	"time"

	"gitlab.com/fcv-2025.net/attempt-service/internal/config"
	"gitlab.com/fcv-2025.net/attempt-service/internal/core/ports/primary"
	"gitlab.com/fcv-2025.net/attempt-service/internal/core/services/attempt"
)

// SchedulerEngine periodically fails attempts whose graded event never came
type SchedulerEngine struct {
	GradingCfg     *config.GradingConfig
	attemptService attempt.IAttemptService
	logger         primary.Logger
	now            func() time.Time
	wg             sync.WaitGroup
}

func NewSchedulerEngine(
	gradingCfg *config.GradingConfig,
	attemptService attempt.IAttemptService,
	logger primary.Logger,
) *SchedulerEngine {
	return &SchedulerEngine{
		GradingCfg:     gradingCfg,
		attemptService: attemptService,
		logger:         logger,
		now:            time.Now,
	}
}

// StartSweepEngine runs the sweep every SweepInterval until ctx is done
func (s *SchedulerEngine) StartSweepEngine(ctx context.Context) {
	ticker := time.NewTicker(s.GradingCfg.SweepInterval)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.SweepOnce(ctx)
			}
		}
	}()
	s.logger.Info("Pending attempt sweep started", "interval", s.GradingCfg.SweepInterval, "deadline", s.GradingCfg.GradingDeadline)
}

// Wait blocks until the sweep loop has returned
func (s *SchedulerEngine) Wait() {
	s.wg.Wait()
}

// SweepOnce expires stale attempts once and returns how many were failed
func (s *SchedulerEngine) SweepOnce(ctx context.Context) int {
	expired, err := s.attemptService.ExpireStale(ctx, s.now().UTC())
	if err != nil {
		s.logger.Error("Failed to expire stale attempts", "error", err)
	}
	if expired > 0 {
		s.logger.Info("Expired stale attempts", "count", expired)
	}
	return expired
}
