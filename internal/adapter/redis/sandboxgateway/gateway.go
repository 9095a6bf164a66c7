// Package sandboxgateway reaches the code execution sandbox over the bus
package sandboxgateway

import (
	"context"
	"fmt"

	"gitlab.com/fcv-2025.net/attempt-service/internal/adapter/redis/bus"
	"gitlab.com/fcv-2025.net/attempt-service/internal/core/ports/primary"
	"gitlab.com/fcv-2025.net/attempt-service/internal/core/ports/secondary"
	"gitlab.com/fcv-2025.net/attempt-service/internal/domain"
	"gitlab.com/fcv-2025.net/attempt-service/internal/static/errs"
)

const (
	SubjectExecutionRun  = "execution.run"
	SubjectExecutionJobs = "execution.jobs"
)

var _ secondary.ExecutionGateway = (*Gateway)(nil)

// Gateway implements the ExecutionGateway interface on the Redis bus
type Gateway struct {
	bus    *bus.Bus
	logger primary.Logger
}

// NewGateway creates a sandbox gateway
func NewGateway(b *bus.Bus, logger primary.Logger) *Gateway {
	return &Gateway{
		bus:    b,
		logger: logger,
	}
}

// Execute runs or lints code and waits for the sandbox reply. The caller
// bounds the wait through ctx.
func (g *Gateway) Execute(ctx context.Context, req domain.ExecutionRequest) (*domain.ExecutionReply, error) {
	var reply domain.ExecutionReply
	if err := g.bus.Request(ctx, SubjectExecutionRun, req, &reply); err != nil {
		g.logger.Warn("Sandbox request failed", "mode", req.Mode, "language", req.Language, "error", err)
		if req.Mode == domain.ExecutionModeLint {
			return nil, fmt.Errorf("%w: %v", errs.LintUnavailable, err)
		}
		return nil, fmt.Errorf("%w: %v", errs.ExecutionUnavailable, err)
	}
	return &reply, nil
}

// Dispatch hands a grading job to the sandbox without waiting
func (g *Gateway) Dispatch(ctx context.Context, job *domain.GradingJob) error {
	if err := g.bus.Publish(ctx, SubjectExecutionJobs, job); err != nil {
		g.logger.Error("Failed to dispatch grading job", "attemptId", job.AttemptID, "jobId", job.JobID, "error", err)
		return fmt.Errorf("failed to dispatch grading job: %w", err)
	}
	return nil
}
