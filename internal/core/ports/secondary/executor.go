package secondary

import (
	"context"

	"gitlab.com/fcv-2025.net/attempt-service/internal/domain"
)

// ExecutionGateway reaches the sandbox that actually runs submitted code.
type ExecutionGateway interface {
	// Execute runs code and waits for the sandbox reply. The deadline comes from ctx.
	Execute(ctx context.Context, req domain.ExecutionRequest) (*domain.ExecutionReply, error)

	// Dispatch hands a grading job to the sandbox without waiting. The outcome
	// arrives later as a graded event.
	Dispatch(ctx context.Context, job *domain.GradingJob) error
}
