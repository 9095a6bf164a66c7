package attempt

import (
	"context"
	"time"

	"gitlab.com/fcv-2025.net/attempt-service/internal/domain"
)

// IAttemptService owns the attempt lifecycle: creation, grading and queries
type IAttemptService interface {
	// Create validates and records a submission, then grades it inline or
	// dispatches it to the sandbox depending on the grading mode
	Create(ctx context.Context, cmd domain.CreateAttemptCommand) (*domain.Attempt, error)

	// ApplyGradedEvent completes a pending attempt from a sandbox event.
	// Unknown or finished attempts are ignored.
	ApplyGradedEvent(ctx context.Context, event domain.GradedEvent) error

	// ExpireStale fails pending attempts whose grading deadline passed
	ExpireStale(ctx context.Context, now time.Time) (int, error)

	Get(ctx context.Context, id int64) (*domain.Attempt, error)
	ListByUser(ctx context.Context, userID int64) ([]domain.AttemptSummary, error)
	ListByExercise(ctx context.Context, exerciseID int64, limit int) ([]*domain.Attempt, error)
	Best(ctx context.Context, userID, exerciseID int64) (*domain.Attempt, error)
	BestPerExercise(ctx context.Context, userID int64) (map[int64]*domain.Attempt, error)
}
