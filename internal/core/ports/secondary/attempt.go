package secondary

import (
	"context"
	"time"

	"gitlab.com/fcv-2025.net/attempt-service/internal/domain"
)

type AttemptRepository interface {
	// CreateAttempt inserts a new attempt and sets its ID
	CreateAttempt(ctx context.Context, attempt *domain.Attempt) error

	// GetAttempt retrieves an attempt by ID, nil when it does not exist
	GetAttempt(ctx context.Context, id int64) (*domain.Attempt, error)

	// CompleteAttempt stores a grading result on a pending attempt.
	// It reports false when the attempt was missing or already terminal.
	CompleteAttempt(ctx context.Context, id int64, result domain.GradingResult, gradedAt time.Time) (bool, error)

	// FailAttempt moves a pending attempt to ERROR.
	// It reports false when the attempt was missing or already terminal.
	FailAttempt(ctx context.Context, id int64, feedback string, failedAt time.Time) (bool, error)

	// ListByUser returns a user's attempts, newest first
	ListByUser(ctx context.Context, userID int64) ([]*domain.Attempt, error)

	// ListByExercise returns an exercise's attempts, newest first. limit <= 0 means all.
	ListByExercise(ctx context.Context, exerciseID int64, limit int) ([]*domain.Attempt, error)

	// GetBestAttempt returns the highest ranked attempt, nil when there is none
	GetBestAttempt(ctx context.Context, userID, exerciseID int64) (*domain.Attempt, error)

	// GetBestAttemptsByUser returns the highest ranked attempt per exercise
	GetBestAttemptsByUser(ctx context.Context, userID int64) ([]*domain.Attempt, error)

	// ListStalePending returns pending attempts created before cutoff
	ListStalePending(ctx context.Context, cutoff time.Time, limit int) ([]*domain.Attempt, error)
}
