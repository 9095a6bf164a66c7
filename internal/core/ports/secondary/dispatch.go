package secondary

import (
	"context"
	"time"

	"gitlab.com/fcv-2025.net/attempt-service/internal/domain"
)

type DispatchStore interface {
	// SaveDispatch records an outstanding grading job
	SaveDispatch(ctx context.Context, dispatch *domain.Dispatch) error

	// GetDispatch retrieves the record for an attempt, nil when there is none
	GetDispatch(ctx context.Context, attemptID int64) (*domain.Dispatch, error)

	// DeleteDispatch removes the record for an attempt
	DeleteDispatch(ctx context.Context, attemptID int64) error

	// GetExpiredDispatches returns records whose deadline is not after now
	GetExpiredDispatches(ctx context.Context, now time.Time, limit int) ([]*domain.Dispatch, error)
}
