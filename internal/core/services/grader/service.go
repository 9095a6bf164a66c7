package grader

import (
	"context"

	"gitlab.com/fcv-2025.net/attempt-service/internal/domain"
)

// IGraderService grades code through the sandbox without storing anything
type IGraderService interface {
	// Grade runs the submission against its test cases and lints it.
	// Caller errors are returned as errors; sandbox failures are folded into
	// a zero result.
	Grade(ctx context.Context, req domain.GradeRequest) (domain.GradingResult, error)
}
