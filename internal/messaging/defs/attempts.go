package defs

import (
	"fmt"
	"strings"
	"time"

	"gitlab.com/fcv-2025.net/attempt-service/internal/domain"
	"gitlab.com/fcv-2025.net/attempt-service/internal/static/errs"
)

// Request payloads. Pointer fields tell an absent key from a zero value.
type (
	CreateAttemptRequest struct {
		UserID       *int64            `json:"user_id"`
		ExerciseID   *int64            `json:"exercise_id"`
		Code         *string           `json:"code"`
		Language     *string           `json:"language"`
		FunctionName *string           `json:"function_name"`
		TestCases    []domain.TestCase `json:"test_cases"`
	}

	GetAttemptRequest struct {
		ID *int64 `json:"id"`
	}

	UserAttemptsRequest struct {
		UserID *int64 `json:"user_id"`
	}

	ExerciseAttemptsRequest struct {
		ExerciseID *int64 `json:"exercise_id"`
		Limit      *int   `json:"limit,omitempty"`
	}

	BestAttemptRequest struct {
		UserID     *int64 `json:"user_id"`
		ExerciseID *int64 `json:"exercise_id"`
	}

	GradeEphemeralRequest struct {
		Code         *string           `json:"code"`
		Language     *string           `json:"language"`
		FunctionName *string           `json:"function_name"`
		TestCases    []domain.TestCase `json:"test_cases"`
	}

	AttemptGradedEvent struct {
		AttemptID       *int64  `json:"attempt_id"`
		ExecutionOutput *string `json:"execution_output"`
		LintOutput      *string `json:"lint_output"`
	}
)

// Reply payloads
type (
	ErrorReply struct {
		Error string `json:"error"`
	}

	UserAttemptsReply struct {
		Attempts []domain.AttemptSummary `json:"attempts"`
	}

	ExerciseAttemptsReply struct {
		Attempts []*domain.Attempt `json:"attempts"`
	}

	BestAttemptView struct {
		ID            int64     `json:"id"`
		ExerciseID    int64     `json:"exercise_id"`
		Stars         int       `json:"stars"`
		Score         int       `json:"score"`
		AttemptedAt   time.Time `json:"attempted_at"`
		CodeSubmitted string    `json:"code_submitted,omitempty"`
	}
)

func missing(fields ...string) error {
	return fmt.Errorf("%w: missing required fields: %s", errs.InvalidRequest, strings.Join(fields, ", "))
}

func (r *CreateAttemptRequest) Validate() error {
	if r.UserID == nil || r.ExerciseID == nil || r.Code == nil {
		return missing("user_id", "exercise_id", "code")
	}
	if r.Language == nil || r.FunctionName == nil || r.TestCases == nil {
		return fmt.Errorf("%w: missing grading information: language, function_name, test_cases", errs.InvalidRequest)
	}
	return nil
}

func (r *CreateAttemptRequest) Command() domain.CreateAttemptCommand {
	return domain.CreateAttemptCommand{
		UserID:       *r.UserID,
		ExerciseID:   *r.ExerciseID,
		Code:         *r.Code,
		Language:     *r.Language,
		FunctionName: *r.FunctionName,
		TestCases:    r.TestCases,
	}
}

func (r *GetAttemptRequest) Validate() error {
	if r.ID == nil || *r.ID <= 0 {
		return missing("id")
	}
	return nil
}

func (r *UserAttemptsRequest) Validate() error {
	if r.UserID == nil || *r.UserID <= 0 {
		return missing("user_id")
	}
	return nil
}

func (r *ExerciseAttemptsRequest) Validate() error {
	if r.ExerciseID == nil || *r.ExerciseID <= 0 {
		return missing("exercise_id")
	}
	if r.Limit != nil && *r.Limit < 0 {
		return fmt.Errorf("%w: limit must not be negative", errs.InvalidRequest)
	}
	return nil
}

// LimitOrZero returns the requested limit, 0 meaning unbounded
func (r *ExerciseAttemptsRequest) LimitOrZero() int {
	if r.Limit == nil {
		return 0
	}
	return *r.Limit
}

func (r *BestAttemptRequest) Validate() error {
	if r.UserID == nil || r.ExerciseID == nil {
		return missing("user_id", "exercise_id")
	}
	return nil
}

func (r *GradeEphemeralRequest) Validate() error {
	if r.Code == nil || r.Language == nil || r.FunctionName == nil || r.TestCases == nil {
		return missing("code", "language", "function_name", "test_cases")
	}
	return nil
}

func (r *GradeEphemeralRequest) GradeRequest() domain.GradeRequest {
	return domain.GradeRequest{
		Code:         *r.Code,
		Language:     *r.Language,
		FunctionName: *r.FunctionName,
		TestCases:    r.TestCases,
	}
}

func (e *AttemptGradedEvent) Validate() error {
	if e.AttemptID == nil {
		return missing("attempt_id")
	}
	return nil
}

func (e *AttemptGradedEvent) Event() domain.GradedEvent {
	ev := domain.GradedEvent{
		AttemptID:  *e.AttemptID,
		LintOutput: e.LintOutput,
	}
	if e.ExecutionOutput != nil {
		ev.ExecutionOutput = *e.ExecutionOutput
	}
	return ev
}

// NewBestAttemptView builds the best-attempt view. Code is included only when
// withCode is set.
func NewBestAttemptView(a *domain.Attempt, withCode bool) *BestAttemptView {
	if a == nil {
		return nil
	}
	v := &BestAttemptView{
		ID:          a.ID,
		ExerciseID:  a.ExerciseID,
		Stars:       a.Stars,
		Score:       a.Score,
		AttemptedAt: a.AttemptedAt,
	}
	if withCode {
		v.CodeSubmitted = a.CodeSubmitted
	}
	return v
}
