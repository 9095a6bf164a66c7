package domain

import (
	"time"

	"gitlab.com/fcv-2025.net/attempt-service/internal/static/errs"
)

// AttemptStatus represents the lifecycle state of an attempt
type AttemptStatus string

const (
	AttemptStatusPending   AttemptStatus = "PENDING"
	AttemptStatusCompleted AttemptStatus = "COMPLETED"
	AttemptStatusError     AttemptStatus = "ERROR"
)

// IsTerminal reports whether no further transition is allowed from s.
func (s AttemptStatus) IsTerminal() bool {
	return s == AttemptStatusCompleted || s == AttemptStatusError
}

// Attempt is one graded submission of a user for an exercise
type Attempt struct {
	ID              int64         `db:"id" json:"id"`
	UserID          int64         `db:"user_id" json:"user_id"`
	ExerciseID      int64         `db:"exercise_id" json:"exercise_id"`
	CodeSubmitted   string        `db:"code_submitted" json:"code_submitted"`
	Language        string        `db:"language" json:"language"`
	TestsTotal      int           `db:"tests_total" json:"tests_total"`
	Score           int           `db:"score" json:"score"`
	Stars           int           `db:"stars" json:"stars"`
	Status          AttemptStatus `db:"status" json:"status"`
	AttemptedAt     time.Time     `db:"attempted_at" json:"attempted_at"`
	Feedback        *string       `db:"feedback" json:"feedback"`
	TestPassRate    *float64      `db:"test_pass_rate" json:"test_pass_rate"`
	StyleScore      *float64      `db:"style_score" json:"style_score"`
	ExecutionOutput *string       `db:"execution_output" json:"execution_output"`
	GradedAt        *time.Time    `db:"graded_at" json:"graded_at"`
}

// AttemptSummary is the short form returned when listing a user's attempts
type AttemptSummary struct {
	ID          int64         `json:"id"`
	ExerciseID  int64         `json:"exercise_id"`
	Score       int           `json:"score"`
	Stars       int           `json:"stars"`
	Status      AttemptStatus `json:"status"`
	AttemptedAt time.Time     `json:"attempted_at"`
}

type AttemptTable struct {
	ID              string
	UserID          string
	ExerciseID      string
	CodeSubmitted   string
	Language        string
	TestsTotal      string
	Score           string
	Stars           string
	Status          string
	AttemptedAt     string
	Feedback        string
	TestPassRate    string
	StyleScore      string
	ExecutionOutput string
	GradedAt        string
}

func GetAttemptTable() AttemptTable {
	return AttemptTable{
		ID:              "id",
		UserID:          "user_id",
		ExerciseID:      "exercise_id",
		CodeSubmitted:   "code_submitted",
		Language:        "language",
		TestsTotal:      "tests_total",
		Score:           "score",
		Stars:           "stars",
		Status:          "status",
		AttemptedAt:     "attempted_at",
		Feedback:        "feedback",
		TestPassRate:    "test_pass_rate",
		StyleScore:      "style_score",
		ExecutionOutput: "execution_output",
		GradedAt:        "graded_at",
	}
}

func (AttemptTable) TableName() string {
	return "user_exercise_attempts"
}

// Columns lists every column in scan order.
func (t AttemptTable) Columns() []string {
	return []string{
		t.ID, t.UserID, t.ExerciseID, t.CodeSubmitted, t.Language, t.TestsTotal,
		t.Score, t.Stars, t.Status, t.AttemptedAt, t.Feedback, t.TestPassRate,
		t.StyleScore, t.ExecutionOutput, t.GradedAt,
	}
}

// NewAttempt creates a new pending attempt
func NewAttempt(userID, exerciseID int64, code, language string, testsTotal int) *Attempt {
	return &Attempt{
		UserID:        userID,
		ExerciseID:    exerciseID,
		CodeSubmitted: code,
		Language:      language,
		TestsTotal:    testsTotal,
		Status:        AttemptStatusPending,
		AttemptedAt:   time.Now().UTC(),
	}
}

// Complete records a grading result and moves the attempt to COMPLETED.
func (a *Attempt) Complete(result GradingResult, at time.Time) error {
	if a.Status.IsTerminal() {
		return errs.AttemptFinalized
	}
	rate := result.TestPassRate
	style := result.StyleScore
	feedback := result.Feedback
	output := result.ExecutionOutput

	a.Score = result.Score
	a.Stars = result.Stars
	a.TestPassRate = &rate
	a.StyleScore = &style
	a.Feedback = &feedback
	a.ExecutionOutput = &output
	a.Status = AttemptStatusCompleted
	a.GradedAt = &at
	return nil
}

// Fail moves the attempt to ERROR with the given reason as feedback.
func (a *Attempt) Fail(reason string, at time.Time) error {
	if a.Status.IsTerminal() {
		return errs.AttemptFinalized
	}
	a.Score = 0
	a.Stars = 0
	a.Feedback = &reason
	a.Status = AttemptStatusError
	a.GradedAt = &at
	return nil
}

// Summary returns the listing form of the attempt.
func (a *Attempt) Summary() AttemptSummary {
	return AttemptSummary{
		ID:          a.ID,
		ExerciseID:  a.ExerciseID,
		Score:       a.Score,
		Stars:       a.Stars,
		Status:      a.Status,
		AttemptedAt: a.AttemptedAt,
	}
}

// Outranks reports whether a is a better attempt than b: more stars first,
// then a higher score, then the more recent one.
func (a *Attempt) Outranks(b *Attempt) bool {
	if a.Stars != b.Stars {
		return a.Stars > b.Stars
	}
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	return a.AttemptedAt.After(b.AttemptedAt)
}
