package domain

import (
	"fmt"
	"strings"

	"gitlab.com/fcv-2025.net/attempt-service/internal/static/errs"
)

// Language identifies the toolchain a submission is written for
type Language string

const (
	LanguagePython     Language = "python"
	LanguageJavaScript Language = "javascript"
)

// ParseLanguage normalises a language tag and rejects unsupported ones.
func ParseLanguage(tag string) (Language, error) {
	switch lang := Language(strings.ToLower(strings.TrimSpace(tag))); lang {
	case LanguagePython, LanguageJavaScript:
		return lang, nil
	default:
		return "", fmt.Errorf("%w: %s", errs.UnsupportedLanguage, tag)
	}
}

// GradeRequest carries everything needed to grade code without persisting it
type GradeRequest struct {
	Code         string
	Language     string
	FunctionName string
	TestCases    []TestCase
}

// GradingResult is the outcome of grading one submission. It is never stored
// as such; the attempt record copies the fields it keeps.
type GradingResult struct {
	Stars           int     `json:"stars"`
	Score           int     `json:"score"`
	StyleScore      float64 `json:"style_score"`
	TestPassRate    float64 `json:"test_pass_rate"`
	TestsPassed     int     `json:"tests_passed"`
	TestsTotal      int     `json:"tests_total"`
	Feedback        string  `json:"feedback"`
	ExecutionOutput string  `json:"execution_output"`
}

// CreateAttemptCommand is a request to grade and record a submission
type CreateAttemptCommand struct {
	UserID       int64
	ExerciseID   int64
	Code         string
	Language     string
	FunctionName string
	TestCases    []TestCase
}

// GradeRequest returns the grading input carried by the command.
func (c CreateAttemptCommand) GradeRequest() GradeRequest {
	return GradeRequest{
		Code:         c.Code,
		Language:     c.Language,
		FunctionName: c.FunctionName,
		TestCases:    c.TestCases,
	}
}
