package grading

import (
	"strings"

	"gitlab.com/fcv-2025.net/attempt-service/internal/domain"
)

const unavailableFeedback = "execution unavailable"

// Evaluate grades raw sandbox output. lintOutput is nil when linting failed.
func Evaluate(language domain.Language, runOutput string, lintOutput *string, expectedTotal int) domain.GradingResult {
	passed, total := ParseResults(runOutput, expectedTotal)
	rate := PassRate(passed, total)
	style := ParseStyle(language, lintOutput)

	var feedback string
	if lintOutput != nil {
		feedback = CleanText(*lintOutput)
	}

	return domain.GradingResult{
		Stars:           Stars(rate, style),
		Score:           Score(rate),
		StyleScore:      style,
		TestPassRate:    rate,
		TestsPassed:     passed,
		TestsTotal:      total,
		Feedback:        feedback,
		ExecutionOutput: CleanText(runOutput),
	}
}

// Unavailable is the terminal result for a submission the sandbox never ran.
func Unavailable(expectedTotal int) domain.GradingResult {
	return zeroResult(unavailableFeedback, "", expectedTotal)
}

// SystemFailure is the result for a run reply that carried only an error.
func SystemFailure(message string, expectedTotal int) domain.GradingResult {
	return zeroResult("System Error: "+message, message, expectedTotal)
}

func zeroResult(feedback, output string, expectedTotal int) domain.GradingResult {
	if expectedTotal < 0 {
		expectedTotal = 0
	}
	return domain.GradingResult{
		TestsTotal:      expectedTotal,
		Feedback:        CleanText(feedback),
		ExecutionOutput: CleanText(output),
	}
}

// CleanText makes sandbox text storable in a TEXT column: NUL bytes are
// dropped and invalid UTF-8 is replaced.
func CleanText(s string) string {
	if strings.IndexByte(s, 0) >= 0 {
		s = strings.ReplaceAll(s, "\x00", "")
	}
	return strings.ToValidUTF8(s, "\uFFFD")
}
