package grading

import (
	"errors"
	"math"
	"regexp"
	"strconv"
	"strings"

	"gitlab.com/fcv-2025.net/attempt-service/internal/domain"
)

var (
	resultsPattern = regexp.MustCompile(`RESULTS:\s*(\d+)/(\d+)`)
	pylintPattern  = regexp.MustCompile(`rated at (-?\d+(?:\.\d+)?)/10`)
)

const (
	maxStyle = 10.0
	// jsLintMarker marks a lint report that found at least one issue.
	jsLintMarker = "problem"
	jsCleanStyle = 10.0
	jsDirtyStyle = 5.0
)

// ParseResults extracts passed/total counts from harness output. The first
// RESULTS line wins. Missing or inconsistent markers, including a total that
// disagrees with a known expectedTotal, count as nothing passed out of
// expectedTotal.
func ParseResults(output string, expectedTotal int) (passed, total int) {
	fallback := 0
	if expectedTotal > 0 {
		fallback = expectedTotal
	}

	for _, line := range strings.Split(output, "\n") {
		m := resultsPattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		p, err := strconv.Atoi(m[1])
		if err != nil {
			return 0, fallback
		}
		t, err := strconv.Atoi(m[2])
		if err != nil || p > t {
			return 0, fallback
		}
		if expectedTotal > 0 && t != expectedTotal {
			return 0, fallback
		}
		return p, t
	}
	return 0, fallback
}

// ParseStyle turns lint output into a 0-10 style score. A nil lint output means
// the linter could not be reached and scores 0.
func ParseStyle(language domain.Language, lintOutput *string) float64 {
	if lintOutput == nil {
		return 0
	}
	out := *lintOutput

	switch language {
	case domain.LanguagePython:
		m := pylintPattern.FindStringSubmatch(out)
		if m == nil {
			return 0
		}
		score, err := strconv.ParseFloat(m[1], 64)
		if err != nil && !errors.Is(err, strconv.ErrRange) {
			return 0
		}
		return math.Max(0, math.Min(maxStyle, score))
	case domain.LanguageJavaScript:
		if strings.TrimSpace(out) == "" {
			return jsCleanStyle
		}
		if strings.Contains(strings.ToLower(out), jsLintMarker) {
			return jsDirtyStyle
		}
		return jsCleanStyle
	default:
		return 0
	}
}
