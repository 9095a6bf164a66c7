package grading

import "math"

const (
	threeStarStyle = 8.0
	twoStarStyle   = 6.0
	scoreEpsilon   = 1e-9
)

// PassRate is passed/total, or 0 when there were no tests.
func PassRate(passed, total int) float64 {
	if total <= 0 || passed <= 0 {
		return 0
	}
	if passed >= total {
		return 1
	}
	return float64(passed) / float64(total)
}

// Stars rates a submission. Only a fully passing submission earns stars; style
// decides how many.
func Stars(passRate, style float64) int {
	if passRate < 1.0 {
		return 0
	}
	switch {
	case style >= threeStarStyle:
		return 3
	case style >= twoStarStyle:
		return 2
	default:
		return 1
	}
}

// Score is the pass rate as a whole percentage, rounded down.
func Score(passRate float64) int {
	if math.IsNaN(passRate) {
		return 0
	}
	s := int(math.Floor(passRate*100 + scoreEpsilon))
	switch {
	case s < 0:
		return 0
	case s > 100:
		return 100
	}
	return s
}
