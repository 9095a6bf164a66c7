package defs

// Inbound subjects served by the attempt service
const (
	SubjectCreateAttempt    = "attempts.create"
	SubjectGetAttempt       = "attempts.get"
	SubjectUserAttempts     = "attempts.user"
	SubjectExerciseAttempts = "attempts.exercise"
	SubjectBestAttempt      = "attempts.best"
	SubjectAllBestAttempts  = "attempts.best.all"
	SubjectGradeEphemeral   = "attempts.grade_ephemeral"
	SubjectAttemptGraded    = "attempts.graded"
)
