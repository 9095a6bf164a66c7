package errs

import "errors"

var InternalError = errors.New("internal error")

// Caller errors. Nothing is persisted or dispatched when these are returned
// from a validation step.
var (
	InvalidRequest       = errors.New("invalid request")
	EmptyCode            = errors.New("code cannot be empty")
	UnsupportedLanguage  = errors.New("unsupported language")
	InvalidFunctionName  = errors.New("invalid function name")
	UnrepresentableValue = errors.New("value cannot be written as a literal")
)

var (
	AttemptNotFound  = errors.New("attempt not found")
	AttemptFinalized = errors.New("attempt already finalized")
)

// Sandbox collaborator failures.
var (
	ExecutionUnavailable = errors.New("execution unavailable")
	LintUnavailable      = errors.New("lint unavailable")
	NoResponders         = errors.New("no responders on subject")
)
