package domain

import (
	"time"

	"github.com/google/uuid"
)

// ExecutionMode selects what the sandbox does with the code
type ExecutionMode string

const (
	ExecutionModeRun  ExecutionMode = "run"
	ExecutionModeLint ExecutionMode = "lint"
)

// ExecutionRequest is sent to the sandbox collaborator on the request/reply path
type ExecutionRequest struct {
	Language Language      `json:"language"`
	Code     string        `json:"code"`
	Mode     ExecutionMode `json:"mode"`
}

// ExecutionReply is the sandbox answer. Either field may be absent.
type ExecutionReply struct {
	Output *string `json:"output,omitempty"`
	Error  *string `json:"error,omitempty"`
}

// SystemError returns the sandbox error when the reply carries an error and no
// output at all.
func (r *ExecutionReply) SystemError() (string, bool) {
	if r == nil || r.Output != nil || r.Error == nil || *r.Error == "" {
		return "", false
	}
	return *r.Error, true
}

// CombinedOutput joins stdout and the error stream the way graders read it.
func (r *ExecutionReply) CombinedOutput() string {
	if r == nil {
		return ""
	}
	var out string
	if r.Output != nil {
		out = *r.Output
	}
	if r.Error != nil && *r.Error != "" {
		out += "\n\n--- ERROR OUTPUT ---\n" + *r.Error
	}
	return out
}

// GradingJob is published fire-and-forget for persisted submissions. The
// sandbox answers later with a GradedEvent carrying the same attempt id.
type GradingJob struct {
	JobID      uuid.UUID `json:"job_id"`
	AttemptID  int64     `json:"attempt_id"`
	Language   Language  `json:"language"`
	Code       string    `json:"code"`
	Harness    string    `json:"harness"`
	TestsTotal int       `json:"tests_total"`
}

// GradedEvent is emitted by the sandbox once a GradingJob ran. A nil
// LintOutput means linting did not happen.
type GradedEvent struct {
	AttemptID       int64   `json:"attempt_id"`
	ExecutionOutput string  `json:"execution_output"`
	LintOutput      *string `json:"lint_output"`
}

// Dispatch correlates an outstanding GradingJob with its attempt until the
// graded event arrives or the deadline passes.
type Dispatch struct {
	AttemptID    int64     `json:"attempt_id"`
	JobID        uuid.UUID `json:"job_id"`
	Language     Language  `json:"language"`
	TestsTotal   int       `json:"tests_total"`
	DispatchedAt time.Time `json:"dispatched_at"`
	Deadline     time.Time `json:"deadline"`
}

// NewDispatch creates a correlation record for a job due before now+ttl
func NewDispatch(job *GradingJob, ttl time.Duration) *Dispatch {
	now := time.Now().UTC()
	return &Dispatch{
		AttemptID:    job.AttemptID,
		JobID:        job.JobID,
		Language:     job.Language,
		TestsTotal:   job.TestsTotal,
		DispatchedAt: now,
		Deadline:     now.Add(ttl),
	}
}

// Expired reports whether the deadline passed at t.
func (d *Dispatch) Expired(t time.Time) bool {
	return !t.Before(d.Deadline)
}
