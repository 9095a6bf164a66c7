package handlers

import (
	"context"

	"gitlab.com/fcv-2025.net/attempt-service/internal/core/ports/primary"
	"gitlab.com/fcv-2025.net/attempt-service/internal/core/services/attempt"
	"gitlab.com/fcv-2025.net/attempt-service/internal/core/services/grader"
	"gitlab.com/fcv-2025.net/attempt-service/internal/messaging/defs"
)

var (
	_ primary.MessageHandler = (*GradeEphemeralHandler)(nil)
	_ primary.MessageHandler = (*AttemptGradedHandler)(nil)
)

// GradeEphemeralHandler handles attempts.grade_ephemeral. Nothing is stored.
type GradeEphemeralHandler struct {
	GraderService grader.IGraderService
	Logger        primary.Logger
}

func (h *GradeEphemeralHandler) HandleMessage(ctx context.Context, payload []byte) (interface{}, error) {
	var req defs.GradeEphemeralRequest
	if err := decode(payload, &req); err != nil {
		return nil, err
	}
	result, err := h.GraderService.Grade(ctx, req.GradeRequest())
	if err != nil {
		return nil, err
	}
	h.Logger.Debug("Ephemeral grading finished", "language", *req.Language, "score", result.Score, "stars", result.Stars)
	return result, nil
}

// AttemptGradedHandler consumes attempts.graded events from the sandbox
type AttemptGradedHandler struct {
	AttemptService attempt.IAttemptService
	Logger         primary.Logger
}

func (h *AttemptGradedHandler) HandleMessage(ctx context.Context, payload []byte) (interface{}, error) {
	var ev defs.AttemptGradedEvent
	if err := decode(payload, &ev); err != nil {
		h.Logger.Warn("Dropping malformed graded event", "error", err)
		return nil, err
	}
	if err := h.AttemptService.ApplyGradedEvent(ctx, ev.Event()); err != nil {
		return nil, err
	}
	return nil, nil
}
