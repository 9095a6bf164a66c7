package handlers

import (
	"context"

	"gitlab.com/fcv-2025.net/attempt-service/internal/core/ports/primary"
	"gitlab.com/fcv-2025.net/attempt-service/internal/core/services/attempt"
	"gitlab.com/fcv-2025.net/attempt-service/internal/messaging/defs"
)

var _ primary.MessageHandler = (*CreateAttemptHandler)(nil)

// CreateAttemptHandler handles attempts.create
type CreateAttemptHandler struct {
	AttemptService attempt.IAttemptService
	Logger         primary.Logger
}

// HandleMessage implements the MessageHandler interface
func (h *CreateAttemptHandler) HandleMessage(ctx context.Context, payload []byte) (interface{}, error) {
	var req defs.CreateAttemptRequest
	if err := decode(payload, &req); err != nil {
		return nil, err
	}

	a, err := h.AttemptService.Create(ctx, req.Command())
	if err != nil {
		return nil, err
	}

	h.Logger.Info("Attempt created", "attemptId", a.ID, "userId", a.UserID, "exerciseId", a.ExerciseID, "status", a.Status)
	return a, nil
}
