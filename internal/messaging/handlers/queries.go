package handlers

import (
	"context"

	"gitlab.com/fcv-2025.net/attempt-service/internal/core/ports/primary"
	"gitlab.com/fcv-2025.net/attempt-service/internal/core/services/attempt"
	"gitlab.com/fcv-2025.net/attempt-service/internal/messaging/defs"
)

var (
	_ primary.MessageHandler = (*GetAttemptHandler)(nil)
	_ primary.MessageHandler = (*UserAttemptsHandler)(nil)
	_ primary.MessageHandler = (*ExerciseAttemptsHandler)(nil)
	_ primary.MessageHandler = (*BestAttemptHandler)(nil)
	_ primary.MessageHandler = (*AllBestAttemptsHandler)(nil)
)

// GetAttemptHandler handles attempts.get
type GetAttemptHandler struct {
	AttemptService attempt.IAttemptService
}

func (h *GetAttemptHandler) HandleMessage(ctx context.Context, payload []byte) (interface{}, error) {
	var req defs.GetAttemptRequest
	if err := decode(payload, &req); err != nil {
		return nil, err
	}
	return h.AttemptService.Get(ctx, *req.ID)
}

// UserAttemptsHandler handles attempts.user
type UserAttemptsHandler struct {
	AttemptService attempt.IAttemptService
}

func (h *UserAttemptsHandler) HandleMessage(ctx context.Context, payload []byte) (interface{}, error) {
	var req defs.UserAttemptsRequest
	if err := decode(payload, &req); err != nil {
		return nil, err
	}
	summaries, err := h.AttemptService.ListByUser(ctx, *req.UserID)
	if err != nil {
		return nil, err
	}
	return defs.UserAttemptsReply{Attempts: summaries}, nil
}

// ExerciseAttemptsHandler handles attempts.exercise
type ExerciseAttemptsHandler struct {
	AttemptService attempt.IAttemptService
}

func (h *ExerciseAttemptsHandler) HandleMessage(ctx context.Context, payload []byte) (interface{}, error) {
	var req defs.ExerciseAttemptsRequest
	if err := decode(payload, &req); err != nil {
		return nil, err
	}
	attempts, err := h.AttemptService.ListByExercise(ctx, *req.ExerciseID, req.LimitOrZero())
	if err != nil {
		return nil, err
	}
	return defs.ExerciseAttemptsReply{Attempts: attempts}, nil
}

// BestAttemptHandler handles attempts.best. The reply is null when the user
// never attempted the exercise.
type BestAttemptHandler struct {
	AttemptService attempt.IAttemptService
}

func (h *BestAttemptHandler) HandleMessage(ctx context.Context, payload []byte) (interface{}, error) {
	var req defs.BestAttemptRequest
	if err := decode(payload, &req); err != nil {
		return nil, err
	}
	best, err := h.AttemptService.Best(ctx, *req.UserID, *req.ExerciseID)
	if err != nil {
		return nil, err
	}
	return defs.NewBestAttemptView(best, true), nil
}

// AllBestAttemptsHandler handles attempts.best.all
type AllBestAttemptsHandler struct {
	AttemptService attempt.IAttemptService
}

func (h *AllBestAttemptsHandler) HandleMessage(ctx context.Context, payload []byte) (interface{}, error) {
	var req defs.UserAttemptsRequest
	if err := decode(payload, &req); err != nil {
		return nil, err
	}
	best, err := h.AttemptService.BestPerExercise(ctx, *req.UserID)
	if err != nil {
		return nil, err
	}
	views := make(map[int64]*defs.BestAttemptView, len(best))
	for exerciseID, a := range best {
		views[exerciseID] = defs.NewBestAttemptView(a, false)
	}
	return views, nil
}
