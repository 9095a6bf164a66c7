// Package messaging serves the attempt service subjects on the message bus
package messaging

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"gitlab.com/fcv-2025.net/attempt-service/internal/adapter/redis/bus"
	"gitlab.com/fcv-2025.net/attempt-service/internal/core/ports/primary"
	"gitlab.com/fcv-2025.net/attempt-service/internal/core/services/attempt"
	"gitlab.com/fcv-2025.net/attempt-service/internal/core/services/grader"
	"gitlab.com/fcv-2025.net/attempt-service/internal/messaging/defs"
	"gitlab.com/fcv-2025.net/attempt-service/internal/messaging/handlers"
	"gitlab.com/fcv-2025.net/attempt-service/internal/metrics"
	"gitlab.com/fcv-2025.net/attempt-service/internal/static/errs"
)

// Subscriber is the part of the bus the server needs
type Subscriber interface {
	Subscribe(ctx context.Context, subject string, handler bus.HandlerFunc) error
	Respond(ctx context.Context, req *bus.Message, body interface{}) error
	Close() error
}

// Server routes bus subjects to their handlers and answers requests
type Server struct {
	bus            Subscriber
	attemptService attempt.IAttemptService
	graderService  grader.IGraderService
	logger         primary.Logger
	handlers       map[string]primary.MessageHandler
}

// NewServer creates a new bus server
func NewServer(
	b Subscriber,
	attemptService attempt.IAttemptService,
	graderService grader.IGraderService,
	logger primary.Logger,
) *Server {
	server := &Server{
		bus:            b,
		attemptService: attemptService,
		graderService:  graderService,
		logger:         logger,
	}
	server.setupMessageHandlers()
	return server
}

// setupMessageHandlers registers all message handlers
func (s *Server) setupMessageHandlers() {
	s.handlers = map[string]primary.MessageHandler{
		defs.SubjectCreateAttempt:    &handlers.CreateAttemptHandler{AttemptService: s.attemptService, Logger: s.logger},
		defs.SubjectGetAttempt:       &handlers.GetAttemptHandler{AttemptService: s.attemptService},
		defs.SubjectUserAttempts:     &handlers.UserAttemptsHandler{AttemptService: s.attemptService},
		defs.SubjectExerciseAttempts: &handlers.ExerciseAttemptsHandler{AttemptService: s.attemptService},
		defs.SubjectBestAttempt:      &handlers.BestAttemptHandler{AttemptService: s.attemptService},
		defs.SubjectAllBestAttempts:  &handlers.AllBestAttemptsHandler{AttemptService: s.attemptService},
		defs.SubjectGradeEphemeral:   &handlers.GradeEphemeralHandler{GraderService: s.graderService, Logger: s.logger},
		defs.SubjectAttemptGraded:    &handlers.AttemptGradedHandler{AttemptService: s.attemptService, Logger: s.logger},
	}
}

// Start subscribes every subject. Handlers run until Stop.
func (s *Server) Start(ctx context.Context) error {
	subjects := make([]string, 0, len(s.handlers))
	for subject := range s.handlers {
		subjects = append(subjects, subject)
	}
	sort.Strings(subjects)

	for _, subject := range subjects {
		if err := s.bus.Subscribe(ctx, subject, s.serve(subject, s.handlers[subject])); err != nil {
			return fmt.Errorf("failed to start bus server: %w", err)
		}
	}
	s.logger.Info("Bus server listening", "subjects", len(subjects))
	return nil
}

// Stop closes the subscriptions and waits for in-flight messages
func (s *Server) Stop() error {
	return s.bus.Close()
}

func (s *Server) serve(subject string, handler primary.MessageHandler) bus.HandlerFunc {
	return func(ctx context.Context, msg *bus.Message) {
		reply, err := handler.HandleMessage(ctx, msg.Body)
		result := "ok"
		if err != nil {
			result = "error"
			reply = s.errorReply(subject, err)
		}
		metrics.BusMessage(subject, result)

		if msg.Reply == "" {
			return
		}
		if err := s.bus.Respond(ctx, msg, reply); err != nil {
			s.logger.Error("Failed to send reply", "subject", subject, "messageId", msg.ID, "error", err)
		}
	}
}

// errorReply keeps caller errors readable and hides everything else.
func (s *Server) errorReply(subject string, err error) defs.ErrorReply {
	switch {
	case errors.Is(err, errs.AttemptNotFound):
		return defs.ErrorReply{Error: "Attempt not found"}
	case isCallerError(err):
		s.logger.Debug("Rejected request", "subject", subject, "error", err)
		return defs.ErrorReply{Error: err.Error()}
	default:
		s.logger.Error("Error handling message", "subject", subject, "error", err)
		return defs.ErrorReply{Error: errs.InternalError.Error()}
	}
}

func isCallerError(err error) bool {
	for _, target := range []error{
		errs.InvalidRequest,
		errs.EmptyCode,
		errs.UnsupportedLanguage,
		errs.InvalidFunctionName,
		errs.UnrepresentableValue,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
