package attempt

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"gitlab.com/fcv-2025.net/attempt-service/internal/core/grading"
	"gitlab.com/fcv-2025.net/attempt-service/internal/core/ports/primary"
	"gitlab.com/fcv-2025.net/attempt-service/internal/core/ports/secondary"
	"gitlab.com/fcv-2025.net/attempt-service/internal/core/services/grader"
	"gitlab.com/fcv-2025.net/attempt-service/internal/domain"
	"gitlab.com/fcv-2025.net/attempt-service/internal/metrics"
	"gitlab.com/fcv-2025.net/attempt-service/internal/static/errs"
)

// Mode selects how new attempts are graded
type Mode string

const (
	// ModeAsync stores the attempt as pending and dispatches a grading job
	ModeAsync Mode = "async"
	// ModeSync grades inline before returning
	ModeSync Mode = "sync"
)

const (
	timedOutFeedback  = "grading timed out"
	defaultSweepBatch = 100
)

// Options tunes the attempt service
type Options struct {
	Mode            Mode
	GradingDeadline time.Duration
	SweepBatch      int
}

var _ IAttemptService = (*AttemptService)(nil)

// AttemptService implements the IAttemptService interface
type AttemptService struct {
	repo       secondary.AttemptRepository
	dispatches secondary.DispatchStore
	gateway    secondary.ExecutionGateway
	grader     grader.IGraderService
	logger     primary.Logger
	opts       Options
	now        func() time.Time
}

// NewAttemptService creates a new attempt service
func NewAttemptService(
	repo secondary.AttemptRepository,
	dispatches secondary.DispatchStore,
	gateway secondary.ExecutionGateway,
	graderService grader.IGraderService,
	logger primary.Logger,
	opts Options,
) *AttemptService {
	if opts.Mode == "" {
		opts.Mode = ModeAsync
	}
	if opts.GradingDeadline <= 0 {
		opts.GradingDeadline = 5 * time.Minute
	}
	if opts.SweepBatch <= 0 {
		opts.SweepBatch = defaultSweepBatch
	}
	return &AttemptService{
		repo:       repo,
		dispatches: dispatches,
		gateway:    gateway,
		grader:     graderService,
		logger:     logger,
		opts:       opts,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Create records a submission and starts grading it. In sync mode the
// attempt is graded first and only stored once it is final.
func (s *AttemptService) Create(ctx context.Context, cmd domain.CreateAttemptCommand) (*domain.Attempt, error) {
	if strings.TrimSpace(cmd.Code) == "" {
		return nil, errs.EmptyCode
	}
	language := strings.ToLower(strings.TrimSpace(cmd.Language))
	attempt := domain.NewAttempt(cmd.UserID, cmd.ExerciseID, cmd.Code, language, len(cmd.TestCases))

	if s.opts.Mode == ModeSync {
		return s.gradeInline(ctx, attempt, cmd)
	}
	if err := s.store(ctx, attempt); err != nil {
		return nil, err
	}
	return s.dispatch(ctx, attempt, cmd)
}

func (s *AttemptService) store(ctx context.Context, attempt *domain.Attempt) error {
	if err := s.repo.CreateAttempt(ctx, attempt); err != nil {
		s.logger.Error("Failed to create attempt", "userId", attempt.UserID, "exerciseId", attempt.ExerciseID, "error", err)
		return fmt.Errorf("failed to create attempt: %w", err)
	}
	metrics.AttemptCreated(languageLabel(attempt.Language), string(s.opts.Mode))

	s.logger.Info("Attempt created",
		"attemptId", attempt.ID,
		"userId", attempt.UserID,
		"exerciseId", attempt.ExerciseID,
		"language", attempt.Language,
		"status", attempt.Status,
		"mode", s.opts.Mode)
	return nil
}

// languageLabel bounds the metric label set to the supported languages.
func languageLabel(language string) string {
	lang, err := domain.ParseLanguage(language)
	if err != nil {
		return "unsupported"
	}
	return string(lang)
}

func (s *AttemptService) gradeInline(ctx context.Context, attempt *domain.Attempt, cmd domain.CreateAttemptCommand) (*domain.Attempt, error) {
	result, gradeErr := s.grader.Grade(ctx, cmd.GradeRequest())
	at := s.now()
	if gradeErr != nil {
		_ = attempt.Fail(grading.CleanText(gradeErr.Error()), at)
	} else {
		_ = attempt.Complete(result, at)
	}

	if err := s.store(ctx, attempt); err != nil {
		return nil, err
	}
	if gradeErr != nil {
		metrics.AttemptFinalized(string(domain.AttemptStatusError), metrics.ReasonHarness)
		s.logger.Info("Attempt failed", "attemptId", attempt.ID, "reason", gradeErr)
	} else {
		metrics.AttemptFinalized(string(domain.AttemptStatusCompleted), metrics.ReasonGraded)
	}
	return attempt, nil
}

func (s *AttemptService) dispatch(ctx context.Context, attempt *domain.Attempt, cmd domain.CreateAttemptCommand) (*domain.Attempt, error) {
	lang, err := domain.ParseLanguage(cmd.Language)
	if err != nil {
		return s.fail(ctx, attempt, err.Error(), metrics.ReasonHarness)
	}
	harness, err := grading.BuildHarness(cmd.Code, cmd.Language, cmd.FunctionName, cmd.TestCases)
	if err != nil {
		return s.fail(ctx, attempt, err.Error(), metrics.ReasonHarness)
	}

	job := &domain.GradingJob{
		JobID:      uuid.New(),
		AttemptID:  attempt.ID,
		Language:   lang,
		Code:       cmd.Code,
		Harness:    harness,
		TestsTotal: attempt.TestsTotal,
	}

	if err := s.dispatches.SaveDispatch(ctx, domain.NewDispatch(job, s.opts.GradingDeadline)); err != nil {
		s.logger.Error("Failed to record dispatch", "attemptId", attempt.ID, "error", err)
		return s.fail(ctx, attempt, "dispatch failed: "+err.Error(), metrics.ReasonDispatch)
	}

	if err := s.gateway.Dispatch(ctx, job); err != nil {
		s.logger.Error("Failed to dispatch grading job", "attemptId", attempt.ID, "jobId", job.JobID, "error", err)
		if delErr := s.dispatches.DeleteDispatch(ctx, attempt.ID); delErr != nil {
			s.logger.Warn("Failed to delete dispatch record", "attemptId", attempt.ID, "error", delErr)
		}
		return s.fail(ctx, attempt, "dispatch failed: "+err.Error(), metrics.ReasonDispatch)
	}

	s.logger.Debug("Grading job dispatched", "attemptId", attempt.ID, "jobId", job.JobID)
	return attempt, nil
}

// fail moves a freshly created attempt to ERROR and returns it.
func (s *AttemptService) fail(ctx context.Context, attempt *domain.Attempt, reason, metricReason string) (*domain.Attempt, error) {
	reason = grading.CleanText(reason)
	at := s.now()
	ok, err := s.repo.FailAttempt(ctx, attempt.ID, reason, at)
	if err != nil {
		s.logger.Error("Failed to mark attempt as failed", "attemptId", attempt.ID, "error", err)
		return nil, fmt.Errorf("failed to mark attempt as failed: %w", err)
	}
	if ok {
		_ = attempt.Fail(reason, at)
		metrics.AttemptFinalized(string(domain.AttemptStatusError), metricReason)
	}
	s.logger.Info("Attempt failed", "attemptId", attempt.ID, "reason", reason)
	return attempt, nil
}

// ApplyGradedEvent completes a pending attempt from the sandbox outcome
func (s *AttemptService) ApplyGradedEvent(ctx context.Context, event domain.GradedEvent) error {
	attempt, err := s.repo.GetAttempt(ctx, event.AttemptID)
	if err != nil {
		s.logger.Error("Failed to get attempt", "attemptId", event.AttemptID, "error", err)
		return fmt.Errorf("failed to get attempt: %w", err)
	}
	if attempt == nil {
		s.logger.Warn("Graded event for unknown attempt", "attemptId", event.AttemptID)
		return nil
	}
	if attempt.Status.IsTerminal() {
		s.logger.Debug("Ignoring graded event for finished attempt", "attemptId", attempt.ID, "status", attempt.Status)
		return nil
	}

	lang, err := domain.ParseLanguage(attempt.Language)
	if err != nil {
		_, err = s.fail(ctx, attempt, err.Error(), metrics.ReasonHarness)
		s.forgetDispatch(ctx, attempt.ID)
		return err
	}

	rec, err := s.dispatches.GetDispatch(ctx, attempt.ID)
	if err != nil {
		s.logger.Warn("Failed to read dispatch record", "attemptId", attempt.ID, "error", err)
	}
	if rec != nil {
		metrics.GradingObserved(string(lang), metrics.OutcomeDispatched, rec.DispatchedAt)
		s.logger.Debug("Graded event matched dispatch", "attemptId", attempt.ID, "jobId", rec.JobID)
	}

	result := grading.Evaluate(lang, event.ExecutionOutput, event.LintOutput, attempt.TestsTotal)
	ok, err := s.repo.CompleteAttempt(ctx, attempt.ID, result, s.now())
	if err != nil {
		s.logger.Error("Failed to complete attempt", "attemptId", attempt.ID, "error", err)
		return fmt.Errorf("failed to complete attempt: %w", err)
	}
	s.forgetDispatch(ctx, attempt.ID)

	if ok {
		metrics.AttemptFinalized(string(domain.AttemptStatusCompleted), metrics.ReasonGraded)
		s.logger.Info("Attempt graded",
			"attemptId", attempt.ID,
			"score", result.Score,
			"stars", result.Stars,
			"passed", result.TestsPassed,
			"total", result.TestsTotal)
	}
	return nil
}

// ExpireStale fails attempts that never received a graded event in time
func (s *AttemptService) ExpireStale(ctx context.Context, now time.Time) (int, error) {
	expired := 0

	dispatches, err := s.dispatches.GetExpiredDispatches(ctx, now, s.opts.SweepBatch)
	if err != nil {
		s.logger.Error("Failed to get expired dispatches", "error", err)
		return 0, fmt.Errorf("failed to get expired dispatches: %w", err)
	}
	for _, d := range dispatches {
		ok, err := s.repo.FailAttempt(ctx, d.AttemptID, timedOutFeedback, now)
		if err != nil {
			s.logger.Error("Failed to expire attempt", "attemptId", d.AttemptID, "error", err)
			continue
		}
		s.forgetDispatch(ctx, d.AttemptID)
		if ok {
			expired++
			metrics.AttemptFinalized(string(domain.AttemptStatusError), metrics.ReasonTimeout)
		}
	}

	// Attempts whose correlation record was lost are found through the store.
	stale, err := s.repo.ListStalePending(ctx, now.Add(-s.opts.GradingDeadline), s.opts.SweepBatch)
	if err != nil {
		s.logger.Error("Failed to list stale attempts", "error", err)
		return expired, fmt.Errorf("failed to list stale attempts: %w", err)
	}
	for _, a := range stale {
		ok, err := s.repo.FailAttempt(ctx, a.ID, timedOutFeedback, now)
		if err != nil {
			s.logger.Error("Failed to expire attempt", "attemptId", a.ID, "error", err)
			continue
		}
		s.forgetDispatch(ctx, a.ID)
		if ok {
			expired++
			metrics.AttemptFinalized(string(domain.AttemptStatusError), metrics.ReasonTimeout)
		}
	}

	if expired > 0 {
		s.logger.Info("Expired stale attempts", "count", expired)
	}
	return expired, nil
}

func (s *AttemptService) forgetDispatch(ctx context.Context, attemptID int64) {
	if err := s.dispatches.DeleteDispatch(ctx, attemptID); err != nil {
		s.logger.Warn("Failed to delete dispatch record", "attemptId", attemptID, "error", err)
	}
}

// Get retrieves an attempt by ID
func (s *AttemptService) Get(ctx context.Context, id int64) (*domain.Attempt, error) {
	attempt, err := s.repo.GetAttempt(ctx, id)
	if err != nil {
		s.logger.Error("Failed to get attempt", "attemptId", id, "error", err)
		return nil, fmt.Errorf("failed to get attempt: %w", err)
	}
	if attempt == nil {
		return nil, errs.AttemptNotFound
	}
	return attempt, nil
}

// ListByUser returns summaries of a user's attempts, newest first
func (s *AttemptService) ListByUser(ctx context.Context, userID int64) ([]domain.AttemptSummary, error) {
	attempts, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Error("Failed to list user attempts", "userId", userID, "error", err)
		return nil, fmt.Errorf("failed to list user attempts: %w", err)
	}
	summaries := make([]domain.AttemptSummary, 0, len(attempts))
	for _, a := range attempts {
		summaries = append(summaries, a.Summary())
	}
	return summaries, nil
}

// ListByExercise returns an exercise's attempts, newest first
func (s *AttemptService) ListByExercise(ctx context.Context, exerciseID int64, limit int) ([]*domain.Attempt, error) {
	attempts, err := s.repo.ListByExercise(ctx, exerciseID, limit)
	if err != nil {
		s.logger.Error("Failed to list exercise attempts", "exerciseId", exerciseID, "error", err)
		return nil, fmt.Errorf("failed to list exercise attempts: %w", err)
	}
	if attempts == nil {
		attempts = []*domain.Attempt{}
	}
	return attempts, nil
}

// Best returns the user's best attempt for an exercise, nil when there is none
func (s *AttemptService) Best(ctx context.Context, userID, exerciseID int64) (*domain.Attempt, error) {
	attempt, err := s.repo.GetBestAttempt(ctx, userID, exerciseID)
	if err != nil {
		s.logger.Error("Failed to get best attempt", "userId", userID, "exerciseId", exerciseID, "error", err)
		return nil, fmt.Errorf("failed to get best attempt: %w", err)
	}
	return attempt, nil
}

// BestPerExercise maps exercise IDs to the user's best attempt on each
func (s *AttemptService) BestPerExercise(ctx context.Context, userID int64) (map[int64]*domain.Attempt, error) {
	attempts, err := s.repo.GetBestAttemptsByUser(ctx, userID)
	if err != nil {
		s.logger.Error("Failed to get best attempts", "userId", userID, "error", err)
		return nil, fmt.Errorf("failed to get best attempts: %w", err)
	}
	best := make(map[int64]*domain.Attempt, len(attempts))
	for _, a := range attempts {
		if cur, ok := best[a.ExerciseID]; !ok || a.Outranks(cur) {
			best[a.ExerciseID] = a
		}
	}
	return best, nil
}
