package grader

import (
	"context"
	"strings"
	"time"

	"gitlab.com/fcv-2025.net/attempt-service/internal/core/grading"
	"gitlab.com/fcv-2025.net/attempt-service/internal/core/ports/primary"
	"gitlab.com/fcv-2025.net/attempt-service/internal/core/ports/secondary"
	"gitlab.com/fcv-2025.net/attempt-service/internal/domain"
	"gitlab.com/fcv-2025.net/attempt-service/internal/metrics"
	"gitlab.com/fcv-2025.net/attempt-service/internal/static/errs"
)

var _ IGraderService = (*GraderService)(nil)

// GraderService grades submissions over the execution gateway
type GraderService struct {
	gateway     secondary.ExecutionGateway
	logger      primary.Logger
	runTimeout  time.Duration
	lintTimeout time.Duration
}

// NewGraderService creates a new grader service
func NewGraderService(
	gateway secondary.ExecutionGateway,
	logger primary.Logger,
	runTimeout time.Duration,
	lintTimeout time.Duration,
) *GraderService {
	return &GraderService{
		gateway:     gateway,
		logger:      logger,
		runTimeout:  runTimeout,
		lintTimeout: lintTimeout,
	}
}

// Grade runs the harness, lints the bare code and scores both outputs
func (s *GraderService) Grade(ctx context.Context, req domain.GradeRequest) (domain.GradingResult, error) {
	if strings.TrimSpace(req.Code) == "" {
		return domain.GradingResult{}, errs.EmptyCode
	}
	lang, err := domain.ParseLanguage(req.Language)
	if err != nil {
		return domain.GradingResult{}, err
	}
	harness, err := grading.BuildHarness(req.Code, req.Language, req.FunctionName, req.TestCases)
	if err != nil {
		return domain.GradingResult{}, err
	}

	expected := len(req.TestCases)
	started := time.Now()

	reply, err := s.execute(ctx, domain.ExecutionRequest{Language: lang, Code: harness, Mode: domain.ExecutionModeRun}, s.runTimeout)
	if err != nil {
		s.logger.Warn("Execution unavailable", "language", lang, "error", err)
		metrics.GatewayFailure(string(domain.ExecutionModeRun))
		metrics.GradingObserved(string(lang), metrics.ReasonUnavailable, started)
		return grading.Unavailable(expected), nil
	}
	if msg, ok := reply.SystemError(); ok {
		s.logger.Warn("Sandbox returned an error without output", "language", lang, "error", msg)
		metrics.GradingObserved(string(lang), "system_error", started)
		return grading.SystemFailure(msg, expected), nil
	}

	lintOutput := s.lint(ctx, lang, req.Code)
	result := grading.Evaluate(lang, reply.CombinedOutput(), lintOutput, expected)

	s.logger.Debug("Graded submission",
		"language", lang,
		"passed", result.TestsPassed,
		"total", result.TestsTotal,
		"stars", result.Stars)
	metrics.GradingObserved(string(lang), metrics.ReasonGraded, started)
	return result, nil
}

// lint returns nil when the linter could not be reached.
func (s *GraderService) lint(ctx context.Context, lang domain.Language, code string) *string {
	reply, err := s.execute(ctx, domain.ExecutionRequest{Language: lang, Code: code, Mode: domain.ExecutionModeLint}, s.lintTimeout)
	if err != nil {
		s.logger.Warn("Lint unavailable", "language", lang, "error", err)
		metrics.GatewayFailure(string(domain.ExecutionModeLint))
		return nil
	}
	if _, ok := reply.SystemError(); ok {
		return nil
	}
	out := reply.CombinedOutput()
	return &out
}

func (s *GraderService) execute(ctx context.Context, req domain.ExecutionRequest, timeout time.Duration) (*domain.ExecutionReply, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	reply, err := s.gateway.Execute(ctx, req)
	if err != nil {
		return nil, err
	}
	if reply == nil {
		return nil, errs.ExecutionUnavailable
	}
	return reply, nil
}
