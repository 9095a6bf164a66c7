package grader_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"gitlab.com/fcv-2025.net/attempt-service/internal/adapter/logging"
	"gitlab.com/fcv-2025.net/attempt-service/internal/core/services/grader"
	"gitlab.com/fcv-2025.net/attempt-service/internal/domain"
	"gitlab.com/fcv-2025.net/attempt-service/internal/static/errs"
)

type fakeGateway struct {
	mu       sync.Mutex
	requests []domain.ExecutionRequest
	replies  map[domain.ExecutionMode]*domain.ExecutionReply
	failures map[domain.ExecutionMode]error
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		replies:  map[domain.ExecutionMode]*domain.ExecutionReply{},
		failures: map[domain.ExecutionMode]error{},
	}
}

func (g *fakeGateway) Execute(ctx context.Context, req domain.ExecutionRequest) (*domain.ExecutionReply, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.requests = append(g.requests, req)
	if _, ok := ctx.Deadline(); !ok {
		return nil, errors.New("missing deadline")
	}
	if err := g.failures[req.Mode]; err != nil {
		return nil, err
	}
	return g.replies[req.Mode], nil
}

func (g *fakeGateway) Dispatch(context.Context, *domain.GradingJob) error {
	return errors.New("not used")
}

func str(s string) *string { return &s }

func addRequest() domain.GradeRequest {
	return domain.GradeRequest{
		Code:         "def add(a, b):\n    return a + b",
		Language:     "python",
		FunctionName: "add",
		TestCases:    []domain.TestCase{{Args: []interface{}{1, 2}, Expected: 3}},
	}
}

func newService(gw *fakeGateway) *grader.GraderService {
	return grader.NewGraderService(gw, logging.NewNopLogger(), time.Second, time.Second)
}

func TestGradeFullPass(t *testing.T) {
	gw := newFakeGateway()
	gw.replies[domain.ExecutionModeRun] = &domain.ExecutionReply{Output: str("Test 1: PASSED\nRESULTS: 1/1\n")}
	gw.replies[domain.ExecutionModeLint] = &domain.ExecutionReply{Output: str("Your code has been rated at 8.00/10")}

	result, err := newService(gw).Grade(context.Background(), addRequest())
	if err != nil {
		t.Fatalf("grade failed: %v", err)
	}
	if result.Score != 100 || result.Stars != 3 || result.TestsPassed != 1 {
		t.Fatalf("unexpected result: %+v", result)
	}
	if len(gw.requests) != 2 {
		t.Fatalf("expected run and lint requests, got %d", len(gw.requests))
	}
	run, lint := gw.requests[0], gw.requests[1]
	if run.Mode != domain.ExecutionModeRun || !strings.Contains(run.Code, "RESULTS: ") {
		t.Fatalf("expected harness to be run, got %+v", run)
	}
	if lint.Mode != domain.ExecutionModeLint || lint.Code != addRequest().Code {
		t.Fatalf("expected bare code to be linted, got %+v", lint)
	}
}

func TestGradeExecutionUnavailable(t *testing.T) {
	gw := newFakeGateway()
	gw.failures[domain.ExecutionModeRun] = errs.ExecutionUnavailable

	result, err := newService(gw).Grade(context.Background(), addRequest())
	if err != nil {
		t.Fatalf("expected unavailability to be folded into the result, got %v", err)
	}
	if result.Feedback != "execution unavailable" || result.Score != 0 || result.Stars != 0 {
		t.Fatalf("unexpected result: %+v", result)
	}
	if len(gw.requests) != 1 {
		t.Fatalf("expected no lint after failed run, got %d requests", len(gw.requests))
	}
}

func TestGradeSystemError(t *testing.T) {
	gw := newFakeGateway()
	gw.replies[domain.ExecutionModeRun] = &domain.ExecutionReply{Error: str("out of memory")}

	result, err := newService(gw).Grade(context.Background(), addRequest())
	if err != nil {
		t.Fatalf("grade failed: %v", err)
	}
	if result.Feedback != "System Error: out of memory" || result.Score != 0 {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestGradeLintUnavailable(t *testing.T) {
	gw := newFakeGateway()
	gw.replies[domain.ExecutionModeRun] = &domain.ExecutionReply{Output: str("RESULTS: 1/1")}
	gw.failures[domain.ExecutionModeLint] = context.DeadlineExceeded

	result, err := newService(gw).Grade(context.Background(), addRequest())
	if err != nil {
		t.Fatalf("grade failed: %v", err)
	}
	if result.StyleScore != 0 || result.Stars != 1 || result.Score != 100 {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestGradeMergesErrorOutput(t *testing.T) {
	gw := newFakeGateway()
	gw.replies[domain.ExecutionModeRun] = &domain.ExecutionReply{Output: str("RESULTS: 0/1"), Error: str("Traceback")}
	gw.replies[domain.ExecutionModeLint] = &domain.ExecutionReply{Output: str("")}

	result, err := newService(gw).Grade(context.Background(), addRequest())
	if err != nil {
		t.Fatalf("grade failed: %v", err)
	}
	if result.ExecutionOutput != "RESULTS: 0/1\n\n--- ERROR OUTPUT ---\nTraceback" {
		t.Fatalf("unexpected execution output: %q", result.ExecutionOutput)
	}
}

func TestGradeCallerErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*domain.GradeRequest)
		want   error
	}{
		{name: "empty code", mutate: func(r *domain.GradeRequest) { r.Code = "  \n" }, want: errs.EmptyCode},
		{name: "unknown language", mutate: func(r *domain.GradeRequest) { r.Language = "cobol" }, want: errs.UnsupportedLanguage},
		{name: "bad function", mutate: func(r *domain.GradeRequest) { r.FunctionName = "1add" }, want: errs.InvalidFunctionName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw := newFakeGateway()
			req := addRequest()
			tt.mutate(&req)

			_, err := newService(gw).Grade(context.Background(), req)
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			if len(gw.requests) != 0 {
				t.Fatalf("expected no sandbox calls, got %d", len(gw.requests))
			}
		})
	}
}
