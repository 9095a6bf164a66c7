package attemptrepository

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"gitlab.com/fcv-2025.net/attempt-service/internal/adapter/logging"
	"gitlab.com/fcv-2025.net/attempt-service/internal/core/grading"
	"gitlab.com/fcv-2025.net/attempt-service/internal/domain"
)

func TestTransitionQueriesOnlyTouchPending(t *testing.T) {
	t.Parallel()
	repo := NewAttemptRepository(nil, logging.NewNopLogger(), "grading")
	at := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	complete, args, err := repo.completeQuery(4, domain.GradingResult{Score: 100, Stars: 3, TestPassRate: 1}, at)
	if err != nil {
		t.Fatalf("build complete: %v", err)
	}
	if !strings.HasPrefix(complete, "UPDATE grading.user_exercise_attempts SET score = $1") {
		t.Fatalf("unexpected query %q", complete)
	}
	if !strings.HasSuffix(complete, "WHERE id = $9 AND status = $10") {
		t.Fatalf("expected pending guard, got %q", complete)
	}
	if args[len(args)-1] != domain.AttemptStatusPending || args[len(args)-2] != int64(4) {
		t.Fatalf("unexpected args %v", args)
	}

	fail, args, err := repo.failQuery(4, "grading timed out", at)
	if err != nil {
		t.Fatalf("build fail: %v", err)
	}
	if !strings.HasSuffix(fail, "WHERE id = $6 AND status = $7") {
		t.Fatalf("expected pending guard, got %q", fail)
	}
	if args[3] != domain.AttemptStatusError {
		t.Fatalf("expected ERROR status arg, got %v", args[3])
	}
}

func TestBestQueriesRankStarsScoreRecency(t *testing.T) {
	t.Parallel()
	repo := NewAttemptRepository(nil, logging.NewNopLogger(), "")

	best, _, err := repo.bestQuery(1, 2)
	if err != nil {
		t.Fatalf("build best: %v", err)
	}
	if !strings.HasSuffix(best, "ORDER BY stars DESC, score DESC, attempted_at DESC, id DESC LIMIT 1") {
		t.Fatalf("unexpected best query %q", best)
	}

	perExercise, _, err := build(repo.bestPerExerciseQuery(1))
	if err != nil {
		t.Fatalf("build best per exercise: %v", err)
	}
	if !strings.HasPrefix(perExercise, "SELECT DISTINCT ON (exercise_id) id, user_id") {
		t.Fatalf("unexpected query %q", perExercise)
	}
	if !strings.Contains(perExercise, "FROM public.user_exercise_attempts WHERE user_id = $1 ORDER BY exercise_id ASC, stars DESC") {
		t.Fatalf("unexpected query %q", perExercise)
	}
}

func TestInsertReturnsID(t *testing.T) {
	t.Parallel()
	repo := NewAttemptRepository(nil, logging.NewNopLogger(), "public")
	a := domain.NewAttempt(1, 2, "code", "python", 3)

	query, args, err := repo.insertQuery(a)
	if err != nil {
		t.Fatalf("build insert: %v", err)
	}
	if !strings.HasSuffix(query, "VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14) RETURNING id") {
		t.Fatalf("unexpected query %q", query)
	}
	if len(args) != 14 || args[7] != domain.AttemptStatusPending {
		t.Fatalf("unexpected args %v", args)
	}
}

func TestInsertCarriesFinishedGrade(t *testing.T) {
	t.Parallel()
	repo := NewAttemptRepository(nil, logging.NewNopLogger(), "public")
	a := domain.NewAttempt(1, 2, "code", "python", 1)
	if err := a.Complete(domain.GradingResult{Score: 100, Stars: 3, TestPassRate: 1, StyleScore: 9, Feedback: "ok"}, time.Now()); err != nil {
		t.Fatalf("complete: %v", err)
	}

	query, args, err := repo.insertQuery(a)
	if err != nil {
		t.Fatalf("build insert: %v", err)
	}
	if !strings.Contains(query, "status, attempted_at, feedback, test_pass_rate, style_score, execution_output, graded_at)") {
		t.Fatalf("expected grading columns in insert, got %q", query)
	}
	if args[7] != domain.AttemptStatusCompleted || args[9] != a.Feedback || args[13] != a.GradedAt {
		t.Fatalf("unexpected args %v", args)
	}
}

// TestRepositoryAgainstPostgres runs when TEST_DATABASE_URL points at a
// disposable database.
func TestRepositoryAgainstPostgres(t *testing.T) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	db, err := sqlx.Open("postgres", dsn)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	ctx := context.Background()
	schema := "attempts_test_" + time.Now().Format("150405")
	if _, err := db.ExecContext(ctx, "CREATE SCHEMA "+schema); err != nil {
		t.Fatalf("create schema: %v", err)
	}
	t.Cleanup(func() { _, _ = db.ExecContext(ctx, "DROP SCHEMA "+schema+" CASCADE") })

	repo := NewAttemptRepository(db, logging.NewNopLogger(), schema)
	if err := repo.EnsureSchema(ctx); err != nil {
		t.Fatalf("ensure schema: %v", err)
	}

	a := domain.NewAttempt(1, 9, "def f(): pass", "python", 1)
	if err := repo.CreateAttempt(ctx, a); err != nil {
		t.Fatalf("create: %v", err)
	}
	if a.ID == 0 {
		t.Fatalf("expected id to be assigned")
	}

	ok, err := repo.CompleteAttempt(ctx, a.ID, domain.GradingResult{Score: 100, Stars: 2, TestPassRate: 1, StyleScore: 7}, time.Now())
	if err != nil || !ok {
		t.Fatalf("complete: %v %v", ok, err)
	}
	ok, err = repo.FailAttempt(ctx, a.ID, "late", time.Now())
	if err != nil || ok {
		t.Fatalf("expected terminal attempt to stay untouched, got %v %v", ok, err)
	}

	got, err := repo.GetAttempt(ctx, a.ID)
	if err != nil || got == nil || got.Status != domain.AttemptStatusCompleted || got.Stars != 2 {
		t.Fatalf("unexpected attempt %+v, %v", got, err)
	}

	missing, err := repo.GetAttempt(ctx, a.ID+1000)
	if err != nil || missing != nil {
		t.Fatalf("expected nil for missing attempt, got %+v, %v", missing, err)
	}

	output := "a\x00b"
	graded := domain.NewAttempt(1, 9, "def f(): pass", "python", 1)
	_ = graded.Complete(grading.Evaluate(domain.LanguagePython, output, nil, 1), time.Now())
	if err := repo.CreateAttempt(ctx, graded); err != nil {
		t.Fatalf("create graded attempt with NUL output: %v", err)
	}
	stored, err := repo.GetAttempt(ctx, graded.ID)
	if err != nil || stored == nil || stored.Status != domain.AttemptStatusCompleted {
		t.Fatalf("unexpected graded attempt %+v, %v", stored, err)
	}

	best, err := repo.GetBestAttemptsByUser(ctx, 1)
	if err != nil || len(best) != 1 || best[0].ID != a.ID {
		t.Fatalf("unexpected best attempts %+v, %v", best, err)
	}
}
