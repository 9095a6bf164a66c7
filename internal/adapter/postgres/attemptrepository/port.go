// Package attemptrepository stores attempts in PostgreSQL
package attemptrepository

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"gitlab.com/fcv-2025.net/attempt-service/internal/core/ports/primary"
	"gitlab.com/fcv-2025.net/attempt-service/internal/core/ports/secondary"
	"gitlab.com/fcv-2025.net/attempt-service/internal/domain"
	querybuilder "gitlab.com/fcv-2025.net/attempt-service/internal/utils"
)

//go:embed schema.sql
var schemaSQL string

var _ secondary.AttemptRepository = (*AttemptRepository)(nil)

// AttemptRepository implements the AttemptRepository interface with PostgreSQL
type AttemptRepository struct {
	db     *sqlx.DB
	logger primary.Logger
	schema string
}

// NewAttemptRepository creates a new PostgreSQL attempt repository
func NewAttemptRepository(db *sqlx.DB, logger primary.Logger, schema string) *AttemptRepository {
	if schema == "" {
		schema = "public"
	}
	return &AttemptRepository{
		db:     db,
		logger: logger,
		schema: schema,
	}
}

// EnsureSchema creates the attempts table and its indexes when missing
func (r *AttemptRepository) EnsureSchema(ctx context.Context) error {
	ddl := strings.ReplaceAll(schemaSQL, "{{schema}}", r.schema)
	if _, err := r.db.ExecContext(ctx, ddl); err != nil {
		r.logger.Error("Failed to create attempt schema", "schema", r.schema, "error", err)
		return fmt.Errorf("failed to create attempt schema: %w", err)
	}
	return nil
}

func (r *AttemptRepository) builder() querybuilder.QueryBuilder {
	return querybuilder.NewQueryBuilder(r.schema)
}

func (r *AttemptRepository) selectAttempts() querybuilder.QueryBuilder {
	tbl := domain.GetAttemptTable()
	return r.builder().Select(tbl.Columns()...).From(tbl.TableName())
}

// build rebinds the builder's placeholders for lib/pq.
func build(qb querybuilder.QueryBuilder) (string, []interface{}, error) {
	query, args, err := qb.Build()
	if err != nil {
		return "", nil, err
	}
	return sqlx.Rebind(sqlx.DOLLAR, query), args, nil
}

func (r *AttemptRepository) insertQuery(a *domain.Attempt) (string, []interface{}, error) {
	tbl := domain.GetAttemptTable()
	return build(r.builder().
		Insert(tbl.Columns()[1:]...).
		Into(tbl.TableName()).
		Values(
			a.UserID, a.ExerciseID, a.CodeSubmitted, a.Language, a.TestsTotal,
			a.Score, a.Stars, a.Status, a.AttemptedAt, a.Feedback, a.TestPassRate,
			a.StyleScore, a.ExecutionOutput, a.GradedAt,
		).
		Returning(tbl.ID))
}

// CreateAttempt inserts an attempt in whatever status it holds and sets its ID
func (r *AttemptRepository) CreateAttempt(ctx context.Context, a *domain.Attempt) error {
	query, args, err := r.insertQuery(a)
	if err != nil {
		return fmt.Errorf("failed to build insert: %w", err)
	}
	if err := r.db.QueryRowxContext(ctx, query, args...).Scan(&a.ID); err != nil {
		r.logger.Error("Failed to create attempt", "userId", a.UserID, "exerciseId", a.ExerciseID, "error", err)
		return fmt.Errorf("failed to create attempt: %w", err)
	}
	return nil
}

// GetAttempt retrieves an attempt by ID
func (r *AttemptRepository) GetAttempt(ctx context.Context, id int64) (*domain.Attempt, error) {
	tbl := domain.GetAttemptTable()
	query, args, err := build(r.selectAttempts().Where(tbl.ID+" = ?", id))
	if err != nil {
		return nil, fmt.Errorf("failed to build select: %w", err)
	}

	var a domain.Attempt
	if err := r.db.GetContext(ctx, &a, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error("Failed to get attempt", "attemptId", id, "error", err)
		return nil, fmt.Errorf("failed to get attempt: %w", err)
	}
	return &a, nil
}

func (r *AttemptRepository) completeQuery(id int64, result domain.GradingResult, gradedAt time.Time) (string, []interface{}, error) {
	tbl := domain.GetAttemptTable()
	return build(r.builder().
		Update(tbl.TableName()).
		Set(tbl.Score, result.Score).
		Set(tbl.Stars, result.Stars).
		Set(tbl.TestPassRate, result.TestPassRate).
		Set(tbl.StyleScore, result.StyleScore).
		Set(tbl.Feedback, result.Feedback).
		Set(tbl.ExecutionOutput, result.ExecutionOutput).
		Set(tbl.Status, domain.AttemptStatusCompleted).
		Set(tbl.GradedAt, gradedAt).
		Where(tbl.ID+" = ?", id).
		And(tbl.Status+" = ?", domain.AttemptStatusPending))
}

// CompleteAttempt stores a grading result if the attempt is still pending
func (r *AttemptRepository) CompleteAttempt(ctx context.Context, id int64, result domain.GradingResult, gradedAt time.Time) (bool, error) {
	query, args, err := r.completeQuery(id, result, gradedAt)
	if err != nil {
		return false, fmt.Errorf("failed to build update: %w", err)
	}
	return r.execTransition(ctx, id, query, args)
}

func (r *AttemptRepository) failQuery(id int64, feedback string, failedAt time.Time) (string, []interface{}, error) {
	tbl := domain.GetAttemptTable()
	return build(r.builder().
		Update(tbl.TableName()).
		Set(tbl.Score, 0).
		Set(tbl.Stars, 0).
		Set(tbl.Feedback, feedback).
		Set(tbl.Status, domain.AttemptStatusError).
		Set(tbl.GradedAt, failedAt).
		Where(tbl.ID+" = ?", id).
		And(tbl.Status+" = ?", domain.AttemptStatusPending))
}

// FailAttempt moves a pending attempt to ERROR
func (r *AttemptRepository) FailAttempt(ctx context.Context, id int64, feedback string, failedAt time.Time) (bool, error) {
	query, args, err := r.failQuery(id, feedback, failedAt)
	if err != nil {
		return false, fmt.Errorf("failed to build update: %w", err)
	}
	return r.execTransition(ctx, id, query, args)
}

func (r *AttemptRepository) execTransition(ctx context.Context, id int64, query string, args []interface{}) (bool, error) {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to update attempt", "attemptId", id, "error", err)
		return false, fmt.Errorf("failed to update attempt: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return n == 1, nil
}

// ListByUser returns a user's attempts, newest first
func (r *AttemptRepository) ListByUser(ctx context.Context, userID int64) ([]*domain.Attempt, error) {
	tbl := domain.GetAttemptTable()
	return r.list(ctx, r.selectAttempts().
		Where(tbl.UserID+" = ?", userID).
		OrderBy(tbl.AttemptedAt, false).
		OrderBy(tbl.ID, false))
}

// ListByExercise returns an exercise's attempts, newest first
func (r *AttemptRepository) ListByExercise(ctx context.Context, exerciseID int64, limit int) ([]*domain.Attempt, error) {
	tbl := domain.GetAttemptTable()
	return r.list(ctx, r.selectAttempts().
		Where(tbl.ExerciseID+" = ?", exerciseID).
		OrderBy(tbl.AttemptedAt, false).
		OrderBy(tbl.ID, false).
		Limit(limit))
}

func (r *AttemptRepository) bestQuery(userID, exerciseID int64) (string, []interface{}, error) {
	tbl := domain.GetAttemptTable()
	return build(rankBest(r.selectAttempts().
		Where(tbl.UserID+" = ?", userID).
		And(tbl.ExerciseID+" = ?", exerciseID)).
		Limit(1))
}

// GetBestAttempt returns the highest ranked attempt for a user and exercise
func (r *AttemptRepository) GetBestAttempt(ctx context.Context, userID, exerciseID int64) (*domain.Attempt, error) {
	query, args, err := r.bestQuery(userID, exerciseID)
	if err != nil {
		return nil, fmt.Errorf("failed to build select: %w", err)
	}

	var a domain.Attempt
	if err := r.db.GetContext(ctx, &a, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error("Failed to get best attempt", "userId", userID, "exerciseId", exerciseID, "error", err)
		return nil, fmt.Errorf("failed to get best attempt: %w", err)
	}
	return &a, nil
}

func (r *AttemptRepository) bestPerExerciseQuery(userID int64) querybuilder.QueryBuilder {
	tbl := domain.GetAttemptTable()
	qb := r.selectAttempts().
		DistinctOn(tbl.ExerciseID).
		Where(tbl.UserID+" = ?", userID).
		OrderBy(tbl.ExerciseID, true)
	return rankBest(qb)
}

// GetBestAttemptsByUser returns one best attempt per exercise
func (r *AttemptRepository) GetBestAttemptsByUser(ctx context.Context, userID int64) ([]*domain.Attempt, error) {
	return r.list(ctx, r.bestPerExerciseQuery(userID))
}

// ListStalePending returns pending attempts created before cutoff, oldest first
func (r *AttemptRepository) ListStalePending(ctx context.Context, cutoff time.Time, limit int) ([]*domain.Attempt, error) {
	tbl := domain.GetAttemptTable()
	return r.list(ctx, r.selectAttempts().
		Where(tbl.Status+" = ?", domain.AttemptStatusPending).
		And(tbl.AttemptedAt+" < ?", cutoff).
		OrderBy(tbl.AttemptedAt, true).
		Limit(limit))
}

func (r *AttemptRepository) list(ctx context.Context, qb querybuilder.QueryBuilder) ([]*domain.Attempt, error) {
	query, args, err := build(qb)
	if err != nil {
		return nil, fmt.Errorf("failed to build select: %w", err)
	}

	rows, err := r.db.QueryxContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to query attempts", "error", err)
		return nil, fmt.Errorf("failed to query attempts: %w", err)
	}
	defer rows.Close()

	attempts := make([]*domain.Attempt, 0)
	for rows.Next() {
		var a domain.Attempt
		if err := rows.StructScan(&a); err != nil {
			r.logger.Error("Failed to scan attempt", "error", err)
			return nil, fmt.Errorf("failed to scan attempt: %w", err)
		}
		attempts = append(attempts, &a)
	}
	if err := rows.Err(); err != nil {
		r.logger.Error("Failed to iterate attempts", "error", err)
		return nil, fmt.Errorf("failed to iterate attempts: %w", err)
	}
	return attempts, nil
}

// rankBest orders more stars first, then higher score, then newer attempts.
func rankBest(qb querybuilder.QueryBuilder) querybuilder.QueryBuilder {
	tbl := domain.GetAttemptTable()
	return qb.
		OrderBy(tbl.Stars, false).
		OrderBy(tbl.Score, false).
		OrderBy(tbl.AttemptedAt, false).
		OrderBy(tbl.ID, false)
}
