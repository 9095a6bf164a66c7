package dispatchstore

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"

	"gitlab.com/fcv-2025.net/attempt-service/internal/core/ports/primary"
	"gitlab.com/fcv-2025.net/attempt-service/internal/core/ports/secondary"
	"gitlab.com/fcv-2025.net/attempt-service/internal/domain"
)

const (
	dispatchKeyPrefix = "attempt:dispatch:"
	deadlineIndexKey  = "attempt:dispatch:deadlines"
	// Records outlive their deadline so the sweep can still read them.
	dispatchRetention = 24 * time.Hour
)

var _ secondary.DispatchStore = (*DispatchStore)(nil)

// DispatchStore implements the DispatchStore interface with Redis. Records
// are JSON values; a sorted set scored by deadline indexes them for the sweep.
type DispatchStore struct {
	redisClient *redis.Client
	logger      primary.Logger
}

// NewDispatchStore creates a new Redis dispatch store
func NewDispatchStore(redisClient *redis.Client, logger primary.Logger) *DispatchStore {
	return &DispatchStore{
		redisClient: redisClient,
		logger:      logger,
	}
}

func dispatchKey(attemptID int64) string {
	return dispatchKeyPrefix + strconv.FormatInt(attemptID, 10)
}

// SaveDispatch saves a dispatch record and indexes its deadline
func (s *DispatchStore) SaveDispatch(ctx context.Context, d *domain.Dispatch) error {
	payload, err := json.Marshal(d)
	if err != nil {
		s.logger.Error("Failed to marshal dispatch", "attemptId", d.AttemptID, "error", err)
		return fmt.Errorf("failed to marshal dispatch: %w", err)
	}

	_, err = s.redisClient.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, dispatchKey(d.AttemptID), payload, dispatchRetention)
		pipe.ZAdd(ctx, deadlineIndexKey, &redis.Z{
			Score:  float64(d.Deadline.UnixMilli()),
			Member: strconv.FormatInt(d.AttemptID, 10),
		})
		return nil
	})
	if err != nil {
		s.logger.Error("Failed to save dispatch", "attemptId", d.AttemptID, "error", err)
		return fmt.Errorf("failed to save dispatch: %w", err)
	}
	return nil
}

// GetDispatch retrieves the dispatch record of an attempt
func (s *DispatchStore) GetDispatch(ctx context.Context, attemptID int64) (*domain.Dispatch, error) {
	payload, err := s.redisClient.Get(ctx, dispatchKey(attemptID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		s.logger.Error("Failed to get dispatch", "attemptId", attemptID, "error", err)
		return nil, fmt.Errorf("failed to get dispatch: %w", err)
	}

	var d domain.Dispatch
	if err := json.Unmarshal(payload, &d); err != nil {
		s.logger.Error("Failed to unmarshal dispatch", "attemptId", attemptID, "error", err)
		return nil, fmt.Errorf("failed to unmarshal dispatch: %w", err)
	}
	return &d, nil
}

// DeleteDispatch removes a dispatch record and its deadline entry
func (s *DispatchStore) DeleteDispatch(ctx context.Context, attemptID int64) error {
	_, err := s.redisClient.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, dispatchKey(attemptID))
		pipe.ZRem(ctx, deadlineIndexKey, strconv.FormatInt(attemptID, 10))
		return nil
	})
	if err != nil {
		s.logger.Error("Failed to delete dispatch", "attemptId", attemptID, "error", err)
		return fmt.Errorf("failed to delete dispatch: %w", err)
	}
	return nil
}

// GetExpiredDispatches returns dispatches whose deadline is at or before now.
// A deadline entry whose record already expired yields a record holding only
// the attempt ID and deadline.
func (s *DispatchStore) GetExpiredDispatches(ctx context.Context, now time.Time, limit int) ([]*domain.Dispatch, error) {
	if limit <= 0 {
		return nil, nil
	}
	entries, err := s.redisClient.ZRangeByScoreWithScores(ctx, deadlineIndexKey, &redis.ZRangeBy{
		Min:   "-inf",
		Max:   strconv.FormatInt(now.UnixMilli(), 10),
		Count: int64(limit),
	}).Result()
	if err != nil {
		s.logger.Error("Failed to read dispatch deadlines", "error", err)
		return nil, fmt.Errorf("failed to read dispatch deadlines: %w", err)
	}
	if len(entries) == 0 {
		return nil, nil
	}

	ids := make([]int64, 0, len(entries))
	keys := make([]string, 0, len(entries))
	deadlines := make([]time.Time, 0, len(entries))
	for _, z := range entries {
		member, _ := z.Member.(string)
		id, err := strconv.ParseInt(member, 10, 64)
		if err != nil {
			s.logger.Warn("Dropping malformed deadline entry", "member", member)
			s.redisClient.ZRem(ctx, deadlineIndexKey, member)
			continue
		}
		ids = append(ids, id)
		keys = append(keys, dispatchKey(id))
		deadlines = append(deadlines, time.UnixMilli(int64(z.Score)).UTC())
	}
	if len(keys) == 0 {
		return nil, nil
	}

	values, err := s.redisClient.MGet(ctx, keys...).Result()
	if err != nil {
		s.logger.Error("Failed to retrieve dispatches", "error", err)
		return nil, fmt.Errorf("failed to retrieve dispatches: %w", err)
	}

	dispatches := make([]*domain.Dispatch, 0, len(values))
	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			dispatches = append(dispatches, &domain.Dispatch{
				AttemptID: ids[i],
				Deadline:  deadlines[i],
			})
			continue
		}
		var d domain.Dispatch
		if err := json.Unmarshal([]byte(raw), &d); err != nil {
			s.logger.Warn("Failed to unmarshal dispatch", "attemptId", ids[i], "error", err)
			d = domain.Dispatch{AttemptID: ids[i], Deadline: deadlines[i]}
		}
		dispatches = append(dispatches, &d)
	}
	return dispatches, nil
}
