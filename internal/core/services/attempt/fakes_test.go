package attempt_test

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"gitlab.com/fcv-2025.net/attempt-service/internal/domain"
)

type memRepo struct {
	mu       sync.Mutex
	nextID   int64
	attempts map[int64]*domain.Attempt
}

func newMemRepo() *memRepo {
	return &memRepo{attempts: map[int64]*domain.Attempt{}}
}

func (r *memRepo) CreateAttempt(_ context.Context, a *domain.Attempt) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	a.ID = r.nextID
	cp := *a
	r.attempts[a.ID] = &cp
	return nil
}

func (r *memRepo) GetAttempt(_ context.Context, id int64) (*domain.Attempt, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.attempts[id]
	if !ok {
		return nil, nil
	}
	cp := *a
	return &cp, nil
}

func (r *memRepo) CompleteAttempt(_ context.Context, id int64, result domain.GradingResult, at time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.attempts[id]
	if !ok {
		return false, nil
	}
	return a.Complete(result, at) == nil, nil
}

func (r *memRepo) FailAttempt(_ context.Context, id int64, feedback string, at time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.attempts[id]
	if !ok {
		return false, nil
	}
	return a.Fail(feedback, at) == nil, nil
}

func (r *memRepo) filter(keep func(*domain.Attempt) bool) []*domain.Attempt {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Attempt
	for _, a := range r.attempts {
		if keep(a) {
			cp := *a
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AttemptedAt.After(out[j].AttemptedAt) })
	return out
}

func (r *memRepo) ListByUser(_ context.Context, userID int64) ([]*domain.Attempt, error) {
	return r.filter(func(a *domain.Attempt) bool { return a.UserID == userID }), nil
}

func (r *memRepo) ListByExercise(_ context.Context, exerciseID int64, limit int) ([]*domain.Attempt, error) {
	out := r.filter(func(a *domain.Attempt) bool { return a.ExerciseID == exerciseID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *memRepo) GetBestAttempt(_ context.Context, userID, exerciseID int64) (*domain.Attempt, error) {
	var best *domain.Attempt
	for _, a := range r.filter(func(a *domain.Attempt) bool { return a.UserID == userID && a.ExerciseID == exerciseID }) {
		if best == nil || a.Outranks(best) {
			best = a
		}
	}
	return best, nil
}

func (r *memRepo) GetBestAttemptsByUser(_ context.Context, userID int64) ([]*domain.Attempt, error) {
	return r.filter(func(a *domain.Attempt) bool { return a.UserID == userID }), nil
}

func (r *memRepo) ListStalePending(_ context.Context, cutoff time.Time, limit int) ([]*domain.Attempt, error) {
	out := r.filter(func(a *domain.Attempt) bool {
		return a.Status == domain.AttemptStatusPending && a.AttemptedAt.Before(cutoff)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *memRepo) insert(a domain.Attempt) *domain.Attempt {
	_ = r.CreateAttempt(context.Background(), &a)
	return &a
}

type memDispatches struct {
	mu      sync.Mutex
	records map[int64]*domain.Dispatch
	saveErr error
}

func newMemDispatches() *memDispatches {
	return &memDispatches{records: map[int64]*domain.Dispatch{}}
}

func (d *memDispatches) SaveDispatch(_ context.Context, rec *domain.Dispatch) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.saveErr != nil {
		return d.saveErr
	}
	d.records[rec.AttemptID] = rec
	return nil
}

func (d *memDispatches) GetDispatch(_ context.Context, attemptID int64) (*domain.Dispatch, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.records[attemptID], nil
}

func (d *memDispatches) DeleteDispatch(_ context.Context, attemptID int64) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.records, attemptID)
	return nil
}

func (d *memDispatches) GetExpiredDispatches(_ context.Context, now time.Time, limit int) ([]*domain.Dispatch, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []*domain.Dispatch
	for _, rec := range d.records {
		if rec.Expired(now) && len(out) < limit {
			out = append(out, rec)
		}
	}
	return out, nil
}

type fakeGateway struct {
	mu          sync.Mutex
	jobs        []*domain.GradingJob
	dispatchErr error
	runReply    *domain.ExecutionReply
	onExecute   func(domain.ExecutionRequest)
}

func (g *fakeGateway) Execute(_ context.Context, req domain.ExecutionRequest) (*domain.ExecutionReply, error) {
	if g.onExecute != nil {
		g.onExecute(req)
	}
	if req.Mode == domain.ExecutionModeLint {
		out := "Your code has been rated at 10.00/10"
		return &domain.ExecutionReply{Output: &out}, nil
	}
	if g.runReply == nil {
		return nil, errors.New("sandbox down")
	}
	return g.runReply, nil
}

func (g *fakeGateway) Dispatch(_ context.Context, job *domain.GradingJob) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.dispatchErr != nil {
		return g.dispatchErr
	}
	g.jobs = append(g.jobs, job)
	return nil
}
