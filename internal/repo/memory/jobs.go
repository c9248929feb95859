package memory

import (
	"context"
	"sync"
	"time"

	"github.com/geocoder89/libraryhub/internal/domain/job"
)

// Jobs is an in-process job queue with the same claim semantics as the
// Postgres jobs table.
type Jobs struct {
	mu    sync.Mutex
	jobs  map[string]*job.Job
	order []string
	now   func() time.Time
}

func NewJobs() *Jobs {
	return &Jobs{
		jobs: make(map[string]*job.Job),
		now:  time.Now,
	}
}

// Enqueue returns false when a pending job with the same idempotency key
// already exists.
func (q *Jobs) Enqueue(_ context.Context, req job.CreateRequest) (job.Job, bool, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if req.IdempotencyKey != nil {
		for _, id := range q.order {
			existing := q.jobs[id]
			if existing.Status == job.StatusPending && existing.IdempotencyKey != nil && *existing.IdempotencyKey == *req.IdempotencyKey {
				return *existing, false, nil
			}
		}
	}

	j := job.New(req)
	q.jobs[j.ID] = &j
	q.order = append(q.order, j.ID)
	return j, true, nil
}

func (q *Jobs) ClaimNext(_ context.Context, workerID string) (job.Job, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	now := q.now().UTC()
	for _, id := range q.order {
		j := q.jobs[id]
		if j.Status != job.StatusPending || j.RunAt.After(now) || j.Attempts >= j.MaxAttempts {
			continue
		}
		j.Status = job.StatusProcessing
		j.LockedAt = &now
		j.LockedBy = &workerID
		j.UpdatedAt = now
		return *j, nil
	}
	return job.Job{}, job.ErrJobNotFound
}

func (q *Jobs) MarkDone(_ context.Context, id string) error {
	return q.update(id, func(j *job.Job) {
		j.Status = job.StatusDone
		j.LastError = nil
	})
}

func (q *Jobs) MarkFailed(_ context.Context, id string, errMsg string) error {
	return q.update(id, func(j *job.Job) {
		j.Status = job.StatusFailed
		j.LastError = &errMsg
	})
}

func (q *Jobs) Reschedule(_ context.Context, id string, runAt time.Time, errMsg string) error {
	return q.update(id, func(j *job.Job) {
		j.Status = job.StatusPending
		j.Attempts++
		j.RunAt = runAt
		j.LastError = &errMsg
	})
}

func (q *Jobs) Get(_ context.Context, id string) (job.Job, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	j, ok := q.jobs[id]
	if !ok {
		return job.Job{}, job.ErrJobNotFound
	}
	return *j, nil
}

func (q *Jobs) update(id string, fn func(j *job.Job)) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	j, ok := q.jobs[id]
	if !ok {
		return job.ErrJobNotFound
	}
	fn(j)
	j.LockedAt = nil
	j.LockedBy = nil
	j.UpdatedAt = q.now().UTC()
	return nil
}
