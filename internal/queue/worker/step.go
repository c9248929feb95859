package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/geocoder89/libraryhub/internal/domain/job"
)

var ErrNoHandler = errors.New("no handler registered for job type")

// ProcessOne claims and runs at most one job. It reports whether a job
// was claimed.
func (w *Worker) ProcessOne(ctx context.Context) (bool, error) {

	claimCtx, cancel := context.WithTimeout(ctx, 2*time.Second)

	j, err := w.repo.ClaimNext(claimCtx, w.cfg.WorkerID)
	cancel()

	if err != nil {
		if errors.Is(err, job.ErrJobNotFound) {
			return false, nil
		}

		return false, err
	}

	start := time.Now()
	if w.prom != nil {
		w.prom.JobsInFlight.Inc()
		defer w.prom.JobsInFlight.Dec()
	}

	err = w.execute(ctx, j)

	if err != nil {
		result := w.handleFailure(ctx, j, err)
		w.observe(j.Type, result, time.Since(start))
		return true, nil
	}

	err = w.repo.MarkDone(ctx, j.ID)

	if err != nil {
		_ = w.repo.MarkFailed(ctx, j.ID, "mark_done_failed: "+err.Error())
		w.observe(j.Type, "failed", time.Since(start))
		return true, err
	}

	w.observe(j.Type, "done", time.Since(start))
	w.log.InfoContext(ctx, "job done", "job_id", j.ID, "job_type", j.Type, "attempts", j.Attempts)
	return true, nil
}

func (w *Worker) execute(ctx context.Context, j job.Job) (err error) {
	h, ok := w.handlers[j.Type]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNoHandler, j.Type)
	}

	ctx, cancel := context.WithTimeout(ctx, w.cfg.JobTimeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job panicked: %v", r)
		}
	}()

	return h(ctx, j)
}

// handleFailure reschedules with backoff while attempts remain; the last
// attempt, or a job nobody can handle, is marked failed.
func (w *Worker) handleFailure(ctx context.Context, j job.Job, cause error) string {
	msg := cause.Error()
	nextAttempt := j.Attempts + 1

	if errors.Is(cause, ErrNoHandler) || nextAttempt >= j.MaxAttempts {
		if err := w.repo.MarkFailed(ctx, j.ID, msg); err != nil {
			w.log.ErrorContext(ctx, "mark job failed", "job_id", j.ID, "err", err)
		}
		w.log.ErrorContext(ctx, "job failed permanently", "job_id", j.ID, "job_type", j.Type, "attempts", nextAttempt, "err", msg)
		return "failed"
	}

	runAt := time.Now().UTC().Add(w.backoff.Delay(j.Attempts))
	if err := w.repo.Reschedule(ctx, j.ID, runAt, msg); err != nil {
		w.log.ErrorContext(ctx, "reschedule job", "job_id", j.ID, "err", err)
	}
	w.log.WarnContext(ctx, "job retry scheduled", "job_id", j.ID, "job_type", j.Type, "attempt", nextAttempt, "run_at", runAt, "err", msg)
	return "retry"
}

func (w *Worker) observe(jobType, result string, d time.Duration) {
	if w.prom != nil {
		w.prom.ObserveJob(jobType, result, d)
	}
}
