// Package runner executes the imputation pass as a single-flight
// asynchronous job. At most one job runs at a time; a second trigger while
// one is in flight fails with ErrBusy, which is how callers serialize
// invocations against the same cohort. A job is not cancellable once
// started and publishes its result atomically on completion.
package runner

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/okian/gradefill/pkg/logger"
	"github.com/okian/gradefill/pkg/metrics"
)

// State of the runner as reported to clients.
type State string

// Runner states.
const (
	StateIdle    State = "idle"
	StateRunning State = "running"
	StateDone    State = "done"
)

// Job is the unit of work: it returns the ordered imputation log.
type Job func(ctx context.Context) []string

// Result describes the last completed job.
type Result struct {
	JobID      string    `json:"job_id"`
	Log        []string  `json:"log"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

// Status is the externally visible runner state.
type Status struct {
	State State   `json:"state"`
	JobID string  `json:"job_id,omitempty"`
	Last  *Result `json:"last,omitempty"`
}

// Runner owns the lifecycle of the asynchronous imputation job.
type Runner struct {
	mu      sync.Mutex
	running bool
	jobID   string
	started time.Time
	last    *Result
	done    chan struct{}

	logger logger.Logger
}

// New creates a runner with configuration options.
func New(opts ...Option) *Runner {
	r := &Runner{}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Trigger starts the job asynchronously and returns its id, or ErrBusy if a
// job is already in flight. The job keeps running after the trigger's
// request context is done; no cancellation is threaded through.
func (r *Runner) Trigger(ctx context.Context, job Job) (string, error) {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		metrics.RecordImputationRunBusy()
		return "", ErrBusy
	}
	id := uuid.New().String()
	r.running = true
	r.jobID = id
	r.started = time.Now()
	r.done = make(chan struct{})
	done := r.done
	r.mu.Unlock()

	if r.logger != nil {
		r.logger.Info(ctx, "imputation job started", logger.String("jobID", id))
	}

	go func() {
		jobCtx := context.WithoutCancel(ctx)
		start := time.Now()
		log := job(jobCtx)
		elapsed := time.Since(start)

		metrics.RecordImputationRun()
		metrics.RecordImputationRunDuration(float64(elapsed.Milliseconds()))

		r.mu.Lock()
		r.last = &Result{
			JobID:      id,
			Log:        log,
			StartedAt:  r.started,
			FinishedAt: time.Now(),
		}
		r.running = false
		r.jobID = ""
		r.mu.Unlock()
		close(done)

		if r.logger != nil {
			r.logger.Info(jobCtx, "imputation job finished",
				logger.String("jobID", id),
				logger.Int("imputedCells", len(log)),
				logger.Duration("elapsed", elapsed),
			)
		}
	}()

	return id, nil
}

// Status reports the current runner state and the last completed result.
func (r *Runner) Status(_ context.Context) Status {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch {
	case r.running:
		return Status{State: StateRunning, JobID: r.jobID, Last: r.last}
	case r.last != nil:
		return Status{State: StateDone, Last: r.last}
	default:
		return Status{State: StateIdle}
	}
}

// Wait blocks until the in-flight job (if any) finishes or ctx is done.
// Used by graceful shutdown and tests.
func (r *Runner) Wait(ctx context.Context) error {
	r.mu.Lock()
	done := r.done
	running := r.running
	r.mu.Unlock()

	if !running || done == nil {
		return nil
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
