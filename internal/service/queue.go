package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bnema/clipforge/internal/domain"
	"github.com/bnema/clipforge/internal/infrastructure/logger"
	"github.com/bnema/clipforge/internal/port"
)

const (
	DefaultPollInterval = 2 * time.Second

	resultAttempts   = 3
	resultRetryDelay = 200 * time.Millisecond
)

// Renderer turns a job into a finished file.
type Renderer interface {
	Run(ctx context.Context, job *domain.Job) (string, error)
}

// QueueProcessor is the single background worker. It renders one job at a
// time in creation order.
type QueueProcessor struct {
	store    port.JobStore
	renderer Renderer
	interval time.Duration
	wake     chan struct{}
	done     chan struct{}
	now      func() time.Time
	backoff  time.Duration

	// pending holds a terminal update that could not be written. No other
	// job is claimed until it lands.
	pending *pendingResult
}

type pendingResult struct {
	id     string
	update domain.JobUpdate
}

func NewQueueProcessor(store port.JobStore, renderer Renderer, interval time.Duration) *QueueProcessor {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &QueueProcessor{
		store:    store,
		renderer: renderer,
		interval: interval,
		wake:     make(chan struct{}, 1),
		done:     make(chan struct{}),
		now:      func() time.Time { return time.Now().UTC() },
		backoff:  resultRetryDelay,
	}
}

// Notify wakes the worker without waiting for the next poll.
func (q *QueueProcessor) Notify() {
	select {
	case q.wake <- struct{}{}:
	default:
	}
}

// Start runs the worker loop in the background until ctx is cancelled.
func (q *QueueProcessor) Start(ctx context.Context) {
	go q.run(ctx)
	logger.Info.Printf("queue processor started (poll every %s)", q.interval)
}

// Done is closed once the worker loop has returned.
func (q *QueueProcessor) Done() <-chan struct{} {
	return q.done
}

func (q *QueueProcessor) run(ctx context.Context) {
	defer close(q.done)

	if n, err := q.ResetStalled(); err != nil {
		logger.Error.Printf("failed to reset stalled jobs: %v", err)
	} else if n > 0 {
		logger.Warn.Printf("re-queued %d job(s) left rendering by a previous run", n)
	}

	ticker := time.NewTicker(q.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info.Printf("queue processor shutting down")
			return
		case <-ticker.C:
		case <-q.wake:
		}

		for ctx.Err() == nil {
			processed, err := q.ProcessNext(ctx)
			if err != nil {
				logger.Error.Printf("queue: %v", err)
				break
			}
			if !processed {
				break
			}
		}
	}
}

// ResetStalled puts jobs that were rendering when the process died back in
// the queue.
func (q *QueueProcessor) ResetStalled() (int, error) {
	jobs, err := q.store.List()
	if err != nil {
		return 0, fmt.Errorf("list jobs: %w", err)
	}
	n := 0
	for _, j := range jobs {
		if j.Status != domain.JobStatusRendering {
			continue
		}
		if _, err := q.store.Update(j.ID, domain.StatusUpdate(domain.JobStatusQueued)); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				continue
			}
			return n, fmt.Errorf("re-queue %s: %w", j.ID, err)
		}
		n++
	}
	return n, nil
}

// ProcessNext renders the earliest queued job, if any. It reports whether a
// job was claimed. Render failures are recorded on the job, not returned.
// While a previous result is still unrecorded no new job is claimed.
func (q *QueueProcessor) ProcessNext(ctx context.Context) (bool, error) {
	if q.pending != nil {
		if err := q.recordResult(q.pending.id, q.pending.update); err != nil {
			return false, err
		}
		q.pending = nil
	}

	jobs, err := q.store.List()
	if err != nil {
		return false, fmt.Errorf("list jobs: %w", err)
	}
	next := domain.NextQueued(jobs)
	if next == nil {
		return false, nil
	}

	job, err := q.store.Update(next.ID, domain.StatusUpdate(domain.JobStatusRendering))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return true, nil
		}
		return false, fmt.Errorf("claim %s: %w", next.ID, err)
	}

	logger.Info.Printf("rendering job %s (mode=%s, output=%s)", job.ID, job.Mode, logger.SanitizeForLog(job.OutputName))
	start := time.Now()

	// The in-flight job always runs to completion, even during shutdown.
	out, renderErr := q.renderer.Run(context.WithoutCancel(ctx), job)

	var update domain.JobUpdate
	if renderErr != nil {
		logger.Error.Printf("job %s failed after %s: %s", job.ID, time.Since(start).Round(time.Millisecond),
			logger.Truncate(logger.SanitizeForLog(renderErr.Error()), 300))
		update = domain.FailedUpdate(renderErr, q.now())
	} else {
		logger.Info.Printf("job %s ready for review in %s: %s", job.ID, time.Since(start).Round(time.Millisecond), out)
		update = domain.ReviewUpdate(q.now())
	}

	if err := q.recordResult(job.ID, update); err != nil {
		q.pending = &pendingResult{id: job.ID, update: update}
		return true, err
	}
	return true, nil
}

// recordResult writes the terminal update of a rendered job, retrying with a
// linear backoff.
func (q *QueueProcessor) recordResult(id string, update domain.JobUpdate) error {
	var err error
	for attempt := 1; attempt <= resultAttempts; attempt++ {
		_, err = q.store.Update(id, update)
		if err == nil {
			return nil
		}
		if errors.Is(err, domain.ErrNotFound) {
			logger.Info.Printf("job %s was deleted while rendering", id)
			return nil
		}
		if attempt < resultAttempts {
			logger.Warn.Printf("record result of %s (attempt %d): %v", id, attempt, err)
			time.Sleep(q.backoff * time.Duration(attempt))
		}
	}
	return fmt.Errorf("record result of %s: %w", id, err)
}
