package summarize

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/meetscribe/meetscribe/cmd/server/internal/domain/meetings"
	"github.com/meetscribe/meetscribe/pkg/metrics"
)

// Job is one tracked summarization unit. Callers can wait on Done and
// inspect Err once it closes.
type Job struct {
	MeetingID  string
	Transcript string

	done chan struct{}
	err  error
}

// Done closes when the job has finished, successfully or not.
func (j *Job) Done() <-chan struct{} { return j.done }

// Err reports the terminal error, valid after Done closes.
func (j *Job) Err() error { return j.err }

// WorkerConfig tunes the summarization worker.
type WorkerConfig struct {
	MaxConcurrent int
	MaxAttempts   int
	RetryBackoff  time.Duration
}

// Worker executes summarization jobs off the webhook request path.
// The original behavior here was a detached call whose outcome nobody
// observed; jobs are instead tracked, bounded by a semaphore, retried
// with backoff, and drained on shutdown.
type Worker struct {
	service    *meetings.Service
	summarizer Summarizer
	sem        *semaphore.Weighted
	cfg        WorkerConfig
	logger     *slog.Logger
	wg         sync.WaitGroup
}

// NewWorker creates a worker bound to the record service.
func NewWorker(service *meetings.Service, summarizer Summarizer, cfg WorkerConfig, logger *slog.Logger) *Worker {
	if cfg.MaxConcurrent < 1 {
		cfg.MaxConcurrent = 1
	}
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	if cfg.RetryBackoff <= 0 {
		cfg.RetryBackoff = 2 * time.Second
	}
	return &Worker{
		service:    service,
		summarizer: summarizer,
		sem:        semaphore.NewWeighted(int64(cfg.MaxConcurrent)),
		cfg:        cfg,
		logger:     logger,
	}
}

// Enqueue hands a transcript to the worker and returns the tracked
// job. The record must already be in SUMMARIZING.
func (w *Worker) Enqueue(meetingID, transcript string) *Job {
	job := &Job{MeetingID: meetingID, Transcript: transcript, done: make(chan struct{})}
	w.wg.Add(1)
	go w.run(job)
	return job
}

func (w *Worker) run(job *Job) {
	defer w.wg.Done()
	defer close(job.done)

	if err := w.sem.Acquire(context.Background(), 1); err != nil {
		job.err = err
		return
	}
	defer w.sem.Release(1)

	var lastErr error
	for attempt := 1; attempt <= w.cfg.MaxAttempts; attempt++ {
		summary, err := w.summarizer.Summarize(context.Background(), job.Transcript)
		if err == nil {
			if err := w.service.CompleteSummary(job.MeetingID, summary); err != nil {
				// Conflict means someone else finished the record first.
				w.logger.Warn("summary completion rejected", "meeting_id", job.MeetingID, "error", err)
				job.err = err
			} else {
				w.logger.Info("summary saved", "meeting_id", job.MeetingID, "attempt", attempt)
			}
			return
		}

		lastErr = err
		w.logger.Warn("summarization attempt failed",
			"meeting_id", job.MeetingID,
			"attempt", attempt,
			"max_attempts", w.cfg.MaxAttempts,
			"error", err,
		)
		if attempt < w.cfg.MaxAttempts {
			metrics.RecordSummarizationRetry()
			time.Sleep(w.cfg.RetryBackoff * time.Duration(attempt))
		}
	}

	job.err = lastErr
	if err := w.service.MarkError(job.MeetingID, "summarization failed: "+lastErr.Error()); err != nil {
		w.logger.Error("failed to record summarization error", "meeting_id", job.MeetingID, "error", err)
	}
}

// Shutdown waits for in-flight jobs to finish or the context to end.
func (w *Worker) Shutdown(ctx context.Context) error {
	finished := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(finished)
	}()

	select {
	case <-finished:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
