package summarize

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meetscribe/meetscribe/cmd/server/internal/domain/meetings"
	"github.com/meetscribe/meetscribe/pkg/logger"
)

// fakeSummarizer fails a configurable number of times before
// succeeding.
type fakeSummarizer struct {
	calls     atomic.Int32
	failFirst int32
	err       error
	summary   *meetings.Summary
}

func (f *fakeSummarizer) Summarize(ctx context.Context, transcript string) (*meetings.Summary, error) {
	n := f.calls.Add(1)
	if n <= f.failFirst {
		return nil, f.err
	}
	return f.summary, nil
}

func newWorkerFixture(t *testing.T, sum Summarizer, maxAttempts int) (*Worker, *meetings.Service, string) {
	t.Helper()

	store, err := meetings.NewStore("")
	require.NoError(t, err)
	svc := meetings.NewService(store)

	m, err := svc.Create("https://meet.example.com/abc", "")
	require.NoError(t, err)
	require.NoError(t, svc.BeginSummarizing(m.ID))

	log, err := logger.New(logger.Config{Level: "error"})
	require.NoError(t, err)

	w := NewWorker(svc, sum, WorkerConfig{
		MaxConcurrent: 2,
		MaxAttempts:   maxAttempts,
		RetryBackoff:  time.Millisecond,
	}, log)
	return w, svc, m.ID
}

func awaitJob(t *testing.T, job *Job) {
	t.Helper()
	select {
	case <-job.Done():
	case <-time.After(5 * time.Second):
		t.Fatalf("job did not finish")
	}
}

func TestWorkerCompletesRecord(t *testing.T) {
	sum := &fakeSummarizer{summary: &meetings.Summary{
		Title:         "Weekly Sync",
		SummaryPoints: []string{"Reviewed progress"},
		ActionItems:   []string{"Send notes — All"},
		Sentiment:     "Neutral",
	}}
	w, svc, id := newWorkerFixture(t, sum, 3)

	job := w.Enqueue(id, "transcript text")
	awaitJob(t, job)

	require.NoError(t, job.Err())
	got, err := svc.Get(id)
	require.NoError(t, err)
	assert.Equal(t, meetings.StatusCompleted, got.Status)
	require.NotNil(t, got.Summary)
	assert.Equal(t, "Weekly Sync", got.Summary.Title)
	assert.Equal(t, int32(1), sum.calls.Load())
}

func TestWorkerRetriesTransientFailures(t *testing.T) {
	sum := &fakeSummarizer{
		failFirst: 2,
		err:       errors.New("temporary upstream hiccup"),
		summary:   &meetings.Summary{Title: "Recovered"},
	}
	w, svc, id := newWorkerFixture(t, sum, 3)

	job := w.Enqueue(id, "transcript text")
	awaitJob(t, job)

	require.NoError(t, job.Err())
	assert.Equal(t, int32(3), sum.calls.Load())

	got, err := svc.Get(id)
	require.NoError(t, err)
	assert.Equal(t, meetings.StatusCompleted, got.Status)
}

func TestWorkerMarksErrorAfterExhaustion(t *testing.T) {
	sum := &fakeSummarizer{
		failFirst: 100,
		err:       errors.New("model unavailable"),
	}
	w, svc, id := newWorkerFixture(t, sum, 2)

	job := w.Enqueue(id, "transcript text")
	awaitJob(t, job)

	require.Error(t, job.Err())
	assert.Equal(t, int32(2), sum.calls.Load())

	got, err := svc.Get(id)
	require.NoError(t, err)
	assert.Equal(t, meetings.StatusError, got.Status)
	assert.Contains(t, got.Error, "summarization failed")
	assert.Contains(t, got.Error, "model unavailable")
	// The transcript stored so far is preserved on failure.
	assert.NotNil(t, got.Transcript)
}

func TestWorkerConflictWhenRecordAlreadyFinished(t *testing.T) {
	sum := &fakeSummarizer{summary: &meetings.Summary{Title: "Too late"}}
	w, svc, id := newWorkerFixture(t, sum, 1)

	// Someone else completes the record before the job runs.
	require.NoError(t, svc.CompleteSummary(id, &meetings.Summary{Title: "First"}))

	job := w.Enqueue(id, "transcript text")
	awaitJob(t, job)

	require.Error(t, job.Err())
	got, err := svc.Get(id)
	require.NoError(t, err)
	assert.Equal(t, "First", got.Summary.Title)
}

func TestWorkerShutdownDrains(t *testing.T) {
	sum := &fakeSummarizer{summary: &meetings.Summary{Title: "Drained"}}
	w, svc, id := newWorkerFixture(t, sum, 1)

	w.Enqueue(id, "transcript text")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, w.Shutdown(ctx))

	got, err := svc.Get(id)
	require.NoError(t, err)
	assert.Equal(t, meetings.StatusCompleted, got.Status)
}
