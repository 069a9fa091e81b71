package api

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meetscribe/meetscribe/cmd/server/internal/domain/meetings"
	"github.com/meetscribe/meetscribe/cmd/server/internal/summarize"
	"github.com/meetscribe/meetscribe/pkg/logger"
)

func newWebhookRouter(t *testing.T, svc *meetings.Service, summarizer summarize.Summarizer) (*gin.Engine, *summarize.Worker) {
	t.Helper()
	worker := summarize.NewWorker(svc, summarizer, summarize.WorkerConfig{
		MaxConcurrent: 1,
		MaxAttempts:   1,
		RetryBackoff:  time.Millisecond,
	}, logger.L())

	r := gin.New()
	r.POST("/api/v1/webhook", HandleBotWebhook(svc, worker, newTestAuditLogger(t)))
	return r, worker
}

func TestWebhookMissingMeetingID(t *testing.T) {
	svc := newTestService(t)
	r, _ := newWebhookRouter(t, svc, &fakeSummarizer{})

	w := doJSON(t, r, http.MethodPost, "/api/v1/webhook", gin.H{
		"type": "transcript.sentence",
		"data": gin.H{"text": "hi"},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestWebhookUnknownMeetingID(t *testing.T) {
	svc := newTestService(t)
	r, _ := newWebhookRouter(t, svc, &fakeSummarizer{})

	w := doJSON(t, r, http.MethodPost, "/api/v1/webhook?id=nope", gin.H{
		"type": "transcript.sentence",
		"data": gin.H{"text": "hi"},
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestWebhookMalformedPayload(t *testing.T) {
	svc := newTestService(t)
	r, _ := newWebhookRouter(t, svc, &fakeSummarizer{})

	m, err := svc.Create("https://meet.example/abc", "Scribe Bot")
	require.NoError(t, err)

	w := doJSON(t, r, http.MethodPost, "/api/v1/webhook?id="+m.ID, gin.H{"data": gin.H{}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestWebhookSentenceAppended(t *testing.T) {
	svc := newTestService(t)
	r, _ := newWebhookRouter(t, svc, &fakeSummarizer{})

	m, err := svc.Create("https://meet.example/abc", "Scribe Bot")
	require.NoError(t, err)

	w := doJSON(t, r, http.MethodPost, "/api/v1/webhook?id="+m.ID, gin.H{
		"type": "transcript.sentence",
		"data": gin.H{"speaker_id": "Alice", "text": "Hello everyone.", "start_timestamp": 4.2},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	got, err := svc.Get(m.ID)
	require.NoError(t, err)
	require.Len(t, got.Transcript, 1)
	assert.Equal(t, "Alice", got.Transcript[0].Speaker)
	assert.Equal(t, meetings.StatusTranscribing, got.Status)

	// Provider redelivery of the same sentence is acknowledged but
	// never stored twice.
	w = doJSON(t, r, http.MethodPost, "/api/v1/webhook?id="+m.ID, gin.H{
		"type": "transcript.sentence",
		"data": gin.H{"speaker_id": "Alice", "text": "Hello everyone.", "start_timestamp": 4.2},
	})
	require.Equal(t, http.StatusOK, w.Code)

	got, err = svc.Get(m.ID)
	require.NoError(t, err)
	assert.Len(t, got.Transcript, 1)
}

func TestWebhookPartialIgnored(t *testing.T) {
	svc := newTestService(t)
	r, _ := newWebhookRouter(t, svc, &fakeSummarizer{})

	m, err := svc.Create("https://meet.example/abc", "Scribe Bot")
	require.NoError(t, err)

	w := doJSON(t, r, http.MethodPost, "/api/v1/webhook?id="+m.ID, gin.H{
		"type": "transcript.partial_sentence",
		"data": gin.H{"text": "Hel"},
	})
	require.Equal(t, http.StatusOK, w.Code)

	got, err := svc.Get(m.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Transcript)
	assert.Equal(t, meetings.StatusJoining, got.Status)
}

func TestWebhookMeetingEndedTriggersSummarization(t *testing.T) {
	svc := newTestService(t)
	fs := &fakeSummarizer{summary: &meetings.Summary{Title: "Standup", Sentiment: "neutral"}}
	r, worker := newWebhookRouter(t, svc, fs)

	m, err := svc.Create("https://meet.example/abc", "Scribe Bot")
	require.NoError(t, err)

	w := doJSON(t, r, http.MethodPost, "/api/v1/webhook?id="+m.ID, gin.H{
		"type": "meeting.ended",
		"data": gin.H{"transcript_text": "Alice: we shipped the release and closed out the sprint."},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	require.NoError(t, worker.Shutdown(context.Background()))

	got, err := svc.Get(m.ID)
	require.NoError(t, err)
	assert.Equal(t, meetings.StatusCompleted, got.Status)
	require.NotNil(t, got.Summary)
	assert.Equal(t, "Standup", got.Summary.Title)
	assert.NotNil(t, got.ProcessedAt)
	assert.Equal(t, 1, fs.calls)
}

func TestWebhookMeetingEndedEmptyTranscript(t *testing.T) {
	svc := newTestService(t)
	fs := &fakeSummarizer{}
	r, _ := newWebhookRouter(t, svc, fs)

	m, err := svc.Create("https://meet.example/abc", "Scribe Bot")
	require.NoError(t, err)

	w := doJSON(t, r, http.MethodPost, "/api/v1/webhook?id="+m.ID, gin.H{
		"type": "meeting.ended",
		"data": gin.H{},
	})
	// The failure is recorded on the record, so the delivery itself
	// is acknowledged.
	require.Equal(t, http.StatusOK, w.Code)

	got, err := svc.Get(m.ID)
	require.NoError(t, err)
	assert.Equal(t, meetings.StatusError, got.Status)
	assert.Equal(t, "Meeting ended but no transcript text was provided.", got.Error)
	assert.Equal(t, 0, fs.calls)
}

func TestWebhookMeetingEndedRedelivery(t *testing.T) {
	svc := newTestService(t)
	fs := &fakeSummarizer{}
	r, worker := newWebhookRouter(t, svc, fs)

	m, err := svc.Create("https://meet.example/abc", "Scribe Bot")
	require.NoError(t, err)

	body := gin.H{
		"type": "meeting.ended",
		"data": gin.H{"transcript_text": "Alice: quick sync, nothing blocking."},
	}
	w := doJSON(t, r, http.MethodPost, "/api/v1/webhook?id="+m.ID, body)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, worker.Shutdown(context.Background()))

	// The record is terminal now; redelivery must not re-summarize.
	w = doJSON(t, r, http.MethodPost, "/api/v1/webhook?id="+m.ID, body)
	require.Equal(t, http.StatusOK, w.Code)

	got, err := svc.Get(m.ID)
	require.NoError(t, err)
	assert.Equal(t, meetings.StatusCompleted, got.Status)
	assert.Equal(t, 1, fs.calls)
}

func TestWebhookMeetingError(t *testing.T) {
	svc := newTestService(t)
	r, _ := newWebhookRouter(t, svc, &fakeSummarizer{})

	m, err := svc.Create("https://meet.example/abc", "Scribe Bot")
	require.NoError(t, err)

	w := doJSON(t, r, http.MethodPost, "/api/v1/webhook?id="+m.ID, gin.H{
		"type": "meeting.error",
		"data": gin.H{"error_message": "bot was removed from the call"},
	})
	require.Equal(t, http.StatusOK, w.Code)

	got, err := svc.Get(m.ID)
	require.NoError(t, err)
	assert.Equal(t, meetings.StatusError, got.Status)
	assert.Equal(t, "bot was removed from the call", got.Error)
}

func TestWebhookUnknownEventAcknowledged(t *testing.T) {
	svc := newTestService(t)
	r, _ := newWebhookRouter(t, svc, &fakeSummarizer{})

	m, err := svc.Create("https://meet.example/abc", "Scribe Bot")
	require.NoError(t, err)

	w := doJSON(t, r, http.MethodPost, "/api/v1/webhook?id="+m.ID, gin.H{
		"type": "participant.joined",
		"data": gin.H{"name": "Bob"},
	})
	require.Equal(t, http.StatusOK, w.Code)

	got, err := svc.Get(m.ID)
	require.NoError(t, err)
	assert.Equal(t, meetings.StatusJoining, got.Status)
}
