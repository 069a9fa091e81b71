package api

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meetscribe/meetscribe/cmd/server/internal/domain/meetings"
	"github.com/meetscribe/meetscribe/cmd/server/internal/summarize"
)

const testMinTranscriptChars = 50

func newSummarizeRouter(svc *meetings.Service, s summarize.Summarizer) *gin.Engine {
	r := gin.New()
	r.POST("/api/v1/summarize", HandleSummarize(svc, s, testMinTranscriptChars))
	return r
}

func seedTranscribedMeeting(t *testing.T, svc *meetings.Service) *meetings.Meeting {
	t.Helper()
	m, err := svc.Create("https://meet.example/abc", "Scribe Bot")
	require.NoError(t, err)
	sentences := []meetings.TranscriptSentenceEvent{
		{Speaker: "Alice", Text: "Let's walk through the release checklist together.", Timestamp: 2},
		{Speaker: "Bob", Text: "Deploys are green and the rollback plan is documented.", Timestamp: 9},
	}
	for _, ev := range sentences {
		added, err := svc.AppendSentence(m.ID, ev)
		require.NoError(t, err)
		require.True(t, added)
	}
	return m
}

func TestSummarizeOnDemand(t *testing.T) {
	svc := newTestService(t)
	fs := &fakeSummarizer{summary: &meetings.Summary{
		Title:         "Release Checklist",
		SummaryPoints: []string{"Deploys are green."},
		ActionItems:   []string{"Document rollback drill — Bob"},
		Sentiment:     "positive",
	}}
	r := newSummarizeRouter(svc, fs)
	m := seedTranscribedMeeting(t, svc)

	w := doJSON(t, r, http.MethodPost, "/api/v1/summarize", gin.H{"meetingId": m.ID})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "Release Checklist")
	assert.Equal(t, 1, fs.calls)

	got, err := svc.Get(m.ID)
	require.NoError(t, err)
	assert.Equal(t, meetings.StatusCompleted, got.Status)
	require.NotNil(t, got.Summary)
	assert.Equal(t, "Release Checklist", got.Summary.Title)
	assert.NotNil(t, got.ProcessedAt)
}

func TestSummarizeMissingMeetingID(t *testing.T) {
	svc := newTestService(t)
	r := newSummarizeRouter(svc, &fakeSummarizer{})

	w := doJSON(t, r, http.MethodPost, "/api/v1/summarize", gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSummarizeUnknownMeeting(t *testing.T) {
	svc := newTestService(t)
	r := newSummarizeRouter(svc, &fakeSummarizer{})

	w := doJSON(t, r, http.MethodPost, "/api/v1/summarize", gin.H{"meetingId": "nope"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSummarizeTranscriptTooShort(t *testing.T) {
	svc := newTestService(t)
	fs := &fakeSummarizer{}
	r := newSummarizeRouter(svc, fs)

	m, err := svc.Create("https://meet.example/abc", "Scribe Bot")
	require.NoError(t, err)
	added, err := svc.AppendSentence(m.ID, meetings.TranscriptSentenceEvent{Speaker: "Alice", Text: "Hi.", Timestamp: 1})
	require.NoError(t, err)
	require.True(t, added)

	w := doJSON(t, r, http.MethodPost, "/api/v1/summarize", gin.H{"meetingId": m.ID})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 0, fs.calls)

	got, err := svc.Get(m.ID)
	require.NoError(t, err)
	assert.Equal(t, meetings.StatusError, got.Status)
	assert.Equal(t, "Transcript too short to summarize.", got.Error)
}

func TestSummarizeAlreadySummarized(t *testing.T) {
	svc := newTestService(t)
	fs := &fakeSummarizer{}
	r := newSummarizeRouter(svc, fs)
	m := seedTranscribedMeeting(t, svc)

	require.NoError(t, svc.BeginSummarizing(m.ID))
	require.NoError(t, svc.CompleteSummary(m.ID, &meetings.Summary{Title: "Done", Sentiment: "neutral"}))

	w := doJSON(t, r, http.MethodPost, "/api/v1/summarize", gin.H{"meetingId": m.ID})
	require.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, 0, fs.calls)
}

func TestSummarizeLLMFailure(t *testing.T) {
	svc := newTestService(t)
	fs := &fakeSummarizer{err: errScripted}
	r := newSummarizeRouter(svc, fs)
	m := seedTranscribedMeeting(t, svc)

	w := doJSON(t, r, http.MethodPost, "/api/v1/summarize", gin.H{"meetingId": m.ID})
	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "Failed to generate summary")

	got, err := svc.Get(m.ID)
	require.NoError(t, err)
	assert.Equal(t, meetings.StatusError, got.Status)
	assert.Contains(t, got.Error, "summarization failed")

	// A later retry over the same record still works.
	fs.err = nil
	w = doJSON(t, r, http.MethodPost, "/api/v1/summarize", gin.H{"meetingId": m.ID})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	got, err = svc.Get(m.ID)
	require.NoError(t, err)
	assert.Equal(t, meetings.StatusCompleted, got.Status)
}
