package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/meetscribe/meetscribe/cmd/server/internal/audit"
	"github.com/meetscribe/meetscribe/cmd/server/internal/domain/meetings"
	"github.com/meetscribe/meetscribe/cmd/server/internal/summarize"
	"github.com/meetscribe/meetscribe/pkg/logger"
	"github.com/meetscribe/meetscribe/pkg/metrics"
)

// HandleBotWebhook POST /api/v1/webhook?id=<meetingId>
// Receives asynchronous events pushed by the bot provider.
//
// Response contract: structural failures (missing or unknown meeting
// id, malformed payloads) get a 4xx so the provider can alert an
// operator. Failures that are already recorded on the meeting record,
// like a meeting error or a missing canonical transcript, are
// acknowledged with 200 to stop the provider from retry-storming a
// document that already reflects them.
func HandleBotWebhook(svc *meetings.Service, worker *summarize.Worker, auditLog *audit.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		meetingID := c.Query("id")
		if meetingID == "" {
			metrics.RecordWebhookEvent("unknown", "rejected")
			auditLog.LogWebhook("", "unknown", "rejected", "missing meeting id")
			errorResponse(c, http.StatusBadRequest, "Meeting ID is required")
			return
		}

		body, err := c.GetRawData()
		if err != nil {
			metrics.RecordWebhookEvent("unknown", "rejected")
			auditLog.LogWebhook(meetingID, "unknown", "rejected", "unreadable body")
			errorResponse(c, http.StatusBadRequest, "unreadable request body")
			return
		}

		event, err := meetings.DecodeEvent(body)
		if err != nil {
			metrics.RecordWebhookEvent("unknown", "rejected")
			auditLog.LogWebhook(meetingID, "unknown", "rejected", err.Error())
			errorResponse(c, http.StatusBadRequest, err.Error())
			return
		}
		eventType := event.EventType()

		// The embedded id is the only binding between event and
		// record; an unknown id must be rejected, never dropped.
		if _, err := svc.Get(meetingID); err != nil {
			if errors.Is(err, meetings.ErrNotFound) {
				metrics.RecordWebhookEvent(eventType, "rejected")
				auditLog.LogWebhook(meetingID, eventType, "rejected", "unknown meeting id")
				errorResponse(c, http.StatusNotFound, "Meeting not found")
				return
			}
			metrics.RecordWebhookEvent(eventType, "error")
			auditLog.LogWebhook(meetingID, eventType, "error", err.Error())
			errorResponse(c, http.StatusInternalServerError, err.Error())
			return
		}

		outcome, detail, status := applyEvent(svc, worker, meetingID, event)

		metrics.RecordWebhookEvent(eventType, outcome)
		auditLog.LogWebhook(meetingID, eventType, outcome, detail)
		logger.LogWebhookEvent(logger.L(), meetingID, eventType, outcome, time.Since(start).Milliseconds(), detail)

		if status >= 400 {
			errorResponse(c, status, detail)
			return
		}
		successResponse(c, gin.H{"received": true})
	}
}

// applyEvent mutates the record for one decoded event and reports the
// outcome, a detail message, and the HTTP status to answer with.
func applyEvent(svc *meetings.Service, worker *summarize.Worker, meetingID string, event meetings.Event) (outcome, detail string, status int) {
	switch ev := event.(type) {
	case meetings.TranscriptPartialEvent:
		// Word-level partials would flood storage with sub-sentence
		// fragments.
		return "ignored", "", http.StatusOK

	case meetings.TranscriptSentenceEvent:
		added, err := svc.AppendSentence(meetingID, ev)
		if err != nil {
			return "error", err.Error(), http.StatusInternalServerError
		}
		if !added {
			return "ignored", "duplicate sentence", http.StatusOK
		}
		return "applied", "", http.StatusOK

	case meetings.MeetingEndedEvent:
		if ev.TranscriptText == "" {
			msg := "Meeting ended but no transcript text was provided."
			if err := svc.MarkError(meetingID, msg); err != nil {
				return "error", err.Error(), http.StatusInternalServerError
			}
			// Recorded on the document; acknowledge so the provider
			// does not retry.
			return "error", msg, http.StatusOK
		}

		if err := svc.BeginSummarizing(meetingID); err != nil {
			if errors.Is(err, meetings.ErrStatusConflict) {
				return "ignored", "record already summarized", http.StatusOK
			}
			return "error", err.Error(), http.StatusInternalServerError
		}

		worker.Enqueue(meetingID, ev.TranscriptText)
		return "applied", "", http.StatusOK

	case meetings.MeetingErrorEvent:
		if err := svc.MarkError(meetingID, ev.Message); err != nil {
			return "error", err.Error(), http.StatusInternalServerError
		}
		return "applied", "", http.StatusOK

	default:
		// Unknown provider events must never fault the handler.
		return "ignored", "", http.StatusOK
	}
}
