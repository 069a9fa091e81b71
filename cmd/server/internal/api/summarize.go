package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/meetscribe/meetscribe/cmd/server/internal/domain/meetings"
	"github.com/meetscribe/meetscribe/cmd/server/internal/summarize"
	"github.com/meetscribe/meetscribe/pkg/logger"
)

type summarizeRequest struct {
	MeetingID string `json:"meetingId"`
}

// HandleSummarize POST /api/v1/summarize
// Synchronous on-demand summarization over the stored transcript
// entries, for records the end-of-meeting path missed or that need a
// manual re-run.
func HandleSummarize(svc *meetings.Service, summarizer summarize.Summarizer, minChars int) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req summarizeRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.MeetingID == "" {
			errorResponse(c, http.StatusBadRequest, "Meeting ID is required")
			return
		}

		transcript, err := svc.RenderTranscript(req.MeetingID, minChars)
		if err != nil {
			switch {
			case errors.Is(err, meetings.ErrNotFound):
				errorResponse(c, http.StatusNotFound, "Meeting not found")
			case errors.Is(err, meetings.ErrTranscriptTooShort):
				msg := "Transcript too short to summarize."
				if markErr := svc.MarkError(req.MeetingID, msg); markErr != nil {
					logger.L().Warn("failed to record short-transcript error",
						"meeting_id", req.MeetingID, "error", markErr)
				}
				errorResponse(c, http.StatusBadRequest, msg)
			default:
				errorResponse(c, http.StatusInternalServerError, err.Error())
			}
			return
		}

		if err := svc.BeginSummarizing(req.MeetingID); err != nil {
			if errors.Is(err, meetings.ErrStatusConflict) {
				errorResponse(c, http.StatusConflict, "Meeting already has a summary")
				return
			}
			errorResponse(c, http.StatusInternalServerError, err.Error())
			return
		}

		summary, err := summarizer.Summarize(c.Request.Context(), transcript)
		if err != nil {
			logger.L().Error("on-demand summarization failed",
				"meeting_id", req.MeetingID, "error", err)
			if markErr := svc.MarkError(req.MeetingID, "summarization failed: "+err.Error()); markErr != nil {
				logger.L().Warn("failed to record summarization error",
					"meeting_id", req.MeetingID, "error", markErr)
			}
			errorResponse(c, http.StatusInternalServerError, "Failed to generate summary")
			return
		}

		if err := svc.CompleteSummary(req.MeetingID, summary); err != nil {
			// A concurrent end-of-meeting run finished first; its
			// summary stands.
			if errors.Is(err, meetings.ErrStatusConflict) {
				m, getErr := svc.Get(req.MeetingID)
				if getErr == nil && m.Summary != nil {
					successResponse(c, gin.H{"success": true, "summary": m.Summary})
					return
				}
			}
			errorResponse(c, http.StatusInternalServerError, err.Error())
			return
		}

		successResponse(c, gin.H{"success": true, "summary": summary})
	}
}
