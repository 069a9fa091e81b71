package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/meetscribe/meetscribe/cmd/server/internal/domain/meetings"
	"github.com/meetscribe/meetscribe/cmd/server/internal/recall"
	"github.com/meetscribe/meetscribe/pkg/logger"
)

type joinMeetingRequest struct {
	MeetingURL string `json:"meetingUrl"`
	BotName    string `json:"botName"`
}

// HandleJoinMeeting POST /api/v1/meetings
// Creates a meeting record, dispatches a bot to the call, and stores
// the bot handle the provider assigns.
func HandleJoinMeeting(svc *meetings.Service, dispatcher recall.Dispatcher, publicURL, defaultBotName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req joinMeetingRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			errorResponse(c, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.MeetingURL == "" {
			errorResponse(c, http.StatusBadRequest, "Meeting URL is required")
			return
		}

		botName := req.BotName
		if botName == "" {
			botName = defaultBotName
		}

		m, err := svc.Create(req.MeetingURL, botName)
		if err != nil {
			logger.L().Error("meeting record creation failed", "error", err)
			errorResponse(c, http.StatusInternalServerError, "failed to create meeting record")
			return
		}

		// The embedded id is the only binding between provider events
		// and this record.
		webhookURL := publicURL + "/api/v1/webhook?id=" + m.ID

		botID, err := dispatcher.CreateBot(c.Request.Context(), recall.CreateBotRequest{
			MeetingURL: req.MeetingURL,
			BotName:    botName,
			WebhookURL: webhookURL,
		})
		if err != nil {
			status, detail := upstreamDetail(err)
			logger.L().Error("bot dispatch failed", "meeting_id", m.ID, "error", err)
			if markErr := svc.MarkError(m.ID, detail); markErr != nil {
				logger.L().Error("failed to mark record error", "meeting_id", m.ID, "error", markErr)
			}
			errorResponse(c, status, detail)
			return
		}

		if err := svc.SetBotHandle(m.ID, botID); err != nil {
			logger.L().Error("failed to store bot handle", "meeting_id", m.ID, "bot_id", botID, "error", err)
			errorResponse(c, http.StatusInternalServerError, "failed to store bot handle")
			return
		}

		logger.L().Info("bot dispatched", "meeting_id", m.ID, "bot_id", botID)
		successResponse(c, gin.H{"id": m.ID})
	}
}

type leaveMeetingResponse struct {
	Success bool   `json:"success"`
	BotID   string `json:"botId"`
}

// HandleLeaveMeeting POST /api/v1/meetings/:id/leave
// Tells the provider to remove the bot from the call.
func HandleLeaveMeeting(svc *meetings.Service, dispatcher recall.Dispatcher) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")

		m, err := svc.Get(id)
		if err != nil {
			if errors.Is(err, meetings.ErrNotFound) {
				errorResponse(c, http.StatusNotFound, "Meeting not found")
				return
			}
			errorResponse(c, http.StatusInternalServerError, err.Error())
			return
		}

		if m.BotHandle == "" {
			errorResponse(c, http.StatusConflict, "Bot ID not found for this meeting.")
			return
		}

		if err := dispatcher.DeleteBot(c.Request.Context(), m.BotHandle); err != nil {
			status, detail := upstreamDetail(err)
			logger.L().Error("bot removal failed", "meeting_id", id, "bot_id", m.BotHandle, "error", err)
			errorResponse(c, status, detail)
			return
		}

		// Optimistic; the meeting-ended webhook supersedes this.
		if err := svc.ForceCompleted(id); err != nil {
			logger.L().Warn("failed to mark record completed after leave", "meeting_id", id, "error", err)
		}

		logger.L().Info("bot told to leave", "meeting_id", id, "bot_id", m.BotHandle)
		successResponse(c, leaveMeetingResponse{Success: true, BotID: m.BotHandle})
	}
}

// HandleGetMeeting GET /api/v1/meetings/:id
func HandleGetMeeting(svc *meetings.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		m, err := svc.Get(c.Param("id"))
		if err != nil {
			if errors.Is(err, meetings.ErrNotFound) {
				errorResponse(c, http.StatusNotFound, "Meeting not found")
				return
			}
			errorResponse(c, http.StatusInternalServerError, err.Error())
			return
		}
		successResponse(c, m)
	}
}

type meetingListItem struct {
	ID             string          `json:"id"`
	MeetingURL     string          `json:"meeting_url"`
	Status         meetings.Status `json:"status"`
	CreatedAt      string          `json:"created_at"`
	TranscriptSize int             `json:"transcript_size"`
	HasSummary     bool            `json:"has_summary"`
}

// HandleListMeetings GET /api/v1/meetings
func HandleListMeetings(svc *meetings.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		records := svc.List()
		items := make([]meetingListItem, 0, len(records))
		for _, m := range records {
			items = append(items, meetingListItem{
				ID:             m.ID,
				MeetingURL:     m.MeetingURL,
				Status:         m.Status,
				CreatedAt:      m.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
				TranscriptSize: len(m.Transcript),
				HasSummary:     m.Summary != nil,
			})
		}
		successResponse(c, gin.H{"meetings": items})
	}
}
