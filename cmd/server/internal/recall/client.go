// Package recall wraps the meeting-bot provider API: creating a bot
// that joins a call and deleting it to make it leave.
package recall

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/meetscribe/meetscribe/pkg/metrics"
)

// UpstreamError is a non-success response from the bot provider. The
// status code mirrors the provider's and Detail carries its message.
type UpstreamError struct {
	Operation  string
	StatusCode int
	Detail     string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("bot provider %s failed (%d): %s", e.Operation, e.StatusCode, e.Detail)
}

// Dispatcher is the bot provider surface the handlers depend on.
type Dispatcher interface {
	CreateBot(ctx context.Context, req CreateBotRequest) (string, error)
	DeleteBot(ctx context.Context, botID string) error
}

// CreateBotRequest describes the bot to dispatch.
type CreateBotRequest struct {
	MeetingURL string
	BotName    string
	WebhookURL string
}

// Client talks to the provider over HTTP with bearer-style token auth.
type Client struct {
	apiURL     string
	apiKey     string
	httpClient *http.Client
}

// NewClient builds a provider client. timeout bounds every call so a
// hung provider cannot hang a handler.
func NewClient(apiURL, apiKey string, timeout time.Duration) *Client {
	return &Client{
		apiURL:     apiURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// createBotPayload is the provider's bot creation body. Streaming
// transcription is always requested; sentence events arrive on the
// webhook URL.
type createBotPayload struct {
	MeetingURL      string          `json:"meeting_url"`
	BotName         string          `json:"bot_name,omitempty"`
	EventWebhookURL string          `json:"event_webhook_url"`
	RecordingConfig recordingConfig `json:"recording_config"`
}

type recordingConfig struct {
	Transcript transcriptConfig `json:"transcript"`
}

type transcriptConfig struct {
	Provider providerConfig `json:"provider"`
}

type providerConfig struct {
	RecallAIStreaming streamingConfig `json:"recallai_streaming"`
}

type streamingConfig struct {
	Mode         string `json:"mode"`
	LanguageCode string `json:"language_code"`
}

type createBotResponse struct {
	ID string `json:"id"`
}

type errorResponse struct {
	Detail string `json:"detail"`
}

// CreateBot asks the provider to join a meeting and returns the bot
// handle it assigns.
func (c *Client) CreateBot(ctx context.Context, req CreateBotRequest) (string, error) {
	payload := createBotPayload{
		MeetingURL:      req.MeetingURL,
		BotName:         req.BotName,
		EventWebhookURL: req.WebhookURL,
		RecordingConfig: recordingConfig{
			Transcript: transcriptConfig{
				Provider: providerConfig{
					RecallAIStreaming: streamingConfig{
						Mode:         "prioritize_low_latency",
						LanguageCode: "en",
					},
				},
			},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal create bot payload: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build create bot request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Token "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		metrics.RecordBotDispatch("create", "failed")
		return "", fmt.Errorf("create bot request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		metrics.RecordBotDispatch("create", "failed")
		return "", &UpstreamError{
			Operation:  "create",
			StatusCode: resp.StatusCode,
			Detail:     readDetail(resp.Body, "Failed to send bot to meeting."),
		}
	}

	var created createBotResponse
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		metrics.RecordBotDispatch("create", "failed")
		return "", fmt.Errorf("decode create bot response: %w", err)
	}
	if created.ID == "" {
		metrics.RecordBotDispatch("create", "failed")
		return "", fmt.Errorf("create bot response missing id")
	}

	metrics.RecordBotDispatch("create", "success")
	return created.ID, nil
}

// DeleteBot tells the provider to make the bot leave its call.
func (c *Client) DeleteBot(ctx context.Context, botID string) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.apiURL+"/"+botID, nil)
	if err != nil {
		return fmt.Errorf("build delete bot request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Token "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		metrics.RecordBotDispatch("delete", "failed")
		return fmt.Errorf("delete bot request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		metrics.RecordBotDispatch("delete", "failed")
		return &UpstreamError{
			Operation:  "delete",
			StatusCode: resp.StatusCode,
			Detail:     readDetail(resp.Body, "Failed to make the bot leave the meeting."),
		}
	}

	metrics.RecordBotDispatch("delete", "success")
	return nil
}

// readDetail extracts the provider's detail message, falling back to
// a generic one when the body is not the expected shape.
func readDetail(r io.Reader, fallback string) string {
	b, err := io.ReadAll(io.LimitReader(r, 64<<10))
	if err != nil {
		return fallback
	}
	var e errorResponse
	if err := json.Unmarshal(b, &e); err != nil || e.Detail == "" {
		return fallback
	}
	return e.Detail
}
