// Package audit records every webhook delivery to a rotating JSONL
// file so provider behavior can be reconstructed after the fact.
package audit

import (
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Entry is one audited webhook delivery.
type Entry struct {
	Timestamp string `json:"timestamp"`
	MeetingID string `json:"meeting_id"`
	EventType string `json:"event_type"`
	Outcome   string `json:"outcome"` // applied, ignored, rejected, error
	Detail    string `json:"detail,omitempty"`
}

// Logger appends webhook audit entries to a rotating file.
type Logger struct {
	logger *log.Logger
}

// NewLogger creates an audit logger writing to logPath with size and
// age based rotation.
func NewLogger(logPath string) (*Logger, error) {
	if dir := filepath.Dir(logPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}

	writer := &lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    100, // MB
		MaxBackups: 10,
		MaxAge:     30, // days
		Compress:   true,
	}

	// No prefix or flags; each line is a self-contained JSON record.
	return &Logger{logger: log.New(writer, "", 0)}, nil
}

// LogWebhook records one delivery. Audit failures are swallowed; the
// audit trail must never fail a webhook.
func (a *Logger) LogWebhook(meetingID, eventType, outcome, detail string) {
	entry := Entry{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		MeetingID: meetingID,
		EventType: eventType,
		Outcome:   outcome,
		Detail:    detail,
	}

	b, err := json.Marshal(entry)
	if err != nil {
		return
	}
	a.logger.Println(string(b))
}
