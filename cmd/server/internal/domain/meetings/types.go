// Package meetings holds the meeting record model, its lifecycle
// state machine, and the persistent record store.
package meetings

import "time"

// Status is the lifecycle state of a meeting record.
type Status string

const (
	StatusJoining      Status = "JOINING"
	StatusTranscribing Status = "TRANSCRIBING"
	StatusSummarizing  Status = "SUMMARIZING"
	StatusCompleted    Status = "COMPLETED"
	StatusError        Status = "ERROR"
)

// UnknownSpeaker is recorded when the provider omits the speaker label.
const UnknownSpeaker = "Unknown"

// TranscriptEntry is one sentence-level transcript fragment. Entries
// are append-only; insertion order reflects arrival order from the
// provider, which may differ from utterance order.
type TranscriptEntry struct {
	Speaker   string  `json:"speaker"`
	Text      string  `json:"text"`
	Timestamp float64 `json:"timestamp"`
}

// ParticipantInsight is the per-speaker slice of a summary.
type ParticipantInsight struct {
	Speaker      string `json:"speaker"`
	Contribution string `json:"contribution"`
}

// Summary is the structured output of the LLM summarization call.
// The field set is the single source of truth for the response schema
// the LLM is asked to produce (see the summarize package).
type Summary struct {
	Title         string               `json:"title"`
	SummaryPoints []string             `json:"summary_points"`
	ActionItems   []string             `json:"action_items"`
	Sentiment     string               `json:"sentiment"`
	Participants  []ParticipantInsight `json:"participants,omitempty"`
}

// Meeting is the persisted record for one bot session.
type Meeting struct {
	ID          string            `json:"id"`
	MeetingURL  string            `json:"meeting_url"`
	BotName     string            `json:"bot_name,omitempty"`
	BotHandle   string            `json:"bot_handle,omitempty"`
	Status      Status            `json:"status"`
	Transcript  []TranscriptEntry `json:"transcript"`
	Summary     *Summary          `json:"summary,omitempty"`
	Error       string            `json:"error,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	ProcessedAt *time.Time        `json:"processed_at,omitempty"`
}

// Clone returns a deep copy so callers can read a record without
// holding store locks.
func (m *Meeting) Clone() *Meeting {
	if m == nil {
		return nil
	}
	cp := *m
	cp.Transcript = make([]TranscriptEntry, len(m.Transcript))
	copy(cp.Transcript, m.Transcript)
	if m.Summary != nil {
		s := *m.Summary
		s.SummaryPoints = append([]string(nil), m.Summary.SummaryPoints...)
		s.ActionItems = append([]string(nil), m.Summary.ActionItems...)
		s.Participants = append([]ParticipantInsight(nil), m.Summary.Participants...)
		cp.Summary = &s
	}
	if m.ProcessedAt != nil {
		ts := *m.ProcessedAt
		cp.ProcessedAt = &ts
	}
	return &cp
}
