package meetings

import (
	"encoding/json"
	"fmt"
)

// Provider event types. Anything else decodes to UnknownEvent so new
// provider events never fault the webhook handler.
const (
	EventTypeTranscriptSentence = "transcript.sentence"
	EventTypeTranscriptPartial  = "transcript.partial_sentence"
	EventTypeMeetingEnded       = "meeting.ended"
	EventTypeMeetingError       = "meeting.error"
)

// Event is a closed set of provider webhook events, decoded once at
// the HTTP boundary with per-variant field checks.
type Event interface {
	EventType() string
}

// TranscriptSentenceEvent carries one sentence-level fragment.
type TranscriptSentenceEvent struct {
	Speaker   string
	Text      string
	Timestamp float64
}

func (TranscriptSentenceEvent) EventType() string { return EventTypeTranscriptSentence }

// TranscriptPartialEvent is a word-level partial; it is acknowledged
// but never stored.
type TranscriptPartialEvent struct{}

func (TranscriptPartialEvent) EventType() string { return EventTypeTranscriptPartial }

// MeetingEndedEvent signals the call is over. TranscriptText is the
// provider's canonical transcript and may be empty.
type MeetingEndedEvent struct {
	TranscriptText string
}

func (MeetingEndedEvent) EventType() string { return EventTypeMeetingEnded }

// MeetingErrorEvent carries a provider-side failure.
type MeetingErrorEvent struct {
	Message string
}

func (MeetingErrorEvent) EventType() string { return EventTypeMeetingError }

// UnknownEvent is any event type this service does not handle.
type UnknownEvent struct {
	RawType string
}

func (e UnknownEvent) EventType() string { return e.RawType }

type eventEnvelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type sentencePayload struct {
	SpeakerID      string  `json:"speaker_id"`
	Text           string  `json:"text"`
	StartTimestamp float64 `json:"start_timestamp"`
}

type endedPayload struct {
	TranscriptText string `json:"transcript_text"`
}

type errorPayload struct {
	ErrorMessage string `json:"error_message"`
}

// DecodeEvent parses a webhook body into its event variant. A body
// that is not a {type, data} envelope, or a known variant missing a
// required field, is a decode error the caller must reject with 4xx.
func DecodeEvent(body []byte) (Event, error) {
	var env eventEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("malformed event payload: %w", err)
	}
	if env.Type == "" {
		return nil, fmt.Errorf("malformed event payload: missing type")
	}

	switch env.Type {
	case EventTypeTranscriptSentence:
		var p sentencePayload
		if err := json.Unmarshal(env.Data, &p); err != nil {
			return nil, fmt.Errorf("malformed %s payload: %w", env.Type, err)
		}
		if p.Text == "" {
			return nil, fmt.Errorf("malformed %s payload: missing text", env.Type)
		}
		speaker := p.SpeakerID
		if speaker == "" {
			speaker = UnknownSpeaker
		}
		return TranscriptSentenceEvent{Speaker: speaker, Text: p.Text, Timestamp: p.StartTimestamp}, nil

	case EventTypeTranscriptPartial:
		return TranscriptPartialEvent{}, nil

	case EventTypeMeetingEnded:
		var p endedPayload
		if len(env.Data) > 0 {
			if err := json.Unmarshal(env.Data, &p); err != nil {
				return nil, fmt.Errorf("malformed %s payload: %w", env.Type, err)
			}
		}
		return MeetingEndedEvent{TranscriptText: p.TranscriptText}, nil

	case EventTypeMeetingError:
		var p errorPayload
		if len(env.Data) > 0 {
			if err := json.Unmarshal(env.Data, &p); err != nil {
				return nil, fmt.Errorf("malformed %s payload: %w", env.Type, err)
			}
		}
		if p.ErrorMessage == "" {
			p.ErrorMessage = "unknown provider error"
		}
		return MeetingErrorEvent{Message: p.ErrorMessage}, nil

	default:
		return UnknownEvent{RawType: env.Type}, nil
	}
}
