package meetings

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// Service owns all lifecycle mutations of meeting records. Mutations
// for one meeting id are serialized through a keyed mutex so a slow
// webhook delivery can never overwrite a fresher status, and the
// status machine below refuses regressions outright.
//
// Allowed transitions:
//
//	JOINING      -> TRANSCRIBING, SUMMARIZING, COMPLETED (leave), ERROR
//	TRANSCRIBING -> TRANSCRIBING, SUMMARIZING, COMPLETED (leave), ERROR
//	SUMMARIZING  -> COMPLETED (with summary), ERROR
//	COMPLETED    -> SUMMARIZING (only while no summary exists; the
//	                leave path sets COMPLETED optimistically and the
//	                meeting-ended webhook supersedes it)
//	ERROR        -> SUMMARIZING (manual re-trigger), ERROR
//
// A record whose summary is set is terminal: its status never moves
// again, though later provider errors are still recorded in the error
// field for observability.
type Service struct {
	store *Store
	locks sync.Map // meeting id -> *sync.Mutex
}

// NewService wraps a store with lifecycle rules.
func NewService(store *Store) *Service {
	return &Service{store: store}
}

// lock serializes mutations per meeting id and returns the unlock.
func (s *Service) lock(id string) func() {
	v, _ := s.locks.LoadOrStore(id, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// Create makes a fresh record in the JOINING state.
func (s *Service) Create(meetingURL, botName string) (*Meeting, error) {
	return s.store.Create(meetingURL, botName)
}

// Get returns a copy of a record.
func (s *Service) Get(id string) (*Meeting, error) {
	return s.store.Get(id)
}

// List returns copies of all records, newest first.
func (s *Service) List() []*Meeting {
	return s.store.List()
}

// SetBotHandle records the provider's bot id. The handle is written
// once; a second write with a different handle is a conflict.
func (s *Service) SetBotHandle(id, handle string) error {
	defer s.lock(id)()
	_, err := s.store.Update(id, func(m *Meeting) error {
		if m.BotHandle != "" && m.BotHandle != handle {
			return fmt.Errorf("%w: bot handle already set", ErrStatusConflict)
		}
		m.BotHandle = handle
		return nil
	})
	return err
}

// AppendSentence appends one transcript entry unless it repeats a
// recent delivery, and moves JOINING records to TRANSCRIBING. The
// status of records already past transcription is left untouched; the
// transcript itself is append-only and always accepts new content.
func (s *Service) AppendSentence(id string, ev TranscriptSentenceEvent) (added bool, err error) {
	defer s.lock(id)()
	_, err = s.store.Update(id, func(m *Meeting) error {
		entry := TranscriptEntry{Speaker: ev.Speaker, Text: ev.Text, Timestamp: ev.Timestamp}
		if isDuplicateEntry(m.Transcript, entry) {
			return nil
		}
		m.Transcript = append(m.Transcript, entry)
		added = true
		if m.Status == StatusJoining || m.Status == StatusTranscribing {
			m.Status = StatusTranscribing
		}
		return nil
	})
	return added, err
}

// BeginSummarizing moves a record into SUMMARIZING. Records with a
// summary already set are terminal and refuse the transition.
func (s *Service) BeginSummarizing(id string) error {
	defer s.lock(id)()
	_, err := s.store.Update(id, func(m *Meeting) error {
		if m.Summary != nil {
			return fmt.Errorf("%w: summary already set", ErrStatusConflict)
		}
		m.Status = StatusSummarizing
		return nil
	})
	return err
}

// CompleteSummary stores the summary exactly once and finishes the
// record. Only a SUMMARIZING record can complete.
func (s *Service) CompleteSummary(id string, summary *Summary) error {
	defer s.lock(id)()
	_, err := s.store.Update(id, func(m *Meeting) error {
		if m.Summary != nil {
			return fmt.Errorf("%w: summary already set", ErrStatusConflict)
		}
		if m.Status != StatusSummarizing {
			return fmt.Errorf("%w: cannot complete from %s", ErrStatusConflict, m.Status)
		}
		now := time.Now().UTC()
		m.Summary = summary
		m.Status = StatusCompleted
		m.Error = ""
		m.ProcessedAt = &now
		return nil
	})
	return err
}

// ForceCompleted is the optimistic write of the leave path. It only
// advances JOINING/TRANSCRIBING records; anything further along
// already knows better than the caller.
func (s *Service) ForceCompleted(id string) error {
	defer s.lock(id)()
	_, err := s.store.Update(id, func(m *Meeting) error {
		if m.Status == StatusJoining || m.Status == StatusTranscribing {
			m.Status = StatusCompleted
		}
		return nil
	})
	return err
}

// MarkError records a failure. The error text is overwritten on
// repeat deliveries; a record with a summary keeps COMPLETED status
// but still gets the text for observability.
func (s *Service) MarkError(id, message string) error {
	defer s.lock(id)()
	_, err := s.store.Update(id, func(m *Meeting) error {
		m.Error = message
		if m.Summary == nil {
			m.Status = StatusError
		}
		return nil
	})
	return err
}

// RenderTranscript rebuilds prompt text from the stored entries as
// "[speaker at HH:MM:SS]: text" lines. Transcripts shorter than
// minChars return ErrTranscriptTooShort.
func (s *Service) RenderTranscript(id string, minChars int) (string, error) {
	m, err := s.store.Get(id)
	if err != nil {
		return "", err
	}

	lines := make([]string, 0, len(m.Transcript))
	for _, e := range m.Transcript {
		lines = append(lines, fmt.Sprintf("[%s at %s]: %s", e.Speaker, formatOffset(e.Timestamp), e.Text))
	}
	text := strings.Join(lines, "\n")
	if len(text) < minChars {
		return "", ErrTranscriptTooShort
	}
	return text, nil
}

// formatOffset renders a second offset as HH:MM:SS.
func formatOffset(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	total := int(seconds)
	return fmt.Sprintf("%02d:%02d:%02d", total/3600, (total%3600)/60, total%60)
}
