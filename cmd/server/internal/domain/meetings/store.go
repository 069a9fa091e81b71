package meetings

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Store keeps meeting records in memory and mirrors each one to a
// JSON document on disk. One file per meeting; writes go through a
// tmp file and rename so a crash never leaves a torn document.
type Store struct {
	mu  sync.Mutex
	m   map[string]*Meeting
	dir string // empty means memory-only (tests)
}

// NewStore creates a store rooted at dir and loads any persisted
// records. An empty dir keeps everything in memory.
func NewStore(dir string) (*Store, error) {
	s := &Store{m: map[string]*Meeting{}, dir: dir}
	if dir == "" {
		return s, nil
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create meetings dir: %w", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read meetings dir: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		b, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("read meeting file %s: %w", e.Name(), err)
		}
		var m Meeting
		if err := json.Unmarshal(b, &m); err != nil {
			return nil, fmt.Errorf("unmarshal meeting file %s: %w", e.Name(), err)
		}
		if m.ID == "" {
			continue
		}
		s.m[m.ID] = &m
	}
	return s, nil
}

// Create inserts a new record in the JOINING state and returns a copy.
func (s *Store) Create(meetingURL, botName string) (*Meeting, error) {
	m := &Meeting{
		ID:         uuid.NewString(),
		MeetingURL: meetingURL,
		BotName:    botName,
		Status:     StatusJoining,
		Transcript: []TranscriptEntry{},
		CreatedAt:  time.Now().UTC(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[m.ID] = m
	if err := s.persistLocked(m); err != nil {
		delete(s.m, m.ID)
		return nil, err
	}
	return m.Clone(), nil
}

// Get returns a copy of the record, or ErrNotFound.
func (s *Store) Get(id string) (*Meeting, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.m[id]
	if !ok {
		return nil, ErrNotFound
	}
	return m.Clone(), nil
}

// List returns copies of all records, newest first.
func (s *Store) List() []*Meeting {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := make([]*Meeting, 0, len(s.m))
	for _, m := range s.m {
		list = append(list, m.Clone())
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})
	return list
}

// Update applies fn to a copy of the stored record under the store
// lock, persists it, and swaps it in. An error from fn or the disk
// write leaves the stored record untouched.
func (s *Store) Update(id string, fn func(*Meeting) error) (*Meeting, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.m[id]
	if !ok {
		return nil, ErrNotFound
	}
	next := m.Clone()
	if err := fn(next); err != nil {
		return nil, err
	}
	if err := s.persistLocked(next); err != nil {
		return nil, err
	}
	s.m[id] = next
	return next.Clone(), nil
}

// persistLocked writes one record to disk. Callers hold s.mu.
func (s *Store) persistLocked(m *Meeting) error {
	if s.dir == "" {
		return nil
	}

	b, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal meeting: %w", err)
	}

	path := filepath.Join(s.dir, m.ID+".json")
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return fmt.Errorf("write tmp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("rename tmp file: %w", err)
	}
	return nil
}
