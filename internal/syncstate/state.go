// Package syncstate persists the sync tokens of incremental event listings.
package syncstate

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/teemow/calendart/internal/config"
)

// Entry is the cursor of one calendar.
type Entry struct {
	SyncToken string    `yaml:"sync_token"`
	UpdatedAt time.Time `yaml:"updated_at"`
	// Events is the number of events returned by the last listing.
	Events int `yaml:"events"`
}

type document struct {
	Calendars map[string]Entry `yaml:"calendars"`
}

// Store is a YAML file of per-calendar entries. It is safe for concurrent use
// within one process.
type Store struct {
	path string

	mu        sync.Mutex
	calendars map[string]Entry
}

// Open reads the store at path. A missing file yields an empty store.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, errors.New("state path is empty")
	}

	s := &Store{path: path, calendars: make(map[string]Entry)}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read sync state: %w", err)
	}

	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse sync state %s: %w", path, err)
	}
	for id, e := range doc.Calendars {
		s.calendars[id] = e
	}
	return s, nil
}

func (s *Store) Path() string {
	return s.path
}

// Get returns the entry of a calendar.
func (s *Store) Get(calendarID string) (Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.calendars[calendarID]
	return e, ok
}

// SyncToken returns the stored token of a calendar, or "".
func (s *Store) SyncToken(calendarID string) string {
	e, _ := s.Get(calendarID)
	return e.SyncToken
}

// Put records the entry of a calendar and saves the store.
func (s *Store) Put(calendarID string, e Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calendars[calendarID] = e
	return s.save()
}

// Reset forgets the token of a calendar, forcing a full listing next time.
func (s *Store) Reset(calendarID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.calendars[calendarID]; !ok {
		return nil
	}
	delete(s.calendars, calendarID)
	return s.save()
}

func (s *Store) save() error {
	data, err := yaml.Marshal(document{Calendars: s.calendars})
	if err != nil {
		return fmt.Errorf("failed to encode sync state: %w", err)
	}
	if err := config.WriteFileAtomic(s.path, data); err != nil {
		return fmt.Errorf("failed to write sync state: %w", err)
	}
	return nil
}
