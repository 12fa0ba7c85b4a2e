package calendar

import (
	"iter"
	"slices"
)

// EventSet is an insertion-ordered collection of events keyed by id. Adding an
// event whose id is already present replaces it in place.
type EventSet struct {
	events []*Event
	index  map[string]int
}

func NewEventSet() *EventSet {
	return &EventSet{index: make(map[string]int)}
}

// Add inserts e, or replaces the event with the same id. Events without an id
// are always appended.
func (s *EventSet) Add(e *Event) {
	if id := e.ID(); id != "" {
		if i, ok := s.index[id]; ok {
			s.events[i] = e
			return
		}
		s.index[id] = len(s.events)
	}
	s.events = append(s.events, e)
}

// Get returns the event with the given id.
func (s *EventSet) Get(id string) (*Event, bool) {
	i, ok := s.index[id]
	if !ok {
		return nil, false
	}
	return s.events[i], true
}

func (s *EventSet) Contains(id string) bool {
	_, ok := s.index[id]
	return ok
}

func (s *EventSet) Len() int {
	return len(s.events)
}

// All iterates in insertion order.
func (s *EventSet) All() iter.Seq[*Event] {
	return slices.Values(s.events)
}

// Slice returns the events in insertion order.
func (s *EventSet) Slice() []*Event {
	return slices.Clone(s.events)
}

// IDs returns the ids in insertion order, skipping events without one.
func (s *EventSet) IDs() []string {
	ids := make([]string, 0, len(s.index))
	for _, e := range s.events {
		if e.ID() != "" {
			ids = append(ids, e.ID())
		}
	}
	return ids
}
