package calendar

import (
	"maps"
	"slices"
)

// PartialEvent is an event used to patch a remote event. Only the fields set
// after its creation are exported.
type PartialEvent struct {
	*Event
}

// NewPartialEvent returns a partial event for the event id of cal. The remote
// event does not need to be fetched first.
func NewPartialEvent(cal *Calendar, id string) *PartialEvent {
	return &PartialEvent{Event: &Event{id: id, calendar: cal, changes: fieldSet{}}}
}

// Export returns the changed fields only. Boundaries marked by SetAllDay or
// SetTimeZone but never set are left out, since a null start or end would
// clear the remote value.
func (p *PartialEvent) Export() map[string]any {
	all := p.exportAll()

	out := make(map[string]any, len(p.changes))
	for field := range p.changes {
		if v, ok := all[field]; ok && v != nil {
			out[field] = v
		}
	}
	return out
}

// Changed returns the sorted wire names of the modified fields.
func (p *PartialEvent) Changed() []string {
	return slices.Sorted(maps.Keys(p.changes))
}
