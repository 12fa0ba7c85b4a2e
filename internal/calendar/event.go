package calendar

import (
	"errors"
	"fmt"
	"slices"
	"time"

	calendarv3 "google.golang.org/api/calendar/v3"
)

// Status of an event.
type Status string

const (
	StatusConfirmed Status = "confirmed"
	StatusTentative Status = "tentative"
	StatusCancelled Status = "cancelled"
)

// ResponseStatus of an attendee.
type ResponseStatus string

const (
	ResponseNeedsAction ResponseStatus = "needsAction"
	ResponseDeclined    ResponseStatus = "declined"
	ResponseTentative   ResponseStatus = "tentative"
	ResponseAccepted    ResponseStatus = "accepted"
)

// ErrEndMissing is returned when hydrating an event that has no end and does
// not declare its end as unspecified.
var ErrEndMissing = errors.New(`When the "end" property is missing, the "endTimeUnspecified" property must be specified or must be worth true`)

// Person is the creator or organizer of an event.
type Person struct {
	ID          string
	Email       string
	DisplayName string
	Self        bool
}

// Participation is an attendee of an event.
type Participation struct {
	Email       string
	DisplayName string
	Status      ResponseStatus
	Organizer   bool
	Resource    bool
	Optional    bool
	Self        bool
}

// Event is a Google Calendar event attached to exactly one calendar.
//
// Every setter records the wire name of the field it changes; PartialEvent
// uses those records to export only what was modified.
type Event struct {
	id       string
	calendar *Calendar
	etag     string

	name        string
	description string
	location    string
	status      Status
	visibility  string
	stackable   bool

	start          time.Time
	end            time.Time
	allDay         bool
	timeZone       string
	endUnspecified bool

	created time.Time
	updated time.Time

	creator   *Person
	organizer *Person

	participations   []Participation
	recurrence       []string
	recurringEventID string
	htmlLink         string

	changes fieldSet
}

// fieldSet holds wire names of modified fields.
type fieldSet map[string]struct{}

// NewEvent returns an event to be created in cal.
func NewEvent(cal *Calendar) *Event {
	return &Event{calendar: cal, status: StatusConfirmed}
}

func (e *Event) mark(field string) {
	if e.changes != nil {
		e.changes[field] = struct{}{}
	}
}

func (e *Event) ID() string { return e.id }
func (e *Event) Calendar() *Calendar { return e.calendar }
func (e *Event) Etag() string { return e.etag }
func (e *Event) Name() string { return e.name }
func (e *Event) Description() string { return e.description }
func (e *Event) Location() string { return e.location }
func (e *Event) Status() Status { return e.status }
func (e *Event) Visibility() string { return e.visibility }
func (e *Event) Stackable() bool { return e.stackable }
func (e *Event) Start() time.Time { return e.start }
func (e *Event) AllDay() bool { return e.allDay }
func (e *Event) TimeZone() string { return e.timeZone }
func (e *Event) EndTimeUnspecified() bool { return e.endUnspecified }
func (e *Event) Created() time.Time { return e.created }
func (e *Event) Updated() time.Time { return e.updated }
func (e *Event) Creator() *Person { return e.creator }
func (e *Event) Organizer() *Person { return e.organizer }
func (e *Event) Recurrence() []string { return slices.Clone(e.recurrence) }
func (e *Event) RecurringEventID() string { return e.recurringEventID }
func (e *Event) HTMLLink() string { return e.htmlLink }
func (e *Event) Participations() []Participation { return slices.Clone(e.participations) }

// End returns the end of the event; the zero time when it is unspecified.
func (e *Event) End() time.Time { return e.end }

// IsCancelled reports whether the event was deleted remotely.
func (e *Event) IsCancelled() bool { return e.status == StatusCancelled }

// SetName sets the title of the event, sent as "summary".
func (e *Event) SetName(name string) {
	e.name = name
	e.mark("summary")
}

func (e *Event) SetDescription(description string) {
	e.description = description
	e.mark("description")
}

func (e *Event) SetLocation(location string) {
	e.location = location
	e.mark("location")
}

func (e *Event) SetStatus(status Status) {
	e.status = status
	e.mark("status")
}

// SetVisibility sets one of "default", "public", "private" or "confidential".
func (e *Event) SetVisibility(visibility string) {
	e.visibility = visibility
	e.mark("visibility")
}

// SetStackable marks the event as not blocking time on the calendar,
// sent as transparency "transparent".
func (e *Event) SetStackable(stackable bool) {
	e.stackable = stackable
	e.mark("transparency")
}

func (e *Event) SetStart(start time.Time) {
	e.start = start
	e.mark("start")
}

func (e *Event) SetEnd(end time.Time) {
	e.end = end
	e.mark("end")
}

// SetAllDay switches between date and date-time boundaries.
func (e *Event) SetAllDay(allDay bool) {
	e.allDay = allDay
	e.mark("start")
	e.mark("end")
}

// SetTimeZone sets the IANA time zone sent along with start and end.
func (e *Event) SetTimeZone(tz string) {
	e.timeZone = tz
	e.mark("start")
	e.mark("end")
}

func (e *Event) SetEndTimeUnspecified(unspecified bool) {
	e.endUnspecified = unspecified
	e.mark("endTimeUnspecified")
}

// AddParticipation appends an attendee. The whole attendee list is marked as
// changed.
func (e *Event) AddParticipation(p Participation) {
	e.participations = append(e.participations, p)
	e.mark("attendees")
}

// SetParticipations replaces the attendee list.
func (e *Event) SetParticipations(ps []Participation) {
	e.participations = slices.Clone(ps)
	e.mark("attendees")
}

// SetRecurrence sets the RRULE, EXRULE, RDATE and EXDATE lines of the event.
func (e *Event) SetRecurrence(lines []string) {
	e.recurrence = slices.Clone(lines)
	e.mark("recurrence")
}

// Export returns the JSON body sent to create or update the event. Empty
// fields are left out.
func (e *Event) Export() map[string]any {
	out := e.exportAll()
	for k, v := range out {
		switch v := v.(type) {
		case string:
			if v == "" {
				delete(out, k)
			}
		case nil:
			delete(out, k)
		case bool:
			if k == "endTimeUnspecified" && !v {
				delete(out, k)
			}
		case []map[string]any:
			if len(v) == 0 {
				delete(out, k)
			}
		case []string:
			if len(v) == 0 {
				delete(out, k)
			}
		}
	}
	return out
}

// exportAll renders every writable field, empty or not.
func (e *Event) exportAll() map[string]any {
	out := map[string]any{
		"summary":            e.name,
		"description":        e.description,
		"location":           e.location,
		"status":             string(e.status),
		"visibility":         e.visibility,
		"transparency":       "opaque",
		"endTimeUnspecified": e.endUnspecified,
		"recurrence":         slices.Clone(e.recurrence),
		"start":              nil,
		"end":                nil,
	}

	if e.stackable {
		out["transparency"] = "transparent"
	}
	if !e.start.IsZero() {
		out["start"] = exportDateTime(e.start, e.allDay, e.timeZone)
	}
	if !e.end.IsZero() {
		out["end"] = exportDateTime(e.end, e.allDay, e.timeZone)
	}

	attendees := make([]map[string]any, 0, len(e.participations))
	for _, p := range e.participations {
		attendee := map[string]any{"email": p.Email}
		if p.DisplayName != "" {
			attendee["displayName"] = p.DisplayName
		}
		if p.Status != "" {
			attendee["responseStatus"] = string(p.Status)
		}
		if p.Optional {
			attendee["optional"] = true
		}
		attendees = append(attendees, attendee)
	}
	out["attendees"] = attendees

	return out
}

// HydrateEvent builds an event of cal from its API representation and adds it
// to cal's events. Cancelled events, as reported by incremental listings, may
// carry nothing but their id and status.
func HydrateEvent(cal *Calendar, item *calendarv3.Event) (*Event, error) {
	e, err := buildEvent(cal, item)
	if err != nil {
		return nil, err
	}
	cal.Events().Add(e)
	return e, nil
}

// buildEvent is HydrateEvent without attaching the event to cal.
func buildEvent(cal *Calendar, item *calendarv3.Event) (*Event, error) {
	e := &Event{
		id:               item.Id,
		calendar:         cal,
		etag:             item.Etag,
		name:             item.Summary,
		description:      item.Description,
		location:         item.Location,
		status:           Status(item.Status),
		visibility:       item.Visibility,
		stackable:        item.Transparency == "transparent",
		endUnspecified:   item.EndTimeUnspecified,
		created:          parseTimestamp(item.Created),
		updated:          parseTimestamp(item.Updated),
		recurrence:       slices.Clone(item.Recurrence),
		recurringEventID: item.RecurringEventId,
		htmlLink:         item.HtmlLink,
	}

	if err := e.hydrateBoundaries(item); err != nil {
		return nil, err
	}

	if item.Creator != nil {
		e.creator = &Person{
			ID:          item.Creator.Id,
			Email:       item.Creator.Email,
			DisplayName: item.Creator.DisplayName,
			Self:        item.Creator.Self,
		}
	}
	if item.Organizer != nil {
		e.organizer = &Person{
			ID:          item.Organizer.Id,
			Email:       item.Organizer.Email,
			DisplayName: item.Organizer.DisplayName,
			Self:        item.Organizer.Self,
		}
	}

	for _, a := range item.Attendees {
		if a == nil {
			continue
		}
		e.participations = append(e.participations, Participation{
			Email:       a.Email,
			DisplayName: a.DisplayName,
			Status:      ResponseStatus(a.ResponseStatus),
			Organizer:   a.Organizer,
			Resource:    a.Resource,
			Optional:    a.Optional,
			Self:        a.Self,
		})
	}

	return e, nil
}

func (e *Event) hydrateBoundaries(item *calendarv3.Event) error {
	cancelled := e.status == StatusCancelled

	if item.End == nil && !item.EndTimeUnspecified && !cancelled {
		return ErrEndMissing
	}

	if item.Start != nil {
		start, allDay, err := parseEventDateTime(item.Start)
		if err != nil {
			return fmt.Errorf("event %s start: %w", item.Id, err)
		}
		e.start, e.allDay, e.timeZone = start, allDay, item.Start.TimeZone
	} else if !cancelled {
		return fmt.Errorf("event %s start: %w: missing", item.Id, ErrInvalidDate)
	}

	if item.End != nil {
		end, _, err := parseEventDateTime(item.End)
		if err != nil {
			return fmt.Errorf("event %s end: %w", item.Id, err)
		}
		e.end = end
	}

	return nil
}
