package calendar

import (
	calendarv3 "google.golang.org/api/calendar/v3"
)

// Calendar is a Google calendar together with the events discovered through it.
type Calendar struct {
	ID          string
	Summary     string
	Description string
	TimeZone    string
	AccessRole  string

	// SyncToken is the cursor stored by the last complete listing, or "".
	SyncToken string

	events      *EventSet
	permissions []UserPermission
}

// NewCalendar returns a calendar with an empty event set.
func NewCalendar(id, summary, timeZone string) *Calendar {
	return &Calendar{ID: id, Summary: summary, TimeZone: timeZone, events: NewEventSet()}
}

// Events returns the events attached to the calendar. The set is shared: the
// listing of another calendar may add the events it found here.
func (c *Calendar) Events() *EventSet {
	if c.events == nil {
		c.events = NewEventSet()
	}
	return c.events
}

// Permissions returns the user permissions fetched by CalendarAPI.Permissions.
func (c *Calendar) Permissions() []UserPermission {
	return c.permissions
}

func (c *Calendar) setPermissions(perms []UserPermission) {
	c.permissions = perms
}

func calendarFromListEntry(entry *calendarv3.CalendarListEntry) *Calendar {
	cal := NewCalendar(entry.Id, entry.Summary, entry.TimeZone)
	cal.Description = entry.Description
	cal.AccessRole = entry.AccessRole
	return cal
}

func calendarFromResource(res *calendarv3.Calendar) *Calendar {
	cal := NewCalendar(res.Id, res.Summary, res.TimeZone)
	cal.Description = res.Description
	return cal
}
