package calendar

import (
	"errors"

	calendarv3 "google.golang.org/api/calendar/v3"
)

var errUnresolvableOrganizer = errors.New("organizer has neither id nor email")

// organizerCalendarID returns the id of the calendar owning events organized
// by org: its id, or its email address, which identifies primary calendars.
func organizerCalendarID(org *calendarv3.EventOrganizer) (string, error) {
	switch {
	case org.Id != "":
		return org.Id, nil
	case org.Email != "":
		return org.Email, nil
	default:
		return "", errUnresolvableOrganizer
	}
}

// calendarFromOrganizer builds the lightweight calendar of a foreign organizer.
func calendarFromOrganizer(id string, org *calendarv3.EventOrganizer) *Calendar {
	summary := org.DisplayName
	if summary == "" {
		summary = org.Email
	}
	return NewCalendar(id, summary, "")
}

// owners caches the calendars resolved during a single API call, keyed by id.
type owners map[string]*Calendar

func newOwners(home *Calendar) owners {
	return owners{home.ID: home}
}

// resolve returns the calendar owning item. Events without organizer, or
// organized by the calendar itself, belong to home. An organizer that cannot
// be identified also falls back to home; that error is not reported.
func (o owners) resolve(home *Calendar, item *calendarv3.Event) (*Calendar, error) {
	org := item.Organizer
	if org == nil || org.Self {
		return home, nil
	}

	id, err := organizerCalendarID(org)
	if err != nil {
		return home, err
	}

	if cal, ok := o[id]; ok {
		return cal, nil
	}

	cal := calendarFromOrganizer(id, org)
	o[id] = cal
	return cal, nil
}
