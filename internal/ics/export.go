// Package ics renders calendar events as an iCalendar document.
package ics

import (
	"fmt"
	"io"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	"github.com/teemow/calendart/internal/calendar"
)

const productID = "-//calendart//Google Calendar export//EN"

var partStats = map[calendar.ResponseStatus]string{
	calendar.ResponseNeedsAction: "NEEDS-ACTION",
	calendar.ResponseDeclined:    "DECLINED",
	calendar.ResponseTentative:   "TENTATIVE",
	calendar.ResponseAccepted:    "ACCEPTED",
}

// Build returns a VCALENDAR holding one VEVENT per event. Events without an
// id cannot be given a stable UID and are skipped. stamp is used as DTSTAMP.
func Build(cal *calendar.Calendar, events []*calendar.Event, stamp time.Time) *ical.Calendar {
	out := ical.NewCalendar()
	out.SetMethod(ical.MethodPublish)
	out.SetProductId(productID)
	if cal != nil {
		name := cal.Summary
		if name == "" {
			name = cal.ID
		}
		out.SetXWRCalName(name)
		if cal.TimeZone != "" {
			out.SetXWRTimezone(cal.TimeZone)
		}
	}

	for _, e := range events {
		if e == nil || e.ID() == "" {
			continue
		}
		addEvent(out, e, stamp)
	}
	return out
}

// Export writes the iCalendar document of events to w.
func Export(w io.Writer, cal *calendar.Calendar, events []*calendar.Event) error {
	if err := Build(cal, events, time.Now()).SerializeTo(w); err != nil {
		return fmt.Errorf("failed to write iCalendar: %w", err)
	}
	return nil
}

func addEvent(out *ical.Calendar, e *calendar.Event, stamp time.Time) {
	ve := out.AddEvent(e.ID())
	ve.SetDtStampTime(stamp)

	if e.Name() != "" {
		ve.SetSummary(e.Name())
	}
	if e.Description() != "" {
		ve.SetDescription(e.Description())
	}
	if e.Location() != "" {
		ve.SetLocation(e.Location())
	}
	if e.Status() != "" {
		ve.SetProperty(ical.ComponentPropertyStatus, strings.ToUpper(string(e.Status())))
	}
	if e.Stackable() {
		ve.SetProperty(ical.ComponentPropertyTransp, "TRANSPARENT")
	}
	if !e.Created().IsZero() {
		ve.SetCreatedTime(e.Created())
	}
	if !e.Updated().IsZero() {
		ve.SetModifiedAt(e.Updated())
	}

	switch {
	case e.Start().IsZero():
	case e.AllDay():
		ve.SetAllDayStartAt(e.Start())
		if !e.End().IsZero() {
			ve.SetAllDayEndAt(e.End())
		}
	default:
		ve.SetStartAt(e.Start())
		if !e.End().IsZero() {
			ve.SetEndAt(e.End())
		}
	}

	if org := e.Organizer(); org != nil && org.Email != "" {
		var params []ical.PropertyParameter
		if org.DisplayName != "" {
			params = append(params, ical.WithCN(org.DisplayName))
		}
		ve.SetOrganizer("mailto:"+org.Email, params...)
	}

	for _, p := range e.Participations() {
		if p.Email == "" {
			continue
		}
		var params []ical.PropertyParameter
		if p.DisplayName != "" {
			params = append(params, ical.WithCN(p.DisplayName))
		}
		if stat, ok := partStats[p.Status]; ok {
			params = append(params, &ical.KeyValues{Key: string(ical.ParameterParticipationStatus), Value: []string{stat}})
		}
		ve.AddAttendee("mailto:"+p.Email, params...)
	}

	for _, line := range e.Recurrence() {
		addRecurrenceLine(ve, line)
	}
}

// addRecurrenceLine copies an RRULE, EXRULE, RDATE or EXDATE content line,
// parameters included, e.g. "EXDATE;TZID=Europe/Berlin:20240101T100000".
func addRecurrenceLine(ve *ical.VEvent, line string) {
	head, value, ok := strings.Cut(line, ":")
	if !ok || value == "" {
		return
	}

	parts := strings.Split(head, ";")
	name := strings.ToUpper(parts[0])

	var params []ical.PropertyParameter
	for _, p := range parts[1:] {
		k, v, ok := strings.Cut(p, "=")
		if !ok {
			continue
		}
		params = append(params, &ical.KeyValues{Key: k, Value: []string{v}})
	}

	ve.AddProperty(ical.ComponentProperty(name), value, params...)
}
