package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPartialEvent_Export(t *testing.T) {
	p := NewPartialEvent(NewCalendar("c", "", ""), "ev")
	assert.Empty(t, p.Export())
	assert.Empty(t, p.Changed())

	p.SetName("Renamed")
	assert.Equal(t, map[string]any{"summary": "Renamed"}, p.Export())

	p.AddParticipation(Participation{Email: "a@example.com", Optional: true})
	assert.Equal(t, map[string]any{
		"summary": "Renamed",
		"attendees": []map[string]any{
			{"email": "a@example.com", "optional": true},
		},
	}, p.Export())
	assert.Equal(t, []string{"attendees", "summary"}, p.Changed())
}

func TestPartialEvent_ExportsClearedValues(t *testing.T) {
	p := NewPartialEvent(NewCalendar("c", "", ""), "ev")
	p.SetDescription("")
	p.SetStackable(true)

	assert.Equal(t, map[string]any{
		"description":  "",
		"transparency": "transparent",
	}, p.Export())
}

func TestPartialEvent_TimeZoneMarksBoundaries(t *testing.T) {
	p := NewPartialEvent(NewCalendar("c", "", ""), "ev")
	p.SetStart(time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC))
	p.SetTimeZone("Europe/Paris")

	assert.Equal(t, []string{"end", "start"}, p.Changed())
	assert.Equal(t, map[string]any{"dateTime": "2024-05-01T09:00:00Z", "timeZone": "Europe/Paris"}, p.Export()["start"])
	assert.NotContains(t, p.Export(), "end")
}

func TestPartialEvent_UnsetBoundariesNotExported(t *testing.T) {
	p := NewPartialEvent(NewCalendar("c", "", ""), "ev")
	p.SetAllDay(true)

	assert.Equal(t, []string{"end", "start"}, p.Changed())
	assert.Empty(t, p.Export())
}

func TestEvent_NotTracked(t *testing.T) {
	e := NewEvent(NewCalendar("c", "", ""))
	e.SetName("x")
	assert.Nil(t, e.changes)
}
