package calendar

import (
	"errors"
	"fmt"
	"time"

	"github.com/teambition/rrule-go"
)

// maxOccurrences caps the expansion of a single recurring event.
const maxOccurrences = 5000

// Occurrence is one instance of an event.
type Occurrence struct {
	Start time.Time
	End   time.Time
}

// Occurrences expands the event within [from, to]. A non-recurring event
// yields itself when it overlaps the range. Occurrences keep the duration of
// the event; all-day occurrences last whole days.
func (e *Event) Occurrences(from, to time.Time) ([]Occurrence, error) {
	if to.Before(from) {
		return nil, errors.New("occurrences: range end is before its start")
	}
	if e.start.IsZero() {
		return nil, fmt.Errorf("occurrences of %s: %w: missing start", e.id, ErrInvalidDate)
	}

	duration := e.duration()

	if len(e.recurrence) == 0 {
		end := e.start.Add(duration)
		if e.start.After(to) || end.Before(from) {
			return nil, nil
		}
		return []Occurrence{{Start: e.start, End: end}}, nil
	}

	loc := e.start.Location()
	if e.timeZone != "" {
		loc = loadLocation(e.timeZone)
	}

	set, err := rrule.StrSliceToRRuleSetInLoc(e.recurrence, loc)
	if err != nil {
		return nil, fmt.Errorf("occurrences of %s: %w", e.id, err)
	}
	set.DTStart(e.start.In(loc))

	starts := set.Between(from.In(loc), to.In(loc), true)
	if len(starts) > maxOccurrences {
		starts = starts[:maxOccurrences]
	}

	out := make([]Occurrence, 0, len(starts))
	for _, start := range starts {
		out = append(out, Occurrence{Start: start, End: start.Add(duration)})
	}
	return out, nil
}

func (e *Event) duration() time.Duration {
	switch {
	case !e.end.IsZero() && e.end.After(e.start):
		return e.end.Sub(e.start)
	case e.allDay:
		return 24 * time.Hour
	default:
		return 0
	}
}
