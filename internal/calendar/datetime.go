package calendar

import (
	"errors"
	"fmt"
	"time"

	calendarv3 "google.golang.org/api/calendar/v3"
)

const (
	dateLayout          = "2006-01-02"
	localDateTimeLayout = "2006-01-02T15:04:05"
)

// ErrInvalidDate is returned for start or end values that cannot be parsed.
var ErrInvalidDate = errors.New("invalid event date")

// loadLocation returns the named location, or UTC when name is empty or unknown.
func loadLocation(name string) *time.Location {
	if name == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}

// parseEventDateTime reads the start or end of an event. A date without time
// marks an all-day event. Date-times without offset are read in the time zone
// of the value, defaulting to UTC.
func parseEventDateTime(dt *calendarv3.EventDateTime) (t time.Time, allDay bool, err error) {
	loc := loadLocation(dt.TimeZone)

	switch {
	case dt.DateTime != "":
		if t, err = time.Parse(time.RFC3339, dt.DateTime); err == nil {
			return t, false, nil
		}
		if t, err = time.ParseInLocation(localDateTimeLayout, dt.DateTime, loc); err == nil {
			return t, false, nil
		}
		return time.Time{}, false, fmt.Errorf("%w: %q", ErrInvalidDate, dt.DateTime)

	case dt.Date != "":
		if t, err = time.ParseInLocation(dateLayout, dt.Date, loc); err == nil {
			return t, true, nil
		}
		return time.Time{}, false, fmt.Errorf("%w: %q", ErrInvalidDate, dt.Date)

	default:
		return time.Time{}, false, fmt.Errorf("%w: neither date nor dateTime is set", ErrInvalidDate)
	}
}

// parseTimestamp reads created/updated values. Unparsable values yield the
// zero time.
func parseTimestamp(s string) time.Time {
	for _, layout := range []string{time.RFC3339Nano, localDateTimeLayout, dateLayout} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

func exportDateTime(t time.Time, allDay bool, timeZone string) map[string]any {
	if allDay {
		return map[string]any{"date": t.Format(dateLayout)}
	}

	out := map[string]any{"dateTime": t.Format(time.RFC3339)}
	if timeZone != "" {
		out["timeZone"] = timeZone
	}
	return out
}
