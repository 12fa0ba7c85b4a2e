package google

import (
	calendar "google.golang.org/api/calendar/v3"
	gmail "google.golang.org/api/gmail/v1"
)

// DefaultOAuthScopes are requested when refreshing stored tokens: calendars
// and events read/write, and read-only mail access.
var DefaultOAuthScopes = []string{
	"https://www.googleapis.com/auth/userinfo.email",
	calendar.CalendarScope,
	gmail.GmailReadonlyScope,
}
