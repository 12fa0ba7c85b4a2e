package instrumentation

import "testing"

func TestServiceFromPath(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/calendar/v3/calendars/primary/events", ServiceCalendar},
		{"/calendar/v3/users/me/calendarList", ServiceCalendar},
		{"/gmail/v1/users/me/messages/123", ServiceGmail},
		{"/oauth2/v2/userinfo", "unknown"},
		{"", "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := ServiceFromPath(tt.path); got != tt.want {
				t.Errorf("ServiceFromPath(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}

func TestPathTemplate(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/calendar/v3/calendars/me%40x.com/events/abc", "/calendar/v3/calendars/{id}/events/{id}"},
		{"/calendar/v3/calendars/primary/events", "/calendar/v3/calendars/{id}/events"},
		{"/calendar/v3/calendars/primary/acl", "/calendar/v3/calendars/{id}/acl"},
		{"/gmail/v1/users/me/messages/123", "/gmail/v1/users/{id}/messages/{id}"},
		{"/calendar/v3", "/calendar/v3"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := PathTemplate(tt.path); got != tt.want {
				t.Errorf("PathTemplate(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}
