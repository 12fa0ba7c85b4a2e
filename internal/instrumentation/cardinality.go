package instrumentation

import "strings"

// Operation label values for Google API metrics.
const (
	OperationList   = "list"
	OperationGet    = "get"
	OperationCreate = "create"
	OperationPatch  = "patch"
	OperationACL    = "acl"
)

// ServiceFromPath maps a request path to its Google service label.
//
//	ServiceFromPath("/calendar/v3/calendars/primary/events") // "calendar"
//	ServiceFromPath("/gmail/v1/users/me/messages")           // "gmail"
//	ServiceFromPath("/oauth2/v2/userinfo")                   // "unknown"
func ServiceFromPath(path string) string {
	switch {
	case strings.HasPrefix(path, "/calendar/"):
		return ServiceCalendar
	case strings.HasPrefix(path, "/gmail/"):
		return ServiceGmail
	default:
		return "unknown"
	}
}

// PathTemplate replaces resource identifiers in a Google API path with
// placeholders so it can be used as a low-cardinality label.
//
//	PathTemplate("/calendar/v3/calendars/me%40x.com/events/abc") // "/calendar/v3/calendars/{id}/events/{id}"
//	PathTemplate("/gmail/v1/users/me/messages/123")               // "/gmail/v1/users/{id}/messages/{id}"
func PathTemplate(path string) string {
	segments := strings.Split(strings.Trim(path, "/"), "/")
	for i := 3; i < len(segments); i += 2 {
		segments[i] = "{id}"
	}
	return "/" + strings.Join(segments, "/")
}
