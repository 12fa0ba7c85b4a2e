// Package google is the transport layer of calendart.
//
// An Adapter issues authenticated JSON requests against the Google REST APIs
// (Calendar v3, Gmail v1) and classifies every failed response into an *Error
// whose Kind tells callers how to react:
//
//	err := adapter.SendRequest(ctx, http.MethodGet, "/calendar/v3/calendars/primary/events", req, &page)
//	switch {
//	case errors.Is(err, google.ErrGone):
//	    // the sync token expired, start over with a full listing
//	case errors.Is(err, google.ErrRateLimitExceeded):
//	    // back off
//	}
//
// The adapter never retries. Token loading for the underlying *http.Client
// lives in token.go; authorization flows are out of scope.
package google
