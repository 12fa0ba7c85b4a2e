package google

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"google.golang.org/api/googleapi"
)

// Kind classifies a failed response.
type Kind int

const (
	KindUnexpected Kind = iota
	KindBadRequest
	KindInvalidCredentials
	KindDailyLimitExceeded
	KindUserRateLimitExceeded
	KindRateLimitExceeded
	KindCalendarUsageLimitsExceeded
	KindForbidden
	KindNotFound
	KindIdentifierAlreadyExists
	KindGone
	KindPrecondition
	KindBackend
)

var kindNames = map[Kind]string{
	KindUnexpected:                  "unexpected",
	KindBadRequest:                  "bad_request",
	KindInvalidCredentials:          "invalid_credentials",
	KindDailyLimitExceeded:          "daily_limit_exceeded",
	KindUserRateLimitExceeded:       "user_rate_limit_exceeded",
	KindRateLimitExceeded:           "rate_limit_exceeded",
	KindCalendarUsageLimitsExceeded: "calendar_usage_limits_exceeded",
	KindForbidden:                   "forbidden",
	KindNotFound:                    "not_found",
	KindIdentifierAlreadyExists:     "identifier_already_exists",
	KindGone:                        "gone",
	KindPrecondition:                "precondition",
	KindBackend:                     "backend",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// Sentinels matched by errors.Is against an *Error of the same kind.
var (
	ErrUnexpected                  = errors.New("unexpected response")
	ErrBadRequest                  = errors.New("bad request")
	ErrInvalidCredentials          = errors.New("invalid credentials")
	ErrDailyLimitExceeded          = errors.New("daily limit exceeded")
	ErrUserRateLimitExceeded       = errors.New("user rate limit exceeded")
	ErrRateLimitExceeded           = errors.New("rate limit exceeded")
	ErrCalendarUsageLimitsExceeded = errors.New("calendar usage limits exceeded")
	ErrForbidden                   = errors.New("forbidden")
	ErrNotFound                    = errors.New("not found")
	ErrIdentifierAlreadyExists     = errors.New("identifier already exists")
	ErrGone                        = errors.New("gone")
	ErrPrecondition                = errors.New("precondition failed")
	ErrBackend                     = errors.New("backend error")
)

var sentinels = map[Kind]error{
	KindUnexpected:                  ErrUnexpected,
	KindBadRequest:                  ErrBadRequest,
	KindInvalidCredentials:          ErrInvalidCredentials,
	KindDailyLimitExceeded:          ErrDailyLimitExceeded,
	KindUserRateLimitExceeded:       ErrUserRateLimitExceeded,
	KindRateLimitExceeded:           ErrRateLimitExceeded,
	KindCalendarUsageLimitsExceeded: ErrCalendarUsageLimitsExceeded,
	KindForbidden:                   ErrForbidden,
	KindNotFound:                    ErrNotFound,
	KindIdentifierAlreadyExists:     ErrIdentifierAlreadyExists,
	KindGone:                        ErrGone,
	KindPrecondition:                ErrPrecondition,
	KindBackend:                     ErrBackend,
}

// Error is a classified non-2xx response.
type Error struct {
	Kind       Kind
	StatusCode int
	// Reason is the reason phrase of the status line.
	Reason string
	// Message is error.message of the response body, when there is one.
	Message string

	err error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = e.Reason
	}
	return fmt.Sprintf("google: %s (%d): %s", e.Kind, e.StatusCode, msg)
}

func (e *Error) Is(target error) bool {
	return sentinels[e.Kind] == target
}

// Unwrap exposes the underlying *googleapi.Error.
func (e *Error) Unwrap() error {
	return e.err
}

// Retryable reports whether retrying later with backoff may succeed. The
// adapter never retries on its own.
func (e *Error) Retryable() bool {
	switch e.Kind {
	case KindDailyLimitExceeded, KindUserRateLimitExceeded, KindRateLimitExceeded,
		KindCalendarUsageLimitsExceeded, KindBackend:
		return true
	default:
		return false
	}
}

// Limit phrases, in priority order. Phrases are compared lowercased with
// spaces removed so "User Rate Limit Exceeded" and "userRateLimitExceeded"
// are the same.
var limitPhrases = []struct {
	needle string
	kind   Kind
}{
	{"dailylimit", KindDailyLimitExceeded},
	{"userratelimit", KindUserRateLimitExceeded},
	{"ratelimit", KindRateLimitExceeded},
	{"usagelimits", KindCalendarUsageLimitsExceeded},
}

// Classify maps a failed response to its Kind. phrases are the texts
// describing the failure: the status reason phrase, the remote message and
// the reasons of the individual errors.
func Classify(statusCode int, phrases ...string) Kind {
	switch {
	case statusCode == http.StatusBadRequest:
		return KindBadRequest
	case statusCode == http.StatusUnauthorized:
		return KindInvalidCredentials
	case statusCode == http.StatusForbidden:
		if kind, ok := limitKind(phrases); ok {
			return kind
		}
		return KindForbidden
	case statusCode == http.StatusNotFound:
		return KindNotFound
	case statusCode == http.StatusConflict:
		return KindIdentifierAlreadyExists
	case statusCode == http.StatusGone:
		return KindGone
	case statusCode == http.StatusPreconditionFailed:
		return KindPrecondition
	case statusCode == http.StatusTooManyRequests:
		if kind, ok := limitKind(phrases); ok {
			return kind
		}
		return KindRateLimitExceeded
	case statusCode >= 500 && statusCode <= 599:
		return KindBackend
	default:
		return KindUnexpected
	}
}

func limitKind(phrases []string) (Kind, bool) {
	normalized := make([]string, 0, len(phrases))
	for _, p := range phrases {
		if p = strings.ToLower(strings.ReplaceAll(p, " ", "")); p != "" {
			normalized = append(normalized, p)
		}
	}

	for _, lp := range limitPhrases {
		for _, p := range normalized {
			if strings.Contains(p, lp.needle) {
				return lp.kind, true
			}
		}
	}
	return KindUnexpected, false
}

// newError classifies resp, whose body was consumed by googleapi.CheckResponse
// into cause.
func newError(resp *http.Response, cause error) *Error {
	reason := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if reason == "" {
		reason = http.StatusText(resp.StatusCode)
	}

	e := &Error{
		StatusCode: resp.StatusCode,
		Reason:     reason,
		err:        cause,
	}

	phrases := []string{reason}

	var apiErr *googleapi.Error
	if errors.As(cause, &apiErr) {
		e.Message = apiErr.Message
		phrases = append(phrases, apiErr.Message)
		for _, item := range apiErr.Errors {
			phrases = append(phrases, item.Reason, item.Message)
		}
	}

	e.Kind = Classify(resp.StatusCode, phrases...)
	return e
}
