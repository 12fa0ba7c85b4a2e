package google

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		phrases []string
		want    Kind
	}{
		{name: "bad request", status: 400, want: KindBadRequest},
		{name: "invalid credentials", status: 401, phrases: []string{"Invalid Credentials"}, want: KindInvalidCredentials},
		{name: "daily limit", status: 403, phrases: []string{"Daily Limit Exceeded"}, want: KindDailyLimitExceeded},
		{name: "user rate limit", status: 403, phrases: []string{"User Rate Limit Exceeded"}, want: KindUserRateLimitExceeded},
		{name: "rate limit", status: 403, phrases: []string{"Rate Limit Exceeded"}, want: KindRateLimitExceeded},
		{name: "usage limits", status: 403, phrases: []string{"Calendar usage limits exceeded."}, want: KindCalendarUsageLimitsExceeded},
		{name: "reason code", status: 403, phrases: []string{"Forbidden", "", "userRateLimitExceeded"}, want: KindUserRateLimitExceeded},
		{name: "daily wins over rate", status: 403, phrases: []string{"Rate Limit Exceeded", "dailyLimitExceeded"}, want: KindDailyLimitExceeded},
		{name: "plain forbidden", status: 403, phrases: []string{"Forbidden", "The user does not have permission"}, want: KindForbidden},
		{name: "not found", status: 404, want: KindNotFound},
		{name: "conflict", status: 409, want: KindIdentifierAlreadyExists},
		{name: "gone", status: 410, want: KindGone},
		{name: "precondition", status: 412, want: KindPrecondition},
		{name: "too many requests", status: 429, want: KindRateLimitExceeded},
		{name: "too many requests user", status: 429, phrases: []string{"userRateLimitExceeded"}, want: KindUserRateLimitExceeded},
		{name: "backend", status: 500, want: KindBackend},
		{name: "unavailable", status: 503, want: KindBackend},
		{name: "teapot", status: 418, want: KindUnexpected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.status, tt.phrases...))
		})
	}
}

func TestError_Is(t *testing.T) {
	for kind, sentinel := range sentinels {
		t.Run(kind.String(), func(t *testing.T) {
			err := error(&Error{Kind: kind, StatusCode: 418})
			assert.ErrorIs(t, err, sentinel)

			for other, otherSentinel := range sentinels {
				if other != kind {
					assert.NotErrorIs(t, err, otherSentinel)
				}
			}
		})
	}
}

func TestError_Retryable(t *testing.T) {
	retryable := map[Kind]bool{
		KindDailyLimitExceeded:          true,
		KindUserRateLimitExceeded:       true,
		KindRateLimitExceeded:           true,
		KindCalendarUsageLimitsExceeded: true,
		KindBackend:                     true,
	}

	for kind := range sentinels {
		assert.Equal(t, retryable[kind], (&Error{Kind: kind}).Retryable(), kind.String())
	}
}

func TestError_Message(t *testing.T) {
	err := &Error{Kind: KindNotFound, StatusCode: 404, Reason: "Not Found", Message: "Not Found"}
	assert.Equal(t, "google: not_found (404): Not Found", err.Error())

	err = &Error{Kind: KindGone, StatusCode: 410, Reason: "Gone"}
	assert.Equal(t, "google: gone (410): Gone", err.Error())
}

func TestNewError(t *testing.T) {
	resp := &http.Response{StatusCode: 403, Status: "403 Forbidden"}
	cause := &googleapi.Error{
		Code:    403,
		Message: "Rate Limit Exceeded",
		Errors:  []googleapi.ErrorItem{{Reason: "rateLimitExceeded", Message: "Rate Limit Exceeded"}},
	}

	err := newError(resp, cause)

	assert.Equal(t, KindRateLimitExceeded, err.Kind)
	assert.Equal(t, "Forbidden", err.Reason)
	assert.Equal(t, "Rate Limit Exceeded", err.Message)

	var apiErr *googleapi.Error
	require.True(t, errors.As(err, &apiErr))
	assert.Same(t, cause, apiErr)
}

func TestNewError_NoStatusText(t *testing.T) {
	err := newError(&http.Response{StatusCode: 410}, errors.New("raw"))
	assert.Equal(t, KindGone, err.Kind)
	assert.Equal(t, "Gone", err.Reason)
}

func TestKindString_Unknown(t *testing.T) {
	assert.Equal(t, "kind(99)", Kind(99).String())
}
