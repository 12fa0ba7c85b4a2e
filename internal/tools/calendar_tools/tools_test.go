package calendar_tools

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/calendart/internal/google"
	"github.com/teemow/calendart/internal/server"
)

type call struct {
	method string
	path   string
	req    google.Request
}

// fakeRequester answers with canned JSON responses, in order.
type fakeRequester struct {
	responses []string
	err       error
	calls     []call
}

func (f *fakeRequester) SendRequest(_ context.Context, method, path string, req google.Request, out any) error {
	f.calls = append(f.calls, call{method: method, path: path, req: req})
	if f.err != nil {
		return f.err
	}
	if len(f.responses) == 0 {
		return fmt.Errorf("unexpected request %s %s", method, path)
	}
	body := f.responses[0]
	f.responses = f.responses[1:]
	return json.Unmarshal([]byte(body), out)
}

func newTestContext(t *testing.T, fake *fakeRequester, writes bool) *server.ServerContext {
	t.Helper()
	sc := server.NewServerContext(context.Background(), server.Options{
		Requester:   fake,
		User:        google.NewUser("Me", "me@example.com"),
		Calendar:    "me@example.com",
		AllowWrites: writes,
	})
	t.Cleanup(func() { _ = sc.Shutdown() })
	return sc
}

func newRequest(args map[string]any) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{Arguments: args},
	}
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, result)
	require.NotEmpty(t, result.Content)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "content is %T", result.Content[0])
	return text.Text
}

const eventItem = `{"id":"ev1","status":"confirmed","summary":"Standup","location":"Room 1",` +
	`"start":{"dateTime":"2025-01-15T14:00:00Z"},"end":{"dateTime":"2025-01-15T14:15:00Z"}}`

func TestRegisterEventTools(t *testing.T) {
	for _, writes := range []bool{false, true} {
		t.Run(fmt.Sprintf("writes=%v", writes), func(t *testing.T) {
			s := mcpserver.NewMCPServer("test", "0.0.0", mcpserver.WithToolCapabilities(true))
			require.NoError(t, RegisterCalendarTools(s, newTestContext(t, &fakeRequester{}, writes)))

			tools := s.ListTools()
			assert.Contains(t, tools, "calendar_list_events")
			assert.Contains(t, tools, "calendar_get_event")
			assert.Contains(t, tools, "calendar_list_calendars")
			assert.Contains(t, tools, "calendar_get_permissions")
			if writes {
				assert.Contains(t, tools, "calendar_create_event")
				assert.Contains(t, tools, "calendar_patch_event")
			} else {
				assert.NotContains(t, tools, "calendar_create_event")
				assert.NotContains(t, tools, "calendar_patch_event")
			}
		})
	}
}

func TestHandleListEvents(t *testing.T) {
	fake := &fakeRequester{responses: []string{
		`{"nextPageToken":"p2","items":[` + eventItem + `]}`,
		`{"nextSyncToken":"sync-1","items":[]}`,
	}}
	sc := newTestContext(t, fake, false)

	result, err := handleListEvents(context.Background(), newRequest(map[string]any{
		"query":       "standup",
		"showDeleted": true,
	}), sc)
	require.NoError(t, err)
	assert.False(t, result.IsError)

	text := resultText(t, result)
	assert.Contains(t, text, "Found 1 events")
	assert.Contains(t, text, "Standup")
	assert.Contains(t, text, "Location: Room 1")
	assert.Contains(t, text, "Sync token: sync-1")

	require.Len(t, fake.calls, 2)
	assert.Equal(t, http.MethodGet, fake.calls[0].method)
	assert.Equal(t, "/calendar/v3/calendars/me@example.com/events", fake.calls[0].path)
	assert.Equal(t, "standup", fake.calls[0].req.Query["q"])
	assert.Equal(t, "true", fake.calls[0].req.Query["showDeleted"])
	assert.Equal(t, "p2", fake.calls[1].req.Query["pageToken"])
}

func TestHandleListEvents_InvalidTime(t *testing.T) {
	fake := &fakeRequester{}
	result, err := handleListEvents(context.Background(), newRequest(map[string]any{
		"timeMin": "yesterday",
	}), newTestContext(t, fake, false))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Empty(t, fake.calls)
}

func TestHandleListEvents_Gone(t *testing.T) {
	fake := &fakeRequester{err: &google.Error{Kind: google.KindGone, StatusCode: http.StatusGone}}
	result, err := handleListEvents(context.Background(), newRequest(map[string]any{
		"syncToken": "stale",
	}), newTestContext(t, fake, false))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "kind: gone")
	assert.Equal(t, "stale", fake.calls[0].req.Query["syncToken"])
}

func TestHandleGetEvent(t *testing.T) {
	fake := &fakeRequester{responses: []string{eventItem}}
	sc := newTestContext(t, fake, false)

	result, err := handleGetEvent(context.Background(), newRequest(map[string]any{"eventId": "ev1"}), sc)
	require.NoError(t, err)
	assert.Contains(t, resultText(t, result), "ID: ev1")
	assert.Equal(t, "/calendar/v3/calendars/me@example.com/events/ev1", fake.calls[0].path)

	result, err = handleGetEvent(context.Background(), newRequest(map[string]any{}), sc)
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestHandleCreateEvent(t *testing.T) {
	fake := &fakeRequester{responses: []string{eventItem}}
	sc := newTestContext(t, fake, true)

	result, err := handleCreateEvent(context.Background(), newRequest(map[string]any{
		"summary":           "Standup",
		"start":             "2025-01-15T14:00:00Z",
		"end":               "2025-01-15T14:15:00Z",
		"attendees":         "a@example.com, b@example.com",
		"sendNotifications": true,
	}), sc)
	require.NoError(t, err)
	assert.False(t, result.IsError, resultText(t, result))
	assert.Contains(t, resultText(t, result), "Event created.")

	require.Len(t, fake.calls, 1)
	assert.Equal(t, http.MethodPost, fake.calls[0].method)
	assert.Equal(t, "/calendar/v3/calendars/me@example.com/events", fake.calls[0].path)
	assert.Equal(t, "true", fake.calls[0].req.Query["sendNotifications"])

	body, ok := fake.calls[0].req.Body.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Standup", body["summary"])
	assert.Len(t, body["attendees"], 2)
}

func TestHandleCreateEvent_Validation(t *testing.T) {
	tests := []struct {
		name string
		args map[string]any
	}{
		{name: "missing summary", args: map[string]any{"start": "2025-01-15T14:00:00Z", "end": "2025-01-15T15:00:00Z"}},
		{name: "missing end", args: map[string]any{"summary": "x", "start": "2025-01-15T14:00:00Z"}},
		{name: "end before start", args: map[string]any{"summary": "x", "start": "2025-01-15T14:00:00Z", "end": "2025-01-15T13:00:00Z"}},
		{name: "all day without end", args: map[string]any{"summary": "x", "start": "2025-01-15T00:00:00Z", "allDay": true}},
		{name: "unknown time zone", args: map[string]any{"summary": "x", "start": "2025-01-15T14:00:00Z", "end": "2025-01-15T15:00:00Z", "timeZone": "Mars/Olympus"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeRequester{}
			result, err := handleCreateEvent(context.Background(), newRequest(tt.args), newTestContext(t, fake, true))
			require.NoError(t, err)
			assert.True(t, result.IsError)
			assert.Empty(t, fake.calls)
		})
	}
}

func TestHandlePatchEvent(t *testing.T) {
	fake := &fakeRequester{responses: []string{eventItem}}
	sc := newTestContext(t, fake, true)

	result, err := handlePatchEvent(context.Background(), newRequest(map[string]any{
		"eventId":  "ev1",
		"location": "Room 2",
	}), sc)
	require.NoError(t, err)
	assert.False(t, result.IsError, resultText(t, result))

	require.Len(t, fake.calls, 1)
	assert.Equal(t, http.MethodPatch, fake.calls[0].method)
	assert.Equal(t, "/calendar/v3/calendars/me@example.com/events/ev1", fake.calls[0].path)

	body, ok := fake.calls[0].req.Body.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Room 2", body["location"])
	assert.NotContains(t, body, "summary")
}

func TestHandlePatchEvent_NothingToChange(t *testing.T) {
	fake := &fakeRequester{}
	result, err := handlePatchEvent(context.Background(), newRequest(map[string]any{"eventId": "ev1"}),
		newTestContext(t, fake, true))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Empty(t, fake.calls)
}

func TestHandleListCalendars(t *testing.T) {
	fake := &fakeRequester{responses: []string{
		`{"nextSyncToken":"cal-sync","items":[{"id":"me@example.com","summary":"Me","timeZone":"Europe/Berlin","accessRole":"owner"}]}`,
	}}

	result, err := handleListCalendars(context.Background(), newRequest(nil), newTestContext(t, fake, false))
	require.NoError(t, err)
	text := resultText(t, result)
	assert.Contains(t, text, "me@example.com")
	assert.Contains(t, text, "Europe/Berlin")
	assert.Equal(t, "/calendar/v3/users/me/calendarList", fake.calls[0].path)
}
