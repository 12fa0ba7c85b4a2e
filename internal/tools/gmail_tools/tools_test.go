package gmail_tools

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/calendart/internal/google"
	"github.com/teemow/calendart/internal/server"
)

// fakeRequester answers by request path.
type fakeRequester struct {
	responses map[string]string
	queries   []map[string]string
}

func (f *fakeRequester) SendRequest(_ context.Context, _, path string, req google.Request, out any) error {
	f.queries = append(f.queries, req.Query)
	body, ok := f.responses[path]
	if !ok {
		return &google.Error{Kind: google.KindNotFound, StatusCode: http.StatusNotFound, Message: "Requested entity was not found."}
	}
	return json.Unmarshal([]byte(body), out)
}

func newTestContext(t *testing.T, responses map[string]string) (*server.ServerContext, *fakeRequester) {
	t.Helper()
	fake := &fakeRequester{responses: responses}
	sc := server.NewServerContext(context.Background(), server.Options{Requester: fake})
	t.Cleanup(func() { _ = sc.Shutdown() })
	return sc, fake
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

const fullMessage = `{
	"id": "m1",
	"threadId": "t1",
	"labelIds": ["INBOX", "UNREAD"],
	"snippet": "Agenda attached",
	"internalDate": "1700000000000",
	"payload": {
		"mimeType": "multipart/mixed",
		"headers": [
			{"name": "From", "value": "Alice Example <alice@example.com>"},
			{"name": "To", "value": "me@example.com"},
			{"name": "Subject", "value": "Agenda"}
		],
		"parts": [
			{"partId": "0", "mimeType": "text/plain", "body": {"size": 6, "data": "dGVzdA0K"}},
			{"partId": "1", "mimeType": "application/pdf", "filename": "../agenda.pdf", "body": {"size": 2048, "attachmentId": "att1"}}
		]
	}
}`

func TestRegisterGmailTools(t *testing.T) {
	sc, _ := newTestContext(t, nil)
	s := mcpserver.NewMCPServer("test", "0.0.0", mcpserver.WithToolCapabilities(true))
	require.NoError(t, RegisterGmailTools(s, sc))

	tools := s.ListTools()
	assert.Len(t, tools, 2)
	assert.Contains(t, tools, "gmail_list_messages")
	assert.Contains(t, tools, "gmail_get_message")
}

func TestHandleGetMessage(t *testing.T) {
	sc, fake := newTestContext(t, map[string]string{
		"/gmail/v1/users/me/messages/m1": fullMessage,
	})

	result, err := handleGetMessage(context.Background(), newRequest(map[string]any{"messageId": "m1"}), sc)
	require.NoError(t, err)
	assert.False(t, result.IsError)

	text := resultText(t, result)
	assert.Contains(t, text, "Subject: Agenda")
	assert.Contains(t, text, "From: Alice Example <alice@example.com>")
	assert.Contains(t, text, "To: me@example.com")
	assert.Contains(t, text, "Labels: INBOX, UNREAD")
	assert.Contains(t, text, "test\r\n")
	assert.Contains(t, text, "- __agenda.pdf (application/pdf, 2048 bytes, id att1)")
	assert.Equal(t, "full", fake.queries[0]["format"])
}

func TestHandleGetMessage_Errors(t *testing.T) {
	sc, _ := newTestContext(t, nil)

	result, err := handleGetMessage(context.Background(), newRequest(map[string]any{}), sc)
	require.NoError(t, err)
	assert.True(t, result.IsError)

	result, err = handleGetMessage(context.Background(), newRequest(map[string]any{"messageId": "gone"}), sc)
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "kind: not_found")
}

func TestHandleListMessages(t *testing.T) {
	sc, fake := newTestContext(t, map[string]string{
		"/gmail/v1/users/me/messages":    `{"messages":[{"id":"m1","threadId":"t1"}],"nextPageToken":"p2","resultSizeEstimate":40}`,
		"/gmail/v1/users/me/messages/m1": fullMessage,
	})

	result, err := handleListMessages(context.Background(), newRequest(map[string]any{
		"query":      "from:alice",
		"maxResults": float64(500),
	}), sc)
	require.NoError(t, err)

	text := resultText(t, result)
	assert.Contains(t, text, "Found 1 messages (about 40 matching)")
	assert.Contains(t, text, "1. Agenda")
	assert.Contains(t, text, "Preview: Agenda attached")
	assert.Contains(t, text, "Next page token: p2")

	assert.Equal(t, "from:alice", fake.queries[0]["q"])
	assert.Equal(t, "100", fake.queries[0]["maxResults"])
	assert.Equal(t, "metadata", fake.queries[1]["format"])
	assert.Zero(t, sc.MailAPI().PageSize)
}
