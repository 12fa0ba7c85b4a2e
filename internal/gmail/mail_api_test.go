package gmail

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/calendart/internal/google"
)

type call struct {
	method string
	path   string
	req    google.Request
}

// fakeRequester answers by request path.
type fakeRequester struct {
	responses map[string]string
	calls     []call
}

func (f *fakeRequester) SendRequest(_ context.Context, method, path string, req google.Request, out any) error {
	f.calls = append(f.calls, call{method: method, path: path, req: req})
	body, ok := f.responses[path]
	if !ok {
		return &google.Error{Kind: google.KindNotFound, StatusCode: http.StatusNotFound}
	}
	return json.Unmarshal([]byte(body), out)
}

func TestMailAPI_Get(t *testing.T) {
	r := &fakeRequester{responses: map[string]string{
		"/gmail/v1/users/me/messages/159d80792a8c4957": requiredData,
	}}

	m, err := NewMailAPI(r, nil).Get(context.Background(), "159d80792a8c4957")
	require.NoError(t, err)

	assert.Equal(t, "159d80792a8c4957", m.ID)
	assert.Equal(t, http.MethodGet, r.calls[0].method)
	assert.Equal(t, "full", r.calls[0].req.Query["format"])
}

func TestMailAPI_GetNotFound(t *testing.T) {
	_, err := NewMailAPI(&fakeRequester{}, nil).Get(context.Background(), "missing")
	assert.ErrorIs(t, err, google.ErrNotFound)
}

func TestMailAPI_List(t *testing.T) {
	r := &fakeRequester{responses: map[string]string{
		"/gmail/v1/users/me/messages":    `{"messages":[{"id":"m1","threadId":"t1"},{"id":"m2","threadId":"t2"}],"nextPageToken":"next","resultSizeEstimate":12}`,
		"/gmail/v1/users/me/messages/m1": `{"id":"m1","threadId":"t1","payload":{"headers":[{"name":"Subject","value":"one"}]}}`,
		"/gmail/v1/users/me/messages/m2": `{"id":"m2","threadId":"t2","payload":{"headers":[{"name":"Subject","value":"two"}]}}`,
	}}
	api := NewMailAPI(r, nil)
	set, err := api.WithPageSize(2).List(context.Background(), "is:unread", "prev")
	require.NoError(t, err)

	assert.Equal(t, "is:unread", r.calls[0].req.Query["q"])
	assert.Equal(t, "prev", r.calls[0].req.Query["pageToken"])
	assert.Equal(t, "2", r.calls[0].req.Query["maxResults"])
	assert.Equal(t, "metadata", r.calls[1].req.Query["format"])

	assert.Equal(t, "next", set.NextPageToken)
	assert.Equal(t, int64(12), set.ResultSizeEstimate)
	require.Len(t, set.Messages, 2)
	assert.Equal(t, "two", set.Messages[1].Subject)
	assert.Zero(t, api.PageSize)
}

func TestMailAPI_Attachment(t *testing.T) {
	r := &fakeRequester{responses: map[string]string{
		"/gmail/v1/users/me/messages/m1/attachments/a1":  `{"size":5,"data":"aGVsbG8="}`,
		"/gmail/v1/users/me/messages/m1/attachments/big": fmt.Sprintf(`{"size":%d,"data":""}`, MaxAttachmentSize+1),
	}}
	api := NewMailAPI(r, nil)

	data, err := api.Attachment(context.Background(), "m1", "a1")
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	_, err = api.Attachment(context.Background(), "m1", "big")
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "exceeds maximum size"))

	_, err = api.Attachment(context.Background(), "", "a1")
	assert.Error(t, err)
}
