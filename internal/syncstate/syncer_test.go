package syncstate

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/calendart/internal/calendar"
	"github.com/teemow/calendart/internal/google"
)

type response struct {
	body string
	err  error
}

// fakeRequester answers in order and records the query of each request.
type fakeRequester struct {
	responses []response
	queries   []map[string]string
}

func (f *fakeRequester) SendRequest(_ context.Context, method, path string, req google.Request, out any) error {
	f.queries = append(f.queries, req.Query)
	if len(f.responses) == 0 {
		return fmt.Errorf("unexpected request %s %s", method, path)
	}
	r := f.responses[0]
	f.responses = f.responses[1:]
	if r.err != nil {
		return r.err
	}
	return json.Unmarshal([]byte(r.body), out)
}

var fixedNow = time.Date(2025, 1, 15, 8, 0, 0, 0, time.UTC)

func newSyncer(t *testing.T) *Syncer {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "sync.yaml"))
	require.NoError(t, err)
	return &Syncer{Store: store, ShowDeleted: true, now: func() time.Time { return fixedNow }}
}

func newAPI(fake *fakeRequester) *calendar.EventAPI {
	return calendar.NewEventAPI(fake, calendar.NewCalendar("home@example.com", "", ""))
}

const (
	confirmed = `{"id":"a","status":"confirmed","start":{"dateTime":"2025-01-15T10:00:00Z"},"end":{"dateTime":"2025-01-15T11:00:00Z"}}`
	cancelled = `{"id":"b","status":"cancelled"}`
)

func TestSyncer_FullThenIncremental(t *testing.T) {
	s := newSyncer(t)
	fake := &fakeRequester{responses: []response{
		{body: `{"nextSyncToken":"t1","items":[` + confirmed + `]}`},
		{body: `{"nextSyncToken":"t2","items":[` + cancelled + `]}`},
	}}

	res, err := s.Run(context.Background(), newAPI(fake))
	require.NoError(t, err)
	assert.Equal(t, "full", res.Mode)
	assert.Equal(t, 1, res.Events.Len())
	assert.NotContains(t, fake.queries[0], "syncToken")
	assert.Equal(t, "true", fake.queries[0]["showDeleted"])

	e, ok := s.Store.Get("home@example.com")
	require.True(t, ok)
	assert.Equal(t, Entry{SyncToken: "t1", UpdatedAt: fixedNow, Events: 1}, e)

	res, err = s.Run(context.Background(), newAPI(fake))
	require.NoError(t, err)
	assert.Equal(t, "incremental", res.Mode)
	assert.Equal(t, 1, res.Cancelled)
	assert.Equal(t, "t1", fake.queries[1]["syncToken"])
	assert.Equal(t, "t2", s.Store.SyncToken("home@example.com"))
}

func TestSyncer_GoneResetsToken(t *testing.T) {
	s := newSyncer(t)
	require.NoError(t, s.Store.Put("home@example.com", Entry{SyncToken: "stale"}))

	fake := &fakeRequester{responses: []response{
		{err: &google.Error{Kind: google.KindGone, StatusCode: http.StatusGone}},
		{body: `{"nextSyncToken":"fresh","items":[` + confirmed + `]}`},
	}}

	res, err := s.Run(context.Background(), newAPI(fake))
	require.NoError(t, err)
	assert.Equal(t, "full", res.Mode)

	require.Len(t, fake.queries, 2)
	assert.Equal(t, "stale", fake.queries[0]["syncToken"])
	assert.NotContains(t, fake.queries[1], "syncToken")
	assert.Equal(t, "fresh", s.Store.SyncToken("home@example.com"))
}

func TestSyncer_ErrorKeepsToken(t *testing.T) {
	s := newSyncer(t)
	require.NoError(t, s.Store.Put("home@example.com", Entry{SyncToken: "kept"}))

	fake := &fakeRequester{responses: []response{
		{err: &google.Error{Kind: google.KindBackend, StatusCode: http.StatusServiceUnavailable}},
	}}

	_, err := s.Run(context.Background(), newAPI(fake))
	require.ErrorIs(t, err, google.ErrBackend)
	assert.Len(t, fake.queries, 1)
	assert.Equal(t, "kept", s.Store.SyncToken("home@example.com"))
}

func TestSyncer_MissingSyncToken(t *testing.T) {
	s := newSyncer(t)
	fake := &fakeRequester{responses: []response{
		{body: `{"items":[` + confirmed + `]}`},
	}}

	_, err := s.Run(context.Background(), newAPI(fake))
	require.ErrorIs(t, err, calendar.ErrMissingSyncToken)

	_, ok := s.Store.Get("home@example.com")
	assert.False(t, ok)
}
