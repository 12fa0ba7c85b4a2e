package criterion

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func eventsQuery() *Criterion {
	return Collection("",
		Collection("fields",
			Field("",
				Field("nextSyncToken"),
				Field("nextPageToken"),
				Field("items",
					Field("id"),
					Field("creator", Field("email"), Field("displayName")),
				),
			),
		),
	)
}

func TestBuild(t *testing.T) {
	tests := []struct {
		name string
		c    *Criterion
		want Query
	}{
		{
			name: "nil",
			c:    nil,
			want: Query{},
		},
		{
			name: "fields wrapper",
			c:    eventsQuery(),
			want: Query{"fields": "nextSyncToken,nextPageToken,items(id,creator(email,displayName))"},
		},
		{
			name: "named root collection",
			c:    Collection("fields", Field("id"), Field("attendees", Field("email"))),
			want: Query{"fields": "id,attendees(email)"},
		},
		{
			name: "filters and flags",
			c: Collection("",
				Filter("timeMin", "2024-01-01T00:00:00Z"),
				Flag("singleEvents"),
				Field("showDeleted"),
			),
			want: Query{"timeMin": "2024-01-01T00:00:00Z", "singleEvents": "true", "showDeleted": "true"},
		},
		{
			name: "anonymous child flattens into root",
			c:    Collection("", Collection("", Filter("q", "standup")), Filter("maxResults", "5")),
			want: Query{"q": "standup", "maxResults": "5"},
		},
		{
			name: "named filter root",
			c:    Filter("syncToken", "abc"),
			want: Query{"syncToken": "abc"},
		},
		{
			name: "empty collection",
			c:    Collection("", Collection("fields")),
			want: Query{"fields": ""},
		},
		{
			name: "empty anonymous field is skipped",
			c:    Collection("fields", Field(""), Field("id")),
			want: Query{"fields": "id"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Build(tt.c))
		})
	}
}

func TestBuild_Idempotent(t *testing.T) {
	c := eventsQuery()
	c.AddCriterion(Flag("showDeleted"))

	first := Build(c)
	second := Build(c)

	assert.Equal(t, first, second)
	assert.Equal(t, first.Encode(), second.Encode())
}

func TestBuild_MergedCallerCriteria(t *testing.T) {
	caller := Collection("",
		Collection("fields", Field("", Field("items", Field("recurrence")))),
		Flag("showDeleted"),
	)

	merged, err := eventsQuery().Merge(caller)
	assert.NoError(t, err)

	assert.Equal(t, Query{
		"fields":      "nextSyncToken,nextPageToken,items(id,creator(email,displayName),recurrence)",
		"showDeleted": "true",
	}, Build(merged))
}

func TestQuery_With(t *testing.T) {
	base := Query{"fields": "id"}
	page := base.With("pageToken", "X")

	assert.Equal(t, Query{"fields": "id"}, base)
	assert.Equal(t, Query{"fields": "id", "pageToken": "X"}, page)
}

func TestQuery_Encode(t *testing.T) {
	q := Query{"fields": "items(id,summary)", "b": "2"}
	assert.Equal(t, "b=2&fields=items%28id%2Csummary%29", q.Encode())
	assert.Equal(t, "items(id,summary)", q.Values().Get("fields"))
}

func TestQuery_CloneNil(t *testing.T) {
	var q Query
	assert.Equal(t, Query{}, q.Clone())
}
