package calendar

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	calendarv3 "google.golang.org/api/calendar/v3"

	"github.com/teemow/calendart/internal/criterion"
	"github.com/teemow/calendart/internal/google"
	"github.com/teemow/calendart/internal/instrumentation"
	"github.com/teemow/calendart/internal/logging"
)

// CalendarList is the result of CalendarAPI.List.
type CalendarList struct {
	Calendars []*Calendar
	// SyncToken allows listing only the calendar list entries changed since.
	SyncToken string
}

// Get returns the calendar with the given id.
func (l *CalendarList) Get(id string) (*Calendar, bool) {
	for _, cal := range l.Calendars {
		if cal.ID == id {
			return cal, true
		}
	}
	return nil, false
}

// CalendarAPI reads the calendars of the user and their access control lists.
type CalendarAPI struct {
	requester Requester
	user      *google.User
	logger    *slog.Logger
}

// NewCalendarAPI returns a CalendarAPI acting for user. ACL entries matching
// one of the user's emails resolve to user itself.
func NewCalendarAPI(r Requester, user *google.User, logger *slog.Logger) *CalendarAPI {
	if user == nil {
		user = &google.User{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CalendarAPI{
		requester: r,
		user:      user,
		logger:    logging.WithService(logger, instrumentation.ServiceCalendar),
	}
}

// DefaultCalendarFields is the field selection of a calendar.
func DefaultCalendarFields() []*criterion.Criterion {
	return []*criterion.Criterion{
		criterion.Field("id"),
		criterion.Field("summary"),
		criterion.Field("timeZone"),
		criterion.Field("description"),
	}
}

// List fetches every page of the user's calendar list.
func (a *CalendarAPI) List(ctx context.Context, crit *criterion.Criterion) (*CalendarList, error) {
	query := criterion.Collection("",
		criterion.Collection("fields",
			criterion.Field("",
				criterion.Field("nextPageToken"),
				criterion.Field("nextSyncToken"),
				criterion.Field("items", append(DefaultCalendarFields(), criterion.Field("accessRole"))...),
			),
		),
	)
	query, err := query.Merge(crit)
	if err != nil {
		return nil, err
	}
	base := criterion.Build(query)

	list := &CalendarList{}
	pageToken := ""
	for page := 1; ; page++ {
		q := base
		if pageToken != "" {
			q = base.With("pageToken", pageToken)
		}

		var result calendarv3.CalendarList
		req := google.Request{Query: q, Operation: instrumentation.OperationList}
		if err := a.requester.SendRequest(ctx, http.MethodGet, "/calendar/v3/users/me/calendarList", req, &result); err != nil {
			return nil, fmt.Errorf("failed to list calendars (page %d): %w", page, err)
		}

		for _, entry := range result.Items {
			if entry != nil {
				list.Calendars = append(list.Calendars, calendarFromListEntry(entry))
			}
		}

		if result.NextPageToken == "" {
			list.SyncToken = result.NextSyncToken
			a.logger.Debug("calendars listed", logging.Operation("calendars.list"), slog.Int("count", len(list.Calendars)))
			return list, nil
		}
		pageToken = result.NextPageToken
	}
}

// Get fetches a single calendar.
func (a *CalendarAPI) Get(ctx context.Context, id string, crit *criterion.Criterion) (*Calendar, error) {
	query, err := criterion.Collection("", criterion.Collection("fields", DefaultCalendarFields()...)).Merge(crit)
	if err != nil {
		return nil, err
	}

	var res calendarv3.Calendar
	req := google.Request{Query: criterion.Build(query), Operation: instrumentation.OperationGet}
	if err := a.requester.SendRequest(ctx, http.MethodGet, "/calendar/v3/calendars/"+url.PathEscape(id), req, &res); err != nil {
		return nil, fmt.Errorf("failed to get calendar %s: %w", id, err)
	}

	return calendarFromResource(&res), nil
}

// Permissions fetches the ACL of cal and keeps the rules granted to single
// users. The result is also stored on cal.
func (a *CalendarAPI) Permissions(ctx context.Context, cal *Calendar, crit *criterion.Criterion) ([]UserPermission, error) {
	query, err := criterion.Collection("",
		criterion.Collection("fields",
			criterion.Field("",
				criterion.Field("nextPageToken"),
				criterion.Field("items",
					criterion.Field("role"),
					criterion.Field("scope", criterion.Field("type"), criterion.Field("value")),
				),
			),
		),
	).Merge(crit)
	if err != nil {
		return nil, err
	}
	base := criterion.Build(query)
	path := "/calendar/v3/calendars/" + url.PathEscape(cal.ID) + "/acl"

	var perms []UserPermission
	pageToken := ""
	for page := 1; ; page++ {
		q := base
		if pageToken != "" {
			q = base.With("pageToken", pageToken)
		}

		var result calendarv3.Acl
		req := google.Request{Query: q, Operation: instrumentation.OperationACL}
		if err := a.requester.SendRequest(ctx, http.MethodGet, path, req, &result); err != nil {
			return nil, fmt.Errorf("failed to list permissions of %s (page %d): %w", cal.ID, page, err)
		}

		for _, rule := range result.Items {
			if rule == nil || rule.Scope == nil || rule.Scope.Type != "user" {
				continue
			}
			perms = append(perms, UserPermission{
				Calendar: cal,
				User:     a.userFor(rule.Scope.Value),
				Role:     Role(rule.Role),
			})
		}

		if result.NextPageToken == "" {
			break
		}
		pageToken = result.NextPageToken
	}

	cal.setPermissions(perms)
	return perms, nil
}

func (a *CalendarAPI) userFor(email string) *google.User {
	if a.user.HasEmail(email) {
		return a.user
	}
	return google.NewUser("", email)
}
