package calendar

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"go.opentelemetry.io/otel/attribute"
	calendarv3 "google.golang.org/api/calendar/v3"

	"github.com/teemow/calendart/internal/criterion"
	"github.com/teemow/calendart/internal/google"
	"github.com/teemow/calendart/internal/instrumentation"
	"github.com/teemow/calendart/internal/logging"
)

// ErrMissingSyncToken is returned when the last page of a listing carries no
// nextSyncToken.
var ErrMissingSyncToken = errors.New("last page of the event listing has no nextSyncToken")

// DefaultEventFields is the field selection of an event item.
func DefaultEventFields() []*criterion.Criterion {
	return []*criterion.Criterion{
		criterion.Field("id"),
		criterion.Field("end"),
		criterion.Field("etag"),
		criterion.Field("start"),
		criterion.Field("status"),
		criterion.Field("created"),
		criterion.Field("updated"),
		criterion.Field("summary"),
		criterion.Field("location"),
		criterion.Field("organizer"),
		criterion.Field("description"),
		criterion.Field("visibility"),
		criterion.Field("transparency"),
		criterion.Field("recurrence"),
		criterion.Field("recurringEventId"),
		criterion.Field("endTimeUnspecified"),
		criterion.Field("htmlLink"),
		criterion.Field("creator",
			criterion.Field("email"),
			criterion.Field("displayName"),
		),
		criterion.Field("attendees",
			criterion.Field("email"),
			criterion.Field("resource"),
			criterion.Field("optional"),
			criterion.Field("organizer"),
			criterion.Field("displayName"),
			criterion.Field("responseStatus"),
		),
	}
}

// EventAPI lists, fetches and writes the events of one calendar, the home
// calendar. A single EventAPI must not be used by concurrent listings.
type EventAPI struct {
	requester Requester
	home      *Calendar
	logger    *slog.Logger
	metrics   *instrumentation.Metrics
}

type EventAPIOption func(*EventAPI)

func WithEventLogger(logger *slog.Logger) EventAPIOption {
	return func(a *EventAPI) {
		a.logger = logger
	}
}

func WithEventMetrics(metrics *instrumentation.Metrics) EventAPIOption {
	return func(a *EventAPI) {
		a.metrics = metrics
	}
}

func NewEventAPI(r Requester, home *Calendar, opts ...EventAPIOption) *EventAPI {
	a := &EventAPI{
		requester: r,
		home:      home,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.logger = logging.WithCalendar(logging.WithService(a.logger, instrumentation.ServiceCalendar), home.ID)
	return a
}

// Calendar returns the home calendar.
func (a *EventAPI) Calendar() *Calendar {
	return a.home
}

func (a *EventAPI) eventsPath() string {
	return "/calendar/v3/calendars/" + url.PathEscape(a.home.ID) + "/events"
}

// listQuery is the base listing query merged with the caller's criteria, which
// must be an anonymous collection.
func listQuery(crit *criterion.Criterion) (*criterion.Criterion, error) {
	items := criterion.Field("items", DefaultEventFields()...)
	query := criterion.Collection("",
		criterion.Collection("fields",
			criterion.Field("",
				criterion.Field("nextSyncToken"),
				criterion.Field("nextPageToken"),
				items,
			),
		),
	)

	if crit == nil {
		return query, nil
	}
	return query.Merge(crit)
}

// showDeleted tells whether cancelled events were requested. An absent
// criterion means they were not.
func showDeleted(query *criterion.Criterion) bool {
	c, err := query.GetCriterion("showDeleted")
	if err != nil {
		return false
	}
	return c.Truthy()
}

// List fetches every page of the home calendar's events, in order, and stores
// the final sync token on the home calendar.
//
// crit is merged into the default query; pass e.g.
//
//	criterion.Collection("", criterion.Filter("syncToken", token), criterion.Flag("showDeleted"))
//
// Cancelled events are skipped unless showDeleted is set. Events organized by
// another calendar are attached to a calendar built from their organizer and
// also added to the home calendar's events. Events are attached once the last
// page is read; a failed listing leaves every calendar untouched.
func (a *EventAPI) List(ctx context.Context, crit *criterion.Criterion) (_ *EventSet, err error) {
	query, err := listQuery(crit)
	if err != nil {
		return nil, err
	}

	deleted := showDeleted(query)
	base := criterion.Build(query)

	ctx, span := instrumentation.StartSyncSpan(ctx, a.home.ID)
	defer func() { instrumentation.EndSpan(span, err) }()

	logger := logging.WithOperation(a.logger, "events.list")
	calendars := newOwners(a.home)
	list := NewEventSet()
	pageToken := ""

	for page := 1; ; page++ {
		q := base
		if pageToken != "" {
			q = base.With("pageToken", pageToken)
		}

		var result calendarv3.Events
		req := google.Request{Query: q, Operation: instrumentation.OperationList}
		if err := a.requester.SendRequest(ctx, http.MethodGet, a.eventsPath(), req, &result); err != nil {
			return nil, fmt.Errorf("failed to list events (page %d): %w", page, err)
		}

		kept := 0
		for _, item := range result.Items {
			if item == nil {
				continue
			}
			if !deleted && Status(item.Status) == StatusCancelled {
				continue
			}

			event, err := a.hydrate(ctx, item, calendars)
			if err != nil {
				return nil, err
			}
			list.Add(event)
			kept++
		}

		a.metrics.RecordSyncPage(ctx, a.home.ID, kept)
		instrumentation.AddSpanEvent(span, "page",
			attribute.Int(instrumentation.SpanAttrPage, page),
			attribute.Int("items", len(result.Items)),
		)
		logger.Debug("event page fetched",
			logging.Page(page),
			slog.Int("items", len(result.Items)),
			slog.Int("kept", kept),
			slog.Bool("has_next", result.NextPageToken != ""))

		if result.NextPageToken == "" {
			if result.NextSyncToken == "" {
				return nil, fmt.Errorf("calendar %s, page %d: %w", a.home.ID, page, ErrMissingSyncToken)
			}
			for event := range list.All() {
				a.attach(event)
			}
			a.home.SyncToken = result.NextSyncToken
			logger.Debug("sync token stored", slog.String("token", logging.SanitizeToken(result.NextSyncToken)))
			return list, nil
		}

		pageToken = result.NextPageToken
	}
}

// hydrate builds the event of item for its owning calendar without attaching
// it.
func (a *EventAPI) hydrate(ctx context.Context, item *calendarv3.Event, calendars owners) (*Event, error) {
	owner, err := calendars.resolve(a.home, item)
	if err != nil {
		a.logger.DebugContext(ctx, "organizer not resolvable, using home calendar",
			slog.String("event", item.Id), logging.Err(err))
	}

	event, err := buildEvent(owner, item)
	if err != nil {
		return nil, fmt.Errorf("failed to hydrate event %s: %w", item.Id, err)
	}
	return event, nil
}

// attach adds event to its calendar. Foreign events are also collected by the
// home calendar.
func (a *EventAPI) attach(event *Event) {
	event.Calendar().Events().Add(event)
	if event.Calendar() != a.home {
		a.home.Events().Add(event)
	}
}

// Get fetches a single event of the home calendar. crit is merged into the
// default query like for List.
func (a *EventAPI) Get(ctx context.Context, id string, crit *criterion.Criterion) (*Event, error) {
	query := criterion.Collection("", criterion.Collection("fields", DefaultEventFields()...))
	if crit != nil {
		var err error
		if query, err = query.Merge(crit); err != nil {
			return nil, err
		}
	}

	var item calendarv3.Event
	req := google.Request{Query: criterion.Build(query), Operation: instrumentation.OperationGet}
	if err := a.requester.SendRequest(ctx, http.MethodGet, a.eventsPath()+"/"+url.PathEscape(id), req, &item); err != nil {
		return nil, fmt.Errorf("failed to get event %s: %w", id, err)
	}

	owner, err := newOwners(a.home).resolve(a.home, &item)
	if err != nil {
		a.logger.DebugContext(ctx, "organizer not resolvable, using home calendar",
			slog.String("event", item.Id), logging.Err(err))
	}

	event, err := HydrateEvent(owner, &item)
	if err != nil {
		return nil, fmt.Errorf("failed to hydrate event %s: %w", id, err)
	}
	return event, nil
}

// Persistable is an event that can be written by Persist: *Event for a full
// write, *PartialEvent for a patch of the changed fields.
type Persistable interface {
	ID() string
	Calendar() *Calendar
	Export() map[string]any
}

type persistOptions struct {
	sendNotifications *bool
}

// PersistOption configures Persist.
type PersistOption func(*persistOptions)

// WithSendNotifications asks Google to notify attendees of the change.
func WithSendNotifications(send bool) PersistOption {
	return func(o *persistOptions) {
		o.sendNotifications = &send
	}
}

// Persist patches the event when it has an id and creates it otherwise. The
// response is hydrated into the home calendar.
func (a *EventAPI) Persist(ctx context.Context, event Persistable, opts ...PersistOption) (*Event, error) {
	if event == nil {
		return nil, errors.New("no event to persist")
	}

	var o persistOptions
	for _, opt := range opts {
		opt(&o)
	}

	cal := event.Calendar()
	if cal == nil {
		cal = a.home
	}

	method := http.MethodPost
	operation := instrumentation.OperationCreate
	path := "/calendar/v3/calendars/" + url.PathEscape(cal.ID) + "/events"
	if id := event.ID(); id != "" {
		method = http.MethodPatch
		operation = instrumentation.OperationPatch
		path += "/" + url.PathEscape(id)
	}

	query := criterion.Query{}
	if o.sendNotifications != nil {
		query["sendNotifications"] = strconv.FormatBool(*o.sendNotifications)
	}

	var item calendarv3.Event
	req := google.Request{Query: query, Body: event.Export(), Operation: operation}
	if err := a.requester.SendRequest(ctx, method, path, req, &item); err != nil {
		return nil, fmt.Errorf("failed to persist event: %w", err)
	}

	persisted, err := HydrateEvent(a.home, &item)
	if err != nil {
		return nil, fmt.Errorf("failed to hydrate persisted event %s: %w", item.Id, err)
	}
	return persisted, nil
}
