package calendar_tools

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/calendart/internal/calendar"
	"github.com/teemow/calendart/internal/criterion"
	"github.com/teemow/calendart/internal/server"
	"github.com/teemow/calendart/internal/tools/common"
)

// RegisterEventTools registers event-related tools with the MCP server. The
// create and patch tools are only registered when writes are allowed.
func RegisterEventTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	listEventsTool := mcp.NewTool("calendar_list_events",
		mcp.WithDescription("List the events of a calendar. Returns a sync token to pass back for incremental listings."),
		mcp.WithString("calendarId",
			mcp.Description("Calendar ID (defaults to the configured calendar)"),
		),
		mcp.WithString("timeMin",
			mcp.Description("Lower bound of the event end time (RFC3339, e.g. '2025-01-01T00:00:00Z'). Not allowed with syncToken."),
		),
		mcp.WithString("timeMax",
			mcp.Description("Upper bound of the event start time (RFC3339). Not allowed with syncToken."),
		),
		mcp.WithString("query",
			mcp.Description("Free text search in summary, description, location and attendees"),
		),
		mcp.WithString("syncToken",
			mcp.Description("Token returned by a previous listing; only changes since then are returned"),
		),
		mcp.WithBoolean("showDeleted",
			mcp.Description("Include cancelled events"),
		),
	)

	s.AddTool(listEventsTool, common.InstrumentedToolHandler("calendar_list_events", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleListEvents(ctx, request, sc)
		}))

	getEventTool := mcp.NewTool("calendar_get_event",
		mcp.WithDescription("Get details of a specific calendar event"),
		mcp.WithString("calendarId",
			mcp.Description("Calendar ID (defaults to the configured calendar)"),
		),
		mcp.WithString("eventId",
			mcp.Required(),
			mcp.Description("The ID of the event to retrieve"),
		),
	)

	s.AddTool(getEventTool, common.InstrumentedToolHandler("calendar_get_event", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleGetEvent(ctx, request, sc)
		}))

	if !sc.AllowWrites() {
		return nil
	}

	createEventTool := mcp.NewTool("calendar_create_event", append([]mcp.ToolOption{
		mcp.WithDescription("Create a new calendar event"),
		mcp.WithString("calendarId",
			mcp.Description("Calendar ID (defaults to the configured calendar)"),
		),
		mcp.WithString("summary",
			mcp.Required(),
			mcp.Description("Event title/summary"),
		),
		mcp.WithString("start",
			mcp.Required(),
			mcp.Description("Start time (RFC3339 format, e.g., '2025-01-15T14:00:00Z')"),
		),
		mcp.WithString("end",
			mcp.Required(),
			mcp.Description("End time (RFC3339 format, e.g., '2025-01-15T15:00:00Z')"),
		),
	}, eventFieldOptions()...)...,
	)

	s.AddTool(createEventTool, common.InstrumentedToolHandler("calendar_create_event", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleCreateEvent(ctx, request, sc)
		}))

	patchEventTool := mcp.NewTool("calendar_patch_event", append([]mcp.ToolOption{
		mcp.WithDescription("Change some fields of an existing event. Fields that are not given are left untouched."),
		mcp.WithString("calendarId",
			mcp.Description("Calendar ID (defaults to the configured calendar)"),
		),
		mcp.WithString("eventId",
			mcp.Required(),
			mcp.Description("The ID of the event to patch"),
		),
		mcp.WithString("summary",
			mcp.Description("New event title/summary"),
		),
		mcp.WithString("start",
			mcp.Description("New start time (RFC3339)"),
		),
		mcp.WithString("end",
			mcp.Description("New end time (RFC3339)"),
		),
		mcp.WithString("status",
			mcp.Description("confirmed, tentative or cancelled"),
		),
	}, eventFieldOptions()...)...,
	)

	s.AddTool(patchEventTool, common.InstrumentedToolHandler("calendar_patch_event", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handlePatchEvent(ctx, request, sc)
		}))

	return nil
}

// eventFieldOptions are the optional fields shared by create and patch.
func eventFieldOptions() []mcp.ToolOption {
	return []mcp.ToolOption{
		mcp.WithString("description",
			mcp.Description("Event description"),
		),
		mcp.WithString("location",
			mcp.Description("Event location"),
		),
		mcp.WithString("timeZone",
			mcp.Description("IANA time zone of start and end (e.g., 'America/New_York')"),
		),
		mcp.WithString("attendees",
			mcp.Description("Comma-separated list of attendee email addresses"),
		),
		mcp.WithString("recurrence",
			mcp.Description("Recurrence rule (e.g., 'RRULE:FREQ=WEEKLY;BYDAY=MO,WE,FR')"),
		),
		mcp.WithBoolean("allDay",
			mcp.Description("All-day event; the time of start and end is ignored"),
		),
		mcp.WithBoolean("stackable",
			mcp.Description("Do not block time on the calendar"),
		),
		mcp.WithBoolean("sendNotifications",
			mcp.Description("Notify attendees of the change"),
		),
	}
}

func handleListEvents(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	api := sc.EventAPI(common.StringArg(args, "calendarId", ""))

	crit := criterion.Collection("")
	for _, key := range []string{"timeMin", "timeMax"} {
		t, err := common.TimeArg(args, key)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if !t.IsZero() {
			crit.AddCriterion(criterion.Filter(key, t.Format(time.RFC3339)))
		}
	}
	if q := common.StringArg(args, "query", ""); q != "" {
		crit.AddCriterion(criterion.Filter("q", q))
	}
	if token := common.StringArg(args, "syncToken", ""); token != "" {
		crit.AddCriterion(criterion.Filter("syncToken", token))
	}
	if deleted, ok := common.BoolArg(args, "showDeleted"); ok && deleted {
		crit.AddCriterion(criterion.Flag("showDeleted"))
	}

	events, err := api.List(ctx, crit)
	if err != nil {
		return common.ErrorResult("Failed to list events", err), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d events:\n\n", events.Len())
	i := 0
	for e := range events.All() {
		i++
		fmt.Fprintf(&b, "%d. ", i)
		writeEvent(&b, e)
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "Sync token: %s\n", api.Calendar().SyncToken)

	return mcp.NewToolResultText(b.String()), nil
}

func handleGetEvent(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	eventID := common.StringArg(args, "eventId", "")
	if eventID == "" {
		return mcp.NewToolResultError("eventId is required"), nil
	}

	event, err := sc.EventAPI(common.StringArg(args, "calendarId", "")).Get(ctx, eventID, nil)
	if err != nil {
		return common.ErrorResult("Failed to get event", err), nil
	}

	var b strings.Builder
	writeEvent(&b, event)
	return mcp.NewToolResultText(b.String()), nil
}

func handleCreateEvent(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	api := sc.EventAPI(common.StringArg(args, "calendarId", ""))

	summary := common.StringArg(args, "summary", "")
	if summary == "" {
		return mcp.NewToolResultError("summary is required"), nil
	}

	event := calendar.NewEvent(api.Calendar())
	event.SetName(summary)
	if err := applyEventArgs(event, args); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if event.Start().IsZero() || event.End().IsZero() {
		return mcp.NewToolResultError("start and end are required"), nil
	}

	created, err := api.Persist(ctx, event, persistOptions(args)...)
	if err != nil {
		return common.ErrorResult("Failed to create event", err), nil
	}

	var b strings.Builder
	b.WriteString("Event created.\n\n")
	writeEvent(&b, created)
	return mcp.NewToolResultText(b.String()), nil
}

func handlePatchEvent(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	api := sc.EventAPI(common.StringArg(args, "calendarId", ""))

	eventID := common.StringArg(args, "eventId", "")
	if eventID == "" {
		return mcp.NewToolResultError("eventId is required"), nil
	}

	patch := calendar.NewPartialEvent(api.Calendar(), eventID)
	if summary := common.StringArg(args, "summary", ""); summary != "" {
		patch.SetName(summary)
	}
	if status := common.StringArg(args, "status", ""); status != "" {
		patch.SetStatus(calendar.Status(status))
	}
	if err := applyEventArgs(patch.Event, args); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(patch.Changed()) == 0 {
		return mcp.NewToolResultError("nothing to change"), nil
	}

	updated, err := api.Persist(ctx, patch, persistOptions(args)...)
	if err != nil {
		return common.ErrorResult("Failed to patch event", err), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Event patched (%s).\n\n", strings.Join(patch.Changed(), ", "))
	writeEvent(&b, updated)
	return mcp.NewToolResultText(b.String()), nil
}

// applyEventArgs sets the fields given in args. Absent arguments leave the
// event untouched.
func applyEventArgs(e *calendar.Event, args map[string]any) error {
	start, err := common.TimeArg(args, "start")
	if err != nil {
		return err
	}
	end, err := common.TimeArg(args, "end")
	if err != nil {
		return err
	}
	if !start.IsZero() && !end.IsZero() && end.Before(start) {
		return fmt.Errorf("end %s is before start %s", end.Format(time.RFC3339), start.Format(time.RFC3339))
	}

	// allDay and timeZone rewrite both boundaries.
	allDay, hasAllDay := common.BoolArg(args, "allDay")
	tz := common.StringArg(args, "timeZone", "")
	if (hasAllDay || tz != "") && (start.IsZero() || end.IsZero()) {
		return errors.New("allDay and timeZone need both start and end")
	}
	if tz != "" {
		if _, err := time.LoadLocation(tz); err != nil {
			return fmt.Errorf("invalid timeZone %q", tz)
		}
		e.SetTimeZone(tz)
	}
	if hasAllDay {
		e.SetAllDay(allDay)
	}
	if !start.IsZero() {
		e.SetStart(start)
	}
	if !end.IsZero() {
		e.SetEnd(end)
	}

	if v := common.StringArg(args, "description", ""); v != "" {
		e.SetDescription(v)
	}
	if v := common.StringArg(args, "location", ""); v != "" {
		e.SetLocation(v)
	}
	if stackable, ok := common.BoolArg(args, "stackable"); ok {
		e.SetStackable(stackable)
	}
	if attendees := common.ListArg(args, "attendees"); len(attendees) > 0 {
		ps := make([]calendar.Participation, 0, len(attendees))
		for _, email := range attendees {
			ps = append(ps, calendar.Participation{Email: email, Status: calendar.ResponseNeedsAction})
		}
		e.SetParticipations(ps)
	}
	if rule := common.StringArg(args, "recurrence", ""); rule != "" {
		e.SetRecurrence([]string{rule})
	}
	return nil
}

func persistOptions(args map[string]any) []calendar.PersistOption {
	if send, ok := common.BoolArg(args, "sendNotifications"); ok {
		return []calendar.PersistOption{calendar.WithSendNotifications(send)}
	}
	return nil
}

func writeEvent(b *strings.Builder, e *calendar.Event) {
	name := e.Name()
	if name == "" {
		name = "(no title)"
	}
	fmt.Fprintf(b, "%s\n", name)
	fmt.Fprintf(b, "   ID: %s\n", e.ID())
	if e.IsCancelled() {
		b.WriteString("   Status: cancelled\n")
		return
	}
	if e.Calendar() != nil && e.Organizer() != nil && !e.Organizer().Self {
		fmt.Fprintf(b, "   Calendar: %s\n", e.Calendar().ID)
	}

	layout := time.RFC3339
	if e.AllDay() {
		layout = time.DateOnly
	}
	if !e.Start().IsZero() {
		fmt.Fprintf(b, "   Start: %s\n", e.Start().Format(layout))
	}
	if !e.End().IsZero() {
		fmt.Fprintf(b, "   End: %s\n", e.End().Format(layout))
	}
	if e.Location() != "" {
		fmt.Fprintf(b, "   Location: %s\n", e.Location())
	}
	if len(e.Recurrence()) > 0 {
		fmt.Fprintf(b, "   Recurrence: %s\n", strings.Join(e.Recurrence(), "; "))
	}
	if ps := e.Participations(); len(ps) > 0 {
		fmt.Fprintf(b, "   Attendees: %d\n", len(ps))
	}
	if e.HTMLLink() != "" {
		fmt.Fprintf(b, "   Link: %s\n", e.HTMLLink())
	}
}
