package cmd

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/teemow/calendart/internal/calendar"
	"github.com/teemow/calendart/internal/criterion"
)

func newEventsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "events",
		Short: "List, get, create and patch calendar events",
	}

	cmd.AddCommand(newEventsListCmd())
	cmd.AddCommand(newEventsGetCmd())
	cmd.AddCommand(newEventsCreateCmd())
	cmd.AddCommand(newEventsPatchCmd())

	return cmd
}

func newEventsListCmd() *cobra.Command {
	var (
		calendarID   string
		syncToken    string
		timeMin      string
		timeMax      string
		query        string
		showDeleted  bool
		singleEvents bool
		expand       bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the events of a calendar",
		Long: `List every event of a calendar, following all pages. The sync token of the
listing is printed last; pass it to --sync-token to list only what changed since.

With --expand, recurring events are expanded into their occurrences between
--time-min and --time-max.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			crit := criterion.Collection("")
			if syncToken != "" {
				if timeMin != "" || timeMax != "" || query != "" {
					return errors.New("--sync-token cannot be combined with --time-min, --time-max or --query")
				}
				crit.AddCriterion(criterion.Filter("syncToken", syncToken))
			}

			var from, to time.Time
			for _, bound := range []struct {
				name  string
				value string
				into  *time.Time
			}{{"timeMin", timeMin, &from}, {"timeMax", timeMax, &to}} {
				if bound.value == "" {
					continue
				}
				t, err := parseTime(bound.value)
				if err != nil {
					return err
				}
				*bound.into = t
				crit.AddCriterion(criterion.Filter(bound.name, t.Format(time.RFC3339)))
			}
			if expand && (from.IsZero() || to.IsZero()) {
				return errors.New("--expand needs --time-min and --time-max")
			}

			if query != "" {
				crit.AddCriterion(criterion.Filter("q", query))
			}
			if showDeleted {
				crit.AddCriterion(criterion.Flag("showDeleted"))
			}
			if singleEvents {
				crit.AddCriterion(criterion.Flag("singleEvents"))
			}

			a, err := newApp(ctx, nil)
			if err != nil {
				return err
			}
			api := a.eventAPI(calendarID)

			events, err := api.List(ctx, crit)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for e := range events.All() {
				if !expand {
					printEvent(out, e)
					continue
				}
				occurrences, err := e.Occurrences(from, to)
				if err != nil {
					logger.Warn("skipping event", "id", e.ID(), "error", err)
					continue
				}
				for _, o := range occurrences {
					fmt.Fprintf(out, "%s\t%s\t%s\n", formatTime(o.Start, e.AllDay()), formatTime(o.End, e.AllDay()), e.Name())
				}
			}
			fmt.Fprintf(out, "sync token: %s\n", api.Calendar().SyncToken)
			return nil
		},
	}

	cmd.Flags().StringVar(&calendarID, "calendar", "", "Calendar ID (default: the configured calendar)")
	cmd.Flags().StringVar(&syncToken, "sync-token", "", "Only list the changes since the listing that returned this token")
	cmd.Flags().StringVar(&timeMin, "time-min", "", "Lower bound of the event end time (RFC3339 or YYYY-MM-DD)")
	cmd.Flags().StringVar(&timeMax, "time-max", "", "Upper bound of the event start time (RFC3339 or YYYY-MM-DD)")
	cmd.Flags().StringVar(&query, "query", "", "Free text search")
	cmd.Flags().BoolVar(&showDeleted, "show-deleted", false, "Include cancelled events")
	cmd.Flags().BoolVar(&singleEvents, "single-events", false, "Let Google expand recurring events into instances")
	cmd.Flags().BoolVar(&expand, "expand", false, "Expand recurring events locally between --time-min and --time-max")

	return cmd
}

func newEventsGetCmd() *cobra.Command {
	var calendarID string

	cmd := &cobra.Command{
		Use:   "get EVENT_ID",
		Short: "Get a single event",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), nil)
			if err != nil {
				return err
			}

			e, err := a.eventAPI(calendarID).Get(cmd.Context(), args[0], nil)
			if err != nil {
				return err
			}
			printEvent(cmd.OutOrStdout(), e)
			return nil
		},
	}

	cmd.Flags().StringVar(&calendarID, "calendar", "", "Calendar ID (default: the configured calendar)")

	return cmd
}

// eventFlags are the writable fields shared by create and patch.
type eventFlags struct {
	calendarID  string
	summary     string
	description string
	location    string
	start       string
	end         string
	timeZone    string
	allDay      bool
	stackable   bool
	visibility  string
	status      string
	attendees   []string
	recurrence  []string
	notify      bool
}

func (f *eventFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.calendarID, "calendar", "", "Calendar ID (default: the configured calendar)")
	cmd.Flags().StringVar(&f.summary, "summary", "", "Event title")
	cmd.Flags().StringVar(&f.description, "description", "", "Event description")
	cmd.Flags().StringVar(&f.location, "location", "", "Event location")
	cmd.Flags().StringVar(&f.start, "start", "", "Start (RFC3339, or YYYY-MM-DD with --all-day)")
	cmd.Flags().StringVar(&f.end, "end", "", "End (RFC3339, or YYYY-MM-DD with --all-day)")
	cmd.Flags().StringVar(&f.timeZone, "time-zone", "", "IANA time zone of start and end")
	cmd.Flags().BoolVar(&f.allDay, "all-day", false, "All-day event")
	cmd.Flags().BoolVar(&f.stackable, "stackable", false, "Do not block time on the calendar")
	cmd.Flags().StringVar(&f.visibility, "visibility", "", "default, public, private or confidential")
	cmd.Flags().StringSliceVar(&f.attendees, "attendee", nil, "Attendee email (repeatable)")
	cmd.Flags().StringSliceVar(&f.recurrence, "recurrence", nil, "RRULE, EXRULE, RDATE or EXDATE line (repeatable)")
	cmd.Flags().BoolVar(&f.notify, "notify", false, "Send notifications to attendees")
}

// apply sets the fields whose flag was given.
func (f *eventFlags) apply(cmd *cobra.Command, e *calendar.Event) error {
	changed := cmd.Flags().Changed

	var start, end time.Time
	var err error
	if changed("start") {
		if start, err = parseTime(f.start); err != nil {
			return err
		}
	}
	if changed("end") {
		if end, err = parseTime(f.end); err != nil {
			return err
		}
	}
	if !start.IsZero() && !end.IsZero() && end.Before(start) {
		return fmt.Errorf("end %s is before start %s", f.end, f.start)
	}
	if (changed("all-day") || changed("time-zone")) && (start.IsZero() || end.IsZero()) {
		return errors.New("--all-day and --time-zone need both --start and --end")
	}

	if changed("summary") {
		e.SetName(f.summary)
	}
	if changed("description") {
		e.SetDescription(f.description)
	}
	if changed("location") {
		e.SetLocation(f.location)
	}
	if changed("time-zone") {
		if _, err := time.LoadLocation(f.timeZone); err != nil {
			return fmt.Errorf("invalid time zone %q: %w", f.timeZone, err)
		}
		e.SetTimeZone(f.timeZone)
	}
	if changed("all-day") {
		e.SetAllDay(f.allDay)
	}
	if !start.IsZero() {
		e.SetStart(start)
	}
	if !end.IsZero() {
		e.SetEnd(end)
	}
	if changed("stackable") {
		e.SetStackable(f.stackable)
	}
	if changed("visibility") {
		e.SetVisibility(f.visibility)
	}
	if changed("status") {
		e.SetStatus(calendar.Status(f.status))
	}
	if changed("attendee") {
		ps := make([]calendar.Participation, 0, len(f.attendees))
		for _, email := range f.attendees {
			ps = append(ps, calendar.Participation{Email: email, Status: calendar.ResponseNeedsAction})
		}
		e.SetParticipations(ps)
	}
	if changed("recurrence") {
		e.SetRecurrence(f.recurrence)
	}
	return nil
}

func (f *eventFlags) persistOptions(cmd *cobra.Command) []calendar.PersistOption {
	if !cmd.Flags().Changed("notify") {
		return nil
	}
	return []calendar.PersistOption{calendar.WithSendNotifications(f.notify)}
}

func newEventsCreateCmd() *cobra.Command {
	var flags eventFlags

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an event",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), nil)
			if err != nil {
				return err
			}
			api := a.eventAPI(flags.calendarID)

			e := calendar.NewEvent(api.Calendar())
			if err := flags.apply(cmd, e); err != nil {
				return err
			}

			created, err := api.Persist(cmd.Context(), e, flags.persistOptions(cmd)...)
			if err != nil {
				return err
			}
			printEvent(cmd.OutOrStdout(), created)
			return nil
		},
	}

	flags.register(cmd)
	_ = cmd.MarkFlagRequired("summary")
	_ = cmd.MarkFlagRequired("start")
	_ = cmd.MarkFlagRequired("end")

	return cmd
}

func newEventsPatchCmd() *cobra.Command {
	var flags eventFlags

	cmd := &cobra.Command{
		Use:   "patch EVENT_ID",
		Short: "Change some fields of an event",
		Long: `Send only the fields given on the command line; the event does not need to be
fetched first and every other field is left untouched.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), nil)
			if err != nil {
				return err
			}
			api := a.eventAPI(flags.calendarID)

			patch := calendar.NewPartialEvent(api.Calendar(), args[0])
			if err := flags.apply(cmd, patch.Event); err != nil {
				return err
			}
			if len(patch.Changed()) == 0 {
				return errors.New("nothing to change")
			}
			logger.Debug("patching event", "id", args[0], "fields", strings.Join(patch.Changed(), ","))

			updated, err := api.Persist(cmd.Context(), patch, flags.persistOptions(cmd)...)
			if err != nil {
				return err
			}
			printEvent(cmd.OutOrStdout(), updated)
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&flags.status, "status", "", "confirmed, tentative or cancelled")

	return cmd
}

// parseTime accepts RFC3339 timestamps and YYYY-MM-DD dates, the latter at
// midnight UTC.
func parseTime(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time %q: expected RFC3339 or YYYY-MM-DD", s)
	}
	return t, nil
}

func formatTime(t time.Time, allDay bool) string {
	if t.IsZero() {
		return "-"
	}
	if allDay {
		return t.Format(time.DateOnly)
	}
	return t.Format(time.RFC3339)
}

func printEvent(w io.Writer, e *calendar.Event) {
	if e.IsCancelled() {
		fmt.Fprintf(w, "%s\tcancelled\n", e.ID())
		return
	}
	name := e.Name()
	if name == "" {
		name = "(no title)"
	}
	fmt.Fprintf(w, "%s\t%s\t%s\t%s", e.ID(), formatTime(e.Start(), e.AllDay()), formatTime(e.End(), e.AllDay()), name)
	if cal := e.Calendar(); cal != nil && e.Organizer() != nil && !e.Organizer().Self {
		fmt.Fprintf(w, "\t(%s)", cal.ID)
	}
	if len(e.Recurrence()) > 0 {
		fmt.Fprintf(w, "\t[%s]", strings.Join(e.Recurrence(), " "))
	}
	fmt.Fprintln(w)
}
