package server

import (
	"context"
	"log/slog"
	"sync"

	"github.com/teemow/calendart/internal/calendar"
	"github.com/teemow/calendart/internal/gmail"
	"github.com/teemow/calendart/internal/google"
	"github.com/teemow/calendart/internal/instrumentation"
)

// Options configures a ServerContext.
type Options struct {
	// Requester sends the Google API requests, usually a *google.Adapter.
	Requester calendar.Requester
	// User is the account the requests are made for.
	User *google.User
	// Calendar is used when a tool call names no calendar.
	Calendar string
	Logger   *slog.Logger
	Metrics  *instrumentation.Metrics
	// AllowWrites registers the tools creating or patching events.
	AllowWrites bool
}

// ServerContext holds the API facades shared by the MCP tools.
type ServerContext struct {
	ctx    context.Context
	cancel context.CancelFunc

	requester       calendar.Requester
	user            *google.User
	defaultCalendar string
	logger          *slog.Logger
	metrics         *instrumentation.Metrics
	allowWrites     bool

	calendars *calendar.CalendarAPI
	mail      *gmail.MailAPI

	mu       sync.RWMutex
	shutdown bool
}

// NewServerContext creates a new server context
func NewServerContext(ctx context.Context, opts Options) *ServerContext {
	shutdownCtx, cancel := context.WithCancel(ctx)

	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Calendar == "" {
		opts.Calendar = "primary"
	}
	if opts.User == nil {
		opts.User = &google.User{}
	}

	return &ServerContext{
		ctx:             shutdownCtx,
		cancel:          cancel,
		requester:       opts.Requester,
		user:            opts.User,
		defaultCalendar: opts.Calendar,
		logger:          opts.Logger,
		metrics:         opts.Metrics,
		allowWrites:     opts.AllowWrites,
		calendars:       calendar.NewCalendarAPI(opts.Requester, opts.User, opts.Logger),
		mail:            gmail.NewMailAPI(opts.Requester, opts.Logger),
	}
}

// Context returns the server context
func (sc *ServerContext) Context() context.Context {
	return sc.ctx
}

// EventAPI returns an EventAPI for calendarID, or for the default calendar
// when it is empty. Each call gets its own home calendar so that concurrent
// tool calls never share an event set.
func (sc *ServerContext) EventAPI(calendarID string) *calendar.EventAPI {
	if calendarID == "" {
		calendarID = sc.defaultCalendar
	}
	return calendar.NewEventAPI(sc.requester, calendar.NewCalendar(calendarID, "", ""),
		calendar.WithEventLogger(sc.logger),
		calendar.WithEventMetrics(sc.metrics))
}

func (sc *ServerContext) CalendarAPI() *calendar.CalendarAPI {
	return sc.calendars
}

func (sc *ServerContext) MailAPI() *gmail.MailAPI {
	return sc.mail
}

func (sc *ServerContext) DefaultCalendar() string {
	return sc.defaultCalendar
}

func (sc *ServerContext) User() *google.User {
	return sc.user
}

func (sc *ServerContext) Logger() *slog.Logger {
	return sc.logger
}

// Metrics may be nil; its recorders are no-ops then.
func (sc *ServerContext) Metrics() *instrumentation.Metrics {
	return sc.metrics
}

// AllowWrites reports whether write tools are enabled.
func (sc *ServerContext) AllowWrites() bool {
	return sc.allowWrites
}

// IsShutdown returns whether the server has been shutdown
func (sc *ServerContext) IsShutdown() bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.shutdown
}

// Shutdown shuts down the server context
func (sc *ServerContext) Shutdown() error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.shutdown {
		return nil
	}

	sc.shutdown = true
	sc.cancel()
	return nil
}
