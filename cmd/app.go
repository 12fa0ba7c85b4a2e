package cmd

import (
	"context"
	"fmt"

	"github.com/teemow/calendart/internal/calendar"
	"github.com/teemow/calendart/internal/config"
	"github.com/teemow/calendart/internal/gmail"
	"github.com/teemow/calendart/internal/google"
	"github.com/teemow/calendart/internal/instrumentation"
)

// app is what every command needs to talk to Google.
type app struct {
	cfg     *config.Config
	adapter *google.Adapter
	metrics *instrumentation.Metrics
}

// loadConfig reads the config file named by --config, or the default one.
func loadConfig() (*config.Config, error) {
	path := configPath
	if path == "" {
		p, err := config.DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if emails := parseCommaSeparatedList(userEmails); emails != nil {
		cfg.UserEmails = emails
	}
	return cfg, nil
}

// newApp loads the configuration and builds the authenticated adapter.
// metrics may be nil.
func newApp(ctx context.Context, metrics *instrumentation.Metrics) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	ts, err := google.TokenSource(ctx, google.Credentials{
		AccessToken:  cfg.AccessToken,
		TokenFile:    cfg.TokenFile,
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load Google credentials: %w", err)
	}

	adapter := google.NewAdapter(google.NewHTTPClient(ctx, ts),
		google.WithBaseURL(cfg.Endpoint),
		google.WithLogger(logger),
		google.WithMetrics(metrics),
		google.WithUser(google.NewUser("", cfg.UserEmails...)),
	)

	return &app{cfg: cfg, adapter: adapter, metrics: metrics}, nil
}

// calendarID returns id, or the configured calendar when id is empty.
func (a *app) calendarID(id string) string {
	if id == "" {
		return a.cfg.Calendar
	}
	return id
}

func (a *app) eventAPI(calendarID string) *calendar.EventAPI {
	return a.eventAPIFor(calendar.NewCalendar(a.calendarID(calendarID), "", ""))
}

func (a *app) eventAPIFor(home *calendar.Calendar) *calendar.EventAPI {
	return calendar.NewEventAPI(a.adapter, home,
		calendar.WithEventLogger(logger),
		calendar.WithEventMetrics(a.metrics))
}

func (a *app) calendarAPI() *calendar.CalendarAPI {
	return calendar.NewCalendarAPI(a.adapter, a.adapter.User(), logger)
}

func (a *app) mailAPI() *gmail.MailAPI {
	return gmail.NewMailAPI(a.adapter, logger)
}
