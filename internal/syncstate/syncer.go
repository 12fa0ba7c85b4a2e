package syncstate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/teemow/calendart/internal/calendar"
	"github.com/teemow/calendart/internal/criterion"
	"github.com/teemow/calendart/internal/google"
	"github.com/teemow/calendart/internal/instrumentation"
	"github.com/teemow/calendart/internal/logging"
)

// Result describes one synchronisation of a calendar.
type Result struct {
	// Mode is instrumentation.SyncModeFull or SyncModeIncremental.
	Mode   string
	Events *calendar.EventSet
	// Cancelled counts the events reported as deleted.
	Cancelled int
}

// Syncer lists the events of a calendar from its stored sync token and stores
// the token of the listing.
type Syncer struct {
	Store   *Store
	Logger  *slog.Logger
	Metrics *instrumentation.Metrics
	// ShowDeleted asks for cancelled events so deletions are reported.
	ShowDeleted bool

	now func() time.Time
}

// Run synchronises the home calendar of api. Without a stored token, or when
// Google reports the stored token as expired, all events are listed.
func (s *Syncer) Run(ctx context.Context, api *calendar.EventAPI) (Result, error) {
	id := api.Calendar().ID
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logging.WithCalendar(logging.WithOperation(logger, "sync"), id)

	token := s.Store.SyncToken(id)
	res, err := s.list(ctx, api, token)
	if err != nil && token != "" && errors.Is(err, google.ErrGone) {
		logger.Warn("sync token expired, listing all events")
		if err := s.Store.Reset(id); err != nil {
			return Result{}, err
		}
		res, err = s.list(ctx, api, "")
	}
	if err != nil {
		s.Metrics.RecordSyncRun(ctx, res.Mode, instrumentation.StatusError)
		return res, err
	}

	now := time.Now
	if s.now != nil {
		now = s.now
	}
	entry := Entry{
		SyncToken: api.Calendar().SyncToken,
		UpdatedAt: now().UTC(),
		Events:    res.Events.Len(),
	}
	if err := s.Store.Put(id, entry); err != nil {
		s.Metrics.RecordSyncRun(ctx, res.Mode, instrumentation.StatusError)
		return res, err
	}

	s.Metrics.RecordSyncRun(ctx, res.Mode, instrumentation.StatusSuccess)
	logger.Info("calendar synchronised",
		slog.String("mode", res.Mode),
		slog.Int("events", res.Events.Len()),
		slog.Int("cancelled", res.Cancelled))
	return res, nil
}

func (s *Syncer) list(ctx context.Context, api *calendar.EventAPI, token string) (Result, error) {
	res := Result{Mode: instrumentation.SyncModeFull}

	crit := criterion.Collection("")
	if token != "" {
		res.Mode = instrumentation.SyncModeIncremental
		crit.AddCriterion(criterion.Filter("syncToken", token))
	}
	if s.ShowDeleted {
		crit.AddCriterion(criterion.Flag("showDeleted"))
	}

	events, err := api.List(ctx, crit)
	if err != nil {
		return res, fmt.Errorf("%s synchronisation of %s: %w", res.Mode, api.Calendar().ID, err)
	}

	res.Events = events
	for e := range events.All() {
		if e.IsCancelled() {
			res.Cancelled++
		}
	}
	return res, nil
}
