package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/teemow/calendart/internal/config"
	"github.com/teemow/calendart/internal/instrumentation"
	"github.com/teemow/calendart/internal/logging"
	"github.com/teemow/calendart/internal/syncstate"
)

func newSyncCmd() *cobra.Command {
	var (
		calendarID  string
		schedule    string
		metricsAddr string
		full        bool
	)

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Incrementally synchronise a calendar",
		Long: `List the events changed since the previous run, using the sync token stored in
the state file, and store the new token. The first run, --full, and a token
rejected by Google as expired list every event.

With --schedule (or sync.schedule in the config file) the synchronisation is
repeated on a cron schedule, e.g. "*/15 * * * *", until interrupted. A
scheduled sync serves /metrics and /healthz on --metrics-addr (or
metrics_addr in the config file, or METRICS_ADDR).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			telemetry := instrumentation.DefaultConfig()
			telemetry.ServiceVersion = version
			provider, err := instrumentation.NewProvider(ctx, telemetry)
			if err != nil {
				return err
			}
			defer func() {
				if err := provider.Shutdown(context.Background()); err != nil {
					logger.Warn("instrumentation shutdown failed", "error", err)
				}
			}()

			a, err := newApp(ctx, provider.Metrics())
			if err != nil {
				return err
			}

			statePath := a.cfg.StateFile
			if statePath == "" {
				if statePath, err = config.DefaultStateFile(); err != nil {
					return err
				}
			}
			store, err := syncstate.Open(statePath)
			if err != nil {
				return err
			}

			id := a.calendarID(calendarID)
			if full {
				if err := store.Reset(id); err != nil {
					return err
				}
			}
			run := newSyncJob(a, store, id, cmd.OutOrStdout())

			if schedule == "" {
				schedule = a.cfg.Sync.Schedule
			}
			if schedule == "" {
				return run(ctx)
			}

			if addr := resolveMetricsAddr(metricsAddr, a.cfg); addr != "" && provider.Enabled() {
				metricsServer, err := startMetricsServer(addr, provider, nil)
				if err != nil {
					return err
				}
				defer stopMetricsServer(metricsServer)
			}
			return runScheduled(ctx, schedule, run)
		},
	}

	cmd.Flags().StringVar(&calendarID, "calendar", "", "Calendar ID (default: the configured calendar)")
	cmd.Flags().StringVar(&schedule, "schedule", "", "Cron expression repeating the synchronisation")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Address of the Prometheus metrics server of a scheduled sync (disabled when empty)")
	cmd.Flags().BoolVar(&full, "full", false, "Forget the stored sync token and list every event")

	return cmd
}

// newSyncJob returns one synchronisation of calendarID, reported to out.
// Runs are recorded by the metrics of a.
func newSyncJob(a *app, store *syncstate.Store, calendarID string, out io.Writer) func(context.Context) error {
	syncer := &syncstate.Syncer{
		Store:       store,
		Logger:      logger,
		Metrics:     a.metrics,
		ShowDeleted: a.cfg.Sync.ShowDeleted,
	}
	return func(ctx context.Context) error {
		res, err := syncer.Run(ctx, a.eventAPI(calendarID))
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s: %s sync, %d events (%d cancelled)\n",
			a.calendarID(calendarID), res.Mode, res.Events.Len(), res.Cancelled)
		return nil
	}
}

// runScheduled runs fn once, then on every tick of schedule until ctx is done.
// Failed runs are logged and retried on the next tick.
func runScheduled(ctx context.Context, schedule string, fn func(context.Context) error) error {
	cronLogger := logging.NewCronLogger(logger)
	c := cron.New(
		cron.WithLogger(cronLogger),
		cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
	)

	job := func() {
		if err := fn(ctx); err != nil {
			logger.Error("synchronisation failed", logging.Err(err))
		}
	}
	if _, err := c.AddFunc(schedule, job); err != nil {
		return fmt.Errorf("invalid schedule %q: %w", schedule, err)
	}

	job()
	c.Start()
	logger.Info("synchronisation scheduled", "schedule", schedule)

	<-ctx.Done()
	<-c.Stop().Done()
	return nil
}
