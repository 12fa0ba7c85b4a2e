package cmd

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/teemow/calendart/internal/criterion"
	"github.com/teemow/calendart/internal/ics"
)

func newExportCmd() *cobra.Command {
	var (
		calendarID string
		outputFile string
		timeMin    string
		timeMax    string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the events of a calendar as an iCalendar (.ics) file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			crit := criterion.Collection("")
			for name, value := range map[string]string{"timeMin": timeMin, "timeMax": timeMax} {
				if value == "" {
					continue
				}
				t, err := parseTime(value)
				if err != nil {
					return err
				}
				crit.AddCriterion(criterion.Filter(name, t.Format(time.RFC3339)))
			}

			a, err := newApp(ctx, nil)
			if err != nil {
				return err
			}

			cal, err := a.calendarAPI().Get(ctx, a.calendarID(calendarID), nil)
			if err != nil {
				return err
			}
			events, err := a.eventAPIFor(cal).List(ctx, crit)
			if err != nil {
				return err
			}

			var w io.Writer = cmd.OutOrStdout()
			if outputFile != "" {
				f, err := os.Create(outputFile)
				if err != nil {
					return fmt.Errorf("failed to create output file: %w", err)
				}
				defer f.Close()
				w = f
			}

			if err := ics.Export(w, cal, events.Slice()); err != nil {
				return err
			}
			if outputFile != "" {
				fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d events to: %s\n", events.Len(), outputFile)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&calendarID, "calendar", "", "Calendar ID (default: the configured calendar)")
	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file (default: stdout)")
	cmd.Flags().StringVar(&timeMin, "time-min", "", "Lower bound of the event end time (RFC3339 or YYYY-MM-DD)")
	cmd.Flags().StringVar(&timeMax, "time-max", "", "Upper bound of the event start time (RFC3339 or YYYY-MM-DD)")

	return cmd
}
