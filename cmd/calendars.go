package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newCalendarsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "calendars",
		Short: "Inspect the calendars of the account",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List the calendars of the calendar list",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), nil)
			if err != nil {
				return err
			}

			list, err := a.calendarAPI().List(cmd.Context(), nil)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, cal := range list.Calendars {
				fmt.Fprintf(out, "%s\t%s\t%s\t%s\n", cal.ID, cal.AccessRole, cal.TimeZone, cal.Summary)
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "get [CALENDAR_ID]",
		Short: "Show a calendar",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), nil)
			if err != nil {
				return err
			}

			cal, err := a.calendarAPI().Get(cmd.Context(), a.calendarID(firstArg(args)), nil)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "ID: %s\n", cal.ID)
			fmt.Fprintf(out, "Summary: %s\n", cal.Summary)
			fmt.Fprintf(out, "Time zone: %s\n", cal.TimeZone)
			if cal.Description != "" {
				fmt.Fprintf(out, "Description: %s\n", cal.Description)
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "acl [CALENDAR_ID]",
		Short: "List the users a calendar is shared with",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), nil)
			if err != nil {
				return err
			}
			api := a.calendarAPI()

			cal, err := api.Get(cmd.Context(), a.calendarID(firstArg(args)), nil)
			if err != nil {
				return err
			}
			perms, err := api.Permissions(cmd.Context(), cal, nil)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, p := range perms {
				marker := ""
				if p.User == a.adapter.User() {
					marker = "\t(you)"
				}
				fmt.Fprintf(out, "%s\t%s%s\n", p.User.Email(), p.Role, marker)
			}
			return nil
		},
	})

	return cmd
}

func firstArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}
