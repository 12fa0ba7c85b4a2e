package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/teemow/calendart/internal/gmail"
)

func newMailCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mail",
		Short: "Read Gmail messages",
	}

	cmd.AddCommand(newMailListCmd())
	cmd.AddCommand(newMailGetCmd())
	cmd.AddCommand(newMailAttachmentCmd())

	return cmd
}

func newMailListCmd() *cobra.Command {
	var (
		pageToken  string
		maxResults int
	)

	cmd := &cobra.Command{
		Use:   "list [QUERY]",
		Short: "Search messages, e.g. 'from:alice is:unread'",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), nil)
			if err != nil {
				return err
			}

			set, err := a.mailAPI().WithPageSize(maxResults).List(cmd.Context(), firstArg(args), pageToken)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, m := range set.Messages {
				sender := ""
				if m.Sender != nil {
					sender = m.Sender.Email()
				}
				fmt.Fprintf(out, "%s\t%s\t%s\t%s\n", m.ID, formatTime(m.SentDate, false), sender, m.Subject)
			}
			if set.NextPageToken != "" {
				fmt.Fprintf(out, "next page token: %s\n", set.NextPageToken)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&pageToken, "page-token", "", "Token of the page to fetch")
	cmd.Flags().IntVar(&maxResults, "max", 20, "Maximum number of messages")

	return cmd
}

func newMailGetCmd() *cobra.Command {
	var html bool

	cmd := &cobra.Command{
		Use:   "get MESSAGE_ID",
		Short: "Show a message",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), nil)
			if err != nil {
				return err
			}

			m, err := a.mailAPI().Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, h := range m.Headers() {
				switch h.Name {
				case "From", "To", "Cc", "Subject", "Date":
					fmt.Fprintf(out, "%s: %s\n", h.Name, h.Value)
				}
			}
			if !m.SentDate.IsZero() {
				fmt.Fprintf(out, "Received: %s\n", m.SentDate.Format(time.RFC1123Z))
			}

			body := m.TextBody
			if html || body == "" {
				body = m.HTMLBody
			}
			fmt.Fprintf(out, "\n%s\n", body)

			for _, att := range m.Attachments() {
				fmt.Fprintf(out, "attachment %s\t%s\t%d bytes\n", att.AttachmentID, att.SafeName(), att.Size)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&html, "html", false, "Print the HTML body")

	return cmd
}

func newMailAttachmentCmd() *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "attachment MESSAGE_ID ATTACHMENT_ID",
		Short: "Download an attachment",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), nil)
			if err != nil {
				return err
			}
			api := a.mailAPI()

			m, err := api.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			name := "attachment-" + gmail.SanitizeFilename(args[1])
			for _, att := range m.Attachments() {
				if att.AttachmentID == args[1] {
					name = att.SafeName()
					break
				}
			}

			data, err := api.Attachment(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}

			path := filepath.Join(dir, name)
			if err := os.WriteFile(path, data, 0o600); err != nil {
				return fmt.Errorf("failed to write attachment: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d bytes to %s\n", len(data), path)
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "dir", ".", "Directory to write the attachment to")

	return cmd
}
