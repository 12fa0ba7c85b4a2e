package cmd

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/teemow/calendart/internal/logging"
)

var (
	configPath string
	debugMode  bool
	logFormat  string
	userEmails string

	logger = slog.Default()
)

// rootCmd represents the base command for the calendart application
var rootCmd = &cobra.Command{
	Use:   "calendart",
	Short: "Typed Google Calendar and Gmail client",
	Long: `calendart reads and writes Google Calendar events and reads Gmail messages
through the Google REST APIs.

It can run as:
  - A CLI listing, fetching, creating and patching events and calendars
  - An incremental calendar synchroniser keeping sync tokens between runs
  - An MCP (Model Context Protocol) server for AI assistants`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		l, err := logging.NewLogger(cmd.ErrOrStderr(), logFormat, debugMode)
		if err != nil {
			return err
		}
		logger = l
		slog.SetDefault(l)
		return nil
	},
}

// version will be set by main
var version = "dev"

// SetVersion sets the version for the root command
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// Execute is the main entry point for the CLI application
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "calendart version %s\n" .Version}}`)

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default: $XDG_CONFIG_HOME/calendart/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", logging.FormatText, "Log format: text or json")
	rootCmd.PersistentFlags().StringVar(&userEmails, "user-emails", "", "Comma-separated email addresses of the authenticated user (overrides user_emails)")

	rootCmd.AddCommand(newEventsCmd())
	rootCmd.AddCommand(newCalendarsCmd())
	rootCmd.AddCommand(newMailCmd())
	rootCmd.AddCommand(newSyncCmd())
	rootCmd.AddCommand(newExportCmd())
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newGenerateDocsCmd())
	rootCmd.AddCommand(newVersionCmd())
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Printf("calendart version %s\n", version)
		},
	}
}
