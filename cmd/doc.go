// Package cmd implements the command-line interface for calendart.
//
// This package provides the following commands:
//   - events: list, get, create and patch calendar events
//   - calendars: list calendars, show one, list who it is shared with
//   - mail: search and read Gmail messages, download attachments
//   - sync: incremental synchronisation keeping sync tokens between runs
//   - export: write the events of a calendar as an iCalendar file
//   - serve: Start the MCP server to provide tools for AI assistants
//   - generate-docs: Generate markdown documentation for all MCP tools
//   - version: Display version information
package cmd
