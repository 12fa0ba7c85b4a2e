// Package resources provides MCP resources describing the account the server
// acts for: its profile and its calendar list.
package resources
