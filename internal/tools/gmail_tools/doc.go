// Package gmail_tools provides read-only MCP tools for Gmail: searching
// messages and reading a single message with its decoded bodies.
package gmail_tools
