// Package calendar_tools provides MCP (Model Context Protocol) tools for Google Calendar operations.
//
// The read tools list calendars, their permissions and their events; listings
// return a sync token that can be passed back for an incremental listing. The
// tools creating and patching events are only registered when writes are
// enabled on the server context.
package calendar_tools
