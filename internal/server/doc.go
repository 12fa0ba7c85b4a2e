// Package server holds the state shared by the MCP tools and the HTTP server
// exposing Prometheus metrics and health probes.
//
// ServerContext wires the Google adapter into the calendar and mail API
// facades. EventAPI returns a fresh facade per call because an event listing
// accumulates state on its home calendar.
package server
