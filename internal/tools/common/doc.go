// Package common holds the helpers shared by the MCP tool packages: argument
// parsing, error results and the instrumentation wrapper.
package common
