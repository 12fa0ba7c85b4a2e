package common

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/teemow/calendart/internal/google"
)

// StringArg returns the string argument key, or def when it is missing,
// empty or not a string.
func StringArg(args map[string]any, key, def string) string {
	if v, ok := args[key].(string); ok && v != "" {
		return v
	}
	return def
}

// BoolArg returns the boolean argument key. Whether it was given is reported
// separately so patches can tell false from absent.
func BoolArg(args map[string]any, key string) (value, ok bool) {
	value, ok = args[key].(bool)
	return value, ok
}

// TimeArg parses an RFC3339 argument. A missing argument yields the zero time.
func TimeArg(args map[string]any, key string) (time.Time, error) {
	s := StringArg(args, key, "")
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid %s %q: expected RFC3339, e.g. 2025-01-15T14:00:00Z", key, s)
	}
	return t, nil
}

// ListArg splits a comma-separated argument, dropping empty entries.
func ListArg(args map[string]any, key string) []string {
	var out []string
	for _, item := range strings.Split(StringArg(args, key, ""), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// ErrorResult turns err into a tool error. Google failures carry their kind
// and whether retrying later may help.
func ErrorResult(action string, err error) *mcp.CallToolResult {
	var gerr *google.Error
	if errors.As(err, &gerr) {
		msg := fmt.Sprintf("%s: %v (kind: %s", action, err, gerr.Kind)
		if gerr.Retryable() {
			msg += ", retryable"
		}
		return mcp.NewToolResultError(msg + ")")
	}
	return mcp.NewToolResultError(fmt.Sprintf("%s: %v", action, err))
}
