package logging

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// Attribute keys shared by every package.
const (
	KeyOperation = "operation"
	KeyService   = "service"
	KeyCalendar  = "calendar"
	KeyDuration  = "duration"
	KeyStatus    = "status"
	KeyError     = "error"
	KeyTool      = "tool"
	KeyPage      = "page"
)

// Status values. Duplicated from instrumentation, which imports this package.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Output formats accepted by NewLogger.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// NewLogger builds the process logger. debug lowers the level to Debug.
// Attributes whose key ends in "token" are masked and "email" attributes
// are hashed, whatever the call site passes.
func NewLogger(w io.Writer, format string, debug bool) (*slog.Logger, error) {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo, ReplaceAttr: redact}
	if debug {
		opts.Level = slog.LevelDebug
	}

	var h slog.Handler
	switch strings.ToLower(format) {
	case "", FormatText:
		h = slog.NewTextHandler(w, opts)
	case FormatJSON:
		h = slog.NewJSONHandler(w, opts)
	default:
		return nil, fmt.Errorf("unknown log format %q, must be %s or %s", format, FormatText, FormatJSON)
	}
	return slog.New(h), nil
}

func redact(_ []string, a slog.Attr) slog.Attr {
	if a.Value.Kind() != slog.KindString {
		return a
	}
	key := strings.ToLower(a.Key)
	switch {
	case strings.HasSuffix(key, "token"):
		return slog.String(a.Key, SanitizeToken(a.Value.String()))
	case key == "email" || strings.HasSuffix(key, "_email"):
		return slog.String(a.Key, AnonymizeEmail(a.Value.String()))
	}
	return a
}

func WithOperation(logger *slog.Logger, operation string) *slog.Logger {
	return logger.With(Operation(operation))
}

func WithService(logger *slog.Logger, service string) *slog.Logger {
	return logger.With(slog.String(KeyService, service))
}

func WithTool(logger *slog.Logger, tool string) *slog.Logger {
	return logger.With(slog.String(KeyTool, tool))
}

// WithCalendar scopes a logger to a calendar.
func WithCalendar(logger *slog.Logger, calendarID string) *slog.Logger {
	return logger.With(Calendar(calendarID))
}

func Operation(op string) slog.Attr { return slog.String(KeyOperation, op) }

func Status(status string) slog.Attr { return slog.String(KeyStatus, status) }

func Page(n int) slog.Attr { return slog.Int(KeyPage, n) }

// Calendar returns the calendar attribute. Calendar ids of user calendars
// are email addresses and get hashed; "primary" and group ids without an
// @ are kept.
func Calendar(calendarID string) slog.Attr {
	if strings.Contains(calendarID, "@") {
		calendarID = AnonymizeEmail(calendarID)
	}
	return slog.String(KeyCalendar, calendarID)
}

// Err returns the error attribute. A nil error yields an empty group,
// which handlers drop.
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Group("")
	}
	return slog.String(KeyError, err.Error())
}

// AnonymizeEmail hashes an address so log lines can be correlated without
// exposing it. Case is ignored.
func AnonymizeEmail(email string) string {
	if email == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(email))))
	return "user:" + hex.EncodeToString(sum[:8])
}

// SanitizeToken masks a page, sync or OAuth token, keeping only its length.
// Already masked values pass through.
func SanitizeToken(token string) string {
	switch {
	case token == "":
		return "<empty>"
	case strings.HasPrefix(token, "[token:") || token == "<empty>":
		return token
	}
	return fmt.Sprintf("[token:%d chars]", len(token))
}
