// Package logging holds the slog conventions of calendart: attribute keys,
// scoped loggers, and helpers that keep email addresses and sync tokens out of
// log lines.
//
//	logger := logging.WithOperation(slog.Default(), "events.list")
//	logger.Debug("page fetched", logging.Page(2), logging.Calendar(cal.ID))
//
// Loggers built by NewLogger mask token attributes and hash email attributes
// on their own. CronLogger feeds the sync scheduler into slog.
package logging
