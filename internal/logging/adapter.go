package logging

import (
	"log/slog"
)

// CronLogger adapts a *slog.Logger to the logger interface of
// github.com/robfig/cron/v3, whose Error takes the error first.
type CronLogger struct {
	logger *slog.Logger
}

// NewCronLogger wraps logger, or slog.Default() when logger is nil.
func NewCronLogger(logger *slog.Logger) CronLogger {
	if logger == nil {
		logger = slog.Default()
	}
	return CronLogger{logger: logger.With(Operation("schedule"))}
}

// Info is called by cron on every tick and is demoted to Debug.
func (c CronLogger) Info(msg string, keysAndValues ...any) {
	c.logger.Debug(msg, keysAndValues...)
}

func (c CronLogger) Error(err error, msg string, keysAndValues ...any) {
	c.logger.Error(msg, append([]any{Err(err)}, keysAndValues...)...)
}
