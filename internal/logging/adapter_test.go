package logging

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/robfig/cron/v3"
)

func TestCronLogger(t *testing.T) {
	var buf bytes.Buffer
	var logger cron.Logger = NewCronLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo})))

	logger.Info("wake", "now", "x")
	if buf.Len() != 0 {
		t.Errorf("cron Info should be logged at debug level, got %q", buf.String())
	}

	logger.Error(errors.New("boom"), "job failed", "entry", 1)
	out := buf.String()
	for _, want := range []string{"level=ERROR", "operation=schedule", "error=boom", "entry=1"} {
		if !strings.Contains(out, want) {
			t.Errorf("cron error output %q does not contain %q", out, want)
		}
	}
}

func TestNewCronLogger_Nil(t *testing.T) {
	if NewCronLogger(nil).logger == nil {
		t.Error("nil logger should default to slog.Default()")
	}
}
