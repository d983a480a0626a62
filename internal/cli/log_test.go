package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func TestNewLoggerLevels(t *testing.T) {
	tests := []struct {
		level log.Level
		debug bool
		info  bool
	}{
		{log.InfoLevel, false, true},
		{log.DebugLevel, true, true},
		{log.WarnLevel, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.level.String(), func(t *testing.T) {
			var buf bytes.Buffer
			l := newLogger(&buf, tt.level)
			l.Debug("refine pass", "stride", 4)
			if got := strings.Contains(buf.String(), "refine pass"); got != tt.debug {
				t.Errorf("debug logged = %v, want %v", got, tt.debug)
			}
			buf.Reset()
			l.Info("rendered")
			if got := buf.Len() > 0; got != tt.info {
				t.Errorf("info logged = %v, want %v", got, tt.info)
			}
		})
	}
}

func TestProgress(t *testing.T) {
	var buf bytes.Buffer
	prog := newProgress(newLogger(&buf, log.InfoLevel))
	time.Sleep(10 * time.Millisecond)
	prog.done("Rendered both", "passes", 10)

	out := buf.String()
	for _, want := range []string{"Rendered both", "passes=10", "elapsed="} {
		if !strings.Contains(out, want) {
			t.Errorf("progress output missing %q: %s", want, out)
		}
	}
}

func TestLoggerFromContext(t *testing.T) {
	if loggerFromContext(context.Background()) != log.Default() {
		t.Error("bare context should yield the default logger")
	}

	var buf bytes.Buffer
	l := newLogger(&buf, log.InfoLevel)
	ctx := withLogger(context.Background(), l)
	if loggerFromContext(ctx) != l {
		t.Fatal("loggerFromContext did not return the attached logger")
	}
	loggerFromContext(ctx).Info("cache hit")
	if !strings.Contains(buf.String(), "cache hit") {
		t.Error("attached logger did not receive output")
	}
}
