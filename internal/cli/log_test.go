package cli

import (
	"bytes"
	"context"
	"regexp"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestLoggerLevels(t *testing.T) {
	tests := []struct {
		level     log.Level
		wantDebug bool
	}{
		{LogInfo, false},
		{LogDebug, true},
	}
	for _, tt := range tests {
		t.Run(tt.level.String(), func(t *testing.T) {
			var buf bytes.Buffer
			l := newLogger(&buf, tt.level)
			l.Debug("parsed problem", "cells", 4)
			l.Info("rendered maze")
			out := buf.String()
			if !strings.Contains(out, "rendered maze") {
				t.Errorf("info line missing: %q", out)
			}
			if got := strings.Contains(out, "parsed problem"); got != tt.wantDebug {
				t.Errorf("debug line present = %v, want %v", got, tt.wantDebug)
			}
		})
	}
}

func TestLoggerTimestamp(t *testing.T) {
	var buf bytes.Buffer
	newLogger(&buf, LogInfo).Info("wrote problem")
	if !regexp.MustCompile(`^\d{2}:\d{2}:\d{2}\.\d{2} `).MatchString(buf.String()) {
		t.Errorf("line %q does not start with a HH:MM:SS.cc timestamp", buf.String())
	}
}

func TestProgressDone(t *testing.T) {
	var buf bytes.Buffer
	newProgress(newLogger(&buf, LogInfo)).done("wrote problem")
	if !regexp.MustCompile(`wrote problem \(\d+(\.\d+)?[mµn]?s\)`).MatchString(buf.String()) {
		t.Errorf("progress line = %q", buf.String())
	}
}

func TestLoggerContext(t *testing.T) {
	if loggerFromContext(context.Background()) != log.Default() {
		t.Error("bare context should yield log.Default()")
	}
	l := newLogger(&bytes.Buffer{}, LogDebug)
	if loggerFromContext(withLogger(context.Background(), l)) != l {
		t.Error("attached logger not returned")
	}
}
