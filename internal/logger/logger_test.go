package logger

import (
	"context"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name   string
		level  string
		format string
		want   logrus.Level
	}{
		{"debug level", "debug", "text", logrus.DebugLevel},
		{"info level", "info", "text", logrus.InfoLevel},
		{"warn level", "warn", "json", logrus.WarnLevel},
		{"error level", "error", "json", logrus.ErrorLevel},
		{"invalid level defaults to info", "invalid", "text", logrus.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log := New(tt.level, tt.format)
			if log == nil {
				t.Fatal("New() returned nil")
			}
			impl := log.(*implLogger)
			if got := impl.entry.Logger.GetLevel(); got != tt.want {
				t.Errorf("level = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLoggerLevels(t *testing.T) {
	ctx := context.Background()
	log := Nop()

	// These should not panic
	log.Debug(ctx, "debug message")
	log.Info(ctx, "info message")
	log.Warn(ctx, "warn message")
	log.Error(ctx, "error message")

	// Test with formatting
	log.Info(ctx, "formatted message: %s %d", "test", 123)
}

func TestWith(t *testing.T) {
	log := Nop().With("stream_id", "abc123")
	if log == nil {
		t.Fatal("With() returned nil")
	}
	impl := log.(*implLogger)
	if impl.entry.Data["stream_id"] != "abc123" {
		t.Errorf("field stream_id = %v, want abc123", impl.entry.Data["stream_id"])
	}
}
