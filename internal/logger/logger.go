package logger

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// Logger is the leveled logging interface handed to every component.
type Logger interface {
	Debug(ctx context.Context, msg string, args ...interface{})
	Info(ctx context.Context, msg string, args ...interface{})
	Warn(ctx context.Context, msg string, args ...interface{})
	Error(ctx context.Context, msg string, args ...interface{})
	With(key string, value interface{}) Logger
}

type implLogger struct {
	entry *logrus.Entry
}

// New creates a Logger backed by logrus. format is "text" or "json";
// level is one of debug, info, warn, error (default info).
func New(level, format string) Logger {
	base := logrus.New()
	base.SetOutput(os.Stdout)

	if strings.ToLower(format) == "json" {
		base.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339Nano})
	} else {
		base.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: time.RFC3339Nano,
		})
	}

	switch strings.ToLower(level) {
	case "debug":
		base.SetLevel(logrus.DebugLevel)
	case "warn":
		base.SetLevel(logrus.WarnLevel)
	case "error":
		base.SetLevel(logrus.ErrorLevel)
	default:
		base.SetLevel(logrus.InfoLevel)
	}

	return &implLogger{entry: logrus.NewEntry(base)}
}

// Nop returns a Logger that discards everything. Used in tests.
func Nop() Logger {
	base := logrus.New()
	base.SetOutput(discard{})
	return &implLogger{entry: logrus.NewEntry(base)}
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }

// With returns a child logger carrying a structured field.
func (l *implLogger) With(key string, value interface{}) Logger {
	return &implLogger{entry: l.entry.WithField(key, value)}
}

func (l *implLogger) Debug(_ context.Context, msg string, args ...interface{}) {
	l.entry.Debugf(msg, args...)
}

func (l *implLogger) Info(_ context.Context, msg string, args ...interface{}) {
	l.entry.Infof(msg, args...)
}

func (l *implLogger) Warn(_ context.Context, msg string, args ...interface{}) {
	l.entry.Warnf(msg, args...)
}

func (l *implLogger) Error(_ context.Context, msg string, args ...interface{}) {
	l.entry.Errorf(msg, args...)
}
