// Package logging holds the process-wide logrus logger.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
)

// Log is the shared logger. It writes to stderr until Setup redirects it.
var Log = logrus.New()

// SetLevel sets the level of Log from a config string. Empty means info.
func SetLevel(level string) error {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "", "info":
		Log.SetLevel(logrus.InfoLevel)
	case "debug":
		Log.SetLevel(logrus.DebugLevel)
	case "trace":
		Log.SetLevel(logrus.TraceLevel)
	case "warning", "warn":
		Log.SetLevel(logrus.WarnLevel)
	case "error":
		Log.SetLevel(logrus.ErrorLevel)
	default:
		return fmt.Errorf("bad log level %q", level)
	}
	return nil
}

// Setup configures Log. When file is non-empty, output goes to that file
// (the terminal belongs to the TUI). The returned closer releases it.
func Setup(level, file string) (io.Closer, error) {
	if err := SetLevel(level); err != nil {
		return nil, err
	}
	if file == "" {
		Log.SetOutput(os.Stderr)
		Log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
		return io.NopCloser(nil), nil
	}

	if err := os.MkdirAll(filepath.Dir(file), 0o700); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(file, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	Log.SetOutput(f)
	Log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, DisableColors: true})
	return f, nil
}

// Leveled adapts a logrus logger to the retryablehttp.LeveledLogger
// interface. Key/value pairs become fields.
type Leveled struct {
	Logger *logrus.Logger
}

func (l Leveled) entry(keysAndValues []interface{}) *logrus.Entry {
	fields := logrus.Fields{}
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		fields[fmt.Sprint(keysAndValues[i])] = keysAndValues[i+1]
	}
	logger := l.Logger
	if logger == nil {
		logger = Log
	}
	return logger.WithFields(fields)
}

func (l Leveled) Error(msg string, keysAndValues ...interface{}) {
	l.entry(keysAndValues).Error(msg)
}

func (l Leveled) Info(msg string, keysAndValues ...interface{}) {
	l.entry(keysAndValues).Debug(msg)
}

func (l Leveled) Debug(msg string, keysAndValues ...interface{}) {
	l.entry(keysAndValues).Debug(msg)
}

func (l Leveled) Warn(msg string, keysAndValues ...interface{}) {
	l.entry(keysAndValues).Warn(msg)
}
