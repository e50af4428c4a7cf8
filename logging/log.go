// Package logging holds the process-wide structured logger.
package logging

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// Entry is a log entry carrying fields.
type Entry = logrus.Entry

// Logger is the global logger instance.
var Logger = logrus.New()

func init() {
	Logger.SetOutput(os.Stderr)
	Logger.SetLevel(logrus.InfoLevel)
	Logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
}

// SetLevel sets the logging level from its name (debug, info, warn ...).
func SetLevel(level string) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return err
	}
	Logger.SetLevel(lvl)
	return nil
}

// SetOutput sets the log output destination.
func SetOutput(w io.Writer) {
	Logger.SetOutput(w)
}

// SetJSONFormat switches to JSON log lines.
func SetJSONFormat() {
	Logger.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: "2006-01-02T15:04:05Z07:00",
	})
}

// Configure applies a level and format in one call. An empty format keeps
// the text formatter.
func Configure(level, format string) error {
	if level != "" {
		if err := SetLevel(level); err != nil {
			return err
		}
	}
	if format == "json" {
		SetJSONFormat()
	}
	return nil
}

// WithFields returns a logger with multiple fields.
func WithFields(fields map[string]interface{}) *logrus.Entry {
	return Logger.WithFields(fields)
}

// WithDevice returns a logger with device context.
func WithDevice(device string) *logrus.Entry {
	return Logger.WithField("device", device)
}

// WithOperation returns a logger with operation context.
func WithOperation(operation string) *logrus.Entry {
	return Logger.WithField("operation", operation)
}

// WithTarget returns a logger for a transport connected to target.
func WithTarget(protocol, target string) *logrus.Entry {
	return Logger.WithFields(logrus.Fields{"protocol": protocol, "target": target})
}
