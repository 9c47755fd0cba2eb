package util

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// NewLogger builds the logger handed to every component. There is no
// package-level logger: the CLI owns one instance and injects it.
func NewLogger(level string, jsonFormat bool) (*logrus.Logger, error) {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	if err := SetLogLevel(log, level); err != nil {
		return nil, err
	}
	if jsonFormat {
		SetJSONFormat(log)
	} else {
		log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05",
		})
	}
	return log, nil
}

// DiscardLogger returns a logger that writes nowhere. Used as the default
// when a component is constructed without one.
func DiscardLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

// SetLogLevel sets the logging level; an empty level means info.
func SetLogLevel(log *logrus.Logger, level string) error {
	if level == "" {
		level = "info"
	}
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return err
	}
	log.SetLevel(lvl)
	return nil
}

// SetLogOutput sets the log output destination
func SetLogOutput(log *logrus.Logger, w io.Writer) {
	log.SetOutput(w)
}

// SetJSONFormat enables JSON log format
func SetJSONFormat(log *logrus.Logger) {
	log.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: "2006-01-02T15:04:05Z07:00",
	})
}

// WithDevice returns a logger with device context
func WithDevice(log logrus.FieldLogger, device string) logrus.FieldLogger {
	return log.WithField("device", device)
}

// WithOperation returns a logger with operation context
func WithOperation(log logrus.FieldLogger, operation string) logrus.FieldLogger {
	return log.WithField("operation", operation)
}

// OrDiscard returns log, or a discarding logger when log is nil.
func OrDiscard(log logrus.FieldLogger) logrus.FieldLogger {
	if log == nil {
		return DiscardLogger()
	}
	return log
}
