// Package logging provides the structured logger shared by every node
// component. It wraps logrus behind the field-chaining API the node code
// expects, so callers never import logrus directly.
package logging

import (
	"os"

	"github.com/sirupsen/logrus"
)

// Logger is a structured logger bound to a set of persistent fields.
type Logger struct {
	entry *logrus.Entry
}

// New creates a root logger at the given level ("debug", "info", "warn",
// "error"). An unrecognized level falls back to info.
func New(level string) *Logger {
	base := logrus.New()
	base.SetOutput(os.Stdout)
	base.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	base.SetLevel(lvl)

	return &Logger{entry: logrus.NewEntry(base)}
}

// WithField returns a derived logger carrying an additional field.
func (l *Logger) WithField(key string, value interface{}) *Logger {
	return &Logger{entry: l.entry.WithField(key, value)}
}

// WithFields returns a derived logger carrying additional fields.
func (l *Logger) WithFields(fields map[string]interface{}) *Logger {
	return &Logger{entry: l.entry.WithFields(logrus.Fields(fields))}
}

func (l *Logger) Debug(msg string)                          { l.entry.Debug(msg) }
func (l *Logger) Debugf(format string, args ...interface{})  { l.entry.Debugf(format, args...) }
func (l *Logger) Info(msg string)                            { l.entry.Info(msg) }
func (l *Logger) Infof(format string, args ...interface{})   { l.entry.Infof(format, args...) }
func (l *Logger) Warn(msg string)                            { l.entry.Warn(msg) }
func (l *Logger) Warnf(format string, args ...interface{})   { l.entry.Warnf(format, args...) }
func (l *Logger) Error(msg string)                           { l.entry.Error(msg) }
func (l *Logger) Errorf(format string, args ...interface{})  { l.entry.Errorf(format, args...) }

// Fatal logs at fatal level and exits the process. The node entrypoint uses
// it when the HTTP server fails to start; keypair generation failures are
// returned as errors instead.
func (l *Logger) Fatal(msg string) { l.entry.Fatal(msg) }
func (l *Logger) Fatalf(format string, args ...interface{}) {
	l.entry.Fatalf(format, args...)
}
