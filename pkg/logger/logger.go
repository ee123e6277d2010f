// Package logger wraps logrus with the small surface the pipeline needs:
// leveled construction plus field-scoped entries for per-attachment logging.
package logger

import (
	"os"
	"time"

	"github.com/sirupsen/logrus"
)

// Logger embeds logrus.Logger, so all the usual leveled methods (Info,
// Warnf, Debugf, ...) are available directly.
type Logger struct {
	*logrus.Logger
}

// New creates a logger writing human-readable lines to stdout at info level.
func New() *Logger {
	log := logrus.New()
	log.SetOutput(os.Stdout)
	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	})
	log.SetLevel(logrus.InfoLevel)

	return &Logger{Logger: log}
}

// SetLevel sets the logging level by name. Unknown names fall back to info.
func (l *Logger) SetLevel(level string) {
	switch level {
	case "debug":
		l.Logger.SetLevel(logrus.DebugLevel)
	case "info":
		l.Logger.SetLevel(logrus.InfoLevel)
	case "warn":
		l.Logger.SetLevel(logrus.WarnLevel)
	case "error":
		l.Logger.SetLevel(logrus.ErrorLevel)
	default:
		l.Logger.SetLevel(logrus.InfoLevel)
	}
}

// WithField returns an entry scoped with a single field. Batch workers use
// this to tag every line with the attachment id being processed.
func (l *Logger) WithField(key string, value interface{}) *logrus.Entry {
	return l.Logger.WithField(key, value)
}

// WithFields returns an entry scoped with a set of fields.
func (l *Logger) WithFields(fields map[string]interface{}) *logrus.Entry {
	return l.Logger.WithFields(logrus.Fields(fields))
}
