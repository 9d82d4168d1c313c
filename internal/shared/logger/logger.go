package logger

import (
	"context"
	"io"
	"os"

	"lms-portal/internal/shared/contextkeys"

	"github.com/sirupsen/logrus"
)

const (
	formatJSON = "json"

	jsonTimestamp = "2006-01-02T15:04:05.000Z07:00"
	textTimestamp = "2006-01-02 15:04:05"
)

// Logger is the structured logger shared by every portal component.
type Logger interface {
	Debug(args ...interface{})
	Info(args ...interface{})
	Warn(args ...interface{})
	Error(args ...interface{})
	Infof(format string, args ...interface{})
	Errorf(format string, args ...interface{})
	Fatalf(format string, args ...interface{})
	WithFields(fields map[string]interface{}) Logger
	WithError(err error) Logger
	WithContext(ctx context.Context) Logger
	WithComponent(component string) Logger
}

// LogrusLogger implements Logger on a logrus entry.
type LogrusLogger struct {
	entry *logrus.Entry
}

// contextFields lists the request-scoped values copied onto log lines.
var contextFields = []struct {
	key   interface{}
	field string
}{
	{contextkeys.RequestIDKey, "request_id"},
	{contextkeys.ClientIDKey, "client_id"},
	{contextkeys.UserIDKey, "user_id"},
	{contextkeys.RoleKey, "role"},
	{contextkeys.OperationKey, "operation"},
}

// NewLogger creates a logger configured from LOG_LEVEL, LOG_FORMAT and ENVIRONMENT.
// Production environments always log JSON.
func NewLogger() Logger {
	format := os.Getenv("LOG_FORMAT")
	switch os.Getenv("ENVIRONMENT") {
	case "production", "prod":
		format = formatJSON
	}
	return NewLoggerWithOutput(os.Getenv("LOG_LEVEL"), format, os.Stdout)
}

// NewLoggerWithOutput creates a logger writing to out. Unknown levels fall back to info.
func NewLoggerWithOutput(level, format string, out io.Writer) Logger {
	base := logrus.New()
	base.SetLevel(parseLevel(level))
	base.SetFormatter(newFormatter(format))
	base.SetOutput(out)
	return &LogrusLogger{entry: logrus.NewEntry(base)}
}

// NewNopLogger returns a logger that discards everything.
func NewNopLogger() Logger {
	return NewLoggerWithOutput("panic", "text", io.Discard)
}

func (l *LogrusLogger) Debug(args ...interface{}) { l.entry.Debug(args...) }
func (l *LogrusLogger) Info(args ...interface{})  { l.entry.Info(args...) }
func (l *LogrusLogger) Warn(args ...interface{})  { l.entry.Warn(args...) }
func (l *LogrusLogger) Error(args ...interface{}) { l.entry.Error(args...) }

func (l *LogrusLogger) Infof(format string, args ...interface{}) {
	l.entry.Infof(format, args...)
}

func (l *LogrusLogger) Errorf(format string, args ...interface{}) {
	l.entry.Errorf(format, args...)
}

// Fatalf logs and exits the process.
func (l *LogrusLogger) Fatalf(format string, args ...interface{}) {
	l.entry.Fatalf(format, args...)
}

func (l *LogrusLogger) WithFields(fields map[string]interface{}) Logger {
	return &LogrusLogger{entry: l.entry.WithFields(logrus.Fields(fields))}
}

func (l *LogrusLogger) WithError(err error) Logger {
	return &LogrusLogger{entry: l.entry.WithError(err)}
}

// WithContext copies request, client, user and operation values carried by ctx.
// Empty values are skipped.
func (l *LogrusLogger) WithContext(ctx context.Context) Logger {
	fields := logrus.Fields{}
	for _, cf := range contextFields {
		if v, ok := ctx.Value(cf.key).(string); ok && v != "" {
			fields[cf.field] = v
		}
	}
	return &LogrusLogger{entry: l.entry.WithFields(fields)}
}

func (l *LogrusLogger) WithComponent(component string) Logger {
	return &LogrusLogger{entry: l.entry.WithField("component", component)}
}

func parseLevel(level string) logrus.Level {
	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		return logrus.InfoLevel
	}
	return parsed
}

func newFormatter(format string) logrus.Formatter {
	if format == formatJSON {
		return &logrus.JSONFormatter{
			TimestampFormat: jsonTimestamp,
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime:  "timestamp",
				logrus.FieldKeyLevel: "level",
				logrus.FieldKeyMsg:   "message",
			},
		}
	}
	return &logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: textTimestamp,
	}
}
