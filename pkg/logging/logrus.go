package logging

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/sirupsen/logrus"
)

// LogrusLogger implements Logger on top of logrus
type LogrusLogger struct {
	entry  *logrus.Entry
	closer io.Closer
}

// NewConsoleLogger creates a logger writing to w (usually os.Stderr)
func NewConsoleLogger(w io.Writer, format Format, level Level) *LogrusLogger {
	return newLogrusLogger(w, nil, format, level)
}

func newLogrusLogger(w io.Writer, closer io.Closer, format Format, level Level) *LogrusLogger {
	l := logrus.New()
	l.SetOutput(w)
	l.SetLevel(toLogrusLevel(level))

	if format == FormatJSON {
		l.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: time.RFC3339,
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime: "timestamp",
				logrus.FieldKeyMsg:  "message",
			},
		})
	} else {
		l.SetFormatter(&textFormatter{})
	}

	return &LogrusLogger{entry: logrus.NewEntry(l), closer: closer}
}

func toLogrusLevel(level Level) logrus.Level {
	switch level {
	case DebugLevel:
		return logrus.DebugLevel
	case WarnLevel:
		return logrus.WarnLevel
	case ErrorLevel:
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}

// Debug logs a debug message
func (l *LogrusLogger) Debug(ctx context.Context, msg string, fields Fields) {
	l.entry.WithContext(ctx).WithFields(logrus.Fields(fields)).Debug(msg)
}

// Info logs an info message
func (l *LogrusLogger) Info(ctx context.Context, msg string, fields Fields) {
	l.entry.WithContext(ctx).WithFields(logrus.Fields(fields)).Info(msg)
}

// Warn logs a warning message
func (l *LogrusLogger) Warn(ctx context.Context, msg string, fields Fields) {
	l.entry.WithContext(ctx).WithFields(logrus.Fields(fields)).Warn(msg)
}

// Error logs an error message
func (l *LogrusLogger) Error(ctx context.Context, msg string, err error, fields Fields) {
	e := l.entry.WithContext(ctx).WithFields(logrus.Fields(fields))
	if err != nil {
		e = e.WithError(err)
	}
	e.Error(msg)
}

// WithFields returns a logger with additional fields.
// The returned logger shares the output and must not be closed separately.
func (l *LogrusLogger) WithFields(fields Fields) Logger {
	return &LogrusLogger{entry: l.entry.WithFields(logrus.Fields(fields))}
}

// Close flushes and closes the underlying output, if owned
func (l *LogrusLogger) Close() error {
	if l.closer != nil {
		return l.closer.Close()
	}
	return nil
}

// textFormatter renders entries as
//
//	2024-03-01T10:00:00.000Z [INFO] message error="..." key=value
//
// with fields in key order.
type textFormatter struct{}

func (f *textFormatter) Format(e *logrus.Entry) ([]byte, error) {
	var b bytes.Buffer

	b.WriteString(e.Time.UTC().Format("2006-01-02T15:04:05.000Z"))
	fmt.Fprintf(&b, " [%s] %s", levelString(fromLogrusLevel(e.Level)), e.Message)

	if err, ok := e.Data[logrus.ErrorKey].(error); ok {
		fmt.Fprintf(&b, " error=%q", err.Error())
	}

	keys := make([]string, 0, len(e.Data))
	for k := range e.Data {
		if k != logrus.ErrorKey {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, e.Data[k])
	}

	b.WriteByte('\n')
	return b.Bytes(), nil
}

func fromLogrusLevel(level logrus.Level) Level {
	switch level {
	case logrus.TraceLevel, logrus.DebugLevel:
		return DebugLevel
	case logrus.InfoLevel:
		return InfoLevel
	case logrus.WarnLevel:
		return WarnLevel
	default:
		return ErrorLevel
	}
}
