package logging

import (
	"context"
	"os"
	"time"

	"github.com/sirupsen/logrus"
)

var Log *logrus.Logger

func init() {
	Log = logrus.New()
	Log.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: time.RFC3339,
	})
	Log.SetOutput(os.Stdout)
	Log.SetLevel(logrus.InfoLevel)
}

// SetLevel changes the level of the shared logger. Unknown names keep the current level.
func SetLevel(name string) {
	if name == "" {
		return
	}
	level, err := logrus.ParseLevel(name)
	if err != nil {
		Log.Warnf("Unknown log level %q, keeping %s", name, Log.GetLevel())
		return
	}
	Log.SetLevel(level)
}

type entryKey struct{}

// WithTrace returns a context whose log entry carries traceID
func WithTrace(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, entryKey{}, Log.WithField("trace_id", traceID))
}

// FromContext returns the entry stored by WithTrace, or a bare entry of Log
func FromContext(ctx context.Context) *logrus.Entry {
	if entry, ok := ctx.Value(entryKey{}).(*logrus.Entry); ok {
		return entry
	}
	return logrus.NewEntry(Log)
}
