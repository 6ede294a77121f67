package logger

import (
	"context"
	"os"
	"time"

	"github.com/sirupsen/logrus"
)

// ContextKey is the type for context keys used in logging
type ContextKey string

const (
	// LeadIDKey is the context key for lead_id
	LeadIDKey ContextKey = "lead_id"
	// OrderIDKey is the context key for order_id
	OrderIDKey ContextKey = "order_id"
	// CorrelationIDKey is the context key for correlation_id
	CorrelationIDKey ContextKey = "correlation_id"
	// UserIDKey is the context key for the acting user's id
	UserIDKey ContextKey = "user_id"
)

var log = logrus.New()

// Init initializes the global structured logger
func Init(level, format string) {
	log.SetOutput(os.Stdout)

	if format == "text" {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		log.SetFormatter(&logrus.JSONFormatter{})
	}

	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		parsed = logrus.InfoLevel
	}
	log.SetLevel(parsed)
}

// WithContext creates an entry enriched with request-scoped values
func WithContext(ctx context.Context) *logrus.Entry {
	entry := logrus.NewEntry(log)

	if leadID, ok := ctx.Value(LeadIDKey).(int64); ok {
		entry = entry.WithField("lead_id", leadID)
	}
	if orderID, ok := ctx.Value(OrderIDKey).(int64); ok {
		entry = entry.WithField("order_id", orderID)
	}
	if correlationID, ok := ctx.Value(CorrelationIDKey).(string); ok {
		entry = entry.WithField("correlation_id", correlationID)
	}
	if userID, ok := ctx.Value(UserIDKey).(int64); ok {
		entry = entry.WithField("user_id", userID)
	}

	return entry
}

// fieldsFromPairs converts alternating key/value args into logrus fields
func fieldsFromPairs(kv []any) logrus.Fields {
	fields := logrus.Fields{}
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			continue
		}
		fields[key] = kv[i+1]
	}
	return fields
}

// Info logs an info message with context
func Info(ctx context.Context, msg string, kv ...any) {
	WithContext(ctx).WithFields(fieldsFromPairs(kv)).Info(msg)
}

// Warn logs a warning message with context
func Warn(ctx context.Context, msg string, kv ...any) {
	WithContext(ctx).WithFields(fieldsFromPairs(kv)).Warn(msg)
}

// Error logs an error message with context
func Error(ctx context.Context, msg string, kv ...any) {
	WithContext(ctx).WithFields(fieldsFromPairs(kv)).Error(msg)
}

// Debug logs a debug message with context
func Debug(ctx context.Context, msg string, kv ...any) {
	WithContext(ctx).WithFields(fieldsFromPairs(kv)).Debug(msg)
}

// LogError logs an error value alongside a message
func LogError(ctx context.Context, msg string, err error, kv ...any) {
	WithContext(ctx).WithFields(fieldsFromPairs(kv)).WithError(err).Error(msg)
}

// LogSlowOperation logs operations that exceed one second
func LogSlowOperation(ctx context.Context, operation string, duration time.Duration) {
	if duration > time.Second {
		WithContext(ctx).WithFields(logrus.Fields{
			"operation":   operation,
			"duration_ms": duration.Milliseconds(),
		}).Warn("Slow operation detected")
	}
}
