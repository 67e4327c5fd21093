// Package logger provides structured logging for the application.
// It wraps log/slog with environment-aware configuration and helpers
// for the fields this service logs most often.
package logger

import (
	"context"
	"log/slog"
	"os"
)

// contextKey is a private type for context keys to avoid collisions.
type contextKey string

const (
	// RequestIDKey is the context key for request IDs.
	RequestIDKey contextKey = "request_id"
	// UserIDKey is the context key for the conversation user ID.
	UserIDKey contextKey = "user_id"
)

// Logger wraps slog.Logger with application-specific helpers.
type Logger struct {
	*slog.Logger
}

// New creates a logger configured for the given environment.
// Development uses human-readable text output at debug level.
// Everything else uses JSON at info level for log aggregation.
func New(env string) *Logger {
	var handler slog.Handler

	opts := &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}

	if env == "development" {
		opts.Level = slog.LevelDebug
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	return &Logger{Logger: slog.New(handler)}
}

// WithContext returns a logger enriched with request-scoped fields
// carried in ctx. Missing fields are simply skipped.
func (l *Logger) WithContext(ctx context.Context) *Logger {
	log := l

	if requestID, ok := ctx.Value(RequestIDKey).(string); ok && requestID != "" {
		log = log.WithRequestID(requestID)
	}
	if userID, ok := ctx.Value(UserIDKey).(string); ok && userID != "" {
		log = log.WithUser(userID)
	}

	return log
}

// WithRequestID returns a logger with the request ID attached.
func (l *Logger) WithRequestID(requestID string) *Logger {
	return &Logger{Logger: l.Logger.With(slog.String("request_id", requestID))}
}

// WithUser returns a logger with the conversation user ID attached.
func (l *Logger) WithUser(userID string) *Logger {
	return &Logger{Logger: l.Logger.With(slog.String("user_id", userID))}
}

// HTTPRequest logs an HTTP request with standard fields.
func (l *Logger) HTTPRequest(method, path string, status int, latencyMs int64, clientIP string) {
	l.Info("http request",
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", status),
		slog.Int64("latency_ms", latencyMs),
		slog.String("client_ip", clientIP),
	)
}

// InboundMessage logs a message arriving from a conversation channel.
func (l *Logger) InboundMessage(userID, channel string, length int) {
	l.Info("inbound message",
		slog.String("user_id", userID),
		slog.String("channel", channel),
		slog.Int("length", length),
	)
}

// StateTransition logs a session moving between conversation states.
func (l *Logger) StateTransition(userID, from, to string) {
	l.Debug("state transition",
		slog.String("user_id", userID),
		slog.String("from", from),
		slog.String("to", to),
	)
}

// ExtractionFallback logs that the AI extractor was skipped or failed
// and the rule-based extractor produced the result instead.
func (l *Logger) ExtractionFallback(userID, reason string) {
	l.Warn("extraction fallback",
		slog.String("user_id", userID),
		slog.String("reason", reason),
	)
}

// CatalogMiss logs a price lookup that found no matching record.
func (l *Logger) CatalogMiss(product, size string) {
	l.Warn("catalog miss",
		slog.String("product", product),
		slog.String("size", size),
	)
}

// DeliveryFailed logs an outbound message that could not be delivered.
func (l *Logger) DeliveryFailed(userID, channel string, err error) {
	l.Error("delivery failed",
		slog.String("user_id", userID),
		slog.String("channel", channel),
		slog.String("error", err.Error()),
	)
}

// DatabaseError logs a database operation failure.
func (l *Logger) DatabaseError(operation string, err error) {
	l.Error("database error",
		slog.String("operation", operation),
		slog.String("error", err.Error()),
	)
}

// RateLimitExceeded logs a client hitting the rate limiter.
func (l *Logger) RateLimitExceeded(clientIP, path string) {
	l.Warn("rate limit exceeded",
		slog.String("client_ip", clientIP),
		slog.String("path", path),
	)
}
