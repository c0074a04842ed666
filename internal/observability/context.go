package observability

import (
	"context"
	"crypto/rand"
	"encoding/hex"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type contextKey string

const (
	traceIDBytes = 16 // OpenTelemetry trace ID size in bytes
	spanIDBytes  = 8  // OpenTelemetry span ID size in bytes
)

// Context keys, in the order FromContext attaches them to log lines.
const (
	TraceIDKey   contextKey = "trace_id"
	SpanIDKey    contextKey = "span_id"
	RequestIDKey contextKey = "request_id"
	SessionIDKey contextKey = "session_id"
	DocumentKey  contextKey = "document"
)

var loggedKeys = []contextKey{TraceIDKey, SpanIDKey, RequestIDKey, SessionIDKey, DocumentKey}

func withString(ctx context.Context, key contextKey, value string) context.Context {
	return context.WithValue(ctx, key, value)
}

func stringFrom(ctx context.Context, key contextKey) string {
	if ctx == nil {
		return ""
	}
	value, _ := ctx.Value(key).(string)
	return value
}

// WithTraceID injects trace ID into context.
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return withString(ctx, TraceIDKey, traceID)
}

// WithSpanID injects span ID into context.
func WithSpanID(ctx context.Context, spanID string) context.Context {
	return withString(ctx, SpanIDKey, spanID)
}

// WithRequestID injects request ID into context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return withString(ctx, RequestIDKey, requestID)
}

// WithSessionID injects the quoting session identifier into context.
func WithSessionID(ctx context.Context, sessionID string) context.Context {
	return withString(ctx, SessionIDKey, sessionID)
}

// WithDocument injects the name of the document being loaded or served.
func WithDocument(ctx context.Context, document string) context.Context {
	return withString(ctx, DocumentKey, document)
}

// GetTraceID extracts trace ID from context.
func GetTraceID(ctx context.Context) string { return stringFrom(ctx, TraceIDKey) }

// GetSpanID extracts span ID from context.
func GetSpanID(ctx context.Context) string { return stringFrom(ctx, SpanIDKey) }

// GetRequestID extracts request ID from context.
func GetRequestID(ctx context.Context) string { return stringFrom(ctx, RequestIDKey) }

// GetSessionID extracts the quoting session identifier from context.
func GetSessionID(ctx context.Context) string { return stringFrom(ctx, SessionIDKey) }

// GetDocument extracts the document name from context.
func GetDocument(ctx context.Context) string { return stringFrom(ctx, DocumentKey) }

// contextFields returns a zap field for every identifier set on ctx.
func contextFields(ctx context.Context) []zap.Field {
	fields := make([]zap.Field, 0, len(loggedKeys))
	for _, key := range loggedKeys {
		if value := stringFrom(ctx, key); value != "" {
			fields = append(fields, zap.String(string(key), value))
		}
	}
	return fields
}

// GenerateTraceID generates an OpenTelemetry-compatible trace ID (32 hex chars).
func GenerateTraceID() string {
	return randomHex(traceIDBytes)
}

// GenerateSpanID generates an OpenTelemetry-compatible span ID (16 hex chars).
func GenerateSpanID() string {
	return randomHex(spanIDBytes)
}

// GenerateRequestID generates a unique request identifier (UUID).
func GenerateRequestID() string {
	return uuid.New().String()
}

func randomHex(n int) string {
	bytes := make([]byte, n)
	if _, err := rand.Read(bytes); err != nil {
		id := uuid.New()
		return hex.EncodeToString(id[:])[:2*n]
	}
	return hex.EncodeToString(bytes)
}
