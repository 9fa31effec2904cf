package logger

import (
	"context"
	"time"
)

// Standard field key constants for structured logging.
const (
	FieldService     = "service"
	FieldComponent   = "component"
	FieldTraceID     = "trace_id"
	FieldRequestID   = "request_id"
	FieldWorkflowID  = "workflow_id"
	FieldExecutionID = "execution_id"
	FieldNodeID      = "node_id"
	FieldNodeType    = "node_type"
	FieldEngine      = "engine"
	FieldOperation   = "operation"
	FieldStatus      = "status"
	FieldError       = "error"
	FieldDuration    = "duration_ms"
)

type contextKey string

// contextFields are copied from a context into log entries by WithContext.
var contextFields = []contextKey{
	contextKey(FieldRequestID),
	contextKey(FieldTraceID),
	contextKey(FieldExecutionID),
}

// ContextWithRequestID stores a request id for WithContext to pick up.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, contextKey(FieldRequestID), id)
}

// ContextWithExecutionID stores an execution id for WithContext to pick up.
func ContextWithExecutionID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, contextKey(FieldExecutionID), id)
}

// RequestIDFromContext returns the request id stored by ContextWithRequestID.
func RequestIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(contextKey(FieldRequestID)).(string); ok {
		return v
	}
	return ""
}

// Fields builds a map from alternating key-value pairs.
//
//	logger.Info("done", logger.Fields("node_id", "n1", "attempt", 2))
func Fields(kvs ...interface{}) map[string]interface{} {
	m := make(map[string]interface{}, len(kvs)/2)
	for i := 0; i < len(kvs)-1; i += 2 {
		if key, ok := kvs[i].(string); ok {
			m[key] = kvs[i+1]
		}
	}
	return m
}

// ErrorFields creates fields for an operation that failed.
func ErrorFields(op string, err error) map[string]interface{} {
	return map[string]interface{}{FieldOperation: op, FieldError: err.Error()}
}

// DurationFields creates fields for a timed operation.
func DurationFields(op string, d time.Duration) map[string]interface{} {
	return map[string]interface{}{FieldOperation: op, FieldDuration: d.Milliseconds()}
}
