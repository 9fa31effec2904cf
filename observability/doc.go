// Package observability wires OpenTelemetry tracing and metrics for
// workflow executions. Spans cover each execution and each node; metrics
// count executions, node runs and LLM tokens.
package observability
