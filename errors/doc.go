// Package errors provides the structured error type shared by the engine,
// node handlers, stores and the HTTP layer. Each AppError carries a code,
// an HTTP status mapping and a retryable flag.
package errors
